// Copyright (c) 2024 The Zedovium developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"path/filepath"
	"testing"

	"github.com/zedovium/zedd/internal/zedutil"
)

func fixedNow() float64 { return 1_700_000_000 }

func TestOpenCreatesGenesisWhenMissing(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "chain.json")

	c, err := Open(path, "feecollector", fixedNow)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if c.Len() != 1 {
		t.Fatalf("Len = %d, want 1", c.Len())
	}
	if c.Head().PrevHash != GenesisPrevHash {
		t.Fatalf("genesis prev hash = %q", c.Head().PrevHash)
	}

	reopened, err := Open(path, "feecollector", fixedNow)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if reopened.Len() != 1 {
		t.Fatalf("reopened Len = %d, want 1", reopened.Len())
	}
}

func TestAppendUpdatesIndexAndHead(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "chain.json")

	c, err := Open(path, "feecollector", fixedNow)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	next := &Block{
		Index:    1,
		PrevHash: c.Head().Hash(),
		Timestamp: fixedNow() + 1,
		Transactions: []Transaction{
			{Sender: zedutil.NodeAddress, Recipient: "miner", Quantity: RewardPerBlock, TxID: "t1"},
		},
	}
	c.Append(next)

	if c.Len() != 2 {
		t.Fatalf("Len = %d, want 2", c.Len())
	}
	if c.Head() != next {
		t.Fatal("Head did not return the appended block")
	}

	got, ok := c.ByHash(next.Hash())
	if !ok || got != next {
		t.Fatal("ByHash did not find the appended block")
	}
	if _, ok := c.ByIndex(1); !ok {
		t.Fatal("ByIndex(1) did not find the appended block")
	}
	if _, ok := c.ByIndex(99); ok {
		t.Fatal("ByIndex(99) unexpectedly found a block")
	}
}

func TestSaveThenLoadRoundTrips(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "chain.json")

	blocks := []*Block{
		NewGenesisBlock(fixedNow()),
		{Index: 1, PrevHash: "x", Timestamp: fixedNow() + 1},
	}
	if err := Save(path, blocks); err != nil {
		t.Fatalf("Save: %v", err)
	}

	c, err := Open(path, "feecollector", fixedNow)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if c.Len() != 2 {
		t.Fatalf("Len = %d, want 2", c.Len())
	}
}

func TestSnapshotIsIndependentOfFurtherAppends(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "chain.json")

	c, err := Open(path, "feecollector", fixedNow)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	snap := c.Snapshot()
	c.Append(&Block{Index: 1, PrevHash: c.Head().Hash(), Timestamp: fixedNow() + 1})

	if len(snap) != 1 {
		t.Fatalf("snapshot length changed after append: %d", len(snap))
	}
	if c.Len() != 2 {
		t.Fatalf("Len = %d, want 2", c.Len())
	}
}
