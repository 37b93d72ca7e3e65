// Copyright (c) 2024 The Zedovium developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import "testing"

func TestHashDeterministic(t *testing.T) {
	b := &Block{
		Index:    1,
		ProofN:   42,
		PrevHash: "abc",
		Timestamp: 100.5,
		Transactions: []Transaction{
			{Sender: "ZED-a-b-c-d-ffff", Recipient: "ZED-e-f-g-h-eeee", Quantity: 1.5, Fee: 0.1, TxID: "tx1", Timestamp: 99},
		},
	}

	h1 := b.Hash()
	h2 := b.Hash()
	if h1 != h2 {
		t.Fatalf("hash not stable across calls: %q != %q", h1, h2)
	}
	if len(h1) != 128 {
		t.Fatalf("expected 128 hex chars (512 bits), got %d", len(h1))
	}
}

func TestHashChangesWithFields(t *testing.T) {
	base := &Block{Index: 1, ProofN: 1, PrevHash: "a", Timestamp: 1}
	h1 := base.Hash()

	mutated := *base
	mutated.ProofN = 2
	if mutated.Hash() == h1 {
		t.Fatal("hash did not change when proofN changed")
	}
}

func TestGenesisBlock(t *testing.T) {
	g := NewGenesisBlock(123.0)
	if g.Index != 0 {
		t.Fatalf("genesis index = %d, want 0", g.Index)
	}
	if g.PrevHash != GenesisPrevHash {
		t.Fatalf("genesis prev hash = %q, want %q", g.PrevHash, GenesisPrevHash)
	}
	if len(g.Transactions) != 0 {
		t.Fatalf("genesis carries %d transactions, want 0", len(g.Transactions))
	}
}

func TestSatisfiesDifficultyZero(t *testing.T) {
	if !SatisfiesDifficulty(0, 0, 0) {
		t.Fatal("difficulty 0 must always be satisfied")
	}
}

func TestSatisfiesDifficultyFindsValidNonce(t *testing.T) {
	const difficulty = 1
	var proofN uint64
	for ; proofN < 1_000_000; proofN++ {
		if SatisfiesDifficulty(0, proofN, difficulty) {
			break
		}
	}
	if !SatisfiesDifficulty(0, proofN, difficulty) {
		t.Fatal("failed to find a nonce satisfying difficulty 1 within search bound")
	}
	digest := ProofDigest(0, proofN)
	if digest[:difficulty] != "0" {
		t.Fatalf("digest %q does not actually start with a zero", digest)
	}
}

func TestTxIDDeterministicOnInputs(t *testing.T) {
	id1 := TxID(100.0, 5)
	id2 := TxID(100.0, 5)
	if id1 != id2 {
		t.Fatal("TxID not deterministic given identical inputs")
	}
	if id3 := TxID(100.0, 6); id3 == id1 {
		t.Fatal("TxID did not change with chain length")
	}
}
