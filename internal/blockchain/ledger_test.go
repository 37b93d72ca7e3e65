// Copyright (c) 2024 The Zedovium developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"testing"

	"github.com/zedovium/zedd/internal/zedutil"
)

func TestLedgerCreditDebit(t *testing.T) {
	l := NewLedger()
	l.Credit("alice", 10)
	l.Debit("alice", 4)
	if got := l.Balance("alice"); got != 6 {
		t.Fatalf("balance = %v, want 6", got)
	}
	if got := l.Balance("nobody"); got != 0 {
		t.Fatalf("unseen address balance = %v, want 0", got)
	}
}

func TestReplayLedgerCoinbaseSkipsDebit(t *testing.T) {
	blocks := []*Block{
		NewGenesisBlock(0),
		{
			Index:    1,
			PrevHash: "0",
			Transactions: []Transaction{
				{Sender: zedutil.NodeAddress, Recipient: "miner", Quantity: RewardPerBlock},
			},
		},
	}

	ledger := ReplayLedger(blocks, "feecollector")
	if got := ledger.Balance("miner"); got != RewardPerBlock {
		t.Fatalf("miner balance = %v, want %v", got, RewardPerBlock)
	}
	if got := ledger.Balance(zedutil.NodeAddress); got != 0 {
		t.Fatalf("node balance = %v, want 0", got)
	}
}

func TestReplayLedgerFeeGoesToRecipient(t *testing.T) {
	blocks := []*Block{
		NewGenesisBlock(0),
		{
			Index:    1,
			PrevHash: "0",
			Transactions: []Transaction{
				{Sender: zedutil.NodeAddress, Recipient: "alice", Quantity: 100},
			},
		},
		{
			Index:    2,
			PrevHash: "x",
			Transactions: []Transaction{
				{Sender: "alice", Recipient: "bob", Quantity: 10, Fee: 1},
			},
		},
	}

	ledger := ReplayLedger(blocks, "feecollector")
	if got := ledger.Balance("alice"); got != 89 {
		t.Fatalf("alice balance = %v, want 89", got)
	}
	if got := ledger.Balance("bob"); got != 10 {
		t.Fatalf("bob balance = %v, want 10", got)
	}
	if got := ledger.Balance("feecollector"); got != 1 {
		t.Fatalf("feecollector balance = %v, want 1", got)
	}
}

func TestTotalSupplyIgnoresNonPositive(t *testing.T) {
	l := NewLedger()
	l.Credit("alice", 5)
	l.Set("broken", -3)
	if got := l.TotalSupply(); got != 5 {
		t.Fatalf("TotalSupply = %v, want 5", got)
	}
}
