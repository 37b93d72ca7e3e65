// Copyright (c) 2024 The Zedovium developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import "github.com/zedovium/zedd/internal/zedutil"

// Ledger is the address -> balance mapping.  It is either reconstructed
// deterministically by replaying a chain (ReplayLedger) or mutated directly
// as transactions are admitted and blocks constructed; this resolves
// the two paths to apply the identical quantity+fee spend policy so that
// replaying from genesis always reproduces the live ledger bit-for-bit.
type Ledger struct {
	balances map[string]float64
}

// NewLedger returns an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{balances: make(map[string]float64)}
}

// Balance returns addr's balance, or zero for an address never seen.
func (l *Ledger) Balance(addr string) float64 {
	return l.balances[addr]
}

// Credit adds amount to addr's balance.
func (l *Ledger) Credit(addr string, amount float64) {
	l.balances[addr] += amount
}

// Debit subtracts amount from addr's balance.
func (l *Ledger) Debit(addr string, amount float64) {
	l.balances[addr] -= amount
}

// Set forces addr's balance to amount, overwriting any prior value.  Used
// once per replay to null the reserved node pseudo-address.
func (l *Ledger) Set(addr string, amount float64) {
	l.balances[addr] = amount
}

// TotalSupply sums every positive balance, matching the
// /network/totalsupply semantics (a fee-recipient or miner
// balance can never legitimately go negative, but summing only positive
// entries keeps the figure meaningful even if it temporarily did).
func (l *Ledger) TotalSupply() float64 {
	var total float64
	for _, balance := range l.balances {
		if balance > 0 {
			total += balance
		}
	}
	return total
}

// ReplayLedger reconstructs the ledger by replaying every block's
// transactions in order.  For each transaction, quantity+fee is subtracted
// from the sender (skipped for the reserved node pseudo-address) and
// quantity is credited to the recipient; when the transaction carries a fee
// it is credited to feeRecipient, mirroring the credit construct_block
// performs live when a block is mined (the same spend-policy
// resolution). After replay the node pseudo-address is forced to zero.
func ReplayLedger(blocks []*Block, feeRecipient string) *Ledger {
	ledger := NewLedger()
	for _, block := range blocks {
		for _, tx := range block.Transactions {
			if tx.Sender != zedutil.NodeAddress {
				ledger.Debit(tx.Sender, tx.Quantity+tx.Fee)
			}
			ledger.Credit(tx.Recipient, tx.Quantity)
			if tx.Fee > 0 {
				ledger.Credit(feeRecipient, tx.Fee)
			}
		}
	}
	ledger.Set(zedutil.NodeAddress, 0)
	return ledger
}
