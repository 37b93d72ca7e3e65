// Copyright (c) 2024 The Zedovium developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package mempool implements the bounded pool of admitted-but-unconfirmed
// transactions: the dynamic fee curve, duplicate/capacity rejection, and
// stable descending-fee block-candidate selection.
package mempool

import (
	"errors"
	"math"
	"sort"

	"github.com/zedovium/zedd/internal/blockchain"
)

// ErrFull is returned by Add when the pool is already at Config.MaxSize.
var ErrFull = errors.New("mempool: full")

// ErrDuplicate is returned by Add when a pending transaction already shares
// the candidate's txid.
var ErrDuplicate = errors.New("mempool: duplicate transaction")

// Config holds the mempool's size bound, per-block inclusion cap, and fee
// curve parameters.
type Config struct {
	MaxSize      int
	BlockTxLimit int
	BaseFee      float64
	MaxFee       float64
	FeeStep      float64
}

// DefaultConfig returns the mempool's default parameters.
func DefaultConfig() Config {
	return Config{
		MaxSize:      10000,
		BlockTxLimit: 512,
		BaseFee:      0.01,
		MaxFee:       0.05,
		FeeStep:      0.001,
	}
}

// Pool is the ordered list of pending transactions. Pool holds no lock of
// its own; every exported method MUST be called with the owning node's
// mutex held.
type Pool struct {
	cfg      Config
	pending  []blockchain.Transaction
	byTxID   map[string]bool
}

// New returns an empty pool configured with cfg.
func New(cfg Config) *Pool {
	return &Pool{
		cfg:     cfg,
		byTxID:  make(map[string]bool),
	}
}

// Len reports the number of pending transactions.
func (p *Pool) Len() int {
	return len(p.pending)
}

// MaxSize returns the pool's configured capacity.
func (p *Pool) MaxSize() int { return p.cfg.MaxSize }

// BlockTxLimit returns the configured per-block inclusion cap.
func (p *Pool) BlockTxLimit() int { return p.cfg.BlockTxLimit }

// CurrentFeePercent is the pure function of current pool size
// defines: base_fee scaled up toward max_fee by how full the pool is,
// rounded to the nearest fee_step, and capped at max_fee.
func (p *Pool) CurrentFeePercent() float64 {
	fullness := float64(len(p.pending)) / float64(p.cfg.MaxSize)
	raw := p.cfg.BaseFee + fullness*(p.cfg.MaxFee-p.cfg.BaseFee)
	stepped := math.Round(raw/p.cfg.FeeStep) * p.cfg.FeeStep
	if stepped > p.cfg.MaxFee {
		return p.cfg.MaxFee
	}
	return stepped
}

// PendingSpends sums quantity*(1+feePercent) over every pending transaction
// sent by addr, using the pool's *current* fee percent rather than each
// transaction's stored fee_percent, matching the admission pipeline's
// pending-funds check.
func (p *Pool) PendingSpends(addr string, feePercent float64) float64 {
	var total float64
	for _, tx := range p.pending {
		if tx.Sender == addr {
			total += tx.Quantity * (1 + feePercent)
		}
	}
	return total
}

// Add appends tx to the pool, failing with ErrFull at capacity or
// ErrDuplicate if a pending transaction already shares tx.TxID.
func (p *Pool) Add(tx blockchain.Transaction) error {
	if len(p.pending) >= p.cfg.MaxSize {
		return ErrFull
	}
	if p.byTxID[tx.TxID] {
		return ErrDuplicate
	}
	p.pending = append(p.pending, tx)
	p.byTxID[tx.TxID] = true
	return nil
}

// BlockCandidates returns up to BlockTxLimit pending transactions, sorted by
// descending fee with ties broken by original insertion order.
func (p *Pool) BlockCandidates() []blockchain.Transaction {
	candidates := make([]blockchain.Transaction, len(p.pending))
	copy(candidates, p.pending)

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Fee > candidates[j].Fee
	})

	if len(candidates) > p.cfg.BlockTxLimit {
		candidates = candidates[:p.cfg.BlockTxLimit]
	}
	return candidates
}

// RemoveConfirmed drops every pending transaction whose txid appears in
// confirmed, preserving the relative order of what remains.
func (p *Pool) RemoveConfirmed(confirmed []blockchain.Transaction) {
	if len(confirmed) == 0 {
		return
	}
	drop := make(map[string]bool, len(confirmed))
	for _, tx := range confirmed {
		drop[tx.TxID] = true
	}

	remaining := p.pending[:0]
	for _, tx := range p.pending {
		if drop[tx.TxID] {
			delete(p.byTxID, tx.TxID)
			continue
		}
		remaining = append(remaining, tx)
	}
	p.pending = remaining
}

// Remove deletes a single pending transaction by txid, preserving the
// relative order of what remains.
func (p *Pool) Remove(txid string) {
	for i, tx := range p.pending {
		if tx.TxID == txid {
			p.pending = append(p.pending[:i], p.pending[i+1:]...)
			delete(p.byTxID, txid)
			return
		}
	}
}

// Transactions returns a copy of the first n pending transactions in
// insertion order, or all of them when n <= 0.
func (p *Pool) Transactions(n int) []blockchain.Transaction {
	if n <= 0 || n > len(p.pending) {
		n = len(p.pending)
	}
	out := make([]blockchain.Transaction, n)
	copy(out, p.pending[:n])
	return out
}

// FeeCurve samples the fee-percent curve at n evenly spaced fullness
// points from 0 to 1, letting collaborators chart how the fee rises with
// mempool utilization without touching any live pool state.
func FeeCurve(cfg Config, n int) []float64 {
	if n <= 0 {
		return nil
	}
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		fullness := float64(i) / float64(n-1)
		if n == 1 {
			fullness = 0
		}
		raw := cfg.BaseFee + fullness*(cfg.MaxFee-cfg.BaseFee)
		stepped := math.Round(raw/cfg.FeeStep) * cfg.FeeStep
		if stepped > cfg.MaxFee {
			stepped = cfg.MaxFee
		}
		out[i] = stepped
	}
	return out
}

// AggregateFees sums the fee field across every pending transaction.
func (p *Pool) AggregateFees() float64 {
	var total float64
	for _, tx := range p.pending {
		total += tx.Fee
	}
	return total
}
