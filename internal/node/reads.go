// Copyright (c) 2024 The Zedovium developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package node

import (
	"fmt"
	"math"

	"github.com/zedovium/zedd/internal/blockchain"
	"github.com/zedovium/zedd/internal/mempool"
)

// GetBalance returns addr's current balance, 0 for an address never seen.
func (n *Node) GetBalance(addr string) float64 {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.chain.Ledger.Balance(addr)
}

// TotalSupply returns the sum of every positive balance.
func (n *Node) TotalSupply() float64 {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.chain.Ledger.TotalSupply()
}

// Head returns the chain's most recent block.
func (n *Node) Head() *blockchain.Block {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.chain.Head()
}

// Height returns the index of the chain's most recent block.
func (n *Node) Height() uint64 {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.chain.Head().Index
}

// Chain returns every block in the chain, in order.
func (n *Node) Chain() []*blockchain.Block {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.chain.Snapshot()
}

// BlockByIndex returns the block at height i. An out-of-range index is an
// InvalidIndex (400), not NotFound (404): spec §6 carves /network/block/{n}
// out of the general unknown-resource mapping.
func (n *Node) BlockByIndex(i uint64) (*blockchain.Block, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	b, ok := n.chain.ByIndex(i)
	if !ok {
		return nil, NewError(InvalidIndex)
	}
	return b, nil
}

// BlockByHash returns the block with the given hash.
func (n *Node) BlockByHash(hash string) (*blockchain.Block, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	b, ok := n.chain.ByHash(hash)
	if !ok {
		return nil, NewError(NotFound)
	}
	return b, nil
}

// RecentBlocks returns up to count of the most recently appended blocks,
// newest first.
func (n *Node) RecentBlocks(count int) []*blockchain.Block {
	n.mu.Lock()
	defer n.mu.Unlock()

	blocks := n.chain.Blocks
	if count <= 0 || count > len(blocks) {
		count = len(blocks)
	}
	out := make([]*blockchain.Block, count)
	for i := 0; i < count; i++ {
		out[i] = blocks[len(blocks)-1-i]
	}
	return out
}

// TransactionRecord pairs a transaction with the height of the block it was
// confirmed in, the shape every transaction-lookup endpoint returns.
type TransactionRecord struct {
	Transaction blockchain.Transaction
	BlockIndex  uint64
}

// TransactionByID searches every block for a transaction with the given
// txid.
func (n *Node) TransactionByID(txid string) (TransactionRecord, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	for _, b := range n.chain.Blocks {
		for _, tx := range b.Transactions {
			if tx.TxID == txid {
				return TransactionRecord{Transaction: tx, BlockIndex: b.Index}, nil
			}
		}
	}
	return TransactionRecord{}, NewError(NotFound)
}

// TransactionsForAddress returns every transaction involving addr as sender
// or recipient, oldest first, with its confirming block height.
func (n *Node) TransactionsForAddress(addr string) []TransactionRecord {
	n.mu.Lock()
	defer n.mu.Unlock()

	var out []TransactionRecord
	for _, b := range n.chain.Blocks {
		for _, tx := range b.Transactions {
			if tx.Sender == addr || tx.Recipient == addr {
				out = append(out, TransactionRecord{Transaction: tx, BlockIndex: b.Index})
			}
		}
	}
	return out
}

// RecentTransactions returns up to count of the most recently confirmed
// transactions across the whole chain, newest first.
func (n *Node) RecentTransactions(count int) []TransactionRecord {
	n.mu.Lock()
	defer n.mu.Unlock()

	var all []TransactionRecord
	for _, b := range n.chain.Blocks {
		for _, tx := range b.Transactions {
			all = append(all, TransactionRecord{Transaction: tx, BlockIndex: b.Index})
		}
	}

	if count <= 0 || count > len(all) {
		count = len(all)
	}
	out := make([]TransactionRecord, count)
	for i := 0; i < count; i++ {
		out[i] = all[len(all)-1-i]
	}
	return out
}

// Hashrate estimates the network hashrate as 2^diff divided by the average
// block interval over the last up to 60 blocks.
func (n *Node) Hashrate() float64 {
	n.mu.Lock()
	defer n.mu.Unlock()

	blocks := n.chain.Blocks
	window := 60
	if len(blocks) < window+1 {
		window = len(blocks) - 1
	}
	if window <= 0 {
		return 0
	}

	first := blocks[len(blocks)-1-window]
	last := blocks[len(blocks)-1]
	avgBlockTime := (last.Timestamp - first.Timestamp) / float64(window)
	if avgBlockTime <= 0 {
		return 0
	}
	return math.Pow(2, float64(n.diff.Global)) / avgBlockTime
}

// FeeEstimate bundles the current fee percent, pending count, mempool
// utilisation, and aggregate pending fees.
type FeeEstimate struct {
	FeePercent  float64
	Pending     int
	Utilisation float64
	Aggregate   float64
}

// FeeEstimate returns the current fee estimate snapshot.
func (n *Node) FeeEstimate() FeeEstimate {
	n.mu.Lock()
	defer n.mu.Unlock()

	return FeeEstimate{
		FeePercent:  n.pool.CurrentFeePercent(),
		Pending:     n.pool.Len(),
		Utilisation: float64(n.pool.Len()) / float64(n.pool.MaxSize()),
		Aggregate:   n.pool.AggregateFees(),
	}
}

// AddressDifficulty bundles the effective difficulty demanded of a miner
// address, the guard multiplier driving it, and a human summary of why.
type AddressDifficulty struct {
	Status         string
	Message        string
	Difficulty     int
	BaseDifficulty int
	Multiplier     float64
	BlocksPerHour  int
	Threshold      int
	Guard          bool
}

// CheckAddressDifficulty returns the effective difficulty and guard
// multiplier in force for addr right now, plus a status/message pair
// summarizing whether the address is under guard amplification.
func (n *Node) CheckAddressDifficulty(addr string) AddressDifficulty {
	n.mu.Lock()
	defer n.mu.Unlock()

	now := n.cfg.now()
	guardOn := n.diff.GuardEnabled()
	blocksPerHour := n.diff.BlocksInWindow(addr, now)
	multiplier := n.diff.Multiplier(addr, now)
	effective := n.diff.EffectiveDifficulty(addr, now)

	result := AddressDifficulty{
		Difficulty:     effective,
		BaseDifficulty: n.diff.Global,
		Multiplier:     multiplier,
		BlocksPerHour:  blocksPerHour,
		Threshold:      n.diff.GuardThreshold(),
		Guard:          guardOn,
	}

	switch {
	case !guardOn:
		result.Status = "normal"
		result.Message = "Zedovium Guard is disabled. No difficulty checks."
	case multiplier > 1.0:
		result.Status = "high"
		result.Message = fmt.Sprintf("Address has high difficulty (mining %d blocks/hour)", blocksPerHour)
	case blocksPerHour == 0:
		result.Status = "normal"
		result.Message = "Address has normal difficulty (no mining activity detected)"
	default:
		result.Status = "normal"
		result.Message = fmt.Sprintf("Address has normal difficulty (mining %d blocks/hour)", blocksPerHour)
	}

	return result
}

// MempoolInfo bundles the mempool counters /mempool/info reports.
type MempoolInfo struct {
	Pending int
	MaxSize int
	FeePercent float64
}

// MempoolInfo returns the current mempool counters.
func (n *Node) MempoolInfo() MempoolInfo {
	n.mu.Lock()
	defer n.mu.Unlock()
	return MempoolInfo{
		Pending:    n.pool.Len(),
		MaxSize:    n.pool.MaxSize(),
		FeePercent: n.pool.CurrentFeePercent(),
	}
}

// MempoolTransactions returns up to count pending transactions, or all of
// them when count <= 0.
func (n *Node) MempoolTransactions(count int) []blockchain.Transaction {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.pool.Transactions(count)
}

// NetworkInfo bundles the summary /network/info reports.
type NetworkInfo struct {
	Height       uint64
	TotalSupply  float64
	Difficulty   int
	BlockReward  float64
	NodeCount    int
	Threshold    int
	Window       float64
	GuardEnabled bool
}

// NetworkInfo returns the current network summary.
func (n *Node) NetworkInfo() NetworkInfo {
	n.mu.Lock()
	defer n.mu.Unlock()

	return NetworkInfo{
		Height:       n.chain.Head().Index,
		TotalSupply:  n.chain.Ledger.TotalSupply(),
		Difficulty:   n.diff.Global,
		BlockReward:  n.cfg.RewardPerBlock,
		NodeCount:    1,
		Threshold:    n.diff.GuardThreshold(),
		Window:       n.diff.GuardWindow(),
		GuardEnabled: n.diff.GuardEnabled(),
	}
}

// FeeCurve samples the fee-percent curve at n evenly spaced mempool
// utilization points, for wallet UIs to chart.
func (n *Node) FeeCurve(points int) []float64 {
	n.mu.Lock()
	defer n.mu.Unlock()
	return mempool.FeeCurve(n.cfg.Mempool, points)
}

// MiningInfo bundles the summary /mining/info reports.
type MiningInfo struct {
	Difficulty  int
	LatestBlock *blockchain.Block
}

// MiningInfo returns the current mining summary.
func (n *Node) MiningInfo() MiningInfo {
	n.mu.Lock()
	defer n.mu.Unlock()
	return MiningInfo{Difficulty: n.diff.Global, LatestBlock: n.chain.Head()}
}
