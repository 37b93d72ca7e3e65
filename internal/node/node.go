// Copyright (c) 2024 The Zedovium developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package node is the core façade: the single mutex guarding the chain,
// ledger, mempool, and difficulty engine, and the transaction admission /
// block acceptance pipelines that mutate them. Every exported method here
// is safe for concurrent use; internal/blockchain and internal/mempool
// types are not, and must only be touched while holding mu.
package node

import (
	"sync"
	"time"

	"github.com/zedovium/zedd/internal/blockchain"
	"github.com/zedovium/zedd/internal/mempool"
	"github.com/zedovium/zedd/internal/zedutil"
)

// Config bundles every tunable the core needs at construction time.
type Config struct {
	ChainPath    string
	FeeRecipient string
	RewardPerBlock float64
	Retarget     blockchain.RetargetConfig
	Guard        blockchain.GuardConfig
	Mempool      mempool.Config

	// Now returns the current Unix time in fractional seconds. Overridable
	// for deterministic tests; production callers leave it nil and get
	// time.Now.
	Now func() float64
}

func (c Config) now() float64 {
	if c.Now != nil {
		return c.Now()
	}
	return float64(time.Now().UnixNano()) / 1e9
}

// Node is the process-wide mutable core: the
// chain, the mempool, and the difficulty engine, all serialized behind a
// single mutex. Reads and admissions take the lock only for the duration
// of their in-memory work; chain persistence and the mining brute-force
// loop perform their blocking portion outside it.
type Node struct {
	mu sync.Mutex

	cfg   Config
	chain *blockchain.Chain
	pool  *mempool.Pool
	diff  *blockchain.Difficulty

	subMu       sync.Mutex
	subscribers map[chan *blockchain.Block]struct{}
}

// Open constructs a Node backed by the chain persisted at cfg.ChainPath,
// creating a fresh genesis block if none exists.
func Open(cfg Config) (*Node, error) {
	chain, err := blockchain.Open(cfg.ChainPath, cfg.FeeRecipient, cfg.now)
	if err != nil {
		return nil, err
	}

	return &Node{
		cfg:         cfg,
		chain:       chain,
		pool:        mempool.New(cfg.Mempool),
		diff:        blockchain.NewDifficulty(1, cfg.Retarget, cfg.Guard),
		subscribers: make(map[chan *blockchain.Block]struct{}),
	}, nil
}

// Subscribe registers for a best-effort feed of newly accepted blocks, for
// callers such as the websocket handler in server.go. The returned
// unsubscribe func must be called when the caller is done listening.
// Each subscriber's channel buffers one block; further blocks are dropped
// while that buffer is full, for a subscriber that isn't keeping up.
func (n *Node) Subscribe() (<-chan *blockchain.Block, func()) {
	ch := make(chan *blockchain.Block, 1)

	n.subMu.Lock()
	n.subscribers[ch] = struct{}{}
	n.subMu.Unlock()

	unsubscribe := func() {
		n.subMu.Lock()
		delete(n.subscribers, ch)
		n.subMu.Unlock()
	}
	return ch, unsubscribe
}

// notify pushes a newly accepted block to every current subscriber. Never
// called with mu held.
func (n *Node) notify(block *blockchain.Block) {
	n.subMu.Lock()
	defer n.subMu.Unlock()

	for ch := range n.subscribers {
		select {
		case ch <- block:
		default:
		}
	}
}

// persist writes a chain snapshot to disk. Called without mu
// held: the snapshot is taken under the lock by the caller, and the write
// itself runs outside it.
func (n *Node) persist(snapshot []*blockchain.Block) error {
	return blockchain.Save(n.cfg.ChainPath, snapshot)
}

// CreateTransaction runs the transaction admission pipeline. On
// success it returns the admitted transaction; on failure state is left
// exactly as it was before the call.
func (n *Node) CreateTransaction(sender, recipient string, quantity float64, seed string) (blockchain.Transaction, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if !zedutil.Validate(sender) && sender != zedutil.NodeAddress {
		return blockchain.Transaction{}, NewError(InvalidAddress)
	}
	if !zedutil.Validate(recipient) {
		return blockchain.Transaction{}, NewError(InvalidAddress)
	}
	if sender != zedutil.NodeAddress && !zedutil.VerifyOwnership(sender, seed) {
		return blockchain.Transaction{}, NewError(Unauthorized)
	}

	feePercent := n.pool.CurrentFeePercent()
	fee := 0.0
	if sender != zedutil.NodeAddress {
		fee = quantity * feePercent
	}

	if sender != zedutil.NodeAddress {
		pendingSpends := n.pool.PendingSpends(sender, feePercent)
		if n.chain.Ledger.Balance(sender)-pendingSpends < quantity+fee {
			return blockchain.Transaction{}, NewError(InsufficientFunds)
		}
	}

	if sender != zedutil.NodeAddress {
		n.chain.Ledger.Debit(sender, quantity+fee)
	}
	n.chain.Ledger.Credit(recipient, quantity)

	now := n.cfg.now()
	tx := blockchain.Transaction{
		Sender:     sender,
		Recipient:  recipient,
		Quantity:   quantity,
		Fee:        fee,
		FeePercent: feePercent,
		TxID:       blockchain.TxID(now, uint64(n.chain.Len())),
		Timestamp:  now,
	}

	if err := n.pool.Add(tx); err != nil {
		// Roll back the balance mutations made above; the pipeline either
		// commits atomically or leaves state unchanged.
		if sender != zedutil.NodeAddress {
			n.chain.Ledger.Credit(sender, quantity+fee)
		}
		n.chain.Ledger.Debit(recipient, quantity)

		if err == mempool.ErrFull {
			return blockchain.Transaction{}, NewError(MempoolFull)
		}
		return blockchain.Transaction{}, NewError(DuplicateTx)
	}

	return tx, nil
}

// MineBlock performs node-local coinbase mining: it emits
// the reward transaction, brute-forces a proof against the current global
// difficulty outside the lock, and constructs the block. miner must be a
// valid, non-reserved address.
func (n *Node) MineBlock(miner string) (*blockchain.Block, error) {
	if !zedutil.Validate(miner) {
		return nil, NewError(InvalidAddress)
	}

	n.mu.Lock()
	prevProofN := n.chain.Head().ProofN
	difficulty := n.diff.Global
	n.mu.Unlock()

	var proofN uint64
	for !blockchain.SatisfiesDifficulty(prevProofN, proofN, difficulty) {
		proofN++
	}

	n.mu.Lock()
	block, snapshot, err := n.constructBlock(miner, proofN)
	n.mu.Unlock()
	if err != nil {
		return nil, err
	}

	if err := n.persist(snapshot); err != nil {
		return nil, err
	}
	n.notify(block)
	return block, nil
}

// SubmitMinedBlock validates and accepts an externally mined block. The
// caller supplies the proof nonce it found; this method performs no brute
// forcing of its own.
func (n *Node) SubmitMinedBlock(miner string, index uint64, proofN uint64, prevHash string, timestamp float64) (*blockchain.Block, error) {
	if !zedutil.Validate(miner) {
		return nil, NewError(InvalidAddress)
	}

	n.mu.Lock()

	last := n.chain.Head()
	if index != last.Index+1 {
		n.mu.Unlock()
		return nil, NewError(InvalidIndex)
	}
	if prevHash != last.Hash() {
		n.mu.Unlock()
		return nil, NewError(InvalidPrevHash)
	}
	if timestamp <= last.Timestamp {
		n.mu.Unlock()
		return nil, NewError(InvalidTimestamp)
	}

	now := n.cfg.now()
	n.diff.UpdateMinerWindow(miner, now)
	required := n.diff.EffectiveDifficulty(miner, now)

	if !blockchain.SatisfiesDifficulty(last.ProofN, proofN, required) {
		multiplier := n.diff.Multiplier(miner, now)
		n.mu.Unlock()
		return nil, NewLowDifficultyError(required, multiplier)
	}

	block, snapshot, err := n.constructBlock(miner, proofN)
	n.mu.Unlock()
	if err != nil {
		return nil, err
	}

	if err := n.persist(snapshot); err != nil {
		return nil, err
	}
	n.notify(block)
	return block, nil
}

// constructBlock implements the shared tail of §4.6/§4.7: gather mempool
// candidates, credit fees to the fee recipient, append, retarget, prune the
// mempool, and credit the reward. It returns a snapshot for the caller to
// persist after releasing mu, so the write never blocks other callers.
// MUST be called with mu held.
func (n *Node) constructBlock(miner string, proofN uint64) (*blockchain.Block, []*blockchain.Block, error) {
	candidates := n.pool.BlockCandidates()

	var aggregateFees float64
	for _, tx := range candidates {
		aggregateFees += tx.Fee
	}
	if aggregateFees > 0 {
		n.chain.Ledger.Credit(n.cfg.FeeRecipient, aggregateFees)
	}

	coinbase := blockchain.Transaction{
		Sender:    zedutil.NodeAddress,
		Recipient: miner,
		Quantity:  n.cfg.RewardPerBlock,
		TxID:      blockchain.TxID(n.cfg.now(), uint64(n.chain.Len())),
		Timestamp: n.cfg.now(),
	}

	txs := make([]blockchain.Transaction, 0, len(candidates)+1)
	txs = append(txs, coinbase)
	txs = append(txs, candidates...)

	block := &blockchain.Block{
		Index:        n.chain.Head().Index + 1,
		ProofN:       proofN,
		PrevHash:     n.chain.Head().Hash(),
		Transactions: txs,
		Timestamp:    n.cfg.now(),
	}

	n.chain.Append(block)
	n.diff.Retarget(n.chain)
	n.pool.RemoveConfirmed(candidates)
	n.chain.Ledger.Credit(miner, n.cfg.RewardPerBlock)

	return block, n.chain.Snapshot(), nil
}
