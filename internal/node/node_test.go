// Copyright (c) 2024 The Zedovium developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package node

import (
	"math"
	"path/filepath"
	"strings"
	"testing"

	"github.com/zedovium/zedd/internal/blockchain"
	"github.com/zedovium/zedd/internal/mempool"
	"github.com/zedovium/zedd/internal/zedutil"
)

// bruteForceProof finds a nonce satisfying difficulty against prevProofN,
// the same brute-force loop Node.MineBlock runs.
func bruteForceProof(prevProofN uint64, difficulty int) uint64 {
	var proofN uint64
	for !blockchain.SatisfiesDifficulty(prevProofN, proofN, difficulty) {
		proofN++
	}
	return proofN
}

// requiredDifficultyAfter predicts the effective difficulty SubmitMinedBlock
// will demand of addr at now, anticipating the window update (prune then
// append) it performs before computing the guard multiplier.
func requiredDifficultyAfter(n *Node, addr string, now float64) int {
	countAfter := n.diff.BlocksInWindow(addr, now) + 1
	multiplier := 1.0
	if countAfter > n.diff.GuardThreshold() {
		multiplier = 1.0 + 0.5*float64(countAfter-n.diff.GuardThreshold())
	}
	return int(math.Floor(float64(n.diff.Global) * multiplier))
}

func newTestNode(t *testing.T, clock *float64) *Node {
	t.Helper()
	dir := t.TempDir()

	cfg := Config{
		ChainPath:      filepath.Join(dir, "chain.json"),
		FeeRecipient:   "feecollector",
		RewardPerBlock: blockchain.RewardPerBlock,
		Retarget:       blockchain.RetargetConfig{BlockTimeTarget: 300, AdjustmentInterval: 12},
		Guard:          blockchain.GuardConfig{Enabled: false, Window: 300, Threshold: 10},
		Mempool:        mempool.DefaultConfig(),
		Now:            func() float64 { return *clock },
	}

	n, err := Open(cfg)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return n
}

func mustWallet(t *testing.T, seed string) *zedutil.Wallet {
	t.Helper()
	w, err := zedutil.Generate(seed)
	if err != nil {
		t.Fatalf("Generate(%q): %v", seed, err)
	}
	return w
}

func TestMineBlockCreditsReward(t *testing.T) {
	clock := 1000.0
	n := newTestNode(t, &clock)
	miner := mustWallet(t, strings.Repeat("11", 16))

	clock++
	block, err := n.MineBlock(miner.Address)
	if err != nil {
		t.Fatalf("MineBlock: %v", err)
	}
	if block.Index != 1 {
		t.Fatalf("block.Index = %d, want 1", block.Index)
	}

	if got := n.GetBalance(miner.Address); got != blockchain.RewardPerBlock {
		t.Fatalf("miner balance = %v, want %v", got, blockchain.RewardPerBlock)
	}
}

func TestCreateTransactionAdmissionAndSpend(t *testing.T) {
	clock := 1000.0
	n := newTestNode(t, &clock)

	a := mustWallet(t, strings.Repeat("aa", 16))
	b := mustWallet(t, strings.Repeat("bb", 16))

	clock++
	if _, err := n.MineBlock(a.Address); err != nil {
		t.Fatalf("MineBlock: %v", err)
	}
	if got := n.GetBalance(a.Address); got != 80 {
		t.Fatalf("balance[A] after mining = %v, want 80", got)
	}

	clock++
	tx, err := n.CreateTransaction(a.Address, b.Address, 10, a.Seed)
	if err != nil {
		t.Fatalf("CreateTransaction: %v", err)
	}
	if tx.Fee != 0.10 {
		t.Fatalf("fee = %v, want 0.10", tx.Fee)
	}

	clock++
	if _, err := n.MineBlock(a.Address); err != nil {
		t.Fatalf("second MineBlock: %v", err)
	}

	if got := n.GetBalance(a.Address); got != 149.90 {
		t.Fatalf("balance[A] = %v, want 149.90", got)
	}
	if got := n.GetBalance(b.Address); got != 10 {
		t.Fatalf("balance[B] = %v, want 10", got)
	}
	if got := n.GetBalance("feecollector"); got != 0.10 {
		t.Fatalf("balance[feecollector] = %v, want 0.10", got)
	}
}

func TestCreateTransactionInsufficientFunds(t *testing.T) {
	clock := 1000.0
	n := newTestNode(t, &clock)

	a := mustWallet(t, strings.Repeat("cc", 16))
	b := mustWallet(t, strings.Repeat("dd", 16))

	clock++
	if _, err := n.MineBlock(a.Address); err != nil {
		t.Fatalf("MineBlock: %v", err)
	}
	// Force a low balance directly so the admission pipeline's
	// insufficient-funds path is exercised.
	n.mu.Lock()
	n.chain.Ledger.Set(a.Address, 1)
	n.mu.Unlock()

	clock++
	_, err := n.CreateTransaction(a.Address, b.Address, 1, a.Seed)
	nodeErr, ok := err.(*Error)
	if !ok || nodeErr.Kind != InsufficientFunds {
		t.Fatalf("err = %v, want InsufficientFunds", err)
	}

	if got := n.GetBalance(a.Address); got != 1 {
		t.Fatalf("balance[A] mutated on rejected tx: %v", got)
	}
}

func TestCreateTransactionRejectsBadAddress(t *testing.T) {
	clock := 1000.0
	n := newTestNode(t, &clock)
	a := mustWallet(t, strings.Repeat("ee", 16))

	_, err := n.CreateTransaction(a.Address, "not-an-address", 1, a.Seed)
	nodeErr, ok := err.(*Error)
	if !ok || nodeErr.Kind != InvalidAddress {
		t.Fatalf("err = %v, want InvalidAddress", err)
	}
}

func TestCreateTransactionRejectsWrongSeed(t *testing.T) {
	clock := 1000.0
	n := newTestNode(t, &clock)
	a := mustWallet(t, strings.Repeat("ff", 16))
	b := mustWallet(t, strings.Repeat("00", 16))

	clock++
	if _, err := n.MineBlock(a.Address); err != nil {
		t.Fatalf("MineBlock: %v", err)
	}

	_, err := n.CreateTransaction(a.Address, b.Address, 1, "wrong-seed")
	nodeErr, ok := err.(*Error)
	if !ok || nodeErr.Kind != Unauthorized {
		t.Fatalf("err = %v, want Unauthorized", err)
	}
}

func TestSubmitMinedBlockRejectsLowDifficulty(t *testing.T) {
	clock := 1000.0
	n := newTestNode(t, &clock)
	miner := mustWallet(t, strings.Repeat("12", 16))

	head := n.Head()
	clock++
	_, err := n.SubmitMinedBlock(miner.Address, head.Index+1, 0, head.Hash(), clock)
	nodeErr, ok := err.(*Error)
	if !ok || nodeErr.Kind != LowDifficulty {
		t.Fatalf("err = %v, want LowDifficulty", err)
	}
	if nodeErr.Required != 1 {
		t.Fatalf("required = %d, want 1", nodeErr.Required)
	}
}

func TestSubmitMinedBlockRejectsStructuralErrors(t *testing.T) {
	clock := 1000.0
	n := newTestNode(t, &clock)
	miner := mustWallet(t, strings.Repeat("13", 16))
	head := n.Head()

	clock++
	if _, err := n.SubmitMinedBlock(miner.Address, head.Index+5, 0, head.Hash(), clock); err.(*Error).Kind != InvalidIndex {
		t.Fatalf("expected InvalidIndex, got %v", err)
	}
	if _, err := n.SubmitMinedBlock(miner.Address, head.Index+1, 0, "wrong", clock); err.(*Error).Kind != InvalidPrevHash {
		t.Fatalf("expected InvalidPrevHash, got %v", err)
	}
	if _, err := n.SubmitMinedBlock(miner.Address, head.Index+1, 0, head.Hash(), head.Timestamp); err.(*Error).Kind != InvalidTimestamp {
		t.Fatalf("expected InvalidTimestamp, got %v", err)
	}
}

func TestGuardAmplificationRejectsInsufficientProof(t *testing.T) {
	clock := 1000.0
	n := newTestNode(t, &clock)
	n.cfg.Guard = blockchain.GuardConfig{Enabled: true, Window: 300, Threshold: 10}
	n.diff = blockchain.NewDifficulty(1, n.cfg.Retarget, n.cfg.Guard)

	miner := mustWallet(t, strings.Repeat("14", 16))

	// Submit 13 blocks within the window, per spec §8 scenario 6 ("miner M
	// submits 13 blocks within 300s"), so the guard's per-miner window is
	// genuinely populated. SubmitMinedBlock, not MineBlock, is what updates
	// the window (§4.4/§4.7), and each submission's own required difficulty
	// must be met, including whatever the global retarget has done by then.
	for i := 0; i < 13; i++ {
		clock++
		head := n.Head()
		required := requiredDifficultyAfter(n, miner.Address, clock)
		proofN := bruteForceProof(head.ProofN, required)
		if _, err := n.SubmitMinedBlock(miner.Address, head.Index+1, proofN, head.Hash(), clock); err != nil {
			t.Fatalf("SubmitMinedBlock %d: %v", i, err)
		}
	}

	head := n.Head()
	clock++
	wantRequired := requiredDifficultyAfter(n, miner.Address, clock)
	_, err := n.SubmitMinedBlock(miner.Address, head.Index+1, 0, head.Hash(), clock)
	nodeErr, ok := err.(*Error)
	if !ok || nodeErr.Kind != LowDifficulty {
		t.Fatalf("err = %v, want LowDifficulty", err)
	}
	if nodeErr.Required != wantRequired {
		t.Fatalf("required = %d, want %d", nodeErr.Required, wantRequired)
	}
}

func TestMempoolFullRollsBackBalances(t *testing.T) {
	clock := 1000.0
	n := newTestNode(t, &clock)
	n.cfg.Mempool.MaxSize = 1
	n.pool = mempool.New(n.cfg.Mempool)

	a := mustWallet(t, strings.Repeat("21", 16))
	b := mustWallet(t, strings.Repeat("22", 16))
	c := mustWallet(t, strings.Repeat("23", 16))

	clock++
	if _, err := n.MineBlock(a.Address); err != nil {
		t.Fatalf("MineBlock: %v", err)
	}

	clock++
	if _, err := n.CreateTransaction(a.Address, b.Address, 1, a.Seed); err != nil {
		t.Fatalf("first CreateTransaction: %v", err)
	}

	balanceBefore := n.GetBalance(a.Address)
	clock++
	_, err := n.CreateTransaction(a.Address, c.Address, 1, a.Seed)
	nodeErr, ok := err.(*Error)
	if !ok || nodeErr.Kind != MempoolFull {
		t.Fatalf("err = %v, want MempoolFull", err)
	}
	if got := n.GetBalance(a.Address); got != balanceBefore {
		t.Fatalf("balance mutated despite MempoolFull rollback: got %v, want %v", got, balanceBefore)
	}
}

func TestSubscribeReceivesMinedBlocks(t *testing.T) {
	clock := 1000.0
	n := newTestNode(t, &clock)
	a := mustWallet(t, strings.Repeat("24", 16))

	blocks, unsubscribe := n.Subscribe()
	defer unsubscribe()

	clock++
	mined, err := n.MineBlock(a.Address)
	if err != nil {
		t.Fatalf("MineBlock: %v", err)
	}

	select {
	case got := <-blocks:
		if got.Index != mined.Index {
			t.Fatalf("notified index = %d, want %d", got.Index, mined.Index)
		}
	default:
		t.Fatal("expected a block notification, got none")
	}
}

func TestCheckAddressDifficultyReportsGuardStatus(t *testing.T) {
	clock := 1000.0
	n := newTestNode(t, &clock)
	n.cfg.Guard = blockchain.GuardConfig{Enabled: true, Window: 300, Threshold: 10}
	n.diff = blockchain.NewDifficulty(1, n.cfg.Retarget, n.cfg.Guard)

	miner := mustWallet(t, strings.Repeat("26", 16))

	idle := n.CheckAddressDifficulty(miner.Address)
	if idle.Status != "normal" || idle.BlocksPerHour != 0 {
		t.Fatalf("idle address = %+v, want normal/0", idle)
	}

	// Submit via SubmitMinedBlock, not MineBlock: only block acceptance
	// (§4.7) updates the per-miner guard window (§4.4), matching
	// original_source/main.py's submit_mined_block vs block_mining split.
	for i := 0; i < 13; i++ {
		clock++
		head := n.Head()
		required := requiredDifficultyAfter(n, miner.Address, clock)
		proofN := bruteForceProof(head.ProofN, required)
		if _, err := n.SubmitMinedBlock(miner.Address, head.Index+1, proofN, head.Hash(), clock); err != nil {
			t.Fatalf("SubmitMinedBlock %d: %v", i, err)
		}
	}

	amplified := n.CheckAddressDifficulty(miner.Address)
	if amplified.Status != "high" {
		t.Fatalf("amplified status = %q, want high", amplified.Status)
	}
	if amplified.Multiplier <= 1.0 {
		t.Fatalf("amplified multiplier = %v, want > 1.0", amplified.Multiplier)
	}
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	clock := 1000.0
	n := newTestNode(t, &clock)
	a := mustWallet(t, strings.Repeat("25", 16))

	blocks, unsubscribe := n.Subscribe()
	unsubscribe()

	clock++
	if _, err := n.MineBlock(a.Address); err != nil {
		t.Fatalf("MineBlock: %v", err)
	}

	select {
	case <-blocks:
		t.Fatal("expected no notification after unsubscribe")
	default:
	}
}
