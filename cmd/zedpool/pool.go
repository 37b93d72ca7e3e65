// Copyright (c) 2024 The Zedovium developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/zedovium/zedd/internal/blockchain"
)

// shareDifficulty is the pool's own target, deliberately easier than the
// chain's so miners submit shares far more often than they find real blocks.
const shareDifficulty = 8

const inactiveThreshold = time.Hour

type minerStats struct {
	shares     int
	lastActive time.Time
}

type work struct {
	height     uint64
	prevHash   string
	prevProofN uint64
	timestamp  float64
}

// pool tracks share submissions from connected miners and periodically
// distributes the pool's earned block rewards proportionally to shares.
type pool struct {
	nodeURL       string
	rewardAddress string
	feePercent    float64
	http          *http.Client

	mu      sync.Mutex
	current *work
	miners  map[string]*minerStats
}

func newPool(nodeURL, rewardAddress string, feePercent float64) *pool {
	return &pool{
		nodeURL:       nodeURL,
		rewardAddress: rewardAddress,
		feePercent:    feePercent,
		http:          &http.Client{Timeout: 10 * time.Second},
		miners:        make(map[string]*minerStats),
	}
}

func (p *pool) run() {
	go p.updateWorkLoop()
	go p.cleanupInactiveMiners()
}

func (p *pool) updateWorkLoop() {
	for {
		if err := p.updateWork(); err != nil {
			fmt.Printf("pool: work update failed: %v\n", err)
		}
		time.Sleep(30 * time.Second)
	}
}

func (p *pool) updateWork() error {
	var latest blockchain.Block
	if err := p.get("/network/latestblock", &latest); err != nil {
		return err
	}

	w := &work{
		height:     latest.Index + 1,
		prevHash:   latest.Hash(),
		prevProofN: latest.ProofN,
		timestamp:  float64(time.Now().UnixNano()) / 1e9,
	}

	p.mu.Lock()
	p.current = w
	p.mu.Unlock()
	return nil
}

type shareResult struct {
	Valid      bool   `json:"valid"`
	Error      string `json:"error,omitempty"`
	BlockFound bool   `json:"block_found,omitempty"`
	Shares     int    `json:"shares,omitempty"`
}

// validateShare checks a submitted proof against the pool's easier share
// target, and separately attempts to submit it as a real block in case the
// miner happened to clear the chain's harder difficulty too.
func (p *pool) validateShare(minerID string, proofN uint64) shareResult {
	p.mu.Lock()
	w := p.current
	p.mu.Unlock()

	if w == nil {
		return shareResult{Valid: false, Error: "no current work"}
	}
	if !blockchain.SatisfiesDifficulty(w.prevProofN, proofN, shareDifficulty) {
		return shareResult{Valid: false, Error: "low difficulty"}
	}

	blockFound := p.tryBlock(w, proofN)

	p.mu.Lock()
	m, ok := p.miners[minerID]
	if !ok {
		m = &minerStats{}
		p.miners[minerID] = m
	}
	m.shares++
	m.lastActive = time.Now()
	shares := m.shares
	p.mu.Unlock()

	return shareResult{Valid: true, BlockFound: blockFound, Shares: shares}
}

func (p *pool) tryBlock(w *work, proofN uint64) bool {
	body := map[string]interface{}{
		"index":         w.height,
		"proofN":        proofN,
		"prev_hash":     w.prevHash,
		"miner_address": p.rewardAddress,
		"timestamp":     float64(time.Now().UnixNano()) / 1e9,
	}
	var result struct {
		Index uint64 `json:"index"`
		Error string `json:"error"`
	}
	if err := p.post("/mining/submitblock", body, &result); err != nil {
		return false
	}
	return result.Error == ""
}

// distributeRewards pays out the pool's current block reward to every
// miner proportionally to the shares they submitted, then clears tallies.
func (p *pool) distributeRewards() error {
	p.mu.Lock()
	total := 0
	snapshot := make(map[string]int, len(p.miners))
	for id, m := range p.miners {
		total += m.shares
		snapshot[id] = m.shares
	}
	p.mu.Unlock()

	if total == 0 {
		return nil
	}

	var info struct {
		BlockReward float64 `json:"block_reward"`
	}
	if err := p.get("/network/info", &info); err != nil {
		return err
	}
	if info.BlockReward == 0 {
		info.BlockReward = 80
	}

	fee := info.BlockReward * p.feePercent / 100
	rewardPool := info.BlockReward - fee

	for minerID, shares := range snapshot {
		if shares == 0 {
			continue
		}
		reward := (float64(shares) / float64(total)) * rewardPool
		if reward <= 0 {
			continue
		}
		body := map[string]interface{}{
			"sender":    p.rewardAddress,
			"recipient": minerID,
			"amount":    reward,
			"seed":      "POOL_REWARD_SEED",
		}
		var result struct{}
		_ = p.post("/transaction/create", body, &result)
	}

	p.mu.Lock()
	p.miners = make(map[string]*minerStats)
	p.mu.Unlock()
	return nil
}

func (p *pool) cleanupInactiveMiners() {
	for {
		time.Sleep(time.Minute)
		cutoff := time.Now().Add(-inactiveThreshold)

		p.mu.Lock()
		for id, m := range p.miners {
			if m.lastActive.Before(cutoff) {
				delete(p.miners, id)
			}
		}
		p.mu.Unlock()
	}
}

func (p *pool) stats() map[string]interface{} {
	p.mu.Lock()
	defer p.mu.Unlock()

	total := 0
	for _, m := range p.miners {
		total += m.shares
	}
	return map[string]interface{}{
		"miners":       len(p.miners),
		"total_shares": total,
		"difficulty":   shareDifficulty,
	}
}

func (p *pool) get(path string, out interface{}) error {
	resp, err := p.http.Get(p.nodeURL + path)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return json.NewDecoder(resp.Body).Decode(out)
}

func (p *pool) post(path string, body, out interface{}) error {
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}
	resp, err := p.http.Post(p.nodeURL+path, "application/json", bytes.NewReader(data))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return json.NewDecoder(resp.Body).Decode(out)
}
