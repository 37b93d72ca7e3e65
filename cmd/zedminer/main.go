// Copyright (c) 2024 The Zedovium developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// zedminer is a standalone external miner: it polls a zedd node for the
// current mining target, brute-forces a proof, and submits the resulting
// block, the Go counterpart of the original miner.py polling loop.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/zedovium/zedd/internal/blockchain"
)

func main() {
	nodeURL := flag.String("node", "http://127.0.0.1:4000", "zedd node URL to mine against")
	minerAddress := flag.String("address", "", "address to receive block rewards")
	flag.Parse()

	if *minerAddress == "" {
		fmt.Fprintln(os.Stderr, "zedminer: --address is required")
		os.Exit(1)
	}

	m := &miner{nodeURL: *nodeURL, address: *minerAddress, http: &http.Client{Timeout: 10 * time.Second}}
	m.run()
}

type miningInfoResponse struct {
	Difficulty  int              `json:"difficulty"`
	LatestBlock *blockchain.Block `json:"latestblock"`
}

type checkAddrDiffResponse struct {
	Difficulty int     `json:"effective_difficulty"`
	Multiplier float64 `json:"difficulty_multiplier"`
}

type submitBlockResponse struct {
	Index uint64 `json:"index"`
	Error string `json:"error"`
}

type miner struct {
	nodeURL string
	address string
	http    *http.Client

	blocksMined int
}

func (m *miner) run() {
	fmt.Printf("Zedovium miner starting, mining to %s against %s\n", m.address, m.nodeURL)

	for {
		if err := m.mineOnce(); err != nil {
			fmt.Fprintf(os.Stderr, "miner: %v, retrying in 5s\n", err)
			time.Sleep(5 * time.Second)
		}
	}
}

func (m *miner) mineOnce() error {
	var info miningInfoResponse
	if err := m.get("/mining/info", &info); err != nil {
		return fmt.Errorf("fetching mining info: %w", err)
	}

	var addrDiff checkAddrDiffResponse
	if err := m.get("/network/checkaddrdiff/"+m.address, &addrDiff); err != nil {
		return fmt.Errorf("fetching address difficulty: %w", err)
	}

	last := info.LatestBlock
	start := time.Now()
	proofN, hashrate := proofOfWork(last.ProofN, addrDiff.Difficulty)
	elapsed := time.Since(start)

	block := map[string]interface{}{
		"index":         last.Index + 1,
		"proofN":        proofN,
		"prev_hash":     last.Hash(),
		"miner_address": m.address,
		"timestamp":     float64(time.Now().UnixNano()) / 1e9,
	}

	var result submitBlockResponse
	if err := m.post("/mining/submitblock", block, &result); err != nil {
		return fmt.Errorf("submitting block: %w", err)
	}

	if result.Error != "" {
		fmt.Printf("[%s] block rejected: %s (hashrate %.0f H/s, %.2fs)\n",
			time.Now().Format(time.Kitchen), result.Error, hashrate, elapsed.Seconds())
		return nil
	}

	m.blocksMined++
	fmt.Printf("[%s] block accepted! height %d | hashrate %.0f H/s | %.2fs | total mined %d\n",
		time.Now().Format(time.Kitchen), result.Index, hashrate, elapsed.Seconds(), m.blocksMined)
	return nil
}

// proofOfWork brute-forces a nonce satisfying difficulty against prevProofN,
// returning it alongside the achieved hash rate.
func proofOfWork(prevProofN uint64, difficulty int) (uint64, float64) {
	start := time.Now()
	var proofN uint64
	for !blockchain.SatisfiesDifficulty(prevProofN, proofN, difficulty) {
		proofN++
	}
	elapsed := time.Since(start).Seconds()
	if elapsed <= 0 {
		return proofN, 0
	}
	return proofN, float64(proofN) / elapsed
}

func (m *miner) get(path string, out interface{}) error {
	resp, err := m.http.Get(m.nodeURL + path)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return json.NewDecoder(resp.Body).Decode(out)
}

func (m *miner) post(path string, body, out interface{}) error {
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}
	resp, err := m.http.Post(m.nodeURL+path, "application/json", bytes.NewReader(data))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return json.NewDecoder(resp.Body).Decode(out)
}
