// Copyright (c) 2024 The Zedovium developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// zedpool is a share-based mining pool: it aggregates hashing work from many
// miners against an easier internal target, occasionally clears the real
// chain difficulty too, and splits earned block rewards by share count.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/mux"
)

func main() {
	nodeURL := flag.String("node", "", "ZED node URL")
	rewardAddress := flag.String("address", "", "pool reward address")
	listen := flag.String("listen", ":4025", "pool server listen address")
	feePercent := flag.Float64("fee", 1.0, "pool fee percentage")
	rewardInterval := flag.Duration("reward-interval", 10*time.Minute, "how often to distribute rewards")
	flag.Parse()

	if *nodeURL == "" || *rewardAddress == "" {
		fmt.Fprintln(os.Stderr, "zedpool: --node and --address are required")
		os.Exit(1)
	}

	p := newPool(*nodeURL, *rewardAddress, *feePercent)
	p.run()

	go func() {
		for {
			time.Sleep(*rewardInterval)
			if err := p.distributeRewards(); err != nil {
				fmt.Printf("pool: reward distribution failed: %v\n", err)
			}
		}
	}()

	router := newPoolServer(p)
	fmt.Printf("Pool server running on %s\n", *listen)
	fmt.Printf("Connected to node: %s\n", *nodeURL)
	fmt.Printf("Pool fee: %v%%\n", *feePercent)
	if err := http.ListenAndServe(*listen, router); err != nil {
		fmt.Fprintf(os.Stderr, "zedpool: %v\n", err)
		os.Exit(1)
	}
}

func newPoolServer(p *pool) *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/getwork", func(w http.ResponseWriter, r *http.Request) {
		p.mu.Lock()
		cur := p.current
		p.mu.Unlock()
		if cur == nil {
			http.Error(w, "no work available", http.StatusServiceUnavailable)
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"prev_proof": cur.prevProofN,
			"height":     cur.height,
			"difficulty": shareDifficulty,
		})
	}).Methods(http.MethodGet)

	r.HandleFunc("/pool/stats", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, p.stats())
	}).Methods(http.MethodGet)

	r.HandleFunc("/submitshare", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			MinerID string `json:"miner_id"`
			Proof   uint64 `json:"proof"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.MinerID == "" {
			http.Error(w, "missing miner_id or proof", http.StatusBadRequest)
			return
		}
		writeJSON(w, http.StatusOK, p.validateShare(req.MinerID, req.Proof))
	}).Methods(http.MethodPost)

	return r
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
