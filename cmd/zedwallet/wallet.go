// Copyright (c) 2024 The Zedovium developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"encoding/json"
	"fmt"
	"os"
)

// localWallet is the address+seed pair persisted between wallet-cli
// invocations, the Go equivalent of wallet_cli.py's src/data/config.json.
type localWallet struct {
	Address string `json:"address"`
	Seed    string `json:"seed"`
}

func walletPath() string {
	if p := os.Getenv("ZEDWALLET_FILE"); p != "" {
		return p
	}
	return "zedwallet.json"
}

func loadWallet() (*localWallet, error) {
	data, err := os.ReadFile(walletPath())
	if err != nil {
		return nil, fmt.Errorf("no wallet found at %s: use 'new' to create one", walletPath())
	}
	var w localWallet
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("reading wallet file: %w", err)
	}
	return &w, nil
}

func saveWallet(w *localWallet) error {
	data, err := json.MarshalIndent(w, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(walletPath(), data, 0o600)
}
