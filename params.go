// Copyright (c) 2024 The Zedovium developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"github.com/zedovium/zedd/internal/blockchain"
	"github.com/zedovium/zedd/internal/mempool"
)

// Params bundles every consensus-affecting constant a zedd instance runs
// with. Zedovium defines a single network: there is no test/simulation
// net split, so Params has no name or magic byte field, only the tunables
// miners and wallets need defaults for.
type Params struct {
	RewardPerBlock float64
	Retarget       blockchain.RetargetConfig
	Guard          blockchain.GuardConfig
	Mempool        mempool.Config
}

// DefaultParams returns the network's default consensus constants.
func DefaultParams() Params {
	return Params{
		RewardPerBlock: blockchain.RewardPerBlock,
		Retarget: blockchain.RetargetConfig{
			BlockTimeTarget:    300,
			AdjustmentInterval: 12,
		},
		Guard: blockchain.GuardConfig{
			Enabled:   false,
			Window:    300,
			Threshold: 10,
		},
		Mempool: mempool.DefaultConfig(),
	}
}
