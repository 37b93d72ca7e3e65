// Copyright (c) 2024 The Zedovium developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package zedjson defines the JSON request and response shapes exchanged
// across the HTTP boundary, one typed struct per endpoint.
package zedjson

import "github.com/zedovium/zedd/internal/blockchain"

// PingResult is the body of GET /ping.
type PingResult struct {
	Result string `json:"result"`
}

// NetworkInfoResult is the body of GET /network/info.
type NetworkInfoResult struct {
	Height      uint64  `json:"height"`
	TotalSupply float64 `json:"total_supply"`
	Difficulty  int     `json:"difficulty"`
	BlockReward float64 `json:"block_reward"`
	NodeCount   int     `json:"node_count"`
	Threshold   int     `json:"threshold"`
	Window      float64 `json:"window"`
	ZedoGuard   bool    `json:"zedoguard"`
}

// ChainResult is the body of GET /network/chain.
type ChainResult struct {
	Length int                 `json:"length"`
	Chain  []*blockchain.Block `json:"chain"`
}

// TotalSupplyResult is the body of GET /network/totalsupply.
type TotalSupplyResult struct {
	TotalSupply float64 `json:"total_supply"`
}

// HashrateResult is the body of GET /network/hashrate.
type HashrateResult struct {
	Hashrate float64 `json:"hashrate"`
}

// FeeEstimateResult is the body of GET /network/fee_estimate.
type FeeEstimateResult struct {
	FeePercent  float64 `json:"fee_percent"`
	Utilisation float64 `json:"utilisation"`
	Pending     int     `json:"pending"`
	Aggregate   float64 `json:"aggregate_fees"`
}

// CheckAddressDifficultyResult is the body of GET /network/checkaddrdiff/{addr}.
type CheckAddressDifficultyResult struct {
	Address        string  `json:"address"`
	Status         string  `json:"status"`
	Message        string  `json:"message"`
	Difficulty     int     `json:"effective_difficulty"`
	BaseDifficulty int     `json:"base_difficulty"`
	Multiplier     float64 `json:"difficulty_multiplier"`
	BlocksPerHour  int     `json:"current_blocks_per_hour"`
	Threshold      int     `json:"threshold"`
	Guard          bool    `json:"guard"`
}

// TransactionEntry wraps a transaction with the height of the block that
// confirmed it, the shape every transaction-lookup endpoint returns.
type TransactionEntry struct {
	blockchain.Transaction
	BlockIndex uint64 `json:"block_index"`
}

// MiningInfoResult is the body of GET /mining/info.
type MiningInfoResult struct {
	Difficulty  int               `json:"difficulty"`
	LatestBlock *blockchain.Block `json:"latestblock"`
}

// SubmitBlockRequest is the body of POST /mining/submitblock.
type SubmitBlockRequest struct {
	Index        uint64  `json:"index"`
	ProofN       uint64  `json:"proofN"`
	PrevHash     string  `json:"prev_hash"`
	MinerAddress string  `json:"miner_address"`
	Timestamp    float64 `json:"timestamp"`
}

// WalletCreateResult is the body of GET /wallet/create.
type WalletCreateResult struct {
	Address string `json:"address"`
	Seed    string `json:"seed"`
}

// WalletImportRequest is the body of POST /wallet/import.
type WalletImportRequest struct {
	Seed string `json:"seed"`
}

// WalletImportResult is the body returned by POST /wallet/import.
type WalletImportResult struct {
	Address string `json:"address"`
}

// WalletValidateResult is the body of GET /wallet/validate/{addr}.
type WalletValidateResult struct {
	Valid bool `json:"valid"`
}

// TransactionCreateRequest is the body of POST /transaction/create.
type TransactionCreateRequest struct {
	Sender    string  `json:"sender"`
	Recipient string  `json:"recipient"`
	Amount    float64 `json:"amount"`
	Seed      string  `json:"seed"`
}

// TransactionCreateResult is the success body of POST /transaction/create.
type TransactionCreateResult struct {
	Status bool    `json:"status"`
	TxID   string  `json:"txid"`
	Fee    float64 `json:"fee"`
}

// MempoolInfoResult is the body of GET /mempool/info.
type MempoolInfoResult struct {
	Pending    int     `json:"pending"`
	MaxSize    int     `json:"max_size"`
	FeePercent float64 `json:"fee_percent"`
}

// ErrorResult is the body returned for every rejected request.
type ErrorResult struct {
	Status     bool    `json:"status"`
	Error      string  `json:"error"`
	Required   int     `json:"required,omitempty"`
	Multiplier float64 `json:"multiplier,omitempty"`
}
