// Copyright (c) 2024 The Zedovium developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/zedovium/zedd/internal/node"
	"github.com/zedovium/zedd/internal/web3"
	"github.com/zedovium/zedd/internal/zedjson"
	"github.com/zedovium/zedd/internal/zedutil"
)

// server wires the core node façade to the HTTP boundary: one handler
// per route, a JSON envelope on every response.
type server struct {
	n    *node.Node
	web3 *web3.RPC
}

// newServer constructs the mux.Router every HTTP endpoint is registered
// against.
func newServer(n *node.Node) *mux.Router {
	s := &server{n: n, web3: web3.New(n)}

	r := mux.NewRouter()
	r.HandleFunc("/ping", s.handlePing).Methods(http.MethodGet)

	r.HandleFunc("/network/info", s.handleNetworkInfo).Methods(http.MethodGet)
	r.HandleFunc("/network/chain", s.handleChain).Methods(http.MethodGet)
	r.HandleFunc("/network/latestblock", s.handleLatestBlock).Methods(http.MethodGet)
	r.HandleFunc("/network/totalsupply", s.handleTotalSupply).Methods(http.MethodGet)
	r.HandleFunc("/network/block/{n}", s.handleBlockByIndex).Methods(http.MethodGet)
	r.HandleFunc("/network/blocks", s.handleRecentBlocks).Methods(http.MethodGet)
	r.HandleFunc("/network/getblockbyhash/{h}", s.handleBlockByHash).Methods(http.MethodGet)
	r.HandleFunc("/network/transactionbyid/{txid}", s.handleTransactionByID).Methods(http.MethodGet)
	r.HandleFunc("/network/transactions/{addr}", s.handleTransactionsForAddress).Methods(http.MethodGet)
	r.HandleFunc("/network/transactions", s.handleRecentTransactions).Methods(http.MethodGet)
	r.HandleFunc("/network/hashrate", s.handleHashrate).Methods(http.MethodGet)
	r.HandleFunc("/network/fee_estimate", s.handleFeeEstimate).Methods(http.MethodGet)
	r.HandleFunc("/network/checkaddrdiff/{addr}", s.handleCheckAddrDiff).Methods(http.MethodGet)
	r.HandleFunc("/network/fee_chart", s.handleFeeChart).Methods(http.MethodGet)

	r.HandleFunc("/user/balance/{addr}", s.handleUserBalance).Methods(http.MethodGet)

	r.HandleFunc("/mining/info", s.handleMiningInfo).Methods(http.MethodGet)
	r.HandleFunc("/mining/submitblock", s.handleSubmitBlock).Methods(http.MethodPost)

	r.HandleFunc("/wallet/create", s.handleWalletCreate).Methods(http.MethodGet)
	r.HandleFunc("/wallet/import", s.handleWalletImport).Methods(http.MethodPost)
	r.HandleFunc("/wallet/validate/{addr}", s.handleWalletValidate).Methods(http.MethodGet)

	r.HandleFunc("/transaction/create", s.handleTransactionCreate).Methods(http.MethodPost)

	r.HandleFunc("/mempool/info", s.handleMempoolInfo).Methods(http.MethodGet)
	r.HandleFunc("/mempool/transactions", s.handleMempoolTransactions).Methods(http.MethodGet)

	r.HandleFunc("/web3", s.web3.ServeHTTP).Methods(http.MethodPost)

	r.HandleFunc("/network/blocks/ws", s.handleBlockFeed).Methods(http.MethodGet)

	return r
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeNodeError(w http.ResponseWriter, err error) {
	nodeErr, ok := err.(*node.Error)
	if !ok {
		writeJSON(w, http.StatusInternalServerError, zedjson.ErrorResult{Status: false, Error: err.Error()})
		return
	}
	writeJSON(w, nodeErr.Kind.HTTPStatus(), zedjson.ErrorResult{
		Status:     false,
		Error:      nodeErr.Kind.String(),
		Required:   nodeErr.Required,
		Multiplier: nodeErr.Multiplier,
	})
}

func countParam(r *http.Request, fallback int) int {
	raw := r.URL.Query().Get("count")
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func (s *server) handlePing(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, zedjson.PingResult{Result: "pong!"})
}

func (s *server) handleNetworkInfo(w http.ResponseWriter, r *http.Request) {
	info := s.n.NetworkInfo()
	writeJSON(w, http.StatusOK, zedjson.NetworkInfoResult{
		Height:      info.Height,
		TotalSupply: info.TotalSupply,
		Difficulty:  info.Difficulty,
		BlockReward: info.BlockReward,
		NodeCount:   info.NodeCount,
		Threshold:   info.Threshold,
		Window:      info.Window,
		ZedoGuard:   info.GuardEnabled,
	})
}

func (s *server) handleChain(w http.ResponseWriter, r *http.Request) {
	blocks := s.n.Chain()
	writeJSON(w, http.StatusOK, zedjson.ChainResult{Length: len(blocks), Chain: blocks})
}

func (s *server) handleLatestBlock(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.n.Head())
}

func (s *server) handleTotalSupply(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, zedjson.TotalSupplyResult{TotalSupply: s.n.TotalSupply()})
}

func (s *server) handleBlockByIndex(w http.ResponseWriter, r *http.Request) {
	idx, err := strconv.ParseUint(mux.Vars(r)["n"], 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, zedjson.ErrorResult{Status: false, Error: "InvalidIndex"})
		return
	}
	block, err := s.n.BlockByIndex(idx)
	if err != nil {
		writeNodeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, block)
}

func (s *server) handleRecentBlocks(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.n.RecentBlocks(countParam(r, 10)))
}

func (s *server) handleBlockByHash(w http.ResponseWriter, r *http.Request) {
	block, err := s.n.BlockByHash(mux.Vars(r)["h"])
	if err != nil {
		writeNodeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, block)
}

func toTransactionEntry(rec node.TransactionRecord) zedjson.TransactionEntry {
	return zedjson.TransactionEntry{Transaction: rec.Transaction, BlockIndex: rec.BlockIndex}
}

func (s *server) handleTransactionByID(w http.ResponseWriter, r *http.Request) {
	rec, err := s.n.TransactionByID(mux.Vars(r)["txid"])
	if err != nil {
		writeNodeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toTransactionEntry(rec))
}

func (s *server) handleTransactionsForAddress(w http.ResponseWriter, r *http.Request) {
	recs := s.n.TransactionsForAddress(mux.Vars(r)["addr"])
	out := make([]zedjson.TransactionEntry, len(recs))
	for i, rec := range recs {
		out[i] = toTransactionEntry(rec)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *server) handleRecentTransactions(w http.ResponseWriter, r *http.Request) {
	recs := s.n.RecentTransactions(countParam(r, 10))
	out := make([]zedjson.TransactionEntry, len(recs))
	for i, rec := range recs {
		out[i] = toTransactionEntry(rec)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *server) handleHashrate(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, zedjson.HashrateResult{Hashrate: s.n.Hashrate()})
}

func (s *server) handleFeeEstimate(w http.ResponseWriter, r *http.Request) {
	fe := s.n.FeeEstimate()
	writeJSON(w, http.StatusOK, zedjson.FeeEstimateResult{
		FeePercent:  fe.FeePercent,
		Utilisation: fe.Utilisation,
		Pending:     fe.Pending,
		Aggregate:   fe.Aggregate,
	})
}

func (s *server) handleCheckAddrDiff(w http.ResponseWriter, r *http.Request) {
	addr := mux.Vars(r)["addr"]
	if !zedutil.Validate(addr) {
		writeJSON(w, http.StatusBadRequest, zedjson.ErrorResult{Status: false, Error: "InvalidAddress"})
		return
	}
	ad := s.n.CheckAddressDifficulty(addr)
	writeJSON(w, http.StatusOK, zedjson.CheckAddressDifficultyResult{
		Address:        addr,
		Status:         ad.Status,
		Message:        ad.Message,
		Difficulty:     ad.Difficulty,
		BaseDifficulty: ad.BaseDifficulty,
		Multiplier:     ad.Multiplier,
		BlocksPerHour:  ad.BlocksPerHour,
		Threshold:      ad.Threshold,
		Guard:          ad.Guard,
	})
}

func (s *server) handleFeeChart(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, struct {
		Points []float64 `json:"points"`
	}{Points: s.n.FeeCurve(10)})
}

func (s *server) handleUserBalance(w http.ResponseWriter, r *http.Request) {
	addr := mux.Vars(r)["addr"]
	writeJSON(w, http.StatusOK, struct {
		Balance float64 `json:"balance"`
	}{Balance: s.n.GetBalance(addr)})
}

func (s *server) handleMiningInfo(w http.ResponseWriter, r *http.Request) {
	mi := s.n.MiningInfo()
	writeJSON(w, http.StatusOK, zedjson.MiningInfoResult{Difficulty: mi.Difficulty, LatestBlock: mi.LatestBlock})
}

func (s *server) handleSubmitBlock(w http.ResponseWriter, r *http.Request) {
	var req zedjson.SubmitBlockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, zedjson.ErrorResult{Status: false, Error: "InvalidIndex"})
		return
	}

	block, err := s.n.SubmitMinedBlock(req.MinerAddress, req.Index, req.ProofN, req.PrevHash, req.Timestamp)
	if err != nil {
		writeNodeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, block)
}

func (s *server) handleWalletCreate(w http.ResponseWriter, r *http.Request) {
	wallet, err := zedutil.Generate("")
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, zedjson.ErrorResult{Status: false, Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, zedjson.WalletCreateResult{Address: wallet.Address, Seed: wallet.Seed})
}

func (s *server) handleWalletImport(w http.ResponseWriter, r *http.Request) {
	var req zedjson.WalletImportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, zedjson.ErrorResult{Status: false, Error: "InvalidAddress"})
		return
	}
	wallet, err := zedutil.Import(req.Seed)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, zedjson.ErrorResult{Status: false, Error: "InvalidAddress"})
		return
	}
	writeJSON(w, http.StatusOK, zedjson.WalletImportResult{Address: wallet.Address})
}

func (s *server) handleWalletValidate(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, zedjson.WalletValidateResult{Valid: zedutil.Validate(mux.Vars(r)["addr"])})
}

func (s *server) handleTransactionCreate(w http.ResponseWriter, r *http.Request) {
	var req zedjson.TransactionCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, zedjson.ErrorResult{Status: false, Error: "InvalidAddress"})
		return
	}

	tx, err := s.n.CreateTransaction(req.Sender, req.Recipient, req.Amount, req.Seed)
	if err != nil {
		writeNodeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, zedjson.TransactionCreateResult{Status: true, TxID: tx.TxID, Fee: tx.Fee})
}

func (s *server) handleMempoolInfo(w http.ResponseWriter, r *http.Request) {
	mi := s.n.MempoolInfo()
	writeJSON(w, http.StatusOK, zedjson.MempoolInfoResult{
		Pending:    mi.Pending,
		MaxSize:    mi.MaxSize,
		FeePercent: mi.FeePercent,
	})
}

func (s *server) handleMempoolTransactions(w http.ResponseWriter, r *http.Request) {
	count := countParam(r, 1000)
	if count > 1000 {
		count = 1000
	}
	writeJSON(w, http.StatusOK, s.n.MempoolTransactions(count))
}

var blockFeedUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// handleBlockFeed streams newly accepted blocks to the caller as they're
// mined, for collaborators such as a mining pool's work loop that would
// rather be pushed new work than poll for it.
func (s *server) handleBlockFeed(w http.ResponseWriter, r *http.Request) {
	conn, err := blockFeedUpgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	blocks, unsubscribe := s.n.Subscribe()
	defer unsubscribe()

	for block := range blocks {
		if err := conn.WriteJSON(block); err != nil {
			return
		}
	}
}
