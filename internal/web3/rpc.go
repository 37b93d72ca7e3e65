// Copyright (c) 2024 The Zedovium developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package web3 is a best-effort Ethereum JSON-RPC façade over the core
// node, letting Ethereum-speaking tooling (wallets, block explorers) read
// chain state without understanding the ZED address scheme. It is
// explicitly non-core: unsupported methods return a JSON-RPC
// error rather than panicking or guessing.
package web3

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/zedovium/zedd/internal/node"
)

// chainID is the arbitrary EVM chain ID Zedovium answers eth_chainId with.
const chainID = 1337

// request is a JSON-RPC 2.0 request envelope.
type request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Method  string          `json:"method"`
	Params  []json.RawMessage `json:"params"`
}

// response is a JSON-RPC 2.0 response envelope.
type response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  interface{}     `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// RPC implements the eth_* methods the original Web3RPC class exposed,
// backed by the core node façade.
type RPC struct {
	n *node.Node

	mu       sync.Mutex
	zedByEth map[string]string
}

// New returns an RPC façade backed by n.
func New(n *node.Node) *RPC {
	return &RPC{n: n, zedByEth: make(map[string]string)}
}

// zedToEth derives a synthetic, one-way Ethereum-shaped address from a ZED
// address, recording the reverse mapping so eth_getBalance can resolve it
// back. This is a display convenience, not a cryptographic identity:
// Zedovium addresses carry no EVM-compatible key material.
func (r *RPC) zedToEth(zedAddr string) string {
	digest := sha256.Sum256([]byte(zedAddr))
	ethAddr := "0x" + hex.EncodeToString(digest[:])[:40]

	r.mu.Lock()
	r.zedByEth[ethAddr] = zedAddr
	r.mu.Unlock()

	return ethAddr
}

func (r *RPC) ethToZed(ethAddr string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	zedAddr, ok := r.zedByEth[ethAddr]
	return zedAddr, ok
}

// ServeHTTP dispatches a single JSON-RPC request to the matching eth_*/
// net_* method.
func (r *RPC) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	var in request
	if err := json.NewDecoder(req.Body).Decode(&in); err != nil {
		writeResponse(w, response{JSONRPC: "2.0", Error: &rpcError{Code: -32700, Message: "parse error"}})
		return
	}

	out := response{JSONRPC: "2.0", ID: in.ID}
	result, err := r.dispatch(in.Method, in.Params)
	if err != nil {
		out.Error = &rpcError{Code: -32601, Message: err.Error()}
	} else {
		out.Result = result
	}
	writeResponse(w, out)
}

func writeResponse(w http.ResponseWriter, out response) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(out)
}

func (r *RPC) dispatch(method string, params []json.RawMessage) (interface{}, error) {
	switch method {
	case "eth_chainId":
		return hexUint(chainID), nil
	case "net_version":
		return strconv.Itoa(chainID), nil
	case "eth_blockNumber":
		return hexUint(r.n.Height()), nil
	case "eth_gasPrice":
		return hexUint(0), nil
	case "eth_getBalance":
		return r.ethGetBalance(params)
	case "eth_getTransactionCount":
		return r.ethGetTransactionCount(params)
	case "eth_getBlockByNumber":
		return r.ethGetBlockByNumber(params)
	case "eth_estimateGas":
		return hexUint(21000), nil
	case "eth_call":
		return "0x", nil
	case "eth_sendTransaction", "eth_sendRawTransaction":
		return nil, fmt.Errorf("%s is not supported: submit transactions via /transaction/create", method)
	default:
		return nil, fmt.Errorf("method %s not found", method)
	}
}

func (r *RPC) ethGetBalance(params []json.RawMessage) (interface{}, error) {
	ethAddr, err := firstStringParam(params)
	if err != nil {
		return nil, err
	}
	zedAddr, ok := r.ethToZed(ethAddr)
	if !ok {
		return hexUint(0), nil
	}
	// decimals=18 for external conversions only.
	wei := uint64(r.n.GetBalance(zedAddr) * 1e18)
	return hexUint(wei), nil
}

func (r *RPC) ethGetTransactionCount(params []json.RawMessage) (interface{}, error) {
	ethAddr, err := firstStringParam(params)
	if err != nil {
		return nil, err
	}
	zedAddr, ok := r.ethToZed(ethAddr)
	if !ok {
		return hexUint(0), nil
	}
	return hexUint(uint64(len(r.n.TransactionsForAddress(zedAddr)))), nil
}

func (r *RPC) ethGetBlockByNumber(params []json.RawMessage) (interface{}, error) {
	if len(params) == 0 {
		return nil, fmt.Errorf("eth_getBlockByNumber requires a block number")
	}
	var tag string
	if err := json.Unmarshal(params[0], &tag); err != nil {
		return nil, err
	}

	var block interface{}
	if tag == "latest" {
		block = r.n.Head()
	} else {
		idx, err := parseHexUint(tag)
		if err != nil {
			return nil, err
		}
		b, err := r.n.BlockByIndex(idx)
		if err != nil {
			return nil, err
		}
		block = b
	}
	return block, nil
}

func firstStringParam(params []json.RawMessage) (string, error) {
	if len(params) == 0 {
		return "", fmt.Errorf("missing required parameter")
	}
	var s string
	if err := json.Unmarshal(params[0], &s); err != nil {
		return "", err
	}
	return s, nil
}

func hexUint(v uint64) string {
	return "0x" + strconv.FormatUint(v, 16)
}

func parseHexUint(s string) (uint64, error) {
	s = strings.TrimPrefix(s, "0x")
	return strconv.ParseUint(s, 16, 64)
}
