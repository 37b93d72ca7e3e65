// Copyright (c) 2024 The Zedovium developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package blockchain implements the ZED ledger: the block and transaction
// types, the append-only chain store with atomic persistence, the
// replay-derived balance ledger, and the difficulty retarget / guard
// engine.  Everything here is a pure, lock-free data structure; the single
// mutex serializing access to it lives one layer up, in package node, per
// the concurrency model.
package blockchain

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/crypto/blake2b"
)

// GenesisPrevHash is the prev_hash value carried by the genesis block,
// which has no predecessor.
const GenesisPrevHash = "0"

// RewardPerBlock is the fixed quantity credited to the miner of every
// accepted block. This chain pays a flat reward forever; there is no
// halving or reduction interval.
const RewardPerBlock = 80.0

// Transaction is an admitted value transfer.  Transactions are immutable
// once constructed; every field is assigned exactly once, at admission
// time.
type Transaction struct {
	Sender     string  `json:"sender"`
	Recipient  string  `json:"recipient"`
	Quantity   float64 `json:"quantity"`
	Fee        float64 `json:"fee"`
	FeePercent float64 `json:"fee_percent"`
	TxID       string  `json:"txid"`
	Timestamp  float64 `json:"timestamp"`
}

// canonicalString renders tx the same way on every process, in a fixed
// field order, so that it can be folded into a block's hash preimage
// deterministically.
func (tx Transaction) canonicalString() string {
	var b strings.Builder
	b.WriteString("{sender:")
	b.WriteString(tx.Sender)
	b.WriteString(" recipient:")
	b.WriteString(tx.Recipient)
	b.WriteString(" quantity:")
	b.WriteString(formatAmount(tx.Quantity))
	b.WriteString(" fee:")
	b.WriteString(formatAmount(tx.Fee))
	b.WriteString(" fee_percent:")
	b.WriteString(formatAmount(tx.FeePercent))
	b.WriteString(" txid:")
	b.WriteString(tx.TxID)
	b.WriteString(" timestamp:")
	b.WriteString(formatAmount(tx.Timestamp))
	b.WriteString("}")
	return b.String()
}

// formatAmount renders a float deterministically across processes and Go
// versions, unlike fmt's %v/%g which may vary in precision selection.
func formatAmount(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// transactionsString renders a transaction list in the stable textual form
// the block hash preimage requires.
func transactionsString(txs []Transaction) string {
	parts := make([]string, len(txs))
	for i, tx := range txs {
		parts[i] = tx.canonicalString()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// Block is an immutable record in the chain: its height, the proof nonce
// that satisfied the difficulty in force when it was accepted, the hash of
// its predecessor, its transaction list, and its acceptance timestamp.
type Block struct {
	Index        uint64        `json:"index"`
	ProofN       uint64        `json:"proofN"`
	PrevHash     string        `json:"prev_hash"`
	Transactions []Transaction `json:"transactions"`
	Timestamp    float64       `json:"timestamp"`
}

// NewGenesisBlock constructs the block every chain begins with: height
// zero, a zero nonce, no predecessor, and no transactions.
func NewGenesisBlock(timestamp float64) *Block {
	return &Block{
		Index:        0,
		ProofN:       0,
		PrevHash:     GenesisPrevHash,
		Transactions: nil,
		Timestamp:    timestamp,
	}
}

// Hash returns the block's canonical hash: the lowercase hex encoding of
// the 512-bit digest of the textual concatenation
// "index|proofN|prev_hash|transactions|timestamp". It is recomputed on
// every call rather than cached, so it is always consistent with the
// block's current field values and deterministic across processes.
func (b *Block) Hash() string {
	preimage := fmt.Sprintf("%d|%d|%s|%s|%s",
		b.Index, b.ProofN, b.PrevHash, transactionsString(b.Transactions),
		formatAmount(b.Timestamp))
	digest := blake2b.Sum512([]byte(preimage))
	return hex.EncodeToString(digest[:])
}

// ProofDigest returns the lowercase hex digest used by the proof rule: the
// 512-bit digest of the concatenation of the previous block's proof nonce
// and the candidate nonce, both rendered in base 10.
func ProofDigest(prevProofN, proofN uint64) string {
	guess := fmt.Sprintf("%d%d", prevProofN, proofN)
	digest := blake2b.Sum512([]byte(guess))
	return hex.EncodeToString(digest[:])
}

// SatisfiesDifficulty reports whether the proof digest for (prevProofN,
// proofN) begins with at least difficulty leading hex zero characters.
func SatisfiesDifficulty(prevProofN, proofN uint64, difficulty int) bool {
	digest := ProofDigest(prevProofN, proofN)
	if difficulty <= 0 {
		return true
	}
	if difficulty > len(digest) {
		return false
	}
	return digest[:difficulty] == strings.Repeat("0", difficulty)
}

// TxID computes the content-independent transaction identifier: the
// lowercase hex 512-bit digest of the concatenated admission timestamp and
// chain length at admission time.
func TxID(timestamp float64, chainLength uint64) string {
	preimage := fmt.Sprintf("%s%d", formatAmount(timestamp), chainLength)
	digest := blake2b.Sum512([]byte(preimage))
	return hex.EncodeToString(digest[:])
}
