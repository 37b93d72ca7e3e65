// Copyright (c) 2024 The Zedovium developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
)

// Chain is the append-only block list plus its hash index and the ledger
// derived from replaying it.  Chain itself holds no lock: every exported
// method here MUST be called with the owning node's mutex held.
type Chain struct {
	Blocks    []*Block
	hashIndex map[string]*Block
	Ledger    *Ledger

	path         string
	feeRecipient string
}

// Open loads the chain persisted at path, replaying it into a ledger and
// hash index. If no file exists yet, a fresh genesis block is constructed
// using now() and persisted immediately. feeRecipient is the address
// replay credits transaction fees to, matching the live fee-credit path in
// block construction.
func Open(path, feeRecipient string, now func() float64) (*Chain, error) {
	blocks, err := load(path)
	if err != nil {
		return nil, err
	}

	freshGenesis := false
	if len(blocks) == 0 {
		blocks = []*Block{NewGenesisBlock(now())}
		freshGenesis = true
	}

	c := &Chain{
		Blocks:       blocks,
		path:         path,
		feeRecipient: feeRecipient,
	}
	c.rebuildIndex()
	c.Ledger = ReplayLedger(c.Blocks, feeRecipient)

	if freshGenesis {
		if err := Save(path, c.Blocks); err != nil {
			return nil, err
		}
	}

	return c, nil
}

func load(path string) ([]*Block, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var blocks []*Block
	if err := json.Unmarshal(data, &blocks); err != nil {
		return nil, err
	}
	return blocks, nil
}

// rebuildIndex reconstructs the hash index from the current block list.
// Open always rebuilds it in full from the loaded blocks, so the index
// never drifts from the block list it is derived from; Append then keeps
// it current as new blocks are added.
func (c *Chain) rebuildIndex() {
	c.hashIndex = make(map[string]*Block, len(c.Blocks))
	for _, b := range c.Blocks {
		c.hashIndex[b.Hash()] = b
	}
}

// Append adds b to the chain and updates the hash index. It does not touch
// the ledger: balance mutations happen as transactions are admitted and
// blocks constructed, not as a side effect of appending.
func (c *Chain) Append(b *Block) {
	c.Blocks = append(c.Blocks, b)
	c.hashIndex[b.Hash()] = b
}

// Head returns the most recently appended block.
func (c *Chain) Head() *Block {
	return c.Blocks[len(c.Blocks)-1]
}

// Len returns the number of blocks in the chain, including genesis.
func (c *Chain) Len() int {
	return len(c.Blocks)
}

// ByIndex returns the block at height i, if any.
func (c *Chain) ByIndex(i uint64) (*Block, bool) {
	if i >= uint64(len(c.Blocks)) {
		return nil, false
	}
	return c.Blocks[i], true
}

// ByHash returns the block with the given canonical hash, if any.
func (c *Chain) ByHash(hash string) (*Block, bool) {
	b, ok := c.hashIndex[hash]
	return b, ok
}

// Snapshot returns a shallow copy of the block slice suitable for handing
// to Save after releasing the node's lock: blocks are never mutated after
// construction, so copying the slice header is enough to let persistence
// run concurrently with further appends.
func (c *Chain) Snapshot() []*Block {
	out := make([]*Block, len(c.Blocks))
	copy(out, c.Blocks)
	return out
}

// Path returns the file the chain persists to.
func (c *Chain) Path() string {
	return c.path
}

// Save writes blocks to path using a write-to-temp-and-atomic-rename
// sequence, so a crash mid-write never corrupts the previously committed
// file. It performs the only disk write in this package and is designed to
// be called without the node's lock held, operating on a Snapshot instead
// of the live Chain.
func Save(path string, blocks []*Block) error {
	data, err := json.Marshal(blocks)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".chain-*.tmp")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}

	return os.Rename(tmpPath, path)
}
