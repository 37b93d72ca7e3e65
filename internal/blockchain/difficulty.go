// Copyright (c) 2024 The Zedovium developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"math"

	"github.com/zedovium/zedd/internal/zedutil"
)

// RetargetConfig holds the global difficulty retarget parameters: the
// target time between blocks and the chain-length period retargeting
// fires on.
type RetargetConfig struct {
	BlockTimeTarget    float64
	AdjustmentInterval int
}

// GuardConfig holds the Zedovium Guard per-miner amplifier parameters.
type GuardConfig struct {
	Enabled   bool
	Window    float64
	Threshold int
}

// minerWindow is the sliding window of recent block timestamps a single
// miner has produced. The multiplier is not stored; Multiplier derives it
// from this window on each call.
type minerWindow struct {
	blocks []float64
}

// Difficulty is the global difficulty counter plus the per-miner guard
// state. Like Chain, it holds no lock of its own; every exported method
// MUST be called with the owning node's mutex held.
type Difficulty struct {
	Global int

	retarget RetargetConfig
	guard    GuardConfig
	miners   map[string]*minerWindow
}

// NewDifficulty returns a difficulty engine starting at initial with the
// given retarget and guard configuration.
func NewDifficulty(initial int, retarget RetargetConfig, guard GuardConfig) *Difficulty {
	return &Difficulty{
		Global:   initial,
		retarget: retarget,
		guard:    guard,
		miners:   make(map[string]*minerWindow),
	}
}

// Retarget applies the global ±1 adjustment rule once the
// chain's length is a positive multiple of the adjustment interval.
// MUST be called after the new block has already been appended to c.
func (d *Difficulty) Retarget(c *Chain) {
	interval := d.retarget.AdjustmentInterval
	n := c.Len()
	if interval <= 0 || n == 0 || n%interval != 0 {
		return
	}

	last := c.Head()
	prior, ok := c.ByIndex(uint64(n - interval))
	if !ok {
		return
	}

	actual := last.Timestamp - prior.Timestamp
	expected := d.retarget.BlockTimeTarget * float64(interval)

	switch {
	case actual < expected:
		d.Global++
	case actual > expected:
		if d.Global > 1 {
			d.Global--
		}
	}
}

// UpdateMinerWindow prunes miner's window to entries within the guard
// window of now, then appends now to it — exactly once, and only when
// miner is not the reserved node pseudo-address. Node.SubmitMinedBlock
// calls it for every submission that passes the index, prev-hash and
// timestamp checks, before the proof is checked (so a submission later
// rejected for low difficulty is still counted), and regardless of whether
// the guard is currently enabled. Blocks mined locally by Node.MineBlock do
// not update the window.
func (d *Difficulty) UpdateMinerWindow(miner string, now float64) {
	w := d.miners[miner]
	if w == nil {
		w = &minerWindow{}
		d.miners[miner] = w
	}

	w.blocks = pruneWindow(w.blocks, now, d.guard.Window)

	if miner != zedutil.NodeAddress {
		w.blocks = append(w.blocks, now)
	}
}

func pruneWindow(blocks []float64, now, window float64) []float64 {
	kept := blocks[:0]
	for _, t := range blocks {
		if now-t < window {
			kept = append(kept, t)
		}
	}
	return kept
}

// BlocksInWindow reports how many blocks miner produced within the guard
// window as of now, without mutating stored state: the multiplier is a
// pure function of events inside the window at the observation instant.
func (d *Difficulty) BlocksInWindow(miner string, now float64) int {
	w := d.miners[miner]
	if w == nil {
		return 0
	}
	count := 0
	for _, t := range w.blocks {
		if now-t < d.guard.Window {
			count++
		}
	}
	return count
}

// Multiplier returns miner's current difficulty multiplier: 1.0 at or
// below the guard threshold, else 1.0 + 0.5*(count-threshold).
func (d *Difficulty) Multiplier(miner string, now float64) float64 {
	count := d.BlocksInWindow(miner, now)
	if count <= d.guard.Threshold {
		return 1.0
	}
	excess := count - d.guard.Threshold
	return 1.0 + 0.5*float64(excess)
}

// EffectiveDifficulty returns the difficulty miner must satisfy: the
// global difficulty when the guard is disabled, or floor(Global *
// Multiplier) when it is enabled.
func (d *Difficulty) EffectiveDifficulty(miner string, now float64) int {
	if !d.guard.Enabled {
		return d.Global
	}
	return int(math.Floor(float64(d.Global) * d.Multiplier(miner, now)))
}

// GuardEnabled reports whether the Zedovium Guard amplifier is active.
func (d *Difficulty) GuardEnabled() bool { return d.guard.Enabled }

// GuardThreshold returns the block count, within the guard window, above
// which a miner is considered to be mining at high power.
func (d *Difficulty) GuardThreshold() int { return d.guard.Threshold }

// GuardWindow returns the guard's sliding window length in seconds.
func (d *Difficulty) GuardWindow() float64 { return d.guard.Window }
