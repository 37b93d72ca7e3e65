// Copyright (c) 2024 The Zedovium developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"path/filepath"
	"testing"

	"github.com/zedovium/zedd/internal/zedutil"
)

func chainWithTimestamps(t *testing.T, timestamps []float64) *Chain {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "chain.json")

	c, err := Open(path, "feecollector", func() float64 { return timestamps[0] })
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	for i, ts := range timestamps[1:] {
		c.Append(&Block{
			Index:     uint64(i + 1),
			PrevHash:  c.Head().Hash(),
			Timestamp: ts,
		})
	}
	return c
}

func TestRetargetIncreasesWhenBlocksComeFast(t *testing.T) {
	// 12 blocks (genesis + 11) spanning half the expected time for an
	// adjustment interval of 12 fires a +1 retarget.
	timestamps := make([]float64, 12)
	for i := range timestamps {
		timestamps[i] = float64(i) * 5 // 5s spacing, target is 10s
	}
	c := chainWithTimestamps(t, timestamps)

	d := NewDifficulty(1, RetargetConfig{BlockTimeTarget: 10, AdjustmentInterval: 12}, GuardConfig{})
	d.Retarget(c)

	if d.Global != 2 {
		t.Fatalf("Global = %d, want 2", d.Global)
	}
}

func TestRetargetDecreasesWhenBlocksComeSlow(t *testing.T) {
	timestamps := make([]float64, 12)
	for i := range timestamps {
		timestamps[i] = float64(i) * 20 // 20s spacing, target is 10s
	}
	c := chainWithTimestamps(t, timestamps)

	d := NewDifficulty(3, RetargetConfig{BlockTimeTarget: 10, AdjustmentInterval: 12}, GuardConfig{})
	d.Retarget(c)

	if d.Global != 2 {
		t.Fatalf("Global = %d, want 2", d.Global)
	}
}

func TestRetargetFloorsAtOne(t *testing.T) {
	timestamps := make([]float64, 12)
	for i := range timestamps {
		timestamps[i] = float64(i) * 20
	}
	c := chainWithTimestamps(t, timestamps)

	d := NewDifficulty(1, RetargetConfig{BlockTimeTarget: 10, AdjustmentInterval: 12}, GuardConfig{})
	d.Retarget(c)

	if d.Global != 1 {
		t.Fatalf("Global = %d, want 1 (floored)", d.Global)
	}
}

func TestRetargetNoopOffBoundary(t *testing.T) {
	timestamps := make([]float64, 5)
	for i := range timestamps {
		timestamps[i] = float64(i) * 5
	}
	c := chainWithTimestamps(t, timestamps)

	d := NewDifficulty(4, RetargetConfig{BlockTimeTarget: 10, AdjustmentInterval: 12}, GuardConfig{})
	d.Retarget(c)

	if d.Global != 4 {
		t.Fatalf("Global = %d, want unchanged 4", d.Global)
	}
}

func TestGuardDisabledAlwaysReturnsGlobal(t *testing.T) {
	d := NewDifficulty(5, RetargetConfig{}, GuardConfig{Enabled: false, Window: 60, Threshold: 3})
	for i := 0; i < 10; i++ {
		d.UpdateMinerWindow("miner1", float64(i))
	}
	if got := d.EffectiveDifficulty("miner1", 100); got != 5 {
		t.Fatalf("EffectiveDifficulty = %d, want 5 (guard disabled)", got)
	}
}

func TestGuardAmplifiesAboveThreshold(t *testing.T) {
	d := NewDifficulty(4, RetargetConfig{}, GuardConfig{Enabled: true, Window: 1000, Threshold: 3})

	now := 0.0
	for i := 0; i < 5; i++ {
		d.UpdateMinerWindow("miner1", now)
		now++
	}
	// 5 blocks within the window, threshold 3: multiplier = 1 + 0.5*(5-3) = 2.0
	if got := d.Multiplier("miner1", now); got != 2.0 {
		t.Fatalf("Multiplier = %v, want 2.0", got)
	}
	if got := d.EffectiveDifficulty("miner1", now); got != 8 {
		t.Fatalf("EffectiveDifficulty = %d, want 8", got)
	}
}

func TestGuardWindowPrunesOldEntries(t *testing.T) {
	d := NewDifficulty(4, RetargetConfig{}, GuardConfig{Enabled: true, Window: 10, Threshold: 1})

	d.UpdateMinerWindow("miner1", 0)
	d.UpdateMinerWindow("miner1", 1)
	// Far past the window: both earlier entries should be pruned out.
	d.UpdateMinerWindow("miner1", 100)

	if got := d.BlocksInWindow("miner1", 100); got != 1 {
		t.Fatalf("BlocksInWindow = %d, want 1 (stale entries pruned)", got)
	}
}

func TestGuardSkipsNodeAddress(t *testing.T) {
	d := NewDifficulty(4, RetargetConfig{}, GuardConfig{Enabled: true, Window: 1000, Threshold: 1})

	for i := 0; i < 5; i++ {
		d.UpdateMinerWindow(zedutil.NodeAddress, float64(i))
	}
	if got := d.BlocksInWindow(zedutil.NodeAddress, 100); got != 0 {
		t.Fatalf("BlocksInWindow for node address = %d, want 0", got)
	}
}

func TestGuardAppendsExactlyOncePerBlock(t *testing.T) {
	d := NewDifficulty(4, RetargetConfig{}, GuardConfig{Enabled: true, Window: 1000, Threshold: 100})

	d.UpdateMinerWindow("miner1", 0)
	if got := d.BlocksInWindow("miner1", 0); got != 1 {
		t.Fatalf("BlocksInWindow after one update = %d, want 1 (no duplicate append)", got)
	}
}
