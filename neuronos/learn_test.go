// Copyright (c) 2024, The NeuronOS Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package neuronos

import (
	"testing"

	"github.com/goki/mat32"
)

func TestWtClamp(t *testing.T) {
	lp := LearnParams{}
	lp.Defaults()

	sy := &Synapse{}
	sy.Init(0.5)

	sy.DWt = 10
	lp.ApplyDWt(sy)
	if sy.Wt != lp.WtRange.Max {
		t.Errorf("weight above range: got %v, want %v", sy.Wt, lp.WtRange.Max)
	}
	sy.DWt = -10
	lp.ApplyDWt(sy)
	if sy.Wt != lp.WtRange.Min {
		t.Errorf("weight below range: got %v, want %v", sy.Wt, lp.WtRange.Min)
	}
	if sy.DWt != 0 {
		t.Errorf("dwt should be consumed by ApplyDWt, got %v", sy.DWt)
	}
}

func TestStdpDWt(t *testing.T) {
	lp := LearnParams{}
	lp.Defaults()

	effLrate := lp.EffLrate(1, 1)
	if mat32.Abs(effLrate-lp.Lrate) > difTol {
		t.Errorf("neutral effective lrate: got %v, want %v", effLrate, lp.Lrate)
	}

	// causal pairing potentiates
	sy := &Synapse{}
	sy.Init(0.5)
	lp.StdpDWt(sy, 2, effLrate)
	if sy.DWt <= 0 {
		t.Errorf("causal pairing should potentiate, dwt %v", sy.DWt)
	}
	pot := sy.DWt
	trg := effLrate * lp.Stdp.APlus * mat32.FastExp(-2/lp.Stdp.TauPlus)
	CmprFloats([]float32{pot}, []float32{trg}, "causal dwt", t)

	// anti-causal pairing depresses
	sy.Init(0.5)
	lp.StdpDWt(sy, -2, effLrate)
	if sy.DWt >= 0 {
		t.Errorf("anti-causal pairing should depress, dwt %v", sy.DWt)
	}

	// modulation and plasticity multiplier scale the change linearly
	sy.Init(0.5)
	lp.StdpDWt(sy, 2, lp.EffLrate(2, 0.5))
	CmprFloats([]float32{sy.DWt}, []float32{pot}, "scaled dwt", t)
}

// TestRewardTrace verifies three-factor learning: with a positive
// eligibility trace, a reward strictly increases the weight, in proportion
// to lrate * reward * trace.
func TestRewardTrace(t *testing.T) {
	lp := LearnParams{}
	lp.Defaults()
	lp.Stdp.On = false // isolate the reward term

	sy := &Synapse{}
	sy.Init(0.5)
	sy.Elig = 1

	effLrate := lp.EffLrate(1, 1)
	lp.TraceStep(sy, 1, 0.8, effLrate)
	eligDecayed := lp.Trace.Decay(1, 1)
	trg := effLrate * 0.8 * eligDecayed
	CmprFloats([]float32{sy.DWt}, []float32{trg}, "reward dwt", t)

	dwt1 := sy.DWt
	wt0 := sy.Wt
	lp.ApplyDWt(sy)
	if sy.Wt <= wt0 {
		t.Errorf("reward with positive trace should strictly increase weight: %v -> %v", wt0, sy.Wt)
	}

	// halving the reward halves the change
	sy2 := &Synapse{}
	sy2.Init(0.5)
	sy2.Elig = 1
	lp.TraceStep(sy2, 1, 0.4, effLrate)
	CmprFloats([]float32{dwt1}, []float32{2 * sy2.DWt}, "reward proportionality", t)

	// no reward: trace decays, no weight change
	sy3 := &Synapse{}
	sy3.Init(0.5)
	sy3.Elig = 1
	lp.TraceStep(sy3, 1, 0, effLrate)
	if sy3.DWt != 0 {
		t.Errorf("no reward should not change weight, dwt %v", sy3.DWt)
	}
	if sy3.Elig >= 1 {
		t.Errorf("trace should decay, elig %v", sy3.Elig)
	}
}

func TestPrune(t *testing.T) {
	lp := LearnParams{}
	lp.Defaults()
	lp.Prune.Ticks = 3

	sy := &Synapse{}
	sy.Init(0)
	for i := 0; i < 3; i++ {
		if lp.ShouldPrune(sy) {
			t.Fatalf("tick %v: pruned too early, zero ticks %v", i, sy.ZeroTicks)
		}
		lp.ApplyDWt(sy)
	}
	if !lp.ShouldPrune(sy) {
		t.Errorf("weight at zero for %v ticks should prune", sy.ZeroTicks)
	}

	// any nonzero weight resets the count
	sy.DWt = 0.1
	lp.ApplyDWt(sy)
	if sy.ZeroTicks != 0 {
		t.Errorf("nonzero weight should reset zero ticks, got %v", sy.ZeroTicks)
	}
}

func TestWtInitGen(t *testing.T) {
	lp := LearnParams{}
	lp.Defaults()
	rnd := NewRand(42)

	lo := float32(lp.WtInit.Mean - lp.WtInit.Var)
	hi := float32(lp.WtInit.Mean + lp.WtInit.Var)
	for i := 0; i < 100; i++ {
		wt := lp.WtInit.Gen(rnd)
		if wt < lo || wt > hi {
			t.Fatalf("draw %v: weight %v outside [%v, %v]", i, wt, lo, hi)
		}
	}

	// same seed, same stream
	r1 := NewRand(7)
	r2 := NewRand(7)
	for i := 0; i < 10; i++ {
		if lp.WtInit.Gen(r1) != lp.WtInit.Gen(r2) {
			t.Fatalf("draw %v: same seed should give identical weights", i)
		}
	}
}

func TestNonFiniteDWt(t *testing.T) {
	lp := LearnParams{}
	lp.Defaults()

	sy := &Synapse{}
	sy.Init(0.5)
	sy.DWt = mat32.NaN()
	lp.ApplyDWt(sy)
	if sy.Wt != 0.5 {
		t.Errorf("NaN dwt should be discarded, wt %v", sy.Wt)
	}
	if mat32.IsNaN(sy.DWt) {
		t.Errorf("NaN dwt should be cleared")
	}
}
