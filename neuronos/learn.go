// Copyright (c) 2024, The NeuronOS Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package neuronos

import (
	"github.com/emer/emergent/erand"
	"github.com/emer/etable/minmax"
	"github.com/goki/mat32"

	"github.com/neuronos/neuronos/stdp"
)

// neuronos.LearnParams manages synaptic plasticity for a layer: spike-timing
// dependent updates, eligibility traces for reward-driven learning, and
// pruning of connections that have decayed to zero.
type LearnParams struct {
	On      bool         `desc:"enable plasticity -- if off, weights are frozen after initialization"`
	Lrate   float32      `def:"0.01" desc:"base learning rate -- scaled at run time by module modulation and the controller's plasticity multiplier"`
	WtRange minmax.F32   `desc:"allowed range for weight values -- all updates are clamped to this range"`
	Stdp    stdp.Params  `view:"inline" desc:"spike-timing dependent plasticity window parameters"`
	Trace   stdp.Trace   `view:"inline" desc:"eligibility trace parameters for reward-driven (three-factor) learning"`
	Prune   PruneParams  `view:"inline" desc:"removal of connections stuck at zero weight"`
	WtInit  WtInitParams `view:"inline" desc:"initial weight distribution"`
}

func (lp *LearnParams) Defaults() {
	lp.On = true
	lp.Lrate = 0.01
	lp.WtRange.Set(0, 1)
	lp.Stdp.Defaults()
	lp.Trace.Defaults()
	lp.Prune.Defaults()
	lp.WtInit.Defaults()
	lp.Update()
}

func (lp *LearnParams) Update() {
	lp.Stdp.Update()
	lp.Trace.Update()
}

// EffLrate returns the effective learning rate given the module's modulation
// factor and the controller's global plasticity multiplier.
func (lp *LearnParams) EffLrate(mod, plastMult float32) float32 {
	return lp.Lrate * mod * plastMult
}

// ClampWt clamps the synapse weight to WtRange and tracks how long it has
// been pinned at zero, for pruning.
func (lp *LearnParams) ClampWt(sy *Synapse) {
	sy.Wt = lp.WtRange.ClipVal(sy.Wt)
	if sy.Wt == 0 {
		sy.ZeroTicks++
	} else {
		sy.ZeroTicks = 0
	}
}

// StdpDWt accumulates the spike-timing dependent weight change for the given
// pre-minus-post timing difference, scaled by the effective learning rate.
func (lp *LearnParams) StdpDWt(sy *Synapse, dt, effLrate float32) {
	if !lp.Stdp.On {
		return
	}
	sy.DWt += effLrate * lp.Stdp.DWt(dt)
}

// TraceStep decays the eligibility trace by one tick and, if reward is
// nonzero, accumulates the reward-gated weight change.
func (lp *LearnParams) TraceStep(sy *Synapse, tickDur, reward, effLrate float32) {
	if !lp.Trace.On {
		return
	}
	sy.Elig = lp.Trace.Decay(sy.Elig, tickDur)
	if reward != 0 {
		sy.DWt += effLrate * reward * sy.Elig
	}
}

// ApplyDWt applies the accumulated weight change and clamps the result.
func (lp *LearnParams) ApplyDWt(sy *Synapse) {
	if sy.DWt == 0 {
		lp.ClampWt(sy)
		return
	}
	if mat32.IsNaN(sy.DWt) || mat32.IsInf(sy.DWt, 0) {
		sy.DWt = 0
		return
	}
	sy.Wt += sy.DWt
	sy.DWt = 0
	lp.ClampWt(sy)
}

// ShouldPrune returns true if the synapse has sat at zero weight long enough
// to be removed from the receiving unit's connection map.
func (lp *LearnParams) ShouldPrune(sy *Synapse) bool {
	return lp.Prune.On && sy.ZeroTicks >= lp.Prune.Ticks
}

// neuronos.PruneParams governs removal of silent connections.
type PruneParams struct {
	On    bool  `desc:"enable pruning of connections whose weight stays at 0"`
	Ticks int32 `def:"100" desc:"number of consecutive zero-weight ticks before a connection is removed"`
}

func (pp *PruneParams) Defaults() {
	pp.On = true
	pp.Ticks = 100
}

// neuronos.WtInitParams specifies the random distribution for initial
// synaptic weights.
type WtInitParams struct {
	erand.RndParams
}

func (wp *WtInitParams) Defaults() {
	wp.Mean = 0.3
	wp.Var = 0.2
	wp.Dist = erand.Uniform
}

// Gen draws one weight from the distribution using the network's counted
// random source, so that restored snapshots reproduce the same stream.
func (wp *WtInitParams) Gen(rnd *Rand) float32 {
	switch wp.Dist {
	case erand.Gaussian:
		return float32(wp.Mean) + float32(rnd.NormFloat64())*float32(wp.Var)
	case erand.Mean:
		return float32(wp.Mean)
	default: // Uniform: Var is the width on either side of the mean
		return float32(wp.Mean) + (rnd.Float32()*2-1)*float32(wp.Var)
	}
}
