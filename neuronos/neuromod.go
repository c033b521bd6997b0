// Copyright (c) 2024, The NeuronOS Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package neuronos

import "github.com/goki/mat32"

// neuronos.ModState is one immutable broadcast from the neuromodulatory
// controller.  Modules read the state computed on the previous tick, so
// controller output always acts with a one-tick delay.
type ModState struct {
	Tick        int                `desc:"tick on which this state was computed"`
	Mods        map[string]float32 `desc:"per-module modulation factor, clamped to [0.1, 2.0]"`
	Attn        map[string]float32 `desc:"per-module attention level in [0, 1]"`
	RewardDelta float32            `desc:"reward prediction error: received reward minus the running prediction"`
	PlastMult   float32            `desc:"global plasticity multiplier in [0.1, 2.0], low when firing rates are highly variable"`
}

// NewModState returns a neutral state: modulation 1, no attention, no
// reward signal, plasticity multiplier 1.
func NewModState() *ModState {
	return &ModState{
		Mods:      make(map[string]float32),
		Attn:      make(map[string]float32),
		PlastMult: 1,
	}
}

// ModFor returns the modulation factor for the named module, 1 if the
// controller has not computed one yet.
func (ms *ModState) ModFor(mod string) float32 {
	if m, ok := ms.Mods[mod]; ok {
		return m
	}
	return 1
}

// AttnFor returns the attention level for the named module, 0 if none.
func (ms *ModState) AttnFor(mod string) float32 {
	return ms.Attn[mod]
}

// neuronos.NeuromodParams holds the controller's dynamics parameters.
type NeuromodParams struct {
	On        bool    `desc:"enable the controller -- off leaves all modules at neutral modulation"`
	RewPredDt float32 `def:"0.1" desc:"rate constant for the exponential running estimate of expected reward -- 1/tau with tau in ticks"`
	AttnDecay float32 `def:"0.95" desc:"per-update retention of existing attention -- new salience mixes in with weight 1-AttnDecay"`
	GlobalWt  float32 `def:"0.3" desc:"weight of the network-wide mean attention in each module's modulation"`
	LocalWt   float32 `def:"0.7" desc:"weight of the module's own attention in its modulation"`
	VarGain   float32 `def:"4" desc:"gain on firing-rate variance in the plasticity multiplier: mult = 1 / (1 + gain * variance)"`
	PlastMin  float32 `def:"0.1" desc:"lower clamp on the plasticity multiplier"`
	PlastMax  float32 `def:"2" desc:"upper clamp on the plasticity multiplier"`
}

func (np *NeuromodParams) Defaults() {
	np.On = true
	np.RewPredDt = 0.1
	np.AttnDecay = 0.95
	np.GlobalWt = 0.3
	np.LocalWt = 0.7
	np.VarGain = 4
	np.PlastMin = 0.1
	np.PlastMax = 2
}

func (np *NeuromodParams) Update() {
}

// neuronos.Controller observes module firing rates each tick, computes the
// reward prediction error, attention allocation, and plasticity multiplier,
// and broadcasts them as a ModState that modules act on one tick later.
type Controller struct {
	Params  NeuromodParams     `view:"inline" desc:"controller dynamics parameters"`
	RewPred float32            `inactive:"+" desc:"running exponential estimate of expected reward"`
	Reward  float32            `inactive:"+" desc:"reward applied for the current tick, clamped to [-1, 1], consumed when the controller runs"`
	HasRew  bool               `inactive:"+" desc:"whether a reward was applied this tick -- prediction only updates on rewarded ticks"`
	Attn    map[string]float32 `desc:"persistent per-module attention, decays toward new salience"`

	cur *ModState
}

func NewController() *Controller {
	ct := &Controller{}
	ct.Params.Defaults()
	ct.Init()
	return ct
}

// Init resets all controller state to neutral.
func (ct *Controller) Init() {
	ct.RewPred = 0
	ct.Reward = 0
	ct.HasRew = false
	ct.Attn = make(map[string]float32)
	ct.cur = NewModState()
}

// State returns the most recently broadcast state, the one modules read on
// the current tick.
func (ct *Controller) State() *ModState {
	return ct.cur
}

// ApplyReward records an external reward signal for the current tick,
// clamped to [-1, 1].  Repeated calls within a tick accumulate before
// clamping.
func (ct *Controller) ApplyReward(r float32) {
	ct.Reward = clamp(ct.Reward+r, -1, 1)
	ct.HasRew = true
}

// SetAttention sets the attention level for the named module directly,
// clamped to [0, 1].  Subsequent updates decay it like any other attention.
func (ct *Controller) SetAttention(mod string, attn float32) {
	ct.Attn[mod] = clamp(attn, 0, 1)
}

// Step runs the controller's observe, compute, broadcast cycle.  mods must
// be in a deterministic order.  The returned state becomes visible to
// modules on the next tick.
func (ct *Controller) Step(ctx *Context, mods []*Module) *ModState {
	if !ct.Params.On {
		ct.cur = NewModState()
		ct.cur.Tick = ctx.Tick
		return ct.cur
	}
	ns := NewModState()
	ns.Tick = ctx.Tick

	// observe
	rates := make([]float32, len(mods))
	for i, md := range mods {
		rates[i] = md.AvgSpikeRate(ctx)
	}

	// reward prediction error, Rescorla-Wagner style: prediction moves
	// toward received reward only on ticks where a reward arrived
	if ct.HasRew {
		ns.RewardDelta = ct.Reward - ct.RewPred
		ct.RewPred += ct.Params.RewPredDt * ns.RewardDelta
	}
	ct.Reward = 0
	ct.HasRew = false

	// plasticity multiplier: unstable, highly variable firing gets less
	// plasticity
	ns.PlastMult = clamp(1/(1+ct.Params.VarGain*variance(rates)), ct.Params.PlastMin, ct.Params.PlastMax)

	// attention: focus = salience * goal relevance, normalized to sum to 1
	// across modules, then mixed into the persistent attention with decay
	var sumSal float32
	sals := make([]float32, len(mods))
	for i, md := range mods {
		sals[i] = rates[i] * md.Goal
		sumSal += sals[i]
	}
	var globalAttn float32
	for i, md := range mods {
		prev, ok := ct.Attn[md.Nm]
		if !ok {
			prev = 0.5
		}
		focus := prev
		if sumSal > 0 {
			focus = sals[i] / sumSal
		}
		at := clamp(ct.Params.AttnDecay*prev+(1-ct.Params.AttnDecay)*focus, 0, 1)
		ct.Attn[md.Nm] = at
		ns.Attn[md.Nm] = at
		globalAttn += at
	}
	if len(mods) > 0 {
		globalAttn /= float32(len(mods))
	} else {
		globalAttn = 0.5
	}

	// modulation: attention and reward factors combine multiplicatively,
	// scaled so that baseline attention 0.5 with zero reward error is
	// neutral at 1
	rewFac := 1 + ns.RewardDelta
	for _, md := range mods {
		attnFac := ct.Params.GlobalWt*globalAttn + ct.Params.LocalWt*ns.Attn[md.Nm]
		ns.Mods[md.Nm] = clamp(2*attnFac*rewFac, ModMin, ModMax)
	}

	ct.cur = ns
	return ns
}

func clamp(v, lo, hi float32) float32 {
	return mat32.Min(mat32.Max(v, lo), hi)
}

// variance returns the population variance of the given values.
func variance(vals []float32) float32 {
	if len(vals) == 0 {
		return 0
	}
	var mean float32
	for _, v := range vals {
		mean += v
	}
	mean /= float32(len(vals))
	var vr float32
	for _, v := range vals {
		d := v - mean
		vr += d * d
	}
	return vr / float32(len(vals))
}
