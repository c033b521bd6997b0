// Copyright (c) 2024, The NeuronOS Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package stdp provides spike-timing-dependent plasticity (STDP): local synaptic
weight changes driven by the relative timing of pre- and post-synaptic spikes.

A causal pairing (pre before post, dt = post - pre > 0) potentiates the weight
by APlus * exp(-dt / TauPlus), while an anti-causal pairing (dt < 0) depresses
it by AMinus * exp(dt / TauMinus).  Pairings outside the Window are ignored.

The package also provides the eligibility trace used for reward-driven
three-factor learning: the trace decays exponentially every tick and is
incremented on co-activation of pre and post, so that a later reward signal
can credit recently-correlated synapses.
*/
package stdp

import "github.com/goki/mat32"

// Params holds the STDP timing-window parameters.  Defaults follow the
// standard asymmetric exponential window with slightly stronger depression
// than potentiation, which keeps total weight drift roughly balanced under
// uncorrelated activity.
type Params struct {
	On       bool    `desc:"enable STDP weight changes"`
	APlus    float32 `viewif:"On" min:"0" def:"0.1" desc:"potentiation strength for causal (pre before post) spike pairings"`
	AMinus   float32 `viewif:"On" min:"0" def:"0.12" desc:"depression strength for anti-causal (post before pre) spike pairings"`
	TauPlus  float32 `viewif:"On" min:"1" def:"10" desc:"time constant in ticks for the causal exponential window"`
	TauMinus float32 `viewif:"On" min:"1" def:"10" desc:"time constant in ticks for the anti-causal exponential window"`
	Window   float32 `viewif:"On" min:"0" def:"20" desc:"maximum |dt| in ticks for a spike pairing to produce any weight change"`

	PlusDt  float32 `inactive:"+" view:"-" json:"-" xml:"-" desc:"rate = 1 / tau_plus"`
	MinusDt float32 `inactive:"+" view:"-" json:"-" xml:"-" desc:"rate = 1 / tau_minus"`
}

func (sp *Params) Update() {
	sp.PlusDt = 1 / sp.TauPlus
	sp.MinusDt = 1 / sp.TauMinus
}

func (sp *Params) Defaults() {
	sp.On = true
	sp.APlus = 0.1
	sp.AMinus = 0.12
	sp.TauPlus = 10
	sp.TauMinus = 10
	sp.Window = 20
	sp.Update()
}

// DWt returns the weight change for a spike pairing with the given timing
// difference dt = post - pre, in ticks.  Returns 0 outside the Window.
// dt == 0 (pre and post within the same tick) counts as causal: the input
// that arrives on the tick the unit fires contributed to that firing.
func (sp *Params) DWt(dt float32) float32 {
	if !sp.On || mat32.Abs(dt) > sp.Window {
		return 0
	}
	if dt >= 0 {
		return sp.APlus * mat32.FastExp(-dt*sp.PlusDt)
	}
	return -sp.AMinus * mat32.FastExp(dt*sp.MinusDt)
}

// Trace holds the eligibility-trace parameters for reward-driven learning.
type Trace struct {
	On  bool    `desc:"enable the eligibility trace"`
	Tau float32 `viewif:"On" min:"1" def:"20" desc:"exponential decay time constant of the trace, in ticks"`
	Inc float32 `viewif:"On" min:"0" def:"1" desc:"increment added to the trace on pre/post co-activation"`

	Dt float32 `inactive:"+" view:"-" json:"-" xml:"-" desc:"rate = 1 / tau"`
}

func (tr *Trace) Update() {
	tr.Dt = 1 / tr.Tau
}

func (tr *Trace) Defaults() {
	tr.On = true
	tr.Tau = 20
	tr.Inc = 1
	tr.Update()
}

// Decay returns the trace value after one tick of duration dt (in ticks)
// of exponential decay.
func (tr *Trace) Decay(elig, dt float32) float32 {
	if !tr.On {
		return 0
	}
	return elig * mat32.FastExp(-dt*tr.Dt)
}

// CoActive returns the trace value after a pre/post co-activation event.
func (tr *Trace) CoActive(elig float32) float32 {
	if !tr.On {
		return 0
	}
	return elig + tr.Inc
}
