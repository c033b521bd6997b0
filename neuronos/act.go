// Copyright (c) 2024, The NeuronOS Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package neuronos

import (
	"github.com/emer/etable/minmax"
	"github.com/goki/mat32"
)

///////////////////////////////////////////////////////////////////////
//  act.go contains the leaky-integrate-and-fire params and functions

// neuronos.ActParams contains all the membrane-dynamics parameters and
// functions for the basic leaky-integrate-and-fire unit.
// This is included in neuronos.Layer to drive the computation.
type ActParams struct {
	RestPot  float32    `def:"-70" desc:"resting membrane potential in mV -- potential decays toward this value with time constant Tau"`
	ResetPot float32    `def:"-75" desc:"post-spike reset potential in mV -- slightly below rest produces relative refractory behavior"`
	ThrBase  float32    `def:"-55" desc:"baseline firing threshold in mV -- homeostatic regulation moves the effective threshold around this value"`
	ThrFloor float32    `def:"-65" desc:"hard lower bound on the firing threshold -- homeostasis and modulation can never take the threshold below this"`
	Tau      float32    `def:"10" min:"1" desc:"membrane time constant in ms -- roughly how long it takes for the potential to decay significantly toward rest"`
	Refrac   float32    `def:"2" min:"0" desc:"refractory period in ms after each spike, during which all input is ignored"`
	VmRange  minmax.F32 `view:"inline" desc:"hard safety range for Vm -- integration results are clipped to this range"`
}

func (ac *ActParams) Defaults() {
	ac.RestPot = -70
	ac.ResetPot = -75
	ac.ThrBase = -55
	ac.ThrFloor = -65
	ac.Tau = 10
	ac.Refrac = 2
	ac.VmRange.Set(-90, 50)
	ac.Update()
}

// Update must be called after any changes to parameters
func (ac *ActParams) Update() {
	if ac.VmRange.Min == 0 && ac.VmRange.Max == 0 {
		ac.VmRange.Set(ac.ResetPot-20, ac.ThrBase+100)
	}
}

// InitActs initializes activation state in the given neuron.  Called at
// build time and when a unit is reset after numeric instability.
func (ac *ActParams) InitActs(nrn *Neuron) {
	nrn.Vm = ac.RestPot
	nrn.Thr = ac.ThrBase
	nrn.RefracRem = 0
	nrn.Spike = 0
	nrn.Ge = 0
	nrn.Ext = 0
	nrn.AvgRate = 0
	nrn.LastSpike = -1
	nrn.State = Resting
}

// RefracStep advances the refractory countdown by one tick and returns
// true if the unit is still refractory (no integration this tick).
func (ac *ActParams) RefracStep(nrn *Neuron, tickDur float32) bool {
	if nrn.RefracRem <= 0 {
		return false
	}
	nrn.RefracRem = mat32.Max(nrn.RefracRem-tickDur, 0)
	if nrn.RefracRem > 0 {
		nrn.State = Refractory
		return true
	}
	nrn.State = Resting
	return false
}

// VmFromGe integrates the membrane potential for one tick from the total
// input conductance ge:  Vm += (Rest - Vm) / Tau * dt + ge
func (ac *ActParams) VmFromGe(nrn *Neuron, ge, tickDur float32) {
	nwVm := nrn.Vm + (ac.RestPot-nrn.Vm)/ac.Tau*tickDur + ge
	nrn.Vm = ac.VmRange.ClipVal(nwVm)
}

// EffThr returns the effective firing threshold under the given module
// modulation factor.  Higher modulation lowers the threshold (easier
// firing); the result never goes below ThrFloor.
func (ac *ActParams) EffThr(nrn *Neuron, mod float32) float32 {
	thr := nrn.Thr
	if mod > 0 && mod != 1 {
		off := nrn.Thr - ac.RestPot // excitability gap above rest
		thr = ac.RestPot + off/mod
	}
	return mat32.Max(thr, ac.ThrFloor)
}

// FireCheck tests the threshold (>= crossing fires, exact tie fires) and if
// crossed performs the spike transition: reset potential, start refractory,
// stamp last-fire time.  Returns true if the unit fired.
func (ac *ActParams) FireCheck(nrn *Neuron, effThr float32, time float32) bool {
	if !(nrn.Vm >= effThr) { // NaN never fires; Finite catches it after
		return false
	}
	nrn.Spike = 1
	nrn.State = Firing
	nrn.LastSpike = time
	nrn.Vm = ac.ResetPot
	nrn.RefracRem = ac.Refrac
	return true
}

// Finite returns false if the unit's potential or threshold has become
// non-finite, in which case the caller must reset the unit and surface a
// numeric-instability fault.
func (ac *ActParams) Finite(nrn *Neuron) bool {
	if mat32.IsNaN(nrn.Vm) || mat32.IsInf(nrn.Vm, 0) {
		return false
	}
	if mat32.IsNaN(nrn.Thr) || mat32.IsInf(nrn.Thr, 0) {
		return false
	}
	return true
}
