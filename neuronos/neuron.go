// Copyright (c) 2024, The NeuronOS Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package neuronos

import (
	"fmt"
	"reflect"

	"github.com/goki/ki/kit"
	"github.com/goki/mat32"
)

// NeuronVarStart is the index of the first float32 state variable field in
// the Neuron struct.  All non-float32 infrastructure fields must come before
// it, and all float32 variables must be contiguous after it, in NeuronVars
// order.
const NeuronVarStart = 2

// neuronos.Neuron holds all of the state for one neural processing unit
// (NPU): a leaky-integrate-and-fire element with a refractory cycle.
// Synaptic weights live in the owning Layer's receiver-side synapse maps,
// not here -- a unit only ever touches its own incoming connections.
type Neuron struct {

	// unique network-wide index of this unit, assigned at Build time.
	// Spikes and synapses refer to units by this index.
	Idx int32

	// current processing state: Resting, Integration, Firing, or Refractory.
	State UnitState

	// membrane potential -- integrates leak and synaptic input over ticks.
	Vm float32

	// current firing threshold -- starts at ActParams.ThrBase and is moved
	// by homeostatic regulation, never below ActParams.ThrFloor.
	Thr float32

	// remaining refractory time in ms -- while > 0 the unit ignores all
	// input integration.
	RefracRem float32

	// whether the unit fired this tick (0 or 1).
	Spike float32

	// total weighted synaptic + external input received this tick.
	Ge float32

	// external (or virtual, fabric-delivered) input payload for this tick.
	Ext float32

	// observed firing rate over the trailing homeostasis window,
	// in spikes per tick.
	AvgRate float32

	// simulation time of the last emitted spike, in ms. -1 if never fired.
	LastSpike float32
}

var NeuronVars = []string{"Vm", "Thr", "RefracRem", "Spike", "Ge", "Ext", "AvgRate", "LastSpike"}

var NeuronVarsMap map[string]int

func init() {
	NeuronVarsMap = make(map[string]int, len(NeuronVars))
	for i, v := range NeuronVars {
		NeuronVarsMap[v] = i
	}
}

func (nrn *Neuron) VarNames() []string {
	return NeuronVars
}

// NeuronVarIdxByName returns the index of the variable in the Neuron, or error
func NeuronVarIdxByName(varNm string) (int, error) {
	i, ok := NeuronVarsMap[varNm]
	if !ok {
		return -1, fmt.Errorf("Neuron VarByName: variable name: %v not valid", varNm)
	}
	return i, nil
}

// VarByIndex returns variable using index (0 = first variable in NeuronVars list)
func (nrn *Neuron) VarByIndex(idx int) float32 {
	v := reflect.ValueOf(*nrn)
	return v.Field(NeuronVarStart + idx).Interface().(float32)
}

// VarByName returns variable by name, or error
func (nrn *Neuron) VarByName(varNm string) (float32, error) {
	i, err := NeuronVarIdxByName(varNm)
	if err != nil {
		return mat32.NaN(), err
	}
	return nrn.VarByIndex(i), nil
}

// IsRefrac returns true if the unit is currently in its refractory period.
func (nrn *Neuron) IsRefrac() bool {
	return nrn.RefracRem > 0
}

// Spiked returns true if the unit fired on the current tick.
func (nrn *Neuron) Spiked() bool {
	return nrn.Spike > 0
}

//////////////////////////////////////////////////////////////////////////////////////
//  UnitState

// UnitState is the processing state of a unit within a tick.
// Resting and Integration differ only in whether any input arrived recently;
// both permit integration.  Firing lasts exactly one tick and is always
// followed by Refractory.
type UnitState int32

//go:generate stringer -type=UnitState

var KiT_UnitState = kit.Enums.AddEnum(UnitStateN, kit.NotBitFlag, nil)

func (ev UnitState) MarshalJSON() ([]byte, error)  { return kit.EnumMarshalJSON(ev) }
func (ev *UnitState) UnmarshalJSON(b []byte) error { return kit.EnumUnmarshalJSON(ev, b) }

// The unit states
const (
	// Resting = no recent input, potential decaying toward rest
	Resting UnitState = iota

	// Integration = input arrived in the last window and is being integrated
	Integration

	// Firing = threshold crossed this tick, spike emitted
	Firing

	// Refractory = post-spike recovery, all input ignored
	Refractory

	UnitStateN
)
