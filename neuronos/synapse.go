// Copyright (c) 2024, The NeuronOS Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package neuronos

import (
	"fmt"
	"reflect"
)

// neuronos.Synapse holds state for one incoming connection of a unit.
// Synapses are owned by the receiving layer, keyed by the sending unit's
// network-wide index: the receiving unit is the only writer, which is what
// makes per-tick unit updates safely parallel.
type Synapse struct {
	Wt       float32 `desc:"synaptic weight value -- clamped to LearnParams.WtRange after every update"`
	DWt      float32 `desc:"change in synaptic weight accumulated this tick, from STDP and reward-driven learning"`
	Elig     float32 `desc:"eligibility trace -- decays exponentially each tick, increments on pre/post co-activation, and gates reward-driven weight changes"`
	LastPre  float32 `desc:"simulation time in ms of the most recent pre-synaptic spike on this connection -- -1 if none yet"`
	ZeroTicks int32  `desc:"number of consecutive ticks the weight has been exactly 0 -- when it reaches LearnParams.Prune.Ticks the connection is removed from the map entirely"`
}

// Init initializes the synapse with the given starting weight.
func (sy *Synapse) Init(wt float32) {
	sy.Wt = wt
	sy.DWt = 0
	sy.Elig = 0
	sy.LastPre = -1
	sy.ZeroTicks = 0
}

var SynapseVars = []string{"Wt", "DWt", "Elig", "LastPre"}

var SynapseVarsMap map[string]int

func init() {
	SynapseVarsMap = make(map[string]int, len(SynapseVars))
	for i, v := range SynapseVars {
		SynapseVarsMap[v] = i
	}
}

func (sy *Synapse) VarNames() []string {
	return SynapseVars
}

// SynapseVarByName returns the index of the variable in the Synapse, or error
func SynapseVarByName(varNm string) (int, error) {
	i, ok := SynapseVarsMap[varNm]
	if !ok {
		return 0, fmt.Errorf("Synapse VarByName: variable name: %v not valid", varNm)
	}
	return i, nil
}

// VarByIndex returns variable using index (0 = first variable in SynapseVars list)
func (sy *Synapse) VarByIndex(idx int) float32 {
	v := reflect.ValueOf(*sy)
	return v.Field(idx).Interface().(float32)
}

// VarByName returns variable by name, or error
func (sy *Synapse) VarByName(varNm string) (float32, error) {
	i, err := SynapseVarByName(varNm)
	if err != nil {
		return 0, err
	}
	return sy.VarByIndex(i), nil
}
