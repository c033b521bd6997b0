// Copyright (c) 2024, The NeuronOS Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package neuronos

import (
	"fmt"

	"github.com/emer/etable/etensor"
	"github.com/goki/ki/kit"
	"github.com/goki/mat32"
)

// neuronos.Module is a named processing unit holding an ordered stack of
// feed-forward layers.  Layer 0 receives external and highway input; the
// last layer is the module's output, whose spikes are collected onto
// outgoing highway links.
type Module struct {
	Nm      string     `desc:"name of the module -- unique within the network"`
	Type    ModuleType `desc:"functional type of the module, used as the parameter styling class"`
	Layers  []*Layer   `desc:"ordered feed-forward layer stack -- each layer connects fully to the next"`
	Off     int32      `inactive:"+" desc:"network-wide index of this module's first unit -- assigned during Build"`
	Mod     float32    `inactive:"+" desc:"current modulation factor from the controller, clamped to [0.1, 2.0]"`
	Goal    float32    `def:"0.5" desc:"goal relevance of this module, weighting its salience in controller attention"`
	Profile float32    `desc:"content profile used for content-based routing on outgoing links -- routing prefers destinations whose profile is close to the spike payload"`
}

// ModMin and ModMax bound the modulation factor applied to any module.
const (
	ModMin = 0.1
	ModMax = 2.0
)

func (md *Module) Defaults() {
	md.Mod = 1
	md.Goal = 0.5
	for _, ly := range md.Layers {
		ly.Defaults()
	}
}

func (md *Module) UpdateParams() {
	for _, ly := range md.Layers {
		ly.UpdateParams()
	}
}

// params.Styler interface
func (md *Module) TypeName() string { return "Module" }
func (md *Module) Class() string    { return md.Type.String() }
func (md *Module) Name() string     { return md.Nm }

// Config sets up the layer stack with the given per-layer unit counts.
// Storage is allocated by Network.Build.
func (md *Module) Config(layerSizes []int) {
	md.Layers = make([]*Layer, len(layerSizes))
	for i, sz := range layerSizes {
		ly := &Layer{Nm: fmt.Sprintf("%s.%d", md.Nm, i), Idx: i, Cls: md.Type.String()}
		ly.Defaults()
		ly.Neurons = make([]Neuron, sz) // placeholder count, rebuilt in Build
		md.Layers[i] = ly
	}
}

// Build allocates all layer storage.  off is the network-wide index of the
// module's first unit; the updated offset is returned.
func (md *Module) Build(off int32) (int32, error) {
	if len(md.Layers) == 0 {
		return off, fmt.Errorf("Module %v: must have at least one layer", md.Nm)
	}
	md.Off = off
	for _, ly := range md.Layers {
		n := len(ly.Neurons)
		if err := ly.Build(n); err != nil {
			return off, err
		}
		ly.Off = off
		off += int32(n)
	}
	return off, nil
}

// BuildHist allocates spike history windows after params are final.
func (md *Module) BuildHist() {
	for _, ly := range md.Layers {
		ly.BuildHist()
	}
}

// NUnits returns the total number of units across all layers.
func (md *Module) NUnits() int {
	n := 0
	for _, ly := range md.Layers {
		n += ly.NUnits()
	}
	return n
}

// InLayer returns the input layer (layer 0).
func (md *Module) InLayer() *Layer { return md.Layers[0] }

// OutLayer returns the output layer (the last layer).
func (md *Module) OutLayer() *Layer { return md.Layers[len(md.Layers)-1] }

// LayerByName returns the layer with the given name, nil if not found.
func (md *Module) LayerByName(nm string) *Layer {
	for _, ly := range md.Layers {
		if ly.Nm == nm {
			return ly
		}
	}
	return nil
}

// InitActs resets all unit state in the module and restores modulation to
// its neutral value.
func (md *Module) InitActs() {
	md.Mod = 1
	for _, ly := range md.Layers {
		ly.InitActs()
	}
}

// InitWts initializes all inter-layer weights from the WtInit distribution.
func (md *Module) InitWts(rnd *Rand) {
	for i := 1; i < len(md.Layers); i++ {
		md.Layers[i].ConnectFrom(md.Layers[i-1], rnd)
	}
}

// ApplyExt applies a tensor of external input to the module's input layer.
func (md *Module) ApplyExt(ext etensor.Tensor) error {
	return md.InLayer().ApplyExt(ext)
}

// SetMod sets the modulation factor, clamped to [ModMin, ModMax].
func (md *Module) SetMod(mod float32) {
	md.Mod = mat32.Min(mat32.Max(mod, ModMin), ModMax)
}

// Process runs one tick of the module: apply the controller's modulation for
// this module, then advance each layer in feed-forward order so that spikes
// propagate one layer per pass within the tick.
func (md *Module) Process(ctx *Context, ms *ModState, rnd *Rand, flts *FaultList) {
	md.SetMod(ms.ModFor(md.Nm))
	var send *Layer
	for _, ly := range md.Layers {
		ly.Advance(ctx, send, md.Mod, ms, rnd, flts)
		send = ly
	}
}

// OutSpikes returns spike records for every output-layer unit that fired
// this tick.  The payload is the output layer's threshold gap above rest,
// enough to drive a resting downstream unit to threshold in one tick at
// unit link gain.
func (md *Module) OutSpikes(ctx *Context) []Spike {
	out := md.OutLayer()
	payload := out.Act.ThrBase - out.Act.RestPot
	var spks []Spike
	for _, li := range out.SpikedUnits() {
		nrn := &out.Neurons[li]
		spks = append(spks, Spike{
			Src:     md.Nm,
			SrcUnit: nrn.Idx,
			Payload: payload,
			Time:    ctx.Time,
		})
	}
	return spks
}

// AvgSpikeRate returns the mean observed firing rate over all layers.
func (md *Module) AvgSpikeRate(ctx *Context) float32 {
	if len(md.Layers) == 0 {
		return 0
	}
	var sum float32
	for _, ly := range md.Layers {
		sum += ly.AvgSpikeRate(ctx)
	}
	return sum / float32(len(md.Layers))
}

// ModuleType is the functional class of a module.  It determines the
// parameter styling class and the default content profile for routing, not
// the update dynamics, which are the same for all types.
type ModuleType int32

//go:generate stringer -type=ModuleType

var KiT_ModuleType = kit.Enums.AddEnum(ModuleTypeN, kit.NotBitFlag, nil)

func (ev ModuleType) MarshalJSON() ([]byte, error)  { return kit.EnumMarshalJSON(ev) }
func (ev *ModuleType) UnmarshalJSON(b []byte) error { return kit.EnumUnmarshalJSON(ev, b) }

const (
	// Sensory modules receive raw external input.
	Sensory ModuleType = iota

	// Temporal modules process sequence and timing structure.
	Temporal

	// Spatial modules process spatial relations.
	Spatial

	// Linguistic modules process symbolic content.
	Linguistic

	// Executive modules integrate and select across other modules.
	Executive

	// Memory modules maintain and recall prior activity.
	Memory

	ModuleTypeN
)
