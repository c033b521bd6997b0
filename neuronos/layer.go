// Copyright (c) 2024, The NeuronOS Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package neuronos

import (
	"fmt"
	"sync"

	"github.com/emer/etable/etensor"

	"github.com/neuronos/neuronos/homeo"
)

// neuronos.Layer is one feed-forward stage within a module.  It owns its
// units, the incoming synapses of those units (keyed by the sending unit's
// network-wide index), and the rolling spike history used for homeostatic
// threshold regulation.
type Layer struct {
	Nm       string               `desc:"name of the layer, ModuleName.LayerIndex"`
	Idx      int                  `desc:"position of this layer within its module -- layer 0 receives external and highway input"`
	Off      int32                `desc:"network-wide index of this layer's first unit -- assigned during Build"`
	Cls      string               `desc:"class for parameter styling -- set to the owning module's type name"`
	Neurons  []Neuron             `desc:"all units in this layer"`
	RecvSyns []map[int32]*Synapse `desc:"per-unit incoming connections, keyed by the sending unit's network-wide index"`

	Act   ActParams    `view:"add-fields" desc:"membrane potential and spiking dynamics"`
	Learn LearnParams  `view:"add-fields" desc:"synaptic plasticity"`
	Homeo homeo.Params `view:"inline" desc:"homeostatic threshold regulation"`

	SpkHist []uint8 `view:"-" desc:"rolling per-unit spike history over Homeo.Window ticks, flat [unit][slot]"`
	SpkSum  []int32 `view:"-" desc:"per-unit count of spikes currently in the history window"`
	histPos int

	extMu  sync.Mutex
	ExtBuf []float32 `view:"-" desc:"per-unit external input accumulated for the current tick, cleared after each update"`
}

func (ly *Layer) Defaults() {
	ly.Act.Defaults()
	ly.Learn.Defaults()
	ly.Homeo.Defaults()
}

func (ly *Layer) UpdateParams() {
	ly.Act.Update()
	ly.Learn.Update()
}

// params.Styler interface
func (ly *Layer) TypeName() string { return "Layer" }
func (ly *Layer) Class() string    { return ly.Cls }
func (ly *Layer) Name() string     { return ly.Nm }

// Build allocates unit and synapse storage for n units.  The global offset
// of the first unit is assigned later by Network.Build.
func (ly *Layer) Build(n int) error {
	if n <= 0 {
		return fmt.Errorf("Layer %v: number of units must be > 0, got %v", ly.Nm, n)
	}
	ly.Neurons = make([]Neuron, n)
	ly.RecvSyns = make([]map[int32]*Synapse, n)
	for i := range ly.RecvSyns {
		ly.RecvSyns[i] = make(map[int32]*Synapse)
	}
	ly.ExtBuf = make([]float32, n)
	return nil
}

// BuildHist allocates the spike history window -- called after params are
// applied so the window length is final.
func (ly *Layer) BuildHist() {
	win := ly.Homeo.Window
	if win < 1 {
		win = 1
	}
	ly.SpkHist = make([]uint8, len(ly.Neurons)*win)
	ly.SpkSum = make([]int32, len(ly.Neurons))
	ly.histPos = 0
}

// NUnits returns the number of units in the layer.
func (ly *Layer) NUnits() int { return len(ly.Neurons) }

// UnitIdx returns the network-wide index of the given local unit.
func (ly *Layer) UnitIdx(li int) int32 { return ly.Off + int32(li) }

// InitActs resets all unit state and clears history and external input.
func (ly *Layer) InitActs() {
	for i := range ly.Neurons {
		nrn := &ly.Neurons[i]
		nrn.Idx = ly.UnitIdx(i)
		ly.Act.InitActs(nrn)
	}
	for i := range ly.SpkHist {
		ly.SpkHist[i] = 0
	}
	for i := range ly.SpkSum {
		ly.SpkSum[i] = 0
	}
	ly.histPos = 0
	ly.ClearExt()
}

// ConnectFrom creates synapses from every unit of the sending layer to every
// unit of this layer, with weights drawn from the WtInit distribution.
func (ly *Layer) ConnectFrom(send *Layer, rnd *Rand) {
	for ri := range ly.Neurons {
		syns := ly.RecvSyns[ri]
		for si := range send.Neurons {
			sy := &Synapse{}
			sy.Init(ly.Learn.WtRange.ClipVal(ly.Learn.WtInit.Gen(rnd)))
			syns[send.UnitIdx(si)] = sy
		}
	}
}

// AddExt adds external input to the given local unit, accumulating with any
// input already delivered this tick.  Safe for concurrent use.
func (ly *Layer) AddExt(li int, val float32) {
	ly.extMu.Lock()
	ly.ExtBuf[li] += val
	ly.extMu.Unlock()
}

// ApplyExt applies a tensor of external input values to the layer.  The
// tensor length must match the number of units.
func (ly *Layer) ApplyExt(ext etensor.Tensor) error {
	if ext.Len() != len(ly.Neurons) {
		return fmt.Errorf("Layer %v: external input length %v != number of units %v", ly.Nm, ext.Len(), len(ly.Neurons))
	}
	for i := range ly.Neurons {
		ly.ExtBuf[i] += float32(ext.FloatVal1D(i))
	}
	return nil
}

// ApplyExt1D32 applies external input from a flat []float32, bypassing the
// tensor interface.  The slice length must match the number of units.
func (ly *Layer) ApplyExt1D32(ext []float32) error {
	if len(ext) != len(ly.Neurons) {
		return fmt.Errorf("Layer %v: external input length %v != number of units %v", ly.Nm, len(ext), len(ly.Neurons))
	}
	for i, v := range ext {
		ly.ExtBuf[i] += v
	}
	return nil
}

// ClearExt zeros the external input buffer.
func (ly *Layer) ClearExt() {
	for i := range ly.ExtBuf {
		ly.ExtBuf[i] = 0
	}
}

// GeFromSpikes computes the total conductance input for unit li: external
// input delivered this tick plus weighted same-tick spikes from the sending
// layer (nil for layer 0).  Senders are visited in index order so the
// float32 sum is bit-identical across runs.
func (ly *Layer) GeFromSpikes(li int, send *Layer) float32 {
	ge := ly.ExtBuf[li]
	if send == nil {
		return ge
	}
	syns := ly.RecvSyns[li]
	for si := range send.Neurons {
		if !send.Neurons[si].Spiked() {
			continue
		}
		if sy, ok := syns[send.UnitIdx(si)]; ok {
			ge += sy.Wt
		}
	}
	return ge
}

// Advance runs one tick of unit dynamics for the layer: integrate input,
// check firing against the modulated threshold, then run plasticity against
// the sending layer's spikes.  mod is the owning module's current modulation
// factor.  Numeric faults reset the offending unit and are appended to flts.
func (ly *Layer) Advance(ctx *Context, send *Layer, mod float32, ms *ModState, rnd *Rand, flts *FaultList) {
	for li := range ly.Neurons {
		nrn := &ly.Neurons[li]
		nrn.Ext = ly.ExtBuf[li]
		nrn.Spike = 0
		if ly.Act.RefracStep(nrn, ctx.TickDur) {
			continue
		}
		ge := ly.GeFromSpikes(li, send)
		nrn.Ge = ge
		ly.Act.VmFromGe(nrn, ge, ctx.TickDur)
		// nrn.Thr stays the homeostatic baseline -- modulation only affects
		// the effective threshold for this tick's comparison
		effThr := ly.Act.EffThr(nrn, mod)
		if !ly.Act.FireCheck(nrn, effThr, ctx.Time) {
			if ge != 0 {
				nrn.State = Integration
			} else {
				nrn.State = Resting
			}
		}
		if !ly.Act.Finite(nrn) {
			flts.Add(Fault{Kind: Numeric, Tick: ctx.Tick, Mod: ly.Cls, Layer: ly.Nm, Unit: nrn.Idx})
			ly.Act.InitActs(nrn)
			ly.reinitWts(li, send, rnd)
		}
	}
	ly.learnFromSpikes(ctx, send, mod, ms)
	ly.histStep(ctx)
	ly.homeoStep(ctx)
	ly.ClearExt()
}

// learnFromSpikes applies spike-timing dependent plasticity and eligibility
// trace updates for every connection, after all units in the layer have
// fired for this tick.
func (ly *Layer) learnFromSpikes(ctx *Context, send *Layer, mod float32, ms *ModState) {
	if !ly.Learn.On || send == nil {
		return
	}
	effLrate := ly.Learn.EffLrate(mod, ms.PlastMult)
	now := ctx.Time
	for ri := range ly.Neurons {
		post := &ly.Neurons[ri]
		syns := ly.RecvSyns[ri]
		for si := range send.Neurons { // sender index order, not map order
			sidx := send.UnitIdx(si)
			sy, ok := syns[sidx]
			if !ok {
				continue
			}
			preSpk := send.Neurons[si].Spiked()
			if preSpk {
				sy.LastPre = now
			}
			if post.Spiked() {
				if sy.LastPre >= 0 {
					ly.Learn.StdpDWt(sy, now-sy.LastPre, effLrate)
				}
				if preSpk {
					sy.Elig = ly.Learn.Trace.CoActive(sy.Elig)
				}
			} else if preSpk && post.LastSpike >= 0 {
				ly.Learn.StdpDWt(sy, post.LastSpike-now, effLrate)
			}
			ly.Learn.TraceStep(sy, ctx.TickDur, ms.RewardDelta, effLrate)
			ly.Learn.ApplyDWt(sy)
			if ly.Learn.ShouldPrune(sy) {
				delete(syns, sidx)
			}
		}
	}
}

// histStep records this tick's spikes into the rolling window and updates
// each unit's observed rate.
func (ly *Layer) histStep(ctx *Context) {
	win := len(ly.SpkHist) / len(ly.Neurons)
	if win == 0 {
		return
	}
	for i := range ly.Neurons {
		slot := i*win + ly.histPos
		ly.SpkSum[i] -= int32(ly.SpkHist[slot])
		if ly.Neurons[i].Spiked() {
			ly.SpkHist[slot] = 1
			ly.SpkSum[i]++
		} else {
			ly.SpkHist[slot] = 0
		}
		ly.Neurons[i].AvgRate = ly.Homeo.ObsRate(int(ly.SpkSum[i]), ctx.Tick+1)
	}
	ly.histPos = (ly.histPos + 1) % win
}

// homeoStep adjusts unit thresholds toward the target rate on the
// homeostatic interval.
func (ly *Layer) homeoStep(ctx *Context) {
	if !ly.Homeo.On || !ly.Homeo.ShouldAdjust(ctx.Tick) {
		return
	}
	for i := range ly.Neurons {
		obs := ly.Homeo.ObsRate(int(ly.SpkSum[i]), ctx.Tick)
		ly.Neurons[i].Thr = ly.Homeo.Thr(ly.Act.ThrBase, obs, ly.Act.ThrFloor)
	}
}

// reinitWts redraws all incoming weights of the given unit, in sender
// index order so the random stream is consumed deterministically.
func (ly *Layer) reinitWts(li int, send *Layer, rnd *Rand) {
	if send == nil {
		return
	}
	syns := ly.RecvSyns[li]
	for si := range send.Neurons {
		if sy, ok := syns[send.UnitIdx(si)]; ok {
			sy.Init(ly.Learn.WtRange.ClipVal(ly.Learn.WtInit.Gen(rnd)))
		}
	}
}

// AvgSpikeRate returns the mean observed firing rate across all units,
// computed over the homeostatic window.
func (ly *Layer) AvgSpikeRate(ctx *Context) float32 {
	if len(ly.Neurons) == 0 {
		return 0
	}
	var sum float32
	for i := range ly.SpkSum {
		sum += ly.Homeo.ObsRate(int(ly.SpkSum[i]), ctx.Tick)
	}
	return sum / float32(len(ly.Neurons))
}

// SpikedUnits returns the local indices of units that fired this tick.
func (ly *Layer) SpikedUnits() []int {
	var spk []int
	for i := range ly.Neurons {
		if ly.Neurons[i].Spiked() {
			spk = append(spk, i)
		}
	}
	return spk
}

// UnitVal returns the value of the named variable for the given unit.
func (ly *Layer) UnitVal(varNm string, li int) (float32, error) {
	if li < 0 || li >= len(ly.Neurons) {
		return 0, fmt.Errorf("Layer %v: unit index %v out of range", ly.Nm, li)
	}
	return ly.Neurons[li].VarByName(varNm)
}
