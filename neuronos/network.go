// Copyright (c) 2024, The NeuronOS Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package neuronos

import (
	"fmt"

	"github.com/emer/etable/etensor"
)

// StepTick runs one full simulation tick in strict phase order: inject the
// given external inputs as virtual spikes at the input layers, deliver
// queued highway spikes, process every module's layers in order, collect
// newly emitted spikes onto the highway for next-tick delivery, run the
// neuromodulatory controller, and advance the clock.  inputs maps module
// name to an input tensor for that module's input layer, and may be nil.
//
// Modules read the controller state computed on the previous tick, so
// modulation always acts with a one-tick delay.
func (nt *Network) StepTick(inputs map[string]etensor.Tensor) error {
	if !nt.built {
		return fmt.Errorf("%w: network %v: StepTick before Build", ErrConfig, nt.Nm)
	}
	nt.Faults.Reset()

	// (a) inject external inputs -- invalid entries are surfaced as faults
	// and in the returned error, but the tick still runs with whatever was
	// valid
	inErr := nt.ApplyInputs(inputs)

	// (b) highway delivery of spikes queued on previous ticks
	nt.HW.Deliver(&nt.Ctx, nt.modMap, &nt.Faults)

	// (c) module processing, reading last tick's controller state
	ms := nt.Ctrl.State()
	nt.modFun(func(md *Module) {
		md.Process(&nt.Ctx, ms, nt.Rnd, &nt.Faults)
	})

	// (d) collect output spikes for next-tick delivery
	for _, md := range nt.Mods {
		for _, spk := range md.OutSpikes(&nt.Ctx) {
			nt.HW.Collect(spk, &nt.Ctx, nt.modMap, nt.Rnd, &nt.Faults)
		}
	}

	// (e) controller observe / compute / broadcast
	nt.Ctrl.Step(&nt.Ctx, nt.Mods)

	// (f) advance the clock
	nt.Ctx.TickInc()

	nt.reportFaults()
	return inErr
}

// ApplyInputs applies external input tensors to the named modules' input
// layers.  Unknown module names and shape mismatches are recorded as
// invalid-input faults and returned as an error; valid entries are still
// applied.
func (nt *Network) ApplyInputs(inputs map[string]etensor.Tensor) error {
	if len(inputs) == 0 {
		return nil
	}
	var ferr error
	for _, md := range nt.Mods { // deterministic order
		ext, ok := inputs[md.Nm]
		if !ok {
			continue
		}
		if err := md.ApplyExt(ext); err != nil {
			nt.Faults.Add(Fault{Kind: InvalidInput, Tick: nt.Ctx.Tick, Mod: md.Nm, Unit: -1, Msg: err.Error()})
			ferr = fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
	}
	for nm := range inputs {
		if nt.modMap[nm] == nil {
			nt.Faults.Add(Fault{Kind: InvalidInput, Tick: nt.Ctx.Tick, Mod: nm, Unit: -1, Msg: "unknown module"})
			ferr = fmt.Errorf("%w: unknown module %v", ErrInvalidInput, nm)
		}
	}
	return ferr
}

// ApplyExt1D32 applies a flat []float32 external input to the named module's
// input layer, for callers that do not hold tensors.  Must be called before
// StepTick for the input to count on the next tick.
func (nt *Network) ApplyExt1D32(mod string, ext []float32) error {
	md := nt.modMap[mod]
	if md == nil {
		return fmt.Errorf("%w: unknown module %v", ErrInvalidInput, mod)
	}
	if err := md.InLayer().ApplyExt1D32(ext); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return nil
}

// ApplyReward feeds an external reward signal, clamped to [-1, 1], into the
// controller's next observe phase.
func (nt *Network) ApplyReward(r float32) {
	nt.Ctrl.ApplyReward(r)
}

// SetAttention seeds the controller's attention for the named module,
// clamped to [0, 1], effective on the next tick.
func (nt *Network) SetAttention(mod string, attn float32) {
	nt.Ctrl.SetAttention(mod, attn)
}

// OutSpikeCounts returns the number of output-layer units of the named
// module that fired on the most recent tick.
func (nt *Network) OutSpikeCounts(mod string) int {
	md := nt.modMap[mod]
	if md == nil {
		return 0
	}
	return len(md.OutLayer().SpikedUnits())
}

func (nt *Network) reportFaults() {
	if nt.OnFault == nil {
		return
	}
	for _, f := range nt.Faults.Faults {
		nt.OnFault(f)
	}
}
