// Copyright (c) 2024, The NeuronOS Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package neuronos

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/emer/etable/etensor"
	"github.com/goki/mat32"
)

func mkPipeNet(t *testing.T, seed int64) *Network {
	t.Helper()
	nt := NewNetwork("PipeTest")
	nt.RndSeed = seed
	nt.AddModule("Sense", Sensory, []int{4, 4})
	nt.AddModule("Exec", Executive, []int{4, 4})
	if _, err := nt.ConnectModules("Sense", "Exec", Normal); err != nil {
		t.Fatal(err)
	}
	if err := nt.Build(); err != nil {
		t.Fatal(err)
	}
	nt.InitState()
	return nt
}

func driveIn(val float32, n int) etensor.Tensor {
	ext := etensor.NewFloat32([]int{n}, nil, nil)
	for i := 0; i < n; i++ {
		ext.Set1D(i, val)
	}
	return ext
}

func TestBuildErrors(t *testing.T) {
	nt := NewNetwork("Empty")
	if err := nt.Build(); !errors.Is(err, ErrConfig) {
		t.Errorf("empty network should fail to build, got %v", err)
	}

	nt = NewNetwork("Dup")
	nt.AddModule("A", Sensory, []int{2})
	nt.AddModule("A", Spatial, []int{2})
	if err := nt.Build(); !errors.Is(err, ErrConfig) {
		t.Errorf("duplicate module name should fail to build, got %v", err)
	}

	nt = NewNetwork("BadLink")
	nt.AddModule("A", Sensory, []int{2})
	nt.ConnectModules("A", "NoSuch", Normal)
	if err := nt.Build(); !errors.Is(err, ErrConfig) {
		t.Errorf("link to unknown module should fail to build, got %v", err)
	}

	nt = NewNetwork("BadLayer")
	nt.AddModule("A", Sensory, []int{2, 0})
	if err := nt.Build(); !errors.Is(err, ErrConfig) {
		t.Errorf("zero-unit layer should fail to build, got %v", err)
	}

	nt = NewNetwork("NotBuilt")
	nt.AddModule("A", Sensory, []int{2})
	if err := nt.StepTick(nil); !errors.Is(err, ErrConfig) {
		t.Errorf("StepTick before Build should fail, got %v", err)
	}
}

// TestSpikePropagation checks the per-tick phase order end to end: input
// injected at tick 0 fires the sensory module on tick 0, travels the
// highway, and fires the executive module exactly on tick 1, never sooner.
func TestSpikePropagation(t *testing.T) {
	nt := NewNetwork("PropTest")
	nt.AddModule("Sense", Sensory, []int{2})
	nt.AddModule("Exec", Executive, []int{2})
	if _, err := nt.ConnectModules("Sense", "Exec", Normal); err != nil {
		t.Fatal(err)
	}
	if err := nt.Build(); err != nil {
		t.Fatal(err)
	}
	nt.Ctrl.Params.On = false // neutral modulation, thresholds stay at base
	nt.InitState()

	// tick 0: strong drive fires the sensory units
	err := nt.StepTick(map[string]etensor.Tensor{"Sense": driveIn(20, 2)})
	if err != nil {
		t.Fatal(err)
	}
	if got := nt.OutSpikeCounts("Sense"); got != 2 {
		t.Errorf("sensory units should fire on tick 0, got %v", got)
	}
	if got := nt.OutSpikeCounts("Exec"); got != 0 {
		t.Errorf("executive must not fire before delivery, got %v", got)
	}

	// tick 1: queued spikes deliver and fire the executive units
	if err := nt.StepTick(nil); err != nil {
		t.Fatal(err)
	}
	if got := nt.OutSpikeCounts("Exec"); got == 0 {
		t.Errorf("executive should fire on tick 1 from delivered spikes")
	}
	if nt.Ctx.Tick != 2 {
		t.Errorf("clock should advance once per StepTick, tick %v", nt.Ctx.Tick)
	}
}

// TestRunDeterminism: two networks with the same configuration, seed, and
// inputs produce byte-identical snapshots.
func TestRunDeterminism(t *testing.T) {
	run := func() []byte {
		nt := mkPipeNet(t, 42)
		for tick := 0; tick < 30; tick++ {
			var in map[string]etensor.Tensor
			if tick%3 == 0 {
				in = map[string]etensor.Tensor{"Sense": driveIn(20, 4)}
			}
			if tick == 10 {
				nt.ApplyReward(1)
			}
			if err := nt.StepTick(in); err != nil {
				t.Fatal(err)
			}
		}
		var b bytes.Buffer
		if err := nt.WriteSnapJSON(&b); err != nil {
			t.Fatal(err)
		}
		return b.Bytes()
	}

	s1 := run()
	s2 := run()
	if !bytes.Equal(s1, s2) {
		t.Errorf("identical seed and inputs must give byte-identical state")
	}

	nt := mkPipeNet(t, 43)
	for tick := 0; tick < 30; tick++ {
		var in map[string]etensor.Tensor
		if tick%3 == 0 {
			in = map[string]etensor.Tensor{"Sense": driveIn(20, 4)}
		}
		if err := nt.StepTick(in); err != nil {
			t.Fatal(err)
		}
	}
	var b bytes.Buffer
	nt.WriteSnapJSON(&b)
	if bytes.Equal(s1, b.Bytes()) {
		t.Errorf("different seed should give different weights")
	}
}

// TestGeSumStable: the conductance sum over a wide input layer is
// bit-identical across repeated evaluation, independent of synapse storage
// order.
func TestGeSumStable(t *testing.T) {
	nt := NewNetwork("GeTest")
	nt.RndSeed = 5
	nt.AddModule("M", Sensory, []int{33, 1})
	if err := nt.Build(); err != nil {
		t.Fatal(err)
	}
	nt.InitState()

	md := nt.ModByName("M")
	send := md.Layers[0]
	for i := range send.Neurons {
		send.Neurons[i].Spike = 1
	}
	out := md.Layers[1]
	first := out.GeFromSpikes(0, send)
	for i := 0; i < 100; i++ {
		if ge := out.GeFromSpikes(0, send); ge != first {
			t.Fatalf("iteration %v: ge %v != first %v", i, ge, first)
		}
	}
}

// TestRunDeterminismWide: wide layers make the conductance sum sensitive to
// accumulation order, so any order instability shows up as diverging state.
func TestRunDeterminismWide(t *testing.T) {
	run := func() []byte {
		nt := NewNetwork("WideTest")
		nt.RndSeed = 42
		nt.AddModule("Sense", Sensory, []int{12, 8})
		nt.AddModule("Exec", Executive, []int{12, 8})
		if _, err := nt.ConnectModules("Sense", "Exec", Normal); err != nil {
			t.Fatal(err)
		}
		if err := nt.Build(); err != nil {
			t.Fatal(err)
		}
		nt.InitState()
		for tick := 0; tick < 60; tick++ {
			var in map[string]etensor.Tensor
			if tick%2 == 0 {
				in = map[string]etensor.Tensor{"Sense": driveIn(20, 12)}
			}
			if tick == 15 {
				nt.ApplyReward(0.5)
			}
			if err := nt.StepTick(in); err != nil {
				t.Fatal(err)
			}
		}
		var b bytes.Buffer
		if err := nt.WriteSnapJSON(&b); err != nil {
			t.Fatal(err)
		}
		return b.Bytes()
	}

	s1 := run()
	s2 := run()
	if !bytes.Equal(s1, s2) {
		t.Errorf("identical seed and inputs must give byte-identical state")
	}
}

// TestEnumDecode: enum fields restore from their string form in snapshots.
func TestEnumDecode(t *testing.T) {
	var us UnitState
	if err := json.Unmarshal([]byte(`"Firing"`), &us); err != nil {
		t.Fatal(err)
	}
	if us != Firing {
		t.Errorf("unit state decode: got %v, want Firing", us)
	}
	var pri Priority
	if err := json.Unmarshal([]byte(`"Critical"`), &pri); err != nil {
		t.Fatal(err)
	}
	if pri != Critical {
		t.Errorf("priority decode: got %v, want Critical", pri)
	}
	if err := json.Unmarshal([]byte(`"Urgent"`), &pri); err == nil {
		t.Errorf("unknown priority name should fail to decode")
	}
}

// TestSnapshotRoundTrip: pausing at tick 10 and resuming from a snapshot
// produces exactly the state of an uninterrupted run.
func TestSnapshotRoundTrip(t *testing.T) {
	in := func(tick int) map[string]etensor.Tensor {
		if tick%2 == 0 {
			return map[string]etensor.Tensor{"Sense": driveIn(20, 4)}
		}
		return nil
	}

	nt := mkPipeNet(t, 42)
	for tick := 0; tick < 10; tick++ {
		if err := nt.StepTick(in(tick)); err != nil {
			t.Fatal(err)
		}
	}
	var mid bytes.Buffer
	if err := nt.WriteSnapJSON(&mid); err != nil {
		t.Fatal(err)
	}
	for tick := 10; tick < 20; tick++ {
		if err := nt.StepTick(in(tick)); err != nil {
			t.Fatal(err)
		}
	}
	var full bytes.Buffer
	nt.WriteSnapJSON(&full)

	// fresh network, restore at tick 10, run the same remaining ticks
	nt2 := mkPipeNet(t, 42)
	if err := nt2.ReadSnapJSON(bytes.NewReader(mid.Bytes())); err != nil {
		t.Fatal(err)
	}
	if nt2.Ctx.Tick != 10 {
		t.Fatalf("restored tick: got %v, want 10", nt2.Ctx.Tick)
	}
	for tick := 10; tick < 20; tick++ {
		if err := nt2.StepTick(in(tick)); err != nil {
			t.Fatal(err)
		}
	}
	var resumed bytes.Buffer
	nt2.WriteSnapJSON(&resumed)

	if !bytes.Equal(full.Bytes(), resumed.Bytes()) {
		t.Errorf("resumed run must match the uninterrupted run exactly")
	}
}

func TestInvalidInput(t *testing.T) {
	nt := mkPipeNet(t, 1)

	err := nt.StepTick(map[string]etensor.Tensor{"NoSuch": driveIn(1, 4)})
	if !errors.Is(err, ErrInvalidInput) {
		t.Errorf("unknown module input should error, got %v", err)
	}
	if nt.Faults.CountKind(InvalidInput) != 1 {
		t.Errorf("invalid input fault expected, got %v", nt.Faults.Faults)
	}
	if nt.Ctx.Tick != 1 {
		t.Errorf("invalid input must not stop the tick, tick %v", nt.Ctx.Tick)
	}

	// wrong shape
	err = nt.StepTick(map[string]etensor.Tensor{"Sense": driveIn(1, 3)})
	if !errors.Is(err, ErrInvalidInput) {
		t.Errorf("shape mismatch should error, got %v", err)
	}
	if nt.Faults.CountKind(InvalidInput) != 1 {
		t.Errorf("shape mismatch fault expected, got %v", nt.Faults.Faults)
	}
}

func TestNumericReset(t *testing.T) {
	nt := mkPipeNet(t, 1)
	faults := 0
	nt.OnFault = func(f Fault) {
		if f.Kind == Numeric {
			faults++
		}
	}

	ly := nt.ModByName("Sense").InLayer()
	ly.Neurons[0].Vm = mat32.NaN()

	if err := nt.StepTick(nil); err != nil {
		t.Fatal(err)
	}
	if faults != 1 {
		t.Errorf("numeric fault expected for NaN unit, got %v", faults)
	}
	nrn := &ly.Neurons[0]
	if mat32.IsNaN(nrn.Vm) {
		t.Errorf("unit should be reset after numeric fault, vm %v", nrn.Vm)
	}
	if nrn.Vm != ly.Act.RestPot {
		t.Errorf("reset unit should sit at rest, vm %v", nrn.Vm)
	}
}

func TestQuiescence(t *testing.T) {
	nt := mkPipeNet(t, 1)
	for tick := 0; tick < 50; tick++ {
		if err := nt.StepTick(nil); err != nil {
			t.Fatal(err)
		}
	}
	// zero activity is a valid stable state, the run just keeps going
	if nt.Ctx.Tick != 50 {
		t.Errorf("quiescent network should keep ticking, tick %v", nt.Ctx.Tick)
	}
	if nt.OutSpikeCounts("Sense") != 0 || nt.OutSpikeCounts("Exec") != 0 {
		t.Errorf("undriven network should stay silent")
	}
}

func TestSizeReport(t *testing.T) {
	nt := mkPipeNet(t, 1)
	rep := nt.SizeReport()
	if rep == "" {
		t.Errorf("size report should not be empty")
	}
	if nt.NUnits() != 16 {
		t.Errorf("unit count: got %v, want 16", nt.NUnits())
	}
	// full connectivity between the two layers of each module
	if nt.NSyns() != 32 {
		t.Errorf("synapse count: got %v, want 32", nt.NSyns())
	}
}
