// Copyright (c) 2024, The NeuronOS Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package neuronos

import "testing"

func mkCtrlNet(t *testing.T) *Network {
	t.Helper()
	nt := NewNetwork("CtrlTest")
	nt.AddModule("Sense", Sensory, []int{4})
	nt.AddModule("Exec", Executive, []int{4})
	if err := nt.Build(); err != nil {
		t.Fatal(err)
	}
	nt.InitState()
	return nt
}

// setRates fakes an observed firing rate for every unit of the module by
// filling its spike history sums.
func setRates(nt *Network, mod string, spikes int32) {
	md := nt.ModByName(mod)
	for _, ly := range md.Layers {
		for i := range ly.SpkSum {
			ly.SpkSum[i] = spikes
		}
	}
}

func TestRewardPrediction(t *testing.T) {
	nt := mkCtrlNet(t)
	ct := nt.Ctrl
	nt.Ctx.Tick = 100

	ct.ApplyReward(1)
	ms := ct.Step(&nt.Ctx, nt.Mods)
	CmprFloats([]float32{ms.RewardDelta, ct.RewPred}, []float32{1, 0.1}, "first reward", t)

	ct.ApplyReward(1)
	ms = ct.Step(&nt.Ctx, nt.Mods)
	CmprFloats([]float32{ms.RewardDelta, ct.RewPred}, []float32{0.9, 0.19}, "second reward", t)

	// no reward: no prediction error, prediction unchanged
	ms = ct.Step(&nt.Ctx, nt.Mods)
	CmprFloats([]float32{ms.RewardDelta, ct.RewPred}, []float32{0, 0.19}, "unrewarded tick", t)
}

func TestRewardClamp(t *testing.T) {
	ct := NewController()
	ct.ApplyReward(5)
	if ct.Reward != 1 {
		t.Errorf("reward should clamp to 1, got %v", ct.Reward)
	}
	ct.Init()
	ct.ApplyReward(-3)
	if ct.Reward != -1 {
		t.Errorf("reward should clamp to -1, got %v", ct.Reward)
	}
	// accumulates before clamping
	ct.Init()
	ct.ApplyReward(0.6)
	ct.ApplyReward(0.6)
	if ct.Reward != 1 {
		t.Errorf("accumulated reward should clamp to 1, got %v", ct.Reward)
	}
}

func TestPlastMult(t *testing.T) {
	nt := mkCtrlNet(t)
	ct := nt.Ctrl
	nt.Ctx.Tick = 100

	// uniform rates: no variance, full plasticity
	setRates(nt, "Sense", 20)
	setRates(nt, "Exec", 20)
	ms := ct.Step(&nt.Ctx, nt.Mods)
	CmprFloats([]float32{ms.PlastMult}, []float32{1}, "uniform rates", t)

	// highly variable rates: plasticity reduced, never below the cap
	setRates(nt, "Sense", 100)
	setRates(nt, "Exec", 0)
	ms = ct.Step(&nt.Ctx, nt.Mods)
	if ms.PlastMult >= 1 {
		t.Errorf("variable rates should reduce plasticity, got %v", ms.PlastMult)
	}
	if ms.PlastMult < ct.Params.PlastMin || ms.PlastMult > ct.Params.PlastMax {
		t.Errorf("plasticity multiplier out of bounds: %v", ms.PlastMult)
	}
}

func TestAttention(t *testing.T) {
	nt := mkCtrlNet(t)
	ct := nt.Ctrl
	nt.Ctx.Tick = 100

	ct.SetAttention("Sense", 7)
	if ct.Attn["Sense"] != 1 {
		t.Errorf("attention should clamp to 1, got %v", ct.Attn["Sense"])
	}
	ct.SetAttention("Sense", -2)
	if ct.Attn["Sense"] != 0 {
		t.Errorf("attention should clamp to 0, got %v", ct.Attn["Sense"])
	}

	// an active module draws attention away from a silent one
	ct.Init()
	setRates(nt, "Sense", 50)
	setRates(nt, "Exec", 0)
	var ms *ModState
	for i := 0; i < 50; i++ {
		ms = ct.Step(&nt.Ctx, nt.Mods)
	}
	if ms.Attn["Sense"] <= ms.Attn["Exec"] {
		t.Errorf("active module should hold more attention: Sense %v, Exec %v", ms.Attn["Sense"], ms.Attn["Exec"])
	}
	for nm, at := range ms.Attn {
		if at < 0 || at > 1 {
			t.Errorf("attention for %v out of [0,1]: %v", nm, at)
		}
	}
}

func TestModulationBounds(t *testing.T) {
	nt := mkCtrlNet(t)
	ct := nt.Ctrl
	nt.Ctx.Tick = 100

	// neutral conditions give neutral modulation
	ms := ct.Step(&nt.Ctx, nt.Mods)
	CmprFloats([]float32{ms.ModFor("Sense"), ms.ModFor("Exec")}, []float32{1, 1}, "neutral modulation", t)

	// extreme reward error stays within the clamp
	ct.RewPred = -1
	ct.ApplyReward(1)
	setRates(nt, "Sense", 100)
	ms = ct.Step(&nt.Ctx, nt.Mods)
	for _, nm := range []string{"Sense", "Exec"} {
		m := ms.ModFor(nm)
		if m < ModMin || m > ModMax {
			t.Errorf("modulation for %v out of [%v, %v]: %v", nm, ModMin, ModMax, m)
		}
	}

	// unknown module reads neutral
	if ms.ModFor("NoSuch") != 1 {
		t.Errorf("unknown module should read neutral modulation")
	}
}

func TestOneTickDelay(t *testing.T) {
	nt := mkCtrlNet(t)
	ct := nt.Ctrl

	before := ct.State()
	if before.ModFor("Sense") != 1 {
		t.Fatalf("initial state should be neutral")
	}

	// the state modules read during a tick is the one computed on the
	// previous tick: Step returns the new state but State() callers during
	// the next tick see it only then
	nt.Ctx.Tick = 100
	setRates(nt, "Sense", 50)
	ct.ApplyReward(1)
	ns := ct.Step(&nt.Ctx, nt.Mods)
	if ct.State() != ns {
		t.Errorf("broadcast state should become current after Step")
	}
	if ns == before {
		t.Errorf("Step must produce a fresh state, not mutate the old one")
	}
	if before.RewardDelta != 0 {
		t.Errorf("earlier state must remain immutable, delta %v", before.RewardDelta)
	}
}

func TestControllerOff(t *testing.T) {
	nt := mkCtrlNet(t)
	ct := nt.Ctrl
	ct.Params.On = false
	nt.Ctx.Tick = 100

	setRates(nt, "Sense", 100)
	ct.ApplyReward(1)
	ms := ct.Step(&nt.Ctx, nt.Mods)
	if ms.ModFor("Sense") != 1 || ms.PlastMult != 1 || ms.RewardDelta != 0 {
		t.Errorf("disabled controller should broadcast neutral state: %+v", ms)
	}
}
