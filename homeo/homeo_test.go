// Copyright (c) 2024, The NeuronOS Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package homeo

import (
	"testing"

	"github.com/goki/mat32"
)

const difTol = float32(1.0e-6)

func TestShouldAdjust(t *testing.T) {
	hp := Params{}
	hp.Defaults()

	for _, tick := range []int{0, 1, 5, 9, 11, 15} {
		if hp.ShouldAdjust(tick) {
			t.Errorf("tick %v: should not adjust", tick)
		}
	}
	for _, tick := range []int{10, 20, 100} {
		if !hp.ShouldAdjust(tick) {
			t.Errorf("tick %v: should adjust", tick)
		}
	}

	hp.On = false
	if hp.ShouldAdjust(10) {
		t.Errorf("should never adjust when off")
	}
}

func TestObsRate(t *testing.T) {
	hp := Params{}
	hp.Defaults()

	// full window
	if r := hp.ObsRate(20, 200); r != 0.2 {
		t.Errorf("full window rate: got %v, want 0.2", r)
	}
	// window truncated at run start
	if r := hp.ObsRate(5, 10); r != 0.5 {
		t.Errorf("truncated window rate: got %v, want 0.5", r)
	}
	// no history yet
	if r := hp.ObsRate(0, 0); r != 0 {
		t.Errorf("rate at tick 0: got %v, want 0", r)
	}
}

func TestThr(t *testing.T) {
	hp := Params{}
	hp.Defaults()

	base := float32(-55)
	floor := float32(-65)

	// at target: no change
	if thr := hp.Thr(base, hp.TargetRate, floor); mat32.Abs(thr-base) > difTol {
		t.Errorf("threshold at target rate: got %v, want %v", thr, base)
	}
	// above target: raised
	if thr := hp.Thr(base, 0.8, floor); thr <= base {
		t.Errorf("threshold above target: got %v, want > %v", thr, base)
	}
	// below target: lowered, but never below floor
	if thr := hp.Thr(base, 0, floor); thr >= base {
		t.Errorf("threshold below target: got %v, want < %v", thr, base)
	}
	hp.Alpha = 100
	if thr := hp.Thr(base, 0, floor); thr != floor {
		t.Errorf("threshold floor: got %v, want %v", thr, floor)
	}
}
