// Copyright (c) 2024, The NeuronOS Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package homeo provides homeostatic regulation of per-unit firing thresholds,
keeping each unit's firing rate near a configured target over a trailing
window.  This is the negative feedback that prevents both runaway excitation
and permanent silence: units firing above target have their threshold raised,
units firing below target have it lowered, never below a configured floor.
*/
package homeo

import "github.com/goki/mat32"

// Params holds the homeostatic threshold-regulation parameters.
type Params struct {
	On         bool    `desc:"enable homeostatic threshold regulation"`
	TargetRate float32 `viewif:"On" min:"0" def:"0.2" desc:"target firing rate, in spikes per tick, that regulation drives each unit toward"`
	Alpha      float32 `viewif:"On" min:"0" def:"0.1" desc:"gain on the rate error: threshold = base + alpha * (observed - target)"`
	Interval   int     `viewif:"On" min:"1" def:"10" desc:"number of ticks between threshold adjustments -- regulation does not run every tick"`
	Window     int     `viewif:"On" min:"1" def:"100" desc:"trailing window in ticks over which the observed firing rate is measured"`
}

func (hp *Params) Update() {
}

func (hp *Params) Defaults() {
	hp.On = true
	hp.TargetRate = 0.2
	hp.Alpha = 0.1
	hp.Interval = 10
	hp.Window = 100
	hp.Update()
}

// ShouldAdjust returns true if regulation should run on the given tick.
func (hp *Params) ShouldAdjust(tick int) bool {
	return hp.On && tick > 0 && tick%hp.Interval == 0
}

// ObsRate returns the observed firing rate for the given spike count over
// the effective window ending at tick (the window is truncated at the start
// of the run).
func (hp *Params) ObsRate(spikes int, tick int) float32 {
	win := hp.Window
	if tick < win {
		win = tick
	}
	if win <= 0 {
		return 0
	}
	return float32(spikes) / float32(win)
}

// Thr returns the adjusted threshold for the given base threshold, observed
// rate, and floor.  The result never goes below floor.
func (hp *Params) Thr(base, obsRate, floor float32) float32 {
	thr := base + hp.Alpha*(obsRate-hp.TargetRate)
	return mat32.Max(thr, floor)
}
