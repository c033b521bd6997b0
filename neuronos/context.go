// Copyright (c) 2024, The NeuronOS Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package neuronos

// neuronos.Context contains all the timing state for running a simulation.
// One tick is the atomic unit of simulated time: all spikes emitted during
// a tick are delivered no earlier than the following tick, and all
// modulatory state is only updated at tick boundaries.
type Context struct {

	// accumulated amount of simulated time the network has been running,
	// in milliseconds (not real world time).
	Time float32

	// tick counter: number of discrete update steps since last Reset.
	Tick int

	// amount of simulated time per tick, in milliseconds.
	TickDur float32 `def:"1"`
}

// NewContext returns a new Context with default parameters.
func NewContext() *Context {
	ctx := &Context{}
	ctx.Defaults()
	return ctx
}

// Defaults sets default values
func (ctx *Context) Defaults() {
	ctx.TickDur = 1
}

// Reset resets the counters all back to zero
func (ctx *Context) Reset() {
	ctx.Time = 0
	ctx.Tick = 0
	if ctx.TickDur == 0 {
		ctx.Defaults()
	}
}

// TickInc advances the clock by one tick.
func (ctx *Context) TickInc() {
	ctx.Tick++
	ctx.Time += ctx.TickDur
}
