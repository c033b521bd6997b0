// Copyright (c) 2024, The NeuronOS Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package neuronos

import (
	"context"
	"errors"

	"github.com/emer/etable/etensor"
)

// Run steps the network for the given number of ticks.  inputs, if non-nil,
// is called before each tick to produce that tick's external inputs.
// onTick, if non-nil, is called after each tick, for logging.  The run
// stops early if the context is canceled or Stop is called; quiescence
// never stops it, zero activity is a valid stable state.  Returns the
// number of ticks actually run.
func (nt *Network) Run(ctx context.Context, ticks int, inputs func(tick int) map[string]etensor.Tensor, onTick func(nt *Network)) (int, error) {
	nt.StopNow = false
	for t := 0; t < ticks; t++ {
		if nt.StopNow {
			return t, nil
		}
		select {
		case <-ctx.Done():
			return t, ctx.Err()
		default:
		}
		var in map[string]etensor.Tensor
		if inputs != nil {
			in = inputs(nt.Ctx.Tick)
		}
		if err := nt.StepTick(in); err != nil && !errors.Is(err, ErrInvalidInput) {
			// invalid input is a per-tick fault, not a run-stopper
			return t, err
		}
		if onTick != nil {
			onTick(nt)
		}
	}
	return ticks, nil
}

// Stop requests a cooperative halt of a Run at the next tick boundary.
func (nt *Network) Stop() {
	nt.StopNow = true
}
