// Copyright (c) 2024, The NeuronOS Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package neuronos is the overall repository for the NeuronOS discrete-time,
event-driven spiking simulation engine, implemented in the Go language (golang).

This top-level of the repository has no functional code -- everything is organized
into the following sub-repositories:

* neuronos: the core engine, with leaky-integrate-and-fire processing units
(NPUs) organized into layered cortical processing modules (CPMs), a priority-
and bandwidth-aware routing fabric (neural highways) connecting modules, a
neuromodulatory controller computing attention, reward, and stability signals
once per tick, and the tick scheduler that drives them all.

* stdp: spike-timing-dependent plasticity parameters and the exponential
timing-window weight-change functions, usable independently of the engine.

* homeo: homeostatic threshold regulation parameters, keeping per-unit firing
rates near a target over a trailing window.

* config: YAML-based network and run configuration, which builds a ready-to-run
engine from a declarative description.

* cmd/neuronos: command-line runner that loads a config, runs a simulation for
a given number of ticks, and exports spikes, stats, and snapshots.
*/
package neuronos
