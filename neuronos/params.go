// Copyright (c) 2024, The NeuronOS Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package neuronos

import "github.com/emer/emergent/params"

// TypeParams returns the default parameter templates for each module type.
// Types differ only in configuration: initial weight distributions,
// threshold floors, target rates.  The per-tick protocol is identical for
// all of them.  Selectors use the module type as the class, so these apply
// to every layer of every module of that type.
func TypeParams() *params.Sheet {
	return &params.Sheet{
		{Sel: "Layer", Desc: "network-wide layer defaults",
			Params: params.Params{
				"Layer.Learn.Lrate":       "0.01",
				"Layer.Learn.WtInit.Mean": "0.3",
				"Layer.Learn.WtInit.Var":  "0.2",
			}},
		{Sel: ".Sensory", Desc: "fast, broadly tuned front end: stronger initial drive, quicker to fire",
			Params: params.Params{
				"Layer.Learn.WtInit.Mean": "0.4",
				"Layer.Homeo.TargetRate":  "0.3",
			}},
		{Sel: ".Temporal", Desc: "sequence processing favors longer timing windows",
			Params: params.Params{
				"Layer.Learn.Stdp.Window": "30",
			}},
		{Sel: ".Spatial", Desc: "wider initial weight spread for spatial tuning",
			Params: params.Params{
				"Layer.Learn.WtInit.Var": "0.25",
			}},
		{Sel: ".Linguistic", Desc: "sparser symbolic coding",
			Params: params.Params{
				"Layer.Learn.WtInit.Mean": "0.25",
				"Layer.Homeo.TargetRate":  "0.15",
			}},
		{Sel: ".Executive", Desc: "integration across modules: higher floor keeps selection selective",
			Params: params.Params{
				"Layer.Act.ThrFloor":     "-60",
				"Layer.Homeo.TargetRate": "0.1",
			}},
		{Sel: ".Memory", Desc: "slow, stable learning for retention",
			Params: params.Params{
				"Layer.Learn.Lrate":       "0.005",
				"Layer.Learn.Prune.Ticks": "200",
			}},
	}
}
