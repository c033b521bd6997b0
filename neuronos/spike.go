// Copyright (c) 2024, The NeuronOS Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package neuronos

import "github.com/goki/ki/kit"

// neuronos.Spike is one inter-module spike message traveling on the highway.
type Spike struct {
	Src     string   `desc:"name of the sending module"`
	SrcUnit int32    `desc:"network-wide index of the unit that fired"`
	Payload float32  `desc:"signal strength delivered to the destination unit"`
	Time    float32  `desc:"simulation time in ms at which the spike was emitted"`
	Pri     Priority `desc:"transmission priority -- higher priorities are delivered first and survive congestion longer"`
}

// Priority orders spikes on a congested link.  Higher values are delivered
// first.  Critical spikes are never silently dropped: if a queue cannot shed
// enough load without discarding one, the overflow is kept and a congestion
// fault is surfaced instead.
type Priority int32

//go:generate stringer -type=Priority

var KiT_Priority = kit.Enums.AddEnum(PriorityN, kit.NotBitFlag, nil)

func (ev Priority) MarshalJSON() ([]byte, error)  { return kit.EnumMarshalJSON(ev) }
func (ev *Priority) UnmarshalJSON(b []byte) error { return kit.EnumUnmarshalJSON(ev, b) }

const (
	// PriUnset is the zero value: the spike carries no priority of its own
	// and receives the link's default when enqueued.
	PriUnset Priority = iota

	Low

	Normal

	High

	Critical

	PriorityN
)
