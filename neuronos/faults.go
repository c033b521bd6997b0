// Copyright (c) 2024, The NeuronOS Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package neuronos

import (
	"fmt"
	"sync"

	"github.com/goki/ki/kit"
)

// FaultKind classifies runtime faults surfaced during a tick.  Faults do not
// stop the run: they are recorded per tick and reported through the
// network's OnFault callback when one is set.
type FaultKind int32

//go:generate stringer -type=FaultKind

var KiT_FaultKind = kit.Enums.AddEnum(FaultKindN, kit.NotBitFlag, nil)

func (ev FaultKind) MarshalJSON() ([]byte, error)  { return kit.EnumMarshalJSON(ev) }
func (ev *FaultKind) UnmarshalJSON(b []byte) error { return kit.EnumUnmarshalJSON(ev, b) }

const (
	// Congestion: a highway link had to shed load, or could not shed enough
	// without dropping critical traffic.
	Congestion FaultKind = iota

	// Dropped: a non-critical spike was discarded from a full link queue.
	Dropped

	// Stale: a spike exceeded the link's maximum age before delivery.
	Stale

	// InvalidInput: injected input did not match any module or its shape.
	InvalidInput

	// Numeric: a unit's state became NaN or infinite and was reset.
	Numeric

	FaultKindN
)

// neuronos.Fault is one recorded fault occurrence.
type Fault struct {
	Kind  FaultKind `desc:"classification of the fault"`
	Tick  int       `desc:"tick on which the fault occurred"`
	Mod   string    `desc:"module involved, if any"`
	Layer string    `desc:"layer involved, if any"`
	Link  string    `desc:"highway link involved, if any"`
	Unit  int32     `desc:"network-wide unit index involved, -1 if not unit-specific"`
	Msg   string    `desc:"additional detail"`
}

func (f *Fault) String() string {
	s := fmt.Sprintf("tick %d: %v", f.Tick, f.Kind)
	if f.Link != "" {
		s += " link " + f.Link
	}
	if f.Layer != "" {
		s += " layer " + f.Layer
	} else if f.Mod != "" {
		s += " module " + f.Mod
	}
	if f.Msg != "" {
		s += ": " + f.Msg
	}
	return s
}

// neuronos.FaultList accumulates faults over one tick.  Add is safe for
// concurrent use, for module updates running in parallel.
type FaultList struct {
	Faults []Fault
	mu     sync.Mutex
}

func (fl *FaultList) Add(f Fault) {
	fl.mu.Lock()
	fl.Faults = append(fl.Faults, f)
	fl.mu.Unlock()
}

func (fl *FaultList) Reset() {
	fl.Faults = fl.Faults[:0]
}

func (fl *FaultList) Len() int {
	return len(fl.Faults)
}

// CountKind returns the number of recorded faults of the given kind.
func (fl *FaultList) CountKind(k FaultKind) int {
	n := 0
	for i := range fl.Faults {
		if fl.Faults[i].Kind == k {
			n++
		}
	}
	return n
}
