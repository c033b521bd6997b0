// Copyright (c) 2024, The NeuronOS Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package neuronos

import (
	"errors"
	"fmt"
	"sync"
	"unsafe"

	"github.com/c2h5oh/datasize"
	"github.com/emer/emergent/params"
)

// Sentinel error categories.  Build and input errors wrap these so callers
// can classify failures with errors.Is.
var (
	ErrConfig       = errors.New("configuration error")
	ErrInvalidInput = errors.New("invalid input")
)

// neuronos.Network is the top-level simulation container: all modules, the
// highway connecting them, the neuromodulatory controller, and the clock.
type Network struct {
	Nm   string      `desc:"name of the network"`
	Mods []*Module   `desc:"all modules, in creation order -- this order is the deterministic iteration order everywhere"`
	HW   Highway     `desc:"routing fabric connecting modules"`
	Ctrl *Controller `desc:"neuromodulatory controller"`
	Ctx  Context     `desc:"simulation clock"`

	RndSeed  int64 `desc:"seed for the network's random stream"`
	NThreads int   `def:"1" desc:"number of goroutines used to process modules within a tick -- modules are independent within a tick so this is safe at any value"`

	Faults  FaultList     `view:"-" desc:"faults recorded during the current tick, cleared at each tick start"`
	OnFault func(f Fault) `view:"-" json:"-" desc:"optional callback invoked for every fault as it is recorded"`
	StopNow bool          `view:"-" json:"-" desc:"cooperative halt flag for Run -- checked at each tick boundary"`

	Rnd    *Rand `view:"-" desc:"counted random stream for all stochastic decisions"`
	modMap map[string]*Module
	built  bool
	wg     sync.WaitGroup
}

// NewNetwork returns a new named network with default parameters.
func NewNetwork(name string) *Network {
	nt := &Network{Nm: name, NThreads: 1, RndSeed: 1}
	nt.Ctx.Defaults()
	nt.Ctrl = NewController()
	nt.HW.Defaults()
	nt.modMap = make(map[string]*Module)
	nt.Rnd = NewRand(nt.RndSeed)
	return nt
}

// AddModule creates and adds a module of the given type with the given
// per-layer unit counts.  Type-specific default parameter templates are
// applied by Build via ApplyParams on the TypeParams set.
func (nt *Network) AddModule(name string, typ ModuleType, layerSizes []int) *Module {
	md := &Module{Nm: name, Type: typ}
	md.Config(layerSizes)
	md.Defaults()
	nt.Mods = append(nt.Mods, md)
	nt.modMap[name] = md
	return md
}

// ModByName returns the named module, nil if not found.
func (nt *Network) ModByName(name string) *Module {
	return nt.modMap[name]
}

// ConnectModules adds a highway link from src to dst with the given default
// priority.  Both modules must exist by Build time.
func (nt *Network) ConnectModules(src, dst string, pri Priority) (*Link, error) {
	return nt.HW.AddLink(src, dst, pri)
}

// Defaults sets default parameters on everything.
func (nt *Network) Defaults() {
	nt.Ctx.Defaults()
	nt.HW.Defaults()
	nt.Ctrl.Params.Defaults()
	for _, md := range nt.Mods {
		md.Defaults()
	}
}

// UpdateParams recomputes cached rate constants after any parameter change.
func (nt *Network) UpdateParams() {
	for _, md := range nt.Mods {
		md.UpdateParams()
	}
	nt.HW.Route.Update()
}

// Build validates the configuration, assigns network-wide unit indexes, and
// allocates all storage.  Must be called once, before InitState.
func (nt *Network) Build() error {
	if len(nt.Mods) == 0 {
		return fmt.Errorf("%w: network %v has no modules", ErrConfig, nt.Nm)
	}
	nt.modMap = make(map[string]*Module)
	for _, md := range nt.Mods {
		if _, dup := nt.modMap[md.Nm]; dup {
			return fmt.Errorf("%w: duplicate module name %v", ErrConfig, md.Nm)
		}
		nt.modMap[md.Nm] = md
	}
	for _, lk := range nt.HW.Links {
		if nt.modMap[lk.Src] == nil {
			return fmt.Errorf("%w: link %v: unknown source module %v", ErrConfig, lk.Nm, lk.Src)
		}
		if nt.modMap[lk.Dst] == nil {
			return fmt.Errorf("%w: link %v: unknown destination module %v", ErrConfig, lk.Nm, lk.Dst)
		}
	}
	if _, err := nt.ApplyParams(TypeParams(), false); err != nil {
		return fmt.Errorf("%w: %v", ErrConfig, err)
	}
	off := int32(0)
	var err error
	for _, md := range nt.Mods {
		off, err = md.Build(off)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrConfig, err)
		}
		md.BuildHist()
	}
	if err := nt.HW.Build(); err != nil {
		return fmt.Errorf("%w: %v", ErrConfig, err)
	}
	nt.built = true
	return nil
}

// NUnits returns the total number of units in the network.
func (nt *Network) NUnits() int {
	n := 0
	for _, md := range nt.Mods {
		n += md.NUnits()
	}
	return n
}

// NSyns returns the current total number of synapses in the network.
func (nt *Network) NSyns() int {
	n := 0
	for _, md := range nt.Mods {
		for _, ly := range md.Layers {
			for _, syns := range ly.RecvSyns {
				n += len(syns)
			}
		}
	}
	return n
}

// InitState seeds the random stream, initializes all weights and unit state,
// clears the highway and controller, and resets the clock.  Call after
// Build, and to restart a run from scratch.
func (nt *Network) InitState() {
	nt.Rnd.NewSeed(nt.RndSeed)
	for _, md := range nt.Mods {
		md.InitActs()
		md.InitWts(nt.Rnd)
	}
	nt.HW.Reset()
	nt.Ctrl.Init()
	nt.Ctx.Reset()
	nt.Faults.Reset()
}

// ApplyParams applies the given parameter sheet to all layers and links,
// using class and name selectors.  Returns true if any parameter was set.
func (nt *Network) ApplyParams(psheet *params.Sheet, setMsg bool) (bool, error) {
	applied := false
	var errs []error
	for _, md := range nt.Mods {
		for _, ly := range md.Layers {
			app, err := psheet.Apply(ly, setMsg)
			applied = applied || app
			if err != nil {
				errs = append(errs, err)
			}
		}
	}
	for _, lk := range nt.HW.Links {
		app, err := psheet.Apply(lk, setMsg)
		applied = applied || app
		if err != nil {
			errs = append(errs, err)
		}
	}
	nt.UpdateParams()
	if len(errs) > 0 {
		return applied, errs[0]
	}
	return applied, nil
}

// SizeReport returns a human-readable summary of memory use per module.
func (nt *Network) SizeReport() string {
	var b []byte
	memNrn := uint64(unsafe.Sizeof(Neuron{}))
	memSyn := uint64(unsafe.Sizeof(Synapse{}))
	var totMem uint64
	for _, md := range nt.Mods {
		nSyn := 0
		for _, ly := range md.Layers {
			for _, syns := range ly.RecvSyns {
				nSyn += len(syns)
			}
		}
		mem := uint64(md.NUnits())*memNrn + uint64(nSyn)*memSyn
		totMem += mem
		b = append(b, fmt.Sprintf("%14s:\t Units: %d\t Syns: %d\t Mem: %v\n",
			md.Nm, md.NUnits(), nSyn, (datasize.ByteSize)(mem).HumanReadable())...)
	}
	b = append(b, fmt.Sprintf("%14s:\t Units: %d\t Syns: %d\t Mem: %v\n",
		"Total", nt.NUnits(), nt.NSyns(), (datasize.ByteSize)(totMem).HumanReadable())...)
	return string(b)
}

// modFun runs the given function on all modules, in parallel across
// NThreads goroutines when NThreads > 1.  Modules share no mutable state
// within a tick, so any partition is safe.
func (nt *Network) modFun(fun func(md *Module)) {
	if nt.NThreads <= 1 || len(nt.Mods) < 2 {
		for _, md := range nt.Mods {
			fun(md)
		}
		return
	}
	nth := nt.NThreads
	if nth > len(nt.Mods) {
		nth = len(nt.Mods)
	}
	ch := make(chan *Module, len(nt.Mods))
	for _, md := range nt.Mods {
		ch <- md
	}
	close(ch)
	nt.wg.Add(nth)
	for t := 0; t < nth; t++ {
		go func() {
			defer nt.wg.Done()
			for md := range ch {
				fun(md)
			}
		}()
	}
	nt.wg.Wait()
}
