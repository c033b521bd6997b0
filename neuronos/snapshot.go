// Copyright (c) 2024, The NeuronOS Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package neuronos

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// neuronos.NetSnap is a complete serializable snapshot of a network's
// mutable state: clock, random stream position, every unit and synapse,
// link queues and bandwidth, and controller state.  Restoring a snapshot
// into an identically configured network and continuing the run produces
// the same results as never having paused.
type NetSnap struct {
	Nm       string     `desc:"network name, checked on restore"`
	Tick     int        `desc:"clock tick"`
	Time     float32    `desc:"clock time in ms"`
	RndSeed  int64      `desc:"random stream seed"`
	RndCalls uint64     `desc:"random stream position"`
	Mods     []ModSnap  `desc:"per-module state"`
	Links    []LinkSnap `desc:"per-link queue and bandwidth state"`
	Ctrl     CtrlSnap   `desc:"controller state"`
}

type ModSnap struct {
	Nm     string    `desc:"module name, checked on restore"`
	Mod    float32   `desc:"current modulation factor"`
	Layers []LaySnap `desc:"per-layer state"`
}

type LaySnap struct {
	Nm       string               `desc:"layer name, checked on restore"`
	Neurons  []Neuron             `desc:"full unit state"`
	RecvSyns []map[int32]*Synapse `desc:"per-unit incoming synapses"`
	SpkHist  []uint8              `desc:"rolling spike history"`
	SpkSum   []int32              `desc:"spike counts in the history window"`
	HistPos  int                  `desc:"ring position in the history"`
	ExtBuf   []float32            `desc:"pending external input"`
}

type LinkSnap struct {
	Nm     string   `desc:"link name, checked on restore"`
	Cap    int      `desc:"current bandwidth"`
	Queue  []qspike `desc:"pending spikes"`
	Seq    int64    `desc:"arrival sequence counter"`
	OccSum float32  `desc:"occupancy accumulator"`
	OccN   int      `desc:"occupancy sample count"`
}

type CtrlSnap struct {
	RewPred float32            `desc:"running reward prediction"`
	Reward  float32            `desc:"pending reward for the current tick"`
	HasRew  bool               `desc:"whether a reward is pending"`
	Attn    map[string]float32 `desc:"persistent attention"`
	State   *ModState          `desc:"most recently broadcast state"`
}

// Snapshot captures the network's complete mutable state.
func (nt *Network) Snapshot() *NetSnap {
	sn := &NetSnap{
		Nm:       nt.Nm,
		Tick:     nt.Ctx.Tick,
		Time:     nt.Ctx.Time,
		RndSeed:  nt.Rnd.Seed,
		RndCalls: nt.Rnd.Calls,
	}
	for _, md := range nt.Mods {
		msn := ModSnap{Nm: md.Nm, Mod: md.Mod}
		for _, ly := range md.Layers {
			lsn := LaySnap{
				Nm:       ly.Nm,
				Neurons:  append([]Neuron(nil), ly.Neurons...),
				RecvSyns: make([]map[int32]*Synapse, len(ly.RecvSyns)),
				SpkHist:  append([]uint8(nil), ly.SpkHist...),
				SpkSum:   append([]int32(nil), ly.SpkSum...),
				HistPos:  ly.histPos,
				ExtBuf:   append([]float32(nil), ly.ExtBuf...),
			}
			for ri, syns := range ly.RecvSyns {
				cp := make(map[int32]*Synapse, len(syns))
				for si, sy := range syns {
					sc := *sy
					cp[si] = &sc
				}
				lsn.RecvSyns[ri] = cp
			}
			msn.Layers = append(msn.Layers, lsn)
		}
		sn.Mods = append(sn.Mods, msn)
	}
	for _, lk := range nt.HW.Links {
		sn.Links = append(sn.Links, LinkSnap{
			Nm:     lk.Nm,
			Cap:    lk.BW.Cap,
			Queue:  append([]qspike(nil), lk.Queue...),
			Seq:    lk.seq,
			OccSum: lk.occSum,
			OccN:   lk.occN,
		})
	}
	attn := make(map[string]float32, len(nt.Ctrl.Attn))
	for k, v := range nt.Ctrl.Attn {
		attn[k] = v
	}
	st := *nt.Ctrl.State()
	sn.Ctrl = CtrlSnap{
		RewPred: nt.Ctrl.RewPred,
		Reward:  nt.Ctrl.Reward,
		HasRew:  nt.Ctrl.HasRew,
		Attn:    attn,
		State:   &st,
	}
	return sn
}

// Restore loads a snapshot into the network, which must have been built
// with the same configuration (same modules, layers, sizes, and links).
func (nt *Network) Restore(sn *NetSnap) error {
	if !nt.built {
		return fmt.Errorf("%w: Restore before Build", ErrConfig)
	}
	if sn.Nm != nt.Nm {
		return fmt.Errorf("%w: snapshot is for network %v, not %v", ErrConfig, sn.Nm, nt.Nm)
	}
	if len(sn.Mods) != len(nt.Mods) {
		return fmt.Errorf("%w: snapshot has %v modules, network has %v", ErrConfig, len(sn.Mods), len(nt.Mods))
	}
	for mi, md := range nt.Mods {
		msn := &sn.Mods[mi]
		if msn.Nm != md.Nm {
			return fmt.Errorf("%w: snapshot module %v != network module %v", ErrConfig, msn.Nm, md.Nm)
		}
		if len(msn.Layers) != len(md.Layers) {
			return fmt.Errorf("%w: module %v: snapshot has %v layers, network has %v", ErrConfig, md.Nm, len(msn.Layers), len(md.Layers))
		}
		md.Mod = msn.Mod
		for li, ly := range md.Layers {
			lsn := &msn.Layers[li]
			if len(lsn.Neurons) != len(ly.Neurons) {
				return fmt.Errorf("%w: layer %v: snapshot has %v units, network has %v", ErrConfig, ly.Nm, len(lsn.Neurons), len(ly.Neurons))
			}
			copy(ly.Neurons, lsn.Neurons)
			for ri := range ly.RecvSyns {
				syns := make(map[int32]*Synapse, len(lsn.RecvSyns[ri]))
				for si, sy := range lsn.RecvSyns[ri] {
					sc := *sy
					syns[si] = &sc
				}
				ly.RecvSyns[ri] = syns
			}
			copy(ly.SpkHist, lsn.SpkHist)
			copy(ly.SpkSum, lsn.SpkSum)
			ly.histPos = lsn.HistPos
			copy(ly.ExtBuf, lsn.ExtBuf)
		}
	}
	if len(sn.Links) != len(nt.HW.Links) {
		return fmt.Errorf("%w: snapshot has %v links, network has %v", ErrConfig, len(sn.Links), len(nt.HW.Links))
	}
	for i, lk := range nt.HW.Links {
		lsn := &sn.Links[i]
		if lsn.Nm != lk.Nm {
			return fmt.Errorf("%w: snapshot link %v != network link %v", ErrConfig, lsn.Nm, lk.Nm)
		}
		lk.BW.Cap = lsn.Cap
		lk.BW.Update()
		lk.Queue = append(lk.Queue[:0], lsn.Queue...)
		lk.seq = lsn.Seq
		lk.occSum = lsn.OccSum
		lk.occN = lsn.OccN
	}
	nt.Ctrl.RewPred = sn.Ctrl.RewPred
	nt.Ctrl.Reward = sn.Ctrl.Reward
	nt.Ctrl.HasRew = sn.Ctrl.HasRew
	nt.Ctrl.Attn = make(map[string]float32, len(sn.Ctrl.Attn))
	for k, v := range sn.Ctrl.Attn {
		nt.Ctrl.Attn[k] = v
	}
	if sn.Ctrl.State != nil {
		st := *sn.Ctrl.State
		if st.Mods == nil {
			st.Mods = make(map[string]float32)
		}
		if st.Attn == nil {
			st.Attn = make(map[string]float32)
		}
		nt.Ctrl.cur = &st
	} else {
		nt.Ctrl.cur = NewModState()
	}
	nt.Ctx.Tick = sn.Tick
	nt.Ctx.Time = sn.Time
	nt.RndSeed = sn.RndSeed
	nt.Rnd.Restore(sn.RndSeed, sn.RndCalls)
	nt.Faults.Reset()
	return nil
}

// WriteSnapJSON writes a snapshot of the network in JSON to the writer.
func (nt *Network) WriteSnapJSON(w io.Writer) error {
	b, err := json.MarshalIndent(nt.Snapshot(), "", "\t")
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}

// ReadSnapJSON reads a JSON snapshot from the reader and restores it.
func (nt *Network) ReadSnapJSON(r io.Reader) error {
	b, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	sn := &NetSnap{}
	if err := json.Unmarshal(b, sn); err != nil {
		return err
	}
	return nt.Restore(sn)
}

// SaveSnapJSON saves a snapshot to a JSON-formatted file.  If filename has
// .gz extension, then file is gzip compressed.
func (nt *Network) SaveSnapJSON(filename string) error {
	fp, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer fp.Close()
	ext := filepath.Ext(filename)
	if ext == ".gz" {
		gzr := gzip.NewWriter(fp)
		defer gzr.Close()
		return nt.WriteSnapJSON(gzr)
	}
	return nt.WriteSnapJSON(fp)
}

// OpenSnapJSON opens a snapshot from a JSON-formatted file.  If filename
// has .gz extension, then file is gzip uncompressed.
func (nt *Network) OpenSnapJSON(filename string) error {
	fp, err := os.Open(filename)
	if err != nil {
		return err
	}
	defer fp.Close()
	ext := filepath.Ext(filename)
	if ext == ".gz" {
		gzr, err := gzip.NewReader(fp)
		if err != nil {
			return err
		}
		defer gzr.Close()
		return nt.ReadSnapJSON(gzr)
	}
	return nt.ReadSnapJSON(fp)
}
