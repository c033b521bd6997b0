// Copyright (c) 2024, The NeuronOS Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package neuronos

import (
	"fmt"
	"sort"

	"github.com/goki/mat32"
)

// neuronos.BWParams governs a link's delivery bandwidth and queue limits.
type BWParams struct {
	Cap            int     `def:"8" desc:"current number of spikes the link may deliver per tick -- adjusted within [Floor, Ceiling]"`
	Floor          int     `def:"2" desc:"minimum bandwidth the link can be throttled down to"`
	Ceiling        int     `def:"32" desc:"maximum bandwidth the link can be raised to"`
	Step           int     `def:"2" desc:"bandwidth change applied per adjustment"`
	AdjustInterval int     `def:"10" desc:"ticks between bandwidth adjustments, also the occupancy averaging window"`
	HighWater      float32 `def:"0.75" desc:"average queue occupancy above which bandwidth is raised"`
	LowWater       float32 `def:"0.25" desc:"average queue occupancy below which bandwidth is lowered"`
	MaxQueue       int     `def:"64" desc:"maximum queued spikes before congestion shedding begins"`
	MaxAge         float32 `def:"50" desc:"maximum spike age in ms -- older spikes are dropped as stale before delivery"`
}

func (bp *BWParams) Defaults() {
	bp.Cap = 8
	bp.Floor = 2
	bp.Ceiling = 32
	bp.Step = 2
	bp.AdjustInterval = 10
	bp.HighWater = 0.75
	bp.LowWater = 0.25
	bp.MaxQueue = 64
	bp.MaxAge = 50
}

func (bp *BWParams) Update() {
	if bp.Cap < bp.Floor {
		bp.Cap = bp.Floor
	}
	if bp.Cap > bp.Ceiling {
		bp.Cap = bp.Ceiling
	}
}

// Validate checks the parameter relationships at build time.
func (bp *BWParams) Validate(link string) error {
	if bp.Floor < 1 || bp.Ceiling < bp.Floor {
		return fmt.Errorf("Link %v: bandwidth bounds invalid: floor %v ceiling %v", link, bp.Floor, bp.Ceiling)
	}
	if bp.MaxQueue < 1 {
		return fmt.Errorf("Link %v: queue capacity must be >= 1, got %v", link, bp.MaxQueue)
	}
	if bp.LowWater >= bp.HighWater {
		return fmt.Errorf("Link %v: watermarks invalid: low %v high %v", link, bp.LowWater, bp.HighWater)
	}
	return nil
}

// qspike is a queued spike with its enqueue tick and arrival sequence, used
// for deterministic ordering.
type qspike struct {
	Spk Spike `desc:"the queued spike"`
	Enq int   `desc:"tick the spike was enqueued"`
	Seq int64 `desc:"arrival sequence within this link, tie-breaker for ordering"`
}

// neuronos.Link is one directed transmission path between two modules.  It
// queues output spikes of the source module and delivers them, highest
// priority first, to the destination module's input layer, at most Cap per
// tick.
type Link struct {
	Nm   string   `desc:"name of the link, Src>Dst"`
	Src  string   `desc:"name of the sending module"`
	Dst  string   `desc:"name of the receiving module"`
	Pri  Priority `desc:"default priority stamped on spikes collected onto this link"`
	Gain float32  `def:"1" desc:"multiplier on spike payloads at delivery -- scales how strongly this link drives the destination"`
	BW   BWParams `view:"inline" desc:"bandwidth, queue, and staleness limits"`

	Queue []qspike `view:"-" desc:"pending spikes, unordered until delivery"`

	seq    int64
	occSum float32
	occN   int
}

func (lk *Link) Defaults() {
	lk.Pri = Normal
	lk.Gain = 1
	lk.BW.Defaults()
}

// params.Styler interface
func (lk *Link) TypeName() string { return "Link" }
func (lk *Link) Class() string    { return lk.Pri.String() }
func (lk *Link) Name() string     { return lk.Nm }

// QLen returns the number of spikes currently queued.
func (lk *Link) QLen() int { return len(lk.Queue) }

// Reset clears the queue and occupancy history.
func (lk *Link) Reset() {
	lk.Queue = lk.Queue[:0]
	lk.seq = 0
	lk.occSum = 0
	lk.occN = 0
}

// Enqueue adds a spike to the link's queue, stamping the link's default
// priority on spikes that carry none.  An explicit priority always survives,
// in either direction.  If the queue exceeds capacity, non-critical load is
// shed lowest priority first, oldest first; critical overflow is retained
// and surfaced as a congestion fault.
func (lk *Link) Enqueue(spk Spike, tick int, flts *FaultList) {
	if spk.Pri == PriUnset {
		spk.Pri = lk.Pri
	}
	lk.Queue = append(lk.Queue, qspike{Spk: spk, Enq: tick, Seq: lk.seq})
	lk.seq++
	if len(lk.Queue) <= lk.BW.MaxQueue {
		return
	}
	lk.shed(tick, flts)
}

// shed drops the lowest-priority, oldest spikes until the queue fits.
// Critical spikes are never dropped: if only critical spikes remain above
// capacity, they are kept and a congestion fault is recorded.
func (lk *Link) shed(tick int, flts *FaultList) {
	over := len(lk.Queue) - lk.BW.MaxQueue
	for over > 0 {
		di := -1
		for i := range lk.Queue {
			q := &lk.Queue[i]
			if q.Spk.Pri == Critical {
				continue
			}
			if di < 0 || q.Spk.Pri < lk.Queue[di].Spk.Pri ||
				(q.Spk.Pri == lk.Queue[di].Spk.Pri && q.Seq < lk.Queue[di].Seq) {
				di = i
			}
		}
		if di < 0 {
			flts.Add(Fault{Kind: Congestion, Tick: tick, Link: lk.Nm,
				Msg: fmt.Sprintf("queue over capacity by %d with only critical spikes", over)})
			return
		}
		flts.Add(Fault{Kind: Dropped, Tick: tick, Link: lk.Nm, Unit: lk.Queue[di].Spk.SrcUnit,
			Msg: lk.Queue[di].Spk.Pri.String()})
		lk.Queue = append(lk.Queue[:di], lk.Queue[di+1:]...)
		over--
	}
}

// Deliver drops stale spikes, then delivers up to Cap spikes in priority
// order to the destination module's input layer.  Each spike lands on the
// input unit given by its source unit index modulo the input layer size.
func (lk *Link) Deliver(ctx *Context, dst *Module, flts *FaultList) int {
	lk.dropStale(ctx, flts)
	lk.occStep() // pressure is measured before this tick's drain
	if len(lk.Queue) == 0 {
		return 0
	}
	sort.SliceStable(lk.Queue, func(i, j int) bool {
		qi, qj := &lk.Queue[i], &lk.Queue[j]
		if qi.Spk.Pri != qj.Spk.Pri {
			return qi.Spk.Pri > qj.Spk.Pri
		}
		if qi.Enq != qj.Enq {
			return qi.Enq < qj.Enq
		}
		return qi.Seq < qj.Seq
	})
	in := dst.InLayer()
	n := lk.BW.Cap
	if n > len(lk.Queue) {
		n = len(lk.Queue)
	}
	for i := 0; i < n; i++ {
		spk := &lk.Queue[i].Spk
		li := int(spk.SrcUnit) % in.NUnits()
		if li < 0 {
			li += in.NUnits()
		}
		in.AddExt(li, spk.Payload*lk.Gain)
	}
	lk.Queue = lk.Queue[n:]
	return n
}

// dropStale removes spikes older than MaxAge, recording a fault for each.
func (lk *Link) dropStale(ctx *Context, flts *FaultList) {
	kept := lk.Queue[:0]
	for i := range lk.Queue {
		q := lk.Queue[i]
		if ctx.Time-q.Spk.Time > lk.BW.MaxAge {
			flts.Add(Fault{Kind: Stale, Tick: ctx.Tick, Link: lk.Nm, Unit: q.Spk.SrcUnit})
			continue
		}
		kept = append(kept, q)
	}
	lk.Queue = kept
}

// occStep records one occupancy sample for the bandwidth controller.
func (lk *Link) occStep() {
	lk.occSum += float32(len(lk.Queue)) / float32(lk.BW.MaxQueue)
	lk.occN++
}

// AdjustBW adapts the link's bandwidth to its recent average occupancy:
// sustained pressure raises the cap toward Ceiling, a slack queue lowers it
// toward Floor.  Runs every AdjustInterval ticks.
func (lk *Link) AdjustBW(ctx *Context) {
	if lk.BW.AdjustInterval <= 0 || ctx.Tick == 0 || ctx.Tick%lk.BW.AdjustInterval != 0 {
		return
	}
	if lk.occN == 0 {
		return
	}
	avg := lk.occSum / float32(lk.occN)
	lk.occSum = 0
	lk.occN = 0
	switch {
	case avg > lk.BW.HighWater:
		lk.BW.Cap += lk.BW.Step
		if lk.BW.Cap > lk.BW.Ceiling {
			lk.BW.Cap = lk.BW.Ceiling
		}
	case avg < lk.BW.LowWater:
		lk.BW.Cap -= lk.BW.Step
		if lk.BW.Cap < lk.BW.Floor {
			lk.BW.Cap = lk.BW.Floor
		}
	}
}

// neuronos.RouteParams enables content-based routing of output spikes.  When
// off, every output spike is broadcast onto all outgoing links of its
// module.  When on, each spike is sent on exactly one outgoing link, drawn
// from a softmax over content similarity between the spike payload and each
// destination module's profile.
type RouteParams struct {
	On   bool    `desc:"enable content-based routing -- off means broadcast to all outgoing links"`
	Temp float32 `def:"1" min:"0.01" desc:"softmax temperature -- lower concentrates routing on the best-matching destination"`
}

func (rp *RouteParams) Defaults() {
	rp.On = false
	rp.Temp = 1
}

func (rp *RouteParams) Update() {
	if rp.Temp < 0.01 {
		rp.Temp = 0.01
	}
}

// neuronos.Highway is the routing fabric connecting modules.  It owns all
// links, collects output spikes onto them, and delivers queued spikes at the
// start of each tick.
type Highway struct {
	Links []*Link     `desc:"all links, in creation order"`
	Route RouteParams `view:"inline" desc:"content-based routing of output spikes"`

	outIdx map[string][]*Link
	lnkMap map[string]*Link
}

func (hw *Highway) Defaults() {
	hw.Route.Defaults()
	for _, lk := range hw.Links {
		lk.Defaults()
	}
}

// AddLink creates a directed link between the named modules.  Module name
// validity is checked by Network.Build.
func (hw *Highway) AddLink(src, dst string, pri Priority) (*Link, error) {
	nm := src + ">" + dst
	if hw.lnkMap != nil {
		if _, dup := hw.lnkMap[nm]; dup {
			return nil, fmt.Errorf("Highway: link %v already exists", nm)
		}
	}
	lk := &Link{Nm: nm, Src: src, Dst: dst, Pri: pri, Gain: 1}
	lk.BW.Defaults()
	hw.Links = append(hw.Links, lk)
	if hw.lnkMap == nil {
		hw.lnkMap = make(map[string]*Link)
	}
	hw.lnkMap[nm] = lk
	return lk, nil
}

// LinkByName returns the named link (Src>Dst), nil if not found.
func (hw *Highway) LinkByName(nm string) *Link {
	return hw.lnkMap[nm]
}

// Build indexes outgoing links per module and validates link parameters.
func (hw *Highway) Build() error {
	hw.outIdx = make(map[string][]*Link)
	hw.lnkMap = make(map[string]*Link)
	for _, lk := range hw.Links {
		if err := lk.BW.Validate(lk.Nm); err != nil {
			return err
		}
		hw.lnkMap[lk.Nm] = lk
		hw.outIdx[lk.Src] = append(hw.outIdx[lk.Src], lk)
	}
	return nil
}

// OutLinks returns the outgoing links of the named module, in creation order.
func (hw *Highway) OutLinks(mod string) []*Link {
	return hw.outIdx[mod]
}

// Reset clears all link queues.
func (hw *Highway) Reset() {
	for _, lk := range hw.Links {
		lk.Reset()
	}
}

// Collect places one output spike of the named module onto its outgoing
// links: all of them when broadcasting, or one chosen by content similarity
// when routing is enabled.
func (hw *Highway) Collect(spk Spike, ctx *Context, mods map[string]*Module, rnd *Rand, flts *FaultList) {
	outs := hw.outIdx[spk.Src]
	if len(outs) == 0 {
		return
	}
	if !hw.Route.On || len(outs) == 1 {
		for _, lk := range outs {
			lk.Enqueue(spk, ctx.Tick, flts)
		}
		return
	}
	lk := hw.route(spk, outs, mods, rnd)
	lk.Enqueue(spk, ctx.Tick, flts)
}

// route samples one outgoing link from a softmax over content similarity:
// exp(-|payload - profile| / temp) for each destination module's profile.
func (hw *Highway) route(spk Spike, outs []*Link, mods map[string]*Module, rnd *Rand) *Link {
	probs := make([]float32, len(outs))
	var sum float32
	for i, lk := range outs {
		prof := float32(0)
		if dm, ok := mods[lk.Dst]; ok {
			prof = dm.Profile
		}
		p := mat32.FastExp(-mat32.Abs(spk.Payload-prof) / hw.Route.Temp)
		probs[i] = p
		sum += p
	}
	r := rnd.Float32() * sum
	var cum float32
	for i := range probs {
		cum += probs[i]
		if r < cum {
			return outs[i]
		}
	}
	return outs[len(outs)-1]
}

// Deliver runs the delivery phase for all links, in creation order, then
// adjusts bandwidth on links due for it.
func (hw *Highway) Deliver(ctx *Context, mods map[string]*Module, flts *FaultList) int {
	n := 0
	for _, lk := range hw.Links {
		dst, ok := mods[lk.Dst]
		if !ok {
			continue
		}
		n += lk.Deliver(ctx, dst, flts)
		lk.AdjustBW(ctx)
	}
	return n
}

// QLen returns the total number of spikes queued across all links.
func (hw *Highway) QLen() int {
	n := 0
	for _, lk := range hw.Links {
		n += lk.QLen()
	}
	return n
}
