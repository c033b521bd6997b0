// Copyright (c) 2024, The NeuronOS Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package neuronos

import (
	"io"

	"github.com/emer/etable/etable"
	"github.com/emer/etable/etensor"
)

// neuronos.TickLog records per-tick summary statistics of a run into an
// etable.Table: clock, per-module firing rates and modulation, highway
// queue depth, controller signals, and fault counts.
type TickLog struct {
	Table *etable.Table `desc:"the log table, one row per recorded tick"`
}

// NewTickLog returns a log configured for the given built network, with
// rate and modulation columns for each module.
func NewTickLog(nt *Network) *TickLog {
	sch := etable.Schema{
		{Name: "Tick", Type: etensor.INT64},
		{Name: "Time", Type: etensor.FLOAT32},
		{Name: "Spikes", Type: etensor.INT64},
		{Name: "QLen", Type: etensor.INT64},
		{Name: "RewardDelta", Type: etensor.FLOAT32},
		{Name: "PlastMult", Type: etensor.FLOAT32},
		{Name: "Faults", Type: etensor.INT64},
	}
	for _, md := range nt.Mods {
		sch = append(sch, etable.Column{Name: md.Nm + "_Rate", Type: etensor.FLOAT32})
		sch = append(sch, etable.Column{Name: md.Nm + "_Mod", Type: etensor.FLOAT32})
	}
	tl := &TickLog{Table: &etable.Table{}}
	tl.Table.SetFromSchema(sch, 0)
	return tl
}

// LogTick appends one row for the tick that just completed.
func (tl *TickLog) LogTick(nt *Network) {
	dt := tl.Table
	row := dt.Rows
	dt.SetNumRows(row + 1)

	nSpk := 0
	for _, md := range nt.Mods {
		for _, ly := range md.Layers {
			nSpk += len(ly.SpikedUnits())
		}
	}
	ms := nt.Ctrl.State()
	dt.SetCellFloat("Tick", row, float64(nt.Ctx.Tick-1))
	dt.SetCellFloat("Time", row, float64(nt.Ctx.Time-nt.Ctx.TickDur))
	dt.SetCellFloat("Spikes", row, float64(nSpk))
	dt.SetCellFloat("QLen", row, float64(nt.HW.QLen()))
	dt.SetCellFloat("RewardDelta", row, float64(ms.RewardDelta))
	dt.SetCellFloat("PlastMult", row, float64(ms.PlastMult))
	dt.SetCellFloat("Faults", row, float64(nt.Faults.Len()))
	for _, md := range nt.Mods {
		dt.SetCellFloat(md.Nm+"_Rate", row, float64(md.AvgSpikeRate(&nt.Ctx)))
		dt.SetCellFloat(md.Nm+"_Mod", row, float64(md.Mod))
	}
}

// WriteCSV writes the full log as tab-separated values.
func (tl *TickLog) WriteCSV(w io.Writer) error {
	if _, err := tl.Table.WriteCSVHeaders(w, etable.Tab); err != nil {
		return err
	}
	for r := 0; r < tl.Table.Rows; r++ {
		if err := tl.Table.WriteCSVRow(w, r, etable.Tab); err != nil {
			return err
		}
	}
	return nil
}
