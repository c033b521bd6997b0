// Copyright (c) 2024, The NeuronOS Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package commands

import (
	"github.com/spf13/cobra"

	"github.com/neuronos/neuronos/config"
)

var inspectSnap string

var inspectCmd = &cobra.Command{
	Use:   "inspect <config.yaml>",
	Short: "Show the structure and size of a configured network",
	Long: `Inspect builds the network described by the configuration without
running it and prints its structure: modules, layers, links, and
memory use.  With --snapshot, state from a saved snapshot is loaded
first, so the report reflects mid-run weights and clock.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(args[0])
		if err != nil {
			fail("%v", err)
			return err
		}
		nt, err := cfg.Build()
		if err != nil {
			fail("%v", err)
			return err
		}
		nt.InitState()
		if inspectSnap != "" {
			if err := nt.OpenSnapJSON(inspectSnap); err != nil {
				fail("restoring snapshot: %v", err)
				return err
			}
		}

		header("network %s at tick %d (%.1f ms)", nt.Nm, nt.Ctx.Tick, nt.Ctx.Time)
		for _, md := range nt.Mods {
			info("  module %-16s %-10s %d layers, %d units, mod %.2f", md.Nm, md.Type.String(), len(md.Layers), md.NUnits(), md.Mod)
		}
		for _, lk := range nt.HW.Links {
			info("  link   %-22s pri %-8s bw %d/%d-%d queue %d/%d", lk.Nm, lk.Pri.String(), lk.BW.Cap, lk.BW.Floor, lk.BW.Ceiling, lk.QLen(), lk.BW.MaxQueue)
		}
		info("%s", nt.SizeReport())
		return nil
	},
}

func init() {
	inspectCmd.Flags().StringVar(&inspectSnap, "snapshot", "", "load this snapshot before reporting")
	rootCmd.AddCommand(inspectCmd)
}
