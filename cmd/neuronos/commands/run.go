// Copyright (c) 2024, The NeuronOS Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/neuronos/neuronos/config"
	"github.com/neuronos/neuronos/neuronos"
)

var (
	runTicks    int
	runLogFile  string
	runSnapOut  string
	runSnapIn   string
	runReward   float32
	runFaults   bool
)

var runCmd = &cobra.Command{
	Use:   "run <config.yaml>",
	Short: "Run a simulation from a configuration file",
	Long: `Run builds the network described by the configuration, runs it for the
configured (or overridden) number of ticks, and reports summary
statistics.  Ctrl-C requests a halt at the next tick boundary.`,
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

		if runSnapIn != "" {
			if err := nt.OpenSnapJSON(runSnapIn); err != nil {
				fail("restoring snapshot: %v", err)
				return err
			}
			info("restored snapshot %s at tick %d", runSnapIn, nt.Ctx.Tick)
		}

		runID := uuid.New().String()
		header("run %s: network %s, %d units, %d links", runID, nt.Nm, nt.NUnits(), len(nt.HW.Links))

		if runFaults {
			nt.OnFault = func(f neuronos.Fault) {
				warn("%s", f.String())
			}
		}
		if runReward != 0 {
			nt.ApplyReward(runReward)
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		go func() {
			<-ctx.Done()
			nt.Stop()
		}()

		ticks := cfg.RunTicks()
		if runTicks > 0 {
			ticks = runTicks
		}
		tlog := neuronos.NewTickLog(nt)
		ran, err := nt.Run(ctx, ticks, nil, tlog.LogTick)
		if err != nil && err != context.Canceled {
			fail("%v", err)
			return err
		}
		success("ran %d ticks to time %.1f ms", ran, nt.Ctx.Time)

		if runLogFile != "" {
			fp, err := os.Create(runLogFile)
			if err != nil {
				fail("%v", err)
				return err
			}
			defer fp.Close()
			if err := tlog.WriteCSV(fp); err != nil {
				fail("%v", err)
				return err
			}
			info("wrote tick log to %s", runLogFile)
		}
		if runSnapOut != "" {
			if err := nt.SaveSnapJSON(runSnapOut); err != nil {
				fail("saving snapshot: %v", err)
				return err
			}
			info("wrote snapshot to %s", runSnapOut)
		}
		return nil
	},
}

func init() {
	runCmd.Flags().IntVar(&runTicks, "ticks", 0, "override the configured number of ticks")
	runCmd.Flags().StringVar(&runLogFile, "log", "", "write per-tick statistics to this TSV file")
	runCmd.Flags().StringVar(&runSnapOut, "snapshot", "", "write a snapshot to this file after the run (.gz for compressed)")
	runCmd.Flags().StringVar(&runSnapIn, "restore", "", "restore this snapshot before running")
	runCmd.Flags().Float32Var(&runReward, "reward", 0, "apply this reward signal on the first tick")
	runCmd.Flags().BoolVar(&runFaults, "faults", false, "print every fault as it occurs")
	rootCmd.AddCommand(runCmd)
}
