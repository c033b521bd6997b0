// Copyright (c) 2024, The NeuronOS Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package commands implements the neuronos command line interface.
package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	version string
	commit  string
	date    string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "neuronos",
	Short: "NeuronOS - spiking neural simulation engine",
	Long: `NeuronOS runs discrete-time spiking neural simulations: modules of
leaky integrate-and-fire units connected by a priority-aware routing
fabric, with spike-timing and reward-driven plasticity under global
neuromodulatory control.

Simulations are described by a YAML configuration naming the modules,
their layer sizes, and the links between them.`,
	Version: version,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

// Execute adds all child commands to the root command and sets flags
// appropriately.  This is called by main.main().
func Execute() error {
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true
	return rootCmd.Execute()
}

// SetVersionInfo sets the version information for the CLI.
func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	date = d
	rootCmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", v, c, d)
}
