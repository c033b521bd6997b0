// Copyright (c) 2024, The NeuronOS Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package commands

import (
	"fmt"
	"os"

	"github.com/fatih/color"
)

func init() {
	// Force color output even when not connected to a TTY.  Users can
	// disable with the NO_COLOR environment variable.
	if os.Getenv("NO_COLOR") == "" {
		color.NoColor = false
	}
}

var (
	green  = color.New(color.FgGreen)
	yellow = color.New(color.FgYellow)
	red    = color.New(color.FgRed, color.Bold)
	cyan   = color.New(color.FgCyan)
)

func success(format string, a ...any) {
	green.Printf("✓ "+format+"\n", a...)
}

func info(format string, a ...any) {
	fmt.Printf(format+"\n", a...)
}

func warn(format string, a ...any) {
	yellow.Printf("! "+format+"\n", a...)
}

func fail(format string, a ...any) {
	red.Fprintf(os.Stderr, "✗ "+format+"\n", a...)
}

func header(format string, a ...any) {
	cyan.Printf(format+"\n", a...)
}
