// Copyright (c) 2024, The NeuronOS Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package neuronos

import (
	"bytes"
	"strings"
	"testing"
)

func TestTickLogCSV(t *testing.T) {
	nt := mkPipeNet(t, 1)
	tl := NewTickLog(nt)
	for tick := 0; tick < 3; tick++ {
		if err := nt.StepTick(nil); err != nil {
			t.Fatal(err)
		}
		tl.LogTick(nt)
	}

	var b bytes.Buffer
	if err := tl.WriteCSV(&b); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimRight(b.String(), "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected header + 3 rows, got %v lines", len(lines))
	}
	if !strings.Contains(lines[0], "Tick") || !strings.Contains(lines[0], "Sense_Rate") {
		t.Errorf("header missing expected columns: %v", lines[0])
	}
	if tl.Table.Rows != 3 {
		t.Errorf("log rows: got %v, want 3", tl.Table.Rows)
	}
}
