// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a source-available license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

package pagebench

import (
	"testing"
	"time"

	"github.com/intuitivelabs/timestamp"
)

func TestAggregate(t *testing.T) {
	now := timestamp.Now()
	recs := make([]BenchRecord, 4)
	// cpu 0: producer, full budget, 1000 iterations in 2s
	recs[0] = BenchRecord{
		Loops: 1000, Completed: 1000, CPU: 0, Step: StepProd,
		TStart: now, TStop: now.Add(2 * time.Second),
	}
	// cpu 1: consumer, stopped early at 600, 1s
	recs[1] = BenchRecord{
		Loops: 1000, Completed: 600, CPU: 1, Step: StepCons,
		TStart: now, TStop: now.Add(1 * time.Second),
	}

	rep := aggregate("test_bench", recs, []int{0, 1})
	if rep.Desc != "test_bench" || len(rep.CPUs) != 2 {
		t.Fatalf("bad report: %+v", rep)
	}
	p, c := rep.CPUs[0], rep.CPUs[1]
	if p.Role != "enq" || c.Role != "deq" {
		t.Errorf("bad role labels: %q, %q", p.Role, c.Role)
	}
	if p.RatePerSec != 500 {
		t.Errorf("producer rate %f, expected 500", p.RatePerSec)
	}
	if c.RatePerSec != 600 {
		t.Errorf("consumer rate %f, expected 600", c.RatePerSec)
	}
	if !p.Full || c.Full {
		t.Errorf("bad full flags: %v, %v", p.Full, c.Full)
	}
	// early-stop asymmetry is preserved, not reconciled
	if p.Completed == c.Completed {
		t.Errorf("asymmetric counts got reconciled")
	}
	if !rep.Incomplete {
		t.Errorf("early stop not reflected in the report")
	}
	if rep.TotalCompleted != 1600 {
		t.Errorf("total completed %d, expected 1600", rep.TotalCompleted)
	}
	if rep.CombinedRate != 1100 {
		t.Errorf("combined rate %f, expected 1100", rep.CombinedRate)
	}
}

func TestAggregateZeroElapsed(t *testing.T) {
	now := timestamp.Now()
	recs := []BenchRecord{{
		Loops: 10, Completed: 10, CPU: 0,
		TStart: now, TStop: now,
	}}
	rep := aggregate("zero", recs, []int{0})
	if rep.CPUs[0].RatePerSec != 0 {
		t.Fatalf("zero elapsed must give a zero rate, got %f",
			rep.CPUs[0].RatePerSec)
	}
}

func TestStepLabel(t *testing.T) {
	if StepLabel(StepProd) != "enq" || StepLabel(StepCons) != "deq" ||
		StepLabel(StepNone) != "-" {
		t.Fatalf("bad step labels")
	}
}
