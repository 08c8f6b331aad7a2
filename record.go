// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a source-available license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

package pagebench

import (
	"time"

	"github.com/intuitivelabs/timestamp"
)

// benchmark record role/step tags, kept in BenchRecord.Step for display
const (
	StepNone = iota // single-CPU workloads, no role split
	StepCons        // dequeue side of a ring workload
	StepProd        // enqueue side of a ring workload
)

// StepLabel returns a short printable label for a record step tag.
func StepLabel(step int) string {
	switch step {
	case StepCons:
		return "deq"
	case StepProd:
		return "enq"
	}
	return "-"
}

// BenchRecord is the per-CPU measurement record for one benchmark run.
// It is written only by the task pinned to its CPU and read by the
// aggregator after all the tasks have stopped.
type BenchRecord struct {
	Loops     uint32 // requested iterations
	Completed uint64 // actually completed iterations
	CPU       int    // CPU the task was pinned to
	Step      int    // role tag (StepNone/StepCons/StepProd)

	TStart timestamp.TS
	TStop  timestamp.TS
}

// Start records the measured interval start time.
func (r *BenchRecord) Start() {
	r.TStart = timestamp.Now()
}

// Stop records the measured interval stop time and the number of
// completed iterations.
func (r *BenchRecord) Stop(completed uint64) {
	r.TStop = timestamp.Now()
	r.Completed = completed
}

// Elapsed returns the measured interval length.
func (r *BenchRecord) Elapsed() time.Duration {
	return r.TStop.Sub(r.TStart)
}

// CompletedFull returns true if the record completed its whole
// iteration budget (no early stop).
func (r *BenchRecord) CompletedFull() bool {
	return r.Completed == uint64(r.Loops)
}

// BenchF is the workload contract: start the record timer, run up to
// rec.Loops iterations, stop the timer and return the number of
// iterations actually completed. All mutable state lives in the record
// or in the shared data parameter.
type BenchF func(rec *BenchRecord, data interface{}) uint64

// LoopCntCheck verifies that a requested loop count stays below the
// 32-bit position arithmetic overflow threshold (2 ring operations per
// loop). It returns ErrCfgLoopOverflow for a too big count.
func LoopCntCheck(loops uint32) error {
	if uint64(loops)*2 >= (uint64(1)<<32)-1 {
		return ErrCfgLoopOverflow
	}
	return nil
}
