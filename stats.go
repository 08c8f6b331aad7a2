// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a source-available license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

package pagebench

import (
	"time"

	"github.com/intuitivelabs/counters"
)

// CPUStat is the reduced, printable form of one per-CPU record.
type CPUStat struct {
	CPU        int
	Role       string // "enq", "deq" or "-" (from the record step tag)
	Loops      uint32 // requested iterations
	Completed  uint64 // actually completed iterations
	Elapsed    time.Duration
	RatePerSec float64
	Full       bool // completed the whole iteration budget
}

// Report is the aggregated result of one parallel benchmark run.
// The reporting sink owns all the human readable formatting; the
// report itself carries only structured values.
//
// Note that after an early stop the producer and consumer side can
// legitimately end with different completed counts; the report keeps
// both as-is (the asymmetry is diagnostic information about the two
// CPUs drifting out of lockstep) and only raises Incomplete.
type Report struct {
	Desc           string
	CPUs           []CPUStat
	TotalCompleted uint64
	CombinedRate   float64 // sum of the per-CPU rates
	Incomplete     bool    // at least one CPU stopped early
}

// aggregate folds the records of the selected CPUs into a Report.
// Must be called only after all the benchmark tasks have stopped.
func aggregate(desc string, recs []BenchRecord, cpus []int) *Report {
	rep := &Report{Desc: desc}
	for _, c := range cpus {
		rec := &recs[c]
		st := CPUStat{
			CPU:       rec.CPU,
			Role:      StepLabel(rec.Step),
			Loops:     rec.Loops,
			Completed: rec.Completed,
			Elapsed:   rec.Elapsed(),
			Full:      rec.CompletedFull(),
		}
		if st.Elapsed > 0 {
			st.RatePerSec = float64(st.Completed) *
				float64(time.Second) / float64(st.Elapsed)
		}
		rep.CPUs = append(rep.CPUs, st)
		rep.TotalCompleted += st.Completed
		rep.CombinedRate += st.RatePerSec
		if !st.Full {
			rep.Incomplete = true
		}
	}
	return rep
}

// benchmark counters, for external samplers and the counter monitor
type benchStats struct {
	grp *counters.Group

	hRuns      counters.Handle
	hEarlyStop counters.Handle
	hAllocFail counters.Handle
	hProduced  counters.Handle
	hConsumed  counters.Handle
}

var benchCnts benchStats

func init() {
	benchCntDefs := [...]counters.Def{
		{H: &benchCnts.hRuns, Name: "runs",
			Desc: "total parallel benchmark runs"},
		{H: &benchCnts.hEarlyStop, Name: "early_stops",
			Desc: "benchmark tasks that stopped before their loop budget"},
		{H: &benchCnts.hAllocFail, Name: "alloc_fails",
			Desc: "page allocation failures inside a benchmark loop"},
		{H: &benchCnts.hProduced, Name: "produced",
			Desc: "total items enqueued on the benchmark rings"},
		{H: &benchCnts.hConsumed, Name: "consumed",
			Desc: "total items dequeued from the benchmark rings"},
	}
	entries := 20 // extra space to allow registering more counters
	if entries < len(benchCntDefs) {
		entries = len(benchCntDefs)
	}
	benchCnts.grp = counters.NewGroup("pagebench", nil, entries)
	if benchCnts.grp == nil {
		// TODO: better error fallback
		benchCnts.grp = &counters.Group{}
		benchCnts.grp.Init("pagebench", nil, entries)
	}
	if !benchCnts.grp.RegisterDefs(benchCntDefs[:]) {
		Log.PANIC("failed to register the pagebench counters\n")
	}
}

// BenchCntsGroup returns the "pagebench" counters group.
func BenchCntsGroup() *counters.Group {
	return benchCnts.grp
}

// WatchBenchCnts registers all the benchmark counters with a monitor.
func WatchBenchCnts(m *CntMonitor) {
	m.Watch(benchCnts.grp, benchCnts.hRuns, "runs")
	m.Watch(benchCnts.grp, benchCnts.hEarlyStop, "early_stops")
	m.Watch(benchCnts.grp, benchCnts.hAllocFail, "alloc_fails")
	m.Watch(benchCnts.grp, benchCnts.hProduced, "produced")
	m.Watch(benchCnts.grp, benchCnts.hConsumed, "consumed")
}
