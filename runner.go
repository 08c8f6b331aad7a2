// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a source-available license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

package pagebench

import (
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"
)

// RunParallel runs fn concurrently on every CPU in cpus, each task
// pinned to its CPU, and returns the aggregated report.
//
// All the tasks synchronise on a start barrier so the measured
// interval begins at approximately the same instant on every CPU
// (barrier released, not globally atomic - the small release skew is
// accepted benchmark noise). Each task gets its own record; records
// are allocated up front for every possible CPU, not only the selected
// ones, so record lookup stays a plain CPU-indexed access with no
// allocation in the measured path.
//
// step is the initial record role tag (workloads may override it),
// data is the opaque shared context handed to every task.
//
// Configuration errors (loop count overflow, bad CPU selection) are
// reported before any task is spawned. A single task failing (e.g.
// pinning error) never aborts the other tasks; its record simply keeps
// a zero completed count.
func RunParallel(desc string, loops uint32, cpus []int, step int,
	data interface{}, fn BenchF) (*Report, error) {

	if err := LoopCntCheck(loops); err != nil {
		return nil, err
	}
	nCPUs := runtime.NumCPU()
	if len(cpus) == 0 {
		return nil, ErrCfgCPUs
	}
	for i, c := range cpus {
		if c < 0 || c >= nCPUs {
			return nil, ErrCfgCPUs
		}
		// no duplicates: two tasks on the same cpu would share (and
		// race on) the same record
		for _, prev := range cpus[:i] {
			if prev == c {
				return nil, ErrCfgCPUs
			}
		}
	}

	// one record slot for every possible CPU
	recs := make([]BenchRecord, nCPUs)

	start := make(chan struct{})
	var ready sync.WaitGroup
	ready.Add(len(cpus))
	var g errgroup.Group
	for _, c := range cpus {
		c := c
		rec := &recs[c]
		rec.Loops = loops
		rec.CPU = c
		rec.Step = step
		g.Go(func() error {
			runtime.LockOSThread()
			defer runtime.UnlockOSThread()
			if err := pinCPU(c); err != nil {
				ERR("%s: failed to pin task to cpu %d: %s\n",
					desc, c, err)
				ready.Done()
				return err
			}
			ready.Done()
			<-start // start barrier
			rec.Completed = fn(rec, data)
			return nil
		})
	}
	// release the measured loops on all the CPUs at once
	ready.Wait()
	close(start)
	err := g.Wait()

	benchCnts.grp.Inc(benchCnts.hRuns)
	return aggregate(desc, recs, cpus), err
}
