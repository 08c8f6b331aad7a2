// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a source-available license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

package pagebench

import (
	"errors"
)

// ErrNoMem is reported when the page backend cannot satisfy an
// allocation (arena exhausted or memory ceiling hit).
var ErrNoMem = errors.New("out of memory")

// initTokenRing creates a ring for the no-allocation baseline and
// prefills it with the shared token.
//
// Prefilling keeps enough distance between the producer and the
// consumer so the benchmark does not run dry of objects to dequeue
// right after the start.
func initTokenRing(qSize, prefill int) (*PtrRing[*Token], error) {
	ring, err := NewPtrRing[*Token](qSize)
	if err != nil {
		return nil, err
	}
	for i := 0; i < prefill; i++ {
		if err := ring.Produce(&baselineToken); err != nil {
			ERR("token ring cannot prefill:%d sz:%d\n", prefill, qSize)
			ring.Destroy(nil)
			return nil, err
		}
	}
	return ring, nil
}

// initPageRing creates a ring for the cross-CPU alloc/free benchmark
// and prefills it with real pages of the given size class.
func initPageRing(qSize, prefill, order int) (*PtrRing[*Page], error) {
	ring, err := NewPtrRing[*Page](qSize)
	if err != nil {
		return nil, err
	}
	for i := 0; i < prefill; i++ {
		pg := AllocPage(order)
		if pg == nil {
			ERR("page alloc cannot prefill:%d sz:%d\n", prefill, qSize)
			ring.Destroy(FreePage)
			return nil, ErrNoMem
		}
		if err := ring.Produce(pg); err != nil {
			ERR("page ring cannot prefill:%d sz:%d\n", prefill, qSize)
			FreePage(pg)
			ring.Destroy(FreePage)
			return nil, err
		}
	}
	return ring, nil
}

// RunBenchSingleCPUCompare runs the non-cross-CPU baseline: alloc and
// immediately free a page, on every selected CPU independently.
func RunBenchSingleCPUCompare(loops uint32, cpus []int) (*Report, error) {
	return RunParallel(BenchSingleCPUCompare.Name(), loops, cpus,
		StepNone, nil, timeSingleCPUPageAllocPut)
}

// RunBenchPtrRingBaseline runs the ring-only cross-CPU handoff
// baseline: a shared token moved through the ring, no allocator work.
func RunBenchPtrRingBaseline(loops uint32, qSize, prefill int,
	cpus []int) (*Report, error) {

	ring, err := initTokenRing(qSize, prefill)
	if err != nil {
		return nil, err
	}
	defer ring.Destroy(nil)
	return RunParallel(BenchPtrRingBaseline.Name(), loops, cpus,
		StepNone, ring, timeCrossCPURingBaseline)
}

// RunBenchCrossCPUPageAllocPut runs the measured target: pages
// allocated on the even CPU, handed over through the ring and freed on
// the odd CPU. Any pages still in flight when the run stops are
// released by the ring destructor.
func RunBenchCrossCPUPageAllocPut(loops uint32, order, qSize, prefill int,
	cpus []int) (*Report, error) {

	ring, err := initPageRing(qSize, prefill, order)
	if err != nil {
		return nil, err
	}
	defer ring.Destroy(FreePage)
	return RunParallel(BenchCrossCPUAllocPut.Name(), loops, cpus,
		StepNone, ring, timeCrossCPUPageAllocPut)
}

// RunTimingTests runs the benchmarks selected in cfg.Run, in canonical
// order, and returns their reports. Configuration errors abort before
// anything runs.
//
// Note: the ring size and prefill likely need adjusting per system,
// else the cross-CPU tests cannot "complete": they stop as soon as the
// CPUs catch up with each other (full or empty ring). A report with
// Incomplete set is still valid data, just with a shorter measured
// interval.
func RunTimingTests(cfg *Config) ([]*Report, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	var reps []*Report

	if cfg.Run.Has(BenchSingleCPUCompare) {
		rep, err := RunBenchSingleCPUCompare(cfg.Loops, cfg.CPUs)
		if err != nil {
			return reps, err
		}
		reps = append(reps, rep)
	}
	if cfg.Run.Has(BenchPtrRingBaseline) {
		rep, err := RunBenchPtrRingBaseline(cfg.Loops, cfg.RingSize,
			cfg.Prefill, cfg.CPUs)
		if err != nil {
			return reps, err
		}
		reps = append(reps, rep)
	}
	if cfg.Run.Has(BenchCrossCPUAllocPut) {
		rep, err := RunBenchCrossCPUPageAllocPut(cfg.Loops,
			cfg.PageOrder, cfg.RingSize, cfg.Prefill, cfg.CPUs)
		if err != nil {
			return reps, err
		}
		reps = append(reps, rep)
	}
	return reps, nil
}
