// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a source-available license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

package pagebench

import (
	"errors"
	"strings"

	"github.com/intuitivelabs/bytescase"
	"github.com/intuitivelabs/counters"
)

// BenchID names one of the canonical benchmark workloads.
type BenchID uint8

const (
	BenchSingleCPUCompare BenchID = iota // same CPU alloc + free baseline
	BenchPtrRingBaseline                 // ring-only cross CPU handoff
	BenchCrossCPUAllocPut                // alloc on one CPU, free on the other
	BenchNumber                          // "last" marker
)

var benchID2Name = [BenchNumber]string{
	"single_cpu_compare",
	"ring_baseline",
	"cross_cpu_alloc_put",
}

// Name returns the benchmark selector name.
func (id BenchID) Name() string {
	if id < BenchNumber {
		return benchID2Name[id]
	}
	return "invalid"
}

// ErrCfgBenchName is returned for an unknown benchmark selector.
var ErrCfgBenchName = errors.New("unknown benchmark name")

// BenchSet is a set of selected benchmarks, with named membership
// instead of a raw run-flags bit-mask.
type BenchSet struct {
	m uint32
}

// AllBenchs returns a set with every benchmark selected.
func AllBenchs() BenchSet {
	var s BenchSet
	for id := BenchID(0); id < BenchNumber; id++ {
		s.Add(id)
	}
	return s
}

func (s *BenchSet) Add(id BenchID) {
	if id < BenchNumber {
		s.m |= 1 << id
	}
}

func (s BenchSet) Has(id BenchID) bool {
	return id < BenchNumber && s.m&(1<<id) != 0
}

func (s BenchSet) Empty() bool {
	return s.m == 0
}

// String returns the comma separated selected benchmark names.
func (s BenchSet) String() string {
	var names []string
	for id := BenchID(0); id < BenchNumber; id++ {
		if s.Has(id) {
			names = append(names, id.Name())
		}
	}
	return strings.Join(names, ",")
}

// ParseBenchSet parses a comma separated, case-insensitive list of
// benchmark selector names ("all" selects everything).
func ParseBenchSet(list string) (BenchSet, error) {
	var s BenchSet
	for _, tok := range strings.Split(list, ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		if bytescase.CmpEq([]byte(tok), []byte("all")) {
			return AllBenchs(), nil
		}
		found := false
		for id := BenchID(0); id < BenchNumber; id++ {
			if bytescase.CmpEq([]byte(tok), []byte(id.Name())) {
				s.Add(id)
				found = true
				break
			}
		}
		if !found {
			return BenchSet{}, ErrCfgBenchName
		}
	}
	return s, nil
}

// Token is the placeholder item for the ring-only baseline: a valid,
// shareable item that carries no memory behind it and is never
// dereferenced (no fake integer-as-pointer tricks needed).
type Token struct{}

var baselineToken Token

// timeSingleCPUPageAllocPut allocates and immediately frees one page
// per iteration on the running CPU. Most simple case, for comparison
// with the cross-CPU variants.
func timeSingleCPUPageAllocPut(rec *BenchRecord, data interface{}) uint64 {
	order := GetCfg().PageOrder
	var cnt uint64

	rec.Start()
	for i := uint32(0); i < rec.Loops; i++ {
		pg := AllocPage(order)
		if pg == nil {
			// treated like a full queue: stop with the partial count
			WARN("single_cpu_compare: page alloc failed (cpu:%d) i:%d\n",
				rec.CPU, i)
			benchCnts.grp.Inc(benchCnts.hAllocFail)
			break
		}
		FreePage(pg)
		cnt++
	}
	rec.Stop(cnt)

	if !rec.CompletedFull() {
		benchCnts.grp.Inc(benchCnts.hEarlyStop)
	}
	return cnt
}

// timeCrossCPURingBaseline moves a token through the ring between two
// CPUs: the even CPU produces, the odd one consumes. No allocator
// involvement: this isolates the pure cross-CPU handoff cost.
// The shared data must be the *PtrRing[*Token] built by initTokenRing.
func timeCrossCPURingBaseline(rec *BenchRecord, data interface{}) uint64 {
	ring, _ := data.(*PtrRing[*Token])
	if ring == nil {
		ERR("ring_baseline: missing shared ring\n")
		return 0
	}

	// split the CPUs between enq/deq based on even/odd
	enqCPU := rec.CPU%2 == 0
	if enqCPU {
		rec.Step = StepProd
	} else {
		rec.Step = StepCons
	}
	tok := &baselineToken
	var cnt uint64

	rec.Start()
	for i := uint32(0); i < rec.Loops; i++ {
		if enqCPU {
			if err := ring.Produce(tok); err != nil {
				WARN("ring_baseline: enq full ring (cpu:%d) i:%d\n",
					rec.CPU, i)
				break
			}
		} else {
			if _, err := ring.Consume(); err != nil {
				WARN("ring_baseline: deq empty ring (cpu:%d) i:%d\n",
					rec.CPU, i)
				break
			}
		}
		cnt++
	}
	rec.Stop(cnt)

	countRingSide(enqCPU, cnt)
	if !rec.CompletedFull() {
		benchCnts.grp.Inc(benchCnts.hEarlyStop)
	}
	return cnt
}

// timeCrossCPUPageAllocPut is the measured target: the even CPU
// allocates a fresh page and enqueues it, the odd CPU dequeues and
// frees it. Combined cost: allocation + cross-CPU migration + free.
// The shared data must be the *PtrRing[*Page] built by initPageRing.
func timeCrossCPUPageAllocPut(rec *BenchRecord, data interface{}) uint64 {
	ring, _ := data.(*PtrRing[*Page])
	if ring == nil {
		ERR("cross_cpu_alloc_put: missing shared ring\n")
		return 0
	}
	order := GetCfg().PageOrder

	// split the CPUs between enq/deq based on even/odd
	enqCPU := rec.CPU%2 == 0
	if enqCPU {
		rec.Step = StepProd
	} else {
		rec.Step = StepCons
	}
	var cnt uint64

	rec.Start()
	for i := uint32(0); i < rec.Loops; i++ {
		if enqCPU {
			pg := AllocPage(order)
			if pg == nil {
				WARN("cross_cpu_alloc_put: page alloc failed"+
					" (cpu:%d) i:%d\n", rec.CPU, i)
				benchCnts.grp.Inc(benchCnts.hAllocFail)
				break
			}
			if err := ring.Produce(pg); err != nil {
				FreePage(pg)
				WARN("cross_cpu_alloc_put: enq full ring (cpu:%d) i:%d\n",
					rec.CPU, i)
				break
			}
		} else {
			pg, err := ring.Consume()
			if err != nil {
				WARN("cross_cpu_alloc_put: deq empty ring (cpu:%d) i:%d\n",
					rec.CPU, i)
				break
			}
			FreePage(pg)
		}
		cnt++
	}
	rec.Stop(cnt)

	countRingSide(enqCPU, cnt)
	if !rec.CompletedFull() {
		benchCnts.grp.Inc(benchCnts.hEarlyStop)
	}
	return cnt
}

// countRingSide updates the produced/consumed totals, outside the
// measured loop.
func countRingSide(enqCPU bool, cnt uint64) {
	if enqCPU {
		benchCnts.grp.Add(benchCnts.hProduced, counters.Val(cnt))
	} else {
		benchCnts.grp.Add(benchCnts.hConsumed, counters.Val(cnt))
	}
}
