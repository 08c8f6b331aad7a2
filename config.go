// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a source-available license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

package pagebench

import (
	"errors"
	"runtime"
	"sync/atomic"
	"time"
)

// configuration-time errors: all of them are reported before any
// benchmark task is spawned
var (
	ErrCfgLoopOverflow = errors.New("loop count would overflow 32-bit ring arithmetic")
	ErrCfgPrefill      = errors.New("prefill count exceeds the ring size")
	ErrCfgOrder        = errors.New("page order out of range")
	ErrCfgCPUs         = errors.New("invalid benchmark cpu selection")
)

// debugging flags
type DbgFlags uint32

const (
	DbgFAllocs DbgFlags = 1 << iota // extra page alloc/free checks
)

type MemCfg struct {
	// maximum memory the page benchmarks may hold at any moment
	// (0 == no limit)
	MaxBenchMem uint64
}

// Config holds one benchmark run configuration. It is immutable once a
// run starts; use GetCfg()/SetCfg() for the shared snapshot.
type Config struct {
	Loops     uint32        // iterations per benchmark
	PageOrder int           // page size class: PageSize << PageOrder
	RingSize  int           // requested ring capacity
	Prefill   int           // items queued before the measurement starts
	CPUs      []int         // CPUs to pin the ring benchmarks on
	Run       BenchSet      // which benchmarks to run
	MonItvl   time.Duration // counter monitor poll interval
	Dbg       DbgFlags
	Mem       MemCfg
}

// DefaultConfig returns a usable starting configuration: a big ring
// and a generous prefill, so that two CPUs in lockstep do not run dry
// immediately.
func DefaultConfig() *Config {
	return &Config{
		Loops:     1000000,
		PageOrder: 0,
		RingSize:  32000,
		Prefill:   8000,
		CPUs:      []int{0, 1},
		Run:       AllBenchs(),
		MonItvl:   2 * time.Second,
	}
}

// Validate checks a configuration. On failure the run must not start.
func (c *Config) Validate() error {
	if c.RingSize <= 0 || c.RingSize > MaxRingSize {
		return ErrInvalidCapacity
	}
	if err := LoopCntCheck(c.Loops); err != nil {
		return err
	}
	if c.Prefill < 0 || c.Prefill > c.RingSize {
		return ErrCfgPrefill
	}
	if c.PageOrder < 0 || c.PageOrder > MaxOrder {
		return ErrCfgOrder
	}
	if len(c.CPUs) == 0 {
		return ErrCfgCPUs
	}
	for i, cpu := range c.CPUs {
		if cpu < 0 || cpu >= runtime.NumCPU() {
			return ErrCfgCPUs
		}
		// the cpu selection is a set: each task owns its record
		for _, prev := range c.CPUs[:i] {
			if prev == cpu {
				return ErrCfgCPUs
			}
		}
	}
	return nil
}

var crtCfg atomic.Pointer[Config]

func init() {
	SetCfg(DefaultConfig())
}

// GetCfg returns the current config snapshot. The returned value must
// be treated as read-only.
func GetCfg() *Config {
	return crtCfg.Load()
}

// SetCfg atomically replaces the current config snapshot. The caller
// must not modify cfg afterwards.
func SetCfg(cfg *Config) {
	crtCfg.Store(cfg)
}
