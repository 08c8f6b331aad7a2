// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a source-available license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

package pagebench

import (
	"testing"
)

func TestConfigValidate(t *testing.T) {
	ok := func() *Config {
		c := DefaultConfig()
		c.CPUs = []int{0}
		return c
	}

	if err := ok().Validate(); err != nil {
		t.Fatalf("default config rejected: %v", err)
	}

	c := ok()
	c.RingSize = 0
	if err := c.Validate(); err != ErrInvalidCapacity {
		t.Errorf("ring size 0: expected ErrInvalidCapacity, got %v", err)
	}
	c = ok()
	c.RingSize = MaxRingSize + 1
	if err := c.Validate(); err != ErrInvalidCapacity {
		t.Errorf("huge ring: expected ErrInvalidCapacity, got %v", err)
	}

	// an iteration count whose doubled value overflows the 32-bit
	// position arithmetic must be rejected before any task is spawned
	c = ok()
	c.Loops = 0x80000000
	if err := c.Validate(); err != ErrCfgLoopOverflow {
		t.Errorf("expected ErrCfgLoopOverflow, got %v", err)
	}
	c = ok()
	c.Loops = 0x7fffffff // just below the threshold
	if err := c.Validate(); err != nil {
		t.Errorf("boundary loop count rejected: %v", err)
	}

	c = ok()
	c.Prefill = c.RingSize + 1
	if err := c.Validate(); err != ErrCfgPrefill {
		t.Errorf("expected ErrCfgPrefill, got %v", err)
	}
	c = ok()
	c.Prefill = -1
	if err := c.Validate(); err != ErrCfgPrefill {
		t.Errorf("negative prefill: expected ErrCfgPrefill, got %v", err)
	}

	c = ok()
	c.PageOrder = MaxOrder + 1
	if err := c.Validate(); err != ErrCfgOrder {
		t.Errorf("expected ErrCfgOrder, got %v", err)
	}

	c = ok()
	c.CPUs = nil
	if err := c.Validate(); err != ErrCfgCPUs {
		t.Errorf("expected ErrCfgCPUs, got %v", err)
	}
	c = ok()
	c.CPUs = []int{-1}
	if err := c.Validate(); err != ErrCfgCPUs {
		t.Errorf("negative cpu: expected ErrCfgCPUs, got %v", err)
	}
	// a duplicated cpu would make two tasks share one record
	c = ok()
	c.CPUs = []int{0, 0}
	if err := c.Validate(); err != ErrCfgCPUs {
		t.Errorf("duplicate cpu: expected ErrCfgCPUs, got %v", err)
	}
}

func TestCfgSnapshot(t *testing.T) {
	old := GetCfg()
	defer SetCfg(old)

	cfg := DefaultConfig()
	cfg.PageOrder = 3
	SetCfg(cfg)
	if got := GetCfg(); got.PageOrder != 3 {
		t.Fatalf("snapshot not replaced: order %d", got.PageOrder)
	}
}
