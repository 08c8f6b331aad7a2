// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a source-available license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

package pagebench

import (
	"math/rand"
	"testing"
)

func TestPageAlloc(t *testing.T) {
	const N = 10000
	var pages [N]*Page

	allocs0 := PageAllocStats.NewCalls.Get()
	frees0 := PageAllocStats.FreeCalls.Get()
	held0 := PageAllocStats.TotalSize.Get()

	for i := 0; i < N; i++ {
		order := rand.Intn(4) // keep the sizes reasonable
		pg := AllocPage(order)
		if pg == nil {
			t.Fatalf("alloc %d (order %d) failed", i, order)
		}
		if pg.Order() != order {
			t.Fatalf("alloc %d: order %d, expected %d",
				i, pg.Order(), order)
		}
		if uint64(len(pg.Data())) != OrderSize(order) {
			t.Fatalf("alloc %d: size %d, expected %d for order %d",
				i, len(pg.Data()), OrderSize(order), order)
		}
		// the page must be writable over its whole length
		buf := pg.Data()
		buf[0] = 0xaa
		buf[len(buf)-1] = 0x55
		pages[i] = pg
	}
	for i := 0; i < N; i++ {
		FreePage(pages[i])
		pages[i] = nil
	}

	if got := PageAllocStats.NewCalls.Get() - allocs0; got != N {
		t.Errorf("NewCalls delta %d, expected %d", got, N)
	}
	if got := PageAllocStats.FreeCalls.Get() - frees0; got != N {
		t.Errorf("FreeCalls delta %d, expected %d", got, N)
	}
	if held := PageAllocStats.TotalSize.Get(); held != held0 {
		t.Errorf("leaked %d bytes", held-held0)
	}
}

func TestPageAllocBadOrder(t *testing.T) {
	fails0 := PageAllocStats.Failures.Get()
	if pg := AllocPage(MaxOrder + 1); pg != nil {
		t.Fatalf("alloc with order %d succeeded", MaxOrder+1)
	}
	if pg := AllocPage(-1); pg != nil {
		t.Fatalf("alloc with order -1 succeeded")
	}
	if got := PageAllocStats.Failures.Get() - fails0; got != 2 {
		t.Errorf("Failures delta %d, expected 2", got)
	}
}

// the configured ceiling must turn allocations into failures instead
// of exceeding it
func TestPageAllocMemLimit(t *testing.T) {
	old := GetCfg()
	defer SetCfg(old)

	cfg := *old
	cfg.Mem.MaxBenchMem = 4 * PageSize
	SetCfg(&cfg)

	var pages []*Page
	defer func() {
		for _, pg := range pages {
			FreePage(pg)
		}
	}()
	for i := 0; i < 4; i++ {
		pg := AllocPage(0)
		if pg == nil {
			t.Fatalf("alloc %d below the ceiling failed", i)
		}
		pages = append(pages, pg)
	}
	if pg := AllocPage(0); pg != nil {
		pages = append(pages, pg)
		t.Fatalf("alloc above the ceiling succeeded")
	}
	// freeing makes room again
	FreePage(pages[0])
	pages = pages[1:]
	pg := AllocPage(0)
	if pg == nil {
		t.Fatalf("alloc after free failed")
	}
	pages = append(pages, pg)
}

func TestBuildTagRecorded(t *testing.T) {
	found := false
	for _, tag := range BuildTags {
		if tag == AllocTypeName {
			found = true
		}
	}
	if !found {
		t.Fatalf("alloc variant %q not in BuildTags %v",
			AllocTypeName, BuildTags)
	}
}
