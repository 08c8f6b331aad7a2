// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a source-available license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

//go:build !alloc_pool && !alloc_qmalloc

package pagebench

// build type constants
const AllocType = AllocSimple        // build time alloc type
const AllocTypeName = "alloc_simple" // alloc type as string

func init() {
	BuildTags = append(BuildTags, AllocTypeName)
}

// AllocPage allocates one page of the given size class straight from
// the go allocator. It returns nil if the order is out of range or the
// configured memory ceiling would be exceeded.
func AllocPage(order int) *Page {
	PageAllocStats.NewCalls.Inc(1)
	if order < 0 || order > MaxOrder {
		PageAllocStats.Failures.Inc(1)
		return nil
	}
	size := OrderSize(order)
	if !allocLimChecked(size) {
		return nil
	}
	PageAllocStats.Orders[order].Inc(1)
	return &Page{buf: make([]byte, size), order: order}
}

// FreePage releases a page allocated with AllocPage (drops it for the
// GC to collect).
func FreePage(p *Page) {
	PageAllocStats.FreeCalls.Inc(1)
	if p == nil || p.buf == nil {
		BUG("FreePage called with an already freed page: %p\n", p)
		return
	}
	if GetCfg().Dbg&DbgFAllocs != 0 {
		// DBG: poison, to force crashes on use after free
		for i := range p.buf {
			p.buf[i] = 0xff
		}
	}
	PageAllocStats.TotalSize.Dec(uint(OrderSize(p.order)))
	p.buf = nil
}
