// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a source-available license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

//go:build alloc_pool && !alloc_qmalloc

package pagebench

import (
	"github.com/intuitivelabs/bytespool"
)

// build type constants
const AllocType = AllocPool        // build time alloc type
const AllocTypeName = "alloc_pool" // alloc type as string

// Use different size pools for the page buffers, one pool per size
// class. bytespool.Bpool uses one sync.Pool for each distinct block
// size (sizes are multiples of PageSize).
var bPool bytespool.Bpool

func init() {
	BuildTags = append(BuildTags, AllocTypeName)
	// one pool for each PageSize multiple up to the biggest size class
	if !bPool.Init(0, int(OrderSize(MaxOrder)), PageSize) {
		Log.PANIC("bytes pool init failed\n")
	}
}

// AllocPage allocates one page of the given size class from the
// per-size pools. It returns nil if the order is out of range or the
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
	// (ignore the bool return, it could be used for a miss/hit counter)
	buf, _ := bPool.Get(int(size), true)
	if buf == nil {
		PageAllocStats.Failures.Inc(1)
		PageAllocStats.TotalSize.Dec(uint(size))
		return nil
	}
	PageAllocStats.Orders[order].Inc(1)
	return &Page{buf: buf, order: order}
}

// FreePage returns a page allocated with AllocPage to its pool.
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
	bPool.Put(p.buf) // ignore return (false if size too big for the pool)
	p.buf = nil
}
