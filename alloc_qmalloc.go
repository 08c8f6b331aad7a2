// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a source-available license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

//go:build alloc_qmalloc && !alloc_pool

package pagebench

import (
	"unsafe"

	"github.com/intuitivelabs/mallocs/qmalloc"
)

// build type constants
const AllocType = AllocQMalloc        // build time alloc type
const AllocTypeName = "alloc_qmalloc" // alloc type as string

var qm qmalloc.QMalloc

func init() {
	BuildTags = append(BuildTags, AllocTypeName)

	// FIXME: better size it in function of the configured mem max
	mem := make([]byte, 768*1024*1024) // 768MB!
	if !qm.Init(mem, 14, qmalloc.QMDefaultOptions) {
		Log.PANIC("qmalloc Init failed\n")
	}
}

// AllocPage allocates one page of the given size class from the
// qmalloc arena (outside the go GC reach). It returns nil if the order
// is out of range, the arena is exhausted or the configured memory
// ceiling would be exceeded.
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
	p := qm.Malloc(size)
	if p == nil {
		PageAllocStats.Failures.Inc(1)
		PageAllocStats.TotalSize.Dec(uint(size))
		return nil
	}
	// make buf point to the alloc'ed block
	buf := unsafe.Slice((*byte)(p), size)
	PageAllocStats.Orders[order].Inc(1)
	return &Page{buf: buf, order: order}
}

// FreePage frees a page allocated with AllocPage back into the arena.
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
	qm.Free(unsafe.Pointer(&p.buf[0]))
	p.buf = nil
}
