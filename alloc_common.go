// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a source-available license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

package pagebench

// The page allocator is the external service whose cost the benchmarks
// measure. It comes in conditionally compiled variants, selected at
// build time (see alloc_simple.go, alloc_pool.go and alloc_qmalloc.go).
// Each variant defines:
//   const AllocType = ...
//   const AllocTypeName = "..."
//   func AllocPage(order int) *Page
//   func FreePage(p *Page)

// base page size and the maximum supported size class
const PageShift = 12
const PageSize = 1 << PageShift // 4k base unit
const MaxOrder = 10             // up to PageSize << 10 (4MB)

// constants for recording the used alloc variant
const (
	AllocSimple  = iota // plain GC backed make([]byte)
	AllocPool           // per-size pools (bytespool)
	AllocQMalloc        // qmalloc arena, outside the go GC
)

// BuildTags collects the build variant names, for reporting.
var BuildTags []string

// OrderSize returns the page size in bytes for a size class.
func OrderSize(order int) uint64 {
	return uint64(PageSize) << uint(order)
}

// Page is one allocated unit. The buffer comes from the build-selected
// backend; the Page header itself is a small go allocation.
type Page struct {
	buf   []byte
	order int
}

// Data returns the page buffer.
func (p *Page) Data() []byte {
	return p.buf
}

// Order returns the page size class.
func (p *Page) Order() int {
	return p.order
}

// AllocStats keeps the page allocator statistics.
type AllocStats struct {
	TotalSize StatCounter // bytes currently allocated
	NewCalls  StatCounter
	FreeCalls StatCounter
	Failures  StatCounter
	// allocations per size class
	Orders [MaxOrder + 1]StatCounter
}

var PageAllocStats AllocStats

// allocLimChecked accounts size bytes against the configured memory
// ceiling. It returns false (and rolls the accounting back) if the
// ceiling would be exceeded.
func allocLimChecked(size uint64) bool {
	maxMem := GetCfg().Mem.MaxBenchMem
	if PageAllocStats.TotalSize.Inc(uint(size)) > maxMem && maxMem > 0 {
		// limit exceeded
		PageAllocStats.TotalSize.Dec(uint(size))
		PageAllocStats.Failures.Inc(1)
		return false
	}
	return true
}
