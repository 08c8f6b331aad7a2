// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a source-available license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

package pagebench

import (
	"errors"
	"sync/atomic"

	"golang.org/x/sys/cpu"
)

var (
	// ErrInvalidCapacity is returned for a non-positive or too big
	// requested ring capacity.
	ErrInvalidCapacity = errors.New("invalid ring capacity")
	// ErrRingFull is the immediate, non-blocking "no free slot" reply.
	// It is an expected steady-state condition and not a failure.
	ErrRingFull = errors.New("ring full")
	// ErrRingEmpty is the immediate, non-blocking "nothing queued" reply.
	// It is an expected steady-state condition and not a failure.
	ErrRingEmpty = errors.New("ring empty")
)

// MaxRingSize is the maximum supported ring capacity. The position
// counters are 32-bit and monotonic, so the capacity must stay well
// below the wrap-around point.
const MaxRingSize = 1 << 30

// PtrRing is a bounded, lock-free single-producer single-consumer ring.
// Exactly one goroutine may call Produce() and exactly one (other)
// goroutine may call Consume(). Neither operation ever blocks: a full
// ring reports ErrRingFull, an empty one ErrRingEmpty.
//
// Each side owns its own position counter and keeps a cached copy of
// the remote one, re-reading it only when the ring appears full resp.
// empty. That way the common case costs one atomic load and one atomic
// store and no cross-core cache-line traffic on the remote counter.
// The two sides are kept on separate cache lines.
//
// Produce transfers ownership of the item to the ring and Consume
// transfers it to the consumer; the consumed slot is zeroed.
type PtrRing[T any] struct {
	// consumer side: consume index + cached copy of the produce index
	cons       atomic.Uint32
	cachedProd uint32
	_          cpu.CacheLinePad

	// producer side: produce index + cached copy of the consume index
	prod       atomic.Uint32
	cachedCons uint32
	_          cpu.CacheLinePad

	// immutable after NewPtrRing()
	slots []T
	mask  uint32
}

// roundUpPow2 returns the next power of two >= v (v > 0).
func roundUpPow2(v uint32) uint32 {
	v--
	v |= v >> 1
	v |= v >> 2
	v |= v >> 4
	v |= v >> 8
	v |= v >> 16
	return v + 1
}

// NewPtrRing creates a ring with at least the requested capacity.
// The effective capacity is the requested one rounded up to the next
// power of two (Cap() reports it). Returns ErrInvalidCapacity for
// capacity <= 0 or capacity > MaxRingSize.
func NewPtrRing[T any](capacity int) (*PtrRing[T], error) {
	if capacity <= 0 || capacity > MaxRingSize {
		return nil, ErrInvalidCapacity
	}
	sz := roundUpPow2(uint32(capacity))
	r := &PtrRing[T]{
		slots: make([]T, sz),
		mask:  sz - 1,
	}
	return r, nil
}

// Produce appends v to the ring. It returns ErrRingFull, without
// changing any state, if there is no free slot.
// Producer-side only.
func (r *PtrRing[T]) Produce(v T) error {
	p := r.prod.Load()
	if p-r.cachedCons > r.mask {
		// looks full => re-read the real consume index
		r.cachedCons = r.cons.Load()
		if p-r.cachedCons > r.mask {
			return ErrRingFull
		}
	}
	r.slots[p&r.mask] = v
	// release the slot to the consumer
	r.prod.Store(p + 1)
	return nil
}

// Consume removes and returns the oldest item in the ring. It returns
// ErrRingEmpty, without changing any state, if there is nothing queued.
// Consumer-side only.
func (r *PtrRing[T]) Consume() (T, error) {
	var zero T
	c := r.cons.Load()
	if c == r.cachedProd {
		// looks empty => re-read the real produce index
		r.cachedProd = r.prod.Load()
		if c == r.cachedProd {
			return zero, ErrRingEmpty
		}
	}
	v := r.slots[c&r.mask]
	r.slots[c&r.mask] = zero // ownership moved out of the ring
	// release the slot to the producer
	r.cons.Store(c + 1)
	return v, nil
}

// Len returns the number of items currently queued.
// The value is a snapshot, exact only if neither side runs concurrently.
func (r *PtrRing[T]) Len() int {
	return int(r.prod.Load() - r.cons.Load())
}

// Cap returns the effective (power of two rounded) capacity.
func (r *PtrRing[T]) Cap() int {
	if r.slots == nil {
		return 0
	}
	return int(r.mask + 1)
}

// Destroy drains all the remaining items, calling cleanup (if not nil)
// on each of them and releases the slot storage. It is needed because
// queued items might own resources (e.g. pending page allocations)
// that the ring cannot release by itself.
// Destroy must not run concurrently with Produce() or Consume().
// Destroying an already destroyed ring is a no-op.
func (r *PtrRing[T]) Destroy(cleanup func(T)) {
	if r == nil || r.slots == nil {
		// guard against double destroy
		return
	}
	for {
		v, err := r.Consume()
		if err != nil {
			break
		}
		if cleanup != nil {
			cleanup(v)
		}
	}
	r.slots = nil
}
