// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package lockfree

import (
	"code.hybscloud.com/atomix"
)

// SPMCQueue is an FAA-based single-producer multi-consumer bounded queue.
//
// It backs bus channels: the software bus's dispatch loop is the single
// producer, and application threads calling BusChannel.Receive are the
// (possibly many) consumers. Based on the SCQ algorithm (Nikolaev, DISC
// 2019), using Fetch-And-Add to claim positions, which requires 2n
// physical slots for capacity n.
//
// Dequeue makes exactly one claim attempt per call rather than spinning
// internally until a slot is ready: BusChannel.Receive already polls in
// a loop with its own timeout and backoff, since it is the only layer
// that knows the right backoff policy for its caller (a blocking RTOS
// thread vs. a non-blocking poll from Go code). Retrying inside this
// type as well would duplicate that policy and hide it from the caller
// that actually needs to tune it.
type SPMCQueue[T any] struct {
	_         pad
	head      atomix.Uint64 // consumer index (FAA)
	_         pad
	tail      atomix.Uint64 // producer index (single writer)
	_         pad
	threshold atomix.Int64 // livelock prevention for consumers
	_         pad
	buffer    []spmcSlot[T]
	capacity  uint64
	size      uint64
	mask      uint64
}

type spmcSlot[T any] struct {
	cycle atomix.Uint64
	data  T
	_     padShort
}

// NewSPMCQueue creates a bounded SPMC queue. Capacity rounds up to the
// next power of 2 and must be >= 2.
func NewSPMCQueue[T any](capacity int) *SPMCQueue[T] {
	if capacity < 2 {
		panic("lockfree: capacity must be >= 2")
	}

	n := uint64(roundToPow2(capacity))
	size := n * 2

	q := &SPMCQueue[T]{
		buffer:   make([]spmcSlot[T], size),
		capacity: n,
		size:     size,
		mask:     size - 1,
	}
	q.threshold.StoreRelaxed(3*int64(n) - 1)
	for i := uint64(0); i < size; i++ {
		q.buffer[i].cycle.StoreRelaxed(i / n)
	}
	return q
}

// Enqueue adds an element. Producer-only; callers must serialize Enqueue
// calls externally (the software bus does so by construction: exactly one
// dispatch goroutine calls it).
func (q *SPMCQueue[T]) Enqueue(elem T) error {
	tail := q.tail.LoadRelaxed()
	head := q.head.LoadAcquire()
	if tail >= head+q.capacity {
		return ErrWouldBlock
	}

	cycle := tail / q.capacity
	slot := &q.buffer[tail&q.mask]
	if slot.cycle.LoadAcquire() != cycle {
		return ErrWouldBlock
	}

	slot.data = elem
	slot.cycle.StoreRelease(cycle + 1)
	q.tail.StoreRelaxed(tail + 1)
	q.threshold.StoreRelaxed(3*int64(q.capacity) - 1)
	return nil
}

// Dequeue claims and returns the next element, or ErrWouldBlock if the
// single attempt this call makes finds nothing ready — either the queue
// is genuinely empty, or the claimed slot is still being written by the
// producer and a subsequent call (claiming a fresh position) is expected
// to make progress. Safe for any number of concurrent consumers.
func (q *SPMCQueue[T]) Dequeue() (T, error) {
	var zero T
	if q.threshold.LoadRelaxed() < 0 {
		return zero, ErrWouldBlock
	}

	myHead := q.head.AddAcqRel(1) - 1
	slot := &q.buffer[myHead&q.mask]
	expectedCycle := myHead/q.capacity + 1
	slotCycle := slot.cycle.LoadAcquire()

	if slotCycle == expectedCycle {
		elem := slot.data
		slot.data = zero
		slot.cycle.StoreRelease((myHead + q.size) / q.capacity)
		return elem, nil
	}

	if int64(slotCycle) < int64(expectedCycle) {
		slot.cycle.CompareAndSwapAcqRel(slotCycle, (myHead+q.size)/q.capacity)
		if tail := q.tail.LoadRelaxed(); tail <= myHead+1 {
			q.catchUp(tail, myHead+1)
		}
		q.threshold.AddAcqRel(-1)
	}
	return zero, ErrWouldBlock
}

func (q *SPMCQueue[T]) catchUp(tail, head uint64) {
	for tail < head {
		if q.tail.CompareAndSwapRelaxed(tail, head) {
			return
		}
		tail = q.tail.LoadRelaxed()
		head = q.head.LoadRelaxed()
	}
}

// Len reports an instantaneous, possibly stale, count of queued elements.
// It is for observability only (bus channel depth counters); it is not
// used for correctness decisions anywhere in this package.
func (q *SPMCQueue[T]) Len() int {
	tail := q.tail.LoadAcquire()
	head := q.head.LoadAcquire()
	if tail < head {
		return 0
	}
	if d := tail - head; d <= q.capacity {
		return int(d)
	}
	return int(q.capacity)
}

// Cap returns the queue's usable capacity.
func (q *SPMCQueue[T]) Cap() int {
	return int(q.capacity)
}
