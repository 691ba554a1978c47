// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package lockfree

import (
	"code.hybscloud.com/atomix"
	"code.hybscloud.com/spin"
)

// IndexQueue is a multi-producer multi-consumer free list of pool slot
// indices, implemented as a Treiber stack rather than a FIFO ring: a
// released slot carries no identity worth preserving order for, so
// Dequeue hands back the most recently released index instead of paying
// for FIFO fairness no caller of sharedbuf.Pool needs — and the
// most-recently-released slot is also the one likeliest still warm in
// cache.
//
// It backs sharedbuf.Pool (including pools built by NewExternalPool): allocation pops an
// index, release pushes it back, and any number of goroutines may do
// either concurrently. Indices must be < capacity, the invariant
// sharedbuf.Pool itself guarantees (it only ever hands IndexQueue its own
// slot numbers, never an arbitrary value).
type IndexQueue struct {
	_         pad
	top       atomix.Uint64 // high 32 bits: ABA tag, low 32 bits: (top index + 1), 0 == empty
	_         pad
	depth     atomix.Int64
	_         pad
	next      []uint32 // next[i]: (index+1) of the slot below i, valid only while i is on the stack
	capacity  uint64
}

const topIndexMask = 1<<32 - 1

// NewIndexQueue creates an empty free list with room for up to capacity
// indices, numbered 0..capacity-1.
func NewIndexQueue(capacity int) *IndexQueue {
	if capacity < 1 {
		panic("lockfree: capacity must be >= 1")
	}
	return &IndexQueue{
		next:     make([]uint32, capacity),
		capacity: uint64(capacity),
	}
}

// Enqueue returns index to the free list. Returns ErrWouldBlock if the
// list already holds capacity indices (checked first). Otherwise panics if
// index >= capacity, a caller bug since sharedbuf.Pool never offers an
// index it didn't hand out itself.
func (q *IndexQueue) Enqueue(index uintptr) error {
	if q.depth.LoadAcquire() >= int64(q.capacity) {
		return ErrWouldBlock
	}
	if index >= uintptr(q.capacity) {
		panic("lockfree: index exceeds capacity")
	}

	sw := spin.Wait{}
	for {
		old := q.top.LoadAcquire()
		q.next[index] = uint32(old & topIndexMask)
		tag := ((old >> 32) + 1) & topIndexMask
		newTop := tag<<32 | uint64(index+1)
		if q.top.CompareAndSwapAcqRel(old, newTop) {
			q.depth.AddAcqRel(1)
			return nil
		}
		sw.Once()
	}
}

// Dequeue claims a free index. Returns ErrWouldBlock if none are free.
func (q *IndexQueue) Dequeue() (uintptr, error) {
	sw := spin.Wait{}
	for {
		old := q.top.LoadAcquire()
		topPlusOne := old & topIndexMask
		if topPlusOne == 0 {
			return 0, ErrWouldBlock
		}
		idx := topPlusOne - 1
		tag := ((old >> 32) + 1) & topIndexMask
		newTop := tag<<32 | uint64(q.next[idx])
		if q.top.CompareAndSwapAcqRel(old, newTop) {
			q.depth.AddAcqRel(-1)
			return uintptr(idx), nil
		}
		sw.Once()
	}
}

// Cap returns the queue's capacity.
func (q *IndexQueue) Cap() int {
	return int(q.capacity)
}
