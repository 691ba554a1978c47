// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package rtos

import (
	"code.hybscloud.com/atomix"
	"code.hybscloud.com/outpost/clock"
)

// Semaphore is a counting semaphore usable to guard a pool of N
// interchangeable resources, or as a 0-initialized rendezvous point
// between two threads.
type Semaphore struct {
	count atomix.Int32
	ch    chan struct{}
}

// NewSemaphore creates a semaphore with the given initial count.
func NewSemaphore(count uint32) *Semaphore {
	s := &Semaphore{ch: make(chan struct{}, 1<<30)}
	s.count.StoreRelaxed(int32(count))
	for i := uint32(0); i < count; i++ {
		s.ch <- struct{}{}
	}
	return s
}

// Acquire blocks until the count is positive, then decrements it.
func (s *Semaphore) Acquire() {
	<-s.ch
	s.count.AddAcqRel(-1)
}

// AcquireTimeout blocks up to timeout waiting for the count to become
// positive. Returns false on expiry without decrementing the count.
func (s *Semaphore) AcquireTimeout(clk clock.Clock, timeout clock.Duration) bool {
	if timeout.IsMyriad() {
		s.Acquire()
		return true
	}
	select {
	case <-s.ch:
		s.count.AddAcqRel(-1)
		return true
	default:
	}
	to := clock.NewTimeout(clk, timeout)
	for !to.IsExpired() {
		select {
		case <-s.ch:
			s.count.AddAcqRel(-1)
			return true
		default:
		}
		Yield()
	}
	return false
}

// Release increments the count, waking one waiter if any is blocked in
// Acquire.
func (s *Semaphore) Release() {
	s.count.AddAcqRel(1)
	s.ch <- struct{}{}
}

// AcquireFromISR behaves like Acquire but never blocks: it reports failure
// immediately instead of waiting, since an interrupt handler must not
// suspend. woken is unused on this backend (Go has no interrupt context;
// the parameter is kept so the call signature documents the contract
// spec.md §5 assigns to ISR-safe operations) but is still accepted so
// call sites written against the spec's ISR API compile unchanged.
func (s *Semaphore) AcquireFromISR(woken *bool) bool {
	select {
	case <-s.ch:
		s.count.AddAcqRel(-1)
		return true
	default:
		return false
	}
}

// ReleaseFromISR behaves like Release but never blocks. woken is set to
// true whenever the released permit is made available to waiters, the
// closest Go analogue of "a higher-priority task became runnable"; this
// backend does not check whether any waiter is actually blocked.
func (s *Semaphore) ReleaseFromISR(woken *bool) {
	s.count.AddAcqRel(1)
	select {
	case s.ch <- struct{}{}:
		if woken != nil {
			*woken = true
		}
	default:
		// Channel full: capacity was sized generously at construction,
		// this should not happen in practice.
	}
}

// Count returns the semaphore's current count. Observability only; do not
// use for acquire/release decisions (races against concurrent operations).
func (s *Semaphore) Count() int32 { return s.count.LoadAcquire() }

// BinarySemaphore has exactly two states: acquired and released.
// Releasing an already-released semaphore is a no-op — it does not
// accumulate, unlike Semaphore.
type BinarySemaphore struct {
	released atomix.Bool
	ch       chan struct{}
}

// NewBinarySemaphore creates a BinarySemaphore in the given initial state.
func NewBinarySemaphore(released bool) *BinarySemaphore {
	b := &BinarySemaphore{ch: make(chan struct{}, 1)}
	b.released.StoreRelaxed(released)
	if released {
		b.ch <- struct{}{}
	}
	return b
}

// Acquire blocks until the semaphore is released, then sets it to
// acquired.
func (b *BinarySemaphore) Acquire() {
	<-b.ch
	b.released.StoreRelease(false)
}

// AcquireTimeout blocks up to timeout. Returns false on expiry.
func (b *BinarySemaphore) AcquireTimeout(clk clock.Clock, timeout clock.Duration) bool {
	if timeout.IsMyriad() {
		b.Acquire()
		return true
	}
	select {
	case <-b.ch:
		b.released.StoreRelease(false)
		return true
	default:
	}
	to := clock.NewTimeout(clk, timeout)
	for !to.IsExpired() {
		select {
		case <-b.ch:
			b.released.StoreRelease(false)
			return true
		default:
		}
		Yield()
	}
	return false
}

// Release sets the semaphore to released. A no-op if already released.
func (b *BinarySemaphore) Release() {
	if b.released.CompareAndSwapAcqRel(false, true) {
		b.ch <- struct{}{}
	}
}

// AcquireFromISR behaves like Acquire but never blocks.
func (b *BinarySemaphore) AcquireFromISR(woken *bool) bool {
	select {
	case <-b.ch:
		b.released.StoreRelease(false)
		return true
	default:
		return false
	}
}

// ReleaseFromISR behaves like Release but never blocks, setting woken
// whenever the semaphore changes from acquired to released; whether a
// waiter is actually blocked is not checked.
func (b *BinarySemaphore) ReleaseFromISR(woken *bool) {
	if b.released.CompareAndSwapAcqRel(false, true) {
		b.ch <- struct{}{}
		if woken != nil {
			*woken = true
		}
	}
}

// IsReleased reports the semaphore's current state. Observability only.
func (b *BinarySemaphore) IsReleased() bool { return b.released.LoadAcquire() }
