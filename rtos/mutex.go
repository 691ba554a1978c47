// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package rtos provides the portable concurrency primitives the rest of
// the middleware is built on: Mutex, Semaphore, BinarySemaphore, a bounded
// blocking Queue, Thread, PeriodicTimer and Barrier.
//
// This is the Go port of outpost-core's "none" RTOS backend: a single,
// portable implementation over goroutines, channels and sync primitives,
// standing in for the per-RTOS backends (RTEMS, FreeRTOS) the original
// ships, which spec.md §1 explicitly leaves out of scope ("the spec fixes
// their contracts, not their source").
package rtos

import (
	"sync"

	"code.hybscloud.com/outpost/clock"
)

// Mutex is a non-recursive mutual-exclusion lock.
//
// Unlocking a Mutex that the calling goroutine does not hold is undefined
// behavior, matching the C++ origin's contract (Go's sync.Mutex shares
// this contract exactly, so Mutex is a thin, documented wrapper over it).
type Mutex struct {
	mu sync.Mutex
}

// NewMutex returns an unlocked Mutex.
func NewMutex() *Mutex { return &Mutex{} }

// Acquire blocks until the mutex is owned by the calling goroutine.
func (m *Mutex) Acquire() { m.mu.Lock() }

// AcquireTimeout blocks up to timeout waiting to acquire the mutex.
// Returns true on success. Because sync.Mutex offers no native timed
// lock, this polls with a short backoff; callers on the hot path that
// never contend should prefer Acquire.
func (m *Mutex) AcquireTimeout(clk clock.Clock, timeout clock.Duration) bool {
	if m.tryAcquire() {
		return true
	}
	if timeout == clock.Zero {
		return false
	}
	to := clock.NewTimeout(clk, timeout)
	for !to.IsExpired() {
		if m.tryAcquire() {
			return true
		}
		Yield()
	}
	return m.tryAcquire()
}

func (m *Mutex) tryAcquire() bool { return m.mu.TryLock() }

// Release unlocks the mutex. Never blocks.
func (m *Mutex) Release() { m.mu.Unlock() }

// MutexGuard is a scoped acquirer: construct it with Acquire to lock, and
// call Release (typically via defer) on every exit path to unlock.
type MutexGuard struct {
	m *Mutex
}

// Acquire locks m and returns a guard that releases it.
//
//	guard := rtos.Acquire(m)
//	defer guard.Release()
func Acquire(m *Mutex) MutexGuard {
	m.Acquire()
	return MutexGuard{m: m}
}

// Release unlocks the guarded mutex.
func (g MutexGuard) Release() { g.m.Release() }
