// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package rtos

// Barrier is a reusable N-thread rendezvous: Wait blocks every caller
// until numberOfThreads callers have arrived, then releases them all
// together and resets for the next round.
//
// Ported directly from outpost's portable (non-RTEMS/FreeRTOS-specific)
// Barrier implementation: two BinarySemaphores plus a mutex-guarded
// counter, with no dependency on any particular RTOS primitive beyond
// those two, matching spec.md §4.C's note that Barrier is "implemented in
// terms of two BinarySemaphores and a mutex-protected counter" precisely
// so it is portable across backends.
type Barrier struct {
	counterMutex     *Mutex
	waitSemaphore    *BinarySemaphore
	releaseSemaphore *BinarySemaphore

	maxWaiting       uint32
	currentlyWaiting uint32
}

// NewBarrier creates a Barrier for numberOfThreads participants.
func NewBarrier(numberOfThreads uint32) *Barrier {
	return &Barrier{
		counterMutex:     NewMutex(),
		waitSemaphore:    NewBinarySemaphore(false), // acquired
		releaseSemaphore: NewBinarySemaphore(true),  // released
		maxWaiting:       numberOfThreads,
	}
}

// Wait blocks until numberOfThreads goroutines have called Wait, then
// releases all of them and resets the barrier for reuse.
func (b *Barrier) Wait() {
	// Ensure nobody starts waiting while a previous round is still
	// releasing.
	b.releaseSemaphore.Acquire()

	b.counterMutex.Acquire()
	b.currentlyWaiting++
	myNumber := b.currentlyWaiting
	b.counterMutex.Release()

	if myNumber < b.maxWaiting {
		b.releaseSemaphore.Release()

		// Wait until the last arrival starts releasing.
		b.waitSemaphore.Acquire()
		// Release the next waiter in the chain.
		b.waitSemaphore.Release()

		b.counterMutex.Acquire()
		b.currentlyWaiting--
		myNumber = b.currentlyWaiting
		b.counterMutex.Release()

		if myNumber == 0 {
			// Last one out: restore the semaphores to their initial
			// values for the next round.
			b.waitSemaphore.Acquire()
			b.releaseSemaphore.Release()
		}
		return
	}

	// I am the last arrival: kick off the release chain.
	b.waitSemaphore.Release()

	b.counterMutex.Acquire()
	b.currentlyWaiting--
	myNumber = b.currentlyWaiting
	b.counterMutex.Release()

	// Special case numberOfThreads == 1: I am also the last one out.
	if myNumber == 0 {
		b.waitSemaphore.Acquire()
		b.releaseSemaphore.Release()
	}
}
