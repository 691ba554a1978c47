// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package rtos

import (
	"time"

	"code.hybscloud.com/outpost/clock"
)

// Queue is a bounded FIFO safe for multiple concurrent producers and
// consumers. Unlike the non-blocking queues in internal/lockfree (which
// back pools and bus channels), rtos.Queue is the blocking primitive
// spec.md §4.C describes: Send/Receive suspend the calling goroutine up
// to a timeout rather than failing immediately.
type Queue[T any] struct {
	ch chan T
}

// NewQueue creates a Queue with the given fixed capacity.
func NewQueue[T any](capacity int) *Queue[T] {
	return &Queue[T]{ch: make(chan T, capacity)}
}

// Send enqueues v, blocking up to timeout if the queue is full. Returns
// false on expiry without enqueueing.
func (q *Queue[T]) Send(v T, timeout clock.Duration) bool {
	if timeout.IsMyriad() {
		q.ch <- v
		return true
	}
	if timeout == clock.Zero {
		select {
		case q.ch <- v:
			return true
		default:
			return false
		}
	}
	timer := time.NewTimer(microseconds(timeout))
	defer timer.Stop()
	select {
	case q.ch <- v:
		return true
	case <-timer.C:
		return false
	}
}

// Receive dequeues a value, blocking up to timeout if the queue is empty.
// Returns the zero value and false on expiry.
func (q *Queue[T]) Receive(timeout clock.Duration) (T, bool) {
	if timeout.IsMyriad() {
		v := <-q.ch
		return v, true
	}
	if timeout == clock.Zero {
		select {
		case v := <-q.ch:
			return v, true
		default:
			var zero T
			return zero, false
		}
	}
	timer := time.NewTimer(microseconds(timeout))
	defer timer.Stop()
	select {
	case v := <-q.ch:
		return v, true
	case <-timer.C:
		var zero T
		return zero, false
	}
}

// SendFromISR enqueues v without blocking, reporting whether it succeeded.
// Go has no interrupt context; this is the non-blocking try-send spec.md
// §5 requires of ISR-safe queue operations, documented under its ISR name
// so call sites written against the spec compile unchanged.
func (q *Queue[T]) SendFromISR(v T) bool {
	select {
	case q.ch <- v:
		return true
	default:
		return false
	}
}

// Cap returns the queue's fixed capacity.
func (q *Queue[T]) Cap() int { return cap(q.ch) }

// Len returns an instantaneous count of queued elements.
func (q *Queue[T]) Len() int { return len(q.ch) }

func microseconds(d clock.Duration) time.Duration {
	return time.Duration(d.Microseconds()) * time.Microsecond
}
