// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package rtos

import (
	"runtime"
	"sync/atomic"
	"time"

	"code.hybscloud.com/outpost/clock"
)

// Runnable is implemented by a Thread's body. Returning from Run is a
// fatal error (matching spec.md §4.C) and is reported to the installed
// FailureHandler rather than silently letting the goroutine exit.
type Runnable interface {
	Run()
}

var nextThreadID atomic.Uint64

// ThreadID opaquely identifies a live Thread. Unique per live Thread,
// matching spec.md's "opaque and unique per live thread" contract.
type ThreadID uint64

// Thread wraps a goroutine with the priority/name/stack-size/FPU metadata
// the original RTOS-backed Thread carries for scheduling and diagnostics.
//
// Go's runtime scheduler has no concept of fixed task priorities or
// per-thread stack sizing, so Priority and StackSize are recorded for
// observability and for parity with code written against the spec, but
// do not currently influence goroutine scheduling — a gap inherent to
// targeting a language runtime instead of an RTOS, called out here rather
// than silently modeled as a no-op elsewhere.
type Thread struct {
	id        ThreadID
	priority  uint8
	stackSize int
	name      string
	useFloat  bool
	run       Runnable
}

// NewThread creates a Thread. priority 0 is the lowest non-idle priority,
// matching spec.md §4.C; stackSize is in bytes.
func NewThread(priority uint8, stackSize int, name string, useFloatingPoint bool, run Runnable) *Thread {
	return &Thread{
		id:        ThreadID(nextThreadID.Add(1)),
		priority:  priority,
		stackSize: stackSize,
		name:      name,
		useFloat:  useFloatingPoint,
		run:       run,
	}
}

// ID returns the thread's opaque identifier.
func (t *Thread) ID() ThreadID { return t.id }

// Name returns the thread's configured name.
func (t *Thread) Name() string { return t.name }

// Priority returns the thread's configured priority.
func (t *Thread) Priority() uint8 { return t.priority }

// Start begins executing Run on a new goroutine. Returning from Run
// routes to the installed FailureHandler: the contract is that a Thread's
// body runs for the lifetime of the program.
func (t *Thread) Start() {
	go func() {
		t.run.Run()
		Fail(FailureReason{
			Kind:    FailureThreadReturned,
			Message: "thread " + t.name + " returned from Run",
		})
	}()
}

// Sleep suspends the calling goroutine for d.
func Sleep(d clock.Duration) {
	time.Sleep(microseconds(d))
}

// Yield offers the scheduler a chance to run other goroutines.
func Yield() {
	runtime.Gosched()
}
