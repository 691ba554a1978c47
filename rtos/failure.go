// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package rtos

import (
	"fmt"
	"os"
	"sync"
)

// FailureKind classifies a fatal, unrecoverable-in-flight condition.
type FailureKind int

const (
	// FailureResourceAllocation is a resource allocation failure at
	// startup (e.g. thread creation failed).
	FailureResourceAllocation FailureKind = iota
	// FailureThreadReturned is a Thread's Run returning, which must
	// never happen.
	FailureThreadReturned
	// FailureGeneric is any other unrecoverable runtime error.
	FailureGeneric
)

// FailureReason describes a fatal condition passed to the installed
// FailureHandler.
type FailureReason struct {
	Kind    FailureKind
	Message string
}

// FailureHandler is invoked for fatal conditions: resource allocation
// failures, a Thread's Run returning, and other unrecoverable runtime
// errors. The default handler prints the reason and aborts the process;
// integrators may install their own to, for example, reset the board
// instead.
type FailureHandler func(reason FailureReason)

var (
	failureMu      sync.Mutex
	failureHandler FailureHandler = defaultFailureHandler
)

// SetFailureHandler installs handler as the process-wide fatal-failure
// handler, replacing any previously installed handler.
func SetFailureHandler(handler FailureHandler) {
	failureMu.Lock()
	defer failureMu.Unlock()
	failureHandler = handler
}

// Fail invokes the currently installed FailureHandler with reason.
func Fail(reason FailureReason) {
	failureMu.Lock()
	handler := failureHandler
	failureMu.Unlock()
	handler(reason)
}

func defaultFailureHandler(reason FailureReason) {
	fmt.Fprintf(os.Stderr, "outpost: fatal: %v: %s\n", reason.Kind, reason.Message)
	os.Exit(1)
}

func (k FailureKind) String() string {
	switch k {
	case FailureResourceAllocation:
		return "resource allocation failed"
	case FailureThreadReturned:
		return "thread returned"
	case FailureGeneric:
		return "generic runtime error"
	default:
		return "unknown failure"
	}
}
