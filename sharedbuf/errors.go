// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package sharedbuf provides reference-counted, pool-backed byte buffers
// with parent/child sub-views, giving heap-free zero-copy dataflow across
// goroutines. It is the Go port of outpost's SharedBuffer/SharedBufferPool
// subsystem.
package sharedbuf

import "errors"

// ErrInvalidRange is returned by GetChild when offset+length falls outside
// the addressable region of the handle it is called on.
var ErrInvalidRange = errors.New("sharedbuf: child range out of bounds")

// ErrInvalidHandle is returned when an operation is attempted on a null
// (zero-value) pointer that requires a live buffer.
var ErrInvalidHandle = errors.New("sharedbuf: handle is invalid")
