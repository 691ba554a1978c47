// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package parameter implements a lock-free-readable, test-and-set-writable
// parameter store: telemetry/configuration values keyed by a non-zero ID,
// readable without blocking writers and vice versa, indexed once at store
// construction for binary-search lookup.
package parameter

import "errors"

// ErrConcurrentWrite is returned by Parameter.SetValue when another writer
// already holds the write flag; the value is left untouched.
var ErrConcurrentWrite = errors.New("parameter: concurrent write in progress")

// ErrInvalidParameter is returned when a Store lookup references an ID
// that is not present in the store.
var ErrInvalidParameter = errors.New("parameter: no such parameter")

// ErrUninitializedParameter is returned at Store construction for any
// parameter carrying the reserved zero ID.
var ErrUninitializedParameter = errors.New("parameter: uninitialized (zero) ID")

// ErrDuplicatedID is returned at Store construction when two parameters
// share the same non-zero ID.
var ErrDuplicatedID = errors.New("parameter: duplicated ID")

// ErrTooManyElements is returned at Store construction when the combined
// parameter lists exceed the store's fixed capacity.
var ErrTooManyElements = errors.New("parameter: exceeds store capacity")

// ErrIncorrectType is returned by Lookup when the stored parameter's type
// tag does not match the tag the caller is looking up, or when the
// stored handle cannot be asserted to the requested *Parameter[T].
var ErrIncorrectType = errors.New("parameter: incorrect type")

// InvalidID is the reserved sentinel ID that marks an uninitialized
// parameter. No valid Parameter may carry it.
const InvalidID uint32 = 0
