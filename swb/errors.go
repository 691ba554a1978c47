// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package swb implements the software bus: a non-blocking, ID-indexed
// message router that dispatches BusMessages from a single shared input
// queue to filtered subscriber channels, with bounded queues and explicit
// overflow accounting. It is the Go port of outpost's SoftwareBus.
package swb

import "errors"

// ErrMessageTooLong is returned when a payload exceeds the bus's input
// pool element size.
var ErrMessageTooLong = errors.New("swb: message exceeds pool element size")

// ErrSendFailed is returned when the bus's input queue is full, and by
// BusChannel.Send when the channel's queue is full.
var ErrSendFailed = errors.New("swb: input queue is full")

// ErrMaxChannelsReached is returned by SetDefaultChannel when a default
// channel is already set: the first assignment is never silently
// overridden.
var ErrMaxChannelsReached = errors.New("swb: default channel already set")

// ErrNoBufferAvailable is returned when the input pool is exhausted.
var ErrNoBufferAvailable = errors.New("swb: input pool exhausted")

// ErrAlreadyDispatching is returned by RegisterChannel/SetDefaultChannel
// once the bus's dispatch loop has started: registration is a monotonic,
// pre-dispatch phase only.
var ErrAlreadyDispatching = errors.New("swb: registration after dispatch start")

// ErrNoMessageAvailable is returned by BusChannel.Receive on timeout
// expiry with nothing queued.
var ErrNoMessageAvailable = errors.New("swb: no message available")
