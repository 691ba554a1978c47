// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package lockfree provides the non-blocking bounded queue algorithms that
// back the shared-buffer free list and the software bus's per-channel
// fan-out queue.
//
// It is a domain-adapted descendant of code.hybscloud.com/lfq: the two
// access patterns the core middleware actually needs are kept (a
// single-producer multi-consumer queue for bus channels, whose single
// producer is always the dispatch loop, and a multi-producer
// multi-consumer indirect queue for pool free lists, whose slots carry a
// buffer index rather than a value), trimmed of the SPSC/MPSC variants,
// builder API and 128-bit CAS specializations that this middleware never
// exercises.
package lockfree

import "code.hybscloud.com/iox"

// ErrWouldBlock indicates the operation cannot proceed immediately: the
// queue is full (Enqueue) or empty (Dequeue). It is an alias of
// [iox.ErrWouldBlock] for ecosystem consistency, matching the convention
// established by code.hybscloud.com/lfq.
var ErrWouldBlock = iox.ErrWouldBlock

// roundToPow2 rounds n up to the next power of 2.
func roundToPow2(n int) int {
	if n < 2 {
		return 2
	}
	n--
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n |= n >> 32
	return n + 1
}

// pad is cache line padding to prevent false sharing.
type pad [64]byte

// padShort is padding to fill a cache line after an 8-byte field.
type padShort [64 - 8]byte
