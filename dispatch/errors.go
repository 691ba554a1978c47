// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package dispatch implements the protocol dispatcher: it pulls packets
// off an injected receiver into a caller-sized scratch buffer, reads a
// fixed-width ID out of each, and routes the packet into whichever
// registered (pool, queue) pair claims that ID, with explicit overflow,
// drop, and unmatched-packet accounting.
package dispatch

import "errors"

// ErrTooManyQueues is returned by RegisterQueue once the dispatcher's
// fixed queue-registration limit has been reached.
var ErrTooManyQueues = errors.New("dispatch: too many registered queues")

// ErrDefaultAlreadySet is returned by SetDefaultQueue on a second call:
// the first assignment is never silently overridden.
var ErrDefaultAlreadySet = errors.New("dispatch: default queue already set")

// ErrPacketTooShort names the condition of a received packet shorter than
// the configured ID width, which carries no identifiable ID at all. Step
// does not return it: such a packet is counted as an unmatched package and
// Step reports (true, nil).
var ErrPacketTooShort = errors.New("dispatch: packet shorter than id width")
