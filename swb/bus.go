// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package swb

import (
	"log/slog"

	"code.hybscloud.com/atomix"

	"code.hybscloud.com/outpost/clock"
	"code.hybscloud.com/outpost/rtos"
	"code.hybscloud.com/outpost/sharedbuf"
	"code.hybscloud.com/outpost/view"
)

// CopyMode selects how SendBuffer transfers ownership of an existing
// shared buffer handle onto the bus.
type CopyMode int

const (
	// ZeroCopy enqueues the caller's handle as-is, without taking a
	// reference of its own. Once the send succeeds, the bus owns that
	// reference: it passes to the default channel, or is released once the
	// message is dropped or forwarded (each accepting channel gets its own
	// clone). The caller's handle value refers to that same reference, so
	// it is no longer the caller's to release. On failure the reference
	// stays with the caller.
	ZeroCopy CopyMode = iota
	// CopyOnce allocates a fresh buffer from the bus's input pool and
	// copies the payload once, leaving the caller's original handle
	// untouched.
	CopyOnce
)

// BusStats is a point-in-time snapshot of a SoftwareBus's counters.
type BusStats struct {
	Accepted             uint64
	Handled              uint64
	Forwarded            uint64
	Defaulted            uint64
	FailedSendOperations uint64
	FailedCopyOperations uint64
}

// HeartbeatFunc is invoked once per Run loop iteration, whether or not a
// message was available to handle, so a watchdog can observe dispatcher
// liveness even during idle periods.
type HeartbeatFunc func()

// SoftwareBus is a non-blocking, ID-keyed message router: senders copy or
// hand off a payload onto a shared input queue, and a single dispatch
// loop fans each message out to every registered channel whose filter
// matches, falling back to an optional default channel, and otherwise
// dropping the message.
type SoftwareBus[Id comparable] struct {
	clk   clock.Clock
	pool  *sharedbuf.Pool
	input *rtos.Queue[BusMessage[Id]]

	channels       []*BusChannel[Id]
	defaultChannel *BusChannel[Id]
	dispatching    atomix.Bool

	heartbeat HeartbeatFunc
	logger    *slog.Logger

	accepted             atomix.Uint64
	handled              atomix.Uint64
	forwarded            atomix.Uint64
	defaulted            atomix.Uint64
	failedSendOperations atomix.Uint64
	failedCopyOperations atomix.Uint64
}

// NewSoftwareBus creates a bus whose input pool holds poolCount buffers
// of poolElementSize bytes each, and whose input queue holds up to
// queueCapacity pending BusMessages.
func NewSoftwareBus[Id comparable](clk clock.Clock, poolElementSize, poolCount, queueCapacity int) *SoftwareBus[Id] {
	return &SoftwareBus[Id]{
		clk:    clk,
		pool:   sharedbuf.NewPool(poolElementSize, poolCount),
		input:  rtos.NewQueue[BusMessage[Id]](queueCapacity),
		logger: slog.Default(),
	}
}

// SetHeartbeat installs the function Run calls once per loop iteration.
func (b *SoftwareBus[Id]) SetHeartbeat(fn HeartbeatFunc) { b.heartbeat = fn }

// SetLogger overrides the logger used for diagnostic-only events (a full
// channel on delivery). Passing nil discards logging entirely.
func (b *SoftwareBus[Id]) SetLogger(logger *slog.Logger) { b.logger = logger }

// RegisterChannel appends ch to the bus's channel list. Registration is
// append-only and must complete before the dispatch loop starts;
// RegisterChannel returns ErrAlreadyDispatching once Run has been
// called.
func (b *SoftwareBus[Id]) RegisterChannel(ch *BusChannel[Id]) error {
	if b.dispatching.LoadAcquire() {
		return ErrAlreadyDispatching
	}
	b.channels = append(b.channels, ch)
	return nil
}

// SetDefaultChannel installs ch as the bus's default channel, used when
// no registered channel's filter matches a message. At most one default
// channel may ever be set: a second call returns ErrMaxChannelsReached
// and leaves the first assignment untouched.
func (b *SoftwareBus[Id]) SetDefaultChannel(ch *BusChannel[Id]) error {
	if b.dispatching.LoadAcquire() {
		return ErrAlreadyDispatching
	}
	if b.defaultChannel != nil {
		return ErrMaxChannelsReached
	}
	b.defaultChannel = ch
	return nil
}

// SendBytes copies payload into a freshly allocated input-pool buffer and
// enqueues a BusMessage carrying id. Returns ErrMessageTooLong (and bumps
// FailedCopyOperations) if payload exceeds the pool's element size,
// ErrNoBufferAvailable if the pool is exhausted, or ErrSendFailed (and
// bumps FailedSendOperations) if the input queue is full.
func (b *SoftwareBus[Id]) SendBytes(id Id, payload []byte) error {
	if len(payload) > b.pool.ElementSize() {
		b.failedCopyOperations.AddAcqRel(1)
		return ErrMessageTooLong
	}
	buf, err := b.pool.Allocate()
	if err != nil {
		return ErrNoBufferAvailable
	}
	buf.Slice().CopyFrom(view.Of(payload), len(payload))
	constBuf := buf.AsConst()
	buf.Release()
	return b.enqueueOrRelease(BusMessage[Id]{ID: id, Buffer: constBuf})
}

// SendBuffer enqueues an existing shared buffer handle under mode. See
// CopyMode for ownership semantics.
func (b *SoftwareBus[Id]) SendBuffer(id Id, buf sharedbuf.ConstBufferPointer, mode CopyMode) error {
	if mode == ZeroCopy {
		return b.enqueue(BusMessage[Id]{ID: id, Buffer: buf})
	}

	src := buf.Slice()
	if src.Len() > b.pool.ElementSize() {
		b.failedCopyOperations.AddAcqRel(1)
		return ErrMessageTooLong
	}
	fresh, err := b.pool.Allocate()
	if err != nil {
		return ErrNoBufferAvailable
	}
	fresh.Slice().CopyFrom(src, src.Len())
	constBuf := fresh.AsConst()
	fresh.Release()
	return b.enqueueOrRelease(BusMessage[Id]{ID: id, Buffer: constBuf})
}

// SendMessage enqueues msg as-is under SendBuffer's ZeroCopy ownership
// rule: on success the bus owns msg's buffer reference; on failure the bus
// has not taken it, and it is left unreleased with the caller.
func (b *SoftwareBus[Id]) SendMessage(msg BusMessage[Id]) error {
	return b.enqueue(msg)
}

// enqueueOrRelease is for messages whose buffer the bus itself just
// allocated: on a full input queue it releases that buffer, since
// nothing else holds a reference to it.
func (b *SoftwareBus[Id]) enqueueOrRelease(msg BusMessage[Id]) error {
	if err := b.enqueue(msg); err != nil {
		msg.Release()
		return err
	}
	return nil
}

func (b *SoftwareBus[Id]) enqueue(msg BusMessage[Id]) error {
	if !b.input.Send(msg, clock.Zero) {
		b.failedSendOperations.AddAcqRel(1)
		return ErrSendFailed
	}
	b.accepted.AddAcqRel(1)
	return nil
}

// SingleMessage dequeues and routes exactly one pending message,
// returning false if the input queue was empty (a no-op). It is the
// bus's single-step entry point, for tests and for callers that want
// their own loop rather than Run's.
func (b *SoftwareBus[Id]) SingleMessage() bool {
	msg, ok := b.input.Receive(clock.Zero)
	if !ok {
		return false
	}
	b.route(msg)
	return true
}

// route walks the registered channels, forwarding a cloned reference to
// every one whose filter matches msg — a clone per channel, since a full
// channel must not block or spoil delivery to the others, and each
// channel that does accept the message needs its own live reference
// rather than sharing msg's single one. forwardedMessages only counts a
// successful delivery: a channel whose filter matches but whose queue is
// full still counts as "matched" for default-channel eligibility (per
// the dispatch algorithm's literal "no channel matched" condition), but
// not as delivered.
func (b *SoftwareBus[Id]) route(msg BusMessage[Id]) {
	b.handled.AddAcqRel(1)

	matched := false
	accepted := false
	for _, ch := range b.channels {
		if !ch.Filter().Matches(msg) {
			continue
		}
		matched = true
		forward := BusMessage[Id]{ID: msg.ID, Buffer: msg.Buffer.Clone()}
		if err := ch.Send(forward); err == nil {
			accepted = true
		} else {
			forward.Release()
			if b.logger != nil {
				b.logger.Warn("swb: channel overflow", "id", msg.ID)
			}
		}
	}
	if accepted {
		b.forwarded.AddAcqRel(1)
		msg.Release()
		return
	}

	if !matched && b.defaultChannel != nil && b.defaultChannel.Filter().Matches(msg) {
		if err := b.defaultChannel.Send(msg); err == nil {
			b.defaulted.AddAcqRel(1)
			return
		}
	}

	msg.Release()
}

// Run starts the dispatch loop and blocks until stop is closed. It
// repeatedly calls SingleMessage, calling rtos.Yield when the input queue
// is empty, and invokes the configured heartbeat once per
// iteration regardless of whether a message was handled. Registration
// methods (RegisterChannel, SetDefaultChannel) return ErrAlreadyDispatching
// for the remainder of the bus's lifetime once Run has started.
func (b *SoftwareBus[Id]) Run(stop <-chan struct{}) {
	b.dispatching.StoreRelease(true)
	for {
		select {
		case <-stop:
			return
		default:
		}
		if b.heartbeat != nil {
			b.heartbeat()
		}
		if !b.SingleMessage() {
			rtos.Yield()
		}
	}
}

// InputQueueDepth reports the bus's instantaneous input queue depth.
func (b *SoftwareBus[Id]) InputQueueDepth() int { return b.input.Len() }

// Stats returns a snapshot of the bus's counters.
func (b *SoftwareBus[Id]) Stats() BusStats {
	return BusStats{
		Accepted:             b.accepted.LoadAcquire(),
		Handled:              b.handled.LoadAcquire(),
		Forwarded:            b.forwarded.LoadAcquire(),
		Defaulted:            b.defaulted.LoadAcquire(),
		FailedSendOperations: b.failedSendOperations.LoadAcquire(),
		FailedCopyOperations: b.failedCopyOperations.LoadAcquire(),
	}
}
