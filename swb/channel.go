// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package swb

import (
	"code.hybscloud.com/atomix"
	"code.hybscloud.com/spin"

	"code.hybscloud.com/outpost/clock"
	"code.hybscloud.com/outpost/internal/lockfree"
)

// ChannelStats is a point-in-time snapshot of a BusChannel's counters.
type ChannelStats struct {
	Incoming         uint64
	Appended         uint64
	FailedReceptions uint64
	Retrieved        uint64
}

// BusChannel is a bounded FIFO of BusMessages guarded by a Filter. The
// software bus's dispatch loop is its single producer; any number of
// goroutines may call Receive concurrently, so the queue underneath is
// lockfree.SPMCQueue — the same SPMC shape the dispatch-loop-to-many-
// consumers access pattern calls for.
type BusChannel[Id comparable] struct {
	filter Filter[Id]
	queue  *lockfree.SPMCQueue[BusMessage[Id]]

	incoming         atomix.Uint64
	appended         atomix.Uint64
	failedReceptions atomix.Uint64
	retrieved        atomix.Uint64
}

// NewBusChannel creates a channel of the given capacity (rounded up to
// the next power of 2 by the underlying queue), guarded by filter. A nil
// filter is treated as FilterNone.
func NewBusChannel[Id comparable](capacity int, filter Filter[Id]) *BusChannel[Id] {
	if filter == nil {
		filter = FilterNone[Id]{}
	}
	return &BusChannel[Id]{filter: filter, queue: lockfree.NewSPMCQueue[BusMessage[Id]](capacity)}
}

// Filter returns the channel's routing filter.
func (c *BusChannel[Id]) Filter() Filter[Id] { return c.filter }

// Send enqueues msg without blocking. incoming always increments; on
// success appended increments, on a full queue failedReceptions
// increments and ErrSendFailed is returned. The bus's dispatch loop
// calls Send only after confirming c.filter matches msg, but Send itself
// does not re-check the filter — it trusts its caller, matching the
// dispatcher's own filter-then-send loop in §4.G.
func (c *BusChannel[Id]) Send(msg BusMessage[Id]) error {
	c.incoming.AddAcqRel(1)
	if err := c.queue.Enqueue(msg); err != nil {
		c.failedReceptions.AddAcqRel(1)
		return ErrSendFailed
	}
	c.appended.AddAcqRel(1)
	return nil
}

// Receive dequeues one message, polling up to timeout if the channel is
// currently empty or its queue's single claim attempt lands on a slot
// the producer hasn't finished writing yet. The backoff between
// attempts lives here rather than inside the queue, since only the
// caller knows whether it can afford to spin a while (a best-effort
// poll from test code) or should back off harder (an RTOS thread
// sharing a core with the dispatch loop). Returns ErrNoMessageAvailable
// on expiry.
func (c *BusChannel[Id]) Receive(clk clock.Clock, timeout clock.Duration) (BusMessage[Id], error) {
	to := clock.NewTimeout(clk, timeout)
	sw := spin.Wait{}
	for {
		msg, err := c.queue.Dequeue()
		if err == nil {
			c.retrieved.AddAcqRel(1)
			return msg, nil
		}
		if to.IsExpired() {
			var zero BusMessage[Id]
			return zero, ErrNoMessageAvailable
		}
		sw.Once()
	}
}

// Depth reports the channel's instantaneous queue depth: appended minus
// retrieved messages currently held.
func (c *BusChannel[Id]) Depth() int { return c.queue.Len() }

// Cap returns the channel's usable capacity.
func (c *BusChannel[Id]) Cap() int { return c.queue.Cap() }

// Stats returns a snapshot of the channel's counters.
func (c *BusChannel[Id]) Stats() ChannelStats {
	return ChannelStats{
		Incoming:         c.incoming.LoadAcquire(),
		Appended:         c.appended.LoadAcquire(),
		FailedReceptions: c.failedReceptions.LoadAcquire(),
		Retrieved:        c.retrieved.LoadAcquire(),
	}
}
