// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package dispatch

import (
	"log/slog"

	"code.hybscloud.com/atomix"

	"code.hybscloud.com/outpost/clock"
	"code.hybscloud.com/outpost/rtos"
	"code.hybscloud.com/outpost/sharedbuf"
	"code.hybscloud.com/outpost/view"
)

// route is one registered (pool, queue) destination for an ID.
type route[Id comparable] struct {
	id      Id
	pool    *sharedbuf.Pool
	queue   *rtos.Queue[sharedbuf.ConstBufferPointer]
	dropped atomix.Uint64
}

// Stats is a point-in-time snapshot of a ProtocolDispatcher's counters.
type Stats struct {
	PartialPackages   uint64
	OverflowedBytes   uint64
	DroppedPackages   uint64
	UnmatchedPackages uint64
}

// ProtocolDispatcher pulls packets from a ReceiverInterface into a fixed
// scratch buffer and routes each into every (pool, queue) pair registered
// for its ID — an ID may have more than one registration, and each one
// gets its own independently allocated, independently copied buffer — or
// into an optional default pair if none match, or drops it unmatched.
//
// Id is decoded from the first idWidth bytes of each packet via decodeID,
// supplied at construction: the dispatcher never assumes Id's wire width
// structurally (no unsafe.Sizeof trick), since that width is a protocol
// decision the caller already knows.
type ProtocolDispatcher[Id comparable] struct {
	receiver    ReceiverInterface
	scratch     []byte
	idWidth     int
	decodeID    func([]byte) Id
	maxRoutes   int
	totalRoutes int

	routes       map[Id][]*route[Id]
	defaultRoute *route[Id]

	dropIncomplete bool
	logger         *slog.Logger

	partialPackages   atomix.Uint64
	overflowedBytes   atomix.Uint64
	droppedPackages   atomix.Uint64
	unmatchedPackages atomix.Uint64
}

// New creates a dispatcher reading into a scratchSize-byte buffer, with
// room for up to maxQueues registered (id -> route) pairs, counted across
// all IDs. decodeID turns the first idWidth bytes of a (possibly
// truncated) packet into an Id.
func New[Id comparable](receiver ReceiverInterface, scratchSize, idWidth int, decodeID func([]byte) Id, maxQueues int) *ProtocolDispatcher[Id] {
	return &ProtocolDispatcher[Id]{
		receiver:  receiver,
		scratch:   make([]byte, scratchSize),
		idWidth:   idWidth,
		decodeID:  decodeID,
		maxRoutes: maxQueues,
		routes:    make(map[Id][]*route[Id], maxQueues),
		logger:    slog.Default(),
	}
}

// SetLogger overrides the logger used for diagnostic-only events (a
// dropped packet). Passing nil discards logging entirely.
func (d *ProtocolDispatcher[Id]) SetLogger(logger *slog.Logger) { d.logger = logger }

// SetDropIncompletePackets enables or disables dropIncompletePackets
// mode: when enabled, a packet flagged as partial (truncated against the
// scratch buffer) is dropped outright rather than forwarded truncated.
func (d *ProtocolDispatcher[Id]) SetDropIncompletePackets(enabled bool) {
	d.dropIncomplete = enabled
}

// RegisterQueue adds (pool, queue) as a destination for id. Registering
// the same id more than once fans a matching packet out to every
// registration, each getting its own allocated copy — a two-queues-one-id
// setup is a valid, supported configuration, not a conflict. Returns
// ErrTooManyQueues once the dispatcher's maxQueues limit, counted across
// all IDs, is reached.
func (d *ProtocolDispatcher[Id]) RegisterQueue(id Id, pool *sharedbuf.Pool, queue *rtos.Queue[sharedbuf.ConstBufferPointer]) error {
	if d.totalRoutes >= d.maxRoutes {
		return ErrTooManyQueues
	}
	d.routes[id] = append(d.routes[id], &route[Id]{id: id, pool: pool, queue: queue})
	d.totalRoutes++
	return nil
}

// SetDefaultQueue installs the (pool, queue) pair used when no
// registration matches a packet's ID. At most one default may be set;
// a second call returns ErrDefaultAlreadySet.
func (d *ProtocolDispatcher[Id]) SetDefaultQueue(pool *sharedbuf.Pool, queue *rtos.Queue[sharedbuf.ConstBufferPointer]) error {
	if d.defaultRoute != nil {
		return ErrDefaultAlreadySet
	}
	d.defaultRoute = &route[Id]{pool: pool, queue: queue}
	return nil
}

// Step pulls and routes exactly one packet, blocking up to timeout for
// the receiver to produce one. Returns false if the receiver reported no
// packet within timeout.
func (d *ProtocolDispatcher[Id]) Step(timeout clock.Duration) (bool, error) {
	receivedBytes, err := d.receiver.Receive(d.scratch, timeout)
	if err != nil {
		return false, err
	}
	if receivedBytes == 0 {
		return false, nil
	}

	copied := receivedBytes
	partial := false
	if copied > len(d.scratch) {
		partial = true
		d.partialPackages.AddAcqRel(1)
		d.overflowedBytes.AddAcqRel(uint64(copied - len(d.scratch)))
		copied = len(d.scratch)
	}
	packet := d.scratch[:copied]

	if partial && d.dropIncomplete {
		return true, nil
	}

	if len(packet) < d.idWidth {
		d.unmatchedPackages.AddAcqRel(1)
		return true, nil
	}
	id := d.decodeID(packet[:d.idWidth])

	matches := d.routes[id]
	if len(matches) == 0 {
		if d.defaultRoute == nil {
			d.unmatchedPackages.AddAcqRel(1)
			return true, nil
		}
		matches = []*route[Id]{d.defaultRoute}
	}

	for _, r := range matches {
		d.deliver(r, packet)
	}
	return true, nil
}

// deliver allocates r's own buffer, copies packet into it (cut to the
// buffer's size if the packet is longer), and enqueues
// it on r's queue. Each matching route gets an independent copy: two
// routes registered under the same ID may draw from different pools, so
// there is no single buffer to share between them.
func (d *ProtocolDispatcher[Id]) deliver(r *route[Id], packet []byte) {
	buf, err := r.pool.Allocate()
	if err != nil {
		d.droppedPackages.AddAcqRel(1)
		r.dropped.AddAcqRel(1)
		if d.logger != nil {
			d.logger.Warn("dispatch: dropped packet", "id", r.id, "reason", "pool exhausted")
		}
		return
	}
	n := len(packet)
	if l := buf.Slice().Len(); n > l {
		n = l
	}
	buf.Slice().CopyFrom(view.Of(packet), n)
	constBuf := buf.AsConst()
	buf.Release()

	if !r.queue.Send(constBuf, clock.Zero) {
		constBuf.Release()
		d.droppedPackages.AddAcqRel(1)
		r.dropped.AddAcqRel(1)
		if d.logger != nil {
			d.logger.Warn("dispatch: dropped packet", "id", r.id, "reason", "queue full")
		}
	}
}

// Run repeatedly calls Step with timeout until stop is closed.
func (d *ProtocolDispatcher[Id]) Run(stop <-chan struct{}, timeout clock.Duration) {
	for {
		select {
		case <-stop:
			return
		default:
		}
		_, _ = d.Step(timeout)
	}
}

// DroppedForID reports how many packets were dropped (allocation failure
// or full queue) across all routes registered to id. Returns 0 for an
// unregistered id.
func (d *ProtocolDispatcher[Id]) DroppedForID(id Id) uint64 {
	var total uint64
	for _, r := range d.routes[id] {
		total += r.dropped.LoadAcquire()
	}
	return total
}

// Stats returns a snapshot of the dispatcher-wide counters.
func (d *ProtocolDispatcher[Id]) Stats() Stats {
	return Stats{
		PartialPackages:   d.partialPackages.LoadAcquire(),
		OverflowedBytes:   d.overflowedBytes.LoadAcquire(),
		DroppedPackages:   d.droppedPackages.LoadAcquire(),
		UnmatchedPackages: d.unmatchedPackages.LoadAcquire(),
	}
}
