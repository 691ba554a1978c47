// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package smpc

import (
	"code.hybscloud.com/atomix"

	"code.hybscloud.com/outpost/container"
)

// Subscription binds a handler function to a Topic[T]. Constructing one
// with NewSubscription registers it into a process-wide pending list;
// Connect performs the actual linking into the topic, matching the origin's
// two-phase "static registration, then one linearization pass" wiring.
type Subscription[T any] struct {
	link    container.Node[Subscription[T]]
	topic   *Topic[T]
	handler func(*T)

	connected atomix.Bool
	entry     *pendingEntry
}

// NewSubscription creates a Subscription bound to topic, to be linked by
// the next call to Connect. handler is invoked synchronously, under
// topic's mutex, for every message published to topic after Connect runs.
func NewSubscription[T any](topic *Topic[T], handler func(*T)) *Subscription[T] {
	s := &Subscription[T]{topic: topic, handler: handler}
	s.entry = registerPending(s.connect, s.disconnect)
	return s
}

// Unsubscribe unlinks s from its topic immediately, without waiting for a
// Connect pass, and marks it so a later Connect/DisconnectAll is a no-op
// for this subscription. Returns false if s was never connected.
func (s *Subscription[T]) Unsubscribe() bool {
	if !s.connected.CompareAndSwapAcqRel(true, false) {
		return false
	}
	pending.Unregister(s.entry)
	return s.topic.unlink(s)
}

func (s *Subscription[T]) connect() {
	if !s.connected.CompareAndSwapAcqRel(false, true) {
		return
	}
	s.topic.link(s)
}

func (s *Subscription[T]) disconnect() {
	if !s.connected.CompareAndSwapAcqRel(true, false) {
		return
	}
	s.topic.unlink(s)
}

// pendingEntry is the type-erased record NewSubscription registers into
// the process-wide pending list: the list itself cannot be generic over
// every Topic[T] instantiation, so it holds closures instead of typed
// Subscription[T] pointers directly.
type pendingEntry struct {
	node       container.ImplicitNode[pendingEntry]
	connect    func()
	disconnect func()
}

var pending = container.NewImplicitList[pendingEntry](func(p *pendingEntry) *container.ImplicitNode[pendingEntry] {
	return &p.node
})

func registerPending(connect, disconnect func()) *pendingEntry {
	e := &pendingEntry{connect: connect, disconnect: disconnect}
	pending.Register(e)
	return e
}

// Connect performs the one-time (idempotent) linearization pass: every
// Subscription and RawSubscription constructed so far is linked into its
// topic. Calling Connect again after further subscriptions were
// constructed links only the new ones; already-connected subscriptions are
// untouched.
func Connect() {
	pending.Each(func(p *pendingEntry) {
		p.connect()
	})
}

// DisconnectAll unlinks every currently connected subscription from its
// topic. Intended for test teardown between scenarios that each want a
// clean set of topics.
func DisconnectAll() {
	pending.Each(func(p *pendingEntry) {
		p.disconnect()
	})
}
