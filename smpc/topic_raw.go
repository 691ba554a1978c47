// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package smpc

import (
	"code.hybscloud.com/atomix"

	"code.hybscloud.com/outpost/container"
	"code.hybscloud.com/outpost/rtos"
)

// TopicRaw is the length-erased counterpart of Topic[T]: its payload is a
// plain byte slice rather than a typed T, for callers whose message shape
// varies at runtime.
type TopicRaw struct {
	name string
	mu   *rtos.Mutex
	subs *container.SinglyLinkedList[RawSubscription]
}

// NewTopicRaw creates an empty TopicRaw with the given diagnostic name.
func NewTopicRaw(name string) *TopicRaw {
	t := &TopicRaw{name: name, mu: rtos.NewMutex()}
	t.subs = container.NewSinglyLinkedList[RawSubscription](func(s *RawSubscription) *container.Node[RawSubscription] {
		return &s.link
	})
	return t
}

// Name returns the topic's diagnostic name.
func (t *TopicRaw) Name() string { return t.name }

// Publish delivers payload to every subscription linked at call time,
// synchronously, under t's mutex.
func (t *TopicRaw) Publish(payload []byte) {
	t.mu.Acquire()
	defer t.mu.Release()
	t.subs.Each(func(s *RawSubscription) {
		s.handler(payload)
	})
}

func (t *TopicRaw) link(s *RawSubscription) {
	t.mu.Acquire()
	defer t.mu.Release()
	t.subs.Prepend(s)
}

func (t *TopicRaw) unlink(s *RawSubscription) bool {
	t.mu.Acquire()
	defer t.mu.Release()
	return t.subs.RemoveNode(s)
}

// RawSubscription binds a handler to a TopicRaw. Same two-phase
// construct-then-Connect wiring as Subscription[T].
type RawSubscription struct {
	link    container.Node[RawSubscription]
	topic   *TopicRaw
	handler func([]byte)

	connected atomix.Bool
	entry     *pendingEntry
}

// NewRawSubscription creates a RawSubscription bound to topic, to be
// linked by the next call to Connect.
func NewRawSubscription(topic *TopicRaw, handler func([]byte)) *RawSubscription {
	s := &RawSubscription{topic: topic, handler: handler}
	s.entry = registerPending(s.connect, s.disconnect)
	return s
}

// Unsubscribe unlinks s from its topic immediately. Returns false if s was
// never connected.
func (s *RawSubscription) Unsubscribe() bool {
	if !s.connected.CompareAndSwapAcqRel(true, false) {
		return false
	}
	pending.Unregister(s.entry)
	return s.topic.unlink(s)
}

func (s *RawSubscription) connect() {
	if !s.connected.CompareAndSwapAcqRel(false, true) {
		return
	}
	s.topic.link(s)
}

func (s *RawSubscription) disconnect() {
	if !s.connected.CompareAndSwapAcqRel(true, false) {
		return
	}
	s.topic.unlink(s)
}
