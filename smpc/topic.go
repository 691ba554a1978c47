// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package smpc provides typed publish/subscribe messaging: Topic[T] is a
// named sink for messages of type T, Subscription[T] binds a handler
// function to a Topic, and Connect performs the one-time wiring pass that
// links every subscription constructed so far into its topic.
//
// This is the Go port of outpost's SMPC (single message, multiple
// consumer) primitives.
package smpc

import (
	"code.hybscloud.com/outpost/container"
	"code.hybscloud.com/outpost/rtos"
)

// Topic is a named sink for messages of type T. Publish invokes every
// linked subscription synchronously, in the publisher's goroutine, while
// holding the topic's mutex.
type Topic[T any] struct {
	name string
	mu   *rtos.Mutex
	subs *container.SinglyLinkedList[Subscription[T]]
}

// NewTopic creates an empty Topic with the given diagnostic name.
func NewTopic[T any](name string) *Topic[T] {
	t := &Topic[T]{name: name, mu: rtos.NewMutex()}
	t.subs = container.NewSinglyLinkedList[Subscription[T]](func(s *Subscription[T]) *container.Node[Subscription[T]] {
		return &s.link
	})
	return t
}

// Name returns the topic's diagnostic name.
func (t *Topic[T]) Name() string { return t.name }

// Publish delivers msg to every subscription linked into t at the time of
// the call, synchronously, under t's mutex. Publish is reentrant into a
// different topic (a subscriber may publish elsewhere) but calling Publish
// on the same topic from within one of its own subscribers deadlocks, by
// design: Mutex is non-recursive and the spec does not ask for recursive
// publish support.
func (t *Topic[T]) Publish(msg *T) {
	t.mu.Acquire()
	defer t.mu.Release()
	t.subs.Each(func(s *Subscription[T]) {
		s.handler(msg)
	})
}

func (t *Topic[T]) link(s *Subscription[T]) {
	t.mu.Acquire()
	defer t.mu.Release()
	t.subs.Prepend(s)
}

func (t *Topic[T]) unlink(s *Subscription[T]) bool {
	t.mu.Acquire()
	defer t.mu.Release()
	return t.subs.RemoveNode(s)
}
