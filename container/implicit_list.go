// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package container

import "sync"

// ImplicitNode is the link field embedded by elements of an ImplicitList.
type ImplicitNode[T any] struct {
	next *T
}

// ImplicitList is a self-registering list: elements add themselves via
// Register, typically called from their own constructor, so that
// subscribers to a static table (smpc's subscriptions) wire
// themselves up without a central registry call per instance and without
// depending on package initialization order across translation units.
//
// Go has no global-constructor analogue, so the "static" table is an
// ordinary package-level *ImplicitList[T] value that each constructor
// calls Register against explicitly — this is strategy (a) from spec.md
// §9 ("an explicit registry.register(subscription) call"), chosen over
// link-time tagged sections because Go offers no portable equivalent of
// the latter.
type ImplicitList[T any] struct {
	mu    sync.Mutex
	first *T
	node  func(*T) *ImplicitNode[T]
}

// NewImplicitList creates an empty self-registering list.
func NewImplicitList[T any](nodeOf func(*T) *ImplicitNode[T]) *ImplicitList[T] {
	return &ImplicitList[T]{node: nodeOf}
}

// Register adds elem to the list. Safe to call concurrently, though in
// practice registration happens during single-threaded startup.
func (l *ImplicitList[T]) Register(elem *T) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.node(elem).next = l.first
	l.first = elem
}

// Unregister removes elem from the list, if present. Returns false if elem
// was not registered.
func (l *ImplicitList[T]) Unregister(elem *T) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.first == elem {
		l.first = l.node(elem).next
		l.node(elem).next = nil
		return true
	}
	prev := l.first
	for prev != nil {
		prevNode := l.node(prev)
		if prevNode.next == elem {
			prevNode.next = l.node(elem).next
			l.node(elem).next = nil
			return true
		}
		prev = prevNode.next
	}
	return false
}

// Each calls fn for every registered element. The order is the reverse of
// registration order (most recently registered first), matching a
// prepend-only static list; no ordering across elements is promised
// beyond that.
func (l *ImplicitList[T]) Each(fn func(*T)) {
	l.mu.Lock()
	first := l.first
	l.mu.Unlock()

	for e := first; e != nil; e = l.node(e).next {
		fn(e)
	}
}
