// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package container provides the intrusive, allocation-free containers the
// rest of the middleware is built on: singly and circular singly linked
// lists, a self-registering "implicit" list used for static wiring, and a
// fixed sorted-array map.
//
// All containers are intrusive: the link field lives on the node itself
// (embed Node[T]), and a node may belong to at most one list at a time.
package container

// Node is the intrusive link field. Embed it in any type that will live in
// a SinglyLinkedList or CircularSinglyLinkedList.
type Node[T any] struct {
	next *T
	self *T
}

func (n *Node[T]) linked() bool { return n.self != nil }

// Less is implemented by node payloads that support ordered insertion.
type Less[T any] interface {
	Less(other *T) bool
}

// SinglyLinkedList is a singly linked, intrusive, non-owning list.
//
// Element is the node's own type, which must embed Node[Element] (the Go
// analogue of the C++ origin's CRTP base). The nodeOf function passed to
// NewSinglyLinkedList gives the list access to the embedded link field.
type SinglyLinkedList[T any] struct {
	first *T
	node  func(*T) *Node[T]
}

// NewSinglyLinkedList creates an empty list. nodeOf extracts the embedded
// Node[T] link field from an element; it is required because Go has no
// way to locate an embedded field generically without the caller naming
// it.
func NewSinglyLinkedList[T any](nodeOf func(*T) *Node[T]) *SinglyLinkedList[T] {
	return &SinglyLinkedList[T]{node: nodeOf}
}

// IsEmpty reports whether the list has no elements.
func (l *SinglyLinkedList[T]) IsEmpty() bool { return l.first == nil }

// First returns the first element, or nil if the list is empty.
func (l *SinglyLinkedList[T]) First() *T { return l.first }

// Prepend inserts elem at the head of the list.
func (l *SinglyLinkedList[T]) Prepend(elem *T) {
	n := l.node(elem)
	n.next = l.first
	n.self = elem
	l.first = elem
}

// Insert inserts elem in ascending order according to less, which must be
// a strict-weak-ordering comparison over *T.
func (l *SinglyLinkedList[T]) Insert(elem *T, less func(a, b *T) bool) {
	n := l.node(elem)
	n.self = elem

	if l.first == nil || less(elem, l.first) {
		n.next = l.first
		l.first = elem
		return
	}

	prev := l.first
	for {
		next := l.node(prev).next
		if next == nil || less(elem, next) {
			n.next = next
			l.node(prev).next = elem
			return
		}
		prev = next
	}
}

// RemoveNode unlinks elem from the list. Returns false iff elem is not
// currently linked into this list (including if it was never linked).
func (l *SinglyLinkedList[T]) RemoveNode(elem *T) bool {
	n := l.node(elem)
	if !n.linked() {
		return false
	}

	if l.first == elem {
		l.first = n.next
		n.next, n.self = nil, nil
		return true
	}

	prev := l.first
	for prev != nil {
		prevNode := l.node(prev)
		if prevNode.next == elem {
			prevNode.next = n.next
			n.next, n.self = nil, nil
			return true
		}
		prev = prevNode.next
	}
	return false
}

// Remove unlinks and returns the first element for which condition
// returns true, or nil if none match.
func (l *SinglyLinkedList[T]) Remove(condition func(*T) bool) *T {
	for e := l.first; e != nil; e = l.node(e).next {
		if condition(e) {
			l.RemoveNode(e)
			return e
		}
	}
	return nil
}

// RemoveAll unlinks every element for which condition returns true. If
// postCondition is non-nil, it is invoked with each removed element after
// it has been unlinked from the list.
func (l *SinglyLinkedList[T]) RemoveAll(condition func(*T) bool, postCondition func(*T)) int {
	removed := 0
	e := l.first
	for e != nil {
		next := l.node(e).next
		if condition(e) {
			l.RemoveNode(e)
			removed++
			if postCondition != nil {
				postCondition(e)
			}
		}
		e = next
	}
	return removed
}

// GetN returns the nth element (0-based), or nil if the list is shorter.
func (l *SinglyLinkedList[T]) GetN(n int) *T {
	e := l.first
	for i := 0; e != nil && i < n; i++ {
		e = l.node(e).next
	}
	return e
}

// Get returns the first element for which condition returns true, or nil.
func (l *SinglyLinkedList[T]) Get(condition func(*T) bool) *T {
	for e := l.first; e != nil; e = l.node(e).next {
		if condition(e) {
			return e
		}
	}
	return nil
}

// Size returns the number of elements in the list. O(n).
func (l *SinglyLinkedList[T]) Size() int {
	n := 0
	for e := l.first; e != nil; e = l.node(e).next {
		n++
	}
	return n
}

// Each calls fn for every element in forward order.
func (l *SinglyLinkedList[T]) Each(fn func(*T)) {
	for e := l.first; e != nil; e = l.node(e).next {
		fn(e)
	}
}
