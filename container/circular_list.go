// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package container

// CircularSinglyLinkedList is a circular, intrusive, non-owning list.
//
// The list's head pointer addresses the *last* element; its next field
// points at the first element, closing the ring. An empty list holds a
// nil head. This layout (borrowed from the original
// outpost::CircularSinglyLinkedList) gives O(1) Append and O(1) Last, at
// the cost of First needing head.next instead of head itself.
type CircularSinglyLinkedList[T any] struct {
	last *T
	node func(*T) *Node[T]
}

// NewCircularSinglyLinkedList creates an empty circular list.
func NewCircularSinglyLinkedList[T any](nodeOf func(*T) *Node[T]) *CircularSinglyLinkedList[T] {
	return &CircularSinglyLinkedList[T]{node: nodeOf}
}

// IsEmpty reports whether the list has no elements.
func (l *CircularSinglyLinkedList[T]) IsEmpty() bool { return l.last == nil }

// First returns the first element, or nil if the list is empty. O(1).
func (l *CircularSinglyLinkedList[T]) First() *T {
	if l.last == nil {
		return nil
	}
	return l.node(l.last).next
}

// Last returns the last element, or nil if the list is empty. O(1).
func (l *CircularSinglyLinkedList[T]) Last() *T { return l.last }

// Append inserts elem at the end of the ring. O(1).
func (l *CircularSinglyLinkedList[T]) Append(elem *T) {
	n := l.node(elem)
	n.self = elem
	if l.last == nil {
		n.next = elem
		l.last = elem
		return
	}
	first := l.node(l.last).next
	n.next = first
	l.node(l.last).next = elem
	l.last = elem
}

// Prepend inserts elem at the start of the ring. O(1).
func (l *CircularSinglyLinkedList[T]) Prepend(elem *T) {
	n := l.node(elem)
	n.self = elem
	if l.last == nil {
		n.next = elem
		l.last = elem
		return
	}
	first := l.node(l.last).next
	n.next = first
	l.node(l.last).next = elem
	// elem is now first in iteration order but l.last is unchanged,
	// since l.last.next already points at elem.
}

// Insert inserts elem in ascending order according to less. Ties (neither
// a<b nor b<a) are placed after existing equal elements, matching the
// strict-weak-ordering contract and tie-break rule of the original
// circular_singly_linked_list_impl.h.
func (l *CircularSinglyLinkedList[T]) Insert(elem *T, less func(a, b *T) bool) {
	n := l.node(elem)
	n.self = elem

	if l.last == nil {
		n.next = elem
		l.last = elem
		return
	}

	first := l.node(l.last).next
	if less(elem, first) {
		l.Prepend(elem)
		return
	}

	prev := first
	for prev != l.last {
		next := l.node(prev).next
		if less(elem, next) {
			n.next = next
			l.node(prev).next = elem
			return
		}
		prev = next
	}

	// elem belongs after everything, including ties with the current
	// last element.
	n.next = first
	l.node(l.last).next = elem
	l.last = elem
}

// RemoveNode unlinks elem. Returns false iff elem is not linked.
func (l *CircularSinglyLinkedList[T]) RemoveNode(elem *T) bool {
	n := l.node(elem)
	if !n.linked() {
		return false
	}

	if l.last == elem && l.node(elem).next == elem {
		l.last = nil
		n.next, n.self = nil, nil
		return true
	}

	prev := l.last
	for {
		cur := l.node(prev).next
		if cur == elem {
			l.node(prev).next = n.next
			if l.last == elem {
				l.last = prev
			}
			n.next, n.self = nil, nil
			return true
		}
		prev = cur
		if prev == l.last {
			// Walked the whole ring without finding elem linked here.
			return false
		}
	}
}

// Remove unlinks and returns the first element matching condition, or nil.
func (l *CircularSinglyLinkedList[T]) Remove(condition func(*T) bool) *T {
	if l.last == nil {
		return nil
	}
	first := l.node(l.last).next
	e := first
	for {
		next := l.node(e).next
		if condition(e) {
			l.RemoveNode(e)
			return e
		}
		if e == l.last {
			return nil
		}
		e = next
	}
}

// Size returns the number of elements. O(n).
func (l *CircularSinglyLinkedList[T]) Size() int {
	if l.last == nil {
		return 0
	}
	n := 1
	for e := l.node(l.last).next; e != l.last; e = l.node(e).next {
		n++
	}
	return n
}

// Each calls fn for every element in forward order, starting from First.
func (l *CircularSinglyLinkedList[T]) Each(fn func(*T)) {
	if l.last == nil {
		return
	}
	first := l.node(l.last).next
	e := first
	for {
		fn(e)
		if e == l.last {
			return
		}
		e = l.node(e).next
	}
}
