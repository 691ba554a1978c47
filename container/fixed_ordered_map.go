// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package container

import "sort"

// Entry is one row of a FixedOrderedMap.
type Entry[K any, V any] struct {
	Key   K
	Value V
}

// FixedOrderedMap is a read-only view over a statically-defined, ascending
// sorted array of Entry. Lookup is binary search; absent keys report
// false rather than a zero value being mistaken for a present one.
//
// The array is caller-owned and must already be sorted by Key in
// ascending order (e.g. a package-level var initialized once at startup).
// FixedOrderedMap does not sort or copy it.
type FixedOrderedMap[K any, V any] struct {
	entries []Entry[K, V]
	less    func(a, b K) bool
}

// NewFixedOrderedMap wraps entries, which must already be sorted
// ascending by Key according to less.
func NewFixedOrderedMap[K any, V any](entries []Entry[K, V], less func(a, b K) bool) *FixedOrderedMap[K, V] {
	return &FixedOrderedMap[K, V]{entries: entries, less: less}
}

// Get returns the value for key and true, or the zero value and false if
// key is absent.
func (m *FixedOrderedMap[K, V]) Get(key K) (V, bool) {
	i := sort.Search(len(m.entries), func(i int) bool {
		return !m.less(m.entries[i].Key, key)
	})
	if i < len(m.entries) && !m.less(key, m.entries[i].Key) {
		return m.entries[i].Value, true
	}
	var zero V
	return zero, false
}

// Len returns the number of entries.
func (m *FixedOrderedMap[K, V]) Len() int { return len(m.entries) }

// At returns the entry at position i in sorted order.
func (m *FixedOrderedMap[K, V]) At(i int) Entry[K, V] { return m.entries[i] }
