// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package view provides a non-owning, bounds-carrying contiguous view over
// a backing array, the Go port of outpost's Slice<T>.
//
// A Slice never allocates and never widens: every sub-view method
// (First, Last, SkipFirst, SkipLast, SubSlice, SubRange) returns a view
// that addresses a subset of the elements its receiver already addressed.
package view

// Slice is a non-owning view over a contiguous region of T.
//
// The zero value is an empty slice. Index and iteration access is
// unchecked, matching the C++ origin's operator[]; callers that need
// bounds checking should compare against Len first.
type Slice[T any] struct {
	data []T
}

// Of wraps a Go slice as a view. The returned Slice aliases s; mutating
// through the Slice mutates s and vice versa.
func Of[T any](s []T) Slice[T] {
	return Slice[T]{data: s}
}

// Len returns the number of elements in the view.
func (s Slice[T]) Len() int {
	return len(s.data)
}

// IsEmpty reports whether the view addresses zero elements.
func (s Slice[T]) IsEmpty() bool {
	return len(s.data) == 0
}

// At returns the element at index i. Unchecked: an out-of-range i panics,
// matching operator[]'s documented UB-on-misuse contract translated to
// Go's closest equivalent (an unrecovered index panic rather than memory
// corruption).
func (s Slice[T]) At(i int) T {
	return s.data[i]
}

// Set assigns the element at index i. Unchecked, see At.
func (s Slice[T]) Set(i int, v T) {
	s.data[i] = v
}

// Raw returns the backing Go slice. Callers must not retain it past the
// lifetime implied by the Slice's own documentation (the view does not
// own the memory).
func (s Slice[T]) Raw() []T {
	return s.data
}

// First returns a view of the first n elements.
//
// Silently truncates to Len() if n exceeds it, matching the C++ origin's
// current behavior (spec Open Question: arguably this should be an
// error, but the existing silent-truncate contract is preserved here
// rather than guessed at).
func (s Slice[T]) First(n int) Slice[T] {
	if n > len(s.data) {
		n = len(s.data)
	}
	if n < 0 {
		n = 0
	}
	return Slice[T]{data: s.data[:n]}
}

// Last returns a view of the last n elements. Silently truncates, see
// First.
func (s Slice[T]) Last(n int) Slice[T] {
	if n > len(s.data) {
		n = len(s.data)
	}
	if n < 0 {
		n = 0
	}
	return Slice[T]{data: s.data[len(s.data)-n:]}
}

// SkipFirst returns a view with the first n elements removed. Saturates
// at an empty view if n >= Len().
func (s Slice[T]) SkipFirst(n int) Slice[T] {
	if n > len(s.data) {
		n = len(s.data)
	}
	if n < 0 {
		n = 0
	}
	return Slice[T]{data: s.data[n:]}
}

// SkipLast returns a view with the last n elements removed. Saturates at
// an empty view if n >= Len().
func (s Slice[T]) SkipLast(n int) Slice[T] {
	if n > len(s.data) {
		n = len(s.data)
	}
	if n < 0 {
		n = 0
	}
	return Slice[T]{data: s.data[:len(s.data)-n]}
}

// SubSlice returns the view [offset, offset+length). Both bounds saturate
// at the current view's extent; a negative offset is treated as 0.
func (s Slice[T]) SubSlice(offset, length int) Slice[T] {
	if offset < 0 {
		offset = 0
	}
	if offset > len(s.data) {
		offset = len(s.data)
	}
	end := offset + length
	if length < 0 || end > len(s.data) {
		end = len(s.data)
	}
	if end < offset {
		end = offset
	}
	return Slice[T]{data: s.data[offset:end]}
}

// SubRange returns the view [from, to). Saturates at the current view's
// extent, matching SubSlice.
func (s Slice[T]) SubRange(from, to int) Slice[T] {
	return s.SubSlice(from, to-from)
}

// CopyFrom copies length elements from src into s.
//
// Returns false without writing anything if length exceeds s.Len() or if
// length is positive but src is empty. A zero-length copy is always legal
// and a no-op. Source and destination must not overlap; CopyFrom does not
// check this.
func (s Slice[T]) CopyFrom(src Slice[T], length int) bool {
	if length == 0 {
		return true
	}
	if length < 0 || length > len(s.data) || length > len(src.data) {
		return false
	}
	copy(s.data[:length], src.data[:length])
	return true
}
