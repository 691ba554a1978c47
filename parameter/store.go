// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package parameter

import (
	"log/slog"
	"sort"

	"code.hybscloud.com/outpost/container"
)

// List is one caller-assembled group of parameters, typically all the
// parameters one subsystem owns. A Store can be built from one or more
// Lists.
type List []Handle

// Store is a fixed-capacity, ID-indexed collection of parameters built
// once from one or more Lists and never mutated afterward: registration
// happens at construction, lookup is binary search over an
// ID-ascending container.FixedOrderedMap.
type Store struct {
	index  *container.FixedOrderedMap[uint32, Handle]
	logger *slog.Logger
}

// NewStore validates and indexes the combined contents of lists.
// Returns ErrUninitializedParameter if any parameter carries the reserved
// zero ID, ErrDuplicatedID if two parameters share a non-zero ID, and
// ErrTooManyElements if the combined count exceeds capacity. Each
// rejection is also logged to slog.Default() before being returned; call
// SetLogger on the failed-to-build caller's own logger if a different
// sink is wanted, since NewStore returns no *Store to attach one to.
func NewStore(capacity int, lists ...List) (*Store, error) {
	logger := slog.Default()

	var all []Handle
	for _, l := range lists {
		all = append(all, l...)
	}
	if len(all) > capacity {
		logger.Warn("parameter: store capacity exceeded", "count", len(all), "capacity", capacity)
		return nil, ErrTooManyElements
	}

	seen := make(map[uint32]bool, len(all))
	for _, h := range all {
		if h.ID() == InvalidID {
			logger.Warn("parameter: uninitialized parameter rejected")
			return nil, ErrUninitializedParameter
		}
		if seen[h.ID()] {
			logger.Warn("parameter: duplicated id rejected", "id", h.ID())
			return nil, ErrDuplicatedID
		}
		seen[h.ID()] = true
	}

	entries := make([]container.Entry[uint32, Handle], len(all))
	for i, h := range all {
		entries[i] = container.Entry[uint32, Handle]{Key: h.ID(), Value: h}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Key < entries[j].Key })

	return &Store{
		index:  container.NewFixedOrderedMap(entries, func(a, b uint32) bool { return a < b }),
		logger: logger,
	}, nil
}

// SetLogger overrides the logger used for this store's future diagnostic
// events. Passing nil discards logging entirely.
func (s *Store) SetLogger(logger *slog.Logger) { s.logger = logger }

// find looks up the raw Handle for id.
func (s *Store) find(id uint32) (Handle, bool) {
	return s.index.Get(id)
}

// Len returns the number of parameters held by the store.
func (s *Store) Len() int { return s.index.Len() }

// Lookup finds the parameter with id, validates its type tag matches
// typeTag, and asserts it to *Parameter[T]. Returns ErrInvalidParameter
// if id is absent, ErrIncorrectType if the tag or the concrete type
// doesn't match.
func Lookup[T any](s *Store, id uint32, typeTag uint32) (*Parameter[T], error) {
	h, ok := s.find(id)
	if !ok {
		return nil, ErrInvalidParameter
	}
	if h.TypeTag() != typeTag {
		return nil, ErrIncorrectType
	}
	p, ok := h.(*Parameter[T])
	if !ok {
		return nil, ErrIncorrectType
	}
	return p, nil
}
