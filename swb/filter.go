// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package swb

import "code.hybscloud.com/atomix"

// Filter decides whether a BusMessage should be routed to a given
// BusChannel. Implementations must be safe for concurrent use: the
// dispatch loop and any direct BusChannel.Send caller may invoke Matches
// concurrently with channel registration having long since finished.
type Filter[Id comparable] interface {
	Matches(msg BusMessage[Id]) bool
}

// FilterNone matches every message. It is the default filter for a
// channel that wants everything the bus carries.
type FilterNone[Id comparable] struct{}

// Matches always reports true.
func (FilterNone[Id]) Matches(BusMessage[Id]) bool { return true }

// Unsigned constrains Id types RangeFilter and SubscriptionFilter can
// compare and mask: the ordered, bitwise-AND-able integer IDs bus
// messages are keyed by.
type Unsigned interface {
	~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uint
}

// RangeFilter matches IDs in the inclusive range [Min, Max].
type RangeFilter[Id Unsigned] struct {
	Min, Max Id
}

// NewRangeFilter returns a RangeFilter matching [min, max] inclusive.
func NewRangeFilter[Id Unsigned](min, max Id) RangeFilter[Id] {
	return RangeFilter[Id]{Min: min, Max: max}
}

// Matches reports whether msg.ID falls within [f.Min, f.Max].
func (f RangeFilter[Id]) Matches(msg BusMessage[Id]) bool {
	return msg.ID >= f.Min && msg.ID <= f.Max
}

// maskedSubscription is one (id, mask) entry of a SubscriptionFilter,
// with its own hit counter.
type maskedSubscription[Id Unsigned] struct {
	id, mask Id
	hits     atomix.Uint64
}

// SubscriptionFilter matches a message if, for at least one registered
// (id, mask) pair, (msg.ID & mask) == (id & mask). Each pair tracks how
// many times it individually contributed to a match, a supplemented
// observability feature beyond the plain boolean match/no-match the
// origin's SubscriptionFilter exposes.
//
// SubscriptionFilter is built incrementally with Add before being handed
// to RegisterChannel/SetDefaultChannel. Add appends without
// synchronization, so calling it concurrently with Matches is a data race;
// filters are built completely before dispatch starts, matching the
// append-only pre-dispatch registration rule the rest of the bus follows.
type SubscriptionFilter[Id Unsigned] struct {
	subs []*maskedSubscription[Id]
}

// NewSubscriptionFilter returns an empty SubscriptionFilter.
func NewSubscriptionFilter[Id Unsigned]() *SubscriptionFilter[Id] {
	return &SubscriptionFilter[Id]{}
}

// Add registers one (id, mask) pair.
func (f *SubscriptionFilter[Id]) Add(id, mask Id) {
	f.subs = append(f.subs, &maskedSubscription[Id]{id: id, mask: mask})
}

// Matches reports whether msg.ID matches any registered pair, bumping
// that pair's hit counter for every pair it matches (a message may match
// more than one pair).
func (f *SubscriptionFilter[Id]) Matches(msg BusMessage[Id]) bool {
	matched := false
	for _, s := range f.subs {
		if msg.ID&s.mask == s.id&s.mask {
			s.hits.AddAcqRel(1)
			matched = true
		}
	}
	return matched
}

// Hits returns how many times the (id, *) pair registered with this
// exact id has matched a message. Returns 0 if id was never registered.
func (f *SubscriptionFilter[Id]) Hits(id Id) uint64 {
	for _, s := range f.subs {
		if s.id == id {
			return s.hits.LoadAcquire()
		}
	}
	return 0
}
