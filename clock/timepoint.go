// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package clock

import (
	"fmt"
	"reflect"
	"sync"
)

// Epoch tags a TimePoint with a compile-time-distinguishable time origin.
// It has no methods to implement beyond marking membership; the zero-size
// concrete types below are its only intended implementations.
type Epoch interface {
	epochName() string
}

// SpacecraftElapsedTime is the epoch produced by the middleware's own
// Clock: microseconds elapsed since an integrator-defined mission epoch.
type SpacecraftElapsedTime struct{}

func (SpacecraftElapsedTime) epochName() string { return "SpacecraftElapsedTime" }

// Gps is the GPS time epoch (seconds since 1980-01-06, here carried as
// microseconds like every other epoch in this package).
type Gps struct{}

func (Gps) epochName() string { return "Gps" }

// Unix is the Unix epoch (seconds since 1970-01-01).
type Unix struct{}

func (Unix) epochName() string { return "Unix" }

// TimePoint is a Duration since epoch E. TimePoints of different epochs
// cannot be compared or subtracted at the type level; converting between
// epochs requires RegisterEpochConverter/Convert.
type TimePoint[E Epoch] struct {
	since Duration
}

// At constructs a TimePoint at the given duration since its epoch.
func At[E Epoch](since Duration) TimePoint[E] {
	return TimePoint[E]{since: since}
}

// Since returns the duration since the TimePoint's epoch.
func (tp TimePoint[E]) Since() Duration { return tp.since }

// Add returns tp advanced by d.
func (tp TimePoint[E]) Add(d Duration) TimePoint[E] {
	return TimePoint[E]{since: tp.since.Add(d)}
}

// SubDuration returns tp moved back by d.
func (tp TimePoint[E]) SubDuration(d Duration) TimePoint[E] {
	return TimePoint[E]{since: Duration(int64(tp.since) - int64(d))}
}

// Sub returns the signed Duration from other to tp (tp - other). Unlike
// Duration.Sub, this may be negative: TimePoint subtraction expresses
// "how far apart", not "how much time remains".
func (tp TimePoint[E]) Sub(other TimePoint[E]) Duration {
	return Duration(int64(tp.since) - int64(other.since))
}

// Compare returns -1, 0, or 1 as tp is before, equal to, or after other.
func (tp TimePoint[E]) Compare(other TimePoint[E]) int {
	return tp.since.Compare(other.since)
}

// Before reports whether tp is strictly earlier than other.
func (tp TimePoint[E]) Before(other TimePoint[E]) bool { return tp.since < other.since }

// After reports whether tp is strictly later than other.
func (tp TimePoint[E]) After(other TimePoint[E]) bool { return tp.since > other.since }

// converterKey pairs the reflect.Type of a from-epoch and a to-epoch.
// TimeEpochConverter has no partial-specialization analogue in Go, so
// conversions are registered into a process-wide table keyed by this pair
// instead, following the same "static registration, no central
// initialization order dependency" idiom spec.md §9 prescribes for
// Topic/Subscription wiring.
type converterKey struct {
	from, to reflect.Type
}

var (
	convertersMu sync.RWMutex
	converters   = map[converterKey]func(int64) int64{}
)

// RegisterEpochConverter installs a conversion function from epoch From to
// epoch To. Panics if a converter for the pair is already registered: a
// converter should be installed exactly once, at program start, by the
// integrator who knows the relationship between the two epochs (e.g. the
// mission-epoch-to-GPS-epoch offset).
func RegisterEpochConverter[From, To Epoch](convert func(Duration) Duration) {
	var from From
	var to To
	key := converterKey{from: reflect.TypeOf(from), to: reflect.TypeOf(to)}

	convertersMu.Lock()
	defer convertersMu.Unlock()
	if _, exists := converters[key]; exists {
		panic(fmt.Sprintf("clock: epoch converter %s->%s already registered", from.epochName(), to.epochName()))
	}
	converters[key] = func(us int64) int64 { return int64(convert(Duration(us))) }
}

// Convert converts tp from epoch From to epoch To using a previously
// registered converter. The second return value is false if no converter
// has been registered for the pair; conversion across unrelated epochs is
// forbidden at the type level everywhere except through this explicit,
// fallible call.
func Convert[From, To Epoch](tp TimePoint[From]) (TimePoint[To], bool) {
	var from From
	var to To
	key := converterKey{from: reflect.TypeOf(from), to: reflect.TypeOf(to)}

	convertersMu.RLock()
	fn, ok := converters[key]
	convertersMu.RUnlock()
	if !ok {
		return TimePoint[To]{}, false
	}
	return TimePoint[To]{since: Duration(fn(int64(tp.since)))}, true
}
