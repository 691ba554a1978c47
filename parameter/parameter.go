// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package parameter

import (
	"log/slog"
	"sync/atomic"

	"code.hybscloud.com/atomix"

	"code.hybscloud.com/outpost/clock"
)

// Handle is the type-erased identity every Parameter[T] exposes, letting
// a Store hold parameters of heterogeneous T in one index.
type Handle interface {
	ID() uint32
	TypeTag() uint32
}

// snapshot bundles a value with the timestamp it was written at, so a
// reader always observes a matching (value, timestamp) pair rather than
// racing a writer that updates the two fields separately.
type snapshot[T any] struct {
	value     T
	timestamp clock.TimePoint[clock.SpacecraftElapsedTime]
}

// Parameter holds one (id, T value, timestamp, type-tag) cell with a
// single-writer-at-a-time contract enforced by a test-and-set flag:
// SetValue never blocks, it either wins the flag and writes or loses it
// and reports ErrConcurrentWrite. GetValue never blocks on a writer — it
// atomically loads whatever (value, timestamp) snapshot is currently
// installed, which is either the old one or the new one, never a tear
// between the two.
type Parameter[T any] struct {
	id      uint32
	typeTag uint32
	writing atomix.Bool
	current atomic.Pointer[snapshot[T]]
	logger  *slog.Logger
}

// NewParameter creates a Parameter with id (must be non-zero to ever be
// admitted into a Store), typeTag (the caller's own type discriminant,
// validated on Store lookup), and an initial value/timestamp. Diagnostic
// events (a rejected concurrent write) are logged to slog.Default()
// unless SetLogger installs a different logger.
func NewParameter[T any](id uint32, typeTag uint32, v T, t clock.TimePoint[clock.SpacecraftElapsedTime]) *Parameter[T] {
	p := &Parameter[T]{id: id, typeTag: typeTag, logger: slog.Default()}
	p.current.Store(&snapshot[T]{value: v, timestamp: t})
	return p
}

// SetLogger overrides the logger used for diagnostic-only events. Passing
// nil discards logging entirely.
func (p *Parameter[T]) SetLogger(logger *slog.Logger) { p.logger = logger }

// ID returns the parameter's identifier.
func (p *Parameter[T]) ID() uint32 { return p.id }

// TypeTag returns the parameter's type discriminant.
func (p *Parameter[T]) TypeTag() uint32 { return p.typeTag }

// SetValue test-and-sets the write flag. On success it installs (v, t)
// as the new snapshot and clears the flag, returning nil. On collision —
// another SetValue already holds the flag — it logs the rejection and
// returns ErrConcurrentWrite immediately without touching the value.
func (p *Parameter[T]) SetValue(v T, t clock.TimePoint[clock.SpacecraftElapsedTime]) error {
	if !p.writing.CompareAndSwapAcqRel(false, true) {
		if p.logger != nil {
			p.logger.Warn("parameter: concurrent write rejected", "id", p.id)
		}
		return ErrConcurrentWrite
	}
	p.current.Store(&snapshot[T]{value: v, timestamp: t})
	p.writing.StoreRelease(false)
	return nil
}

// GetValue returns a consistent (value, timestamp) snapshot. Never
// blocks, and never observes a write in progress: it sees either the
// state before or after that write, never a partial one.
func (p *Parameter[T]) GetValue() (T, clock.TimePoint[clock.SpacecraftElapsedTime]) {
	s := p.current.Load()
	return s.value, s.timestamp
}
