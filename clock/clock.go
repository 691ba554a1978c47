// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package clock

import (
	"time"
)

// Clock produces a monotonic TimePoint tagged with SpacecraftElapsedTime.
// Implementations must never go backwards.
type Clock interface {
	Now() TimePoint[SpacecraftElapsedTime]
}

// SystemClock is the production Clock. It reads the host's monotonic
// clock (via the Go runtime, which itself reads the OS monotonic tick
// source) and reports elapsed microseconds since the SystemClock was
// constructed, saturating against Duration overflow on extremely
// long-running processes rather than wrapping.
type SystemClock struct {
	start time.Time
}

// NewSystemClock returns a SystemClock whose SpacecraftElapsedTime epoch
// begins at the moment of construction.
func NewSystemClock() *SystemClock {
	return &SystemClock{start: time.Now()}
}

// Now returns the monotonic elapsed time since the clock was constructed.
func (c *SystemClock) Now() TimePoint[SpacecraftElapsedTime] {
	elapsed := time.Since(c.start)
	us := elapsed.Microseconds()
	if us < 0 { // defend against a pathological negative monotonic delta
		us = 0
	}
	return At[SpacecraftElapsedTime](Microseconds(us))
}

// TestingClock is a settable Clock for deterministic tests. The zero value
// starts at SpacecraftElapsedTime duration Zero.
type TestingClock struct {
	now TimePoint[SpacecraftElapsedTime]
}

// Now returns the clock's current, caller-controlled time.
func (c *TestingClock) Now() TimePoint[SpacecraftElapsedTime] {
	return c.now
}

// SetTime sets the clock's current time directly.
func (c *TestingClock) SetTime(tp TimePoint[SpacecraftElapsedTime]) {
	c.now = tp
}

// IncrementBy advances the clock's current time by d.
func (c *TestingClock) IncrementBy(d Duration) {
	c.now = c.now.Add(d)
}

// Timeout pairs a Clock with an absolute deadline, so retried waits
// observe a fixed expiry rather than recomputing "time left" on every
// retry (spec.md §5: timeouts are absolute deadlines internally to
// tolerate wake-retries).
type Timeout struct {
	clock    Clock
	deadline TimePoint[SpacecraftElapsedTime]
	forever  bool
}

// NewTimeout returns a Timeout expiring d after clock's current time. A
// Myriad duration never expires.
func NewTimeout(clk Clock, d Duration) Timeout {
	if d.IsMyriad() {
		return Timeout{clock: clk, forever: true}
	}
	return Timeout{clock: clk, deadline: clk.Now().Add(d)}
}

// IsExpired reports whether the timeout's deadline has passed.
func (t Timeout) IsExpired() bool {
	if t.forever {
		return false
	}
	return !t.clock.Now().Before(t.deadline)
}

// Remaining returns the duration until expiry, or Myriad if the timeout
// never expires. Returns Zero once expired.
func (t Timeout) Remaining() Duration {
	if t.forever {
		return Myriad()
	}
	now := t.clock.Now()
	if !now.Before(t.deadline) {
		return Zero
	}
	return t.deadline.Sub(now)
}
