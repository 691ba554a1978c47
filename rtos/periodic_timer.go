// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package rtos

import (
	"time"

	"code.hybscloud.com/outpost/clock"
)

// PeriodicTimer marks off a fixed period relative to its own construction
// time: NextPeriod blocks the calling goroutine until the next period
// boundary and reports whether the previous period was missed (the caller
// took longer than one period to come back around).
type PeriodicTimer struct {
	clk      clock.Clock
	period   clock.Duration
	deadline clock.TimePoint[clock.SpacecraftElapsedTime]
}

// NewPeriodicTimer creates a PeriodicTimer with the given period, anchored
// to clk.Now().
func NewPeriodicTimer(clk clock.Clock, period clock.Duration) *PeriodicTimer {
	return &PeriodicTimer{
		clk:      clk,
		period:   period,
		deadline: clk.Now().Add(period),
	}
}

// NextPeriod blocks until the next period boundary and advances the
// internal deadline by one period. Returns true (a missed deadline) if,
// once the boundary is reached, the current time is more than one full
// period past it.
func (t *PeriodicTimer) NextPeriod() bool {
	missed := false
	for {
		now := t.clk.Now()
		if !now.Before(t.deadline) {
			break
		}
		remaining := t.deadline.Sub(now)
		if remaining > clock.Milliseconds(1) {
			time.Sleep(time.Millisecond)
		} else {
			Yield()
		}
	}
	now := t.clk.Now()
	if now.Sub(t.deadline) > t.period {
		missed = true
	}
	t.deadline = t.deadline.Add(t.period)
	if !t.deadline.After(now) {
		// Deadline already behind current time (we were that late):
		// resynchronize to avoid a burst of immediately-expired periods.
		t.deadline = now.Add(t.period)
	}
	return missed
}

// Period returns the timer's configured period.
func (t *PeriodicTimer) Period() clock.Duration { return t.period }
