// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package clock provides the monotonic time model consumed by every other
// middleware layer: a saturating microsecond Duration, epoch-tagged
// TimePoints, a production Clock backed by the host's monotonic tick
// source, and a TestingClock for deterministic unit tests.
package clock

import "math"

// Duration is a signed count of microseconds. Arithmetic saturates at
// Myriad() rather than overflowing, so a chain of additions can never wrap
// around to a small or negative value.
type Duration int64

// Zero is the immediate duration.
const Zero Duration = 0

// myriadValue is "effectively infinite": the maximum representable
// Duration. Named Myriad after the outpost-core origin's naming, not
// because it is literally 10,000 of anything.
const myriadValue Duration = math.MaxInt64

// Myriad returns the "effectively infinite" sentinel duration. Timeouts
// built from Myriad never expire.
func Myriad() Duration { return myriadValue }

// IsMyriad reports whether d is the Myriad sentinel.
func (d Duration) IsMyriad() bool { return d == myriadValue }

// Microseconds constructs a Duration from an integer count of
// microseconds.
func Microseconds(us int64) Duration { return Duration(us) }

// Milliseconds constructs a Duration from an integer count of
// milliseconds.
func Milliseconds(ms int64) Duration {
	return saturatingMul(Duration(ms), 1000)
}

// Seconds constructs a Duration from an integer count of seconds.
func Seconds(s int64) Duration {
	return saturatingMul(Duration(s), 1_000_000)
}

// Microseconds returns d as an integer count of microseconds.
func (d Duration) Microseconds() int64 { return int64(d) }

// Milliseconds returns d as an integer count of milliseconds, truncated.
func (d Duration) Milliseconds() int64 { return int64(d) / 1000 }

// Seconds returns d as a float64 count of seconds. Additive convenience
// accessor (SPEC_FULL.md supplemented feature) for logging call sites
// that want a human-scale number; does not change Duration's integer
// arithmetic.
func (d Duration) Seconds() float64 { return float64(d) / 1_000_000 }

// MillisecondsFloat returns d as a float64 count of milliseconds.
func (d Duration) MillisecondsFloat() float64 { return float64(d) / 1000 }

// Add returns d+other, saturating at Myriad.
func (d Duration) Add(other Duration) Duration {
	if d.IsMyriad() || other.IsMyriad() {
		return myriadValue
	}
	sum := int64(d) + int64(other)
	if other > 0 && sum < int64(d) { // overflow
		return myriadValue
	}
	return Duration(sum)
}

// Sub returns d-other, clamped to Zero on underflow (a Duration represents
// an elapsed or remaining span and is not meant to go negative through
// subtraction of comparable magnitudes; TimePoint subtraction, which can
// legitimately be negative in result direction, uses plain int64 math
// instead of this method).
func (d Duration) Sub(other Duration) Duration {
	diff := int64(d) - int64(other)
	if diff < 0 {
		return Zero
	}
	return Duration(diff)
}

// Mul returns d scaled by factor, saturating at Myriad. A negative product
// clamps to Zero, as Sub does.
func (d Duration) Mul(factor int64) Duration {
	return saturatingMul(d, factor)
}

// Div returns d divided by divisor. Panics on divisor == 0, matching
// integer division's own panic contract; there is no meaningful saturated
// result for division by zero.
func (d Duration) Div(divisor int64) Duration {
	return Duration(int64(d) / divisor)
}

// Compare returns -1, 0, or 1 as d is less than, equal to, or greater than
// other.
func (d Duration) Compare(other Duration) int {
	switch {
	case d < other:
		return -1
	case d > other:
		return 1
	default:
		return 0
	}
}

func saturatingMul(d Duration, factor int64) Duration {
	if d.IsMyriad() {
		return myriadValue
	}
	if factor == 0 || d == 0 {
		return 0
	}
	product := int64(d) * factor
	if product/factor != int64(d) { // overflow
		return myriadValue
	}
	if product < 0 {
		return 0
	}
	return Duration(product)
}
