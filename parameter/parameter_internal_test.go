// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package parameter

import (
	"testing"

	"code.hybscloud.com/outpost/clock"
)

// TestConcurrentWriteScenario exercises scenario S5 exactly: caller A
// takes the write flag and pauses before installing its new value;
// caller B's concurrent SetValue must fail with ErrConcurrentWrite
// without disturbing the value a reader observes; once A completes, the
// new value is visible.
func TestConcurrentWriteScenario(t *testing.T) {
	clk := clock.NewSystemClock()
	t0 := clk.Now()
	p := NewParameter[uint32](42, 1, 10, t0)

	// Caller A takes the write flag and pauses, simulating a context
	// switch between CAS and install.
	if !p.writing.CompareAndSwapAcqRel(false, true) {
		t.Fatalf("A: failed to take write flag")
	}

	t2 := t0.Add(clock.Milliseconds(2))
	if err := p.SetValue(12, t2); err != ErrConcurrentWrite {
		t.Fatalf("B: SetValue err = %v, want ErrConcurrentWrite", err)
	}

	v, ts := p.GetValue()
	if v != 10 || ts != t0 {
		t.Fatalf("GetValue during A's write = (%d, %v), want (10, %v)", v, ts, t0)
	}

	// A completes its paused write.
	t1 := t0.Add(clock.Milliseconds(1))
	p.current.Store(&snapshot[uint32]{value: 11, timestamp: t1})
	p.writing.StoreRelease(false)

	v, ts = p.GetValue()
	if v != 11 || ts != t1 {
		t.Fatalf("GetValue after A completes = (%d, %v), want (11, %v)", v, ts, t1)
	}
}
