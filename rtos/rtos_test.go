// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package rtos_test

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"code.hybscloud.com/outpost/clock"
	"code.hybscloud.com/outpost/rtos"
)

func TestMutexExclusion(t *testing.T) {
	m := rtos.NewMutex()
	var counter int
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			guard := rtos.Acquire(m)
			defer guard.Release()
			counter++
		}()
	}
	wg.Wait()
	if counter != 50 {
		t.Fatalf("counter = %d, want 50", counter)
	}
}

func TestMutexAcquireTimeout(t *testing.T) {
	m := rtos.NewMutex()
	m.Acquire()
	clk := clock.NewSystemClock()
	if m.AcquireTimeout(clk, clock.Milliseconds(1)) {
		t.Fatal("AcquireTimeout succeeded on a held mutex")
	}
	m.Release()
	if !m.AcquireTimeout(clk, clock.Zero) {
		t.Fatal("AcquireTimeout failed to acquire a free mutex")
	}
}

func TestSemaphoreCountingAcquireRelease(t *testing.T) {
	s := rtos.NewSemaphore(2)
	s.Acquire()
	s.Acquire()
	if s.Count() != 0 {
		t.Fatalf("Count = %d, want 0", s.Count())
	}
	s.Release()
	if s.Count() != 1 {
		t.Fatalf("Count = %d, want 1", s.Count())
	}
	s.Acquire()
}

func TestBinarySemaphoreDoesNotAccumulate(t *testing.T) {
	b := rtos.NewBinarySemaphore(false)
	b.Release()
	b.Release()
	b.Acquire()
	clk := clock.NewSystemClock()
	if b.AcquireTimeout(clk, clock.Milliseconds(1)) {
		t.Fatal("second Release accumulated a permit")
	}
}

func TestQueueSendReceive(t *testing.T) {
	q := rtos.NewQueue[int](2)
	if !q.Send(1, clock.Zero) {
		t.Fatal("Send failed on empty queue")
	}
	if !q.Send(2, clock.Zero) {
		t.Fatal("Send failed on half-full queue")
	}
	if q.Send(3, clock.Zero) {
		t.Fatal("Send succeeded on full queue")
	}
	v, ok := q.Receive(clock.Zero)
	if !ok || v != 1 {
		t.Fatalf("Receive = %d, %v, want 1, true", v, ok)
	}
}

func TestQueueReceiveTimeoutExpires(t *testing.T) {
	q := rtos.NewQueue[int](1)
	start := time.Now()
	_, ok := q.Receive(clock.Milliseconds(10))
	if ok {
		t.Fatal("Receive succeeded on empty queue")
	}
	if elapsed := time.Since(start); elapsed < 5*time.Millisecond {
		t.Fatalf("Receive returned too early: %v", elapsed)
	}
}

func TestBarrierReleasesAllAtOnce(t *testing.T) {
	const n = 8
	b := rtos.NewBarrier(n)
	var arrived, left atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			arrived.Add(1)
			b.Wait()
			left.Add(1)
		}()
	}
	wg.Wait()
	if arrived.Load() != n || left.Load() != n {
		t.Fatalf("arrived=%d left=%d, want %d each", arrived.Load(), left.Load(), n)
	}
}

func TestBarrierReusable(t *testing.T) {
	b := rtos.NewBarrier(2)
	for round := 0; round < 3; round++ {
		var wg sync.WaitGroup
		wg.Add(2)
		go func() { defer wg.Done(); b.Wait() }()
		go func() { defer wg.Done(); b.Wait() }()
		wg.Wait()
	}
}

func TestBarrierSingleThread(t *testing.T) {
	b := rtos.NewBarrier(1)
	done := make(chan struct{})
	go func() {
		b.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("single-thread barrier never released")
	}
}

func TestPeriodicTimerAdvancesDeadline(t *testing.T) {
	clk := &clock.TestingClock{}
	timer := rtos.NewPeriodicTimer(clk, clock.Milliseconds(10))
	clk.IncrementBy(clock.Milliseconds(10))
	if timer.NextPeriod() {
		t.Fatal("NextPeriod reported missed on an on-time call")
	}
}

func TestPeriodicTimerReportsMissed(t *testing.T) {
	clk := &clock.TestingClock{}
	timer := rtos.NewPeriodicTimer(clk, clock.Milliseconds(10))
	clk.IncrementBy(clock.Milliseconds(30))
	if !timer.NextPeriod() {
		t.Fatal("NextPeriod did not report a missed deadline")
	}
}

func TestFailHandlerInvoked(t *testing.T) {
	var got rtos.FailureReason
	called := make(chan struct{})
	rtos.SetFailureHandler(func(reason rtos.FailureReason) {
		got = reason
		close(called)
	})
	defer rtos.SetFailureHandler(func(reason rtos.FailureReason) {
		panic(reason.Message)
	})

	rtos.Fail(rtos.FailureReason{Kind: rtos.FailureGeneric, Message: "boom"})
	<-called
	if got.Kind != rtos.FailureGeneric || got.Message != "boom" {
		t.Fatalf("got %+v", got)
	}
}

func TestThreadReturnRoutesToFailureHandler(t *testing.T) {
	failed := make(chan rtos.FailureReason, 1)
	rtos.SetFailureHandler(func(reason rtos.FailureReason) {
		failed <- reason
	})
	defer rtos.SetFailureHandler(func(reason rtos.FailureReason) {
		panic(reason.Message)
	})

	th := rtos.NewThread(0, 0, "returns-immediately", false, runnableFunc(func() {}))
	th.Start()

	select {
	case reason := <-failed:
		if reason.Kind != rtos.FailureThreadReturned {
			t.Fatalf("Kind = %v, want FailureThreadReturned", reason.Kind)
		}
	case <-time.After(time.Second):
		t.Fatal("failure handler was never invoked")
	}
}

type runnableFunc func()

func (f runnableFunc) Run() { f() }
