// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package dispatch_test

import (
	"testing"

	"code.hybscloud.com/outpost/clock"
	"code.hybscloud.com/outpost/dispatch"
	"code.hybscloud.com/outpost/rtos"
	"code.hybscloud.com/outpost/sharedbuf"
)

// fakeReceiver yields a fixed sequence of packets, one per Receive call,
// then reports none.
type fakeReceiver struct {
	packets [][]byte
	next    int
}

func (r *fakeReceiver) Receive(buf []byte, _ clock.Duration) (int, error) {
	if r.next >= len(r.packets) {
		return 0, nil
	}
	p := r.packets[r.next]
	r.next++
	copy(buf, p)
	return len(p), nil
}

func decodeUint8ID(b []byte) uint8 { return b[0] }

// TestDispatcherPartialPacket exercises scenario S6 exactly: an 8-byte
// scratch buffer, one (8-byte-element pool, capacity-1 queue) registered
// for id=1, and a 10-byte incoming packet whose first byte is 1.
func TestDispatcherPartialPacket(t *testing.T) {
	packet := make([]byte, 10)
	packet[0] = 1
	for i := 1; i < len(packet); i++ {
		packet[i] = byte(i)
	}
	receiver := &fakeReceiver{packets: [][]byte{packet}}

	d := dispatch.New[uint8](receiver, 8, 1, decodeUint8ID, 4)
	pool := sharedbuf.NewPool(8, 4)
	queue := rtos.NewQueue[sharedbuf.ConstBufferPointer](1)
	if err := d.RegisterQueue(1, pool, queue); err != nil {
		t.Fatalf("RegisterQueue: %v", err)
	}

	ok, err := d.Step(clock.Zero)
	if err != nil || !ok {
		t.Fatalf("Step: ok=%v err=%v", ok, err)
	}

	stats := d.Stats()
	if stats.PartialPackages != 1 {
		t.Fatalf("PartialPackages = %d, want 1", stats.PartialPackages)
	}
	if stats.OverflowedBytes != 2 {
		t.Fatalf("OverflowedBytes = %d, want 2", stats.OverflowedBytes)
	}
	if stats.DroppedPackages != 0 {
		t.Fatalf("DroppedPackages = %d, want 0", stats.DroppedPackages)
	}

	buf, ok := queue.Receive(clock.Zero)
	if !ok {
		t.Fatalf("queue.Receive: expected a queued packet")
	}
	if got := buf.Slice().Len(); got != 8 {
		t.Fatalf("queued packet length = %d, want 8", got)
	}
	for i := 0; i < 8; i++ {
		if buf.Slice().At(i) != packet[i] {
			t.Fatalf("queued packet[%d] = %d, want %d", i, buf.Slice().At(i), packet[i])
		}
	}
}

func TestDispatcherUnmatchedPackage(t *testing.T) {
	receiver := &fakeReceiver{packets: [][]byte{{9, 1, 2, 3}}}
	d := dispatch.New[uint8](receiver, 8, 1, decodeUint8ID, 4)
	pool := sharedbuf.NewPool(8, 4)
	queue := rtos.NewQueue[sharedbuf.ConstBufferPointer](1)
	if err := d.RegisterQueue(1, pool, queue); err != nil {
		t.Fatalf("RegisterQueue: %v", err)
	}

	ok, err := d.Step(clock.Zero)
	if err != nil || !ok {
		t.Fatalf("Step: ok=%v err=%v", ok, err)
	}
	if stats := d.Stats(); stats.UnmatchedPackages != 1 {
		t.Fatalf("UnmatchedPackages = %d, want 1", stats.UnmatchedPackages)
	}
}

func TestDispatcherRoutesToDefault(t *testing.T) {
	receiver := &fakeReceiver{packets: [][]byte{{9, 1, 2, 3}}}
	d := dispatch.New[uint8](receiver, 8, 1, decodeUint8ID, 4)
	defaultPool := sharedbuf.NewPool(8, 4)
	defaultQueue := rtos.NewQueue[sharedbuf.ConstBufferPointer](1)
	if err := d.SetDefaultQueue(defaultPool, defaultQueue); err != nil {
		t.Fatalf("SetDefaultQueue: %v", err)
	}

	ok, err := d.Step(clock.Zero)
	if err != nil || !ok {
		t.Fatalf("Step: ok=%v err=%v", ok, err)
	}
	if stats := d.Stats(); stats.UnmatchedPackages != 0 {
		t.Fatalf("UnmatchedPackages = %d, want 0", stats.UnmatchedPackages)
	}
	if _, ok := defaultQueue.Receive(clock.Zero); !ok {
		t.Fatalf("defaultQueue.Receive: expected a packet")
	}
}

func TestDispatcherDropsOnFullQueue(t *testing.T) {
	receiver := &fakeReceiver{packets: [][]byte{{1, 1}, {1, 2}}}
	d := dispatch.New[uint8](receiver, 8, 1, decodeUint8ID, 4)
	pool := sharedbuf.NewPool(8, 4)
	queue := rtos.NewQueue[sharedbuf.ConstBufferPointer](1)
	if err := d.RegisterQueue(1, pool, queue); err != nil {
		t.Fatalf("RegisterQueue: %v", err)
	}

	if ok, err := d.Step(clock.Zero); err != nil || !ok {
		t.Fatalf("Step #1: ok=%v err=%v", ok, err)
	}
	if ok, err := d.Step(clock.Zero); err != nil || !ok {
		t.Fatalf("Step #2: ok=%v err=%v", ok, err)
	}

	stats := d.Stats()
	if stats.DroppedPackages != 1 {
		t.Fatalf("DroppedPackages = %d, want 1", stats.DroppedPackages)
	}
	if got := d.DroppedForID(1); got != 1 {
		t.Fatalf("DroppedForID(1) = %d, want 1", got)
	}
}

func TestDispatcherDropIncompletePacketsMode(t *testing.T) {
	packet := make([]byte, 10)
	packet[0] = 1
	receiver := &fakeReceiver{packets: [][]byte{packet}}

	d := dispatch.New[uint8](receiver, 8, 1, decodeUint8ID, 4)
	d.SetDropIncompletePackets(true)
	pool := sharedbuf.NewPool(8, 4)
	queue := rtos.NewQueue[sharedbuf.ConstBufferPointer](1)
	if err := d.RegisterQueue(1, pool, queue); err != nil {
		t.Fatalf("RegisterQueue: %v", err)
	}

	if ok, err := d.Step(clock.Zero); err != nil || !ok {
		t.Fatalf("Step: ok=%v err=%v", ok, err)
	}
	if _, ok := queue.Receive(clock.Zero); ok {
		t.Fatalf("queue.Receive: expected nothing, partial packet should have been dropped")
	}
	if stats := d.Stats(); stats.PartialPackages != 1 {
		t.Fatalf("PartialPackages = %d, want 1", stats.PartialPackages)
	}
}

func TestRegisterQueueLimit(t *testing.T) {
	receiver := &fakeReceiver{}
	d := dispatch.New[uint8](receiver, 8, 1, decodeUint8ID, 1)
	pool := sharedbuf.NewPool(8, 2)
	q1 := rtos.NewQueue[sharedbuf.ConstBufferPointer](1)
	q2 := rtos.NewQueue[sharedbuf.ConstBufferPointer](1)

	if err := d.RegisterQueue(1, pool, q1); err != nil {
		t.Fatalf("RegisterQueue(1): %v", err)
	}
	if err := d.RegisterQueue(2, pool, q2); err != dispatch.ErrTooManyQueues {
		t.Fatalf("RegisterQueue(2) err = %v, want ErrTooManyQueues", err)
	}
}

// TestDispatcherFansOutToTwoQueuesOneID mirrors the original
// twoQueuesOneID test: registering two (pool, queue) pairs under the
// same ID delivers an independent copy of a matching packet to both.
func TestDispatcherFansOutToTwoQueuesOneID(t *testing.T) {
	receiver := &fakeReceiver{packets: [][]byte{{1, 7, 7}}}
	d := dispatch.New[uint8](receiver, 8, 1, decodeUint8ID, 4)

	poolA := sharedbuf.NewPool(8, 4)
	queueA := rtos.NewQueue[sharedbuf.ConstBufferPointer](1)
	poolB := sharedbuf.NewPool(8, 4)
	queueB := rtos.NewQueue[sharedbuf.ConstBufferPointer](1)
	if err := d.RegisterQueue(1, poolA, queueA); err != nil {
		t.Fatalf("RegisterQueue A: %v", err)
	}
	if err := d.RegisterQueue(1, poolB, queueB); err != nil {
		t.Fatalf("RegisterQueue B: %v", err)
	}

	ok, err := d.Step(clock.Zero)
	if err != nil || !ok {
		t.Fatalf("Step: ok=%v err=%v", ok, err)
	}

	bufA, ok := queueA.Receive(clock.Zero)
	if !ok {
		t.Fatalf("queueA.Receive: expected a packet")
	}
	bufB, ok := queueB.Receive(clock.Zero)
	if !ok {
		t.Fatalf("queueB.Receive: expected a packet")
	}
	for i, want := range []byte{1, 7, 7} {
		if got := bufA.Slice().At(i); got != want {
			t.Fatalf("queueA packet[%d] = %d, want %d", i, got, want)
		}
		if got := bufB.Slice().At(i); got != want {
			t.Fatalf("queueB packet[%d] = %d, want %d", i, got, want)
		}
	}
	if stats := d.Stats(); stats.UnmatchedPackages != 0 || stats.DroppedPackages != 0 {
		t.Fatalf("stats = %+v, want no unmatched or dropped packages", stats)
	}
}
