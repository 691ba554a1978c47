// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Command outpostsim is an integration smoke test standing in for
// outpost-core's RTOS integration-test binaries (see
// modules/rtos/it/barrier/main.cpp in the original C++ tree): it wires a
// ProtocolDispatcher, a SoftwareBus, and a parameter Store together and
// drives a handful of synthetic packets through the whole pipeline,
// printing the resulting counters so a human can eyeball that nothing
// silently dropped.
package main

import (
	"flag"
	"log"

	"code.hybscloud.com/outpost/clock"
	"code.hybscloud.com/outpost/dispatch"
	"code.hybscloud.com/outpost/parameter"
	"code.hybscloud.com/outpost/rtos"
	"code.hybscloud.com/outpost/sharedbuf"
	"code.hybscloud.com/outpost/swb"
)

const (
	telemetryChannelID uint8 = 1
	commandChannelID   uint8 = 2

	tagVoltage     uint32 = 1
	tagTemperature uint32 = 2
)

// fixtureReceiver yields a fixed sequence of synthetic packets, one per
// Receive call, then reports none: small telemetry and command frames and
// one oversized frame to exercise the dispatcher's partial-packet
// accounting.
type fixtureReceiver struct {
	packets [][]byte
	next    int
}

func (r *fixtureReceiver) Receive(buf []byte, _ clock.Duration) (int, error) {
	if r.next >= len(r.packets) {
		return 0, nil
	}
	p := r.packets[r.next]
	r.next++
	copy(buf, p)
	return len(p), nil
}

func buildFixturePackets() [][]byte {
	telemetry := func(id uint8, payload ...byte) []byte {
		return append([]byte{id}, payload...)
	}
	oversized := append([]byte{telemetryChannelID}, make([]byte, 32)...)
	return [][]byte{
		telemetry(telemetryChannelID, 1, 2, 3, 4),
		telemetry(commandChannelID, 9, 9),
		telemetry(telemetryChannelID, 5, 6, 7, 8),
		oversized,
	}
}

func decodePacketID(b []byte) uint8 { return b[0] }

func main() {
	iterations := flag.Int("iterations", 4, "number of packets to dispatch")
	flag.Parse()

	clk := clock.NewSystemClock()

	voltage := parameter.NewParameter[uint32](10, tagVoltage, 28000, clk.Now())
	temperature := parameter.NewParameter[float64](11, tagTemperature, 21.5, clk.Now())
	store, err := parameter.NewStore(16, parameter.List{voltage, temperature})
	if err != nil {
		log.Fatalf("outpostsim: parameter store: %v", err)
	}

	bus := swb.NewSoftwareBus[uint8](clk, 64, 32, 16)
	telemetryChannel := swb.NewBusChannel[uint8](8, swb.NewRangeFilter[uint8](telemetryChannelID, telemetryChannelID))
	commandChannel := swb.NewBusChannel[uint8](8, swb.NewRangeFilter[uint8](commandChannelID, commandChannelID))
	if err := bus.RegisterChannel(telemetryChannel); err != nil {
		log.Fatalf("outpostsim: register telemetry channel: %v", err)
	}
	if err := bus.RegisterChannel(commandChannel); err != nil {
		log.Fatalf("outpostsim: register command channel: %v", err)
	}

	receiver := &fixtureReceiver{packets: buildFixturePackets()}
	d := dispatch.New[uint8](receiver, 16, 1, decodePacketID, 4)
	telemetryPool := sharedbuf.NewPool(16, 8)
	telemetryQueue := rtos.NewQueue[sharedbuf.ConstBufferPointer](8)
	commandPool := sharedbuf.NewPool(16, 8)
	commandQueue := rtos.NewQueue[sharedbuf.ConstBufferPointer](8)
	if err := d.RegisterQueue(telemetryChannelID, telemetryPool, telemetryQueue); err != nil {
		log.Fatalf("outpostsim: register telemetry route: %v", err)
	}
	if err := d.RegisterQueue(commandChannelID, commandPool, commandQueue); err != nil {
		log.Fatalf("outpostsim: register command route: %v", err)
	}

	for i := 0; i < *iterations; i++ {
		ok, err := d.Step(clock.Zero)
		if err != nil {
			log.Fatalf("outpostsim: dispatcher step %d: %v", i, err)
		}
		if !ok {
			break
		}
	}

	drainInto := func(id uint8, q *rtos.Queue[sharedbuf.ConstBufferPointer]) {
		for {
			buf, ok := q.Receive(clock.Zero)
			if !ok {
				return
			}
			payload := buf.Slice().Raw()
			if err := bus.SendBytes(id, payload); err != nil {
				log.Printf("outpostsim: bus send for id=%d: %v", id, err)
			}
			buf.Release()
		}
	}
	drainInto(telemetryChannelID, telemetryQueue)
	drainInto(commandChannelID, commandQueue)

	for bus.SingleMessage() {
	}

	dispatchStats := d.Stats()
	busStats := bus.Stats()
	v, _ := voltage.GetValue()
	temp, _ := temperature.GetValue()

	log.Printf("dispatcher: partial=%d overflow=%d dropped=%d unmatched=%d",
		dispatchStats.PartialPackages, dispatchStats.OverflowedBytes,
		dispatchStats.DroppedPackages, dispatchStats.UnmatchedPackages)
	log.Printf("bus: accepted=%d handled=%d forwarded=%d defaulted=%d",
		busStats.Accepted, busStats.Handled, busStats.Forwarded, busStats.Defaulted)
	log.Printf("telemetry channel depth=%d, command channel depth=%d",
		telemetryChannel.Depth(), commandChannel.Depth())
	log.Printf("parameters: voltage=%d temperature=%.1f (store holds %d parameters)",
		v, temp, store.Len())
}
