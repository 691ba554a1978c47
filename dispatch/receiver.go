// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package dispatch

import "code.hybscloud.com/outpost/clock"

// ReceiverInterface is the transport the dispatcher pulls packets from —
// a UART/CAN/SpaceWire driver in production, a scripted fake in tests.
//
// Receive copies up to len(buf) bytes of the next packet into buf and
// returns the packet's true size, which may exceed len(buf): callers
// must compare the returned count against len(buf) themselves to detect
// truncation, exactly as spec.md's "returns received packet size, not
// copied size" requires. A zero result with a nil error means no packet
// arrived within timeout.
type ReceiverInterface interface {
	Receive(buf []byte, timeout clock.Duration) (receivedBytes int, err error)
}
