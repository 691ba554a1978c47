// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package swb

import "code.hybscloud.com/outpost/sharedbuf"

// BusMessage pairs an application-defined ID with a const handle on its
// payload buffer. The zero value has an invalid Buffer and is never
// produced by the bus itself.
type BusMessage[Id comparable] struct {
	ID     Id
	Buffer sharedbuf.ConstBufferPointer
}

// Release releases m's buffer handle, if valid. Safe to call on a message
// whose buffer has already been released.
func (m *BusMessage[Id]) Release() {
	m.Buffer.Release()
}
