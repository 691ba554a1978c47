// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package sharedbuf

import "code.hybscloud.com/outpost/view"

// lengthPrefixBytes is the number of leading bytes BitStream reserves for
// its serialized bit length.
const lengthPrefixBytes = 2

// BitStream is a bit-addressable view built atop a byte Slice. It reserves
// two leading length bytes and serializes them on demand; used by
// telemetry compression (out of scope here) as a general primitive.
//
// BitStream is not itself reference-counted; it is typically built over the
// Slice exposed by a BufferPointer, which owns the underlying lifetime.
type BitStream struct {
	data    view.Slice[byte]
	numBits int
}

// NewBitStream wraps backing as a BitStream. backing must have room for the
// two-byte length prefix plus whatever bits are pushed.
func NewBitStream(backing view.Slice[byte]) *BitStream {
	return &BitStream{data: backing}
}

// NumBits reports how many bits have been pushed so far.
func (bs *BitStream) NumBits() int { return bs.numBits }

// PushBit appends one bit. Panics if the backing Slice has no room left
// (bits are packed after the reserved length prefix).
func (bs *BitStream) PushBit(b bool) {
	byteIdx := lengthPrefixBytes + bs.numBits/8
	bitIdx := uint(bs.numBits % 8)
	if byteIdx >= bs.data.Len() {
		panic("sharedbuf: BitStream backing slice is full")
	}
	if bitIdx == 0 {
		bs.data.Set(byteIdx, 0)
	}
	if b {
		cur := bs.data.At(byteIdx)
		bs.data.Set(byteIdx, cur|(1<<(7-bitIdx)))
	}
	bs.numBits++
}

// GetBit reads the i-th pushed bit.
func (bs *BitStream) GetBit(i int) bool {
	byteIdx := lengthPrefixBytes + i/8
	bitIdx := uint(i % 8)
	return bs.data.At(byteIdx)&(1<<(7-bitIdx)) != 0
}

// GetByte reads the i-th full byte of pushed bit data (i.e. byte i after
// the reserved length prefix).
func (bs *BitStream) GetByte(i int) byte {
	return bs.data.At(lengthPrefixBytes + i)
}

// Serialize writes the two-byte big-endian bit count into the reserved
// prefix and returns the Slice covering the prefix plus all pushed bits.
func (bs *BitStream) Serialize() view.Slice[byte] {
	return bs.serializeUpTo(bs.numBits)
}

// SerializeMax behaves like Serialize but truncates to at most maxBytes of
// payload (beyond the length prefix).
func (bs *BitStream) SerializeMax(maxBytes int) view.Slice[byte] {
	maxBits := maxBytes * 8
	if maxBits > bs.numBits {
		maxBits = bs.numBits
	}
	return bs.serializeUpTo(maxBits)
}

func (bs *BitStream) serializeUpTo(numBits int) view.Slice[byte] {
	bs.data.Set(0, byte(numBits>>8))
	bs.data.Set(1, byte(numBits))
	totalBytes := lengthPrefixBytes + (numBits+7)/8
	return bs.data.First(totalBytes)
}

// WriteBitsBE writes the low (hi-lo+1) bits of v into buf starting at bit
// position lo (inclusive) through hi (inclusive), most-significant-bit
// first within each byte, matching CCSDS packet conventions.
func WriteBitsBE(buf view.Slice[byte], lo, hi int, v uint64) {
	for pos := lo; pos <= hi; pos++ {
		bitVal := (v >> uint(hi-pos)) & 1
		setBitBE(buf, pos, bitVal != 0)
	}
}

// ReadBitsBE is the inverse of WriteBitsBE.
func ReadBitsBE(buf view.Slice[byte], lo, hi int) uint64 {
	var v uint64
	for pos := lo; pos <= hi; pos++ {
		v <<= 1
		if getBitBE(buf, pos) {
			v |= 1
		}
	}
	return v
}

func setBitBE(buf view.Slice[byte], pos int, b bool) {
	byteIdx, bitIdx := pos/8, uint(pos%8)
	cur := buf.At(byteIdx)
	if b {
		buf.Set(byteIdx, cur|(1<<(7-bitIdx)))
	} else {
		buf.Set(byteIdx, cur&^(1<<(7-bitIdx)))
	}
}

func getBitBE(buf view.Slice[byte], pos int) bool {
	byteIdx, bitIdx := pos/8, uint(pos%8)
	return buf.At(byteIdx)&(1<<(7-bitIdx)) != 0
}

// WriteBitsLE writes the low (hi-lo+1) bits of v into buf starting at bit
// position lo (inclusive) through hi (inclusive), least-significant-bit
// first within each byte, matching little-endian sensor conventions. Kept
// as a wholly separate code path from the big-endian variant rather than
// unified behind a runtime flag.
func WriteBitsLE(buf view.Slice[byte], lo, hi int, v uint64) {
	for pos := lo; pos <= hi; pos++ {
		bitVal := (v >> uint(pos-lo)) & 1
		setBitLE(buf, pos, bitVal != 0)
	}
}

// ReadBitsLE is the inverse of WriteBitsLE.
func ReadBitsLE(buf view.Slice[byte], lo, hi int) uint64 {
	var v uint64
	for pos := hi; pos >= lo; pos-- {
		v <<= 1
		if getBitLE(buf, pos) {
			v |= 1
		}
	}
	return v
}

func setBitLE(buf view.Slice[byte], pos int, b bool) {
	byteIdx, bitIdx := pos/8, uint(pos%8)
	cur := buf.At(byteIdx)
	if b {
		buf.Set(byteIdx, cur|(1<<bitIdx))
	} else {
		buf.Set(byteIdx, cur&^(1<<bitIdx))
	}
}

func getBitLE(buf view.Slice[byte], pos int) bool {
	byteIdx, bitIdx := pos/8, uint(pos%8)
	return buf.At(byteIdx)&(1<<bitIdx) != 0
}
