// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package sharedbuf

import (
	"code.hybscloud.com/atomix"

	"code.hybscloud.com/outpost/internal/lockfree"
)

// buffer is the internal fixed-size element: a byte region plus an atomic
// reference count. It is never copied; only pointers to it flow, via
// BufferPointer/ChildPointer and their const variants.
type buffer struct {
	data     []byte
	refcount atomix.Int32
	index    uintptr
}

// Pool is a fixed-capacity array of equally-sized buffers. Allocate hands
// out a free entry with refcount 1; the last release of that entry's
// refcount returns it to the free list. The free list is a LIFO stack:
// Allocate returns the most recently released entry, and a fresh pool
// hands out its entries from the highest index down, so entries are not
// handed out lowest-index first.
//
// Allocation and release are O(1) in the common path: both are a single
// lock-free queue operation on the free-index list, the same indirect-index
// pattern code.hybscloud.com/iobuf uses for its bounded pools, rather than
// scanning for a free slot.
type Pool struct {
	elementSize int
	storage     []byte
	buffers     []buffer
	free        *lockfree.IndexQueue
	inUse       atomix.Int32
	count       int
}

// NewPool creates a Pool of count elements, each elementSize bytes, backed
// by storage this Pool allocates and owns.
func NewPool(elementSize, count int) *Pool {
	if elementSize <= 0 || count <= 0 {
		panic("sharedbuf: elementSize and count must be positive")
	}
	return newPool(make([]byte, elementSize*count), elementSize, count)
}

// NewExternalPool creates a Pool backed by a caller-provided byte slice,
// letting pool storage live in a specific memory region (e.g. DMA-capable
// SRAM). backing must be exactly elementSize*count bytes; NewExternalPool
// panics otherwise, since a pool with the wrong backing size can never
// safely hand out full-sized buffers.
func NewExternalPool(backing []byte, elementSize, count int) *Pool {
	if elementSize <= 0 || count <= 0 {
		panic("sharedbuf: elementSize and count must be positive")
	}
	if len(backing) != elementSize*count {
		panic("sharedbuf: external backing array has the wrong size")
	}
	return newPool(backing, elementSize, count)
}

func newPool(storage []byte, elementSize, count int) *Pool {
	p := &Pool{
		elementSize: elementSize,
		storage:     storage,
		buffers:     make([]buffer, count),
		free:        lockfree.NewIndexQueue(count),
		count:       count,
	}
	for i := 0; i < count; i++ {
		p.buffers[i].data = storage[i*elementSize : (i+1)*elementSize]
		p.buffers[i].index = uintptr(i)
		if err := p.free.Enqueue(uintptr(i)); err != nil {
			panic("sharedbuf: free list rejected initial index: " + err.Error())
		}
	}
	return p
}

// Allocate returns a BufferPointer owning a fresh, exclusively-held buffer.
// Returns lockfree.ErrWouldBlock (an alias of iox.ErrWouldBlock) if the pool
// is exhausted; the pool is left unmodified in that case.
func (p *Pool) Allocate() (BufferPointer, error) {
	idx, err := p.free.Dequeue()
	if err != nil {
		return BufferPointer{}, err
	}
	buf := &p.buffers[idx]
	buf.refcount.StoreRelease(1)
	p.inUse.AddAcqRel(1)
	return BufferPointer{buf: buf, pool: p}, nil
}

// NumberOfFreeElements reports how many buffers are currently unallocated.
func (p *Pool) NumberOfFreeElements() int {
	return p.count - int(p.inUse.LoadAcquire())
}

// NumberOfElements reports the pool's fixed total capacity.
func (p *Pool) NumberOfElements() int {
	return p.count
}

// ElementSize reports the fixed size, in bytes, of every buffer in the pool.
func (p *Pool) ElementSize() int {
	return p.elementSize
}

func (p *Pool) release(buf *buffer) {
	p.inUse.AddAcqRel(-1)
	if err := p.free.Enqueue(buf.index); err != nil {
		// The free list's capacity always matches the pool's element
		// count, so a currently-allocated index is always re-enqueueable.
		panic("sharedbuf: unexpected free-list overflow: " + err.Error())
	}
}
