// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package sharedbuf

import (
	"code.hybscloud.com/outpost/view"
)

// BufferPointer is a smart handle owning one reference on a pool-allocated
// buffer. The zero value is a null handle (IsValid reports false).
//
// Clone copies the handle and increments the refcount; Release decrements
// it and, if the count reaches zero, returns the buffer to its pool.
// Exactly one of Clone/Release must balance every live copy — Go has no
// destructors, so unlike the C++ origin a dropped BufferPointer that is
// never explicitly Released leaks its reference (the buffer never returns
// to the pool). Callers own this responsibility the same way they own
// closing a file.
type BufferPointer struct {
	buf  *buffer
	pool *Pool
}

// IsValid reports whether the handle refers to a live buffer.
func (bp BufferPointer) IsValid() bool { return bp.buf != nil }

// Slice exposes the buffer's full byte region. Returns an empty Slice for
// an invalid handle.
func (bp BufferPointer) Slice() view.Slice[byte] {
	if bp.buf == nil {
		return view.Slice[byte]{}
	}
	return view.Of(bp.buf.data)
}

// Clone returns a second handle to the same buffer, incrementing its
// refcount by one.
func (bp BufferPointer) Clone() BufferPointer {
	if bp.buf != nil {
		bp.buf.refcount.AddAcqRel(1)
	}
	return bp
}

// AsConst returns a read-only handle to the same buffer, incrementing its
// refcount by one. The writeable handle remains valid and must still be
// released independently.
func (bp BufferPointer) AsConst() ConstBufferPointer {
	if bp.buf != nil {
		bp.buf.refcount.AddAcqRel(1)
	}
	return ConstBufferPointer{buf: bp.buf, pool: bp.pool}
}

// Release decrements the refcount by one, returning the buffer to its pool
// if this was the last reference. Releasing an already-invalid handle is a
// no-op. bp is cleared to the zero value to guard against double release.
func (bp *BufferPointer) Release() {
	if bp.buf == nil {
		return
	}
	buf, pool := bp.buf, bp.pool
	bp.buf, bp.pool = nil, nil
	if buf.refcount.AddAcqRel(-1) == 0 {
		pool.release(buf)
	}
}

// GetChild returns a handle viewing the subrange [offset, offset+length) of
// bp's buffer, tagged with typeTag. Per the child contract, this adds two
// references to the underlying buffer (one for the returned handle, one
// representing the child relation) so the buffer outlives bp even if bp is
// released first. Returns ErrInvalidRange if the range exceeds the buffer,
// ErrInvalidHandle if bp is invalid.
func (bp BufferPointer) GetChild(typeTag uint32, offset, length int) (ChildPointer, error) {
	if bp.buf == nil {
		return ChildPointer{}, ErrInvalidHandle
	}
	if offset < 0 || length < 0 || offset+length > len(bp.buf.data) {
		return ChildPointer{}, ErrInvalidRange
	}
	bp.buf.refcount.AddAcqRel(2)
	return ChildPointer{origin: bp.buf, pool: bp.pool, offset: offset, length: length, typeTag: typeTag}, nil
}

// ChildPointer is a BufferPointer-like handle that additionally carries
// (offset, length, typeTag) into its origin buffer. Every live ChildPointer
// — however it was produced, by GetChild or by Clone of an existing child —
// counts as two references on the origin, matching spec's "refcount += 2 on
// child creation, -= 2 on child destruction" rule applied per live handle.
type ChildPointer struct {
	origin  *buffer
	pool    *Pool
	offset  int
	length  int
	typeTag uint32
}

// IsValid reports whether the handle refers to a live origin buffer.
func (cp ChildPointer) IsValid() bool { return cp.origin != nil }

// TypeTag returns the tag the child was created with.
func (cp ChildPointer) TypeTag() uint32 { return cp.typeTag }

// Slice exposes the child's subrange of its origin buffer.
func (cp ChildPointer) Slice() view.Slice[byte] {
	if cp.origin == nil {
		return view.Slice[byte]{}
	}
	return view.Of(cp.origin.data[cp.offset : cp.offset+cp.length])
}

// Clone returns a second handle to the same child view, incrementing the
// origin's refcount by two (see ChildPointer's doc comment).
func (cp ChildPointer) Clone() ChildPointer {
	if cp.origin != nil {
		cp.origin.refcount.AddAcqRel(2)
	}
	return cp
}

// AsConst returns a read-only handle to the same child view, incrementing
// the origin's refcount by two.
func (cp ChildPointer) AsConst() ConstChildPointer {
	if cp.origin != nil {
		cp.origin.refcount.AddAcqRel(2)
	}
	return ConstChildPointer{origin: cp.origin, pool: cp.pool, offset: cp.offset, length: cp.length, typeTag: cp.typeTag}
}

// Release decrements the origin's refcount by two, returning the origin
// buffer to its pool if that reaches zero. cp is cleared to guard against
// double release.
func (cp *ChildPointer) Release() {
	if cp.origin == nil {
		return
	}
	origin, pool := cp.origin, cp.pool
	cp.origin, cp.pool = nil, nil
	if origin.refcount.AddAcqRel(-2) == 0 {
		pool.release(origin)
	}
}

// GetChild carves a grandchild view relative to cp's own window, still
// against the single shared origin. offset/length are relative to cp's own
// [0, cp.length) extent, not the origin's. Adds two more references to the
// origin, same as BufferPointer.GetChild.
func (cp ChildPointer) GetChild(typeTag uint32, offset, length int) (ChildPointer, error) {
	if cp.origin == nil {
		return ChildPointer{}, ErrInvalidHandle
	}
	if offset < 0 || length < 0 || offset+length > cp.length {
		return ChildPointer{}, ErrInvalidRange
	}
	cp.origin.refcount.AddAcqRel(2)
	return ChildPointer{origin: cp.origin, pool: cp.pool, offset: cp.offset + offset, length: length, typeTag: typeTag}, nil
}

// ConstBufferPointer is refcount-identical to BufferPointer but exposes
// only a read-only view. Go has no const-correctness at the type-system
// level, so "read-only" here is a documented contract on Slice's result,
// not an enforced one: callers must not call view.Slice[byte].Set on it.
type ConstBufferPointer struct {
	buf  *buffer
	pool *Pool
}

// IsValid reports whether the handle refers to a live buffer.
func (bp ConstBufferPointer) IsValid() bool { return bp.buf != nil }

// Slice exposes the buffer's full byte region, read-only by convention.
func (bp ConstBufferPointer) Slice() view.Slice[byte] {
	if bp.buf == nil {
		return view.Slice[byte]{}
	}
	return view.Of(bp.buf.data)
}

// Clone returns a second const handle to the same buffer.
func (bp ConstBufferPointer) Clone() ConstBufferPointer {
	if bp.buf != nil {
		bp.buf.refcount.AddAcqRel(1)
	}
	return bp
}

// Release decrements the refcount by one, returning the buffer to its pool
// if this was the last reference.
func (bp *ConstBufferPointer) Release() {
	if bp.buf == nil {
		return
	}
	buf, pool := bp.buf, bp.pool
	bp.buf, bp.pool = nil, nil
	if buf.refcount.AddAcqRel(-1) == 0 {
		pool.release(buf)
	}
}

// ConstChildPointer is the read-only counterpart of ChildPointer. A
// writeable ChildPointer converts to it via AsConst; there is no reverse
// conversion.
type ConstChildPointer struct {
	origin  *buffer
	pool    *Pool
	offset  int
	length  int
	typeTag uint32
}

// IsValid reports whether the handle refers to a live origin buffer.
func (cp ConstChildPointer) IsValid() bool { return cp.origin != nil }

// TypeTag returns the tag the child was created with.
func (cp ConstChildPointer) TypeTag() uint32 { return cp.typeTag }

// Slice exposes the child's subrange of its origin buffer, read-only by
// convention.
func (cp ConstChildPointer) Slice() view.Slice[byte] {
	if cp.origin == nil {
		return view.Slice[byte]{}
	}
	return view.Of(cp.origin.data[cp.offset : cp.offset+cp.length])
}

// Clone returns a second const handle to the same child view, incrementing
// the origin's refcount by two.
func (cp ConstChildPointer) Clone() ConstChildPointer {
	if cp.origin != nil {
		cp.origin.refcount.AddAcqRel(2)
	}
	return cp
}

// Release decrements the origin's refcount by two, returning the origin to
// its pool if that reaches zero.
func (cp *ConstChildPointer) Release() {
	if cp.origin == nil {
		return
	}
	origin, pool := cp.origin, cp.pool
	cp.origin, cp.pool = nil, nil
	if origin.refcount.AddAcqRel(-2) == 0 {
		pool.release(origin)
	}
}
