package rlwe

import (
	"bufio"
	"fmt"
	"io"

	"github.com/goseal/goseal/utils"
	"github.com/goseal/goseal/utils/buffer"
)

// CoefficientBuffer is a capacity and size tracked array of uint64
// coefficients drawing its backing memory from an [Arena]. It backs the
// coefficient storage of both [Plaintext] and [Ciphertext].
//
// The zero value is an empty buffer bound to the package default arena.
// A CoefficientBuffer is exclusively owned by at most one Plaintext or
// Ciphertext and is not safe for concurrent mutation.
type CoefficientBuffer struct {
	arena    *Arena
	block    *[]uint64
	capacity int
	size     int
}

// NewCoefficientBuffer instantiates a new empty CoefficientBuffer
// drawing from the provided arena. If arena is nil, the package
// default arena is used.
func NewCoefficientBuffer(arena *Arena) *CoefficientBuffer {
	return &CoefficientBuffer{arena: arena}
}

func (b *CoefficientBuffer) getArena() *Arena {
	if b.arena == nil {
		return defaultArena
	}
	return b.arena
}

// Size returns the number of words logically in use.
func (b *CoefficientBuffer) Size() int {
	return b.size
}

// Capacity returns the number of words reserved.
func (b *CoefficientBuffer) Capacity() int {
	return b.capacity
}

// Data returns the logically used words as a mutable view. Indexing the
// returned slice is unchecked beyond the usual slice bounds.
func (b *CoefficientBuffer) Data() []uint64 {
	if b.block == nil {
		return nil
	}
	return (*b.block)[:b.size]
}

// At returns the i-th word of the buffer, with an explicit bounds check
// against the current size.
func (b *CoefficientBuffer) At(i int) (uint64, error) {
	if i < 0 || i >= b.size {
		return 0, fmt.Errorf("cannot At: index %d out of range [0, %d)", i, b.size)
	}
	return (*b.block)[i], nil
}

// Reserve allocates a backing block of exactly capacity words, copies
// min(capacity, size) existing words into it, and releases the previous
// block. The size becomes the number of copied words.
func (b *CoefficientBuffer) Reserve(capacity int) error {

	if capacity < 0 {
		return fmt.Errorf("cannot Reserve: negative capacity %d", capacity)
	}

	if capacity == b.capacity {
		return nil
	}

	copyCount := utils.Min(capacity, b.size)

	var block *[]uint64
	if capacity > 0 {
		block = b.getArena().Alloc(capacity)
		if copyCount > 0 {
			copy((*block)[:copyCount], (*b.block)[:copyCount])
		}
	}

	if b.block != nil {
		b.getArena().Free(b.block)
	}

	b.block = block
	b.capacity = capacity
	b.size = copyCount

	return nil
}

// Resize sets the logical size of the buffer. Growing within the current
// capacity zero-fills the newly exposed words in place; growing beyond it
// reallocates to exactly size words, preserving the existing content.
// Shrinking never releases memory.
func (b *CoefficientBuffer) Resize(size int) error {

	if size < 0 {
		return fmt.Errorf("cannot Resize: negative size %d", size)
	}

	if size > b.capacity {
		if err := b.Reserve(size); err != nil {
			return err
		}
	}

	if size > b.size {
		data := (*b.block)[b.size:size]
		for i := range data {
			data[i] = 0
		}
	}

	b.size = size

	return nil
}

// Release returns the backing block to the arena and resets both size
// and capacity to zero. It is a no-op on an empty buffer.
func (b *CoefficientBuffer) Release() {
	if b.block != nil {
		b.getArena().Free(b.block)
		b.block = nil
	}
	b.size = 0
	b.capacity = 0
}

// Clone returns a fresh buffer on the same arena holding a copy of the
// logically used words. The capacity of the clone collapses to its size.
func (b *CoefficientBuffer) Clone() *CoefficientBuffer {
	clone := NewCoefficientBuffer(b.arena)
	if err := clone.Resize(b.size); err != nil {
		// Resize of a valid size cannot fail
		panic(err)
	}
	copy(clone.Data(), b.Data())
	return clone
}

// Equal returns true if both buffers hold the same logical content.
func (b *CoefficientBuffer) Equal(other *CoefficientBuffer) bool {
	if b.size != other.size {
		return false
	}
	bd, od := b.Data(), other.Data()
	for i := range bd {
		if bd[i] != od[i] {
			return false
		}
	}
	return true
}

// BinarySize returns the serialized size of the object in bytes.
func (b *CoefficientBuffer) BinarySize() int {
	return 8 + b.size*8
}

// WriteTo writes the object on an io.Writer. It implements the
// io.WriterTo interface, and will write exactly object.BinarySize()
// bytes on w.
//
// Unless w implements the buffer.Writer interface (see utils/buffer),
// it will be wrapped into a bufio.Writer.
func (b *CoefficientBuffer) WriteTo(w io.Writer) (n int64, err error) {
	switch w := w.(type) {
	case buffer.Writer:

		var inc int64

		if inc, err = buffer.WriteAsUint64[int](w, b.size); err != nil {
			return n + inc, err
		}

		n += inc

		if inc, err = buffer.WriteUint64Slice(w, b.Data()); err != nil {
			return n + inc, err
		}

		n += inc

		return n, w.Flush()
	default:
		return b.WriteTo(bufio.NewWriter(w))
	}
}

// ReadFrom reads on the object from an io.Reader. It implements the
// io.ReaderFrom interface.
//
// Unless r implements the buffer.Reader interface (see utils/buffer),
// it will be wrapped into a bufio.Reader.
func (b *CoefficientBuffer) ReadFrom(r io.Reader) (n int64, err error) {
	switch r := r.(type) {
	case buffer.Reader:

		var inc int64

		var size int
		if inc, err = buffer.ReadAsUint64[int](r, &size); err != nil {
			return n + inc, err
		}

		n += inc

		if size < 0 {
			return n, fmt.Errorf("cannot ReadFrom: negative size %d", size)
		}

		if err = b.Resize(size); err != nil {
			return n, err
		}

		if inc, err = buffer.ReadUint64Slice(r, b.Data()); err != nil {
			return n + inc, err
		}

		n += inc

		return n, nil
	default:
		return b.ReadFrom(bufio.NewReader(r))
	}
}

// MarshalBinary encodes the object into a binary form on a newly
// allocated slice of bytes.
func (b *CoefficientBuffer) MarshalBinary() (p []byte, err error) {
	buf := buffer.NewBufferSize(b.BinarySize())
	_, err = b.WriteTo(buf)
	return buf.Bytes(), err
}

// UnmarshalBinary decodes a slice of bytes generated by MarshalBinary
// or WriteTo on the object.
func (b *CoefficientBuffer) UnmarshalBinary(p []byte) (err error) {
	_, err = b.ReadFrom(buffer.NewBuffer(p))
	return
}
