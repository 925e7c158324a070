package rlwe

import (
	"bufio"
	"fmt"
	"io"
	"math"

	"github.com/goseal/goseal/ring"
	"github.com/goseal/goseal/utils/buffer"
	"github.com/goseal/goseal/utils/sampling"
)

// Plaintext represents a polynomial of Z_Q[X]/(X^N+1), either in
// coefficient form (N words, no chain level attached) or in evaluation
// (NTT) form (N words per chain prime, tied to the chain level named by
// its ParametersID).
//
// A plaintext is in evaluation form if and only if its ParametersID is
// not the all-zero sentinel; the IsNTT flag mirrors this invariant.
type Plaintext struct {
	*MetaData
	Buffer *CoefficientBuffer
}

// NewPlaintext creates a new empty Plaintext in coefficient form,
// drawing its coefficient memory from the provided arena. If arena is
// nil, the package default arena is used.
func NewPlaintext(arena *Arena) (pt *Plaintext) {
	return &Plaintext{
		MetaData: &MetaData{Scale: 1},
		Buffer:   NewCoefficientBuffer(arena),
	}
}

// CoeffCount returns the current number of coefficient words.
func (pt *Plaintext) CoeffCount() int {
	return pt.Buffer.Size()
}

// SignificantCoeffCount returns the number of coefficient words up to
// and including the last non-zero one.
func (pt *Plaintext) SignificantCoeffCount() int {
	data := pt.Buffer.Data()
	for i := len(data) - 1; i >= 0; i-- {
		if data[i] != 0 {
			return i + 1
		}
	}
	return 0
}

// Resize sets the coefficient count of the plaintext. Resizing a
// plaintext in evaluation form is rejected, as its coefficient layout
// is tied to a specific chain level.
func (pt *Plaintext) Resize(size int) error {
	if !pt.ParametersID.IsZero() {
		return fmt.Errorf("cannot Resize: plaintext is in evaluation form")
	}
	return pt.Buffer.Resize(size)
}

// Reserve reserves memory for capacity coefficient words without
// changing the logical content. Like Resize, it is rejected on a
// plaintext in evaluation form.
func (pt *Plaintext) Reserve(capacity int) error {
	if !pt.ParametersID.IsZero() {
		return fmt.Errorf("cannot Reserve: plaintext is in evaluation form")
	}
	return pt.Buffer.Reserve(capacity)
}

// Release returns the coefficient memory to the arena and resets the
// plaintext to an empty coefficient form state.
func (pt *Plaintext) Release() {
	pt.Buffer.Release()
	pt.MetaData.ParametersID = NoParametersID
	pt.MetaData.IsNTT = false
}

// Clone returns a deep copy of the receiver. The capacity of the clone's
// buffer collapses to its size.
func (pt *Plaintext) Clone() *Plaintext {
	return &Plaintext{
		MetaData: pt.MetaData.Clone(),
		Buffer:   pt.Buffer.Clone(),
	}
}

// scalesClose returns true if the two scales are equal up to a small
// relative tolerance.
func scalesClose(a, b float64) bool {
	scale := math.Max(math.Abs(a), math.Abs(b))
	return math.Abs(a-b) <= scale*1e-10
}

// Equal returns true if both plaintexts represent the same value: their
// forms are compatible (both in evaluation form with equal identifiers,
// or both in coefficient form), their scales are close, and their
// coefficients agree up to trailing zeros.
func (pt *Plaintext) Equal(other *Plaintext) bool {

	if pt.IsNTT != other.IsNTT || pt.ParametersID != other.ParametersID {
		return false
	}

	if !scalesClose(pt.Scale, other.Scale) {
		return false
	}

	sig := pt.SignificantCoeffCount()

	if sig != other.SignificantCoeffCount() {
		return false
	}

	a, b := pt.Buffer.Data(), other.Buffer.Data()
	for i := 0; i < sig; i++ {
		if a[i] != b[i] {
			return false
		}
	}

	return true
}

// Randomize populates the receiver with uniform coefficients for the
// given chain level and marks it as an evaluation form plaintext of
// that level.
func (pt *Plaintext) Randomize(params Parameters, level int, source *sampling.Source) error {

	rings, err := params.RingsAtLevel(level)
	if err != nil {
		return fmt.Errorf("cannot Randomize: %w", err)
	}

	N := params.N()

	pt.MetaData.ParametersID = NoParametersID
	if err = pt.Resize(N * len(rings)); err != nil {
		return fmt.Errorf("cannot Randomize: %w", err)
	}

	data := pt.Buffer.Data()
	for j, r := range rings {
		ring.UniformVec(source, data[j*N:(j+1)*N], r.Modulus, r.Mask)
	}

	pt.MetaData.ParametersID, _ = params.IDAtLevel(level)
	pt.MetaData.IsNTT = true

	return nil
}

// BinarySize returns the serialized size of the object in bytes.
func (pt *Plaintext) BinarySize() (size int) {
	size++
	if pt.MetaData != nil {
		size += pt.MetaData.BinarySize()
	}
	return size + pt.Buffer.BinarySize()
}

// WriteTo writes the object on an io.Writer. It implements the
// io.WriterTo interface, and will write exactly object.BinarySize()
// bytes on w.
//
// Unless w implements the buffer.Writer interface (see utils/buffer),
// it will be wrapped into a bufio.Writer.
func (pt *Plaintext) WriteTo(w io.Writer) (n int64, err error) {
	switch w := w.(type) {
	case buffer.Writer:

		var inc int64

		if pt.MetaData != nil {

			if inc, err = buffer.WriteUint8(w, 1); err != nil {
				return n + inc, err
			}

			n += inc

			if inc, err = pt.MetaData.WriteTo(w); err != nil {
				return n + inc, err
			}

			n += inc

		} else {
			if inc, err = buffer.WriteUint8(w, 0); err != nil {
				return n + inc, err
			}

			n += inc
		}

		if inc, err = pt.Buffer.WriteTo(w); err != nil {
			return n + inc, err
		}

		return n + inc, err
	default:
		return pt.WriteTo(bufio.NewWriter(w))
	}
}

// ReadFrom reads on the object from an io.Reader. It implements the
// io.ReaderFrom interface.
//
// Unless r implements the buffer.Reader interface (see utils/buffer),
// it will be wrapped into a bufio.Reader.
func (pt *Plaintext) ReadFrom(r io.Reader) (n int64, err error) {
	switch r := r.(type) {
	case buffer.Reader:

		var inc int64

		var hasMetaData uint8

		if inc, err = buffer.ReadUint8(r, &hasMetaData); err != nil {
			return n + inc, err
		}

		n += inc

		if hasMetaData == 1 {

			if pt.MetaData == nil {
				pt.MetaData = &MetaData{}
			}

			if inc, err = pt.MetaData.ReadFrom(r); err != nil {
				return n + inc, err
			}

			n += inc
		}

		if pt.Buffer == nil {
			pt.Buffer = NewCoefficientBuffer(nil)
		}

		if inc, err = pt.Buffer.ReadFrom(r); err != nil {
			return n + inc, err
		}

		return n + inc, err

	default:
		return pt.ReadFrom(bufio.NewReader(r))
	}
}

// MarshalBinary encodes the object into a binary form on a newly
// allocated slice of bytes.
func (pt *Plaintext) MarshalBinary() (data []byte, err error) {
	buf := buffer.NewBufferSize(pt.BinarySize())
	_, err = pt.WriteTo(buf)
	return buf.Bytes(), err
}

// UnmarshalBinary decodes a slice of bytes generated by MarshalBinary
// or WriteTo on the object.
func (pt *Plaintext) UnmarshalBinary(p []byte) (err error) {
	_, err = pt.ReadFrom(buffer.NewBuffer(p))
	return
}
