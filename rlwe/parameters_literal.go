package rlwe

import (
	"bufio"
	"io"

	"github.com/goseal/goseal/utils/buffer"
	"github.com/goseal/goseal/utils/structs"
)

// ParametersLiteral is a literal representation of the parameters of a
// modulus switching chain. It has public fields and is used to express
// unchecked user-defined parameters literally into Go programs.
// The [NewParametersFromLiteral] function is used to generate the actual
// checked parameters from the literal representation.
//
// Users must set the polynomial degree (LogN) and the coefficient
// modulus, by either setting the Q field to the desired moduli chain or
// the LogQ field to the desired moduli bit-sizes, in which case suitable
// NTT-friendly primes are generated.
//
// Optionally, DefaultScale sets the scaling factor assumed by encoders
// when none is specified; it defaults to 1.
type ParametersLiteral struct {
	LogN         int
	Q            structs.Vector[uint64] `json:",omitempty"`
	LogQ         structs.Vector[int]    `json:",omitempty"`
	DefaultScale float64                `json:",omitempty"`
}

func (p ParametersLiteral) BinarySize() (size int) {
	size++ // LogN
	size += p.Q.BinarySize()
	size += p.LogQ.BinarySize()
	size += 8 // DefaultScale
	return
}

// WriteTo writes the object on an io.Writer. It implements the
// io.WriterTo interface, and will write exactly object.BinarySize()
// bytes on w.
func (p ParametersLiteral) WriteTo(w io.Writer) (n int64, err error) {
	switch w := w.(type) {
	case buffer.Writer:

		var inc int64

		if inc, err = buffer.WriteAsUint8(w, p.LogN); err != nil {
			return n + inc, err
		}

		n += inc

		if inc, err = p.Q.WriteTo(w); err != nil {
			return n + inc, err
		}

		n += inc

		if inc, err = p.LogQ.WriteTo(w); err != nil {
			return n + inc, err
		}

		n += inc

		if inc, err = buffer.WriteAsUint64(w, p.DefaultScale); err != nil {
			return n + inc, err
		}

		n += inc

		return n, w.Flush()
	default:
		return p.WriteTo(bufio.NewWriter(w))
	}
}

// ReadFrom reads on the object from an io.Reader. It implements the
// io.ReaderFrom interface.
func (p *ParametersLiteral) ReadFrom(r io.Reader) (n int64, err error) {
	switch r := r.(type) {
	case buffer.Reader:

		var inc int64

		if inc, err = buffer.ReadAsUint8(r, &p.LogN); err != nil {
			return n + inc, err
		}

		n += inc

		if inc, err = p.Q.ReadFrom(r); err != nil {
			return n + inc, err
		}

		n += inc

		if inc, err = p.LogQ.ReadFrom(r); err != nil {
			return n + inc, err
		}

		n += inc

		if inc, err = buffer.ReadAsUint64(r, &p.DefaultScale); err != nil {
			return n + inc, err
		}

		n += inc

		return
	default:
		return p.ReadFrom(bufio.NewReader(r))
	}
}

// MarshalBinary encodes the object into a binary form on a newly
// allocated slice of bytes.
func (p ParametersLiteral) MarshalBinary() (data []byte, err error) {
	buf := buffer.NewBufferSize(p.BinarySize())
	_, err = p.WriteTo(buf)
	return buf.Bytes(), err
}

// UnmarshalBinary decodes a slice of bytes generated by MarshalBinary
// or WriteTo on the object.
func (p *ParametersLiteral) UnmarshalBinary(data []byte) (err error) {
	_, err = p.ReadFrom(buffer.NewBuffer(data))
	return
}
