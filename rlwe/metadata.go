package rlwe

import (
	"bufio"
	"io"
	"math"

	"github.com/google/go-cmp/cmp"
	"github.com/goseal/goseal/utils/buffer"
)

// MetaData is a struct storing the metadata shared by plaintexts and
// ciphertexts.
type MetaData struct {
	// ParametersID identifies the chain level the value is tied to.
	// The all-zero sentinel means no level, see [ParametersID].
	ParametersID ParametersID

	// Scale is the scaling factor of the encoded values.
	Scale float64

	// IsBatched is a flag indicating if the underlying plaintext is
	// encoded in such a way that the product in Z[X]/(X^N+1) acts as a
	// point-wise product in the plaintext space.
	IsBatched bool

	// IsNTT is a flag indicating if the value is in the NTT domain.
	IsNTT bool
}

// Clone returns a copy of the target.
func (m *MetaData) Clone() *MetaData {
	if m == nil {
		return nil
	}
	mClone := *m
	return &mClone
}

func (m *MetaData) Equal(other *MetaData) (res bool) {

	if m == nil && other == nil {
		return true
	}

	if (m != nil && other == nil) || (m == nil && other != nil) {
		return false
	}

	res = cmp.Equal(m.ParametersID, other.ParametersID)
	res = res && m.Scale == other.Scale
	res = res && m.IsBatched == other.IsBatched
	res = res && m.IsNTT == other.IsNTT

	return
}

// LogScale returns log2(scale).
func (m MetaData) LogScale() float64 {
	return math.Log2(m.Scale)
}

// BinarySize returns the serialized size of the object in bytes.
func (m MetaData) BinarySize() int {
	return 4*8 + 8 + 2
}

// WriteTo writes the object on an io.Writer. It implements the
// io.WriterTo interface, and will write exactly object.BinarySize()
// bytes on w.
//
// Unless w implements the buffer.Writer interface (see utils/buffer),
// it will be wrapped into a bufio.Writer.
func (m MetaData) WriteTo(w io.Writer) (n int64, err error) {
	switch w := w.(type) {
	case buffer.Writer:

		var inc int64

		for i := range m.ParametersID {
			if inc, err = buffer.WriteUint64(w, m.ParametersID[i]); err != nil {
				return n + inc, err
			}
			n += inc
		}

		if inc, err = buffer.WriteAsUint64(w, m.Scale); err != nil {
			return n + inc, err
		}

		n += inc

		if inc, err = buffer.WriteAsUint8(w, m.IsBatched); err != nil {
			return n + inc, err
		}

		n += inc

		if inc, err = buffer.WriteAsUint8(w, m.IsNTT); err != nil {
			return n + inc, err
		}

		n += inc

		return n, w.Flush()
	default:
		return m.WriteTo(bufio.NewWriter(w))
	}
}

// ReadFrom reads on the object from an io.Reader. It implements the
// io.ReaderFrom interface.
//
// Unless r implements the buffer.Reader interface (see utils/buffer),
// it will be wrapped into a bufio.Reader.
func (m *MetaData) ReadFrom(r io.Reader) (n int64, err error) {
	switch r := r.(type) {
	case buffer.Reader:

		var inc int64

		for i := range m.ParametersID {
			if inc, err = buffer.ReadUint64(r, &m.ParametersID[i]); err != nil {
				return n + inc, err
			}
			n += inc
		}

		if inc, err = buffer.ReadAsUint64(r, &m.Scale); err != nil {
			return n + inc, err
		}

		n += inc

		if inc, err = buffer.ReadAsUint8(r, &m.IsBatched); err != nil {
			return n + inc, err
		}

		n += inc

		if inc, err = buffer.ReadAsUint8(r, &m.IsNTT); err != nil {
			return n + inc, err
		}

		n += inc

		return n, nil
	default:
		return m.ReadFrom(bufio.NewReader(r))
	}
}

// MarshalBinary encodes the object into a binary form on a newly
// allocated slice of bytes.
func (m MetaData) MarshalBinary() (p []byte, err error) {
	buf := buffer.NewBufferSize(m.BinarySize())
	_, err = m.WriteTo(buf)
	return buf.Bytes(), err
}

// UnmarshalBinary decodes a slice of bytes generated by MarshalBinary
// or WriteTo on the object.
func (m *MetaData) UnmarshalBinary(p []byte) (err error) {
	_, err = m.ReadFrom(buffer.NewBuffer(p))
	return
}
