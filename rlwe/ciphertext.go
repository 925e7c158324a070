package rlwe

import (
	"bufio"
	"fmt"
	"io"

	"github.com/goseal/goseal/ring"
	"github.com/goseal/goseal/utils/buffer"
	"github.com/goseal/goseal/utils/sampling"
)

// Ciphertext represents an RLWE ciphertext of size >= 2 polynomial
// components. The coefficient words are laid out component-major: all
// words of component 0, then component 1, and so on. Within one
// component the words are laid out prime-major: the N coefficients
// modulo the first chain prime, then modulo the second, and so on.
type Ciphertext struct {
	*MetaData
	Buffer *CoefficientBuffer

	size       int
	polyDegree int
	primeCount int
}

// NewCiphertext creates a new Ciphertext of the given size at the given
// chain level, with all coefficients set to zero. The coefficient
// memory is drawn from the provided arena; if arena is nil, the package
// default arena is used.
func NewCiphertext(params Parameters, size, level int, arena *Arena) (ct *Ciphertext, err error) {

	ct = &Ciphertext{
		MetaData: &MetaData{Scale: params.DefaultScale()},
		Buffer:   NewCoefficientBuffer(arena),
	}

	id, err := params.IDAtLevel(level)
	if err != nil {
		return nil, fmt.Errorf("cannot NewCiphertext: %w", err)
	}

	if err = ct.Resize(params, size, id); err != nil {
		return nil, fmt.Errorf("cannot NewCiphertext: %w", err)
	}

	return
}

// Size returns the number of polynomial components.
func (ct *Ciphertext) Size() int {
	return ct.size
}

// PolyDegree returns the ring degree cached by the receiver.
func (ct *Ciphertext) PolyDegree() int {
	return ct.polyDegree
}

// PrimeCount returns the number of RNS primes cached by the receiver.
func (ct *Ciphertext) PrimeCount() int {
	return ct.primeCount
}

// Resize sets the number of components of the ciphertext, recomputing
// the ring degree and prime count from the chain level named by id and
// updating the ParametersID accordingly. The retained components keep
// their content when the dimensions are unchanged; new components are
// zero.
func (ct *Ciphertext) Resize(params Parameters, size int, id ParametersID) error {

	if size < MinCiphertextSize {
		return fmt.Errorf("cannot Resize: size=%d is below the minimum of %d", size, MinCiphertextSize)
	}

	level, err := params.LevelOf(id)
	if err != nil {
		return fmt.Errorf("cannot Resize: %w", err)
	}

	words, err := params.ciphertextWordCount(size, level)
	if err != nil {
		return fmt.Errorf("cannot Resize: %w", err)
	}

	if ct.Buffer.Size() > 0 && (ct.polyDegree != params.N() || ct.primeCount != level+1) {
		// Dimension change invalidates the component layout
		ct.Buffer.Release()
	}

	if err := ct.Buffer.Resize(words); err != nil {
		return fmt.Errorf("cannot Resize: %w", err)
	}

	ct.size = size
	ct.polyDegree = params.N()
	ct.primeCount = level + 1
	ct.MetaData.ParametersID = id

	return nil
}

// ResizeSize sets the number of components of the ciphertext reusing
// the cached ring degree and prime count.
func (ct *Ciphertext) ResizeSize(size int) error {

	if size < MinCiphertextSize {
		return fmt.Errorf("cannot ResizeSize: size=%d is below the minimum of %d", size, MinCiphertextSize)
	}

	if ct.polyDegree == 0 || ct.primeCount == 0 {
		return fmt.Errorf("cannot ResizeSize: ciphertext has no cached dimensions")
	}

	words, err := ciphertextWords(size, ct.polyDegree, ct.primeCount)
	if err != nil {
		return fmt.Errorf("cannot ResizeSize: %w", err)
	}

	if err := ct.Buffer.Resize(words); err != nil {
		return fmt.Errorf("cannot ResizeSize: %w", err)
	}

	ct.size = size

	return nil
}

// Reserve pre-allocates room for size components at the chain level
// named by id, without changing the logical content.
func (ct *Ciphertext) Reserve(params Parameters, size int, id ParametersID) error {

	if size < MinCiphertextSize {
		return fmt.Errorf("cannot Reserve: size=%d is below the minimum of %d", size, MinCiphertextSize)
	}

	level, err := params.LevelOf(id)
	if err != nil {
		return fmt.Errorf("cannot Reserve: %w", err)
	}

	words, err := params.ciphertextWordCount(size, level)
	if err != nil {
		return fmt.Errorf("cannot Reserve: %w", err)
	}

	if words < ct.Buffer.Size() {
		return nil
	}

	if err := ct.Buffer.Reserve(words); err != nil {
		return fmt.Errorf("cannot Reserve: %w", err)
	}

	return nil
}

// Release returns the coefficient memory to the arena and resets the
// ciphertext to an empty state.
func (ct *Ciphertext) Release() {
	ct.Buffer.Release()
	ct.size = 0
	ct.polyDegree = 0
	ct.primeCount = 0
	ct.MetaData.ParametersID = NoParametersID
}

// Poly returns the coefficients of component i modulo the j-th chain
// prime as a mutable view, honoring the component-major, prime-major
// layout contract.
func (ct *Ciphertext) Poly(i, j int) []uint64 {
	if i < 0 || i >= ct.size || j < 0 || j >= ct.primeCount {
		panic(fmt.Errorf("cannot Poly: component (%d, %d) out of range (%d, %d)", i, j, ct.size, ct.primeCount))
	}
	N := ct.polyDegree
	offset := (i*ct.primeCount + j) * N
	return ct.Buffer.Data()[offset : offset+N]
}

// Component returns all the words of component i.
func (ct *Ciphertext) Component(i int) []uint64 {
	if i < 0 || i >= ct.size {
		panic(fmt.Errorf("cannot Component: component %d out of range %d", i, ct.size))
	}
	stride := ct.polyDegree * ct.primeCount
	return ct.Buffer.Data()[i*stride : (i+1)*stride]
}

// IsTransparent returns true if the ciphertext can be decrypted without
// the secret key: its buffer is empty, its size is below the minimum,
// or every component beyond the first is identically zero.
func (ct *Ciphertext) IsTransparent() bool {

	if ct.Buffer.Size() == 0 || ct.size < MinCiphertextSize {
		return true
	}

	stride := ct.polyDegree * ct.primeCount
	for _, c := range ct.Buffer.Data()[stride:] {
		if c != 0 {
			return false
		}
	}

	return true
}

// Clone returns a deep copy of the receiver. The capacity of the
// clone's buffer collapses to its size.
func (ct *Ciphertext) Clone() *Ciphertext {
	return &Ciphertext{
		MetaData:   ct.MetaData.Clone(),
		Buffer:     ct.Buffer.Clone(),
		size:       ct.size,
		polyDegree: ct.polyDegree,
		primeCount: ct.primeCount,
	}
}

// Equal performs a deep equal between the receiver and other.
func (ct *Ciphertext) Equal(other *Ciphertext) bool {
	return ct.MetaData.Equal(other.MetaData) &&
		ct.size == other.size &&
		ct.polyDegree == other.polyDegree &&
		ct.primeCount == other.primeCount &&
		ct.Buffer.Equal(other.Buffer)
}

// Randomize populates the receiver with uniform random coefficients.
func (ct *Ciphertext) Randomize(params Parameters, source *sampling.Source) error {

	level := ct.primeCount - 1

	rings, err := params.RingsAtLevel(level)
	if err != nil {
		return fmt.Errorf("cannot Randomize: %w", err)
	}

	if params.N() != ct.polyDegree {
		return fmt.Errorf("cannot Randomize: ring degree mismatch: %d != %d", params.N(), ct.polyDegree)
	}

	for i := 0; i < ct.size; i++ {
		for j, r := range rings {
			ring.UniformVec(source, ct.Poly(i, j), r.Modulus, r.Mask)
		}
	}

	return nil
}

// BinarySize returns the serialized size of the object in bytes.
func (ct *Ciphertext) BinarySize() (size int) {
	size++
	if ct.MetaData != nil {
		size += ct.MetaData.BinarySize()
	}
	return size + 3*8 + ct.Buffer.BinarySize()
}

// WriteTo writes the object on an io.Writer. It implements the
// io.WriterTo interface, and will write exactly object.BinarySize()
// bytes on w.
//
// Unless w implements the buffer.Writer interface (see utils/buffer),
// it will be wrapped into a bufio.Writer.
func (ct *Ciphertext) WriteTo(w io.Writer) (n int64, err error) {
	switch w := w.(type) {
	case buffer.Writer:

		var inc int64

		if ct.MetaData != nil {

			if inc, err = buffer.WriteUint8(w, 1); err != nil {
				return n + inc, err
			}

			n += inc

			if inc, err = ct.MetaData.WriteTo(w); err != nil {
				return n + inc, err
			}

			n += inc

		} else {
			if inc, err = buffer.WriteUint8(w, 0); err != nil {
				return n + inc, err
			}

			n += inc
		}

		for _, v := range []int{ct.size, ct.polyDegree, ct.primeCount} {
			if inc, err = buffer.WriteAsUint64(w, v); err != nil {
				return n + inc, err
			}
			n += inc
		}

		if inc, err = ct.Buffer.WriteTo(w); err != nil {
			return n + inc, err
		}

		return n + inc, err
	default:
		return ct.WriteTo(bufio.NewWriter(w))
	}
}

// ReadFrom reads on the object from an io.Reader. It implements the
// io.ReaderFrom interface.
//
// Unless r implements the buffer.Reader interface (see utils/buffer),
// it will be wrapped into a bufio.Reader.
func (ct *Ciphertext) ReadFrom(r io.Reader) (n int64, err error) {
	switch r := r.(type) {
	case buffer.Reader:

		var inc int64

		var hasMetaData uint8

		if inc, err = buffer.ReadUint8(r, &hasMetaData); err != nil {
			return n + inc, err
		}

		n += inc

		if hasMetaData == 1 {

			if ct.MetaData == nil {
				ct.MetaData = &MetaData{}
			}

			if inc, err = ct.MetaData.ReadFrom(r); err != nil {
				return n + inc, err
			}

			n += inc
		}

		for _, v := range []*int{&ct.size, &ct.polyDegree, &ct.primeCount} {
			if inc, err = buffer.ReadAsUint64(r, v); err != nil {
				return n + inc, err
			}
			n += inc
		}

		if ct.Buffer == nil {
			ct.Buffer = NewCoefficientBuffer(nil)
		}

		if inc, err = ct.Buffer.ReadFrom(r); err != nil {
			return n + inc, err
		}

		if expected := ct.size * ct.polyDegree * ct.primeCount; ct.Buffer.Size() != expected {
			return n + inc, fmt.Errorf("cannot ReadFrom: %d words read for dimensions %dx%dx%d", ct.Buffer.Size(), ct.size, ct.polyDegree, ct.primeCount)
		}

		return n + inc, err

	default:
		return ct.ReadFrom(bufio.NewReader(r))
	}
}

// MarshalBinary encodes the object into a binary form on a newly
// allocated slice of bytes.
func (ct *Ciphertext) MarshalBinary() (data []byte, err error) {
	buf := buffer.NewBufferSize(ct.BinarySize())
	_, err = ct.WriteTo(buf)
	return buf.Bytes(), err
}

// UnmarshalBinary decodes a slice of bytes generated by MarshalBinary
// or WriteTo on the object.
func (ct *Ciphertext) UnmarshalBinary(p []byte) (err error) {
	_, err = ct.ReadFrom(buffer.NewBuffer(p))
	return
}
