// Package hefloat implements encoding over fixed-point approximate
// arithmetic on vectors of complex or real numbers, following the
// full-RNS variant of the scheme of Cheon, Kim, Kim and Song.
//
// A vector of up to N/2 complex values is mapped through the inverse of
// the canonical embedding of Z[X]/(X^N+1), scaled by a user chosen
// scaling factor and rounded to an integer polynomial stored in RNS and
// NTT form.
package hefloat

import (
	"fmt"
	"math"
	"math/big"
	"math/bits"

	"github.com/goseal/goseal/ring"
	"github.com/goseal/goseal/rlwe"
	"github.com/goseal/goseal/utils"
)

const two64 = 18446744073709551616.0

// Encoder is a type that implements the encoding and decoding between
// vectors of complex or real numbers and evaluation form plaintexts.
//
// An Encoder is not safe for concurrent use; see [Encoder.ShallowCopy].
type Encoder struct {
	params rlwe.Parameters
	arena  *rlwe.Arena

	// slotIndexMap[i] is the coefficient index holding slot i of the
	// canonical embedding, for i in [0, N/2) the slot itself and for
	// i in [N/2, N) its complex conjugate.
	slotIndexMap []int

	// roots[i] = psi^{bitrev(i)} with psi = exp(pi*i/N), in the order
	// consumed by the in-place transforms.
	roots    []complex128
	invRoots []complex128

	values   []complex128
	bigCoeff *big.Int
	bigFloat *big.Float
	bigScale *big.Float
	residues []uint64
}

// NewEncoder instantiates a new Encoder for the given parameters. If
// arena is nil, the package default arena of the rlwe package is used.
func NewEncoder(params rlwe.Parameters, arena *rlwe.Arena) (ecd *Encoder) {

	if arena == nil {
		arena = rlwe.DefaultArena()
	}

	N := params.N()
	logN := params.LogN()
	m := N << 1

	ecd = &Encoder{
		params:       params,
		arena:        arena,
		slotIndexMap: make([]int, N),
		roots:        make([]complex128, N),
		invRoots:     make([]complex128, N),
		values:       make([]complex128, N),
		bigCoeff:     new(big.Int),
		bigFloat:     new(big.Float).SetPrec(rootPrecision),
		bigScale:     new(big.Float).SetPrec(rootPrecision),
		residues:     make([]uint64, params.MaxLevel()+1),
	}

	// Walk the orbit of the generator 3 modulo 2N. The odd integer 3
	// generates half of (Z/2NZ)*; together with the conjugation it
	// reaches every primitive 2N-th root of unity, which fixes the
	// slot ordering of the canonical embedding.
	slots := N >> 1
	pos := 1
	for i := 0; i < slots; i++ {
		index1 := (pos - 1) >> 1
		index2 := (m - pos - 1) >> 1
		ecd.slotIndexMap[i] = int(utils.BitReverse64(uint64(index1), uint64(logN)))
		ecd.slotIndexMap[i+slots] = int(utils.BitReverse64(uint64(index2), uint64(logN)))
		pos = (pos * 3) & (m - 1)
	}

	if m >= 8 {
		cr := newComplexRoots(m)
		for i := range ecd.roots {
			ecd.roots[i] = cr.GetRoot(int(utils.BitReverse64(uint64(i), uint64(logN))))
		}
	} else {
		ecd.roots[0] = 1
		ecd.roots[1] = complex(0, 1)
	}

	for i, r := range ecd.roots {
		ecd.invRoots[i] = complex(real(r), -imag(r))
	}

	return
}

// SlotCount returns the number of complex slots of an encoded vector,
// which is N/2.
func (ecd *Encoder) SlotCount() int {
	return ecd.params.MaxSlots()
}

// ShallowCopy returns a new Encoder that shares the read-only
// precomputations of the receiver but carries its own scratch space,
// making it safe for use in a different goroutine.
func (ecd *Encoder) ShallowCopy() *Encoder {
	return &Encoder{
		params:       ecd.params,
		arena:        ecd.arena,
		slotIndexMap: ecd.slotIndexMap,
		roots:        ecd.roots,
		invRoots:     ecd.invRoots,
		values:       make([]complex128, len(ecd.values)),
		bigCoeff:     new(big.Int),
		bigFloat:     new(big.Float).SetPrec(rootPrecision),
		bigScale:     new(big.Float).SetPrec(rootPrecision),
		residues:     make([]uint64, len(ecd.residues)),
	}
}

// Encode encodes values on pt at the chain level named by id, with the
// given scaling factor. The result is an evaluation form plaintext in
// the NTT domain.
//
// values can be one of []complex128, []float64, complex128 or float64.
// A slice can hold at most [Encoder.SlotCount] entries; a scalar is
// encoded as a length one vector.
func (ecd *Encoder) Encode(values interface{}, id rlwe.ParametersID, scale float64, pt *rlwe.Plaintext) (err error) {

	switch v := values.(type) {
	case []complex128, []float64:
		return ecd.encode(values, id, scale, pt)
	case complex128:
		return ecd.encode([]complex128{v}, id, scale, pt)
	case float64:
		return ecd.encode([]float64{v}, id, scale, pt)
	default:
		return fmt.Errorf("cannot Encode: unsupported values type %T", values)
	}
}

func (ecd *Encoder) encode(values interface{}, id rlwe.ParametersID, scale float64, pt *rlwe.Plaintext) (err error) {

	params := ecd.params

	level, err := params.LevelOf(id)
	if err != nil {
		return fmt.Errorf("cannot Encode: %w", err)
	}

	totalBitCount, _ := params.TotalBitCountAtLevel(level)

	var lenValues int
	switch v := values.(type) {
	case []complex128:
		lenValues = len(v)
	case []float64:
		lenValues = len(v)
	}

	if lenValues > ecd.SlotCount() {
		return fmt.Errorf("cannot Encode: len(values)=%d exceeds the slot count %d", lenValues, ecd.SlotCount())
	}

	if scale <= 0 || math.IsNaN(scale) || math.IsInf(scale, 0) {
		return fmt.Errorf("cannot Encode: invalid scaling factor %f", scale)
	}

	// The rounded coefficients live modulo Q; a scaling factor eating
	// the whole modulus leaves no room for the encoded magnitudes.
	if int(math.Log2(scale))+1 >= totalBitCount {
		return fmt.Errorf("cannot Encode: scaling factor 2^%d does not fit in the %d bit modulus", int(math.Log2(scale)), totalBitCount)
	}

	N := params.N()
	slots := N >> 1

	buf := ecd.values[:N]
	for i := range buf {
		buf[i] = 0
	}

	switch v := values.(type) {
	case []complex128:
		for i, c := range v {
			buf[ecd.slotIndexMap[i]] = c
			buf[ecd.slotIndexMap[i+slots]] = complex(real(c), -imag(c))
		}
	case []float64:
		for i, f := range v {
			buf[ecd.slotIndexMap[i]] = complex(f, 0)
			buf[ecd.slotIndexMap[i+slots]] = complex(f, 0)
		}
	}

	ifft(buf, ecd.invRoots)

	fix := scale / float64(N)

	var maxCoeff float64
	for i := range buf {
		buf[i] *= complex(fix, 0)
		maxCoeff = math.Max(maxCoeff, math.Abs(real(buf[i])))
	}

	if math.IsNaN(maxCoeff) || math.IsInf(maxCoeff, 0) {
		return fmt.Errorf("cannot Encode: values contain a NaN or infinite entry")
	}

	maxCoeffBitCount := int(math.Ceil(math.Log2(math.Max(maxCoeff, 1.0)))) + 1

	if maxCoeffBitCount >= totalBitCount {
		return fmt.Errorf("cannot Encode: encoded values need %d bits which does not fit in the %d bit modulus", maxCoeffBitCount, totalBitCount)
	}

	moduli, _ := params.ModuliAtLevel(level)
	rings, _ := params.RingsAtLevel(level)

	pt.MetaData.ParametersID = rlwe.NoParametersID
	pt.MetaData.IsNTT = false

	if err = pt.Resize(N * (level + 1)); err != nil {
		return fmt.Errorf("cannot Encode: %w", err)
	}

	data := pt.Buffer.Data()

	switch {
	case maxCoeffBitCount <= 64:

		for i := range buf {

			coeff := math.Round(real(buf[i]))
			isNegative := coeff < 0
			coeffU := uint64(math.Abs(coeff))

			for j, r := range rings {
				c := ring.BRedAdd(coeffU, r.Modulus, r.BRedConstant)
				if isNegative && c != 0 {
					c = r.Modulus - c
				}
				data[j*N+i] = c
			}
		}

	case maxCoeffBitCount <= 128:

		for i := range buf {

			coeff := math.Round(real(buf[i]))
			isNegative := coeff < 0
			abs := math.Abs(coeff)

			hi := uint64(abs / two64)
			lo := uint64(abs - float64(hi)*two64)

			for j, r := range rings {
				c := ring.BRedAdd128(hi, lo, r.Modulus, r.BRedConstant)
				if isNegative && c != 0 {
					c = r.Modulus - c
				}
				data[j*N+i] = c
			}
		}

	default:

		basis, _ := params.BasisAtLevel(level)
		residues := ecd.residues[:level+1]

		for i := range buf {

			coeff := math.Round(real(buf[i]))
			isNegative := coeff < 0

			ecd.bigFloat.SetFloat64(math.Abs(coeff))
			ecd.bigFloat.Int(ecd.bigCoeff)

			basis.Decompose(ecd.bigCoeff, residues)

			for j := range moduli {
				c := residues[j]
				if isNegative && c != 0 {
					c = moduli[j] - c
				}
				data[j*N+i] = c
			}
		}
	}

	for j, r := range rings {
		p := data[j*N : (j+1)*N]
		r.NTT(p, p)
	}

	pt.MetaData.ParametersID = id
	pt.MetaData.Scale = scale
	pt.MetaData.IsBatched = true
	pt.MetaData.IsNTT = true

	return
}

// EncodeInt encodes a single signed integer on pt at the chain level
// named by id, without scaling and without floating point rounding
// error. The resulting plaintext decodes to value at every slot.
func (ecd *Encoder) EncodeInt(value int64, id rlwe.ParametersID, pt *rlwe.Plaintext) (err error) {

	params := ecd.params

	level, err := params.LevelOf(id)
	if err != nil {
		return fmt.Errorf("cannot EncodeInt: %w", err)
	}

	totalBitCount, _ := params.TotalBitCountAtLevel(level)

	isNegative := value < 0
	abs := uint64(value)
	if isNegative {
		abs = uint64(-value)
	}

	if bits.Len64(abs)+2 >= totalBitCount {
		return fmt.Errorf("cannot EncodeInt: value needs %d bits which does not fit in the %d bit modulus", bits.Len64(abs)+2, totalBitCount)
	}

	N := params.N()
	rings, _ := params.RingsAtLevel(level)

	pt.MetaData.ParametersID = rlwe.NoParametersID
	pt.MetaData.IsNTT = false

	if err = pt.Resize(N * (level + 1)); err != nil {
		return fmt.Errorf("cannot EncodeInt: %w", err)
	}

	data := pt.Buffer.Data()

	// A constant vector over the NTT domain is the NTT of the constant
	// polynomial, so filling each residue block with the reduced value
	// directly yields the plaintext encoding value at every slot.
	for j, r := range rings {

		c := ring.BRedAdd(abs, r.Modulus, r.BRedConstant)
		if isNegative && c != 0 {
			c = r.Modulus - c
		}

		p := data[j*N : (j+1)*N]
		for i := range p {
			p[i] = c
		}
	}

	pt.MetaData.ParametersID = id
	pt.MetaData.Scale = 1
	pt.MetaData.IsBatched = true
	pt.MetaData.IsNTT = true

	return
}

// Decode decodes pt, which must be an evaluation form plaintext, on
// values, which can be a []complex128 or a []float64 of at most
// [Encoder.SlotCount] entries.
func (ecd *Encoder) Decode(pt *rlwe.Plaintext, values interface{}) (err error) {

	params := ecd.params

	if pt.ParametersID.IsZero() || !pt.IsNTT {
		return fmt.Errorf("cannot Decode: plaintext is not in evaluation form")
	}

	level, err := params.LevelOf(pt.ParametersID)
	if err != nil {
		return fmt.Errorf("cannot Decode: %w", err)
	}

	totalBitCount, _ := params.TotalBitCountAtLevel(level)

	scale := pt.Scale

	if scale <= 0 || math.IsNaN(scale) || math.IsInf(scale, 0) || int(math.Log2(scale)) >= totalBitCount {
		return fmt.Errorf("cannot Decode: invalid scaling factor %f for a %d bit modulus", scale, totalBitCount)
	}

	N := params.N()
	slots := N >> 1

	var outLen int
	switch values := values.(type) {
	case []complex128:
		outLen = len(values)
	case []float64:
		outLen = len(values)
	default:
		return fmt.Errorf("cannot Decode: unsupported values type %T", values)
	}

	if outLen > slots {
		return fmt.Errorf("cannot Decode: len(values)=%d exceeds the slot count %d", outLen, slots)
	}

	if pt.CoeffCount() != N*(level+1) {
		return fmt.Errorf("cannot Decode: plaintext holds %d words, expected %d", pt.CoeffCount(), N*(level+1))
	}

	rings, _ := params.RingsAtLevel(level)
	basis, _ := params.BasisAtLevel(level)

	block := ecd.arena.Alloc(N * (level + 1))
	defer ecd.arena.Free(block)

	scratch := (*block)[:N*(level+1)]
	copy(scratch, pt.Buffer.Data())

	for j, r := range rings {
		p := scratch[j*N : (j+1)*N]
		r.INTT(p, p)
	}

	buf := ecd.values[:N]
	residues := ecd.residues[:level+1]

	ecd.bigScale.SetFloat64(scale)

	for i := 0; i < N; i++ {

		for j := range residues {
			residues[j] = scratch[j*N+i]
		}

		basis.Compose(residues, ecd.bigCoeff)

		if ecd.bigCoeff.Cmp(basis.UpperHalfThreshold) >= 0 {
			ecd.bigCoeff.Sub(ecd.bigCoeff, basis.Product)
		}

		ecd.bigFloat.SetInt(ecd.bigCoeff)
		ecd.bigFloat.Quo(ecd.bigFloat, ecd.bigScale)

		f, _ := ecd.bigFloat.Float64()

		buf[i] = complex(f, 0)
	}

	fft(buf, ecd.roots)

	switch values := values.(type) {
	case []complex128:
		for i := range values {
			values[i] = buf[ecd.slotIndexMap[i]]
		}
	case []float64:
		for i := range values {
			values[i] = real(buf[ecd.slotIndexMap[i]])
		}
	}

	return
}

// fft computes the in-place canonical embedding of values, mapping the
// coefficients of a polynomial to its evaluations at the odd powers of
// psi in bit-reversed order.
func fft(values []complex128, roots []complex128) {

	N := len(values)

	t := N
	for m := 1; m < N; m <<= 1 {
		t >>= 1
		for i := 0; i < m; i++ {
			j1 := 2 * i * t
			F := roots[m+i]
			for j := j1; j < j1+t; j++ {
				u := values[j]
				v := values[j+t] * F
				values[j] = u + v
				values[j+t] = u - v
			}
		}
	}
}

// ifft computes the in-place inverse of [fft], up to a factor N which
// is folded into the scaling step of the caller.
func ifft(values []complex128, invRoots []complex128) {

	N := len(values)

	t := 1
	for m := N; m >= 2; m >>= 1 {
		h := m >> 1
		for i, j1 := 0, 0; i < h; i, j1 = i+1, j1+2*t {
			F := invRoots[h+i]
			for jx, jy := j1, j1+t; jx < j1+t; jx, jy = jx+1, jy+1 {
				u := values[jx]
				v := values[jy]
				values[jx] = u + v
				values[jy] = (u - v) * F
			}
		}
		t <<= 1
	}
}
