// Package heint implements exact encoding of vectors of integers
// modulo a prime plaintext modulus, in a SIMD fashion: the product of
// two encoded polynomials in Z[X]/(X^N+1) acts as a point-wise product
// on the underlying vectors.
package heint

import (
	"fmt"

	"github.com/goseal/goseal/ring"
	"github.com/goseal/goseal/rlwe"
	"github.com/goseal/goseal/utils"
)

// Integer is the allowed input types of [Encoder.Encode].
type Integer interface {
	int64 | uint64
}

// IntegerSlice is an empty interface whose goal is to indicate that the
// expected input should be []Integer. See [Integer] for information on
// the type constraint.
type IntegerSlice interface {
}

// Encoder is a structure that stores the constants to encode vectors of
// integers modulo a plaintext modulus T on a plaintext in a SIMD
// fashion.
//
// An Encoder is not safe for concurrent use; see [Encoder.ShallowCopy].
type Encoder struct {
	params rlwe.Parameters
	arena  *rlwe.Arena

	// rT is the ring Z_T[X]/(X^N+1), with T the plaintext modulus.
	rT *ring.Ring

	// indexMatrix[i] is the coefficient of Z_T[X]/(X^N+1), in the NTT
	// domain, holding slot i.
	indexMatrix []uint64

	bufT []uint64
}

// NewEncoder creates a new Encoder for the given parameters and
// plaintext modulus T, which must be an NTT friendly prime with respect
// to N and smaller than every modulus of the chain.
func NewEncoder(params rlwe.Parameters, T uint64, arena *rlwe.Arena) (ecd *Encoder, err error) {

	if arena == nil {
		arena = rlwe.DefaultArena()
	}

	N := params.N()

	rT, err := ring.NewRing(N, T)
	if err != nil {
		return nil, fmt.Errorf("cannot NewEncoder: %w", err)
	}

	// The exact lift to and from the chain requires the centered
	// representatives modulo T to be representatives modulo each prime.
	for _, q := range params.Moduli() {
		if T >= q {
			return nil, fmt.Errorf("cannot NewEncoder: plaintext modulus %d is not smaller than the chain modulus %d", T, q)
		}
	}

	return &Encoder{
		params:      params,
		arena:       arena,
		rT:          rT,
		indexMatrix: permuteMatrix(params.LogN()),
		bufT:        make([]uint64, N),
	}, nil
}

// permuteMatrix returns the permutation mapping slot i to the NTT
// domain coefficient holding it, following the orbit of the generator 3
// modulo 2N on the odd powers of the primitive 2N-th root of unity.
func permuteMatrix(logN int) (perm []uint64) {

	var N, pow, pos uint64 = uint64(1 << logN), 1, 0

	mask := 2*N - 1

	perm = make([]uint64, N)

	halfN := int(N >> 1)

	for i, j := 0, halfN; i < halfN; i, j = i+1, j+1 {

		pos = utils.BitReverse64(pow>>1, uint64(logN)) // = (pow-1)/2

		perm[i] = pos
		perm[j] = N - pos - 1

		pow *= 3
		pow &= mask
	}

	return perm
}

// SlotCount returns the number of integer slots of an encoded vector,
// which is N.
func (ecd *Encoder) SlotCount() int {
	return ecd.params.N()
}

// PlaintextModulus returns the plaintext modulus T.
func (ecd *Encoder) PlaintextModulus() uint64 {
	return ecd.rT.Modulus
}

// ShallowCopy returns a new Encoder that shares the read-only
// precomputations of the receiver but carries its own scratch space,
// making it safe for use in a different goroutine.
func (ecd *Encoder) ShallowCopy() *Encoder {
	return &Encoder{
		params:      ecd.params,
		arena:       ecd.arena,
		rT:          ecd.rT,
		indexMatrix: ecd.indexMatrix,
		bufT:        make([]uint64, len(ecd.bufT)),
	}
}

// Encode encodes an IntegerSlice of size at most N on pt at the chain
// level named by id. values can be a []uint64 or a []int64; the entries
// are reduced modulo T, signed entries in centered form. The result is
// an evaluation form plaintext with scale 1 that decodes exactly.
func (ecd *Encoder) Encode(values IntegerSlice, id rlwe.ParametersID, pt *rlwe.Plaintext) (err error) {

	params := ecd.params

	level, err := params.LevelOf(id)
	if err != nil {
		return fmt.Errorf("cannot Encode: %w", err)
	}

	if err = ecd.encodeRingT(values, ecd.bufT); err != nil {
		return fmt.Errorf("cannot Encode: %w", err)
	}

	N := params.N()
	T := ecd.rT.Modulus
	THalf := T >> 1
	rings, _ := params.RingsAtLevel(level)

	pt.MetaData.ParametersID = rlwe.NoParametersID
	pt.MetaData.IsNTT = false

	if err = pt.Resize(N * (level + 1)); err != nil {
		return fmt.Errorf("cannot Encode: %w", err)
	}

	data := pt.Buffer.Data()

	// Centered lift: a residue above T/2 represents a negative integer
	// and maps to the matching negative representative modulo each
	// prime of the chain.
	for j, r := range rings {
		p := data[j*N : (j+1)*N]
		for i, c := range ecd.bufT {
			if c > THalf {
				p[i] = r.Modulus - (T - c)
			} else {
				p[i] = c
			}
		}
		r.NTT(p, p)
	}

	pt.MetaData.ParametersID = id
	pt.MetaData.Scale = 1
	pt.MetaData.IsBatched = true
	pt.MetaData.IsNTT = true

	return
}

// encodeRingT maps values on the slots of a polynomial of
// Z_T[X]/(X^N+1) and returns its coefficients on pT.
func (ecd *Encoder) encodeRingT(values IntegerSlice, pT []uint64) (err error) {

	perm := ecd.indexMatrix

	rT := ecd.rT
	N := len(perm)
	T := rT.Modulus
	BRC := rT.BRedConstant

	var valLen int
	switch values := values.(type) {
	case []uint64:

		if len(values) > N {
			return fmt.Errorf("len(values)=%d exceeds the slot count %d", len(values), N)
		}

		for i, c := range values {
			pT[perm[i]] = ring.BRedAdd(c, T, BRC)
		}

		valLen = len(values)

	case []int64:

		if len(values) > N {
			return fmt.Errorf("len(values)=%d exceeds the slot count %d", len(values), N)
		}

		var sign, abs uint64
		for i, c := range values {
			sign = uint64(c) >> 63
			abs = ring.BRedAdd(uint64(c*((int64(sign)^1)-int64(sign))), T, BRC)
			pT[perm[i]] = sign*(T-abs) | (sign^1)*abs
		}

		valLen = len(values)

	default:
		return fmt.Errorf("values.(type) must be either []uint64 or []int64 but is %T", values)
	}

	// Zeroes the non-mapped slots
	for i := valLen; i < N; i++ {
		pT[perm[i]] = 0
	}

	rT.INTT(pT, pT)

	return
}

// Decode decodes pt, which must be an evaluation form plaintext
// produced by [Encoder.Encode], on values, which can be a []uint64 or a
// []int64 of at most N entries. Unsigned outputs are the residues
// modulo T, signed outputs their centered representatives.
func (ecd *Encoder) Decode(pt *rlwe.Plaintext, values IntegerSlice) (err error) {

	params := ecd.params

	if pt.ParametersID.IsZero() || !pt.IsNTT {
		return fmt.Errorf("cannot Decode: plaintext is not in evaluation form")
	}

	level, err := params.LevelOf(pt.ParametersID)
	if err != nil {
		return fmt.Errorf("cannot Decode: %w", err)
	}

	N := params.N()

	if pt.CoeffCount() != N*(level+1) {
		return fmt.Errorf("cannot Decode: plaintext holds %d words, expected %d", pt.CoeffCount(), N*(level+1))
	}

	var outLen int
	switch values := values.(type) {
	case []uint64:
		outLen = len(values)
	case []int64:
		outLen = len(values)
	default:
		return fmt.Errorf("cannot Decode: values must be either []uint64 or []int64 but is %T", values)
	}

	if outLen > N {
		return fmt.Errorf("cannot Decode: len(values)=%d exceeds the slot count %d", outLen, N)
	}

	rings, _ := params.RingsAtLevel(level)
	r0 := rings[0]

	block := ecd.arena.Alloc(N)
	defer ecd.arena.Free(block)

	scratch := (*block)[:N]
	copy(scratch, pt.Buffer.Data()[:N])

	r0.INTT(scratch, scratch)

	// The coefficients are centered lifts of residues modulo T, so the
	// first prime alone recovers them exactly.
	rT := ecd.rT
	T := rT.Modulus
	q0Half := r0.Modulus >> 1

	pT := ecd.bufT
	for i, c := range scratch {
		if c > q0Half {
			pT[i] = T - ring.BRedAdd(r0.Modulus-c, T, rT.BRedConstant)
			if pT[i] == T {
				pT[i] = 0
			}
		} else {
			pT[i] = ring.BRedAdd(c, T, rT.BRedConstant)
		}
	}

	rT.NTT(pT, pT)

	switch values := values.(type) {
	case []uint64:
		for i := range values {
			values[i] = pT[ecd.indexMatrix[i]]
		}
	case []int64:
		modulus := int64(T)
		modulusHalf := modulus >> 1
		var value int64
		for i := range values {
			if value = int64(pT[ecd.indexMatrix[i]]); value > modulusHalf {
				values[i] = value - modulus
			} else {
				values[i] = value
			}
		}
	}

	return
}
