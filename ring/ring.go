// Package ring implements modular arithmetic and the number theoretic
// transform for polynomials in Z_q[X]/(X^N+1) with q an NTT-friendly
// prime, as well as the RNS basis conversions between such primes and
// their product.
package ring

import (
	"fmt"
	"math/bits"

	"github.com/goseal/goseal/utils"
)

// Ring is a struct storing the precomputations for fast modular
// reduction and NTT for a single prime modulus.
type Ring struct {
	// Polynomial degree
	N int

	Modulus uint64

	// 2^bit_length(Modulus) - 1
	Mask uint64

	// Fast reduction constants
	BRedConstant [2]uint64 // Barrett Reduction
	MRedConstant uint64    // Montgomery Reduction

	*NTTTable // NTT related constants
}

// NewRing creates a new [Ring] with degree N and modulus Modulus, and
// generates its NTT constants for NthRoot = 2N.
// An error is returned with a nil *Ring in the case of non NTT-enabling
// parameters.
func NewRing(N int, Modulus uint64) (r *Ring, err error) {

	// Checks if N is a power of 2
	if N < 2 || (N&(N-1)) != 0 {
		return nil, fmt.Errorf("invalid ring degree: must be a power of 2 greater than 1 but is %d", N)
	}

	if bits.Len64(Modulus) > 61 {
		return nil, fmt.Errorf("invalid modulus: must be smaller than 2^61 but is %d bits", bits.Len64(Modulus))
	}

	r = &Ring{}

	r.N = N

	r.Modulus = Modulus

	r.Mask = (1 << uint64(bits.Len64(Modulus-1))) - 1

	r.BRedConstant = GetBRedConstant(Modulus)

	// If q is not a power of 2, we can compute the MRed constant (otherwise
	// there is no valid Montgomery form mod a power of 2)
	if (Modulus&(Modulus-1)) != 0 && Modulus != 0 {
		r.MRedConstant = GetMRedConstant(Modulus)
	}

	r.NTTTable = new(NTTTable)
	r.NthRoot = uint64(N) << 1

	return r, r.GenNTTTable()
}

// LogN returns log2(N).
func (r Ring) LogN() int {
	return bits.Len64(uint64(r.N) - 1)
}

// GenNTTTable generates the NTT tables of the receiver.
func (r *Ring) GenNTTTable() (err error) {

	if r.N == 0 || r.Modulus == 0 {
		return fmt.Errorf("invalid ring (missing degree or modulus)")
	}

	Modulus := r.Modulus
	NthRoot := r.NthRoot

	if !IsPrime(Modulus) {
		return fmt.Errorf("invalid modulus: %d is not prime", Modulus)
	}

	if Modulus&(NthRoot-1) != 1 {
		return fmt.Errorf("invalid modulus: %d != 1 mod NthRoot=%d", Modulus, NthRoot)
	}

	var Psi uint64
	if Psi, err = primitiveNthRoot(Modulus, NthRoot); err != nil {
		return
	}

	r.PrimitiveRoot = Psi

	logNthRoot := int(bits.Len64(NthRoot>>1) - 1)

	// N^-1 mod Modulus in Montgomery form
	r.NInv = MForm(ModExp(NthRoot>>1, Modulus-2, Modulus), Modulus, r.BRedConstant)

	PsiMont := MForm(Psi, Modulus, r.BRedConstant)
	PsiInvMont := ModExpMontgomery(PsiMont, Modulus-2, Modulus, r.MRedConstant, r.BRedConstant)

	r.RootsForward = make([]uint64, NthRoot>>1)
	r.RootsBackward = make([]uint64, NthRoot>>1)

	r.RootsForward[0] = MForm(1, Modulus, r.BRedConstant)
	r.RootsBackward[0] = r.RootsForward[0]

	// Computes RootsForward[bitrev(j)] = Psi^j and
	// RootsBackward[bitrev(j)] = Psi^-j
	for j := uint64(1); j < NthRoot>>1; j++ {

		indexReversePrev := utils.BitReverse64(j-1, uint64(logNthRoot))
		indexReverseNext := utils.BitReverse64(j, uint64(logNthRoot))

		r.RootsForward[indexReverseNext] = MRed(r.RootsForward[indexReversePrev], PsiMont, Modulus, r.MRedConstant)
		r.RootsBackward[indexReverseNext] = MRed(r.RootsBackward[indexReversePrev], PsiInvMont, Modulus, r.MRedConstant)
	}

	return
}

// primitiveNthRoot returns a primitive NthRoot-th root of unity mod q,
// with q prime and q = 1 mod NthRoot.
//
// Candidates are derived by exponentiating small integers to the power
// (q-1)/NthRoot, and accepted when their (NthRoot/2)-th power is -1 mod q,
// which for NthRoot a power of two certifies the order without requiring
// the factorization of q-1.
func primitiveNthRoot(q, NthRoot uint64) (psi uint64, err error) {

	if NthRoot&(NthRoot-1) != 0 {
		return 0, fmt.Errorf("invalid NthRoot: must be a power of 2 but is %d", NthRoot)
	}

	for x := uint64(2); x < q; x++ {

		psi = ModExp(x, (q-1)/NthRoot, q)

		if ModExp(psi, NthRoot>>1, q) == q-1 {
			return psi, nil
		}
	}

	return 0, fmt.Errorf("no primitive %d-th root of unity mod %d", NthRoot, q)
}
