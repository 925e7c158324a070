package hefloat

import (
	"fmt"
	"math/big"

	"github.com/goseal/goseal/utils/bignum"
)

// rootPrecision is the bit precision at which the primitive roots of
// unity are evaluated before rounding to complex128.
const rootPrecision = 128

// complexRoots generates the powers of the primitive m-th root of unity
// exp(2*pi*i/m). Only the powers in [0, m/8] are stored; the remaining
// ones are derived on the fly through the 8-fold symmetry of the unit
// circle.
type complexRoots struct {
	m     int
	roots []complex128
}

// newComplexRoots instantiates the root table for a given m, which must
// be a power of two greater than or equal to 8.
func newComplexRoots(m int) *complexRoots {

	// Sanity check
	if m < 8 || m&(m-1) != 0 {
		panic(fmt.Errorf("cannot newComplexRoots: m=%d must be a power of two >= 8", m))
	}

	cr := &complexRoots{
		m:     m,
		roots: make([]complex128, (m>>3)+1),
	}

	theta := bignum.Pi(rootPrecision)
	theta.Mul(theta, bignum.NewFloat(2, rootPrecision))
	theta.Quo(theta, bignum.NewFloat(m, rootPrecision))

	angle := new(big.Float).SetPrec(rootPrecision)

	for i := range cr.roots {
		angle.Mul(theta, bignum.NewFloat(i, rootPrecision))
		re, _ := bignum.Cos(angle).Float64()
		im, _ := bignum.Sin(angle).Float64()
		cr.roots[i] = complex(re, im)
	}

	return cr
}

// GetRoot returns exp(2*pi*i*index/m).
func (cr *complexRoots) GetRoot(index int) complex128 {

	m := cr.m

	index &= m - 1

	// Use the symmetry of the roots to only lookup the first octant
	switch {
	case index <= m>>3:
		return cr.roots[index]
	case index <= m>>2:
		r := cr.roots[(m>>2)-index]
		return complex(imag(r), real(r))
	case index <= m>>1:
		r := cr.GetRoot((m >> 1) - index)
		return complex(real(r), -imag(r)) * -1
	case index <= 3*(m>>2):
		return -cr.GetRoot(index - (m >> 1))
	default:
		r := cr.GetRoot(m - index)
		return complex(real(r), -imag(r))
	}
}
