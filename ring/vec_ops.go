package ring

import (
	"github.com/goseal/goseal/utils/sampling"
)

// BarrettReduceVec evaluates p2 = p1 mod modulus.
func BarrettReduceVec(p1, p2 []uint64, modulus uint64, bredconstant [2]uint64) {
	for i := range p1 {
		p2[i] = BRedAdd(p1[i], modulus, bredconstant)
	}
}

// MulScalarMontgomeryReduceVec evaluates p2 = p1 * scalarMont mod modulus,
// where scalarMont is in Montgomery form.
func MulScalarMontgomeryReduceVec(p1 []uint64, scalarMont uint64, p2 []uint64, modulus, mredconstant uint64) {
	for i := range p1 {
		p2[i] = MRed(p1[i], scalarMont, modulus, mredconstant)
	}
}

// AddVec evaluates p3 = p1 + p2 mod modulus.
func AddVec(p1, p2, p3 []uint64, modulus uint64) {
	for i := range p1 {
		p3[i] = CRed(p1[i]+p2[i], modulus)
	}
}

// SubVec evaluates p3 = p1 - p2 mod modulus.
func SubVec(p1, p2, p3 []uint64, modulus uint64) {
	for i := range p1 {
		p3[i] = CRed(p1[i]+modulus-p2[i], modulus)
	}
}

// NegVec evaluates p2 = -p1 mod modulus.
// Zero coefficients are mapped to zero.
func NegVec(p1, p2 []uint64, modulus uint64) {
	for i := range p1 {
		if p1[i] != 0 {
			p2[i] = modulus - p1[i]
		} else {
			p2[i] = 0
		}
	}
}

// UniformVec fills p with uniform coefficients in [0, modulus-1] read
// from the provided source, using rejection sampling on the masked
// candidate.
func UniformVec(source *sampling.Source, p []uint64, modulus, mask uint64) {
	for i := range p {
		c := source.Uint64() & mask
		for c >= modulus {
			c = source.Uint64() & mask
		}
		p[i] = c
	}
}
