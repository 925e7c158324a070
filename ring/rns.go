package ring

import (
	"fmt"
	"math/big"

	"github.com/goseal/goseal/utils"
)

// RNSBasis stores the precomputations needed to convert between the
// residue number system representation over a set of pairwise distinct
// primes and the positional representation modulo their product.
type RNSBasis struct {

	// Moduli of the basis.
	Moduli []uint64

	// Product of the moduli.
	Product *big.Int

	// (Product + 1) / 2. Values greater than or equal to this
	// threshold represent negative numbers in centered form.
	UpperHalfThreshold *big.Int

	// Product / Moduli[i]
	puncturedProducts []big.Int

	// (Product / Moduli[i])^-1 mod Moduli[i]
	invPuncturedProducts []uint64

	bredconstants [][2]uint64
}

// NewRNSBasis instantiates a new RNSBasis from the provided moduli,
// which must be pairwise distinct primes.
func NewRNSBasis(moduli []uint64) (b *RNSBasis, err error) {

	if len(moduli) == 0 {
		return nil, fmt.Errorf("cannot NewRNSBasis: empty moduli")
	}

	for _, q := range moduli {
		if !IsPrime(q) {
			return nil, fmt.Errorf("cannot NewRNSBasis: modulus %d is not prime", q)
		}
	}

	if !utils.AllDistinct(moduli) {
		return nil, fmt.Errorf("cannot NewRNSBasis: moduli are not pairwise distinct")
	}

	b = &RNSBasis{
		Moduli:               make([]uint64, len(moduli)),
		puncturedProducts:    make([]big.Int, len(moduli)),
		invPuncturedProducts: make([]uint64, len(moduli)),
		bredconstants:        make([][2]uint64, len(moduli)),
	}

	copy(b.Moduli, moduli)

	b.Product = new(big.Int).SetUint64(1)
	for _, q := range moduli {
		b.Product.Mul(b.Product, new(big.Int).SetUint64(q))
	}

	b.UpperHalfThreshold = new(big.Int).Add(b.Product, new(big.Int).SetUint64(1))
	b.UpperHalfThreshold.Rsh(b.UpperHalfThreshold, 1)

	tmp := new(big.Int)
	for i, q := range moduli {

		qBig := new(big.Int).SetUint64(q)

		b.puncturedProducts[i].Quo(b.Product, qBig)

		if tmp.ModInverse(&b.puncturedProducts[i], qBig) == nil {
			return nil, fmt.Errorf("cannot NewRNSBasis: moduli are not pairwise coprime")
		}

		b.invPuncturedProducts[i] = tmp.Uint64()
		b.bredconstants[i] = GetBRedConstant(q)
	}

	return
}

// Size returns the number of moduli of the basis.
func (b *RNSBasis) Size() int {
	return len(b.Moduli)
}

// Compose reconstructs v in [0, Product) from its residues vals, with
// vals[i] = v mod Moduli[i].
func (b *RNSBasis) Compose(vals []uint64, v *big.Int) {

	// Sanity check
	if len(vals) != len(b.Moduli) {
		panic(fmt.Sprintf("cannot Compose: len(vals)=%d != #moduli=%d", len(vals), len(b.Moduli)))
	}

	v.SetUint64(0)

	tmp := new(big.Int)

	for i, q := range b.Moduli {
		c := BRed(vals[i], b.invPuncturedProducts[i], q, b.bredconstants[i])
		v.Add(v, tmp.Mul(tmp.SetUint64(c), &b.puncturedProducts[i]))
	}

	v.Mod(v, b.Product)
}

// Decompose computes the residues vals[i] = v mod Moduli[i] of v, which
// must be non-negative.
func (b *RNSBasis) Decompose(v *big.Int, vals []uint64) {

	// Sanity check
	if len(vals) != len(b.Moduli) {
		panic(fmt.Sprintf("cannot Decompose: len(vals)=%d != #moduli=%d", len(vals), len(b.Moduli)))
	}

	tmp := new(big.Int)
	qBig := new(big.Int)

	for i, q := range b.Moduli {
		vals[i] = tmp.Mod(v, qBig.SetUint64(q)).Uint64()
	}
}
