// Package rlwe implements the data model shared by the RLWE based
// homomorphic encryption schemes: the modulus switching chain and its
// level identifiers, and the plaintext and ciphertext types backed by
// arena allocated coefficient buffers.
package rlwe

import (
	"fmt"
	"math"
	"math/bits"
	"slices"

	"github.com/goseal/goseal/ring"
	"github.com/goseal/goseal/utils"
)

const (
	// MinLogN is the smallest supported ring degree logarithm.
	MinLogN = 1
	// MaxLogN is the largest supported ring degree logarithm.
	MaxLogN = 17
	// MaxModuliCount is the largest supported number of chain primes.
	MaxModuliCount = 34
	// MinCiphertextSize is the smallest valid number of ciphertext
	// polynomial components.
	MinCiphertextSize = 2
)

// parametersLevel stores the constants derived for one level of the
// modulus switching chain, i.e. for one prefix of the prime chain.
type parametersLevel struct {
	id            ParametersID
	basis         *ring.RNSBasis
	totalBitCount int
}

// Parameters stores the checked parameters of a modulus switching
// chain: the ring degree, the prime chain, the per-prime NTT enabled
// rings and the per-level derived constants. Parameters are immutable
// once instantiated and safely shared across goroutines.
type Parameters struct {
	logN         int
	moduli       []uint64
	rings        []*ring.Ring
	levels       []parametersLevel
	defaultScale float64
}

// NewParametersFromLiteral instantiates a set of Parameters from a
// ParametersLiteral, validating it in the process.
//
// See the ParametersLiteral type for details on the configuration
// surface.
func NewParametersFromLiteral(pl ParametersLiteral) (p Parameters, err error) {

	if pl.LogN < MinLogN || pl.LogN > MaxLogN {
		return Parameters{}, fmt.Errorf("cannot NewParametersFromLiteral: LogN=%d is not in [%d, %d]", pl.LogN, MinLogN, MaxLogN)
	}

	if (len(pl.Q) == 0) == (len(pl.LogQ) == 0) {
		return Parameters{}, fmt.Errorf("cannot NewParametersFromLiteral: exactly one of Q or LogQ must be set")
	}

	N := 1 << pl.LogN

	var moduli []uint64
	if len(pl.Q) != 0 {
		moduli = slices.Clone([]uint64(pl.Q))
	} else {
		if moduli, err = genModuli(pl.LogQ, N); err != nil {
			return Parameters{}, err
		}
	}

	if len(moduli) > MaxModuliCount {
		return Parameters{}, fmt.Errorf("cannot NewParametersFromLiteral: #moduli=%d exceeds the maximum of %d", len(moduli), MaxModuliCount)
	}

	defaultScale := pl.DefaultScale
	if defaultScale == 0 {
		defaultScale = 1
	}

	if defaultScale < 0 || math.IsNaN(defaultScale) || math.IsInf(defaultScale, 0) {
		return Parameters{}, fmt.Errorf("cannot NewParametersFromLiteral: invalid DefaultScale %f", pl.DefaultScale)
	}

	p = Parameters{
		logN:         pl.LogN,
		moduli:       moduli,
		rings:        make([]*ring.Ring, len(moduli)),
		levels:       make([]parametersLevel, len(moduli)),
		defaultScale: defaultScale,
	}

	for i, q := range moduli {

		if p.rings[i], err = ring.NewRing(N, q); err != nil {
			return Parameters{}, fmt.Errorf("cannot NewParametersFromLiteral: modulus %d: %w", q, err)
		}

		level := &p.levels[i]

		if level.basis, err = ring.NewRNSBasis(moduli[:i+1]); err != nil {
			return Parameters{}, fmt.Errorf("cannot NewParametersFromLiteral: %w", err)
		}

		level.id = newParametersID(pl.LogN, moduli[:i+1])
		level.totalBitCount = level.basis.Product.BitLen()
	}

	return
}

// genModuli generates one NTT-friendly prime per requested bit-size,
// grouping equal sizes so that all returned primes are distinct.
func genModuli(logQ []int, N int) (moduli []uint64, err error) {

	counts := map[int]int{}
	for _, logq := range logQ {
		if logq < 2 || logq > 60 {
			return nil, fmt.Errorf("cannot genModuli: prime bit-size %d is not in [2, 60]", logq)
		}
		counts[logq]++
	}

	primes := map[int][]uint64{}
	for logq, n := range counts {
		primes[logq] = ring.GenerateNTTPrimes(logq, N<<1, n)
	}

	moduli = make([]uint64, 0, len(logQ))
	for _, logq := range logQ {
		moduli = append(moduli, primes[logq][0])
		primes[logq] = primes[logq][1:]
	}

	return
}

// N returns the ring degree.
func (p Parameters) N() int {
	return 1 << p.logN
}

// LogN returns the base 2 logarithm of the ring degree.
func (p Parameters) LogN() int {
	return p.logN
}

// MaxLevel returns the index of the highest level of the chain.
func (p Parameters) MaxLevel() int {
	return len(p.moduli) - 1
}

// MaxSlots returns the number of complex slots at the ring degree,
// i.e. N/2.
func (p Parameters) MaxSlots() int {
	return p.N() >> 1
}

// DefaultScale returns the default scaling factor of the parameters.
func (p Parameters) DefaultScale() float64 {
	return p.defaultScale
}

// Moduli returns the full prime chain.
func (p Parameters) Moduli() []uint64 {
	return slices.Clone(p.moduli)
}

// ModuliAtLevel returns the primes in use at the given level, i.e. the
// first level+1 primes of the chain.
func (p Parameters) ModuliAtLevel(level int) ([]uint64, error) {
	if err := p.checkLevel(level); err != nil {
		return nil, err
	}
	return p.moduli[:level+1], nil
}

// RingsAtLevel returns the per-prime NTT enabled rings in use at the
// given level.
func (p Parameters) RingsAtLevel(level int) ([]*ring.Ring, error) {
	if err := p.checkLevel(level); err != nil {
		return nil, err
	}
	return p.rings[:level+1], nil
}

// BasisAtLevel returns the RNS basis spanning the primes of the given
// level.
func (p Parameters) BasisAtLevel(level int) (*ring.RNSBasis, error) {
	if err := p.checkLevel(level); err != nil {
		return nil, err
	}
	return p.levels[level].basis, nil
}

// TotalBitCountAtLevel returns the bit-length of the product of the
// primes of the given level.
func (p Parameters) TotalBitCountAtLevel(level int) (int, error) {
	if err := p.checkLevel(level); err != nil {
		return 0, err
	}
	return p.levels[level].totalBitCount, nil
}

// IDAtLevel returns the ParametersID of the given level.
func (p Parameters) IDAtLevel(level int) (ParametersID, error) {
	if err := p.checkLevel(level); err != nil {
		return NoParametersID, err
	}
	return p.levels[level].id, nil
}

// LevelOf resolves an identifier to its chain level. An error is
// returned if the identifier does not belong to the chain, including
// for the all-zero sentinel.
func (p Parameters) LevelOf(id ParametersID) (int, error) {
	for level := range p.levels {
		if p.levels[level].id == id {
			return level, nil
		}
	}
	return 0, fmt.Errorf("cannot LevelOf: identifier %s not found in the chain", id)
}

func (p Parameters) checkLevel(level int) error {
	if level < 0 || level >= len(p.levels) {
		return fmt.Errorf("invalid level: %d is not in [0, %d]", level, p.MaxLevel())
	}
	return nil
}

// Equal returns true if both sets of parameters define the same chain.
func (p Parameters) Equal(other *Parameters) bool {
	return p.logN == other.logN && utils.EqualSlice(p.moduli, other.moduli) && p.defaultScale == other.defaultScale
}

// ParametersLiteral returns the literal representation of the receiver.
func (p Parameters) ParametersLiteral() ParametersLiteral {
	return ParametersLiteral{
		LogN:         p.logN,
		Q:            slices.Clone(p.moduli),
		DefaultScale: p.defaultScale,
	}
}

// ciphertextWordCount returns size*N*(level+1), guarding against
// overflow of the word count before any allocation takes place.
func (p Parameters) ciphertextWordCount(size, level int) (int, error) {
	return ciphertextWords(size, p.N(), level+1)
}

// ciphertextWords returns size*polyDegree*primeCount, rejecting any
// product that would overflow the addressable word count.
func ciphertextWords(size, polyDegree, primeCount int) (int, error) {

	hi, lo := bits.Mul64(uint64(size), uint64(polyDegree)*uint64(primeCount))
	if hi != 0 || lo > math.MaxInt64/8 {
		return 0, fmt.Errorf("invalid dimensions: %d x %d x %d words overflow the addressable size", size, polyDegree, primeCount)
	}

	return int(lo), nil
}
