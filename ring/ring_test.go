package ring

import (
	"fmt"
	"math/big"
	"testing"

	"github.com/goseal/goseal/utils/sampling"
	"github.com/stretchr/testify/require"
)

func testString(opname string, N int, q uint64) string {
	return fmt.Sprintf("%s/N=%d/q=%d", opname, N, q)
}

func TestModularArithmetic(t *testing.T) {

	source := sampling.NewSource([32]byte{})

	for _, q := range GenerateNTTPrimes(55, 2048, 3) {

		brc := GetBRedConstant(q)
		mrc := GetMRedConstant(q)

		qBig := new(big.Int).SetUint64(q)
		tmp := new(big.Int)

		t.Run(testString("MForm/IMForm", 0, q), func(t *testing.T) {
			for i := 0; i < 64; i++ {
				x := source.Uint64() % q
				require.Equal(t, x, IMForm(MForm(x, q, brc), q, mrc))
			}
		})

		t.Run(testString("MRed", 0, q), func(t *testing.T) {
			for i := 0; i < 64; i++ {
				x := source.Uint64() % q
				y := source.Uint64() % q
				want := tmp.Mul(new(big.Int).SetUint64(x), new(big.Int).SetUint64(y)).Mod(tmp, qBig).Uint64()
				require.Equal(t, want, MRed(x, MForm(y, q, brc), q, mrc))
			}
		})

		t.Run(testString("BRed", 0, q), func(t *testing.T) {
			for i := 0; i < 64; i++ {
				x := source.Uint64()
				y := source.Uint64()
				want := tmp.Mul(new(big.Int).SetUint64(x), new(big.Int).SetUint64(y)).Mod(tmp, qBig).Uint64()
				require.Equal(t, want, BRed(x, y, q, brc))
			}
		})

		t.Run(testString("BRedAdd", 0, q), func(t *testing.T) {
			for i := 0; i < 64; i++ {
				x := source.Uint64()
				require.Equal(t, x%q, BRedAdd(x, q, brc))
			}
		})

		t.Run(testString("BRedAdd128", 0, q), func(t *testing.T) {
			for i := 0; i < 64; i++ {
				hi := source.Uint64()
				lo := source.Uint64()
				wide := new(big.Int).Lsh(new(big.Int).SetUint64(hi), 64)
				wide.Add(wide, new(big.Int).SetUint64(lo))
				require.Equal(t, tmp.Mod(wide, qBig).Uint64(), BRedAdd128(hi, lo, q, brc))
			}
		})
	}
}

func TestNTT(t *testing.T) {

	source := sampling.NewSource([32]byte{})

	for _, N := range []int{16, 64} {

		for _, q := range GenerateNTTPrimes(50, N<<1, 2) {

			r, err := NewRing(N, q)
			require.NoError(t, err)

			t.Run(testString("NTT/Inversion", N, q), func(t *testing.T) {

				p1 := make([]uint64, N)
				p2 := make([]uint64, N)

				UniformVec(source, p1, q, r.Mask)

				r.NTT(p1, p2)
				r.INTT(p2, p2)

				require.Equal(t, p1, p2)
			})

			t.Run(testString("NTT/NegacyclicConvolution", N, q), func(t *testing.T) {

				p1 := make([]uint64, N)
				p2 := make([]uint64, N)

				UniformVec(source, p1, q, r.Mask)
				UniformVec(source, p2, q, r.Mask)

				// Schoolbook multiplication in Z_q[X]/(X^N+1)
				want := make([]uint64, N)
				for i := range p1 {
					for j := range p2 {
						c := BRed(p1[i], p2[j], q, r.BRedConstant)
						if i+j < N {
							want[i+j] = CRed(want[i+j]+c, q)
						} else if c != 0 {
							want[i+j-N] = CRed(want[i+j-N]+q-c, q)
						}
					}
				}

				got := make([]uint64, N)
				r.NTT(p1, p1)
				r.NTT(p2, p2)
				for i := range got {
					got[i] = BRed(p1[i], p2[i], q, r.BRedConstant)
				}
				r.INTT(got, got)

				require.Equal(t, want, got)
			})
		}
	}
}

func TestGenerateNTTPrimes(t *testing.T) {

	NthRoot := 256

	primes := GenerateNTTPrimes(40, NthRoot, 8)

	require.Equal(t, 8, len(primes))

	seen := map[uint64]bool{}
	for _, q := range primes {
		require.True(t, IsPrime(q))
		require.Equal(t, uint64(1), q%uint64(NthRoot))
		require.False(t, seen[q])
		seen[q] = true
	}
}

func TestRNSBasis(t *testing.T) {

	source := sampling.NewSource([32]byte{})

	moduli := GenerateNTTPrimes(45, 2048, 4)

	basis, err := NewRNSBasis(moduli)
	require.NoError(t, err)

	t.Run("Compose/Decompose", func(t *testing.T) {

		v := new(big.Int)

		vals := make([]uint64, basis.Size())

		for i := 0; i < 16; i++ {

			for j := range vals {
				vals[j] = source.Uint64() % moduli[j]
			}

			basis.Compose(vals, v)

			got := make([]uint64, basis.Size())
			basis.Decompose(v, got)

			require.Equal(t, vals, got)
			require.True(t, v.Cmp(basis.Product) < 0)
		}
	})

	t.Run("UpperHalfThreshold", func(t *testing.T) {
		twice := new(big.Int).Lsh(basis.UpperHalfThreshold, 1)
		diff := new(big.Int).Sub(twice, basis.Product)
		require.True(t, diff.Uint64() <= 1)
	})

	t.Run("InvalidModuli", func(t *testing.T) {
		_, err := NewRNSBasis([]uint64{17, 17})
		require.Error(t, err)
		_, err = NewRNSBasis([]uint64{16})
		require.Error(t, err)
		_, err = NewRNSBasis([]uint64{})
		require.Error(t, err)
	})
}
