package bignum_test

import (
	"math"
	"math/big"
	"testing"

	"github.com/goseal/goseal/utils/bignum"
	"github.com/stretchr/testify/require"
)

const prec = 128

func f64(x *big.Float) (y float64) {
	y, _ = x.Float64()
	return
}

func TestFloat(t *testing.T) {

	t.Run("Pi", func(t *testing.T) {
		require.Equal(t, math.Pi, f64(bignum.Pi(prec)))
	})

	t.Run("NewFloat", func(t *testing.T) {

		for _, x := range []interface{}{int(2), int64(2), uint(2), uint64(2), float64(2), big.NewInt(2), big.NewFloat(2)} {
			require.Equal(t, 2.0, f64(bignum.NewFloat(x, prec)))
		}

		y := bignum.NewFloat(nil, prec)
		require.Equal(t, 0.0, f64(y))
		require.Equal(t, uint(prec), y.Prec())

		require.Panics(t, func() { bignum.NewFloat("2", prec) })
	})

	t.Run("NewInt", func(t *testing.T) {

		for _, x := range []interface{}{int(-3), int64(-3), "-3", big.NewInt(-3)} {
			require.Equal(t, int64(-3), bignum.NewInt(x).Int64())
		}

		require.Equal(t, int64(3), bignum.NewInt(uint(3)).Int64())
		require.Equal(t, int64(3), bignum.NewInt(uint64(3)).Int64())

		// big.Float inputs are truncated toward zero
		require.Equal(t, int64(-3), bignum.NewInt(bignum.NewFloat(-3.5, prec)).Int64())

		require.Panics(t, func() { bignum.NewInt(3.5) })
	})

	t.Run("Round", func(t *testing.T) {
		for _, tc := range []struct{ in, out float64 }{
			{0, 0},
			{2.4, 2},
			{2.5, 3},
			{-2.5, -3},
			{-0.5, -1},
		} {
			require.Equal(t, tc.out, f64(bignum.Round(bignum.NewFloat(tc.in, prec))))
		}
	})

	t.Run("CosSin", func(t *testing.T) {

		third := bignum.Pi(prec)
		third.Quo(third, bignum.NewFloat(3, prec))

		cos := bignum.Cos(third)
		cos.Sub(cos, bignum.NewFloat(0.5, prec))
		require.Less(t, math.Abs(f64(cos)), 0x1p-100)

		sixth := bignum.Pi(prec)
		sixth.Quo(sixth, bignum.NewFloat(6, prec))

		sin := bignum.Sin(sixth)
		sin.Sub(sin, bignum.NewFloat(0.5, prec))
		require.Less(t, math.Abs(f64(sin)), 0x1p-100)
	})

	t.Run("LogExp", func(t *testing.T) {

		x := bignum.NewFloat(1.25, prec)

		y := bignum.Log(bignum.Exp(x))
		y.Sub(y, x)
		require.Less(t, math.Abs(f64(y)), 0x1p-100)
	})

	t.Run("Pow", func(t *testing.T) {
		pow := bignum.Pow(bignum.NewFloat(2, prec), bignum.NewFloat(10, prec))
		require.Equal(t, 1024.0, f64(pow))
	})
}
