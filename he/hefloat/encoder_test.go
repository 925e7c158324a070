package hefloat_test

import (
	"flag"
	"fmt"
	"math"
	"testing"

	"github.com/goseal/goseal/he/hefloat"
	"github.com/goseal/goseal/rlwe"
	"github.com/goseal/goseal/utils/sampling"
	"github.com/stretchr/testify/require"
)

var printPrecisionStats = flag.Bool("print-precision", false, "print precision stats")

type testContext struct {
	params  rlwe.Parameters
	encoder *hefloat.Encoder
	source  *sampling.Source
}

func testString(params rlwe.Parameters, opname string) string {
	return fmt.Sprintf("%s/LogN=%d/Levels=%d", opname, params.LogN(), params.MaxLevel()+1)
}

func newTestContext(t *testing.T, pl rlwe.ParametersLiteral) (tc *testContext) {

	params, err := rlwe.NewParametersFromLiteral(pl)
	require.NoError(t, err)

	return &testContext{
		params:  params,
		encoder: hefloat.NewEncoder(params, nil),
		source:  sampling.NewSource([32]byte{}),
	}
}

func newTestVectors(tc *testContext, min, max complex128) (values []complex128) {
	values = make([]complex128, tc.params.MaxSlots())
	for i := range values {
		values[i] = tc.source.Complex128(real(min), real(max))
	}
	return
}

func TestEncoder(t *testing.T) {

	tc := newTestContext(t, rlwe.ParametersLiteral{
		LogN:         8,
		LogQ:         []int{55, 55, 55},
		DefaultScale: math.Exp2(45),
	})

	params := tc.params
	ecd := tc.encoder

	t.Run(testString(params, "Encoder/RoundTrip/[]complex128"), func(t *testing.T) {

		for level := 0; level <= params.MaxLevel(); level++ {

			values := newTestVectors(tc, -1-1i, 1+1i)

			id, err := params.IDAtLevel(level)
			require.NoError(t, err)

			pt := rlwe.NewPlaintext(nil)
			require.NoError(t, ecd.Encode(values, id, params.DefaultScale(), pt))

			require.True(t, pt.IsNTT)
			require.True(t, pt.IsBatched)
			require.Equal(t, id, pt.ParametersID)

			hefloat.VerifyTestVectors(params, ecd, values, pt, 45, *printPrecisionStats, t)
		}
	})

	t.Run(testString(params, "Encoder/RoundTrip/[]float64"), func(t *testing.T) {

		values := make([]float64, params.MaxSlots())
		for i := range values {
			values[i] = tc.source.Float64(-1, 1)
		}

		id, err := params.IDAtLevel(params.MaxLevel())
		require.NoError(t, err)

		pt := rlwe.NewPlaintext(nil)
		require.NoError(t, ecd.Encode(values, id, params.DefaultScale(), pt))

		have := make([]float64, params.MaxSlots())
		require.NoError(t, ecd.Decode(pt, have))

		hefloat.VerifyTestVectors(params, ecd, values, have, 45, *printPrecisionStats, t)
	})

	t.Run(testString(params, "Encoder/RoundTrip/Scalar"), func(t *testing.T) {

		id, err := params.IDAtLevel(params.MaxLevel())
		require.NoError(t, err)

		pt := rlwe.NewPlaintext(nil)
		require.NoError(t, ecd.Encode(0.5+0.25i, id, params.DefaultScale(), pt))

		have := make([]complex128, params.MaxSlots())
		require.NoError(t, ecd.Decode(pt, have))

		require.InDelta(t, 0.5, real(have[0]), 1e-8)
		require.InDelta(t, 0.25, imag(have[0]), 1e-8)

		for i := 1; i < len(have); i++ {
			require.InDelta(t, 0, real(have[i]), 1e-8)
			require.InDelta(t, 0, imag(have[i]), 1e-8)
		}
	})

	t.Run(testString(params, "Encoder/RoundTrip/ScalingFactors"), func(t *testing.T) {

		id, err := params.IDAtLevel(params.MaxLevel())
		require.NoError(t, err)

		// 2^110 requires two words per coefficient and 2^130 a full
		// multi-precision path.
		for _, logScale := range []int{16, 40, 60, 110, 130} {

			values := newTestVectors(tc, -1-1i, 1+1i)

			pt := rlwe.NewPlaintext(nil)
			require.NoError(t, ecd.Encode(values, id, math.Exp2(float64(logScale)), pt))

			minPrec := logScale
			if minPrec > 45 {
				minPrec = 45
			}

			hefloat.VerifyTestVectors(params, ecd, values, pt, minPrec, *printPrecisionStats, t)
		}
	})

	t.Run(testString(params, "Encoder/EncodeInt"), func(t *testing.T) {

		id, err := params.IDAtLevel(params.MaxLevel())
		require.NoError(t, err)

		for _, value := range []int64{0, 1, -1, 12345, -98765, 1 << 40, (1 << 62) - 1, -(1 << 62)} {

			pt := rlwe.NewPlaintext(nil)
			require.NoError(t, ecd.EncodeInt(value, id, pt))

			require.Equal(t, 1.0, pt.Scale)

			have := make([]complex128, params.MaxSlots())
			require.NoError(t, ecd.Decode(pt, have))

			for i := range have {
				require.Equal(t, float64(value), real(have[i]))
				require.Equal(t, 0.0, imag(have[i]))
			}
		}
	})

	t.Run(testString(params, "Encoder/SlotIndependence"), func(t *testing.T) {

		id, err := params.IDAtLevel(params.MaxLevel())
		require.NoError(t, err)

		values := make([]complex128, params.MaxSlots())
		values[3] = 0.75 - 0.5i

		pt := rlwe.NewPlaintext(nil)
		require.NoError(t, ecd.Encode(values, id, params.DefaultScale(), pt))

		have := make([]complex128, params.MaxSlots())
		require.NoError(t, ecd.Decode(pt, have))

		require.InDelta(t, 0.75, real(have[3]), 1e-8)
		require.InDelta(t, -0.5, imag(have[3]), 1e-8)

		for i := range have {
			if i == 3 {
				continue
			}
			require.InDelta(t, 0, real(have[i]), 1e-8)
			require.InDelta(t, 0, imag(have[i]), 1e-8)
		}
	})

	t.Run(testString(params, "Encoder/InvalidArguments"), func(t *testing.T) {

		id, err := params.IDAtLevel(params.MaxLevel())
		require.NoError(t, err)

		pt := rlwe.NewPlaintext(nil)

		// Scaling factor at least as large as the modulus
		totalBits, err := params.TotalBitCountAtLevel(params.MaxLevel())
		require.NoError(t, err)
		require.Error(t, ecd.Encode([]complex128{1}, id, math.Exp2(float64(totalBits-1)), pt))
		require.Error(t, ecd.Encode([]complex128{1}, id, math.Exp2(float64(totalBits+10)), pt))
		require.Error(t, ecd.Encode([]complex128{1}, id, 0, pt))
		require.Error(t, ecd.Encode([]complex128{1}, id, math.Inf(1), pt))

		// Scaled values overflowing the modulus
		require.Error(t, ecd.Encode([]complex128{complex(math.Exp2(140), 0)}, id, math.Exp2(45), pt))

		// Non-finite values
		require.Error(t, ecd.Encode([]complex128{complex(math.NaN(), 0)}, id, params.DefaultScale(), pt))
		require.Error(t, ecd.Encode([]complex128{complex(0, math.Inf(1))}, id, params.DefaultScale(), pt))
		require.Error(t, ecd.Encode([]float64{math.Inf(-1)}, id, params.DefaultScale(), pt))

		// Too many values
		require.Error(t, ecd.Encode(make([]complex128, params.MaxSlots()+1), id, params.DefaultScale(), pt))

		// Unknown identifier
		require.Error(t, ecd.Encode([]complex128{1}, rlwe.NoParametersID, params.DefaultScale(), pt))

		// Decoding a coefficient form plaintext
		require.Error(t, ecd.Decode(rlwe.NewPlaintext(nil), make([]complex128, params.MaxSlots())))

		// Decoding on too many values
		valid := rlwe.NewPlaintext(nil)
		require.NoError(t, ecd.Encode([]complex128{1}, id, params.DefaultScale(), valid))
		require.Error(t, ecd.Decode(valid, make([]complex128, params.MaxSlots()+1)))
	})

	t.Run(testString(params, "Encoder/ShallowCopy"), func(t *testing.T) {

		id, err := params.IDAtLevel(params.MaxLevel())
		require.NoError(t, err)

		values := newTestVectors(tc, -1-1i, 1+1i)

		pt1 := rlwe.NewPlaintext(nil)
		require.NoError(t, ecd.Encode(values, id, params.DefaultScale(), pt1))

		pt2 := rlwe.NewPlaintext(nil)
		require.NoError(t, ecd.ShallowCopy().Encode(values, id, params.DefaultScale(), pt2))

		require.True(t, pt1.Equal(pt2))
	})
}

func TestEncoderHighPrecisionZero(t *testing.T) {

	tc := newTestContext(t, rlwe.ParametersLiteral{
		LogN: 6,
		LogQ: []int{60, 60},
	})

	params := tc.params
	ecd := tc.encoder

	t.Run(testString(params, "Encoder/ZeroVector"), func(t *testing.T) {

		id, err := params.IDAtLevel(params.MaxLevel())
		require.NoError(t, err)

		pt := rlwe.NewPlaintext(nil)
		require.NoError(t, ecd.Encode(make([]complex128, params.MaxSlots()), id, math.Exp2(100), pt))

		have := make([]complex128, params.MaxSlots())
		require.NoError(t, ecd.Decode(pt, have))

		for i := range have {
			require.Less(t, math.Abs(real(have[i])), 0.5)
			require.Less(t, math.Abs(imag(have[i])), 0.5)
		}
	})
}
