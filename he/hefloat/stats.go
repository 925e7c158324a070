package hefloat

import (
	"fmt"
	"math"
	"testing"

	"github.com/goseal/goseal/rlwe"
	"github.com/goseal/goseal/utils"
	"github.com/goseal/goseal/utils/bignum"
	"github.com/montanaflynn/stats"
	"github.com/stretchr/testify/require"
)

// PrecisionStats is a struct storing statistics about the precision of
// a vector of values compared to an expected reference vector. The
// precision of an entry is the negated base two logarithm of its error.
type PrecisionStats struct {
	MaxErr Stats
	MinErr Stats
	AvgErr Stats
	MedErr Stats
	StdErr Stats

	MaxPrec Stats
	MinPrec Stats
	AvgPrec Stats
	MedPrec Stats
	StdPrec Stats
}

// Stats is a struct storing the real, imaginary and L2 part of an
// error figure.
type Stats struct {
	Real, Imag, L2 float64
}

func (p PrecisionStats) String() string {
	return fmt.Sprintf(`
┌─────────┬───────┬───────┬───────┐
│    Log2 │ REAL  │ IMAG  │ L2    │
├─────────┼───────┼───────┼───────┤
│MIN Prec │ %5.2f │ %5.2f │ %5.2f │
│MAX Prec │ %5.2f │ %5.2f │ %5.2f │
│AVG Prec │ %5.2f │ %5.2f │ %5.2f │
│MED Prec │ %5.2f │ %5.2f │ %5.2f │
│STD Prec │ %5.2f │ %5.2f │ %5.2f │
└─────────┴───────┴───────┴───────┘
`,
		p.MinPrec.Real, p.MinPrec.Imag, p.MinPrec.L2,
		p.MaxPrec.Real, p.MaxPrec.Imag, p.MaxPrec.L2,
		p.AvgPrec.Real, p.AvgPrec.Imag, p.AvgPrec.L2,
		p.MedPrec.Real, p.MedPrec.Imag, p.MedPrec.L2,
		p.StdPrec.Real, p.StdPrec.Imag, p.StdPrec.L2)
}

// errFloor bounds the reported errors away from zero, so that an exact
// match maps to a finite precision of 128 bits.
const errFloor = 0x1p-128

// GetPrecisionStats computes the error between want and have and
// returns the precision statistics of the error vector. have can be a
// slice of values or an evaluation form [rlwe.Plaintext], which is
// then decoded with encoder. Slices can be []complex128 or []float64.
func GetPrecisionStats(params rlwe.Parameters, encoder *Encoder, want, have interface{}) (prec PrecisionStats, err error) {

	wantC, err := toComplexVector(want)
	if err != nil {
		return prec, fmt.Errorf("cannot GetPrecisionStats: %w", err)
	}

	var haveC []complex128
	switch have := have.(type) {
	case *rlwe.Plaintext:
		haveC = make([]complex128, len(wantC))
		if err = encoder.Decode(have, haveC); err != nil {
			return prec, fmt.Errorf("cannot GetPrecisionStats: %w", err)
		}
	default:
		if haveC, err = toComplexVector(have); err != nil {
			return prec, fmt.Errorf("cannot GetPrecisionStats: %w", err)
		}
	}

	if len(wantC) != len(haveC) {
		return prec, fmt.Errorf("cannot GetPrecisionStats: want and have hold %d and %d values", len(wantC), len(haveC))
	}

	errReal := make([]float64, len(wantC))
	errImag := make([]float64, len(wantC))
	errL2 := make([]float64, len(wantC))

	precReal := make([]float64, len(wantC))
	precImag := make([]float64, len(wantC))
	precL2 := make([]float64, len(wantC))

	for i := range wantC {
		delta := wantC[i] - haveC[i]
		errReal[i] = math.Max(math.Abs(real(delta)), errFloor)
		errImag[i] = math.Max(math.Abs(imag(delta)), errFloor)
		errL2[i] = math.Max(math.Hypot(real(delta), imag(delta)), errFloor)
		precReal[i] = -log2(errReal[i])
		precImag[i] = -log2(errImag[i])
		precL2[i] = -log2(errL2[i])
	}

	collect := func(f func(stats.Float64Data) (float64, error), re, im, l2 []float64) (s Stats) {
		s.Real, _ = f(re)
		s.Imag, _ = f(im)
		s.L2, _ = f(l2)
		return
	}

	prec.MaxErr = collect(stats.Max, errReal, errImag, errL2)
	prec.MinErr = collect(stats.Min, errReal, errImag, errL2)
	prec.AvgErr = collect(stats.Mean, errReal, errImag, errL2)
	prec.MedErr = collect(stats.Median, errReal, errImag, errL2)
	prec.StdErr = collect(stats.StandardDeviation, errReal, errImag, errL2)

	prec.MaxPrec = collect(stats.Max, precReal, precImag, precL2)
	prec.MinPrec = collect(stats.Min, precReal, precImag, precL2)
	prec.AvgPrec = collect(stats.Mean, precReal, precImag, precL2)
	prec.MedPrec = collect(stats.Median, precReal, precImag, precL2)
	prec.StdPrec = collect(stats.StandardDeviation, precReal, precImag, precL2)

	return
}

// ln2 at rootPrecision bits, shared by all log2 conversions.
var ln2 = bignum.Log(bignum.NewFloat(2.0, rootPrecision))

// log2 returns the base two logarithm of x, computed at rootPrecision
// bits so that errors below the float64 resolution still map to a
// faithful precision figure.
func log2(x float64) float64 {
	ln := bignum.Log(bignum.NewFloat(x, rootPrecision))
	ln.Quo(ln, ln2)
	y, _ := ln.Float64()
	return y
}

func toComplexVector(values interface{}) ([]complex128, error) {
	switch values := values.(type) {
	case []complex128:
		return values, nil
	case []float64:
		out := make([]complex128, len(values))
		for i, v := range values {
			out[i] = complex(v, 0)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported values type %T", values)
	}
}

// VerifyTestVectors decodes have if necessary, compares it to want and
// requires an average precision of at least log2MinPrec bits, minus a
// margin growing with the ring degree.
func VerifyTestVectors(params rlwe.Parameters, encoder *Encoder, want, have interface{}, log2MinPrec int, printPrecisionStats bool, t *testing.T) {

	precStats, err := GetPrecisionStats(params, encoder, want, have)
	require.NoError(t, err)

	if printPrecisionStats {
		t.Log(precStats.String())
	}

	minPrec := utils.Max(float64(log2MinPrec), 0)

	minPrec -= float64(params.LogN()) + 2

	require.GreaterOrEqual(t, precStats.AvgPrec.Real, minPrec)
	require.GreaterOrEqual(t, precStats.AvgPrec.Imag, minPrec)
}
