package rlwe

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/goseal/goseal/utils/sampling"
	"github.com/stretchr/testify/require"
)

func testString(opname string, p Parameters) string {
	return fmt.Sprintf("%s/LogN=%d/Levels=%d", opname, p.LogN(), p.MaxLevel()+1)
}

func testParameters(t *testing.T) Parameters {
	params, err := NewParametersFromLiteral(ParametersLiteral{
		LogN: 6,
		LogQ: []int{40, 40, 40},
	})
	require.NoError(t, err)
	return params
}

func TestCoefficientBuffer(t *testing.T) {

	t.Run("Resize/Idempotence", func(t *testing.T) {

		b := NewCoefficientBuffer(nil)
		require.NoError(t, b.Resize(16))

		data := b.Data()
		for i := range data {
			data[i] = uint64(i + 1)
		}

		require.NoError(t, b.Resize(16))
		require.Equal(t, 16, b.Size())
		require.Equal(t, data, b.Data())
	})

	t.Run("Resize/GrowShrinkPreservesPrefix", func(t *testing.T) {

		b := NewCoefficientBuffer(nil)
		require.NoError(t, b.Resize(8))

		data := b.Data()
		for i := range data {
			data[i] = uint64(i + 1)
		}

		require.NoError(t, b.Resize(32))

		// Newly exposed words are zero
		for _, c := range b.Data()[8:] {
			require.Equal(t, uint64(0), c)
		}

		require.NoError(t, b.Resize(8))

		for i, c := range b.Data() {
			require.Equal(t, uint64(i+1), c)
		}
	})

	t.Run("Reserve/CapacityMonotonicity", func(t *testing.T) {

		b := NewCoefficientBuffer(nil)

		require.NoError(t, b.Reserve(48))
		require.Equal(t, 48, b.Capacity())
		require.LessOrEqual(t, b.Size(), 48)

		require.NoError(t, b.Resize(20))
		require.Equal(t, 48, b.Capacity())
		require.Equal(t, 20, b.Size())

		require.NoError(t, b.Resize(48))
		require.Equal(t, 48, b.Capacity())
	})

	t.Run("Reserve/ShrinkTruncates", func(t *testing.T) {

		b := NewCoefficientBuffer(nil)
		require.NoError(t, b.Resize(16))

		data := b.Data()
		for i := range data {
			data[i] = uint64(i + 1)
		}

		require.NoError(t, b.Reserve(4))
		require.Equal(t, 4, b.Capacity())
		require.Equal(t, 4, b.Size())
		require.Equal(t, []uint64{1, 2, 3, 4}, b.Data())
	})

	t.Run("Clone/CapacityCollapses", func(t *testing.T) {

		b := NewCoefficientBuffer(nil)
		require.NoError(t, b.Reserve(64))
		require.NoError(t, b.Resize(10))

		clone := b.Clone()
		require.Equal(t, 10, clone.Size())
		require.Equal(t, 10, clone.Capacity())
		require.True(t, b.Equal(clone))
	})

	t.Run("Release", func(t *testing.T) {

		b := NewCoefficientBuffer(nil)
		require.NoError(t, b.Resize(16))
		b.Release()
		require.Equal(t, 0, b.Size())
		require.Equal(t, 0, b.Capacity())

		// Release on an empty buffer is a no-op
		b.Release()
	})

	t.Run("At/OutOfRange", func(t *testing.T) {

		b := NewCoefficientBuffer(nil)
		require.NoError(t, b.Resize(4))

		_, err := b.At(4)
		require.Error(t, err)
		_, err = b.At(-1)
		require.Error(t, err)

		v, err := b.At(3)
		require.NoError(t, err)
		require.Equal(t, uint64(0), v)
	})

	t.Run("InvalidArguments", func(t *testing.T) {
		b := NewCoefficientBuffer(nil)
		require.Error(t, b.Resize(-1))
		require.Error(t, b.Reserve(-1))
	})

	t.Run("Serialization", func(t *testing.T) {

		b := NewCoefficientBuffer(nil)
		require.NoError(t, b.Resize(16))
		data := b.Data()
		for i := range data {
			data[i] = uint64(i) * 0x9e3779b97f4a7c15
		}

		p, err := b.MarshalBinary()
		require.NoError(t, err)
		require.Equal(t, b.BinarySize(), len(p))

		other := NewCoefficientBuffer(nil)
		require.NoError(t, other.UnmarshalBinary(p))
		require.True(t, b.Equal(other))
	})
}

func TestParameters(t *testing.T) {

	params := testParameters(t)

	t.Run(testString("Chain/IDUniqueness", params), func(t *testing.T) {

		seen := map[ParametersID]bool{}
		for level := 0; level <= params.MaxLevel(); level++ {
			id, err := params.IDAtLevel(level)
			require.NoError(t, err)
			require.False(t, id.IsZero())
			require.False(t, seen[id])
			seen[id] = true
		}
	})

	t.Run(testString("Chain/LevelOf", params), func(t *testing.T) {

		for level := 0; level <= params.MaxLevel(); level++ {
			id, err := params.IDAtLevel(level)
			require.NoError(t, err)

			got, err := params.LevelOf(id)
			require.NoError(t, err)
			require.Equal(t, level, got)
		}

		_, err := params.LevelOf(ParametersID{1, 2, 3, 4})
		require.Error(t, err)

		_, err = params.LevelOf(NoParametersID)
		require.Error(t, err)
	})

	t.Run(testString("Chain/TotalBitCount", params), func(t *testing.T) {

		prev := 0
		for level := 0; level <= params.MaxLevel(); level++ {
			bits, err := params.TotalBitCountAtLevel(level)
			require.NoError(t, err)
			require.Greater(t, bits, prev)
			prev = bits
		}
	})

	t.Run(testString("Literal/JSON", params), func(t *testing.T) {

		pl := params.ParametersLiteral()
		other, err := NewParametersFromLiteral(pl)
		require.NoError(t, err)
		require.True(t, params.Equal(&other))
	})

	t.Run(testString("Literal/Binary", params), func(t *testing.T) {

		pl := params.ParametersLiteral()

		p, err := pl.MarshalBinary()
		require.NoError(t, err)

		var other ParametersLiteral
		require.NoError(t, other.UnmarshalBinary(p))
		require.Equal(t, pl.LogN, other.LogN)
		require.True(t, pl.Q.Equal(other.Q))
	})

	t.Run("Literal/Invalid", func(t *testing.T) {

		_, err := NewParametersFromLiteral(ParametersLiteral{LogN: 0, LogQ: []int{40}})
		require.Error(t, err)

		_, err = NewParametersFromLiteral(ParametersLiteral{LogN: 6})
		require.Error(t, err)

		_, err = NewParametersFromLiteral(ParametersLiteral{LogN: 6, Q: []uint64{97}, LogQ: []int{40}})
		require.Error(t, err)
	})
}

func TestPlaintext(t *testing.T) {

	params := testParameters(t)
	source := sampling.NewSource([32]byte{})

	t.Run(testString("Plaintext/ResizeRejectedInEvaluationForm", params), func(t *testing.T) {

		pt := NewPlaintext(nil)
		require.NoError(t, pt.Randomize(params, params.MaxLevel(), source))
		require.True(t, pt.IsNTT)

		require.Error(t, pt.Resize(params.N()))
		require.Error(t, pt.Reserve(params.N()))

		pt.Release()
		require.NoError(t, pt.Resize(params.N()))
	})

	t.Run(testString("Plaintext/EqualUpToTrailingZeros", params), func(t *testing.T) {

		a := NewPlaintext(nil)
		b := NewPlaintext(nil)

		require.NoError(t, a.Resize(8))
		require.NoError(t, b.Resize(16))

		copy(a.Buffer.Data(), []uint64{1, 2, 3})
		copy(b.Buffer.Data(), []uint64{1, 2, 3})

		require.True(t, a.Equal(b))

		b.Buffer.Data()[12] = 1
		require.False(t, a.Equal(b))
	})

	t.Run(testString("Plaintext/EqualScaleCloseness", params), func(t *testing.T) {

		a := NewPlaintext(nil)
		b := NewPlaintext(nil)

		a.Scale = 1 << 40
		b.Scale = (1 << 40) * (1 + 1e-13)
		require.True(t, a.Equal(b))

		b.Scale = (1 << 40) * 1.5
		require.False(t, a.Equal(b))
	})

	t.Run(testString("Plaintext/Serialization", params), func(t *testing.T) {

		pt := NewPlaintext(nil)
		require.NoError(t, pt.Randomize(params, params.MaxLevel(), source))

		p, err := pt.MarshalBinary()
		require.NoError(t, err)
		require.Equal(t, pt.BinarySize(), len(p))

		other := NewPlaintext(nil)
		require.NoError(t, other.UnmarshalBinary(p))
		require.True(t, pt.Equal(other))
		require.True(t, pt.MetaData.Equal(other.MetaData))
	})
}

func TestCiphertext(t *testing.T) {

	params := testParameters(t)
	source := sampling.NewSource([32]byte{})

	level := params.MaxLevel()

	t.Run(testString("Ciphertext/New", params), func(t *testing.T) {

		ct, err := NewCiphertext(params, 2, level, nil)
		require.NoError(t, err)
		require.Equal(t, 2, ct.Size())
		require.Equal(t, params.N(), ct.PolyDegree())
		require.Equal(t, level+1, ct.PrimeCount())
		require.Equal(t, 2*params.N()*(level+1), ct.Buffer.Size())

		_, err = NewCiphertext(params, 1, level, nil)
		require.Error(t, err)

		_, err = NewCiphertext(params, 2, level+1, nil)
		require.Error(t, err)
	})

	t.Run(testString("Ciphertext/Layout", params), func(t *testing.T) {

		ct, err := NewCiphertext(params, 3, level, nil)
		require.NoError(t, err)

		N := params.N()

		// Mark a single word through the typed view and find it at the
		// expected flat offset
		ct.Poly(2, 1)[5] = 0xdead
		require.Equal(t, uint64(0xdead), ct.Buffer.Data()[(2*(level+1)+1)*N+5])

		require.Panics(t, func() { ct.Poly(3, 0) })
		require.Panics(t, func() { ct.Poly(0, level+2) })
	})

	t.Run(testString("Ciphertext/Transparency", params), func(t *testing.T) {

		ct, err := NewCiphertext(params, 2, level, nil)
		require.NoError(t, err)

		// All-zero components beyond the first
		require.True(t, ct.IsTransparent())

		require.NoError(t, ct.Randomize(params, source))
		require.False(t, ct.IsTransparent())

		// Synthetically zero the second component
		second := ct.Component(1)
		for i := range second {
			second[i] = 0
		}
		require.True(t, ct.IsTransparent())
	})

	t.Run(testString("Ciphertext/ResizeAcrossLevels", params), func(t *testing.T) {

		ct, err := NewCiphertext(params, 2, level, nil)
		require.NoError(t, err)
		require.NoError(t, ct.Randomize(params, source))

		id, err := params.IDAtLevel(0)
		require.NoError(t, err)

		require.NoError(t, ct.Resize(params, 2, id))
		require.Equal(t, 1, ct.PrimeCount())
		require.Equal(t, id, ct.MetaData.ParametersID)
		require.Equal(t, 2*params.N(), ct.Buffer.Size())

		require.NoError(t, ct.ResizeSize(3))
		require.Equal(t, 3, ct.Size())

		// New component is zero
		for _, c := range ct.Component(2) {
			require.Equal(t, uint64(0), c)
		}

		require.Error(t, ct.ResizeSize(1))
	})

	t.Run(testString("Ciphertext/OverflowRejected", params), func(t *testing.T) {

		ct, err := NewCiphertext(params, 2, level, nil)
		require.NoError(t, err)
		require.NoError(t, ct.Randomize(params, source))

		id, err := params.IDAtLevel(level)
		require.NoError(t, err)

		require.Error(t, ct.Resize(params, 1<<60, id))
		require.Error(t, ct.Reserve(params, 1<<60, id))

		// A size whose word count wraps around int must leave the
		// cached dimensions and the buffer untouched
		words := ct.Buffer.Size()
		require.Error(t, ct.ResizeSize(1<<56))
		require.Equal(t, 2, ct.Size())
		require.Equal(t, words, ct.Buffer.Size())
		require.False(t, ct.IsTransparent())
	})

	t.Run(testString("Ciphertext/Serialization", params), func(t *testing.T) {

		ct, err := NewCiphertext(params, 2, level, nil)
		require.NoError(t, err)
		require.NoError(t, ct.Randomize(params, source))
		ct.Scale = 1 << 40
		ct.IsNTT = true

		buf := new(bytes.Buffer)
		_, err = ct.WriteTo(buf)
		require.NoError(t, err)

		other := new(Ciphertext)
		_, err = other.ReadFrom(buf)
		require.NoError(t, err)
		require.True(t, ct.Equal(other))
	})
}
