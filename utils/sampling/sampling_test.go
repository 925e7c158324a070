package sampling

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSource(t *testing.T) {

	seed := [32]byte{0x01, 0x02}

	a := NewSource(seed)
	b := NewSource(seed)

	require.Equal(t, seed, a.Seed())

	for i := 0; i < 128; i++ {
		require.Equal(t, a.Uint64(), b.Uint64())
	}

	for i := 0; i < 128; i++ {
		f := a.Float64(-1, 1)
		require.GreaterOrEqual(t, f, -1.0)
		require.Less(t, f, 1.0)
	}

	// Distinct seeds diverge
	c := NewSource([32]byte{0xff})
	require.NotEqual(t, a.Uint64(), c.Uint64())
}

func TestKeyedPRNG(t *testing.T) {

	key := []byte{0x49, 0x0a, 0x42}

	a, err := NewKeyedPRNG(key)
	require.NoError(t, err)

	b, err := NewKeyedPRNG(key)
	require.NoError(t, err)

	require.Equal(t, key, a.Key())

	bufA := make([]byte, 512)
	bufB := make([]byte, 512)

	_, err = a.Read(bufA)
	require.NoError(t, err)
	_, err = b.Read(bufB)
	require.NoError(t, err)

	require.True(t, bytes.Equal(bufA, bufB))

	// Reset rewinds the stream
	a.Reset()
	_, err = a.Read(bufB)
	require.NoError(t, err)
	require.True(t, bytes.Equal(bufA, bufB))
}
