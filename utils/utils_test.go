package utils

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBitReverse64(t *testing.T) {
	require.Equal(t, uint64(0), BitReverse64(0, 4))
	require.Equal(t, uint64(8), BitReverse64(1, 4))
	require.Equal(t, uint64(12), BitReverse64(3, 4))
	for i := uint64(0); i < 16; i++ {
		require.Equal(t, i, BitReverse64(BitReverse64(i, 4), 4))
	}
}

func TestMinMax(t *testing.T) {
	require.Equal(t, 1, Min(1, 2))
	require.Equal(t, 2, Max(1, 2))
	require.Equal(t, -1.5, Min(-1.5, 0.0))
	require.Equal(t, 0.0, Max(-1.5, 0.0))
}

func TestEqualSlice(t *testing.T) {
	require.True(t, EqualSlice([]uint64{1, 2, 3}, []uint64{1, 2, 3}))
	require.False(t, EqualSlice([]uint64{1, 2, 3}, []uint64{1, 2}))
	require.False(t, EqualSlice([]uint64{1, 2, 3}, []uint64{1, 2, 4}))
	require.True(t, EqualSlice([]uint64{}, nil))
}

func TestAllDistinct(t *testing.T) {
	require.True(t, AllDistinct([]uint64{}))
	require.True(t, AllDistinct([]uint64{1, 2, 3}))
	require.False(t, AllDistinct([]uint64{1, 2, 1}))
}
