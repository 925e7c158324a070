package rlwe

import (
	"fmt"
	"math/bits"
	"sync"

	"github.com/goseal/goseal/utils/structs"
)

// Arena is a pool of reusable coefficient blocks, bucketed by the
// smallest power of two greater than or equal to the requested word
// count. An Arena must outlive every [CoefficientBuffer] drawing
// from it. The zero value is not usable, see [NewArena].
type Arena struct {
	mu    sync.Mutex
	pools map[int]structs.BufferPool[*[]uint64]
}

// NewArena instantiates a new empty Arena.
func NewArena() *Arena {
	return &Arena{pools: map[int]structs.BufferPool[*[]uint64]{}}
}

// defaultArena backs buffers instantiated without an explicit arena.
var defaultArena = NewArena()

// DefaultArena returns the package level arena used when a nil *Arena
// is passed to a constructor.
func DefaultArena() *Arena {
	return defaultArena
}

func bucketSize(size int) int {
	if size <= 1 {
		return 1
	}
	return 1 << bits.Len64(uint64(size-1))
}

// Alloc returns a block of at least size words. The content of the
// block is arbitrary.
func (a *Arena) Alloc(size int) *[]uint64 {
	bucket := bucketSize(size)
	a.mu.Lock()
	pool, ok := a.pools[bucket]
	if !ok {
		pool = structs.NewSyncPoolUint64(bucket)
		a.pools[bucket] = pool
	}
	a.mu.Unlock()
	return pool.Get()
}

// Free returns a block previously obtained with Alloc to the arena.
func (a *Arena) Free(block *[]uint64) {
	if block == nil {
		return
	}
	bucket := len(*block)
	// Sanity check
	if bucket != bucketSize(bucket) {
		panic(fmt.Errorf("cannot Free: foreign block of %d words", bucket))
	}
	a.mu.Lock()
	pool, ok := a.pools[bucket]
	if !ok {
		pool = structs.NewSyncPoolUint64(bucket)
		a.pools[bucket] = pool
	}
	a.mu.Unlock()
	pool.Put(block)
}
