// Package structs implements helpers to generalize vectors of structs,
// their serialization, and pools of reusable buffers.
package structs

import "sync"

// BufferPool is an interface for pools of reusable buffers.
type BufferPool[T any] interface {
	Get() T
	Put(T)
}

// SyncPool is a wrapper around sync.Pool that avoids type conversions
// after Get().
type SyncPool[T any] struct {
	pool *sync.Pool
}

// NewSyncPool creates a new SyncPool. The function f creates new objects
// when none is available in the pool.
func NewSyncPool[T any](f func() T) *SyncPool[T] {
	return &SyncPool[T]{pool: &sync.Pool{
		New: func() any {
			return f()
		},
	}}
}

// Get returns an object of type T from the pool.
func (spool *SyncPool[T]) Get() T {
	return spool.pool.Get().(T)
}

// Put returns buff to the pool.
func (spool *SyncPool[T]) Put(buff T) {
	spool.pool.Put(buff)
}

// NewSyncPoolUint64 returns a SyncPool of *[]uint64 slices of length size.
func NewSyncPoolUint64(size int) *SyncPool[*[]uint64] {
	return NewSyncPool(func() *[]uint64 {
		buff := make([]uint64, size)
		return &buff
	})
}
