// Package sampling implements deterministic and cryptographically secure
// sources of random bytes.
package sampling

import (
	"crypto/rand"
	"encoding/binary"
	"io"
	"sync"

	"github.com/zeebo/blake3"
	"golang.org/x/crypto/blake2b"
)

// PRNG is an interface for the generation of random bytes.
type PRNG interface {
	io.Reader
}

// Source is a deterministic, seedable source of pseudo-random values
// backed by a blake3 XOF. A Source with the same seed always produces
// the same stream. It is not safe for concurrent use.
type Source struct {
	seed [32]byte
	xof  *blake3.Digest
}

// NewSource instantiates a new Source from a 32-byte seed.
func NewSource(seed [32]byte) *Source {
	h := blake3.New()
	if _, err := h.Write(seed[:]); err != nil {
		// blake3.Hasher.Write never fails
		panic(err)
	}
	return &Source{seed: seed, xof: h.Digest()}
}

// NewSeed returns a fresh 32-byte seed sampled from crypto/rand.
func NewSeed() (seed [32]byte) {
	if _, err := rand.Read(seed[:]); err != nil {
		panic(err)
	}
	return
}

// Seed returns the seed used to instantiate the source.
func (s *Source) Seed() [32]byte {
	return s.seed
}

// Read fills p with bytes from the XOF stream.
func (s *Source) Read(p []byte) (n int, err error) {
	return s.xof.Read(p)
}

// Uint64 returns a uniform uint64.
func (s *Source) Uint64() uint64 {
	var b [8]byte
	if _, err := s.xof.Read(b[:]); err != nil {
		panic(err)
	}
	return binary.LittleEndian.Uint64(b[:])
}

// Float64 returns a uniform float64 in [min, max).
func (s *Source) Float64(min, max float64) float64 {
	f := float64(s.Uint64()>>11) / (1 << 53)
	return min + f*(max-min)
}

// Complex128 returns a complex128 with uniform real and imaginary parts
// in [min, max).
func (s *Source) Complex128(min, max float64) complex128 {
	return complex(s.Float64(min, max), s.Float64(min, max))
}

// KeyedPRNG is a deterministic PRNG expanding a key through the blake2b
// XOF. Two KeyedPRNG instantiated with the same key produce the same
// stream of bytes. A KeyedPRNG keyed with nil is insecure.
type KeyedPRNG struct {
	mutex sync.Mutex
	key   []byte
	xof   blake2b.XOF
}

// NewKeyedPRNG creates a new KeyedPRNG from the provided key.
// key=nil is treated as key=[]byte{}.
func NewKeyedPRNG(key []byte) (*KeyedPRNG, error) {
	var err error
	prng := &KeyedPRNG{key: key}
	prng.xof, err = blake2b.NewXOF(blake2b.OutputLengthUnknown, key)
	return prng, err
}

// Key returns a copy of the key used to seed the PRNG.
func (prng *KeyedPRNG) Key() (key []byte) {
	key = make([]byte, len(prng.key))
	copy(key, prng.key)
	return
}

// Read fills p with bytes from the XOF stream.
func (prng *KeyedPRNG) Read(p []byte) (n int, err error) {
	prng.mutex.Lock()
	defer prng.mutex.Unlock()
	return prng.xof.Read(p)
}

// Reset resets the PRNG to its initial state.
func (prng *KeyedPRNG) Reset() {
	prng.mutex.Lock()
	defer prng.mutex.Unlock()
	prng.xof.Reset()
}
