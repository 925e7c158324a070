package rlwe

import (
	"encoding/binary"
	"fmt"

	"golang.org/x/crypto/blake2b"
)

// ParametersID is an opaque fingerprint uniquely identifying one level
// of the modulus switching chain, i.e. a specific set of RNS primes
// together with the polynomial degree.
//
// The all-zero value is a sentinel meaning "not associated with any
// chain level"; plaintexts that are not in evaluation form carry it.
type ParametersID [4]uint64

// NoParametersID is the all-zero sentinel.
var NoParametersID = ParametersID{}

// IsZero returns true if the receiver is the all-zero sentinel.
func (id ParametersID) IsZero() bool {
	return id == NoParametersID
}

// String returns the hexadecimal representation of the identifier.
func (id ParametersID) String() string {
	return fmt.Sprintf("%016x%016x%016x%016x", id[0], id[1], id[2], id[3])
}

// newParametersID derives the identifier of the chain level defined by
// the given ring degree logarithm and prime set, as the first 256 bits
// of the blake2b-512 digest of their canonical encoding.
func newParametersID(logN int, moduli []uint64) (id ParametersID) {

	data := make([]byte, 8*(len(moduli)+1))
	binary.LittleEndian.PutUint64(data, uint64(logN))
	for i, q := range moduli {
		binary.LittleEndian.PutUint64(data[8*(i+1):], q)
	}

	digest := blake2b.Sum512(data)

	for i := range id {
		id[i] = binary.LittleEndian.Uint64(digest[8*i:])
	}

	// The all-zero identifier is reserved as a sentinel
	if id.IsZero() {
		id[0] = 1
	}

	return
}
