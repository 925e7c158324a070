package ring

import (
	"math/big"
	"math/bits"
)

// IsPrime applies the Baillie-PSW test, which is 100% accurate for
// numbers below 2^64.
func IsPrime(x uint64) bool {
	return new(big.Int).SetUint64(x).ProbablyPrime(0)
}

// GenerateNTTPrimes generates n distinct primes p of logQ bits with
// p = 1 mod NthRoot, alternating between upward and downward from 2^logQ
// to minimize the deviation from the base power of two.
func GenerateNTTPrimes(logQ, NthRoot, n int) (primes []uint64) {

	if logQ < 2 || logQ > 61 {
		panic("cannot GenerateNTTPrimes: logQ must be between 2 and 61")
	}

	var nextPrime, previousPrime uint64
	var checkForNextPrime, checkForPreviousPrime bool

	primes = []uint64{}

	Qpow2 := uint64(1 << logQ)

	nextPrime = Qpow2 + 1
	previousPrime = Qpow2 + 1

	checkForNextPrime = true
	checkForPreviousPrime = true

	for {

		if !(checkForNextPrime || checkForPreviousPrime) {
			panic("cannot GenerateNTTPrimes: cannot generate enough primes for the given parameters")
		}

		if checkForNextPrime {

			if nextPrime > 0xffffffffffffffff-uint64(NthRoot) || bits.Len64(nextPrime+uint64(NthRoot)) > logQ+1 {

				checkForNextPrime = false

			} else {

				nextPrime += uint64(NthRoot)

				if IsPrime(nextPrime) {

					primes = append(primes, nextPrime)

					if len(primes) == n {
						return
					}
				}
			}
		}

		if checkForPreviousPrime {

			if previousPrime < uint64(NthRoot) || bits.Len64(previousPrime-uint64(NthRoot)) < logQ {

				checkForPreviousPrime = false

			} else {

				previousPrime -= uint64(NthRoot)

				if IsPrime(previousPrime) {

					primes = append(primes, previousPrime)

					if len(primes) == n {
						return
					}
				}
			}
		}
	}
}
