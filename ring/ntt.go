package ring

import (
	"fmt"
)

// NTTTable stores all the constants that are specifically tied to the NTT.
type NTTTable struct {
	NthRoot       uint64   // NthRoot used for the NTT
	PrimitiveRoot uint64   // 2N-th primitive root of unity mod Modulus
	RootsForward  []uint64 // powers of the 2N-th primitive root in Montgomery form (in bit-reversed order)
	RootsBackward []uint64 // powers of the inverse of the 2N-th primitive root in Montgomery form (in bit-reversed order)
	NInv          uint64   // N^-1 mod Modulus in Montgomery form
}

// NTT evaluates p2 = NTT(p1) in Z[X]/(X^N+1).
func (r Ring) NTT(p1, p2 []uint64) {
	nttCoreLazy(p1, p2, r.N, r.Modulus, r.MRedConstant, r.RootsForward)
	BarrettReduceVec(p2, p2, r.Modulus, r.BRedConstant)
}

// NTTLazy evaluates p2 = NTT(p1) with p2 in the range [0, 2*Modulus-1].
func (r Ring) NTTLazy(p1, p2 []uint64) {
	nttCoreLazy(p1, p2, r.N, r.Modulus, r.MRedConstant, r.RootsForward)
}

// INTT evaluates p2 = INTT(p1) in Z[X]/(X^N+1).
func (r Ring) INTT(p1, p2 []uint64) {
	inttCoreLazy(p1, p2, r.N, r.Modulus, r.MRedConstant, r.RootsBackward)
	MulScalarMontgomeryReduceVec(p2, r.NInv, p2, r.Modulus, r.MRedConstant)
}

// butterfly computes X, Y = U + V*Psi, U - V*Psi mod Q.
//
// U is assumed to be in the range [0, 4Q-1] and V*Psi in [0, 2Q-1],
// with the outputs in the range [0, 4Q-1].
func butterfly(U, V, Psi, twoQ, fourQ, Q, MRedConstant uint64) (X, Y uint64) {
	if U >= fourQ {
		U -= fourQ
	}
	V = MRedLazy(V, Psi, Q, MRedConstant)
	X = U + V
	Y = U + twoQ - V
	return
}

// invbutterfly computes X, Y = U + V, (U - V) * Psi mod Q.
//
// U and V are assumed to be in the range [0, 2Q-1], with the outputs
// in the same range.
func invbutterfly(X, Y, Psi, twoQ, fourQ, Q, MRedConstant uint64) (U, V uint64) {
	U = X + Y
	if U >= twoQ {
		U -= twoQ
	}
	V = MRedLazy(X+fourQ-Y, Psi, Q, MRedConstant)
	return
}

// nttCoreLazy computes the forward NTT on the input coefficients with
// output values in the range [0, 2*modulus-1].
func nttCoreLazy(p1, p2 []uint64, N int, Q, MRedConstant uint64, roots []uint64) {

	// Sanity check
	if len(p1) < N || len(p2) < N || len(roots) < N {
		panic(fmt.Sprintf("cannot nttCoreLazy: ensure that len(p1)=%d, len(p2)=%d and len(roots)=%d >= N=%d", len(p1), len(p2), len(roots), N))
	}

	var j1, j2, t int
	var F uint64

	fourQ := 4 * Q
	twoQ := 2 * Q

	t = N >> 1
	F = roots[1]

	for jx, jy := 0, t; jx < t; jx, jy = jx+1, jy+1 {
		p2[jx], p2[jy] = butterfly(p1[jx], p1[jy], F, twoQ, fourQ, Q, MRedConstant)
	}

	for m := 2; m < N; m <<= 1 {

		t >>= 1

		for i := 0; i < m; i++ {

			j1 = (i * t) << 1

			j2 = j1 + t

			F = roots[m+i]

			for jx, jy := j1, j1+t; jx < j2; jx, jy = jx+1, jy+1 {
				p2[jx], p2[jy] = butterfly(p2[jx], p2[jy], F, twoQ, fourQ, Q, MRedConstant)
			}
		}
	}
}

// inttCoreLazy computes the backward NTT on the input coefficients without
// the final multiplication by N^-1, with output values in the range
// [0, 2*modulus-1].
func inttCoreLazy(p1, p2 []uint64, N int, Q, MRedConstant uint64, roots []uint64) {

	// Sanity check
	if len(p1) < N || len(p2) < N || len(roots) < N {
		panic(fmt.Sprintf("cannot inttCoreLazy: ensure that len(p1)=%d, len(p2)=%d and len(roots)=%d >= N=%d", len(p1), len(p2), len(roots), N))
	}

	var h, t int
	var F uint64

	t = 1
	h = N >> 1
	twoQ := Q << 1
	fourQ := Q << 2

	for i, j1, j2 := 0, 0, t; i < h; i, j1, j2 = i+1, j1+2*t, j2+2*t {

		F = roots[h+i]

		for jx, jy := j1, j1+t; jx < j2; jx, jy = jx+1, jy+1 {
			p2[jx], p2[jy] = invbutterfly(p1[jx], p1[jy], F, twoQ, fourQ, Q, MRedConstant)
		}
	}

	t <<= 1

	for m := N >> 1; m > 1; m >>= 1 {

		h = m >> 1

		for i, j1, j2 := 0, 0, t; i < h; i, j1, j2 = i+1, j1+2*t, j2+2*t {

			F = roots[h+i]

			for jx, jy := j1, j1+t; jx < j2; jx, jy = jx+1, jy+1 {
				p2[jx], p2[jy] = invbutterfly(p2[jx], p2[jy], F, twoQ, fourQ, Q, MRedConstant)
			}
		}

		t <<= 1
	}
}
