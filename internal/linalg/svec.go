// Package linalg centralizes the scaled-vectorization convention used
// throughout the cone library (spec section 4.1) so no other package
// rescales an svec vector on its own. A symmetric d-by-d matrix is
// stored column by column of the lower triangle, off-diagonal entries
// carrying a sqrt(2) factor, so that the Euclidean inner product of two
// svec vectors equals the trace inner product of the matrices they
// represent.
package linalg

import "math"

var sqrt2 = math.Sqrt2

// SvecDim returns the length of the svec vector for a d-by-d symmetric
// matrix: d*(d+1)/2.
func SvecDim(d int) int { return d * (d + 1) / 2 }

// MatDim returns the side length d of the symmetric matrix whose svec
// vector has length n, or -1 if n is not a triangular number.
func MatDim(n int) int {
	d := (int(math.Sqrt(float64(8*n+1))) - 1) / 2
	if SvecDim(d) != n {
		return -1
	}
	return d
}

// Svec writes the scaled vectorization of the d-by-d symmetric matrix
// stored column-major in `full`, out has length SvecDim(d).
func Svec(out, full []float64, d int) {
	k := 0
	for j := 0; j < d; j++ {
		for i := j; i < d; i++ {
			if i == j {
				out[k] = full[j*d+i]
			} else {
				out[k] = full[j*d+i] * sqrt2
			}
			k++
		}
	}
}

// Smat is the inverse of Svec: expands the svec vector v (length
// SvecDim(d)) into the full d-by-d symmetric matrix stored column-major
// in out (length d*d).
func Smat(out, v []float64, d int) {
	k := 0
	for j := 0; j < d; j++ {
		for i := j; i < d; i++ {
			val := v[k]
			if i != j {
				val /= sqrt2
			}
			out[j*d+i] = val
			out[i*d+j] = val
			k++
		}
	}
}

// RescaleOffDiag multiplies every off-diagonal entry of the svec vector
// v (length SvecDim(d)) in place by sqrt(2). Used when a caller holds a
// "plain" packed-lower-triangle vector (no scaling) and needs an svec
// vector, or vice versa with RescaleOffDiagInv.
func RescaleOffDiag(v []float64, d int) {
	k := 0
	for j := 0; j < d; j++ {
		for i := j; i < d; i++ {
			if i != j {
				v[k] *= sqrt2
			}
			k++
		}
	}
}

// RescaleOffDiagInv is the inverse of RescaleOffDiag: divides every
// off-diagonal entry by sqrt(2).
func RescaleOffDiagInv(v []float64, d int) {
	k := 0
	for j := 0; j < d; j++ {
		for i := j; i < d; i++ {
			if i != j {
				v[k] /= sqrt2
			}
			k++
		}
	}
}

// SvecDot returns the inner product of two svec vectors, which equals
// trace(A*B) for the matrices they represent.
func SvecDot(a, b []float64) float64 {
	s := 0.0
	for i := range a {
		s += a[i] * b[i]
	}
	return s
}
