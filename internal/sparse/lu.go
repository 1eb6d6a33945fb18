package sparse

import (
	"math"

	"github.com/hrautila/conic/internal/solverr"
)

// LU is a partially-pivoted dense LU factorization of a densified
// n-by-n general matrix, used by the naive system solver when the
// assembled KKT-like matrix is not symmetric (spec section 4.3: "or LU").
// Doolittle elimination with row pivoting, in the spirit of
// katalvlaran-lvlath's Doolittle LU but with partial pivoting added for
// the indefinite, possibly ill-conditioned systems this solver produces.
type LU struct {
	n    int
	lu   []float64 // row-major, L below diag (unit diag implicit), U on/above diag
	perm []int
	b    []float64 // Solve scratch, reused across calls
}

// FactorLU computes the LU factorization of the n-by-n matrix a given
// row-major. Returns solverr.ErrNumericalFactorization if a pivot is
// smaller in magnitude than PivotTol after row interchange.
func FactorLU(a []float64, n int) (*LU, error) {
	buf := make([]float64, n*n)
	copy(buf, a)
	perm := make([]int, n)
	for i := range perm {
		perm[i] = i
	}
	for k := 0; k < n; k++ {
		p := k
		best := math.Abs(buf[k*n+k])
		for i := k + 1; i < n; i++ {
			if v := math.Abs(buf[i*n+k]); v > best {
				best, p = v, i
			}
		}
		if best < PivotTol {
			return nil, solverr.Wrapf(solverr.ErrNumericalFactorization,
				"lu: pivot %d magnitude %.3e below tolerance", k, best)
		}
		if p != k {
			for j := 0; j < n; j++ {
				buf[k*n+j], buf[p*n+j] = buf[p*n+j], buf[k*n+j]
			}
			perm[k], perm[p] = perm[p], perm[k]
		}
		pivot := buf[k*n+k]
		for i := k + 1; i < n; i++ {
			f := buf[i*n+k] / pivot
			buf[i*n+k] = f
			if f == 0 {
				continue
			}
			for j := k + 1; j < n; j++ {
				buf[i*n+j] -= f * buf[k*n+j]
			}
		}
	}
	return &LU{n: n, lu: buf, perm: perm, b: make([]float64, n)}, nil
}

// Solve overwrites rhs (length n) with the solution of A x = rhs.
func (f *LU) Solve(rhs []float64) {
	n := f.n
	b := f.b
	for i, p := range f.perm {
		b[i] = rhs[p]
	}
	for i := 0; i < n; i++ {
		s := b[i]
		for j := 0; j < i; j++ {
			s -= f.lu[i*n+j] * b[j]
		}
		b[i] = s
	}
	for i := n - 1; i >= 0; i-- {
		s := b[i]
		for j := i + 1; j < n; j++ {
			s -= f.lu[i*n+j] * b[j]
		}
		b[i] = s / f.lu[i*n+i]
	}
	copy(rhs, b)
}
