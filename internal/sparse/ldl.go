package sparse

import (
	"math"

	"github.com/hrautila/conic/internal/solverr"
)

// LDL is a symmetric indefinite factorization A = L D L^T of a densified
// n-by-n symmetric matrix, with 1x1 diagonal pivoting and a pivot floor.
// Re-analysis means Factor rebuilds L and D from scratch each call; the
// struct only exists so Solve can be invoked for several right-hand
// sides against the same factorization, matching the
// update_lhs/solve_system split spec.md section 4.3 requires.
type LDL struct {
	n   int
	l   []float64 // column-major, unit lower triangular, diagonal not stored
	d   []float64
	piv []int // row permutation applied before factoring (diagonal pivoting)
}

// PivotTol is the minimum acceptable |pivot| before a factorization is
// declared singular.
const PivotTol = 1e-13

// Factor computes the LDL^T factorization of the symmetric matrix given
// by its lower triangle in row-major order (a[i*n+j] for j<=i, upper
// half ignored), with partial diagonal pivoting: at each step the
// largest-magnitude remaining diagonal entry is chosen as pivot. Returns
// solverr.ErrNumericalFactorization if any pivot falls below PivotTol.
func Factor(a []float64, n int) (*LDL, error) {
	// work on a mutable dense full copy (symmetric, so fill both halves)
	full := make([]float64, n*n)
	for i := 0; i < n; i++ {
		for j := 0; j <= i; j++ {
			v := a[i*n+j]
			full[i*n+j] = v
			full[j*n+i] = v
		}
	}
	piv := make([]int, n)
	for i := range piv {
		piv[i] = i
	}
	d := make([]float64, n)
	l := make([]float64, n*n)
	for k := 0; k < n; k++ {
		l[k*n+k] = 1
	}

	for k := 0; k < n; k++ {
		// pick largest remaining diagonal magnitude for stability
		best := k
		for i := k + 1; i < n; i++ {
			if math.Abs(full[i*n+i]) > math.Abs(full[best*n+best]) {
				best = i
			}
		}
		if best != k {
			swapSym(full, n, k, best)
			piv[k], piv[best] = piv[best], piv[k]
			for j := 0; j < k; j++ {
				l[j*n+k], l[j*n+best] = l[j*n+best], l[j*n+k]
			}
		}
		dk := full[k*n+k]
		if math.Abs(dk) < PivotTol {
			return nil, solverr.Wrapf(solverr.ErrNumericalFactorization,
				"ldl: pivot %d magnitude %.3e below tolerance", k, math.Abs(dk))
		}
		d[k] = dk
		for i := k + 1; i < n; i++ {
			l[k*n+i] = full[i*n+k] / dk
		}
		for i := k + 1; i < n; i++ {
			lik := l[k*n+i]
			if lik == 0 {
				continue
			}
			for j := k + 1; j <= i; j++ {
				full[i*n+j] -= lik * full[j*n+k]
				full[j*n+i] = full[i*n+j]
			}
		}
	}
	return &LDL{n: n, l: l, d: d, piv: piv}, nil
}

func swapSym(full []float64, n, a, b int) {
	for j := 0; j < n; j++ {
		full[a*n+j], full[b*n+j] = full[b*n+j], full[a*n+j]
	}
	for i := 0; i < n; i++ {
		full[i*n+a], full[i*n+b] = full[i*n+b], full[i*n+a]
	}
}

// Solve overwrites rhs (length n) with the solution of A x = rhs using
// the cached factorization. May be called repeatedly with different
// right-hand sides after a single Factor call.
func (f *LDL) Solve(rhs []float64) {
	n := f.n
	b := make([]float64, n)
	for i, p := range f.piv {
		b[i] = rhs[p]
	}
	// forward solve L y = b
	for i := 0; i < n; i++ {
		s := b[i]
		for j := 0; j < i; j++ {
			s -= f.l[j*n+i] * b[j]
		}
		b[i] = s
	}
	// diagonal solve
	for i := 0; i < n; i++ {
		b[i] /= f.d[i]
	}
	// backward solve L^T z = y
	for i := n - 1; i >= 0; i-- {
		s := b[i]
		for j := i + 1; j < n; j++ {
			s -= f.l[i*n+j] * b[j]
		}
		b[i] = s
	}
	for i, p := range f.piv {
		rhs[p] = b[i]
	}
}
