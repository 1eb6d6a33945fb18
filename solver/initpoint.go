package solver

import (
	"math"

	"github.com/hrautila/conic/internal/linalg"
	"github.com/hrautila/conic/solver/point"
)

// defaultQRTol is 100*eps(float64), spec.md section 4.6's default rank
// tolerance.
const defaultQRTol = 100 * 2.220446049250313e-16

// initResult is the initial point together with the consistency
// residuals spec.md section 4.6's preprocessing mode checks against
// tol_qr.
type initResult struct {
	pt               *point.Point
	residX, residY   float64
}

// computeInitialPoint builds the central anchor point of spec.md
// section 4.6: each cone's set_initial_point concatenated into s, then
// z := -grad F(s), then x and y as minimum-norm solutions of the
// resulting linear systems, then tau = kappa = 1. With
// opts.InitUseIterative set, the minimum-norm solves use the CGNE
// iterative method instead of the pivoted-QR direct solve.
func computeInitialPoint(m *point.Model, opts Options) *initResult {
	pt := point.NewPoint(m.N, m.P, m.Q)

	for i, k := range m.Cones {
		r := m.ConeIdxs[i]
		k.SetInitialPoint(pt.S[r[0]:r[1]])
	}
	for i, k := range m.Cones {
		r := m.ConeIdxs[i]
		k.LoadPoint(pt.S[r[0]:r[1]])
		g := k.Grad()
		for j, gv := range g {
			pt.Z[r[0]+j] = -gv
		}
	}

	// x: minimum-norm solution to A x = b, G x = h - s.
	hs := make([]float64, m.Q)
	for i := range hs {
		hs[i] = m.H[i] - pt.S[i]
	}
	stacked := stackRows(m.A, m.G)
	d := make([]float64, m.P+m.Q)
	copy(d[:m.P], m.B)
	copy(d[m.P:], hs)
	var x []float64
	var residX float64
	if opts.InitUseIterative {
		x, residX = minNormSolveCGNE(stacked, m.P+m.Q, m.N, d)
	} else {
		x, residX = minNormSolve(stacked, m.P+m.Q, m.N, d)
	}
	copy(pt.X, x)

	// y: minimum-norm solution to A^T y = -c - G^T z.
	gtz := make([]float64, m.N)
	point.MatTVec(gtz, m.G, pt.Z)
	rhsY := make([]float64, m.N)
	for i := range rhsY {
		rhsY[i] = -m.C[i] - gtz[i]
	}
	at := transposeColMajor(m.A.ToDense(), m.P, m.N)
	var y []float64
	var residY float64
	if opts.InitUseIterative {
		y, residY = minNormSolveCGNE(at, m.N, m.P, rhsY)
	} else {
		y, residY = minNormSolve(at, m.N, m.P, rhsY)
	}
	copy(pt.Y, y)

	pt.Tau, pt.Kappa = 1, 1
	return &initResult{pt: pt, residX: residX, residY: residY}
}

// minNormSolve returns the minimum-norm solution x (length cols) of the
// rows-by-cols column-major system M x = d via the pivoted QR of M^T,
// plus the forward residual ||M x - d|| recomputed directly from M
// (independent of the QR's own internal numerics, per spec.md section
// 4.6's consistency check).
func minNormSolve(flat []float64, rows, cols int, d []float64) (x []float64, residual float64) {
	mt := transposeColMajor(flat, rows, cols)
	qr := linalg.NewPivotedQR(mt, cols, rows, 0)
	u := make([]float64, rows)
	for j := range u {
		u[j] = d[qr.Perm[j]]
	}
	qr.SolveRT(u)
	buf := make([]float64, cols)
	copy(buf, u[:qr.Rank])
	qr.ApplyQ(buf)

	out := make([]float64, rows)
	for j := 0; j < cols; j++ {
		xj := buf[j]
		if xj == 0 {
			continue
		}
		for i := 0; i < rows; i++ {
			out[i] += flat[j*rows+i] * xj
		}
	}
	s := 0.0
	for i := range out {
		diff := out[i] - d[i]
		s += diff * diff
	}
	return buf, math.Sqrt(s)
}

// minNormSolveCGNE is the init_use_iterative alternative to the QR
// direct solve: CGNE (conjugate gradient on the normal equations
// M M^T u = d, x = M^T u), the standard iterative method for the
// minimum-norm solution of an underdetermined system.
func minNormSolveCGNE(flat []float64, rows, cols int, d []float64) (x []float64, residual float64) {
	matvec := func(v []float64) []float64 {
		out := make([]float64, rows)
		for j := 0; j < cols; j++ {
			vj := v[j]
			if vj == 0 {
				continue
			}
			for i := 0; i < rows; i++ {
				out[i] += flat[j*rows+i] * vj
			}
		}
		return out
	}
	matTvec := func(v []float64) []float64 {
		out := make([]float64, cols)
		for j := 0; j < cols; j++ {
			s := 0.0
			for i := 0; i < rows; i++ {
				s += flat[j*rows+i] * v[i]
			}
			out[j] = s
		}
		return out
	}

	u := make([]float64, rows)
	r := append([]float64(nil), d...) // r = d - M M^T u, u=0 initially
	p := append([]float64(nil), r...)
	rsOld := dot(r, r)

	maxIter := 2 * (rows + cols)
	for iter := 0; iter < maxIter && rsOld > 1e-28; iter++ {
		ap := matvec(matTvec(p))
		alpha := rsOld / dot(p, ap)
		for i := range u {
			u[i] += alpha * p[i]
		}
		for i := range r {
			r[i] -= alpha * ap[i]
		}
		rsNew := dot(r, r)
		beta := rsNew / rsOld
		for i := range p {
			p[i] = r[i] + beta*p[i]
		}
		rsOld = rsNew
	}

	x = matTvec(u)
	out := matvec(x)
	s := 0.0
	for i := range out {
		diff := out[i] - d[i]
		s += diff * diff
	}
	return x, math.Sqrt(s)
}

func dot(a, b []float64) float64 {
	s := 0.0
	for i := range a {
		s += a[i] * b[i]
	}
	return s
}
