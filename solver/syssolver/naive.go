package syssolver

import (
	"github.com/hrautila/conic/internal/sparse"
	"github.com/hrautila/conic/solver/point"
)

// NaiveSolver assembles the dim-by-dim dense matrix over (x, y, z, tau)
// (dim = n+p+q+1) and factors it with a general partially-pivoted LU,
// the "or LU" alternative spec.md section 4.3 allows when the cone
// Hessian block is not assembled symmetrically.
type NaiveSolver struct {
	n, p, q, dim int
	lu           *sparse.LU
	invHess      [][]float64

	// scratch reused across UpdateLHS/SolveSystem calls so the assembly
	// and SolveSystem's own buffers are not reallocated per iteration
	// (spec section 4.5); UpdateLHS still allocates the inverse-Hessian
	// blocks and the LU factors each call.
	full      []float64 // dim*dim, row-major LHS assembly buffer
	b         []float64 // dim, RHS/solution buffer
	corrected []float64 // largest cone dimension, per-cone scratch
	diff      []float64 // largest cone dimension, per-cone scratch
}

// NewNaiveSolver constructs a solver sized to m.
func NewNaiveSolver(m *point.Model) *NaiveSolver {
	dim := m.N + m.P + m.Q + 1
	maxConeDim := 0
	for _, k := range m.Cones {
		if d := k.Dimension(); d > maxConeDim {
			maxConeDim = d
		}
	}
	return &NaiveSolver{
		n: m.N, p: m.P, q: m.Q, dim: dim,
		full:      make([]float64, dim*dim),
		b:         make([]float64, dim),
		corrected: make([]float64, maxConeDim),
		diff:      make([]float64, maxConeDim),
	}
}

func (s *NaiveSolver) UpdateLHS(m *point.Model, pt *point.Point, mu float64) error {
	n, p, q, dim := s.n, s.p, s.q, s.dim
	full := s.full
	for i := range full {
		full[i] = 0
	}

	at := func(i, j int, v float64) { full[i*dim+j] += v }

	for i := 0; i < n; i++ {
		for j := 0; j < p; j++ {
			at(i, n+j, m.A.At(j, i)) // A^T block
			at(n+j, i, -m.A.At(j, i))
		}
		for j := 0; j < q; j++ {
			at(i, n+p+j, m.G.At(j, i)) // G^T block
			at(n+p+j, i, -m.G.At(j, i))
		}
		at(i, dim-1, m.C[i])
		at(dim-1, i, -m.C[i])
	}
	for j := 0; j < p; j++ {
		at(n+j, dim-1, m.B[j])
		at(dim-1, n+j, -m.B[j])
	}
	for j := 0; j < q; j++ {
		at(n+p+j, dim-1, m.H[j])
		at(dim-1, n+p+j, -m.H[j])
	}

	invHess, err := invHessBlocks(m)
	if err != nil {
		return err
	}
	s.invHess = invHess
	for ci, k := range m.Cones {
		r := m.ConeIdxs[ci]
		d := k.Dimension()
		blk := s.invHess[ci]
		for c := 0; c < d; c++ {
			for row := 0; row < d; row++ {
				at(n+p+r[0]+row, n+p+r[0]+c, -blk[c*d+row])
			}
		}
	}

	at(dim-1, dim-1, -mu/(pt.Tau*pt.Tau))

	lu, err := sparse.FactorLU(full, dim)
	if err != nil {
		return err
	}
	s.lu = lu
	return nil
}

func (s *NaiveSolver) SolveSystem(m *point.Model, pt *point.Point, mu float64, rhs *point.RHS, dir *point.Direction) error {
	n, p, q, dim := s.n, s.p, s.q, s.dim
	b := s.b
	copy(b[:n], rhs.RX)
	copy(b[n:n+p], rhs.RY)

	for ci, k := range m.Cones {
		r := m.ConeIdxs[ci]
		d := k.Dimension()
		rs := rhs.ConeSliceS(m, ci)
		corrected := s.corrected[:d]
		blk := s.invHess[ci]
		for row := 0; row < d; row++ {
			sum := 0.0
			for c := 0; c < d; c++ {
				sum += blk[c*d+row] * rs[c]
			}
			corrected[row] = sum
		}
		copy(b[n+p+r[0]:n+p+r[1]], rhs.RZ[r[0]:r[1]])
		for row := 0; row < d; row++ {
			b[n+p+r[0]+row] -= corrected[row]
		}
	}
	b[dim-1] = rhs.RTau - rhs.RKappa

	s.lu.Solve(b)

	copy(dir.X, b[:n])
	copy(dir.Y, b[n:n+p])
	copy(dir.Z, b[n+p:n+p+q])
	dir.Tau = b[dim-1]

	for ci, k := range m.Cones {
		r := m.ConeIdxs[ci]
		d := k.Dimension()
		rs := rhs.ConeSliceS(m, ci)
		zd := dir.Z[r[0]:r[1]]
		sd := dir.S[r[0]:r[1]]
		diff := s.diff[:d]
		for row := 0; row < d; row++ {
			diff[row] = rs[row] - zd[row]
		}
		if err := k.InvHessProd(sd, diff); err != nil {
			return err
		}
	}
	dir.Kappa = rhs.RKappa - mu/(pt.Tau*pt.Tau)*dir.Tau

	return nil
}
