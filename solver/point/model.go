// Package point holds the solver's data model: the immutable problem
// Model, the mutable Point the main loop iterates on, the Residuals
// computed from it each iteration, and the Direction the stepper
// solves for.
package point

import (
	"fmt"

	"github.com/hrautila/conic/solver/cone"
)

// Model is the immutable coefficient data for one solve: minimize
// c^T x subject to A x = b, G x + s = h, s in the product cone of
// Cones.
type Model struct {
	C []float64
	A *DenseOrSparse
	B []float64
	G *DenseOrSparse
	H []float64

	Cones     []cone.Cone
	ConeIdxs  [][2]int // half-open [lo,hi) index range into s/z per cone
	ObjOffset float64

	N, P, Q int // len(C), len(B), len(H)
}

// DenseOrSparse is a column-major dense matrix or, when Dense is nil,
// a CSC sparse matrix; exactly one representation is populated
// (NewModel gives an empty matrix with neither populated an empty Dense
// slice). The system solvers and preprocessing both accept either.
type DenseOrSparse struct {
	Rows, Cols int
	Dense      []float64 // column-major, len == Rows*Cols, nil if sparse

	// CSC fields, used when Dense == nil.
	ColPtr []int
	RowIdx []int
	Val    []float64
}

// ToDense returns a column-major dense copy regardless of which
// representation is populated, for the system solvers' assembly step.
func (a *DenseOrSparse) ToDense() []float64 {
	if a.Dense != nil {
		return a.Dense
	}
	out := make([]float64, a.Rows*a.Cols)
	for c := 0; c < a.Cols; c++ {
		for k := a.ColPtr[c]; k < a.ColPtr[c+1]; k++ {
			out[c*a.Rows+a.RowIdx[k]] = a.Val[k]
		}
	}
	return out
}

// At returns the (i,j) entry regardless of representation.
func (a *DenseOrSparse) At(i, j int) float64 {
	if a.Dense != nil {
		return a.Dense[j*a.Rows+i]
	}
	for k := a.ColPtr[j]; k < a.ColPtr[j+1]; k++ {
		if a.RowIdx[k] == i {
			return a.Val[k]
		}
	}
	return 0
}

// NewModel validates the cone/index-range partition invariant from
// spec section 3 (contiguous, disjoint, covering 1..q) and the shape
// consistency of c, A, b, G, h before returning a Model ready to load.
func NewModel(c []float64, a *DenseOrSparse, b []float64, g *DenseOrSparse, h []float64, cones []cone.Cone, objOffset float64) (*Model, error) {
	n, p, q := len(c), len(b), len(h)
	if a.Rows != p || a.Cols != n {
		return nil, fmt.Errorf("point: A is %dx%d, want %dx%d", a.Rows, a.Cols, p, n)
	}
	if g.Rows != q || g.Cols != n {
		return nil, fmt.Errorf("point: G is %dx%d, want %dx%d", g.Rows, g.Cols, q, n)
	}
	for _, mm := range []*DenseOrSparse{a, g} {
		if mm.Dense == nil && mm.ColPtr == nil && mm.Rows*mm.Cols == 0 {
			mm.Dense = []float64{}
		}
	}

	idxs := make([][2]int, len(cones))
	pos := 0
	for i, k := range cones {
		lo := pos
		hi := pos + k.Dimension()
		idxs[i] = [2]int{lo, hi}
		pos = hi
	}
	if pos != q {
		return nil, fmt.Errorf("point: cone dimensions sum to %d, want %d", pos, q)
	}

	return &Model{
		C: c, A: a, B: b, G: g, H: h,
		Cones: cones, ConeIdxs: idxs, ObjOffset: objOffset,
		N: n, P: p, Q: q,
	}, nil
}

// Nu is the model's total barrier parameter, sum of every cone's nu().
func (m *Model) Nu() float64 {
	nu := 0.0
	for _, k := range m.Cones {
		nu += k.Nu()
	}
	return nu
}

// ConeSlice returns the sub-slice of a length-Q vector belonging to
// cone i, per ConeIdxs.
func (m *Model) ConeSlice(v []float64, i int) []float64 {
	r := m.ConeIdxs[i]
	return v[r[0]:r[1]]
}
