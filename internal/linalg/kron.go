package linalg

import "gonum.org/v1/gonum/mat"

// SymmKron builds the svec-by-svec matrix M such that
// M . svec(X) = svec(A X A^T) for every symmetric X, where A is the
// d-by-d matrix passed column-major in `a`. The result is itself
// symmetric when A is symmetric, and always respects the sqrt(2)
// off-diagonal scaling of Svec/Smat (spec section 4.1).
//
// Columns are built by probing with one svec basis vector at a time;
// this is the direct reading of the contract ("M maps svec(X) to
// svec(A X A^T)") rather than the closed-form entrywise expansion, and
// keeps the one svec/smat convention centralized in this package.
func SymmKron(a []float64, d int) *mat.Dense {
	n := SvecDim(d)
	A := mat.NewDense(d, d, colMajorToRowMajor(a, d))
	M := mat.NewDense(n, n, nil)

	e := make([]float64, n)
	full := make([]float64, d*d)
	var AX, AXAt mat.Dense
	for p := 0; p < n; p++ {
		for i := range e {
			e[i] = 0
		}
		e[p] = 1
		Smat(full, e, d)
		X := mat.NewDense(d, d, rowMajorCopy(full))
		AX.Mul(A, X)
		AXAt.Mul(&AX, A.T())
		col := make([]float64, n)
		Svec(col, denseToColMajor(&AXAt, d), d)
		M.SetCol(p, col)
	}
	return M
}

// EigDotKron builds the svec matrix acting as
// svec(X) -> svec(V (Theta o (V^T X V)) V^T), where o is the elementwise
// (Hadamard) product and Theta is a d-by-d matrix of per-entry weights
// (typically built from divided differences of a spectral function).
// Used by the separable-spectral cone family's Hessian.
func EigDotKron(theta []float64, v []float64, d int) *mat.Dense {
	n := SvecDim(d)
	V := mat.NewDense(d, d, colMajorToRowMajor(v, d))
	Theta := mat.NewDense(d, d, colMajorToRowMajor(theta, d))
	M := mat.NewDense(n, n, nil)

	e := make([]float64, n)
	full := make([]float64, d*d)
	var VtX, inner, VInner, VInnerVt mat.Dense
	for p := 0; p < n; p++ {
		for i := range e {
			e[i] = 0
		}
		e[p] = 1
		Smat(full, e, d)
		X := mat.NewDense(d, d, rowMajorCopy(full))

		VtX.Mul(V.T(), X)
		inner.Mul(&VtX, V)
		inner.MulElem(&inner, Theta)
		VInner.Mul(V, &inner)
		VInnerVt.Mul(&VInner, V.T())

		col := make([]float64, n)
		Svec(col, denseToColMajor(&VInnerVt, d), d)
		M.SetCol(p, col)
	}
	return M
}

func rowMajorCopy(full []float64) []float64 {
	out := make([]float64, len(full))
	copy(out, full)
	return out
}

// colMajorToRowMajor reinterprets a column-major d x d buffer as the
// row-major buffer gonum's mat.Dense expects, without assuming
// symmetry (a plain transpose-by-indexing).
func colMajorToRowMajor(colMajor []float64, d int) []float64 {
	out := make([]float64, d*d)
	for j := 0; j < d; j++ {
		for i := 0; i < d; i++ {
			out[i*d+j] = colMajor[j*d+i]
		}
	}
	return out
}

// denseToColMajor flattens a gonum Dense (row-major storage internally,
// accessed via At) into the column-major buffer Svec/Smat expect.
func denseToColMajor(m *mat.Dense, d int) []float64 {
	out := make([]float64, d*d)
	for j := 0; j < d; j++ {
		for i := 0; i < d; i++ {
			out[j*d+i] = m.At(i, j)
		}
	}
	return out
}
