// Package sparse provides the triplet-assembled sparse matrix storage
// used to build the naive system solver's KKT-like matrix (spec section
// 4.3), plus the two factorizations it needs: a symmetric indefinite
// LDL^T with re-analysis, and a general LU. Assembly follows the
// compressed-sparse-column convention used throughout the pack's sparse
// matrix code (asmuelle-sparsem's CSR type, mirrored here as CSC since
// the system solver builds and factors column by column); the numeric
// kernels themselves operate on a densified copy, because a from-scratch
// fill-reducing sparse factorization is out of scope for this build (see
// DESIGN.md) while the update_lhs/solve_system contract stays exactly
// the one spec.md section 4.3 describes.
package sparse

import "sort"

// Triplet is one (row, col, value) entry contributed to a matrix being
// assembled. Repeated entries at the same (row, col) accumulate.
type Triplet struct {
	Row, Col int
	Val      float64
}

// CSC is a compressed-sparse-column matrix, built once per iteration
// from a list of triplets and then either densified for factorization
// or walked directly for matrix-vector products.
type CSC struct {
	N, M     int // M rows, N cols
	ColPtr   []int
	RowIdx   []int
	Val      []float64
}

// FromTriplets assembles an m-by-n CSC matrix from triplets, summing
// duplicate (row, col) entries.
func FromTriplets(m, n int, triplets []Triplet) *CSC {
	type key struct{ r, c int }
	acc := make(map[key]float64, len(triplets))
	for _, t := range triplets {
		acc[key{t.Row, t.Col}] += t.Val
	}
	cols := make([][]int, n)
	for k := range acc {
		cols[k.c] = append(cols[k.c], k.r)
	}
	colPtr := make([]int, n+1)
	var rowIdx []int
	var val []float64
	for c := 0; c < n; c++ {
		sort.Ints(cols[c])
		colPtr[c] = len(rowIdx)
		for _, r := range cols[c] {
			rowIdx = append(rowIdx, r)
			val = append(val, acc[key{r, c}])
		}
	}
	colPtr[n] = len(rowIdx)
	return &CSC{N: n, M: m, ColPtr: colPtr, RowIdx: rowIdx, Val: val}
}

// Dense returns the matrix as a column-major dense buffer of length
// M*N.
func (a *CSC) Dense() []float64 {
	out := make([]float64, a.M*a.N)
	for c := 0; c < a.N; c++ {
		for k := a.ColPtr[c]; k < a.ColPtr[c+1]; k++ {
			out[c*a.M+a.RowIdx[k]] = a.Val[k]
		}
	}
	return out
}

// MulVec computes y := A*x, x has length N, y has length M.
func (a *CSC) MulVec(y, x []float64) {
	for i := range y {
		y[i] = 0
	}
	for c := 0; c < a.N; c++ {
		xc := x[c]
		if xc == 0 {
			continue
		}
		for k := a.ColPtr[c]; k < a.ColPtr[c+1]; k++ {
			y[a.RowIdx[k]] += a.Val[k] * xc
		}
	}
}
