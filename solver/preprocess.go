package solver

import (
	"sort"

	"github.com/hrautila/conic/internal/linalg"
	"github.com/hrautila/conic/solver/point"
)

// preprocessed bundles the rank-reduced model together with the index
// bookkeeping needed to expand x back to the caller's original column
// order (spec.md section 4.6, section 9 open question 4 as recorded in
// DESIGN.md).
type preprocessed struct {
	model *point.Model

	xKeepIdxs []int
	yKeepIdxs []int

	origN, origP int
}

func identity(n int) []int {
	idxs := make([]int, n)
	for i := range idxs {
		idxs[i] = i
	}
	return idxs
}

// preprocess runs the rank estimation of spec.md section 4.6 against
// [A; G] (which columns of x actually participate in some equality or
// inequality row) and against A^T (which rows of A are linearly
// independent), dropping whichever indices fall outside the estimated
// rank. With opts.Preprocess unset it is the identity.
func preprocess(m *point.Model, opts Options) *preprocessed {
	out := &preprocessed{model: m, origN: m.N, origP: m.P, xKeepIdxs: identity(m.N), yKeepIdxs: identity(m.P)}
	if !opts.Preprocess {
		return out
	}

	stacked := stackRows(m.A, m.G)
	qrAG := linalg.NewPivotedQR(stacked, m.P+m.Q, m.N, opts.InitTolQR)
	if qrAG.Rank < m.N {
		keep := append([]int(nil), qrAG.Perm[:qrAG.Rank]...)
		sort.Ints(keep)
		out.xKeepIdxs = keep
	}

	aRed := selectCols(m.A, out.xKeepIdxs)
	n := len(out.xKeepIdxs)
	at := transposeColMajor(aRed, m.P, n)
	qrAT := linalg.NewPivotedQR(at, n, m.P, opts.InitTolQR)
	if qrAT.Rank < m.P {
		keep := append([]int(nil), qrAT.Perm[:qrAT.Rank]...)
		sort.Ints(keep)
		out.yKeepIdxs = keep
	}

	if len(out.xKeepIdxs) != m.N || len(out.yKeepIdxs) != m.P {
		out.model = reduceModel(m, out.xKeepIdxs, out.yKeepIdxs)
	}
	return out
}

// reduceModel returns a new Model over only the kept x columns and y
// rows; G, h, and the cone partition are never touched, since only
// equality-constraint rows and their participating variables are
// subject to rank reduction.
func reduceModel(m *point.Model, xKeep, yKeep []int) *point.Model {
	c2 := selectIdx(m.C, xKeep)
	b2 := selectIdx(m.B, yKeep)
	a2 := &point.DenseOrSparse{Rows: len(yKeep), Cols: len(xKeep), Dense: selectSub(m.A, yKeep, xKeep)}
	g2 := &point.DenseOrSparse{Rows: m.Q, Cols: len(xKeep), Dense: selectCols(m.G, xKeep)}
	mm, err := point.NewModel(c2, a2, b2, g2, m.H, m.Cones, m.ObjOffset)
	if err != nil {
		// xKeep/yKeep are derived from m's own dimensions; a mismatch
		// here means a bug in the rank-reduction bookkeeping above.
		panic("solver: preprocess produced an inconsistent reduced model: " + err.Error())
	}
	return mm
}

// stackRows returns the column-major (a.Rows+g.Rows)-by-a.Cols dense
// matrix [A; G].
func stackRows(a, g *point.DenseOrSparse) []float64 {
	n := a.Cols
	rows := a.Rows + g.Rows
	out := make([]float64, rows*n)
	for j := 0; j < n; j++ {
		for i := 0; i < a.Rows; i++ {
			out[j*rows+i] = a.At(i, j)
		}
		for i := 0; i < g.Rows; i++ {
			out[j*rows+a.Rows+i] = g.At(i, j)
		}
	}
	return out
}

// selectCols returns the dense column-major a.Rows-by-len(idxs) matrix
// formed by keeping only the given columns of a, in the given order.
func selectCols(a *point.DenseOrSparse, idxs []int) []float64 {
	out := make([]float64, a.Rows*len(idxs))
	for c, j := range idxs {
		for i := 0; i < a.Rows; i++ {
			out[c*a.Rows+i] = a.At(i, j)
		}
	}
	return out
}

// selectSub returns the dense column-major len(rowIdxs)-by-len(colIdxs)
// submatrix of a.
func selectSub(a *point.DenseOrSparse, rowIdxs, colIdxs []int) []float64 {
	out := make([]float64, len(rowIdxs)*len(colIdxs))
	for c, j := range colIdxs {
		for r, i := range rowIdxs {
			out[c*len(rowIdxs)+r] = a.At(i, j)
		}
	}
	return out
}

func selectIdx(v []float64, idxs []int) []float64 {
	out := make([]float64, len(idxs))
	for i, j := range idxs {
		out[i] = v[j]
	}
	return out
}

// transposeColMajor returns the cols-by-rows column-major transpose of
// the rows-by-cols column-major matrix flat.
func transposeColMajor(flat []float64, rows, cols int) []float64 {
	out := make([]float64, rows*cols)
	for j := 0; j < cols; j++ {
		for i := 0; i < rows; i++ {
			out[i*cols+j] = flat[j*rows+i]
		}
	}
	return out
}

// expandX re-embeds a solution computed over the kept columns back into
// the original column order, filling the dropped columns with zero.
func expandX(x []float64, xKeep []int, origN int) []float64 {
	if len(xKeep) == origN {
		return x
	}
	out := make([]float64, origN)
	for i, j := range xKeep {
		out[j] = x[i]
	}
	return out
}

// expandY re-embeds a solution computed over the kept rows back into
// the original row order, filling the dropped rows with zero.
func expandY(y []float64, yKeep []int, origP int) []float64 {
	if len(yKeep) == origP {
		return y
	}
	out := make([]float64, origP)
	for i, j := range yKeep {
		out[j] = y[i]
	}
	return out
}
