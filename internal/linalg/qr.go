package linalg

import "math"

// PivotedQR is a column-pivoted Householder QR factorization of an
// m-by-n matrix, m >= n not required: both the preprocessing rank
// check of A (m >= n is typical) and of A^T (n >= m after A is
// reduced) call this. Rank is estimated by counting |R_kk| above a
// caller-supplied tolerance, matching spec section 4.6.
//
// The factorization is AP = QR where P permutes columns according to
// Perm (Perm[j] is the original column now in position j).
type PivotedQR struct {
	m, n int
	// qr holds, column-major, the Householder vectors below the
	// diagonal and R on and above the diagonal, in the classic LAPACK
	// packed layout.
	qr   []float64
	tau  []float64
	Perm []int
	Rank int
}

// NewPivotedQR factorizes the m-by-n matrix a (column-major) with
// column pivoting, estimating rank by comparing the magnitude of each
// diagonal of R against tol (absolute). A non-positive tol defaults to
// 100*eps scaled by the largest diagonal seen, per spec section 4.6.
func NewPivotedQR(a []float64, m, n int, tol float64) *PivotedQR {
	buf := make([]float64, len(a))
	copy(buf, a)
	perm := make([]int, n)
	for j := range perm {
		perm[j] = j
	}
	colNorm2 := make([]float64, n)
	for j := 0; j < n; j++ {
		colNorm2[j] = colDot(buf, m, j, j)
	}
	tau := make([]float64, min(m, n))

	maxDiag := 0.0
	k := min(m, n)
	for c := 0; c < k; c++ {
		// pivot: largest remaining column norm
		piv := c
		for j := c + 1; j < n; j++ {
			if colNorm2[j] > colNorm2[piv] {
				piv = j
			}
		}
		if piv != c {
			swapCols(buf, m, c, piv)
			colNorm2[c], colNorm2[piv] = colNorm2[piv], colNorm2[c]
			perm[c], perm[piv] = perm[piv], perm[c]
		}

		// Householder reflection zeroing buf[c+1:m, c].
		alpha := colAt(buf, m, c, c)
		normx := math.Sqrt(colDot(buf, m, c, c))
		if normx == 0 {
			tau[c] = 0
		} else {
			sign := 1.0
			if alpha < 0 {
				sign = -1.0
			}
			beta := -sign * normx
			v0 := alpha - beta
			tau[c] = -v0 / beta
			if v0 != 0 {
				scaleCol(buf, m, c, c+1, m, 1.0/v0)
			}
			setAt(buf, m, c, c, 1.0)
			applyHouseholderRight(buf, m, n, c, tau[c])
			setAt(buf, m, c, c, beta)
			if math.Abs(beta) > maxDiag {
				maxDiag = math.Abs(beta)
			}
		}

		// Update trailing column norms (downdate) for next pivot pick.
		for j := c + 1; j < n; j++ {
			v := colAt(buf, m, c, j)
			colNorm2[j] -= v * v
			if colNorm2[j] < 0 {
				colNorm2[j] = 0
			}
		}
	}

	if tol <= 0 {
		tol = 100 * eps * math.Max(maxDiag, 1)
	}
	rank := 0
	for c := 0; c < k; c++ {
		if math.Abs(colAt(buf, m, c, c)) > tol {
			rank++
		} else {
			break
		}
	}

	return &PivotedQR{m: m, n: n, qr: buf, tau: tau, Perm: perm, Rank: rank}
}

const eps = 2.220446049250313e-16

// RDiag returns the diagonal of R (length min(m,n)), useful for callers
// that want to apply their own rank tolerance after the fact.
func (qr *PivotedQR) RDiag() []float64 {
	k := min(qr.m, qr.n)
	d := make([]float64, k)
	for c := 0; c < k; c++ {
		d[c] = colAt(qr.qr, qr.m, c, c)
	}
	return d
}

// ApplyQT applies Q^T to the m-vector x in place (used to form Q^T b
// for least squares and minimum-norm solves).
func (qr *PivotedQR) ApplyQT(x []float64) {
	k := min(qr.m, qr.n)
	for c := 0; c < k; c++ {
		if qr.tau[c] == 0 {
			continue
		}
		v0 := 1.0
		dot := v0 * x[c]
		for i := c + 1; i < qr.m; i++ {
			dot += colAt(qr.qr, qr.m, c, i) * x[i]
		}
		f := qr.tau[c] * dot
		x[c] -= f * v0
		for i := c + 1; i < qr.m; i++ {
			x[i] -= f * colAt(qr.qr, qr.m, c, i)
		}
	}
}

// ApplyQ applies Q to the m-vector x in place, i.e. the inverse of
// ApplyQT, by walking the Householder reflections in reverse order.
func (qr *PivotedQR) ApplyQ(x []float64) {
	k := min(qr.m, qr.n)
	for c := k - 1; c >= 0; c-- {
		if qr.tau[c] == 0 {
			continue
		}
		v0 := 1.0
		dot := v0 * x[c]
		for i := c + 1; i < qr.m; i++ {
			dot += colAt(qr.qr, qr.m, c, i) * x[i]
		}
		f := qr.tau[c] * dot
		x[c] -= f * v0
		for i := c + 1; i < qr.m; i++ {
			x[i] -= f * colAt(qr.qr, qr.m, c, i)
		}
	}
}

// SolveR solves R[:rank,:rank] x = b (upper triangular back-substitution)
// in place over the first `rank` entries of b, leaving the result there.
func (qr *PivotedQR) SolveR(b []float64) {
	for i := qr.Rank - 1; i >= 0; i-- {
		s := b[i]
		for j := i + 1; j < qr.Rank; j++ {
			s -= colAt(qr.qr, qr.m, j, i) * b[j]
		}
		b[i] = s / colAt(qr.qr, qr.m, i, i)
	}
}

// SolveRT solves R[:rank,:rank]^T x = b in place over the first `rank`
// entries of b.
func (qr *PivotedQR) SolveRT(b []float64) {
	for i := 0; i < qr.Rank; i++ {
		s := b[i]
		for j := 0; j < i; j++ {
			s -= colAt(qr.qr, qr.m, i, j) * b[j]
		}
		b[i] = s / colAt(qr.qr, qr.m, i, i)
	}
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func colAt(buf []float64, m, col, row int) float64 { return buf[col*m+row] }
func setAt(buf []float64, m, col, row int, v float64) { buf[col*m+row] = v }

func colDot(buf []float64, m, col, fromRow int) float64 {
	s := 0.0
	for i := fromRow; i < m; i++ {
		v := colAt(buf, m, col, i)
		s += v * v
	}
	return s
}

func swapCols(buf []float64, m, a, b int) {
	for i := 0; i < m; i++ {
		ia, ib := a*m+i, b*m+i
		buf[ia], buf[ib] = buf[ib], buf[ia]
	}
}

func scaleCol(buf []float64, m, col, fromRow, toRow int, s float64) {
	for i := fromRow; i < toRow; i++ {
		buf[col*m+i] *= s
	}
}

// applyHouseholderRight applies the Householder reflector defined by
// column c of buf (with implicit leading 1) to all columns c+1..n-1 of
// buf, i.e. updates the trailing submatrix in the standard way.
func applyHouseholderRight(buf []float64, m, n, c int, tau float64) {
	if tau == 0 {
		return
	}
	for j := c + 1; j < n; j++ {
		dot := colAt(buf, m, c, c) * colAt(buf, m, j, c)
		for i := c + 1; i < m; i++ {
			dot += colAt(buf, m, c, i) * colAt(buf, m, j, i)
		}
		f := tau * dot
		setAt(buf, m, j, c, colAt(buf, m, j, c)-f*colAt(buf, m, c, c))
		for i := c + 1; i < m; i++ {
			setAt(buf, m, j, i, colAt(buf, m, j, i)-f*colAt(buf, m, c, i))
		}
	}
}
