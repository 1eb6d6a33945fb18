package point

import (
	"math"

	"github.com/hrautila/conic/internal/linalg"
)

// Residuals holds the HSD embedding's residual vectors, per spec
// section 3:
//
//	r_x = -A^T y - G^T z - c*tau
//	r_y =  A x  - b*tau
//	r_z =  s + G x - h*tau
//	r_tau = kappa + c^T x - b^T y - h^T z
//
// plus the scaled (by 1/tau) feasibility norms used for termination.
type Residuals struct {
	RX []float64
	RY []float64
	RZ []float64
	RTau float64

	NormRX, NormRY, NormRZ float64
}

// Compute fills r in place from m and pt. r.RX/RY/RZ must already be
// sized to n/p/q.
func Compute(r *Residuals, m *Model, pt *Point) {
	MatTVec(r.RX, m.A, pt.Y)
	gx := make([]float64, m.N)
	MatTVec(gx, m.G, pt.Z)
	for i := range r.RX {
		r.RX[i] = -r.RX[i] - gx[i] - m.C[i]*pt.Tau
	}

	MatVec(r.RY, m.A, pt.X)
	for i := range r.RY {
		r.RY[i] -= m.B[i] * pt.Tau
	}

	MatVec(r.RZ, m.G, pt.X)
	for i := range r.RZ {
		r.RZ[i] += pt.S[i] - m.H[i]*pt.Tau
	}

	r.RTau = pt.Kappa + linalg.SvecDot(m.C, pt.X) - linalg.SvecDot(m.B, pt.Y) - linalg.SvecDot(m.H, pt.Z)

	r.NormRX = norm2(r.RX) / pt.Tau
	r.NormRY = norm2(r.RY) / pt.Tau
	r.NormRZ = norm2(r.RZ) / pt.Tau
}

// NewResiduals allocates zeroed residuals sized to m.
func NewResiduals(m *Model) *Residuals {
	return &Residuals{RX: make([]float64, m.N), RY: make([]float64, m.P), RZ: make([]float64, m.Q)}
}

func norm2(v []float64) float64 {
	s := 0.0
	for _, x := range v {
		s += x * x
	}
	return math.Sqrt(s)
}

// MatVec computes out := A*v for a DenseOrSparse A (column-major dense
// or CSC).
func MatVec(out []float64, a *DenseOrSparse, v []float64) {
	for i := range out {
		out[i] = 0
	}
	if a.Dense != nil {
		for j := 0; j < a.Cols; j++ {
			vj := v[j]
			if vj == 0 {
				continue
			}
			col := a.Dense[j*a.Rows : (j+1)*a.Rows]
			for i := 0; i < a.Rows; i++ {
				out[i] += col[i] * vj
			}
		}
		return
	}
	for j := 0; j < a.Cols; j++ {
		vj := v[j]
		if vj == 0 {
			continue
		}
		for k := a.ColPtr[j]; k < a.ColPtr[j+1]; k++ {
			out[a.RowIdx[k]] += a.Val[k] * vj
		}
	}
}

// MatTVec computes out := A^T*v into a vector sized to a.Cols.
func MatTVec(out []float64, a *DenseOrSparse, v []float64) {
	for i := range out {
		out[i] = 0
	}
	if a.Dense != nil {
		for j := 0; j < a.Cols; j++ {
			col := a.Dense[j*a.Rows : (j+1)*a.Rows]
			s := 0.0
			for i := 0; i < a.Rows; i++ {
				s += col[i] * v[i]
			}
			out[j] = s
		}
		return
	}
	for j := 0; j < a.Cols; j++ {
		s := 0.0
		for k := a.ColPtr[j]; k < a.ColPtr[j+1]; k++ {
			s += a.Val[k] * v[a.RowIdx[k]]
		}
		out[j] = s
	}
}
