package cone

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/hrautila/conic/internal/linalg"
)

// PSDTriangle is the cone of symmetric positive semidefinite d-by-d
// matrices, represented through the solver's svec/smat convention
// (spec section 4.1), with barrier F(S) = -log det(S) and nu = d.
type PSDTriangle struct {
	Base
	d    int
	grad []float64

	sMat   *mat.SymDense
	chol   mat.Cholesky
	cholOK bool
	sInv   *mat.SymDense // materialized once per point, on demand
	sInvOK bool
}

// NewPSDTriangle constructs a PSD cone over d-by-d matrices; Dimension()
// is linalg.SvecDim(d).
func NewPSDTriangle(d int) *PSDTriangle {
	n := linalg.SvecDim(d)
	c := &PSDTriangle{Base: NewBase(n, float64(d), false), d: d}
	c.grad = make([]float64, n)
	return c
}

func (c *PSDTriangle) SetInitialPoint(out []float64) {
	full := make([]float64, c.d*c.d)
	for i := 0; i < c.d; i++ {
		full[i*c.d+i] = 1
	}
	linalg.Svec(out, full, c.d)
}

func (c *PSDTriangle) toSym(v []float64) *mat.SymDense {
	full := make([]float64, c.d*c.d)
	linalg.Smat(full, v, c.d)
	rowMajor := make([]float64, c.d*c.d)
	for i := 0; i < c.d; i++ {
		for j := 0; j < c.d; j++ {
			rowMajor[i*c.d+j] = full[j*c.d+i]
		}
	}
	return mat.NewSymDense(c.d, rowMajor)
}

func (c *PSDTriangle) ResetData() {
	c.Base.ResetData()
	c.cholOK = false
	c.sInvOK = false
	c.sMat = nil
}

func (c *PSDTriangle) IsFeas() bool {
	if ok, valid := c.FeasCached(); valid {
		return ok
	}
	c.sMat = c.toSym(c.Point())
	var chol mat.Cholesky
	ok := chol.Factorize(c.sMat)
	if ok {
		c.chol = chol
		c.cholOK = true
	}
	c.MarkFeas(ok)
	return ok
}

func (c *PSDTriangle) IsDualFeas() bool {
	if ok, valid := c.DualFeasCached(); valid {
		return ok
	}
	zm := c.toSym(c.DualPoint())
	var chol mat.Cholesky
	ok := chol.Factorize(zm)
	c.MarkDualFeas(ok)
	return ok
}

func (c *PSDTriangle) sInverse() *mat.SymDense {
	if c.sInvOK {
		return c.sInv
	}
	var inv mat.SymDense
	if err := c.chol.InverseTo(&inv); err != nil {
		// IsFeas already certified positive-definiteness; a failure
		// here means the cache was stale, which should not happen.
		panic("cone: inverse of a factorized PSD point failed: " + err.Error())
	}
	c.sInv = &inv
	c.sInvOK = true
	return c.sInv
}

func (c *PSDTriangle) Grad() []float64 {
	inv := c.sInverse()
	full := make([]float64, c.d*c.d)
	for i := 0; i < c.d; i++ {
		for j := 0; j < c.d; j++ {
			full[j*c.d+i] = -inv.At(i, j)
		}
	}
	linalg.Svec(c.grad, full, c.d)
	c.MarkGrad()
	return c.grad
}

func (c *PSDTriangle) HessProd(out, v []float64) {
	inv := c.sInverse()
	M := linalg.SymmKron(colMajorOfSym(inv, c.d), c.d)
	var res mat.VecDense
	res.MulVec(M, mat.NewVecDense(len(v), v))
	copy(out, res.RawVector().Data)
}

func (c *PSDTriangle) InvHessProd(out, v []float64) error {
	full := make([]float64, c.d*c.d)
	linalg.Smat(full, c.Point(), c.d)
	M := linalg.SymmKron(full, c.d)
	var res mat.VecDense
	res.MulVec(M, mat.NewVecDense(len(v), v))
	copy(out, res.RawVector().Data)
	return nil
}

func colMajorOfSym(m *mat.SymDense, d int) []float64 {
	out := make([]float64, d*d)
	for j := 0; j < d; j++ {
		for i := 0; i < d; i++ {
			out[j*d+i] = m.At(i, j)
		}
	}
	return out
}

func (c *PSDTriangle) InNeighborhood(mu, beta float64, useInfty bool) bool {
	// quadratic-form deviation of s from mu*(-grad(z)), in the local
	// Hessian norm, matching the pattern used for the other cones.
	z := c.DualPoint()
	zm := c.toSym(z)
	var zchol mat.Cholesky
	if !zchol.Factorize(zm) {
		return false
	}
	var zinv mat.SymDense
	if err := zchol.InverseTo(&zinv); err != nil {
		return false
	}
	full := make([]float64, c.d*c.d)
	for i := 0; i < c.d; i++ {
		for j := 0; j < c.d; j++ {
			full[j*c.d+i] = zinv.At(i, j)
		}
	}
	negGradZ := make([]float64, c.Dimension())
	linalg.Svec(negGradZ, full, c.d)

	s := c.Point()
	diff := make([]float64, len(s))
	for i := range diff {
		diff[i] = s[i] - mu*negGradZ[i]
	}
	hv := make([]float64, len(diff))
	c.HessProd(hv, diff)
	dev := linalg.SvecDot(diff, hv)
	if useInfty {
		maxAbs := 0.0
		for _, v := range diff {
			if a := abs(v); a > maxAbs {
				maxAbs = a
			}
		}
		return maxAbs <= beta*mu
	}
	if dev < 0 {
		return false
	}
	return math.Sqrt(dev) <= beta*mu
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func (c *PSDTriangle) UseCorrection() bool { return true }

// Correction implements the log-det barrier's third-order term:
// corr(Delta) = -S^-1 Delta S^-1 Delta S^-1, in svec form.
func (c *PSDTriangle) Correction(out, dir []float64) {
	inv := c.sInverse()
	d := c.d
	dm := make([]float64, d*d)
	linalg.Smat(dm, dir, d)
	D := mat.NewDense(d, d, rowMajorFromColMajor(dm, d))

	var t1, t2, t3 mat.Dense
	t1.Mul(inv, D)
	t2.Mul(&t1, inv)
	t3.Mul(&t2, D)
	var t4 mat.Dense
	t4.Mul(&t3, inv)

	full := make([]float64, d*d)
	for i := 0; i < d; i++ {
		for j := 0; j < d; j++ {
			full[j*d+i] = -t4.At(i, j)
		}
	}
	linalg.Svec(out, full, d)
}

func rowMajorFromColMajor(colMajor []float64, d int) []float64 {
	out := make([]float64, d*d)
	for j := 0; j < d; j++ {
		for i := 0; i < d; i++ {
			out[i*d+j] = colMajor[j*d+i]
		}
	}
	return out
}
