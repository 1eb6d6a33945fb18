package cone

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/hrautila/conic/internal/solverr"
)

// Power is the generalized power cone specialized to two base
// exponents, {(u1,u2,w) in R_+^2 x R^s : u1^a u2^(1-a) >= ||w||_2},
// a in (0,1), dimension d = 2+s, nu = 3. The wider r-ary generalized
// power cone from spec section 2.2 follows the identical derivation
// (replace the u1,u2 pair with a length-r vector and the single
// exponent a with a vector summing to one); this two-exponent
// specialization is implemented in full because it is the common case
// and keeps the closed-form second derivatives tractable, per the
// scope note in DESIGN.md.
type Power struct {
	Base
	s     int
	alpha float64

	grad      []float64
	p, f      float64
	p1, p2    float64
	hessCache *mat.Dense
	hessValid bool
}

// NewPower constructs a power cone with exponent alpha on u1 (and
// 1-alpha on u2) and s-dimensional w.
func NewPower(alpha float64, s int) *Power {
	c := &Power{Base: NewBase(2+s, 3.0, false), s: s, alpha: alpha}
	c.grad = make([]float64, 2+s)
	return c
}

func (c *Power) SetInitialPoint(out []float64) {
	out[0], out[1] = 1, 1
	for i := 2; i < len(out); i++ {
		out[i] = 0
	}
}

func (c *Power) feasOf(p []float64) bool {
	u1, u2 := p[0], p[1]
	if !(u1 > 0 && u2 > 0) {
		return false
	}
	nrm2 := 0.0
	for _, wj := range p[2:] {
		nrm2 += wj * wj
	}
	pv := math.Pow(u1, 2*c.alpha) * math.Pow(u2, 2*(1-c.alpha))
	return pv-nrm2 > 0 && !math.IsNaN(pv)
}

func (c *Power) IsFeas() bool {
	if ok, valid := c.FeasCached(); valid {
		return ok
	}
	ok := c.feasOf(c.Point())
	c.MarkFeas(ok)
	return ok
}

// feasDualOf tests the dual power cone's own defining inequality,
// (z1/a)^a (z2/(1-a))^(1-a) >= ||z_w||_2 with z1,z2 > 0 — not the
// primal inequality evaluated at the dual point, which is an unrelated
// set (the power cone is not self-dual for a != 1/2).
func (c *Power) feasDualOf(z []float64) bool {
	z1, z2 := z[0], z[1]
	if !(z1 > 0 && z2 > 0) {
		return false
	}
	nrm2 := 0.0
	for _, zj := range z[2:] {
		nrm2 += zj * zj
	}
	a1, a2 := c.alpha, 1-c.alpha
	pv := math.Pow(z1/a1, 2*a1) * math.Pow(z2/a2, 2*a2)
	return pv-nrm2 > 0 && !math.IsNaN(pv)
}

func (c *Power) IsDualFeas() bool {
	if ok, valid := c.DualFeasCached(); valid {
		return ok
	}
	ok := c.feasDualOf(c.DualPoint())
	c.MarkDualFeas(ok)
	return ok
}

func (c *Power) computeAux() {
	p := c.Point()
	u1, u2 := p[0], p[1]
	w := p[2:]
	a1, a2 := c.alpha, 1-c.alpha
	nrm2 := 0.0
	for _, wj := range w {
		nrm2 += wj * wj
	}
	pv := math.Pow(u1, 2*a1) * math.Pow(u2, 2*a2)
	c.p = pv
	c.f = pv - nrm2
	c.p1 = 2 * a1 * pv / u1
	c.p2 = 2 * a2 * pv / u2
	c.MarkHessAux()
}

func (c *Power) Grad() []float64 {
	c.computeAux()
	p := c.Point()
	u1, u2 := p[0], p[1]
	w := p[2:]
	a1, a2 := c.alpha, 1-c.alpha
	f := c.f
	c.grad[0] = -c.p1/f - a2/u1
	c.grad[1] = -c.p2/f - a1/u2
	for j, wj := range w {
		c.grad[2+j] = 2 * wj / f
	}
	c.MarkGrad()
	return c.grad
}

func (c *Power) HessProd(out, v []float64) {
	p := c.Point()
	u1, u2 := p[0], p[1]
	w := p[2:]
	a1, a2 := c.alpha, 1-c.alpha
	f, pv, p1, p2 := c.f, c.p, c.p1, c.p2

	pu1u1 := 2 * a1 * (2*a1 - 1) * pv / (u1 * u1)
	pu1u2 := 4 * a1 * a2 * pv / (u1 * u2)
	pu2u2 := 2 * a2 * (2*a2 - 1) * pv / (u2 * u2)

	Fu1u1 := -pu1u1/f + p1*p1/(f*f) + a2/(u1*u1)
	Fu1u2 := -pu1u2/f + p1*p2/(f*f)
	Fu2u2 := -pu2u2/f + p2*p2/(f*f) + a1/(u2*u2)

	vu1, vu2 := v[0], v[1]
	vw := v[2:]

	wv := 0.0
	for j, wj := range w {
		wv += wj * vw[j]
	}

	out[0] = Fu1u1*vu1 + Fu1u2*vu2
	out[1] = Fu1u2*vu1 + Fu2u2*vu2
	for j, wj := range w {
		cross := -2 * p1 * wj / (f * f)
		out[0] += cross * vw[j]
		cross2 := -2 * p2 * wj / (f * f)
		out[1] += cross2 * vw[j]
	}
	for j, wj := range w {
		out[2+j] = (-2*p1*wj/(f*f))*vu1 + (-2*p2*wj/(f*f))*vu2 + 2*vw[j]/f + 4*wj*wv/(f*f)
	}
}

func (c *Power) hessian() *mat.Dense {
	if c.hessValid {
		return c.hessCache
	}
	n := c.Dimension()
	M := mat.NewDense(n, n, nil)
	e := make([]float64, n)
	col := make([]float64, n)
	for p := 0; p < n; p++ {
		for i := range e {
			e[i] = 0
		}
		e[p] = 1
		c.HessProd(col, e)
		M.SetCol(p, col)
	}
	c.hessCache = M
	c.hessValid = true
	return M
}

func (c *Power) InvHessProd(out, v []float64) error {
	H := c.hessian()
	n := c.Dimension()
	var lu mat.LU
	lu.Factorize(H)
	dst := mat.NewVecDense(n, out)
	if err := lu.SolveVecTo(dst, false, mat.NewVecDense(n, v)); err != nil {
		return solverr.Wrapf(solverr.ErrNumericalFactorization, "cone: power cone Hessian solve failed: %v", err)
	}
	return nil
}

func (c *Power) ResetData() {
	c.Base.ResetData()
	c.hessValid = false
}

func (c *Power) InNeighborhood(mu, beta float64, useInfty bool) bool {
	s, z := c.Point(), c.DualPoint()
	sz := dotv(s, z)
	if useInfty {
		return math.Abs(sz-mu*c.Nu()) <= beta*mu*c.Nu()
	}
	return sz >= (1-beta)*mu*c.Nu() && sz <= (1+beta)*mu*c.Nu()
}

func (c *Power) UseCorrection() bool { return false }
func (c *Power) Correction(out, dir []float64) {
	for i := range out {
		out[i] = 0
	}
}
