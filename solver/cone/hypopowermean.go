package cone

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/hrautila/conic/internal/solverr"
)

// HypoPowerMean is the hypograph of the weighted power (geometric) mean,
// {(u,x) in R x R^n_+ : u <= prod_i x_i^lambda_i}, lambda_i > 0 summing
// to one, dimension d = 1+n. Barrier
//
//	F(u,x) = -log(p - u^2) - sum_i log(x_i),  p = prod_i x_i^(2 lambda_i),
//
// nu = n+2: the -log(p-u^2) term is homogeneous of degree 2 in (u,x)
// (since the lambda_i sum to one, p(tu,tx) scales as t^2) and each
// -log(x_i) contributes one more, for n+2 total.
type HypoPowerMean struct {
	Base
	n      int
	lambda []float64

	grad []float64
	p, f float64
	pArr []float64 // dp/dx_i, cached with hessAuxValid

	hessCache *mat.Dense
	hessValid bool
}

// NewHypoPowerMean constructs the cone for the given weight vector,
// which must be positive and sum to one.
func NewHypoPowerMean(lambda []float64) *HypoPowerMean {
	n := len(lambda)
	c := &HypoPowerMean{
		Base:   NewBase(1+n, float64(n+2), false),
		n:      n,
		lambda: append([]float64(nil), lambda...),
	}
	c.grad = make([]float64, 1+n)
	c.pArr = make([]float64, n)
	return c
}

func (c *HypoPowerMean) SetInitialPoint(out []float64) {
	out[0] = 0
	for i := 1; i < len(out); i++ {
		out[i] = 1
	}
}

func (c *HypoPowerMean) powerMean(x []float64) (pv float64, ok bool) {
	pv = 1
	for i, xi := range x {
		if xi <= 0 {
			return 0, false
		}
		pv *= math.Pow(xi, 2*c.lambda[i])
	}
	return pv, true
}

func (c *HypoPowerMean) feasOf(pt []float64) bool {
	u, x := pt[0], pt[1:]
	pv, ok := c.powerMean(x)
	if !ok {
		return false
	}
	f := pv - u*u
	return f > 0 && !math.IsNaN(f)
}

func (c *HypoPowerMean) IsFeas() bool {
	if ok, valid := c.FeasCached(); valid {
		return ok
	}
	ok := c.feasOf(c.Point())
	c.MarkFeas(ok)
	return ok
}

// IsDualFeas accepts a conservative sufficient condition (strictly
// positive components other than the hypograph coordinate) rather than
// the true dual-cone boundary.
func (c *HypoPowerMean) IsDualFeas() bool {
	if ok, valid := c.DualFeasCached(); valid {
		return ok
	}
	z := c.DualPoint()
	ok := true
	for _, zi := range z[1:] {
		if zi <= 0 {
			ok = false
			break
		}
	}
	c.MarkDualFeas(ok)
	return ok
}

func (c *HypoPowerMean) computeAux() {
	p := c.Point()
	x := p[1:]
	pv, _ := c.powerMean(x)
	c.p = pv
	c.f = pv - p[0]*p[0]
	for i, xi := range x {
		c.pArr[i] = 2 * c.lambda[i] * pv / xi
	}
	c.MarkHessAux()
}

func (c *HypoPowerMean) Grad() []float64 {
	c.computeAux()
	p := c.Point()
	u, x := p[0], p[1:]
	f := c.f
	c.grad[0] = 2 * u / f
	for i, xi := range x {
		c.grad[1+i] = -c.pArr[i]/f - 1/xi
	}
	c.MarkGrad()
	return c.grad
}

// HessProd exploits the rank-1-plus-diagonal structure of the x-block
// (see DESIGN.md for the derivation): cross terms between x_i and x_j
// factor as p_i*p_j/p, so the whole Hessian-vector product is O(n).
func (c *HypoPowerMean) HessProd(out, v []float64) {
	pt := c.Point()
	u, x := pt[0], pt[1:]
	f, pv := c.f, c.p
	pArr := c.pArr

	Fuu := 2/f + 4*u*u/(f*f)
	xv := 0.0
	for i := range x {
		xv += pArr[i] * v[1+i]
	}

	out[0] = Fuu*v[0]
	for i := range x {
		out[0] += (-2 * u * pArr[i] / (f * f)) * v[1+i]
	}

	k := 1/f - 1/pv
	for i, xi := range x {
		Fu_xi := -2 * u * pArr[i] / (f * f)
		diagExtra := 2*c.lambda[i]*pv/(xi*xi*f) + 1/(xi*xi)
		out[1+i] = Fu_xi*v[0] + pArr[i]*k*xv/f + diagExtra*v[1+i]
	}
}

func (c *HypoPowerMean) hessian() *mat.Dense {
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

func (c *HypoPowerMean) InvHessProd(out, v []float64) error {
	H := c.hessian()
	n := c.Dimension()
	var lu mat.LU
	lu.Factorize(H)
	dst := mat.NewVecDense(n, out)
	if err := lu.SolveVecTo(dst, false, mat.NewVecDense(n, v)); err != nil {
		return solverr.Wrapf(solverr.ErrNumericalFactorization, "cone: hypo-power-mean Hessian solve failed: %v", err)
	}
	return nil
}

func (c *HypoPowerMean) ResetData() {
	c.Base.ResetData()
	c.hessValid = false
}

func (c *HypoPowerMean) InNeighborhood(mu, beta float64, useInfty bool) bool {
	s, z := c.Point(), c.DualPoint()
	sz := dotv(s, z)
	if useInfty {
		return math.Abs(sz-mu*c.Nu()) <= beta*mu*c.Nu()
	}
	return sz >= (1-beta)*mu*c.Nu() && sz <= (1+beta)*mu*c.Nu()
}

func (c *HypoPowerMean) UseCorrection() bool { return false }
func (c *HypoPowerMean) Correction(out, dir []float64) {
	for i := range out {
		out[i] = 0
	}
}
