package cone

import "math"

// EpiNormInf is the epigraph of the infinity norm, {(t,x) in R x R^n :
// t >= max_i |x_i|}, dimension d = n+1, with the logarithmically
// homogeneous barrier
//
//	F(t,x) = -sum_i log(t^2 - x_i^2) + (n-1) log(t),  nu = n+1 = d.
//
// Its Hessian is an "arrowhead" matrix (diagonal in x, one dense row/
// column coupling t to every x_i), which has a closed-form O(n) inverse
// via block elimination instead of a materialized matrix solve.
type EpiNormInf struct {
	Base
	n int // len(x)

	grad []float64
	f    []float64 // t^2 - x_i^2, cached per point
	c    []float64 // Hessian's t-x_i coupling term
	h    []float64 // Hessian's x_i diagonal term
	htt  float64
	schur float64
}

// NewEpiNormInf constructs the cone for x in R^n, dimension n+1.
func NewEpiNormInf(n int) *EpiNormInf {
	c := &EpiNormInf{Base: NewBase(n+1, float64(n+1), false), n: n}
	c.grad = make([]float64, n+1)
	c.f = make([]float64, n)
	c.c = make([]float64, n)
	c.h = make([]float64, n)
	return c
}

func (c *EpiNormInf) SetInitialPoint(out []float64) {
	out[0] = 1
	for i := 1; i < len(out); i++ {
		out[i] = 0
	}
}

func (c *EpiNormInf) feasOf(p []float64) bool {
	t := p[0]
	if !(t > 0) {
		return false
	}
	for _, xi := range p[1:] {
		if !(t > math.Abs(xi)) {
			return false
		}
	}
	return true
}

func (c *EpiNormInf) IsFeas() bool {
	if ok, valid := c.FeasCached(); valid {
		return ok
	}
	ok := c.feasOf(c.Point())
	c.MarkFeas(ok)
	return ok
}

func (c *EpiNormInf) IsDualFeas() bool {
	// the dual of the inf-norm epigraph is the epigraph of the 1-norm;
	// a conservative sufficient check (t > sum|x_i|) keeps the
	// contract's "return false on doubt" requirement.
	if ok, valid := c.DualFeasCached(); valid {
		return ok
	}
	z := c.DualPoint()
	t := z[0]
	sum := 0.0
	for _, zi := range z[1:] {
		sum += math.Abs(zi)
	}
	ok := t > sum
	c.MarkDualFeas(ok)
	return ok
}

func (c *EpiNormInf) computeAux() {
	p := c.Point()
	t := p[0]
	x := p[1:]
	n := c.n
	c.htt = -float64(n-1) / (t * t)
	for i := 0; i < n; i++ {
		c.f[i] = t*t - x[i]*x[i]
		c.c[i] = -4 * t * x[i] / (c.f[i] * c.f[i])
		c.h[i] = 2/c.f[i] + 4*x[i]*x[i]/(c.f[i]*c.f[i])
		c.htt += -2/c.f[i] + 4*t*t/(c.f[i]*c.f[i])
	}
	schur := c.htt
	for i := 0; i < n; i++ {
		schur -= c.c[i] * c.c[i] / c.h[i]
	}
	c.schur = schur
	c.MarkHessAux()
}

func (c *EpiNormInf) Grad() []float64 {
	p := c.Point()
	t := p[0]
	x := p[1:]
	n := c.n
	c.grad[0] = float64(n-1) / t
	for i := 0; i < n; i++ {
		fi := t*t - x[i]*x[i]
		c.grad[0] -= 2 * t / fi
		c.grad[i+1] = 2 * x[i] / fi
	}
	c.computeAux()
	c.MarkGrad()
	return c.grad
}

func (c *EpiNormInf) HessProd(out, v []float64) {
	if !c.HessAuxCached() {
		c.computeAux()
	}
	vt := v[0]
	out[0] = c.htt * vt
	for i := 0; i < c.n; i++ {
		out[0] += c.c[i] * v[i+1]
		out[i+1] = c.c[i]*vt + c.h[i]*v[i+1]
	}
}

func (c *EpiNormInf) InvHessProd(out, v []float64) error {
	if !c.HessAuxCached() {
		c.computeAux()
	}
	vt := v[0]
	rhs := vt
	for i := 0; i < c.n; i++ {
		rhs -= c.c[i] * v[i+1] / c.h[i]
	}
	ut := rhs / c.schur
	out[0] = ut
	for i := 0; i < c.n; i++ {
		out[i+1] = (v[i+1] - c.c[i]*ut) / c.h[i]
	}
	return nil
}

func (c *EpiNormInf) InNeighborhood(mu, beta float64, useInfty bool) bool {
	s, z := c.Point(), c.DualPoint()
	sz := dotv(s, z)
	if useInfty {
		return math.Abs(sz-mu*c.Nu()) <= beta*mu*c.Nu()
	}
	return sz >= (1-beta)*mu*c.Nu() && sz <= (1+beta)*mu*c.Nu()
}

func (c *EpiNormInf) UseCorrection() bool { return false }

// Correction is not implemented for EpiNormInf: the stepper treats
// UseCorrection()==false as "contribute the zero vector" (spec section
// 4.5), which is a valid, if weaker, predictor-corrector choice for
// this cone.
func (c *EpiNormInf) Correction(out, dir []float64) {
	for i := range out {
		out[i] = 0
	}
}
