package cone

import "math"

// HypoPerspectiveLog is the 3-dimensional hypograph of the perspective
// of the natural logarithm, {(u,v,w) : v > 0, w > 0, u <= v*log(w/v)},
// the cone used to encode exponential-style constraints (x >= exp(y) is
// a linear reparametrization of a point in this cone). Barrier
//
//	F(u,v,w) = -log(v*log(w/v) - u) - log(v) - log(w),  nu = 3.
type HypoPerspectiveLog struct {
	Base
	grad []float64

	psi  float64 // v*log(w/v) - u, cached with gradValid
	l    float64 // log(w/v) - 1
	vOwW float64 // v/w
}

// NewHypoPerspectiveLog constructs the fixed 3-dimensional cone.
func NewHypoPerspectiveLog() *HypoPerspectiveLog {
	c := &HypoPerspectiveLog{Base: NewBase(3, 3.0, false)}
	c.grad = make([]float64, 3)
	return c
}

func (c *HypoPerspectiveLog) SetInitialPoint(out []float64) {
	out[0], out[1], out[2] = -1, 1, 1
}

func (c *HypoPerspectiveLog) feasOf(p []float64) bool {
	u, v, w := p[0], p[1], p[2]
	if !(v > 0 && w > 0) {
		return false
	}
	psi := v*math.Log(w/v) - u
	return psi > 0 && !math.IsNaN(psi)
}

func (c *HypoPerspectiveLog) IsFeas() bool {
	if ok, valid := c.FeasCached(); valid {
		return ok
	}
	ok := c.feasOf(c.Point())
	c.MarkFeas(ok)
	return ok
}

func (c *HypoPerspectiveLog) IsDualFeas() bool {
	if ok, valid := c.DualFeasCached(); valid {
		return ok
	}
	z := c.DualPoint()
	// (a,b,c) is in the dual cone iff a*log(r) + b + c*r >= 0 for every
	// r = w/v > 0 (u taken at its bound v*log(w/v)). That needs a < 0
	// and c > 0, and the minimum over r, at r = -a/c, gives the strict
	// test b > a*(1 + log(c/(-a))).
	ok := false
	if z[0] < 0 && z[2] > 0 {
		bound := z[0] * (1 + math.Log(z[2]/(-z[0])))
		ok = z[1] > bound && !math.IsNaN(bound)
	}
	c.MarkDualFeas(ok)
	return ok
}

func (c *HypoPerspectiveLog) Grad() []float64 {
	p := c.Point()
	u, v, w := p[0], p[1], p[2]
	c.l = math.Log(w/v) - 1
	c.psi = v*(c.l+1) - u
	c.vOwW = v / w
	psi := c.psi
	c.grad[0] = 1 / psi
	c.grad[1] = -c.l/psi - 1/v
	c.grad[2] = -c.vOwW/psi - 1/w
	c.MarkGrad()
	return c.grad
}

func (c *HypoPerspectiveLog) hessEntries() (Fuu, Fuv, Fuw, Fvv, Fvw, Fww float64) {
	p := c.Point()
	v, w := p[1], p[2]
	psi, l, vow := c.psi, c.l, c.vOwW
	psi2 := psi * psi
	Fuu = 1 / psi2
	Fuv = -l / psi2
	Fuw = -vow / psi2
	Fvv = l*l/psi2 + 1/(v*psi) + 1/(v*v)
	Fvw = l*vow/psi2 - (1/w)/psi
	Fww = vow*vow/psi2 + v/(w*w*psi) + 1/(w*w)
	return
}

func (c *HypoPerspectiveLog) HessProd(out, v []float64) {
	Fuu, Fuv, Fuw, Fvv, Fvw, Fww := c.hessEntries()
	out[0] = Fuu*v[0] + Fuv*v[1] + Fuw*v[2]
	out[1] = Fuv*v[0] + Fvv*v[1] + Fvw*v[2]
	out[2] = Fuw*v[0] + Fvw*v[1] + Fww*v[2]
}

func (c *HypoPerspectiveLog) InvHessProd(out, rhs []float64) error {
	Fuu, Fuv, Fuw, Fvv, Fvw, Fww := c.hessEntries()
	// closed-form inverse of the symmetric 3x3 Hessian via the
	// adjugate, cheaper than a generic factorization at this fixed size.
	det := Fuu*(Fvv*Fww-Fvw*Fvw) - Fuv*(Fuv*Fww-Fvw*Fuw) + Fuw*(Fuv*Fvw-Fvv*Fuw)
	a00 := Fvv*Fww - Fvw*Fvw
	a01 := -(Fuv*Fww - Fvw*Fuw)
	a02 := Fuv*Fvw - Fvv*Fuw
	a11 := Fuu*Fww - Fuw*Fuw
	a12 := -(Fuu*Fvw - Fuv*Fuw)
	a22 := Fuu*Fvv - Fuv*Fuv
	inv := 1 / det
	out[0] = inv * (a00*rhs[0] + a01*rhs[1] + a02*rhs[2])
	out[1] = inv * (a01*rhs[0] + a11*rhs[1] + a12*rhs[2])
	out[2] = inv * (a02*rhs[0] + a12*rhs[1] + a22*rhs[2])
	return nil
}

func (c *HypoPerspectiveLog) InNeighborhood(mu, beta float64, useInfty bool) bool {
	s, z := c.Point(), c.DualPoint()
	sz := dotv(s, z)
	if useInfty {
		return math.Abs(sz-mu*c.Nu()) <= beta*mu*c.Nu()
	}
	return sz >= (1-beta)*mu*c.Nu() && sz <= (1+beta)*mu*c.Nu()
}

func (c *HypoPerspectiveLog) UseCorrection() bool { return false }

// Correction is not implemented; the third-order term for this cone
// involves the full second derivative of l and vow and is left as the
// zero-vector fallback (spec section 4.5), matching the scope choice
// already made for EpiNormInf and Power.
func (c *HypoPerspectiveLog) Correction(out, dir []float64) {
	for i := range out {
		out[i] = 0
	}
}
