package cone

// RotatedSecondOrder is the cone {(u,v,w) : 2uv >= ||w||^2, u,v >= 0},
// barrier F(u,v,w) = -log(2uv - ||w||^2), nu = 2. It is congruent to
// SecondOrder under the orthogonal, self-transpose map Q that sends
// (u,v,w) to ((u+v)/sqrt2, (u-v)/sqrt2, w): since Q = Q^T = Q^-1, every
// operation delegates to an internal SecondOrder cone evaluated at Qx,
// with gradients and Hessian actions conjugated back by Q. This keeps
// the barrier math in one place (secondorder.go) rather than re-deriving
// the third-order correction for a second time.
type RotatedSecondOrder struct {
	soc *SecondOrder
	dim int

	// rotPrimal/rotDual are handed to the embedded SecondOrder cone via
	// LoadPoint/LoadDualPoint and must stay alive and distinct for as
	// long as it holds both points; rotGrad is the owned buffer Grad
	// returns. rotScratchA/rotScratchB are transient, reused within a
	// single HessProd/InvHessProd/Correction call. None of these
	// allocate past construction, per spec section 4.5.
	rotPrimal, rotDual, rotGrad, rotScratchA, rotScratchB []float64
}

// NewRotatedSecondOrder constructs a d-dimensional rotated second-order
// cone, d >= 3.
func NewRotatedSecondOrder(d int) *RotatedSecondOrder {
	return &RotatedSecondOrder{
		soc: NewSecondOrder(d), dim: d,
		rotPrimal:   make([]float64, d),
		rotDual:     make([]float64, d),
		rotGrad:     make([]float64, d),
		rotScratchA: make([]float64, d),
		rotScratchB: make([]float64, d),
	}
}

const invSqrt2 = 0.7071067811865476

// rotate applies Q (self-inverse) to v, writing into out.
func rotate(out, v []float64) {
	out[0] = (v[0] + v[1]) * invSqrt2
	out[1] = (v[0] - v[1]) * invSqrt2
	for i := 2; i < len(v); i++ {
		out[i] = v[i]
	}
}

func (c *RotatedSecondOrder) Dimension() int { return c.dim }
func (c *RotatedSecondOrder) Nu() float64    { return 2.0 }

func (c *RotatedSecondOrder) SetInitialPoint(out []float64) {
	out[0] = 1
	out[1] = 1
	for i := 2; i < len(out); i++ {
		out[i] = 0
	}
}

func (c *RotatedSecondOrder) LoadPoint(p []float64) {
	rotate(c.rotPrimal, p)
	c.soc.LoadPoint(c.rotPrimal)
}

func (c *RotatedSecondOrder) LoadDualPoint(d []float64) {
	rotate(c.rotDual, d)
	c.soc.LoadDualPoint(c.rotDual)
}

func (c *RotatedSecondOrder) RescalePoint(alpha float64) { c.soc.RescalePoint(alpha) }
func (c *RotatedSecondOrder) ResetData()                 { c.soc.ResetData() }
func (c *RotatedSecondOrder) IsFeas() bool               { return c.soc.IsFeas() }
func (c *RotatedSecondOrder) IsDualFeas() bool           { return c.soc.IsDualFeas() }

func (c *RotatedSecondOrder) Grad() []float64 {
	g := c.soc.Grad()
	rotate(c.rotGrad, g)
	return c.rotGrad
}

func (c *RotatedSecondOrder) HessProd(out, v []float64) {
	qv := c.rotScratchA
	rotate(qv, v)
	hv := c.rotScratchB
	c.soc.HessProd(hv, qv)
	rotate(out, hv)
}

func (c *RotatedSecondOrder) InvHessProd(out, v []float64) error {
	qv := c.rotScratchA
	rotate(qv, v)
	hv := c.rotScratchB
	if err := c.soc.InvHessProd(hv, qv); err != nil {
		return err
	}
	rotate(out, hv)
	return nil
}

func (c *RotatedSecondOrder) InNeighborhood(mu, beta float64, useInfty bool) bool {
	// c.soc already holds the rotated primal/dual points loaded via
	// LoadPoint/LoadDualPoint above, so this delegates directly.
	return c.soc.InNeighborhood(mu, beta, useInfty)
}

func (c *RotatedSecondOrder) UseCorrection() bool { return true }

func (c *RotatedSecondOrder) Correction(out, dir []float64) {
	qd := c.rotScratchA
	rotate(qd, dir)
	cv := c.rotScratchB
	c.soc.Correction(cv, qd)
	rotate(out, cv)
}

func (c *RotatedSecondOrder) UseDualBarrier() bool { return false }
