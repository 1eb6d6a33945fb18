package cone

// EpiRelEntropy is the epigraph of the scalar relative entropy,
// {(t,x,y) : x,y > 0, t >= x*log(x/y)}, nu = 3. Negating t gives
// -t <= x*log(y/x) = x*(log(w/v)) with v=x, w=y, which is exactly
// HypoPerspectiveLog's defining inequality u <= v*log(w/v) with
// u = -t. The map R: (t,x,y) -> (-t,x,y) is diagonal, orthogonal, and
// self-inverse, so this delegates to HypoPerspectiveLog under R the
// same way RotatedSecondOrder delegates to SecondOrder under its
// rotation Q.
type EpiRelEntropy struct {
	hpl *HypoPerspectiveLog

	rotPrimal, rotDual, rotGrad, rotScratchA, rotScratchB [3]float64
}

// NewEpiRelEntropy constructs the fixed 3-dimensional cone.
func NewEpiRelEntropy() *EpiRelEntropy {
	return &EpiRelEntropy{hpl: NewHypoPerspectiveLog()}
}

func flipFirst(out, v []float64) {
	out[0] = -v[0]
	out[1] = v[1]
	out[2] = v[2]
}

func (c *EpiRelEntropy) Dimension() int { return 3 }
func (c *EpiRelEntropy) Nu() float64    { return 3.0 }

func (c *EpiRelEntropy) SetInitialPoint(out []float64) {
	out[0], out[1], out[2] = 1, 1, 1
}

func (c *EpiRelEntropy) LoadPoint(p []float64) {
	flipFirst(c.rotPrimal[:], p)
	c.hpl.LoadPoint(c.rotPrimal[:])
}

func (c *EpiRelEntropy) LoadDualPoint(d []float64) {
	flipFirst(c.rotDual[:], d)
	c.hpl.LoadDualPoint(c.rotDual[:])
}

func (c *EpiRelEntropy) RescalePoint(alpha float64) { c.hpl.RescalePoint(alpha) }
func (c *EpiRelEntropy) ResetData()                 { c.hpl.ResetData() }
func (c *EpiRelEntropy) IsFeas() bool               { return c.hpl.IsFeas() }
func (c *EpiRelEntropy) IsDualFeas() bool           { return c.hpl.IsDualFeas() }

func (c *EpiRelEntropy) Grad() []float64 {
	g := c.hpl.Grad()
	flipFirst(c.rotGrad[:], g)
	return c.rotGrad[:]
}

func (c *EpiRelEntropy) HessProd(out, v []float64) {
	qv := c.rotScratchA[:]
	flipFirst(qv, v)
	hv := c.rotScratchB[:]
	c.hpl.HessProd(hv, qv)
	flipFirst(out, hv)
}

func (c *EpiRelEntropy) InvHessProd(out, v []float64) error {
	qv := c.rotScratchA[:]
	flipFirst(qv, v)
	hv := c.rotScratchB[:]
	if err := c.hpl.InvHessProd(hv, qv); err != nil {
		return err
	}
	flipFirst(out, hv)
	return nil
}

func (c *EpiRelEntropy) InNeighborhood(mu, beta float64, useInfty bool) bool {
	return c.hpl.InNeighborhood(mu, beta, useInfty)
}

func (c *EpiRelEntropy) UseCorrection() bool { return false }

func (c *EpiRelEntropy) Correction(out, dir []float64) {
	for i := range out {
		out[i] = 0
	}
}

func (c *EpiRelEntropy) UseDualBarrier() bool { return false }
