package cone

import "math"

// Nonnegative is the nonnegative orthant cone {x in R^d : x >= 0}, its
// own dual, with barrier F(x) = -sum(log x_i) and nu = d.
type Nonnegative struct {
	Base
	grad []float64
}

// NewNonnegative constructs a d-dimensional nonnegative orthant cone.
func NewNonnegative(d int) *Nonnegative {
	c := &Nonnegative{Base: NewBase(d, float64(d), false)}
	c.grad = make([]float64, d)
	return c
}

func (c *Nonnegative) SetInitialPoint(out []float64) {
	for i := range out {
		out[i] = 1
	}
}

func (c *Nonnegative) IsFeas() bool {
	if ok, valid := c.FeasCached(); valid {
		return ok
	}
	s := c.Point()
	feas := true
	for _, v := range s {
		if !(v > 0) || math.IsNaN(v) || math.IsInf(v, 0) {
			feas = false
			break
		}
	}
	c.MarkFeas(feas)
	return feas
}

func (c *Nonnegative) IsDualFeas() bool {
	if ok, valid := c.DualFeasCached(); valid {
		return ok
	}
	z := c.DualPoint()
	feas := true
	for _, v := range z {
		if !(v > 0) || math.IsNaN(v) || math.IsInf(v, 0) {
			feas = false
			break
		}
	}
	c.MarkDualFeas(feas)
	return feas
}

func (c *Nonnegative) Grad() []float64 {
	s := c.Point()
	for i, v := range s {
		c.grad[i] = -1.0 / v
	}
	c.MarkGrad()
	return c.grad
}

func (c *Nonnegative) HessProd(out, v []float64) {
	s := c.Point()
	for i := range out {
		out[i] = v[i] / (s[i] * s[i])
	}
}

func (c *Nonnegative) InvHessProd(out, v []float64) error {
	s := c.Point()
	for i := range out {
		out[i] = v[i] * s[i] * s[i]
	}
	return nil
}

func (c *Nonnegative) InNeighborhood(mu, beta float64, useInfty bool) bool {
	s, z := c.Point(), c.DualPoint()
	if useInfty {
		for i := range s {
			dev := math.Abs(s[i]*z[i] - mu)
			if dev > beta*mu {
				return false
			}
		}
		return true
	}
	sumsq := 0.0
	for i := range s {
		d := s[i]*z[i]/mu - 1
		sumsq += d * d
	}
	return math.Sqrt(sumsq) <= beta*math.Sqrt(float64(len(s)))
}

func (c *Nonnegative) UseCorrection() bool { return true }

// Correction for the nonnegative orthant's barrier -sum(log x_i):
// F'''_i = -2/s_i^3, so (1/2) D^3F(s)[d,d]_i = -d_i^2 / s_i^3.
func (c *Nonnegative) Correction(out, dir []float64) {
	s := c.Point()
	for i := range out {
		out[i] = -dir[i] * dir[i] / (s[i] * s[i] * s[i])
	}
}
