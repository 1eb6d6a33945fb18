package cone

import (
	"gonum.org/v1/gonum/mat"

	"github.com/hrautila/conic/internal/linalg"
	"github.com/hrautila/conic/internal/solverr"
)

// DoublyNonnegativeTriangle is the cone of d-by-d symmetric matrices
// that are simultaneously positive semidefinite and entrywise
// nonnegative, barrier F(S) = -log det(S) - sum_{i<=j} log(S_ij), with
// nu = d + SvecDim(d). Because the off-diagonal svec scaling by
// sqrt(2) cancels exactly in both the first and second derivative of
// -log(S_ij) with respect to the svec coordinate, the elementwise term
// has exactly the nonnegative-orthant cone's grad/Hess acting on the
// svec vector directly: no separate rescaling step is needed here,
// which is the svec convention (spec section 4.1) paying for itself.
type DoublyNonnegativeTriangle struct {
	psd  *PSDTriangle
	nn   *Nonnegative
	d, n int

	hessMat *mat.Dense
	hessOK  bool
}

// NewDoublyNonnegativeTriangle constructs the cone over d-by-d
// matrices; Dimension() is linalg.SvecDim(d).
func NewDoublyNonnegativeTriangle(d int) *DoublyNonnegativeTriangle {
	n := linalg.SvecDim(d)
	return &DoublyNonnegativeTriangle{
		psd: NewPSDTriangle(d),
		nn:  NewNonnegative(n),
		d:   d, n: n,
	}
}

func (c *DoublyNonnegativeTriangle) Dimension() int { return c.n }
func (c *DoublyNonnegativeTriangle) Nu() float64    { return float64(c.d) + float64(c.n) }

func (c *DoublyNonnegativeTriangle) SetInitialPoint(out []float64) {
	c.psd.SetInitialPoint(out)
}

func (c *DoublyNonnegativeTriangle) LoadPoint(p []float64) {
	c.psd.LoadPoint(p)
	c.nn.LoadPoint(p)
	c.hessOK = false
}
func (c *DoublyNonnegativeTriangle) LoadDualPoint(d []float64) {
	c.psd.LoadDualPoint(d)
	c.nn.LoadDualPoint(d)
}
func (c *DoublyNonnegativeTriangle) RescalePoint(alpha float64) {
	c.psd.RescalePoint(alpha)
	c.nn.RescalePoint(alpha)
	c.hessOK = false
}
func (c *DoublyNonnegativeTriangle) ResetData() {
	c.psd.ResetData()
	c.nn.ResetData()
	c.hessOK = false
}

func (c *DoublyNonnegativeTriangle) IsFeas() bool {
	return c.psd.IsFeas() && c.nn.IsFeas()
}
func (c *DoublyNonnegativeTriangle) IsDualFeas() bool {
	return c.psd.IsDualFeas() && c.nn.IsDualFeas()
}

func (c *DoublyNonnegativeTriangle) Grad() []float64 {
	gp := c.psd.Grad()
	gn := c.nn.Grad()
	out := make([]float64, c.n)
	for i := range out {
		out[i] = gp[i] + gn[i]
	}
	return out
}

func (c *DoublyNonnegativeTriangle) hessian() *mat.Dense {
	if c.hessOK {
		return c.hessMat
	}
	n := c.n
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
	c.hessMat = M
	c.hessOK = true
	return M
}

func (c *DoublyNonnegativeTriangle) HessProd(out, v []float64) {
	hp := make([]float64, c.n)
	c.psd.HessProd(hp, v)
	hn := make([]float64, c.n)
	c.nn.HessProd(hn, v)
	for i := range out {
		out[i] = hp[i] + hn[i]
	}
}

func (c *DoublyNonnegativeTriangle) InvHessProd(out, v []float64) error {
	H := c.hessian()
	var lu mat.LU
	lu.Factorize(H)
	dst := mat.NewVecDense(c.n, out)
	if err := lu.SolveVecTo(dst, false, mat.NewVecDense(c.n, v)); err != nil {
		return solverr.Wrapf(solverr.ErrNumericalFactorization, "cone: doubly-nonnegative Hessian solve failed: %v", err)
	}
	return nil
}

func (c *DoublyNonnegativeTriangle) InNeighborhood(mu, beta float64, useInfty bool) bool {
	return c.psd.InNeighborhood(mu, beta, useInfty) && c.nn.InNeighborhood(mu, beta, useInfty)
}

func (c *DoublyNonnegativeTriangle) UseCorrection() bool { return true }

func (c *DoublyNonnegativeTriangle) Correction(out, dir []float64) {
	cp := make([]float64, c.n)
	c.psd.Correction(cp, dir)
	cn := make([]float64, c.n)
	c.nn.Correction(cn, dir)
	for i := range out {
		out[i] = cp[i] + cn[i]
	}
}

func (c *DoublyNonnegativeTriangle) UseDualBarrier() bool { return false }
