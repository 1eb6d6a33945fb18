package stepper

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/hrautila/conic/internal/linalg"
	"github.com/hrautila/conic/solver/point"
)

// refine applies the Newton system's left-hand-side operator to the
// candidate direction, compares it against the RHS that was actually
// solved for, and — only if the residual's infinity-norm and 2-norm
// both strictly decrease — replaces the direction with dir + correction,
// per spec section 4.4 step 4. Runs for at most opts.MaxRefineSteps
// rounds.
func (s *Stepper) refine(m *point.Model, pt *point.Point, mu float64) {
	for iter := 0; iter < s.opts.MaxRefineSteps; iter++ {
		res := s.systemResidual(m, pt, mu, s.dir)
		n2, ninf := normPair(res)
		if n2 == 0 && ninf == 0 {
			return
		}
		resRHS := toRHS(m, res)
		if err := s.sys.SolveSystem(m, pt, mu, resRHS, s.dir2); err != nil {
			return
		}
		candidate := addDirections(m, s.dir, s.dir2)
		res2 := s.systemResidual(m, pt, mu, candidate)
		n2b, ninfb := normPair(res2)
		if n2b < n2 && ninfb < ninf {
			copyDirection(s.dir, candidate)
		} else {
			return
		}
	}
}

// sysResidual is the Newton system's raw residual vectors, computed
// directly from the model and cones rather than from a particular
// system solver's internal factorization, so refinement works
// identically for either solver variant.
type sysResidual struct {
	rx, ry, rz, rs []float64
	rtau, rkappa   float64
}

func (s *Stepper) systemResidual(m *point.Model, pt *point.Point, mu float64, d *point.Direction) sysResidual {
	res := sysResidual{
		rx: make([]float64, m.N), ry: make([]float64, m.P),
		rz: make([]float64, m.Q), rs: make([]float64, m.Q),
	}
	aty := make([]float64, m.N)
	point.MatTVec(aty, m.A, d.Y)
	gtz := make([]float64, m.N)
	point.MatTVec(gtz, m.G, d.Z)
	for i := range res.rx {
		res.rx[i] = aty[i] + gtz[i] + m.C[i]*d.Tau - s.rhs.RX[i]
	}

	ax := make([]float64, m.P)
	point.MatVec(ax, m.A, d.X)
	for i := range res.ry {
		res.ry[i] = -ax[i] + m.B[i]*d.Tau - s.rhs.RY[i]
	}

	gx := make([]float64, m.Q)
	point.MatVec(gx, m.G, d.X)
	for i := range res.rz {
		res.rz[i] = -gx[i] + m.H[i]*d.Tau + d.S[i] - s.rhs.RZ[i]
	}

	for i, k := range m.Cones {
		r := m.ConeIdxs[i]
		sd := d.S[r[0]:r[1]]
		zd := d.Z[r[0]:r[1]]
		hv := make([]float64, len(sd))
		k.HessProd(hv, sd)
		rs := s.rhs.ConeSliceS(m, i)
		for j := range hv {
			res.rs[r[0]+j] = hv[j] + zd[j] - rs[j]
		}
	}

	res.rtau = -linalg.SvecDot(m.C, d.X) - linalg.SvecDot(m.B, d.Y) - linalg.SvecDot(m.H, d.Z) + d.Kappa - s.rhs.RTau
	res.rkappa = mu/(pt.Tau*pt.Tau)*d.Tau + d.Kappa - s.rhs.RKappa
	return res
}

// dotv is the dot product, via gonum/floats per the stepper's line
// search and residual computation wiring (SPEC_FULL.md domain stack).
func dotv(a, b []float64) float64 {
	return floats.Dot(a, b)
}

func normPair(r sysResidual) (n2, ninf float64) {
	sumSq := 0.0
	acc := func(v []float64) {
		if len(v) == 0 {
			return
		}
		sumSq += floats.Dot(v, v)
		if m := floats.Norm(v, math.Inf(1)); m > ninf {
			ninf = m
		}
	}
	acc(r.rx)
	acc(r.ry)
	acc(r.rz)
	acc(r.rs)
	sumSq += r.rtau * r.rtau
	if a := math.Abs(r.rtau); a > ninf {
		ninf = a
	}
	sumSq += r.rkappa * r.rkappa
	if a := math.Abs(r.rkappa); a > ninf {
		ninf = a
	}
	return math.Sqrt(sumSq), ninf
}

func toRHS(m *point.Model, r sysResidual) *point.RHS {
	out := point.NewRHS(m)
	for i := range out.RX {
		out.RX[i] = -r.rx[i]
	}
	for i := range out.RY {
		out.RY[i] = -r.ry[i]
	}
	for i := range out.RZ {
		out.RZ[i] = -r.rz[i]
	}
	for i := range out.RS {
		out.RS[i] = -r.rs[i]
	}
	out.RTau = -r.rtau
	out.RKappa = -r.rkappa
	return out
}

func addDirections(m *point.Model, a, b *point.Direction) *point.Direction {
	out := point.NewDirection(m)
	for i := range out.X {
		out.X[i] = a.X[i] + b.X[i]
	}
	for i := range out.Y {
		out.Y[i] = a.Y[i] + b.Y[i]
	}
	for i := range out.Z {
		out.Z[i] = a.Z[i] + b.Z[i]
	}
	for i := range out.S {
		out.S[i] = a.S[i] + b.S[i]
	}
	out.Tau = a.Tau + b.Tau
	out.Kappa = a.Kappa + b.Kappa
	return out
}

func copyDirection(dst, src *point.Direction) {
	copy(dst.X, src.X)
	copy(dst.Y, src.Y)
	copy(dst.Z, src.Z)
	copy(dst.S, src.S)
	dst.Tau = src.Tau
	dst.Kappa = src.Kappa
}
