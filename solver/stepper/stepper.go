// Package stepper implements the predictor-corrector direction
// computation, neighborhood-constrained line search, and iterate
// update described in spec.md section 4.4: the state machine the
// orchestrator drives once per main-loop iteration.
package stepper

import (
	"math"

	"github.com/hrautila/conic/internal/linalg"
	"github.com/hrautila/conic/solver/point"
	"github.com/hrautila/conic/solver/syssolver"
)

// Options are the stepper's tunable tolerances, all with the defaults
// spec.md section 4.4 names.
type Options struct {
	BetaC       float64 // predictor/centering switch threshold, default 0.04
	BetaMax     float64 // wide neighborhood, default 0.7
	BetaMin     float64 // per-cone complementarity floor, default 0.1
	AlphaFloor  float64 // default 1e-3
	CorrAlphaFloor float64 // default 1e-6, pure-correction floor
	LineSearchShrink float64 // default 0.9, in [0.8,0.95]
	UseInftyNbhd bool
	MaxRefineSteps int // default 3
}

// DefaultOptions returns the spec-documented defaults.
func DefaultOptions() Options {
	return Options{
		BetaC: 0.04, BetaMax: 0.7, BetaMin: 0.1,
		AlphaFloor: 1e-3, CorrAlphaFloor: 1e-6,
		LineSearchShrink: 0.9, MaxRefineSteps: 3,
	}
}

// Stepper owns the scratch buffers reused every iteration.
type Stepper struct {
	opts Options
	sys  syssolver.SysSolver

	rhs     *point.RHS
	dir     *point.Direction
	dir2    *point.Direction // correction re-solve scratch
	trial   *point.Point

	corr []float64 // maxConeDim, applyCorrection scratch (spec section 4.5)

	prevAlpha float64
}

// New constructs a stepper over the given model dimensions and system
// solver; prevAlpha seeds the line search's starting point for the
// first iteration.
func New(m *point.Model, sys syssolver.SysSolver, opts Options) *Stepper {
	maxConeDim := 0
	for _, k := range m.Cones {
		if d := k.Dimension(); d > maxConeDim {
			maxConeDim = d
		}
	}
	return &Stepper{
		opts: opts, sys: sys,
		rhs:  point.NewRHS(m),
		dir:  point.NewDirection(m),
		dir2: point.NewDirection(m),
		trial: point.NewPoint(m.N, m.P, m.Q),
		corr: make([]float64, maxConeDim),
		prevAlpha: 1.0,
	}
}

// Step performs one full predictor-corrector iteration: refresh cones,
// update the system LHS, branch on centrality, solve (with an optional
// correction re-solve), refine, line-search, and commit. It returns the
// accepted step length (0 on line-search failure, in which case the
// caller should declare numerical failure) and the resulting mu.
func (s *Stepper) Step(m *point.Model, pt *point.Point, res *point.Residuals) (alpha, mu float64, ok bool) {
	mu = pt.Mu(m.Nu())
	rt := math.Sqrt(mu)

	s.refreshCones(m, pt, rt)

	for _, k := range m.Cones {
		k.Grad() // populates the Hessian-aux cache UpdateLHS's InvHessProd calls rely on
	}

	if err := s.sys.UpdateLHS(m, pt, mu); err != nil {
		return 0, mu, false
	}

	centered := s.allInNeighborhood(m, mu, s.opts.BetaC)

	if centered {
		s.buildPredictRHS(m, pt, res)
	} else {
		s.buildCenterRHS(m, pt, mu)
	}

	if err := s.sys.SolveSystem(m, pt, mu, s.rhs, s.dir); err != nil {
		return 0, mu, false
	}

	if err := s.applyCorrection(m, pt, mu); err != nil {
		return 0, mu, false
	}
	s.refine(m, pt, mu)

	alpha, ok = s.lineSearch(m, pt, mu)
	if !ok {
		return 0, mu, false
	}

	pt.Update(alpha, s.dir)
	s.prevAlpha = alpha
	mu = pt.Mu(m.Nu())
	return alpha, mu, pt.Tau > 0 && pt.Kappa > 0 && mu > 0
}

// refreshCones rescales the loaded primal points by 1/rt, loads dual
// points, and clears freshness, per spec section 4.4 step 1.
func (s *Stepper) refreshCones(m *point.Model, pt *point.Point, rt float64) {
	for i, k := range m.Cones {
		r := m.ConeIdxs[i]
		sk := pt.S[r[0]:r[1]]
		k.LoadPoint(sk)
		k.RescalePoint(1 / rt)
		k.LoadDualPoint(pt.Z[r[0]:r[1]])
	}
}

func (s *Stepper) allInNeighborhood(m *point.Model, mu, beta float64) bool {
	for _, k := range m.Cones {
		if !k.IsFeas() || !k.IsDualFeas() {
			return false
		}
		if !k.InNeighborhood(mu, beta, s.opts.UseInftyNbhd) {
			return false
		}
	}
	return true
}

func (s *Stepper) buildPredictRHS(m *point.Model, pt *point.Point, res *point.Residuals) {
	copy(s.rhs.RX, res.RX)
	copy(s.rhs.RY, res.RY)
	copy(s.rhs.RZ, res.RZ)
	s.rhs.RTau = pt.Kappa + dotScaled(m, pt)
	for i := range m.Cones {
		r := m.ConeIdxs[i]
		rs := s.rhs.ConeSliceS(m, i)
		z := pt.Z[r[0]:r[1]]
		for j := range rs {
			rs[j] = -z[j]
		}
	}
	s.rhs.RKappa = -pt.Kappa
}

func (s *Stepper) buildCenterRHS(m *point.Model, pt *point.Point, mu float64) {
	for i := range s.rhs.RX {
		s.rhs.RX[i] = 0
	}
	for i := range s.rhs.RY {
		s.rhs.RY[i] = 0
	}
	for i := range s.rhs.RZ {
		s.rhs.RZ[i] = 0
	}
	s.rhs.RTau = 0
	rt := math.Sqrt(mu)
	for i, k := range m.Cones {
		r := m.ConeIdxs[i]
		rs := s.rhs.ConeSliceS(m, i)
		z := pt.Z[r[0]:r[1]]
		g := k.Grad()
		for j := range rs {
			rs[j] = -z[j] - rt*g[j]
		}
	}
	s.rhs.RKappa = -pt.Kappa + mu/pt.Tau
}

// dotScaled computes c^T x - b^T y - h^T z for the predict RHS's r_tau,
// via linalg.SvecDot for every term, consistent with the same
// c^Tx/b^Ty/h^Tz pattern in syssolver/qrchol.go's tau solve: h and z may
// carry svec-scaled PSD-cone coordinates, so every place the module
// computes that family of terms (here, refine.go's residual and
// qrchol.go's tau solve) goes through the svec-aware dot product rather
// than a second, plain-Euclidean one.
func dotScaled(m *point.Model, pt *point.Point) float64 {
	return linalg.SvecDot(m.C, pt.X) - linalg.SvecDot(m.B, pt.Y) - linalg.SvecDot(m.H, pt.Z)
}

// applyCorrection adds each cone's third-order correction term to r_s
// and re-solves, per spec section 4.5. Cones with UseCorrection false
// contribute nothing; if none of the cones in the model implement it,
// the first-order direction in s.dir is left untouched.
func (s *Stepper) applyCorrection(m *point.Model, pt *point.Point, mu float64) error {
	any := false
	for _, k := range m.Cones {
		if k.UseCorrection() {
			any = true
			break
		}
	}
	if !any {
		return nil
	}
	for i, k := range m.Cones {
		if !k.UseCorrection() {
			continue
		}
		r := m.ConeIdxs[i]
		sd := s.dir.S[r[0]:r[1]]
		corr := s.corr[:len(sd)]
		k.Correction(corr, sd)
		rs := s.rhs.ConeSliceS(m, i)
		for j := range rs {
			rs[j] -= corr[j]
		}
	}
	return s.sys.SolveSystem(m, pt, mu, s.rhs, s.dir)
}
