// Package solver is the orchestrator: Options, Status, the rank-reduction
// preprocessing and initial-point construction of spec.md section 4.6,
// and the Solver type that drives solver/stepper to termination and
// reports the data contract of spec.md section 6.
package solver

import (
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/hrautila/conic/internal/linalg"
	"github.com/hrautila/conic/internal/solverr"
	"github.com/hrautila/conic/solver/point"
	"github.com/hrautila/conic/solver/stepper"
	"github.com/hrautila/conic/solver/syssolver"
)

// Solver is the single-threaded cooperative driver of spec.md section 5:
// one Load followed by one Solve, no internal concurrency, exclusive
// ownership of its model/point/cones for the duration of the solve.
type Solver struct {
	opts   Options
	logger *slog.Logger

	origModel *point.Model
	pp        *preprocessed
	model     *point.Model

	pt  *point.Point
	res *point.Residuals
	sys syssolver.SysSolver
	step *stepper.Stepper

	status        Status
	iter          int
	startTime     time.Time
	solveTime     time.Duration
	consecSlow    int
	lastPObj      float64
	lastDObj      float64
	lastMu        float64
}

// New constructs an unloaded Solver with the given options; a zero
// Options is not valid, callers should start from DefaultOptions().
func New(opts Options) *Solver {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Solver{opts: opts, logger: logger, status: NotLoaded}
}

// Load runs preprocessing and initial-point construction (spec.md
// section 4.6) and prepares the system solver the main loop will drive.
// It returns an error — wrapping one of the internal/solverr sentinels —
// for a malformed model, a rank-deficient QRChol configuration, or a
// preprocessing-detected inconsistency; in the inconsistency case Status
// is also set to PrimalInconsistent/DualInconsistent so a caller that
// only polls Status still sees the right outcome.
func (s *Solver) Load(m *point.Model) error {
	s.origModel = m
	s.pp = preprocess(m, s.opts)
	s.model = s.pp.model

	ir := computeInitialPoint(s.model, s.opts)
	if s.opts.Preprocess {
		tol := s.opts.InitTolQR
		if tol <= 0 {
			tol = defaultQRTol
		}
		if ir.residX > tol {
			s.status = DualInconsistent
			return solverr.Wrapf(solverr.ErrInconsistent, "solver: initial x residual %.3e exceeds tolerance %.3e", ir.residX, tol)
		}
		if ir.residY > tol {
			s.status = PrimalInconsistent
			return solverr.Wrapf(solverr.ErrInconsistent, "solver: initial y residual %.3e exceeds tolerance %.3e", ir.residY, tol)
		}
	}
	s.pt = ir.pt
	s.res = point.NewResiduals(s.model)

	switch s.opts.SystemSolver {
	case QRChol:
		sys, err := syssolver.NewQRCholSolver(s.model)
		if err != nil {
			return err
		}
		s.sys = sys
	default:
		s.sys = syssolver.NewNaiveSolver(s.model)
	}

	s.step = stepper.New(s.model, s.sys, s.opts.Stepper)
	s.status = Loaded
	return nil
}

// Solve runs the main loop to termination and returns the final status,
// per the polling order of spec.md section 5: optimality, primal
// infeasibility, dual infeasibility, ill-posedness, slow progress,
// iteration limit, time limit.
func (s *Solver) Solve() Status {
	if s.status != Loaded {
		return s.status
	}
	s.status = SolveCalled
	s.startTime = time.Now()
	s.consecSlow = 0
	prevMu := math.Inf(1)

	for iter := 0; ; iter++ {
		s.iter = iter
		point.Compute(s.res, s.model, s.pt)
		mu := s.pt.Mu(s.model.Nu())
		s.lastMu = mu
		s.lastPObj, s.lastDObj = s.objectives()

		if st, done := s.checkTermination(mu, prevMu, iter); done {
			s.status = st
			break
		}

		alpha, newMu, ok := s.step.Step(s.model, s.pt, s.res)
		if !ok {
			s.status = NumericalFailure
			break
		}
		s.logIteration(iter, alpha, newMu)
		prevMu = mu
	}

	s.solveTime = time.Since(s.startTime)
	return s.status
}

func (s *Solver) objectives() (pobj, dobj float64) {
	m, pt := s.model, s.pt
	pobj = linalg.SvecDot(m.C, pt.X)/pt.Tau + m.ObjOffset
	dobj = (linalg.SvecDot(m.B, pt.Y)+linalg.SvecDot(m.H, pt.Z))/pt.Tau + m.ObjOffset
	return
}

func (s *Solver) checkTermination(mu, prevMu float64, iter int) (Status, bool) {
	m, pt, res := s.model, s.pt, s.res
	tolFeas, tolAbs, tolRel := s.opts.TolFeas, s.opts.TolAbsOpt, s.opts.TolRelOpt

	gap := s.lastPObj - s.lastDObj
	if res.NormRX < tolFeas && res.NormRY < tolFeas && res.NormRZ < tolFeas &&
		math.Abs(gap) <= tolAbs+tolRel*math.Max(1, math.Min(math.Abs(s.lastPObj), math.Abs(s.lastDObj))) {
		return Optimal, true
	}

	if pt.Tau < tolFeas*math.Max(1, pt.Kappa) {
		certDual := -(linalg.SvecDot(m.B, pt.Y) + linalg.SvecDot(m.H, pt.Z))
		switch {
		case certDual > 0 && res.NormRY < tolFeas && res.NormRZ < tolFeas:
			return PrimalInfeasible, true
		case linalg.SvecDot(m.C, pt.X) < 0 && res.NormRX < tolFeas:
			return DualInfeasible, true
		default:
			return IllPosed, true
		}
	}

	if !math.IsInf(prevMu, 1) {
		improvement := math.Abs(prevMu-mu) / math.Max(prevMu, 1e-300)
		if improvement < s.opts.TolSlow {
			s.consecSlow++
		} else {
			s.consecSlow = 0
		}
		if s.consecSlow >= 2 {
			return SlowProgress, true
		}
	}

	if iter >= s.opts.IterLimit {
		return IterationLimit, true
	}
	if s.opts.TimeLimit > 0 && time.Since(s.startTime) > s.opts.TimeLimit {
		return TimeLimit, true
	}
	return s.status, false
}

func (s *Solver) logIteration(iter int, alpha, mu float64) {
	rec := IterationRecord{
		Iter: iter, Mu: mu, Alpha: alpha, Gap: s.lastPObj - s.lastDObj,
		NormRX: s.res.NormRX, NormRY: s.res.NormRY, NormRZ: s.res.NormRZ,
		Status: s.status,
	}
	if s.opts.Trace != nil {
		s.opts.Trace(rec)
	}
	if s.opts.Verbose {
		s.logger.Info("iteration", "iter", iter, "mu", mu, "alpha", alpha,
			"gap", rec.Gap, "res_x", rec.NormRX, "res_y", rec.NormRY, "res_z", rec.NormRZ)
	}
}

// Status reports the solver's current lifecycle or termination state.
func (s *Solver) Status() Status { return s.status }

// X returns the primal variable, expanded back to the caller's original
// column order if preprocessing dropped any columns.
func (s *Solver) X() []float64 {
	if s.pt == nil {
		return nil
	}
	x := make([]float64, len(s.pt.X))
	for i := range x {
		x[i] = s.pt.X[i] / s.pt.Tau
	}
	return expandX(x, s.pp.xKeepIdxs, s.pp.origN)
}

// Y returns the equality-constraint dual variable, expanded back to the
// caller's original row order.
func (s *Solver) Y() []float64 {
	if s.pt == nil {
		return nil
	}
	y := make([]float64, len(s.pt.Y))
	for i := range y {
		y[i] = s.pt.Y[i] / s.pt.Tau
	}
	return expandY(y, s.pp.yKeepIdxs, s.pp.origP)
}

// Z returns the conic-constraint dual variable.
func (s *Solver) Z() []float64 {
	if s.pt == nil {
		return nil
	}
	z := make([]float64, len(s.pt.Z))
	for i := range z {
		z[i] = s.pt.Z[i] / s.pt.Tau
	}
	return z
}

// S returns the conic slack variable.
func (s *Solver) S() []float64 {
	if s.pt == nil {
		return nil
	}
	out := make([]float64, len(s.pt.S))
	for i := range out {
		out[i] = s.pt.S[i] / s.pt.Tau
	}
	return out
}

// Tau, Kappa, and Mu report the HSD embedding's scalar variables at the
// last committed iterate.
func (s *Solver) Tau() float64   { return s.pt.Tau }
func (s *Solver) Kappa() float64 { return s.pt.Kappa }
func (s *Solver) Mu() float64    { return s.lastMu }

// PrimalObjective and DualObjective report the normalized objective
// values at the last committed iterate.
func (s *Solver) PrimalObjective() float64 { return s.lastPObj }
func (s *Solver) DualObjective() float64   { return s.lastDObj }

// Iterations reports the number of main-loop iterations run.
func (s *Solver) Iterations() int { return s.iter }

// SolveTime reports the wall-clock duration of the last Solve call.
func (s *Solver) SolveTime() time.Duration { return s.solveTime }

// String renders a short human-readable summary of the last solve.
func (s *Solver) String() string {
	return fmt.Sprintf("status=%s iter=%d mu=%.3e pobj=%.6f dobj=%.6f time=%s",
		s.status, s.iter, s.lastMu, s.lastPObj, s.lastDObj, s.solveTime)
}
