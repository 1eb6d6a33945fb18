package stepper

import (
	"math"

	"github.com/hrautila/conic/solver/point"
)

// lineSearch backtracks from a starting alpha (1.4 times the previous
// accepted alpha, capped at 1 and, where tau or kappa decreases, at
// 0.9999 of the step that would zero it) until the trial point satisfies every positivity,
// centrality, and per-cone feasibility/neighborhood check of spec
// section 4.4 step 5, or alpha falls below the floor.
func (s *Stepper) lineSearch(m *point.Model, pt *point.Point, mu float64) (float64, bool) {
	alpha := math.Min(1.0, s.prevAlpha*1.4)
	if s.dir.Tau < 0 {
		alpha = math.Min(alpha, -0.9999*pt.Tau/s.dir.Tau)
	}
	if s.dir.Kappa < 0 {
		alpha = math.Min(alpha, -0.9999*pt.Kappa/s.dir.Kappa)
	}

	const eps = 1e-12
	floor := s.opts.AlphaFloor

	for alpha >= floor {
		pt.AxpyInto(s.trial, alpha, s.dir)
		tauP, kappaP := s.trial.Tau, s.trial.Kappa
		if !(tauP*kappaP > eps) {
			alpha *= s.opts.LineSearchShrink
			continue
		}
		muP := s.trial.Mu(m.Nu())
		if !(muP > eps) {
			alpha *= s.opts.LineSearchShrink
			continue
		}
		if math.Abs(tauP*kappaP-muP) > s.opts.BetaMax*muP {
			alpha *= s.opts.LineSearchShrink
			continue
		}

		ok := true
		for i, k := range m.Cones {
			r := m.ConeIdxs[i]
			sk := s.trial.S[r[0]:r[1]]
			zk := s.trial.Z[r[0]:r[1]]
			szk := dotv(sk, zk)
			if !(szk > eps) || szk < s.opts.BetaMin*muP*k.Nu() {
				ok = false
				break
			}
			k.LoadPoint(sk)
			if !k.IsFeas() {
				ok = false
				break
			}
			k.LoadDualPoint(zk)
			if !k.IsDualFeas() {
				ok = false
				break
			}
			if !k.InNeighborhood(muP, s.opts.BetaMax, s.opts.UseInftyNbhd) {
				ok = false
				break
			}
		}
		if ok {
			return alpha, true
		}
		alpha *= s.opts.LineSearchShrink
	}
	return 0, false
}
