package stepper

import (
	"math"
	"testing"

	"github.com/hrautila/conic/solver/cone"
	"github.com/hrautila/conic/solver/point"
	"github.com/hrautila/conic/solver/syssolver"
)

func TestDotvHelper(t *testing.T) {
	if got := dotv([]float64{1, 2, 3}, []float64{4, 5, 6}); math.Abs(got-32) > 1e-12 {
		t.Fatalf("dotv = %v, want 32", got)
	}
}

func TestNormPairSumsSquaresAndMax(t *testing.T) {
	r := sysResidual{
		rx:   []float64{3, 4}, // contributes 25 to n2, max 4
		ry:   []float64{0},
		rz:   []float64{-1},
		rs:   []float64{2},
		rtau: 0, rkappa: -5,
	}
	n2, ninf := normPair(r)
	wantN2 := math.Sqrt(9 + 16 + 0 + 1 + 4 + 0 + 25)
	if math.Abs(n2-wantN2) > 1e-9 {
		t.Fatalf("n2 = %v, want %v", n2, wantN2)
	}
	if ninf != 5 {
		t.Fatalf("ninf = %v, want 5", ninf)
	}
}

func tinyModel(t *testing.T) *point.Model {
	t.Helper()
	c := []float64{1}
	a := &point.DenseOrSparse{Rows: 0, Cols: 1}
	b := []float64{}
	g := &point.DenseOrSparse{Rows: 1, Cols: 1, Dense: []float64{1}}
	h := []float64{5}
	cones := []cone.Cone{cone.NewNonnegative(1)}
	m, err := point.NewModel(c, a, b, g, h, cones, 0)
	if err != nil {
		t.Fatalf("NewModel: %v", err)
	}
	return m
}

func pointDirection(m *point.Model, x, y, z, s []float64, tau, kappa float64) *point.Direction {
	d := point.NewDirection(m)
	copy(d.X, x)
	copy(d.Y, y)
	copy(d.Z, z)
	copy(d.S, s)
	d.Tau, d.Kappa = tau, kappa
	return d
}

func TestAddDirectionsAndCopyDirection(t *testing.T) {
	m := tinyModel(t)
	a := pointDirection(m, []float64{1}, []float64{}, []float64{2}, []float64{3}, 4, 5)
	b := pointDirection(m, []float64{10}, []float64{}, []float64{20}, []float64{30}, 40, 50)
	sum := addDirections(m, a, b)
	if sum.X[0] != 11 || sum.Z[0] != 22 || sum.S[0] != 33 || sum.Tau != 44 || sum.Kappa != 55 {
		t.Fatalf("addDirections produced %+v", sum)
	}
	copyDirection(a, sum)
	if a.X[0] != 11 || a.Tau != 44 {
		t.Fatalf("copyDirection left a=%+v", a)
	}
}

func socModel(t *testing.T) *point.Model {
	t.Helper()
	c := []float64{0, -1, -1}
	a := &point.DenseOrSparse{Rows: 0, Cols: 3}
	b := []float64{}
	g := &point.DenseOrSparse{Rows: 3, Cols: 3, Dense: []float64{
		-1, 0, 0,
		0, -1, 0,
		0, 0, -1,
	}}
	h := []float64{0, 0, 0}
	cones := []cone.Cone{cone.NewSecondOrder(3)}
	m, err := point.NewModel(c, a, b, g, h, cones, 0)
	if err != nil {
		t.Fatalf("NewModel: %v", err)
	}
	return m
}

// TestStepperStepFromCentralPointSOC is the second-order-cone analog of
// TestStepperStepFromCentralPoint: the same structural invariants, but
// driven through SecondOrder rather than Nonnegative, since that is
// where the Grad-before-UpdateLHS ordering this cone depends on
// actually matters.
func TestStepperStepFromCentralPointSOC(t *testing.T) {
	m := socModel(t)
	pt := point.NewPoint(m.N, m.P, m.Q)
	// s = x under G=-I, h=0; (s,z) = ((2,0,0),(1,0,0)) is the central
	// pair for SecondOrder at mu=1 (Nu=2), matching
	// TestSecondOrderInNeighborhoodAtCenter in the cone package.
	pt.X[0], pt.X[1], pt.X[2] = 2, 0, 0
	pt.S[0], pt.S[1], pt.S[2] = 2, 0, 0
	pt.Z[0], pt.Z[1], pt.Z[2] = 1, 0, 0
	pt.Tau, pt.Kappa = 1, 1

	res := point.NewResiduals(m)
	point.Compute(res, m, pt)

	sys := syssolver.NewNaiveSolver(m)
	step := New(m, sys, DefaultOptions())

	alpha, mu, ok := step.Step(m, pt, res)
	if !ok {
		t.Fatal("Step reported failure")
	}
	if !(alpha > 0 && alpha <= 1) {
		t.Fatalf("alpha = %v, want in (0,1]", alpha)
	}
	if !(mu > 0) {
		t.Fatalf("mu = %v, want > 0", mu)
	}
	if !(pt.Tau > 0) {
		t.Fatalf("pt.Tau = %v, want > 0", pt.Tau)
	}
	if !(pt.Kappa > 0) {
		t.Fatalf("pt.Kappa = %v, want > 0", pt.Kappa)
	}
}

// TestStepperStepFromCentralPoint runs one full predictor-corrector
// iteration from an exactly central starting point on a trivial
// nonnegative-orthant model, and checks the structural invariants Step
// promises: a successful step length in (0,1] and a strictly positive
// resulting tau, kappa, and mu.
func TestStepperStepFromCentralPoint(t *testing.T) {
	m := tinyModel(t)
	pt := point.NewPoint(m.N, m.P, m.Q)
	// Gx + s = h with G=1, h=5, s=1 => x=4: primal feasible, centered
	// (s*z=1=mu, tau*kappa=1=mu).
	pt.X[0] = 4
	pt.S[0] = 1
	pt.Z[0] = 1
	pt.Tau, pt.Kappa = 1, 1

	res := point.NewResiduals(m)
	point.Compute(res, m, pt)

	sys := syssolver.NewNaiveSolver(m)
	step := New(m, sys, DefaultOptions())

	alpha, mu, ok := step.Step(m, pt, res)
	if !ok {
		t.Fatal("Step reported failure")
	}
	if !(alpha > 0 && alpha <= 1) {
		t.Fatalf("alpha = %v, want in (0,1]", alpha)
	}
	if !(mu > 0) {
		t.Fatalf("mu = %v, want > 0", mu)
	}
	if !(pt.Tau > 0) {
		t.Fatalf("pt.Tau = %v, want > 0", pt.Tau)
	}
	if !(pt.Kappa > 0) {
		t.Fatalf("pt.Kappa = %v, want > 0", pt.Kappa)
	}
}
