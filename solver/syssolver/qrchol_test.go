package syssolver

import (
	"errors"
	"math"
	"testing"

	"github.com/hrautila/conic/internal/solverr"
	"github.com/hrautila/conic/solver/cone"
	"github.com/hrautila/conic/solver/point"
)

func TestNewQRCholSolverRejectsRankDeficientA(t *testing.T) {
	// A's two rows are linearly dependent: rank 1, not full row rank 2.
	c := []float64{1, 1}
	a := denseMat(2, 2, []float64{1, 2, 2, 4}) // col-major: col0=[1,2] col1=[2,4]
	b := []float64{1, 2}
	g := denseMat(0, 2, nil)
	h := []float64{}
	m, err := point.NewModel(c, a, b, g, h, nil, 0)
	if err != nil {
		t.Fatalf("NewModel: %v", err)
	}

	_, err = NewQRCholSolver(m)
	if err == nil {
		t.Fatal("expected rank-deficient-A rejection")
	}
	if !errors.Is(err, solverr.ErrInconsistent) {
		t.Fatalf("error %v does not wrap ErrInconsistent", err)
	}
}

// TestQRCholMatchesNaiveSolver is a differential test: both solvers
// eliminate the same cone-augmented KKT system by different routes
// (QRChol via null-space elimination, Naive via direct dense LU of the
// full assembled matrix), so on an identical model/point/rhs they must
// produce the same direction up to floating-point tolerance.
func TestQRCholMatchesNaiveSolver(t *testing.T) {
	c := []float64{1, 1}
	a := denseMat(1, 2, []float64{1, 1}) // A = [1 1], 1x2
	b := []float64{3}
	g := denseMat(1, 2, []float64{1, 0}) // G = [1 0], 1x2
	h := []float64{5}
	nn := cone.NewNonnegative(1)
	cones := []cone.Cone{nn}
	m, err := point.NewModel(c, a, b, g, h, cones, 0)
	if err != nil {
		t.Fatalf("NewModel: %v", err)
	}

	pt := point.NewPoint(2, 1, 1)
	pt.X[0], pt.X[1] = 1, 2
	pt.Y[0] = 0.5
	pt.Z[0] = 0.3
	pt.S[0] = 2
	pt.Tau, pt.Kappa = 1, 1
	nn.LoadPoint(pt.S)

	mu := 0.7

	naive := NewNaiveSolver(m)
	if err := naive.UpdateLHS(m, pt, mu); err != nil {
		t.Fatalf("naive UpdateLHS: %v", err)
	}
	qrchol, err := NewQRCholSolver(m)
	if err != nil {
		t.Fatalf("NewQRCholSolver: %v", err)
	}
	if err := qrchol.UpdateLHS(m, pt, mu); err != nil {
		t.Fatalf("qrchol UpdateLHS: %v", err)
	}

	rhs := point.NewRHS(m)
	rhs.RX[0], rhs.RX[1] = 0.1, -0.2
	rhs.RY[0] = 0.05
	rhs.RZ[0] = 0.3
	rhs.RS[0] = 0.4
	rhs.RTau = 0.2
	rhs.RKappa = 0.1

	dirNaive := point.NewDirection(m)
	if err := naive.SolveSystem(m, pt, mu, rhs, dirNaive); err != nil {
		t.Fatalf("naive SolveSystem: %v", err)
	}
	dirQR := point.NewDirection(m)
	if err := qrchol.SolveSystem(m, pt, mu, rhs, dirQR); err != nil {
		t.Fatalf("qrchol SolveSystem: %v", err)
	}

	closeVec := func(name string, got, want []float64) {
		for i := range want {
			if math.Abs(got[i]-want[i]) > 1e-7 {
				t.Errorf("%s[%d] = %v, want %v (naive)", name, i, got[i], want[i])
			}
		}
	}
	closeVec("X", dirQR.X, dirNaive.X)
	closeVec("Y", dirQR.Y, dirNaive.Y)
	closeVec("Z", dirQR.Z, dirNaive.Z)
	closeVec("S", dirQR.S, dirNaive.S)
	if math.Abs(dirQR.Tau-dirNaive.Tau) > 1e-7 {
		t.Errorf("Tau = %v, want %v (naive)", dirQR.Tau, dirNaive.Tau)
	}
	if math.Abs(dirQR.Kappa-dirNaive.Kappa) > 1e-7 {
		t.Errorf("Kappa = %v, want %v (naive)", dirQR.Kappa, dirNaive.Kappa)
	}
}
