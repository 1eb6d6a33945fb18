package sparse

import (
	"errors"
	"math"
	"testing"

	"github.com/hrautila/conic/internal/solverr"
)

func TestFactorSolveKnownSystem(t *testing.T) {
	// A = [[4,2],[2,3]] (lower triangle, row-major, upper ignored):
	// 4x + 2y = 6
	// 2x + 3y = 5  =>  x=1, y=1
	a := []float64{4, 0, 2, 3}
	ldl, err := Factor(a, 2)
	if err != nil {
		t.Fatalf("Factor: %v", err)
	}
	b := []float64{6, 5}
	ldl.Solve(b)
	want := []float64{1, 1}
	for i := range want {
		if math.Abs(b[i]-want[i]) > 1e-9 {
			t.Fatalf("x[%d] = %v, want %v", i, b[i], want[i])
		}
	}
}

func TestFactorReusableAcrossRHS(t *testing.T) {
	a := []float64{4, 0, 2, 3}
	ldl, err := Factor(a, 2)
	if err != nil {
		t.Fatalf("Factor: %v", err)
	}
	b1 := []float64{6, 5}
	ldl.Solve(b1)
	want1 := []float64{1, 1}
	for i := range want1 {
		if math.Abs(b1[i]-want1[i]) > 1e-9 {
			t.Fatalf("b1 x[%d] = %v, want %v", i, b1[i], want1[i])
		}
	}

	// Same factorization, a different right-hand side:
	// 4x + 2y = 8, 2x + 3y = 7 => x=1, y=(8-4)/2... solve directly: from
	// eq1 x=(8-2y)/4; sub into eq2: 2*(8-2y)/4+3y=7 => (8-2y)/2+3y=7 =>
	// 4-y+3y=7 => 2y=3 => y=1.5, x=(8-3)/4=1.25.
	b2 := []float64{8, 7}
	ldl.Solve(b2)
	want2 := []float64{1.25, 1.5}
	for i := range want2 {
		if math.Abs(b2[i]-want2[i]) > 1e-9 {
			t.Fatalf("b2 x[%d] = %v, want %v", i, b2[i], want2[i])
		}
	}
}

func TestFactorPicksLargestDiagonalPivot(t *testing.T) {
	// A = [[1,0],[0,5]]: the (1,1) entry is the larger-magnitude
	// diagonal, so it should be pivoted first. The solve should still
	// be correct regardless of pivot order.
	a := []float64{1, 0, 0, 5}
	ldl, err := Factor(a, 2)
	if err != nil {
		t.Fatalf("Factor: %v", err)
	}
	if ldl.piv[0] != 1 {
		t.Fatalf("first pivot = row %d, want row 1", ldl.piv[0])
	}
	b := []float64{3, 10}
	ldl.Solve(b)
	want := []float64{3, 2}
	for i := range want {
		if math.Abs(b[i]-want[i]) > 1e-9 {
			t.Fatalf("x[%d] = %v, want %v", i, b[i], want[i])
		}
	}
}

func TestFactorBelowPivotTolFails(t *testing.T) {
	// A diagonal entry of exactly zero with nothing to pivot to above
	// tolerance should fail.
	a := []float64{0, 0, 0, 0}
	_, err := Factor(a, 2)
	if err == nil {
		t.Fatal("expected error for zero matrix")
	}
	if !errors.Is(err, solverr.ErrNumericalFactorization) {
		t.Fatalf("error %v does not wrap ErrNumericalFactorization", err)
	}
}
