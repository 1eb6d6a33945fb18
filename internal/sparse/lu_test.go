package sparse

import (
	"errors"
	"math"
	"testing"

	"github.com/hrautila/conic/internal/solverr"
)

func TestFactorLUSolveKnownSystem(t *testing.T) {
	// 2x + y = 5
	// x + 3y = 10  =>  x=1, y=3
	a := []float64{2, 1, 1, 3}
	lu, err := FactorLU(a, 2)
	if err != nil {
		t.Fatalf("FactorLU: %v", err)
	}
	b := []float64{5, 10}
	lu.Solve(b)
	want := []float64{1, 3}
	for i := range want {
		if math.Abs(b[i]-want[i]) > 1e-9 {
			t.Fatalf("x[%d] = %v, want %v", i, b[i], want[i])
		}
	}
}

func TestFactorLURequiresPivoting(t *testing.T) {
	// Zero in the (0,0) position forces a row interchange during
	// elimination: 0x + y = 2, x + y = 5 => x=3, y=2.
	a := []float64{0, 1, 1, 1}
	lu, err := FactorLU(a, 2)
	if err != nil {
		t.Fatalf("FactorLU: %v", err)
	}
	b := []float64{2, 5}
	lu.Solve(b)
	want := []float64{3, 2}
	for i := range want {
		if math.Abs(b[i]-want[i]) > 1e-9 {
			t.Fatalf("x[%d] = %v, want %v", i, b[i], want[i])
		}
	}
}

func TestFactorLUSingularFails(t *testing.T) {
	// Second row is twice the first: singular.
	a := []float64{1, 2, 2, 4}
	_, err := FactorLU(a, 2)
	if err == nil {
		t.Fatal("expected error for singular matrix")
	}
	if !errors.Is(err, solverr.ErrNumericalFactorization) {
		t.Fatalf("error %v does not wrap ErrNumericalFactorization", err)
	}
}
