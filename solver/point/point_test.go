package point

import (
	"math"
	"testing"
)

func TestPointMuFormula(t *testing.T) {
	pt := NewPoint(2, 1, 2)
	pt.S[0], pt.S[1] = 2, 3
	pt.Z[0], pt.Z[1] = 4, 5
	pt.Tau, pt.Kappa = 1, 1
	nu := 3.0
	got := pt.Mu(nu)
	want := (2*4 + 3*5 + 1*1) / (nu + 1)
	if math.Abs(got-want) > 1e-12 {
		t.Fatalf("Mu() = %v, want %v", got, want)
	}
}

func TestPointCloneIsIndependent(t *testing.T) {
	pt := NewPoint(2, 1, 2)
	pt.X[0] = 1
	clone := pt.Clone()
	clone.X[0] = 99
	if pt.X[0] != 1 {
		t.Fatal("mutating clone mutated the original")
	}
}

func TestPointUpdateAppliesDirection(t *testing.T) {
	pt := NewPoint(1, 0, 0)
	pt.X[0] = 1
	pt.Tau, pt.Kappa = 1, 1
	dir := &Direction{X: []float64{2}, Y: []float64{}, Z: []float64{}, S: []float64{}, Tau: 0.5, Kappa: -0.5}
	pt.Update(0.5, dir)
	if math.Abs(pt.X[0]-2) > 1e-12 {
		t.Fatalf("X[0] = %v, want 2", pt.X[0])
	}
	if math.Abs(pt.Tau-1.25) > 1e-12 {
		t.Fatalf("Tau = %v, want 1.25", pt.Tau)
	}
	if math.Abs(pt.Kappa-0.75) > 1e-12 {
		t.Fatalf("Kappa = %v, want 0.75", pt.Kappa)
	}
}

func TestPointAxpyIntoLeavesOriginalUntouched(t *testing.T) {
	pt := NewPoint(1, 0, 0)
	pt.X[0] = 1
	dir := &Direction{X: []float64{4}, Y: []float64{}, Z: []float64{}, S: []float64{}, Tau: 0, Kappa: 0}
	dst := NewPoint(1, 0, 0)
	pt.AxpyInto(dst, 0.25, dir)
	if pt.X[0] != 1 {
		t.Fatal("AxpyInto mutated the source point")
	}
	if math.Abs(dst.X[0]-2) > 1e-12 {
		t.Fatalf("dst.X[0] = %v, want 2", dst.X[0])
	}
}
