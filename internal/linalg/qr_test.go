package linalg

import (
	"math"
	"testing"
)

func TestPivotedQRApplyQRoundTrip(t *testing.T) {
	// Q is orthogonal by construction (a product of Householder
	// reflectors), so ApplyQ(ApplyQT(x)) == x regardless of the
	// particular matrix factorized.
	a := []float64{1, 2, 3, 4, 5, 6, 7, 8, 10} // 3x3 column-major
	qr := NewPivotedQR(a, 3, 3, 0)

	x := []float64{1, -2, 3}
	orig := append([]float64(nil), x...)
	qr.ApplyQT(x)
	qr.ApplyQ(x)

	for i := range x {
		if math.Abs(x[i]-orig[i]) > 1e-9 {
			t.Fatalf("ApplyQ(ApplyQT(x))[%d] = %v, want %v", i, x[i], orig[i])
		}
	}
}

func TestPivotedQRRankFullRank(t *testing.T) {
	// The identity matrix has full rank 3.
	a := []float64{1, 0, 0, 0, 1, 0, 0, 0, 1}
	qr := NewPivotedQR(a, 3, 3, 0)
	if qr.Rank != 3 {
		t.Fatalf("Rank = %d, want 3", qr.Rank)
	}
}

func TestPivotedQRRankDeficient(t *testing.T) {
	// Column 1 is exactly twice column 0: rank 1, not 2.
	a := []float64{1, 2, 2, 4}
	qr := NewPivotedQR(a, 2, 2, 0)
	if qr.Rank != 1 {
		t.Fatalf("Rank = %d, want 1", qr.Rank)
	}
}

func TestPivotedQRSolveRTriangularIdentity(t *testing.T) {
	// Factorizing an already-upper-triangular, already-orthogonal-Q
	// matrix (the identity) means R = I (up to sign) and SolveR should
	// recover b unchanged.
	a := []float64{1, 0, 0, 0, 1, 0, 0, 0, 1}
	qr := NewPivotedQR(a, 3, 3, 0)
	b := []float64{2, -3, 5}
	want := append([]float64(nil), b...)
	qr.SolveR(b)
	for i := range b {
		if math.Abs(math.Abs(b[i])-math.Abs(want[i])) > 1e-9 {
			t.Fatalf("SolveR(b)[%d] = %v, want magnitude %v", i, b[i], want[i])
		}
	}
}
