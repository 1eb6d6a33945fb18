package cone

import (
	"math"
	"testing"
)

func vecClose(t *testing.T, got, want []float64, tol float64, msg string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("%s: length %d, want %d", msg, len(got), len(want))
	}
	for i := range want {
		if math.Abs(got[i]-want[i]) > tol {
			t.Fatalf("%s[%d] = %v, want %v", msg, i, got[i], want[i])
		}
	}
}

func TestNonnegativeSetInitialPointIsFeasible(t *testing.T) {
	c := NewNonnegative(3)
	s := make([]float64, 3)
	c.SetInitialPoint(s)
	c.LoadPoint(s)
	if !c.IsFeas() {
		t.Fatal("central anchor point is not feasible")
	}
	c.LoadDualPoint(s)
	if !c.IsDualFeas() {
		t.Fatal("central anchor point is not dual feasible")
	}
}

func TestNonnegativeNu(t *testing.T) {
	c := NewNonnegative(5)
	if c.Nu() != 5 {
		t.Fatalf("Nu() = %v, want 5", c.Nu())
	}
	if c.Dimension() != 5 {
		t.Fatalf("Dimension() = %v, want 5", c.Dimension())
	}
}

// The Euler homogeneity identity for a logarithmically homogeneous
// barrier of parameter nu: <grad F(s), s> = -nu.
func TestNonnegativeGradEulerIdentity(t *testing.T) {
	c := NewNonnegative(4)
	s := []float64{1, 2, 3, 4}
	c.LoadPoint(s)
	if !c.IsFeas() {
		t.Fatal("point should be feasible")
	}
	g := c.Grad()
	got := 0.0
	for i := range g {
		got += g[i] * s[i]
	}
	if math.Abs(got-(-c.Nu())) > 1e-9 {
		t.Fatalf("<grad,s> = %v, want %v", got, -c.Nu())
	}
}

func TestNonnegativeHessInvHessRoundTrip(t *testing.T) {
	c := NewNonnegative(3)
	s := []float64{2, 3, 4}
	c.LoadPoint(s)
	c.IsFeas()
	c.Grad()

	v := []float64{1, -2, 0.5}
	hv := make([]float64, 3)
	c.HessProd(hv, v)
	back := make([]float64, 3)
	if err := c.InvHessProd(back, hv); err != nil {
		t.Fatalf("InvHessProd: %v", err)
	}
	vecClose(t, back, v, 1e-9, "InvHessProd(HessProd(v))")
}

func TestNonnegativeInNeighborhoodAtCenter(t *testing.T) {
	c := NewNonnegative(3)
	s := []float64{1, 1, 1}
	z := []float64{1, 1, 1}
	c.LoadPoint(s)
	c.LoadDualPoint(z)
	if !c.InNeighborhood(1.0, 0.1, false) {
		t.Fatal("central point with mu=1 should be in a 0.1-neighborhood")
	}
	if !c.InNeighborhood(1.0, 0.1, true) {
		t.Fatal("central point with mu=1 should be in a 0.1-infinity-neighborhood")
	}
}

func TestSecondOrderSetInitialPointIsFeasible(t *testing.T) {
	c := NewSecondOrder(4)
	s := make([]float64, 4)
	c.SetInitialPoint(s)
	c.LoadPoint(s)
	if !c.IsFeas() {
		t.Fatal("central anchor point is not feasible")
	}
}

func TestSecondOrderNuIsTwoRegardlessOfDimension(t *testing.T) {
	for _, d := range []int{2, 3, 4, 10} {
		c := NewSecondOrder(d)
		if c.Nu() != 2 {
			t.Errorf("NewSecondOrder(%d).Nu() = %v, want 2", d, c.Nu())
		}
	}
}

func TestSecondOrderGradEulerIdentity(t *testing.T) {
	c := NewSecondOrder(3)
	s := []float64{2, 1, 0.5}
	c.LoadPoint(s)
	if !c.IsFeas() {
		t.Fatal("point should be feasible")
	}
	g := c.Grad()
	got := 0.0
	for i := range g {
		got += g[i] * s[i]
	}
	if math.Abs(got-(-c.Nu())) > 1e-9 {
		t.Fatalf("<grad,s> = %v, want %v", got, -c.Nu())
	}
}

func TestSecondOrderHessInvHessRoundTrip(t *testing.T) {
	c := NewSecondOrder(3)
	s := []float64{2, 1, 0.5} // t=2 > ||(1,0.5)|| so strictly feasible
	c.LoadPoint(s)
	if !c.IsFeas() {
		t.Fatal("point should be feasible")
	}
	c.Grad()

	v := []float64{1, 2, 3}
	hv := make([]float64, 3)
	c.HessProd(hv, v)
	back := make([]float64, 3)
	if err := c.InvHessProd(back, hv); err != nil {
		t.Fatalf("InvHessProd: %v", err)
	}
	vecClose(t, back, v, 1e-9, "InvHessProd(HessProd(v))")
}

func TestSecondOrderFeasibilityRejectsOutsideCone(t *testing.T) {
	c := NewSecondOrder(3)
	s := []float64{1, 1, 1} // t=1, ||x||=sqrt(2) > t: outside the cone
	c.LoadPoint(s)
	if c.IsFeas() {
		t.Fatal("point outside the cone reported as feasible")
	}
}

func TestHypoPowerMeanSetInitialPointIsFeasible(t *testing.T) {
	c := NewHypoGeoMean(3)
	s := make([]float64, 4)
	c.SetInitialPoint(s)
	c.LoadPoint(s)
	if !c.IsFeas() {
		t.Fatal("central anchor point is not feasible")
	}
}

func TestHypoPowerMeanNuIsNPlusTwo(t *testing.T) {
	c := NewHypoGeoMean(3)
	if c.Nu() != 5 {
		t.Fatalf("Nu() = %v, want 5", c.Nu())
	}
}

func TestHypoPowerMeanGradEulerIdentity(t *testing.T) {
	c := NewHypoPowerMean([]float64{0.5, 0.5})
	s := []float64{0, 2, 2}
	c.LoadPoint(s)
	if !c.IsFeas() {
		t.Fatal("point should be feasible")
	}
	g := c.Grad()
	got := 0.0
	for i := range g {
		got += g[i] * s[i]
	}
	if math.Abs(got-(-c.Nu())) > 1e-9 {
		t.Fatalf("<grad,s> = %v, want %v", got, -c.Nu())
	}
}

func TestHypoPowerMeanHessInvHessRoundTrip(t *testing.T) {
	c := NewHypoPowerMean([]float64{0.5, 0.5})
	s := []float64{0, 2, 2}
	c.LoadPoint(s)
	c.IsFeas()
	c.Grad()

	v := []float64{1, -0.5, 0.25}
	hv := make([]float64, 3)
	c.HessProd(hv, v)
	back := make([]float64, 3)
	if err := c.InvHessProd(back, hv); err != nil {
		t.Fatalf("InvHessProd: %v", err)
	}
	vecClose(t, back, v, 1e-8, "InvHessProd(HessProd(v))")
}

func TestEpiRelEntropyFeasibilityMatchesHypoPerspectiveLogUnderFlip(t *testing.T) {
	c := NewEpiRelEntropy()
	// x*log(x/y) = 1*log(1) = 0, so t=0.1 >= 0 is strictly feasible.
	s := []float64{0.1, 1, 1}
	c.LoadPoint(s)
	if !c.IsFeas() {
		t.Fatal("point should be feasible")
	}
	g := c.Grad()
	got := 0.0
	for i := range g {
		got += g[i] * s[i]
	}
	if math.Abs(got-(-c.Nu())) > 1e-9 {
		t.Fatalf("<grad,s> = %v, want %v", got, -c.Nu())
	}
}

func TestEpiNormEuclIsSecondOrder(t *testing.T) {
	c := NewEpiNormEucl(3)
	s := []float64{2, 1, 0.5}
	c.LoadPoint(s)
	if !c.IsFeas() {
		t.Fatal("point should be feasible")
	}
}

func TestSecondOrderInNeighborhoodAtCenter(t *testing.T) {
	c := NewSecondOrder(3)
	// z is the dual anchor; the matching central primal point at mu=1
	// is s = mu * (-grad F(z)) = mu * (2/jdot(z,z)) * J*z = [2,0,0].
	z := []float64{1, 0, 0}
	s := []float64{2, 0, 0}
	c.LoadPoint(s)
	c.LoadDualPoint(z)
	c.Grad() // populates the cached f = jdot(u,u) that HessProd needs
	if !c.InNeighborhood(1.0, 0.5, false) {
		t.Fatal("central point with mu=1 should be in a 0.5-neighborhood")
	}
	if !c.InNeighborhood(1.0, 0.5, true) {
		t.Fatal("central point with mu=1 should be in a 0.5-infinity-neighborhood")
	}
}
