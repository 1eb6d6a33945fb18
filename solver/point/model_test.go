package point

import (
	"testing"

	"github.com/hrautila/conic/solver/cone"
)

func denseMat(rows, cols int, colMajor []float64) *DenseOrSparse {
	return &DenseOrSparse{Rows: rows, Cols: cols, Dense: colMajor}
}

func TestNewModelValidShape(t *testing.T) {
	c := []float64{1, 2}
	a := denseMat(1, 2, []float64{1, 1}) // 1x2
	b := []float64{3}
	g := denseMat(2, 2, []float64{1, 0, 0, 1}) // 2x2 identity, column-major
	h := []float64{5, 6}
	cones := []cone.Cone{cone.NewNonnegative(2)}

	m, err := NewModel(c, a, b, g, h, cones, 0)
	if err != nil {
		t.Fatalf("NewModel: %v", err)
	}
	if m.N != 2 || m.P != 1 || m.Q != 2 {
		t.Fatalf("dims = (%d,%d,%d), want (2,1,2)", m.N, m.P, m.Q)
	}
	if len(m.ConeIdxs) != 1 || m.ConeIdxs[0] != [2]int{0, 2} {
		t.Fatalf("ConeIdxs = %v, want [[0 2]]", m.ConeIdxs)
	}
}

func TestNewModelRejectsBadARows(t *testing.T) {
	c := []float64{1, 2}
	a := denseMat(2, 2, []float64{1, 1, 1, 1}) // should be 1x2
	b := []float64{3}
	g := denseMat(2, 2, []float64{1, 0, 0, 1})
	h := []float64{5, 6}
	cones := []cone.Cone{cone.NewNonnegative(2)}

	if _, err := NewModel(c, a, b, g, h, cones, 0); err == nil {
		t.Fatal("expected error for mismatched A rows")
	}
}

func TestNewModelRejectsConeDimensionMismatch(t *testing.T) {
	c := []float64{1, 2}
	a := denseMat(1, 2, []float64{1, 1})
	b := []float64{3}
	g := denseMat(2, 2, []float64{1, 0, 0, 1})
	h := []float64{5, 6}
	cones := []cone.Cone{cone.NewNonnegative(1)} // sums to 1, want 2

	if _, err := NewModel(c, a, b, g, h, cones, 0); err == nil {
		t.Fatal("expected error for cone dimension sum mismatch")
	}
}

func TestModelNuSumsConeBarriers(t *testing.T) {
	c := []float64{1, 2, 3}
	a := denseMat(0, 3, nil)
	b := []float64{}
	g := denseMat(5, 3, make([]float64, 15))
	h := make([]float64, 5)
	cones := []cone.Cone{cone.NewNonnegative(3), cone.NewSecondOrder(2)}

	m, err := NewModel(c, a, b, g, h, cones, 0)
	if err != nil {
		t.Fatalf("NewModel: %v", err)
	}
	want := 3.0 + 2.0
	if m.Nu() != want {
		t.Fatalf("Nu() = %v, want %v", m.Nu(), want)
	}
}

func TestConeSliceReturnsCorrectRange(t *testing.T) {
	c := []float64{1, 2, 3}
	a := denseMat(0, 3, nil)
	b := []float64{}
	g := denseMat(5, 3, make([]float64, 15))
	h := make([]float64, 5)
	cones := []cone.Cone{cone.NewNonnegative(3), cone.NewSecondOrder(2)}
	m, err := NewModel(c, a, b, g, h, cones, 0)
	if err != nil {
		t.Fatalf("NewModel: %v", err)
	}
	v := []float64{10, 20, 30, 40, 50}
	if got := m.ConeSlice(v, 1); len(got) != 2 || got[0] != 40 || got[1] != 50 {
		t.Fatalf("ConeSlice(v,1) = %v, want [40 50]", got)
	}
}

func TestDenseOrSparseAtMatchesBothRepresentations(t *testing.T) {
	dense := denseMat(2, 2, []float64{1, 2, 3, 4}) // col0=[1,2] col1=[3,4]
	sparse := &DenseOrSparse{
		Rows: 2, Cols: 2,
		ColPtr: []int{0, 2, 4},
		RowIdx: []int{0, 1, 0, 1},
		Val:    []float64{1, 2, 3, 4},
	}
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			if dense.At(i, j) != sparse.At(i, j) {
				t.Fatalf("At(%d,%d): dense=%v sparse=%v", i, j, dense.At(i, j), sparse.At(i, j))
			}
		}
	}
}
