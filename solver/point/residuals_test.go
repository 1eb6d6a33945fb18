package point

import (
	"math"
	"testing"

	"github.com/hrautila/conic/solver/cone"
)

func TestMatVecMatTVecDense(t *testing.T) {
	// A = [[1,2],[3,4]] column-major: col0=[1,3] col1=[2,4]
	a := denseMat(2, 2, []float64{1, 3, 2, 4})
	v := []float64{1, 1}
	out := make([]float64, 2)
	MatVec(out, a, v)
	want := []float64{3, 7} // row0: 1*1+2*1=3, row1: 3*1+4*1=7
	for i := range want {
		if math.Abs(out[i]-want[i]) > 1e-12 {
			t.Fatalf("MatVec[%d] = %v, want %v", i, out[i], want[i])
		}
	}

	tout := make([]float64, 2)
	MatTVec(tout, a, v)
	wantT := []float64{4, 6} // col0.v=1+3=4, col1.v=2+4=6
	for i := range wantT {
		if math.Abs(tout[i]-wantT[i]) > 1e-12 {
			t.Fatalf("MatTVec[%d] = %v, want %v", i, tout[i], wantT[i])
		}
	}
}

func TestMatVecMatchesSparseAndDense(t *testing.T) {
	dense := denseMat(2, 2, []float64{1, 3, 2, 4})
	sparse := &DenseOrSparse{
		Rows: 2, Cols: 2,
		ColPtr: []int{0, 2, 4},
		RowIdx: []int{0, 1, 0, 1},
		Val:    []float64{1, 3, 2, 4},
	}
	v := []float64{2, -1}
	outD := make([]float64, 2)
	outS := make([]float64, 2)
	MatVec(outD, dense, v)
	MatVec(outS, sparse, v)
	for i := range outD {
		if math.Abs(outD[i]-outS[i]) > 1e-12 {
			t.Fatalf("dense/sparse MatVec mismatch at %d: %v vs %v", i, outD[i], outS[i])
		}
	}
}

func TestResidualsComputeAtFeasiblePoint(t *testing.T) {
	// minimize c^T x s.t. G x + s = h, s >= 0, no equality constraints.
	// c = [1], G = [[1]], h = [5]. x=3 => s = h - Gx = 2 >= 0.
	c := []float64{1}
	a := denseMat(0, 1, nil)
	b := []float64{}
	g := denseMat(1, 1, []float64{1})
	h := []float64{5}
	cones := []cone.Cone{cone.NewNonnegative(1)}
	m, err := NewModel(c, a, b, g, h, cones, 0)
	if err != nil {
		t.Fatalf("NewModel: %v", err)
	}

	pt := NewPoint(1, 0, 1)
	pt.X[0] = 3
	pt.S[0] = 2
	pt.Tau = 1
	pt.Kappa = 0
	pt.Y = []float64{}
	pt.Z[0] = 0

	r := NewResiduals(m)
	Compute(r, m, pt)

	// r_x = -A^T y - G^T z - c*tau = -0 - 0 - 1*1 = -1
	if math.Abs(r.RX[0]-(-1)) > 1e-12 {
		t.Fatalf("RX[0] = %v, want -1", r.RX[0])
	}
	// r_z = s + Gx - h*tau = 2 + 3 - 5 = 0
	if math.Abs(r.RZ[0]) > 1e-12 {
		t.Fatalf("RZ[0] = %v, want 0", r.RZ[0])
	}
	if r.NormRZ > 1e-12 {
		t.Fatalf("NormRZ = %v, want 0", r.NormRZ)
	}
}
