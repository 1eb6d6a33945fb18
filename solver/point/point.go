package point

// Point is the homogeneous self-dual embedding's iterate
// (x, y, z, s, tau, kappa), per spec section 3.
type Point struct {
	X []float64
	Y []float64
	Z []float64
	S []float64
	Tau   float64
	Kappa float64
}

// NewPoint allocates a zero point of the given dimensions.
func NewPoint(n, p, q int) *Point {
	return &Point{
		X: make([]float64, n),
		Y: make([]float64, p),
		Z: make([]float64, q),
		S: make([]float64, q),
	}
}

// Mu is the complementarity measure (s.z + tau*kappa)/(nu+1).
func (pt *Point) Mu(nu float64) float64 {
	sz := 0.0
	for i := range pt.S {
		sz += pt.S[i] * pt.Z[i]
	}
	return (sz + pt.Tau*pt.Kappa) / (nu + 1)
}

// AxpyInto sets dst := pt + alpha*dir, leaving pt untouched; used by the
// line search to build trial points without mutating the committed one.
func (pt *Point) AxpyInto(dst *Point, alpha float64, dir *Direction) {
	for i := range pt.X {
		dst.X[i] = pt.X[i] + alpha*dir.X[i]
	}
	for i := range pt.Y {
		dst.Y[i] = pt.Y[i] + alpha*dir.Y[i]
	}
	for i := range pt.Z {
		dst.Z[i] = pt.Z[i] + alpha*dir.Z[i]
	}
	for i := range pt.S {
		dst.S[i] = pt.S[i] + alpha*dir.S[i]
	}
	dst.Tau = pt.Tau + alpha*dir.Tau
	dst.Kappa = pt.Kappa + alpha*dir.Kappa
}

// Clone returns an independent copy with the same dimensions and
// values.
func (pt *Point) Clone() *Point {
	c := &Point{
		X: append([]float64(nil), pt.X...),
		Y: append([]float64(nil), pt.Y...),
		Z: append([]float64(nil), pt.Z...),
		S: append([]float64(nil), pt.S...),
		Tau: pt.Tau, Kappa: pt.Kappa,
	}
	return c
}

// Update commits pt += alpha*dir in place, the stepper's final step 6.
func (pt *Point) Update(alpha float64, dir *Direction) {
	for i := range pt.X {
		pt.X[i] += alpha * dir.X[i]
	}
	for i := range pt.Y {
		pt.Y[i] += alpha * dir.Y[i]
	}
	for i := range pt.Z {
		pt.Z[i] += alpha * dir.Z[i]
	}
	for i := range pt.S {
		pt.S[i] += alpha * dir.S[i]
	}
	pt.Tau += alpha * dir.Tau
	pt.Kappa += alpha * dir.Kappa
}
