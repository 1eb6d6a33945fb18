package point

// Direction is the Newton step the system solver produces and the
// stepper's line search walks along: (x_dir, y_dir, z_dir, s_dir) plus
// the scalar tau_dir/kappa_dir, per spec section 3.
type Direction struct {
	X []float64
	Y []float64
	Z []float64
	S []float64
	Tau   float64
	Kappa float64
}

// NewDirection allocates a zeroed direction sized to m.
func NewDirection(m *Model) *Direction {
	return &Direction{
		X: make([]float64, m.N),
		Y: make([]float64, m.P),
		Z: make([]float64, m.Q),
		S: make([]float64, m.Q),
	}
}

// ConeSliceZ and ConeSliceS return the sub-slice of Z or S belonging to
// cone i.
func (d *Direction) ConeSliceZ(m *Model, i int) []float64 {
	r := m.ConeIdxs[i]
	return d.Z[r[0]:r[1]]
}
func (d *Direction) ConeSliceS(m *Model, i int) []float64 {
	r := m.ConeIdxs[i]
	return d.S[r[0]:r[1]]
}

// RHS is the right-hand side the system solver consumes: (r_x, r_y,
// r_z, r_tau) plus per-cone r_s and a scalar r_kappa. A cone whose
// UseDualBarrier is true has its r_s/r_z roles swapped by the stepper
// before the RHS reaches the system solver, per the cone contract.
type RHS struct {
	RX []float64
	RY []float64
	RZ []float64
	RTau float64

	RS     []float64
	RKappa float64
}

// NewRHS allocates a zeroed RHS sized to m.
func NewRHS(m *Model) *RHS {
	return &RHS{
		RX: make([]float64, m.N),
		RY: make([]float64, m.P),
		RZ: make([]float64, m.Q),
		RS: make([]float64, m.Q),
	}
}

func (r *RHS) ConeSliceS(m *Model, i int) []float64 {
	rg := m.ConeIdxs[i]
	return r.RS[rg[0]:rg[1]]
}
