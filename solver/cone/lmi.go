package cone

// NewLMI constructs a linear matrix inequality cone of svec-triangle
// dimension d. At the Cone-interface level an LMI constraint
// A_0 + sum_i x_i A_i >= 0 and the PSD-triangle constraint svec(S) >= 0
// are the identical barrier -logdet(smat(s)); the affine pencil
// A_0 + sum x_i A_i is folded into the model's G, h before the cone
// ever sees a point (spec section 3), so this constructor only needs
// to hand back a PSDTriangle of the right dimension. The separate name
// exists because spec section 2.2 lists "linear matrix inequality" as
// its own variant, distinguished from PSD triangle only by how the
// model layer builds G, h.
func NewLMI(d int) *PSDTriangle {
	return NewPSDTriangle(d)
}
