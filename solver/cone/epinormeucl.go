package cone

// NewEpiNormEucl constructs the epigraph of the Euclidean norm,
// {(t,x) in R x R^(d-1) : t >= ||x||_2}. This is, coordinate for
// coordinate, the same cone SecondOrder already implements; the
// separate name exists because spec section 2.2 lists it as its own
// variant distinct from the rotated form.
func NewEpiNormEucl(d int) *SecondOrder {
	return NewSecondOrder(d)
}
