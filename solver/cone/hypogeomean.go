package cone

// NewHypoGeoMean constructs the hypograph of the unweighted geometric
// mean, {(u,x) in R x R^n_+ : u <= (x_1*...*x_n)^(1/n)}, as the
// HypoPowerMean special case with lambda_i = 1/n for every i.
func NewHypoGeoMean(n int) *HypoPowerMean {
	lambda := make([]float64, n)
	for i := range lambda {
		lambda[i] = 1 / float64(n)
	}
	return NewHypoPowerMean(lambda)
}
