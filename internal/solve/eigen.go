package solve

import (
	"math"
	"math/cmplx"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/readysim/internal/dynamo"
)

// Eigenvalues of a general square matrix, sorted by descending real part and
// then descending imaginary part.
func Eigenvalues(a mat.Matrix) ([]complex128, error) {
	r, c := a.Dims()
	if r != c || r == 0 {
		return nil, dynamo.ErrDimensionMismatch
	}
	var eig mat.Eigen
	if !eig.Factorize(a, mat.EigenNone) {
		return nil, dynamo.ErrNoConvergence
	}
	vals := eig.Values(nil)
	sort.Slice(vals, func(i, j int) bool {
		if real(vals[i]) != real(vals[j]) {
			return real(vals[i]) > real(vals[j])
		}
		return imag(vals[i]) > imag(vals[j])
	})
	return vals, nil
}

// SpectralAbscissa is the largest real part.
func SpectralAbscissa(vals []complex128) float64 {
	m := math.Inf(-1)
	for _, v := range vals {
		m = math.Max(m, real(v))
	}
	return m
}

// SpectralRadius is the largest modulus.
func SpectralRadius(vals []complex128) float64 {
	m := 0.0
	for _, v := range vals {
		m = math.Max(m, cmplx.Abs(v))
	}
	return m
}
