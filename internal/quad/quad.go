// Package quad integrates pure functions of time over fixed windows with a
// fixed number of equal subintervals. The bedtime kernel and the weekly
// averages both go through here so they share one discretization.
package quad

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/integrate"

	"github.com/san-kum/readysim/internal/dynamo"
)

// Grid returns n+1 equally spaced abscissae covering [a, b]. n must be at
// least 1.
func Grid(a, b float64, n int) []float64 {
	return floats.Span(make([]float64, n+1), a, b)
}

// Integral applies the composite trapezoidal rule to f over [a, b] with n
// equal subintervals. A window of zero or negative length is degenerate.
func Integral(f func(float64) float64, a, b float64, n int) (float64, error) {
	if n < 1 {
		return 0, fmt.Errorf("quad: %d subintervals: %w", n, dynamo.ErrDegenerateInput)
	}
	if !(b > a) {
		return 0, fmt.Errorf("quad: window [%g, %g]: %w", a, b, dynamo.ErrDegenerateInput)
	}

	x := Grid(a, b, n)
	y := make([]float64, len(x))
	for i, xi := range x {
		y[i] = f(xi)
	}
	return integrate.Trapezoidal(x, y), nil
}

// Average is Integral divided by the window length.
func Average(f func(float64) float64, a, b float64, n int) (float64, error) {
	v, err := Integral(f, a, b, n)
	if err != nil {
		return 0, err
	}
	return v / (b - a), nil
}
