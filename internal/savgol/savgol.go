// Package savgol implements Savitzky-Golay polynomial smoothing for evenly
// spaced series. The filter fits a least-squares polynomial of the given
// order to each sliding window and evaluates it at the window centre; the
// ends of the series are handled by evaluating the terminal window's fitted
// polynomial at the edge positions, so output length always equals input
// length.
package savgol

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Validate reports whether window and order form a usable filter for a
// series of n samples.
func Validate(window, order, n int) error {
	if window < 1 || window%2 == 0 {
		return fmt.Errorf("window must be odd and positive, got %d", window)
	}
	if order < 0 {
		return fmt.Errorf("polynomial order must be non-negative, got %d", order)
	}
	if order >= window {
		return fmt.Errorf("polynomial order %d must be less than window %d", order, window)
	}
	if window > n {
		return fmt.Errorf("window %d exceeds series length %d", window, n)
	}
	return nil
}

// projection builds the window x window least-squares projection matrix
// P = A (A^T A)^-1 A^T for a polynomial basis A. Row k of P gives the
// convolution weights that evaluate the fitted polynomial at window
// position k.
func projection(window, order int) (*mat.Dense, error) {
	a := mat.NewDense(window, order+1, nil)
	half := window / 2
	for i := 0; i < window; i++ {
		x := float64(i - half)
		p := 1.0
		for j := 0; j <= order; j++ {
			a.Set(i, j, p)
			p *= x
		}
	}

	var ata mat.Dense
	ata.Mul(a.T(), a)
	var inv mat.Dense
	if err := inv.Inverse(&ata); err != nil {
		return nil, fmt.Errorf("degenerate design matrix for window=%d order=%d: %w", window, order, err)
	}
	var proj mat.Dense
	proj.Product(a, &inv, a.T())
	return &proj, nil
}

// Filter smooths data with a Savitzky-Golay filter of the given window
// length and polynomial order. The input slice is not modified.
func Filter(data []float64, window, order int) ([]float64, error) {
	n := len(data)
	if err := Validate(window, order, n); err != nil {
		return nil, err
	}

	proj, err := projection(window, order)
	if err != nil {
		return nil, err
	}

	half := window / 2
	out := make([]float64, n)
	centre := mat.Row(nil, half, proj)
	for i := 0; i < n; i++ {
		switch {
		case i < half:
			// Leading edge: fitted polynomial of the first window,
			// evaluated at position i.
			out[i] = dot(mat.Row(nil, i, proj), data[:window])
		case i >= n-half:
			// Trailing edge: fitted polynomial of the last window.
			out[i] = dot(mat.Row(nil, window-(n-i), proj), data[n-window:])
		default:
			out[i] = dot(centre, data[i-half:i+half+1])
		}
	}
	return out, nil
}

func dot(a, b []float64) float64 {
	var sum float64
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}
