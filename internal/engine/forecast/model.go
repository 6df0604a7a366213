// Package forecast implements the price prediction ensemble: independent
// models fitted on closing-price history, run in parallel, and fused by
// majority vote. Models are deliberately small and deterministic; a fixed
// seed and fixed iteration order make two runs over the same history
// byte-identical.
package forecast

import (
	"errors"
	"fmt"
	"math"
)

// Model fits a closing-price history and projects a price some days ahead.
// Fit must be called before Predict. Implementations are not safe for
// concurrent use; the ensemble gives each goroutine its own instance.
type Model interface {
	Name() string
	Fit(closes []float64) error
	// Predict returns the projected price after horizon days and a 0-100
	// confidence in that projection.
	Predict(horizon int) (price float64, confidence float64, err error)
	// Features describes the fitted parameters for the report.
	Features() string
}

// ErrInsufficientData is returned by Fit when the history is too short for
// the model's own requirements. The ensemble treats it as degradation, not
// failure.
var ErrInsufficientData = errors.New("insufficient data")

// FitError marks a model that could not produce a usable forecast. The
// ensemble excludes the model and records the reason.
type FitError struct {
	Model  string
	Reason string
}

func (e *FitError) Error() string {
	return fmt.Sprintf("model %s: %s", e.Model, e.Reason)
}

// solveLeastSquares solves min ||X*beta - y|| via the normal equations with
// Gaussian elimination and partial pivoting. X is row-major, rows >= cols.
// Returns an error on a singular (or numerically hopeless) system.
func solveLeastSquares(x [][]float64, y []float64) ([]float64, error) {
	rows := len(x)
	if rows == 0 || rows != len(y) {
		return nil, errors.New("least squares: bad dimensions")
	}
	cols := len(x[0])
	if rows < cols {
		return nil, errors.New("least squares: underdetermined system")
	}

	// A = X'X (cols x cols), b = X'y
	a := make([][]float64, cols)
	b := make([]float64, cols)
	for i := 0; i < cols; i++ {
		a[i] = make([]float64, cols)
		for j := 0; j < cols; j++ {
			var s float64
			for r := 0; r < rows; r++ {
				s += x[r][i] * x[r][j]
			}
			a[i][j] = s
		}
		var s float64
		for r := 0; r < rows; r++ {
			s += x[r][i] * y[r]
		}
		b[i] = s
	}

	for col := 0; col < cols; col++ {
		pivot := col
		for r := col + 1; r < cols; r++ {
			if math.Abs(a[r][col]) > math.Abs(a[pivot][col]) {
				pivot = r
			}
		}
		if math.Abs(a[pivot][col]) < 1e-12 {
			return nil, errors.New("least squares: singular system")
		}
		a[col], a[pivot] = a[pivot], a[col]
		b[col], b[pivot] = b[pivot], b[col]

		for r := col + 1; r < cols; r++ {
			f := a[r][col] / a[col][col]
			for c := col; c < cols; c++ {
				a[r][c] -= f * a[col][c]
			}
			b[r] -= f * b[col]
		}
	}

	beta := make([]float64, cols)
	for i := cols - 1; i >= 0; i-- {
		s := b[i]
		for j := i + 1; j < cols; j++ {
			s -= a[i][j] * beta[j]
		}
		beta[i] = s / a[i][i]
	}
	for _, v := range beta {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, errors.New("least squares: non-finite solution")
		}
	}
	return beta, nil
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var s float64
	for _, v := range values {
		s += v
	}
	return s / float64(len(values))
}

func variance(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	m := mean(values)
	var ss float64
	for _, v := range values {
		d := v - m
		ss += d * d
	}
	return ss / float64(len(values)-1)
}

func clampConfidence(c float64) float64 {
	if math.IsNaN(c) || c < 0 {
		return 0
	}
	if c > 100 {
		return 100
	}
	return c
}
