package domain

import (
	"fmt"
	"math"
)

// savgolFilter smooths a signal with the classical Savitzky-Golay method: a
// degree-P polynomial is least-squares fitted to each W-point neighborhood
// and evaluated at the center. Because the fit is linear in the samples, the
// interior reduces to a fixed convolution; the first and last halflen points
// are instead produced by fitting the leading/trailing W samples and
// evaluating the polynomial at the edge positions, matching the standard
// polynomial-interpolation edge treatment.
//
// Weights are derived once at construction from the least-squares normal
// equations, not hardcoded per window size.
type savgolFilter struct {
	window  int
	halflen int
	center  []float64   // convolution weights for interior points
	edge    [][]float64 // edge[j] evaluates the leading-window fit at offset j
}

func newSavgolFilter(window, polyOrder int) (*savgolFilter, error) {
	if window < 1 || window%2 == 0 {
		return nil, fmt.Errorf("savgol: window %d must be odd and positive", window)
	}
	if polyOrder < 0 || polyOrder >= window {
		return nil, fmt.Errorf("savgol: poly order %d must be in [0, %d)", polyOrder, window)
	}

	halflen := window / 2

	// Symmetric offsets -halflen..halflen for the interior fit.
	centered := make([]float64, window)
	for i := range centered {
		centered[i] = float64(i - halflen)
	}
	center, err := polyfitWeights(centered, polyOrder, 0)
	if err != nil {
		return nil, err
	}

	// Edge fits run over the first window samples. The grid is shifted to be
	// symmetric around zero, which keeps the normal matrix well conditioned;
	// the evaluation points shift with it.
	edge := make([][]float64, halflen)
	for j := 0; j < halflen; j++ {
		w, err := polyfitWeights(centered, polyOrder, float64(j-halflen))
		if err != nil {
			return nil, err
		}
		edge[j] = w
	}

	return &savgolFilter{
		window:  window,
		halflen: halflen,
		center:  center,
		edge:    edge,
	}, nil
}

// Apply returns the smoothed signal. Inputs shorter than the window are
// returned as an unmodified copy: the filter is undefined below its window
// size and identity is the safe fallback.
func (f *savgolFilter) Apply(signal []float64) []float64 {
	out := make([]float64, len(signal))
	if len(signal) < f.window {
		copy(out, signal)
		return out
	}

	n := len(signal)
	for i := f.halflen; i < n-f.halflen; i++ {
		out[i] = dot(f.center, signal[i-f.halflen:i+f.halflen+1])
	}

	// Left edge: evaluate the leading-window fit at positions 0..halflen-1.
	// Right edge by symmetry: the same weights applied to the reversed
	// trailing window.
	for j := 0; j < f.halflen; j++ {
		var left, right float64
		for i := 0; i < f.window; i++ {
			left += f.edge[j][i] * signal[i]
			right += f.edge[j][i] * signal[n-1-i]
		}
		out[j] = left
		out[n-1-j] = right
	}

	return out
}

// polyfitWeights returns weights w such that dot(w, y) equals the value at t
// of the degree-p least-squares polynomial fitted to the points (xs[i], y[i]).
// Derivation: with Vandermonde matrix V, the fitted coefficients are
// a = (VᵀV)⁻¹Vᵀy, so the value at t is τᵀa where τ = (1, t, t², ...); solving
// (VᵀV)s = τ gives w = Vs without forming any inverse.
func polyfitWeights(xs []float64, p int, t float64) ([]float64, error) {
	m := p + 1

	// Normal matrix entries are power sums: A[a][b] = Σ xs[i]^(a+b).
	powerSums := make([]float64, 2*p+1)
	for _, x := range xs {
		xp := 1.0
		for k := range powerSums {
			powerSums[k] += xp
			xp *= x
		}
	}
	a := make([][]float64, m)
	for i := range a {
		a[i] = make([]float64, m)
		for j := range a[i] {
			a[i][j] = powerSums[i+j]
		}
	}

	tau := make([]float64, m)
	tp := 1.0
	for k := range tau {
		tau[k] = tp
		tp *= t
	}

	s, err := solveLinear(a, tau)
	if err != nil {
		return nil, err
	}

	weights := make([]float64, len(xs))
	for i, x := range xs {
		xp := 1.0
		for k := 0; k < m; k++ {
			weights[i] += s[k] * xp
			xp *= x
		}
	}
	return weights, nil
}

// solveLinear solves a*x = b in place via Gaussian elimination with partial
// pivoting. The systems here are tiny ((polyOrder+1)²) and symmetric positive
// definite for any valid window, so the singular branch guards misuse rather
// than numerics.
func solveLinear(a [][]float64, b []float64) ([]float64, error) {
	n := len(b)
	for col := 0; col < n; col++ {
		pivot := col
		for row := col + 1; row < n; row++ {
			if math.Abs(a[row][col]) > math.Abs(a[pivot][col]) {
				pivot = row
			}
		}
		if a[pivot][col] == 0 {
			return nil, fmt.Errorf("savgol: singular normal matrix")
		}
		a[col], a[pivot] = a[pivot], a[col]
		b[col], b[pivot] = b[pivot], b[col]

		for row := col + 1; row < n; row++ {
			factor := a[row][col] / a[col][col]
			for k := col; k < n; k++ {
				a[row][k] -= factor * a[col][k]
			}
			b[row] -= factor * b[col]
		}
	}

	x := make([]float64, n)
	for row := n - 1; row >= 0; row-- {
		sum := b[row]
		for k := row + 1; k < n; k++ {
			sum -= a[row][k] * x[k]
		}
		x[row] = sum / a[row][row]
	}
	return x, nil
}

func dot(w, y []float64) float64 {
	var sum float64
	for i, v := range w {
		sum += v * y[i]
	}
	return sum
}
