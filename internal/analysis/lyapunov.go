package analysis

import (
	"math"

	"github.com/san-kum/balls/internal/sim"
)

// Separation is the RMS centre distance between matching bodies of two runs
// at each common frame. Only bodies present in both frames count.
func Separation(a, b []sim.Frame) []float64 {
	n := min(len(a), len(b))
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		m := min(len(a[i]), len(b[i]))
		if m == 0 {
			continue
		}
		sum := 0.0
		for j := 0; j < m; j++ {
			d := a[i][j].Position.Sub(b[i][j].Position)
			sum += d.Dot(d)
		}
		out[i] = math.Sqrt(sum / float64(m))
	}
	return out
}

// DivergenceRate fits ln(separation) against time by least squares. A
// positive slope means nearby starts drift apart exponentially, which is
// the billiard analogue of a positive Lyapunov exponent. Zero separations
// are skipped.
func DivergenceRate(sep, times []float64) float64 {
	var sx, sy, sxx, sxy float64
	n := 0
	for i := range sep {
		if i >= len(times) || !(sep[i] > 0) {
			continue
		}
		x, y := times[i], math.Log(sep[i])
		sx += x
		sy += y
		sxx += x * x
		sxy += x * y
		n++
	}
	if n < 2 {
		return 0
	}
	den := float64(n)*sxx - sx*sx
	if den == 0 {
		return 0
	}
	return (float64(n)*sxy - sx*sy) / den
}
