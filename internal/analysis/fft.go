package analysis

import (
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

// PowerSpectrum returns |X_k| for k in [0, n/2) of the mean-removed series.
func PowerSpectrum(data []float64) []float64 {
	if len(data) < 2 {
		return []float64{}
	}

	mean := 0.0
	for _, v := range data {
		mean += v
	}
	mean /= float64(len(data))

	centered := make([]float64, len(data))
	for i, v := range data {
		centered[i] = v - mean
	}

	spectrum := fft.FFTReal(centered)
	ps := make([]float64, len(spectrum)/2)
	for i := range ps {
		ps[i] = cmplx.Abs(spectrum[i])
	}
	return ps
}

// DominantFrequency returns the frequency in Hz and magnitude of the
// strongest non-DC bin. sampleDt is the time between samples.
func DominantFrequency(data []float64, sampleDt float64) (float64, float64) {
	ps := PowerSpectrum(data)
	if len(ps) < 2 || !(sampleDt > 0) {
		return 0, 0
	}

	best := 1
	for k := 2; k < len(ps); k++ {
		if ps[k] > ps[best] {
			best = k
		}
	}
	return float64(best) / (float64(len(data)) * sampleDt), ps[best]
}
