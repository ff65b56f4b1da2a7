// Package analysis extracts signals from sampled runs and characterises them.
//
//   - [PowerSpectrum], [DominantFrequency]: spectral view of a series, such as
//     a bouncing body's height
//   - [Bounces]: floor contact times of one body, read off its vertical velocity
//   - [PhasePortrait]: height against vertical velocity for one body
//   - [Separation], [DivergenceRate]: how fast two runs from nearby initial
//     conditions drift apart
//   - [Sweep]: one scalar outcome across a range of a parameter
//
// # Bounce frequency
//
// For a body bouncing on the floor the height series is periodic and the
// strongest non-zero bin of its spectrum is the bounce rate:
//
//	ys := analysis.Series(frames, 0, analysis.Height)
//	f, _ := analysis.DominantFrequency(ys, sampleDt)
package analysis
