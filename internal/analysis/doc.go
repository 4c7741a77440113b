// Package analysis provides frequency analysis of recorded trajectories.
//
//   - [FFT]: radix-2 discrete Fourier transform
//   - [PowerSpectrum]: magnitude spectrum of a mean-removed series
//   - [DominantFrequency]: strongest non-zero frequency of a series
//
// # Bounce Frequency
//
// A free particle in a box of edge L moving with velocity component v
// along an axis traces a triangle wave on that axis with fundamental
// frequency |v|/(2L):
//
//	f := analysis.DominantFrequency(xs, sampleDt)
//	expected := math.Abs(v.X) / (2 * box.L)
package analysis
