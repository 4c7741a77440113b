package analysis

import (
	"math"
	"math/cmplx"
)

// FFT transforms data, whose length must be a power of two.
func FFT(data []float64) []complex128 {
	n := len(data)
	if n <= 1 {
		result := make([]complex128, n)
		for i := range data {
			result[i] = complex(data[i], 0)
		}
		return result
	}

	if n%2 != 0 {
		panic("fft requires power of 2 length")
	}

	even := make([]float64, n/2)
	odd := make([]float64, n/2)

	for i := 0; i < n/2; i++ {
		even[i] = data[2*i]
		odd[i] = data[2*i+1]
	}

	feven := FFT(even)
	fodd := FFT(odd)

	result := make([]complex128, n)
	for k := 0; k < n/2; k++ {
		w := cmplx.Exp(complex(0, -2*math.Pi*float64(k)/float64(n)))
		result[k] = feven[k] + w*fodd[k]
		result[k+n/2] = feven[k] - w*fodd[k]
	}

	return result
}

// PowerSpectrum removes the mean of data, zero-pads it to the next power
// of two and returns the magnitudes of the non-negative frequency bins.
// Bin k corresponds to frequency k/(len*sampleDt) where len is the
// padded length.
func PowerSpectrum(data []float64) []float64 {
	if len(data) == 0 {
		return nil
	}

	n := 1
	for n < len(data) {
		n <<= 1
	}

	var mean float64
	for _, v := range data {
		mean += v
	}
	mean /= float64(len(data))

	padded := make([]float64, n)
	for i, v := range data {
		padded[i] = v - mean
	}

	fft := FFT(padded)
	ps := make([]float64, max(len(fft)/2, 1))
	for i := range ps {
		ps[i] = cmplx.Abs(fft[i])
	}

	return ps
}

// DominantFrequency returns the frequency of the strongest non-zero bin
// of the power spectrum of data sampled every sampleDt, or 0 when data
// is constant or too short.
func DominantFrequency(data []float64, sampleDt float64) float64 {
	if len(data) < 4 || sampleDt <= 0 {
		return 0
	}
	ps := PowerSpectrum(data)
	n := 2 * len(ps)

	best, bestPower := 0, 0.0
	for k := 1; k < len(ps); k++ {
		if ps[k] > bestPower {
			best, bestPower = k, ps[k]
		}
	}
	if bestPower < 1e-12 {
		return 0
	}
	return float64(best) / (float64(n) * sampleDt)
}
