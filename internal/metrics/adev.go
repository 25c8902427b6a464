package metrics

import (
	"math"

	"clocklab/internal/domain"
)

// ADEV computes Allan deviation at each requested tau (seconds) from a
// fractional-frequency series (dimensionless).
//
// For tau = m*dt the series is partitioned into floor(n/m) disjoint blocks
// of length m; each block is averaged and ADEV(tau) is the RMS of successive
// block-mean differences divided by sqrt(2). Fewer than two blocks leaves
// the tau undefined. Values are non-negative by construction.
func ADEV(freq []float64, dtS float64, tausS []float64) domain.MetricResult {
	result := make(domain.MetricResult, len(tausS))
	n := len(freq)

	for _, tau := range tausS {
		m := tauToLag(tau, dtS)
		if m >= n {
			result[tau] = domain.UndefinedValue()
			continue
		}

		blocks := n / m
		if blocks < 2 {
			result[tau] = domain.UndefinedValue()
			continue
		}

		means := make([]float64, blocks)
		for b := 0; b < blocks; b++ {
			sum := 0.0
			for i := b * m; i < (b+1)*m; i++ {
				sum += freq[i]
			}
			means[b] = sum / float64(m)
		}

		sumSq := 0.0
		for b := 1; b < blocks; b++ {
			d := means[b] - means[b-1]
			sumSq += d * d
		}
		allanVar := sumSq / float64(blocks-1) / 2.0

		result[tau] = domain.DefinedValue(math.Sqrt(allanVar))
	}

	return result
}

// FractionalFrequency derives a dimensionless fractional-frequency series
// from a TE series by first differencing: y_i = (x_{i+1} - x_i) / dt, with
// the nanosecond phase converted to seconds. Returns ErrInsufficientData
// for series shorter than two samples.
func FractionalFrequency(series *domain.TimeErrorSeries) ([]float64, error) {
	if series.Len() < 2 {
		return nil, ErrInsufficientData
	}
	dt := series.SampleDt()
	if dt <= 0 {
		return nil, ErrInsufficientData
	}

	te := series.Values()
	freq := make([]float64, len(te)-1)
	for i := 1; i < len(te); i++ {
		freq[i-1] = (te[i] - te[i-1]) / nsPerSecond / dt
	}
	return freq, nil
}
