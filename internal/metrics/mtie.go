package metrics

import (
	"math"

	"clocklab/internal/domain"
)

// MTIE computes Maximum Time Interval Error at each requested tau (seconds).
//
// The input is detrended first: MTIE is defined on the residual per ITU-T
// convention, so steady frequency drift does not count as interval error.
// For each tau, k = max(1, round(tau/dt)); MTIE(tau) is the maximum absolute
// difference residual[i+k]-residual[i] over every overlapping window - the
// standard requires the true maximum, not a subsample. A tau whose window
// does not fit (k >= n) is undefined.
//
// Each tau costs a single O(n) k-lag pass.
func MTIE(teNs []float64, dtS float64, tausS []float64) domain.MetricResult {
	result := make(domain.MetricResult, len(tausS))

	detrended := Detrend(teNs, dtS).Residuals
	n := len(detrended)

	for _, tau := range tausS {
		k := tauToLag(tau, dtS)
		if k >= n {
			result[tau] = domain.UndefinedValue()
			continue
		}

		maxDiff := 0.0
		for i := 0; i+k < n; i++ {
			d := math.Abs(detrended[i+k] - detrended[i])
			if d > maxDiff {
				maxDiff = d
			}
		}
		result[tau] = domain.DefinedValue(maxDiff)
	}

	return result
}

// tauToLag converts an observation interval to a sample lag, minimum 1.
// A non-positive dt collapses every tau to lag 1, which then reads as
// undefined for any series shorter than 2 samples.
func tauToLag(tauS, dtS float64) int {
	if dtS <= 0 {
		return 1
	}
	k := int(math.Round(tauS / dtS))
	if k < 1 {
		k = 1
	}
	return k
}
