package metrics

import (
	"math"

	"clocklab/internal/domain"
)

// TDEV computes Time Deviation at each requested tau (seconds), using the
// overlapping phase-based estimator: the RMS of the second difference
// residual[i+2m] - 2*residual[i+m] + residual[i] over every valid i,
// divided by sqrt(2).
//
// Like MTIE it operates on the detrended residual, and it must use all
// overlapping windows (not block-disjoint ones) to match the tau-estimator
// convention used for compliance comparison. A tau needing more than the
// available n >= 2m+1 samples is undefined.
func TDEV(teNs []float64, dtS float64, tausS []float64) domain.MetricResult {
	result := make(domain.MetricResult, len(tausS))

	detrended := Detrend(teNs, dtS).Residuals
	n := len(detrended)

	for _, tau := range tausS {
		m := tauToLag(tau, dtS)
		if 2*m >= n {
			result[tau] = domain.UndefinedValue()
			continue
		}

		count := n - 2*m
		sumSq := 0.0
		for i := 0; i < count; i++ {
			d := detrended[i+2*m] - 2*detrended[i+m] + detrended[i]
			sumSq += d * d
		}

		result[tau] = domain.DefinedValue(math.Sqrt(sumSq / float64(count) / 2.0))
	}

	return result
}
