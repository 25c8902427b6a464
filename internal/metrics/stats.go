package metrics

import (
	"math"

	mstats "github.com/montanaflynn/stats"

	"clocklab/internal/domain"
)

// Stats computes the descriptive TE statistics for a series: mean, absolute
// mean, RMS, population standard deviation, 95th/99th percentiles of |TE|,
// worst-case |TE| and the linear drift of the record in ppm.
//
// An empty series yields all-zero stats; this mirrors the reporting
// convention where an empty record is a valid (if useless) capture.
func Stats(series *domain.TimeErrorSeries) domain.TimeErrorStats {
	te := series.Values()
	n := len(te)
	if n == 0 {
		return domain.TimeErrorStats{}
	}

	abs := make([]float64, n)
	var sum, sumAbs, sumSq float64
	for i, v := range te {
		abs[i] = math.Abs(v)
		sum += v
		sumAbs += abs[i]
		sumSq += v * v
	}

	stdNs, _ := mstats.StandardDeviationPopulation(te)
	p95, _ := mstats.Percentile(abs, 95)
	p99, _ := mstats.Percentile(abs, 99)
	maxAbs, _ := mstats.Max(abs)
	if n == 1 {
		// Percentile needs at least two points; a single sample is its own
		// distribution.
		p95, p99 = abs[0], abs[0]
	}

	return domain.TimeErrorStats{
		MeanNs:    sum / float64(n),
		MeanAbsNs: sumAbs / float64(n),
		RMSNs:     math.Sqrt(sumSq / float64(n)),
		StdNs:     stdNs,
		P95Ns:     p95,
		P99Ns:     p99,
		MaxAbsNs:  maxAbs,
		DriftPpm:  Detrend(te, series.SampleDt()).SlopePpm,
		NSamples:  n,
		DurationS: series.DurationSeconds(),
	}
}
