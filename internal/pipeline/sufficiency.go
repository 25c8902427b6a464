// Package pipeline runs the end-to-end analysis: sufficiency gate, summary
// statistics, MTIE/TDEV/ADEV, compliance verdicts, and the uncertainty
// budget, bundled into a single report value.
package pipeline

import (
	"fmt"
	"math"
	"sort"

	"clocklab/internal/domain"
)

// SufficiencyCheck represents one data sufficiency criterion.
type SufficiencyCheck struct {
	Name      string
	Threshold string
	Actual    string
	Pass      bool
}

// SufficiencyResult contains the pre-analysis gate verdicts. Warnings carry
// checks that do not block analysis (a tau that does not fit still yields a
// well-defined undefined metric).
type SufficiencyResult struct {
	Checks   []SufficiencyCheck
	Warnings []SufficiencyCheck
	AllPass  bool
}

// CheckSufficiency gates a series before analysis: enough samples, sane
// duration, tolerable sampling jitter. The max-tau fit is reported as a
// warning only.
func CheckSufficiency(series *domain.TimeErrorSeries, tausS []float64) *SufficiencyResult {
	result := &SufficiencyResult{AllPass: true}

	n := series.Len()
	result.add(SufficiencyCheck{
		Name:      "Sample count",
		Threshold: ">= 2",
		Actual:    fmt.Sprintf("%d", n),
		Pass:      n >= 2,
	})

	duration := series.DurationSeconds()
	result.add(SufficiencyCheck{
		Name:      "Record duration",
		Threshold: "> 0 s",
		Actual:    fmt.Sprintf("%.3f s", duration),
		Pass:      duration > 0,
	})

	jitterPct, jitterOK := samplingJitterPercent(series)
	result.add(SufficiencyCheck{
		Name:      "Sampling jitter",
		Threshold: "<= 10% of median interval",
		Actual:    fmt.Sprintf("%.2f%%", jitterPct),
		Pass:      jitterOK,
	})

	// Largest requested tau fitting the record is a warning: undefined
	// metrics are legitimate results, not gate failures.
	if len(tausS) > 0 {
		maxTau := tausS[0]
		for _, tau := range tausS[1:] {
			if tau > maxTau {
				maxTau = tau
			}
		}
		fits := maxTau <= duration
		result.Warnings = append(result.Warnings, SufficiencyCheck{
			Name:      "Max tau window",
			Threshold: fmt.Sprintf("<= %.3f s record", duration),
			Actual:    fmt.Sprintf("%.3f s", maxTau),
			Pass:      fits,
		})
	}

	return result
}

func (r *SufficiencyResult) add(check SufficiencyCheck) {
	r.Checks = append(r.Checks, check)
	if !check.Pass {
		r.AllPass = false
	}
}

// samplingJitterPercent measures the median absolute deviation of the sample
// intervals from the median interval, in percent. One-sample records have no
// intervals and pass trivially.
func samplingJitterPercent(series *domain.TimeErrorSeries) (float64, bool) {
	ts := series.Timestamps()
	if len(ts) < 3 {
		return 0, true
	}

	diffs := make([]float64, len(ts)-1)
	for i := 1; i < len(ts); i++ {
		diffs[i-1] = float64(ts[i] - ts[i-1])
	}
	median := medianOf(diffs)
	if median <= 0 {
		return math.Inf(1), false
	}

	devs := make([]float64, len(diffs))
	for i, d := range diffs {
		devs[i] = math.Abs(d - median)
	}
	jitter := medianOf(devs) / median * 100
	return jitter, jitter <= 10
}

func medianOf(values []float64) float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}
