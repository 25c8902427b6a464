package pipeline

import (
	"testing"

	"clocklab/internal/domain"
)

func evenSeries(t *testing.T, n int, dtNs int64) *domain.TimeErrorSeries {
	t.Helper()
	samples := make([]domain.TimeErrorSample, n)
	for i := range samples {
		samples[i] = domain.TimeErrorSample{TimestampNs: int64(i) * dtNs, TENs: float64(i)}
	}
	s, err := domain.NewTimeErrorSeries(samples)
	if err != nil {
		t.Fatalf("build series: %v", err)
	}
	return s
}

func TestCheckSufficiency_CleanSeriesPasses(t *testing.T) {
	series := evenSeries(t, 601, 100_000_000) // 60 s at 10 Hz

	result := CheckSufficiency(series, []float64{1, 10, 30})
	if !result.AllPass {
		t.Errorf("clean series must pass, checks: %+v", result.Checks)
	}
	if len(result.Checks) != 3 {
		t.Errorf("len(Checks) = %d, want 3", len(result.Checks))
	}
	for _, w := range result.Warnings {
		if !w.Pass {
			t.Errorf("warning %q unexpectedly failing: %+v", w.Name, w)
		}
	}
}

func TestCheckSufficiency_MaxTauIsWarningNotFailure(t *testing.T) {
	series := evenSeries(t, 11, 100_000_000) // 1.1 s record

	result := CheckSufficiency(series, []float64{30})
	if !result.AllPass {
		t.Error("oversized tau must not fail the gate")
	}
	if len(result.Warnings) != 1 || result.Warnings[0].Pass {
		t.Errorf("expected a failing max-tau warning, got %+v", result.Warnings)
	}
}

func TestCheckSufficiency_JitteryTimestampsFail(t *testing.T) {
	// Intervals alternate 100 ms / 200 ms: median deviation is 50% of the
	// median interval, far beyond the 10% bound.
	samples := make([]domain.TimeErrorSample, 20)
	ts := int64(0)
	for i := range samples {
		samples[i] = domain.TimeErrorSample{TimestampNs: ts}
		if i%2 == 0 {
			ts += 100_000_000
		} else {
			ts += 200_000_000
		}
	}
	series, err := domain.NewTimeErrorSeries(samples)
	if err != nil {
		t.Fatalf("build series: %v", err)
	}

	result := CheckSufficiency(series, nil)
	if result.AllPass {
		t.Error("jittery sampling must fail the gate")
	}

	var jitterCheck *SufficiencyCheck
	for i := range result.Checks {
		if result.Checks[i].Name == "Sampling jitter" {
			jitterCheck = &result.Checks[i]
		}
	}
	if jitterCheck == nil || jitterCheck.Pass {
		t.Errorf("jitter check = %+v, want failing", jitterCheck)
	}
}

func TestCheckSufficiency_TwoSamples(t *testing.T) {
	series := evenSeries(t, 2, 100_000_000)

	result := CheckSufficiency(series, nil)
	if !result.AllPass {
		t.Errorf("two monotonic samples must pass: %+v", result.Checks)
	}
}
