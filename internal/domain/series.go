// Package domain defines the core value types shared by the timing metrics
// engine: time-error series, metric results, compliance verdicts and
// uncertainty budgets. All types are plain values; none own mutable state.
package domain

import (
	"errors"
	"fmt"
	"sort"
)

// Errors returned by series construction.
var (
	ErrEmptySeries       = errors.New("time error series is empty")
	ErrNonMonotonicTime  = errors.New("timestamps are not strictly increasing")
	ErrInvalidSampleRate = errors.New("sample rate must be positive")
)

// TimeErrorSample is one TE observation: the instantaneous phase difference
// between the clock under test and the reference, in nanoseconds.
type TimeErrorSample struct {
	TimestampNs int64   // absolute timestamp, nanoseconds
	TENs        float64 // time error, nanoseconds
}

// TimeErrorSeries is an ordered, immutable sequence of TE samples.
// Timestamps are strictly increasing; nominal spacing is uniform, but
// irregular spacing is tolerated - tau/sample-count conversion uses the
// median inter-sample interval unless an explicit rate was supplied.
type TimeErrorSeries struct {
	samples  []TimeErrorSample
	sampleDt float64 // seconds; 1/rate when a rate was supplied, else median dt
}

// NewTimeErrorSeries builds a series from samples, inferring the sample
// period from the median inter-sample interval. Timestamps must be strictly
// increasing.
func NewTimeErrorSeries(samples []TimeErrorSample) (*TimeErrorSeries, error) {
	if len(samples) == 0 {
		return nil, ErrEmptySeries
	}
	for i := 1; i < len(samples); i++ {
		if samples[i].TimestampNs <= samples[i-1].TimestampNs {
			return nil, fmt.Errorf("%w: sample %d (%d ns) <= sample %d (%d ns)",
				ErrNonMonotonicTime, i, samples[i].TimestampNs, i-1, samples[i-1].TimestampNs)
		}
	}

	owned := make([]TimeErrorSample, len(samples))
	copy(owned, samples)

	return &TimeErrorSeries{
		samples:  owned,
		sampleDt: medianIntervalSeconds(owned),
	}, nil
}

// NewTimeErrorSeriesWithRate builds a series with a known sample rate in Hz.
// The explicit rate takes precedence over the median interval.
func NewTimeErrorSeriesWithRate(samples []TimeErrorSample, sampleRateHz float64) (*TimeErrorSeries, error) {
	if sampleRateHz <= 0 {
		return nil, ErrInvalidSampleRate
	}
	s, err := NewTimeErrorSeries(samples)
	if err != nil {
		return nil, err
	}
	s.sampleDt = 1.0 / sampleRateHz
	return s, nil
}

// Len returns the number of samples.
func (s *TimeErrorSeries) Len() int { return len(s.samples) }

// SampleDt returns the sample period in seconds.
func (s *TimeErrorSeries) SampleDt() float64 { return s.sampleDt }

// SampleRateHz returns the sample rate in Hz (0 for a single-sample series
// with no inferable interval).
func (s *TimeErrorSeries) SampleRateHz() float64 {
	if s.sampleDt <= 0 {
		return 0
	}
	return 1.0 / s.sampleDt
}

// Sample returns the i-th sample.
func (s *TimeErrorSeries) Sample(i int) TimeErrorSample { return s.samples[i] }

// Values returns a copy of the TE values in order, nanoseconds.
func (s *TimeErrorSeries) Values() []float64 {
	out := make([]float64, len(s.samples))
	for i, smp := range s.samples {
		out[i] = smp.TENs
	}
	return out
}

// Timestamps returns a copy of the sample timestamps in order, nanoseconds.
func (s *TimeErrorSeries) Timestamps() []int64 {
	out := make([]int64, len(s.samples))
	for i, smp := range s.samples {
		out[i] = smp.TimestampNs
	}
	return out
}

// StartTimeNs returns the timestamp of the first sample.
func (s *TimeErrorSeries) StartTimeNs() int64 { return s.samples[0].TimestampNs }

// DurationSeconds returns the nominal record duration n*dt in seconds.
func (s *TimeErrorSeries) DurationSeconds() float64 {
	return float64(len(s.samples)) * s.sampleDt
}

// medianIntervalSeconds computes the median inter-sample interval in seconds.
// A single-sample series has no interval and yields 0.
func medianIntervalSeconds(samples []TimeErrorSample) float64 {
	if len(samples) < 2 {
		return 0
	}
	diffs := make([]float64, len(samples)-1)
	for i := 1; i < len(samples); i++ {
		diffs[i-1] = float64(samples[i].TimestampNs-samples[i-1].TimestampNs) / 1e9
	}
	sort.Float64s(diffs)
	mid := len(diffs) / 2
	if len(diffs)%2 == 1 {
		return diffs[mid]
	}
	return (diffs[mid-1] + diffs[mid]) / 2
}
