package domain

import "sort"

// MetricValue is one computed metric value. A tau whose observation window
// does not fit the series maps to an undefined value - an explicit marker,
// never an exception and never a bare NaN that could slip through a
// comparison.
type MetricValue struct {
	Ns      float64 // value in nanoseconds (dimensionless for ADEV)
	Defined bool
}

// DefinedValue wraps v as a defined metric value.
func DefinedValue(v float64) MetricValue {
	return MetricValue{Ns: v, Defined: true}
}

// UndefinedValue is the "window does not fit" marker.
func UndefinedValue() MetricValue {
	return MetricValue{}
}

// MetricResult maps observation interval tau (seconds) to a metric value.
// Keys are unique by construction.
type MetricResult map[float64]MetricValue

// Taus returns the tau keys in ascending order.
func (r MetricResult) Taus() []float64 {
	taus := make([]float64, 0, len(r))
	for tau := range r {
		taus = append(taus, tau)
	}
	sort.Float64s(taus)
	return taus
}

// At returns the value for tau; an absent tau reads as undefined.
func (r MetricResult) At(tau float64) MetricValue {
	return r[tau]
}

// DetrendResult is the output of the linear detrender.
// Residuals[i] = input[i] - (slope*t_i + offset) for the fitted line.
type DetrendResult struct {
	Residuals []float64 // same length as the input, nanoseconds
	OffsetNs  float64   // fitted intercept, nanoseconds
	SlopePpm  float64   // fitted slope expressed as frequency offset, ppm
}

// TimeErrorStats summarizes a TE record.
type TimeErrorStats struct {
	MeanNs    float64
	MeanAbsNs float64
	RMSNs     float64
	StdNs     float64
	P95Ns     float64 // 95th percentile of |TE|
	P99Ns     float64 // 99th percentile of |TE|
	MaxAbsNs  float64
	DriftPpm  float64 // linear drift of the record
	NSamples  int
	DurationS float64
}
