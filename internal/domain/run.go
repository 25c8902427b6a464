package domain

// Source identifies where a measurement run's samples came from.
type Source string

const (
	// SourceTestHarness marks runs whose samples were produced by the test
	// harness (first computation path).
	SourceTestHarness Source = "TEST_HARNESS"
	// SourceRawLog marks runs rebuilt from raw CSV logs (independent
	// recomputation path).
	SourceRawLog Source = "RAW_LOG"
	// SourceMonitor marks runs collected live from a clock monitor stream.
	SourceMonitor Source = "MONITOR"
)

// MeasurementRun identifies one TE capture session.
type MeasurementRun struct {
	RunID        string  // deterministic hash, see idhash
	TestName     string  // human-readable test or capture name
	Source       Source  // provenance of the samples
	SampleRateHz float64 // nominal sample rate; 0 when inferred from data
	StartTimeNs  int64   // timestamp of the first sample
	SampleCount  int
	CreatedAt    int64 // Unix ms, set by the store
}

// MetricRow is one persisted metric value for a run.
type MetricRow struct {
	RunID   string
	Family  string  // "mtie", "tdev", "adev"
	TauS    float64 // observation interval
	ValueNs float64 // meaningless when Defined is false
	Defined bool
}

// Metric family names used in stored results and validation keys.
const (
	FamilyMTIE = "mtie"
	FamilyTDEV = "tdev"
	FamilyADEV = "adev"
)
