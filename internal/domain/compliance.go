package domain

// ComplianceCheck is the verdict for a single tau against its limit.
// An undefined measurement fails the check: a limit must never pass by
// virtue of missing data.
type ComplianceCheck struct {
	TauS     float64
	Measured MetricValue
	LimitNs  float64
	Pass     bool
}

// ComplianceResult aggregates per-tau checks.
// AggregatePass is the conjunction over all table entries, including entries
// whose tau was never measured.
type ComplianceResult struct {
	Standard      string // e.g. "ITU-T G.8260 Class C"
	Checks        []ComplianceCheck
	AggregatePass bool
}

// ServoResult holds the scalar step-response figures of a clock servo.
type ServoResult struct {
	SettlingTimeS    float64 // time to settle within the settling band
	OvershootPercent float64 // peak overshoot relative to step size
}

// ServoCheck is one servo criterion verdict.
type ServoCheck struct {
	Name     string
	Measured float64
	Limit    float64
	Pass     bool
}

// ServoComplianceResult aggregates the servo checks (IEEE 1588-2019 Annex J).
type ServoComplianceResult struct {
	Checks        []ServoCheck
	AggregatePass bool
}
