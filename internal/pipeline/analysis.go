package pipeline

import (
	"errors"
	"time"

	"clocklab/internal/compliance"
	"clocklab/internal/domain"
	"clocklab/internal/metrics"
	"clocklab/internal/observability"
	"clocklab/internal/uncertainty"
)

// ErrInsufficientData is returned when the sufficiency gate blocks analysis.
var ErrInsufficientData = errors.New("series fails sufficiency checks")

// AnalysisReport bundles everything one analysis run produces.
type AnalysisReport struct {
	TestName string
	RunID    string

	Sufficiency *SufficiencyResult
	Stats       domain.TimeErrorStats

	TausS []float64
	MTIE  domain.MetricResult
	TDEV  domain.MetricResult
	ADEV  domain.MetricResult

	MTIECompliance domain.ComplianceResult
	TDEVCompliance domain.ComplianceResult

	BudgetComponents []domain.UncertaintyComponent
	Budget           domain.BudgetResult

	// Pass is the overall verdict: every compliance table entry passed.
	Pass bool
}

// Analyzer runs the full metric pipeline against one policy.
type Analyzer struct {
	policy *compliance.ThresholdPolicy
}

// NewAnalyzer creates an analyzer for the given threshold policy.
func NewAnalyzer(policy *compliance.ThresholdPolicy) *Analyzer {
	return &Analyzer{policy: policy}
}

// Analyze computes stats, MTIE/TDEV/ADEV at the requested taus, checks them
// against the policy, and attaches a GUM uncertainty budget. The sufficiency
// gate runs first; a failing gate aborts with ErrInsufficientData and the
// gate's report attached.
func (a *Analyzer) Analyze(series *domain.TimeErrorSeries, tausS []float64) (*AnalysisReport, error) {
	started := time.Now()

	report := &AnalysisReport{TausS: tausS}

	report.Sufficiency = CheckSufficiency(series, tausS)
	if !report.Sufficiency.AllPass {
		return report, ErrInsufficientData
	}

	report.Stats = metrics.Stats(series)

	te := series.Values()
	dt := series.SampleDt()
	report.MTIE = metrics.MTIE(te, dt, tausS)
	report.TDEV = metrics.TDEV(te, dt, tausS)

	freq, err := metrics.FractionalFrequency(series)
	if err != nil {
		return report, err
	}
	report.ADEV = metrics.ADEV(freq, dt, tausS)

	report.MTIECompliance = compliance.CheckMTIE(a.policy, report.MTIE)
	report.TDEVCompliance = compliance.CheckTDEV(a.policy, report.TDEV)
	report.Pass = report.MTIECompliance.AggregatePass && report.TDEVCompliance.AggregatePass

	budget, err := buildBudget(te)
	if err != nil {
		return report, err
	}
	report.BudgetComponents = budget.Components()
	report.Budget = budget.Summarize()

	observability.RecordAnalysis(report.Pass, time.Since(started).Seconds())
	return report, nil
}

// buildBudget combines the measured Type A repeatability with the default
// Type B source catalog.
func buildBudget(teNs []float64) (*uncertainty.Budget, error) {
	budget := uncertainty.DefaultBudget()

	typeA, err := uncertainty.TypeAFromObservations("TE Repeatability", teNs)
	if err != nil {
		return nil, err
	}
	if err := budget.Add(typeA); err != nil {
		return nil, err
	}
	return budget, nil
}
