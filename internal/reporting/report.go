// Package reporting flattens analysis and validation results into
// render-ready rows and renders them as Markdown, CSV, terminal tables and
// HTML charts.
package reporting

import (
	"fmt"
	"sort"
	"time"

	"clocklab/internal/domain"
	"clocklab/internal/pipeline"
	"clocklab/internal/validation"
)

// Report is the flattened view of one analysis run.
type Report struct {
	// Metadata
	GeneratedAt time.Time
	TestName    string
	RunID       string
	Standard    string

	// Sufficiency gate
	SufficiencyChecks   []SufficiencyCheckRow
	SufficiencyWarnings []SufficiencyCheckRow
	SufficiencyPass     bool

	// TE summary statistics
	Stats domain.TimeErrorStats

	// Metric tables (sorted by tau)
	MTIERows []MetricRow
	TDEVRows []MetricRow
	ADEVRows []MetricRow

	// Uncertainty budget
	BudgetRows []BudgetRow
	Budget     domain.BudgetResult

	// Validation (nil when no assertion set was supplied)
	Validation *ValidationSection

	// Pass is the overall compliance verdict.
	Pass bool
}

// SufficiencyCheckRow represents one sufficiency criterion.
type SufficiencyCheckRow struct {
	Name      string
	Threshold string
	Actual    string
	Pass      bool
}

// MetricRow is one tau entry of a metric table. Rows without a policy limit
// carry HasLimit=false and no verdict.
type MetricRow struct {
	Family   string // "MTIE", "TDEV", "ADEV"
	TauS     float64
	Value    domain.MetricValue
	LimitNs  float64
	HasLimit bool
	Pass     bool
}

// BudgetRow is one uncertainty budget component.
type BudgetRow struct {
	Name           string
	Symbol         string
	Kind           string
	Distribution   string
	UNs            float64 // standard uncertainty u(x_i), ns
	Sensitivity    float64 // c_i
	ContributionNs float64 // |c_i * u(x_i)|, ns
	DOF            string  // "inf" for Type B components
}

// ValidationSection carries the dual-path validation outcome.
type ValidationSection struct {
	CheckedKeys   int
	Discrepancies []validation.Discrepancy
	Missing       []validation.Discrepancy
	Pass          bool
}

// BuildReport flattens an analysis report (and an optional validation report)
// into render-ready rows. GeneratedAt is set to the current UTC time; tests
// overwrite it for deterministic output.
func BuildReport(analysis *pipeline.AnalysisReport, val *validation.Report) *Report {
	r := &Report{
		GeneratedAt: time.Now().UTC(),
		TestName:    analysis.TestName,
		RunID:       analysis.RunID,
		Standard:    analysis.MTIECompliance.Standard,
		Stats:       analysis.Stats,
		Budget:      analysis.Budget,
		Pass:        analysis.Pass,
	}

	if analysis.Sufficiency != nil {
		r.SufficiencyPass = analysis.Sufficiency.AllPass
		for _, c := range analysis.Sufficiency.Checks {
			r.SufficiencyChecks = append(r.SufficiencyChecks, SufficiencyCheckRow(c))
		}
		for _, w := range analysis.Sufficiency.Warnings {
			r.SufficiencyWarnings = append(r.SufficiencyWarnings, SufficiencyCheckRow(w))
		}
	}

	r.MTIERows = buildMetricRows("MTIE", analysis.MTIE, analysis.MTIECompliance)
	r.TDEVRows = buildMetricRows("TDEV", analysis.TDEV, analysis.TDEVCompliance)
	r.ADEVRows = buildMetricRows("ADEV", analysis.ADEV, domain.ComplianceResult{})

	for _, c := range analysis.BudgetComponents {
		dof := "inf"
		if c.DegreesOfFreedom != nil {
			dof = fmt.Sprintf("%d", *c.DegreesOfFreedom)
		}
		contribution := c.Contribution()
		if contribution < 0 {
			contribution = -contribution
		}
		r.BudgetRows = append(r.BudgetRows, BudgetRow{
			Name:           c.Name,
			Symbol:         c.Symbol,
			Kind:           string(c.Kind),
			Distribution:   string(c.Distribution),
			UNs:            c.StandardUncertaintyNs,
			Sensitivity:    c.SensitivityCoefficient,
			ContributionNs: contribution,
			DOF:            dof,
		})
	}

	if val != nil {
		r.Validation = &ValidationSection{
			CheckedKeys:   val.CheckedKeys,
			Discrepancies: val.Discrepancies,
			Missing:       val.Missing,
			Pass:          val.Pass,
		}
	}

	return r
}

// buildMetricRows merges the measured values with the policy limits. Taus
// that appear only in the limit table still get a row: a limit the record
// could not cover is a failing entry, not an omission.
func buildMetricRows(family string, result domain.MetricResult, compliance domain.ComplianceResult) []MetricRow {
	limits := make(map[float64]domain.ComplianceCheck, len(compliance.Checks))
	for _, c := range compliance.Checks {
		limits[c.TauS] = c
	}

	tauSet := make(map[float64]struct{}, len(result)+len(limits))
	for tau := range result {
		tauSet[tau] = struct{}{}
	}
	for tau := range limits {
		tauSet[tau] = struct{}{}
	}
	taus := make([]float64, 0, len(tauSet))
	for tau := range tauSet {
		taus = append(taus, tau)
	}
	sort.Float64s(taus)

	rows := make([]MetricRow, 0, len(taus))
	for _, tau := range taus {
		row := MetricRow{Family: family, TauS: tau, Value: result.At(tau)}
		if check, ok := limits[tau]; ok {
			row.LimitNs = check.LimitNs
			row.HasLimit = true
			row.Pass = check.Pass
		}
		rows = append(rows, row)
	}
	return rows
}
