package reporting

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// RenderMarkdown renders report as Markdown string.
func RenderMarkdown(r *Report) string {
	var sb strings.Builder

	// Header
	sb.WriteString("# Timing Stability Report\n\n")
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", r.GeneratedAt.Format(time.RFC3339)))
	if r.TestName != "" {
		sb.WriteString(fmt.Sprintf("Test: %s\n\n", r.TestName))
	}
	if r.RunID != "" {
		sb.WriteString(fmt.Sprintf("Run ID: %s\n\n", r.RunID))
	}
	if r.Standard != "" {
		sb.WriteString(fmt.Sprintf("Standard: %s\n\n", r.Standard))
	}
	if r.Pass {
		sb.WriteString("**Overall: PASS**\n\n")
	} else {
		sb.WriteString("**Overall: FAIL**\n\n")
	}

	// Data Sufficiency
	sb.WriteString("## Data Sufficiency\n\n")
	if len(r.SufficiencyChecks) > 0 {
		sb.WriteString("| Check | Threshold | Actual | Status |\n")
		sb.WriteString("|-------|-----------|--------|--------|\n")
		for _, check := range r.SufficiencyChecks {
			sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s |\n",
				check.Name, check.Threshold, check.Actual, passFail(check.Pass)))
		}
		sb.WriteString("\n")

		if r.SufficiencyPass {
			sb.WriteString("**All checks passed.**\n\n")
		} else {
			sb.WriteString("**Some checks failed.** Analysis aborted: INSUFFICIENT_DATA\n\n")
		}
	} else {
		sb.WriteString("No sufficiency checks performed.\n\n")
	}

	// Warnings shown even when the gate passed
	if len(r.SufficiencyWarnings) > 0 {
		sb.WriteString("### Warnings\n\n")
		for _, w := range r.SufficiencyWarnings {
			if w.Pass {
				continue
			}
			sb.WriteString(fmt.Sprintf("- %s: %s (expected %s)\n", w.Name, w.Actual, w.Threshold))
		}
		sb.WriteString("\n")
	}

	// TE Statistics
	sb.WriteString("## Time Error Statistics\n\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Samples | %d |\n", r.Stats.NSamples))
	sb.WriteString(fmt.Sprintf("| Duration (s) | %.3f |\n", r.Stats.DurationS))
	sb.WriteString(fmt.Sprintf("| Mean TE (ns) | %.3f |\n", r.Stats.MeanNs))
	sb.WriteString(fmt.Sprintf("| RMS TE (ns) | %.3f |\n", r.Stats.RMSNs))
	sb.WriteString(fmt.Sprintf("| Std TE (ns) | %.3f |\n", r.Stats.StdNs))
	sb.WriteString(fmt.Sprintf("| P95 abs TE (ns) | %.3f |\n", r.Stats.P95Ns))
	sb.WriteString(fmt.Sprintf("| P99 abs TE (ns) | %.3f |\n", r.Stats.P99Ns))
	sb.WriteString(fmt.Sprintf("| Max abs TE (ns) | %.3f |\n", r.Stats.MaxAbsNs))
	sb.WriteString(fmt.Sprintf("| Drift (ppm) | %.6f |\n", r.Stats.DriftPpm))
	sb.WriteString("\n")

	// Metric tables
	writeMetricTable(&sb, "MTIE", "MTIE (ns)", r.MTIERows, false)
	writeMetricTable(&sb, "TDEV", "TDEV (ns)", r.TDEVRows, false)
	writeMetricTable(&sb, "ADEV", "ADEV", r.ADEVRows, true)

	// Uncertainty Budget
	sb.WriteString("## Uncertainty Budget\n\n")
	if len(r.BudgetRows) > 0 {
		sb.WriteString("| Component | Type | Distribution | u (ns) | c | Contribution (ns) | DOF |\n")
		sb.WriteString("|-----------|------|--------------|--------|---|-------------------|-----|\n")
		for _, row := range r.BudgetRows {
			sb.WriteString(fmt.Sprintf("| %s | %s | %s | %.3f | %.2f | %.3f | %s |\n",
				row.Name, row.Kind, row.Distribution,
				row.UNs, row.Sensitivity, row.ContributionNs, row.DOF))
		}
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("Combined standard uncertainty: %.3f ns\n\n", r.Budget.CombinedUncertaintyNs))
		sb.WriteString(fmt.Sprintf("Expanded uncertainty (k=%.0f): %.3f ns\n\n", r.Budget.CoverageFactor, r.Budget.ExpandedUncertaintyNs))
		sb.WriteString(fmt.Sprintf("Effective degrees of freedom: %s\n\n", formatDOF(r.Budget.EffectiveDOF)))
	} else {
		sb.WriteString("No uncertainty budget available.\n\n")
	}

	// Validation
	if r.Validation != nil {
		sb.WriteString("## Cross-Validation\n\n")
		sb.WriteString(fmt.Sprintf("Checked keys: %d | Verdict: %s\n\n",
			r.Validation.CheckedKeys, passFail(r.Validation.Pass)))

		if len(r.Validation.Discrepancies) > 0 {
			sb.WriteString("| Key | Expected | Computed | Error (ns) | Detail |\n")
			sb.WriteString("|-----|----------|----------|------------|--------|\n")
			for _, d := range r.Validation.Discrepancies {
				sb.WriteString(fmt.Sprintf("| %s | %.6f | %.6f | %.6f | %s |\n",
					d.Key, d.Expected, d.Computed, d.ErrorNs, d.Detail))
			}
			sb.WriteString("\n")
		} else {
			sb.WriteString("No discrepancies beyond tolerance.\n\n")
		}

		if len(r.Validation.Missing) > 0 {
			sb.WriteString("### Missing Keys\n\n")
			for _, d := range r.Validation.Missing {
				sb.WriteString(fmt.Sprintf("- %s (%s)\n", d.Key, d.Detail))
			}
			sb.WriteString("\n")
		}
	}

	return sb.String()
}

// writeMetricTable emits one metric family table. ADEV values are
// dimensionless and printed in scientific notation.
func writeMetricTable(sb *strings.Builder, family, valueHeader string, rows []MetricRow, scientific bool) {
	sb.WriteString(fmt.Sprintf("## %s\n\n", family))
	if len(rows) == 0 {
		sb.WriteString("No taus requested.\n\n")
		return
	}

	sb.WriteString(fmt.Sprintf("| Tau (s) | %s | Limit (ns) | Status |\n", valueHeader))
	sb.WriteString("|---------|-------|------------|--------|\n")
	for _, row := range rows {
		value := "undefined"
		if row.Value.Defined {
			if scientific {
				value = fmt.Sprintf("%.3e", row.Value.Ns)
			} else {
				value = fmt.Sprintf("%.3f", row.Value.Ns)
			}
		}

		limit, status := "-", "-"
		if row.HasLimit {
			limit = fmt.Sprintf("%.0f", row.LimitNs)
			status = passFail(row.Pass)
		}

		sb.WriteString(fmt.Sprintf("| %g | %s | %s | %s |\n", row.TauS, value, limit, status))
	}
	sb.WriteString("\n")
}

func passFail(pass bool) string {
	if pass {
		return "PASS"
	}
	return "FAIL"
}

func formatDOF(dof float64) string {
	if math.IsInf(dof, 1) {
		return "inf"
	}
	return fmt.Sprintf("%.1f", dof)
}
