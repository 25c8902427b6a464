package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"clocklab/internal/compliance"
	"clocklab/internal/domain"
	"clocklab/internal/idhash"
	"clocklab/internal/pipeline"
	"clocklab/internal/reporting"
	"clocklab/internal/telog"
)

func main() {
	// Parse flags
	input := flag.String("input", "", "TE log CSV file to analyze")
	policyPath := flag.String("policy", "", "Threshold policy YAML (default: built-in ITU-T G.8260 Class C)")
	tausFlag := flag.String("taus", "1,10,30", "Comma-separated observation intervals in seconds")
	outputDir := flag.String("output-dir", "reports", "Output directory for generated files")
	flag.Parse()

	if *input == "" {
		fmt.Fprintln(os.Stderr, "Error: --input is required")
		os.Exit(1)
	}

	taus, err := parseTaus(*tausFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing --taus: %v\n", err)
		os.Exit(1)
	}

	// Load policy
	policy := compliance.G8260ClassC()
	if *policyPath != "" {
		policy, err = compliance.LoadPolicy(*policyPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading policy: %v\n", err)
			os.Exit(1)
		}
	}

	// Load TE log
	series, meta, err := telog.ReadFile(*input)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading TE log: %v\n", err)
		os.Exit(1)
	}

	// Run the analysis. A failed sufficiency gate still yields a report
	// worth writing.
	analyzer := pipeline.NewAnalyzer(policy)
	report, err := analyzer.Analyze(series, taus)
	insufficient := errors.Is(err, pipeline.ErrInsufficientData)
	if err != nil && !insufficient {
		fmt.Fprintf(os.Stderr, "Error analyzing: %v\n", err)
		os.Exit(1)
	}

	report.TestName = meta.TestName
	report.RunID = meta.TestRunID
	if report.RunID == "" {
		report.RunID = idhash.ComputeRunID(meta.TestName, domain.SourceRawLog, series.StartTimeNs(), meta.SampleRateHz)
	}

	if err := writeOutputs(*outputDir, report, series); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing outputs: %v\n", err)
		os.Exit(1)
	}

	if insufficient {
		fmt.Println("Verdict: INSUFFICIENT_DATA")
		os.Exit(1)
	}
	if !report.Pass {
		fmt.Println("Verdict: FAIL")
		os.Exit(1)
	}
	fmt.Println("Verdict: PASS")
}

func parseTaus(s string) ([]float64, error) {
	var taus []float64
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		tau, err := strconv.ParseFloat(part, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid tau %q: %w", part, err)
		}
		if tau <= 0 {
			return nil, fmt.Errorf("tau must be positive, got %g", tau)
		}
		taus = append(taus, tau)
	}
	if len(taus) == 0 {
		return nil, fmt.Errorf("no taus specified")
	}
	return taus, nil
}

// writeOutputs renders REPORT.md, metrics.csv and charts.html into dir and
// prints the uncertainty budget to stdout.
func writeOutputs(dir string, analysis *pipeline.AnalysisReport, series *domain.TimeErrorSeries) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	r := reporting.BuildReport(analysis, nil)

	mdPath := filepath.Join(dir, "REPORT.md")
	if err := os.WriteFile(mdPath, []byte(reporting.RenderMarkdown(r)), 0o644); err != nil {
		return fmt.Errorf("write markdown: %w", err)
	}
	fmt.Println("Wrote", mdPath)

	csvPath := filepath.Join(dir, "metrics.csv")
	if err := os.WriteFile(csvPath, []byte(reporting.RenderCSV(r)), 0o644); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	fmt.Println("Wrote", csvPath)

	chartsPath := filepath.Join(dir, "charts.html")
	if err := reporting.WriteCharts(chartsPath, series, r); err != nil {
		return fmt.Errorf("write charts: %w", err)
	}
	fmt.Println("Wrote", chartsPath)

	if len(r.BudgetRows) > 0 {
		reporting.WriteBudgetTable(os.Stdout, r)
	}
	return nil
}
