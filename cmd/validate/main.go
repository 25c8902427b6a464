package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"clocklab/internal/observability"
	"clocklab/internal/telog"
	"clocklab/internal/validation"
)

func main() {
	// Parse flags
	input := flag.String("input", "", "TE log CSV file to recompute metrics from")
	assertions := flag.String("assertions", "", "JSON file mapping metric keys (e.g. mtie_10s) to expected values")
	tausFlag := flag.String("taus", "1,10,30", "Comma-separated observation intervals in seconds")
	failOnMissing := flag.Bool("fail-on-missing", false, "Fail when a key is present in only one set")
	flag.Parse()

	if *input == "" || *assertions == "" {
		fmt.Fprintln(os.Stderr, "Error: --input and --assertions are required")
		os.Exit(1)
	}

	taus, err := parseTaus(*tausFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing --taus: %v\n", err)
		os.Exit(1)
	}

	expected, err := loadAssertions(*assertions)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading assertions: %v\n", err)
		os.Exit(1)
	}

	series, _, err := telog.ReadFile(*input)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading TE log: %v\n", err)
		os.Exit(1)
	}

	computed := validation.Recompute(series, taus)
	report := validation.Validate(expected, computed, validation.Options{
		FailOnMissing: *failOnMissing,
	})
	observability.RecordValidation(report.Pass, len(report.Discrepancies))

	printReport(report)

	if !report.Pass {
		os.Exit(1)
	}
}

func loadAssertions(path string) (map[string]float64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var expected map[string]float64
	if err := json.Unmarshal(data, &expected); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(expected) == 0 {
		return nil, fmt.Errorf("%s contains no assertions", path)
	}
	return expected, nil
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

func printReport(report validation.Report) {
	fmt.Printf("Checked %d keys\n", report.CheckedKeys)

	for _, d := range report.Discrepancies {
		fmt.Printf("MISMATCH %s: expected %.6f, computed %.6f (error %.6f ns): %s\n",
			d.Key, d.Expected, d.Computed, d.ErrorNs, d.Detail)
	}
	for _, d := range report.Missing {
		fmt.Printf("MISSING  %s: %s\n", d.Key, d.Detail)
	}

	if report.Pass {
		fmt.Println("Verdict: PASS")
	} else {
		fmt.Println("Verdict: FAIL")
	}
}
