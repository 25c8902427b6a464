// Package validation cross-checks asserted metric values against an
// independent recomputation from the raw time-error record. Two code paths
// computing the same metric must agree; a disagreement beyond tolerance
// points at a bug in one of them or at stale asserted data.
package validation

import (
	"fmt"
	"math"
	"sort"

	"clocklab/internal/domain"
	"clocklab/internal/metrics"
)

const (
	// AbsoluteToleranceNs is the comparison floor: expected values smaller
	// than this in magnitude are compared absolutely against it, since a
	// relative bound on a near-zero expectation is meaningless.
	AbsoluteToleranceNs = 10.0
	// RelativeTolerance bounds the relative error for all other values.
	RelativeTolerance = 0.01
)

// Discrepancy is one metric whose two values disagree beyond tolerance, or
// a metric present in only one set.
type Discrepancy struct {
	Key      string
	Expected float64
	Computed float64
	ErrorNs  float64 // absolute error, ns
	ErrorRel float64 // relative error against |expected|; 0 when absolute mode applied
	Missing  bool    // key absent from one of the two sets
	Detail   string
}

// Report is the complete outcome of one validation run. The validator always
// finishes the full key set; Pass reflects the verdict, never an early exit.
type Report struct {
	Discrepancies []Discrepancy
	Missing       []Discrepancy
	CheckedKeys   int
	Pass          bool
}

// Options tune validator behavior.
type Options struct {
	// FailOnMissing makes keys present in only one set fail the verdict.
	// By default they are reported but tolerated, since an undefined metric
	// on the recomputed side usually means the record was too short.
	FailOnMissing bool
}

// Validate diffs an asserted metric set against an independently computed
// one. Both sets map metric keys (e.g. "mtie_10s") to nanosecond values.
func Validate(expected, computed map[string]float64, opts Options) Report {
	keys := unionKeys(expected, computed)

	report := Report{Pass: true}
	for _, key := range keys {
		exp, haveExp := expected[key]
		got, haveGot := computed[key]

		if !haveExp || !haveGot {
			d := Discrepancy{Key: key, Expected: exp, Computed: got, Missing: true}
			if !haveGot {
				d.Detail = "not computed (insufficient data or unsupported key)"
			} else {
				d.Detail = "not asserted"
			}
			report.Missing = append(report.Missing, d)
			if opts.FailOnMissing {
				report.Pass = false
			}
			continue
		}

		report.CheckedKeys++
		if d, ok := compare(key, exp, got); !ok {
			report.Discrepancies = append(report.Discrepancies, d)
			report.Pass = false
		}
	}
	return report
}

// compare applies the dual tolerance rule: near-zero expectations use the
// absolute floor, everything else the relative bound.
func compare(key string, expected, computed float64) (Discrepancy, bool) {
	absErr := math.Abs(computed - expected)

	if math.Abs(expected) < AbsoluteToleranceNs {
		if absErr <= AbsoluteToleranceNs {
			return Discrepancy{}, true
		}
		return Discrepancy{
			Key:      key,
			Expected: expected,
			Computed: computed,
			ErrorNs:  absErr,
			Detail:   fmt.Sprintf("absolute error %.3f ns exceeds %.0f ns floor", absErr, AbsoluteToleranceNs),
		}, false
	}

	relErr := absErr / math.Abs(expected)
	if relErr <= RelativeTolerance {
		return Discrepancy{}, true
	}
	return Discrepancy{
		Key:      key,
		Expected: expected,
		Computed: computed,
		ErrorNs:  absErr,
		ErrorRel: relErr,
		Detail:   fmt.Sprintf("relative error %.4f%% exceeds %.2f%%", relErr*100, RelativeTolerance*100),
	}, false
}

func unionKeys(a, b map[string]float64) []string {
	seen := make(map[string]struct{}, len(a)+len(b))
	for k := range a {
		seen[k] = struct{}{}
	}
	for k := range b {
		seen[k] = struct{}{}
	}
	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// MetricKey formats a family/tau pair the way asserted logs name them,
// e.g. ("mtie", 10) -> "mtie_10s".
func MetricKey(family string, tauS float64) string {
	if tauS == math.Trunc(tauS) {
		return fmt.Sprintf("%s_%ds", family, int64(tauS))
	}
	return fmt.Sprintf("%s_%gs", family, tauS)
}

// Recompute builds the full metric key set from a raw time-error series:
// MTIE and TDEV at the given taus plus the summary statistics keys. Only
// defined metric values become keys; undefined taus stay absent so the
// validator reports them as missing rather than comparing garbage.
func Recompute(series *domain.TimeErrorSeries, tausS []float64) map[string]float64 {
	te := series.Values()
	dt := series.SampleDt()

	out := make(map[string]float64)
	addFamily(out, domain.FamilyMTIE, metrics.MTIE(te, dt, tausS))
	addFamily(out, domain.FamilyTDEV, metrics.TDEV(te, dt, tausS))

	stats := metrics.Stats(series)
	out["mean_te_ns"] = stats.MeanNs
	out["std_te_ns"] = stats.StdNs
	out["max_te_ns"] = stats.MaxAbsNs
	out["rms_te_ns"] = stats.RMSNs
	return out
}

func addFamily(out map[string]float64, family string, result domain.MetricResult) {
	for _, tau := range result.Taus() {
		if v := result.At(tau); v.Defined {
			out[MetricKey(family, tau)] = v.Ns
		}
	}
}
