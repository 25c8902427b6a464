package compliance

import (
	"sort"

	"clocklab/internal/domain"
)

// CheckMetric evaluates a computed metric against a per-tau limit table.
// Every table entry produces a verdict: a tau the metric never computed, or
// computed as undefined, fails its check. The aggregate is the conjunction
// over all entries.
func CheckMetric(standard string, result domain.MetricResult, limits map[float64]float64) domain.ComplianceResult {
	taus := make([]float64, 0, len(limits))
	for tau := range limits {
		taus = append(taus, tau)
	}
	sort.Float64s(taus)

	out := domain.ComplianceResult{Standard: standard, AggregatePass: true}
	for _, tau := range taus {
		limit := limits[tau]
		measured := result.At(tau)
		pass := measured.Defined && measured.Ns <= limit
		if !pass {
			out.AggregatePass = false
		}
		out.Checks = append(out.Checks, domain.ComplianceCheck{
			TauS:     tau,
			Measured: measured,
			LimitNs:  limit,
			Pass:     pass,
		})
	}
	return out
}

// CheckMTIE evaluates MTIE results against a policy's MTIE mask.
func CheckMTIE(policy *ThresholdPolicy, mtie domain.MetricResult) domain.ComplianceResult {
	return CheckMetric(policy.Name, mtie, policy.MTIELimits)
}

// CheckTDEV evaluates TDEV results against a policy's TDEV mask.
func CheckTDEV(policy *ThresholdPolicy, tdev domain.MetricResult) domain.ComplianceResult {
	return CheckMetric(policy.Name, tdev, policy.TDEVLimits)
}

// CheckServo evaluates a measured servo step response against a policy's
// servo limits. A policy without servo limits passes vacuously with no
// checks.
func CheckServo(policy *ThresholdPolicy, servo domain.ServoResult) domain.ServoComplianceResult {
	out := domain.ServoComplianceResult{AggregatePass: true}
	if policy.Servo == nil {
		return out
	}

	settling := domain.ServoCheck{
		Name:     "settling_time_s",
		Measured: servo.SettlingTimeS,
		Limit:    policy.Servo.SettlingTimeS,
		Pass:     servo.SettlingTimeS < policy.Servo.SettlingTimeS,
	}
	overshoot := domain.ServoCheck{
		Name:     "overshoot_percent",
		Measured: servo.OvershootPercent,
		Limit:    policy.Servo.OvershootPercent,
		Pass:     servo.OvershootPercent < policy.Servo.OvershootPercent,
	}
	out.Checks = []domain.ServoCheck{settling, overshoot}
	out.AggregatePass = settling.Pass && overshoot.Pass
	return out
}
