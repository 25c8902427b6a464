package domain

import "math"

// UncertaintyKind distinguishes how a component was evaluated.
type UncertaintyKind string

const (
	// TypeA uncertainties are estimated statistically from repeated
	// measurements.
	TypeA UncertaintyKind = "Type A"
	// TypeB uncertainties are derived from specifications or assumed
	// distributions.
	TypeB UncertaintyKind = "Type B"
)

// Distribution is the assumed probability distribution of a component.
type Distribution string

const (
	DistNormal      Distribution = "normal"
	DistRectangular Distribution = "rectangular"
	DistTriangular  Distribution = "triangular"
)

// UncertaintyComponent is one entry of a GUM uncertainty budget.
type UncertaintyComponent struct {
	Name                   string
	Symbol                 string
	StandardUncertaintyNs  float64 // u(x_i), >= 0
	Kind                   UncertaintyKind
	Distribution           Distribution
	SensitivityCoefficient float64 // c_i
	DegreesOfFreedom       *int    // nil for Type B (conventionally infinite)
	Notes                  string
}

// Contribution returns c_i * u(x_i) in nanoseconds.
func (c UncertaintyComponent) Contribution() float64 {
	return c.SensitivityCoefficient * c.StandardUncertaintyNs
}

// BudgetResult is the combined summary of an uncertainty budget. It is
// derived deterministically from the component list and never stored
// independently of it.
type BudgetResult struct {
	CombinedUncertaintyNs float64
	ExpandedUncertaintyNs float64
	CoverageFactor        float64
	EffectiveDOF          float64 // math.Inf(1) when every component has infinite dof
}

// EffectiveDOFInfinite reports whether the effective degrees of freedom are
// infinite (all contributions came from components with unbounded dof).
func (r BudgetResult) EffectiveDOFInfinite() bool {
	return math.IsInf(r.EffectiveDOF, 1)
}
