// Package compliance evaluates computed metrics against telecom-standard
// threshold tables (ITU-T G.8260 masks, IEEE 1588-2019 Annex J servo
// recommendations). Policies are caller-owned configuration; the checker
// itself is a pure function.
package compliance

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ErrInvalidPolicy is returned when a threshold policy fails validation at
// construction. Malformed tables are rejected here, never deep inside a
// comparison.
var ErrInvalidPolicy = errors.New("invalid threshold policy")

// ServoLimits bounds the step response of a clock servo.
type ServoLimits struct {
	SettlingTimeS    float64 `yaml:"settling_time_s"`
	OvershootPercent float64 `yaml:"overshoot_percent"`
}

// ThresholdPolicy is one named compliance mask: per-tau MTIE/TDEV limits in
// nanoseconds plus optional servo limits.
type ThresholdPolicy struct {
	Name       string              `yaml:"name"`
	MTIELimits map[float64]float64 `yaml:"mtie_limits_ns"`
	TDEVLimits map[float64]float64 `yaml:"tdev_limits_ns"`
	Servo      *ServoLimits        `yaml:"servo"`
}

// Validate rejects malformed tables: non-positive taus, negative or zero
// limits.
func (p *ThresholdPolicy) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("%w: policy name is empty", ErrInvalidPolicy)
	}
	if err := validateLimits("mtie", p.MTIELimits); err != nil {
		return err
	}
	if err := validateLimits("tdev", p.TDEVLimits); err != nil {
		return err
	}
	if p.Servo != nil {
		if p.Servo.SettlingTimeS <= 0 {
			return fmt.Errorf("%w: servo settling time limit %g s must be positive",
				ErrInvalidPolicy, p.Servo.SettlingTimeS)
		}
		if p.Servo.OvershootPercent <= 0 {
			return fmt.Errorf("%w: servo overshoot limit %g%% must be positive",
				ErrInvalidPolicy, p.Servo.OvershootPercent)
		}
	}
	return nil
}

func validateLimits(family string, limits map[float64]float64) error {
	for tau, limit := range limits {
		if tau <= 0 {
			return fmt.Errorf("%w: %s tau %g s must be positive", ErrInvalidPolicy, family, tau)
		}
		if limit <= 0 {
			return fmt.Errorf("%w: %s limit %g ns at tau %g s must be positive",
				ErrInvalidPolicy, family, limit, tau)
		}
	}
	return nil
}

// LoadPolicy reads and validates a threshold policy from a YAML file.
func LoadPolicy(path string) (*ThresholdPolicy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read policy file: %w", err)
	}
	return ParsePolicy(data)
}

// ParsePolicy decodes and validates a YAML threshold policy.
func ParsePolicy(data []byte) (*ThresholdPolicy, error) {
	var p ThresholdPolicy
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPolicy, err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// G8260ClassC is the built-in ITU-T G.8260 Class C mask for packet-based
// timing: MTIE(1s) < 100 us, MTIE(10s) < 200 us, MTIE(30s) < 300 us.
func G8260ClassC() *ThresholdPolicy {
	return &ThresholdPolicy{
		Name: "ITU-T G.8260 Class C",
		MTIELimits: map[float64]float64{
			1:  100_000,
			10: 200_000,
			30: 300_000,
		},
	}
}

// IEEE1588AnnexJ is the built-in IEEE 1588-2019 Annex J servo
// recommendation: settle within 20 s of a 1 ms step, overshoot below 30 %.
func IEEE1588AnnexJ() *ThresholdPolicy {
	return &ThresholdPolicy{
		Name: "IEEE 1588-2019 Annex J",
		Servo: &ServoLimits{
			SettlingTimeS:    20,
			OvershootPercent: 30,
		},
	}
}
