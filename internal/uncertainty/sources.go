package uncertainty

import "clocklab/internal/domain"

// DefaultTypeBSources returns the baseline Type B catalog for a host-clock
// timestamping chain. Values come from typical oscillator and OS timing
// specifications; callers with calibrated hardware should replace them.
func DefaultTypeBSources() []domain.UncertaintyComponent {
	clockRes := FromRectangular("Clock Resolution",
		1.0, "assumed 1 ns timestamp quantization")
	clockRes.Symbol = "u_clock_res"

	intLat := FromRectangular("Interrupt Latency",
		500.0, "interrupt service latency, 500 ns typical range")
	intLat.Symbol = "u_int_lat"

	syscall := FromNormal("System Call Overhead",
		50.0, 1, "benchmarked clock read standard deviation")
	syscall.Symbol = "u_syscall"

	temp := FromRectangular("Temperature Drift",
		100.0, "TCXO 1 ppm/degC over 10 degC ambient variation")
	temp.Symbol = "u_temp"

	aging := FromRectangular("Aging Drift",
		50.0, "crystal aging over the measurement interval")
	aging.Symbol = "u_aging"

	return []domain.UncertaintyComponent{clockRes, intLat, syscall, temp, aging}
}

// DefaultBudget builds a budget pre-loaded with the default Type B catalog.
func DefaultBudget() *Budget {
	b := NewBudget()
	for _, c := range DefaultTypeBSources() {
		// Catalog entries are constructed valid.
		_ = b.Add(c)
	}
	return b
}
