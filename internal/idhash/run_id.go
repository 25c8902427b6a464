package idhash

import (
	"crypto/sha256"
	"fmt"

	"github.com/mr-tron/base58"

	"clocklab/internal/domain"
)

// ComputeRunID computes a deterministic run identifier using SHA256.
// Formula: SHA256(test_name|source|start_time_ns|sample_rate_hz)
// Returns the base58-encoded hash so IDs stay short enough for log headers
// and file names.
func ComputeRunID(
	testName string,
	source domain.Source,
	startTimeNs int64,
	sampleRateHz float64,
) string {
	data := fmt.Sprintf("%s|%s|%d|%g",
		testName,
		string(source),
		startTimeNs,
		sampleRateHz,
	)

	hash := sha256.Sum256([]byte(data))
	return base58.Encode(hash[:])
}
