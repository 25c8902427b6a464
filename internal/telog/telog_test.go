package telog

import (
	"bytes"
	"errors"
	"math"
	"strings"
	"testing"

	"clocklab/internal/domain"
)

const sampleLog = `# ========================================
# Clock Performance Test CSV Export
# ========================================
#
# Test Identification:
#   Test Name:        steady_state_compliance
#   Test Run ID:      4Yk2mPx9
#   Version:          1.4.2
#   Start Time (UTC): 2026-08-20T14:03:11Z
#
# Data Format:
#   Columns:          timestamp_ns, te_ns
#   Sample Rate:      10.000 Hz
#
# Compliance Targets:
#   Standard:         ITU-T G.8260 Class C
#
timestamp_ns,te_ns
0,100.5
100000000,101.2
200000000,99.8
300000000,100.1
`

func TestRead_HeaderAndRows(t *testing.T) {
	series, meta, err := Read(strings.NewReader(sampleLog))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}

	if meta.TestName != "steady_state_compliance" {
		t.Errorf("TestName = %q", meta.TestName)
	}
	if meta.TestRunID != "4Yk2mPx9" {
		t.Errorf("TestRunID = %q", meta.TestRunID)
	}
	if meta.StartTimeUTC != "2026-08-20T14:03:11Z" {
		t.Errorf("StartTimeUTC = %q", meta.StartTimeUTC)
	}
	if meta.SampleRateHz != 10 {
		t.Errorf("SampleRateHz = %g, want 10", meta.SampleRateHz)
	}
	if meta.Standard != "ITU-T G.8260 Class C" {
		t.Errorf("Standard = %q", meta.Standard)
	}

	if series.Len() != 4 {
		t.Fatalf("Len = %d, want 4", series.Len())
	}
	if series.Sample(1).TENs != 101.2 {
		t.Errorf("sample[1] = %+v", series.Sample(1))
	}
	if series.SampleDt() != 0.1 {
		t.Errorf("SampleDt = %g, want 0.1 from header rate", series.SampleDt())
	}
}

func TestRead_InfersRateWhenHeaderSilent(t *testing.T) {
	log := "timestamp_ns,te_ns\n0,1\n50000000,2\n100000000,3\n"
	series, meta, err := Read(strings.NewReader(log))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if math.Abs(series.SampleDt()-0.05) > 1e-12 {
		t.Errorf("SampleDt = %g, want 0.05 inferred", series.SampleDt())
	}
	if math.Abs(meta.SampleRateHz-20) > 1e-9 {
		t.Errorf("meta.SampleRateHz = %g, want 20 backfilled", meta.SampleRateHz)
	}
}

func TestRead_EmptyBody(t *testing.T) {
	log := "# Test Name: x\ntimestamp_ns,te_ns\n"
	if _, _, err := Read(strings.NewReader(log)); !errors.Is(err, ErrNoData) {
		t.Errorf("err = %v, want ErrNoData", err)
	}
}

func TestWriteRead_RoundTrip(t *testing.T) {
	samples := []domain.TimeErrorSample{
		{TimestampNs: 0, TENs: -12.5},
		{TimestampNs: 100_000_000, TENs: 8.25},
		{TimestampNs: 200_000_000, TENs: 0},
	}
	series, err := domain.NewTimeErrorSeriesWithRate(samples, 10)
	if err != nil {
		t.Fatalf("build series: %v", err)
	}
	meta := Metadata{
		TestRunID:    "abc123",
		TestName:     "roundtrip",
		SampleRateHz: 10,
		Standard:     "ITU-T G.8260 Class C",
	}

	var buf bytes.Buffer
	if err := Write(&buf, series, meta); err != nil {
		t.Fatalf("Write: %v", err)
	}

	got, gotMeta, err := Read(&buf)
	if err != nil {
		t.Fatalf("Read back: %v", err)
	}
	if gotMeta.TestRunID != meta.TestRunID || gotMeta.TestName != meta.TestName {
		t.Errorf("meta = %+v, want %+v", gotMeta, meta)
	}
	if gotMeta.SampleRateHz != 10 {
		t.Errorf("SampleRateHz = %g", gotMeta.SampleRateHz)
	}
	if got.Len() != series.Len() {
		t.Fatalf("Len = %d, want %d", got.Len(), series.Len())
	}
	for i := 0; i < got.Len(); i++ {
		if got.Sample(i) != series.Sample(i) {
			t.Errorf("sample[%d] = %+v, want %+v", i, got.Sample(i), series.Sample(i))
		}
	}
}
