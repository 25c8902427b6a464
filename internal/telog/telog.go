// Package telog reads and writes time-error log files: a CSV body of
// timestamp/TE pairs preceded by a commented metadata header, the format the
// clock test harness exports.
package telog

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/gocarina/gocsv"

	"clocklab/internal/domain"
)

// ErrNoData is returned for a log with a valid header but no sample rows.
var ErrNoData = errors.New("te log contains no samples")

// Metadata is the commented header of a TE log. Unknown header lines are
// ignored; all fields are optional except that a missing sample rate is
// inferred from the timestamps.
type Metadata struct {
	TestRunID    string
	TestName     string
	Version      string
	StartTimeUTC string
	SampleRateHz float64
	Standard     string
}

type sampleRow struct {
	TimestampNs int64   `csv:"timestamp_ns"`
	TENs        float64 `csv:"te_ns"`
}

// Read parses a TE log from r and returns the sample series plus the header
// metadata. The sample rate comes from the header when present, otherwise
// from the median timestamp interval.
func Read(r io.Reader) (*domain.TimeErrorSeries, Metadata, error) {
	var meta Metadata
	var body bytes.Buffer

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(strings.TrimSpace(line), "#") {
			parseHeaderLine(line, &meta)
			continue
		}
		body.WriteString(line)
		body.WriteByte('\n')
	}
	if err := scanner.Err(); err != nil {
		return nil, meta, fmt.Errorf("read te log: %w", err)
	}

	var rows []sampleRow
	if err := gocsv.UnmarshalBytes(body.Bytes(), &rows); err != nil {
		return nil, meta, fmt.Errorf("parse te log rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, meta, ErrNoData
	}

	samples := make([]domain.TimeErrorSample, len(rows))
	for i, row := range rows {
		samples[i] = domain.TimeErrorSample{TimestampNs: row.TimestampNs, TENs: row.TENs}
	}

	var series *domain.TimeErrorSeries
	var err error
	if meta.SampleRateHz > 0 {
		series, err = domain.NewTimeErrorSeriesWithRate(samples, meta.SampleRateHz)
	} else {
		series, err = domain.NewTimeErrorSeries(samples)
		if err == nil {
			meta.SampleRateHz = series.SampleRateHz()
		}
	}
	if err != nil {
		return nil, meta, fmt.Errorf("build series: %w", err)
	}
	return series, meta, nil
}

// ReadFile reads a TE log from disk.
func ReadFile(path string) (*domain.TimeErrorSeries, Metadata, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, Metadata{}, fmt.Errorf("open te log: %w", err)
	}
	defer f.Close()
	return Read(f)
}

func parseHeaderLine(line string, meta *Metadata) {
	switch {
	case strings.Contains(line, "Test Run ID:"):
		meta.TestRunID = headerValue(line)
	case strings.Contains(line, "Test Name:"):
		meta.TestName = headerValue(line)
	case strings.Contains(line, "Version:"):
		meta.Version = headerValue(line)
	case strings.Contains(line, "Start Time (UTC):"):
		meta.StartTimeUTC = headerValue(line)
	case strings.Contains(line, "Standard:"):
		meta.Standard = headerValue(line)
	case strings.Contains(line, "Sample Rate:"):
		// "#   Sample Rate:      10.000 Hz" - the number before "Hz".
		fields := strings.Fields(line)
		for i, f := range fields {
			if f == "Hz" && i > 0 {
				if v, err := strconv.ParseFloat(fields[i-1], 64); err == nil {
					meta.SampleRateHz = v
				}
			}
		}
	}
}

// headerValue returns everything after the last ':' of a header label.
// "Start Time (UTC):" style labels contain a ':' only at the end, so
// splitting on the label keeps timestamp values intact.
func headerValue(line string) string {
	if i := strings.Index(line, ": "); i >= 0 {
		return strings.TrimSpace(line[i+2:])
	}
	if i := strings.LastIndex(line, ":"); i >= 0 {
		return strings.TrimSpace(line[i+1:])
	}
	return ""
}

// Write emits a TE log: commented metadata header followed by the CSV body.
func Write(w io.Writer, series *domain.TimeErrorSeries, meta Metadata) error {
	var header strings.Builder
	header.WriteString("# ========================================\n")
	header.WriteString("# Clock Performance Test CSV Export\n")
	header.WriteString("# ========================================\n")
	if meta.TestName != "" {
		fmt.Fprintf(&header, "#   Test Name:        %s\n", meta.TestName)
	}
	if meta.TestRunID != "" {
		fmt.Fprintf(&header, "#   Test Run ID:      %s\n", meta.TestRunID)
	}
	if meta.Version != "" {
		fmt.Fprintf(&header, "#   Version:          %s\n", meta.Version)
	}
	if meta.StartTimeUTC != "" {
		fmt.Fprintf(&header, "#   Start Time (UTC): %s\n", meta.StartTimeUTC)
	}
	if meta.SampleRateHz > 0 {
		fmt.Fprintf(&header, "#   Sample Rate:      %.3f Hz\n", meta.SampleRateHz)
	}
	if meta.Standard != "" {
		fmt.Fprintf(&header, "#   Standard:         %s\n", meta.Standard)
	}
	header.WriteString("#   Columns:          timestamp_ns, te_ns\n")
	if _, err := io.WriteString(w, header.String()); err != nil {
		return fmt.Errorf("write te log header: %w", err)
	}

	rows := make([]sampleRow, series.Len())
	for i := 0; i < series.Len(); i++ {
		s := series.Sample(i)
		rows[i] = sampleRow{TimestampNs: s.TimestampNs, TENs: s.TENs}
	}
	if err := gocsv.Marshal(&rows, w); err != nil {
		return fmt.Errorf("write te log rows: %w", err)
	}
	return nil
}

// WriteFile writes a TE log to disk.
func WriteFile(path string, series *domain.TimeErrorSeries, meta Metadata) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create te log: %w", err)
	}
	if err := Write(f, series, meta); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
