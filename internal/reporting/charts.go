package reporting

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"clocklab/internal/domain"
)

// chartMaxPoints caps the TE series chart; longer records are decimated so
// the HTML stays responsive.
const chartMaxPoints = 2000

// WriteCharts renders the TE series and the stability curves to a
// self-contained HTML page. A nil series skips the TE chart.
func WriteCharts(path string, series *domain.TimeErrorSeries, r *Report) error {
	page := components.NewPage()

	if series != nil {
		page.AddCharts(teSeriesChart(series))
	}
	page.AddCharts(stabilityChart(r))

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create chart file: %w", err)
	}
	defer f.Close()

	if err := page.Render(io.MultiWriter(f)); err != nil {
		return fmt.Errorf("render charts: %w", err)
	}
	return nil
}

// teSeriesChart plots time error against elapsed time.
func teSeriesChart(series *domain.TimeErrorSeries) *charts.Line {
	n := series.Len()
	stride := 1
	if n > chartMaxPoints {
		stride = (n + chartMaxPoints - 1) / chartMaxPoints
	}

	start := series.StartTimeNs()
	var xs []string
	var ys []opts.LineData
	for i := 0; i < n; i += stride {
		sample := series.Sample(i)
		xs = append(xs, fmt.Sprintf("%.2f", float64(sample.TimestampNs-start)/1e9))
		ys = append(ys, opts.LineData{Value: sample.TENs})
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "Time Error",
			Subtitle: fmt.Sprintf("%d samples, %.1f s", n, series.DurationSeconds()),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: true}),
		charts.WithXAxisOpts(opts.XAxis{Name: "elapsed (s)"}),
		charts.WithYAxisOpts(opts.YAxis{
			Name: "TE",
			AxisLabel: &opts.AxisLabel{
				Show:      true,
				Formatter: "{value} ns",
			},
		}),
	)
	line.SetXAxis(xs).AddSeries("TE (ns)", ys)
	return line
}

// stabilityChart plots MTIE and TDEV against tau. Undefined taus render as
// gaps in the series.
func stabilityChart(r *Report) *charts.Line {
	tauSet := make(map[float64]struct{})
	for _, row := range r.MTIERows {
		tauSet[row.TauS] = struct{}{}
	}
	for _, row := range r.TDEVRows {
		tauSet[row.TauS] = struct{}{}
	}

	var taus []float64
	for tau := range tauSet {
		taus = append(taus, tau)
	}
	sort.Float64s(taus)

	var xs []string
	for _, tau := range taus {
		xs = append(xs, fmt.Sprintf("%g", tau))
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "Stability vs Observation Interval",
			Subtitle: r.Standard,
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: true}),
		charts.WithXAxisOpts(opts.XAxis{Name: "tau (s)"}),
		// Stability curves span decades, so the value axis is logarithmic.
		charts.WithYAxisOpts(opts.YAxis{
			Name: "ns",
			Type: "log",
			AxisLabel: &opts.AxisLabel{
				Show:      true,
				Formatter: "{value} ns",
			},
		}),
	)
	line.SetXAxis(xs)
	line.AddSeries("MTIE", metricSeries(taus, r.MTIERows))
	line.AddSeries("TDEV", metricSeries(taus, r.TDEVRows))
	return line
}

// metricSeries aligns rows to the shared tau axis; absent or undefined taus
// become nil points.
func metricSeries(taus []float64, rows []MetricRow) []opts.LineData {
	byTau := make(map[float64]domain.MetricValue, len(rows))
	for _, row := range rows {
		byTau[row.TauS] = row.Value
	}

	data := make([]opts.LineData, len(taus))
	for i, tau := range taus {
		if v, ok := byTau[tau]; ok && v.Defined {
			data[i] = opts.LineData{Value: v.Ns}
		} else {
			data[i] = opts.LineData{Value: nil}
		}
	}
	return data
}
