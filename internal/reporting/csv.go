package reporting

import (
	"fmt"
	"strings"
)

// RenderCSV renders the metric tables as one CSV string, one row per
// (family, tau). Undefined values leave the value cell empty.
func RenderCSV(r *Report) string {
	var sb strings.Builder

	// Header
	sb.WriteString("family,tau_s,value,defined,limit_ns,status\n")

	// Rows
	for _, rows := range [][]MetricRow{r.MTIERows, r.TDEVRows, r.ADEVRows} {
		for _, row := range rows {
			value := ""
			if row.Value.Defined {
				value = fmt.Sprintf("%.6f", row.Value.Ns)
			}

			limit, status := "", ""
			if row.HasLimit {
				limit = fmt.Sprintf("%.0f", row.LimitNs)
				status = passFail(row.Pass)
			}

			sb.WriteString(fmt.Sprintf("%s,%g,%s,%t,%s,%s\n",
				strings.ToLower(row.Family),
				row.TauS,
				value,
				row.Value.Defined,
				limit,
				status,
			))
		}
	}

	return sb.String()
}
