package reporting

import (
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"
)

// WriteBudgetTable prints the uncertainty budget as an ASCII table, for
// terminal output.
func WriteBudgetTable(w io.Writer, r *Report) {
	tbl := tablewriter.NewWriter(w)
	tbl.SetHeader([]string{"Component", "Type", "Distribution", "u (ns)", "c", "Contribution (ns)", "DOF"})
	tbl.SetBorder(true)

	for _, row := range r.BudgetRows {
		tbl.Append([]string{
			row.Name,
			row.Kind,
			row.Distribution,
			fmt.Sprintf("%.3f", row.UNs),
			fmt.Sprintf("%.2f", row.Sensitivity),
			fmt.Sprintf("%.3f", row.ContributionNs),
			row.DOF,
		})
	}

	tbl.Render()

	fmt.Fprintf(w, "Combined standard uncertainty: %.3f ns\n", r.Budget.CombinedUncertaintyNs)
	fmt.Fprintf(w, "Expanded uncertainty (k=%.0f):  %.3f ns\n", r.Budget.CoverageFactor, r.Budget.ExpandedUncertaintyNs)
	fmt.Fprintf(w, "Effective degrees of freedom:  %s\n", formatDOF(r.Budget.EffectiveDOF))
}
