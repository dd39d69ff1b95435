// Package report renders reconciliation results for people: terminal
// tables for interactive use and markdown for sharing. Rendering is
// read-only and always succeeds on a complete result, warnings
// included; findings degrade to a data-quality banner, never to a
// refusal to render.
package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	md "github.com/nao1215/markdown"
	"github.com/olekukonko/tablewriter"

	"github.com/netviva/fleetrec/pkg/audit"
	"github.com/netviva/fleetrec/pkg/fleet"
	"github.com/netviva/fleetrec/pkg/recon"
	"github.com/netviva/fleetrec/pkg/rollup"
)

// locationOrder fixes row order in every location breakdown.
var locationOrder = []fleet.LocationState{
	fleet.LocationInstalled,
	fleet.LocationInStock,
	fleet.LocationWithTechnician,
	fleet.LocationRMA,
	fleet.LocationDiscontinued,
	fleet.LocationNoService,
}

// WriteSummary renders the state-table breakdown and audit findings
// as terminal tables.
func WriteSummary(w io.Writer, result *recon.Result) error {
	fmt.Fprintf(w, "Reconciliation run %s\n", result.RunAt.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(w, "%d units, %d events\n\n", len(result.States), len(result.Events))

	if result.Audit.HasWarnings() {
		fmt.Fprintln(w, "DATA QUALITY WARNING: some findings below need attention")
		fmt.Fprintln(w)
	}

	locations := rollup.LocationCounts(result.States)
	conditions := rollup.ConditionCounts(result.States)

	table := tablewriter.NewTable(w)
	table.Header("Location", "Units")
	for _, loc := range locationOrder {
		if err := table.Append(loc.String(), fmt.Sprint(locations[loc])); err != nil {
			return err
		}
	}
	if err := table.Render(); err != nil {
		return err
	}
	fmt.Fprintln(w)

	table = tablewriter.NewTable(w)
	table.Header("Condition", "Units")
	if err := table.Append(fleet.ConditionNew.String(), fmt.Sprint(conditions[fleet.ConditionNew])); err != nil {
		return err
	}
	if err := table.Append(fleet.ConditionReused.String(), fmt.Sprint(conditions[fleet.ConditionReused])); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	fmt.Fprintln(w)

	return WriteFindings(w, result.Audit)
}

// WriteFindings renders the audit report as a terminal table.
func WriteFindings(w io.Writer, report *audit.Report) error {
	table := tablewriter.NewTable(w)
	table.Header("Check", "Severity", "Count", "Impact")
	for _, f := range report.Findings {
		if err := table.Append(f.Check, string(f.Severity), fmt.Sprint(f.Count), f.Impact); err != nil {
			return err
		}
	}
	return table.Render()
}

// WriteInvoices renders per-invoice rollups as a terminal table.
func WriteInvoices(w io.Writer, rollups []rollup.InvoiceRollup) error {
	table := tablewriter.NewTable(w)
	table.Header("Invoice", "Purchased", "Installed", "In Stock", "RMA", "Installed %")
	for _, r := range rollups {
		if err := table.Append(
			r.Invoice,
			fmt.Sprint(r.Purchased),
			fmt.Sprint(r.Installed),
			fmt.Sprint(r.InStock),
			fmt.Sprint(r.RMA),
			percent(r.InstalledPct),
		); err != nil {
			return err
		}
	}
	return table.Render()
}

// WriteMonth renders the activation view of one "2006-01" month:
// period and cumulative counts, the delta against the month before,
// and the maintenance mix. A month before complete identifier
// coverage gets a warning banner instead of a silent undercount.
func WriteMonth(w io.Writer, result *recon.Result, month string) error {
	from, to, err := rollup.MonthRange(month)
	if err != nil {
		return fmt.Errorf("invalid month %q: %w", month, err)
	}

	if covered := result.Audit.Cleaning.CoveredFrom(); covered != "" && month < covered {
		fmt.Fprintf(w, "DATA QUALITY WARNING: unit coverage is only complete from %s on; %s undercounts activity\n\n", covered, month)
	}

	period := rollup.ActivationsInPeriod(result.Events, from, to)
	cumulative := rollup.CumulativeActivationsThrough(result.Events, to.Add(-time.Nanosecond))
	fmt.Fprintf(w, "Activations in %s: %d (cumulative through month end: %d)\n", month, period, cumulative)

	for _, d := range rollup.MonthDeltas(result.Events) {
		if d.Month == month {
			fmt.Fprintf(w, "Change vs prior month (%d activations): %+d\n", d.Previous, d.Delta)
			break
		}
	}
	fmt.Fprintln(w)

	table := tablewriter.NewTable(w)
	table.Header("Category", "New", "Reused", "Reused %")
	for _, e := range rollup.MaintenanceMix(result.Events, from, to) {
		if err := table.Append(e.Category.String(), fmt.Sprint(e.New), fmt.Sprint(e.Reused), percent(e.ReusedPct)); err != nil {
			return err
		}
	}
	return table.Render()
}

// WriteUnit renders one unit's state and service history.
func WriteUnit(w io.Writer, state fleet.UnitState, history []fleet.ServiceEvent) error {
	fmt.Fprintf(w, "Unit %s\n", state.UnitID)
	fmt.Fprintf(w, "  Model:     %s\n", state.Model)
	if state.SerialNumber != "" {
		fmt.Fprintf(w, "  Serial:    %s\n", state.SerialNumber)
	}
	if state.Invoice != "" {
		fmt.Fprintf(w, "  Invoice:   %s (%s)\n", state.Invoice, state.InvoiceDate.Format("2006-01-02"))
	}
	fmt.Fprintf(w, "  Location:  %s\n", state.Location)
	fmt.Fprintf(w, "  Condition: %s\n", state.Condition)
	fmt.Fprintf(w, "  Obsolete:  %s\n", state.Obsolete)

	if len(history) == 0 {
		fmt.Fprintln(w, "  No service history.")
		return nil
	}
	fmt.Fprintln(w)

	table := tablewriter.NewTable(w)
	table.Header("Cycle", "Event", "Category", "Closed")
	for _, ev := range history {
		closed := ""
		if ev.ClosedAt != nil {
			closed = ev.ClosedAt.Format("2006-01-02")
		}
		if err := table.Append(fmt.Sprint(ev.Cycle), ev.EventID, ev.Category.String(), closed); err != nil {
			return err
		}
	}
	return table.Render()
}

// WriteMarkdown renders the full run report as a markdown document.
func WriteMarkdown(w io.Writer, result *recon.Result, rollups []rollup.InvoiceRollup) error {
	doc := md.NewMarkdown(w)
	doc.H1("Fleet Reconciliation Report")
	doc.PlainTextf("Run at %s. %d units, %d events.",
		result.RunAt.Format("2006-01-02 15:04:05 MST"), len(result.States), len(result.Events))
	doc.LF()

	if result.Audit.HasWarnings() {
		doc.PlainText(md.Bold("Data quality warning:") + " one or more findings below need attention before trusting per-unit figures.")
		doc.LF()
	}

	locations := rollup.LocationCounts(result.States)
	doc.H2("Fleet by Location")
	rows := make([][]string, 0, len(locationOrder))
	for _, loc := range locationOrder {
		rows = append(rows, []string{loc.String(), fmt.Sprint(locations[loc])})
	}
	doc.Table(md.TableSet{Header: []string{"Location", "Units"}, Rows: rows})

	doc.H2("Audit Findings")
	rows = rows[:0]
	for _, f := range result.Audit.Findings {
		rows = append(rows, []string{
			f.Check, string(f.Severity), fmt.Sprint(f.Count), sampleCell(f.Sample), f.Impact,
		})
	}
	doc.Table(md.TableSet{Header: []string{"Check", "Severity", "Count", "Sample", "Impact"}, Rows: rows})

	if len(rollups) > 0 {
		doc.H2("Invoices")
		rows = rows[:0]
		for _, r := range rollups {
			rows = append(rows, []string{
				r.Invoice, fmt.Sprint(r.Purchased), fmt.Sprint(r.Installed),
				fmt.Sprint(r.InStock), fmt.Sprint(r.RMA), percent(r.InstalledPct),
			})
		}
		doc.Table(md.TableSet{Header: []string{"Invoice", "Purchased", "Installed", "In Stock", "RMA", "Installed %"}, Rows: rows})
	}

	if len(result.Unmapped) > 0 {
		doc.H2("Proposed Vocabulary Entries")
		rows = rows[:0]
		for _, u := range result.Unmapped {
			rows = append(rows, []string{u.Raw, fmt.Sprint(u.Count)})
		}
		doc.Table(md.TableSet{Header: []string{"Raw Subject", "Occurrences"}, Rows: rows})
	}

	return doc.Build()
}

func sampleCell(sample []string) string {
	const shown = 5
	if len(sample) <= shown {
		return strings.Join(sample, ", ")
	}
	return strings.Join(sample[:shown], ", ") + ", ..."
}

func percent(rate float64) string {
	return fmt.Sprintf("%.1f%%", rate*100)
}
