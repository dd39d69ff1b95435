// Package audit cross-checks the four source populations and reports
// their disagreements as structured findings. Every check is set
// algebra over indexed unit identifiers, advisory by construction: a
// non-empty finding never halts a run.
package audit

import (
	"sort"

	"github.com/agentstation/utc"

	"github.com/netviva/fleetrec/pkg/classify"
	"github.com/netviva/fleetrec/pkg/cleaner"
	"github.com/netviva/fleetrec/pkg/constants"
	"github.com/netviva/fleetrec/pkg/fleet"
	"github.com/netviva/fleetrec/pkg/logging"
)

// Severity grades a finding for display. No severity blocks anything.
type Severity string

// Finding severities.
const (
	// SeverityInfo marks expected cardinality mismatches between
	// sources, reported with neutral framing.
	SeverityInfo Severity = "info"

	// SeverityWarning marks defects worth fixing upstream: unmapped
	// vocabulary, unclassified models, identifier gaps.
	SeverityWarning Severity = "warning"
)

// Check names, one per reconciliation check.
const (
	CheckEventsNotInvoiced     = "events-not-invoiced"
	CheckInvoicedNoEvents      = "invoiced-no-events"
	CheckActiveNotInvoiced     = "contract-active-not-invoiced"
	CheckInvoicedNotActive     = "invoiced-not-active-contract"
	CheckDuplicateInvoiceLines = "duplicate-invoice-lines"
	CheckUnclassifiedModels    = "unclassified-models"
	CheckUnmappedCategories    = "unmapped-categories"
	CheckMissingUnitIDs        = "missing-unit-ids"
)

// Finding is one check's result: a count, a capped identifier sample,
// and a human-readable impact note for the report.
type Finding struct {
	Check    string   `yaml:"check"`
	Severity Severity `yaml:"severity"`
	Count    int      `yaml:"count"`
	Sample   []string `yaml:"sample,omitempty"`
	Impact   string   `yaml:"impact"`
}

// Report is the findings of one reconciliation run, timestamped so
// consecutive runs can be compared.
type Report struct {
	RunAt    utc.Time        `yaml:"run_at"`
	Findings []Finding       `yaml:"findings"`
	Cleaning cleaner.Metrics `yaml:"cleaning"`
}

// Finding returns the named finding, or a zero-count finding when the
// check produced nothing.
func (r *Report) Finding(check string) Finding {
	for _, f := range r.Findings {
		if f.Check == check {
			return f
		}
	}
	return Finding{Check: check}
}

// HasWarnings reports whether any warning-grade finding is non-empty.
// The reporting layer shows a data-quality banner when this is true.
func (r *Report) HasWarnings() bool {
	for _, f := range r.Findings {
		if f.Severity == SeverityWarning && f.Count > 0 {
			return true
		}
	}
	return false
}

// Run executes every reconciliation check over one run's outputs and
// raw inputs. All arguments are read-only. Checks that produce nothing
// still appear with a zero count so the report shape is stable.
func Run(invoices []fleet.InvoiceLine, states []fleet.UnitState, events []fleet.ServiceEvent,
	contracts []fleet.ContractEntry, classification []fleet.ClassificationEntry,
	metrics cleaner.Metrics) *Report {

	invoiced := make(map[fleet.UnitID]struct{}, len(states))
	for _, s := range states {
		invoiced[s.UnitID] = struct{}{}
	}

	eventUnits := make(map[fleet.UnitID]struct{})
	for i := range events {
		eventUnits[events[i].UnitID] = struct{}{}
	}

	activeContracts := make(map[fleet.UnitID]struct{})
	for _, c := range contracts {
		id := fleet.NormalizeUnitID(c.UnitID.String())
		if !id.IsZero() && c.Status == fleet.ContractActive {
			activeContracts[id] = struct{}{}
		}
	}

	report := &Report{RunAt: utc.Now(), Cleaning: metrics}
	add := func(check string, severity Severity, ids []string, impact string) {
		report.Findings = append(report.Findings, Finding{
			Check:    check,
			Severity: severity,
			Count:    len(ids),
			Sample:   capSample(ids),
			Impact:   impact,
		})
	}

	add(CheckEventsNotInvoiced, SeverityInfo, difference(eventUnits, invoiced),
		"units serviced in the field but absent from the invoice registry; excluded from the state table")
	add(CheckInvoicedNoEvents, SeverityInfo, difference(invoiced, eventUnits),
		"invoiced units with no service history; candidates for pending activation")
	add(CheckActiveNotInvoiced, SeverityInfo, difference(activeContracts, invoiced),
		"active contract units with no purchase record; the fleet is larger than the invoice registry shows")
	add(CheckInvoicedNotActive, SeverityInfo, difference(invoiced, activeContracts),
		"invoiced units without an active contract; likely written off or cancelled")
	add(CheckDuplicateInvoiceLines, SeverityWarning, duplicateInvoiceLines(invoices),
		"units invoiced on more than one line; the first line in source order was kept")
	add(CheckUnclassifiedModels, SeverityWarning, unclassifiedModels(states, classification),
		"models defaulted to not obsolete; add them to the classification table")

	report.Findings = append(report.Findings, unmappedCategories(events))
	report.Findings = append(report.Findings, missingUnitIDs(metrics))

	warnings := 0
	for _, f := range report.Findings {
		if f.Severity == SeverityWarning && f.Count > 0 {
			warnings++
		}
	}
	logging.Info().
		Int("findings", len(report.Findings)).
		Int("warnings", warnings).
		Msg("reconciliation audit complete")

	return report
}

// duplicateInvoiceLines returns the unit identifiers that appear on
// more than one invoice line.
func duplicateInvoiceLines(invoices []fleet.InvoiceLine) []string {
	lines := make(map[fleet.UnitID]int, len(invoices))
	for i := range invoices {
		id := fleet.NormalizeUnitID(invoices[i].UnitID.String())
		if !id.IsZero() {
			lines[id]++
		}
	}
	var out []string
	for id, n := range lines {
		if n > 1 {
			out = append(out, id.String())
		}
	}
	sort.Strings(out)
	return out
}

func unclassifiedModels(states []fleet.UnitState, classification []fleet.ClassificationEntry) []string {
	unknown := classify.UnknownModels(states, classification)
	sort.Strings(unknown)
	return unknown
}

// unmappedCategories counts events still tagged with the unmapped
// sentinel after normalization. The sample holds the distinct raw
// subjects rather than unit identifiers, since the fix is a vocabulary
// entry, not a unit correction.
func unmappedCategories(events []fleet.ServiceEvent) Finding {
	subjects := make(map[string]struct{})
	count := 0
	for i := range events {
		if events[i].Category == fleet.CategoryUnmapped {
			count++
			subjects[events[i].RawCategory] = struct{}{}
		}
	}
	raw := make([]string, 0, len(subjects))
	for s := range subjects {
		raw = append(raw, s)
	}
	sort.Strings(raw)
	return Finding{
		Check:    CheckUnmappedCategories,
		Severity: SeverityWarning,
		Count:    count,
		Sample:   capSample(raw),
		Impact:   "events whose subject has no vocabulary mapping; propose entries for the maintained table",
	}
}

// missingUnitIDs surfaces the cleaner's identifier-gap tally. The
// sample holds the affected close months so coverage windows are
// visible at a glance.
func missingUnitIDs(metrics cleaner.Metrics) Finding {
	months := make([]string, 0, len(metrics.MissingByCloseMonth))
	for m := range metrics.MissingByCloseMonth {
		if m != "" {
			months = append(months, m)
		}
	}
	sort.Strings(months)
	return Finding{
		Check:    CheckMissingUnitIDs,
		Severity: SeverityWarning,
		Count:    metrics.MissingUnitID,
		Sample:   capSample(months),
		Impact:   "events dropped for missing unit identifiers; per-unit figures over the sampled months are unreliable",
	}
}

// difference returns a \ b as a sorted identifier list.
func difference(a, b map[fleet.UnitID]struct{}) []string {
	var out []string
	for id := range a {
		if _, ok := b[id]; !ok {
			out = append(out, id.String())
		}
	}
	sort.Strings(out)
	return out
}

// capSample truncates an already-sorted list for display.
func capSample(ids []string) []string {
	if len(ids) <= constants.FindingSampleCap {
		return ids
	}
	return ids[:constants.FindingSampleCap]
}
