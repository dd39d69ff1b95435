// Package recon runs the full reconciliation pass: clean the event
// log, infer the state table, join the classification, audit the
// sources. One pass consumes one consistent snapshot of the four
// source tables and produces one consistent result; there is no
// incremental mode.
package recon

import (
	"context"

	"github.com/agentstation/utc"

	"github.com/netviva/fleetrec/pkg/audit"
	"github.com/netviva/fleetrec/pkg/classify"
	"github.com/netviva/fleetrec/pkg/cleaner"
	"github.com/netviva/fleetrec/pkg/errors"
	"github.com/netviva/fleetrec/pkg/fleet"
	"github.com/netviva/fleetrec/pkg/inference"
	"github.com/netviva/fleetrec/pkg/logging"
	"github.com/netviva/fleetrec/pkg/vocab"
)

// Result is the output of one reconciliation run. Everything a
// consumer may read lives here; the run never mutates its sources.
type Result struct {
	// RunAt stamps the run for cross-run comparison.
	RunAt utc.Time `yaml:"run_at"`

	// States is the fully recomputed per-unit state table, sorted by
	// unit identifier.
	States []fleet.UnitState `yaml:"states"`

	// Events is the cleaned, cycle-numbered event log.
	Events []fleet.ServiceEvent `yaml:"events"`

	// Classification is the possibly-grown classification table,
	// including backfilled known-safe models.
	Classification []fleet.ClassificationEntry `yaml:"classification"`

	// Audit is the findings report for this run.
	Audit *audit.Report `yaml:"audit"`

	// Unmapped proposes vocabulary entries for the subjects this run
	// could not map, most frequent first.
	Unmapped []vocab.UnmappedSubject `yaml:"unmapped,omitempty"`
}

// State returns the state-table row for a unit.
func (r *Result) State(id fleet.UnitID) (fleet.UnitState, error) {
	id = fleet.NormalizeUnitID(id.String())
	for _, s := range r.States {
		if s.UnitID == id {
			return s, nil
		}
	}
	return fleet.UnitState{}, errors.ErrNotFound
}

// History returns the unit's cleaned events in cycle order.
func (r *Result) History(id fleet.UnitID) []fleet.ServiceEvent {
	id = fleet.NormalizeUnitID(id.String())
	var out []fleet.ServiceEvent
	for i := range r.Events {
		if r.Events[i].UnitID == id {
			out = append(out, r.Events[i])
		}
	}
	return out
}

// Run executes one full reconciliation pass. A missing required
// source aborts before any output is produced; per-row defects are
// absorbed into the audit report instead. The context is consulted
// between stages so a cancelled run stops without a partial result.
func Run(ctx context.Context, sources *fleet.Sources) (*Result, error) {
	if err := sources.Validate(); err != nil {
		return nil, err
	}

	normalizer := vocab.New(sources.Vocabulary)
	events, metrics := cleaner.Clean(sources.Events, normalizer)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	states := inference.Infer(sources.Invoices, events)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	states, classification := classify.Join(states, sources.Classification)
	report := audit.Run(sources.Invoices, states, events, sources.Contracts, classification, metrics)

	result := &Result{
		RunAt:          report.RunAt,
		States:         states,
		Events:         events,
		Classification: classification,
		Audit:          report,
		Unmapped:       normalizer.Unmapped(),
	}

	logging.Info().
		Int("units", len(result.States)).
		Int("events", len(result.Events)).
		Bool("warnings", report.HasWarnings()).
		Msg("reconciliation run complete")

	return result, nil
}
