// Package inference derives the per-unit state table: each invoiced
// unit joined with its latest cleaned service event, location resolved
// through an ordered rule cascade, condition derived from the cycle
// count. The table is recomputed wholesale on every run; nothing is
// merged with prior output.
package inference

import (
	"sort"
	"strings"

	"github.com/netviva/fleetrec/pkg/cleaner"
	"github.com/netviva/fleetrec/pkg/fleet"
	"github.com/netviva/fleetrec/pkg/logging"
	"github.com/netviva/fleetrec/pkg/vocab"
)

// rule is one step of the location cascade. Rules are evaluated in
// order against the unit's latest event and the first match wins.
type rule struct {
	name  string
	match func(last *fleet.ServiceEvent) bool
	state fleet.LocationState
}

// warehouseKeywords identify storage and distribution locations. The
// texts are compared in folded form, so accents and casing in the
// source do not matter.
var warehouseKeywords = []string{"ALMOX", "PRINCIPAL", "DISTRIBUIC", "CONFERIDO"}

// cascade is the ordered location cascade. The final rule always
// matches: a unit whose latest event fits nothing above is assumed to
// still be in a technician's custody.
var cascade = []rule{
	{
		name: "rma-warehouse",
		match: func(last *fleet.ServiceEvent) bool {
			return strings.Contains(vocab.Fold(last.Warehouse), "RMA")
		},
		state: fleet.LocationRMA,
	},
	{
		name: "on-loan",
		match: func(last *fleet.ServiceEvent) bool {
			return vocab.Fold(last.LoanStatus) == "EMPRESTADO"
		},
		state: fleet.LocationInstalled,
	},
	{
		name: "discontinued",
		match: func(last *fleet.ServiceEvent) bool {
			return strings.Contains(vocab.Fold(last.Warehouse), "DESCONTINUADO")
		},
		state: fleet.LocationDiscontinued,
	},
	{
		name: "warehouse",
		match: func(last *fleet.ServiceEvent) bool {
			folded := vocab.Fold(last.Warehouse)
			for _, kw := range warehouseKeywords {
				if strings.Contains(folded, kw) {
					return true
				}
			}
			return false
		},
		state: fleet.LocationInStock,
	},
	{
		name: "unused",
		match: func(last *fleet.ServiceEvent) bool {
			return vocab.Fold(last.LoanStatus) == "SEM USO"
		},
		state: fleet.LocationWithTechnician,
	},
	{
		name:  "default",
		match: func(*fleet.ServiceEvent) bool { return true },
		state: fleet.LocationWithTechnician,
	},
}

// Locate resolves the location of a unit from its latest event. A nil
// latest event means the unit has no service history at all, which is
// its own state rather than a fall-through to the cascade default.
func Locate(last *fleet.ServiceEvent) fleet.LocationState {
	if last == nil {
		return fleet.LocationNoService
	}
	for _, r := range cascade {
		if r.match(last) {
			return r.state
		}
	}
	return fleet.LocationWithTechnician
}

// Infer builds the state table for every invoiced unit. Duplicate
// invoice lines for a unit keep the first line in source order; the
// audit engine reports the duplication. The result is sorted by unit
// identifier so output is stable across runs.
func Infer(invoices []fleet.InvoiceLine, events []fleet.ServiceEvent) []fleet.UnitState {
	maxCycles := cleaner.MaxCycles(events)
	lastEvents := cleaner.LastEvents(events)

	states := make([]fleet.UnitState, 0, len(invoices))
	seen := make(map[fleet.UnitID]struct{}, len(invoices))
	for i := range invoices {
		line := invoices[i]
		line.UnitID = fleet.NormalizeUnitID(line.UnitID.String())
		if line.UnitID.IsZero() {
			continue
		}
		if _, dup := seen[line.UnitID]; dup {
			continue
		}
		seen[line.UnitID] = struct{}{}

		last := lastEvents[line.UnitID]
		state := fleet.UnitState{
			UnitID:       line.UnitID,
			Model:        line.Model,
			SerialNumber: line.SerialNumber,
			Invoice:      line.Invoice,
			InvoiceDate:  line.InvoiceDate,
			Location:     Locate(last),
			MaxCycle:     maxCycles[line.UnitID],
			Condition:    fleet.ConditionFromCycle(maxCycles[line.UnitID]),
		}
		if last != nil {
			state.LastCategory = last.Category
			state.LastEventAt = last.ClosedAt
		}
		states = append(states, state)
	}

	sort.Slice(states, func(i, j int) bool { return states[i].UnitID < states[j].UnitID })

	logging.Debug().
		Int("units", len(states)).
		Int("events", len(events)).
		Msg("inferred state table")

	return states
}
