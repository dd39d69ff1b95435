// Package classify attaches the obsolescence flag to the state table.
// Lookup is a case-sensitive exact match on model name; the curated
// classification table is append-only and the join never edits an
// existing entry.
package classify

import (
	"github.com/netviva/fleetrec/pkg/fleet"
	"github.com/netviva/fleetrec/pkg/logging"
)

// knownSafeModels are force-classified as not obsolete when absent
// from the curated table, and backfilled into the table output so it
// documents itself over time.
var knownSafeModels = []string{
	"ONT ZTE F6600P",
	"ONU ZTE F6600P",
	"ROTEADOR ZTE H3601 MESH",
}

// Join flags every state-table row and returns the possibly-grown
// classification table. Models absent from the table default to not
// obsolete without being backfilled; only the known-safe models are
// appended. Existing entries are never rewritten.
func Join(states []fleet.UnitState, table []fleet.ClassificationEntry) ([]fleet.UnitState, []fleet.ClassificationEntry) {
	index := make(map[string]fleet.Flag, len(table))
	out := make([]fleet.ClassificationEntry, 0, len(table)+len(knownSafeModels))
	for _, e := range table {
		if _, ok := index[e.Model]; ok {
			continue
		}
		index[e.Model] = e.Obsolete
		out = append(out, e)
	}

	backfilled := 0
	for _, model := range knownSafeModels {
		if _, ok := index[model]; ok {
			continue
		}
		index[model] = fleet.FlagNotObsolete
		out = append(out, fleet.ClassificationEntry{Model: model, Obsolete: fleet.FlagNotObsolete})
		backfilled++
	}

	flagged := make([]fleet.UnitState, len(states))
	copy(flagged, states)
	unknown := 0
	for i := range flagged {
		if flag, ok := index[flagged[i].Model]; ok {
			flagged[i].Obsolete = flag
			continue
		}
		flagged[i].Obsolete = fleet.FlagNotObsolete
		unknown++
	}

	if backfilled > 0 || unknown > 0 {
		logging.Debug().
			Int("backfilled", backfilled).
			Int("unknown_model_rows", unknown).
			Msg("classification join defaults applied")
	}

	return flagged, out
}

// UnknownModels returns the distinct state-table models absent from
// the classification table, in first-seen order. Input to the audit
// engine.
func UnknownModels(states []fleet.UnitState, table []fleet.ClassificationEntry) []string {
	index := make(map[string]struct{}, len(table))
	for _, e := range table {
		index[e.Model] = struct{}{}
	}

	seen := make(map[string]struct{})
	var out []string
	for _, s := range states {
		if _, ok := index[s.Model]; ok {
			continue
		}
		if _, dup := seen[s.Model]; dup {
			continue
		}
		seen[s.Model] = struct{}{}
		out = append(out, s.Model)
	}
	return out
}
