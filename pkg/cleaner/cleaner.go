// Package cleaner prepares the raw service-event log for inference:
// it normalizes identifiers and categories, drops events that cannot
// participate in any per-unit analysis, and assigns each surviving
// event its cycle number within the unit's chronological history.
package cleaner

import (
	"sort"
	"time"

	"github.com/netviva/fleetrec/pkg/constants"
	"github.com/netviva/fleetrec/pkg/fleet"
	"github.com/netviva/fleetrec/pkg/logging"
	"github.com/netviva/fleetrec/pkg/vocab"
)

// Metrics describes what one cleaning pass did. Dropped events are
// counted, never silently discarded.
type Metrics struct {
	// Total is how many events entered the pass.
	Total int `yaml:"total"`

	// Kept is how many events survived into the cleaned log.
	Kept int `yaml:"kept"`

	// MissingUnitID counts events dropped for carrying no unit
	// identifier after normalization.
	MissingUnitID int `yaml:"missing_unit_id"`

	// Duplicates counts events dropped for reusing an event identifier
	// already seen earlier in source order. The first occurrence wins.
	Duplicates int `yaml:"duplicates"`

	// MissingByCloseMonth segments MissingUnitID by the "2006-01"
	// close-month bucket. Events with no closing timestamp fall into
	// the empty bucket. The segmentation is the reliability signal:
	// identifier coverage collapsed after May 2024, and any per-unit
	// figure over later months must carry that caveat.
	MissingByCloseMonth map[string]int `yaml:"missing_by_close_month"`

	// Ignored counts events whose subject maps to the ignored
	// category, dropped as deliberate non-equipment work.
	Ignored int `yaml:"ignored"`

	// Unmapped counts kept events whose subject no table could map.
	// They stay in the log under the unmapped sentinel so the service
	// history remains complete; the audit engine surfaces them.
	Unmapped int `yaml:"unmapped"`
}

// CoveredFrom returns the first "2006-01" close month with complete
// unit-identifier coverage: the month after the latest one that
// dropped events for a missing identifier. Per-unit figures for
// earlier months undercount activity. Empty when nothing was dropped.
func (m Metrics) CoveredFrom() string {
	last := ""
	for month, n := range m.MissingByCloseMonth {
		if n > 0 && month > last {
			last = month
		}
	}
	if last == "" {
		return ""
	}
	t, err := time.Parse(constants.MonthLayout, last)
	if err != nil {
		return ""
	}
	return t.AddDate(0, 1, 0).Format(constants.MonthLayout)
}

// Clean normalizes, filters, and cycle-numbers the event log. The
// input slice is not modified; events are copied before mutation.
func Clean(events []fleet.ServiceEvent, n *vocab.Normalizer) ([]fleet.ServiceEvent, Metrics) {
	metrics := Metrics{
		Total:               len(events),
		MissingByCloseMonth: make(map[string]int),
	}

	kept := make([]fleet.ServiceEvent, 0, len(events))
	seen := make(map[string]struct{}, len(events))
	for i := range events {
		ev := events[i]
		ev.UnitID = fleet.NormalizeUnitID(ev.UnitID.String())
		if ev.UnitID.IsZero() {
			metrics.MissingUnitID++
			metrics.MissingByCloseMonth[ev.CloseMonth()]++
			continue
		}
		if ev.EventID != "" {
			if _, dup := seen[ev.EventID]; dup {
				metrics.Duplicates++
				continue
			}
			seen[ev.EventID] = struct{}{}
		}

		ev.Category = n.Normalize(ev.RawCategory)
		if ev.Category == fleet.CategoryUnmapped {
			metrics.Unmapped++
		}
		kept = append(kept, ev)
	}

	// Ignored events consume a cycle number before they are removed, so
	// the surviving events keep the ordinals of the full history.
	assignCycles(kept)
	out := kept[:0]
	for _, ev := range kept {
		if ev.Category == fleet.CategoryIgnored {
			metrics.Ignored++
			continue
		}
		out = append(out, ev)
	}
	kept = out
	metrics.Kept = len(kept)

	logging.Debug().
		Int("total", metrics.Total).
		Int("kept", metrics.Kept).
		Int("missing_unit_id", metrics.MissingUnitID).
		Int("duplicates", metrics.Duplicates).
		Int("ignored", metrics.Ignored).
		Int("unmapped", metrics.Unmapped).
		Msg("cleaned service event log")

	return kept, metrics
}

// assignCycles numbers each unit's events 1..n in closing order.
// Events without a closing timestamp sort after closed ones, and ties
// keep their source order, so numbering is deterministic for identical
// input.
func assignCycles(events []fleet.ServiceEvent) {
	sort.SliceStable(events, func(i, j int) bool {
		a, b := events[i], events[j]
		if a.UnitID != b.UnitID {
			return a.UnitID < b.UnitID
		}
		switch {
		case a.ClosedAt == nil && b.ClosedAt == nil:
			return false
		case a.ClosedAt == nil:
			return false
		case b.ClosedAt == nil:
			return true
		}
		return a.ClosedAt.Before(*b.ClosedAt)
	})

	cycle := 0
	var current fleet.UnitID
	for i := range events {
		if events[i].UnitID != current {
			current = events[i].UnitID
			cycle = 0
		}
		cycle++
		events[i].Cycle = cycle
	}
}

// MaxCycles returns the highest cycle number per unit in a cleaned
// log. Assumes Clean has already numbered the events.
func MaxCycles(events []fleet.ServiceEvent) map[fleet.UnitID]int {
	out := make(map[fleet.UnitID]int)
	for i := range events {
		if events[i].Cycle > out[events[i].UnitID] {
			out[events[i].UnitID] = events[i].Cycle
		}
	}
	return out
}

// LastEvents returns each unit's final event in a cleaned log, the
// one with the highest cycle number. The returned pointers alias the
// input slice.
func LastEvents(events []fleet.ServiceEvent) map[fleet.UnitID]*fleet.ServiceEvent {
	out := make(map[fleet.UnitID]*fleet.ServiceEvent)
	for i := range events {
		last, ok := out[events[i].UnitID]
		if !ok || events[i].Cycle > last.Cycle {
			out[events[i].UnitID] = &events[i]
		}
	}
	return out
}
