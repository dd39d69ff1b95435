// Package rollup provides the stateless aggregation queries over the
// state table and cleaned event log: period-bounded activation counts,
// per-invoice composition, month-over-month deltas. Activations in a
// period and cumulative activations through the end of a period are
// different numbers and both are exposed; callers must not substitute
// one for the other.
package rollup

import (
	"sort"
	"time"

	"github.com/agentstation/utc"

	"github.com/netviva/fleetrec/pkg/constants"
	"github.com/netviva/fleetrec/pkg/fleet"
)

// Options are the named policy choices of the aggregation layer.
type Options struct {
	// CountNoServiceAsPending keeps units with no service record in
	// rate denominators as pending activations. When false they are
	// excluded from every percentage.
	CountNoServiceAsPending bool
}

// DefaultOptions counts no-service units as pending.
func DefaultOptions() Options {
	return Options{CountNoServiceAsPending: true}
}

// Rate divides safely: a zero denominator yields 0, never a panic or
// an infinity.
func Rate(numerator, denominator int) float64 {
	if denominator == 0 {
		return 0
	}
	return float64(numerator) / float64(denominator)
}

// ActivationsInPeriod counts activation events closed inside
// [from, to). Events without a closing timestamp never count.
func ActivationsInPeriod(events []fleet.ServiceEvent, from, to utc.Time) int {
	count := 0
	for i := range events {
		ev := &events[i]
		if !ev.Category.IsInstall() || ev.ClosedAt == nil {
			continue
		}
		closed := ev.ClosedAt.Time
		if !closed.Before(from.Time) && closed.Before(to.Time) {
			count++
		}
	}
	return count
}

// CumulativeActivationsThrough counts activation events closed at or
// before the cutoff, from the beginning of the log.
func CumulativeActivationsThrough(events []fleet.ServiceEvent, through utc.Time) int {
	count := 0
	for i := range events {
		ev := &events[i]
		if !ev.Category.IsInstall() || ev.ClosedAt == nil {
			continue
		}
		if !ev.ClosedAt.Time.After(through.Time) {
			count++
		}
	}
	return count
}

// ActivationsByMonth buckets activation events by "2006-01" close
// month.
func ActivationsByMonth(events []fleet.ServiceEvent) map[string]int {
	out := make(map[string]int)
	for i := range events {
		ev := &events[i]
		if !ev.Category.IsInstall() || ev.ClosedAt == nil {
			continue
		}
		out[ev.CloseMonth()]++
	}
	return out
}

// MonthDelta is one month's activation count against the month before.
type MonthDelta struct {
	Month    string `yaml:"month"`
	Count    int    `yaml:"count"`
	Previous int    `yaml:"previous"`
	Delta    int    `yaml:"delta"`
}

// MonthDeltas returns month-over-month activation deltas in
// chronological order. Months with no activations between two active
// months still appear, so deltas never skip over a gap.
func MonthDeltas(events []fleet.ServiceEvent) []MonthDelta {
	byMonth := ActivationsByMonth(events)
	if len(byMonth) == 0 {
		return nil
	}

	months := make([]string, 0, len(byMonth))
	for m := range byMonth {
		months = append(months, m)
	}
	sort.Strings(months)

	first, err := time.Parse(constants.MonthLayout, months[0])
	if err != nil {
		return nil
	}
	last, err := time.Parse(constants.MonthLayout, months[len(months)-1])
	if err != nil {
		return nil
	}

	var out []MonthDelta
	prev := 0
	for m := first; !m.After(last); m = m.AddDate(0, 1, 0) {
		key := m.Format(constants.MonthLayout)
		count := byMonth[key]
		out = append(out, MonthDelta{
			Month:    key,
			Count:    count,
			Previous: prev,
			Delta:    count - prev,
		})
		prev = count
	}
	return out
}

// InvoiceRollup is the composition of one purchase invoice: how many
// units it bought and where they are now.
type InvoiceRollup struct {
	Invoice        string  `yaml:"invoice"`
	Purchased      int     `yaml:"purchased"`
	Installed      int     `yaml:"installed"`
	InStock        int     `yaml:"in_stock"`
	RMA            int     `yaml:"rma"`
	WithTechnician int     `yaml:"with_technician"`
	Discontinued   int     `yaml:"discontinued"`
	NoService      int     `yaml:"no_service"`
	InstalledPct   float64 `yaml:"installed_pct"`
	InStockPct     float64 `yaml:"in_stock_pct"`
	RMAPct         float64 `yaml:"rma_pct"`
}

// ByInvoice rolls the state table up per invoice, sorted by invoice
// number. Percentages are over purchased units, or over purchased
// minus no-service units when the pending policy excludes them.
func ByInvoice(states []fleet.UnitState, opts Options) []InvoiceRollup {
	byInvoice := make(map[string]*InvoiceRollup)
	for _, s := range states {
		r, ok := byInvoice[s.Invoice]
		if !ok {
			r = &InvoiceRollup{Invoice: s.Invoice}
			byInvoice[s.Invoice] = r
		}
		r.Purchased++
		switch s.Location {
		case fleet.LocationInstalled:
			r.Installed++
		case fleet.LocationInStock:
			r.InStock++
		case fleet.LocationRMA:
			r.RMA++
		case fleet.LocationWithTechnician:
			r.WithTechnician++
		case fleet.LocationDiscontinued:
			r.Discontinued++
		case fleet.LocationNoService:
			r.NoService++
		}
	}

	out := make([]InvoiceRollup, 0, len(byInvoice))
	for _, r := range byInvoice {
		denominator := r.Purchased
		if !opts.CountNoServiceAsPending {
			denominator -= r.NoService
		}
		r.InstalledPct = Rate(r.Installed, denominator)
		r.InStockPct = Rate(r.InStock, denominator)
		r.RMAPct = Rate(r.RMA, denominator)
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Invoice < out[j].Invoice })
	return out
}

// LocationCounts tallies the state table by location.
func LocationCounts(states []fleet.UnitState) map[fleet.LocationState]int {
	out := make(map[fleet.LocationState]int)
	for _, s := range states {
		out[s.Location]++
	}
	return out
}

// ConditionCounts tallies the state table by new/reused condition.
func ConditionCounts(states []fleet.UnitState) map[fleet.Condition]int {
	out := make(map[fleet.Condition]int)
	for _, s := range states {
		out[s.Condition]++
	}
	return out
}

// MonthRange resolves a "2006-01" month into the [from, to) interval
// covering it.
func MonthRange(month string) (utc.Time, utc.Time, error) {
	start, err := time.Parse(constants.MonthLayout, month)
	if err != nil {
		return utc.Time{}, utc.Time{}, err
	}
	return utc.New(start), utc.New(start.AddDate(0, 1, 0)), nil
}

// maintenanceFamily is the set of categories covered by the
// maintenance mix, in display order.
var maintenanceFamily = []fleet.Category{
	fleet.CategoryMaintenance,
	fleet.CategoryMesh,
	fleet.CategoryUpgrade,
}

// MixEntry splits one category's period activity between first-cycle
// and repeat-cycle units.
type MixEntry struct {
	Category  fleet.Category `yaml:"category"`
	New       int            `yaml:"new"`
	Reused    int            `yaml:"reused"`
	ReusedPct float64        `yaml:"reused_pct"`
}

// MaintenanceMix splits maintenance-family events closed inside
// [from, to) between units on their first cycle and units already
// recirculated. Categories with no activity in the period still
// appear, so the table keeps a stable shape.
func MaintenanceMix(events []fleet.ServiceEvent, from, to utc.Time) []MixEntry {
	byCategory := make(map[fleet.Category]*MixEntry, len(maintenanceFamily))
	out := make([]MixEntry, len(maintenanceFamily))
	for i, c := range maintenanceFamily {
		out[i] = MixEntry{Category: c}
		byCategory[c] = &out[i]
	}

	for i := range events {
		ev := &events[i]
		entry, ok := byCategory[ev.Category]
		if !ok || ev.ClosedAt == nil {
			continue
		}
		closed := ev.ClosedAt.Time
		if closed.Before(from.Time) || !closed.Before(to.Time) {
			continue
		}
		if ev.Cycle > 1 {
			entry.Reused++
		} else {
			entry.New++
		}
	}

	for i := range out {
		out[i].ReusedPct = Rate(out[i].Reused, out[i].New+out[i].Reused)
	}
	return out
}

// CategoryMix counts cleaned events per canonical category inside
// [from, to). The unmapped sentinel appears under its own key when
// present, so the mix always sums to the period's event count.
func CategoryMix(events []fleet.ServiceEvent, from, to utc.Time) map[fleet.Category]int {
	out := make(map[fleet.Category]int)
	for i := range events {
		ev := &events[i]
		if ev.ClosedAt == nil {
			continue
		}
		closed := ev.ClosedAt.Time
		if closed.Before(from.Time) || !closed.Before(to.Time) {
			continue
		}
		out[ev.Category]++
	}
	return out
}
