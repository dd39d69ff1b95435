// Package fleetrec reconciles the lifecycle of leased network
// equipment across four independently maintained sources: the invoice
// registry, the field-service event log, the contract registry, and
// the curated model classification. Each run recomputes the per-unit
// state table wholesale, audits the sources against each other, and
// optionally persists the result as an atomic snapshot.
package fleetrec

import (
	"context"
	"fmt"
	"sync"

	"github.com/netviva/fleetrec/internal/snapshot"
	"github.com/netviva/fleetrec/pkg/errors"
	"github.com/netviva/fleetrec/pkg/fleet"
	"github.com/netviva/fleetrec/pkg/recon"
	"github.com/netviva/fleetrec/pkg/rollup"
)

// Fleetrec runs reconciliation passes and serves their results.
type Fleetrec interface {
	// Reconcile executes one full pass over the current sources and
	// makes the result the latest snapshot.
	Reconcile(ctx context.Context) (*recon.Result, error)

	// Latest returns the most recent completed result.
	Latest() (*recon.Result, error)

	// Previous returns the result before the latest, for
	// period-over-period comparison.
	Previous() (*recon.Result, error)

	// State returns the latest state-table row for a unit.
	State(id fleet.UnitID) (fleet.UnitState, error)

	// History returns a unit's cleaned service events in cycle order.
	History(id fleet.UnitID) ([]fleet.ServiceEvent, error)

	// ByInvoice returns the per-invoice composition of the latest
	// state table under the configured aggregation policy.
	ByInvoice() ([]rollup.InvoiceRollup, error)

	// MonthDeltas returns month-over-month activation deltas from the
	// latest cleaned event log.
	MonthDeltas() ([]rollup.MonthDelta, error)
}

// fleetrec is the internal implementation of the Fleetrec interface.
type fleetrec struct {
	mu       sync.RWMutex
	config   *config
	store    *snapshot.Store
	latest   *recon.Result
	previous *recon.Result
}

// New creates a Fleetrec instance with the given options. When a
// store directory is configured, previously persisted snapshots are
// picked up so deltas survive restarts.
func New(opts ...Option) (Fleetrec, error) {
	cfg := *defaultConfig
	for _, opt := range opts {
		if err := opt(&cfg); err != nil {
			return nil, fmt.Errorf("applying options: %w", err)
		}
	}
	if cfg.sources == nil && cfg.loader == nil {
		return nil, errors.NewConfigError("sources", "either sources or a source loader is required", nil)
	}

	f := &fleetrec{config: &cfg}

	if cfg.storeDir != "" {
		store, err := snapshot.New(cfg.storeDir, cfg.retention)
		if err != nil {
			return nil, fmt.Errorf("opening snapshot store: %w", err)
		}
		f.store = store

		if latest, err := store.Latest(); err == nil {
			f.latest = latest
		}
		if previous, err := store.Previous(); err == nil {
			f.previous = previous
		}
	}

	return f, nil
}

// Reconcile executes one full pass. The result only replaces the
// latest snapshot after it is complete and, when a store is
// configured, durably persisted; a failed run leaves the prior
// snapshot in place.
func (f *fleetrec) Reconcile(ctx context.Context) (*recon.Result, error) {
	sources, err := f.sources(ctx)
	if err != nil {
		return nil, err
	}

	result, err := recon.Run(ctx, sources)
	if err != nil {
		return nil, err
	}

	if f.store != nil {
		if err := f.store.Save(result); err != nil {
			return nil, fmt.Errorf("persisting snapshot: %w", err)
		}
	}

	f.mu.Lock()
	f.previous = f.latest
	f.latest = result
	f.mu.Unlock()

	return result, nil
}

func (f *fleetrec) sources(ctx context.Context) (*fleet.Sources, error) {
	if f.config.loader != nil {
		return f.config.loader(ctx)
	}
	return f.config.sources, nil
}

// Latest returns the most recent completed result.
func (f *fleetrec) Latest() (*recon.Result, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.latest == nil {
		return nil, errors.ErrNoSnapshot
	}
	return f.latest, nil
}

// Previous returns the result before the latest.
func (f *fleetrec) Previous() (*recon.Result, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.previous == nil {
		return nil, errors.ErrNoSnapshot
	}
	return f.previous, nil
}

// State returns the latest state-table row for a unit.
func (f *fleetrec) State(id fleet.UnitID) (fleet.UnitState, error) {
	latest, err := f.Latest()
	if err != nil {
		return fleet.UnitState{}, err
	}
	return latest.State(id)
}

// History returns a unit's cleaned events in cycle order.
func (f *fleetrec) History(id fleet.UnitID) ([]fleet.ServiceEvent, error) {
	latest, err := f.Latest()
	if err != nil {
		return nil, err
	}
	return latest.History(id), nil
}

// ByInvoice rolls the latest state table up per invoice.
func (f *fleetrec) ByInvoice() ([]rollup.InvoiceRollup, error) {
	latest, err := f.Latest()
	if err != nil {
		return nil, err
	}
	return rollup.ByInvoice(latest.States, f.config.rollup), nil
}

// MonthDeltas returns activation deltas from the latest event log.
func (f *fleetrec) MonthDeltas() ([]rollup.MonthDelta, error) {
	latest, err := f.Latest()
	if err != nil {
		return nil, err
	}
	return rollup.MonthDeltas(latest.Events), nil
}
