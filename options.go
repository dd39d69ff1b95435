package fleetrec

import (
	"context"

	"github.com/netviva/fleetrec/pkg/constants"
	"github.com/netviva/fleetrec/pkg/errors"
	"github.com/netviva/fleetrec/pkg/fleet"
	"github.com/netviva/fleetrec/pkg/rollup"
)

// Option is a function that configures a Fleetrec instance.
type Option func(*config) error

// SourceLoader produces a fresh snapshot of the four source tables
// for one reconciliation run.
type SourceLoader func(ctx context.Context) (*fleet.Sources, error)

// config holds the assembled configuration of a Fleetrec instance.
type config struct {
	sources   *fleet.Sources
	loader    SourceLoader
	storeDir  string
	retention int
	rollup    rollup.Options
}

var defaultConfig = &config{
	retention: constants.DefaultRetention,
	rollup:    rollup.DefaultOptions(),
}

// WithSources configures a fixed source snapshot. Useful for tests
// and one-shot runs where the caller already loaded the tables.
func WithSources(sources *fleet.Sources) Option {
	return func(c *config) error {
		if sources == nil {
			return errors.NewConfigError("sources", "sources must not be nil", nil)
		}
		c.sources = sources
		return nil
	}
}

// WithSourceLoader configures a loader invoked at the start of every
// reconciliation run, so repeated runs pick up fresh source data.
func WithSourceLoader(loader SourceLoader) Option {
	return func(c *config) error {
		if loader == nil {
			return errors.NewConfigError("loader", "loader must not be nil", nil)
		}
		c.loader = loader
		return nil
	}
}

// WithStore configures the snapshot directory. Each completed run is
// persisted there atomically and the prior run stays available for
// period-over-period comparison.
func WithStore(dir string) Option {
	return func(c *config) error {
		if dir == "" {
			return errors.NewConfigError("store", "store directory must not be empty", nil)
		}
		c.storeDir = dir
		return nil
	}
}

// WithRetention configures how many persisted snapshots to keep.
// At least two are always retained so deltas stay computable.
func WithRetention(n int) Option {
	return func(c *config) error {
		if n < 2 {
			return errors.NewConfigError("retention", "retention must keep at least two snapshots", nil)
		}
		c.retention = n
		return nil
	}
}

// WithRollupOptions configures the aggregation policy choices.
func WithRollupOptions(opts rollup.Options) Option {
	return func(c *config) error {
		c.rollup = opts
		return nil
	}
}
