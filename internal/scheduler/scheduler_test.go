package scheduler_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/netviva/fleetrec"
	"github.com/netviva/fleetrec/internal/scheduler"
	"github.com/netviva/fleetrec/pkg/fleet"
)

func testFleet(t *testing.T) fleetrec.Fleetrec {
	t.Helper()
	f, err := fleetrec.New(fleetrec.WithSources(&fleet.Sources{
		Invoices:       []fleet.InvoiceLine{},
		Events:         []fleet.ServiceEvent{},
		Contracts:      []fleet.ContractEntry{},
		Classification: []fleet.ClassificationEntry{},
		Vocabulary:     fleet.NewVocabulary(fleet.SeedEntries()),
	}))
	require.NoError(t, err)
	return f
}

func TestStartRejectsInvalidExpression(t *testing.T) {
	s := scheduler.New(testFleet(t))
	err := s.Start("not a cron spec")
	assert.Error(t, err)
}

func TestStartStop(t *testing.T) {
	s := scheduler.New(testFleet(t))
	require.NoError(t, s.Start("0 6 1 * *"))
	s.Stop()
	assert.Zero(t, s.Runs())
}
