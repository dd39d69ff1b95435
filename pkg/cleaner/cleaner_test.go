package cleaner_test

import (
	"testing"
	"time"

	"github.com/agentstation/utc"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/netviva/fleetrec/pkg/cleaner"
	"github.com/netviva/fleetrec/pkg/fleet"
	"github.com/netviva/fleetrec/pkg/vocab"
)

func ts(year int, month time.Month, day int) *utc.Time {
	t := utc.New(time.Date(year, month, day, 12, 0, 0, 0, time.UTC))
	return &t
}

func newNormalizer() *vocab.Normalizer {
	return vocab.New(fleet.NewVocabulary(fleet.SeedEntries()))
}

func TestCleanAssignsCycles(t *testing.T) {
	events := []fleet.ServiceEvent{
		{EventID: "3", UnitID: "100", RawCategory: "MANUTENCAO", ClosedAt: ts(2024, 3, 1)},
		{EventID: "1", UnitID: "100", RawCategory: "INSTALACAO INTERNET", ClosedAt: ts(2023, 1, 10)},
		{EventID: "2", UnitID: "100", RawCategory: "RETIRADA ORDEM DE COLETA", ClosedAt: ts(2023, 6, 5)},
		{EventID: "4", UnitID: "200", RawCategory: "INSTALACAO", ClosedAt: ts(2024, 1, 1)},
	}

	cleaned, metrics := cleaner.Clean(events, newNormalizer())
	require.Len(t, cleaned, 4)
	assert.Equal(t, 4, metrics.Kept)

	byID := make(map[string]fleet.ServiceEvent)
	for _, ev := range cleaned {
		byID[ev.EventID] = ev
	}
	assert.Equal(t, 1, byID["1"].Cycle)
	assert.Equal(t, 2, byID["2"].Cycle)
	assert.Equal(t, 3, byID["3"].Cycle)
	assert.Equal(t, 1, byID["4"].Cycle)

	assert.Equal(t, fleet.CategoryInstall, byID["1"].Category)
	assert.Equal(t, fleet.CategoryRemoveCollection, byID["2"].Category)
}

func TestCleanDropsMissingUnitIDs(t *testing.T) {
	events := []fleet.ServiceEvent{
		{EventID: "1", UnitID: "", RawCategory: "MANUTENCAO", ClosedAt: ts(2024, 6, 10)},
		{EventID: "2", UnitID: "nan", RawCategory: "MANUTENCAO", ClosedAt: ts(2024, 6, 20)},
		{EventID: "3", UnitID: "", RawCategory: "MANUTENCAO"},
		{EventID: "4", UnitID: "100.0", RawCategory: "MANUTENCAO", ClosedAt: ts(2024, 6, 1)},
	}

	cleaned, metrics := cleaner.Clean(events, newNormalizer())
	require.Len(t, cleaned, 1)
	assert.Equal(t, fleet.UnitID("100"), cleaned[0].UnitID)

	assert.Equal(t, 3, metrics.MissingUnitID)
	assert.Equal(t, 2, metrics.MissingByCloseMonth["2024-06"])
	assert.Equal(t, 1, metrics.MissingByCloseMonth[""])
}

func TestCleanDropsIgnoredKeepsUnmapped(t *testing.T) {
	events := []fleet.ServiceEvent{
		{EventID: "1", UnitID: "100", RawCategory: "Emitir Taxa", ClosedAt: ts(2024, 1, 1)},
		{EventID: "2", UnitID: "100", RawCategory: "Assunto Desconhecido", ClosedAt: ts(2024, 2, 1)},
		{EventID: "3", UnitID: "100", RawCategory: "MANUTENCAO", ClosedAt: ts(2024, 3, 1)},
	}

	cleaned, metrics := cleaner.Clean(events, newNormalizer())
	require.Len(t, cleaned, 2)
	assert.Equal(t, 1, metrics.Ignored)
	assert.Equal(t, 1, metrics.Unmapped)

	// The ignored event consumes cycle 1 even though it is removed, so
	// the survivors keep the ordinals of the full history.
	assert.Equal(t, "2", cleaned[0].EventID)
	assert.Equal(t, 2, cleaned[0].Cycle)
	assert.Equal(t, fleet.CategoryUnmapped, cleaned[0].Category)
	assert.Equal(t, 3, cleaned[1].Cycle)
}

func TestCleanDeduplicatesByEventID(t *testing.T) {
	events := []fleet.ServiceEvent{
		{EventID: "1", UnitID: "100", RawCategory: "INSTALACAO", ClosedAt: ts(2024, 1, 1)},
		{EventID: "1", UnitID: "100", RawCategory: "MANUTENCAO", ClosedAt: ts(2024, 2, 1)},
		{EventID: "2", UnitID: "100", RawCategory: "MANUTENCAO", ClosedAt: ts(2024, 3, 1)},
	}

	cleaned, metrics := cleaner.Clean(events, newNormalizer())
	require.Len(t, cleaned, 2)
	assert.Equal(t, 1, metrics.Duplicates)

	// First occurrence in source order wins.
	assert.Equal(t, fleet.CategoryInstall, cleaned[0].Category)
	assert.Equal(t, 2, cleaned[1].Cycle)
}

func TestCleanNilCloseSortsLast(t *testing.T) {
	events := []fleet.ServiceEvent{
		{EventID: "open", UnitID: "100", RawCategory: "MANUTENCAO"},
		{EventID: "closed", UnitID: "100", RawCategory: "INSTALACAO", ClosedAt: ts(2024, 1, 1)},
	}

	cleaned, _ := cleaner.Clean(events, newNormalizer())
	require.Len(t, cleaned, 2)
	assert.Equal(t, "closed", cleaned[0].EventID)
	assert.Equal(t, 1, cleaned[0].Cycle)
	assert.Equal(t, "open", cleaned[1].EventID)
	assert.Equal(t, 2, cleaned[1].Cycle)
}

func TestCleanIdempotent(t *testing.T) {
	events := []fleet.ServiceEvent{
		{EventID: "2", UnitID: "100.0", RawCategory: "MANUTENÇÃO TÉCNICA", ClosedAt: ts(2024, 2, 1)},
		{EventID: "1", UnitID: "100", RawCategory: "INSTALACAO INTERNET", ClosedAt: ts(2024, 1, 1)},
		{EventID: "3", UnitID: "", RawCategory: "MANUTENCAO", ClosedAt: ts(2024, 3, 1)},
	}

	first, m1 := cleaner.Clean(events, newNormalizer())
	second, m2 := cleaner.Clean(first, newNormalizer())

	assert.Equal(t, first, second)
	assert.Equal(t, m1.Kept, m2.Kept)
	assert.Zero(t, m2.MissingUnitID)
}

func TestCleanMetrics(t *testing.T) {
	events := []fleet.ServiceEvent{
		{EventID: "1", UnitID: "100", RawCategory: "INSTALACAO", ClosedAt: ts(2024, 1, 1)},
		{EventID: "2", UnitID: "", RawCategory: "MANUTENCAO", ClosedAt: ts(2024, 2, 1)},
		{EventID: "3", UnitID: "200", RawCategory: "Emitir Taxa", ClosedAt: ts(2024, 2, 1)},
		{EventID: "4", UnitID: "200", RawCategory: "Assunto Desconhecido", ClosedAt: ts(2024, 3, 1)},
	}

	_, metrics := cleaner.Clean(events, newNormalizer())

	want := cleaner.Metrics{
		Total:               4,
		Kept:                2,
		MissingUnitID:       1,
		MissingByCloseMonth: map[string]int{"2024-02": 1},
		Ignored:             1,
		Unmapped:            1,
	}
	if diff := cmp.Diff(want, metrics); diff != "" {
		t.Errorf("metrics mismatch (-want +got):\n%s", diff)
	}
}

func TestMetricsCoveredFrom(t *testing.T) {
	m := cleaner.Metrics{
		MissingByCloseMonth: map[string]int{"2024-03": 12, "2024-05": 4, "": 2},
	}
	assert.Equal(t, "2024-06", m.CoveredFrom())

	assert.Empty(t, cleaner.Metrics{}.CoveredFrom())
	assert.Empty(t, cleaner.Metrics{MissingByCloseMonth: map[string]int{"": 3}}.CoveredFrom())
}

func TestMaxCyclesAndLastEvents(t *testing.T) {
	events := []fleet.ServiceEvent{
		{EventID: "1", UnitID: "100", RawCategory: "INSTALACAO", ClosedAt: ts(2023, 1, 1)},
		{EventID: "2", UnitID: "100", RawCategory: "RETIRADA ORDEM DE COLETA", ClosedAt: ts(2023, 6, 1)},
		{EventID: "3", UnitID: "200", RawCategory: "INSTALACAO", ClosedAt: ts(2024, 1, 1)},
	}
	cleaned, _ := cleaner.Clean(events, newNormalizer())

	maxes := cleaner.MaxCycles(cleaned)
	assert.Equal(t, 2, maxes["100"])
	assert.Equal(t, 1, maxes["200"])

	lasts := cleaner.LastEvents(cleaned)
	require.Contains(t, lasts, fleet.UnitID("100"))
	assert.Equal(t, "2", lasts["100"].EventID)
	assert.Equal(t, "3", lasts["200"].EventID)
}
