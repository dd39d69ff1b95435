package inference_test

import (
	"testing"
	"time"

	"github.com/agentstation/utc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/netviva/fleetrec/pkg/fleet"
	"github.com/netviva/fleetrec/pkg/inference"
)

func ts(year int, month time.Month, day int) *utc.Time {
	t := utc.New(time.Date(year, month, day, 12, 0, 0, 0, time.UTC))
	return &t
}

func TestLocateCascade(t *testing.T) {
	tests := []struct {
		name string
		last *fleet.ServiceEvent
		want fleet.LocationState
	}{
		{
			name: "rma warehouse",
			last: &fleet.ServiceEvent{Warehouse: "Almoxarifado RMA"},
			want: fleet.LocationRMA,
		},
		{
			name: "rma beats on loan",
			last: &fleet.ServiceEvent{Warehouse: "RMA", LoanStatus: "Emprestado"},
			want: fleet.LocationRMA,
		},
		{
			name: "on loan",
			last: &fleet.ServiceEvent{LoanStatus: "Emprestado"},
			want: fleet.LocationInstalled,
		},
		{
			name: "on loan beats warehouse keyword",
			last: &fleet.ServiceEvent{Warehouse: "ALMOX PRINCIPAL", LoanStatus: "emprestado"},
			want: fleet.LocationInstalled,
		},
		{
			name: "discontinued",
			last: &fleet.ServiceEvent{Warehouse: "Descontinuado"},
			want: fleet.LocationDiscontinued,
		},
		{
			name: "main warehouse",
			last: &fleet.ServiceEvent{Warehouse: "ALMOXARIFADO PRINCIPAL"},
			want: fleet.LocationInStock,
		},
		{
			name: "distribution center accented",
			last: &fleet.ServiceEvent{Warehouse: "Centro de Distribuição"},
			want: fleet.LocationInStock,
		},
		{
			name: "conferido",
			last: &fleet.ServiceEvent{Warehouse: "Estoque Conferido"},
			want: fleet.LocationInStock,
		},
		{
			name: "unused loan status",
			last: &fleet.ServiceEvent{LoanStatus: "Sem Uso"},
			want: fleet.LocationWithTechnician,
		},
		{
			name: "no match defaults to technician",
			last: &fleet.ServiceEvent{Warehouse: "Carro 12", LoanStatus: "Devolvido"},
			want: fleet.LocationWithTechnician,
		},
		{
			name: "no service history",
			last: nil,
			want: fleet.LocationNoService,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, inference.Locate(tt.last))
		})
	}
}

func TestInfer(t *testing.T) {
	invoices := []fleet.InvoiceLine{
		{Invoice: "NF-10", InvoiceDate: *ts(2023, 1, 5), Model: "ONU ZTE F670L", UnitID: "100"},
		{Invoice: "NF-10", InvoiceDate: *ts(2023, 1, 5), Model: "ONU ZTE F670L", UnitID: "200.0"},
		{Invoice: "NF-11", InvoiceDate: *ts(2024, 2, 1), Model: "ROTEADOR TP-LINK", UnitID: "300"},
	}
	events := []fleet.ServiceEvent{
		{EventID: "1", UnitID: "100", Category: fleet.CategoryInstall, ClosedAt: ts(2023, 2, 1), LoanStatus: "Emprestado", Cycle: 1},
		{EventID: "2", UnitID: "200", Category: fleet.CategoryInstall, ClosedAt: ts(2023, 3, 1), Cycle: 1},
		{EventID: "3", UnitID: "200", Category: fleet.CategoryMaintenance, ClosedAt: ts(2024, 1, 1), Warehouse: "ALMOX PRINCIPAL", Cycle: 2},
	}

	states := inference.Infer(invoices, events)
	require.Len(t, states, 3)

	byID := make(map[fleet.UnitID]fleet.UnitState)
	for _, s := range states {
		byID[s.UnitID] = s
	}

	installed := byID["100"]
	assert.Equal(t, fleet.LocationInstalled, installed.Location)
	assert.Equal(t, fleet.ConditionNew, installed.Condition)
	assert.Equal(t, 1, installed.MaxCycle)
	assert.Equal(t, fleet.CategoryInstall, installed.LastCategory)
	require.NotNil(t, installed.LastEventAt)

	reused := byID["200"]
	assert.Equal(t, fleet.LocationInStock, reused.Location)
	assert.Equal(t, fleet.ConditionReused, reused.Condition)
	assert.Equal(t, 2, reused.MaxCycle)
	assert.Equal(t, fleet.CategoryMaintenance, reused.LastCategory)

	noService := byID["300"]
	assert.Equal(t, fleet.LocationNoService, noService.Location)
	assert.Equal(t, fleet.ConditionNew, noService.Condition)
	assert.Zero(t, noService.MaxCycle)
	assert.Empty(t, noService.LastCategory)
	assert.Nil(t, noService.LastEventAt)
}

func TestInferSortedAndDeduplicated(t *testing.T) {
	invoices := []fleet.InvoiceLine{
		{Invoice: "NF-2", Model: "B", UnitID: "200"},
		{Invoice: "NF-1", Model: "A", UnitID: "100"},
		{Invoice: "NF-3", Model: "C", UnitID: "100"},
		{Invoice: "NF-4", Model: "D", UnitID: "nan"},
	}

	states := inference.Infer(invoices, nil)
	require.Len(t, states, 2)
	assert.Equal(t, fleet.UnitID("100"), states[0].UnitID)
	assert.Equal(t, fleet.UnitID("200"), states[1].UnitID)

	// First invoice line in source order wins for a duplicated unit.
	assert.Equal(t, "NF-1", states[0].Invoice)
}

func TestInferFullyRecomputed(t *testing.T) {
	invoices := []fleet.InvoiceLine{{Invoice: "NF-1", Model: "A", UnitID: "100"}}
	events := []fleet.ServiceEvent{
		{EventID: "1", UnitID: "100", Category: fleet.CategoryInstall, ClosedAt: ts(2024, 1, 1), LoanStatus: "Emprestado", Cycle: 1},
	}

	first := inference.Infer(invoices, events)
	second := inference.Infer(invoices, events)
	assert.Equal(t, first, second)

	// Rerunning without the event history resets the unit, no drift
	// from the prior run.
	reset := inference.Infer(invoices, nil)
	require.Len(t, reset, 1)
	assert.Equal(t, fleet.LocationNoService, reset[0].Location)
}
