package cmd_test

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/netviva/fleetrec/cmd/fleetrec/app"
	"github.com/netviva/fleetrec/cmd/fleetrec/cmd"
	"github.com/netviva/fleetrec/pkg/fleet"
)

func writeWorkbook(t *testing.T) string {
	t.Helper()
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheets := map[string][][]interface{}{
		fleet.TableInvoices: {
			{"NOTA FISCAL", "DATA", "MODELO", "SERIAL", "EQUIPAMENTO"},
			{"NF-1", "05/01/2023", "ONU ZTE F670L", "SN-1", "100"},
			{"NF-1", "05/01/2023", "ONU ZTE F670L", "SN-2", "200"},
		},
		fleet.TableEvents: {
			{"OS", "EQUIPAMENTO", "ASSUNTO", "ABERTURA", "FECHAMENTO", "CLIENTE", "ALMOXARIFADO", "COMODATO"},
			{"1", "100", "INSTALACAO INTERNET", "01/02/2023", "02/02/2023", "C-9", "", "Emprestado"},
		},
		fleet.TableContracts: {
			{"EQUIPAMENTO", "MODELO", "STATUS", "CLIENTE"},
			{"100", "ONU ZTE F670L", "Ativo", "C-9"},
		},
		fleet.TableClassification: {
			{"MODELO", "OBSOLETO"},
			{"ONU ZTE F670L", "Não"},
		},
	}
	for name, rows := range sheets {
		_, err := f.NewSheet(name)
		require.NoError(t, err)
		for i, row := range rows {
			cell, err := excelize.CoordinatesToCellName(1, i+1)
			require.NoError(t, err)
			require.NoError(t, f.SetSheetRow(name, cell, &row))
		}
	}

	path := filepath.Join(t.TempDir(), "fleet.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	a, err := app.New("test", "none", "none")
	require.NoError(t, err)

	root := cmd.NewRootCmd(a)
	var buf bytes.Buffer
	root.SetOut(&buf)
	root.SetErr(&buf)
	root.SetArgs(args)
	err = root.ExecuteContext(context.Background())
	return buf.String(), err
}

func TestRunCommand(t *testing.T) {
	workbookPath := writeWorkbook(t)
	store := t.TempDir()

	out, err := execute(t, "run", "--workbook", workbookPath, "--store", store)
	require.NoError(t, err)
	assert.Contains(t, out, "2 units")
	assert.Contains(t, out, fleet.LocationInstalled.String())

	// The run left a snapshot behind.
	matches, err := filepath.Glob(filepath.Join(store, "run-*.yaml"))
	require.NoError(t, err)
	assert.Len(t, matches, 1)
}

func TestAuditCommand(t *testing.T) {
	out, err := execute(t, "audit", "--workbook", writeWorkbook(t))
	require.NoError(t, err)
	assert.Contains(t, out, "invoiced-no-events")
}

func TestUnitCommand(t *testing.T) {
	out, err := execute(t, "unit", "100", "--workbook", writeWorkbook(t))
	require.NoError(t, err)
	assert.Contains(t, out, "Unit 100")
	assert.Contains(t, out, fleet.LocationInstalled.String())
}

func TestUnitCommandUnknownUnit(t *testing.T) {
	_, err := execute(t, "unit", "does-not-exist", "--workbook", writeWorkbook(t))
	require.Error(t, err)
}

func TestStateCommandMonth(t *testing.T) {
	out, err := execute(t, "state", "--month", "2023-02", "--workbook", writeWorkbook(t))
	require.NoError(t, err)
	assert.Contains(t, out, "Activations in 2023-02: 1")

	_, err = execute(t, "state", "--month", "yesterday", "--workbook", writeWorkbook(t))
	require.Error(t, err)
}

func TestInvoicesCommand(t *testing.T) {
	out, err := execute(t, "invoices", "--workbook", writeWorkbook(t))
	require.NoError(t, err)
	assert.Contains(t, out, "NF-1")
}

func TestReportCommand(t *testing.T) {
	out, err := execute(t, "report", "--workbook", writeWorkbook(t))
	require.NoError(t, err)
	assert.Contains(t, out, "# Fleet Reconciliation Report")
}

func TestRunCommandMissingWorkbook(t *testing.T) {
	_, err := execute(t, "run")
	require.Error(t, err)
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "fleetrec test")
}
