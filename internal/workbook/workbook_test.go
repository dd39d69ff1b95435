package workbook_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/netviva/fleetrec/internal/workbook"
	"github.com/netviva/fleetrec/pkg/errors"
	"github.com/netviva/fleetrec/pkg/fleet"
)

func writeSheet(t *testing.T, f *excelize.File, name string, rows [][]interface{}) {
	t.Helper()
	_, err := f.NewSheet(name)
	require.NoError(t, err)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(name, cell, &row))
	}
}

func writeWorkbook(t *testing.T, mutate func(f *excelize.File)) string {
	t.Helper()
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	writeSheet(t, f, fleet.TableInvoices, [][]interface{}{
		{"NOTA FISCAL", "DATA", "MODELO", "SERIAL", "EQUIPAMENTO"},
		{"NF-1", "05/01/2023", "ONU ZTE F670L", "SN-1", "100.0"},
		{"NF-1", "05/01/2023", "ONU ZTE F670L", "SN-2", "200"},
	})
	writeSheet(t, f, fleet.TableEvents, [][]interface{}{
		{"OS", "EQUIPAMENTO", "ASSUNTO", "ABERTURA", "FECHAMENTO", "CLIENTE", "ALMOXARIFADO", "COMODATO"},
		{"1", "100", "INSTALACAO INTERNET", "01/02/2023", "02/02/2023 10:30:00", "C-9", "", "Emprestado"},
		{"2", "", "MANUTENCAO", "01/03/2023", "", "", "", ""},
	})
	writeSheet(t, f, fleet.TableContracts, [][]interface{}{
		{"EQUIPAMENTO", "MODELO", "STATUS", "CLIENTE"},
		{"100", "ONU ZTE F670L", "Ativo", "C-9"},
		{"300", "ONU ZTE F670L", "Negativado", "C-4"},
	})
	writeSheet(t, f, fleet.TableClassification, [][]interface{}{
		{"MODELO", "OBSOLETO"},
		{"ONU ZTE F601", "Sim"},
		{"ONU ZTE F670L", "Não"},
	})

	if mutate != nil {
		mutate(f)
	}

	path := filepath.Join(t.TempDir(), "fleet.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestLoad(t *testing.T) {
	sources, err := workbook.Load(writeWorkbook(t, nil))
	require.NoError(t, err)
	require.NoError(t, sources.Validate())

	require.Len(t, sources.Invoices, 2)
	assert.Equal(t, fleet.UnitID("100"), sources.Invoices[0].UnitID)
	assert.Equal(t, "NF-1", sources.Invoices[0].Invoice)
	assert.Equal(t, 2023, sources.Invoices[0].InvoiceDate.Year())

	require.Len(t, sources.Events, 2)
	installed := sources.Events[0]
	assert.Equal(t, "1", installed.EventID)
	assert.Equal(t, "INSTALACAO INTERNET", installed.RawCategory)
	assert.Equal(t, "Emprestado", installed.LoanStatus)
	require.NotNil(t, installed.ClosedAt)
	assert.Equal(t, "2023-02", installed.CloseMonth())

	// Missing identifiers and timestamps load as absent, not errors.
	open := sources.Events[1]
	assert.True(t, open.UnitID.IsZero())
	assert.Nil(t, open.ClosedAt)

	require.Len(t, sources.Contracts, 2)
	assert.Equal(t, fleet.ContractActive, sources.Contracts[0].Status)
	assert.Equal(t, fleet.ContractWrittenOff, sources.Contracts[1].Status)

	require.Len(t, sources.Classification, 2)
	assert.Equal(t, fleet.FlagObsolete, sources.Classification[0].Obsolete)
	assert.Equal(t, fleet.FlagNotObsolete, sources.Classification[1].Obsolete)
}

func TestLoadSeedVocabularyWithoutSheet(t *testing.T) {
	sources, err := workbook.Load(writeWorkbook(t, nil))
	require.NoError(t, err)
	require.NotNil(t, sources.Vocabulary)

	got, ok := sources.Vocabulary.LookupMaintained("Emitir Taxa")
	require.True(t, ok)
	assert.Equal(t, fleet.CategoryIgnored, got)
}

func TestLoadMergesVocabularySheet(t *testing.T) {
	path := writeWorkbook(t, func(f *excelize.File) {
		writeSheet(t, f, fleet.TableVocabulary, [][]interface{}{
			{"DE", "PARA"},
			{"Troca de ONU", "MANUTENCAO"},
			{"", "MANUTENCAO"},
		})
	})

	sources, err := workbook.Load(path)
	require.NoError(t, err)

	got, ok := sources.Vocabulary.LookupMaintained("Troca de ONU")
	require.True(t, ok)
	assert.Equal(t, fleet.CategoryMaintenance, got)
}

func TestLoadMissingSheetFatal(t *testing.T) {
	path := writeWorkbook(t, func(f *excelize.File) {
		require.NoError(t, f.DeleteSheet(fleet.TableContracts))
	})

	_, err := workbook.Load(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrSourceMissing)
}

func TestLoadMissingColumnFatal(t *testing.T) {
	path := writeWorkbook(t, func(f *excelize.File) {
		require.NoError(t, f.DeleteSheet(fleet.TableInvoices))
		writeSheet(t, f, fleet.TableInvoices, [][]interface{}{
			{"NOTA FISCAL", "DATA", "MODELO"},
			{"NF-1", "05/01/2023", "ONU ZTE F670L"},
		})
	})

	_, err := workbook.Load(path)
	require.Error(t, err)
	assert.True(t, errors.IsValidationError(err))
}

func TestLoadEventsRequireUnitAndCloseColumns(t *testing.T) {
	// An events sheet without the unit or close column would load as a
	// log whose every event gets dropped downstream; the absence of the
	// column itself is the structural defect and aborts the load.
	for _, missing := range []string{"EQUIPAMENTO", "FECHAMENTO"} {
		header := []interface{}{"OS", "ASSUNTO"}
		for _, keep := range []string{"EQUIPAMENTO", "FECHAMENTO"} {
			if keep != missing {
				header = append(header, keep)
			}
		}
		path := writeWorkbook(t, func(f *excelize.File) {
			require.NoError(t, f.DeleteSheet(fleet.TableEvents))
			writeSheet(t, f, fleet.TableEvents, [][]interface{}{
				header,
				{"1", "INSTALACAO INTERNET", "100"},
			})
		})

		_, err := workbook.Load(path)
		require.Error(t, err, "missing %s column", missing)
		assert.True(t, errors.IsValidationError(err), "missing %s column", missing)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := workbook.Load(filepath.Join(t.TempDir(), "no-such.xlsx"))
	require.Error(t, err)
}

func TestLoadAccentInsensitiveHeaders(t *testing.T) {
	path := writeWorkbook(t, func(f *excelize.File) {
		require.NoError(t, f.DeleteSheet(fleet.TableClassification))
		writeSheet(t, f, fleet.TableClassification, [][]interface{}{
			{"Modelo", "Obsoleto"},
			{"ONU ZTE F601", "sim"},
		})
	})

	sources, err := workbook.Load(path)
	require.NoError(t, err)
	require.Len(t, sources.Classification, 1)
	assert.Equal(t, fleet.FlagObsolete, sources.Classification[0].Obsolete)
}
