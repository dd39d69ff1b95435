// Package workbook loads the four source tables from the operations
// workbook, one sheet per table. A missing sheet or column is fatal;
// row-level defects are left in the data for the pipeline to count.
package workbook

import (
	"strings"
	"time"

	"github.com/agentstation/utc"
	"github.com/xuri/excelize/v2"

	"github.com/netviva/fleetrec/pkg/errors"
	"github.com/netviva/fleetrec/pkg/fleet"
	"github.com/netviva/fleetrec/pkg/logging"
	"github.com/netviva/fleetrec/pkg/vocab"
)

// Column headers per sheet, matched in folded form so casing and
// accents in the workbook do not matter.
const (
	colInvoice    = "NOTA FISCAL"
	colDate       = "DATA"
	colModel      = "MODELO"
	colSerial     = "SERIAL"
	colUnit       = "EQUIPAMENTO"
	colEvent      = "OS"
	colSubject    = "ASSUNTO"
	colOpened     = "ABERTURA"
	colClosed     = "FECHAMENTO"
	colClient     = "CLIENTE"
	colWarehouse  = "ALMOXARIFADO"
	colLoanStatus = "COMODATO"
	colStatus     = "STATUS"
	colObsolete   = "OBSOLETO"
	colFrom       = "DE"
	colTo         = "PARA"
)

// dateLayouts are tried in order when parsing workbook timestamps.
// The first two are how the upstream systems export; the rest cover
// spreadsheet edits by hand.
var dateLayouts = []string{
	"02/01/2006 15:04:05",
	"02/01/2006",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"01-02-06 15:04",
	"01-02-06",
}

// Load reads every source table from the workbook at path. The
// vocabulary sheet is optional; when absent the seed vocabulary is
// used alone. Everything else missing aborts the load.
func Load(path string) (*fleet.Sources, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, errors.WrapIO("open", path, err)
	}
	defer func() { _ = f.Close() }()

	invoices, err := loadInvoices(f)
	if err != nil {
		return nil, err
	}
	events, err := loadEvents(f)
	if err != nil {
		return nil, err
	}
	contracts, err := loadContracts(f)
	if err != nil {
		return nil, err
	}
	classification, err := loadClassification(f)
	if err != nil {
		return nil, err
	}
	vocabulary, err := loadVocabulary(f)
	if err != nil {
		return nil, err
	}

	logging.Info().
		Str("workbook", path).
		Int("invoices", len(invoices)).
		Int("events", len(events)).
		Int("contracts", len(contracts)).
		Int("classification", len(classification)).
		Msg("source workbook loaded")

	return &fleet.Sources{
		Invoices:       invoices,
		Events:         events,
		Contracts:      contracts,
		Classification: classification,
		Vocabulary:     vocabulary,
	}, nil
}

// sheet reads one sheet into header-indexed rows. Required columns
// missing from the header row fail with the table and field named.
func sheet(f *excelize.File, name string, required []string) ([]map[string]string, error) {
	rows, err := f.GetRows(name)
	if err != nil {
		return nil, errors.NewSourceError(name, "sheet is absent from the workbook", err)
	}
	if len(rows) == 0 {
		return nil, errors.NewSourceError(name, "sheet has no header row", nil)
	}

	index := make(map[string]int, len(rows[0]))
	for i, header := range rows[0] {
		index[vocab.Fold(header)] = i
	}
	for _, col := range required {
		if _, ok := index[vocab.Fold(col)]; !ok {
			return nil, errors.NewValidationError(name, col, "required column is absent")
		}
	}

	out := make([]map[string]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if blank(row) {
			continue
		}
		record := make(map[string]string, len(index))
		for col, i := range index {
			if i < len(row) {
				record[col] = strings.TrimSpace(row[i])
			}
		}
		out = append(out, record)
	}
	return out, nil
}

func loadInvoices(f *excelize.File) ([]fleet.InvoiceLine, error) {
	rows, err := sheet(f, fleet.TableInvoices, []string{colInvoice, colDate, colModel, colUnit})
	if err != nil {
		return nil, err
	}
	out := make([]fleet.InvoiceLine, 0, len(rows))
	for _, row := range rows {
		line := fleet.InvoiceLine{
			Invoice:      cell(row, colInvoice),
			Model:        cell(row, colModel),
			SerialNumber: cell(row, colSerial),
			UnitID:       fleet.NormalizeUnitID(cell(row, colUnit)),
		}
		if t := parseTime(cell(row, colDate)); t != nil {
			line.InvoiceDate = *t
		}
		out = append(out, line)
	}
	return out, nil
}

func loadEvents(f *excelize.File) ([]fleet.ServiceEvent, error) {
	rows, err := sheet(f, fleet.TableEvents, []string{colEvent, colSubject, colUnit, colClosed})
	if err != nil {
		return nil, err
	}
	out := make([]fleet.ServiceEvent, 0, len(rows))
	for _, row := range rows {
		out = append(out, fleet.ServiceEvent{
			EventID:     cell(row, colEvent),
			UnitID:      fleet.NormalizeUnitID(cell(row, colUnit)),
			RawCategory: cell(row, colSubject),
			OpenedAt:    parseTime(cell(row, colOpened)),
			ClosedAt:    parseTime(cell(row, colClosed)),
			ClientID:    cell(row, colClient),
			Warehouse:   cell(row, colWarehouse),
			LoanStatus:  cell(row, colLoanStatus),
		})
	}
	return out, nil
}

func loadContracts(f *excelize.File) ([]fleet.ContractEntry, error) {
	rows, err := sheet(f, fleet.TableContracts, []string{colUnit, colStatus})
	if err != nil {
		return nil, err
	}
	out := make([]fleet.ContractEntry, 0, len(rows))
	for _, row := range rows {
		raw := cell(row, colStatus)
		out = append(out, fleet.ContractEntry{
			UnitID:    fleet.NormalizeUnitID(cell(row, colUnit)),
			Model:     cell(row, colModel),
			RawStatus: raw,
			Status:    fleet.ParseContractStatus(raw),
			ClientID:  cell(row, colClient),
		})
	}
	return out, nil
}

func loadClassification(f *excelize.File) ([]fleet.ClassificationEntry, error) {
	rows, err := sheet(f, fleet.TableClassification, []string{colModel, colObsolete})
	if err != nil {
		return nil, err
	}
	out := make([]fleet.ClassificationEntry, 0, len(rows))
	for _, row := range rows {
		flag := fleet.FlagNotObsolete
		if vocab.Fold(cell(row, colObsolete)) == "SIM" {
			flag = fleet.FlagObsolete
		}
		out = append(out, fleet.ClassificationEntry{
			Model:    cell(row, colModel),
			Obsolete: flag,
		})
	}
	return out, nil
}

// loadVocabulary merges the workbook's maintained mappings, when the
// sheet exists, on top of the seed vocabulary.
func loadVocabulary(f *excelize.File) (*fleet.Vocabulary, error) {
	vocabulary := fleet.NewVocabulary(fleet.SeedEntries())

	rows, err := sheet(f, fleet.TableVocabulary, []string{colFrom, colTo})
	if err != nil {
		if errors.IsSourceMissing(err) {
			return vocabulary, nil
		}
		return nil, err
	}
	for _, row := range rows {
		raw := cell(row, colFrom)
		to := fleet.Category(cell(row, colTo))
		if raw == "" || to == "" {
			continue
		}
		if err := vocabulary.Append(raw, to); err != nil {
			logging.Warn().Str("raw", raw).Err(err).Msg("conflicting vocabulary row skipped")
		}
	}
	return vocabulary, nil
}

func cell(row map[string]string, col string) string {
	return row[vocab.Fold(col)]
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// parseTime tries the known workbook layouts and returns nil when
// none fit, which downstream treats as an absent timestamp.
func parseTime(s string) *utc.Time {
	if s == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			u := utc.New(t)
			return &u
		}
	}
	return nil
}
