// Package fleet defines the domain records shared by every stage of the
// reconciliation pipeline: invoice lines, service events, contract
// registry entries, the model classification table, and the service
// vocabulary. The four record sets are maintained independently and
// disagree on coverage and identifiers; this package only models them.
// Repairing the disagreements is the job of the cleaner, inference,
// classify, and audit packages.
package fleet

import (
	"github.com/netviva/fleetrec/pkg/errors"
)

// Source table names, matching the sheets of the backing workbook.
const (
	TableInvoices       = "NOTAS"
	TableEvents         = "OS"
	TableContracts      = "CONTRATOS"
	TableClassification = "config"
	TableVocabulary     = "DE_PARA"
)

// Sources is one full snapshot of the four source tables plus the
// vocabulary, as handed to a reconciliation run. A nil table means the
// source was absent entirely; an empty slice means it was present but
// had no rows.
type Sources struct {
	Invoices       []InvoiceLine
	Events         []ServiceEvent
	Contracts      []ContractEntry
	Classification []ClassificationEntry
	Vocabulary     *Vocabulary
}

// Validate checks that every required source is present. A missing
// table is fatal: nothing can be reconciled safely without it, so the
// run must abort before producing output.
func (s *Sources) Validate() error {
	if s == nil {
		return errors.NewValidationError("", "", "no sources")
	}
	if s.Invoices == nil {
		return errors.NewSourceError(TableInvoices, "invoice registry is absent", nil)
	}
	if s.Events == nil {
		return errors.NewSourceError(TableEvents, "service event log is absent", nil)
	}
	if s.Contracts == nil {
		return errors.NewSourceError(TableContracts, "contract registry is absent", nil)
	}
	if s.Classification == nil {
		return errors.NewSourceError(TableClassification, "classification table is absent", nil)
	}
	if s.Vocabulary == nil {
		return errors.NewSourceError(TableVocabulary, "vocabulary mapping is absent", nil)
	}
	return nil
}
