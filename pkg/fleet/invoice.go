package fleet

import "github.com/agentstation/utc"

// InvoiceLine is one purchased unit on a purchase invoice (nota
// fiscal). A unit should appear on at most one line; duplicates are a
// data-quality finding surfaced by the audit engine, never a crash.
type InvoiceLine struct {
	// Invoice is the invoice number, opaque text like unit IDs.
	Invoice string `yaml:"invoice"`

	// InvoiceDate is the purchase date.
	InvoiceDate utc.Time `yaml:"invoice_date"`

	// Model is the equipment model description as invoiced.
	Model string `yaml:"model"`

	// SerialNumber is the manufacturer serial, when recorded.
	SerialNumber string `yaml:"serial_number,omitempty"`

	// UnitID is the normalized equipment identifier.
	UnitID UnitID `yaml:"unit_id"`
}
