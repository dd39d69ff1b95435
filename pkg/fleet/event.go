package fleet

import (
	"github.com/agentstation/utc"

	"github.com/netviva/fleetrec/pkg/constants"
)

// ServiceEvent is one field-service interaction (an "OS", ordem de
// serviço) against a unit. Events are immutable once ingested except
// for Category and Cycle, which the cleaner recomputes on every run.
type ServiceEvent struct {
	// EventID is the service-order identifier, unique per interaction.
	EventID string `yaml:"event_id"`

	// UnitID is the normalized equipment identifier. Empty when the
	// upstream system did not link the event to a unit (common before
	// May 2024); such events are counted and excluded by the cleaner.
	UnitID UnitID `yaml:"unit_id"`

	// RawCategory is the free-text subject exactly as ingested.
	RawCategory string `yaml:"raw_category"`

	// Category is the canonical category assigned by the normalizer.
	Category Category `yaml:"category"`

	// OpenedAt and ClosedAt bound the interaction. ClosedAt is nil for
	// events still open at ingestion time.
	OpenedAt *utc.Time `yaml:"opened_at,omitempty"`
	ClosedAt *utc.Time `yaml:"closed_at,omitempty"`

	// ClientID identifies the subscriber the visit was for.
	ClientID string `yaml:"client_id,omitempty"`

	// Warehouse is the free-text almoxarifado the unit was booked to
	// at event close. Input to the location cascade.
	Warehouse string `yaml:"warehouse,omitempty"`

	// LoanStatus is the free-text comodato status at event close
	// ("Emprestado", "Sem Uso", "Devolvido", ...).
	LoanStatus string `yaml:"loan_status,omitempty"`

	// Cycle is the ordinal of this event within the unit's chronological
	// history, 1-based. Computed by the cleaner; zero before cleaning.
	Cycle int `yaml:"cycle"`
}

// CloseMonth returns the "2006-01" bucket of the closing timestamp, or
// the empty string when the event has no closing timestamp.
func (e *ServiceEvent) CloseMonth() string {
	if e.ClosedAt == nil {
		return ""
	}
	return e.ClosedAt.Format(constants.MonthLayout)
}
