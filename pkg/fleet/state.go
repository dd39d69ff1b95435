package fleet

import (
	"github.com/agentstation/utc"
)

// LocationState is the inferred physical location of a unit.
type LocationState string

// The location states a unit can resolve to. Exactly one applies per
// unit per run.
const (
	LocationInstalled      LocationState = "INSTALADO"
	LocationInStock        LocationState = "EM ESTOQUE"
	LocationRMA            LocationState = "RMA"
	LocationWithTechnician LocationState = "COM TÉCNICO"
	LocationDiscontinued   LocationState = "DESCONTINUADO"

	// LocationNoService marks invoiced units with no service history
	// at all. They are reported separately rather than being lumped
	// into the technician pool.
	LocationNoService LocationState = "SEM OS"
)

// String returns the string representation of the location state.
func (l LocationState) String() string {
	return string(l)
}

// Condition says whether a unit has been deployed more than once.
type Condition string

// A unit is new until its service history shows a second cycle.
const (
	ConditionNew    Condition = "NOVO"
	ConditionReused Condition = "REUTILIZADO"
)

// String returns the string representation of the condition.
func (c Condition) String() string {
	return string(c)
}

// ConditionFromCycle derives the condition from a unit's highest cycle
// number. Zero or one deployment means new.
func ConditionFromCycle(maxCycle int) Condition {
	if maxCycle > 1 {
		return ConditionReused
	}
	return ConditionNew
}

// UnitState is the reconciled per-unit record: purchase identity from
// the invoice table joined with the inference over its service history
// and the model classification.
type UnitState struct {
	UnitID       UnitID        `yaml:"unit_id"`
	Model        string        `yaml:"model"`
	SerialNumber string        `yaml:"serial_number,omitempty"`
	Invoice      string        `yaml:"invoice,omitempty"`
	InvoiceDate  utc.Time      `yaml:"invoice_date"`
	Location     LocationState `yaml:"location"`
	Condition    Condition     `yaml:"condition"`
	LastCategory Category      `yaml:"last_category,omitempty"`
	LastEventAt  *utc.Time     `yaml:"last_event_at,omitempty"`
	MaxCycle     int           `yaml:"max_cycle"`
	Obsolete     Flag          `yaml:"obsolete,omitempty"`
}

// HasServiceHistory reports whether any service event was ever matched
// to the unit.
func (s UnitState) HasServiceHistory() bool {
	return s.MaxCycle > 0
}
