package fleet

import "strings"

// ContractStatus classifies a contract registry entry. The registry
// records free text; RawStatus preserves it and Status carries the
// typed reading.
type ContractStatus string

// Contract status values.
const (
	// ContractActive marks a unit currently registered on the network.
	ContractActive ContractStatus = "active"

	// ContractWrittenOff marks a unit written off against a defaulting
	// subscriber (negativado).
	ContractWrittenOff ContractStatus = "written-off"

	// ContractOther covers cancelled and any future statuses.
	ContractOther ContractStatus = "other"
)

// ContractEntry is one network-registered unit in the contract
// registry. The registry is a superset of the invoice registry: it
// includes units that were never invoiced.
type ContractEntry struct {
	// UnitID is the normalized equipment identifier.
	UnitID UnitID `yaml:"unit_id"`

	// Model is the equipment model description in the registry.
	Model string `yaml:"model"`

	// RawStatus is the registry's status text, preserved verbatim.
	RawStatus string `yaml:"raw_status"`

	// Status is the typed reading of RawStatus.
	Status ContractStatus `yaml:"status"`

	// ClientID identifies the subscriber holding the contract.
	ClientID string `yaml:"client_id,omitempty"`
}

// ParseContractStatus maps the registry's free-text status to its
// typed value. Unknown statuses are ContractOther, not an error.
func ParseContractStatus(raw string) ContractStatus {
	switch strings.TrimSpace(raw) {
	case "Ativo":
		return ContractActive
	case "Negativado":
		return ContractWrittenOff
	default:
		return ContractOther
	}
}
