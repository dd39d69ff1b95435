package fleet

import "strings"

// UnitID identifies one physical piece of leased equipment. IDs look
// numeric but are opaque text: the upstream systems export them through
// numeric cells, which leaves trailing ".0" artifacts and stray
// thousands separators that must be stripped before any cross-source
// join. Every source boundary must normalize with NormalizeUnitID, or
// the same unit will fail to match itself across tables.
type UnitID string

// String returns the string representation of a unit identifier.
func (id UnitID) String() string {
	return string(id)
}

// IsZero reports whether the identifier is empty after normalization.
func (id UnitID) IsZero() bool {
	return id == ""
}

// NormalizeUnitID repairs the known export artifacts of a raw unit
// identifier and returns it as opaque text. The empty string is
// returned for values that carry no identifier at all ("", "nan",
// "NaN" from numeric exports).
func NormalizeUnitID(raw string) UnitID {
	s := strings.TrimSpace(raw)
	s = strings.ReplaceAll(s, `\,`, "")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSuffix(s, ".0")
	switch strings.ToLower(s) {
	case "", "nan", "<na>", "none":
		return ""
	}
	return UnitID(s)
}
