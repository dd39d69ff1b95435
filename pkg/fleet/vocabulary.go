package fleet

import (
	"fmt"
	"sort"

	"github.com/netviva/fleetrec/pkg/errors"
)

// Category is a canonical service-event category. All free-text event
// subjects normalize into this fixed vocabulary (or the Unmapped
// sentinel when nothing matches).
type Category string

// String returns the string representation of a category.
func (c Category) String() string {
	return string(c)
}

// The canonical category set. Values are the exact strings the
// operations team standardized on; the set stays well under the
// twenty-value ceiling.
const (
	CategoryInstall          Category = "INSTALACAO"
	CategoryInstallCourtesy  Category = "INSTALACAO CORTESIA"
	CategoryInstallPhone     Category = "INSTALACAO TELEFONE"
	CategoryMesh             Category = "MESH"
	CategoryMaintenance      Category = "MANUTENCAO"
	CategoryAddressChange    Category = "MUDANCA ENDEREÇO"
	CategoryUpgrade          Category = "UPGRADE"
	CategoryRemoveRepeater   Category = "RETIRADA REPETIDOR"
	CategoryRemoveCollection Category = "RETIRADA COLETA"
	CategoryRemovePoint      Category = "RETIRADA DE PONTO"

	// CategoryIgnored marks subjects the team deliberately excludes
	// from every analysis (billing tasks, after-sales follow-ups).
	CategoryIgnored Category = "****"
)

// CategoryUnmapped is the sentinel for subjects no table could map.
// It is NOT a member of the canonical set: every occurrence is tallied
// and surfaced by the audit engine.
const CategoryUnmapped Category = "NÃO MAPEADO"

// canonicalSet indexes the fixed vocabulary for membership checks.
var canonicalSet = map[Category]struct{}{
	CategoryInstall:          {},
	CategoryInstallCourtesy:  {},
	CategoryInstallPhone:     {},
	CategoryMesh:             {},
	CategoryMaintenance:      {},
	CategoryAddressChange:    {},
	CategoryUpgrade:          {},
	CategoryRemoveRepeater:   {},
	CategoryRemoveCollection: {},
	CategoryRemovePoint:      {},
	CategoryIgnored:          {},
}

// IsCanonical reports whether the category belongs to the fixed set.
func (c Category) IsCanonical() bool {
	_, ok := canonicalSet[c]
	return ok
}

// IsInstall reports whether the category is an installation (activation)
// of internet service. Courtesy and telephone installs are separate
// categories and do not count as activations.
func (c Category) IsInstall() bool {
	return c == CategoryInstall
}

// IsRemoval reports whether the category is any of the equipment
// removal families.
func (c Category) IsRemoval() bool {
	switch c {
	case CategoryRemoveRepeater, CategoryRemoveCollection, CategoryRemovePoint:
		return true
	}
	return false
}

// CanonicalCategories returns the fixed set in sorted order.
func CanonicalCategories() []Category {
	out := make([]Category, 0, len(canonicalSet))
	for c := range canonicalSet {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// DefaultOverrides is the fixed override table: historical renames and
// typos of intermediate categories, corrected centrally so the
// maintained table never needs editing. It takes precedence over the
// maintained table on every lookup.
func DefaultOverrides() map[string]Category {
	return map[string]Category{
		"INSTALACAO INTERNET":                  CategoryInstall,
		"Instalação Internet (descontinuado)":  CategoryInstall,
		"Instalação Repetidor Wirelles":        CategoryMesh,
		"Instalação Serviço Cortesia":          CategoryInstallCourtesy,
		"Instalação de Telefone":               CategoryInstallPhone,
		"MANUTENCAO DE REDE":                   CategoryMaintenance,
		"MANUTENÇÃO TÉCNICA":                   CategoryMaintenance,
		"MUDANÇA DE ENDEREÇO":                  CategoryAddressChange,
		"SERVIÇOS TÉCNICOS DIVERSOS":           CategoryMesh,
		"UPGRADE - EQUIPAMENTO":                CategoryUpgrade,
		"0.1.4 RETIRADA DE REPETIDOR WIRELESS": CategoryRemoveRepeater,
		"0.1.5 RETIRADA ORDEM DE COLETA":       CategoryRemoveCollection,
		"0.1.6 RETIRADA PONTO DE INTERNET":     CategoryRemovePoint,
		"RETIRADA ORDEM DE COLETA":             CategoryRemoveCollection,
		"RETIRADA PONTO DE INTERNET":           CategoryRemovePoint,
	}
}

// VocabularyEntry is one maintained mapping from a raw event subject
// to an intermediate category. The intermediate value is usually
// canonical already; when it is an older name, the override table
// finishes the job.
type VocabularyEntry struct {
	Raw string   `yaml:"raw"`
	To  Category `yaml:"to"`
}

// Vocabulary is the two-stage category mapping: the maintained,
// extensible raw→intermediate table plus the fixed override table.
// The maintained table is append-only from the engine's point of view;
// Append is the only mutation and it never rewrites an existing entry.
type Vocabulary struct {
	entries   []VocabularyEntry
	index     map[string]Category
	overrides map[string]Category
}

// NewVocabulary builds a vocabulary from maintained entries and the
// fixed override table. Duplicate raw values keep the first entry, in
// keeping with the keep-first policy everywhere else in the pipeline.
func NewVocabulary(entries []VocabularyEntry) *Vocabulary {
	v := &Vocabulary{
		index:     make(map[string]Category, len(entries)),
		overrides: DefaultOverrides(),
	}
	for _, e := range entries {
		if _, ok := v.index[e.Raw]; ok {
			continue
		}
		v.entries = append(v.entries, e)
		v.index[e.Raw] = e.To
	}
	return v
}

// SeedEntries returns the maintained mappings every deployment starts
// from: the override renames themselves plus the deliberately ignored
// subjects. Loading a workbook merges its config sheet on top.
func SeedEntries() []VocabularyEntry {
	overrides := DefaultOverrides()
	raws := make([]string, 0, len(overrides))
	for raw := range overrides {
		raws = append(raws, raw)
	}
	sort.Strings(raws)

	entries := make([]VocabularyEntry, 0, len(raws)+2)
	for _, raw := range raws {
		entries = append(entries, VocabularyEntry{Raw: raw, To: overrides[raw]})
	}
	entries = append(entries,
		VocabularyEntry{Raw: "Emitir Taxa", To: CategoryIgnored},
		VocabularyEntry{Raw: "POS VENDA (BRASILIA)", To: CategoryIgnored},
	)
	return entries
}

// LookupOverride consults the fixed override table.
func (v *Vocabulary) LookupOverride(raw string) (Category, bool) {
	c, ok := v.overrides[raw]
	return c, ok
}

// LookupMaintained consults the maintained table.
func (v *Vocabulary) LookupMaintained(raw string) (Category, bool) {
	c, ok := v.index[raw]
	return c, ok
}

// Append adds a maintained mapping. Appending a raw value that already
// maps to a different target is rejected: existing entries are never
// rewritten, only table edits outside the engine may change them.
func (v *Vocabulary) Append(raw string, to Category) error {
	if existing, ok := v.index[raw]; ok {
		if existing == to {
			return nil
		}
		return fmt.Errorf("vocabulary entry %q already maps to %q: %w", raw, existing, errors.ErrReadOnly)
	}
	v.entries = append(v.entries, VocabularyEntry{Raw: raw, To: to})
	v.index[raw] = to
	return nil
}

// Entries returns the maintained table in insertion order.
func (v *Vocabulary) Entries() []VocabularyEntry {
	out := make([]VocabularyEntry, len(v.entries))
	copy(out, v.entries)
	return out
}

// Len returns the number of maintained entries.
func (v *Vocabulary) Len() int {
	return len(v.entries)
}
