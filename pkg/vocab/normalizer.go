// Package vocab normalizes free-text service-event subjects into the
// canonical category vocabulary. Normalization is a pure lookup: the
// maintained table and the fixed override table decide everything, and
// subjects neither table knows are tallied rather than guessed at.
package vocab

import (
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/netviva/fleetrec/pkg/fleet"
)

// upper folds raw subjects for comparison against the canonical set.
// Brazilian Portuguese casing keeps cedillas and tildes stable.
var upper = cases.Upper(language.BrazilianPortuguese)

// stripAccents removes combining marks so "MANUTENÇÃO" and
// "MANUTENCAO" compare equal.
var stripAccents = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Fold returns the comparison form of a subject: trimmed, accent
// stripped, uppercased, inner whitespace collapsed. Folding is only
// used to recognize subjects that are already canonical up to casing
// and accents; table lookups stay exact.
func Fold(s string) string {
	folded, _, err := transform.String(stripAccents, s)
	if err != nil {
		folded = s
	}
	folded = upper.String(folded)
	return strings.Join(strings.Fields(folded), " ")
}

// Normalizer maps raw subjects to canonical categories and keeps a
// tally of everything it could not map. A Normalizer is built per run
// and is not safe for concurrent use.
type Normalizer struct {
	vocab     *fleet.Vocabulary
	canonical map[string]fleet.Category
	unmapped  map[string]int
}

// New builds a normalizer over the given vocabulary.
func New(v *fleet.Vocabulary) *Normalizer {
	n := &Normalizer{
		vocab:     v,
		canonical: make(map[string]fleet.Category),
		unmapped:  make(map[string]int),
	}
	for _, c := range fleet.CanonicalCategories() {
		n.canonical[Fold(c.String())] = c
	}
	return n
}

// Normalize resolves one raw subject. Lookup order: already-canonical
// check (folded), then the fixed override table, then the maintained
// table with the override table applied once more to its result.
// Anything unresolved is tallied and returned as the unmapped sentinel.
func (n *Normalizer) Normalize(raw string) fleet.Category {
	subject := strings.TrimSpace(raw)
	if subject == "" {
		n.unmapped[""]++
		return fleet.CategoryUnmapped
	}

	if c, ok := n.canonical[Fold(subject)]; ok {
		return c
	}
	if c, ok := n.vocab.LookupOverride(subject); ok {
		return c
	}
	if intermediate, ok := n.vocab.LookupMaintained(subject); ok {
		return n.resolve(subject, intermediate)
	}

	n.unmapped[subject]++
	return fleet.CategoryUnmapped
}

// resolve finishes a maintained-table hit. The intermediate value may
// itself be an older name the override table corrects.
func (n *Normalizer) resolve(subject string, intermediate fleet.Category) fleet.Category {
	if c, ok := n.vocab.LookupOverride(intermediate.String()); ok {
		return c
	}
	if intermediate.IsCanonical() {
		return intermediate
	}
	if c, ok := n.canonical[Fold(intermediate.String())]; ok {
		return c
	}
	n.unmapped[subject]++
	return fleet.CategoryUnmapped
}

// UnmappedTotal returns how many normalizations fell through to the
// unmapped sentinel.
func (n *Normalizer) UnmappedTotal() int {
	total := 0
	for _, count := range n.unmapped {
		total += count
	}
	return total
}

// UnmappedSubject is one raw subject the vocabulary could not map,
// with how often it occurred this run.
type UnmappedSubject struct {
	Raw   string `yaml:"raw"`
	Count int    `yaml:"count"`
}

// Unmapped returns the tally of unresolved subjects, most frequent
// first. Ties break on the raw text so output is stable across runs.
func (n *Normalizer) Unmapped() []UnmappedSubject {
	out := make([]UnmappedSubject, 0, len(n.unmapped))
	for raw, count := range n.unmapped {
		out = append(out, UnmappedSubject{Raw: raw, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Raw < out[j].Raw
	})
	return out
}
