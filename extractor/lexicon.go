package extractor

import (
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
)

// Lexicon is the immutable curated vocabulary the engine resolves against:
// alias variants, the known-identifier allow list, the exclusion list
// (distributors and generic descriptors barred from the identifier field),
// and short brand prefixes used to decode concatenated codes.
//
// All entries are normalized at construction and the structure is never
// mutated afterwards, so concurrent readers need no locking.
type Lexicon struct {
	aliases  map[string]string
	known    map[string]struct{}
	excluded map[string]struct{}
	prefixes map[string]string

	knownByLen []string
}

// NewLexicon validates and builds a Lexicon. Construction fails when an alias
// target is in the exclusion list without being a known identifier, or when an
// alias target is itself an alias key with a different target; every offending
// alias key is enumerated in the error.
func NewLexicon(aliases map[string]string, known, excluded []string, prefixes map[string]string) (*Lexicon, error) {
	lex := &Lexicon{
		aliases:  make(map[string]string, len(aliases)),
		known:    make(map[string]struct{}, len(known)),
		excluded: make(map[string]struct{}, len(excluded)),
		prefixes: make(map[string]string, len(prefixes)),
	}
	for _, v := range known {
		if normed := normalizeText(v); normed != "" {
			lex.known[normed] = struct{}{}
		}
	}
	for _, v := range excluded {
		if normed := normalizeText(v); normed != "" {
			lex.excluded[normed] = struct{}{}
		}
	}
	for k, v := range aliases {
		key := normalizeText(k)
		target := normalizeText(v)
		if key == "" || target == "" || key == target {
			continue
		}
		lex.aliases[key] = target
	}
	for k, v := range prefixes {
		key := normalizeText(k)
		target := normalizeText(v)
		if len(key) < 2 || len(key) > 4 || target == "" {
			continue
		}
		lex.prefixes[key] = target
	}

	var excludedTargets, chained []string
	for key, target := range lex.aliases {
		if _, bad := lex.excluded[target]; bad {
			if _, ok := lex.known[target]; !ok {
				excludedTargets = append(excludedTargets, key)
			}
		}
		if next, ok := lex.aliases[target]; ok && next != target {
			chained = append(chained, key)
		}
	}
	sort.Strings(excludedTargets)
	sort.Strings(chained)
	if len(excludedTargets) > 0 {
		return nil, errors.Newf("lexicon: alias targets in exclusion list without allow-list override: %s",
			strings.Join(excludedTargets, ", "))
	}
	if len(chained) > 0 {
		return nil, errors.Newf("lexicon: alias chains break idempotent canonicalization: %s",
			strings.Join(chained, ", "))
	}

	lex.knownByLen = make([]string, 0, len(lex.known))
	for name := range lex.known {
		lex.knownByLen = append(lex.knownByLen, name)
	}
	sort.Slice(lex.knownByLen, func(i, j int) bool {
		if len(lex.knownByLen[i]) == len(lex.knownByLen[j]) {
			return lex.knownByLen[i] < lex.knownByLen[j]
		}
		return len(lex.knownByLen[i]) > len(lex.knownByLen[j])
	})
	return lex, nil
}

// Canonical folds a value and applies a single alias lookup. Idempotent: a
// canonical value passes through unchanged.
func (l *Lexicon) Canonical(value string) string {
	normed := normalizeText(value)
	if target, ok := l.aliases[normed]; ok {
		return target
	}
	return normed
}

// IsKnown reports membership in the known-identifier allow list.
func (l *Lexicon) IsKnown(value string) bool {
	_, ok := l.known[normalizeText(value)]
	return ok
}

// IsExcluded reports membership in the exclusion list.
func (l *Lexicon) IsExcluded(value string) bool {
	_, ok := l.excluded[normalizeText(value)]
	return ok
}

// AllowedIdentifier reports whether a value may be accepted as the identifier.
// An excluded value is only allowed when it is also on the allow list.
func (l *Lexicon) AllowedIdentifier(value string) bool {
	normed := normalizeText(value)
	if normed == "" {
		return false
	}
	if _, bad := l.excluded[normed]; bad {
		_, ok := l.known[normed]
		return ok
	}
	return true
}

// PrefixTarget resolves a short brand prefix to its canonical identifier.
func (l *Lexicon) PrefixTarget(prefix string) (string, bool) {
	target, ok := l.prefixes[normalizeText(prefix)]
	return target, ok
}

// KnownNames returns the allow list sorted longest first, the scan order used
// by the lexical-match strategy.
func (l *Lexicon) KnownNames() []string {
	return l.knownByLen
}
