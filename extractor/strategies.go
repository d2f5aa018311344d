package extractor

import (
	"regexp"
	"sort"
	"strings"
)

// Base confidences per strategy family. The explicit-label family defines the
// ceiling; the graduated heuristic stays strictly below it (see resolver.go).
const (
	baseLabel        float32 = 0.95
	baseKnown        float32 = 0.85
	basePrefix       float32 = 0.80
	baseDashCatalog  float32 = 0.78
	baseStructured   float32 = 0.75
	baseDelimited    float32 = 0.70
	baseDelimitedAlt float32 = 0.68
	baseHint         float32 = 0.60
)

const minCodeTokenLen = 4

var (
	// Explicit label markers. Code labels require the separator so that a
	// bare "MFG:" stays an identifier label, not a code label.
	labelCodeRE = regexp.MustCompile(`\b(?:P/?N|PART(?:\s+(?:NO|NUM|NUMBER))?|MODEL(?:\s+(?:NO|NUMBER))?|MN|CAT(?:ALOG)?(?:\s+(?:NO|NUMBER))?|MF[GR]\s+(?:NO|NUM|NUMBER))\s*[:#]\s*([A-Z0-9][A-Z0-9\-/.]*)`)
	labelIdentRE = regexp.MustCompile(`\b(?:MF[GR]|MANUFACTURER|BRAND|MAKE)\s*[:#]\s*([A-Z][A-Z0-9&.\- ]*?)\s*(?:,|;|$)`)

	// Unit/spec values and descriptor+number shapes are never codes.
	specValueRE        = regexp.MustCompile(`^(?:(?:AC|DC)?\d+(?:\.\d+)?(?:/\d+)?(?:V|VAC|VDC|KV|A|AMP|AMPS|MA|W|KW|HP|RPM|PH|HZ|GPM|PSI|IN|MM|CM|FT|GA|AWG|VA)|\d+/\d+)$`)
	descriptorNumberRE = regexp.MustCompile(`^\d+-(?:WAY|BOLT|POINT|POS|PIN|HOUR|SPC|DI/O|GANG|CONDUCTOR)$`)

	structuredCodeRE = regexp.MustCompile(`^[A-Z0-9]+(?:[\-/][A-Z0-9]+)+$`)
	codeShapeRE      = regexp.MustCompile(`^[A-Z0-9]+(?:[\-/][A-Z0-9]+)*$`)
	prefixCodedRE    = regexp.MustCompile(`^[A-Z]{2,4}[A-Z0-9]*\d[A-Z0-9]*$`)
	dashCatalogRE    = regexp.MustCompile(`^([A-Z0-9]{3,}(?:[\-/][A-Z0-9]+)*)\s+-\s+\S`)
)

type generator func(Row, *Lexicon) []Candidate

// generators run in strategy-priority order. Every generator always runs so
// every strategy gets a vote; precedence is a weighting decision, not
// control-flow order.
var generators = []generator{
	labelCandidates,
	knownCandidates,
	prefixCandidates,
	dashCatalogCandidates,
	structuredCandidates,
	delimitedCandidates,
	hintCandidates,
	heuristicCandidates,
}

func generateCandidates(row Row, lex *Lexicon) []Candidate {
	var out []Candidate
	for _, gen := range generators {
		out = append(out, gen(row, lex)...)
	}
	return out
}

// codeToken reports whether a token is plausible as a code at all: mixed
// shape, long enough, and not a unit/spec or descriptor value.
func codeToken(tok string) bool {
	if len(tok) < minCodeTokenLen {
		return false
	}
	if !codeShapeRE.MatchString(tok) || !hasDigit(tok) {
		return false
	}
	if specValueRE.MatchString(tok) || descriptorNumberRE.MatchString(tok) {
		return false
	}
	return true
}

func labelCandidates(row Row, _ *Lexicon) []Candidate {
	var out []Candidate
	for _, cell := range row.Texts {
		text := normalizeText(cell)
		for _, m := range labelCodeRE.FindAllStringSubmatch(text, -1) {
			value := strings.Trim(m[1], ".")
			if value == "" {
				continue
			}
			out = append(out, Candidate{
				Value:      value,
				Field:      FieldCode,
				Strategy:   StrategyLabel,
				Confidence: baseLabel,
				Evidence:   m[0],
			})
		}
		for _, m := range labelIdentRE.FindAllStringSubmatch(text, -1) {
			value := strings.TrimSpace(m[1])
			if value == "" {
				continue
			}
			out = append(out, Candidate{
				Value:      value,
				Field:      FieldIdentifier,
				Strategy:   StrategyLabel,
				Confidence: baseLabel,
				Evidence:   strings.TrimSpace(m[0]),
			})
		}
	}
	return out
}

func knownCandidates(row Row, lex *Lexicon) []Candidate {
	var out []Candidate
	seen := make(map[string]struct{})
	for _, cell := range row.Texts {
		text := normalizeText(cell)
		if text == "" {
			continue
		}
		for _, name := range lex.KnownNames() {
			if _, dup := seen[name]; dup {
				continue
			}
			if containsAsWord(text, name) {
				seen[name] = struct{}{}
				out = append(out, Candidate{
					Value:      name,
					Field:      FieldIdentifier,
					Strategy:   StrategyKnown,
					Confidence: baseKnown,
					Evidence:   name,
				})
			}
		}
	}
	return out
}

func isPrefixCoded(tok string, lex *Lexicon) bool {
	_, _, ok := splitPrefixCode(tok, lex)
	return ok
}

// splitPrefixCode splits a concatenated brand prefix + code token, longest
// prefix first.
func splitPrefixCode(tok string, lex *Lexicon) (string, string, bool) {
	if len(tok) <= 5 || !prefixCodedRE.MatchString(tok) {
		return "", "", false
	}
	for k := 4; k >= 2; k-- {
		if k >= len(tok) {
			continue
		}
		target, ok := lex.PrefixTarget(tok[:k])
		if !ok {
			continue
		}
		rest := tok[k:]
		if len(rest) >= 3 && hasDigit(rest) {
			return target, rest, true
		}
	}
	return "", "", false
}

func prefixCandidates(row Row, lex *Lexicon) []Candidate {
	var out []Candidate
	for _, cell := range row.Texts {
		toks := tokenize(normalizeText(cell))
		if len(toks) == 0 {
			continue
		}
		ident, code, ok := splitPrefixCode(toks[0], lex)
		if !ok {
			continue
		}
		out = append(out,
			Candidate{
				Value:      ident,
				Field:      FieldIdentifier,
				Strategy:   StrategyPrefix,
				Confidence: basePrefix,
				Evidence:   toks[0],
			},
			Candidate{
				Value:      code,
				Field:      FieldCode,
				Strategy:   StrategyPrefix,
				Confidence: basePrefix,
				Evidence:   toks[0],
			})
	}
	return out
}

func dashCatalogCandidates(row Row, _ *Lexicon) []Candidate {
	var out []Candidate
	for _, cell := range row.Texts {
		text := normalizeText(cell)
		m := dashCatalogRE.FindStringSubmatch(text)
		if m == nil || !codeToken(m[1]) {
			continue
		}
		out = append(out, Candidate{
			Value:      m[1],
			Field:      FieldCode,
			Strategy:   StrategyDashCatalog,
			Confidence: baseDashCatalog,
			Evidence:   m[1],
		})
	}
	return out
}

func structuredCandidates(row Row, _ *Lexicon) []Candidate {
	var out []Candidate
	for _, cell := range row.Texts {
		for _, tok := range tokenize(normalizeText(cell)) {
			if !structuredCodeRE.MatchString(tok) || !codeToken(tok) {
				continue
			}
			out = append(out, Candidate{
				Value:      tok,
				Field:      FieldCode,
				Strategy:   StrategyStructured,
				Confidence: baseStructured,
				Evidence:   tok,
			})
		}
	}
	return out
}

func delimitedCandidates(row Row, _ *Lexicon) []Candidate {
	var out []Candidate
	for _, cell := range row.Texts {
		text := normalizeText(cell)
		parts := strings.Split(text, ",")
		if len(parts) < 2 {
			continue
		}
		last := strings.TrimSpace(parts[len(parts)-1])
		if toks := tokenize(last); len(toks) == 1 && codeToken(toks[0]) {
			out = append(out, Candidate{
				Value:      toks[0],
				Field:      FieldCode,
				Strategy:   StrategyDelimited,
				Confidence: baseDelimited,
				Evidence:   toks[0],
			})
		}
		// Secondary signal: the longest mixed alphanumeric token anywhere in
		// the cell, slightly discounted so the trailing token wins ties.
		longest := ""
		for _, tok := range tokenize(text) {
			if codeToken(tok) && hasLetter(tok) && len(tok) > len(longest) {
				longest = tok
			}
		}
		if longest != "" {
			out = append(out, Candidate{
				Value:      longest,
				Field:      FieldCode,
				Strategy:   StrategyDelimited,
				Confidence: baseDelimitedAlt,
				Evidence:   longest,
			})
		}
	}
	return out
}

func hintCandidates(row Row, lex *Lexicon) []Candidate {
	if len(row.Hints) == 0 {
		return nil
	}
	keys := make([]string, 0, len(row.Hints))
	for k := range row.Hints {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		value := normalizeText(row.Hints[k])
		if value == "" || !lex.AllowedIdentifier(value) {
			continue
		}
		return []Candidate{{
			Value:      value,
			Field:      FieldIdentifier,
			Strategy:   StrategyHint,
			Confidence: baseHint,
			Evidence:   value,
		}}
	}
	return nil
}

func heuristicCandidates(row Row, lex *Lexicon) []Candidate {
	var out []Candidate
	for _, cell := range row.Texts {
		for _, tok := range tokenize(normalizeText(cell)) {
			if !codeToken(tok) || !hasLetter(tok) {
				continue
			}
			if lex.IsKnown(tok) || lex.IsExcluded(tok) {
				continue
			}
			out = append(out, Candidate{
				Value:      tok,
				Field:      FieldCode,
				Strategy:   StrategyHeuristic,
				Confidence: heuristicScore(tok),
				Evidence:   tok,
			})
		}
	}
	return out
}
