package extractor

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// normalizeText folds a raw cell into the canonical comparison form: NFKC,
// upper case, single spaces.
func normalizeText(s string) string {
	s = norm.NFKC.String(s)
	s = strings.ToUpper(s)
	s = strings.Join(strings.Fields(s), " ")
	return strings.TrimSpace(s)
}

// tokenize splits a normalized cell on the delimiters that separate sub-tokens
// in catalog text. Empty tokens are dropped.
func tokenize(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		switch r {
		case ' ', ',', ';', '\t', '(', ')':
			return true
		}
		return false
	})
	out := fields[:0]
	for _, f := range fields {
		f = strings.Trim(f, ".:#")
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}

// containsAsWord reports whether word occurs in text delimited on both sides
// by non-alphanumeric runes. A short brand name must not match inside a longer
// unrelated word.
func containsAsWord(text, word string) bool {
	start := 0
	for start < len(text) {
		idx := strings.Index(text[start:], word)
		if idx < 0 {
			return false
		}
		idx += start
		var before rune
		if idx > 0 {
			before, _ = utf8.DecodeLastRuneInString(text[:idx])
		}
		var after rune
		if end := idx + len(word); end < len(text) {
			after, _ = utf8.DecodeRuneInString(text[end:])
		}
		if !isAlphaNumRune(before) && !isAlphaNumRune(after) {
			return true
		}
		start = idx + len(word)
	}
	return false
}

func isAlphaNumRune(r rune) bool {
	if r == 0 || r == utf8.RuneError {
		return false
	}
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

func hasLetter(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}

func hasDigit(s string) bool {
	for _, r := range s {
		if unicode.IsDigit(r) {
			return true
		}
	}
	return false
}

func hasSeparator(s string) bool {
	return strings.ContainsAny(s, "-/")
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
