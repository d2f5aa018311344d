package extractor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func textRow(cells ...string) Row {
	return Row{Texts: cells}
}

func candidatesFor(t *testing.T, gen generator, row Row) []Candidate {
	t.Helper()
	return gen(row, testLexicon(t))
}

func findCandidate(cands []Candidate, field Field, value string) (Candidate, bool) {
	for _, c := range cands {
		if c.Field == field && c.Value == value {
			return c, true
		}
	}
	return Candidate{}, false
}

func TestLabelCandidates(t *testing.T) {
	cands := candidatesFor(t, labelCandidates, textRow("MOTOR PN: 19YG89-1, MFG: EATON"))

	code, ok := findCandidate(cands, FieldCode, "19YG89-1")
	require.True(t, ok)
	assert.Equal(t, StrategyLabel, code.Strategy)
	assert.Equal(t, baseLabel, code.Confidence)
	assert.Contains(t, code.Evidence, "PN")

	ident, ok := findCandidate(cands, FieldIdentifier, "EATON")
	require.True(t, ok)
	assert.Equal(t, StrategyLabel, ident.Strategy)
}

func TestLabelCandidatesVariants(t *testing.T) {
	cases := map[string]string{
		"PUMP MODEL: ABC-123":      "ABC-123",
		"VALVE P/N# 445X98":        "445X98",
		"BELT PART NUMBER: 5VX850": "5VX850",
		"RELAY CAT NO: 700-HA32":   "700-HA32",
		"DRIVE MFR NUMBER: ACS550": "ACS550",
	}
	for text, want := range cases {
		cands := candidatesFor(t, labelCandidates, textRow(text))
		_, ok := findCandidate(cands, FieldCode, want)
		assert.True(t, ok, "expected code %q from %q", want, text)
	}
}

func TestKnownCandidatesBoundary(t *testing.T) {
	cands := candidatesFor(t, knownCandidates, textRow("BREAKER,GE,20A,1P"))
	_, ok := findCandidate(cands, FieldIdentifier, "GE")
	assert.True(t, ok)

	// GE inside GEARED must not match.
	cands = candidatesFor(t, knownCandidates, textRow("GEARED MOTOR 5HP"))
	_, ok = findCandidate(cands, FieldIdentifier, "GE")
	assert.False(t, ok)
}

func TestKnownCandidatesMultiWord(t *testing.T) {
	cands := candidatesFor(t, knownCandidates, textRow("SQUARE D BREAKER 20A"))
	c, ok := findCandidate(cands, FieldIdentifier, "SQUARE D")
	require.True(t, ok)
	assert.Equal(t, baseKnown, c.Confidence)
}

func TestPrefixCandidates(t *testing.T) {
	cands := candidatesFor(t, prefixCandidates, textRow("HUBCS120W RECEPTACLE"))

	ident, ok := findCandidate(cands, FieldIdentifier, "HUBBELL")
	require.True(t, ok)
	assert.Equal(t, StrategyPrefix, ident.Strategy)
	assert.Equal(t, "HUBCS120W", ident.Evidence)

	code, ok := findCandidate(cands, FieldCode, "CS120W")
	require.True(t, ok)
	assert.Equal(t, basePrefix, code.Confidence)
}

func TestPrefixCandidatesRequireDecodableShape(t *testing.T) {
	// No digit in the trailing part.
	assert.Empty(t, candidatesFor(t, prefixCandidates, textRow("HUBCAPS COVER")))
	// Unknown prefix.
	assert.Empty(t, candidatesFor(t, prefixCandidates, textRow("XYZCS120W PART")))
	// Too short to split.
	assert.Empty(t, candidatesFor(t, prefixCandidates, textRow("HUB12 PART")))
}

func TestDashCatalogCandidates(t *testing.T) {
	cands := candidatesFor(t, dashCatalogCandidates, textRow("19YG89 - CIRCUIT BREAKER 20A"))
	c, ok := findCandidate(cands, FieldCode, "19YG89")
	require.True(t, ok)
	assert.Equal(t, StrategyDashCatalog, c.Strategy)

	// Description-first cells do not match.
	assert.Empty(t, candidatesFor(t, dashCatalogCandidates, textRow("CIRCUIT BREAKER - HEAVY DUTY")))
}

func TestStructuredCandidates(t *testing.T) {
	cands := candidatesFor(t, structuredCandidates, textRow("H-10233"))
	c, ok := findCandidate(cands, FieldCode, "H-10233")
	require.True(t, ok)
	assert.Equal(t, baseStructured, c.Confidence)
}

func TestStructuredCandidatesRejectDescriptorNumbers(t *testing.T) {
	for _, text := range []string{"VALVE 2-WAY BRASS", "FLANGE 4-BOLT STEEL", "SOCKET 12-POINT", "FILTER 700-HOUR"} {
		cands := candidatesFor(t, structuredCandidates, textRow(text))
		assert.Empty(t, cands, "descriptor+number token must not become a code: %q", text)
	}
}

func TestDelimitedCandidatesLastToken(t *testing.T) {
	cands := candidatesFor(t, delimitedCandidates, textRow("CKT BRKR,EATON,19YG89"))
	c, ok := findCandidate(cands, FieldCode, "19YG89")
	require.True(t, ok)
	assert.Equal(t, baseDelimited, c.Confidence)
}

func TestDelimitedCandidatesRejectSpecValues(t *testing.T) {
	cands := candidatesFor(t, delimitedCandidates, textRow("DRV,3AXD50000731121,5HP,480V"))
	for _, rejected := range []string{"5HP", "480V"} {
		_, ok := findCandidate(cands, FieldCode, rejected)
		assert.False(t, ok, "%s is a spec value, not a code", rejected)
	}
	// The longest mixed token survives as the secondary signal.
	c, ok := findCandidate(cands, FieldCode, "3AXD50000731121")
	require.True(t, ok)
	assert.Equal(t, baseDelimitedAlt, c.Confidence)
}

func TestSpecValueShapes(t *testing.T) {
	for _, tok := range []string{"480V", "20A", "5HP", "3500RPM", "1PH", "60HZ", "DC24V", "AC120V", "1/2IN", "3/4", "10GA", "25KW"} {
		assert.True(t, specValueRE.MatchString(tok), "expected spec value: %s", tok)
	}
	for _, tok := range []string{"19YG89", "H-10233", "CS120W", "3AXD50000731121"} {
		assert.False(t, specValueRE.MatchString(tok), "not a spec value: %s", tok)
	}
}

func TestHintCandidates(t *testing.T) {
	lex := testLexicon(t)

	cands := hintCandidates(Row{Hints: map[string]string{"supplier": "Acme Supply Co"}}, lex)
	require.Len(t, cands, 1)
	assert.Equal(t, "ACME SUPPLY CO", cands[0].Value)
	assert.Equal(t, StrategyHint, cands[0].Strategy)
	assert.Equal(t, baseHint, cands[0].Confidence)

	// Excluded values never surface through the hint fallback.
	cands = hintCandidates(Row{Hints: map[string]string{"supplier": "GRAINGER"}}, lex)
	assert.Empty(t, cands)

	// Excluded but allow-listed values do.
	overrideLex, err := NewLexicon(nil, []string{"SQUARE D"}, []string{"SQUARE D"}, nil)
	require.NoError(t, err)
	cands = hintCandidates(Row{Hints: map[string]string{"supplier": "SQUARE D"}}, overrideLex)
	require.Len(t, cands, 1)
	assert.Equal(t, "SQUARE D", cands[0].Value)
}

func TestHintCandidatesDeterministicKeyOrder(t *testing.T) {
	lex := testLexicon(t)
	row := Row{Hints: map[string]string{
		"vendor":   "ZENITH PARTS",
		"supplier": "ACME SUPPLY",
	}}
	for i := 0; i < 10; i++ {
		cands := hintCandidates(row, lex)
		require.Len(t, cands, 1)
		assert.Equal(t, "ACME SUPPLY", cands[0].Value)
	}
}

func TestHeuristicCandidates(t *testing.T) {
	cands := candidatesFor(t, heuristicCandidates, textRow("DRV 3AXD50000731121 SPARE"))
	c, ok := findCandidate(cands, FieldCode, "3AXD50000731121")
	require.True(t, ok)
	assert.Equal(t, StrategyHeuristic, c.Strategy)
	assert.Less(t, c.Confidence, baseLabel)

	// Known identifiers and plain words are not heuristic codes.
	cands = candidatesFor(t, heuristicCandidates, textRow("EATON BREAKER SPARE"))
	assert.Empty(t, cands)
}

func TestGenerateCandidatesRunsEveryStrategy(t *testing.T) {
	lex := testLexicon(t)
	row := Row{
		Texts: []string{"MOTOR PN: 19YG89, MFG: EATON, 5HP"},
		Hints: map[string]string{"supplier": "ACME SUPPLY"},
	}
	cands := generateCandidates(row, lex)

	seen := make(map[Strategy]bool)
	for _, c := range cands {
		seen[c.Strategy] = true
	}
	// Even with a high-confidence label present, lower tiers still vote.
	assert.True(t, seen[StrategyLabel])
	assert.True(t, seen[StrategyKnown])
	assert.True(t, seen[StrategyHint])
	assert.True(t, seen[StrategyHeuristic])
}
