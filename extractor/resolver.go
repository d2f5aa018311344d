package extractor

import (
	"regexp"
	"strings"
	"unicode"
)

// Graduated scoring for the generic heuristic. The ceiling stays strictly
// below baseLabel regardless of accumulated bonuses.
const (
	heuristicFloor      float32 = 0.30
	heuristicCeiling    float32 = 0.65
	heuristicMin        float32 = 0.05
	bonusMixedAlnum     float32 = 0.10
	bonusSeparator      float32 = 0.05
	bonusPlausibleLen   float32 = 0.10
	bonusLongAlnum      float32 = 0.15
	penaltyVeryShort    float32 = 0.10
	penaltyStandards    float32 = 0.15
	penaltyDigitLeading float32 = 0.10
)

const (
	plausibleLenMin = 5
	plausibleLenMax = 20
	longAlnumMin    = 10
	veryShortMax    = 3
	digitLeadingMax = 6
)

var standardsPrefixRE = regexp.MustCompile(`^(?:ISO|ANSI|DIN|IEC|NEMA|ASTM|UL|CSA)\d`)

func heuristicScore(tok string) float32 {
	score := heuristicFloor
	if hasLetter(tok) && hasDigit(tok) {
		score += bonusMixedAlnum
	}
	if hasSeparator(tok) {
		score += bonusSeparator
	}
	if len(tok) >= plausibleLenMin && len(tok) <= plausibleLenMax {
		score += bonusPlausibleLen
	}
	if len(tok) >= longAlnumMin && !hasSeparator(tok) {
		score += bonusLongAlnum
	}
	if len(tok) <= veryShortMax {
		score -= penaltyVeryShort
	}
	if standardsPrefixRE.MatchString(tok) {
		score -= penaltyStandards
	}
	if len(tok) <= digitLeadingMax && unicode.IsDigit(rune(tok[0])) {
		score -= penaltyDigitLeading
	}
	if score < heuristicMin {
		score = heuristicMin
	}
	if score > heuristicCeiling {
		score = heuristicCeiling
	}
	return score
}

// Higher wins on exact weighted-score and length ties.
var strategyPriority = map[Strategy]int{
	StrategyLabel:       8,
	StrategyKnown:       7,
	StrategyPrefix:      6,
	StrategyDashCatalog: 5,
	StrategyStructured:  4,
	StrategyDelimited:   3,
	StrategyHint:        2,
	StrategyHeuristic:   1,
}

func weightedScore(c Candidate, prof Profile) float32 {
	w, ok := prof.Weights[c.Strategy]
	if !ok {
		w = 1
	}
	return clamp01(c.Confidence * w)
}

// betterCandidate applies the deterministic ordering: weighted score, then
// token length, then strategy priority, then value for a total order.
func betterCandidate(a, b Candidate, sa, sb float32) bool {
	if sa != sb {
		return sa > sb
	}
	if len(a.Value) != len(b.Value) {
		return len(a.Value) > len(b.Value)
	}
	if strategyPriority[a.Strategy] != strategyPriority[b.Strategy] {
		return strategyPriority[a.Strategy] > strategyPriority[b.Strategy]
	}
	return a.Value < b.Value
}

// resolveField picks the winner and keeps the best differing runner-up as the
// audit alternate.
func resolveField(cands []Candidate, prof Profile) FieldResult {
	var (
		best      Candidate
		bestScore float32
		have      bool
	)
	for _, c := range cands {
		score := weightedScore(c, prof)
		if !have || betterCandidate(c, best, score, bestScore) {
			best, bestScore, have = c, score, true
		}
	}
	if !have {
		return FieldResult{}
	}
	res := FieldResult{
		Value:      best.Value,
		Confidence: bestScore,
		Strategy:   best.Strategy,
	}
	var (
		alt      Candidate
		altScore float32
		haveAlt  bool
	)
	for _, c := range cands {
		if c.Value == best.Value && c.Strategy == best.Strategy {
			continue
		}
		score := weightedScore(c, prof)
		if !haveAlt || betterCandidate(c, alt, score, altScore) {
			alt, altScore, haveAlt = c, score, true
		}
	}
	if haveAlt {
		altCopy := alt
		res.Alternate = &altCopy
	}
	return res
}

// acceptableIdentifier enforces identifier sanitation on winners regardless of
// the producing strategy: the exclusion override plus a digit guard that only
// allow-listed names (3M and the like) may carry digits.
func acceptableIdentifier(value string, lex *Lexicon) bool {
	if !lex.AllowedIdentifier(value) {
		return false
	}
	if hasDigit(value) && !lex.IsKnown(value) {
		return false
	}
	return true
}

// resolveRow runs every generator, picks per-field winners, canonicalizes the
// identifier, and attaches confidence and evidence flags. Row-local only; the
// dataset-wide rule runs later in validate.go.
func resolveRow(idx int, row Row, lex *Lexicon, prof Profile) Outcome {
	all := generateCandidates(row, lex)

	var identCands, codeCands []Candidate
	for _, c := range all {
		switch c.Field {
		case FieldIdentifier:
			if acceptableIdentifier(c.Value, lex) {
				identCands = append(identCands, c)
			}
		case FieldCode:
			codeCands = append(codeCands, c)
		}
	}

	out := Outcome{
		RowIndex:   idx,
		Identifier: resolveField(identCands, prof),
		Code:       resolveField(codeCands, prof),
	}
	// Evidence is checked against the matched variant, before
	// canonicalization can rewrite it.
	if !evidenceInRow(out, row) {
		out.addFlag(FlagEvidenceNotFound)
	}
	if !out.Identifier.Empty() {
		out.Identifier.Value = lex.Canonical(out.Identifier.Value)
	}

	if !out.Identifier.Empty() && out.Identifier.Confidence < prof.Threshold {
		out.addFlag(FlagLowConfidence)
	}
	if !out.Code.Empty() && out.Code.Confidence < prof.Threshold {
		out.addFlag(FlagLowConfidence)
	}
	return out
}

// evidenceInRow verifies that each winner is still traceable to the source
// cells. A hint winner must match a hint cell; a text-derived code must occur
// in the joined text. A canonicalized identifier may legitimately differ from
// the matched variant, so only its hint case is checked.
func evidenceInRow(out Outcome, row Row) bool {
	if !out.Code.Empty() {
		joined := normalizeText(strings.Join(row.Texts, " , "))
		if !strings.Contains(joined, out.Code.Value) {
			return false
		}
	}
	if !out.Identifier.Empty() && out.Identifier.Strategy == StrategyHint {
		for _, v := range row.Hints {
			if normalizeText(v) == out.Identifier.Value {
				return true
			}
		}
		return false
	}
	return true
}
