package extractor

// Validation rule names, recorded in cleared-by flags.
const (
	RuleSpecShape        = "spec-shape"
	RuleCrossField       = "cross-field"
	RuleShortCode        = "short-code"
	RuleKnownAsCode      = "known-as-code"
	RuleFrequencyAnomaly = "frequency-anomaly"
)

const (
	minCodeLength = 4
	// anomalyShare is the identifier share of rows above which a
	// non-allow-listed identifier is treated as a dataset artifact.
	anomalyShare float32 = 0.60
)

// applyRowRules runs the row-local rules in their fixed order. Rules clear
// fields, never add them; every clearing is recorded. Missing flags are set
// last so cleared fields are reported the same way as never-resolved ones.
func applyRowRules(out *Outcome, lex *Lexicon, rules Rules) {
	if !rules.DisableSpecShape && !out.Code.Empty() {
		if specValueRE.MatchString(out.Code.Value) || descriptorNumberRE.MatchString(out.Code.Value) {
			clearCode(out, RuleSpecShape)
		}
	}
	if !rules.DisableCrossField && !out.Code.Empty() && !out.Identifier.Empty() {
		if out.Code.Value == out.Identifier.Value {
			out.addFlag(FlagDuplicateEqual)
			clearCode(out, RuleCrossField)
		}
	}
	if !rules.DisableShortCode && !out.Code.Empty() && len(out.Code.Value) < minCodeLength {
		clearCode(out, RuleShortCode)
	}
	if !rules.DisableKnownAsCode && !out.Code.Empty() && lex.IsKnown(out.Code.Value) {
		clearCode(out, RuleKnownAsCode)
	}
	setMissingFlags(out)
}

// applyFrequencyRule is the sole cross-row rule. It runs only after every row
// holds an initial result: identifiers whose share of rows exceeds the anomaly
// threshold without being allow-listed are retracted, but only on rows that
// resolved them through the hint fallback. Explicit-cue and lexical-match rows
// keep theirs. Returns the number of retracted rows.
func applyFrequencyRule(outs []Outcome, lex *Lexicon) int {
	if len(outs) == 0 {
		return 0
	}
	counts := make(map[string]int)
	for i := range outs {
		if v := outs[i].Identifier.Value; v != "" {
			counts[v]++
		}
	}
	total := float32(len(outs))
	retracted := 0
	for i := range outs {
		out := &outs[i]
		v := out.Identifier.Value
		if v == "" || out.Identifier.Strategy != StrategyHint {
			continue
		}
		if lex.IsKnown(v) {
			continue
		}
		if float32(counts[v])/total <= anomalyShare {
			continue
		}
		out.Identifier = FieldResult{}
		out.addFlag(ClearedBy(RuleFrequencyAnomaly))
		setMissingFlags(out)
		retracted++
	}
	return retracted
}

func clearCode(out *Outcome, rule string) {
	out.Code = FieldResult{}
	out.addFlag(ClearedBy(rule))
}

func setMissingFlags(out *Outcome) {
	if out.Identifier.Empty() {
		out.addFlag(FlagMissingIdentifier)
	}
	if out.Code.Empty() {
		out.addFlag(FlagMissingCode)
	}
}
