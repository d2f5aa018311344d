package extractor

import (
	"regexp"
	"strings"
)

// Archetype classifies how a table encodes identifying information.
type Archetype string

const (
	// ArchetypeLabeledRich marks tables dominated by explicit field labels.
	ArchetypeLabeledRich Archetype = "labeled-rich"
	// ArchetypeCatalogOnly marks tables of bare catalog tokens.
	ArchetypeCatalogOnly Archetype = "catalog-only"
	// ArchetypeCompressedShort marks dense comma-delimited abbreviation rows.
	ArchetypeCompressedShort Archetype = "compressed-short"
	// ArchetypeMixed is the conservative default when no rule matches.
	ArchetypeMixed Archetype = "mixed"
)

// Signals are the per-sample ratios the archetype rules test.
type Signals struct {
	Labeled     float32
	Delimited   float32
	PrefixCoded float32
	PureCatalog float32
	FreeText    float32
	AvgTokens   float32
	HasHints    bool
}

// Profile is the per-table strategy weighting derived from the sampled rows.
// Shared read-only by all row resolutions.
type Profile struct {
	Archetype Archetype
	Signals   Signals
	Weights   map[Strategy]float32
	Threshold float32
}

const defaultSampleCap = 200

const (
	labeledRichMin     float32 = 0.40
	catalogOnlyMin     float32 = 0.30
	compressedMin      float32 = 0.40
	compressedLabelMax float32 = 0.15
)

const (
	thresholdLabeledRich     float32 = 0.35
	thresholdCatalogOnly     float32 = 0.50
	thresholdCompressedShort float32 = 0.45
	thresholdMixed           float32 = 0.40
)

var archetypeWeights = map[Archetype]map[Strategy]float32{
	ArchetypeLabeledRich: {
		StrategyLabel:       1.2,
		StrategyKnown:       1.0,
		StrategyPrefix:      0.9,
		StrategyDashCatalog: 0.9,
		StrategyStructured:  1.0,
		StrategyDelimited:   0.9,
		StrategyHint:        0.3,
		StrategyHeuristic:   0.6,
	},
	ArchetypeCatalogOnly: {
		StrategyLabel:       0.8,
		StrategyKnown:       0.9,
		StrategyPrefix:      1.1,
		StrategyDashCatalog: 1.3,
		StrategyStructured:  1.2,
		StrategyDelimited:   0.8,
		StrategyHint:        1.5,
		StrategyHeuristic:   0.3,
	},
	ArchetypeCompressedShort: {
		StrategyLabel:       0.9,
		StrategyKnown:       1.1,
		StrategyPrefix:      1.3,
		StrategyDashCatalog: 0.9,
		StrategyStructured:  1.1,
		StrategyDelimited:   1.2,
		StrategyHint:        1.2,
		StrategyHeuristic:   0.4,
	},
	ArchetypeMixed: {
		StrategyLabel:       1.0,
		StrategyKnown:       1.0,
		StrategyPrefix:      1.0,
		StrategyDashCatalog: 1.0,
		StrategyStructured:  1.0,
		StrategyDelimited:   1.0,
		StrategyHint:        1.0,
		StrategyHeuristic:   0.75,
	},
}

var archetypeThresholds = map[Archetype]float32{
	ArchetypeLabeledRich:     thresholdLabeledRich,
	ArchetypeCatalogOnly:     thresholdCatalogOnly,
	ArchetypeCompressedShort: thresholdCompressedShort,
	ArchetypeMixed:           thresholdMixed,
}

var (
	labelSignalRE = regexp.MustCompile(`\b(?:PN|P/N|PART|MODEL|MN|CAT|MFG|MFR|MANUFACTURER|BRAND)\s*[:#]`)
	catalogRowRE  = regexp.MustCompile(`^[A-Z0-9]+(?:[\-/][A-Z0-9]+)*$`)
)

// BuildProfile samples the first rows up to sampleCap, computes signal
// ratios, and classifies the table with ordered threshold rules. Pure:
// identical samples always yield identical profiles.
func BuildProfile(rows []Row, lex *Lexicon, sampleCap int) Profile {
	if sampleCap <= 0 {
		sampleCap = defaultSampleCap
	}
	if len(rows) > sampleCap {
		rows = rows[:sampleCap]
	}

	var sig Signals
	sampled := 0
	tokenTotal := 0
	for _, row := range rows {
		text := normalizeText(strings.Join(row.Texts, " "))
		if text == "" {
			continue
		}
		sampled++
		toks := tokenize(text)
		tokenTotal += len(toks)

		matched := false
		if labelSignalRE.MatchString(text) {
			sig.Labeled++
			matched = true
		}
		if strings.Contains(text, ",") {
			sig.Delimited++
			matched = true
		}
		if len(toks) > 0 && isPrefixCoded(toks[0], lex) {
			sig.PrefixCoded++
			matched = true
		}
		if len(toks) == 1 && catalogRowRE.MatchString(toks[0]) && hasDigit(toks[0]) {
			sig.PureCatalog++
			matched = true
		}
		if !matched {
			sig.FreeText++
		}
		if !sig.HasHints {
			for _, v := range row.Hints {
				if strings.TrimSpace(v) != "" {
					sig.HasHints = true
					break
				}
			}
		}
	}
	if sampled > 0 {
		n := float32(sampled)
		sig.Labeled /= n
		sig.Delimited /= n
		sig.PrefixCoded /= n
		sig.PureCatalog /= n
		sig.FreeText /= n
		sig.AvgTokens = float32(tokenTotal) / n
	}

	arch := classifyArchetype(sig)
	return Profile{
		Archetype: arch,
		Signals:   sig,
		Weights:   archetypeWeights[arch],
		Threshold: archetypeThresholds[arch],
	}
}

// classifyArchetype applies the ordered rules; the first match wins and the
// default is the most conservative archetype.
func classifyArchetype(sig Signals) Archetype {
	switch {
	case sig.Labeled >= labeledRichMin:
		return ArchetypeLabeledRich
	case sig.PureCatalog >= catalogOnlyMin:
		return ArchetypeCatalogOnly
	case sig.Delimited >= compressedMin && sig.Labeled < compressedLabelMax:
		return ArchetypeCompressedShort
	default:
		return ArchetypeMixed
	}
}

// ProfileFor returns a profile honoring config overrides; without overrides it
// defers to BuildProfile.
func ProfileFor(rows []Row, lex *Lexicon, cfg Config) Profile {
	prof := BuildProfile(rows, lex, cfg.SampleCap)
	if cfg.Archetype != "" {
		if w, ok := archetypeWeights[cfg.Archetype]; ok {
			prof.Archetype = cfg.Archetype
			prof.Weights = w
			prof.Threshold = archetypeThresholds[cfg.Archetype]
		}
	}
	if cfg.Threshold > 0 {
		prof.Threshold = cfg.Threshold
	}
	return prof
}
