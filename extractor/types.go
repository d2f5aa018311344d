package extractor

// Field identifies which of the two extracted fields a candidate proposes.
type Field string

const (
	// FieldIdentifier is the categorical field (manufacturer/brand name).
	FieldIdentifier Field = "identifier"
	// FieldCode is the structured token field (part/catalog number).
	FieldCode Field = "code"
)

// Strategy tags the candidate generator that produced a value.
type Strategy string

const (
	// StrategyLabel extracts the value following an explicit label marker.
	StrategyLabel Strategy = "label"
	// StrategyKnown matches a curated identifier at a word boundary.
	StrategyKnown Strategy = "known"
	// StrategyPrefix decodes a brand-prefix + code concatenation.
	StrategyPrefix Strategy = "prefix"
	// StrategyDashCatalog extracts the leading code of a "CODE - description" cell.
	StrategyDashCatalog Strategy = "dash-catalog"
	// StrategyStructured extracts alphanumeric tokens with interior separators.
	StrategyStructured Strategy = "structured"
	// StrategyDelimited evaluates tokens of a comma-delimited cell.
	StrategyDelimited Strategy = "delimited"
	// StrategyHint promotes an auxiliary hint field as the identifier.
	StrategyHint Strategy = "hint"
	// StrategyHeuristic scores any remaining mixed alphanumeric token.
	StrategyHeuristic Strategy = "heuristic"
)

// Row is one input record: the primary description cells in column order plus
// named auxiliary hint cells (supplier, vendor). Immutable once read.
type Row struct {
	Texts []string
	Hints map[string]string
}

// Candidate is one strategy's proposed value for a field. Never mutated after
// creation.
type Candidate struct {
	Value      string
	Field      Field
	Strategy   Strategy
	Confidence float32
	Evidence   string
}

// FieldResult is the resolved value for one field of one row. A zero value
// means the field stayed empty.
type FieldResult struct {
	Value      string
	Confidence float32
	Strategy   Strategy
	Alternate  *Candidate
}

// Empty reports whether no value was resolved for the field.
func (r FieldResult) Empty() bool { return r.Value == "" }

// Review flags attached to an outcome. Clearing rules append their own
// "cleared-by-<rule>" flags via ClearedBy.
const (
	FlagMissingIdentifier = "missing-identifier"
	FlagMissingCode       = "missing-code"
	FlagDuplicateEqual    = "duplicate-equal-fields"
	FlagLowConfidence     = "low-confidence"
	FlagEvidenceNotFound  = "evidence-not-found"
)

// ClearedBy returns the flag recorded when the named validation rule clears a
// field.
func ClearedBy(rule string) string { return "cleared-by-" + rule }

// Outcome is the final per-row record: both field results plus review flags.
type Outcome struct {
	RowIndex   int
	Identifier FieldResult
	Code       FieldResult
	Flags      []string
}

func (o *Outcome) addFlag(flag string) {
	for _, f := range o.Flags {
		if f == flag {
			return
		}
	}
	o.Flags = append(o.Flags, flag)
}

// HasFlag reports whether the outcome carries the given review flag.
func (o Outcome) HasFlag(flag string) bool {
	for _, f := range o.Flags {
		if f == flag {
			return true
		}
	}
	return false
}

// Stats summarizes one table run.
type Stats struct {
	Archetype      Archetype
	Rows           int
	IdentifierFill int
	CodeFill       int
	Retracted      int
}
