package extractor

import "encoding/json"

// Rules toggles individual validation rules. Zero value means every rule is
// enabled.
type Rules struct {
	DisableSpecShape        bool `json:"disableSpecShape"`
	DisableCrossField       bool `json:"disableCrossField"`
	DisableShortCode        bool `json:"disableShortCode"`
	DisableKnownAsCode      bool `json:"disableKnownAsCode"`
	DisableFrequencyAnomaly bool `json:"disableFrequencyAnomaly"`
}

// Config aggregates the runtime settings for a table run.
type Config struct {
	// Workers bounds the row-resolution pool.
	Workers int `json:"workers"`
	// SampleCap bounds the profiler sample.
	SampleCap int `json:"sampleCap"`
	// Archetype forces the profile when non-empty.
	Archetype Archetype `json:"archetype,omitempty"`
	// Threshold overrides the archetype confidence threshold when positive.
	Threshold float32 `json:"threshold,omitempty"`
	Rules     Rules   `json:"rules"`
}

// Clone creates a deep copy of the configuration so callers can mutate safely.
func (c Config) Clone() Config {
	buf, _ := json.Marshal(c)
	var out Config
	_ = json.Unmarshal(buf, &out)
	return out
}

// ApplyDefaults populates zero values with sensible defaults.
func (c *Config) ApplyDefaults() {
	if c.Workers <= 0 {
		c.Workers = 4
	}
	if c.SampleCap <= 0 {
		c.SampleCap = defaultSampleCap
	}
}
