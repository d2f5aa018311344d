// Package lexfile loads curated lexicon files and ships the built-in default
// set used when no file is supplied.
package lexfile

import (
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"

	"github.com/mrotools/mroparse/extractor"
)

// File is the on-disk lexicon document.
type File struct {
	Aliases  map[string]string `yaml:"aliases"`
	Known    []string          `yaml:"known"`
	Excluded []string          `yaml:"excluded"`
	Prefixes map[string]string `yaml:"prefixes"`
}

// Build validates the document into an immutable lexicon.
func (f File) Build() (*extractor.Lexicon, error) {
	return extractor.NewLexicon(f.Aliases, f.Known, f.Excluded, f.Prefixes)
}

// Load reads and builds a lexicon file. An empty path builds the default set.
func Load(path string) (*extractor.Lexicon, error) {
	if path == "" {
		return Default().Build()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read lexicon file %s", path)
	}
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, errors.Wrapf(err, "parse lexicon file %s", path)
	}
	return f.Build()
}

// Ensure writes the default lexicon to path when no file exists there, so a
// fresh install has something to curate.
func Ensure(path string) error {
	if path == "" {
		return errors.New("lexicon path is empty")
	}
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return errors.Wrapf(err, "stat lexicon file %s", path)
	}
	data, err := yaml.Marshal(Default())
	if err != nil {
		return errors.Wrap(err, "encode default lexicon")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrapf(err, "create lexicon directory for %s", path)
	}
	return os.WriteFile(path, data, 0o644)
}

// Default returns the built-in starter lexicon: common industrial
// manufacturers, their frequent spelling variants, distributors that must not
// be mistaken for manufacturers, and brand prefixes seen concatenated onto
// catalog numbers.
func Default() File {
	return File{
		Aliases: map[string]string{
			"GENERAL ELECTRIC":   "GE",
			"GEN ELEC":           "GE",
			"A-B":                "ALLEN-BRADLEY",
			"AB":                 "ALLEN-BRADLEY",
			"ALLEN BRADLEY":      "ALLEN-BRADLEY",
			"ROCKWELL":           "ALLEN-BRADLEY",
			"SQ D":               "SQUARE D",
			"SQD":                "SQUARE D",
			"SQUARE-D":           "SQUARE D",
			"CUTLER HAMMER":      "EATON",
			"CUTLER-HAMMER":      "EATON",
			"WESTINGHOUSE":       "EATON",
			"TELEMECANIQUE":      "SCHNEIDER",
			"SCHNEIDER ELECTRIC": "SCHNEIDER",
			"ASEA BROWN BOVERI":  "ABB",
		},
		Known: []string{
			"GE", "EATON", "SIEMENS", "ABB", "SQUARE D", "ALLEN-BRADLEY",
			"SCHNEIDER", "HUBBELL", "HONEYWELL", "PARKER", "SKF", "BALDOR",
			"DANFOSS", "OMRON", "FESTO", "SMC", "3M", "DODGE", "GATES",
			"TIMKEN", "LEESON", "MARATHON", "BANNER", "TURCK", "PHOENIX CONTACT",
			"IFM", "PEPPERL+FUCHS", "MITSUBISHI", "YASKAWA", "FANUC",
		},
		Excluded: []string{
			"GRAINGER", "MCMASTER-CARR", "MCMASTER", "FASTENAL",
			"MOTION INDUSTRIES", "MSC", "APPLIED INDUSTRIAL", "KAMAN",
			"MISC", "UNKNOWN", "VARIOUS", "GENERIC", "OBSOLETE",
		},
		Prefixes: map[string]string{
			"HUB": "HUBBELL",
			"SQD": "SQUARE D",
			"SIE": "SIEMENS",
			"ETN": "EATON",
			"BAL": "BALDOR",
			"DAN": "DANFOSS",
			"OMR": "OMRON",
			"SKF": "SKF",
		},
	}
}
