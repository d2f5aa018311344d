package lexfile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultBuilds(t *testing.T) {
	lex, err := Default().Build()
	require.NoError(t, err)

	assert.True(t, lex.IsKnown("EATON"))
	assert.True(t, lex.IsExcluded("GRAINGER"))
	assert.Equal(t, "EATON", lex.Canonical("Cutler Hammer"))
	assert.Equal(t, "GE", lex.Canonical("General Electric"))

	target, ok := lex.PrefixTarget("HUB")
	require.True(t, ok)
	assert.Equal(t, "HUBBELL", target)
}

func TestLoadEmptyPathUsesDefault(t *testing.T) {
	lex, err := Load("")
	require.NoError(t, err)
	assert.True(t, lex.IsKnown("SIEMENS"))
}

func TestEnsureThenLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lexicons", "mro.yaml")

	require.NoError(t, Ensure(path))
	_, err := os.Stat(path)
	require.NoError(t, err)

	lex, err := Load(path)
	require.NoError(t, err)
	assert.True(t, lex.IsKnown("EATON"))

	// A second Ensure leaves the curated file alone.
	before, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NoError(t, Ensure(path))
	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestLoadRejectsContradictoryFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	content := []byte("aliases:\n  WW GRAINGER: GRAINGER\nexcluded:\n  - GRAINGER\n")
	require.NoError(t, os.WriteFile(path, content, 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "WW GRAINGER")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
