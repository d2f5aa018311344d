package extractor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testService(t *testing.T, cfg Config) *Service {
	t.Helper()
	s, err := New(testLexicon(t), cfg, zap.NewNop())
	require.NoError(t, err)
	return s
}

func TestNewRequiresLexicon(t *testing.T) {
	_, err := New(nil, Config{}, nil)
	require.Error(t, err)
}

func TestServiceConfigRoundTrip(t *testing.T) {
	s := testService(t, Config{Workers: 2})
	cfg := s.Config()
	assert.Equal(t, 2, cfg.Workers)
	assert.Equal(t, defaultSampleCap, cfg.SampleCap)

	cfg.Workers = 8
	s.UpdateConfig(cfg)
	assert.Equal(t, 8, s.Config().Workers)
}

func TestParseTableScenarios(t *testing.T) {
	s := testService(t, Config{})
	rows := []Row{
		{Texts: []string{"CKT BRKR,EATON,19YG89"}},
		{Texts: []string{"BREAKER,GE,20A,1P"}},
		{Texts: []string{"H-10233"}},
		{Texts: []string{"DRV,3AXD50000731121,5HP,480V"}},
	}
	outs, stats, err := s.ParseTable(context.Background(), rows)
	require.NoError(t, err)
	require.Len(t, outs, 4)

	assert.Equal(t, "EATON", outs[0].Identifier.Value)
	assert.Equal(t, StrategyKnown, outs[0].Identifier.Strategy)
	assert.Equal(t, "19YG89", outs[0].Code.Value)

	assert.Equal(t, "GE", outs[1].Identifier.Value)
	assert.True(t, outs[1].Code.Empty())
	assert.True(t, outs[1].HasFlag(FlagMissingCode))

	assert.True(t, outs[2].Identifier.Empty())
	assert.True(t, outs[2].HasFlag(FlagMissingIdentifier))
	assert.Equal(t, "H-10233", outs[2].Code.Value)

	assert.Equal(t, "3AXD50000731121", outs[3].Code.Value)

	assert.Equal(t, 4, stats.Rows)
	assert.Equal(t, 2, stats.IdentifierFill)
	assert.Equal(t, 3, stats.CodeFill)
	assert.Zero(t, stats.Retracted)
}

func TestParseTableBoundaryDiscipline(t *testing.T) {
	s := testService(t, Config{})
	rows := []Row{
		{Texts: []string{"GEARED MOTOR 5HP 445X98"}},
		{Texts: []string{"BREAKER,GE,445X99"}},
	}
	outs, _, err := s.ParseTable(context.Background(), rows)
	require.NoError(t, err)

	assert.True(t, outs[0].Identifier.Empty(), "GE must not match inside GEARED")
	assert.Equal(t, "GE", outs[1].Identifier.Value)
}

func TestParseTableFrequencyRetraction(t *testing.T) {
	s := testService(t, Config{})
	hint := map[string]string{"supplier": "ACME SUPPLY CO"}
	rows := []Row{
		{Texts: []string{"WIDGET 19YG89"}, Hints: hint},
		{Texts: []string{"GASKET H-10233"}, Hints: hint},
		{Texts: []string{"BELT 5VX850"}, Hints: hint},
		{Texts: []string{"CKT BRKR,EATON,445X98"}},
	}
	outs, stats, err := s.ParseTable(context.Background(), rows)
	require.NoError(t, err)

	// The hint identifier dominates 3/4 rows without being allow-listed, so
	// the dataset-wide rule retracts it on the hint-sourced rows only.
	assert.Equal(t, 3, stats.Retracted)
	for i := 0; i < 3; i++ {
		assert.True(t, outs[i].Identifier.Empty(), "row %d", i)
		assert.True(t, outs[i].HasFlag(ClearedBy(RuleFrequencyAnomaly)), "row %d", i)
	}
	assert.Equal(t, "EATON", outs[3].Identifier.Value)
}

func TestParseTableFrequencyRuleDisabled(t *testing.T) {
	s := testService(t, Config{Rules: Rules{DisableFrequencyAnomaly: true}})
	hint := map[string]string{"supplier": "ACME SUPPLY CO"}
	rows := []Row{
		{Texts: []string{"WIDGET 19YG89"}, Hints: hint},
		{Texts: []string{"GASKET H-10233"}, Hints: hint},
	}
	outs, stats, err := s.ParseTable(context.Background(), rows)
	require.NoError(t, err)

	assert.Zero(t, stats.Retracted)
	assert.Equal(t, "ACME SUPPLY CO", outs[0].Identifier.Value)
	assert.Equal(t, "ACME SUPPLY CO", outs[1].Identifier.Value)
}

func TestParseTableDeterministicAcrossWorkerCounts(t *testing.T) {
	rows := []Row{
		{Texts: []string{"CKT BRKR,EATON,19YG89"}},
		{Texts: []string{"MOTOR PN: ACS550, MFG: SIEMENS"}},
		{Texts: []string{"H-10233"}},
		{Texts: []string{"HUBCS120W RECEPTACLE"}},
		{Texts: []string{"DRV,3AXD50000731121,5HP,480V"}},
		{Texts: []string{"SPARE GASKET KIT"}, Hints: map[string]string{"supplier": "Cutler Hammer"}},
	}

	s1 := testService(t, Config{Workers: 1})
	base, _, err := s1.ParseTable(context.Background(), rows)
	require.NoError(t, err)

	for _, workers := range []int{2, 4, 8} {
		s := testService(t, Config{Workers: workers})
		outs, _, err := s.ParseTable(context.Background(), rows)
		require.NoError(t, err)
		assert.Equal(t, base, outs, "workers=%d", workers)
	}
}

func TestParseTableContextCancellation(t *testing.T) {
	s := testService(t, Config{Workers: 1})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rows := repeatRows(100, "CKT BRKR,EATON,19YG89")
	_, _, err := s.ParseTable(ctx, rows)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestParseTableEmpty(t *testing.T) {
	s := testService(t, Config{})
	outs, stats, err := s.ParseTable(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, outs)
	assert.Zero(t, stats.Rows)
}

func TestParseTablePrefixDecoding(t *testing.T) {
	s := testService(t, Config{})
	rows := repeatRows(3, "HUBCS120W RECEPTACLE")

	outs, _, err := s.ParseTable(context.Background(), rows)
	require.NoError(t, err)
	assert.Equal(t, "HUBBELL", outs[0].Identifier.Value)
	assert.Equal(t, StrategyPrefix, outs[0].Identifier.Strategy)
	assert.Equal(t, "CS120W", outs[0].Code.Value)
}

func TestParseTableRowIndexOrder(t *testing.T) {
	s := testService(t, Config{Workers: 4})
	rows := []Row{
		{Texts: []string{"CKT BRKR,EATON,19YG89"}},
		{Texts: []string{"H-10233"}},
		{Texts: []string{"BREAKER,GE,445X99"}},
	}
	outs, _, err := s.ParseTable(context.Background(), rows)
	require.NoError(t, err)
	for i := range outs {
		assert.Equal(t, i, outs[i].RowIndex)
	}
}

func TestParseTableProfileCacheHit(t *testing.T) {
	s := testService(t, Config{})
	rows := repeatRows(5, "CKT BRKR,EATON,19YG89")

	first, _, err := s.ParseTable(context.Background(), rows)
	require.NoError(t, err)
	second, _, err := s.ParseTable(context.Background(), rows)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Len(t, s.profiles.m, 1)
}
