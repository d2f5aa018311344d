package extractor

import (
	"context"
	"sync"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Service orchestrates profiling, concurrent row resolution, validation, and
// audit emission for one lexicon.
type Service struct {
	lex *Lexicon

	cfgMu sync.RWMutex
	cfg   Config

	profiles *profileCache
	logger   *zap.Logger
}

// New constructs a service. The logger may be nil.
func New(lex *Lexicon, cfg Config, logger *zap.Logger) (*Service, error) {
	if lex == nil {
		return nil, errors.New("lexicon is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg.ApplyDefaults()
	return &Service{
		lex:      lex,
		cfg:      cfg,
		profiles: newProfileCache(),
		logger:   logger,
	}, nil
}

// Config returns a copy of the current configuration.
func (s *Service) Config() Config {
	s.cfgMu.RLock()
	defer s.cfgMu.RUnlock()
	return s.cfg.Clone()
}

// UpdateConfig replaces the configuration.
func (s *Service) UpdateConfig(cfg Config) {
	cfg.ApplyDefaults()
	s.cfgMu.Lock()
	s.cfg = cfg
	s.cfgMu.Unlock()
}

// Lexicon returns the immutable lexicon the service resolves against.
func (s *Service) Lexicon() *Lexicon { return s.lex }

// ParseTable resolves every row of the table. Rows are processed concurrently
// over a bounded pool; they share only the read-only lexicon and profile. The
// dataset-wide frequency rule runs once all rows hold an initial result, the
// single synchronization point in the pipeline. Output order follows input
// order.
func (s *Service) ParseTable(ctx context.Context, rows []Row) ([]Outcome, Stats, error) {
	cfg := s.Config()
	prof := s.profileForTable(rows, cfg)
	s.logger.Info("table profiled",
		zap.String("archetype", string(prof.Archetype)),
		zap.Float32("threshold", prof.Threshold),
		zap.Int("rows", len(rows)))

	outs := make([]Outcome, len(rows))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Workers)
	for i := range rows {
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out := resolveRow(i, rows[i], s.lex, prof)
			applyRowRules(&out, s.lex, cfg.Rules)
			outs[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, Stats{}, errors.Wrap(err, "resolve rows")
	}

	retracted := 0
	if !cfg.Rules.DisableFrequencyAnomaly {
		retracted = applyFrequencyRule(outs, s.lex)
	}

	stats := Stats{
		Archetype: prof.Archetype,
		Rows:      len(rows),
		Retracted: retracted,
	}
	for i := range outs {
		if !outs[i].Identifier.Empty() {
			stats.IdentifierFill++
		}
		if !outs[i].Code.Empty() {
			stats.CodeFill++
		}
	}
	s.logger.Info("table resolved",
		zap.Int("identifier_fill", stats.IdentifierFill),
		zap.Int("code_fill", stats.CodeFill),
		zap.Int("retracted", stats.Retracted))
	return outs, stats, nil
}

func (s *Service) profileForTable(rows []Row, cfg Config) Profile {
	key := Fingerprint(rows, cfg.SampleCap)
	if prof, ok := s.profiles.get(key); ok && cfg.Archetype == "" && cfg.Threshold == 0 {
		return prof
	}
	prof := ProfileFor(rows, s.lex, cfg)
	if cfg.Archetype == "" && cfg.Threshold == 0 {
		s.profiles.put(key, prof)
	}
	return prof
}
