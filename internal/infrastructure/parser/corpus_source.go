package parser

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"PublicationIndex/internal/domain"
	"PublicationIndex/internal/ports"
	"PublicationIndex/internal/repair"
)

// CorpusSource implements ports.CorpusSource with a registered repair strategy.
type CorpusSource struct {
	registry *repair.Registry
	strategy string
	logger   *slog.Logger
}

var _ ports.CorpusSource = (*CorpusSource)(nil)

// NewCorpusSource wires the repair registry with the configured strategy name.
func NewCorpusSource(reg *repair.Registry, strategy string, log *slog.Logger) *CorpusSource {
	return &CorpusSource{
		registry: reg,
		strategy: strategy,
		logger:   log,
	}
}

// Load reads the corpus file and parses it into publications.
func (s *CorpusSource) Load(ctx context.Context, path string) (domain.ParsedCorpus, error) {
	if s.registry == nil {
		return domain.ParsedCorpus{}, fmt.Errorf("repair registry is not configured")
	}

	strategy, err := s.registry.Resolve(s.strategy)
	if err != nil {
		return domain.ParsedCorpus{}, fmt.Errorf("corpus %s: %w", path, err)
	}

	if err := ctx.Err(); err != nil {
		return domain.ParsedCorpus{}, err
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return domain.ParsedCorpus{}, fmt.Errorf("read corpus: %w", err)
	}
	s.debug("corpus read", "path", path, "bytes", len(raw), "strategy", strategy.Name())

	parsed := Parse(string(raw), strategy)
	for _, rejected := range parsed.Rejected {
		s.warn("record rejected", "error", rejected)
	}

	s.debug("corpus parsed",
		"publications", len(parsed.Publications),
		"repaired", parsed.Repaired,
		"rejected", len(parsed.Rejected),
		"empty_blocks", parsed.EmptyBlocks)
	return parsed, nil
}

func (s *CorpusSource) debug(msg string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}

func (s *CorpusSource) warn(msg string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Warn(msg, args...)
	}
}
