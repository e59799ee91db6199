package history

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/poiesic/rgsearch/core"
	"github.com/poiesic/rgsearch/storage"
)

// DefaultLimit is how many entries are kept.
const DefaultLimit = 50

// Service maintains a bounded, de-duplicated search history.
type Service struct {
	repo   storage.HistoryRepository
	limit  int
	now    func() time.Time
	logger *slog.Logger
}

// Option configures a Service.
type Option func(*Service) error

// WithLimit sets how many entries are kept.
// Default is 50.
func WithLimit(limit int) Option {
	return func(s *Service) error {
		if limit <= 0 {
			return ErrInvalidLimit
		}
		s.limit = limit
		return nil
	}
}

// WithClock overrides the time source used to stamp entries.
func WithClock(now func() time.Time) Option {
	return func(s *Service) error {
		if now != nil {
			s.now = now
		}
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// New creates a history service backed by repo.
func New(repo storage.HistoryRepository, opts ...Option) (*Service, error) {
	if repo == nil {
		return nil, ErrRepositoryRequired
	}

	s := &Service{
		repo:   repo,
		limit:  DefaultLimit,
		now:    time.Now,
		logger: slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// Limit returns the maximum number of entries kept.
func (s *Service) Limit() int {
	return s.limit
}

// Add records a search at the front of the history. An existing entry with
// the same query and path is replaced. Entries beyond the limit are dropped.
func (s *Service) Add(ctx context.Context, query, path string, options core.SearchOptions) (*core.HistoryEntry, error) {
	entry := &core.HistoryEntry{
		Query:     query,
		Path:      path,
		Options:   options,
		Timestamp: s.now().UTC(),
	}
	if len(options.Globs) > 0 {
		entry.Options.Globs = append([]string(nil), options.Globs...)
	}

	if err := core.ValidateHistoryEntry(entry); err != nil {
		return nil, err
	}

	saved, err := s.repo.PutHistoryEntry(ctx, entry)
	if err != nil {
		return nil, fmt.Errorf("saving history entry: %w", err)
	}

	if err := s.trim(ctx); err != nil {
		return nil, err
	}

	s.logger.Debug("history entry added", "query", query, "path", path)
	return saved, nil
}

// List returns the history, most recent first.
func (s *Service) List(ctx context.Context) ([]*core.HistoryEntry, error) {
	return s.repo.RecentHistory(ctx, s.limit)
}

// Clear removes every entry.
func (s *Service) Clear(ctx context.Context) error {
	if err := s.repo.ClearHistory(ctx); err != nil {
		return fmt.Errorf("clearing history: %w", err)
	}
	s.logger.Info("history cleared")
	return nil
}

func (s *Service) trim(ctx context.Context) error {
	count, err := s.repo.CountHistory(ctx)
	if err != nil {
		return fmt.Errorf("counting history: %w", err)
	}
	if count <= s.limit {
		return nil
	}

	entries, err := s.repo.RecentHistory(ctx, 0)
	if err != nil {
		return fmt.Errorf("listing history: %w", err)
	}
	if len(entries) <= s.limit {
		return nil
	}

	stale := make([]core.ID, 0, len(entries)-s.limit)
	for _, e := range entries[s.limit:] {
		stale = append(stale, e.Id)
	}
	if err := s.repo.DeleteHistoryEntries(ctx, stale...); err != nil {
		return fmt.Errorf("trimming history: %w", err)
	}

	s.logger.Debug("history trimmed", "removed", len(stale))
	return nil
}
