package storage

import (
	"context"

	"github.com/poiesic/rgsearch/core"
)

// HistoryRepository persists the searches a user has run.
// Implementations must be thread-safe and support concurrent access.
type HistoryRepository interface {
	// PutHistoryEntry inserts or replaces an entry. The ID is derived from
	// the entry's (path, query) tuple, so re-running a search replaces the
	// earlier entry. Returns the entry with its ID populated.
	PutHistoryEntry(ctx context.Context, entry *core.HistoryEntry) (*core.HistoryEntry, error)

	// GetHistoryEntry retrieves a single entry by ID.
	// Returns ErrNotFound if the entry doesn't exist.
	GetHistoryEntry(ctx context.Context, id core.ID) (*core.HistoryEntry, error)

	// RecentHistory returns up to limit entries, most recent first.
	// A non-positive limit returns every entry.
	RecentHistory(ctx context.Context, limit int) ([]*core.HistoryEntry, error)

	// DeleteHistoryEntries removes entries by ID. Missing IDs are ignored.
	DeleteHistoryEntries(ctx context.Context, ids ...core.ID) error

	// CountHistory returns the number of stored entries.
	CountHistory(ctx context.Context) (int, error)

	// ClearHistory removes every entry.
	ClearHistory(ctx context.Context) error

	// Close releases resources held by the repository.
	Close() error
}
