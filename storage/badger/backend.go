package badger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"syscall"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
)

// Backend owns the BadgerDB handle shared by the repositories.
type Backend struct {
	db     *badger.DB
	logger *slog.Logger
}

// slogBadger routes badger's internal log lines to slog.
// Info output is demoted to debug.
type slogBadger struct {
	logger *slog.Logger
}

var _ badger.Logger = (*slogBadger)(nil)

func (l *slogBadger) Errorf(format string, args ...any)   { l.log(slog.LevelError, format, args) }
func (l *slogBadger) Warningf(format string, args ...any) { l.log(slog.LevelWarn, format, args) }
func (l *slogBadger) Infof(format string, args ...any)    { l.log(slog.LevelDebug, format, args) }
func (l *slogBadger) Debugf(format string, args ...any)   { l.log(slog.LevelDebug, format, args) }

func (l *slogBadger) log(level slog.Level, format string, args []any) {
	l.logger.Log(context.Background(), level, strings.TrimSpace(fmt.Sprintf(format, args...)), "component", "badger")
}

// OpenBackend opens the history database in dir, creating dir if needed.
// With inMemory set, dir is ignored and nothing touches disk.
func OpenBackend(dir string, inMemory bool) (*Backend, error) {
	opts := badger.DefaultOptions("").WithInMemory(true)
	if !inMemory {
		if err := ensureDir(dir); err != nil {
			return nil, err
		}
		opts = badger.DefaultOptions(dir)
	}

	logger := slog.Default()
	opts = opts.
		WithLogger(&slogBadger{logger: logger}).
		WithCompression(options.None)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("opening history database: %w", err)
	}
	return &Backend{db: db, logger: logger}, nil
}

// OpenBackendWithRetry opens an on-disk database, retrying with exponential
// backoff while another process still holds the directory lock.
func OpenBackendWithRetry(ctx context.Context, filePath string, maxAttempts int, baseDelay time.Duration) (*Backend, error) {
	var backend *Backend
	err := RetryWithBackoff(ctx, func() error {
		var err error
		backend, err = OpenBackend(filePath, false)
		return err
	}, maxAttempts, baseDelay)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database after %d attempts: %w", maxAttempts, err)
	}
	return backend, nil
}

func ensureDir(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		if errors.Is(err, syscall.ENOTDIR) {
			return fmt.Errorf("%s is not a directory", dir)
		}
		return err
	}
	return nil
}

// Close closes the database.
func (b *Backend) Close() error {
	if b.db.IsClosed() {
		return nil
	}
	if err := b.db.Close(); err != nil {
		return err
	}
	b.logger.Debug("history database closed")
	return nil
}

// IsClosed reports whether Close has been called.
func (b *Backend) IsClosed() bool {
	return b.db.IsClosed()
}

// WithTx runs fn in a transaction. fn must Commit a write transaction
// itself; anything left uncommitted is discarded.
func (b *Backend) WithTx(fn func(tx *badger.Txn) error, isWrite bool) error {
	tx := b.db.NewTransaction(isWrite)
	defer tx.Discard()
	return fn(tx)
}
