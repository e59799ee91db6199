package badger

import (
	"context"
	"errors"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/rgsearch/core"
	"github.com/poiesic/rgsearch/storage"
)

// HistoryRepository implements storage.HistoryRepository for BadgerDB.
type HistoryRepository struct {
	backend *Backend
}

var _ storage.HistoryRepository = (*HistoryRepository)(nil)

// NewHistoryRepository creates a new HistoryRepository.
func NewHistoryRepository(backend *Backend) *HistoryRepository {
	return &HistoryRepository{
		backend: backend,
	}
}

// Close is a no-op; the backend is closed by its owner.
func (r *HistoryRepository) Close() error {
	return nil
}

// PutHistoryEntry inserts or replaces an entry keyed by its tuple.
func (r *HistoryRepository) PutHistoryEntry(ctx context.Context, entry *core.HistoryEntry) (*core.HistoryEntry, error) {
	if r.backend.IsClosed() {
		return nil, storage.ErrStorageClosed
	}

	entry.Id = core.IDFromContent(entry.Tuple())

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeHistoryKey(entry.Id)

		// Drop the old date index key when replacing
		old, err := r.readHistoryEntry(tx, key)
		if err != nil {
			return err
		}
		if old != nil {
			if err := tx.Delete(makeHistoryDateKey(old.Timestamp, old.Id)); err != nil {
				return err
			}
		}

		if err := tx.Set(key, storage.MarshalHistoryEntry(entry)); err != nil {
			return err
		}
		dateKey := makeHistoryDateKey(entry.Timestamp, entry.Id)
		if err := tx.Set(dateKey, storage.MarshalID(entry.Id)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return nil, err
	}

	return entry, nil
}

// GetHistoryEntry retrieves a single entry by ID.
func (r *HistoryRepository) GetHistoryEntry(ctx context.Context, id core.ID) (*core.HistoryEntry, error) {
	if r.backend.IsClosed() {
		return nil, storage.ErrStorageClosed
	}

	var entry *core.HistoryEntry
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		entry, err = r.readHistoryEntry(tx, makeHistoryKey(id))
		return err
	}, false)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, storage.ErrNotFound
	}
	return entry, nil
}

// RecentHistory returns up to limit entries, most recent first.
func (r *HistoryRepository) RecentHistory(ctx context.Context, limit int) ([]*core.HistoryEntry, error) {
	if r.backend.IsClosed() {
		return nil, storage.ErrStorageClosed
	}

	var entries []*core.HistoryEntry
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		prefix := historyDateKeyPrefix()
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		opts.Reverse = true
		iter := tx.NewIterator(opts)
		defer iter.Close()

		// Seek past the last possible key under the prefix, then walk backwards
		seekKey := append(append([]byte{}, prefix...), 0xFF)
		for iter.Seek(seekKey); iter.ValidForPrefix(prefix); iter.Next() {
			if limit > 0 && len(entries) >= limit {
				break
			}

			var id core.ID
			err := iter.Item().Value(func(val []byte) error {
				var err error
				id, err = storage.UnmarshalID(val)
				return err
			})
			if err != nil {
				return err
			}

			entry, err := r.readHistoryEntry(tx, makeHistoryKey(id))
			if err != nil {
				return err
			}
			if entry == nil {
				// Dangling index key; skip it
				continue
			}
			entries = append(entries, entry)
		}
		return nil
	}, false)

	return entries, err
}

// DeleteHistoryEntries removes entries and their index keys.
func (r *HistoryRepository) DeleteHistoryEntries(ctx context.Context, ids ...core.ID) error {
	if r.backend.IsClosed() {
		return storage.ErrStorageClosed
	}

	return r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			key := makeHistoryKey(id)
			entry, err := r.readHistoryEntry(tx, key)
			if err != nil {
				return err
			}
			if entry == nil {
				continue
			}
			if err := tx.Delete(key); err != nil {
				return err
			}
			if err := tx.Delete(makeHistoryDateKey(entry.Timestamp, entry.Id)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// CountHistory returns the number of stored entries.
func (r *HistoryRepository) CountHistory(ctx context.Context) (int, error) {
	if r.backend.IsClosed() {
		return 0, storage.ErrStorageClosed
	}

	count := 0
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = historyKeyPrefix()
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			count++
		}
		return nil
	}, false)

	return count, err
}

// ClearHistory removes every entry and index key.
func (r *HistoryRepository) ClearHistory(ctx context.Context) error {
	if r.backend.IsClosed() {
		return storage.ErrStorageClosed
	}

	return r.backend.WithTx(func(tx *badger.Txn) error {
		var keys [][]byte
		for _, prefix := range [][]byte{historyKeyPrefix(), historyDateKeyPrefix()} {
			opts := badger.DefaultIteratorOptions
			opts.PrefetchValues = false
			opts.Prefix = prefix
			iter := tx.NewIterator(opts)
			for iter.Rewind(); iter.Valid(); iter.Next() {
				keys = append(keys, iter.Item().KeyCopy(nil))
			}
			iter.Close()
		}

		for _, key := range keys {
			if err := tx.Delete(key); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// readHistoryEntry returns nil, nil when the key does not exist.
func (r *HistoryRepository) readHistoryEntry(tx *badger.Txn, key []byte) (*core.HistoryEntry, error) {
	item, err := tx.Get(key)
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, err
	}

	var entry *core.HistoryEntry
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		entry, unmarshalErr = storage.UnmarshalHistoryEntry(val)
		return unmarshalErr
	})
	return entry, err
}
