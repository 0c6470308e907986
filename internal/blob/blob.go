// Package blob is the object store for item photos, backed by an embedded
// badger key-value database.
package blob

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dgraph-io/badger/v4"
)

// ErrNotFound is returned when no object exists under a key.
var ErrNotFound = errors.New("object not found")

const (
	dataPrefix = "data/"
	mimePrefix = "mime/"
)

// Store holds binary objects under slash-separated keys.
type Store struct {
	db *badger.DB
}

// Open opens (or creates) an object store in dir.
func Open(dir string) (*Store, error) {
	opts := badger.DefaultOptions(dir).WithLogger(slogLogger{slog.Default().With("component", "blob")})
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("opening object store: %w", err)
	}
	return &Store{db: db}, nil
}

// OpenInMemory opens a store that lives only as long as the process.
func OpenInMemory() (*Store, error) {
	db, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLogger(nil))
	if err != nil {
		return nil, fmt.Errorf("opening in-memory object store: %w", err)
	}
	return &Store{db: db}, nil
}

// Close flushes and closes the store.
func (s *Store) Close() error {
	return s.db.Close()
}

// ItemImageKey returns the key of an item photo, namespaced per user.
func ItemImageKey(userID int64, imageID string) string {
	return fmt.Sprintf("users/%d/items/%s", userID, imageID)
}

// ValidKey reports whether key is a well-formed object key.
func ValidKey(key string) bool {
	if key == "" || strings.HasPrefix(key, "/") || strings.HasSuffix(key, "/") {
		return false
	}
	for _, part := range strings.Split(key, "/") {
		if part == "" || part == "." || part == ".." {
			return false
		}
	}
	return true
}

// Put stores data and its MIME type under key, replacing any previous object.
func (s *Store) Put(ctx context.Context, key string, data []byte, mime string) error {
	if !ValidKey(key) {
		return fmt.Errorf("invalid object key %q", key)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	err := s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set([]byte(dataPrefix+key), data); err != nil {
			return err
		}
		return txn.Set([]byte(mimePrefix+key), []byte(mime))
	})
	if err != nil {
		return fmt.Errorf("storing object %s: %w", key, err)
	}
	return nil
}

// Get returns the object's data and MIME type.
func (s *Store) Get(ctx context.Context, key string) ([]byte, string, error) {
	if err := ctx.Err(); err != nil {
		return nil, "", err
	}
	var data, mime []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(dataPrefix + key))
		if err != nil {
			return err
		}
		if data, err = item.ValueCopy(nil); err != nil {
			return err
		}
		item, err = txn.Get([]byte(mimePrefix + key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		mime, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, "", ErrNotFound
	}
	if err != nil {
		return nil, "", fmt.Errorf("reading object %s: %w", key, err)
	}
	if len(mime) == 0 {
		mime = []byte("application/octet-stream")
	}
	return data, string(mime), nil
}

// Delete removes an object. Deleting a missing key is not an error.
func (s *Store) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Delete([]byte(dataPrefix + key)); err != nil {
			return err
		}
		return txn.Delete([]byte(mimePrefix + key))
	})
	if err != nil {
		return fmt.Errorf("deleting object %s: %w", key, err)
	}
	return nil
}

// Keys lists object keys starting with prefix.
func (s *Store) Keys(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(dataPrefix + prefix)
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			keys = append(keys, strings.TrimPrefix(string(it.Item().Key()), dataPrefix))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("listing objects: %w", err)
	}
	return keys, nil
}

// slogLogger adapts badger's printf-style logger to slog.
type slogLogger struct {
	l *slog.Logger
}

func (s slogLogger) Errorf(format string, args ...any) {
	s.l.Error(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (s slogLogger) Warningf(format string, args ...any) {
	s.l.Warn(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (s slogLogger) Infof(format string, args ...any) {
	s.l.Debug(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (s slogLogger) Debugf(format string, args ...any) {
	s.l.Debug(strings.TrimSpace(fmt.Sprintf(format, args...)))
}
