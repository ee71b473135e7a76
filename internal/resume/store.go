// Package resume persists the identifiers the integration wizard needs to
// pick up where it left off after the CLI exits.
package resume

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/botdash/botdash-cli/internal/constants"
)

// IntegrationIDKey is the single well-known key holding the pending Bitrix integration id.
const IntegrationIDKey = "bitrix/integration-id"

// ErrNotFound is returned when no integration id has been stored.
var ErrNotFound = errors.New("no stored integration id")

// Options configures a Store.
type Options struct {
	Dir      string // on-disk directory (ignored when InMemory is true)
	InMemory bool   // in-memory storage for tests
}

// Store is a Badger-backed key-value store for resumable wizard state.
type Store struct {
	db *badger.DB
}

// DefaultDir returns ~/.botdash/state.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, constants.ConfigDir, constants.StateDirName), nil
}

// Open creates or opens the store.
func Open(opts Options) (*Store, error) {
	if !opts.InMemory {
		if opts.Dir == "" {
			return nil, errors.New("resume store directory is required")
		}
		if err := os.MkdirAll(opts.Dir, 0o700); err != nil {
			return nil, fmt.Errorf("failed to create state directory: %w", err)
		}
	}

	db, err := badger.Open(badgerOptions(opts))
	if err != nil {
		return nil, fmt.Errorf("failed to open state store: %w", err)
	}

	return &Store{db: db}, nil
}

func badgerOptions(opts Options) badger.Options {
	if opts.InMemory {
		return badger.DefaultOptions("").WithInMemory(true).WithLogger(nil)
	}
	return badger.DefaultOptions(opts.Dir).WithLogger(nil)
}

// IntegrationID returns the stored integration id, or ErrNotFound.
func (s *Store) IntegrationID() (string, error) {
	var val []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(IntegrationIDKey))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrNotFound
			}
			return err
		}
		val, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		return "", err
	}
	if len(val) == 0 {
		return "", ErrNotFound
	}
	return string(val), nil
}

// SaveIntegrationID overwrites the stored integration id.
func (s *Store) SaveIntegrationID(id string) error {
	if id == "" {
		return errors.New("integration id must not be empty")
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(IntegrationIDKey), []byte(id))
	})
}

// ClearIntegrationID removes the stored integration id. Clearing an absent key is not an error.
func (s *Store) ClearIntegrationID() error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(IntegrationIDKey))
	})
}

// Close runs value log GC and closes the database.
func (s *Store) Close() error {
	for s.db.RunValueLogGC(0.5) == nil {
	}
	return s.db.Close()
}
