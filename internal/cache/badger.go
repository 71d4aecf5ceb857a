package cache

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
	"go.uber.org/zap"
)

// BadgerConfig holds configuration for the BadgerDB-backed store.
type BadgerConfig struct {
	// Path is the database directory. Ignored when InMemory is set.
	Path string `koanf:"path"`

	// InMemory keeps the whole store in RAM. Used by tests and the default
	// local setup.
	InMemory bool `koanf:"in_memory"`
}

// BadgerStore implements Store on BadgerDB. Expiry uses badger's per-entry
// TTL, so the two caches can carry independent policies through one store.
type BadgerStore struct {
	db     *badger.DB
	logger *zap.Logger
}

// badgerLogger adapts zap to badger's logger interface.
type badgerLogger struct {
	logger *zap.SugaredLogger
}

var _ badger.Logger = (*badgerLogger)(nil)

func (l *badgerLogger) Errorf(msg string, args ...any)   { l.logger.Errorf(msg, args...) }
func (l *badgerLogger) Warningf(msg string, args ...any) { l.logger.Warnf(msg, args...) }
func (l *badgerLogger) Infof(msg string, args ...any)    { l.logger.Debugf(msg, args...) }
func (l *badgerLogger) Debugf(msg string, args ...any)   { l.logger.Debugf(msg, args...) }

// NewBadgerStore opens (or creates) a BadgerDB store at cfg.Path.
func NewBadgerStore(cfg BadgerConfig, logger *zap.Logger) (*BadgerStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if cfg.Path == "" {
			return nil, fmt.Errorf("badger path is required")
		}
		if err := os.MkdirAll(cfg.Path, 0o755); err != nil {
			return nil, fmt.Errorf("creating cache directory %s: %w", cfg.Path, err)
		}
		opts = badger.DefaultOptions(cfg.Path)
	}
	opts.Logger = &badgerLogger{logger: logger.Sugar()}
	opts.Compression = options.None

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("opening badger at %s: %w", cfg.Path, err)
	}

	logger.Info("cache store opened",
		zap.String("path", cfg.Path),
		zap.Bool("in_memory", cfg.InMemory),
	)

	return &BadgerStore{db: db, logger: logger}, nil
}

// Get retrieves the value for key. A missing or expired entry is a miss,
// not an error.
func (s *BadgerStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	if s.db.IsClosed() {
		return nil, false, ErrClosed
	}

	var value []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache get %q: %w", key, err)
	}
	return value, true, nil
}

// Put stores value under key. Repeated puts with the same key overwrite,
// which keeps concurrent recomputation races benign. Badger keeps expiry in
// whole Unix seconds, so effective TTLs are truncated to one-second
// granularity and sub-second TTLs may expire immediately.
func (s *BadgerStore) Put(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.db.IsClosed() {
		return ErrClosed
	}

	err := s.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry([]byte(key), value)
		if ttl > 0 {
			entry = entry.WithTTL(ttl)
		}
		return txn.SetEntry(entry)
	})
	if err != nil {
		return fmt.Errorf("cache put %q: %w", key, err)
	}
	return nil
}

// Close closes the underlying database.
func (s *BadgerStore) Close() error {
	return s.db.Close()
}
