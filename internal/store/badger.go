// Reactbar - Discussion Reaction Cache and Reconciliation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reactbar

package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
	"github.com/goccy/go-json"

	"github.com/tomtom215/reactbar/internal/logging"
)

// Key prefixes inside the badger keyspace.
const (
	prefixSnapshot   = "snapshot:"
	metaSchemaVerKey = "meta:schema_version"
)

// BadgerConfig tunes the badger backend.
type BadgerConfig struct {
	// Path is the database directory. Required.
	Path string

	// SyncWrites fsyncs every write. Snapshots are a cache, so off by default.
	SyncWrites bool

	// Compression enables Snappy block compression.
	Compression bool

	// MemTableSize and ValueLogFileSize default to 16MB, badger's minimum
	// sensible size for a small cache.
	MemTableSize     int64
	ValueLogFileSize int64

	// NumCompactors must be at least 2. Default: 2
	NumCompactors int
}

func (c *BadgerConfig) applyDefaults() {
	if c.MemTableSize == 0 {
		c.MemTableSize = 16 << 20
	}
	if c.ValueLogFileSize == 0 {
		c.ValueLogFileSize = 16 << 20
	}
	if c.NumCompactors < 2 {
		c.NumCompactors = 2
	}
}

// BadgerBackend stores JSON-encoded records in BadgerDB.
type BadgerBackend struct {
	db     *badger.DB
	mu     sync.RWMutex
	closed bool
}

// OpenBadger opens (or creates) the database at cfg.Path and reconciles the
// schema version.
func OpenBadger(cfg BadgerConfig) (*BadgerBackend, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("badger store: path is required")
	}
	cfg.applyDefaults()

	opts := badger.DefaultOptions(cfg.Path)
	opts.SyncWrites = cfg.SyncWrites
	opts.MemTableSize = cfg.MemTableSize
	opts.ValueLogFileSize = cfg.ValueLogFileSize
	opts.NumCompactors = cfg.NumCompactors
	if cfg.Compression {
		opts.Compression = options.Snappy
	}
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open BadgerDB: %w", err)
	}

	b := &BadgerBackend{db: db}
	if err := b.ensureSchema(); err != nil {
		_ = db.Close()
		return nil, err
	}

	logging.Info().
		Str("path", cfg.Path).
		Bool("sync_writes", cfg.SyncWrites).
		Bool("compression", cfg.Compression).
		Msg("Badger store opened")
	return b, nil
}

// ensureSchema drops every snapshot when the stored schema version is
// missing or differs from SchemaVersion.
func (b *BadgerBackend) ensureSchema() error {
	current := -1
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(metaSchemaVerKey))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			n, err := strconv.Atoi(string(val))
			if err != nil {
				// Unparseable version: treat as mismatch.
				return nil
			}
			current = n
			return nil
		})
	})
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if current == SchemaVersion {
		return nil
	}

	if err := b.db.DropPrefix([]byte(prefixSnapshot)); err != nil {
		return fmt.Errorf("drop snapshots: %w", err)
	}
	if current >= 0 {
		logging.Info().Int("from", current).Int("to", SchemaVersion).Msg("Badger store schema changed, snapshots dropped")
	}
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(metaSchemaVerKey), []byte(strconv.Itoa(SchemaVersion)))
	})
}

func (b *BadgerBackend) checkOpen() error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return ErrClosed
	}
	return nil
}

// Get implements Backend.
func (b *BadgerBackend) Get(ctx context.Context, keys []string) (map[string]Record, error) {
	if err := b.checkOpen(); err != nil {
		return nil, err
	}

	out := make(map[string]Record, len(keys))
	err := b.db.View(func(txn *badger.Txn) error {
		for _, k := range keys {
			if err := ctx.Err(); err != nil {
				return err
			}
			item, err := txn.Get([]byte(prefixSnapshot + k))
			if errors.Is(err, badger.ErrKeyNotFound) {
				continue
			}
			if err != nil {
				return fmt.Errorf("get %s: %w", k, err)
			}
			var rec Record
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &rec)
			}); err != nil {
				return fmt.Errorf("decode %s: %w", k, err)
			}
			rec.Key = k
			out[k] = rec
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Put implements Backend.
func (b *BadgerBackend) Put(ctx context.Context, records []Record) error {
	if err := b.checkOpen(); err != nil {
		return err
	}

	wb := b.db.NewWriteBatch()
	defer wb.Cancel()
	for i := range records {
		if err := ctx.Err(); err != nil {
			return err
		}
		data, err := json.Marshal(&records[i])
		if err != nil {
			return fmt.Errorf("marshal %s: %w", records[i].Key, err)
		}
		if err := wb.Set([]byte(prefixSnapshot+records[i].Key), data); err != nil {
			return fmt.Errorf("write %s: %w", records[i].Key, err)
		}
	}
	return wb.Flush()
}

// Delete implements Backend.
func (b *BadgerBackend) Delete(ctx context.Context, keys []string) error {
	if err := b.checkOpen(); err != nil {
		return err
	}
	return b.db.Update(func(txn *badger.Txn) error {
		for _, k := range keys {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := txn.Delete([]byte(prefixSnapshot + k)); err != nil {
				return fmt.Errorf("delete %s: %w", k, err)
			}
		}
		return nil
	})
}

// Count returns the number of stored snapshots, expired ones included.
func (b *BadgerBackend) Count() (int, error) {
	if err := b.checkOpen(); err != nil {
		return 0, err
	}
	n := 0
	err := b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(prefixSnapshot)
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			n++
		}
		return nil
	})
	return n, err
}

// RunGC reclaims value log space until badger reports nothing to rewrite.
func (b *BadgerBackend) RunGC(ratio float64) error {
	if err := b.checkOpen(); err != nil {
		return err
	}
	for {
		err := b.db.RunValueLogGC(ratio)
		if errors.Is(err, badger.ErrNoRewrite) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("run GC: %w", err)
		}
	}
}

// Close implements Backend.
func (b *BadgerBackend) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	b.mu.Unlock()

	if err := b.db.Close(); err != nil {
		return fmt.Errorf("close BadgerDB: %w", err)
	}
	return nil
}
