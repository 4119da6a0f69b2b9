// Reactbar - Discussion Reaction Cache and Reconciliation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reactbar

package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/go-cmp/cmp"

	"github.com/tomtom215/reactbar/internal/models"
)

func openBackends(t *testing.T) map[string]Backend {
	t.Helper()
	dir := t.TempDir()

	bdg, err := OpenBadger(BadgerConfig{Path: filepath.Join(dir, "badger")})
	if err != nil {
		t.Fatalf("OpenBadger() error = %v", err)
	}
	sq, err := OpenSQLite(filepath.Join(dir, "sqlite", "cache.db"))
	if err != nil {
		t.Fatalf("OpenSQLite() error = %v", err)
	}
	return map[string]Backend{
		"badger": bdg,
		"sqlite": sq,
		"memory": NewMemoryBackend(),
	}
}

func TestBackends_Contract(t *testing.T) {
	ctx := context.Background()

	for name, b := range openBackends(t) {
		t.Run(name, func(t *testing.T) {
			recs := []Record{
				{Key: "ns:comments:post:item:1", Counts: models.Snapshot{"heart": 2}, WrittenAt: 100},
				{Key: "ns:comments:post:item:2", Counts: models.Snapshot{}, WrittenAt: 200},
			}
			if err := b.Put(ctx, recs); err != nil {
				t.Fatalf("Put() error = %v", err)
			}

			got, err := b.Get(ctx, []string{"ns:comments:post:item:1", "ns:comments:post:item:2", "absent"})
			if err != nil {
				t.Fatalf("Get() error = %v", err)
			}
			want := map[string]Record{
				recs[0].Key: recs[0],
				recs[1].Key: recs[1],
			}
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("Get() mismatch (-want +got):\n%s", diff)
			}

			// Last write wins per key.
			if err := b.Put(ctx, []Record{{Key: recs[0].Key, Counts: models.Snapshot{"+1": 9}, WrittenAt: 300}}); err != nil {
				t.Fatalf("Put() overwrite error = %v", err)
			}
			got, _ = b.Get(ctx, []string{recs[0].Key})
			if got[recs[0].Key].WrittenAt != 300 || got[recs[0].Key].Counts["+1"] != 9 {
				t.Errorf("overwrite not applied: %+v", got[recs[0].Key])
			}

			if err := b.Delete(ctx, []string{recs[0].Key, "absent"}); err != nil {
				t.Fatalf("Delete() error = %v", err)
			}
			got, _ = b.Get(ctx, []string{recs[0].Key, recs[1].Key})
			if _, ok := got[recs[0].Key]; ok {
				t.Error("deleted key still present")
			}
			if _, ok := got[recs[1].Key]; !ok {
				t.Error("untouched key missing after Delete")
			}

			if err := b.Close(); err != nil {
				t.Fatalf("Close() error = %v", err)
			}
			if _, err := b.Get(ctx, []string{"x"}); !errors.Is(err, ErrClosed) {
				t.Errorf("Get() after Close error = %v, want ErrClosed", err)
			}
			if err := b.Close(); err != nil {
				t.Errorf("second Close() error = %v", err)
			}
		})
	}
}

func TestBadger_SchemaVersionBumpDropsSnapshots(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "badger")

	b, err := OpenBadger(BadgerConfig{Path: path})
	if err != nil {
		t.Fatalf("OpenBadger() error = %v", err)
	}
	if err := b.Put(ctx, []Record{{Key: "a", Counts: models.Snapshot{"heart": 1}, WrittenAt: 1}}); err != nil {
		t.Fatal(err)
	}
	if err := b.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(metaSchemaVerKey), []byte("0"))
	}); err != nil {
		t.Fatal(err)
	}
	if err := b.Close(); err != nil {
		t.Fatal(err)
	}

	b, err = OpenBadger(BadgerConfig{Path: path})
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer b.Close()
	n, err := b.Count()
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Errorf("Count() after schema bump = %d, want 0", n)
	}
}

func TestBadger_SameSchemaKeepsSnapshots(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "badger")

	b, err := OpenBadger(BadgerConfig{Path: path, Compression: true})
	if err != nil {
		t.Fatal(err)
	}
	if err := b.Put(ctx, []Record{{Key: "a", Counts: models.Snapshot{"heart": 1}, WrittenAt: 1}}); err != nil {
		t.Fatal(err)
	}
	_ = b.Close()

	b, err = OpenBadger(BadgerConfig{Path: path, Compression: true})
	if err != nil {
		t.Fatal(err)
	}
	defer b.Close()
	if n, _ := b.Count(); n != 1 {
		t.Errorf("Count() after reopen = %d, want 1", n)
	}
	if err := b.RunGC(0.5); err != nil {
		t.Errorf("RunGC() error = %v", err)
	}
}

func TestSQLite_SchemaVersionBumpDropsSnapshots(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "cache.db")

	s, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("OpenSQLite() error = %v", err)
	}
	if err := s.Put(ctx, []Record{{Key: "a", Counts: models.Snapshot{"heart": 1}, WrittenAt: 1}}); err != nil {
		t.Fatal(err)
	}
	if _, err := s.db.Exec(`UPDATE meta SET value = '0' WHERE key = 'schema_version'`); err != nil {
		t.Fatal(err)
	}
	_ = s.Close()

	s, err = OpenSQLite(path)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer s.Close()
	got, err := s.Get(ctx, []string{"a"})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Errorf("Get() after schema bump = %v, want empty", got)
	}
}

func TestOpenSQLite_Memory(t *testing.T) {
	s, err := OpenSQLite(":memory:")
	if err != nil {
		t.Fatalf("OpenSQLite(:memory:) error = %v", err)
	}
	defer s.Close()
	if err := s.Put(context.Background(), []Record{{Key: "k", Counts: models.Snapshot{"a": 1}, WrittenAt: 5}}); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
}
