// Reactbar - Discussion Reaction Cache and Reconciliation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reactbar

/*
Package store implements the Local Store: a persistent key-value cache of
per-entity reaction snapshots that lets a view paint counts before the
counting service answers.

# Availability

A LocalStore opens its backend lazily, exactly once, on first use. If the
open fails for any reason (missing directory, locked database, explicit
"none" backend) the store reports IsAvailable() == false and every operation
becomes a silent no-op: reads miss, writes are dropped. Nothing in this
package is fatal to the caller.

# Expiry

Each record is stamped with its write time in epoch milliseconds. A record
older than the TTL (default one week) is treated as absent on read and a
best-effort delete is started in the background. The read never waits for
it. There is no proactive sweep; Close waits for pending deletes.

# Backends

  - Badger (OpenBadger): default, JSON records under the "snapshot:" prefix
  - SQLite (OpenSQLite): one "snapshots" table keyed by cache key
  - Memory (NewMemoryBackend): process-local, for tests and ephemeral runs
  - None (OpenNone): always unavailable

Both persistent backends keep a schema version. When the stored version
differs from SchemaVersion the snapshot collection is dropped and recreated.

# Usage

	ls := store.New(store.OpenerFor(cfg.Store), store.WithTTL(cfg.Store.TTL))
	defer ls.Close()

	cached := ls.GetMany(ctx, keys)     // nil entries for misses
	ls.SetMany(ctx, fresh)              // fire and forget
*/
package store
