// Package store provides SQLite-backed durable storage for graph triples.
//
// Node names, predicate names and literals are interned into dictionary
// tables; the triple table holds only dictionary ids. Every Import runs in one
// transaction and is recorded in an import log keyed by a UUIDv7.
//
// # Critical Patterns
//
// Idempotent import:
//   - PRIMARY KEY(subject, predicate, object kind, object) on triples
//   - INSERT ... ON CONFLICT DO NOTHING, so re-importing adds nothing
//
// Deterministic snapshots:
//   - Triples and Snapshot scan with ORDER BY on names, never on ids
//   - graph.Builder assigns layer ids in sorted name order, so the same
//     triples always produce the same layer
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//
// Dataset is the YAML import format; Resolve expands its short names against
// the @base and @schema of a frame context.
package store
