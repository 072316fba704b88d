// Package persistence stores the state of stopped timers so they can be
// resumed after a restart.
//
// Each timer key maps to one Record holding the remaining duration and the
// wall-clock time it was saved at. Both values are written together as one
// unit: a reader sees either the previous record or the new one, never a mix.
//
// Three backends implement Store:
//   - FileStore: one CBOR file per key, replaced atomically (default)
//   - SQLiteStore: one row per key in a SQLite database
//   - MemoryStore: in-process map, for tests and hosts without storage
package persistence
