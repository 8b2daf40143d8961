// Package artifactstore persists generated movie artifacts keyed by their
// normalized title.
//
// Two backends implement Store:
//
//   - FileStore writes one indented JSON document per key under a cache root
//     (<cache_dir>/cache/<key>.json), readable and editable by hand.
//   - SQLiteStore keeps the same JSON payloads in a single SQLite table.
//
// The store is write-once in practice: higher layers never overwrite an
// existing key, but Save itself is last-writer-wins. Load distinguishes an
// absent key (services.ErrNotFound) from an unreadable payload
// (services.ErrCorruptData) so callers can decide whether to regenerate.
package artifactstore
