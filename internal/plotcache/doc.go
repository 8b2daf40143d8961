// Package plotcache wraps a generator with durable artifact storage.
//
// CachingGenerator.GetOrGenerate returns the stored artifact for a key when one
// exists and otherwise generates, saves and returns a new one. Concurrent
// callers for the same key inside one process share a single generation via
// singleflight. When a lock directory is configured, a per-key file lock
// additionally keeps separate processes from generating the same key twice;
// the holder re-checks the store after acquiring it.
//
// Unreadable artifacts surface as services.ErrCorruptData unless
// RegenerateCorrupt is set, in which case a warning is logged and the entry
// is regenerated in place.
package plotcache
