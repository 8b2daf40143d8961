// Package movieplot defines the generated artifact for one movie: the plain
// plot, the emoji-only plot, and the explanation that maps emoji back to plot
// points.
//
// Artifacts are immutable once built through New, which normalizes the emoji
// plot (no blank lines) and rejects empty plot or explanation text. KeyFor
// derives the cache key used to address an artifact in durable storage, and
// Encode/Decode implement the stable on-disk JSON form shared by every store
// backend.
package movieplot
