package movieplot

import (
	"fmt"
	"net/url"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// KeyFor derives the cache key for a movie title: Unicode lowercase with spaces
// replaced by underscores. "The Lion King" becomes "the_lion_king".
func KeyFor(title string) string {
	// Casers carry state and must not be shared across goroutines.
	lowered := cases.Lower(language.Und).String(title)
	return strings.ReplaceAll(lowered, " ", "_")
}

// FileStem maps a key to a single path element. '%', path separators and NUL
// are percent-encoded, as are the keys "." and "..". Every other key is its
// own stem, so "face/off" is stored as "face%2Foff".
func FileStem(key string) string {
	switch key {
	case ".":
		return "%2E"
	case "..":
		return "%2E%2E"
	}
	if !strings.ContainsAny(key, "%/\\\x00") {
		return key
	}
	var b strings.Builder
	for i := 0; i < len(key); i++ {
		switch c := key[i]; c {
		case '%', '/', '\\', 0:
			fmt.Fprintf(&b, "%%%02X", c)
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// KeyFromFileStem reverses FileStem.
func KeyFromFileStem(stem string) (string, error) {
	return url.PathUnescape(stem)
}
