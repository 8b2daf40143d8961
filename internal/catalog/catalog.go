// Package catalog loads the list of candidate movie titles.
package catalog

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"strings"
	"unicode"

	"gopkg.in/yaml.v3"

	"emojiplot/internal/movieplot"
	"emojiplot/internal/services"
)

//go:embed titles.yaml
var defaultTitles []byte

// Catalog is an ordered, de-duplicated title list.
type Catalog struct {
	titles []string
	byKey  map[string]string
}

type document struct {
	Titles []string `yaml:"titles"`
}

// Default returns the embedded title list.
func Default() (*Catalog, error) {
	return Parse(defaultTitles)
}

// Load reads titles from path, or the embedded list when path is empty.
func Load(path string) (*Catalog, error) {
	if strings.TrimSpace(path) == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: read %s: %w", path, err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("catalog: %s: %w", path, err)
	}
	return c, nil
}

// Parse decodes a YAML document with a top-level titles list. Blank entries
// and exact duplicates are dropped. Titles with control characters, and
// distinct titles that normalize to the same key, are rejected.
func Parse(data []byte) (*Catalog, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, services.Wrap(services.ErrValidation, "catalog", "parse", "title list is empty", nil)
	}
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, services.Wrap(services.ErrValidation, "catalog", "parse", "decode titles", err)
	}

	c := &Catalog{byKey: make(map[string]string, len(doc.Titles))}
	for _, raw := range doc.Titles {
		title := strings.TrimSpace(raw)
		if title == "" {
			continue
		}
		if strings.IndexFunc(title, unicode.IsControl) >= 0 {
			return nil, services.Wrap(services.ErrValidation, "catalog", "parse",
				fmt.Sprintf("title %q contains control characters", title), nil)
		}
		key := movieplot.KeyFor(title)
		if existing, ok := c.byKey[key]; ok {
			if existing == title {
				continue
			}
			return nil, services.Wrap(services.ErrValidation, "catalog", "parse",
				fmt.Sprintf("titles %q and %q share key %q", existing, title, key), nil)
		}
		c.byKey[key] = title
		c.titles = append(c.titles, title)
	}
	if len(c.titles) == 0 {
		return nil, services.Wrap(services.ErrValidation, "catalog", "parse", "title list is empty", nil)
	}
	return c, nil
}

// Titles returns a copy of the titles in file order.
func (c *Catalog) Titles() []string {
	return append([]string(nil), c.titles...)
}

// Len returns the number of titles.
func (c *Catalog) Len() int {
	return len(c.titles)
}

// TitleForKey maps a normalized key back to its title.
func (c *Catalog) TitleForKey(key string) (string, bool) {
	title, ok := c.byKey[key]
	return title, ok
}

// Resolve accepts either a title or a key and returns the matching title.
func (c *Catalog) Resolve(value string) (string, bool) {
	return c.TitleForKey(movieplot.KeyFor(strings.TrimSpace(value)))
}
