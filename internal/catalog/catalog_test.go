package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"emojiplot/internal/services"
)

func TestDefaultCatalog(t *testing.T) {
	c, err := Default()
	if err != nil {
		t.Fatalf("Default: %v", err)
	}
	if c.Len() != 175 {
		t.Fatalf("expected 175 embedded titles, got %d", c.Len())
	}
	titles := c.Titles()
	if titles[0] != "Star Wars: Episode IV - A New Hope" {
		t.Fatalf("unexpected first title %q", titles[0])
	}
	title, ok := c.TitleForKey("the_corpse_bride")
	if !ok || title != "The Corpse Bride" {
		t.Fatalf("TitleForKey = %q, %v", title, ok)
	}
	if title, ok := c.Resolve("the corpse BRIDE"); !ok || title != "The Corpse Bride" {
		t.Fatalf("Resolve = %q, %v", title, ok)
	}
}

func TestParseTrimsAndDeduplicates(t *testing.T) {
	c, err := Parse([]byte("titles:\n  - \"  Dune \"\n  - Dune\n  - \"\"\n  - Alien\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	got := c.Titles()
	if len(got) != 2 || got[0] != "Dune" || got[1] != "Alien" {
		t.Fatalf("unexpected titles %q", got)
	}
}

func TestParseKeepsTitlesWithSlashes(t *testing.T) {
	c, err := Parse([]byte("titles: [Dune, Face/Off, Fahrenheit 9/11]\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if c.Len() != 3 {
		t.Fatalf("expected three titles, got %q", c.Titles())
	}
	if title, ok := c.TitleForKey("fahrenheit_9/11"); !ok || title != "Fahrenheit 9/11" {
		t.Fatalf("TitleForKey = %q, %v", title, ok)
	}
	if title, ok := c.Resolve("face/off"); !ok || title != "Face/Off" {
		t.Fatalf("Resolve = %q, %v", title, ok)
	}
}

func TestParseRejectsInvalidLists(t *testing.T) {
	cases := map[string]string{
		"empty":     "",
		"no titles": "titles: []\n",
		"collision": "titles:\n  - Dune\n  - DUNE\n",
		"malformed": "titles: [unterminated\n",
		"control":   "titles:\n  - \"Du\\tne\"\n",
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := Parse([]byte(data)); !errors.Is(err, services.ErrValidation) {
				t.Fatalf("expected ErrValidation, got %v", err)
			}
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "titles.yaml")
	if err := os.WriteFile(path, []byte("titles:\n  - Heat\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Len() != 1 {
		t.Fatalf("expected one title, got %d", c.Len())
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected missing file to fail")
	}
	if c, err := Load(""); err != nil || c.Len() != 175 {
		t.Fatalf("Load(\"\") should fall back to defaults: %v", err)
	}
}
