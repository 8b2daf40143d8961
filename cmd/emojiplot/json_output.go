package main

import (
	"encoding/json"
	"time"

	"github.com/spf13/cobra"

	"emojiplot/internal/artifactstore"
	"emojiplot/internal/catalog"
)

// titleJSON is one row of `titles --json`.
type titleJSON struct {
	Title  string `json:"title"`
	Key    string `json:"key"`
	Cached bool   `json:"cached"`
}

// cacheEntryJSON is one row of `cache list --json`. Title is empty for
// artifacts whose key is not in the current title list.
type cacheEntryJSON struct {
	Key       string    `json:"key"`
	Title     string    `json:"title,omitempty"`
	Size      int64     `json:"size"`
	UpdatedAt time.Time `json:"updated_at"`
}

func cacheEntriesJSON(entries []artifactstore.Entry, titles *catalog.Catalog) []cacheEntryJSON {
	items := make([]cacheEntryJSON, 0, len(entries))
	for _, entry := range entries {
		title, _ := titles.TitleForKey(entry.Key)
		items = append(items, cacheEntryJSON{
			Key:       entry.Key,
			Title:     title,
			Size:      entry.Size,
			UpdatedAt: entry.UpdatedAt,
		})
	}
	return items
}

func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
