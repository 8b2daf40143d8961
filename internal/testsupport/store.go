package testsupport

import (
	"testing"

	"emojiplot/internal/artifactstore"
	"emojiplot/internal/config"
	"emojiplot/internal/logging"
)

// MustOpenStore opens the configured artifact store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) artifactstore.Store {
	t.Helper()

	store, err := artifactstore.Open(cfg, logging.NewNop())
	if err != nil {
		t.Fatalf("artifactstore.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}
