package artifactstore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"emojiplot/internal/logging"
	"emojiplot/internal/movieplot"
	"emojiplot/internal/services"
)

const fileExtension = ".json"

// FileStore stores one JSON document per key under root.
type FileStore struct {
	root   string
	logger *slog.Logger
}

// NewFileStore creates a file-backed store. The root directory is created
// lazily on the first Save.
func NewFileStore(root string, logger *slog.Logger) *FileStore {
	return &FileStore{
		root:   root,
		logger: logging.NewComponentLogger(logger, "artifactstore"),
	}
}

// Root returns the directory holding artifact files.
func (s *FileStore) Root() string {
	return s.root
}

// Path returns the file that holds key. Keys containing path separators are
// escaped into a single file name.
func (s *FileStore) Path(key string) string {
	return filepath.Join(s.root, movieplot.FileStem(key)+fileExtension)
}

func (s *FileStore) Exists(_ context.Context, key string) (bool, error) {
	if err := validateKey(key); err != nil {
		return false, err
	}
	info, err := os.Stat(s.Path(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("stat artifact %q: %w", key, err)
	}
	return !info.IsDir(), nil
}

func (s *FileStore) Load(_ context.Context, key string) (movieplot.Artifact, error) {
	if err := validateKey(key); err != nil {
		return movieplot.Artifact{}, err
	}
	data, err := os.ReadFile(s.Path(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return movieplot.Artifact{}, services.Wrap(services.ErrNotFound, "artifactstore", "load", key, nil)
		}
		return movieplot.Artifact{}, fmt.Errorf("read artifact %q: %w", key, err)
	}
	artifact, err := movieplot.Decode(data)
	if err != nil {
		return movieplot.Artifact{}, fmt.Errorf("load artifact %q from %s: %w", key, s.Path(key), err)
	}
	return artifact, nil
}

// Save writes the artifact atomically via a temp file in the same directory,
// so concurrent writers of one key never leave a torn document behind.
func (s *FileStore) Save(_ context.Context, key string, artifact movieplot.Artifact) error {
	if err := validateKey(key); err != nil {
		return err
	}
	data, err := movieplot.Encode(artifact)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(s.root, 0o755); err != nil {
		return fmt.Errorf("create cache directory: %w", err)
	}

	tmp, err := os.CreateTemp(s.root, "."+movieplot.FileStem(key)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmpPath, s.Path(key)); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename temp file: %w", err)
	}

	s.logger.Debug("artifact saved",
		logging.String(logging.FieldCacheKey, key),
		logging.String(logging.FieldTitle, artifact.Title),
		logging.String("path", s.Path(key)))
	return nil
}

func (s *FileStore) List(_ context.Context) ([]Entry, error) {
	dirEntries, err := os.ReadDir(s.root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read cache directory: %w", err)
	}
	entries := make([]Entry, 0, len(dirEntries))
	for _, de := range dirEntries {
		name := de.Name()
		if de.IsDir() || !strings.HasSuffix(name, fileExtension) {
			continue
		}
		key, err := movieplot.KeyFromFileStem(strings.TrimSuffix(name, fileExtension))
		if err != nil {
			continue
		}
		info, err := de.Info()
		if err != nil {
			continue
		}
		entries = append(entries, Entry{
			Key:       key,
			Size:      info.Size(),
			UpdatedAt: info.ModTime(),
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Key < entries[j].Key
	})
	return entries, nil
}

func (s *FileStore) Close() error {
	return nil
}
