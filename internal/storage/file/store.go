// Package file stores documents as files below a local root directory.
package file

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/bcnelson/pairstore/internal/storage"
)

// Store persists documents as files below a root directory.
// Writes go to a temporary file that is renamed over the target, so a
// reader never sees a half-written document.
type Store struct {
	root string
	log  *slog.Logger
}

// Ensure Store implements Document.
var _ storage.Document = (*Store)(nil)

// New creates a file store rooted at root. The directory is created if needed.
func New(root string, log *slog.Logger) (*Store, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("creating root directory: %w", err)
	}
	if log == nil {
		log = slog.Default()
	}
	return &Store{root: root, log: log.With(slog.String("backend", "file"))}, nil
}

// Close is a no-op.
func (s *Store) Close() error {
	return nil
}

// ReadRaw reads the document. A missing file reads as empty.
func (s *Store) ReadRaw(ctx context.Context, locator string) ([]byte, error) {
	path, err := s.path(locator)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading document file: %w", err)
	}
	return data, nil
}

// WriteRaw replaces the document.
func (s *Store) WriteRaw(ctx context.Context, locator string, data []byte) error {
	path, err := s.path(locator)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating document directory: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".pairstore-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("setting file mode: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replacing document file: %w", err)
	}

	s.log.Debug("document written", slog.String("path", path), slog.Int("bytes", len(data)))
	return nil
}

// path resolves locator below the root and refuses to escape it.
func (s *Store) path(locator string) (string, error) {
	if locator == "" {
		return "", fmt.Errorf("empty locator")
	}
	clean := filepath.Clean(filepath.FromSlash(locator))
	if filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("locator %q escapes the root directory", locator)
	}
	return filepath.Join(s.root, clean), nil
}
