package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/bcnelson/pairstore/internal/config"
	"github.com/bcnelson/pairstore/internal/domain"
	"github.com/bcnelson/pairstore/internal/storage/file"
	"github.com/bcnelson/pairstore/internal/storage/memory"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestOpenDocumentFile(t *testing.T) {
	root := filepath.Join(t.TempDir(), "data")
	cfg := &config.Config{
		Store: config.StoreConfig{Backend: config.BackendFile, Document: "addresses.json"},
		File:  config.FileConfig{Root: root},
	}

	doc, err := OpenDocument(context.Background(), cfg, discard())
	if err != nil {
		t.Fatal(err)
	}
	defer doc.Close()

	if _, ok := doc.(*file.Store); !ok {
		t.Fatalf("Expected *file.Store, got %T", doc)
	}

	store := NewPairStore(cfg, doc, discard())
	if err := store.Add(context.Background(), "a.com", "10.0.0.1"); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(filepath.Join(root, "addresses.json"))
	if err != nil {
		t.Fatal(err)
	}
	if want := `{"addresses":[{"domain":"a.com","ip":"10.0.0.1"}]}`; string(data) != want {
		t.Errorf("Expected %s, got %s", want, data)
	}
}

func TestOpenDocumentMemory(t *testing.T) {
	cfg := &config.Config{
		Store: config.StoreConfig{Backend: config.BackendMemory, Document: "addresses.json"},
	}

	doc, err := OpenDocument(context.Background(), cfg, discard())
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := doc.(*memory.Store); !ok {
		t.Fatalf("Expected *memory.Store, got %T", doc)
	}
}

func TestOpenDocumentSQLite(t *testing.T) {
	cfg := &config.Config{
		Store:    config.StoreConfig{Backend: config.BackendSQL, Document: "addresses.json"},
		Database: config.DatabaseConfig{Driver: "sqlite3", DSN: filepath.Join(t.TempDir(), "nested", "pairstore.db")},
	}
	ctx := context.Background()

	doc, err := OpenDocument(ctx, cfg, discard())
	if err != nil {
		t.Fatal(err)
	}
	defer doc.Close()

	store := NewPairStore(cfg, doc, discard())
	if err := store.Add(ctx, "a.com", "10.0.0.1"); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Delete(ctx, "a.com"); err != nil {
		t.Fatal(err)
	}

	revisions, err := store.Revisions(ctx, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(revisions) != 2 {
		t.Fatalf("Expected 2 revisions, got %d", len(revisions))
	}
	if revisions[0].Content != `{"addresses":[]}` {
		t.Errorf("Expected newest revision first, got %s", revisions[0].Content)
	}
}

func TestOpenDocumentFailureReturnsNilDocument(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "not-a-dir")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg := &config.Config{
		Store: config.StoreConfig{Backend: config.BackendFile, Document: "addresses.json"},
		File:  config.FileConfig{Root: filepath.Join(blocker, "data")},
	}

	doc, err := OpenDocument(context.Background(), cfg, discard())
	if err == nil {
		t.Fatal("Expected error when the root cannot be created")
	}
	if doc != nil {
		t.Errorf("Expected nil Document on failure, got %T", doc)
	}
}

func TestOpenDocumentUnknownBackend(t *testing.T) {
	cfg := &config.Config{Store: config.StoreConfig{Backend: "ftp"}}

	if _, err := OpenDocument(context.Background(), cfg, discard()); err == nil {
		t.Error("Expected error for unknown backend")
	}
}

func TestNewPairStoreStrictDecode(t *testing.T) {
	mem := memory.New()
	mem.Seed("addresses.json", []byte(`{"addresses":{}}`))
	cfg := &config.Config{
		Store: config.StoreConfig{Backend: config.BackendMemory, Document: "addresses.json", StrictDecode: true},
	}

	store := NewPairStore(cfg, mem, discard())
	if _, err := store.List(context.Background()); !errors.Is(err, domain.ErrMalformedDocument) {
		t.Errorf("Expected ErrMalformedDocument, got %v", err)
	}
}
