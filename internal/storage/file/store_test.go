package file

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	root := t.TempDir()
	s, err := New(root, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatal(err)
	}
	return s, root
}

func TestMissingFileReadsEmpty(t *testing.T) {
	s, _ := newTestStore(t)

	data, err := s.ReadRaw(context.Background(), "addresses.json")
	if err != nil {
		t.Fatal(err)
	}
	if len(data) != 0 {
		t.Errorf("Expected empty document, got %q", data)
	}
}

func TestWriteThenRead(t *testing.T) {
	s, root := newTestStore(t)
	ctx := context.Background()

	if err := s.WriteRaw(ctx, "addresses.json", []byte(`{"addresses":[]}`)); err != nil {
		t.Fatal(err)
	}
	if err := s.WriteRaw(ctx, "addresses.json", []byte(`{"addresses":[{"domain":"a.com","ip":"10.0.0.1"}]}`)); err != nil {
		t.Fatal(err)
	}

	data, err := s.ReadRaw(ctx, "addresses.json")
	if err != nil {
		t.Fatal(err)
	}
	want := `{"addresses":[{"domain":"a.com","ip":"10.0.0.1"}]}`
	if string(data) != want {
		t.Errorf("Expected %s, got %s", want, data)
	}

	onDisk, err := os.ReadFile(filepath.Join(root, "addresses.json"))
	if err != nil {
		t.Fatal(err)
	}
	if string(onDisk) != want {
		t.Errorf("Expected file content %s, got %s", want, onDisk)
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("Expected only the document in root, got %d entries", len(entries))
	}
}

func TestLocatorEscape(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	for _, locator := range []string{"", "../outside.json", "/etc/passwd", "a/../../b.json"} {
		if _, err := s.ReadRaw(ctx, locator); err == nil {
			t.Errorf("Expected error reading %q", locator)
		}
		if err := s.WriteRaw(ctx, locator, []byte("x")); err == nil {
			t.Errorf("Expected error writing %q", locator)
		}
	}
}
