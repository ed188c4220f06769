package sql

import (
	"context"
	"path/filepath"
	"testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New("sqlite3", filepath.Join(t.TempDir(), "pairstore.db"))
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestReadMissingDocument(t *testing.T) {
	s := newTestStore(t)

	data, err := s.ReadRaw(context.Background(), "addresses.json")
	if err != nil {
		t.Fatal(err)
	}
	if len(data) != 0 {
		t.Errorf("Expected empty document, got %q", data)
	}
}

func TestWriteReplacesAndRecordsRevisions(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	docs := []string{
		`{"addresses":[]}`,
		`{"addresses":[{"domain":"a.com","ip":"10.0.0.1"}]}`,
		`{"addresses":[]}`,
	}
	for _, doc := range docs {
		if err := s.WriteRaw(ctx, "addresses.json", []byte(doc)); err != nil {
			t.Fatal(err)
		}
	}

	data, err := s.ReadRaw(ctx, "addresses.json")
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != docs[2] {
		t.Errorf("Expected %s, got %s", docs[2], data)
	}

	revisions, err := s.ListRevisions(ctx, "addresses.json", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(revisions) != 3 {
		t.Fatalf("Expected 3 revisions, got %d", len(revisions))
	}
	for i, rev := range revisions {
		wantVersion := 3 - i
		if rev.Version != wantVersion {
			t.Errorf("Revision %d: expected version %d, got %d", i, wantVersion, rev.Version)
		}
		if rev.Content != docs[wantVersion-1] {
			t.Errorf("Revision %d: expected content %s, got %s", i, docs[wantVersion-1], rev.Content)
		}
		if rev.ID == "" {
			t.Errorf("Revision %d: expected an id", i)
		}
	}

	latest, err := s.ListRevisions(ctx, "addresses.json", 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(latest) != 1 || latest[0].Version != 3 {
		t.Errorf("Expected only version 3, got %v", latest)
	}
}

func TestLocatorsAreIndependent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.WriteRaw(ctx, "one.json", []byte("one")); err != nil {
		t.Fatal(err)
	}
	if err := s.WriteRaw(ctx, "two.json", []byte("two")); err != nil {
		t.Fatal(err)
	}

	data, err := s.ReadRaw(ctx, "one.json")
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "one" {
		t.Errorf("Expected one, got %s", data)
	}

	revisions, err := s.ListRevisions(ctx, "two.json", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(revisions) != 1 || revisions[0].Version != 1 {
		t.Errorf("Expected a single first revision for two.json, got %v", revisions)
	}
}
