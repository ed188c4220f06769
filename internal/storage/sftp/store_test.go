package sftp

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"testing"

	"github.com/bcnelson/pairstore/internal/codec"
	"github.com/bcnelson/pairstore/internal/domain"
	"github.com/bcnelson/pairstore/internal/service"
	"github.com/bcnelson/pairstore/internal/storage"
	"github.com/pkg/sftp"
)

// newTestStore serves an in-memory SFTP filesystem over a pipe.
func newTestStore(t *testing.T) *Store {
	t.Helper()

	serverConn, clientConn := net.Pipe()
	server := sftp.NewRequestServer(serverConn, sftp.InMemHandler())
	go func() { _ = server.Serve() }()

	client, err := sftp.NewClientPipe(clientConn, clientConn)
	if err != nil {
		t.Fatalf("Failed to start sftp client: %v", err)
	}

	s := NewFromClient(client, slog.New(slog.NewTextHandler(io.Discard, nil)))
	t.Cleanup(func() {
		_ = s.Close()
		_ = server.Close()
	})
	return s
}

func TestMissingRemoteFileReadsEmpty(t *testing.T) {
	s := newTestStore(t)

	data, err := s.ReadRaw(context.Background(), "/addresses.json")
	if err != nil {
		t.Fatal(err)
	}
	if len(data) != 0 {
		t.Errorf("Expected empty document, got %q", data)
	}
}

func TestUploadOverwrites(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	long := `{"addresses":[{"domain":"first.domain","ip":"192.168.0.1"},{"domain":"second.domain","ip":"192.168.0.2"}]}`
	short := `{"addresses":[]}`

	if err := s.WriteRaw(ctx, "/addresses.json", []byte(long)); err != nil {
		t.Fatal(err)
	}
	if err := s.WriteRaw(ctx, "/addresses.json", []byte(short)); err != nil {
		t.Fatal(err)
	}

	data, err := s.ReadRaw(ctx, "/addresses.json")
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != short {
		t.Errorf("Expected %s, got %s", short, data)
	}
}

func TestHostKeyCallbackRequiresKnownHosts(t *testing.T) {
	if _, err := hostKeyCallback(Options{}); err == nil {
		t.Error("Expected an error without known_hosts or the insecure switch")
	}
	if _, err := hostKeyCallback(Options{InsecureIgnoreHostKey: true}); err != nil {
		t.Errorf("Expected insecure switch to be accepted, got %v", err)
	}
	if _, err := hostKeyCallback(Options{KnownHostsFile: "/nonexistent/known_hosts"}); err == nil {
		t.Error("Expected an error for a missing known_hosts file")
	}
}

func TestReadAtSizeLimit(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	exact := bytes.Repeat([]byte("a"), storage.MaxDocumentSize)
	if err := s.WriteRaw(ctx, "/exact.json", exact); err != nil {
		t.Fatal(err)
	}
	data, err := s.ReadRaw(ctx, "/exact.json")
	if err != nil {
		t.Fatalf("Expected a document of exactly the limit to be read, got %v", err)
	}
	if len(data) != storage.MaxDocumentSize {
		t.Errorf("Expected %d bytes, got %d", storage.MaxDocumentSize, len(data))
	}

	over := append(exact, 'b')
	if err := s.WriteRaw(ctx, "/over.json", over); err != nil {
		t.Fatal(err)
	}
	if _, err := s.ReadRaw(ctx, "/over.json"); !errors.Is(err, storage.ErrDocumentTooLarge) {
		t.Errorf("Expected ErrDocumentTooLarge, got %v", err)
	}
}

func TestOversizedDocumentIsNeverOverwritten(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	c := codec.New(log, false)

	pairs := make([]domain.Pair, 0, 25000)
	for i := 0; i < 25000; i++ {
		pairs = append(pairs, domain.Pair{
			Domain: fmt.Sprintf("host%05d.example", i),
			IP:     fmt.Sprintf("10.%d.%d.%d", (i>>16)&255, (i>>8)&255, i&255),
		})
	}
	raw, err := c.Encode(pairs)
	if err != nil {
		t.Fatal(err)
	}
	if len(raw) <= storage.MaxDocumentSize {
		t.Fatalf("Expected document above the limit, got %d bytes", len(raw))
	}
	if err := s.WriteRaw(ctx, "/addresses.json", raw); err != nil {
		t.Fatal(err)
	}

	store := service.NewPairStore(s, "/addresses.json", c, log)
	if _, err := store.List(ctx); !errors.Is(err, domain.ErrTransport) {
		t.Errorf("List: expected transport error, got %v", err)
	}
	if err := store.Add(ctx, "new.com", "172.16.0.1"); !errors.Is(err, domain.ErrTransport) {
		t.Errorf("Add: expected transport error, got %v", err)
	}
	if _, err := store.Delete(ctx, "host00001.example"); !errors.Is(err, domain.ErrTransport) {
		t.Errorf("Delete: expected transport error, got %v", err)
	}

	f, err := s.client.Open("/addresses.json")
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	stored, err := io.ReadAll(f)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(stored, raw) {
		t.Errorf("Expected remote document untouched (%d bytes), got %d bytes", len(raw), len(stored))
	}
}
