package memory

import (
	"context"
	"sync"

	"github.com/bcnelson/pairstore/internal/storage"
)

// Store implements storage.Document in memory.
// It records how often each locator was read and written, and can be told
// to fail reads or writes, which makes it the backend of choice for tests.
type Store struct {
	mu     sync.RWMutex
	docs   map[string][]byte
	reads  map[string]int
	writes map[string]int

	readErr  error
	writeErr error
}

// Ensure Store implements Document.
var _ storage.Document = (*Store)(nil)

// New creates a new in-memory store.
func New() *Store {
	return &Store{
		docs:   make(map[string][]byte),
		reads:  make(map[string]int),
		writes: make(map[string]int),
	}
}

// Close is a no-op.
func (s *Store) Close() error {
	return nil
}

// ReadRaw returns a copy of the stored bytes.
func (s *Store) ReadRaw(ctx context.Context, locator string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.reads[locator]++
	if s.readErr != nil {
		return nil, s.readErr
	}
	return clone(s.docs[locator]), nil
}

// WriteRaw replaces the stored bytes.
func (s *Store) WriteRaw(ctx context.Context, locator string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	s.writes[locator]++
	if s.writeErr != nil {
		return s.writeErr
	}
	s.docs[locator] = clone(data)
	return nil
}

// Seed sets the document content without counting a write.
func (s *Store) Seed(locator string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[locator] = clone(data)
}

// Content returns the document content without counting a read.
func (s *Store) Content(locator string) []byte {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clone(s.docs[locator])
}

// Reads returns how many times locator was read.
func (s *Store) Reads(locator string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.reads[locator]
}

// Writes returns how many times locator was written, failed writes included.
func (s *Store) Writes(locator string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.writes[locator]
}

// FailReads makes every subsequent read return err. Pass nil to clear.
func (s *Store) FailReads(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.readErr = err
}

// FailWrites makes every subsequent write return err. Pass nil to clear.
func (s *Store) FailWrites(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writeErr = err
}

func clone(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
