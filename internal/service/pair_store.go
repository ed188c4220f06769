package service

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/bcnelson/pairstore/internal/codec"
	"github.com/bcnelson/pairstore/internal/domain"
	"github.com/bcnelson/pairstore/internal/storage"
	"github.com/bcnelson/pairstore/internal/validation"
	"github.com/sasha-s/go-deadlock"
)

// PairStore runs domain/IP operations against one persisted document.
//
// Nothing is cached between calls: each operation reads the document once
// and, if it mutates, writes it back once. The read-modify-write cycle of a
// mutation holds an exclusive lock so that concurrent callers of the same
// PairStore cannot lose each other's changes. Other processes writing the
// same document are not coordinated with.
type PairStore struct {
	doc     storage.Document
	locator string
	codec   *codec.Codec
	log     *slog.Logger

	mu deadlock.RWMutex
}

// NewPairStore creates a PairStore for the document at locator.
func NewPairStore(doc storage.Document, locator string, c *codec.Codec, log *slog.Logger) *PairStore {
	if log == nil {
		log = slog.Default()
	}
	return &PairStore{
		doc:     doc,
		locator: locator,
		codec:   c,
		log:     log.With(slog.String("component", "pair_store"), slog.String("locator", locator)),
	}
}

// load reads and decodes the current document.
func (s *PairStore) load(ctx context.Context) ([]domain.Pair, error) {
	raw, err := s.doc.ReadRaw(ctx, s.locator)
	if err != nil {
		return nil, fmt.Errorf("reading document: %w: %w", domain.ErrTransport, err)
	}
	pairs, err := s.codec.Decode(raw)
	if err != nil {
		return nil, fmt.Errorf("decoding document: %w", err)
	}
	return pairs, nil
}

// save encodes pairs and writes the full document back.
func (s *PairStore) save(ctx context.Context, pairs []domain.Pair) error {
	raw, err := s.codec.Encode(pairs)
	if err != nil {
		return err
	}
	if err := s.doc.WriteRaw(ctx, s.locator, raw); err != nil {
		return fmt.Errorf("writing document: %w: %w", domain.ErrTransport, err)
	}
	s.log.Info("document updated", slog.Int("pairs", len(pairs)))
	return nil
}

// List returns every pair, sorted ascending by domain. The comparison is
// case-sensitive and equal domains keep their document order.
func (s *PairStore) List(ctx context.Context) ([]domain.Pair, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	pairs, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	slices.SortStableFunc(pairs, func(a, b domain.Pair) int {
		return strings.Compare(a.Domain, b.Domain)
	})
	return pairs, nil
}

// LookupIPByDomain returns the IP of the first pair whose domain matches
// name, ignoring case.
func (s *PairStore) LookupIPByDomain(ctx context.Context, name string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	pairs, err := s.load(ctx)
	if err != nil {
		return "", err
	}
	for _, p := range pairs {
		if strings.EqualFold(p.Domain, name) {
			return p.IP, nil
		}
	}
	return "", fmt.Errorf("domain %q: %w", name, domain.ErrNotFound)
}

// LookupDomainByIP returns the domain of the first pair whose IP equals ip
// once both are normalized. A query that cannot be normalized fails with
// domain.ErrInvalidIPFormat. Stored IPs that cannot be normalized never match.
func (s *PairStore) LookupDomainByIP(ctx context.Context, ip string) (string, error) {
	want, err := validation.NormalizeIP(ip)
	if err != nil {
		return "", err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	pairs, err := s.load(ctx)
	if err != nil {
		return "", err
	}
	for _, p := range pairs {
		got, err := validation.NormalizeIP(p.IP)
		if err != nil {
			s.log.Warn("skipping stored pair with unparsable IP",
				slog.String("domain", p.Domain),
				slog.String("ip", p.IP))
			continue
		}
		if got == want {
			return p.Domain, nil
		}
	}
	return "", fmt.Errorf("ip %q: %w", ip, domain.ErrNotFound)
}

// Add appends a new pair and persists the document.
//
// The domain must not be blank and the IP must pass ValidateIP. Both act as
// unique keys: a pair whose domain or IP is byte-for-byte equal to an
// existing one is rejected with domain.ErrDuplicateDomainOrIP. Rejected
// calls never write.
func (s *PairStore) Add(ctx context.Context, name, ip string) error {
	if err := validation.ValidatePair(name, ip); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	pairs, err := s.load(ctx)
	if err != nil {
		return err
	}
	for _, p := range pairs {
		if p.Domain == name || p.IP == ip {
			return fmt.Errorf("adding %s -> %s: %w", name, ip, domain.ErrDuplicateDomainOrIP)
		}
	}

	pairs = append(pairs, domain.Pair{Domain: name, IP: ip})
	return s.save(ctx, pairs)
}

// Delete removes every pair whose domain or IP equals key exactly and
// persists the result, even when nothing matched. It returns how many
// pairs were removed.
func (s *PairStore) Delete(ctx context.Context, key string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pairs, err := s.load(ctx)
	if err != nil {
		return 0, err
	}
	kept := slices.DeleteFunc(pairs, func(p domain.Pair) bool {
		return p.Domain == key || p.IP == key
	})
	removed := len(pairs) - len(kept)

	if err := s.save(ctx, kept); err != nil {
		return 0, err
	}
	return removed, nil
}

// Revisions returns up to limit earlier versions of the document, newest
// first, when the backend keeps history.
func (s *PairStore) Revisions(ctx context.Context, limit int) ([]*domain.Revision, error) {
	lister, ok := s.doc.(storage.RevisionLister)
	if !ok {
		return nil, domain.ErrNotSupported
	}
	revisions, err := lister.ListRevisions(ctx, s.locator, limit)
	if err != nil {
		return nil, fmt.Errorf("listing revisions: %w: %w", domain.ErrTransport, err)
	}
	return revisions, nil
}

// ValidateIP reports whether ip is a dotted-quad IPv4 address.
func (s *PairStore) ValidateIP(ip string) bool {
	return validation.ValidateIP(ip)
}
