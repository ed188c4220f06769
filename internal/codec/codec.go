// Package codec converts between the persisted address document and an
// ordered slice of pairs.
//
// The document shape is fixed:
//
//	{"addresses":[{"domain":"D","ip":"I"},...]}
//
// Decoding is best-effort. An empty document, or one that never mentions
// "addresses", holds no data yet. A malformed entry is logged and dropped
// without affecting the rest of the array.
package codec

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/bcnelson/pairstore/internal/domain"
)

const addressesField = "addresses"

// document is the wire shape written by Encode.
type document struct {
	Addresses []domain.Pair `json:"addresses"`
}

// entry mirrors one array element. Pointers distinguish a missing field
// from an empty string.
type entry struct {
	Domain *string `json:"domain"`
	IP     *string `json:"ip"`
}

// Codec encodes and decodes address documents.
type Codec struct {
	log    *slog.Logger
	strict bool
}

// New creates a Codec. In strict mode a structurally malformed document is
// reported as domain.ErrMalformedDocument instead of decoding to no pairs.
func New(log *slog.Logger, strict bool) *Codec {
	if log == nil {
		log = slog.Default()
	}
	return &Codec{log: log.With(slog.String("component", "codec")), strict: strict}
}

// Decode parses raw into pairs, preserving document order.
func (c *Codec) Decode(raw []byte) ([]domain.Pair, error) {
	pairs := []domain.Pair{}

	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || !bytes.Contains(trimmed, []byte(addressesField)) {
		return pairs, nil
	}

	var top map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &top); err != nil {
		return c.malformed(pairs, "document is not a JSON object", err)
	}
	field, ok := top[addressesField]
	if !ok {
		return c.malformed(pairs, "document has no addresses field", nil)
	}

	var elems []json.RawMessage
	if err := json.Unmarshal(field, &elems); err != nil || elems == nil {
		return c.malformed(pairs, "addresses is not an array", err)
	}

	for i, elem := range elems {
		pair, err := decodeEntry(elem)
		if err != nil {
			c.log.Warn("skipping malformed entry",
				slog.Int("index", i),
				slog.String("entry", string(elem)),
				slog.Any("error", err))
			continue
		}
		pairs = append(pairs, pair)
	}
	return pairs, nil
}

func decodeEntry(elem json.RawMessage) (domain.Pair, error) {
	var e entry
	if err := json.Unmarshal(elem, &e); err != nil {
		return domain.Pair{}, fmt.Errorf("%w: %v", domain.ErrMalformedEntry, err)
	}
	if e.Domain == nil || e.IP == nil {
		return domain.Pair{}, fmt.Errorf("%w: domain and ip are required", domain.ErrMalformedEntry)
	}
	return domain.Pair{Domain: *e.Domain, IP: *e.IP}, nil
}

func (c *Codec) malformed(pairs []domain.Pair, reason string, cause error) ([]domain.Pair, error) {
	if c.strict {
		if cause != nil {
			return nil, fmt.Errorf("%w: %s: %v", domain.ErrMalformedDocument, reason, cause)
		}
		return nil, fmt.Errorf("%w: %s", domain.ErrMalformedDocument, reason)
	}
	c.log.Warn("treating malformed document as empty",
		slog.String("reason", reason),
		slog.Any("error", cause))
	return pairs, nil
}

// Encode serializes pairs in order. An empty or nil slice encodes as
// {"addresses":[]}.
func (c *Codec) Encode(pairs []domain.Pair) ([]byte, error) {
	doc := document{Addresses: pairs}
	if doc.Addresses == nil {
		doc.Addresses = []domain.Pair{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("encoding document: %w", err)
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}
