package domain

import "time"

// Pair is one domain/IP association.
// Domain is case-preserving; IP is a dotted-quad decimal string as written.
type Pair struct {
	Domain string `json:"domain"`
	IP     string `json:"ip"`
}

// Revision is a stored snapshot of a persisted document.
// Only backends that keep history produce revisions.
type Revision struct {
	ID        string    `json:"id" db:"id"`
	Locator   string    `json:"locator" db:"locator"`
	Version   int       `json:"version" db:"version"`
	Content   string    `json:"content" db:"content"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// CreatePairRequest is the request body for adding a pair.
type CreatePairRequest struct {
	Domain string `json:"domain"`
	IP     string `json:"ip"`
}

// LookupResponse is returned by domain and IP lookups.
type LookupResponse struct {
	Domain string `json:"domain"`
	IP     string `json:"ip"`
}

// DeleteResponse reports how many pairs a delete removed.
type DeleteResponse struct {
	Key     string `json:"key"`
	Removed int    `json:"removed"`
}

// ValidateResponse reports whether an IP passes IPv4 validation.
type ValidateResponse struct {
	IP    string `json:"ip"`
	Valid bool   `json:"valid"`
}
