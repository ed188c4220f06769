package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/bcnelson/pairstore/internal/domain"
	"github.com/go-chi/chi/v5"
)

// PairService is the operation surface the handlers call.
type PairService interface {
	List(ctx context.Context) ([]domain.Pair, error)
	LookupIPByDomain(ctx context.Context, name string) (string, error)
	LookupDomainByIP(ctx context.Context, ip string) (string, error)
	Add(ctx context.Context, name, ip string) error
	Delete(ctx context.Context, key string) (int, error)
	Revisions(ctx context.Context, limit int) ([]*domain.Revision, error)
	ValidateIP(ip string) bool
}

// PairHandler handles pair endpoints.
type PairHandler struct {
	store PairService
	log   *slog.Logger
}

// NewPairHandler creates a new PairHandler.
func NewPairHandler(store PairService, log *slog.Logger) *PairHandler {
	if log == nil {
		log = slog.Default()
	}
	return &PairHandler{store: store, log: log}
}

// List lists all pairs sorted by domain.
func (h *PairHandler) List(w http.ResponseWriter, r *http.Request) {
	pairs, err := h.store.List(r.Context())
	if err != nil {
		handleError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, pairs)
}

// Create adds a new pair.
func (h *PairHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreatePairRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, h.log, err)
		return
	}

	if err := h.store.Add(r.Context(), req.Domain, req.IP); err != nil {
		handleError(w, h.log, err)
		return
	}

	h.log.Info("pair added", slog.String("domain", req.Domain), slog.String("ip", req.IP))
	respondJSON(w, http.StatusCreated, &domain.Pair{Domain: req.Domain, IP: req.IP})
}

// Delete removes every pair whose domain or IP equals the key.
func (h *PairHandler) Delete(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")

	removed, err := h.store.Delete(r.Context(), key)
	if err != nil {
		handleError(w, h.log, err)
		return
	}

	h.log.Info("pairs deleted", slog.String("key", key), slog.Int("removed", removed))
	respondJSON(w, http.StatusOK, &domain.DeleteResponse{Key: key, Removed: removed})
}

// LookupByDomain returns the pair for a domain, ignoring case.
func (h *PairHandler) LookupByDomain(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "domain")

	ip, err := h.store.LookupIPByDomain(r.Context(), name)
	if err != nil {
		handleError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, &domain.LookupResponse{Domain: name, IP: ip})
}

// LookupByIP returns the pair for an IP, comparing normalized forms.
func (h *PairHandler) LookupByIP(w http.ResponseWriter, r *http.Request) {
	ip := chi.URLParam(r, "ip")

	name, err := h.store.LookupDomainByIP(r.Context(), ip)
	if err != nil {
		handleError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, &domain.LookupResponse{Domain: name, IP: ip})
}

// Validate reports whether an IP is a valid IPv4 address.
func (h *PairHandler) Validate(w http.ResponseWriter, r *http.Request) {
	ip := chi.URLParam(r, "ip")
	respondJSON(w, http.StatusOK, &domain.ValidateResponse{IP: ip, Valid: h.store.ValidateIP(ip)})
}

// Revisions lists earlier versions of the document on backends that keep
// history. ?limit=N caps the result.
func (h *PairHandler) Revisions(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			handleError(w, h.log, domain.ErrInvalidInput)
			return
		}
		limit = n
	}

	revisions, err := h.store.Revisions(r.Context(), limit)
	if err != nil {
		handleError(w, h.log, err)
		return
	}
	if revisions == nil {
		revisions = []*domain.Revision{}
	}
	respondJSON(w, http.StatusOK, revisions)
}
