package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/bcnelson/pairstore/internal/domain"
	"github.com/bcnelson/pairstore/internal/validation"
)

// respondJSON writes a JSON response.
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.WriteHeader(status)
	if data != nil {
		enc := json.NewEncoder(w)
		enc.SetEscapeHTML(false)
		_ = enc.Encode(data)
	}
}

// handleError converts domain errors to HTTP errors. Server-side failures
// are logged; client errors are not.
func handleError(w http.ResponseWriter, log *slog.Logger, err error) {
	status, body := classify(err)

	var verr *validation.ValidationError
	if errors.As(err, &verr) {
		body.Field = verr.Field
		body.Message = verr.Message
		body.Details = map[string]any{"value": verr.Value}
	}

	if status >= http.StatusInternalServerError {
		log.Error("request failed", slog.String("code", body.Code), slog.Any("error", err))
	}
	respondJSON(w, status, &domain.StandardErrorResponse{Error: body})
}

// WriteError renders err the same way the handlers do. Middleware uses it
// so that every error body has the StandardErrorResponse shape.
func WriteError(w http.ResponseWriter, log *slog.Logger, err error) {
	handleError(w, log, err)
}

func classify(err error) (int, domain.StandardError) {
	switch {
	case errors.Is(err, domain.ErrEmptyDomain):
		return http.StatusBadRequest, domain.StandardError{Code: domain.ErrCodeEmptyDomain, Message: err.Error()}
	case errors.Is(err, domain.ErrInvalidIP):
		return http.StatusBadRequest, domain.StandardError{Code: domain.ErrCodeInvalidIP, Message: err.Error()}
	case errors.Is(err, domain.ErrInvalidIPFormat):
		return http.StatusBadRequest, domain.StandardError{Code: domain.ErrCodeInvalidIPFormat, Message: err.Error(), Field: "ip"}
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest, domain.StandardError{Code: domain.ErrCodeInvalidInput, Message: err.Error()}
	case errors.Is(err, domain.ErrDuplicateDomainOrIP):
		return http.StatusConflict, domain.StandardError{Code: domain.ErrCodeDuplicateDomainOrIP, Message: err.Error()}
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, domain.StandardError{Code: domain.ErrCodeResourceNotFound, Message: err.Error()}
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized, domain.StandardError{Code: domain.ErrCodeUnauthorized, Message: err.Error()}
	case errors.Is(err, domain.ErrNotSupported):
		return http.StatusNotImplemented, domain.StandardError{Code: domain.ErrCodeNotSupported, Message: err.Error()}
	case errors.Is(err, domain.ErrMalformedDocument):
		return http.StatusBadGateway, domain.StandardError{Code: domain.ErrCodeMalformedDocument, Message: "stored document is malformed"}
	case errors.Is(err, domain.ErrTransport):
		return http.StatusBadGateway, domain.StandardError{Code: domain.ErrCodeTransportError, Message: "document backend unavailable"}
	default:
		return http.StatusInternalServerError, domain.StandardError{Code: domain.ErrCodeInternalError, Message: "internal server error"}
	}
}

// decodeJSON decodes JSON from request body.
func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return domain.ErrInvalidInput
	}
	return nil
}
