package domain

import "errors"

// Common errors used throughout the application.
var (
	ErrNotFound            = errors.New("not found")
	ErrEmptyDomain         = errors.New("domain must not be empty")
	ErrInvalidIP           = errors.New("invalid IPv4 address")
	ErrDuplicateDomainOrIP = errors.New("domain or IP already exists")
	ErrInvalidIPFormat     = errors.New("invalid IP format")
	ErrTransport           = errors.New("transport error")
	ErrMalformedDocument   = errors.New("malformed document")
	ErrMalformedEntry      = errors.New("malformed entry")
	ErrInvalidInput        = errors.New("invalid input")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrNotSupported        = errors.New("not supported by backend")
)

// Error codes for standardized API error responses.
const (
	ErrCodeResourceNotFound    = "RESOURCE_NOT_FOUND"
	ErrCodeEmptyDomain         = "EMPTY_DOMAIN"
	ErrCodeInvalidIP           = "INVALID_IP"
	ErrCodeDuplicateDomainOrIP = "DUPLICATE_DOMAIN_OR_IP"
	ErrCodeInvalidIPFormat     = "INVALID_IP_FORMAT"
	ErrCodeInvalidInput        = "INVALID_INPUT"
	ErrCodeUnauthorized        = "UNAUTHORIZED"
	ErrCodeTransportError      = "TRANSPORT_ERROR"
	ErrCodeMalformedDocument   = "MALFORMED_DOCUMENT"
	ErrCodeNotSupported        = "NOT_SUPPORTED"
	ErrCodeInternalError       = "INTERNAL_ERROR"
)

// StandardError represents a standardized error response from the API.
type StandardError struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Field   string         `json:"field,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

// StandardErrorResponse wraps a StandardError for JSON responses.
type StandardErrorResponse struct {
	Error StandardError `json:"error"`
}
