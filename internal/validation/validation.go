// Package validation provides the input rules applied to domain/IP pairs.
// IPv4 validation reproduces a per-octet digit grammar that tolerates
// leading zeros, so "010.0.0.1" and "00.0.0.0" are accepted.
package validation

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/bcnelson/pairstore/internal/domain"
)

const octet = `(25[0-5]|2[0-4][0-9]|[01]?[0-9][0-9]?)`

var ipv4Pattern = regexp.MustCompile(`^` + octet + `\.` + octet + `\.` + octet + `\.` + octet + `$`)

// ValidateIP reports whether ip is four dot-separated decimal octets,
// each 1-3 digits with a value of 0-255.
func ValidateIP(ip string) bool {
	return ipv4Pattern.MatchString(ip)
}

// NormalizeIP parses each dot-separated component as an unsigned decimal
// integer and joins them back without leading zeros, so that
// "192.168.000.001" becomes "192.168.0.1". The empty string normalizes to
// itself.
func NormalizeIP(ip string) (string, error) {
	if ip == "" {
		return ip, nil
	}
	parts := strings.Split(ip, ".")
	for i, part := range parts {
		n, err := strconv.ParseUint(part, 10, 32)
		if err != nil {
			return "", fmt.Errorf("%w: component %q of %q", domain.ErrInvalidIPFormat, part, ip)
		}
		parts[i] = strconv.FormatUint(n, 10)
	}
	return strings.Join(parts, "."), nil
}

// ValidateDomain rejects empty and all-whitespace domains, and domains that
// are not valid UTF-8 since they could not be stored byte-for-byte.
func ValidateDomain(name string) error {
	if strings.TrimSpace(name) == "" {
		return NewValidationError("domain", name, "domain must not be empty", domain.ErrEmptyDomain)
	}
	if !utf8.ValidString(name) {
		return NewValidationError("domain", name, "domain must be valid UTF-8", domain.ErrInvalidInput)
	}
	return nil
}

// ValidatePair checks a candidate pair before it is added.
// The domain rule is checked before the IP rule.
func ValidatePair(name, ip string) error {
	if err := ValidateDomain(name); err != nil {
		return err
	}
	if !ValidateIP(ip) {
		return NewValidationError("ip", ip, "must be a valid IPv4 address", domain.ErrInvalidIP)
	}
	return nil
}
