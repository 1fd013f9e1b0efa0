package shortener

import (
	"net/url"
	"strings"
)

const maxURLLength = 2048

// ValidateURL checks that raw is an absolute http or https URL with a host
// and returns it trimmed of surrounding whitespace.
func ValidateURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || len(raw) > maxURLLength {
		return "", ErrInvalidURL
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", ErrInvalidURL
	}

	switch strings.ToLower(u.Scheme) {
	case "http", "https":
	default:
		return "", ErrInvalidURL
	}

	if u.Host == "" || u.Hostname() == "" {
		return "", ErrInvalidURL
	}

	return raw, nil
}
