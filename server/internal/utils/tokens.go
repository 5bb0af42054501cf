package utils

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"
)

const (
	requestIDBytes     = 12
	sessionSecretBytes = 32
	// MaxRequestIDLength bounds ids accepted from upstream proxies.
	MaxRequestIDLength = 64
)

func randomBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := io.ReadFull(rand.Reader, b); err != nil {
		return nil, fmt.Errorf("read %d random bytes: %w", n, err)
	}
	return b, nil
}

// NewRequestID returns a 16 character URL-safe id for request logging.
func NewRequestID() (string, error) {
	b, err := randomBytes(requestIDBytes)
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// NewSessionSecret returns key material for the cookie store. The server
// falls back to it when no session secret is configured.
func NewSessionSecret() ([]byte, error) {
	return randomBytes(sessionSecretBytes)
}

// ValidRequestID reports whether an id supplied in X-Request-ID can be
// reused as is. Only URL-safe characters are accepted so the id is safe to
// echo into headers and logs.
func ValidRequestID(id string) bool {
	if id == "" || len(id) > MaxRequestIDLength {
		return false
	}
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '-' || r == '_' || r == '.':
		default:
			return false
		}
	}
	return true
}
