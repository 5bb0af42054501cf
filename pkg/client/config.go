package client

import (
	"fmt"
	"strings"
	"time"
)

const (
	DefaultBaseURL = "http://localhost:5050/api"
	DefaultTimeout = 15 * time.Second
)

// NicknameMode selects how SetNickname reaches the backend.
type NicknameMode string

const (
	// NicknameUpdate renames the current session in place.
	NicknameUpdate NicknameMode = "update"
	// NicknameRecreate creates a fresh session carrying the nickname and
	// abandons the old identifier along with its progress.
	NicknameRecreate NicknameMode = "recreate"
)

// ParseNicknameMode accepts "update", "recreate" or the empty string.
func ParseNicknameMode(s string) (NicknameMode, error) {
	switch NicknameMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", NicknameUpdate:
		return NicknameUpdate, nil
	case NicknameRecreate:
		return NicknameRecreate, nil
	default:
		return "", fmt.Errorf("%w: unknown nickname mode %q", ErrValidation, s)
	}
}

// Config configures a Client. Zero values take the defaults.
type Config struct {
	BaseURL      string
	Timeout      time.Duration
	NicknameMode NicknameMode
}

func (c Config) withDefaults() Config {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.NicknameMode == "" {
		c.NicknameMode = NicknameUpdate
	}
	return c
}
