// Package token issues the opaque session tokens. Tokens carry no decodable
// structure and are valid only by lookup against the store.
package token

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

const tokenBytes = 32

// Source produces opaque unique strings. It is an interface so tests can
// substitute a deterministic sequence.
type Source interface {
	NewToken() (string, error)
}

// RandomSource generates tokens from crypto/rand.
type RandomSource struct{}

func NewRandomSource() RandomSource {
	return RandomSource{}
}

// NewToken returns a 256-bit URL-safe opaque token.
func (RandomSource) NewToken() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random token bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
