// Package otp generates and verifies step-up codes and carries the dispatch
// plumbing that hands them to a delivery channel.
package otp

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math/big"

	totplib "github.com/pquerna/otp/totp"
)

const codeDigits = 6

// GenerateCode returns a zero-padded numeric code of six digits.
func GenerateCode() (string, error) {
	max := big.NewInt(1)
	for i := 0; i < codeDigits; i++ {
		max.Mul(max, big.NewInt(10))
	}
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", fmt.Errorf("generate otp code: %w", err)
	}
	return fmt.Sprintf("%0*d", codeDigits, n), nil
}

// HashCode produces the stored form of a challenge code. Codes are never
// persisted in the clear.
func HashCode(code string) string {
	sum := sha256.Sum256([]byte(code))
	return hex.EncodeToString(sum[:])
}

// CodeMatches compares a submitted code against a stored hash in constant
// time.
func CodeMatches(submitted, storedHash string) bool {
	return hmac.Equal([]byte(HashCode(submitted)), []byte(storedHash))
}

// ValidateTOTP checks a submitted code against the user's TOTP secret.
func ValidateTOTP(code, secret string) bool {
	return totplib.Validate(code, secret)
}
