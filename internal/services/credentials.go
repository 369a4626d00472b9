package services

import "golang.org/x/crypto/bcrypt"

// CredentialVerifier checks a plaintext password against a stored hash.
// The hashing scheme is the host application's choice; the authority only
// consumes the valid/invalid outcome.
type CredentialVerifier interface {
	Verify(hashedPassword, password string) bool
}

// BcryptVerifier is the default CredentialVerifier.
type BcryptVerifier struct{}

func (BcryptVerifier) Verify(hashedPassword, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password)) == nil
}
