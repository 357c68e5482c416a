package token

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// New generates a single-use token: 32 cryptographically random bytes
// rendered as a 64-character hex string. The plaintext goes into the
// outgoing email; only Hash(token) is persisted.
func New() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// Hash returns the hex-encoded SHA-256 digest of a token. Deterministic on
// purpose: verification recomputes the digest of the presented plaintext and
// matches it against the stored value.
func Hash(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
