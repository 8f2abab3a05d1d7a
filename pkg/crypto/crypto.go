package crypto

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
)

func GenerateRandomString() (string, error) {
	b := make([]byte, 32)
	_, err := rand.Read(b)
	if err != nil {
		return "", err
	}

	return base64.StdEncoding.EncodeToString(b), nil
}

// Fingerprint returns the first 16 hex characters of the SHA-256 of secret.
// It identifies a secret in logs without revealing it.
func Fingerprint(secret string) string {
	if secret == "" {
		return ""
	}

	hashed := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(hashed[:])[:16]
}

// Equal compares two secrets in constant time. An empty expected value never
// matches.
func Equal(given, expected string) bool {
	if expected == "" {
		return false
	}

	return subtle.ConstantTimeCompare([]byte(given), []byte(expected)) == 1
}
