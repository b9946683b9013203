package token

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
)

// FingerprintLength is the number of hex characters Fingerprint returns.
const FingerprintLength = 12

// Fingerprint returns a short stable identifier for a token. The token
// cannot be recovered from it. An empty token has an empty fingerprint.
func Fingerprint(token string) string {
	if token == "" {
		return ""
	}
	h := sha256.Sum256([]byte(token))
	return hex.EncodeToString(h[:])[:FingerprintLength]
}

// Equal reports whether two tokens are identical in constant time.
func Equal(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

// GenerateBytes returns length random bytes from crypto/rand.
func GenerateBytes(length int) ([]byte, error) {
	b := make([]byte, length)
	if _, err := rand.Read(b); err != nil {
		return nil, err
	}
	return b, nil
}
