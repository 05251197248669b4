// Package refresh implements the token check that gates manual
// re-generation requests.
//
// Tokens are never stored: each one is a pure function of the slug and
// the server secret, recomputed and compared on every request.
package refresh

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// Token derives the refresh token for a slug. Equal inputs always
// produce equal tokens.
func Token(slug, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(slug))
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify compares a presented token against the derived one in constant
// time.
func Verify(slug, secret, presented string) bool {
	expected := Token(slug, secret)
	return hmac.Equal([]byte(expected), []byte(presented))
}
