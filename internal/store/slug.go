package store

import (
	"crypto/rand"
	"strconv"
	"strings"
	"time"
)

const (
	slugURLMaxLen   = 30
	slugRandomLen   = 4
	slugRandomChars = "abcdefghijklmnopqrstuvwxyz0123456789"
)

// GenerateSlug derives a unique slug from a URL: a sanitized URL stem
// truncated to 30 characters, a base36 timestamp, and 4 random
// alphanumerics. Uniqueness comes from time and randomness, never from
// the URL alone, so regenerating the same URL yields a new endpoint.
func GenerateSlug(url string) string {
	stem := sanitizeURL(url)
	if len(stem) > slugURLMaxLen {
		stem = strings.Trim(stem[:slugURLMaxLen], "-")
	}
	if stem == "" {
		stem = "page"
	}

	ts := strconv.FormatInt(time.Now().UnixMilli(), 36)
	return stem + "-" + ts + "-" + randomSuffix()
}

// sanitizeURL lowercases the URL, strips the scheme, and maps every
// non-alphanumeric run to a single dash.
func sanitizeURL(url string) string {
	s := strings.ToLower(url)
	if i := strings.Index(s, "://"); i >= 0 {
		s = s[i+3:]
	}

	var b strings.Builder
	b.Grow(len(s))
	lastDash := true
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			lastDash = false
		} else if !lastDash {
			b.WriteByte('-')
			lastDash = true
		}
	}
	return strings.Trim(b.String(), "-")
}

func randomSuffix() string {
	buf := make([]byte, slugRandomLen)
	if _, err := rand.Read(buf); err != nil {
		// Fall back to a time-derived suffix.
		s := strconv.FormatInt(time.Now().UnixNano(), 36)
		return s[len(s)-slugRandomLen:]
	}
	for i, b := range buf {
		buf[i] = slugRandomChars[int(b)%len(slugRandomChars)]
	}
	return string(buf)
}
