// Package fingerprint derives the stable identifiers used for intake items and signals.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Size is the number of hex characters in every fingerprint.
const Size = 32

const separator = "\x1f"

// Of hashes the ordered parts with SHA-256 and returns the first Size hex characters.
// Parts are joined with a unit separator so ("ab", "c") and ("a", "bc") never collide.
func Of(parts ...string) string {
	sum := sha256.Sum256([]byte(strings.Join(parts, separator)))
	return hex.EncodeToString(sum[:])[:Size]
}

// Item returns the identifier shared by an intake item and the signal derived from it.
// The link is preferred; the title stands in when a source gives no link.
func Item(link, title, sector string) string {
	key := strings.TrimSpace(link)
	if key == "" {
		key = strings.TrimSpace(title)
	}
	return Of(key, strings.ToUpper(strings.TrimSpace(sector)))
}

// URL returns the hash of a source URL.
func URL(url string) string {
	return Of(strings.TrimSpace(url))
}

// Body returns the hash of the first 500 characters of a summary.
func Body(summary string) string {
	r := []rune(summary)
	if len(r) > 500 {
		r = r[:500]
	}
	return Of(string(r))
}
