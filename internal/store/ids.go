package store

import (
	"crypto/rand"
	"encoding/base32"
	"strings"
)

// NewID returns prefix-<suffix> where suffix is 8 chars of base32
// (lowercase, no padding); ~40 bits of space, plenty for one outline.
func NewID(prefix string) (string, error) {
	var b [5]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", err
	}
	enc := base32.StdEncoding.WithPadding(base32.NoPadding)
	suffix := strings.ToLower(enc.EncodeToString(b[:]))
	return prefix + "-" + suffix, nil
}
