// Package hashing provides deterministic content fingerprints for pipeline artifacts.
package hashing

import (
	"crypto/sha256"
	"encoding/hex"
)

// Text computes the SHA-256 hex digest of the exact UTF-8 bytes of s.
// No normalization is applied: equal strings always yield equal digests,
// and any byte difference yields a different digest. Used as the primary
// key for artifact lookup and as a change proxy for JD/resume text.
func Text(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

// ShortText returns the first n characters of the digest of s.
// Used to derive compact identifiers such as default role IDs.
func ShortText(s string, n int) string {
	h := Text(s)
	if n > len(h) {
		n = len(h)
	}
	return h[:n]
}
