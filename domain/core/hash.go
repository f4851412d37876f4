package core

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Hash represents a cryptographic hash
type Hash string

// NewHash creates a new hash from data
func NewHash(data []byte) Hash {
	sum := sha256.Sum256(data)
	return Hash(hex.EncodeToString(sum[:]))
}

// String returns the string representation
func (h Hash) String() string {
	return string(h)
}

// IsEmpty checks if the hash is empty
func (h Hash) IsEmpty() bool {
	return h == ""
}

// RowFingerprint hashes an ordered list of canonical cell keys. Keys are
// joined with a unit separator so ("a", "bc") and ("ab", "c") differ.
func RowFingerprint(keys []string) Hash {
	return NewHash([]byte(strings.Join(keys, "\x1f")))
}
