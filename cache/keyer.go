package cache

import (
	"crypto/sha256"
	"encoding/hex"
)

// Keyer derives a content fingerprint from input text.
//
// Contract:
// - Determinism: the same text must always produce the same fingerprint.
// - Concurrency: implementations must be safe for concurrent use.
// - Collisions: a weak scheme may map distinct texts to one fingerprint and
//   produce stale hits. The cache does not guard against this.
type Keyer interface {
	Key(text string) string
}

// DefaultKeyer fingerprints text with SHA-256.
type DefaultKeyer struct{}

// NewDefaultKeyer creates a new default keyer.
func NewDefaultKeyer() *DefaultKeyer {
	return &DefaultKeyer{}
}

// Key returns the lowercase hex SHA-256 digest of text.
func (k *DefaultKeyer) Key(text string) string {
	return Fingerprint(text)
}

// Fingerprint returns the lowercase hex SHA-256 digest of text.
func Fingerprint(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// KeyerFunc adapts an ordinary function to the Keyer interface.
type KeyerFunc func(text string) string

// Key calls f(text).
func (f KeyerFunc) Key(text string) string {
	return f(text)
}

var (
	_ Keyer = (*DefaultKeyer)(nil)
	_ Keyer = KeyerFunc(nil)
)
