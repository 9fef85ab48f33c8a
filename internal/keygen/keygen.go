// Package keygen generates identity keys for new records.
package keygen

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"
	"regexp"
)

// Key format: {prefix}{10 alphanumerics}
// Example: u_7a9X3kQ2mB, app_4f8D2e1b9C
const (
	KeySuffixLen = 10
	keyAlphabet  = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

var suffixRegex = regexp.MustCompile(`^[a-zA-Z0-9]{10}$`)

// Generator produces prefixed random keys from a randomness source.
type Generator struct {
	reader io.Reader
	max    *big.Int
}

// New returns a Generator reading from r.
// A nil reader selects crypto/rand.
func New(r io.Reader) *Generator {
	if r == nil {
		r = rand.Reader
	}
	return &Generator{
		reader: r,
		max:    big.NewInt(int64(len(keyAlphabet))),
	}
}

// Default returns a Generator backed by crypto/rand.
func Default() *Generator {
	return New(nil)
}

// New returns prefix followed by KeySuffixLen random alphanumeric characters.
func (g *Generator) New(prefix string) (string, error) {
	b := make([]byte, KeySuffixLen)
	for i := range b {
		n, err := rand.Int(g.reader, g.max)
		if err != nil {
			return "", fmt.Errorf("generate key: %w", err)
		}
		b[i] = keyAlphabet[n.Int64()]
	}
	return prefix + string(b), nil
}

// HasFormat reports whether key is prefix followed by a well-formed suffix.
func HasFormat(key, prefix string) bool {
	if len(key) <= len(prefix) || key[:len(prefix)] != prefix {
		return false
	}
	return suffixRegex.MatchString(key[len(prefix):])
}
