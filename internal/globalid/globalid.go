// Package globalid encodes and decodes opaque, type-tagged object identifiers.
//
// An identifier is the standard base64 encoding of "<TypeName>:<key>".
// For example "VXNlck5vZGU6dV9hYmMxMjM=" decodes to ("UserNode", "u_abc123").
package globalid

import (
	"encoding/base64"
	"errors"
	"strings"
	"unicode/utf8"
)

const delimiter = ":"

// ErrInvalidFormat indicates the identifier is not a valid global ID.
var ErrInvalidFormat = errors.New("invalid global ID format")

// Encode builds the opaque identifier for a record key of the given type.
func Encode(typeName, key string) string {
	return base64.StdEncoding.EncodeToString([]byte(typeName + delimiter + key))
}

// Decode splits an opaque identifier into its type name and record key.
// Only the first delimiter separates the two parts.
func Decode(id string) (typeName, key string, err error) {
	data, err := base64.StdEncoding.DecodeString(id)
	if err != nil {
		return "", "", ErrInvalidFormat
	}
	if !utf8.Valid(data) {
		return "", "", ErrInvalidFormat
	}

	typeName, key, ok := strings.Cut(string(data), delimiter)
	if !ok {
		return "", "", ErrInvalidFormat
	}

	return typeName, key, nil
}
