// Package codec provides the content primitives used by the provenance
// envelope: SHA-256 digests over raw file bytes and the base64 transport
// encoding of those bytes. Hashes are always lowercase hex; encoding is
// standard RFC 4648 base64 with padding.
package codec

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
)

// ErrMalformedEncoding indicates that a string presented as base64 content
// could not be decoded (wrong alphabet or invalid padding).
var ErrMalformedEncoding = errors.New("malformed base64 encoding")

// Hash returns the lowercase hex SHA-256 digest of data. It is defined for
// every byte sequence, including the empty one.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Encode returns the standard base64 encoding (with padding) of data.
func Encode(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}

// Decode is the inverse of Encode. Invalid input is reported as
// ErrMalformedEncoding rather than the underlying corrupt-input error, so
// callers can branch on the error kind with errors.Is.
func Decode(s string) ([]byte, error) {
	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedEncoding, err)
	}
	return data, nil
}
