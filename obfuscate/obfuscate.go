// Package obfuscate implements the reversible transform applied to booking
// session records before they are written to untrusted storage: byte-wise
// XOR against a cyclically repeated key, then base64 for safe storage in a
// text-only slot.
//
// This raises the bar against casual inspection and accidental edits. It is
// not encryption; tampering is caught by the integrity checksum, not here.
package obfuscate

import (
	"encoding/base64"
	"errors"
	"fmt"
)

// ErrUnreadable indicates the stored text is corrupt or foreign and cannot
// be decoded. Callers must treat this identically to "no session present".
var ErrUnreadable = errors.New("stored blob unreadable")

// Obfuscate XORs plaintext against the key and encodes the result as base64.
func Obfuscate(plaintext []byte, key []byte) string {
	return base64.StdEncoding.EncodeToString(xorKeystream(plaintext, key))
}

// Deobfuscate is the exact inverse of Obfuscate. A decode failure returns
// ErrUnreadable rather than the underlying base64 error. Decoding is strict:
// non-canonical trailing bits are rejected, so no two distinct stored texts
// decode to the same bytes.
func Deobfuscate(encoded string, key []byte) ([]byte, error) {
	raw, err := base64.StdEncoding.Strict().DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadable, err)
	}
	return xorKeystream(raw, key), nil
}

func xorKeystream(data []byte, key []byte) []byte {
	out := make([]byte, len(data))
	if len(key) == 0 {
		copy(out, data)
		return out
	}
	for i := range data {
		out[i] = data[i] ^ key[i%len(key)]
	}
	return out
}
