// Package integrity computes and verifies the keyed checksum carried by
// persisted booking session records. The checksum detects tampering with a
// record held in untrusted storage; it makes no attempt to hide the content.
package integrity

import (
	"crypto/hmac"
	"crypto/sha256"
	"fmt"

	"github.com/amberrentals/bookingcore/internal/util"
)

// macInfo domain-separates the MAC key from any other use of the
// environment key material.
var macInfo = []byte("booking:session:mac:v1")

// Checksum returns the hex-encoded HMAC-SHA-256 tag over the canonical
// serialization of a record (which must not include the checksum field).
// The MAC key is expanded from the environment key via HKDF.
func Checksum(payload []byte, key []byte) (string, error) {
	macKey, err := util.HKDF(key, nil, macInfo)
	if err != nil {
		return "", fmt.Errorf("deriving mac key: %w", err)
	}
	defer util.WipeBytes(macKey)

	mac := hmac.New(sha256.New, macKey)
	mac.Write(payload)
	return util.HexEncode(mac.Sum(nil)), nil
}

// Verify reports whether tag is a valid checksum for payload under key.
// The comparison is constant-time. Any derivation or decoding failure is
// reported as a plain mismatch; callers treat both the same way.
func Verify(payload []byte, key []byte, tag string) bool {
	expected, err := Checksum(payload, key)
	if err != nil {
		return false
	}
	got, err := util.HexDecode(tag)
	if err != nil {
		return false
	}
	want, err := util.HexDecode(expected)
	if err != nil {
		return false
	}
	return hmac.Equal(want, got)
}
