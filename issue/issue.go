// Package issue generates the identifiers handed out by the booking flow:
// session ids, human-readable booking references, and magic-link tokens.
//
// Everything here draws from crypto/rand. A failing random source is a
// startup-class error and is always propagated; there is no fallback to a
// weaker generator.
package issue

import (
	"crypto/sha256"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/amberrentals/bookingcore/internal/util"
)

const (
	// ReferencePrefix starts every booking reference.
	ReferencePrefix = "AR"
	// referenceCodeLen is the number of random characters in a reference.
	referenceCodeLen = 4
	// TokenBytes is the entropy of a magic-link token.
	TokenBytes = 32
	// MagicLinkGrace is how long a magic link stays valid.
	MagicLinkGrace = 24 * time.Hour
)

// NewSessionID returns a random UUID for a fresh booking session.
func NewSessionID() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("generating session id: %w", err)
	}
	return id.String(), nil
}

// NewBookingReference returns a reference of the form AR-<year>-<code>.
// The code is drawn from an alphabet without 0/O and 1/I; references are
// read back to customers over the phone. They also gate the anonymous
// tracking page, so the draw must be from crypto/rand.
func NewBookingReference() (string, error) {
	code, err := util.ReferenceChars(referenceCodeLen)
	if err != nil {
		return "", fmt.Errorf("generating booking reference: %w", err)
	}
	return fmt.Sprintf("%s-%d-%s", ReferencePrefix, time.Now().Year(), code), nil
}

// NewMagicToken returns a fresh high-entropy token as lowercase hex. The raw
// value is delivered to its holder exactly once; only HashToken output is
// ever stored.
func NewMagicToken() (string, error) {
	b, err := util.RandomBytes(TokenBytes)
	if err != nil {
		return "", fmt.Errorf("generating magic token: %w", err)
	}
	return util.HexEncode(b), nil
}

// HashToken returns the hex-encoded SHA-256 digest of a raw token.
func HashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return util.HexEncode(sum[:])
}

// ComputeExpiry returns the instant a token issued at ref stops working.
func ComputeExpiry(ref time.Time) time.Time {
	return ref.Add(MagicLinkGrace)
}

// IsExpired reports whether the given expiry instant has passed.
func IsExpired(t time.Time) bool {
	return time.Now().After(t)
}
