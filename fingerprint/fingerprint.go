// Package fingerprint derives the per-environment obfuscation key used to
// make persisted booking sessions opaque to casual inspection.
//
// The derivation is deliberately weak: a rolling multiply-and-add hash over
// stable environment attributes, not a KDF. The key obfuscates and
// tamper-tags client-held state, it does not provide confidentiality against
// anyone who can run code in the same environment. Do not upgrade it to a
// cryptographic hash without accepting that every previously persisted
// session becomes unreadable.
package fingerprint

import (
	"strconv"
	"strings"
)

// tokenLength is the fixed width of the rendered key token.
const tokenLength = 8

// Signals are the stable environment attributes the key is derived from.
// The same signals must always derive the same key within one process.
type Signals struct {
	UserAgent    string
	ScreenWidth  int
	ScreenHeight int
	Timezone     string
}

// KeyMaterial is the derived obfuscation key. It is not a secret.
type KeyMaterial []byte

// DeriveKey deterministically reduces the signals to a fixed-length token.
// Pure function: no I/O, no randomness, no hidden cache. The session store
// derives the key once at construction and owns it from then on.
func DeriveKey(sig Signals) KeyMaterial {
	joined := strings.Join([]string{
		sig.UserAgent,
		strconv.Itoa(sig.ScreenWidth) + "x" + strconv.Itoa(sig.ScreenHeight),
		sig.Timezone,
	}, "|")

	var h uint32
	for _, b := range []byte(joined) {
		h = h*31 + uint32(b)
	}

	token := strconv.FormatUint(uint64(h), 36)
	if len(token) < tokenLength {
		token = strings.Repeat("0", tokenLength-len(token)) + token
	}
	return KeyMaterial(token[:tokenLength])
}
