package util

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
)

// referenceChars excludes the visually ambiguous 0/O and 1/I so generated
// codes survive being read over the phone or copied from a printout.
var referenceChars = []rune("23456789ABCDEFGHJKLMNPQRSTUVWXYZ")

// ReferenceChars returns n characters drawn uniformly from the
// ambiguity-free reference alphabet using crypto/rand.
func ReferenceChars(n int) (string, error) {
	var sb strings.Builder
	for i := 0; i < n; i++ {
		idx, err := RandomIntn(len(referenceChars))
		if err != nil {
			return "", fmt.Errorf("generating random char index: %w", err)
		}
		sb.WriteRune(referenceChars[idx])
	}
	return sb.String(), nil
}

func RandomIntn(max int) (int, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(int64(max)))
	if err != nil {
		return 0, fmt.Errorf("generating random number: %w", err)
	}
	return int(n.Int64()), nil
}

func RandomBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return nil, fmt.Errorf("generating random bytes: %w", err)
	}
	return b, nil
}
