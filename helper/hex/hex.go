package hex

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// EncodeToHex generates a hex string based on the byte representation, with the '0x' prefix
func EncodeToHex(str []byte) string {
	return "0x" + hex.EncodeToString(str)
}

// EncodeToString is a wrapper method for hex.EncodeToString
func EncodeToString(str []byte) string {
	return hex.EncodeToString(str)
}

// DecodeHex converts a hex string to a byte array.
// The '0x' prefix and surrounding whitespace are optional.
func DecodeHex(str string) ([]byte, error) {
	str = strings.TrimPrefix(strings.TrimSpace(str), "0x")

	return hex.DecodeString(str)
}

// MustDecodeHex type-checks and converts a hex string to a byte array
func MustDecodeHex(str string) []byte {
	buf, err := DecodeHex(str)
	if err != nil {
		panic(fmt.Errorf("could not decode hex: %w", err))
	}

	return buf
}

// IsEmpty reports whether a hex string carries no data ("", "0x", "0x0")
func IsEmpty(str string) bool {
	switch strings.TrimSpace(str) {
	case "", "0x", "0x0":
		return true
	default:
		return false
	}
}
