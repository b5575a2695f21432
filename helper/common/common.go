package common

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"strings"
)

const (
	// EtherDecimals is the number of decimals of the native currency
	EtherDecimals = 18
)

var (
	errEmptyAmount      = errors.New("amount is empty")
	errNegativeAmount   = errors.New("amount must not be negative")
	errBytes32TooLong   = errors.New("bytes32 string must be less than 32 bytes")
	errTooManyFractions = errors.New("amount has more fractional digits than the token decimals")
	errInvalidAmount    = errors.New("amount must be a decimal number")
)

// ParseUnits converts a decimal string ("100", "0.1") into its integer
// representation with the given number of decimals (parseUnits("100", 8) = 10^10).
func ParseUnits(value string, decimals uint8) (*big.Int, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, errEmptyAmount
	}

	if strings.HasPrefix(value, "-") {
		return nil, errNegativeAmount
	}

	whole, fraction, _ := strings.Cut(value, ".")
	if (whole == "" && fraction == "") || !isDigits(whole) || !isDigits(fraction) {
		return nil, fmt.Errorf("%w: %s", errInvalidAmount, value)
	}

	if whole == "" {
		whole = "0"
	}

	if len(fraction) > int(decimals) {
		return nil, fmt.Errorf("%w: %s (decimals %d)", errTooManyFractions, value, decimals)
	}

	digits := whole + fraction + strings.Repeat("0", int(decimals)-len(fraction))

	amount, ok := new(big.Int).SetString(digits, 10)
	if !ok {
		return nil, fmt.Errorf("invalid amount: %s", value)
	}

	return amount, nil
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}

	return true
}

// FormatUnits is the inverse of ParseUnits
func FormatUnits(amount *big.Int, decimals uint8) string {
	if amount == nil {
		return "0"
	}

	str := amount.String()
	if decimals == 0 {
		return str
	}

	if len(str) <= int(decimals) {
		str = strings.Repeat("0", int(decimals)-len(str)+1) + str
	}

	whole, fraction := str[:len(str)-int(decimals)], strings.TrimRight(str[len(str)-int(decimals):], "0")
	if fraction == "" {
		return whole
	}

	return whole + "." + fraction
}

// Bytes32String encodes a short string into a zero padded bytes32 value.
// The string must leave room for the null terminator.
func Bytes32String(s string) ([32]byte, error) {
	var out [32]byte

	if len(s) > 31 {
		return out, errBytes32TooLong
	}

	copy(out[:], s)

	return out, nil
}

// SetupDataDir sets up the data directory and the corresponding sub-directories
func SetupDataDir(dataDir string, paths []string) error {
	if err := createDir(dataDir); err != nil {
		return fmt.Errorf("failed to create data dir: (%s): %w", dataDir, err)
	}

	for _, path := range paths {
		path := filepath.Join(dataDir, path)
		if err := createDir(path); err != nil {
			return fmt.Errorf("failed to create path: (%s): %w", path, err)
		}
	}

	return nil
}

// FileExists checks if the file at the specified path exists
func FileExists(filePath string) bool {
	info, err := os.Stat(filePath)
	if err != nil {
		return false
	}

	return !info.IsDir()
}

// createDir creates a file system directory if it doesn't exist
func createDir(path string) error {
	_, err := os.Stat(path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}

	if os.IsNotExist(err) {
		if err := os.MkdirAll(path, 0o750); err != nil {
			return err
		}
	}

	return nil
}

// EncodeUint64ToBytes encodes a uint64 as big endian, so byte order matches numeric order
func EncodeUint64ToBytes(value uint64) []byte {
	result := make([]byte, 8)
	binary.BigEndian.PutUint64(result, value)

	return result
}

// EncodeBytesToUint64 decodes a big endian uint64
func EncodeBytesToUint64(b []byte) uint64 {
	return binary.BigEndian.Uint64(b)
}
