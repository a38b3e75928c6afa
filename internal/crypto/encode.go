package crypto

import (
	"encoding/hex"
	"strings"
)

// Hex returns b as 0x-prefixed lowercase hex.
func Hex(b []byte) string { return "0x" + hex.EncodeToString(b) }

// RawHex returns b as lowercase hex without a prefix.
func RawHex(b []byte) string { return hex.EncodeToString(b) }

// ParseHex decodes hex with or without a 0x prefix.
func ParseHex(s string) ([]byte, error) {
	s = strings.TrimPrefix(strings.TrimPrefix(strings.TrimSpace(s), "0x"), "0X")
	return hex.DecodeString(s)
}
