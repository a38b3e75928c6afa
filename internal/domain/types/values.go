package types

import (
	"fmt"
	"strconv"
)

// ClearValue is a decrypted scalar together with the type it was declared as.
type ClearValue struct {
	Type FheType `json:"type"`
	Raw  uint64  `json:"raw"`
}

// NewClearValue checks raw against the type's width.
func NewClearValue(t FheType, raw uint64) (ClearValue, error) {
	if !t.Valid() {
		return ClearValue{}, fmt.Errorf("%w: unsupported type %s", ErrTypeMismatch, t)
	}
	if raw > t.Max() {
		return ClearValue{}, fmt.Errorf("%w: %d does not fit %s", ErrValueOutOfRange, raw, t)
	}
	return ClearValue{Type: t, Raw: raw}, nil
}

// Bool returns the value of an ebool.
func (v ClearValue) Bool() (bool, error) {
	if v.Type != FheBool {
		return false, fmt.Errorf("%w: %s read as ebool", ErrTypeMismatch, v.Type)
	}
	return v.Raw != 0, nil
}

// Uint8 returns the value of an euint8.
func (v ClearValue) Uint8() (uint8, error) {
	if v.Type != FheUint8 {
		return 0, fmt.Errorf("%w: %s read as euint8", ErrTypeMismatch, v.Type)
	}
	return uint8(v.Raw), nil
}

// Uint32 returns the value of an euint8 or euint32.
func (v ClearValue) Uint32() (uint32, error) {
	if v.Type != FheUint32 && v.Type != FheUint8 {
		return 0, fmt.Errorf("%w: %s read as euint32", ErrTypeMismatch, v.Type)
	}
	return uint32(v.Raw), nil
}

// Uint64 returns the value of any unsigned integer type.
func (v ClearValue) Uint64() (uint64, error) {
	if v.Type == FheBool || !v.Type.Valid() {
		return 0, fmt.Errorf("%w: %s read as euint64", ErrTypeMismatch, v.Type)
	}
	return v.Raw, nil
}

func (v ClearValue) String() string {
	if v.Type == FheBool {
		return strconv.FormatBool(v.Raw != 0)
	}
	return strconv.FormatUint(v.Raw, 10)
}

// DecryptionResult maps each requested handle to its clear value. It lives
// only as long as the call that produced it.
type DecryptionResult map[Handle]ClearValue
