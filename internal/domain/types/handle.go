package types

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"strings"
)

const (
	// HandleSize is the byte length of a ciphertext handle.
	HandleSize = 32

	// HandleVersion is the layout version written in the last handle byte.
	HandleVersion = 0

	handleDigestSize = 21
)

// Handle references one encrypted scalar registered with the backend.
//
// Layout:
//
//	[0:21]  digest
//	[21]    index within the input batch
//	[22:30] chain id, big endian
//	[30]    FheType
//	[31]    layout version
type Handle [HandleSize]byte

// ComposeHandle assembles a handle from its parts. Digests longer than 21
// bytes are truncated.
func ComposeHandle(digest []byte, index uint8, chainID uint64, t FheType) Handle {
	var h Handle
	copy(h[:handleDigestSize], digest)
	h[21] = index
	binary.BigEndian.PutUint64(h[22:30], chainID)
	h[30] = byte(t)
	h[31] = HandleVersion
	return h
}

// Index returns the position of the handle within its input batch.
func (h Handle) Index() uint8 { return h[21] }

// ChainID returns the chain the handle was created for.
func (h Handle) ChainID() uint64 { return binary.BigEndian.Uint64(h[22:30]) }

// Type returns the encrypted type declared by the handle.
func (h Handle) Type() FheType { return FheType(h[30]) }

// Version returns the layout version byte.
func (h Handle) Version() uint8 { return h[31] }

// IsZero reports whether h is the all-zero handle (an unset contract slot).
func (h Handle) IsZero() bool { return h == Handle{} }

// Bytes returns a copy of the handle as a slice.
func (h Handle) Bytes() []byte { return append([]byte(nil), h[:]...) }

// Hex returns the canonical 0x-prefixed lowercase hex form.
func (h Handle) Hex() string { return "0x" + hex.EncodeToString(h[:]) }

func (h Handle) String() string { return h.Hex() }

// MarshalText encodes the handle in its canonical hex form.
func (h Handle) MarshalText() ([]byte, error) { return []byte(h.Hex()), nil }

// UnmarshalText accepts hex with or without the 0x prefix.
func (h *Handle) UnmarshalText(b []byte) error {
	parsed, err := ParseHandle(string(b))
	if err != nil {
		return err
	}
	*h = parsed
	return nil
}

// ParseHandle normalizes the representations a backend or contract may hand
// back (hex string with or without prefix, byte slice, fixed array) into a
// Handle. It is the only place that ambiguity is allowed.
func ParseHandle(v any) (Handle, error) {
	var h Handle
	switch x := v.(type) {
	case Handle:
		return x, nil
	case [HandleSize]byte:
		return Handle(x), nil
	case []byte:
		if len(x) != HandleSize {
			return h, fmt.Errorf("%w: want %d bytes, got %d", ErrInvalidHandle, HandleSize, len(x))
		}
		copy(h[:], x)
		return h, nil
	case string:
		s := strings.TrimPrefix(strings.TrimPrefix(strings.TrimSpace(x), "0x"), "0X")
		if len(s) != HandleSize*2 {
			return h, fmt.Errorf("%w: want %d hex chars, got %d", ErrInvalidHandle, HandleSize*2, len(s))
		}
		if _, err := hex.Decode(h[:], []byte(s)); err != nil {
			return Handle{}, fmt.Errorf("%w: %v", ErrInvalidHandle, err)
		}
		return h, nil
	case nil:
		return h, fmt.Errorf("%w: nil", ErrInvalidHandle)
	default:
		return h, fmt.Errorf("%w: unsupported representation %T", ErrInvalidHandle, v)
	}
}
