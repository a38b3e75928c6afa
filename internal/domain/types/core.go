package types

import "fmt"

// FheType identifies the encrypted scalar type behind a handle. The numeric
// values are the backend's wire identifiers.
type FheType uint8

const (
	FheBool   FheType = 0
	FheUint8  FheType = 2
	FheUint32 FheType = 4
	FheUint64 FheType = 5
)

// Valid reports whether t is a type this client can encrypt and decrypt.
func (t FheType) Valid() bool {
	switch t {
	case FheBool, FheUint8, FheUint32, FheUint64:
		return true
	}
	return false
}

// Bits returns the number of bits the type occupies in an input batch.
func (t FheType) Bits() int {
	switch t {
	case FheBool:
		return 2
	case FheUint8:
		return 8
	case FheUint32:
		return 32
	case FheUint64:
		return 64
	}
	return 0
}

// Width returns the packed byte width of a plaintext of this type.
func (t FheType) Width() int {
	switch t {
	case FheBool, FheUint8:
		return 1
	case FheUint32:
		return 4
	case FheUint64:
		return 8
	}
	return 0
}

// Max returns the largest plaintext representable by the type.
func (t FheType) Max() uint64 {
	switch t {
	case FheBool:
		return 1
	case FheUint8:
		return 1<<8 - 1
	case FheUint32:
		return 1<<32 - 1
	case FheUint64:
		return 1<<64 - 1
	}
	return 0
}

// String returns the Solidity-side name of the type.
func (t FheType) String() string {
	switch t {
	case FheBool:
		return "ebool"
	case FheUint8:
		return "euint8"
	case FheUint32:
		return "euint32"
	case FheUint64:
		return "euint64"
	}
	return fmt.Sprintf("fhetype(%d)", uint8(t))
}
