package input

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"veilmarket/internal/domain"
)

const (
	// MaxValues is the largest number of values in one batch.
	MaxValues = 256

	// MaxBits is the largest total bit width of one batch.
	MaxBits = 2048

	sealInfoPrefix = "veilmarket/input/v1"
)

var errMalformedBatch = errors.New("malformed input batch")

// Slot is one typed plaintext value of a batch.
type Slot struct {
	Type  domain.FheType
	Value uint64
}

// Pack serializes slots as [type][big-endian value of the type's width].
func Pack(slots []Slot) []byte {
	size := 0
	for _, s := range slots {
		size += 1 + s.Type.Width()
	}
	out := make([]byte, 0, size)
	var buf [8]byte
	for _, s := range slots {
		w := s.Type.Width()
		binary.BigEndian.PutUint64(buf[:], s.Value)
		out = append(out, byte(s.Type))
		out = append(out, buf[8-w:]...)
	}
	return out
}

// Unpack parses a batch produced by Pack.
func Unpack(b []byte) ([]Slot, error) {
	var slots []Slot
	for len(b) > 0 {
		t := domain.FheType(b[0])
		if !t.Valid() {
			return nil, fmt.Errorf("%w: unsupported type %d", errMalformedBatch, b[0])
		}
		w := t.Width()
		if len(b) < 1+w {
			return nil, fmt.Errorf("%w: truncated %s value", errMalformedBatch, t)
		}
		var buf [8]byte
		copy(buf[8-w:], b[1:1+w])
		v := binary.BigEndian.Uint64(buf[:])
		if v > t.Max() {
			return nil, fmt.Errorf("%w: %d does not fit %s", errMalformedBatch, v, t)
		}
		slots = append(slots, Slot{Type: t, Value: v})
		b = b[1+w:]
	}
	if len(slots) > MaxValues {
		return nil, fmt.Errorf("%w: %d values", errMalformedBatch, len(slots))
	}
	return slots, nil
}

// SealContext returns the HPKE info and AAD that bind a batch to its chain,
// contract and user.
func SealContext(chainID uint64, contract, user common.Address) (info, aad []byte) {
	info = make([]byte, 0, len(sealInfoPrefix)+8)
	info = append(info, sealInfoPrefix...)
	info = binary.BigEndian.AppendUint64(info, chainID)

	aad = make([]byte, 0, 2*common.AddressLength)
	aad = append(aad, contract.Bytes()...)
	aad = append(aad, user.Bytes()...)
	return info, aad
}
