package types

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// NetworkKey is the public encryption material served by the relayer.
type NetworkKey struct {
	PublicKeyID    string `json:"publicKeyId"`
	PublicKey      string `json:"publicKey"`
	ChainID        uint64 `json:"chainId"`
	GatewayChainID uint64 `json:"gatewayChainId"`
}

// InputProofRequest registers a sealed input batch for (contract, user).
type InputProofRequest struct {
	ContractAddress common.Address `json:"contractAddress"`
	UserAddress     common.Address `json:"userAddress"`
	ContractChainID uint64         `json:"contractChainId"`
	Ciphertext      string         `json:"ciphertextWithInputVerification"`
	ExtraData       string         `json:"extraData"`
}

// InputProofResponse carries the handles minted for a batch and its proof.
type InputProofResponse struct {
	Handles    []WireHandle `json:"handles"`
	InputProof string       `json:"inputProof"`
}

// RequestValidity is the signed validity window of a decryption request.
type RequestValidity struct {
	StartTimestamp string `json:"startTimestamp"`
	DurationDays   string `json:"durationDays"`
}

// UserDecryptRequest asks the relayer to re-encrypt handles to PublicKey.
type UserDecryptRequest struct {
	HandleContractPairs []HandleContractPair `json:"handleContractPairs"`
	RequestValidity     RequestValidity      `json:"requestValidity"`
	ContractsChainID    string               `json:"contractsChainId"`
	ContractAddresses   []common.Address     `json:"contractAddresses"`
	UserAddress         common.Address       `json:"userAddress"`
	Signature           string               `json:"signature"`
	PublicKey           string               `json:"publicKey"`
}

// SealedValue is one handle's plaintext sealed to the request public key.
type SealedValue struct {
	Handle     WireHandle `json:"handle"`
	Ciphertext string     `json:"ciphertext"`
}

// UserDecryptResponse lists the sealed values returned by the relayer.
type UserDecryptResponse struct {
	Values []SealedValue `json:"values"`
}

// WireHandle decodes a handle sent either as a hex string or as a JSON
// array of bytes, and always encodes as canonical hex.
type WireHandle struct {
	Handle
}

// UnmarshalJSON implements json.Unmarshaler.
func (w *WireHandle) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '[' {
		var ints []int
		if err := json.Unmarshal(b, &ints); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidHandle, err)
		}
		raw := make([]byte, len(ints))
		for i, v := range ints {
			if v < 0 || v > 255 {
				return fmt.Errorf("%w: byte %d out of range", ErrInvalidHandle, i)
			}
			raw[i] = byte(v)
		}
		h, err := ParseHandle(raw)
		if err != nil {
			return err
		}
		w.Handle = h
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidHandle, err)
	}
	h, err := ParseHandle(s)
	if err != nil {
		return err
	}
	w.Handle = h
	return nil
}

// MarshalJSON implements json.Marshaler.
func (w WireHandle) MarshalJSON() ([]byte, error) {
	return json.Marshal(w.Handle.Hex())
}
