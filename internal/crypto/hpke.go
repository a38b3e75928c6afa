package crypto

import (
	"crypto/ecdh"
	"errors"
	"fmt"

	"filippo.io/hpke"
)

// NetworkKEM is the key encapsulation used for the network key.
func NetworkKEM() hpke.KEM { return hpke.DHKEM(ecdh.X25519()) }

// NetworkKDF is the key derivation used for input sealing.
func NetworkKDF() hpke.KDF { return hpke.HKDFSHA256() }

// NetworkAEAD is the authenticated cipher used for input sealing.
func NetworkAEAD() hpke.AEAD { return hpke.AES256GCM() }

var errShortSealed = errors.New("sealed input shorter than encapsulated key")

// GenerateNetworkKey returns a fresh HPKE keypair for the network key.
func GenerateNetworkKey() (hpke.PrivateKey, error) {
	priv, err := NetworkKEM().GenerateKey()
	if err != nil {
		return nil, fmt.Errorf("generate network key: %w", err)
	}
	return priv, nil
}

// ParseNetworkKey decodes a hex network public key as served by the relayer.
func ParseNetworkKey(s string) (hpke.PublicKey, error) {
	raw, err := ParseHex(s)
	if err != nil {
		return nil, fmt.Errorf("decode network key: %w", err)
	}
	pub, err := NetworkKEM().NewPublicKey(raw)
	if err != nil {
		return nil, fmt.Errorf("parse network key: %w", err)
	}
	return pub, nil
}

// SealInput encrypts pt to pub. info and aad are bound into the ciphertext
// and must be supplied again to OpenInput. The result is enc || ciphertext.
func SealInput(pub hpke.PublicKey, info, aad, pt []byte) ([]byte, error) {
	enc, sender, err := hpke.NewSender(pub, NetworkKDF(), NetworkAEAD(), info)
	if err != nil {
		return nil, fmt.Errorf("failed to create HPKE sender: %w", err)
	}
	ct, err := sender.Seal(aad, pt)
	if err != nil {
		return nil, fmt.Errorf("failed to seal data with HPKE: %w", err)
	}
	out := make([]byte, 0, len(enc)+len(ct))
	out = append(out, enc...)
	return append(out, ct...), nil
}

// OpenInput reverses SealInput.
func OpenInput(priv hpke.PrivateKey, info, aad, sealed []byte) ([]byte, error) {
	n := len(priv.PublicKey().Bytes())
	if len(sealed) < n {
		return nil, errShortSealed
	}
	// Full slice expression: the recipient may append to enc.
	recipient, err := hpke.NewRecipient(sealed[:n:n], priv, NetworkKDF(), NetworkAEAD(), info)
	if err != nil {
		return nil, fmt.Errorf("failed to create HPKE recipient: %w", err)
	}
	pt, err := recipient.Open(aad, sealed[n:])
	if err != nil {
		return nil, fmt.Errorf("failed to open data with HPKE: %w", err)
	}
	return pt, nil
}
