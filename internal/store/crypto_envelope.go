package store

import (
	"crypto/cipher"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/scrypt"

	"veilmarket/internal/crypto"
)

// keystoreFormatVersion is the newest envelope version this build reads.
const keystoreFormatVersion = 1

var (
	// ErrWrongPassphrase is returned when the passphrase is incorrect or the
	// stored key has been modified or corrupted.
	ErrWrongPassphrase = errors.New("wrong passphrase or corrupted wallet key")
)

// envelope is the on-disk JSON form of the wallet key. Address is kept in
// the clear so the account can be shown without the passphrase; it is
// authenticated as additional data.
type envelope struct {
	V       int    `json:"v"`
	Address string `json:"address"`
	Salt    []byte `json:"salt"`
	N       int    `json:"scrypt_n"`
	R       int    `json:"scrypt_r"`
	P       int    `json:"scrypt_p"`
	Nonce   []byte `json:"nonce"`
	Cipher  []byte `json:"cipher"`
}

func (e envelope) aad() []byte { return append(append([]byte(nil), e.Salt...), e.Address...) }

// seal derives a key from passphrase and encrypts raw under XChaCha20-Poly1305.
func seal(passphrase, address string, raw []byte, N, r, p int) ([]byte, error) {
	env := envelope{
		V:       keystoreFormatVersion,
		Address: address,
		Salt:    make([]byte, 16),
		N:       N,
		R:       r,
		P:       p,
		Nonce:   make([]byte, chacha20poly1305.NonceSizeX),
	}
	if _, err := rand.Read(env.Salt); err != nil {
		return nil, err
	}
	if _, err := rand.Read(env.Nonce); err != nil {
		return nil, err
	}
	aead, err := deriveAEAD(passphrase, env)
	if err != nil {
		return nil, err
	}
	env.Cipher = aead.Seal(nil, env.Nonce, raw, env.aad())
	return json.Marshal(env)
}

// open reverses seal.
func open(passphrase string, b []byte) ([]byte, error) {
	env, err := parseEnvelope(b)
	if err != nil {
		return nil, err
	}
	aead, err := deriveAEAD(passphrase, env)
	if err != nil {
		return nil, err
	}
	pt, err := aead.Open(nil, env.Nonce, env.Cipher, env.aad())
	if err != nil {
		return nil, ErrWrongPassphrase
	}
	return pt, nil
}

func parseEnvelope(b []byte) (envelope, error) {
	var env envelope
	if err := json.Unmarshal(b, &env); err != nil {
		return envelope{}, fmt.Errorf("parse wallet file: %w", err)
	}
	if env.V < 1 || env.V > keystoreFormatVersion {
		return envelope{}, fmt.Errorf("unsupported keystore version %d", env.V)
	}
	if len(env.Nonce) != chacha20poly1305.NonceSizeX {
		return envelope{}, ErrWrongPassphrase
	}
	return env, nil
}

func deriveAEAD(passphrase string, env envelope) (cipher.AEAD, error) {
	key, err := scrypt.Key([]byte(passphrase), env.Salt, env.N, env.R, env.P, chacha20poly1305.KeySize)
	if err != nil {
		return nil, err
	}
	defer crypto.Wipe(key)
	return chacha20poly1305.NewX(key)
}

// scryptParams are the key derivation costs. Tests lower them.
var scryptParams = func() (N, r, p int) { return 1 << 15, 8, 1 }
