package crypto

import (
	"crypto/rand"
	"errors"

	"golang.org/x/crypto/nacl/box"

	"veilmarket/internal/domain"
)

// SealOverhead is the number of bytes SealTo adds to a message.
const SealOverhead = box.AnonymousOverhead

var errOpenSealed = errors.New("sealed value does not open with this keypair")

// GenerateDecryptionKeypair returns a fresh X25519 keypair for a single
// decryption flow.
func GenerateDecryptionKeypair() (domain.DecryptionKeypair, error) {
	pub, priv, err := box.GenerateKey(rand.Reader)
	if err != nil {
		return domain.DecryptionKeypair{}, err
	}
	kp := domain.DecryptionKeypair{
		Public:  domain.X25519Public(*pub),
		Private: domain.X25519Private(*priv),
	}
	Wipe(priv[:])
	return kp, nil
}

// SealTo encrypts msg to pub so that only the holder of the matching private
// key can open it. The sender stays anonymous.
func SealTo(pub domain.X25519Public, msg []byte) ([]byte, error) {
	recipient := [32]byte(pub)
	return box.SealAnonymous(nil, msg, &recipient, rand.Reader)
}

// OpenSealed opens a value produced by SealTo for kp.
func OpenSealed(kp domain.DecryptionKeypair, sealed []byte) ([]byte, error) {
	pub := [32]byte(kp.Public)
	priv := [32]byte(kp.Private)
	defer Wipe(priv[:])
	out, ok := box.OpenAnonymous(nil, sealed, &pub, &priv)
	if !ok {
		return nil, errOpenSealed
	}
	return out, nil
}
