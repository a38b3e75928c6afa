package types

// X25519Public is a Curve25519 public key.
type X25519Public [32]byte

// Slice returns the key as a []byte.
func (p X25519Public) Slice() []byte { return p[:] }

// X25519Private is a Curve25519 private key.
type X25519Private [32]byte

// Slice returns the key as a []byte.
func (k X25519Private) Slice() []byte { return k[:] }

// DecryptionKeypair is generated for one decryption flow and discarded with
// it. Only the public half leaves the process.
type DecryptionKeypair struct {
	Public  X25519Public
	Private X25519Private
}

// WalletKey is the locally stored account key.
type WalletKey struct {
	Address    string `json:"address"`
	PrivateKey []byte `json:"private_key"`
	CreatedUTC int64  `json:"created_utc"`
}
