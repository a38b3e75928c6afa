// Package identity manages creation, encryption and loading of the local
// wallet key.
//
// It enforces passphrase policy, generates or imports secp256k1 keys, and
// persists them via the domain.WalletStore.
package identity
