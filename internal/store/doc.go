// Package store provides file-based persistence for veilmarket.
//
// It contains concrete implementations of the domain storage interfaces.
// Files are written atomically (temp file then rename) and all methods are
// concurrency-safe via internal locking. Stored files live under the
// configured home directory.
//
// The package includes stores for:
//   - The account key, sealed with scrypt + ChaCha20-Poly1305 (WalletFileStore)
//   - Bets placed from this client, per contract and account (BetFileStore)
package store
