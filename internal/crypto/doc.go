// Package crypto exposes the small set of primitives the client needs
// outside of the wallet.
//
// Contents
//
//   - Ephemeral X25519 keypairs for user decryption and anonymous sealed
//     boxes (GenerateDecryptionKeypair, SealTo, OpenSealed)
//   - HPKE sealing of input batches to the network key (SealInput, OpenInput)
//   - Best-effort memory wiping for sensitive byte slices (Wipe)
//   - Short public-key fingerprints for display/logging (Fingerprint)
//   - Hex helpers for the relayer wire format (Hex, RawHex, ParseHex)
//
// # Notes
//
// Decryption keypairs are single use. Callers wipe them with WipeKeypair as
// soon as the flow that created them ends.
package crypto
