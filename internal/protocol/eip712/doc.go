// Package eip712 builds the structured message a user signs to authorize a
// decryption request, and hashes and verifies it.
//
// The relayer re-derives the same structure from the request body, so the
// domain and field layout here are compatibility critical:
//
//	domain  { name, version, chainId, verifyingContract }
//	message UserDecryptRequestVerification {
//	    bytes     publicKey
//	    address[] contractAddresses
//	    uint256   startTimestamp
//	    uint256   durationDays
//	}
package eip712
