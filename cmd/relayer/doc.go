// Package main runs the in-memory development relayer used by veilmarket
// for local work and tests. It stands in for the hosted confidential
// computing relayer and speaks the same HTTP API.
//
// HTTP API
//
//	GET /v1/keyurl
//	    Return the network public key id, the HPKE public key (hex) and the
//	    host and gateway chain ids.
//
//	POST /v1/input-proof
//	    Open a sealed input batch for (contractAddress, userAddress), mint a
//	    handle per value and return {"response": {"handles", "inputProof"}}.
//
//	POST /v1/user-decrypt
//	    Check the typed-data signature, validity window and access list,
//	    then return each requested value sealed to the request public key.
//
// Behaviour
//
//   - All state is held in memory and lost on process exit.
//   - Chain ids and the decryption verifier come from the selected network
//     (default localhost).
//   - The default listen address is 127.0.0.1:8090.
//
// This relayer stores clear values. It is for development only.
package main
