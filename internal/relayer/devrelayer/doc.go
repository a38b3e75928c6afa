// Package devrelayer is an in-memory relayer for development and tests.
//
// It serves the same HTTP API as the hosted relayer:
//
//	GET  /v1/keyurl
//	    Return the network public key inputs are sealed to.
//
//	POST /v1/input-proof
//	    Open a sealed input batch, mint one handle per value, and return
//	    the handles with a proof signed by the coprocessor key.
//
//	POST /v1/user-decrypt
//	    Verify the typed-data authorization, its validity window and the
//	    access list, then seal each requested value to the caller's key.
//
// Behaviour
//
//   - All state is held in memory and lost on process exit.
//   - Clear values are stored in plain form. There is no homomorphic
//     evaluation; a contract stand-in computes on clear values and mints
//     handles for results with Register.
//   - Non-2xx responses carry {"message": ...}.
//   - Each request is logged with method, path, status, request id and
//     duration.
package devrelayer
