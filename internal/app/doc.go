// Package app wires application dependencies for the CLI.
//
// NewWire builds the offline part (key and bet stores, identity service,
// relayer client) from Config. Connect dials the chain and returns an App
// holding the session, market, decryption coordinator and the bet and
// reward services.
package app
