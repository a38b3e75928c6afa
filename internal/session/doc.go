// Package session holds the process-wide confidential client context.
//
// A Session is created once by the application wiring and initialized
// lazily. Initialization fetches the network public key from the relayer
// and checks that the wallet's provider is on the configured chain. It runs
// at most once at a time: concurrent first callers share one in-flight
// attempt. A successful Instance is kept for the life of the process; a
// failed attempt is not remembered, so the next call starts over.
package session
