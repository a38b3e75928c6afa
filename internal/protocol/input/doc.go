// Package input builds encrypted inputs: typed plaintext values bound to
// one (contract, user) pair, sealed to the network key and registered with
// the relayer in exchange for handles and an input proof.
//
// A Builder is single use. Values are appended in order, width-checked as
// they are added, and Encrypt finalizes the batch exactly once. The handles
// it returns are positional: the i-th handle encrypts the i-th value.
package input
