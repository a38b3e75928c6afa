// Package marketsim is an in-memory prediction market contract behind the
// market.Backend interface. It executes calls and signed transactions
// against the market ABI, computing on clear values held by a Ledger (the
// development relayer) and minting handles for every encrypted result.
//
// It exists for tests and local experiments; it has no gas accounting and
// no block production beyond one block per transaction.
package marketsim
