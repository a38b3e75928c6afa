// Package bet places encrypted bets and reveals them to their owner.
//
// Placing a bet encrypts the share count and the direction in one input
// batch bound to (market, account), submits placeBet with the ETH stake and
// records the bet locally. Revealing reads the caller's stored handles and
// decrypts all three in a single authorization. Values that could not be
// decrypted are shown masked.
package bet
