package interfaces

import (
	"github.com/ethereum/go-ethereum/common"

	domaintypes "veilmarket/internal/domain/types"
)

// WalletStore persists the local account key encrypted under a passphrase.
type WalletStore interface {
	SaveWalletKey(passphrase string, key domaintypes.WalletKey) error
	LoadWalletKey(passphrase string) (domaintypes.WalletKey, error)
	HasWalletKey() (bool, error)
}

// BetStore remembers which events this account has bet on, per contract.
type BetStore interface {
	SavePlacedBet(contract, user common.Address, bet domaintypes.PlacedBet) error
	ListPlacedBets(contract, user common.Address) ([]domaintypes.PlacedBet, error)
}
