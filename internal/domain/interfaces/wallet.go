package interfaces

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
)

// Signer is the wallet's signing capability. Implementations may ask the
// user and return an error wrapping domain.ErrSignerRejected.
type Signer interface {
	Address() common.Address
	SignTypedData(ctx context.Context, data apitypes.TypedData) ([]byte, error)
	SignTx(ctx context.Context, tx *ethtypes.Transaction, chainID *big.Int) (*ethtypes.Transaction, error)
}

// ChainProvider reports the chain the wallet's provider is connected to.
type ChainProvider interface {
	ChainID(ctx context.Context) (*big.Int, error)
}
