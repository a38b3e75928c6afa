package types

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// InputProof attests that a batch of handles was built for one
// (contract, user) pair. It travels with exactly the handles it was issued
// for.
type InputProof []byte

// EncryptedInput is the output of an input builder: positional handles and
// their proof.
type EncryptedInput struct {
	Handles    []Handle   `json:"handles"`
	InputProof InputProof `json:"input_proof"`
}

// HandleContractPair names a handle and the contract it must be decrypted
// through.
type HandleContractPair struct {
	Handle          Handle         `json:"handle"`
	ContractAddress common.Address `json:"contractAddress"`
}

// AuthorizationMessage is the structured message a user signs to request
// decryption of handles held by ContractAddresses.
type AuthorizationMessage struct {
	PublicKey         []byte
	ContractAddresses []common.Address
	StartTimestamp    int64
	DurationDays      int
}

// ValidUntil returns the end of the validity window. The relayer enforces it.
func (m AuthorizationMessage) ValidUntil() time.Time {
	return time.Unix(m.StartTimestamp, 0).Add(time.Duration(m.DurationDays) * 24 * time.Hour)
}
