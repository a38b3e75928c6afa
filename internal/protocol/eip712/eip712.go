package eip712

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"

	"veilmarket/internal/domain"
)

const (
	DomainName    = "Decryption"
	DomainVersion = "1"
	PrimaryType   = "UserDecryptRequestVerification"

	// SignatureSize is the length of an r || s || v signature.
	SignatureSize = 65
)

var errBadSignature = errors.New("eip712: malformed signature")

// Domain identifies the verifier the signature is bound to.
type Domain struct {
	ChainID           uint64
	VerifyingContract common.Address
}

var messageTypes = apitypes.Types{
	"EIP712Domain": {
		{Name: "name", Type: "string"},
		{Name: "version", Type: "string"},
		{Name: "chainId", Type: "uint256"},
		{Name: "verifyingContract", Type: "address"},
	},
	PrimaryType: {
		{Name: "publicKey", Type: "bytes"},
		{Name: "contractAddresses", Type: "address[]"},
		{Name: "startTimestamp", Type: "uint256"},
		{Name: "durationDays", Type: "uint256"},
	},
}

// NewUserDecryptRequest returns the typed data for msg under d.
func NewUserDecryptRequest(d Domain, msg domain.AuthorizationMessage) apitypes.TypedData {
	contracts := make([]interface{}, len(msg.ContractAddresses))
	for i, a := range msg.ContractAddresses {
		contracts[i] = a.Hex()
	}
	return apitypes.TypedData{
		Types:       messageTypes,
		PrimaryType: PrimaryType,
		Domain: apitypes.TypedDataDomain{
			Name:              DomainName,
			Version:           DomainVersion,
			ChainId:           math.NewHexOrDecimal256(int64(d.ChainID)),
			VerifyingContract: d.VerifyingContract.Hex(),
		},
		Message: apitypes.TypedDataMessage{
			"publicKey":         hexutil.Encode(msg.PublicKey),
			"contractAddresses": contracts,
			"startTimestamp":    strconv.FormatInt(msg.StartTimestamp, 10),
			"durationDays":      strconv.Itoa(msg.DurationDays),
		},
	}
}

// Hash returns the EIP-712 digest of td.
func Hash(td apitypes.TypedData) (common.Hash, error) {
	sighash, _, err := apitypes.TypedDataAndHash(td)
	if err != nil {
		return common.Hash{}, fmt.Errorf("eip712: hash typed data: %w", err)
	}
	return common.BytesToHash(sighash), nil
}

// RecoverSigner returns the address that produced sig over td. Both the
// 27/28 and 0/1 recovery id conventions are accepted.
func RecoverSigner(td apitypes.TypedData, sig []byte) (common.Address, error) {
	if len(sig) != SignatureSize {
		return common.Address{}, fmt.Errorf("%w: want %d bytes, got %d", errBadSignature, SignatureSize, len(sig))
	}
	hash, err := Hash(td)
	if err != nil {
		return common.Address{}, err
	}
	norm := append([]byte(nil), sig...)
	if norm[64] >= 27 {
		norm[64] -= 27
	}
	if norm[64] > 1 {
		return common.Address{}, fmt.Errorf("%w: recovery id %d", errBadSignature, sig[64])
	}
	pub, err := crypto.SigToPub(hash.Bytes(), norm)
	if err != nil {
		return common.Address{}, fmt.Errorf("%w: %v", errBadSignature, err)
	}
	return crypto.PubkeyToAddress(*pub), nil
}

// Verify reports whether sig over td was produced by want.
func Verify(td apitypes.TypedData, sig []byte, want common.Address) bool {
	got, err := RecoverSigner(td, sig)
	return err == nil && got == want
}
