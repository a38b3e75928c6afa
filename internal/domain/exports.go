package domain

import (
	interfaces "veilmarket/internal/domain/interfaces"
	types "veilmarket/internal/domain/types"
)

// Type aliases expose domain types from the types subpackage for compact imports.
type (
	FheType              = types.FheType
	Handle               = types.Handle
	WireHandle           = types.WireHandle
	ClearValue           = types.ClearValue
	DecryptionResult     = types.DecryptionResult
	InputProof           = types.InputProof
	EncryptedInput       = types.EncryptedInput
	HandleContractPair   = types.HandleContractPair
	AuthorizationMessage = types.AuthorizationMessage
	DecryptionKeypair    = types.DecryptionKeypair
	X25519Public         = types.X25519Public
	X25519Private        = types.X25519Private
	WalletKey            = types.WalletKey
	NetworkKey           = types.NetworkKey
	InputProofRequest    = types.InputProofRequest
	InputProofResponse   = types.InputProofResponse
	RequestValidity      = types.RequestValidity
	UserDecryptRequest   = types.UserDecryptRequest
	UserDecryptResponse  = types.UserDecryptResponse
	SealedValue          = types.SealedValue
	EventStatus          = types.EventStatus
	PredictionEvent      = types.PredictionEvent
	NewEvent             = types.NewEvent
	UserBet              = types.UserBet
	BetReveal            = types.BetReveal
	UserReward           = types.UserReward
	LastError            = types.LastError
	PlacedBet            = types.PlacedBet
)

// HandleSize is the byte length of a ciphertext handle.
const HandleSize = types.HandleSize

// Encrypted scalar types.
const (
	FheBool   = types.FheBool
	FheUint8  = types.FheUint8
	FheUint32 = types.FheUint32
	FheUint64 = types.FheUint64
)

// Event lifecycle as seen at a given time.
const (
	EventUpcoming = types.EventUpcoming
	EventActive   = types.EventActive
	EventEnded    = types.EventEnded
	EventResolved = types.EventResolved
)

// Interface aliases expose domain interfaces from the interfaces subpackage.
type (
	RelayerClient   = interfaces.RelayerClient
	Signer          = interfaces.Signer
	ChainProvider   = interfaces.ChainProvider
	Market          = interfaces.Market
	WalletStore     = interfaces.WalletStore
	BetStore        = interfaces.BetStore
	IdentityService = interfaces.IdentityService
	BetService      = interfaces.BetService
	RewardService   = interfaces.RewardService
)

// Function aliases.
var (
	ParseHandle   = types.ParseHandle
	ComposeHandle = types.ComposeHandle
	NewClearValue = types.NewClearValue
)
