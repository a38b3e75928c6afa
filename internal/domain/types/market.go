package types

import (
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// EventStatus is the lifecycle stage of a prediction event.
type EventStatus string

const (
	EventUpcoming EventStatus = "upcoming"
	EventActive   EventStatus = "active"
	EventEnded    EventStatus = "ended"
	EventResolved EventStatus = "resolved"
)

// PredictionEvent mirrors the contract's public event record.
type PredictionEvent struct {
	ID             uint64    `json:"id"`
	Description    string    `json:"description"`
	StartTime      time.Time `json:"start_time"`
	EndTime        time.Time `json:"end_time"`
	PriceYes       *big.Int  `json:"price_yes"`
	PriceNo        *big.Int  `json:"price_no"`
	IsResolved     bool      `json:"is_resolved"`
	Outcome        bool      `json:"outcome"`
	TotalYesShares *big.Int  `json:"total_yes_shares"`
	TotalNoShares  *big.Int  `json:"total_no_shares"`
	TotalPoolWei   *big.Int  `json:"total_pool_wei"`
}

// Status returns the event's stage at now.
func (e PredictionEvent) Status(now time.Time) EventStatus {
	switch {
	case e.IsResolved:
		return EventResolved
	case now.Before(e.StartTime):
		return EventUpcoming
	case !now.After(e.EndTime):
		return EventActive
	default:
		return EventEnded
	}
}

// UserBet is the caller's stored bet; all private fields are handles.
type UserBet struct {
	EventID         uint64         `json:"event_id"`
	User            common.Address `json:"user"`
	EncryptedAmount Handle         `json:"encrypted_amount"`
	EncryptedShares Handle         `json:"encrypted_shares"`
	IsYesBet        Handle         `json:"is_yes_bet"`
	HasPlacedBet    bool           `json:"has_placed_bet"`
}

// NewEvent describes an event to create.
type NewEvent struct {
	Description string
	StartTime   time.Time
	EndTime     time.Time
	PriceYes    *big.Int
	PriceNo     *big.Int
}

// BetReveal is a user's bet after decryption.
type BetReveal struct {
	EventID   uint64 `json:"event_id"`
	AmountWei uint64 `json:"amount_wei"`
	Shares    uint32 `json:"shares"`
	IsYes     bool   `json:"is_yes"`
}

// UserReward is the reward position of a user on one event.
type UserReward struct {
	EventID       uint64   `json:"event_id"`
	PendingAmount *big.Int `json:"pending_amount"`
	Claimed       bool     `json:"claimed"`
}

// LastError is the contract's encrypted error slot for a user.
type LastError struct {
	Code      Handle    `json:"code"`
	Timestamp time.Time `json:"timestamp"`
}

// PlacedBet is a local record of a bet transaction.
type PlacedBet struct {
	EventID  uint64 `json:"event_id"`
	TxHash   string `json:"tx_hash"`
	PlacedAt int64  `json:"placed_at"`
}
