package bet

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"veilmarket/internal/config"
	"veilmarket/internal/domain"
	"veilmarket/internal/session"
)

// revealConcurrency bounds the number of decryption flows run at once.
const revealConcurrency = 4

var (
	// ErrInvalidShares is returned when a bet has no shares.
	ErrInvalidShares = errors.New("a bet needs at least one share")

	// ErrStakeOutOfRange is returned when the stake is outside the
	// accepted bounds.
	ErrStakeOutOfRange = fmt.Errorf("stake must be between %s and %s ETH",
		FormatAmount(config.MinBetWei), FormatAmount(config.MaxBetWei))

	// ErrNoBet is returned when the account has no bet on the event.
	ErrNoBet = errors.New("no bet placed on this event")
)

// Market is the subset of the contract the service uses.
type Market interface {
	Address() common.Address
	PlaceBet(ctx context.Context, eventID uint64, in domain.EncryptedInput, value *big.Int) (common.Hash, error)
	UserBetHandles(ctx context.Context, eventID uint64, user common.Address) ([]domain.HandleContractPair, error)
	GetLastError(ctx context.Context, user common.Address) (domain.LastError, error)
}

// Decrypter decrypts handles for the connected account.
type Decrypter interface {
	DecryptMany(ctx context.Context, handles []domain.Handle, contract common.Address) (domain.DecryptionResult, error)
}

// Service places and reveals bets for one account.
type Service struct {
	session *session.Session
	market  Market
	decrypt Decrypter
	signer  domain.Signer
	bets    domain.BetStore
	log     *logrus.Entry
	now     func() time.Time
}

// New returns a bet service. bets may be nil to skip local bookkeeping.
func New(
	sess *session.Session,
	market Market,
	decrypt Decrypter,
	signer domain.Signer,
	bets domain.BetStore,
	log *logrus.Entry,
) *Service {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Service{
		session: sess,
		market:  market,
		decrypt: decrypt,
		signer:  signer,
		bets:    bets,
		log:     log.WithField("component", "bet-service"),
		now:     time.Now,
	}
}

// PlaceBet encrypts shares and direction and submits them with value.
func (s *Service) PlaceBet(
	ctx context.Context,
	eventID uint64,
	shares uint32,
	isYes bool,
	value *big.Int,
) (common.Hash, error) {
	if shares == 0 {
		return common.Hash{}, ErrInvalidShares
	}
	if value == nil || value.Cmp(config.MinBetWei) < 0 || value.Cmp(config.MaxBetWei) > 0 {
		return common.Hash{}, ErrStakeOutOfRange
	}
	user, err := s.account()
	if err != nil {
		return common.Hash{}, err
	}

	inst, err := s.session.Initialize(ctx)
	if err != nil {
		return common.Hash{}, err
	}
	b, err := inst.CreateEncryptedInput(s.market.Address(), user)
	if err != nil {
		return common.Hash{}, err
	}
	if err := b.AddUint32(uint64(shares)); err != nil {
		return common.Hash{}, err
	}
	if err := b.AddBool(isYes); err != nil {
		return common.Hash{}, err
	}
	in, err := b.Encrypt(ctx)
	if err != nil {
		return common.Hash{}, fmt.Errorf("encrypt bet: %w", err)
	}

	hash, err := s.market.PlaceBet(ctx, eventID, in, value)
	if err != nil {
		return common.Hash{}, err
	}
	s.log.WithFields(logrus.Fields{"event": eventID, "tx": hash.Hex()}).Info("bet placed")

	if s.bets != nil {
		rec := domain.PlacedBet{EventID: eventID, TxHash: hash.Hex(), PlacedAt: s.now().Unix()}
		if err := s.bets.SavePlacedBet(s.market.Address(), user, rec); err != nil {
			return hash, fmt.Errorf("record bet: %w", err)
		}
	}
	return hash, nil
}

// RevealBet decrypts the caller's amount, shares and direction on eventID
// under one authorization.
func (s *Service) RevealBet(ctx context.Context, eventID uint64) (domain.BetReveal, error) {
	user, err := s.account()
	if err != nil {
		return domain.BetReveal{}, err
	}
	if _, err := s.session.Initialize(ctx); err != nil {
		return domain.BetReveal{}, err
	}
	return s.reveal(ctx, eventID, user)
}

func (s *Service) reveal(ctx context.Context, eventID uint64, user common.Address) (domain.BetReveal, error) {
	pairs, err := s.market.UserBetHandles(ctx, eventID, user)
	if err != nil {
		return domain.BetReveal{}, err
	}
	if pairs == nil {
		return domain.BetReveal{}, ErrNoBet
	}
	handles := make([]domain.Handle, len(pairs))
	for i, p := range pairs {
		handles[i] = p.Handle
	}
	res, err := s.decrypt.DecryptMany(ctx, handles, s.market.Address())
	if err != nil {
		return domain.BetReveal{}, err
	}

	out := domain.BetReveal{EventID: eventID}
	if out.AmountWei, err = res[handles[0]].Uint64(); err != nil {
		return domain.BetReveal{}, fmt.Errorf("amount: %w", err)
	}
	if out.Shares, err = res[handles[1]].Uint32(); err != nil {
		return domain.BetReveal{}, fmt.Errorf("shares: %w", err)
	}
	if out.IsYes, err = res[handles[2]].Bool(); err != nil {
		return domain.BetReveal{}, fmt.Errorf("direction: %w", err)
	}
	return out, nil
}

// RevealResult is the outcome of revealing one event. Err is set when the
// bet could not be revealed; Reveal is then the zero value.
type RevealResult struct {
	EventID uint64
	Reveal  domain.BetReveal
	Err     error
}

// RevealBets reveals several events with independent flows run
// concurrently. A failure on one event does not affect the others; the
// returned error is only set when ctx ends or no account is connected.
func (s *Service) RevealBets(ctx context.Context, eventIDs []uint64) ([]RevealResult, error) {
	user, err := s.account()
	if err != nil {
		return nil, err
	}
	if len(eventIDs) == 0 {
		return nil, nil
	}
	if _, err := s.session.Initialize(ctx); err != nil {
		return nil, err
	}

	results := make([]RevealResult, len(eventIDs))
	var g errgroup.Group
	g.SetLimit(revealConcurrency)
	for i, id := range eventIDs {
		g.Go(func() error {
			r, err := s.reveal(ctx, id, user)
			results[i] = RevealResult{EventID: id, Reveal: r, Err: err}
			if err != nil {
				s.log.WithField("event", id).WithError(err).Debug("reveal failed")
			}
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return results, err
	}
	return results, nil
}

// LastErrorReport is the decrypted result of the caller's last contract
// call.
type LastErrorReport struct {
	Code      uint8
	Message   string
	Timestamp time.Time
}

// LastError decrypts the caller's last error code and maps it to its
// message.
func (s *Service) LastError(ctx context.Context) (LastErrorReport, error) {
	user, err := s.account()
	if err != nil {
		return LastErrorReport{}, err
	}
	le, err := s.market.GetLastError(ctx, user)
	if err != nil {
		return LastErrorReport{}, err
	}
	if le.Code.IsZero() {
		return LastErrorReport{Message: ErrorMessage(0), Timestamp: le.Timestamp}, nil
	}
	if _, err := s.session.Initialize(ctx); err != nil {
		return LastErrorReport{}, err
	}
	res, err := s.decrypt.DecryptMany(ctx, []domain.Handle{le.Code}, s.market.Address())
	if err != nil {
		return LastErrorReport{}, err
	}
	code, err := res[le.Code].Uint8()
	if err != nil {
		return LastErrorReport{}, err
	}
	return LastErrorReport{Code: code, Message: ErrorMessage(code), Timestamp: le.Timestamp}, nil
}

// PlacedBets lists the bets recorded locally for the connected account.
func (s *Service) PlacedBets() ([]domain.PlacedBet, error) {
	user, err := s.account()
	if err != nil {
		return nil, err
	}
	if s.bets == nil {
		return nil, nil
	}
	return s.bets.ListPlacedBets(s.market.Address(), user)
}

func (s *Service) account() (common.Address, error) {
	if s.signer == nil || s.signer.Address() == (common.Address{}) {
		return common.Address{}, domain.ErrWalletNotConnected
	}
	return s.signer.Address(), nil
}

// Compile-time assertion that Service implements domain.BetService.
var _ domain.BetService = (*Service)(nil)
