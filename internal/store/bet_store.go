package store

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"veilmarket/internal/domain"
)

const betsFile = "bets.json"

// BetFileStore remembers the bets this client placed, per contract and
// account.
type BetFileStore struct {
	dir string
	mu  sync.Mutex
}

// NewBetFileStore returns a BetFileStore rooted at dir.
func NewBetFileStore(dir string) *BetFileStore {
	return &BetFileStore{dir: dir}
}

// SavePlacedBet records bet, replacing any earlier record for the event.
func (s *BetFileStore) SavePlacedBet(contract, user common.Address, bet domain.PlacedBet) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := filepath.Join(s.dir, betsFile)
	all := make(map[string][]domain.PlacedBet)
	if err := readJSON(path, &all); err != nil {
		return err
	}
	key := betKey(contract, user)
	bets := all[key]
	replaced := false
	for i := range bets {
		if bets[i].EventID == bet.EventID {
			bets[i] = bet
			replaced = true
		}
	}
	if !replaced {
		bets = append(bets, bet)
	}
	sort.Slice(bets, func(i, j int) bool { return bets[i].EventID < bets[j].EventID })
	all[key] = bets
	return writeJSON(path, all, 0o600)
}

// ListPlacedBets returns the recorded bets ordered by event id.
func (s *BetFileStore) ListPlacedBets(contract, user common.Address) ([]domain.PlacedBet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all := make(map[string][]domain.PlacedBet)
	if err := readJSON(filepath.Join(s.dir, betsFile), &all); err != nil {
		return nil, err
	}
	return all[betKey(contract, user)], nil
}

func betKey(contract, user common.Address) string {
	return fmt.Sprintf("%s|%s", strings.ToLower(contract.Hex()), strings.ToLower(user.Hex()))
}

// Compile-time assertion that BetFileStore implements domain.BetStore.
var _ domain.BetStore = (*BetFileStore)(nil)
