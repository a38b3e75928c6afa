package identity

import (
	"errors"
	"fmt"
	"time"
	"unicode"

	"github.com/ethereum/go-ethereum/common"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"

	"veilmarket/internal/crypto"
	"veilmarket/internal/domain"
)

const (
	// minPassphraseLength defines the minimum number of characters required for a passphrase.
	minPassphraseLength = 12
)

var (
	// ErrWeakPassphrase is returned when the passphrase fails the strength policy.
	ErrWeakPassphrase = fmt.Errorf(
		"passphrase is too weak (must be at least %d characters and include upper, lower, "+
			"number, and symbol)",
		minPassphraseLength,
	)

	// ErrWalletExists is returned when a key is already stored and would be
	// overwritten.
	ErrWalletExists = errors.New("a wallet key already exists in this home directory")

	// ErrInvalidPrivateKey is returned when an imported key does not parse.
	ErrInvalidPrivateKey = errors.New("invalid secp256k1 private key")
)

// Service manages the wallet key using a backing store. The key signs both
// transactions and decryption authorizations.
type Service struct {
	store domain.WalletStore
	now   func() time.Time
}

// New returns an identity service backed by the given store.
func New(s domain.WalletStore) *Service { return &Service{store: s, now: time.Now} }

// GenerateWallet creates a fresh key, saves it encrypted with the
// passphrase and returns its address.
func (s *Service) GenerateWallet(passphrase string) (common.Address, error) {
	if err := s.checkNew(passphrase); err != nil {
		return common.Address{}, err
	}
	key, err := ethcrypto.GenerateKey()
	if err != nil {
		return common.Address{}, err
	}
	raw := ethcrypto.FromECDSA(key)
	defer crypto.Wipe(raw)
	return s.save(passphrase, raw)
}

// ImportWallet stores an existing hex private key.
func (s *Service) ImportWallet(passphrase string, privateKeyHex string) (common.Address, error) {
	if err := s.checkNew(passphrase); err != nil {
		return common.Address{}, err
	}
	raw, err := crypto.ParseHex(privateKeyHex)
	if err != nil {
		return common.Address{}, ErrInvalidPrivateKey
	}
	defer crypto.Wipe(raw)
	if _, err := ethcrypto.ToECDSA(raw); err != nil {
		return common.Address{}, ErrInvalidPrivateKey
	}
	return s.save(passphrase, raw)
}

// UnlockWallet decrypts and returns the stored key.
func (s *Service) UnlockWallet(passphrase string) (domain.WalletKey, error) {
	return s.store.LoadWalletKey(passphrase)
}

func (s *Service) checkNew(passphrase string) error {
	if !isSecurePassphrase(passphrase) {
		return ErrWeakPassphrase
	}
	has, err := s.store.HasWalletKey()
	if err != nil {
		return err
	}
	if has {
		return ErrWalletExists
	}
	return nil
}

func (s *Service) save(passphrase string, raw []byte) (common.Address, error) {
	key, err := ethcrypto.ToECDSA(raw)
	if err != nil {
		return common.Address{}, ErrInvalidPrivateKey
	}
	addr := ethcrypto.PubkeyToAddress(key.PublicKey)
	wk := domain.WalletKey{
		Address:    addr.Hex(),
		PrivateKey: append([]byte(nil), raw...),
		CreatedUTC: s.now().UTC().Unix(),
	}
	defer crypto.Wipe(wk.PrivateKey)
	if err := s.store.SaveWalletKey(passphrase, wk); err != nil {
		return common.Address{}, err
	}
	return addr, nil
}

// isSecurePassphrase enforces a basic strength policy.
func isSecurePassphrase(passphrase string) bool {
	var hasUpper, hasLower, hasDigit, hasSymbol bool
	if len(passphrase) < minPassphraseLength {
		return false
	}
	for _, r := range passphrase {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		case unicode.IsPunct(r), unicode.IsSymbol(r):
			hasSymbol = true
		}
	}
	return hasUpper && hasLower && hasDigit && hasSymbol
}

// Compile-time assertion that Service implements domain.IdentityService.
var _ domain.IdentityService = (*Service)(nil)
