package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"veilmarket/internal/crypto"
	"veilmarket/internal/domain"
)

const walletFilename = "wallet.json.enc"

// WalletFileStore persists the account key encrypted under a passphrase.
type WalletFileStore struct {
	dir string
	mu  sync.Mutex
}

// NewWalletFileStore returns a WalletFileStore rooted at dir.
func NewWalletFileStore(dir string) *WalletFileStore {
	return &WalletFileStore{dir: dir}
}

// SaveWalletKey encrypts key and writes it to disk.
func (s *WalletFileStore) SaveWalletKey(passphrase string, key domain.WalletKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := json.Marshal(key)
	if err != nil {
		return err
	}
	defer crypto.Wipe(raw)
	N, r, p := scryptParams()
	ct, err := seal(passphrase, key.Address, raw, N, r, p)
	if err != nil {
		return err
	}
	return writeFile(filepath.Join(s.dir, walletFilename), ct, 0o600)
}

// LoadWalletKey reads and decrypts the stored key.
func (s *WalletFileStore) LoadWalletKey(passphrase string) (domain.WalletKey, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := os.ReadFile(filepath.Join(s.dir, walletFilename))
	if err != nil {
		return domain.WalletKey{}, err
	}
	pt, err := open(passphrase, b)
	if err != nil {
		return domain.WalletKey{}, err
	}
	defer crypto.Wipe(pt)
	var key domain.WalletKey
	if err := json.Unmarshal(pt, &key); err != nil {
		return domain.WalletKey{}, err
	}
	return key, nil
}

// StoredAddress returns the account address recorded beside the encrypted
// key, without unlocking it.
func (s *WalletFileStore) StoredAddress() (common.Address, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := os.ReadFile(filepath.Join(s.dir, walletFilename))
	if err != nil {
		return common.Address{}, err
	}
	env, err := parseEnvelope(b)
	if err != nil {
		return common.Address{}, err
	}
	if !common.IsHexAddress(env.Address) {
		return common.Address{}, fmt.Errorf("wallet file has no address")
	}
	return common.HexToAddress(env.Address), nil
}

// HasWalletKey reports whether a key file exists.
func (s *WalletFileStore) HasWalletKey() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := os.Stat(filepath.Join(s.dir, walletFilename))
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return err == nil, err
}

// Compile-time assertion that WalletFileStore implements domain.WalletStore.
var _ domain.WalletStore = (*WalletFileStore)(nil)
