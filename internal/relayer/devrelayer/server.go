package devrelayer

import (
	"crypto/ecdsa"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"filippo.io/hpke"
	"github.com/ethereum/go-ethereum/common"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/sirupsen/logrus"

	"veilmarket/internal/crypto"
	"veilmarket/internal/domain"
	"veilmarket/internal/relayer"
)

const (
	// DefaultMaxValidityDays caps the validity of a decryption authorization.
	DefaultMaxValidityDays = 365

	// clockSkew tolerates authorizations that start slightly in the future.
	clockSkew = 5 * time.Minute
)

var (
	ErrUnknownHandle = errors.New("devrelayer: unknown handle")
	ErrBadProof      = errors.New("devrelayer: invalid input proof")
)

// Config configures a Server.
type Config struct {
	ChainID            uint64
	GatewayChainID     uint64
	DecryptionVerifier common.Address
	MaxValidityDays    int
	Now                func() time.Time
	Log                *logrus.Entry
}

type aclKey struct {
	contract common.Address
	user     common.Address
}

type record struct {
	value   domain.ClearValue
	allowed map[aclKey]bool
}

// Server is the in-memory relayer. It is safe for concurrent use.
type Server struct {
	cfg         Config
	netKey      hpke.PrivateKey
	keyID       string
	coprocessor *ecdsa.PrivateKey
	log         *logrus.Entry
	mux         *http.ServeMux

	mu      sync.RWMutex
	values  map[domain.Handle]*record
	counter uint64
}

// New generates fresh network and coprocessor keys.
func New(cfg Config) (*Server, error) {
	if cfg.MaxValidityDays == 0 {
		cfg.MaxValidityDays = DefaultMaxValidityDays
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Log == nil {
		cfg.Log = logrus.NewEntry(logrus.StandardLogger())
	}
	netKey, err := crypto.GenerateNetworkKey()
	if err != nil {
		return nil, err
	}
	coprocessor, err := ethcrypto.GenerateKey()
	if err != nil {
		return nil, fmt.Errorf("devrelayer: coprocessor key: %w", err)
	}
	s := &Server{
		cfg:         cfg,
		netKey:      netKey,
		keyID:       crypto.Fingerprint(netKey.PublicKey().Bytes()),
		coprocessor: coprocessor,
		log:         cfg.Log.WithField("component", "devrelayer"),
		values:      make(map[domain.Handle]*record),
	}
	mux := http.NewServeMux()
	mux.HandleFunc("GET "+relayer.PathKeyURL, s.handleKeyURL)
	mux.HandleFunc("POST "+relayer.PathInputProof, s.handleInputProof)
	mux.HandleFunc("POST "+relayer.PathUserDecrypt, s.handleUserDecrypt)
	s.mux = mux
	return s, nil
}

// ServeHTTP implements http.Handler with an access log.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
	s.mux.ServeHTTP(rec, r)
	s.log.WithFields(logrus.Fields{
		"method":     r.Method,
		"path":       r.URL.Path,
		"remote":     r.RemoteAddr,
		"status":     rec.status,
		"bytes":      rec.bytes,
		"request_id": r.Header.Get(relayer.HeaderRequestID),
		"duration":   time.Since(start),
	}).Info("request")
}

// NetworkKey returns the key description served on /v1/keyurl.
func (s *Server) NetworkKey() domain.NetworkKey {
	return domain.NetworkKey{
		PublicKeyID:    s.keyID,
		PublicKey:      crypto.RawHex(s.netKey.PublicKey().Bytes()),
		ChainID:        s.cfg.ChainID,
		GatewayChainID: s.cfg.GatewayChainID,
	}
}

// CoprocessorAddress is the signer of input proofs.
func (s *Server) CoprocessorAddress() common.Address {
	return ethcrypto.PubkeyToAddress(s.coprocessor.PublicKey)
}

// Register stores a computed clear value and returns a fresh handle that
// (contract, user) may decrypt.
func (s *Server) Register(t domain.FheType, v uint64, contract, user common.Address) (domain.Handle, error) {
	cv, err := domain.NewClearValue(t, v)
	if err != nil {
		return domain.Handle{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counter++
	var seed [8]byte
	binary.BigEndian.PutUint64(seed[:], s.counter)
	digest := ethcrypto.Keccak256([]byte("computed"), seed[:], contract.Bytes())
	h := domain.ComposeHandle(digest, 0, s.cfg.ChainID, t)
	s.values[h] = &record{value: cv, allowed: map[aclKey]bool{{contract, user}: true}}
	return h, nil
}

// Allow grants (contract, user) decryption of h.
func (s *Server) Allow(h domain.Handle, contract, user common.Address) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.values[h]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownHandle, h)
	}
	rec.allowed[aclKey{contract, user}] = true
	return nil
}

// Lookup returns the clear value behind h.
func (s *Server) Lookup(h domain.Handle) (domain.ClearValue, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.values[h]
	if !ok {
		return domain.ClearValue{}, false
	}
	return rec.value, true
}

func (s *Server) allowed(h domain.Handle, contract, user common.Address) (bool, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.values[h]
	if !ok {
		return false, false
	}
	return rec.allowed[aclKey{contract, user}], true
}

func (s *Server) handleKeyURL(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.NetworkKey())
}

type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	n, err := r.ResponseWriter.Write(b)
	r.bytes += n
	return n, err
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, format string, args ...any) {
	writeJSON(w, status, struct {
		Message string `json:"message"`
	}{Message: fmt.Sprintf(format, args...)})
}

func writeResponse(w http.ResponseWriter, v any) {
	writeJSON(w, http.StatusOK, struct {
		Response any `json:"response"`
	}{Response: v})
}
