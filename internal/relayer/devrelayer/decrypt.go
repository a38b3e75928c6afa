package devrelayer

import (
	"encoding/json"
	"math/big"
	"net/http"
	"strconv"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/sirupsen/logrus"

	"veilmarket/internal/crypto"
	"veilmarket/internal/domain"
	"veilmarket/internal/protocol/eip712"
)

func (s *Server) handleUserDecrypt(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()
	var req domain.UserDecryptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "decode request: %v", err)
		return
	}
	chainID, err := strconv.ParseUint(req.ContractsChainID, 10, 64)
	if err != nil || chainID != s.cfg.ChainID {
		writeError(w, http.StatusBadRequest, "unsupported chain %q", req.ContractsChainID)
		return
	}
	pubRaw, err := crypto.ParseHex(req.PublicKey)
	if err != nil || len(pubRaw) != 32 {
		writeError(w, http.StatusBadRequest, "public key must be 32 bytes of hex")
		return
	}
	sig, err := crypto.ParseHex(req.Signature)
	if err != nil || len(sig) != eip712.SignatureSize {
		writeError(w, http.StatusBadRequest, "signature must be %d bytes of hex", eip712.SignatureSize)
		return
	}
	start, err := strconv.ParseInt(req.RequestValidity.StartTimestamp, 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad startTimestamp")
		return
	}
	days, err := strconv.Atoi(req.RequestValidity.DurationDays)
	if err != nil || days <= 0 || days > s.cfg.MaxValidityDays {
		writeError(w, http.StatusBadRequest, "durationDays must be between 1 and %d", s.cfg.MaxValidityDays)
		return
	}
	msg := domain.AuthorizationMessage{
		PublicKey:         pubRaw,
		ContractAddresses: req.ContractAddresses,
		StartTimestamp:    start,
		DurationDays:      days,
	}
	now := s.cfg.Now()
	if now.Add(clockSkew).Before(time.Unix(start, 0)) || now.After(msg.ValidUntil()) {
		writeError(w, http.StatusForbidden, "authorization is not valid at %d", now.Unix())
		return
	}

	td := eip712.NewUserDecryptRequest(eip712.Domain{
		ChainID:           s.cfg.GatewayChainID,
		VerifyingContract: s.cfg.DecryptionVerifier,
	}, msg)
	if !eip712.Verify(td, sig, req.UserAddress) {
		writeError(w, http.StatusUnauthorized, "signature does not match user %s", req.UserAddress.Hex())
		return
	}

	listed := make(map[common.Address]bool, len(req.ContractAddresses))
	for _, c := range req.ContractAddresses {
		listed[c] = true
	}
	var recipient domain.X25519Public
	copy(recipient[:], pubRaw)

	out := make([]domain.SealedValue, 0, len(req.HandleContractPairs))
	for _, p := range req.HandleContractPairs {
		if !listed[p.ContractAddress] {
			writeError(w, http.StatusBadRequest, "contract %s is not in contractAddresses", p.ContractAddress.Hex())
			return
		}
		ok, known := s.allowed(p.Handle, p.ContractAddress, req.UserAddress)
		if !known {
			writeError(w, http.StatusNotFound, "unknown handle %s", p.Handle)
			return
		}
		if !ok {
			writeError(w, http.StatusForbidden, "user %s may not decrypt %s", req.UserAddress.Hex(), p.Handle)
			return
		}
		v, _ := s.Lookup(p.Handle)
		plain := make([]byte, 32)
		new(big.Int).SetUint64(v.Raw).FillBytes(plain)
		sealed, err := crypto.SealTo(recipient, plain)
		crypto.Wipe(plain)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "seal: %v", err)
			return
		}
		out = append(out, domain.SealedValue{
			Handle:     domain.WireHandle{Handle: p.Handle},
			Ciphertext: crypto.RawHex(sealed),
		})
	}
	s.log.WithFields(logrus.Fields{"user": req.UserAddress.Hex(), "handles": len(out)}).Debug("user decrypt served")
	writeResponse(w, out)
}
