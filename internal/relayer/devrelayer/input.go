package devrelayer

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/ethereum/go-ethereum/common"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"

	"veilmarket/internal/crypto"
	"veilmarket/internal/domain"
	"veilmarket/internal/protocol/input"
)

// Proof layout: [count][count * 32-byte handle][65-byte coprocessor signature].

func (s *Server) handleInputProof(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()
	var req domain.InputProofRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "decode request: %v", err)
		return
	}
	if req.ContractChainID != s.cfg.ChainID {
		writeError(w, http.StatusBadRequest, "unsupported chain %d", req.ContractChainID)
		return
	}
	if req.ContractAddress == (common.Address{}) || req.UserAddress == (common.Address{}) {
		writeError(w, http.StatusBadRequest, "contract and user addresses are required")
		return
	}
	sealed, err := crypto.ParseHex(req.Ciphertext)
	if err != nil {
		writeError(w, http.StatusBadRequest, "decode ciphertext: %v", err)
		return
	}
	info, aad := input.SealContext(req.ContractChainID, req.ContractAddress, req.UserAddress)
	packed, err := crypto.OpenInput(s.netKey, info, aad, sealed)
	if err != nil {
		writeError(w, http.StatusBadRequest, "ciphertext does not open for this contract and user")
		return
	}
	slots, err := input.Unpack(packed)
	crypto.Wipe(packed)
	if err != nil {
		writeError(w, http.StatusBadRequest, "%v", err)
		return
	}
	if len(slots) == 0 {
		writeError(w, http.StatusBadRequest, "empty input batch")
		return
	}

	in, err := s.mint(ethcrypto.Keccak256(sealed), req.ContractAddress, req.UserAddress, slots)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "sign proof: %v", err)
		return
	}
	s.log.WithField("values", len(in.Handles)).Debug("input registered")

	out := domain.InputProofResponse{InputProof: crypto.Hex(in.InputProof)}
	for _, h := range in.Handles {
		out.Handles = append(out.Handles, domain.WireHandle{Handle: h})
	}
	writeResponse(w, out)
}

// Issue registers slots for (contract, user) without the HTTP round trip
// and returns the handles with their proof.
func (s *Server) Issue(contract, user common.Address, slots ...input.Slot) (domain.EncryptedInput, error) {
	for _, slot := range slots {
		if _, err := domain.NewClearValue(slot.Type, slot.Value); err != nil {
			return domain.EncryptedInput{}, err
		}
	}
	s.mu.Lock()
	s.counter++
	seed := s.counter
	s.mu.Unlock()
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], seed)
	return s.mint(ethcrypto.Keccak256([]byte("issued"), buf[:]), contract, user, slots)
}

func (s *Server) mint(seed []byte, contract, user common.Address, slots []input.Slot) (domain.EncryptedInput, error) {
	digest := ethcrypto.Keccak256(seed, contract.Bytes(), user.Bytes())
	handles := make([]domain.Handle, len(slots))
	s.mu.Lock()
	for i, slot := range slots {
		h := domain.ComposeHandle(digest, uint8(i), s.cfg.ChainID, slot.Type)
		handles[i] = h
		s.values[h] = &record{
			value:   domain.ClearValue{Type: slot.Type, Raw: slot.Value},
			allowed: map[aclKey]bool{{contract, user}: true},
		}
	}
	s.mu.Unlock()

	proof, err := s.signProof(handles, contract, user)
	if err != nil {
		return domain.EncryptedInput{}, err
	}
	return domain.EncryptedInput{Handles: handles, InputProof: proof}, nil
}

func (s *Server) proofDigest(handles []domain.Handle, contract, user common.Address) []byte {
	var chain [8]byte
	binary.BigEndian.PutUint64(chain[:], s.cfg.ChainID)
	parts := [][]byte{contract.Bytes(), user.Bytes(), chain[:]}
	for _, h := range handles {
		parts = append(parts, h.Bytes())
	}
	return ethcrypto.Keccak256(parts...)
}

func (s *Server) signProof(handles []domain.Handle, contract, user common.Address) ([]byte, error) {
	sig, err := ethcrypto.Sign(s.proofDigest(handles, contract, user), s.coprocessor)
	if err != nil {
		return nil, err
	}
	proof := []byte{byte(len(handles))}
	for _, h := range handles {
		proof = append(proof, h[:]...)
	}
	return append(proof, sig...), nil
}

// VerifyProof checks that proof was issued for exactly handles, in order,
// for (contract, user). Contract stand-ins call it before accepting inputs.
func (s *Server) VerifyProof(handles []domain.Handle, proof []byte, contract, user common.Address) error {
	n := len(handles)
	if len(proof) != 1+n*domain.HandleSize+65 || int(proof[0]) != n%256 {
		return fmt.Errorf("%w: wrong length", ErrBadProof)
	}
	for i, h := range handles {
		off := 1 + i*domain.HandleSize
		if !bytes.Equal(proof[off:off+domain.HandleSize], h[:]) {
			return fmt.Errorf("%w: handle %d not covered", ErrBadProof, i)
		}
	}
	sig := proof[1+n*domain.HandleSize:]
	pub, err := ethcrypto.SigToPub(s.proofDigest(handles, contract, user), sig)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBadProof, err)
	}
	if ethcrypto.PubkeyToAddress(*pub) != s.CoprocessorAddress() {
		return fmt.Errorf("%w: not signed by coprocessor", ErrBadProof)
	}
	return nil
}
