package devrelayer_test

import (
	"context"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"

	"veilmarket/internal/config"
	"veilmarket/internal/crypto"
	"veilmarket/internal/domain"
	"veilmarket/internal/protocol/eip712"
	"veilmarket/internal/protocol/userdecrypt"
	"veilmarket/internal/relayer"
	"veilmarket/internal/relayer/devrelayer"
	"veilmarket/internal/session"
	"veilmarket/internal/wallet"
)

var contract = common.HexToAddress("0x00000000000000000000000000000000000000c0")

type harness struct {
	srv     *devrelayer.Server
	client  *relayer.HTTP
	session *session.Session
	net     config.Network
}

func newHarness(t *testing.T, now func() time.Time) *harness {
	t.Helper()
	net := config.Builtin()["localhost"]
	srv, err := devrelayer.New(devrelayer.Config{
		ChainID:            net.ChainID,
		GatewayChainID:     net.GatewayChainID,
		DecryptionVerifier: net.DecryptionVerifierAddress(),
		Now:                now,
	})
	require.NoError(t, err)
	hs := httptest.NewServer(srv)
	t.Cleanup(hs.Close)

	client := relayer.NewHTTP(hs.URL, hs.Client(), nil)
	return &harness{srv: srv, client: client, session: session.New(net, client, nil, nil), net: net}
}

func newWallet(t *testing.T) *wallet.Local {
	t.Helper()
	key, err := ethcrypto.GenerateKey()
	require.NoError(t, err)
	return wallet.NewLocal(key)
}

func (h *harness) coordinator(t *testing.T, w domain.Signer) *userdecrypt.Coordinator {
	t.Helper()
	return userdecrypt.New(func() (userdecrypt.Backend, error) {
		inst, err := h.session.Instance()
		if err != nil {
			return nil, err
		}
		return inst, nil
	}, w)
}

func TestRoundTrip_EncryptThenDecrypt(t *testing.T) {
	h := newHarness(t, nil)
	w := newWallet(t)
	ctx := context.Background()

	inst, err := h.session.Initialize(ctx)
	require.NoError(t, err)

	b, err := inst.CreateEncryptedInput(contract, w.Address())
	require.NoError(t, err)
	require.NoError(t, b.AddUint32(7))
	require.NoError(t, b.AddBool(true))
	in, err := b.Encrypt(ctx)
	require.NoError(t, err)
	require.Len(t, in.Handles, 2)
	require.NoError(t, h.srv.VerifyProof(in.Handles, in.InputProof, contract, w.Address()))
	require.ErrorIs(t, h.srv.VerifyProof(in.Handles, in.InputProof, contract, common.Address{9}), devrelayer.ErrBadProof)

	res, err := h.coordinator(t, w).DecryptMany(ctx, in.Handles, contract)
	require.NoError(t, err)
	shares, err := res[in.Handles[0]].Uint32()
	require.NoError(t, err)
	require.Equal(t, uint32(7), shares)
	yes, err := res[in.Handles[1]].Bool()
	require.NoError(t, err)
	require.True(t, yes)
}

func TestUserDecrypt_ACL(t *testing.T) {
	h := newHarness(t, nil)
	owner, other := newWallet(t), newWallet(t)
	ctx := context.Background()
	_, err := h.session.Initialize(ctx)
	require.NoError(t, err)

	handle, err := h.srv.Register(domain.FheUint64, 1e15, contract, owner.Address())
	require.NoError(t, err)

	v, err := h.coordinator(t, owner).DecryptUint64(ctx, handle, contract)
	require.NoError(t, err)
	require.Equal(t, uint64(1e15), v)

	_, err = h.coordinator(t, other).DecryptUint64(ctx, handle, contract)
	require.ErrorIs(t, err, domain.ErrDecryptionDenied)

	require.NoError(t, h.srv.Allow(handle, contract, other.Address()))
	v, err = h.coordinator(t, other).DecryptUint64(ctx, handle, contract)
	require.NoError(t, err)
	require.Equal(t, uint64(1e15), v)
}

func TestUserDecrypt_Expired(t *testing.T) {
	later := time.Now().Add(11 * 24 * time.Hour)
	h := newHarness(t, func() time.Time { return later })
	w := newWallet(t)
	ctx := context.Background()
	_, err := h.session.Initialize(ctx)
	require.NoError(t, err)

	handle, err := h.srv.Register(domain.FheBool, 1, contract, w.Address())
	require.NoError(t, err)
	_, err = h.coordinator(t, w).DecryptBool(ctx, handle, contract)
	require.ErrorIs(t, err, domain.ErrDecryptionDenied)
}

func TestUserDecrypt_SignatureMustMatchUser(t *testing.T) {
	h := newHarness(t, nil)
	owner, attacker := newWallet(t), newWallet(t)
	ctx := context.Background()

	handle, err := h.srv.Register(domain.FheUint8, 3, contract, owner.Address())
	require.NoError(t, err)

	kp, err := crypto.GenerateDecryptionKeypair()
	require.NoError(t, err)
	msg := domain.AuthorizationMessage{
		PublicKey:         kp.Public.Slice(),
		ContractAddresses: []common.Address{contract},
		StartTimestamp:    time.Now().Unix(),
		DurationDays:      10,
	}
	td := eip712.NewUserDecryptRequest(eip712.Domain{
		ChainID:           h.net.GatewayChainID,
		VerifyingContract: h.net.DecryptionVerifierAddress(),
	}, msg)
	sig, err := attacker.SignTypedData(ctx, td)
	require.NoError(t, err)

	_, err = h.client.UserDecrypt(ctx, domain.UserDecryptRequest{
		HandleContractPairs: []domain.HandleContractPair{{Handle: handle, ContractAddress: contract}},
		RequestValidity: domain.RequestValidity{
			StartTimestamp: strconv.FormatInt(msg.StartTimestamp, 10),
			DurationDays:   "10",
		},
		ContractsChainID:  "31337",
		ContractAddresses: []common.Address{contract},
		UserAddress:       owner.Address(),
		Signature:         crypto.RawHex(sig),
		PublicKey:         crypto.RawHex(kp.Public.Slice()),
	})
	require.ErrorIs(t, err, domain.ErrDecryptionDenied)
}

func TestKeyURL(t *testing.T) {
	h := newHarness(t, nil)
	key, err := h.client.FetchNetworkKey(context.Background())
	require.NoError(t, err)
	require.Equal(t, h.srv.NetworkKey(), key)
	_, err = crypto.ParseNetworkKey(key.PublicKey)
	require.NoError(t, err)
}
