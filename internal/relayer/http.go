package relayer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"veilmarket/internal/domain"
)

const (
	PathKeyURL      = "/v1/keyurl"
	PathInputProof  = "/v1/input-proof"
	PathUserDecrypt = "/v1/user-decrypt"

	// HeaderRequestID correlates a client request with relayer logs.
	HeaderRequestID = "X-Request-ID"

	maxErrorBody = 4 << 10
)

type HTTP struct {
	Base string
	HTTP *http.Client
	Log  *logrus.Entry
}

func NewHTTP(base string, client *http.Client, log *logrus.Entry) *HTTP {
	if client == nil {
		client = http.DefaultClient
	}
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &HTTP{
		Base: strings.TrimRight(base, "/"),
		HTTP: client,
		Log:  log.WithField("component", "relayer-client"),
	}
}

// envelope is the wrapper the relayer puts around successful POST results.
type envelope struct {
	Response json.RawMessage `json:"response"`
}

// errorBody is the relayer's error shape.
type errorBody struct {
	Message string `json:"message"`
}

func (c *HTTP) FetchNetworkKey(ctx context.Context) (domain.NetworkKey, error) {
	var out domain.NetworkKey
	if err := c.do(ctx, http.MethodGet, PathKeyURL, nil, &out); err != nil {
		return domain.NetworkKey{}, err
	}
	if out.PublicKey == "" {
		return domain.NetworkKey{}, fmt.Errorf("%w: empty network public key", domain.ErrProtocolViolation)
	}
	return out, nil
}

func (c *HTTP) RegisterInput(ctx context.Context, req domain.InputProofRequest) (domain.InputProofResponse, error) {
	var env envelope
	if err := c.do(ctx, http.MethodPost, PathInputProof, req, &env); err != nil {
		return domain.InputProofResponse{}, err
	}
	var out domain.InputProofResponse
	if err := json.Unmarshal(env.Response, &out); err != nil {
		return domain.InputProofResponse{}, fmt.Errorf("%w: input proof response: %v", domain.ErrProtocolViolation, err)
	}
	return out, nil
}

func (c *HTTP) UserDecrypt(ctx context.Context, req domain.UserDecryptRequest) (domain.UserDecryptResponse, error) {
	var env envelope
	if err := c.do(ctx, http.MethodPost, PathUserDecrypt, req, &env); err != nil {
		return domain.UserDecryptResponse{}, err
	}
	var out domain.UserDecryptResponse
	if err := json.Unmarshal(env.Response, &out.Values); err != nil {
		return domain.UserDecryptResponse{}, fmt.Errorf("%w: user decrypt response: %v", domain.ErrProtocolViolation, err)
	}
	return out, nil
}

func (c *HTTP) do(ctx context.Context, method, path string, in any, out any) error {
	var body io.Reader
	if in != nil {
		buf := new(bytes.Buffer)
		if err := json.NewEncoder(buf).Encode(in); err != nil {
			return err
		}
		body = buf
	}
	req, err := http.NewRequestWithContext(ctx, method, c.Base+path, body)
	if err != nil {
		return err
	}
	id := uuid.NewString()
	req.Header.Set(HeaderRequestID, id)
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	log := c.Log.WithFields(logrus.Fields{"method": method, "path": path, "request_id": id})
	log.Debug("relayer request")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("%w: %s %s: %v", domain.ErrRelayerUnavailable, method, path, err)
	}
	defer resp.Body.Close()
	log = log.WithField("status", resp.StatusCode)

	if resp.StatusCode/100 != 2 {
		msg := readErrorMessage(resp.Body)
		log.WithField("message", msg).Debug("relayer error")
		if resp.StatusCode >= 500 {
			return fmt.Errorf("%w: %s %s: %s %s", domain.ErrRelayerUnavailable, method, path, resp.Status, msg)
		}
		return fmt.Errorf("%w: %s %s: %s %s", domain.ErrDecryptionDenied, method, path, resp.Status, msg)
	}
	log.Debug("relayer response")
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %s %s: decode: %v", domain.ErrProtocolViolation, method, path, err)
	}
	return nil
}

func readErrorMessage(r io.Reader) string {
	raw, _ := io.ReadAll(io.LimitReader(r, maxErrorBody))
	var eb errorBody
	if err := json.Unmarshal(raw, &eb); err == nil && eb.Message != "" {
		return eb.Message
	}
	return strings.TrimSpace(string(raw))
}

var _ domain.RelayerClient = (*HTTP)(nil)
