package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pushchain/svm-deposit-encoder/depositClient/chains/svm"
	"github.com/pushchain/svm-deposit-encoder/depositClient/config"
	deperrors "github.com/pushchain/svm-deposit-encoder/depositClient/errors"
)

// fakeChain implements svm.ChainReader and HealthChecker for testing
type fakeChain struct {
	blockhash svm.Blockhash
	err       error
	healthy   bool
}

func (f *fakeChain) GetRecentBlockhash(ctx context.Context) (svm.Blockhash, error) {
	return f.blockhash, f.err
}

func (f *fakeChain) GetAccountInfo(ctx context.Context, account solana.PublicKey) (*rpc.Account, error) {
	return &rpc.Account{Lamports: 1}, nil
}

func (f *fakeChain) IsHealthy(ctx context.Context) bool {
	return f.healthy
}

func newTestServer(t *testing.T, chain *fakeChain) *Server {
	t.Helper()
	cfg, err := config.LoadDefaultConfig()
	require.NoError(t, err)
	gw, err := cfg.ResolveGateway()
	require.NoError(t, err)

	logger := zerolog.New(zerolog.NewTestWriter(t))
	encoder := svm.NewDepositEncoder(gw, nil, chain, logger)
	return NewServer(logger, 0, encoder, chain)
}

func healthyChain() *fakeChain {
	return &fakeChain{
		blockhash: svm.Blockhash{
			Hash:                 solana.Hash(solana.NewWallet().PublicKey()),
			LastValidBlockHeight: 900,
		},
		healthy: true,
	}
}

func postDeposit(t *testing.T, server *Server, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/deposits", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	server.server.Handler.ServeHTTP(w, req)
	return w
}

func TestHandleHealth(t *testing.T) {
	t.Run("Health check returns OK", func(t *testing.T) {
		server := newTestServer(t, healthyChain())
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		w := httptest.NewRecorder()

		server.handleHealth(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "OK", w.Body.String())
	})

	t.Run("Unhealthy chain returns 503", func(t *testing.T) {
		chain := healthyChain()
		chain.healthy = false
		server := newTestServer(t, chain)
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		w := httptest.NewRecorder()

		server.handleHealth(w, req)

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})
}

func TestHandleBuildDeposit_Native(t *testing.T) {
	chain := healthyChain()
	server := newTestServer(t, chain)
	signer := solana.NewWallet().PublicKey()

	w := postDeposit(t, server, `{
		"asset": "native",
		"amount": 1.5,
		"destination_address": "0x1111111111111111111111111111111111111111",
		"signer": "`+signer.String()+`"
	}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp DepositResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "native", resp.Asset)
	assert.Equal(t, "deposit_and_call", resp.Instruction)
	assert.Equal(t, "1502000000", resp.AmountBaseUnits)
	assert.Equal(t, chain.blockhash.Hash.String(), resp.Blockhash)
	assert.Equal(t, uint64(900), resp.LastValidBlockHeight)
	assert.Len(t, resp.Payload, 2+169*2)
	require.Len(t, resp.Accounts, 3)
	assert.Equal(t, "signer", resp.Accounts[0].Name)
	assert.Equal(t, signer.String(), resp.Accounts[0].Address)
	assert.True(t, resp.Accounts[0].Signer)

	tx, err := svm.DecodeTransaction(resp.Transaction)
	require.NoError(t, err)
	assert.Equal(t, signer, tx.Message.AccountKeys[0])
}

func TestHandleBuildDeposit_FungibleDefaults(t *testing.T) {
	server := newTestServer(t, healthyChain())

	w := postDeposit(t, server, `{
		"asset": "spl",
		"amount": "100.25",
		"destination_address": "0x1111111111111111111111111111111111111111",
		"signer": "`+solana.NewWallet().PublicKey().String()+`"
	}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp DepositResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "100250000", resp.AmountBaseUnits)
	require.Len(t, resp.Accounts, 8)
	assert.Equal(t, "mint", resp.Accounts[3].Name)
	assert.Equal(t, "4zMMC9srt5Ri5X14GAgXhaHii3GnPAEERYPJgZJDncDU", resp.Accounts[3].Address)
}

func TestHandleBuildDeposit_Errors(t *testing.T) {
	signer := solana.NewWallet().PublicKey().String()

	tests := []struct {
		name       string
		chain      func() *fakeChain
		body       string
		wantStatus int
		wantCode   deperrors.ErrorCode
	}{
		{
			name:       "malformed json",
			body:       `{"asset":`,
			wantStatus: http.StatusBadRequest,
			wantCode:   deperrors.ErrCodeValidation,
		},
		{
			name:       "unknown asset",
			body:       `{"asset":"btc","amount":"1","destination_address":"0x1111111111111111111111111111111111111111","signer":"` + signer + `"}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   deperrors.ErrCodeValidation,
		},
		{
			name:       "bad signer",
			body:       `{"asset":"native","amount":"1","destination_address":"0x1111111111111111111111111111111111111111","signer":"nope"}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   deperrors.ErrCodeValidation,
		},
		{
			name:       "19 byte destination",
			body:       `{"asset":"native","amount":"1","destination_address":"0x1111111111111111111111111111111111111a","signer":"` + signer + `"}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   deperrors.ErrCodeInvalidDestinationLength,
		},
		{
			name:       "amount overflow",
			body:       `{"asset":"native","amount":"99999999999","destination_address":"0x1111111111111111111111111111111111111111","signer":"` + signer + `"}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   deperrors.ErrCodeAmountOverflow,
		},
		{
			name: "blockhash unavailable",
			chain: func() *fakeChain {
				c := healthyChain()
				c.err = errors.New("connection refused")
				return c
			},
			body:       `{"asset":"native","amount":"1","destination_address":"0x1111111111111111111111111111111111111111","signer":"` + signer + `"}`,
			wantStatus: http.StatusServiceUnavailable,
			wantCode:   deperrors.ErrCodeNetworkUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chain := healthyChain()
			if tt.chain != nil {
				chain = tt.chain()
			}
			w := postDeposit(t, newTestServer(t, chain), tt.body)

			assert.Equal(t, tt.wantStatus, w.Code)
			var resp ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, string(tt.wantCode), resp.Code)
			assert.NotEmpty(t, resp.Error)
		})
	}
}

func TestHandleDiscriminator(t *testing.T) {
	server := newTestServer(t, healthyChain())

	t.Run("known instruction", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/discriminators/deposit_and_call", nil)
		w := httptest.NewRecorder()
		server.server.Handler.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		var resp DiscriminatorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "deposit_and_call", resp.Name)
		assert.Len(t, resp.Discriminator, 2+16)
	})

	t.Run("unknown instruction", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/discriminators/withdraw", nil)
		w := httptest.NewRecorder()
		server.server.Handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestStatusForCode(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, statusForCode(deperrors.ErrCodeEncodingOverflow))
	assert.Equal(t, http.StatusUnprocessableEntity, statusForCode(deperrors.ErrCodeUnresolvedAccount))
	assert.Equal(t, http.StatusServiceUnavailable, statusForCode(deperrors.ErrCodeNetworkUnavailable))
	assert.Equal(t, http.StatusInternalServerError, statusForCode(deperrors.ErrCodeInternal))
	assert.Equal(t, http.StatusInternalServerError, statusForCode(deperrors.ErrCodeConfig))
}
