package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"fintel-wallet-backend/internal/core/domain"
	"fintel-wallet-backend/internal/core/ports"
	"fintel-wallet-backend/internal/core/ports/mocks"
	"fintel-wallet-backend/pkg/apperror"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type routerDeps struct {
	transferSvc *mocks.MockTransferService
	accountSvc  *mocks.MockAccountService
	tokenSvc    *mocks.MockTokenService
}

func setupTestRouter(t *testing.T, checkers ...ports.HealthChecker) (*gin.Engine, routerDeps) {
	t.Helper()
	ctrl := gomock.NewController(t)

	deps := routerDeps{
		transferSvc: mocks.NewMockTransferService(ctrl),
		accountSvc:  mocks.NewMockAccountService(ctrl),
		tokenSvc:    mocks.NewMockTokenService(ctrl),
	}
	r := SetupRouter(RouterDeps{
		TransferSvc:    deps.transferSvc,
		AccountSvc:     deps.accountSvc,
		TokenSvc:       deps.tokenSvc,
		HealthCheckers: checkers,
		Logger:         zerolog.Nop(),
	})
	return r, deps
}

func authHeader(deps routerDeps) string {
	deps.tokenSvc.EXPECT().
		Validate("valid-token").
		Return(&ports.TokenClaims{OwnerID: 42, Phone: "+2250701234567"}, nil)
	return "Bearer valid-token"
}

func doJSON(r *gin.Engine, method, path, auth string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestTransfer_Success(t *testing.T) {
	r, deps := setupTestRouter(t)
	auth := authHeader(deps)

	deps.transferSvc.EXPECT().
		Transfer(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req ports.TransferRequest) (*ports.TransferResult, error) {
			assert.Equal(t, "+2250701234567", req.SenderRef)
			assert.Equal(t, "+2250700000002", req.RecipientRef)
			assert.True(t, req.Amount.Equal(decimal.NewFromInt(3000)))
			return &ports.TransferResult{
				Reference:     "TXN_A1B2C3D4E5F6",
				Status:        domain.TransferStatusCompleted,
				SenderBalance: decimal.NewFromInt(2000),
				Currency:      "XOF",
			}, nil
		})

	w := doJSON(r, http.MethodPost, "/api/v1/transfers", auth, gin.H{
		"recipient_phone": "+2250700000002",
		"amount":          "3000",
	})

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), "TXN_A1B2C3D4E5F6")
	assert.Contains(t, w.Body.String(), `"status":"COMPLETED"`)
}

func TestTransfer_Unauthenticated(t *testing.T) {
	r, _ := setupTestRouter(t)

	w := doJSON(r, http.MethodPost, "/api/v1/transfers", "", gin.H{
		"recipient_phone": "+2250700000002",
		"amount":          "3000",
	})

	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "AUTH_001")
}

func TestTransfer_ValidationFails(t *testing.T) {
	r, deps := setupTestRouter(t)
	auth := authHeader(deps)

	// missing recipient_phone and amount
	w := doJSON(r, http.MethodPost, "/api/v1/transfers", auth, gin.H{
		"description": "no recipient",
	})

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "VAL_000")
}

func TestTransfer_InsufficientFunds(t *testing.T) {
	r, deps := setupTestRouter(t)
	auth := authHeader(deps)

	deps.transferSvc.EXPECT().
		Transfer(gomock.Any(), gomock.Any()).
		Return(nil, apperror.ErrInsufficientFunds())

	w := doJSON(r, http.MethodPost, "/api/v1/transfers", auth, gin.H{
		"recipient_phone": "+2250700000002",
		"amount":          "6000",
	})

	require.Equal(t, http.StatusPaymentRequired, w.Code)
	assert.Contains(t, w.Body.String(), "FUND_001")
}

func TestTransfer_ConcurrencyConflict(t *testing.T) {
	r, deps := setupTestRouter(t)
	auth := authHeader(deps)

	deps.transferSvc.EXPECT().
		Transfer(gomock.Any(), gomock.Any()).
		Return(nil, apperror.ErrConcurrencyConflict(errors.New("lock timeout")))

	w := doJSON(r, http.MethodPost, "/api/v1/transfers", auth, gin.H{
		"recipient_phone": "+2250700000002",
		"amount":          "1000",
	})

	require.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "CONFLICT_001")
}

func TestDeposit_Success(t *testing.T) {
	r, deps := setupTestRouter(t)
	auth := authHeader(deps)

	deps.transferSvc.EXPECT().
		Deposit(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req ports.FundingRequest) (*ports.TransferResult, error) {
			assert.Equal(t, "+2250701234567", req.OwnerRef)
			assert.True(t, req.Amount.Equal(decimal.NewFromInt(5000)))
			return &ports.TransferResult{
				Reference:     "TXN_0011223344FF",
				Status:        domain.TransferStatusCompleted,
				SenderBalance: decimal.NewFromInt(5000),
				Currency:      "XOF",
			}, nil
		})

	w := doJSON(r, http.MethodPost, "/api/v1/transfers/deposit", auth, gin.H{
		"amount": "5000",
	})

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), "TXN_0011223344FF")
}

func TestGetBalance_Success(t *testing.T) {
	r, deps := setupTestRouter(t)

	deps.accountSvc.EXPECT().
		GetBalance(gomock.Any(), "+2250701234567").
		Return(&ports.BalanceResult{
			Balance:  decimal.NewFromInt(2000),
			Currency: "XOF",
		}, nil)

	w := doJSON(r, http.MethodGet, "/api/v1/wallet?phone=%2B2250701234567", "", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"currency":"XOF"`)
	assert.Contains(t, w.Body.String(), "2000")
}

func TestGetBalance_MissingPhone(t *testing.T) {
	r, _ := setupTestRouter(t)

	w := doJSON(r, http.MethodGet, "/api/v1/wallet", "", nil)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "VAL_000")
}

func TestGetBalance_UnknownOwner(t *testing.T) {
	r, deps := setupTestRouter(t)

	deps.accountSvc.EXPECT().
		GetBalance(gomock.Any(), "+2250799999999").
		Return(nil, apperror.ErrNotFound("Owner"))

	w := doJSON(r, http.MethodGet, "/api/v1/wallet?phone=%2B2250799999999", "", nil)

	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "ACC_001")
}

func TestGetHistory_Success(t *testing.T) {
	r, deps := setupTestRouter(t)

	counterpart := int64(20)
	entries := []domain.LedgerEntry{
		{
			ID:                  2,
			WalletID:            10,
			Direction:           domain.DirectionDebit,
			Amount:              decimal.NewFromInt(3000),
			CounterpartWalletID: &counterpart,
			Reference:           "TXN_A1B2C3D4E5F6",
			Status:              domain.EntryStatusCompleted,
			CreatedAt:           time.Now(),
		},
	}
	deps.accountSvc.EXPECT().
		GetHistory(gomock.Any(), "+2250701234567", int32(10), int32(0)).
		Return(entries, nil)

	w := doJSON(r, http.MethodGet, "/api/v1/transactions/history?phone=%2B2250701234567&limit=10", "", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "TXN_A1B2C3D4E5F6")
	assert.Contains(t, w.Body.String(), `"direction":"DEBIT"`)
}

func TestGetHistory_BadLimit(t *testing.T) {
	r, _ := setupTestRouter(t)

	w := doJSON(r, http.MethodGet, "/api/v1/transactions/history?phone=%2B2250701234567&limit=abc", "", nil)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "VAL_000")
}

type stubChecker struct {
	name string
	err  error
}

func (s stubChecker) Ping(context.Context) error { return s.err }
func (s stubChecker) Name() string               { return s.name }

func TestHealth_AllHealthy(t *testing.T) {
	r, _ := setupTestRouter(t,
		stubChecker{name: "postgresql"},
		stubChecker{name: "redis"},
	)

	w := doJSON(r, http.MethodGet, "/health", "", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"healthy"`)
}

func TestHealth_Degraded(t *testing.T) {
	r, _ := setupTestRouter(t,
		stubChecker{name: "postgresql"},
		stubChecker{name: "redis", err: errors.New("connection refused")},
	)

	w := doJSON(r, http.MethodGet, "/health", "", nil)

	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"degraded"`)
	assert.Contains(t, w.Body.String(), "connection refused")
}
