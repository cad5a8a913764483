package integration

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"fintel-wallet-backend/internal/adapter/http/handler"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAPIRouter(t *testing.T, e *env) *gin.Engine {
	t.Helper()
	return handler.SetupRouter(handler.RouterDeps{
		TransferSvc: e.transfers,
		AccountSvc:  e.accounts,
		TokenSvc:    e.tokens,
		Logger:      zerolog.Nop(),
	})
}

func bearerFor(t *testing.T, e *env, ownerID int64, phone string) string {
	t.Helper()
	token, _, err := e.tokens.Generate(ownerID, phone)
	require.NoError(t, err)
	return "Bearer " + token
}

func apiJSON(r *gin.Engine, method, path, auth string, body any) *httptest.ResponseRecorder {
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

func TestAPI_FullTransferFlow(t *testing.T) {
	e := newEnv(t)
	r := newAPIRouter(t, e)

	alice := e.addOwner(t, alicePhone, "Alice")
	e.addOwner(t, bobPhone, "Bob")
	auth := bearerFor(t, e, alice.ID, alicePhone)

	// Deposit 5000 through the API.
	w := apiJSON(r, http.MethodPost, "/api/v1/transfers/deposit", auth, gin.H{
		"amount": "5000",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	// Transfer 3000 to Bob.
	w = apiJSON(r, http.MethodPost, "/api/v1/transfers", auth, gin.H{
		"recipient_phone": bobPhone,
		"amount":          "3000",
		"description":     "rent share",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"new_balance":"2000"`)
	assert.Contains(t, w.Body.String(), `"currency":"XOF"`)

	// Balance query needs no auth.
	w = apiJSON(r, http.MethodGet, "/api/v1/wallet?phone=0702222222", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"balance":"3000"`)

	// Overdraw maps to 402.
	w = apiJSON(r, http.MethodPost, "/api/v1/transfers", auth, gin.H{
		"recipient_phone": bobPhone,
		"amount":          "6000",
	})
	require.Equal(t, http.StatusPaymentRequired, w.Code)
	assert.Contains(t, w.Body.String(), "FUND_001")

	// History shows the debit first.
	w = apiJSON(r, http.MethodGet, "/api/v1/transactions/history?phone=0701111111&limit=10", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"direction":"DEBIT"`)
	assert.Contains(t, w.Body.String(), "rent share")
}

func TestAPI_TransferRequiresAuth(t *testing.T) {
	e := newEnv(t)
	r := newAPIRouter(t, e)

	w := apiJSON(r, http.MethodPost, "/api/v1/transfers", "", gin.H{
		"recipient_phone": bobPhone,
		"amount":          "100",
	})
	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "AUTH_001")
}

func TestAPI_IdempotentRetry(t *testing.T) {
	e := newEnv(t)
	r := newAPIRouter(t, e)

	alice := e.addFundedOwner(t, alicePhone, "Alice", 5000)
	e.addOwner(t, bobPhone, "Bob")
	auth := bearerFor(t, e, alice.ID, alicePhone)

	body := gin.H{
		"recipient_phone": bobPhone,
		"amount":          "1000",
		"reference":       "TXN_RETRYSAFE001",
	}

	w := apiJSON(r, http.MethodPost, "/api/v1/transfers", auth, body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = apiJSON(r, http.MethodPost, "/api/v1/transfers", auth, body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "TXN_RETRYSAFE001")

	// Money moved exactly once.
	w = apiJSON(r, http.MethodGet, "/api/v1/wallet?phone="+alicePhone[1:], "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"balance":"4000"`)
}

func TestAPI_ValidationRejectsBadPhone(t *testing.T) {
	e := newEnv(t)
	r := newAPIRouter(t, e)

	alice := e.addFundedOwner(t, alicePhone, "Alice", 5000)
	auth := bearerFor(t, e, alice.ID, alicePhone)

	w := apiJSON(r, http.MethodPost, "/api/v1/transfers", auth, gin.H{
		"recipient_phone": "not-a-phone",
		"amount":          "100",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "VAL_000")
}
