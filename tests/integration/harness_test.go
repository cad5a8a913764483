package integration

import (
	"context"
	"testing"
	"time"

	"fintel-wallet-backend/internal/adapter/storage/memory"
	redisStorage "fintel-wallet-backend/internal/adapter/storage/redis"
	"fintel-wallet-backend/internal/core/domain"
	"fintel-wallet-backend/internal/core/ports"
	"fintel-wallet-backend/internal/service"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// env wires the real services over the in-memory store and a miniredis
// idempotency cache, so full transfer flows run without external services.
type env struct {
	store     *memory.Store
	redis     *miniredis.Miniredis
	identity  *service.IdentityService
	transfers *service.TransferCoordinator
	accounts  *service.AccountService
	tokens    *service.JWTTokenService
}

func newEnv(t *testing.T) *env {
	t.Helper()

	store := memory.NewStore("XOF", 2*time.Second)

	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	cache := redisStorage.NewIdempotencyCache(client)

	identity := service.NewIdentityService(store.Owners(), "225")
	log := zerolog.Nop()

	transfers := service.NewTransferCoordinator(
		store, store, store, store,
		identity,
		service.NewReferenceGenerator(),
		cache,
		nil,
		"XOF",
		log,
	)
	accounts := service.NewAccountService(identity, store, store, log)
	tokens := service.NewJWTTokenService("integration-test-secret", time.Hour, "fintel-wallet-backend")

	return &env{
		store:     store,
		redis:     mr,
		identity:  identity,
		transfers: transfers,
		accounts:  accounts,
		tokens:    tokens,
	}
}

// addOwner registers an owner under the normalized form of phone.
func (e *env) addOwner(t *testing.T, phone, name string) *domain.Owner {
	t.Helper()
	return e.store.AddOwner(e.identity.NormalizePhone(phone), name)
}

// addFundedOwner registers an owner and deposits the given amount.
func (e *env) addFundedOwner(t *testing.T, phone, name string, amount int64) *domain.Owner {
	t.Helper()
	owner := e.addOwner(t, phone, name)
	if amount > 0 {
		_, err := e.transfers.Deposit(context.Background(), ports.FundingRequest{
			OwnerRef:    phone,
			Amount:      decimal.NewFromInt(amount),
			Description: "initial deposit",
		})
		require.NoError(t, err)
	}
	return owner
}

func (e *env) balance(t *testing.T, phone string) decimal.Decimal {
	t.Helper()
	res, err := e.accounts.GetBalance(context.Background(), phone)
	require.NoError(t, err)
	return res.Balance
}
