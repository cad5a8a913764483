package handler

import (
	"fintel-wallet-backend/internal/adapter/http/middleware"
	"fintel-wallet-backend/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	TransferSvc    ports.TransferService
	AccountSvc     ports.AccountService
	TokenSvc       ports.TokenService
	HealthCheckers []ports.HealthChecker
	Logger         zerolog.Logger
}

// SetupRouter initialises the Gin engine with all routes and middleware.
// Queries are open; every money-moving route sits behind JWT auth.
func SetupRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.MaxBodySize(1 << 20)) // 1 MB request body limit

	// Health check (deep — verifies PostgreSQL + Redis)
	r.GET("/health", HealthCheck(deps.HealthCheckers...))

	v1 := r.Group("/api/v1")

	// --- Queries (no auth) ---
	walletHandler := NewWalletHandler(deps.AccountSvc)
	v1.GET("/wallet", walletHandler.GetBalance)
	v1.GET("/transactions/history", walletHandler.GetHistory)

	// --- Money movement (JWT-authenticated) ---
	jwtAuth := middleware.JWTAuth(deps.TokenSvc, deps.Logger)
	transferHandler := NewTransferHandler(deps.TransferSvc)
	transfers := v1.Group("/transfers", jwtAuth)
	{
		transfers.POST("", transferHandler.Transfer)
		transfers.POST("/deposit", transferHandler.Deposit)
		transfers.POST("/withdraw", transferHandler.Withdraw)
	}

	return r
}
