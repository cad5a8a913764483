package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "XOF", cfg.Wallet.Currency)
	assert.Equal(t, "225", cfg.Wallet.CountryCode)
	assert.Equal(t, 3*time.Second, cfg.Wallet.LockTimeout)
	assert.Equal(t, "fintel_wallet", cfg.Database.DBName)
	assert.Equal(t, 24*time.Hour, cfg.JWT.Expiry)
}

func TestLoad_FromFile(t *testing.T) {
	dir := t.TempDir()
	content := []byte(`
server:
  port: 9090
wallet:
  currency: GHS
  lock_timeout: 500ms
database:
  dbname: wallet_test
`)
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, content, 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "GHS", cfg.Wallet.Currency)
	assert.Equal(t, 500*time.Millisecond, cfg.Wallet.LockTimeout)
	assert.Equal(t, "wallet_test", cfg.Database.DBName)
	// Untouched keys fall back to defaults.
	assert.Equal(t, "localhost", cfg.Database.Host)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("FINTEL_WALLET_CURRENCY", "NGN")
	t.Setenv("FINTEL_SERVER_PORT", "7070")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "NGN", cfg.Wallet.Currency)
	assert.Equal(t, 7070, cfg.Server.Port)
}

func TestDatabaseConfig_DSN(t *testing.T) {
	d := DatabaseConfig{
		Host: "db.internal", Port: 5433, User: "svc", Password: "pw",
		DBName: "wallet", SSLMode: "require",
	}
	assert.Equal(t, "postgres://svc:pw@db.internal:5433/wallet?sslmode=require", d.DSN())
}

func TestRedisConfig_Addr(t *testing.T) {
	r := RedisConfig{Host: "cache.internal", Port: 6380}
	assert.Equal(t, "cache.internal:6380", r.Addr())
}
