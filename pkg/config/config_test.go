package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "BDT", cfg.Shop.Currency)
	assert.Equal(t, BackendFile, cfg.Storage.Backend)
	assert.Equal(t, "data", cfg.Storage.DataDir)
	assert.Equal(t, "bills", cfg.MongoDB.Collection)
	assert.Equal(t, []string{"shop.log"}, cfg.Log.OutputPaths)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
shop:
  currency: "USD"
storage:
  backend: "sqlite"
  sqlite_path: "/tmp/x.db"
  carts: "redis"
redis:
  addr: "cache:6379"
  cart_ttl: 90m
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "USD", cfg.Shop.Currency)
	assert.Equal(t, BackendSQLite, cfg.Storage.Backend)
	assert.Equal(t, "/tmp/x.db", cfg.Storage.SQLitePath)
	assert.Equal(t, BackendRedis, cfg.Storage.Carts)
	assert.Equal(t, "cache:6379", cfg.Redis.Addr)
	assert.Equal(t, 90*time.Minute, cfg.Redis.CartTTL)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("SHOP_STORAGE_DATA_DIR", "/var/lib/shop")
	t.Setenv("SHOP_SHOP_CURRENCY", "EUR")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "/var/lib/shop", cfg.Storage.DataDir)
	assert.Equal(t, "EUR", cfg.Shop.Currency)
}

func TestLoadRejectsUnknownBackend(t *testing.T) {
	t.Setenv("SHOP_STORAGE_BACKEND", "postgres")

	_, err := Load("")
	assert.Error(t, err)
}

func TestMySQLDSN(t *testing.T) {
	c := MySQLConfig{Host: "db", Port: 3307, Username: "u", Password: "p", Database: "shop"}
	assert.Equal(t, "u:p@tcp(db:3307)/shop?charset=utf8mb4&parseTime=True&loc=Local", c.DSN())
}

func TestLoadDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	content := "SHOP_LOG_LEVEL=debug\nSHOP_SHOP_NAME=Dotenv Shop\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	t.Setenv("SHOP_SHOP_NAME", "Env Shop")
	t.Cleanup(func() { os.Unsetenv("SHOP_LOG_LEVEL") })

	require.NoError(t, LoadDotEnv(path))

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "Env Shop", cfg.Shop.Name)
}

func TestLoadDotEnvMissingFile(t *testing.T) {
	assert.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), ".env")))
}
