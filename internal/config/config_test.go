package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultsValidate(t *testing.T) {
	cfg := Defaults()
	assert.NoError(t, cfg.Validate())
}

func TestDefaults(t *testing.T) {
	cfg := Defaults()
	assert.Equal(t, uint64(137), cfg.Blockchain.ChainID)
	assert.Equal(t, "5.0", cfg.Arbitrage.MinProfitThreshold)
	assert.Equal(t, "1000.0", cfg.Arbitrage.TradeAmount)
	assert.Equal(t, 30, cfg.Arbitrage.CheckIntervalSeconds)
	assert.Equal(t, 60, cfg.Redis.CacheTTLSeconds)
	assert.Equal(t, 30, cfg.Database.RetentionDays)
	assert.Contains(t, cfg.Dexes, "uniswap")
	assert.Contains(t, cfg.Dexes, "quickswap")
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestValidateReportsEveryProblem(t *testing.T) {
	cfg := Defaults()
	cfg.Blockchain.RPCURL = ""
	cfg.Blockchain.ChainID = 0
	cfg.Tokens.WETH = ""
	cfg.Arbitrage.CheckIntervalSeconds = 0
	cfg.Redis.Addr = ""
	cfg.LogLevel = "verbose"

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rpc_url")
	assert.Contains(t, err.Error(), "chain_id")
	assert.Contains(t, err.Error(), "weth, usdc, and wbtc")
	assert.Contains(t, err.Error(), "check_interval_seconds")
	assert.Contains(t, err.Error(), "redis: addr")
	assert.Contains(t, err.Error(), "log_level")
}

func TestValidateDexes(t *testing.T) {
	cfg := Defaults()
	cfg.Dexes = nil
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least one venue")

	cfg = Defaults()
	cfg.Dexes["uniswap"] = DexConfig{Name: "", RouterAddress: ""}
	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dexes.uniswap: name")
	assert.Contains(t, err.Error(), "dexes.uniswap: router_address")
}

func TestValidateDSNSkipsHostChecks(t *testing.T) {
	cfg := Defaults()
	cfg.Database.DSN = "postgres://user:pass@db:5432/dexarb"
	cfg.Database.Host = ""
	cfg.Database.Port = 0
	cfg.Database.Database = ""
	assert.NoError(t, cfg.Validate())
}

func TestValidatePoolBounds(t *testing.T) {
	cfg := Defaults()
	cfg.Database.PoolMinConns = 10
	cfg.Database.PoolMaxConns = 4
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pool_min_conns must not exceed pool_max_conns")
}

func TestValidateS3RequiresCredentialsWhenBucketSet(t *testing.T) {
	cfg := Defaults()
	cfg.S3.Bucket = "dexarb-archive"
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "access_key and secret_key")

	cfg.S3.AccessKey = "key"
	cfg.S3.SecretKey = "secret"
	assert.NoError(t, cfg.Validate())
}

func TestLoadMergesFileOverDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
log_level = "debug"

[arbitrage]
min_profit_threshold = "10.0"

[redis]
addr = "redis.internal:6379"
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	// Overridden values.
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "10.0", cfg.Arbitrage.MinProfitThreshold)
	assert.Equal(t, "redis.internal:6379", cfg.Redis.Addr)

	// Values absent from the file fall back to defaults.
	assert.Equal(t, "1000.0", cfg.Arbitrage.TradeAmount)
	assert.Equal(t, uint64(137), cfg.Blockchain.ChainID)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("DEXARB_BLOCKCHAIN_RPC_URL", "https://rpc.example.com")
	t.Setenv("DEXARB_ARBITRAGE_CHECK_INTERVAL_SECONDS", "15")
	t.Setenv("DEXARB_DATABASE_RUN_MIGRATIONS", "false")
	t.Setenv("DEXARB_ARBITRAGE_SLIPPAGE_PERCENT", "1.5")
	t.Setenv("DEXARB_NOTIFY_EVENTS", "opportunity, error")

	cfg := Defaults()
	applyEnvOverrides(&cfg)

	assert.Equal(t, "https://rpc.example.com", cfg.Blockchain.RPCURL)
	assert.Equal(t, 15, cfg.Arbitrage.CheckIntervalSeconds)
	assert.False(t, cfg.Database.RunMigrations)
	assert.Equal(t, 1.5, cfg.Arbitrage.SlippagePercent)
	assert.Equal(t, []string{"opportunity", "error"}, cfg.Notify.Events)
}

func TestEnvOverrideAliases(t *testing.T) {
	t.Setenv("POLYGON_RPC_URL", "https://polygon.example.com")
	t.Setenv("DATABASE_URL", "postgres://u:p@h:5432/d")

	cfg := Defaults()
	applyEnvOverrides(&cfg)

	assert.Equal(t, "https://polygon.example.com", cfg.Blockchain.RPCURL)
	assert.Equal(t, "postgres://u:p@h:5432/d", cfg.Database.DSN)
}

func TestRedactedConfig(t *testing.T) {
	cfg := Defaults()
	cfg.Database.Password = "hunter2"
	cfg.Database.DSN = "postgres://u:hunter2@h/db"
	cfg.Redis.Password = "redispass"
	cfg.S3.AccessKey = "AKIA123"
	cfg.S3.SecretKey = "secret"
	cfg.Notify.TelegramToken = "123:abc"

	out := RedactedConfig(&cfg)
	assert.Equal(t, "***", out.Database.Password)
	assert.Equal(t, "***", out.Database.DSN)
	assert.Equal(t, "***", out.Redis.Password)
	assert.Equal(t, "***", out.S3.AccessKey)
	assert.Equal(t, "***", out.S3.SecretKey)
	assert.Equal(t, "***", out.Notify.TelegramToken)

	// Empty fields stay empty, non-secrets stay intact, the input is untouched.
	assert.Empty(t, out.Notify.DiscordWebhookURL)
	assert.Equal(t, cfg.Blockchain.RPCURL, out.Blockchain.RPCURL)
	assert.Equal(t, "hunter2", cfg.Database.Password)
}

func TestEnvOverrideIgnoresMalformedValues(t *testing.T) {
	t.Setenv("DEXARB_ARBITRAGE_CHECK_INTERVAL_SECONDS", "often")
	t.Setenv("DEXARB_DATABASE_RUN_MIGRATIONS", "maybe")

	cfg := Defaults()
	applyEnvOverrides(&cfg)

	assert.Equal(t, 30, cfg.Arbitrage.CheckIntervalSeconds)
	assert.True(t, cfg.Database.RunMigrations)
}
