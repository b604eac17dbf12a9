package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load reads a TOML configuration file at path, merges it on top of the
// built-in defaults, applies DEXARB_* environment variable overrides, and
// returns the final Config. The returned Config has NOT been validated; the
// caller should invoke Config.Validate() after Load.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, err
	}

	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// applyEnvOverrides reads well-known DEXARB_* environment variables and
// overwrites the corresponding Config fields when a variable is set. This
// lets operators inject secrets at deploy time without touching the TOML
// file.
func applyEnvOverrides(cfg *Config) {
	// ── Blockchain ──
	setStr(&cfg.Blockchain.RPCURL, "DEXARB_BLOCKCHAIN_RPC_URL")
	setStr(&cfg.Blockchain.RPCURL, "POLYGON_RPC_URL") // compatibility alias
	setUint64(&cfg.Blockchain.ChainID, "DEXARB_BLOCKCHAIN_CHAIN_ID")

	// ── Tokens ──
	setStr(&cfg.Tokens.WETH, "DEXARB_TOKENS_WETH")
	setStr(&cfg.Tokens.USDC, "DEXARB_TOKENS_USDC")
	setStr(&cfg.Tokens.WBTC, "DEXARB_TOKENS_WBTC")

	// ── Arbitrage ──
	setStr(&cfg.Arbitrage.MinProfitThreshold, "DEXARB_ARBITRAGE_MIN_PROFIT_THRESHOLD")
	setStr(&cfg.Arbitrage.TradeAmount, "DEXARB_ARBITRAGE_TRADE_AMOUNT")
	setStr(&cfg.Arbitrage.GasCostEstimate, "DEXARB_ARBITRAGE_GAS_COST_ESTIMATE")
	setInt(&cfg.Arbitrage.CheckIntervalSeconds, "DEXARB_ARBITRAGE_CHECK_INTERVAL_SECONDS")
	setFloat64(&cfg.Arbitrage.SlippagePercent, "DEXARB_ARBITRAGE_SLIPPAGE_PERCENT")

	// ── Database ──
	setStr(&cfg.Database.DSN, "DEXARB_DATABASE_DSN")
	setStr(&cfg.Database.DSN, "DATABASE_URL") // compatibility alias
	setStr(&cfg.Database.Host, "DEXARB_DATABASE_HOST")
	setInt(&cfg.Database.Port, "DEXARB_DATABASE_PORT")
	setStr(&cfg.Database.Database, "DEXARB_DATABASE_NAME")
	setStr(&cfg.Database.User, "DEXARB_DATABASE_USER")
	setStr(&cfg.Database.Password, "DEXARB_DATABASE_PASSWORD")
	setStr(&cfg.Database.SSLMode, "DEXARB_DATABASE_SSLMODE")
	setInt(&cfg.Database.PoolMaxConns, "DEXARB_DATABASE_POOL_MAX_CONNS")
	setInt(&cfg.Database.PoolMinConns, "DEXARB_DATABASE_POOL_MIN_CONNS")
	setBool(&cfg.Database.RunMigrations, "DEXARB_DATABASE_RUN_MIGRATIONS")
	setInt(&cfg.Database.RetentionDays, "DEXARB_DATABASE_RETENTION_DAYS")

	// ── Redis ──
	setStr(&cfg.Redis.Addr, "DEXARB_REDIS_ADDR")
	setStr(&cfg.Redis.Password, "DEXARB_REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "DEXARB_REDIS_DB")
	setInt(&cfg.Redis.PoolSize, "DEXARB_REDIS_POOL_SIZE")
	setInt(&cfg.Redis.MaxRetries, "DEXARB_REDIS_MAX_RETRIES")
	setBool(&cfg.Redis.TLSEnabled, "DEXARB_REDIS_TLS_ENABLED")
	setInt(&cfg.Redis.CacheTTLSeconds, "DEXARB_REDIS_CACHE_TTL_SECONDS")

	// ── S3 ──
	setStr(&cfg.S3.Endpoint, "DEXARB_S3_ENDPOINT")
	setStr(&cfg.S3.Region, "DEXARB_S3_REGION")
	setStr(&cfg.S3.Bucket, "DEXARB_S3_BUCKET")
	setStr(&cfg.S3.AccessKey, "DEXARB_S3_ACCESS_KEY")
	setStr(&cfg.S3.SecretKey, "DEXARB_S3_SECRET_KEY")
	setBool(&cfg.S3.UseSSL, "DEXARB_S3_USE_SSL")
	setBool(&cfg.S3.ForcePathStyle, "DEXARB_S3_FORCE_PATH_STYLE")

	// ── Server ──
	setBool(&cfg.Server.Enabled, "DEXARB_SERVER_ENABLED")
	setInt(&cfg.Server.Port, "DEXARB_SERVER_PORT")

	// ── Notify ──
	setStr(&cfg.Notify.TelegramToken, "DEXARB_NOTIFY_TELEGRAM_TOKEN")
	setStr(&cfg.Notify.TelegramChatID, "DEXARB_NOTIFY_TELEGRAM_CHAT_ID")
	setStr(&cfg.Notify.DiscordWebhookURL, "DEXARB_NOTIFY_DISCORD_WEBHOOK_URL")
	setStringSlice(&cfg.Notify.Events, "DEXARB_NOTIFY_EVENTS")

	// ── Top-level ──
	setStr(&cfg.LogLevel, "DEXARB_LOG_LEVEL")
}

// ---------------------------------------------------------------------------
// Typed env-var helpers. Each only mutates the target when the environment
// variable is present and non-empty.
// ---------------------------------------------------------------------------

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setUint64(dst *uint64, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			*dst = n
		}
	}
}

func setFloat64(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setStringSlice(dst *[]string, key string) {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		cleaned := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				cleaned = append(cleaned, p)
			}
		}
		if len(cleaned) > 0 {
			*dst = cleaned
		}
	}
}
