// Package config defines the top-level configuration for the arbitrage bot
// and provides validation helpers.
package config

import (
	"fmt"
	"strings"
)

// Config is the root configuration structure. Fields are populated from a
// TOML file and then optionally overridden by DEXARB_* environment variables.
type Config struct {
	Blockchain BlockchainConfig     `toml:"blockchain"`
	Tokens     TokensConfig         `toml:"tokens"`
	Dexes      map[string]DexConfig `toml:"dexes"`
	Arbitrage  ArbitrageConfig      `toml:"arbitrage"`
	Database   DatabaseConfig       `toml:"database"`
	Redis      RedisConfig          `toml:"redis"`
	S3         S3Config             `toml:"s3"`
	Server     ServerConfig         `toml:"server"`
	Notify     NotifyConfig         `toml:"notify"`
	LogLevel   string               `toml:"log_level"`
}

// BlockchainConfig holds the RPC endpoint and expected chain.
type BlockchainConfig struct {
	RPCURL  string `toml:"rpc_url"`
	ChainID uint64 `toml:"chain_id"`
}

// TokensConfig holds the monitored token contract addresses.
type TokensConfig struct {
	WETH string `toml:"weth"`
	USDC string `toml:"usdc"`
	WBTC string `toml:"wbtc"`
}

// DexConfig holds per-venue contract addresses.
type DexConfig struct {
	Name           string `toml:"name"`
	RouterAddress  string `toml:"router_address"`
	FactoryAddress string `toml:"factory_address"`
}

// ArbitrageConfig holds the detection parameters. The three amounts are
// decimal strings parsed once at detector construction; a malformed value is
// a fatal startup error there, not here.
type ArbitrageConfig struct {
	MinProfitThreshold   string  `toml:"min_profit_threshold"`
	TradeAmount          string  `toml:"trade_amount"`
	GasCostEstimate      string  `toml:"gas_cost_estimate"`
	CheckIntervalSeconds int     `toml:"check_interval_seconds"`
	SlippagePercent      float64 `toml:"slippage_percent"`
}

// DatabaseConfig holds PostgreSQL connection parameters.
type DatabaseConfig struct {
	DSN           string `toml:"dsn"`
	Host          string `toml:"host"`
	Port          int    `toml:"port"`
	Database      string `toml:"database"`
	User          string `toml:"user"`
	Password      string `toml:"password"`
	SSLMode       string `toml:"ssl_mode"`
	PoolMaxConns  int    `toml:"pool_max_conns"`
	PoolMinConns  int    `toml:"pool_min_conns"`
	RunMigrations bool   `toml:"run_migrations"`
	RetentionDays int    `toml:"retention_days"`
}

// RedisConfig holds Redis connection parameters.
type RedisConfig struct {
	Addr            string `toml:"addr"`
	Password        string `toml:"password"`
	DB              int    `toml:"db"`
	PoolSize        int    `toml:"pool_size"`
	MaxRetries      int    `toml:"max_retries"`
	TLSEnabled      bool   `toml:"tls_enabled"`
	CacheTTLSeconds int    `toml:"cache_ttl_seconds"`
}

// S3Config holds S3-compatible object storage parameters. Archival is
// disabled when Bucket is empty.
type S3Config struct {
	Endpoint       string `toml:"endpoint"`
	Region         string `toml:"region"`
	Bucket         string `toml:"bucket"`
	AccessKey      string `toml:"access_key"`
	SecretKey      string `toml:"secret_key"`
	UseSSL         bool   `toml:"use_ssl"`
	ForcePathStyle bool   `toml:"force_path_style"`
}

// ServerConfig holds the read-only status HTTP server parameters.
type ServerConfig struct {
	Enabled bool `toml:"enabled"`
	Port    int  `toml:"port"`
}

// NotifyConfig holds operator notification channels.
type NotifyConfig struct {
	TelegramToken     string   `toml:"telegram_token"`
	TelegramChatID    string   `toml:"telegram_chat_id"`
	DiscordWebhookURL string   `toml:"discord_webhook_url"`
	Events            []string `toml:"events"`
}

// Defaults returns the built-in configuration that Load merges the TOML file
// on top of.
func Defaults() Config {
	return Config{
		Blockchain: BlockchainConfig{
			RPCURL:  "https://polygon-rpc.com",
			ChainID: 137,
		},
		Tokens: TokensConfig{
			WETH: "0x7ceB23fD6bC0adD59E62ac25578270cFf1b9f619",
			USDC: "0x2791Bca1f2de4661ED88A30C99A7a9449Aa84174",
			WBTC: "0x1BFD67037B42Cf73acF2047067bd4F2C47D9BfD6",
		},
		Dexes: map[string]DexConfig{
			"uniswap": {
				Name:           "Uniswap",
				RouterAddress:  "0xE592427A0AEce92De3Edee1F18E0157C05861564",
				FactoryAddress: "0x1F98431c8aD98523631AE4a59f267346ea31F984",
			},
			"quickswap": {
				Name:           "QuickSwap",
				RouterAddress:  "0xa5E0829CaCEd8fFDD4De3c43696c57F7D7A678ff",
				FactoryAddress: "0x5757371414417b8C6CAad45bAeF941aBc7d3Ab32",
			},
		},
		Arbitrage: ArbitrageConfig{
			MinProfitThreshold:   "5.0",
			TradeAmount:          "1000.0",
			GasCostEstimate:      "2.0",
			CheckIntervalSeconds: 30,
			SlippagePercent:      0.5,
		},
		Database: DatabaseConfig{
			Host:          "localhost",
			Port:          5432,
			Database:      "dexarb",
			User:          "dexarb",
			SSLMode:       "disable",
			PoolMaxConns:  8,
			PoolMinConns:  1,
			RunMigrations: true,
			RetentionDays: 30,
		},
		Redis: RedisConfig{
			Addr:            "localhost:6379",
			PoolSize:        8,
			MaxRetries:      3,
			CacheTTLSeconds: 60,
		},
		S3: S3Config{
			Region: "us-east-1",
			UseSSL: true,
		},
		Server: ServerConfig{
			Enabled: true,
			Port:    8080,
		},
		LogLevel: "info",
	}
}

// validLogLevels enumerates the accepted values for Config.LogLevel.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Validate checks Config for obviously invalid or missing values and returns
// a combined error describing every problem found.
func (c *Config) Validate() error {
	var errs []string

	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, fmt.Sprintf("unknown log_level %q (valid: debug, info, warn, error)", c.LogLevel))
	}

	// Blockchain
	if c.Blockchain.RPCURL == "" {
		errs = append(errs, "blockchain: rpc_url must not be empty")
	}
	if c.Blockchain.ChainID == 0 {
		errs = append(errs, "blockchain: chain_id must be set")
	}

	// Tokens
	if c.Tokens.WETH == "" || c.Tokens.USDC == "" || c.Tokens.WBTC == "" {
		errs = append(errs, "tokens: weth, usdc, and wbtc addresses must all be set")
	}

	// Dexes
	if len(c.Dexes) == 0 {
		errs = append(errs, "dexes: at least one venue must be configured")
	}
	for key, dex := range c.Dexes {
		if dex.Name == "" {
			errs = append(errs, fmt.Sprintf("dexes.%s: name must not be empty", key))
		}
		if dex.RouterAddress == "" {
			errs = append(errs, fmt.Sprintf("dexes.%s: router_address must not be empty", key))
		}
	}

	// Arbitrage. The decimal strings themselves are parsed (and rejected) at
	// detector construction; here we only require presence.
	if c.Arbitrage.MinProfitThreshold == "" {
		errs = append(errs, "arbitrage: min_profit_threshold must not be empty")
	}
	if c.Arbitrage.TradeAmount == "" {
		errs = append(errs, "arbitrage: trade_amount must not be empty")
	}
	if c.Arbitrage.GasCostEstimate == "" {
		errs = append(errs, "arbitrage: gas_cost_estimate must not be empty")
	}
	if c.Arbitrage.CheckIntervalSeconds <= 0 {
		errs = append(errs, "arbitrage: check_interval_seconds must be > 0")
	}
	if c.Arbitrage.SlippagePercent < 0 {
		errs = append(errs, "arbitrage: slippage_percent must not be negative")
	}

	// Database
	if strings.TrimSpace(c.Database.DSN) == "" {
		if c.Database.Host == "" {
			errs = append(errs, "database: host must not be empty (or set database.dsn)")
		}
		if c.Database.Port <= 0 || c.Database.Port > 65535 {
			errs = append(errs, fmt.Sprintf("database: port must be 1-65535, got %d", c.Database.Port))
		}
		if c.Database.Database == "" {
			errs = append(errs, "database: database must not be empty")
		}
	}
	if c.Database.PoolMaxConns < 1 {
		errs = append(errs, "database: pool_max_conns must be >= 1")
	}
	if c.Database.PoolMinConns < 0 {
		errs = append(errs, "database: pool_min_conns must be >= 0")
	}
	if c.Database.PoolMinConns > c.Database.PoolMaxConns {
		errs = append(errs, "database: pool_min_conns must not exceed pool_max_conns")
	}
	if c.Database.RetentionDays < 1 {
		errs = append(errs, "database: retention_days must be >= 1")
	}

	// Redis
	if c.Redis.Addr == "" {
		errs = append(errs, "redis: addr must not be empty")
	}
	if c.Redis.PoolSize < 1 {
		errs = append(errs, "redis: pool_size must be >= 1")
	}

	// S3 — optional, but when a bucket is set the endpoint credentials must be too.
	if c.S3.Bucket != "" {
		if c.S3.AccessKey == "" || c.S3.SecretKey == "" {
			errs = append(errs, "s3: access_key and secret_key are required when bucket is set")
		}
	}

	// Server
	if c.Server.Enabled {
		if c.Server.Port <= 0 || c.Server.Port > 65535 {
			errs = append(errs, fmt.Sprintf("server: port must be 1-65535, got %d", c.Server.Port))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
