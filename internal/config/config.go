// Package config defines the runtime configuration for the coin ledger and
// its loaders.
package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/coinroutine/ledger/internal/ledger"
	"github.com/coinroutine/ledger/internal/market"
	"github.com/coinroutine/ledger/internal/store"
	"github.com/coinroutine/ledger/pkg/errors"
)

// Config is the root configuration. Fields are populated from a YAML file and
// then overridden by COINLEDGER_* environment variables, which is how
// operators inject the market API key without committing it.
type Config struct {
	Market MarketConfig `yaml:"market"`
	Store  StoreConfig  `yaml:"store"`
	Ledger LedgerConfig `yaml:"ledger"`
	Server ServerConfig `yaml:"server"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level" validate:"omitempty,oneof=debug info warn error"`
}

// MarketConfig selects and parameterizes the market data source.
type MarketConfig struct {
	Provider market.SourceType `yaml:"provider" validate:"required,oneof=coinranking binance"`
	// Host overrides the provider's default API host. Useful for tests.
	Host   string `yaml:"host" validate:"omitempty,url"`
	APIKey string `yaml:"api_key"`
	// Symbols is the tracked base asset list for providers that quote per
	// trading pair rather than serving a ranked list.
	Symbols []string `yaml:"symbols"`
}

// StoreConfig parameterizes the position store.
type StoreConfig struct {
	// DSN is the DuckDB database path, or ":memory:" for an ephemeral store.
	DSN string `yaml:"dsn" validate:"required"`
	// StartingBalance seeds the cash balance of a fresh portfolio.
	StartingBalance float64 `yaml:"starting_balance" validate:"gte=0"`
}

// LedgerConfig tunes trade settlement.
type LedgerConfig struct {
	// DustThreshold is the fiat remainder below which a sell clears the
	// whole position. Zero disables dust clearing.
	DustThreshold float64 `yaml:"dust_threshold" validate:"gte=0"`
	// RejectNonPositive makes trades with zero or negative amounts fail
	// instead of settling as no-ops.
	RejectNonPositive bool `yaml:"reject_non_positive"`
}

// ServerConfig parameterizes the HTTP API.
type ServerConfig struct {
	Addr string `yaml:"addr" validate:"required,hostname_port"`
}

// Defaults returns the configuration used when no file is given.
func Defaults() Config {
	return Config{
		Market: MarketConfig{
			Provider: market.SourceCoinranking,
		},
		Store: StoreConfig{
			DSN:             "coinledger.db",
			StartingBalance: store.DefaultStartingBalance,
		},
		Ledger: LedgerConfig{
			DustThreshold: ledger.DefaultDustThreshold,
		},
		Server: ServerConfig{
			Addr: "localhost:8080",
		},
		LogLevel: "info",
	}
}

// Load reads the YAML file at path on top of the defaults and applies
// environment overrides. An empty path loads defaults plus environment only.
// The returned config is already validated.
func Load(path string) (Config, error) {
	cfg := Defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "failed to read config file %s", path)
		}

		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "failed to parse config file %s", path)
		}
	}

	applyEnvOverrides(&cfg)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate checks the struct tags and cross-field constraints.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid configuration", err)
	}

	if c.Market.Provider == market.SourceBinance && len(c.Market.Symbols) == 0 {
		return errors.New(errors.ErrCodeInvalidConfiguration, "binance provider requires a tracked symbol list")
	}

	return nil
}

func applyEnvOverrides(cfg *Config) {
	setProvider(&cfg.Market.Provider, "COINLEDGER_MARKET_PROVIDER")
	setStr(&cfg.Market.Host, "COINLEDGER_MARKET_HOST")
	setStr(&cfg.Market.APIKey, "COINLEDGER_MARKET_API_KEY")
	setList(&cfg.Market.Symbols, "COINLEDGER_MARKET_SYMBOLS")

	setStr(&cfg.Store.DSN, "COINLEDGER_STORE_DSN")
	setFloat64(&cfg.Store.StartingBalance, "COINLEDGER_STORE_STARTING_BALANCE")

	setFloat64(&cfg.Ledger.DustThreshold, "COINLEDGER_LEDGER_DUST_THRESHOLD")
	setBool(&cfg.Ledger.RejectNonPositive, "COINLEDGER_LEDGER_REJECT_NON_POSITIVE")

	setStr(&cfg.Server.Addr, "COINLEDGER_SERVER_ADDR")
	setStr(&cfg.LogLevel, "COINLEDGER_LOG_LEVEL")
}

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setProvider(dst *market.SourceType, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = market.SourceType(v)
	}
}

func setList(dst *[]string, key string) {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}

		*dst = parts
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
