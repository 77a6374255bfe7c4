// Package market provides access to live coin prices and price history.
package market

import (
	"context"

	"github.com/coinroutine/ledger/internal/types"
	"github.com/coinroutine/ledger/pkg/errors"
)

// SourceType defines the type of market data source.
type SourceType string

const (
	SourceCoinranking SourceType = "coinranking"
	SourceBinance     SourceType = "binance"
)

// Source supplies current prices and 24h history for coins. Every method may
// block for a remote round-trip and returns a typed remote error from
// pkg/errors on failure; the ledger forwards these verbatim.
type Source interface {
	// GetCurrentPrices returns the full price list keyed by coin id.
	GetCurrentPrices(ctx context.Context) (map[string]types.PriceQuote, error)
	// GetCoinByID returns the live quote for a single coin.
	GetCoinByID(ctx context.Context, coinID string) (types.PriceQuote, error)
	// GetPriceHistory returns the recent price history for a coin, oldest
	// sample first.
	GetPriceHistory(ctx context.Context, coinID string) ([]types.PricePoint, error)
}

// Config carries the settings needed to construct a source.
type Config struct {
	// Host is the API root for REST sources.
	Host string
	// APIKey is sent as the access token header when set.
	APIKey string
	// Symbols restricts exchange-backed sources to the given ticker symbols.
	Symbols []string
}

// NewSource creates a market data source of the given type.
func NewSource(sourceType SourceType, cfg Config) (Source, error) {
	switch sourceType {
	case SourceCoinranking:
		return NewCoinrankingSource(cfg.Host, cfg.APIKey), nil
	case SourceBinance:
		return NewBinanceSource(cfg.Symbols), nil
	default:
		return nil, errors.Newf(errors.ErrCodeInvalidConfiguration, "unsupported market data source: %s", sourceType)
	}
}
