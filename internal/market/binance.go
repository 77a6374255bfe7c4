package market

import (
	"context"
	"strconv"
	"strings"

	binance "github.com/adshao/go-binance/v2"
	"github.com/adshao/go-binance/v2/common"

	"github.com/coinroutine/ledger/internal/types"
	"github.com/coinroutine/ledger/pkg/errors"
)

// binanceRateLimitCode is the Binance API error code for request-weight abuse.
const binanceRateLimitCode = -1003

// BinanceSource serves quotes for a fixed set of coins from the Binance
// public API. Coins are identified by their lowercase base ticker (e.g.
// "btc") and priced against USDT.
type BinanceSource struct {
	client  *binance.Client
	symbols []string
}

// NewBinanceSource creates a Binance-backed source restricted to the given
// base ticker symbols. No API key is required for public market data.
func NewBinanceSource(symbols []string) *BinanceSource {
	normalized := make([]string, 0, len(symbols))
	for _, s := range symbols {
		normalized = append(normalized, strings.ToUpper(strings.TrimSpace(s)))
	}

	return &BinanceSource{
		client:  binance.NewClient("", ""),
		symbols: normalized,
	}
}

// GetCurrentPrices implements Source.
func (b *BinanceSource) GetCurrentPrices(ctx context.Context) (map[string]types.PriceQuote, error) {
	stats, err := b.client.NewListPriceChangeStatsService().Do(ctx)
	if err != nil {
		return nil, mapBinanceError(err)
	}

	bySymbol := make(map[string]*binance.PriceChangeStats, len(stats))
	for _, s := range stats {
		bySymbol[s.Symbol] = s
	}

	quotes := make(map[string]types.PriceQuote, len(b.symbols))

	for _, sym := range b.symbols {
		s, ok := bySymbol[sym+"USDT"]
		if !ok {
			continue
		}

		quote, err := statsToQuote(sym, s)
		if err != nil {
			return nil, err
		}

		quotes[quote.Coin.ID] = quote
	}

	return quotes, nil
}

// GetCoinByID implements Source.
func (b *BinanceSource) GetCoinByID(ctx context.Context, coinID string) (types.PriceQuote, error) {
	sym := strings.ToUpper(coinID)

	stats, err := b.client.NewListPriceChangeStatsService().Symbol(sym + "USDT").Do(ctx)
	if err != nil {
		return types.PriceQuote{}, mapBinanceError(err)
	}

	if len(stats) == 0 {
		return types.PriceQuote{}, errors.Newf(errors.ErrCodeCoinNotFound, "no ticker for coin %s", coinID)
	}

	return statsToQuote(sym, stats[0])
}

// GetPriceHistory implements Source. Returns the last 24 hourly closes.
func (b *BinanceSource) GetPriceHistory(ctx context.Context, coinID string) ([]types.PricePoint, error) {
	sym := strings.ToUpper(coinID) + "USDT"

	klines, err := b.client.NewKlinesService().
		Symbol(sym).
		Interval("1h").
		Limit(24).
		Do(ctx)
	if err != nil {
		return nil, mapBinanceError(err)
	}

	points := make([]types.PricePoint, 0, len(klines))

	for _, k := range klines {
		price, err := strconv.ParseFloat(k.Close, 64)
		if err != nil {
			return nil, errors.Wrapf(errors.ErrCodeUnparseable, err, "invalid close price for %s", sym)
		}

		points = append(points, types.PricePoint{
			Price:     price,
			Timestamp: k.CloseTime,
		})
	}

	return points, nil
}

func statsToQuote(sym string, s *binance.PriceChangeStats) (types.PriceQuote, error) {
	price, err := strconv.ParseFloat(s.LastPrice, 64)
	if err != nil {
		return types.PriceQuote{}, errors.Wrapf(errors.ErrCodeUnparseable, err, "invalid last price for %s", sym)
	}

	change, err := strconv.ParseFloat(s.PriceChangePercent, 64)
	if err != nil {
		return types.PriceQuote{}, errors.Wrapf(errors.ErrCodeUnparseable, err, "invalid change percent for %s", sym)
	}

	return types.PriceQuote{
		Coin: types.Coin{
			ID:     strings.ToLower(sym),
			Name:   sym,
			Symbol: sym,
		},
		Price:  price,
		Change: change,
	}, nil
}

func mapBinanceError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return errors.Wrap(errors.ErrCodeRequestTimeout, "request timed out", err)
	}

	var apiErr *common.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.Code == binanceRateLimitCode:
			return errors.Wrap(errors.ErrCodeTooManyRequests, "rate limited by exchange", err)
		case apiErr.Code < 0:
			return errors.Wrap(errors.ErrCodeServerError, "exchange rejected request", err)
		}
	}

	return mapTransportError(err)
}
