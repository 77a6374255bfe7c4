package ledger

import (
	"context"
	"iter"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/coinroutine/ledger/internal/logger"
	"github.com/coinroutine/ledger/internal/market"
	"github.com/coinroutine/ledger/internal/store"
	"github.com/coinroutine/ledger/internal/types"
)

// Valuator produces the live view of portfolio worth by joining stored
// positions with prices from the market data source. Prices are never cached
// across update cycles: every recomputation fetches the full price list
// again.
type Valuator struct {
	store  store.PositionStore
	market market.Source
	logger *logger.Logger
}

// NewValuator creates a valuation aggregator.
func NewValuator(positionStore store.PositionStore, source market.Source, log *logger.Logger) *Valuator {
	return &Valuator{
		store:  positionStore,
		market: source,
		logger: log,
	}
}

// TotalValue sums the market value of the given positions against the given
// price list. A position whose coin is missing from the list contributes 0.0
// rather than failing the whole aggregation.
func TotalValue(positions []types.Position, prices map[string]types.PriceQuote) float64 {
	total := decimal.Zero

	for i := range positions {
		quote, ok := prices[positions[i].Coin.ID]
		if !ok {
			continue
		}

		total = total.Add(decimal.NewFromFloat(positions[i].OwnedAmountInUnit).
			Mul(decimal.NewFromFloat(quote.Price)))
	}

	value, _ := total.Float64()

	return value
}

// JoinPositionsWithPrices resolves each position against the price list. A
// position whose coin is missing from the list is skipped.
func JoinPositionsWithPrices(positions []types.Position, prices map[string]types.PriceQuote) []types.PortfolioEntry {
	entries := make([]types.PortfolioEntry, 0, len(positions))

	for i := range positions {
		quote, ok := prices[positions[i].Coin.ID]
		if !ok {
			continue
		}

		entries = append(entries, types.PortfolioEntry{
			Position:     positions[i],
			CurrentPrice: quote.Price,
		})
	}

	return entries
}

// TotalPortfolioValue returns the current market value of all held
// positions. An empty portfolio is 0.0 with no remote call; a price fetch
// failure fails the whole operation with the remote error.
func (v *Valuator) TotalPortfolioValue(ctx context.Context) (float64, error) {
	positions, err := v.store.GetAllPositions(ctx)
	if err != nil {
		return 0, err
	}

	if len(positions) == 0 {
		return 0.0, nil
	}

	prices, err := v.market.GetCurrentPrices(ctx)
	if err != nil {
		return 0, err
	}

	return TotalValue(positions, prices), nil
}

// TotalBalance returns cash balance plus total portfolio value. A valuation
// error propagates unchanged.
func (v *Valuator) TotalBalance(ctx context.Context) (float64, error) {
	balance, err := v.store.GetCashBalance(ctx)
	if err != nil {
		return 0, err
	}

	value, err := v.TotalPortfolioValue(ctx)
	if err != nil {
		return 0, err
	}

	total, _ := decimal.NewFromFloat(balance).Add(decimal.NewFromFloat(value)).Float64()

	return total, nil
}

// PositionsWithQuotes returns every held position joined with its live
// price. The whole call fails on a remote error; it never partially
// succeeds.
func (v *Valuator) PositionsWithQuotes(ctx context.Context) ([]types.PortfolioEntry, error) {
	positions, err := v.store.GetAllPositions(ctx)
	if err != nil {
		return nil, err
	}

	if len(positions) == 0 {
		return []types.PortfolioEntry{}, nil
	}

	prices, err := v.market.GetCurrentPrices(ctx)
	if err != nil {
		return nil, err
	}

	return JoinPositionsWithPrices(positions, prices), nil
}

// Valuation assembles the full derived snapshot for presentation adapters
// with a single price fetch.
func (v *Valuator) Valuation(ctx context.Context) (types.PortfolioValuation, error) {
	balance, err := v.store.GetCashBalance(ctx)
	if err != nil {
		return types.PortfolioValuation{}, err
	}

	positions, err := v.store.GetAllPositions(ctx)
	if err != nil {
		return types.PortfolioValuation{}, err
	}

	valuation := types.PortfolioValuation{
		Entries:     []types.PortfolioEntry{},
		CashBalance: balance,
		TotalValue:  balance,
	}

	if len(positions) == 0 {
		return valuation, nil
	}

	prices, err := v.market.GetCurrentPrices(ctx)
	if err != nil {
		return types.PortfolioValuation{}, err
	}

	valuation.Entries = JoinPositionsWithPrices(positions, prices)
	valuation.TotalValue, _ = decimal.NewFromFloat(balance).
		Add(decimal.NewFromFloat(TotalValue(positions, prices))).
		Float64()

	return valuation, nil
}

// WatchPortfolio yields a fresh valuation after every position-set change.
// Failed cycles yield the error and keep watching. Cancel the context to stop
// the stream.
func (v *Valuator) WatchPortfolio(ctx context.Context) iter.Seq2[types.PortfolioValuation, error] {
	return func(yield func(types.PortfolioValuation, error) bool) {
		snapshots, cancel := v.store.Subscribe()
		defer cancel()

		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-snapshots:
				if !ok {
					return
				}

				valuation, err := v.Valuation(ctx)
				if err != nil {
					v.logger.Warn("portfolio revaluation failed", zap.Error(err))
				}

				if !yield(valuation, err) {
					return
				}
			}
		}
	}
}

// WatchTotalBalance yields the combined balance after every position-set
// change, with the same error semantics as WatchPortfolio.
func (v *Valuator) WatchTotalBalance(ctx context.Context) iter.Seq2[float64, error] {
	return func(yield func(float64, error) bool) {
		for valuation, err := range v.WatchPortfolio(ctx) {
			if !yield(valuation.TotalValue, err) {
				return
			}
		}
	}
}
