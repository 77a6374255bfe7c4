package ledger

import (
	"context"

	"github.com/coinroutine/ledger/internal/logger"
	"github.com/coinroutine/ledger/internal/market"
	"github.com/coinroutine/ledger/internal/store"
	"github.com/coinroutine/ledger/internal/types"
)

// Ledger is the portfolio surface consumed by presentation adapters: trade
// settlement plus live valuation over one position store and one market data
// source.
type Ledger struct {
	*Engine
	*Valuator

	store store.PositionStore
}

// New creates a ledger. Call Initialize once per session before trading.
func New(positionStore store.PositionStore, source market.Source, log *logger.Logger, opts Options) *Ledger {
	return &Ledger{
		Engine:   NewEngine(positionStore, log, opts),
		Valuator: NewValuator(positionStore, source, log),
		store:    positionStore,
	}
}

// Initialize seeds the cash balance on first use.
func (l *Ledger) Initialize(ctx context.Context) error {
	return l.store.InitializeBalance(ctx)
}

// CashBalance returns the current cash balance.
func (l *Ledger) CashBalance(ctx context.Context) (float64, error) {
	return l.store.GetCashBalance(ctx)
}

// TradeHistory returns the journal, newest first, optionally narrowed to one
// coin.
func (l *Ledger) TradeHistory(ctx context.Context, coinID string) ([]types.TradeRecord, error) {
	return l.store.GetTradeHistory(ctx, coinID)
}
