// Package ledger implements trade settlement and portfolio valuation on top
// of a position store and a market data source.
package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/moznion/go-optional"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/coinroutine/ledger/internal/logger"
	"github.com/coinroutine/ledger/internal/store"
	"github.com/coinroutine/ledger/internal/types"
	"github.com/coinroutine/ledger/pkg/errors"
)

// DefaultDustThreshold is the fiat value below which a sold-down position is
// deleted instead of persisted. Keeping near-zero remainders around would
// accumulate useless rows and risk dividing by a near-zero quantity on the
// next average-price recomputation.
const DefaultDustThreshold = 1.0

// Options tunes settlement behavior.
type Options struct {
	// DustThreshold is the fiat remainder below which a sell clears the whole
	// position. None means DefaultDustThreshold; Some(0) disables dust
	// clearing entirely.
	DustThreshold optional.Option[float64]
	// RejectNonPositive makes Buy and Sell fail on zero or negative fiat
	// amounts and prices instead of passing them through to the arithmetic.
	RejectNonPositive bool
}

// Engine applies buy and sell trade intents to portfolio state. It performs
// no retries and no locking: callers must not run two settlements against the
// same portfolio concurrently, because the read-modify-write window across
// position and cash balance is not atomic.
type Engine struct {
	store         store.PositionStore
	logger        *logger.Logger
	opts          Options
	dustThreshold float64
}

// NewEngine creates a settlement engine.
func NewEngine(positionStore store.PositionStore, log *logger.Logger, opts Options) *Engine {
	return &Engine{
		store:         positionStore,
		logger:        log,
		opts:          opts,
		dustThreshold: opts.DustThreshold.TakeOr(DefaultDustThreshold),
	}
}

// Buy spends amountInFiat of the cash balance on the given coin at the given
// unit price. The position write is issued and acknowledged before the cash
// balance write, so a crash in between leaves money not yet deducted rather
// than a lost position.
func (e *Engine) Buy(ctx context.Context, coin types.Coin, amountInFiat, price float64) error {
	if err := e.checkAmount(amountInFiat, price); err != nil {
		return err
	}

	balance, err := e.store.GetCashBalance(ctx)
	if err != nil {
		return err
	}

	if balance < amountInFiat {
		return errors.Newf(errors.ErrCodeInsufficientFunds,
			"cash balance %.2f is below trade amount %.2f", balance, amountInFiat)
	}

	existing, err := e.store.GetPosition(ctx, coin.ID)
	if err != nil {
		// Funds check already passed but nothing has moved yet; propagate
		// verbatim and leave all state untouched.
		return err
	}

	fiatDec := decimal.NewFromFloat(amountInFiat)
	amountInUnit := fiatDec.Div(decimal.NewFromFloat(price))

	var position types.Position

	if existing.IsSome() {
		current := existing.Unwrap()

		newUnit := decimal.NewFromFloat(current.OwnedAmountInUnit).Add(amountInUnit)
		newFiat := decimal.NewFromFloat(current.OwnedAmountInFiat).Add(fiatDec)
		newAverage := newFiat.Div(newUnit)

		position = current
		position.OwnedAmountInUnit, _ = newUnit.Float64()
		position.OwnedAmountInFiat, _ = newFiat.Float64()
		position.AveragePurchasePrice, _ = newAverage.Float64()
	} else {
		unit, _ := amountInUnit.Float64()
		position = types.Position{
			Coin:                 coin,
			OwnedAmountInUnit:    unit,
			OwnedAmountInFiat:    amountInFiat,
			AveragePurchasePrice: price,
			CreatedAt:            time.Now().UTC(),
		}
	}

	if err := e.store.UpsertPosition(ctx, position); err != nil {
		// Balance deliberately untouched: the deduction only happens after
		// the position write is acknowledged.
		return err
	}

	newBalance, _ := decimal.NewFromFloat(balance).Sub(fiatDec).Float64()
	if err := e.store.SetCashBalance(ctx, newBalance); err != nil {
		return err
	}

	e.journal(ctx, types.TradeSideBuy, coin.ID, amountInFiat, amountInUnit, price)
	e.logger.Info("buy settled",
		zap.String("coin", coin.ID),
		zap.Float64("amount_fiat", amountInFiat),
		zap.Float64("price", price),
		zap.Float64("balance", newBalance),
	)

	return nil
}

// Sell converts amountInFiat worth of the given coin back into cash at the
// given unit price. A remainder below the dust threshold clears the whole
// position. The average purchase price of a surviving remainder is left
// unchanged: selling does not alter the cost basis rate of what stays.
func (e *Engine) Sell(ctx context.Context, coin types.Coin, amountInFiat, price float64) error {
	if err := e.checkAmount(amountInFiat, price); err != nil {
		return err
	}

	existing, err := e.store.GetPosition(ctx, coin.ID)
	if err != nil {
		return err
	}

	fiatDec := decimal.NewFromFloat(amountInFiat)
	sellAmountInUnit := fiatDec.Div(decimal.NewFromFloat(price))

	balance, err := e.store.GetCashBalance(ctx)
	if err != nil {
		return err
	}

	if existing.IsNone() {
		return errors.Newf(errors.ErrCodeInsufficientFunds, "no position held for coin %s", coin.ID)
	}

	current := existing.Unwrap()

	ownedUnit := decimal.NewFromFloat(current.OwnedAmountInUnit)
	if ownedUnit.LessThan(sellAmountInUnit) {
		return errors.Newf(errors.ErrCodeInsufficientFunds,
			"owned amount %s is below sell amount %s", ownedUnit, sellAmountInUnit)
	}

	remainingFiat := decimal.NewFromFloat(current.OwnedAmountInFiat).Sub(fiatDec)
	remainingUnit := ownedUnit.Sub(sellAmountInUnit)

	if remainingFiat.LessThan(decimal.NewFromFloat(e.dustThreshold)) {
		if err := e.store.DeletePosition(ctx, coin.ID); err != nil {
			return err
		}
	} else {
		position := current
		position.OwnedAmountInUnit, _ = remainingUnit.Float64()
		position.OwnedAmountInFiat, _ = remainingFiat.Float64()

		if err := e.store.UpsertPosition(ctx, position); err != nil {
			return err
		}
	}

	newBalance, _ := decimal.NewFromFloat(balance).Add(fiatDec).Float64()
	if err := e.store.SetCashBalance(ctx, newBalance); err != nil {
		return err
	}

	e.journal(ctx, types.TradeSideSell, coin.ID, amountInFiat, sellAmountInUnit, price)
	e.logger.Info("sell settled",
		zap.String("coin", coin.ID),
		zap.Float64("amount_fiat", amountInFiat),
		zap.Float64("price", price),
		zap.Float64("balance", newBalance),
	)

	return nil
}

func (e *Engine) checkAmount(amountInFiat, price float64) error {
	// A zero price would divide by zero when converting the fiat amount to
	// units, so it is rejected even when non-positive checks are off. A
	// market source can legitimately report 0 for a coin with no quote.
	if price == 0 {
		return errors.New(errors.ErrCodeInvalidAmount, "trade price must be non-zero")
	}

	if !e.opts.RejectNonPositive {
		return nil
	}

	if amountInFiat <= 0 {
		return errors.Newf(errors.ErrCodeInvalidAmount, "trade amount must be positive, got %f", amountInFiat)
	}

	if price <= 0 {
		return errors.Newf(errors.ErrCodeInvalidAmount, "trade price must be positive, got %f", price)
	}

	return nil
}

// journal appends the settled trade to the trade history. The journal is
// advisory: a write failure is logged but does not fail a trade that has
// already settled.
func (e *Engine) journal(ctx context.Context, side types.TradeSide, coinID string, amountInFiat float64, amountInUnit decimal.Decimal, price float64) {
	unit, _ := amountInUnit.Float64()

	record := types.TradeRecord{
		ID:           uuid.New().String(),
		Side:         side,
		CoinID:       coinID,
		AmountInFiat: amountInFiat,
		AmountInUnit: unit,
		Price:        price,
		ExecutedAt:   time.Now().UTC(),
	}

	if err := e.store.RecordTrade(ctx, record); err != nil {
		e.logger.Warn("failed to record trade in journal",
			zap.String("coin", coinID),
			zap.Error(err),
		)
	}
}
