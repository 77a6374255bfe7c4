package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// Position represents the current holding of one coin in the portfolio.
type Position struct {
	Coin Coin `json:"coin"`
	// OwnedAmountInUnit is the quantity of coin owned. A persisted position
	// always has OwnedAmountInUnit > 0; a position that would drop to zero is
	// deleted instead.
	OwnedAmountInUnit float64 `json:"owned_amount_in_unit"`
	// OwnedAmountInFiat is the fiat cost basis currently attributed to the
	// position.
	OwnedAmountInFiat float64 `json:"owned_amount_in_fiat"`
	// AveragePurchasePrice is OwnedAmountInFiat / OwnedAmountInUnit as of the
	// last settlement. It is recomputed on every buy, never mutated on its
	// own, and left unchanged by sells.
	AveragePurchasePrice float64 `json:"average_purchase_price"`
	// CreatedAt is the time of the first buy that opened the position.
	CreatedAt time.Time `json:"created_at"`
}

// GetAveragePurchasePrice derives the average purchase price from the cost
// basis and owned quantity. Returns 0 for an empty position.
func (p *Position) GetAveragePurchasePrice() float64 {
	if p.OwnedAmountInUnit == 0 {
		return 0
	}

	avg, _ := decimal.NewFromFloat(p.OwnedAmountInFiat).
		Div(decimal.NewFromFloat(p.OwnedAmountInUnit)).
		Float64()

	return avg
}

// PerformancePercent computes the percentage gain or loss of the position
// against the given live price. It is a read-time derivation; it is never
// stored.
func (p *Position) PerformancePercent(currentPrice float64) float64 {
	if p.AveragePurchasePrice == 0 {
		return 0
	}

	avgDec := decimal.NewFromFloat(p.AveragePurchasePrice)
	perf, _ := decimal.NewFromFloat(currentPrice).
		Sub(avgDec).
		Div(avgDec).
		Mul(decimal.NewFromInt(100)).
		Float64()

	return perf
}

// MarketValue returns the current fiat worth of the position at the given
// live price.
func (p *Position) MarketValue(currentPrice float64) float64 {
	value, _ := decimal.NewFromFloat(p.OwnedAmountInUnit).
		Mul(decimal.NewFromFloat(currentPrice)).
		Float64()

	return value
}
