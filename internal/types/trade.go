package types

import "time"

// TradeSide identifies the direction of a trade.
type TradeSide string

const (
	TradeSideBuy  TradeSide = "buy"
	TradeSideSell TradeSide = "sell"
)

// TradeIntent is a transient request to buy or sell a coin. AmountInFiat is
// the fiat amount the user wants to spend (buy) or receive (sell); Price is
// the unit price applied to the trade.
type TradeIntent struct {
	Coin         Coin    `json:"coin"`
	AmountInFiat float64 `json:"amount_in_fiat"`
	Price        float64 `json:"price"`
}

// TradeRecord is a settled trade as written to the journal.
type TradeRecord struct {
	ID           string    `json:"id"`
	Side         TradeSide `json:"side"`
	CoinID       string    `json:"coin_id"`
	AmountInFiat float64   `json:"amount_in_fiat"`
	AmountInUnit float64   `json:"amount_in_unit"`
	Price        float64   `json:"price"`
	ExecutedAt   time.Time `json:"executed_at"`
}
