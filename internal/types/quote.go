package types

// PriceQuote is a live market quote for a coin.
type PriceQuote struct {
	Coin Coin `json:"coin"`
	// Price is the current unit price in fiat.
	Price float64 `json:"price"`
	// Change is the 24h price change in percent.
	Change float64 `json:"change"`
}

// PricePoint is one sample of a coin's price history.
type PricePoint struct {
	Price float64 `json:"price"`
	// Timestamp is milliseconds since the Unix epoch, as delivered by the
	// market data source.
	Timestamp int64 `json:"timestamp"`
}
