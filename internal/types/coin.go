package types

// Coin is immutable reference data describing a cryptocurrency. It is sourced
// entirely from the market data source and never persisted as owned data on
// its own.
type Coin struct {
	// ID is the stable unique key of the coin at the market data source.
	ID string `json:"id"`
	// Name is the human readable coin name (e.g. "Bitcoin").
	Name string `json:"name"`
	// Symbol is the ticker symbol (e.g. "BTC").
	Symbol string `json:"symbol"`
	// IconURL points at the coin's icon image.
	IconURL string `json:"icon_url"`
}
