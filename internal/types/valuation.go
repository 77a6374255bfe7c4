package types

// PortfolioEntry pairs a stored position with its resolved live price.
type PortfolioEntry struct {
	Position     Position `json:"position"`
	CurrentPrice float64  `json:"current_price"`
}

// PerformancePercent returns the entry's read-time performance against its
// resolved price.
func (e *PortfolioEntry) PerformancePercent() float64 {
	return e.Position.PerformancePercent(e.CurrentPrice)
}

// MarketValue returns the entry's current fiat worth.
func (e *PortfolioEntry) MarketValue() float64 {
	return e.Position.MarketValue(e.CurrentPrice)
}

// PortfolioValuation is a derived snapshot of the whole portfolio: every
// position joined with its live price, the cash balance, and the combined
// total.
type PortfolioValuation struct {
	Entries     []PortfolioEntry `json:"entries"`
	CashBalance float64          `json:"cash_balance"`
	// TotalValue is CashBalance plus the summed market value of all entries.
	TotalValue float64 `json:"total_value"`
}
