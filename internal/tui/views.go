package tui

import (
	"fmt"
	"sort"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"github.com/coinroutine/ledger/internal/types"
)

// NewPortfolioTable creates the table for displaying held positions.
func NewPortfolioTable() table.Model {
	columns := []table.Column{
		{Title: "Coin", Width: 18},
		{Title: "Symbol", Width: 8},
		{Title: "Amount", Width: 14},
		{Title: "Avg Price", Width: 14},
		{Title: "Price", Width: 14},
		{Title: "Value", Width: 14},
		{Title: "Perf", Width: 12},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(10),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)

	t.SetStyles(s)

	return t
}

// UpdateTableRows replaces the table contents with the given valuation
// entries, sorted by coin name for a stable display order.
func UpdateTableRows(t table.Model, entries []types.PortfolioEntry) table.Model {
	sorted := make([]types.PortfolioEntry, len(entries))
	copy(sorted, entries)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Position.Coin.Name < sorted[j].Position.Coin.Name
	})

	rows := make([]table.Row, 0, len(sorted))

	for i := range sorted {
		entry := &sorted[i]

		rows = append(rows, table.Row{
			entry.Position.Coin.Name,
			entry.Position.Coin.Symbol,
			fmt.Sprintf("%.6f", entry.Position.OwnedAmountInUnit),
			fmt.Sprintf("%.4f", entry.Position.GetAveragePurchasePrice()),
			fmt.Sprintf("%.4f", entry.CurrentPrice),
			fmt.Sprintf("%.2f", entry.MarketValue()),
			FormatPerformance(entry.PerformancePercent()),
		})
	}

	t.SetRows(rows)

	return t
}
