package tui

import (
	"context"

	"github.com/coinroutine/ledger/internal/types"
)

// PortfolioMsg carries a fresh valuation from the watch stream.
type PortfolioMsg struct {
	Valuation types.PortfolioValuation
}

// WatchErrorMsg indicates a failed revaluation cycle.
type WatchErrorMsg struct {
	Err error
}

// WatchStartedMsg signals that the portfolio watch has begun. Cancel stops
// the watch stream; Update stores it on the model so quitting can tear the
// stream down.
type WatchStartedMsg struct {
	Cancel context.CancelFunc
}
