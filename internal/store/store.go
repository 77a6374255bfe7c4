// Package store persists portfolio positions, the cash balance and the trade
// journal.
package store

import (
	"context"

	"github.com/moznion/go-optional"

	"github.com/coinroutine/ledger/internal/types"
)

// PositionStore is durable keyed storage for owned positions plus the single
// cash balance record. Implementations must never persist a position with
// OwnedAmountInUnit == 0, and must push a full position snapshot to every
// subscriber after each mutation.
type PositionStore interface {
	// InitializeBalance inserts the starting cash balance if no balance
	// record exists yet. Called once per session before any trade.
	InitializeBalance(ctx context.Context) error
	// GetCashBalance returns the current cash balance. If the balance record
	// is missing the starting balance is returned.
	GetCashBalance(ctx context.Context) (float64, error)
	// SetCashBalance overwrites the cash balance.
	SetCashBalance(ctx context.Context, balance float64) error
	// GetPosition returns the position for the coin id, or None if the coin
	// is not held.
	GetPosition(ctx context.Context, coinID string) (optional.Option[types.Position], error)
	// GetAllPositions returns all held positions ordered by coin id.
	GetAllPositions(ctx context.Context) ([]types.Position, error)
	// UpsertPosition inserts or replaces the position keyed by its coin id.
	UpsertPosition(ctx context.Context, position types.Position) error
	// DeletePosition removes the position for the coin id. Deleting an absent
	// position is not an error.
	DeletePosition(ctx context.Context, coinID string) error
	// RecordTrade appends a settled trade to the journal.
	RecordTrade(ctx context.Context, record types.TradeRecord) error
	// GetTradeHistory returns journal entries, newest first. coinID narrows
	// the result when non-empty.
	GetTradeHistory(ctx context.Context, coinID string) ([]types.TradeRecord, error)
	// Subscribe registers for position snapshots. The current snapshot is
	// delivered immediately, then a fresh one after every mutation. The
	// returned cancel function releases the subscription.
	Subscribe() (<-chan []types.Position, func())
	// Close releases the underlying storage.
	Close() error
}
