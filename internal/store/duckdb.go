package store

import (
	"context"
	"database/sql"
	"strings"
	"sync"
	"time"

	"github.com/Masterminds/squirrel"
	_ "github.com/marcboeker/go-duckdb"
	"github.com/moznion/go-optional"
	"go.uber.org/zap"

	"github.com/coinroutine/ledger/internal/logger"
	"github.com/coinroutine/ledger/internal/types"
	"github.com/coinroutine/ledger/pkg/errors"
)

// DefaultStartingBalance is the cash balance written on first use.
const DefaultStartingBalance = 10000.0

// DuckDBStore implements PositionStore on an embedded DuckDB database.
type DuckDBStore struct {
	db              *sql.DB
	logger          *logger.Logger
	sq              squirrel.StatementBuilderType
	startingBalance float64

	mu          sync.Mutex
	subscribers map[int]chan []types.Position
	nextSubID   int
}

// NewDuckDBStore opens the database at dsn (":memory:" for an in-memory
// store, or a file path) and creates the schema.
func NewDuckDBStore(dsn string, startingBalance float64, log *logger.Logger) (*DuckDBStore, error) {
	db, err := sql.Open("duckdb", dsn)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeLocalUnknown, "failed to open database", err)
	}

	s := &DuckDBStore{
		db:              db,
		logger:          log,
		sq:              squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question),
		startingBalance: startingBalance,
		subscribers:     make(map[int]chan []types.Position),
	}

	if err := s.initialize(); err != nil {
		db.Close()

		return nil, err
	}

	return s, nil
}

// initialize creates the tables for positions, the balance record and the
// trade journal.
func (s *DuckDBStore) initialize() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS portfolio_coins (
			coin_id TEXT PRIMARY KEY,
			name TEXT,
			symbol TEXT,
			icon_url TEXT,
			amount_owned DOUBLE,
			amount_fiat DOUBLE,
			average_purchase_price DOUBLE,
			created_at TIMESTAMP
		)
	`)
	if err != nil {
		return errors.Wrap(errors.ErrCodeQueryFailed, "failed to create positions table", err)
	}

	_, err = s.db.Exec(`
		CREATE TABLE IF NOT EXISTS user_balance (
			id INTEGER PRIMARY KEY,
			cash_balance DOUBLE
		)
	`)
	if err != nil {
		return errors.Wrap(errors.ErrCodeQueryFailed, "failed to create balance table", err)
	}

	_, err = s.db.Exec(`
		CREATE TABLE IF NOT EXISTS trades (
			trade_id TEXT PRIMARY KEY,
			side TEXT,
			coin_id TEXT,
			amount_fiat DOUBLE,
			amount_unit DOUBLE,
			price DOUBLE,
			executed_at TIMESTAMP
		)
	`)
	if err != nil {
		return errors.Wrap(errors.ErrCodeQueryFailed, "failed to create trades table", err)
	}

	return nil
}

// InitializeBalance implements PositionStore.
func (s *DuckDBStore) InitializeBalance(ctx context.Context) error {
	var existing float64

	err := s.sq.
		Select("cash_balance").
		From("user_balance").
		Where(squirrel.Eq{"id": 1}).
		RunWith(s.db).
		QueryRowContext(ctx).
		Scan(&existing)
	if err == nil {
		return nil
	}

	if err != sql.ErrNoRows {
		return errors.Wrap(errors.ErrCodeQueryFailed, "failed to read balance", err)
	}

	_, err = s.sq.
		Insert("user_balance").
		Columns("id", "cash_balance").
		Values(1, s.startingBalance).
		RunWith(s.db).
		ExecContext(ctx)
	if err != nil {
		return errors.Wrap(errors.ErrCodeQueryFailed, "failed to initialize balance", err)
	}

	s.logger.Info("initialized cash balance", zap.Float64("balance", s.startingBalance))

	return nil
}

// GetCashBalance implements PositionStore.
func (s *DuckDBStore) GetCashBalance(ctx context.Context) (float64, error) {
	var balance float64

	err := s.sq.
		Select("cash_balance").
		From("user_balance").
		Where(squirrel.Eq{"id": 1}).
		RunWith(s.db).
		QueryRowContext(ctx).
		Scan(&balance)
	if err == sql.ErrNoRows {
		return s.startingBalance, nil
	}

	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeQueryFailed, "failed to read balance", err)
	}

	return balance, nil
}

// SetCashBalance implements PositionStore.
func (s *DuckDBStore) SetCashBalance(ctx context.Context, balance float64) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO user_balance (id, cash_balance) VALUES (1, ?)`, balance)
	if err != nil {
		return classifyWriteError("failed to write balance", err)
	}

	s.notify(ctx)

	return nil
}

// GetPosition implements PositionStore.
func (s *DuckDBStore) GetPosition(ctx context.Context, coinID string) (optional.Option[types.Position], error) {
	row := s.sq.
		Select("coin_id", "name", "symbol", "icon_url", "amount_owned", "amount_fiat", "average_purchase_price", "created_at").
		From("portfolio_coins").
		Where(squirrel.Eq{"coin_id": coinID}).
		RunWith(s.db).
		QueryRowContext(ctx)

	position, err := scanPosition(row)
	if err == sql.ErrNoRows {
		return optional.None[types.Position](), nil
	}

	if err != nil {
		return optional.None[types.Position](), errors.Wrap(errors.ErrCodeQueryFailed, "failed to read position", err)
	}

	return optional.Some(position), nil
}

// GetAllPositions implements PositionStore.
func (s *DuckDBStore) GetAllPositions(ctx context.Context) ([]types.Position, error) {
	rows, err := s.sq.
		Select("coin_id", "name", "symbol", "icon_url", "amount_owned", "amount_fiat", "average_purchase_price", "created_at").
		From("portfolio_coins").
		OrderBy("coin_id").
		RunWith(s.db).
		QueryContext(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to query positions", err)
	}
	defer rows.Close()

	var positions []types.Position

	for rows.Next() {
		position, err := scanPosition(rows)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to scan position", err)
		}

		positions = append(positions, position)
	}

	if err = rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "error iterating positions", err)
	}

	return positions, nil
}

// UpsertPosition implements PositionStore.
func (s *DuckDBStore) UpsertPosition(ctx context.Context, position types.Position) error {
	if position.OwnedAmountInUnit <= 0 {
		return errors.Newf(errors.ErrCodeInvalidParameter,
			"refusing to persist position %s with non-positive amount", position.Coin.ID)
	}

	createdAt := position.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO portfolio_coins
			(coin_id, name, symbol, icon_url, amount_owned, amount_fiat, average_purchase_price, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		position.Coin.ID,
		position.Coin.Name,
		position.Coin.Symbol,
		position.Coin.IconURL,
		position.OwnedAmountInUnit,
		position.OwnedAmountInFiat,
		position.AveragePurchasePrice,
		createdAt,
	)
	if err != nil {
		return classifyWriteError("failed to write position", err)
	}

	s.notify(ctx)

	return nil
}

// DeletePosition implements PositionStore.
func (s *DuckDBStore) DeletePosition(ctx context.Context, coinID string) error {
	_, err := s.sq.
		Delete("portfolio_coins").
		Where(squirrel.Eq{"coin_id": coinID}).
		RunWith(s.db).
		ExecContext(ctx)
	if err != nil {
		return errors.Wrap(errors.ErrCodeQueryFailed, "failed to delete position", err)
	}

	s.notify(ctx)

	return nil
}

// RecordTrade implements PositionStore.
func (s *DuckDBStore) RecordTrade(ctx context.Context, record types.TradeRecord) error {
	_, err := s.sq.
		Insert("trades").
		Columns("trade_id", "side", "coin_id", "amount_fiat", "amount_unit", "price", "executed_at").
		Values(record.ID, string(record.Side), record.CoinID,
			record.AmountInFiat, record.AmountInUnit, record.Price, record.ExecutedAt).
		RunWith(s.db).
		ExecContext(ctx)
	if err != nil {
		return classifyWriteError("failed to record trade", err)
	}

	return nil
}

// GetTradeHistory implements PositionStore.
func (s *DuckDBStore) GetTradeHistory(ctx context.Context, coinID string) ([]types.TradeRecord, error) {
	query := s.sq.
		Select("trade_id", "side", "coin_id", "amount_fiat", "amount_unit", "price", "executed_at").
		From("trades").
		OrderBy("executed_at DESC")

	if coinID != "" {
		query = query.Where(squirrel.Eq{"coin_id": coinID})
	}

	rows, err := query.RunWith(s.db).QueryContext(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to query trades", err)
	}
	defer rows.Close()

	var records []types.TradeRecord

	for rows.Next() {
		var (
			record types.TradeRecord
			side   string
		)

		err := rows.Scan(&record.ID, &side, &record.CoinID,
			&record.AmountInFiat, &record.AmountInUnit, &record.Price, &record.ExecutedAt)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to scan trade", err)
		}

		record.Side = types.TradeSide(side)
		records = append(records, record)
	}

	if err = rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "error iterating trades", err)
	}

	return records, nil
}

// Subscribe implements PositionStore.
func (s *DuckDBStore) Subscribe() (<-chan []types.Position, func()) {
	ch := make(chan []types.Position, 1)

	s.mu.Lock()
	id := s.nextSubID
	s.nextSubID++
	s.subscribers[id] = ch

	// Deliver the current snapshot right away so a new subscriber does not
	// wait for the next mutation. Holding the lock keeps this ordered before
	// any concurrent notify.
	if positions, err := s.GetAllPositions(context.Background()); err == nil {
		ch <- positions
	} else {
		s.logger.Error("failed to read initial snapshot", zap.Error(err))
	}
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		defer s.mu.Unlock()

		if sub, ok := s.subscribers[id]; ok {
			delete(s.subscribers, id)
			close(sub)
		}
	}

	return ch, cancel
}

// notify pushes a fresh full snapshot to every subscriber. A subscriber that
// has not consumed the previous snapshot only sees the latest one.
func (s *DuckDBStore) notify(ctx context.Context) {
	positions, err := s.GetAllPositions(ctx)
	if err != nil {
		s.logger.Error("failed to snapshot positions for subscribers", zap.Error(err))

		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, ch := range s.subscribers {
		select {
		case <-ch:
		default:
		}

		ch <- positions
	}
}

// Close implements PositionStore.
func (s *DuckDBStore) Close() error {
	s.mu.Lock()
	for id, ch := range s.subscribers {
		delete(s.subscribers, id)
		close(ch)
	}
	s.mu.Unlock()

	return s.db.Close()
}

// scanPosition reads one portfolio_coins row. All three money fields are
// persisted: a sell reduces the cost basis by the traded fiat amount while
// leaving the average purchase price untouched, so neither field can be
// derived from the other two after a partial sell.
func scanPosition(row squirrel.RowScanner) (types.Position, error) {
	var position types.Position

	err := row.Scan(
		&position.Coin.ID,
		&position.Coin.Name,
		&position.Coin.Symbol,
		&position.Coin.IconURL,
		&position.OwnedAmountInUnit,
		&position.OwnedAmountInFiat,
		&position.AveragePurchasePrice,
		&position.CreatedAt,
	)
	if err != nil {
		return types.Position{}, err
	}

	return position, nil
}

// classifyWriteError maps a storage write failure onto the local error
// taxonomy. Space exhaustion becomes StorageFull so callers can render it
// distinctly.
func classifyWriteError(message string, err error) error {
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "disk") || strings.Contains(msg, "no space") || strings.Contains(msg, "out of memory") {
		return errors.Wrap(errors.ErrCodeStorageFull, message, err)
	}

	return errors.Wrap(errors.ErrCodeQueryFailed, message, err)
}
