package ledger

import (
	"context"
	"testing"

	"github.com/moznion/go-optional"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"github.com/coinroutine/ledger/internal/logger"
	"github.com/coinroutine/ledger/internal/store"
	"github.com/coinroutine/ledger/internal/types"
	"github.com/coinroutine/ledger/mocks"
	"github.com/coinroutine/ledger/pkg/errors"
)

var (
	coinX = types.Coin{ID: "coin-x", Name: "Xcoin", Symbol: "X"}
	coinY = types.Coin{ID: "coin-y", Name: "Ycoin", Symbol: "Y"}
)

// SettlementTestSuite runs the settlement engine against a real in-memory
// store.
type SettlementTestSuite struct {
	suite.Suite
	store  *store.DuckDBStore
	engine *Engine
	ctx    context.Context
}

func TestSettlementSuite(t *testing.T) {
	suite.Run(t, new(SettlementTestSuite))
}

func (suite *SettlementTestSuite) SetupTest() {
	positionStore, err := store.NewDuckDBStore(":memory:", store.DefaultStartingBalance, logger.NewNopLogger())
	suite.Require().NoError(err)
	suite.store = positionStore
	suite.engine = NewEngine(positionStore, logger.NewNopLogger(), Options{})
	suite.ctx = context.Background()

	suite.Require().NoError(positionStore.InitializeBalance(suite.ctx))
}

func (suite *SettlementTestSuite) TearDownTest() {
	suite.store.Close()
}

func (suite *SettlementTestSuite) mustPosition(coinID string) types.Position {
	opt, err := suite.store.GetPosition(suite.ctx, coinID)
	suite.Require().NoError(err)
	suite.Require().True(opt.IsSome(), "expected a position for %s", coinID)

	return opt.Unwrap()
}

func (suite *SettlementTestSuite) balance() float64 {
	balance, err := suite.store.GetCashBalance(suite.ctx)
	suite.Require().NoError(err)

	return balance
}

// First buy opens a position at the trade price.
func (suite *SettlementTestSuite) TestFirstBuy() {
	err := suite.engine.Buy(suite.ctx, coinX, 1000.0, 10.0)
	suite.Require().NoError(err)

	position := suite.mustPosition(coinX.ID)
	suite.InDelta(100.0, position.OwnedAmountInUnit, 1e-9)
	suite.InDelta(1000.0, position.OwnedAmountInFiat, 1e-9)
	suite.InDelta(10.0, position.AveragePurchasePrice, 1e-9)
	suite.InDelta(9000.0, suite.balance(), 1e-9)
}

// A subsequent buy at a different price moves the average to the weighted
// mean.
func (suite *SettlementTestSuite) TestSubsequentBuyWeightedAverage() {
	suite.Require().NoError(suite.engine.Buy(suite.ctx, coinX, 1000.0, 10.0))
	suite.Require().NoError(suite.engine.Buy(suite.ctx, coinX, 1000.0, 20.0))

	position := suite.mustPosition(coinX.ID)
	suite.InDelta(150.0, position.OwnedAmountInUnit, 1e-9)
	suite.InDelta(2000.0, position.OwnedAmountInFiat, 1e-9)
	suite.InDelta(13.3333333333, position.AveragePurchasePrice, 1e-6)
	suite.InDelta(8000.0, suite.balance(), 1e-9)

	// Cost basis tracks average price times quantity
	suite.InDelta(position.OwnedAmountInFiat,
		position.AveragePurchasePrice*position.OwnedAmountInUnit, 1e-6)
}

// Buy order must not change the resulting average price for the same set of
// (amount, price) pairs.
func (suite *SettlementTestSuite) TestBuyOrderIndependentAverage() {
	suite.Require().NoError(suite.engine.Buy(suite.ctx, coinX, 500.0, 25.0))
	suite.Require().NoError(suite.engine.Buy(suite.ctx, coinX, 1500.0, 75.0))
	forward := suite.mustPosition(coinX.ID)

	suite.Require().NoError(suite.engine.Buy(suite.ctx, coinY, 1500.0, 75.0))
	suite.Require().NoError(suite.engine.Buy(suite.ctx, coinY, 500.0, 25.0))
	reverse := suite.mustPosition(coinY.ID)

	suite.InDelta(forward.AveragePurchasePrice, reverse.AveragePurchasePrice, 1e-9)
	suite.InDelta(forward.OwnedAmountInUnit, reverse.OwnedAmountInUnit, 1e-9)
	suite.InDelta(forward.OwnedAmountInFiat, reverse.OwnedAmountInFiat, 1e-9)
}

func (suite *SettlementTestSuite) TestBuyInsufficientFunds() {
	err := suite.engine.Buy(suite.ctx, coinX, 10000.5, 10.0)
	suite.Require().Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeInsufficientFunds))

	// No state mutated
	opt, err := suite.store.GetPosition(suite.ctx, coinX.ID)
	suite.Require().NoError(err)
	suite.True(opt.IsNone())
	suite.InDelta(store.DefaultStartingBalance, suite.balance(), 1e-9)
}

// Selling the bulk of a position leaves a remainder below the dust threshold
// and clears the position entirely, even though the residual unit amount is
// strictly positive.
func (suite *SettlementTestSuite) TestSellClearsDust() {
	suite.Require().NoError(suite.engine.Buy(suite.ctx, coinX, 1000.0, 10.0))
	suite.Require().NoError(suite.engine.Buy(suite.ctx, coinX, 1000.0, 20.0))

	err := suite.engine.Sell(suite.ctx, coinX, 1999.5, 20.0)
	suite.Require().NoError(err)

	opt, err := suite.store.GetPosition(suite.ctx, coinX.ID)
	suite.Require().NoError(err)
	suite.True(opt.IsNone(), "dust remainder must delete the position")
	suite.InDelta(9999.5, suite.balance(), 1e-9)
}

// A partial sell above the dust threshold keeps the remainder with an
// unchanged average purchase price.
func (suite *SettlementTestSuite) TestPartialSellKeepsAveragePrice() {
	suite.Require().NoError(suite.engine.Buy(suite.ctx, coinX, 2000.0, 10.0))
	before := suite.mustPosition(coinX.ID)

	err := suite.engine.Sell(suite.ctx, coinX, 500.0, 25.0)
	suite.Require().NoError(err)

	position := suite.mustPosition(coinX.ID)
	suite.InDelta(before.AveragePurchasePrice, position.AveragePurchasePrice, 1e-9)
	suite.InDelta(1500.0, position.OwnedAmountInFiat, 1e-9)
	suite.InDelta(200.0-20.0, position.OwnedAmountInUnit, 1e-9)
	suite.InDelta(8500.0, suite.balance(), 1e-9)
}

func (suite *SettlementTestSuite) TestSellWithoutPosition() {
	err := suite.engine.Sell(suite.ctx, coinY, 100.0, 5.0)
	suite.Require().Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeInsufficientFunds))
	suite.InDelta(store.DefaultStartingBalance, suite.balance(), 1e-9)
}

func (suite *SettlementTestSuite) TestSellMoreUnitsThanOwned() {
	suite.Require().NoError(suite.engine.Buy(suite.ctx, coinX, 1000.0, 10.0))

	// 100 units owned; selling 2500/20 = 125 units
	err := suite.engine.Sell(suite.ctx, coinX, 2500.0, 20.0)
	suite.Require().Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeInsufficientFunds))

	// Position and balance unchanged
	position := suite.mustPosition(coinX.ID)
	suite.InDelta(100.0, position.OwnedAmountInUnit, 1e-9)
	suite.InDelta(9000.0, suite.balance(), 1e-9)
}

func (suite *SettlementTestSuite) TestTradesAreJournaled() {
	suite.Require().NoError(suite.engine.Buy(suite.ctx, coinX, 1000.0, 10.0))
	suite.Require().NoError(suite.engine.Sell(suite.ctx, coinX, 400.0, 10.0))

	records, err := suite.store.GetTradeHistory(suite.ctx, coinX.ID)
	suite.Require().NoError(err)
	suite.Require().Len(records, 2)
	suite.Equal(types.TradeSideSell, records[0].Side)
	suite.InDelta(40.0, records[0].AmountInUnit, 1e-9)
	suite.Equal(types.TradeSideBuy, records[1].Side)
	suite.InDelta(100.0, records[1].AmountInUnit, 1e-9)
}

func (suite *SettlementTestSuite) TestRejectNonPositiveOption() {
	engine := NewEngine(suite.store, logger.NewNopLogger(), Options{RejectNonPositive: true})

	err := engine.Buy(suite.ctx, coinX, 0, 10.0)
	suite.Require().Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidAmount))

	err = engine.Sell(suite.ctx, coinX, -5.0, 10.0)
	suite.Require().Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidAmount))

	err = engine.Buy(suite.ctx, coinX, 100.0, 0)
	suite.Require().Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidAmount))
}

// A zero price is rejected even with non-positive checks off: it would
// otherwise divide by zero converting the fiat amount to units. Sources can
// report 0 for coins with no live quote.
func (suite *SettlementTestSuite) TestZeroPriceAlwaysRejected() {
	err := suite.engine.Buy(suite.ctx, coinX, 100.0, 0)
	suite.Require().Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidAmount))
	suite.InDelta(store.DefaultStartingBalance, suite.balance(), 1e-9)

	err = suite.engine.Sell(suite.ctx, coinX, 100.0, 0)
	suite.Require().Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidAmount))
}

// An explicit zero threshold disables dust clearing rather than falling back
// to the default.
func (suite *SettlementTestSuite) TestZeroDustThresholdKeepsRemainder() {
	engine := NewEngine(suite.store, logger.NewNopLogger(), Options{DustThreshold: optional.Some(0.0)})

	suite.Require().NoError(engine.Buy(suite.ctx, coinX, 2000.0, 20.0))
	suite.Require().NoError(engine.Sell(suite.ctx, coinX, 1999.5, 20.0))

	position := suite.mustPosition(coinX.ID)
	suite.InDelta(0.5, position.OwnedAmountInFiat, 1e-9)
	suite.InDelta(0.025, position.OwnedAmountInUnit, 1e-9)
}

// SettlementFailureTestSuite uses a mocked store to pin down failure-path
// ordering guarantees that the real store cannot produce on demand.
type SettlementFailureTestSuite struct {
	suite.Suite
	ctrl   *gomock.Controller
	store  *mocks.MockPositionStore
	engine *Engine
	ctx    context.Context
}

func TestSettlementFailureSuite(t *testing.T) {
	suite.Run(t, new(SettlementFailureTestSuite))
}

func (suite *SettlementFailureTestSuite) SetupTest() {
	suite.ctrl = gomock.NewController(suite.T())
	suite.store = mocks.NewMockPositionStore(suite.ctrl)
	suite.engine = NewEngine(suite.store, logger.NewNopLogger(), Options{})
	suite.ctx = context.Background()
}

// A position-read failure after the funds check passes must propagate
// verbatim and leave all state untouched: no position write, no balance
// write.
func (suite *SettlementFailureTestSuite) TestBuyPositionReadErrorLeavesStateUntouched() {
	readErr := errors.New(errors.ErrCodeServerError, "upstream 500")

	suite.store.EXPECT().GetCashBalance(gomock.Any()).Return(10000.0, nil)
	suite.store.EXPECT().GetPosition(gomock.Any(), coinX.ID).
		Return(optional.None[types.Position](), readErr)

	err := suite.engine.Buy(suite.ctx, coinX, 1000.0, 10.0)
	suite.Require().Error(err)
	suite.Equal(errors.ErrCodeServerError, errors.GetCode(err))
}

// A failed position write must leave the cash balance untouched.
func (suite *SettlementFailureTestSuite) TestBuyUpsertFailureKeepsBalance() {
	writeErr := errors.New(errors.ErrCodeStorageFull, "storage exhausted")

	suite.store.EXPECT().GetCashBalance(gomock.Any()).Return(10000.0, nil)
	suite.store.EXPECT().GetPosition(gomock.Any(), coinX.ID).
		Return(optional.None[types.Position](), nil)
	suite.store.EXPECT().UpsertPosition(gomock.Any(), gomock.Any()).Return(writeErr)

	err := suite.engine.Buy(suite.ctx, coinX, 1000.0, 10.0)
	suite.Require().Error(err)
	suite.Equal(errors.ErrCodeStorageFull, errors.GetCode(err))
}

// The position write must be issued and acknowledged before the balance
// write.
func (suite *SettlementFailureTestSuite) TestBuyWritesPositionBeforeBalance() {
	suite.store.EXPECT().GetCashBalance(gomock.Any()).Return(10000.0, nil)
	suite.store.EXPECT().GetPosition(gomock.Any(), coinX.ID).
		Return(optional.None[types.Position](), nil)

	upsert := suite.store.EXPECT().UpsertPosition(gomock.Any(), gomock.Any()).Return(nil)
	suite.store.EXPECT().SetCashBalance(gomock.Any(), 9000.0).Return(nil).After(upsert)
	suite.store.EXPECT().RecordTrade(gomock.Any(), gomock.Any()).Return(nil)

	suite.Require().NoError(suite.engine.Buy(suite.ctx, coinX, 1000.0, 10.0))
}

// Same ordering on the sell path: the position mutation (here a dust-clear
// delete) precedes the balance credit.
func (suite *SettlementFailureTestSuite) TestSellDeletesPositionBeforeBalance() {
	held := types.Position{
		Coin:                 coinX,
		OwnedAmountInUnit:    100.0,
		OwnedAmountInFiat:    1000.0,
		AveragePurchasePrice: 10.0,
	}

	suite.store.EXPECT().GetPosition(gomock.Any(), coinX.ID).
		Return(optional.Some(held), nil)
	suite.store.EXPECT().GetCashBalance(gomock.Any()).Return(9000.0, nil)

	del := suite.store.EXPECT().DeletePosition(gomock.Any(), coinX.ID).Return(nil)
	suite.store.EXPECT().SetCashBalance(gomock.Any(), 10000.0).Return(nil).After(del)
	suite.store.EXPECT().RecordTrade(gomock.Any(), gomock.Any()).Return(nil)

	suite.Require().NoError(suite.engine.Sell(suite.ctx, coinX, 1000.0, 10.0))
}

// A journal failure must not fail a settled trade.
func (suite *SettlementFailureTestSuite) TestJournalFailureIsNotFatal() {
	suite.store.EXPECT().GetCashBalance(gomock.Any()).Return(10000.0, nil)
	suite.store.EXPECT().GetPosition(gomock.Any(), coinX.ID).
		Return(optional.None[types.Position](), nil)
	suite.store.EXPECT().UpsertPosition(gomock.Any(), gomock.Any()).Return(nil)
	suite.store.EXPECT().SetCashBalance(gomock.Any(), gomock.Any()).Return(nil)
	suite.store.EXPECT().RecordTrade(gomock.Any(), gomock.Any()).
		Return(errors.New(errors.ErrCodeQueryFailed, "journal unavailable"))

	suite.Require().NoError(suite.engine.Buy(suite.ctx, coinX, 1000.0, 10.0))
}
