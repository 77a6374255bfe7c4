package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetAveragePurchasePrice(t *testing.T) {
	p := Position{
		OwnedAmountInUnit: 150.0,
		OwnedAmountInFiat: 2000.0,
	}
	assert.InDelta(t, 13.3333, p.GetAveragePurchasePrice(), 0.0001)
}

func TestGetAveragePurchasePriceEmptyPosition(t *testing.T) {
	p := Position{}
	assert.Equal(t, 0.0, p.GetAveragePurchasePrice())
}

func TestPerformancePercent(t *testing.T) {
	p := Position{AveragePurchasePrice: 10.0}

	assert.InDelta(t, 100.0, p.PerformancePercent(20.0), 1e-9)
	assert.InDelta(t, -50.0, p.PerformancePercent(5.0), 1e-9)
	assert.InDelta(t, 0.0, p.PerformancePercent(10.0), 1e-9)
}

func TestPerformancePercentZeroAverage(t *testing.T) {
	p := Position{}
	assert.Equal(t, 0.0, p.PerformancePercent(42.0))
}

func TestMarketValue(t *testing.T) {
	p := Position{OwnedAmountInUnit: 0.1}
	assert.InDelta(t, 6543.21, p.MarketValue(65432.1), 1e-9)
}
