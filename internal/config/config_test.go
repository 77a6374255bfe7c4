package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/coinroutine/ledger/internal/market"
	"github.com/coinroutine/ledger/internal/store"
	"github.com/coinroutine/ledger/pkg/errors"
)

type ConfigTestSuite struct {
	suite.Suite
}

func TestConfigSuite(t *testing.T) {
	suite.Run(t, new(ConfigTestSuite))
}

func (suite *ConfigTestSuite) writeConfig(content string) string {
	path := filepath.Join(suite.T().TempDir(), "config.yaml")
	suite.Require().NoError(os.WriteFile(path, []byte(content), 0o644))

	return path
}

func (suite *ConfigTestSuite) TestDefaults() {
	cfg, err := Load("")
	suite.Require().NoError(err)

	suite.Equal(market.SourceCoinranking, cfg.Market.Provider)
	suite.Equal("coinledger.db", cfg.Store.DSN)
	suite.InDelta(store.DefaultStartingBalance, cfg.Store.StartingBalance, 1e-9)
	suite.InDelta(1.0, cfg.Ledger.DustThreshold, 1e-9)
	suite.False(cfg.Ledger.RejectNonPositive)
	suite.Equal("localhost:8080", cfg.Server.Addr)
	suite.Equal("info", cfg.LogLevel)
}

func (suite *ConfigTestSuite) TestLoadFile() {
	path := suite.writeConfig(`
market:
  provider: coinranking
  host: https://api.example.com/v2
  api_key: secret
store:
  dsn: ":memory:"
  starting_balance: 5000
ledger:
  dust_threshold: 0.5
  reject_non_positive: true
server:
  addr: "0.0.0.0:9090"
log_level: debug
`)

	cfg, err := Load(path)
	suite.Require().NoError(err)

	suite.Equal("https://api.example.com/v2", cfg.Market.Host)
	suite.Equal("secret", cfg.Market.APIKey)
	suite.Equal(":memory:", cfg.Store.DSN)
	suite.InDelta(5000.0, cfg.Store.StartingBalance, 1e-9)
	suite.InDelta(0.5, cfg.Ledger.DustThreshold, 1e-9)
	suite.True(cfg.Ledger.RejectNonPositive)
	suite.Equal("0.0.0.0:9090", cfg.Server.Addr)
	suite.Equal("debug", cfg.LogLevel)
}

func (suite *ConfigTestSuite) TestPartialFileKeepsDefaults() {
	path := suite.writeConfig(`
store:
  dsn: ":memory:"
`)

	cfg, err := Load(path)
	suite.Require().NoError(err)

	suite.Equal(":memory:", cfg.Store.DSN)
	suite.Equal(market.SourceCoinranking, cfg.Market.Provider)
	suite.InDelta(store.DefaultStartingBalance, cfg.Store.StartingBalance, 1e-9)
}

func (suite *ConfigTestSuite) TestEnvOverrides() {
	suite.T().Setenv("COINLEDGER_MARKET_API_KEY", "from-env")
	suite.T().Setenv("COINLEDGER_STORE_STARTING_BALANCE", "2500")
	suite.T().Setenv("COINLEDGER_LEDGER_REJECT_NON_POSITIVE", "true")
	suite.T().Setenv("COINLEDGER_MARKET_SYMBOLS", "BTC, ETH,SOL")

	cfg, err := Load("")
	suite.Require().NoError(err)

	suite.Equal("from-env", cfg.Market.APIKey)
	suite.InDelta(2500.0, cfg.Store.StartingBalance, 1e-9)
	suite.True(cfg.Ledger.RejectNonPositive)
	suite.Equal([]string{"BTC", "ETH", "SOL"}, cfg.Market.Symbols)
}

func (suite *ConfigTestSuite) TestMissingFile() {
	_, err := Load(filepath.Join(suite.T().TempDir(), "absent.yaml"))
	suite.Require().Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidConfiguration))
}

func (suite *ConfigTestSuite) TestMalformedFile() {
	path := suite.writeConfig("market: [not a mapping")

	_, err := Load(path)
	suite.Require().Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidConfiguration))
}

func (suite *ConfigTestSuite) TestUnknownProviderRejected() {
	path := suite.writeConfig(`
market:
  provider: kraken
`)

	_, err := Load(path)
	suite.Require().Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidConfiguration))
}

func (suite *ConfigTestSuite) TestBinanceRequiresSymbols() {
	path := suite.writeConfig(`
market:
  provider: binance
`)

	_, err := Load(path)
	suite.Require().Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidConfiguration))

	path = suite.writeConfig(`
market:
  provider: binance
  symbols: [BTC, ETH]
`)

	cfg, err := Load(path)
	suite.Require().NoError(err)
	suite.Equal(market.SourceBinance, cfg.Market.Provider)
}

func (suite *ConfigTestSuite) TestNegativeBalanceRejected() {
	path := suite.writeConfig(`
store:
  dsn: ":memory:"
  starting_balance: -1
`)

	_, err := Load(path)
	suite.Require().Error(err)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidConfiguration))
}
