package market

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/coinroutine/ledger/pkg/errors"
)

type CoinrankingSourceTestSuite struct {
	suite.Suite
}

func TestCoinrankingSourceSuite(t *testing.T) {
	suite.Run(t, new(CoinrankingSourceTestSuite))
}

func (suite *CoinrankingSourceTestSuite) newServer(status int, body string) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
}

func (suite *CoinrankingSourceTestSuite) TestGetCurrentPrices() {
	body := `{"data":{"coins":[
		{"uuid":"Qwsogvtv82FCd","symbol":"BTC","name":"Bitcoin","iconUrl":"https://icons/btc.svg","price":"65000.5","rank":1,"change":"-1.2"},
		{"uuid":"razxDUgYGNAdQ","symbol":"ETH","name":"Ethereum","iconUrl":"https://icons/eth.svg","price":3000.25,"rank":2,"change":0.8}
	]}}`
	server := suite.newServer(http.StatusOK, body)
	defer server.Close()

	source := NewCoinrankingSource(server.URL, "")

	quotes, err := source.GetCurrentPrices(context.Background())
	suite.Require().NoError(err)
	suite.Len(quotes, 2)

	btc := quotes["Qwsogvtv82FCd"]
	suite.Equal("Bitcoin", btc.Coin.Name)
	suite.Equal("BTC", btc.Coin.Symbol)
	suite.InDelta(65000.5, btc.Price, 1e-9)
	suite.InDelta(-1.2, btc.Change, 1e-9)

	// Numeric (unquoted) prices must decode too
	suite.InDelta(3000.25, quotes["razxDUgYGNAdQ"].Price, 1e-9)
}

func (suite *CoinrankingSourceTestSuite) TestGetCoinByID() {
	var gotPath string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		suite.Equal("token123", r.Header.Get("x-access-token"))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{
				"coin": map[string]any{
					"uuid": "Qwsogvtv82FCd", "symbol": "BTC", "name": "Bitcoin",
					"iconUrl": "", "price": "64000", "rank": 1, "change": "2.5",
				},
			},
		})
	}))
	defer server.Close()

	source := NewCoinrankingSource(server.URL, "token123")

	quote, err := source.GetCoinByID(context.Background(), "Qwsogvtv82FCd")
	suite.Require().NoError(err)
	suite.Equal("/coin/Qwsogvtv82FCd", gotPath)
	suite.InDelta(64000.0, quote.Price, 1e-9)
}

func (suite *CoinrankingSourceTestSuite) TestGetPriceHistoryDropsNullPrices() {
	body := `{"data":{"history":[
		{"price":"100.0","timestamp":1700000000000},
		{"price":null,"timestamp":1700000060000},
		{"price":"101.5","timestamp":1700000120000}
	]}}`
	server := suite.newServer(http.StatusOK, body)
	defer server.Close()

	source := NewCoinrankingSource(server.URL, "")

	points, err := source.GetPriceHistory(context.Background(), "Qwsogvtv82FCd")
	suite.Require().NoError(err)
	suite.Require().Len(points, 2)
	suite.InDelta(100.0, points[0].Price, 1e-9)
	suite.InDelta(101.5, points[1].Price, 1e-9)
}

func (suite *CoinrankingSourceTestSuite) TestStatusMapping() {
	cases := []struct {
		status int
		code   errors.ErrorCode
	}{
		{http.StatusRequestTimeout, errors.ErrCodeRequestTimeout},
		{http.StatusTooManyRequests, errors.ErrCodeTooManyRequests},
		{http.StatusInternalServerError, errors.ErrCodeServerError},
		{http.StatusBadGateway, errors.ErrCodeServerError},
		{http.StatusTeapot, errors.ErrCodeRemoteUnknown},
	}

	for _, tc := range cases {
		server := suite.newServer(tc.status, "")
		source := NewCoinrankingSource(server.URL, "")

		_, err := source.GetCurrentPrices(context.Background())
		suite.Require().Error(err)
		suite.Equal(tc.code, errors.GetCode(err), "status %d", tc.status)

		server.Close()
	}
}

func (suite *CoinrankingSourceTestSuite) TestUnparseableBody() {
	server := suite.newServer(http.StatusOK, `{"data":{"coins":`)
	defer server.Close()

	source := NewCoinrankingSource(server.URL, "")

	_, err := source.GetCurrentPrices(context.Background())
	suite.Require().Error(err)
	suite.Equal(errors.ErrCodeUnparseable, errors.GetCode(err))
}

func (suite *CoinrankingSourceTestSuite) TestNoConnection() {
	server := suite.newServer(http.StatusOK, "{}")
	server.Close() // closed before use: connection refused

	source := NewCoinrankingSource(server.URL, "")

	_, err := source.GetCurrentPrices(context.Background())
	suite.Require().Error(err)
	suite.Equal(errors.ErrCodeNoConnection, errors.GetCode(err))
}

func (suite *CoinrankingSourceTestSuite) TestNewSourceFactory() {
	source, err := NewSource(SourceCoinranking, Config{Host: "http://localhost"})
	suite.NoError(err)
	suite.IsType(&CoinrankingSource{}, source)

	source, err = NewSource(SourceBinance, Config{Symbols: []string{"btc"}})
	suite.NoError(err)
	suite.IsType(&BinanceSource{}, source)

	_, err = NewSource("bogus", Config{})
	suite.Error(err)
}
