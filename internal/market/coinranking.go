package market

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/coinroutine/ledger/internal/types"
	"github.com/coinroutine/ledger/pkg/errors"
)

const defaultCoinrankingHost = "https://api.coinranking.com/v2"

// CoinrankingSource is the REST client for a coinranking-shaped price API.
type CoinrankingSource struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewCoinrankingSource creates a new coinranking REST client. host may be
// empty, in which case the public API root is used.
func NewCoinrankingSource(host, apiKey string) *CoinrankingSource {
	if host == "" {
		host = defaultCoinrankingHost
	}

	return &CoinrankingSource{
		baseURL: host,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// flexFloat decodes a JSON number that the API may deliver either as a number
// or as a quoted string. Null decodes to zero.
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*f = 0

		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("invalid numeric string %q", s)
		}

		*f = flexFloat(v)

		return nil
	}

	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}

	*f = flexFloat(v)

	return nil
}

type coinItemDTO struct {
	UUID    string    `json:"uuid"`
	Symbol  string    `json:"symbol"`
	Name    string    `json:"name"`
	IconURL string    `json:"iconUrl"`
	Price   flexFloat `json:"price"`
	Rank    int       `json:"rank"`
	Change  flexFloat `json:"change"`
}

func (d *coinItemDTO) toQuote() types.PriceQuote {
	return types.PriceQuote{
		Coin: types.Coin{
			ID:      d.UUID,
			Name:    d.Name,
			Symbol:  d.Symbol,
			IconURL: d.IconURL,
		},
		Price:  float64(d.Price),
		Change: float64(d.Change),
	}
}

type coinsResponseDTO struct {
	Data struct {
		Coins []coinItemDTO `json:"coins"`
	} `json:"data"`
}

type coinDetailsResponseDTO struct {
	Data struct {
		Coin coinItemDTO `json:"coin"`
	} `json:"data"`
}

type priceHistoryResponseDTO struct {
	Data struct {
		History []struct {
			Price     *flexFloat `json:"price"`
			Timestamp int64      `json:"timestamp"`
		} `json:"history"`
	} `json:"data"`
}

// GetCurrentPrices implements Source.
func (c *CoinrankingSource) GetCurrentPrices(ctx context.Context) (map[string]types.PriceQuote, error) {
	var resp coinsResponseDTO
	if err := c.get(ctx, "/coins", &resp); err != nil {
		return nil, err
	}

	quotes := make(map[string]types.PriceQuote, len(resp.Data.Coins))
	for i := range resp.Data.Coins {
		quotes[resp.Data.Coins[i].UUID] = resp.Data.Coins[i].toQuote()
	}

	return quotes, nil
}

// GetCoinByID implements Source.
func (c *CoinrankingSource) GetCoinByID(ctx context.Context, coinID string) (types.PriceQuote, error) {
	var resp coinDetailsResponseDTO
	if err := c.get(ctx, "/coin/"+url.PathEscape(coinID), &resp); err != nil {
		return types.PriceQuote{}, err
	}

	return resp.Data.Coin.toQuote(), nil
}

// GetPriceHistory implements Source. Samples without a price are dropped.
func (c *CoinrankingSource) GetPriceHistory(ctx context.Context, coinID string) ([]types.PricePoint, error) {
	var resp priceHistoryResponseDTO
	if err := c.get(ctx, "/coin/"+url.PathEscape(coinID)+"/history", &resp); err != nil {
		return nil, err
	}

	points := make([]types.PricePoint, 0, len(resp.Data.History))
	for _, h := range resp.Data.History {
		if h.Price == nil {
			continue
		}

		points = append(points, types.PricePoint{
			Price:     float64(*h.Price),
			Timestamp: h.Timestamp,
		})
	}

	return points, nil
}

// get performs a GET request against the API and decodes the 2xx response
// body into out. Failures are mapped onto the remote error taxonomy.
func (c *CoinrankingSource) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return errors.Wrap(errors.ErrCodeRemoteUnknown, "failed to build request", err)
	}

	req.Header.Set("Accept", "application/json")

	if c.apiKey != "" {
		req.Header.Set("x-access-token", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return mapTransportError(err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode <= 299:
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return errors.Wrap(errors.ErrCodeUnparseable, "failed to decode response", err)
		}

		return nil
	case resp.StatusCode == http.StatusRequestTimeout:
		return errors.New(errors.ErrCodeRequestTimeout, "request timed out")
	case resp.StatusCode == http.StatusTooManyRequests:
		return errors.New(errors.ErrCodeTooManyRequests, "rate limited by market data source")
	case resp.StatusCode >= 500 && resp.StatusCode <= 599:
		return errors.Newf(errors.ErrCodeServerError, "server error: %s", resp.Status)
	default:
		return errors.Newf(errors.ErrCodeRemoteUnknown, "unexpected status: %s", resp.Status)
	}
}

// mapTransportError classifies a round-trip failure. Timeouts and unreachable
// hosts get their own codes so the caller can render distinct messages.
func mapTransportError(err error) error {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return errors.Wrap(errors.ErrCodeRequestTimeout, "request timed out", err)
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		var opErr *net.OpError
		if errors.As(urlErr.Err, &opErr) {
			return errors.Wrap(errors.ErrCodeNoConnection, "market data source unreachable", err)
		}
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return errors.Wrap(errors.ErrCodeNoConnection, "market data source unreachable", err)
	}

	return errors.Wrap(errors.ErrCodeRemoteUnknown, "request failed", err)
}
