// Package server exposes the ledger over a small REST API.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/coinroutine/ledger/internal/ledger"
	"github.com/coinroutine/ledger/internal/logger"
	"github.com/coinroutine/ledger/internal/market"
	"github.com/coinroutine/ledger/internal/types"
	"github.com/coinroutine/ledger/pkg/errors"
)

// Server serves portfolio state and accepts trade submissions over HTTP.
type Server struct {
	ledger     *ledger.Ledger
	market     market.Source
	logger     *logger.Logger
	validate   *validator.Validate
	upgrader   websocket.Upgrader
	httpServer *http.Server
}

// NewServer creates the HTTP API on top of a ledger and its market source.
func NewServer(l *ledger.Ledger, source market.Source, log *logger.Logger) *Server {
	return &Server{
		ledger:   l,
		market:   source,
		logger:   log,
		validate: validator.New(),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(_ *http.Request) bool { return true },
		},
	}
}

// Router builds the route table. Exposed separately so tests can drive the
// handlers without a listening socket.
func (s *Server) Router() *mux.Router {
	router := mux.NewRouter()
	router.Use(s.loggingMiddleware)

	router.HandleFunc("/api/v1/portfolio", s.handlePortfolio).Methods("GET")
	router.HandleFunc("/api/v1/portfolio/watch", s.handleWatchPortfolio).Methods("GET")
	router.HandleFunc("/api/v1/balance", s.handleBalance).Methods("GET")
	router.HandleFunc("/api/v1/coins", s.handleCoins).Methods("GET")
	router.HandleFunc("/api/v1/coins/{id}", s.handleCoin).Methods("GET")
	router.HandleFunc("/api/v1/coins/{id}/history", s.handleCoinHistory).Methods("GET")
	router.HandleFunc("/api/v1/trades", s.handleTradeHistory).Methods("GET")
	router.HandleFunc("/api/v1/trades", s.handleSubmitTrade).Methods("POST")
	router.HandleFunc("/healthz", s.handleHealth).Methods("GET")

	return router
}

// Start begins serving on addr and blocks until the listener fails or
// Shutdown is called.
func (s *Server) Start(addr string) error {
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.logger.Info("http server listening", zap.String("addr", addr))

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}

	return nil
}

// Shutdown drains in-flight requests and stops the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}

	return s.httpServer.Shutdown(ctx)
}

type tradeRequest struct {
	Side         types.TradeSide `json:"side" validate:"required,oneof=buy sell"`
	CoinID       string          `json:"coin_id" validate:"required"`
	AmountInFiat float64         `json:"amount_in_fiat" validate:"required,gt=0"`
	// Price overrides the live market price when set.
	Price float64 `json:"price" validate:"omitempty,gt=0"`
}

type tradeResponse struct {
	Side         types.TradeSide `json:"side"`
	CoinID       string          `json:"coin_id"`
	AmountInFiat float64         `json:"amount_in_fiat"`
	Price        float64         `json:"price"`
}

type balanceResponse struct {
	CashBalance    float64 `json:"cash_balance"`
	PortfolioValue float64 `json:"portfolio_value"`
	TotalBalance   float64 `json:"total_balance"`
}

type errorResponse struct {
	Error string           `json:"error"`
	Code  errors.ErrorCode `json:"code"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handlePortfolio(w http.ResponseWriter, r *http.Request) {
	valuation, err := s.ledger.Valuation(r.Context())
	if err != nil {
		s.writeError(w, err)

		return
	}

	s.writeJSON(w, http.StatusOK, valuation)
}

// handleWatchPortfolio upgrades the connection and streams a valuation
// snapshot whenever positions change. Failed revaluation cycles are sent as
// error frames and the stream continues.
func (s *Server) handleWatchPortfolio(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", zap.Error(err))

		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// The client never sends data frames; the read loop exists to notice the
	// close handshake and stop the watch stream.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				cancel()

				return
			}
		}
	}()

	for valuation, err := range s.ledger.WatchPortfolio(ctx) {
		if err != nil {
			code := errors.GetCode(err)
			if writeErr := conn.WriteJSON(errorResponse{Error: err.Error(), Code: code}); writeErr != nil {
				return
			}

			continue
		}

		if err := conn.WriteJSON(valuation); err != nil {
			return
		}
	}
}

func (s *Server) handleBalance(w http.ResponseWriter, r *http.Request) {
	cash, err := s.ledger.CashBalance(r.Context())
	if err != nil {
		s.writeError(w, err)

		return
	}

	value, err := s.ledger.TotalPortfolioValue(r.Context())
	if err != nil {
		s.writeError(w, err)

		return
	}

	s.writeJSON(w, http.StatusOK, balanceResponse{
		CashBalance:    cash,
		PortfolioValue: value,
		TotalBalance:   cash + value,
	})
}

func (s *Server) handleCoins(w http.ResponseWriter, r *http.Request) {
	prices, err := s.market.GetCurrentPrices(r.Context())
	if err != nil {
		s.writeError(w, err)

		return
	}

	quotes := make([]types.PriceQuote, 0, len(prices))
	for _, quote := range prices {
		quotes = append(quotes, quote)
	}

	s.writeJSON(w, http.StatusOK, quotes)
}

func (s *Server) handleCoin(w http.ResponseWriter, r *http.Request) {
	coinID := mux.Vars(r)["id"]

	quote, err := s.market.GetCoinByID(r.Context(), coinID)
	if err != nil {
		s.writeError(w, err)

		return
	}

	s.writeJSON(w, http.StatusOK, quote)
}

func (s *Server) handleCoinHistory(w http.ResponseWriter, r *http.Request) {
	coinID := mux.Vars(r)["id"]

	history, err := s.market.GetPriceHistory(r.Context(), coinID)
	if err != nil {
		s.writeError(w, err)

		return
	}

	s.writeJSON(w, http.StatusOK, history)
}

func (s *Server) handleTradeHistory(w http.ResponseWriter, r *http.Request) {
	coinID := r.URL.Query().Get("coin_id")

	records, err := s.ledger.TradeHistory(r.Context(), coinID)
	if err != nil {
		s.writeError(w, err)

		return
	}

	s.writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleSubmitTrade(w http.ResponseWriter, r *http.Request) {
	var req tradeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeInvalidParameter, "malformed trade request", err))

		return
	}

	if err := s.validate.Struct(&req); err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeInvalidParameter, "invalid trade request", err))

		return
	}

	// The quote supplies the coin metadata persisted alongside a new
	// position, and the execution price unless the request carries one.
	quote, err := s.market.GetCoinByID(r.Context(), req.CoinID)
	if err != nil {
		s.writeError(w, err)

		return
	}

	price := quote.Price
	if req.Price > 0 {
		price = req.Price
	}

	switch req.Side {
	case types.TradeSideBuy:
		err = s.ledger.Buy(r.Context(), quote.Coin, req.AmountInFiat, price)
	case types.TradeSideSell:
		err = s.ledger.Sell(r.Context(), quote.Coin, req.AmountInFiat, price)
	}

	if err != nil {
		s.writeError(w, err)

		return
	}

	s.writeJSON(w, http.StatusCreated, tradeResponse{
		Side:         req.Side,
		CoinID:       req.CoinID,
		AmountInFiat: req.AmountInFiat,
		Price:        price,
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Error("failed to encode response", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)
	s.writeJSON(w, statusFor(code), errorResponse{Error: err.Error(), Code: code})
}

// statusFor maps the error taxonomy onto HTTP statuses. Remote failures show
// up as gateway errors so clients can tell upstream trouble from bad input.
func statusFor(code errors.ErrorCode) int {
	switch code {
	case errors.ErrCodeInsufficientFunds:
		return http.StatusUnprocessableEntity
	case errors.ErrCodeInvalidParameter, errors.ErrCodeInvalidConfiguration, errors.ErrCodeInvalidAmount:
		return http.StatusBadRequest
	case errors.ErrCodeCoinNotFound:
		return http.StatusNotFound
	case errors.ErrCodeRequestTimeout:
		return http.StatusGatewayTimeout
	case errors.ErrCodeTooManyRequests, errors.ErrCodeNoConnection,
		errors.ErrCodeServerError, errors.ErrCodeUnparseable, errors.ErrCodeRemoteUnknown:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		next.ServeHTTP(recorder, r)

		s.logger.Info("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", recorder.status),
			zap.Duration("duration", time.Since(start)),
		)
	})
}
