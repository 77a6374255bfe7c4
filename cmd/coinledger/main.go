package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/moznion/go-optional"
	"github.com/urfave/cli/v3"

	"github.com/coinroutine/ledger/internal/config"
	"github.com/coinroutine/ledger/internal/ledger"
	"github.com/coinroutine/ledger/internal/logger"
	"github.com/coinroutine/ledger/internal/market"
	"github.com/coinroutine/ledger/internal/server"
	"github.com/coinroutine/ledger/internal/store"
	"github.com/coinroutine/ledger/internal/tui"
)

// app bundles everything a subcommand needs.
type app struct {
	cfg    config.Config
	logger *logger.Logger
	store  *store.DuckDBStore
	market market.Source
	ledger *ledger.Ledger
}

// setup loads configuration, opens the store, and assembles the ledger.
// quiet suppresses log output for commands that own the terminal.
func setup(ctx context.Context, cmd *cli.Command, quiet bool) (*app, error) {
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return nil, err
	}

	// Flag overrides beat both file and environment
	if v := cmd.String("db"); v != "" {
		cfg.Store.DSN = v
	}

	if v := cmd.String("provider"); v != "" {
		cfg.Market.Provider = market.SourceType(v)
	}

	if v := cmd.String("api-key"); v != "" {
		cfg.Market.APIKey = v
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var log *logger.Logger
	if quiet {
		log = logger.NewNopLogger()
	} else {
		log, err = logger.NewLoggerWithLevel(cfg.LogLevel)
		if err != nil {
			return nil, err
		}
	}

	positionStore, err := store.NewDuckDBStore(cfg.Store.DSN, cfg.Store.StartingBalance, log)
	if err != nil {
		return nil, err
	}

	source, err := market.NewSource(cfg.Market.Provider, market.Config{
		Host:    cfg.Market.Host,
		APIKey:  cfg.Market.APIKey,
		Symbols: cfg.Market.Symbols,
	})
	if err != nil {
		positionStore.Close()

		return nil, err
	}

	l := ledger.New(positionStore, source, log, ledger.Options{
		DustThreshold:     optional.Some(cfg.Ledger.DustThreshold),
		RejectNonPositive: cfg.Ledger.RejectNonPositive,
	})

	if err := l.Initialize(ctx); err != nil {
		positionStore.Close()

		return nil, err
	}

	return &app{
		cfg:    cfg,
		logger: log,
		store:  positionStore,
		market: source,
		ledger: l,
	}, nil
}

const shutdownTimeout = 10 * time.Second

func (a *app) close() {
	a.store.Close()
	a.logger.Sync()
}

// printJSON writes v to stdout as indented JSON.
func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")

	return enc.Encode(v)
}

func serveAction(ctx context.Context, cmd *cli.Command) error {
	a, err := setup(ctx, cmd, false)
	if err != nil {
		return err
	}
	defer a.close()

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := server.NewServer(a.ledger, a.market, a.logger)

	errCh := make(chan error, 1)

	go func() {
		errCh <- srv.Start(a.cfg.Server.Addr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}

func tuiAction(ctx context.Context, cmd *cli.Command) error {
	a, err := setup(ctx, cmd, true)
	if err != nil {
		return err
	}
	defer a.close()

	return tui.Run(a.ledger)
}

func tradeAction(ctx context.Context, cmd *cli.Command, buy bool) error {
	coinID := cmd.Args().First()
	if coinID == "" {
		return cli.Exit("coin id argument is required", 1)
	}

	amount := cmd.Float("amount")

	a, err := setup(ctx, cmd, false)
	if err != nil {
		return err
	}
	defer a.close()

	quote, err := a.market.GetCoinByID(ctx, coinID)
	if err != nil {
		return err
	}

	price := quote.Price
	if v := cmd.Float("price"); v > 0 {
		price = v
	}

	if buy {
		err = a.ledger.Buy(ctx, quote.Coin, amount, price)
	} else {
		err = a.ledger.Sell(ctx, quote.Coin, amount, price)
	}

	if err != nil {
		return err
	}

	balance, err := a.ledger.CashBalance(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("settled at price %.4f, cash balance %.2f\n", price, balance)

	return nil
}

func portfolioAction(ctx context.Context, cmd *cli.Command) error {
	a, err := setup(ctx, cmd, true)
	if err != nil {
		return err
	}
	defer a.close()

	valuation, err := a.ledger.Valuation(ctx)
	if err != nil {
		return err
	}

	return printJSON(valuation)
}

func balanceAction(ctx context.Context, cmd *cli.Command) error {
	a, err := setup(ctx, cmd, true)
	if err != nil {
		return err
	}
	defer a.close()

	cash, err := a.ledger.CashBalance(ctx)
	if err != nil {
		return err
	}

	total, err := a.ledger.TotalBalance(ctx)
	if err != nil {
		return err
	}

	return printJSON(map[string]float64{
		"cash_balance":  cash,
		"total_balance": total,
	})
}

func coinsAction(ctx context.Context, cmd *cli.Command) error {
	a, err := setup(ctx, cmd, true)
	if err != nil {
		return err
	}
	defer a.close()

	prices, err := a.market.GetCurrentPrices(ctx)
	if err != nil {
		return err
	}

	return printJSON(prices)
}

func historyAction(ctx context.Context, cmd *cli.Command) error {
	coinID := cmd.Args().First()
	if coinID == "" {
		return cli.Exit("coin id argument is required", 1)
	}

	a, err := setup(ctx, cmd, true)
	if err != nil {
		return err
	}
	defer a.close()

	history, err := a.market.GetPriceHistory(ctx, coinID)
	if err != nil {
		return err
	}

	return printJSON(history)
}

func tradesAction(ctx context.Context, cmd *cli.Command) error {
	a, err := setup(ctx, cmd, true)
	if err != nil {
		return err
	}
	defer a.close()

	records, err := a.ledger.TradeHistory(ctx, cmd.String("coin"))
	if err != nil {
		return err
	}

	return printJSON(records)
}

func main() {
	amountFlag := &cli.FloatFlag{
		Name:     "amount",
		Aliases:  []string{"a"},
		Usage:    "Trade amount in fiat",
		Required: true,
	}
	priceFlag := &cli.FloatFlag{
		Name:  "price",
		Usage: "Execution price (defaults to the live market price)",
	}

	cmd := &cli.Command{
		Name:  "coinledger",
		Usage: "Paper-trade a crypto portfolio against live market prices",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to the YAML config file",
			},
			&cli.StringFlag{
				Name:  "db",
				Usage: "DuckDB database path (overrides config)",
			},
			&cli.StringFlag{
				Name:  "provider",
				Usage: "Market data provider: coinranking, binance (overrides config)",
			},
			&cli.StringFlag{
				Name:  "api-key",
				Usage: "Market data API key (overrides config)",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the HTTP API server",
				Action: serveAction,
			},
			{
				Name:   "tui",
				Usage:  "Watch the portfolio live in the terminal",
				Action: tuiAction,
			},
			{
				Name:      "buy",
				Usage:     "Buy a coin at the current market price",
				ArgsUsage: "<coin-id>",
				Flags:     []cli.Flag{amountFlag, priceFlag},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return tradeAction(ctx, cmd, true)
				},
			},
			{
				Name:      "sell",
				Usage:     "Sell a coin at the current market price",
				ArgsUsage: "<coin-id>",
				Flags:     []cli.Flag{amountFlag, priceFlag},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return tradeAction(ctx, cmd, false)
				},
			},
			{
				Name:   "portfolio",
				Usage:  "Print the current portfolio valuation",
				Action: portfolioAction,
			},
			{
				Name:   "balance",
				Usage:  "Print cash and total balance",
				Action: balanceAction,
			},
			{
				Name:   "coins",
				Usage:  "List coins with current prices",
				Action: coinsAction,
			},
			{
				Name:      "history",
				Usage:     "Print the 24h price history of a coin",
				ArgsUsage: "<coin-id>",
				Action:    historyAction,
			},
			{
				Name:  "trades",
				Usage: "Print the trade journal",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "coin",
						Usage: "Narrow the journal to one coin id",
					},
				},
				Action: tradesAction,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
