// cmd/cexlink/main.go
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"cexlink"
	"cexlink/config"
	"cexlink/logger"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the yaml config")
	exchangeName := flag.String("exchange", "binance", "exchange id to query")
	symbol := flag.String("symbol", "BTC/USDT", "unified symbol to query")
	flag.Parse()

	// Missing .env is fine, credentials can come from the environment.
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.GetLogger().WithError(err).Error("failed to load config")
		os.Exit(1)
	}
	log := logger.GetLogger()
	if err := log.Configure(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output, cfg.Logging.MaxAge); err != nil {
		log.WithError(err).Error("failed to configure logging")
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go handleShutdown(cancel)

	conn, err := cexlink.New(*exchangeName, cfg.Exchange(*exchangeName))
	if err != nil {
		log.WithError(err).Error("failed to build connector")
		os.Exit(1)
	}
	entry := log.WithExchange(conn.ID())

	markets, err := conn.LoadMarkets(ctx)
	if err != nil {
		entry.WithError(err).Error("load markets failed")
		os.Exit(1)
	}
	entry.WithFields(logger.Fields{"markets": len(markets)}).Info("markets loaded")

	ticker, err := conn.FetchTicker(ctx, *symbol)
	if err != nil {
		entry.WithError(err).Error("fetch ticker failed")
		os.Exit(1)
	}
	fields := logger.Fields{"symbol": ticker.Symbol, "datetime": ticker.Datetime}
	if ticker.Last != nil {
		fields["last"] = ticker.Last.String()
	}
	entry.WithFields(fields).Info("ticker")

	book, err := conn.FetchOrderBook(ctx, *symbol, 5)
	if err != nil {
		entry.WithError(err).Error("fetch order book failed")
		os.Exit(1)
	}
	entry.WithFields(logger.Fields{
		"symbol": book.Symbol,
		"bids":   len(book.Bids),
		"asks":   len(book.Asks),
	}).Info("order book")
}

func handleShutdown(cancel context.CancelFunc) {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	cancel()
}
