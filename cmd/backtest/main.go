package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"stock-signal-bot/internal/backtest"
	"stock-signal-bot/internal/logger"
	"stock-signal-bot/internal/news"
	"stock-signal-bot/internal/prices"
	"stock-signal-bot/internal/sentiment"
	"stock-signal-bot/internal/store"
)

func must(err error) {
	if err != nil {
		log.Fatal(err)
	}
}

// Runs the full backtest against the configured thresholds and prints the
// report: current vs sweep-optimal accuracy, per-ticker breakdown, confusion
// matrix, and threshold recommendations.
func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	_ = godotenv.Load()
	must(logger.Init())

	cfg, err := store.LoadConfig(*configPath)
	must(err)

	ctx := context.Background()
	defer logger.Shutdown(ctx)

	collector := news.NewCollector(cfg)
	classifier := sentiment.NewClassifier(cfg)
	priceClient := prices.NewClient(cfg.Backtest.LookbackDays, cfg.Backtest.PriceBufferDays)

	grid := backtest.Grid{
		BuyThresholds:  backtest.Steps(cfg.Backtest.Sweep.Buy.Start, cfg.Backtest.Sweep.Buy.Stop, cfg.Backtest.Sweep.Buy.Step),
		SellThresholds: backtest.Steps(cfg.Backtest.Sweep.Sell.Start, cfg.Backtest.Sweep.Sell.Stop, cfg.Backtest.Sweep.Sell.Step),
		MinArticles:    cfg.Backtest.Sweep.MinArticles,
		MinSignals:     cfg.Backtest.Sweep.MinSignals,
	}
	tuner := backtest.NewAutoTuner(collector, classifier, priceClient, grid)

	fmt.Println("Starting backtest...")
	report, err := tuner.BuildReport(ctx, cfg.Thresholds)
	if err != nil {
		switch {
		case errors.Is(err, backtest.ErrNoArticles):
			fmt.Fprintln(os.Stderr, "ERROR: No articles collected. Cannot run backtest.")
		case errors.Is(err, backtest.ErrNoData):
			fmt.Fprintln(os.Stderr, "ERROR: No data points to evaluate. Price data may not overlap with news dates.")
		case errors.Is(err, backtest.ErrNoViableConfig):
			fmt.Fprintln(os.Stderr, "ERROR: No viable threshold combinations found.")
		default:
			fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		}
		os.Exit(1)
	}

	backtest.WriteReport(os.Stdout, report, cfg.DisplayName)
}
