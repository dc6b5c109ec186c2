package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	ossignal "os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"stock-signal-bot/internal/backtest"
	"stock-signal-bot/internal/dashboard"
	"stock-signal-bot/internal/logger"
	"stock-signal-bot/internal/mailer"
	"stock-signal-bot/internal/news"
	"stock-signal-bot/internal/prices"
	"stock-signal-bot/internal/publish"
	"stock-signal-bot/internal/sentiment"
	"stock-signal-bot/internal/signal"
	"stock-signal-bot/internal/store"
	"stock-signal-bot/internal/types"
)

func must(err error) {
	if err != nil {
		log.Fatal(err)
	}
}

type app struct {
	cfg        *store.Config
	thresholds *store.Thresholds
	history    *store.History
	collector  *news.Collector
	classifier *sentiment.Classifier
	aggregator *signal.Aggregator
	tuner      *backtest.AutoTuner
	mailer     *mailer.Mailer
	publisher  *publish.Publisher
}

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	runNow := flag.Bool("now", false, "run pipeline immediately and exit")
	web := flag.Bool("web", false, "serve the web dashboard")
	flag.Parse()

	_ = godotenv.Load()
	must(logger.Init())

	cfg, err := store.LoadConfig(*configPath)
	must(err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	defer logger.Shutdown(context.Background())

	sigc := make(chan os.Signal, 1)
	ossignal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigc
		logger.Info(ctx, "Shutting down...")
		cancel()
	}()

	history, err := store.OpenHistory(cfg.History.Path)
	must(err)
	defer history.Close()

	a, err := newApp(ctx, cfg, history)
	must(err)

	switch {
	case *web:
		must(a.serveDashboard(ctx, history))
	case *runNow:
		logger.Info(ctx, "Running pipeline immediately (-now flag)")
		a.runPipeline(ctx)
	default:
		must(a.runScheduled(ctx))
	}
}

func newApp(ctx context.Context, cfg *store.Config, history *store.History) (*app, error) {
	thresholds, err := store.NewThresholds(cfg.Thresholds)
	if err != nil {
		return nil, err
	}

	// Thresholds adopted by a previous tuner run outrank the config file.
	if saved, ok, err := history.LatestThresholds(); err != nil {
		logger.Warn(ctx, "Could not load saved thresholds", "error", err)
	} else if ok {
		if err := thresholds.Replace(saved); err != nil {
			logger.Warn(ctx, "Saved thresholds invalid, using config defaults", "error", err)
		} else {
			logger.Info(ctx, "Restored tuned thresholds",
				"buy", saved.BuyThreshold, "sell", saved.SellThreshold, "min_articles", saved.MinArticles)
		}
	}

	collector := news.NewCollector(cfg)
	classifier := sentiment.NewClassifier(cfg)
	priceClient := prices.NewClient(cfg.Backtest.LookbackDays, cfg.Backtest.PriceBufferDays)

	grid := backtest.Grid{
		BuyThresholds:  backtest.Steps(cfg.Backtest.Sweep.Buy.Start, cfg.Backtest.Sweep.Buy.Stop, cfg.Backtest.Sweep.Buy.Step),
		SellThresholds: backtest.Steps(cfg.Backtest.Sweep.Sell.Start, cfg.Backtest.Sweep.Sell.Stop, cfg.Backtest.Sweep.Sell.Step),
		MinArticles:    cfg.Backtest.Sweep.MinArticles,
		MinSignals:     cfg.Backtest.Sweep.MinSignals,
	}

	return &app{
		cfg:        cfg,
		thresholds: thresholds,
		history:    history,
		collector:  collector,
		classifier: classifier,
		aggregator: signal.NewAggregator(cfg),
		tuner:      backtest.NewAutoTuner(collector, classifier, priceClient, grid),
		mailer:     mailer.NewMailer(cfg),
		publisher:  publish.NewPublisher(cfg),
	}, nil
}

// runPipeline executes one full news -> sentiment -> signals -> delivery
// cycle. Collaborator failures are logged, never fatal.
func (a *app) runPipeline(ctx context.Context) {
	op := logger.StartOperation(ctx, "pipeline")
	ctx = op.GetContext()
	start := time.Now()

	logger.Info(ctx, "Step 0/5: Auto-tuning signal thresholds...")
	result := a.tuner.Tune(ctx, a.thresholds.Current())
	if result.Updated {
		if err := a.thresholds.Replace(result.Config); err != nil {
			logger.ErrorWithErr(ctx, "Rejecting tuned thresholds", err)
		} else if err := a.history.RecordThresholdUpdate(time.Now(), result.Config,
			result.CurrentAccuracy, result.OptimalAccuracy); err != nil {
			logger.ErrorWithErr(ctx, "Failed to persist threshold update", err)
		}
	}

	logger.Info(ctx, "Step 1/5: Collecting news...")
	articles := a.collector.CollectAll(ctx)
	if len(articles) == 0 {
		logger.Warn(ctx, "No articles collected, skipping pipeline")
		op.End("skipped", true)
		return
	}

	logger.Info(ctx, "Step 2/5: Running sentiment analysis...", "articles", len(articles))
	articles = a.classifier.Score(ctx, articles)

	logger.Info(ctx, "Step 3/5: Generating trading signals...")
	signals := a.aggregator.Generate(ctx, articles, a.thresholds.Current())

	buy, sell, hold := summarize(signals)
	logger.Info(ctx, "Signals summary", "buy", buy, "sell", sell, "hold", hold)

	if _, err := a.history.RecordRun(time.Now(), signals); err != nil {
		logger.ErrorWithErr(ctx, "Failed to record run", err)
	}

	logger.Info(ctx, "Step 4/5: Sending email digest...")
	if err := a.mailer.SendDigest(ctx, signals); err != nil {
		logger.ErrorWithErr(ctx, "Failed to send email digest", err)
	}

	logger.Info(ctx, "Step 5/5: Publishing dashboard...")
	if err := a.publisher.Publish(ctx, signals); err != nil {
		logger.ErrorWithErr(ctx, "Failed to publish dashboard", err)
	}

	logger.Info(ctx, "Pipeline completed", "elapsed_s", time.Since(start).Seconds())
	op.End("buy", buy, "sell", sell, "hold", hold)
}

// runScheduled runs the pipeline daily at the configured time until
// interrupted.
func (a *app) runScheduled(ctx context.Context) error {
	var hh, mm int
	if _, err := fmt.Sscanf(a.cfg.Schedule.DailyRunTime, "%d:%d", &hh, &mm); err != nil {
		return fmt.Errorf("bad daily_run_time %q: %w", a.cfg.Schedule.DailyRunTime, err)
	}

	c := cron.New()
	spec := fmt.Sprintf("%d %d * * *", mm, hh)
	if _, err := c.AddFunc(spec, func() { a.runPipeline(ctx) }); err != nil {
		return fmt.Errorf("schedule pipeline: %w", err)
	}

	logger.Info(ctx, "Bot started, waiting for scheduled run",
		"daily_run_time", a.cfg.Schedule.DailyRunTime)
	c.Start()
	<-ctx.Done()

	stopCtx := c.Stop()
	<-stopCtx.Done()
	return nil
}

func (a *app) serveDashboard(ctx context.Context, history *store.History) error {
	logger.Info(ctx, "Starting web dashboard mode")
	return dashboard.NewServer(a.cfg, history).Run(ctx)
}

func summarize(signals map[string]types.AssetSignal) (buy, sell, hold int) {
	for _, s := range signals {
		switch s.Signal {
		case types.SignalBuy:
			buy++
		case types.SignalSell:
			sell++
		default:
			hold++
		}
	}
	return buy, sell, hold
}
