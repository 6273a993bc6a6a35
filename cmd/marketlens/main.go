package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"MarketLens/internal/collector"
	"MarketLens/internal/config"
	"MarketLens/internal/export"
	"MarketLens/internal/metrics"
	"MarketLens/internal/model"
	"MarketLens/internal/notifier"
	"MarketLens/internal/recorder"
	"MarketLens/internal/scheduler"
	"MarketLens/internal/server"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
)

const usage = `usage: marketlens <command> [flags]

commands:
  fetch   load one series and print it
  watch   run the configured watch jobs and answer Telegram commands
  serve   serve the HTTP query API
`

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("[WARN] load .env: %v", err)
	}

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cfgPath := config.DefaultPath
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("[FATAL] load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[FATAL] config validation: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	switch os.Args[1] {
	case "fetch":
		err = runFetch(ctx, cfg, os.Args[2:])
	case "watch":
		err = runWatch(ctx, cfg)
	case "serve":
		err = runServe(ctx, cfg)
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	if err != nil {
		log.Fatalf("[FATAL] %s: %v", os.Args[1], err)
	}
}

func newCollector(cfg *config.Config, m *metrics.Metrics) *collector.Collector {
	fetcher := collector.NewAlphaVantageFetcher(
		cfg.AlphaVantage.BaseURL,
		cfg.AlphaVantage.APIKey,
		cfg.Proxy,
		time.Duration(cfg.AlphaVantage.TimeoutSeconds)*time.Second,
	)
	log.Printf("[INFO] data source: %s", fetcher.Name())
	return collector.NewCollector(collector.NewLoader(fetcher, m), cfg.Indicators)
}

func openRecorder(cfg *config.Config) recorder.Recorder {
	if cfg.Database.SQLitePath == "" {
		return recorder.NewNoopRecorder()
	}
	sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
	if err != nil {
		log.Printf("[WARN] init sqlite recorder failed, using noop: %v", err)
		return recorder.NewNoopRecorder()
	}
	return sr
}

func runFetch(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("fetch", flag.ExitOnError)
	symbol := fs.String("symbol", "", "ticker symbol, e.g. NVDA")
	kindName := fs.String("kind", "daily", "quote, daily, intraday, weekly, monthly or weekly_adjusted")
	interval := fs.String("interval", "", "intraday bar interval (1min, 5min, 15min, 30min, 60min)")
	outputSize := fs.String("outputsize", "", "compact or full (daily and intraday)")
	withIndicators := fs.Bool("indicators", false, "append MA, MACD, RSI and Bollinger Bands")
	rows := fs.Int("rows", 20, "rows to print from the end; 0 prints all")
	xlsxPath := fs.String("xlsx", "", "also write the table to this .xlsx file")
	record := fs.Bool("record", false, "store the table in the SQLite database")
	fs.Parse(args)

	kind, err := model.ParseSeriesKind(*kindName)
	if err != nil {
		return err
	}
	req := model.Request{Kind: kind, Symbol: *symbol, Interval: *interval, OutputSize: *outputSize}

	col := newCollector(cfg, nil)
	var t *model.Table
	if *withIndicators {
		if t, err = col.Collect(ctx, req); err != nil {
			return err
		}
	} else if t = col.Loader.Load(ctx, req); t.Empty() {
		return fmt.Errorf("%s: %w", req.WithDefaults(), collector.ErrNoData)
	}

	export.Render(os.Stdout, t, *rows)

	if *xlsxPath != "" {
		if err := export.WriteXLSX(t, *xlsxPath); err != nil {
			return err
		}
		log.Printf("[INFO] wrote %s", *xlsxPath)
	}
	if *record {
		// An explicit -record must not fall back to the noop recorder.
		rec, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			return fmt.Errorf("open recorder: %w", err)
		}
		defer rec.Close()
		runID, err := rec.RecordSeries(&recorder.SeriesSnapshot{Table: t, Request: req.WithDefaults(), FetchedAt: time.Now()})
		if err != nil {
			return fmt.Errorf("record: %w", err)
		}
		log.Printf("[INFO] recorded run %s", runID)
	}
	return nil
}

func runWatch(ctx context.Context, cfg *config.Config) error {
	if err := cfg.ValidateTelegram(); err != nil {
		return err
	}
	if len(cfg.Watch) == 0 {
		return fmt.Errorf("no watch jobs configured")
	}

	m := metrics.NewMetrics(prometheus.DefaultRegisterer)
	col := newCollector(cfg, m)
	rec := openRecorder(cfg)
	defer rec.Close()

	tn := notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)

	sched := scheduler.NewScheduler(ctx, col, tn, rec)
	if err := sched.Register(cfg.Watch); err != nil {
		return fmt.Errorf("register watch jobs: %w", err)
	}
	sched.Start()
	defer sched.Stop()

	go tn.StartPolling(ctx, sched.HandleCommand)
	log.Println("[INFO] Telegram polling started")

	if os.Getenv("RUN_ON_START") == "true" {
		log.Println("[INFO] RUN_ON_START enabled, running every watch job now")
		go sched.RunAllNow()
	}

	log.Println("[INFO] MarketLens is watching. Press Ctrl+C to stop.")
	<-ctx.Done()
	log.Println("[INFO] shutdown signal received, stopping...")
	return nil
}

func runServe(ctx context.Context, cfg *config.Config) error {
	m := metrics.NewMetrics(prometheus.DefaultRegisterer)
	col := newCollector(cfg, m)
	rec := openRecorder(cfg)
	defer rec.Close()

	engine := server.NewRouter(col, rec, prometheus.DefaultGatherer)
	return server.Run(ctx, cfg.Server.Addr, engine)
}
