package collector

import (
	"context"
	"errors"
	"log"
	"time"

	"MarketLens/internal/metrics"
	"MarketLens/internal/model"
)

// Loader wraps a Fetcher with the log-and-return-nothing failure policy:
// every error is logged and turned into a nil table.
type Loader struct {
	Fetcher Fetcher
	Metrics *metrics.Metrics
}

// NewLoader creates a Loader. m may be nil.
func NewLoader(fetcher Fetcher, m *metrics.Metrics) *Loader {
	return &Loader{Fetcher: fetcher, Metrics: m}
}

// Load issues one fetch for req and returns the normalized table, or nil if
// anything went wrong. No retries are attempted.
func (l *Loader) Load(ctx context.Context, req model.Request) (table *model.Table) {
	req = req.WithDefaults()
	start := time.Now()
	result := metrics.ResultOK

	defer func() {
		if r := recover(); r != nil {
			log.Printf("[ERROR] %s %s: recovered from panic: %v", l.Fetcher.Name(), req, r)
			table = nil
			result = metrics.ResultError
		}
		l.Metrics.ObserveFetch(string(req.Kind), result, time.Since(start), table.Len())
	}()

	if err := req.Validate(); err != nil {
		log.Printf("[WARN] invalid request %s: %v", req, err)
		result = metrics.ResultInvalid
		return nil
	}

	t, err := l.Fetcher.Fetch(ctx, req)
	switch {
	case errors.Is(err, ErrMissingKey):
		log.Printf("[WARN] %s: %v", l.Fetcher.Name(), err)
		result = metrics.ResultMissingKey
		return nil
	case errors.Is(err, ErrNoData):
		log.Printf("[WARN] %s: %v", l.Fetcher.Name(), err)
		result = metrics.ResultEmpty
		return nil
	case err != nil:
		log.Printf("[ERROR] %s: %v", l.Fetcher.Name(), err)
		result = metrics.ResultError
		return nil
	case t.Empty():
		log.Printf("[WARN] %s %s: no rows returned", l.Fetcher.Name(), req)
		result = metrics.ResultEmpty
		return nil
	}

	log.Printf("[INFO] %s %s: %d rows, %s to %s", l.Fetcher.Name(), req, t.Len(),
		t.Index[0].Format("2006-01-02 15:04"), t.Index[t.Len()-1].Format("2006-01-02 15:04"))
	return t
}

// Quote fetches the latest quote for symbol.
func (l *Loader) Quote(ctx context.Context, symbol string) *model.Table {
	return l.Load(ctx, model.Request{Kind: model.KindQuote, Symbol: symbol})
}

// Daily fetches daily bars. outputSize is "compact" (latest 100) or "full".
func (l *Loader) Daily(ctx context.Context, symbol, outputSize string) *model.Table {
	return l.Load(ctx, model.Request{Kind: model.KindDaily, Symbol: symbol, OutputSize: outputSize})
}

// Intraday fetches intraday bars at interval (1min, 5min, 15min, 30min, 60min).
func (l *Loader) Intraday(ctx context.Context, symbol, interval, outputSize string) *model.Table {
	return l.Load(ctx, model.Request{Kind: model.KindIntraday, Symbol: symbol, Interval: interval, OutputSize: outputSize})
}

func (l *Loader) Weekly(ctx context.Context, symbol string) *model.Table {
	return l.Load(ctx, model.Request{Kind: model.KindWeekly, Symbol: symbol})
}

func (l *Loader) Monthly(ctx context.Context, symbol string) *model.Table {
	return l.Load(ctx, model.Request{Kind: model.KindMonthly, Symbol: symbol})
}

func (l *Loader) WeeklyAdjusted(ctx context.Context, symbol string) *model.Table {
	return l.Load(ctx, model.Request{Kind: model.KindWeeklyAdjusted, Symbol: symbol})
}
