package collector

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"MarketLens/internal/metrics"
	"MarketLens/internal/model"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

type panicFetcher struct{}

func (panicFetcher) Name() string { return "panic" }

func (panicFetcher) Fetch(context.Context, model.Request) (*model.Table, error) {
	panic("boom")
}

func newTestMetrics() *metrics.Metrics {
	return metrics.NewMetrics(prometheus.NewRegistry())
}

func TestLoader_ReturnsTableOnSuccess(t *testing.T) {
	m := newTestMetrics()
	mock := &MockFetcher{Price: 50, Bars: 30}
	l := NewLoader(mock, m)

	tbl := l.Daily(context.Background(), "NVDA", "")
	if tbl.Len() != 30 {
		t.Fatalf("rows = %d, want 30", tbl.Len())
	}
	if got := mock.Requests[0]; got.OutputSize != model.OutputCompact {
		t.Errorf("defaults not applied: %+v", got)
	}
	if v := testutil.ToFloat64(m.FetchTotal.WithLabelValues("daily", metrics.ResultOK)); v != 1 {
		t.Errorf("ok fetches = %v, want 1", v)
	}
	if v := testutil.ToFloat64(m.TableRows.WithLabelValues("daily")); v != 30 {
		t.Errorf("rows gauge = %v, want 30", v)
	}
}

func TestLoader_ConvenienceMethods(t *testing.T) {
	mock := &MockFetcher{Bars: 5}
	l := NewLoader(mock, nil)
	ctx := context.Background()

	l.Quote(ctx, "A")
	l.Daily(ctx, "B", "full")
	l.Intraday(ctx, "C", "60min", "")
	l.Weekly(ctx, "D")
	l.Monthly(ctx, "E")
	l.WeeklyAdjusted(ctx, "F")

	want := []model.Request{
		{Kind: model.KindQuote, Symbol: "A"},
		{Kind: model.KindDaily, Symbol: "B", OutputSize: "full"},
		{Kind: model.KindIntraday, Symbol: "C", Interval: "60min", OutputSize: model.OutputCompact},
		{Kind: model.KindWeekly, Symbol: "D"},
		{Kind: model.KindMonthly, Symbol: "E"},
		{Kind: model.KindWeeklyAdjusted, Symbol: "F"},
	}
	if len(mock.Requests) != len(want) {
		t.Fatalf("requests = %d, want %d", len(mock.Requests), len(want))
	}
	for i, w := range want {
		if mock.Requests[i] != w {
			t.Errorf("request %d = %+v, want %+v", i, mock.Requests[i], w)
		}
	}
}

func TestLoader_FailuresYieldNil(t *testing.T) {
	tests := []struct {
		name    string
		fetcher Fetcher
		req     model.Request
		result  string
	}{
		{"missing key", &MockFetcher{Err: fmt.Errorf("%w \"Time Series (Daily)\"", ErrMissingKey)}, model.Request{Kind: model.KindDaily, Symbol: "X"}, metrics.ResultMissingKey},
		{"no data", &MockFetcher{Err: ErrNoData}, model.Request{Kind: model.KindDaily, Symbol: "X"}, metrics.ResultEmpty},
		{"transport", &MockFetcher{Err: errors.New("connection reset")}, model.Request{Kind: model.KindDaily, Symbol: "X"}, metrics.ResultError},
		{"empty table", &MockFetcher{Tables: map[model.SeriesKind]*model.Table{model.KindDaily: model.NewTable(nil)}}, model.Request{Kind: model.KindDaily, Symbol: "X"}, metrics.ResultEmpty},
		{"panic", panicFetcher{}, model.Request{Kind: model.KindDaily, Symbol: "X"}, metrics.ResultError},
		{"no symbol", &MockFetcher{}, model.Request{Kind: model.KindDaily}, metrics.ResultInvalid},
		{"bad interval", &MockFetcher{}, model.Request{Kind: model.KindIntraday, Symbol: "X", Interval: "2min"}, metrics.ResultInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestMetrics()
			l := NewLoader(tt.fetcher, m)
			if tbl := l.Load(context.Background(), tt.req); tbl != nil {
				t.Fatalf("expected nil table, got %d rows", tbl.Len())
			}
			kind := string(tt.req.Kind)
			if v := testutil.ToFloat64(m.FetchTotal.WithLabelValues(kind, tt.result)); v != 1 {
				t.Errorf("fetch_total{%s,%s} = %v, want 1", kind, tt.result, v)
			}
		})
	}
}

func TestLoader_InvalidRequestSkipsFetch(t *testing.T) {
	mock := &MockFetcher{}
	NewLoader(mock, nil).Load(context.Background(), model.Request{Kind: "hourly", Symbol: "X"})
	if len(mock.Requests) != 0 {
		t.Errorf("fetcher called %d times for an invalid request", len(mock.Requests))
	}
}

func TestLoader_RepeatReissues(t *testing.T) {
	api := &fakeAPI{}
	l := NewLoader(newTestFetcher(t, api), nil)
	for i := 0; i < 3; i++ {
		if l.Weekly(context.Background(), "NVDA") == nil {
			t.Fatalf("call %d returned nil", i)
		}
	}
	if api.calls() != 3 {
		t.Errorf("calls = %d, want 3", api.calls())
	}
}

func TestLoader_HTTPFailuresYieldNil(t *testing.T) {
	for name, api := range map[string]*fakeAPI{
		"rate limit": {body: rateLimitFixture},
		"status":     {status: 503},
		"bad json":   {body: "<html>"},
	} {
		t.Run(name, func(t *testing.T) {
			l := NewLoader(newTestFetcher(t, api), nil)
			if tbl := l.Daily(context.Background(), "NVDA", ""); tbl != nil {
				t.Errorf("expected nil, got %d rows", tbl.Len())
			}
		})
	}
}

func TestLoader_CancelledContext(t *testing.T) {
	api := &fakeAPI{}
	l := NewLoader(newTestFetcher(t, api), nil)
	ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancel()
	time.Sleep(time.Millisecond)
	if tbl := l.Daily(ctx, "NVDA", ""); tbl != nil {
		t.Errorf("expected nil for cancelled context")
	}
}
