package collector

import (
	"context"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"MarketLens/internal/model"
)

// fakeAPI serves fixtures keyed by the function query parameter and records
// every query it receives.
type fakeAPI struct {
	mu      sync.Mutex
	queries []url.Values
	body    string // overrides the per-function fixture when set
	status  int
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.queries = append(f.queries, r.URL.Query())
	f.mu.Unlock()

	if f.status != 0 {
		w.WriteHeader(f.status)
		w.Write([]byte(`{"error":"server"}`))
		return
	}
	body := f.body
	if body == "" {
		body = fixturesByFunction[r.URL.Query().Get("function")]
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(body))
}

func (f *fakeAPI) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queries)
}

func newTestFetcher(t *testing.T, api *fakeAPI) *AlphaVantageFetcher {
	t.Helper()
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)
	return NewAlphaVantageFetcher(srv.URL, "test-key", "", 5*time.Second)
}

func assertNormalized(t *testing.T, tbl *model.Table) {
	t.Helper()
	for i := 1; i < tbl.Len(); i++ {
		if !tbl.Index[i].After(tbl.Index[i-1]) {
			t.Errorf("index not strictly increasing at %d: %v then %v", i, tbl.Index[i-1], tbl.Index[i])
		}
	}
	for _, col := range tbl.Columns() {
		vals, _ := tbl.Column(col)
		for i, v := range vals {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				t.Errorf("column %q row %d is not a number: %v", col, i, v)
			}
		}
	}
}

func TestAlphaVantage_AllKinds(t *testing.T) {
	api := &fakeAPI{}
	f := newTestFetcher(t, api)

	tests := []struct {
		req     model.Request
		rows    int
		columns string
	}{
		{model.Request{Kind: model.KindDaily, Symbol: "NVDA"}, 3, "open,high,low,close,volume"},
		{model.Request{Kind: model.KindIntraday, Symbol: "NVDA", Interval: "15min"}, 3, "open,high,low,close,volume"},
		{model.Request{Kind: model.KindWeekly, Symbol: "NVDA"}, 2, "open,high,low,close,volume"},
		{model.Request{Kind: model.KindMonthly, Symbol: "NVDA"}, 3, "open,high,low,close,volume"},
		{model.Request{Kind: model.KindWeeklyAdjusted, Symbol: "NVDA"}, 2, "open,high,low,close,adjusted close,volume,dividend amount"},
		{model.Request{Kind: model.KindQuote, Symbol: "NVDA"}, 1, "open,high,low,price,volume,previous close,change,change percent"},
	}
	for _, tt := range tests {
		t.Run(string(tt.req.Kind), func(t *testing.T) {
			tbl, err := f.Fetch(context.Background(), tt.req.WithDefaults())
			if err != nil {
				t.Fatalf("Fetch: %v", err)
			}
			if tbl.Len() != tt.rows {
				t.Fatalf("rows = %d, want %d", tbl.Len(), tt.rows)
			}
			if got := strings.Join(tbl.Columns(), ","); got != tt.columns {
				t.Errorf("columns = %s, want %s", got, tt.columns)
			}
			if tbl.Symbol != "NVDA" || tbl.Kind != tt.req.Kind {
				t.Errorf("symbol/kind = %s/%s", tbl.Symbol, tbl.Kind)
			}
			assertNormalized(t, tbl)
		})
	}
}

func TestAlphaVantage_DailyValuesInOrder(t *testing.T) {
	f := newTestFetcher(t, &fakeAPI{})
	tbl, err := f.Fetch(context.Background(), model.Request{Kind: model.KindDaily, Symbol: "NVDA"}.WithDefaults())
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	want := []string{"2024-01-01", "2024-01-02", "2024-01-03"}
	for i, d := range want {
		if got := tbl.Index[i].Format("2006-01-02"); got != d {
			t.Errorf("index[%d] = %s, want %s", i, got, d)
		}
	}
	closes, _ := tbl.Column("close")
	if closes[0] != 102 || closes[1] != 103.5 || closes[2] != 105 {
		t.Errorf("closes = %v", closes)
	}
	if tbl.Meta["time zone"] != "US/Eastern" || tbl.Meta["last refreshed"] != "2024-01-03" {
		t.Errorf("meta = %v", tbl.Meta)
	}
}

func TestAlphaVantage_QuoteFields(t *testing.T) {
	f := newTestFetcher(t, &fakeAPI{})
	tbl, err := f.Fetch(context.Background(), model.Request{Kind: model.KindQuote, Symbol: "nvda"})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if tbl.Symbol != "NVDA" {
		t.Errorf("symbol = %q, want NVDA from payload", tbl.Symbol)
	}
	if got := tbl.Index[0].Format("2006-01-02"); got != "2024-01-02" {
		t.Errorf("index = %s", got)
	}
	if v := tbl.Value(0, "change percent"); math.Abs(v-0.9901) > 1e-12 {
		t.Errorf("change percent = %v", v)
	}
	if v := tbl.Value(0, "previous close"); v != 101 {
		t.Errorf("previous close = %v", v)
	}
}

func TestAlphaVantage_QueryParameters(t *testing.T) {
	api := &fakeAPI{}
	f := newTestFetcher(t, api)
	ctx := context.Background()

	_, _ = f.Fetch(ctx, model.Request{Kind: model.KindIntraday, Symbol: "IBM", Interval: "15min", OutputSize: "full"})
	_, _ = f.Fetch(ctx, model.Request{Kind: model.KindWeekly, Symbol: "IBM"})

	if api.calls() != 2 {
		t.Fatalf("calls = %d, want one GET per fetch", api.calls())
	}
	q := api.queries[0]
	for k, want := range map[string]string{
		"function": "TIME_SERIES_INTRADAY", "symbol": "IBM", "apikey": "test-key", "interval": "15min", "outputsize": "full",
	} {
		if q.Get(k) != want {
			t.Errorf("intraday %s = %q, want %q", k, q.Get(k), want)
		}
	}
	q = api.queries[1]
	if q.Has("outputsize") || q.Has("interval") {
		t.Errorf("weekly should send neither outputsize nor interval: %v", q)
	}
}

func TestAlphaVantage_MissingKey(t *testing.T) {
	for name, body := range map[string]string{
		"rate limit": rateLimitFixture,
		"bad symbol": badSymbolFixture,
		"other key":  weeklyFixture,
	} {
		t.Run(name, func(t *testing.T) {
			f := newTestFetcher(t, &fakeAPI{body: body})
			_, err := f.Fetch(context.Background(), model.Request{Kind: model.KindDaily, Symbol: "NVDA"}.WithDefaults())
			if !errors.Is(err, ErrMissingKey) {
				t.Fatalf("expected ErrMissingKey, got %v", err)
			}
		})
	}

	f := newTestFetcher(t, &fakeAPI{body: rateLimitFixture})
	_, err := f.Fetch(context.Background(), model.Request{Kind: model.KindWeekly, Symbol: "NVDA"})
	if err == nil || !strings.Contains(err.Error(), "5 calls per minute") {
		t.Errorf("expected API note in error, got %v", err)
	}
}

func TestAlphaVantage_IntradayKeyFollowsInterval(t *testing.T) {
	// Fixture is keyed "Time Series (15min)"; asking for 5min must not match it.
	f := newTestFetcher(t, &fakeAPI{body: intradayFixture})
	_, err := f.Fetch(context.Background(), model.Request{Kind: model.KindIntraday, Symbol: "NVDA", Interval: "5min"})
	if !errors.Is(err, ErrMissingKey) {
		t.Errorf("expected ErrMissingKey, got %v", err)
	}
}

func TestAlphaVantage_Failures(t *testing.T) {
	tests := map[string]*fakeAPI{
		"status":      {status: http.StatusInternalServerError},
		"bad json":    {body: `{"Time Series (Daily)": [`},
		"non-numeric": {body: nonNumericFixture},
		"empty quote": {body: emptyQuoteFixture},
	}
	for name, api := range tests {
		t.Run(name, func(t *testing.T) {
			f := newTestFetcher(t, api)
			kind := model.KindDaily
			if name == "empty quote" {
				kind = model.KindQuote
			}
			if _, err := f.Fetch(context.Background(), model.Request{Kind: kind, Symbol: "NVDA"}.WithDefaults()); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestAlphaVantage_TransportErrorHidesKey(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()

	f := NewAlphaVantageFetcher(addr, "super-secret-key", "", time.Second)
	_, err := f.Fetch(context.Background(), model.Request{Kind: model.KindWeekly, Symbol: "NVDA"})
	if err == nil {
		t.Fatal("expected transport error")
	}
	if strings.Contains(err.Error(), "super-secret-key") {
		t.Errorf("error leaks api key: %v", err)
	}
}
