package collector

import (
	"context"
	"math"
	"time"

	"MarketLens/internal/model"
)

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Price  float64
	Bars   int
	Tables map[model.SeriesKind]*model.Table
	Err    error

	Requests []model.Request
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) Fetch(_ context.Context, req model.Request) (*model.Table, error) {
	m.Requests = append(m.Requests, req)
	if m.Err != nil {
		return nil, m.Err
	}
	if t, ok := m.Tables[req.Kind]; ok {
		return t.Clone(), nil
	}
	n := m.Bars
	if n <= 0 {
		n = 100
	}
	if req.Kind == model.KindQuote {
		n = 1
	}
	return model.TableFromBars(req.Symbol, req.Kind, mockBars(m.Price, n, step(req))), nil
}

func step(req model.Request) time.Duration {
	switch req.Kind {
	case model.KindIntraday:
		return 5 * time.Minute
	case model.KindWeekly, model.KindWeeklyAdjusted:
		return 7 * 24 * time.Hour
	case model.KindMonthly:
		return 30 * 24 * time.Hour
	}
	return 24 * time.Hour
}

// mockBars builds count bars spaced by step and ending 2024-06-28. Closes
// drift up 0.2% per bar with a 20-bar swing of ±3%, so every indicator has
// movement to work with.
func mockBars(base float64, count int, step time.Duration) []model.OHLCV {
	if base <= 0 {
		base = 100
	}
	last := time.Date(2024, 6, 28, 0, 0, 0, 0, time.UTC)
	bars := make([]model.OHLCV, 0, count)
	open := base
	for i := 0; i < count; i++ {
		x := float64(i)
		c := base * (1 + 0.002*x + 0.03*math.Sin(2*math.Pi*x/20))
		bars = append(bars, model.OHLCV{
			Time:   last.Add(-time.Duration(count-1-i) * step),
			Open:   open,
			High:   math.Max(open, c) * 1.004,
			Low:    math.Min(open, c) * 0.996,
			Close:  c,
			Volume: float64(500_000 + 100_000*(i%7)),
		})
		open = c
	}
	return bars
}
