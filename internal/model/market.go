package model

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// SeriesKind selects the API function and time granularity of a fetch.
type SeriesKind string

const (
	KindQuote          SeriesKind = "quote"
	KindDaily          SeriesKind = "daily"
	KindIntraday       SeriesKind = "intraday"
	KindWeekly         SeriesKind = "weekly"
	KindMonthly        SeriesKind = "monthly"
	KindWeeklyAdjusted SeriesKind = "weekly_adjusted"
)

// Kinds lists every supported series kind in a stable order.
var Kinds = []SeriesKind{KindQuote, KindDaily, KindIntraday, KindWeekly, KindMonthly, KindWeeklyAdjusted}

const (
	OutputCompact = "compact"
	OutputFull    = "full"

	DefaultInterval = "5min"
)

var validIntervals = map[string]bool{
	"1min": true, "5min": true, "15min": true, "30min": true, "60min": true,
}

// ParseSeriesKind maps user input onto a SeriesKind.
func ParseSeriesKind(s string) (SeriesKind, error) {
	k := SeriesKind(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_"))
	for _, known := range Kinds {
		if k == known {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown series kind %q", s)
}

// Function returns the API function name for the kind.
func (k SeriesKind) Function() string {
	switch k {
	case KindQuote:
		return "GLOBAL_QUOTE"
	case KindDaily:
		return "TIME_SERIES_DAILY"
	case KindIntraday:
		return "TIME_SERIES_INTRADAY"
	case KindWeekly:
		return "TIME_SERIES_WEEKLY"
	case KindMonthly:
		return "TIME_SERIES_MONTHLY"
	case KindWeeklyAdjusted:
		return "TIME_SERIES_WEEKLY_ADJUSTED"
	}
	return ""
}

// SupportsOutputSize reports whether the API accepts outputsize for the kind.
func (k SeriesKind) SupportsOutputSize() bool {
	return k == KindDaily || k == KindIntraday
}

// Request describes one fetch against the data API.
type Request struct {
	Kind       SeriesKind
	Symbol     string
	OutputSize string // compact or full; daily and intraday only
	Interval   string // intraday only
}

func (r Request) String() string {
	s := fmt.Sprintf("%s/%s", r.Kind, r.Symbol)
	if r.Kind == KindIntraday && r.Interval != "" {
		s += "@" + r.Interval
	}
	return s
}

// WithDefaults fills the size and interval defaults the API would otherwise pick.
func (r Request) WithDefaults() Request {
	r.Symbol = strings.TrimSpace(r.Symbol)
	if r.Kind.SupportsOutputSize() && r.OutputSize == "" {
		r.OutputSize = OutputCompact
	}
	if r.Kind == KindIntraday && r.Interval == "" {
		r.Interval = DefaultInterval
	}
	return r
}

// Validate checks the request before it goes over the wire.
func (r Request) Validate() error {
	if r.Symbol == "" {
		return fmt.Errorf("symbol is required")
	}
	if r.Kind.Function() == "" {
		return fmt.Errorf("unknown series kind %q", r.Kind)
	}
	if r.OutputSize != "" && r.OutputSize != OutputCompact && r.OutputSize != OutputFull {
		return fmt.Errorf("outputsize must be %q or %q, got %q", OutputCompact, OutputFull, r.OutputSize)
	}
	if r.Kind == KindIntraday && !validIntervals[r.Interval] {
		return fmt.Errorf("unsupported intraday interval %q", r.Interval)
	}
	return nil
}

// ResponseKey is the top-level JSON key that carries the payload for the request.
func (r Request) ResponseKey() string {
	switch r.Kind {
	case KindQuote:
		return "Global Quote"
	case KindDaily:
		return "Time Series (Daily)"
	case KindIntraday:
		return fmt.Sprintf("Time Series (%s)", r.Interval)
	case KindWeekly:
		return "Weekly Time Series"
	case KindMonthly:
		return "Monthly Time Series"
	case KindWeeklyAdjusted:
		return "Weekly Adjusted Time Series"
	}
	return ""
}

// Query builds the query string parameters for the request.
func (r Request) Query(apiKey string) url.Values {
	q := url.Values{}
	q.Set("function", r.Kind.Function())
	q.Set("symbol", r.Symbol)
	q.Set("apikey", apiKey)
	if r.Kind.SupportsOutputSize() && r.OutputSize != "" {
		q.Set("outputsize", r.OutputSize)
	}
	if r.Kind == KindIntraday && r.Interval != "" {
		q.Set("interval", r.Interval)
	}
	return q
}

// OHLCV represents a single candlestick bar.
type OHLCV struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// TableFromBars builds a price table from bars already in chronological order.
func TableFromBars(symbol string, kind SeriesKind, bars []OHLCV) *Table {
	index := make([]time.Time, len(bars))
	open := make([]float64, len(bars))
	high := make([]float64, len(bars))
	low := make([]float64, len(bars))
	cls := make([]float64, len(bars))
	vol := make([]float64, len(bars))
	for i, b := range bars {
		index[i] = b.Time
		open[i], high[i], low[i], cls[i], vol[i] = b.Open, b.High, b.Low, b.Close, b.Volume
	}
	t := NewTable(index)
	t.Symbol = symbol
	t.Kind = kind
	t.mustSet("open", open)
	t.mustSet("high", high)
	t.mustSet("low", low)
	t.mustSet("close", cls)
	t.mustSet("volume", vol)
	return t
}
