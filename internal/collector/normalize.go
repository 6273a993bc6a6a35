package collector

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"MarketLens/internal/model"

	"github.com/shopspring/decimal"
)

// labelPrefix matches the ordinal the API puts in front of every field name,
// as in "1. open" or "08. previous close".
var labelPrefix = regexp.MustCompile(`^\s*(\d+)\.\s*`)

var indexLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// parseLabel splits "5. adjusted close" into (5, "adjusted close").
// Labels without an ordinal sort last.
func parseLabel(raw string) (int, string) {
	m := labelPrefix.FindStringSubmatch(raw)
	if m == nil {
		return math.MaxInt32, strings.TrimSpace(raw)
	}
	ord, err := strconv.Atoi(m[1])
	if err != nil {
		ord = math.MaxInt32
	}
	return ord, strings.TrimSpace(raw[len(m[0]):])
}

func parseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range indexLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

// parseNumber coerces an API string cell, dropping a trailing percent sign.
func parseNumber(s string) (float64, error) {
	s = strings.TrimSuffix(strings.TrimSpace(s), "%")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("not numeric: %q", s)
	}
	f, _ := d.Float64()
	return f, nil
}

func normalizeMeta(raw map[string]string) map[string]string {
	meta := make(map[string]string, len(raw))
	for k, v := range raw {
		_, name := parseLabel(k)
		meta[strings.ToLower(name)] = v
	}
	return meta
}

// orderedColumns returns the column names sorted by their API ordinal.
func orderedColumns(ordinals map[string]int) []string {
	cols := make([]string, 0, len(ordinals))
	for name := range ordinals {
		cols = append(cols, name)
	}
	sort.Slice(cols, func(i, j int) bool {
		if ordinals[cols[i]] != ordinals[cols[j]] {
			return ordinals[cols[i]] < ordinals[cols[j]]
		}
		return cols[i] < cols[j]
	})
	return cols
}

func noteOrdinal(ordinals map[string]int, name string, ord int) {
	if prev, ok := ordinals[name]; !ok || ord < prev {
		ordinals[name] = ord
	}
}

type seriesRow struct {
	ts     time.Time
	fields map[string]string
}

// normalizeSeries turns a timestamp-keyed object of labelled string cells into
// a table sorted by time with one numeric column per label.
func normalizeSeries(req model.Request, series map[string]map[string]string, meta map[string]string) (*model.Table, error) {
	if len(series) == 0 {
		return nil, fmt.Errorf("%s: %w", req, ErrNoData)
	}

	rows := make([]seriesRow, 0, len(series))
	seen := make(map[int64]string, len(series))
	ordinals := map[string]int{}
	for key, fields := range series {
		ts, err := parseTimestamp(key)
		if err != nil {
			return nil, err
		}
		if prev, dup := seen[ts.UnixNano()]; dup {
			return nil, fmt.Errorf("duplicate timestamp %q and %q", prev, key)
		}
		seen[ts.UnixNano()] = key

		norm := make(map[string]string, len(fields))
		for raw, v := range fields {
			ord, name := parseLabel(raw)
			noteOrdinal(ordinals, name, ord)
			norm[name] = v
		}
		rows = append(rows, seriesRow{ts: ts, fields: norm})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].ts.Before(rows[j].ts) })

	index := make([]time.Time, len(rows))
	for i, r := range rows {
		index[i] = r.ts
	}
	t := model.NewTable(index)
	for _, col := range orderedColumns(ordinals) {
		values := make([]float64, len(rows))
		for i, r := range rows {
			cell, ok := r.fields[col]
			if !ok {
				values[i] = math.NaN()
				continue
			}
			v, err := parseNumber(cell)
			if err != nil {
				return nil, fmt.Errorf("%s column %q: %w", r.ts.Format("2006-01-02 15:04:05"), col, err)
			}
			values[i] = v
		}
		if err := t.SetColumn(col, values); err != nil {
			return nil, err
		}
	}

	t.Kind = req.Kind
	t.Symbol = req.Symbol
	if s := meta["symbol"]; s != "" {
		t.Symbol = s
	}
	for k, v := range meta {
		t.Meta[k] = v
	}
	return t, nil
}

// normalizeQuote builds a one-row table from a quote object. The symbol and
// trading day become table metadata and index; every other field is numeric.
func normalizeQuote(req model.Request, fields map[string]string) (*model.Table, error) {
	if len(fields) == 0 {
		return nil, fmt.Errorf("%s: %w", req, ErrNoData)
	}

	var symbol, day string
	cells := map[string]string{}
	ordinals := map[string]int{}
	for raw, v := range fields {
		ord, name := parseLabel(raw)
		switch name {
		case "symbol":
			symbol = v
		case "latest trading day":
			day = v
		default:
			noteOrdinal(ordinals, name, ord)
			cells[name] = v
		}
	}
	if day == "" {
		return nil, fmt.Errorf("quote for %s has no latest trading day", req.Symbol)
	}
	ts, err := parseTimestamp(day)
	if err != nil {
		return nil, err
	}

	t := model.NewTable([]time.Time{ts})
	for _, col := range orderedColumns(ordinals) {
		v, err := parseNumber(cells[col])
		if err != nil {
			return nil, fmt.Errorf("quote column %q: %w", col, err)
		}
		if err := t.SetColumn(col, []float64{v}); err != nil {
			return nil, err
		}
	}
	t.Kind = model.KindQuote
	t.Symbol = req.Symbol
	if symbol != "" {
		t.Symbol = symbol
	}
	t.Meta["latest trading day"] = day
	return t, nil
}
