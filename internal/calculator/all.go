package calculator

import (
	"fmt"
	"log"
	"math"

	"MarketLens/internal/model"
)

// Params configures every indicator ApplyAll computes.
type Params struct {
	MAWindow   int     `yaml:"ma_window"`
	MACDFast   int     `yaml:"macd_fast"`
	MACDSlow   int     `yaml:"macd_slow"`
	MACDSignal int     `yaml:"macd_signal"`
	RSIWindow  int     `yaml:"rsi_window"`
	BBWindow   int     `yaml:"bb_window"`
	BBStdDev   float64 `yaml:"bb_std_dev"`
	// RangeWindow is the look-back for the high/low in a snapshot.
	RangeWindow int `yaml:"range_window"`
}

// DefaultParams returns MA(50), MACD(12,26,9), RSI(14) and BB(20, 2.0).
func DefaultParams() Params {
	return Params{
		MAWindow:    50,
		MACDFast:    12,
		MACDSlow:    26,
		MACDSignal:  9,
		RSIWindow:   14,
		BBWindow:    20,
		BBStdDev:    2.0,
		RangeWindow: 52,
	}
}

// ApplyAll appends moving average, MACD, RSI and Bollinger Bands, in that order.
func ApplyAll(t *model.Table, p Params) (*model.Table, error) {
	out, err := MovingAverage(t, p.MAWindow)
	if err != nil {
		return nil, err
	}
	if out, err = MACD(out, p.MACDFast, p.MACDSlow, p.MACDSignal); err != nil {
		return nil, err
	}
	if out, err = RSI(out, p.RSIWindow); err != nil {
		return nil, err
	}
	if out, err = BollingerBands(out, p.BBWindow, p.BBStdDev); err != nil {
		return nil, err
	}
	return out, nil
}

// All applies every indicator with DefaultParams.
func All(t *model.Table) (*model.Table, error) {
	return ApplyAll(t, DefaultParams())
}

// ColumnNames returns the columns ApplyAll adds for p, in order.
func ColumnNames(p Params) []string {
	line, hist, sig := MACDColumns(p.MACDFast, p.MACDSlow, p.MACDSignal)
	bl, bm, bu, bb, bp := BollingerColumns(p.BBWindow, p.BBStdDev)
	return []string{
		MovingAverageColumn(p.MAWindow),
		line, hist, sig,
		RSIColumn(p.RSIWindow),
		bl, bm, bu, bb, bp,
	}
}

// Snapshot reads the latest indicator values from a table produced by ApplyAll.
func Snapshot(t *model.Table, p Params) (*model.IndicatorSnapshot, error) {
	if t.Empty() {
		return nil, fmt.Errorf("snapshot: no rows")
	}
	last := t.Len() - 1
	line, hist, sig := MACDColumns(p.MACDFast, p.MACDSlow, p.MACDSignal)
	bl, bm, bu, _, bp := BollingerColumns(p.BBWindow, p.BBStdDev)

	snap := &model.IndicatorSnapshot{
		Symbol:     t.Symbol,
		Kind:       t.Kind,
		AsOf:       t.Index[last],
		Close:      t.Value(last, CloseColumn),
		MA:         t.Value(last, MovingAverageColumn(p.MAWindow)),
		MACD:       t.Value(last, line),
		MACDSignal: t.Value(last, sig),
		MACDHist:   t.Value(last, hist),
		RSI:        t.Value(last, RSIColumn(p.RSIWindow)),
		BBLower:    t.Value(last, bl),
		BBMiddle:   t.Value(last, bm),
		BBUpper:    t.Value(last, bu),
		BBPercent:  t.Value(last, bp),
		High:       math.NaN(),
		Low:        math.NaN(),
		Position:   math.NaN(),
	}

	window := p.RangeWindow
	if window <= 0 {
		window = DefaultParams().RangeWindow
	}
	if h, l, err := Range(t, window); err != nil {
		log.Printf("[WARN] %s range calculation failed: %v", t.Symbol, err)
	} else {
		snap.High, snap.Low = h, l
		if pos, err := Position(snap.Close, h, l); err == nil {
			snap.Position = pos
		}
	}
	return snap, nil
}
