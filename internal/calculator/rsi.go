package calculator

import (
	"fmt"

	"MarketLens/internal/model"

	"github.com/markcheno/go-talib"
)

// RSIColumn names the column RSI appends.
func RSIColumn(window int) string {
	return fmt.Sprintf("RSI_%d", window)
}

// RSI appends the Wilder-smoothed relative strength index of close.
// The first window rows have no value.
func RSI(t *model.Table, window int) (*model.Table, error) {
	if window < 2 {
		return nil, fmt.Errorf("rsi: %w (need at least 2, got %d)", ErrInvalidWindow, window)
	}
	closes, err := t.Column(CloseColumn)
	if err != nil {
		return nil, fmt.Errorf("rsi: %w", err)
	}

	rsi := nanSeries(len(closes))
	if len(closes) > window {
		rsi = maskLeading(talib.Rsi(closes, window), window)
	}

	out := t.Clone()
	if err := out.SetColumn(RSIColumn(window), rsi); err != nil {
		return nil, err
	}
	return out, nil
}
