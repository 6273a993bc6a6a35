package calculator

import (
	"errors"
	"fmt"
	"math"

	"MarketLens/internal/model"

	"gonum.org/v1/gonum/floats"
)

// Range scans the most recent n rows and returns the highest high and lowest low.
// NaN cells are ignored.
func Range(t *model.Table, n int) (high, low float64, err error) {
	if n <= 0 {
		return 0, 0, fmt.Errorf("range: %w (got %d)", ErrInvalidWindow, n)
	}
	if t.Empty() {
		return 0, 0, errors.New("range: no rows")
	}
	highs, err := t.Column("high")
	if err != nil {
		return 0, 0, fmt.Errorf("range: %w", err)
	}
	lows, err := t.Column("low")
	if err != nil {
		return 0, 0, fmt.Errorf("range: %w", err)
	}

	start := len(highs) - n
	if start < 0 {
		start = 0
	}
	hs := dropNaN(highs[start:])
	ls := dropNaN(lows[start:])
	if len(hs) == 0 || len(ls) == 0 {
		return 0, 0, errors.New("range: no valid prices in window")
	}
	return floats.Max(hs), floats.Min(ls), nil
}

// Position places current within [low, high] as a fraction: 0 at the low,
// 1 at the high, clamped outside. A flat range sits at 0.5.
func Position(current, high, low float64) (float64, error) {
	switch {
	case high < low:
		return 0, fmt.Errorf("range position: high %v below low %v", high, low)
	case high == low:
		return 0.5, nil
	}
	return math.Min(1, math.Max(0, (current-low)/(high-low))), nil
}

func dropNaN(values []float64) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}
