package calculator

import (
	"errors"
	"fmt"
	"math"

	"MarketLens/internal/model"

	"github.com/markcheno/go-talib"
)

// CloseColumn is the input every indicator reads.
const CloseColumn = "close"

var ErrInvalidWindow = errors.New("window must be positive")

// MovingAverageColumn names the column MovingAverage appends.
func MovingAverageColumn(window int) string {
	return fmt.Sprintf("MA_%d", window)
}

// MovingAverage appends the simple moving average of close over window periods.
func MovingAverage(t *model.Table, window int) (*model.Table, error) {
	if window <= 0 {
		return nil, fmt.Errorf("moving average: %w (got %d)", ErrInvalidWindow, window)
	}
	closes, err := t.Column(CloseColumn)
	if err != nil {
		return nil, fmt.Errorf("moving average: %w", err)
	}

	ma := nanSeries(len(closes))
	if len(closes) >= window {
		ma = maskLeading(talib.Sma(closes, window), window-1)
	}

	out := t.Clone()
	if err := out.SetColumn(MovingAverageColumn(window), ma); err != nil {
		return nil, err
	}
	return out, nil
}

func nanSeries(n int) []float64 {
	s := make([]float64, n)
	for i := range s {
		s[i] = math.NaN()
	}
	return s
}

// maskLeading marks the first n values as missing; talib leaves them zero.
func maskLeading(values []float64, n int) []float64 {
	for i := 0; i < n && i < len(values); i++ {
		values[i] = math.NaN()
	}
	return values
}
