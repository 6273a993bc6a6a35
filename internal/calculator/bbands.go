package calculator

import (
	"fmt"
	"math"
	"strconv"

	"MarketLens/internal/model"

	"github.com/markcheno/go-talib"
)

// BollingerColumns names the lower, middle, upper, bandwidth and percent
// columns BollingerBands appends, e.g. BBL_20_2.0.
func BollingerColumns(window int, numStdDev float64) (lower, middle, upper, bandwidth, percent string) {
	k := strconv.FormatFloat(numStdDev, 'f', -1, 64)
	if numStdDev == math.Trunc(numStdDev) {
		k = strconv.FormatFloat(numStdDev, 'f', 1, 64)
	}
	suffix := fmt.Sprintf("_%d_%s", window, k)
	return "BBL" + suffix, "BBM" + suffix, "BBU" + suffix, "BBB" + suffix, "BBP" + suffix
}

// BollingerBands appends bands numStdDev population standard deviations
// around the window-period SMA of close, plus bandwidth and %B.
func BollingerBands(t *model.Table, window int, numStdDev float64) (*model.Table, error) {
	if window <= 0 {
		return nil, fmt.Errorf("bollinger bands: %w (got %d)", ErrInvalidWindow, window)
	}
	if numStdDev <= 0 || math.IsNaN(numStdDev) {
		return nil, fmt.Errorf("bollinger bands: std dev multiplier must be positive, got %v", numStdDev)
	}
	closes, err := t.Column(CloseColumn)
	if err != nil {
		return nil, fmt.Errorf("bollinger bands: %w", err)
	}

	n := len(closes)
	lower, middle, upper := nanSeries(n), nanSeries(n), nanSeries(n)
	bandwidth, percent := nanSeries(n), nanSeries(n)

	if n >= window {
		u, m, l := talib.BBands(closes, window, numStdDev, numStdDev, talib.SMA)
		for i := window - 1; i < n; i++ {
			upper[i], middle[i], lower[i] = u[i], m[i], l[i]
			if m[i] != 0 {
				bandwidth[i] = (u[i] - l[i]) / m[i] * 100
			}
			if width := u[i] - l[i]; width != 0 {
				percent[i] = (closes[i] - l[i]) / width
			}
		}
	}

	lName, mName, uName, bName, pName := BollingerColumns(window, numStdDev)
	out := t.Clone()
	for _, c := range []struct {
		name   string
		values []float64
	}{
		{lName, lower},
		{mName, middle},
		{uName, upper},
		{bName, bandwidth},
		{pName, percent},
	} {
		if err := out.SetColumn(c.name, c.values); err != nil {
			return nil, err
		}
	}
	return out, nil
}
