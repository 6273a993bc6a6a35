package calculator

import (
	"fmt"

	"MarketLens/internal/model"

	"github.com/markcheno/go-talib"
)

// MACDColumns names the line, histogram and signal columns MACD appends.
// fast and slow are swapped first when slow < fast.
func MACDColumns(fast, slow, signal int) (line, hist, sig string) {
	if slow < fast {
		fast, slow = slow, fast
	}
	suffix := fmt.Sprintf("_%d_%d_%d", fast, slow, signal)
	return "MACD" + suffix, "MACDh" + suffix, "MACDs" + suffix
}

// MACD appends the moving average convergence/divergence of close:
// line = EMA(fast) - EMA(slow), signal = EMA(line, signal), hist = line - signal.
func MACD(t *model.Table, fast, slow, signal int) (*model.Table, error) {
	if fast <= 0 || slow <= 0 || signal <= 0 {
		return nil, fmt.Errorf("macd: %w (fast=%d slow=%d signal=%d)", ErrInvalidWindow, fast, slow, signal)
	}
	if slow < fast {
		fast, slow = slow, fast
	}
	closes, err := t.Column(CloseColumn)
	if err != nil {
		return nil, fmt.Errorf("macd: %w", err)
	}

	n := len(closes)
	line := nanSeries(n)
	sig := nanSeries(n)
	hist := nanSeries(n)

	lineStart := slow - 1
	if n > lineStart {
		fastEMA := talib.Ema(closes, fast)
		slowEMA := talib.Ema(closes, slow)
		for i := lineStart; i < n; i++ {
			line[i] = fastEMA[i] - slowEMA[i]
		}

		// The signal EMA only sees the valid part of the line.
		valid := line[lineStart:]
		if len(valid) >= signal {
			sigEMA := talib.Ema(valid, signal)
			for i := signal - 1; i < len(valid); i++ {
				sig[lineStart+i] = sigEMA[i]
				hist[lineStart+i] = valid[i] - sigEMA[i]
			}
		}
	}

	lineName, histName, sigName := MACDColumns(fast, slow, signal)
	out := t.Clone()
	for _, c := range []struct {
		name   string
		values []float64
	}{
		{lineName, line},
		{histName, hist},
		{sigName, sig},
	} {
		if err := out.SetColumn(c.name, c.values); err != nil {
			return nil, err
		}
	}
	return out, nil
}
