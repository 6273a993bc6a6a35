package notifier

import (
	"fmt"
	"html"
	"math"
	"strings"

	"MarketLens/internal/calculator"
	"MarketLens/internal/model"
)

const (
	rsiOverbought = 70.0
	rsiOversold   = 30.0
)

// FormatIndicatorReport formats the latest indicator values into a Telegram message.
func FormatIndicatorReport(snap *model.IndicatorSnapshot, p calculator.Params) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("📊 <b>%s</b> %s | %s\n\n", html.EscapeString(snap.Symbol), snap.Kind, asOfLabel(snap)))

	b.WriteString(fmt.Sprintf("Close: %s\n", num(snap.Close)))
	if !math.IsNaN(snap.MA) && snap.MA != 0 {
		dev := (snap.Close - snap.MA) / snap.MA * 100
		b.WriteString(fmt.Sprintf("MA%d: %s (%+.1f%%)\n", p.MAWindow, num(snap.MA), dev))
	} else {
		b.WriteString(fmt.Sprintf("MA%d: n/a\n", p.MAWindow))
	}

	b.WriteString(fmt.Sprintf("\n📈 <b>MACD(%d,%d,%d)</b>\n", p.MACDFast, p.MACDSlow, p.MACDSignal))
	b.WriteString(fmt.Sprintf("  line %s | signal %s | hist %s\n", num(snap.MACD), num(snap.MACDSignal), num(snap.MACDHist)))
	if cross := macdBias(snap); cross != "" {
		b.WriteString("  " + cross + "\n")
	}

	b.WriteString(fmt.Sprintf("\nRSI%d: %s%s\n", p.RSIWindow, num(snap.RSI), rsiTag(snap.RSI)))

	b.WriteString(fmt.Sprintf("\n📉 <b>Bollinger(%d, %s)</b>\n", p.BBWindow, trimFloat(p.BBStdDev)))
	b.WriteString(fmt.Sprintf("  %s / %s / %s\n", num(snap.BBLower), num(snap.BBMiddle), num(snap.BBUpper)))
	if !math.IsNaN(snap.BBPercent) {
		b.WriteString(fmt.Sprintf("  position in band: %.0f%%\n", snap.BBPercent*100))
	}

	if !math.IsNaN(snap.High) && !math.IsNaN(snap.Low) {
		b.WriteString(fmt.Sprintf("\n%d-period range: %s ~ %s", p.RangeWindow, num(snap.Low), num(snap.High)))
		if !math.IsNaN(snap.Position) {
			b.WriteString(fmt.Sprintf(" (at %.0f%%)", snap.Position*100))
		}
		b.WriteString("\n")
	}

	return b.String()
}

// FormatQuote formats a one-row quote table.
func FormatQuote(t *model.Table) string {
	if t.Empty() {
		return "❌ no quote data"
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf("💵 <b>%s</b> | %s\n\n", html.EscapeString(t.Symbol), t.Index[0].Format("2006-01-02")))
	b.WriteString(fmt.Sprintf("Price: %s", num(t.Value(0, "price"))))
	if chg := t.Value(0, "change"); !math.IsNaN(chg) {
		b.WriteString(fmt.Sprintf(" (%+.2f", chg))
		if pct := t.Value(0, "change percent"); !math.IsNaN(pct) {
			b.WriteString(fmt.Sprintf(", %+.2f%%", pct))
		}
		b.WriteString(")")
	}
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("Open: %s | High: %s | Low: %s\n",
		num(t.Value(0, "open")), num(t.Value(0, "high")), num(t.Value(0, "low"))))
	b.WriteString(fmt.Sprintf("Prev close: %s\n", num(t.Value(0, "previous close"))))
	if vol := t.Value(0, "volume"); !math.IsNaN(vol) {
		b.WriteString(fmt.Sprintf("Volume: %.0f\n", vol))
	}
	return b.String()
}

func asOfLabel(snap *model.IndicatorSnapshot) string {
	if snap.Kind == model.KindIntraday {
		return snap.AsOf.Format("2006-01-02 15:04")
	}
	return snap.AsOf.Format("2006-01-02")
}

func rsiTag(rsi float64) string {
	switch {
	case math.IsNaN(rsi):
		return ""
	case rsi >= rsiOverbought:
		return " 🔥 overbought"
	case rsi <= rsiOversold:
		return " 🧊 oversold"
	}
	return ""
}

func macdBias(snap *model.IndicatorSnapshot) string {
	if math.IsNaN(snap.MACDHist) {
		return ""
	}
	if snap.MACDHist > 0 {
		return "line above signal"
	}
	if snap.MACDHist < 0 {
		return "line below signal"
	}
	return ""
}

func num(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "n/a"
	}
	return fmt.Sprintf("%.2f", v)
}

func trimFloat(v float64) string {
	return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.2f", v), "0"), ".")
}
