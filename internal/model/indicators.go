package model

import "time"

// IndicatorSnapshot holds the most recent value of every computed indicator.
// Fields are NaN when the series was too short to produce a value.
type IndicatorSnapshot struct {
	Symbol     string
	Kind       SeriesKind
	AsOf       time.Time
	Close      float64
	MA         float64
	MACD       float64
	MACDSignal float64
	MACDHist   float64
	RSI        float64
	BBLower    float64
	BBMiddle   float64
	BBUpper    float64
	BBPercent  float64
	High       float64 // over the trailing range window
	Low        float64
	Position   float64 // 0.0 ~ 1.0 within [Low, High]
}
