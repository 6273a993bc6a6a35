package recorder

import (
	"errors"
	"time"

	"MarketLens/internal/model"
)

// ErrNoRun is returned by LatestRun when nothing was recorded for the series.
var ErrNoRun = errors.New("no recorded run")

// SeriesSnapshot is one loaded table together with the request that produced it.
type SeriesSnapshot struct {
	Table     *model.Table
	Request   model.Request
	FetchedAt time.Time
}

// RunSummary describes a recorded run without its data points.
type RunSummary struct {
	ID         string
	Symbol     string
	Kind       model.SeriesKind
	Interval   string
	OutputSize string
	FetchedAt  time.Time
	Rows       int
}

// Recorder persists loaded series for later analysis.
type Recorder interface {
	// RecordSeries stores every non-NaN cell of the table and returns the run id.
	RecordSeries(snap *SeriesSnapshot) (string, error)
	// RecordIndicators stores the latest indicator values under an existing run.
	RecordIndicators(runID string, snap *model.IndicatorSnapshot) error
	LatestRun(symbol string, kind model.SeriesKind) (*RunSummary, error)
	Close() error
}
