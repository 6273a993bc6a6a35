package recorder

import "MarketLens/internal/model"

// NoopRecorder is a no-op implementation used when SQLite is not configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordSeries(_ *SeriesSnapshot) (string, error) { return "", nil }
func (n *NoopRecorder) RecordIndicators(_ string, _ *model.IndicatorSnapshot) error {
	return nil
}
func (n *NoopRecorder) LatestRun(_ string, _ model.SeriesKind) (*RunSummary, error) {
	return nil, ErrNoRun
}
func (n *NoopRecorder) Close() error { return nil }
