package collector

import (
	"context"
	"errors"
	"fmt"

	"MarketLens/internal/calculator"
	"MarketLens/internal/model"
)

// ErrNoData means the API answered with an empty payload or the loader
// produced the empty result.
var ErrNoData = errors.New("no data returned")

// Collector orchestrates data loading and indicator computation.
type Collector struct {
	Loader *Loader
	Params calculator.Params
}

// NewCollector creates a new Collector.
func NewCollector(loader *Loader, params calculator.Params) *Collector {
	return &Collector{Loader: loader, Params: params}
}

// Collect loads req and appends every indicator. Quotes are single rows and
// are returned as loaded.
func (c *Collector) Collect(ctx context.Context, req model.Request) (*model.Table, error) {
	t := c.Loader.Load(ctx, req)
	if t.Empty() {
		return nil, fmt.Errorf("%s: %w", req.WithDefaults(), ErrNoData)
	}
	if req.Kind == model.KindQuote {
		return t, nil
	}

	out, err := calculator.ApplyAll(t, c.Params)
	c.Loader.Metrics.ObserveIndicators(err)
	if err != nil {
		return nil, fmt.Errorf("indicators for %s: %w", req.WithDefaults(), err)
	}
	return out, nil
}

// CollectSnapshot runs Collect and reads the latest indicator values.
func (c *Collector) CollectSnapshot(ctx context.Context, req model.Request) (*model.Table, *model.IndicatorSnapshot, error) {
	if req.Kind == model.KindQuote {
		return nil, nil, fmt.Errorf("snapshot needs a price series, got %s", req.Kind)
	}
	t, err := c.Collect(ctx, req)
	if err != nil {
		return nil, nil, err
	}
	snap, err := calculator.Snapshot(t, c.Params)
	if err != nil {
		return nil, nil, err
	}
	return t, snap, nil
}
