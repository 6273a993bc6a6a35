package collector

import (
	"context"

	"MarketLens/internal/model"
)

// Fetcher defines the interface for fetching one normalized series.
type Fetcher interface {
	Fetch(ctx context.Context, req model.Request) (*model.Table, error)
	Name() string
}
