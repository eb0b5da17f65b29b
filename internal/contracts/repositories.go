package contracts

import (
	"context"
	"time"
)

// Repository interfaces are declared here only; implementations live in
// internal/store.

// FlowRepository manages participant open interest data.
type FlowRepository interface {
	// GetByDateRange returns all scored-institution flow points within the
	// range, ordered by date then institution then segment.
	GetByDateRange(ctx context.Context, from, to time.Time) ([]FlowPoint, error)

	// GetRecent returns flow points covering the most recent n distinct
	// trading dates.
	GetRecent(ctx context.Context, n int) ([]FlowPoint, error)

	// Save upserts a single flow point.
	Save(ctx context.Context, p FlowPoint) error

	// SaveBatch upserts multiple flow points.
	SaveBatch(ctx context.Context, points []FlowPoint) error
}

// IndexRepository manages daily index closes.
type IndexRepository interface {
	GetByDateRange(ctx context.Context, from, to time.Time) ([]IndexClose, error)
	GetRecent(ctx context.Context, n int) ([]IndexClose, error)
	Save(ctx context.Context, c IndexClose) error
	SaveBatch(ctx context.Context, closes []IndexClose) error
}

// StrengthRepository persists computed composition results.
type StrengthRepository interface {
	GetByDate(ctx context.Context, date time.Time) ([]CompositionResult, error)
	GetLatestDate(ctx context.Context) (time.Time, error)
	SaveBatch(ctx context.Context, results []CompositionResult) error
}
