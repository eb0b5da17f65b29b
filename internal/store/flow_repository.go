// Package store implements the repository interfaces from
// internal/contracts on top of PostgreSQL.
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dkrao/fiipulse/internal/contracts"
)

// FlowRepository implements contracts.FlowRepository.
// Participant flow persistence happens here and nowhere else.
type FlowRepository struct {
	pool *pgxpool.Pool
}

// NewFlowRepository creates a new participant flow repository.
func NewFlowRepository(pool *pgxpool.Pool) *FlowRepository {
	return &FlowRepository{pool: pool}
}

// GetByDateRange retrieves flow points within the date range, ordered by
// date, institution and segment.
func (r *FlowRepository) GetByDateRange(ctx context.Context, from, to time.Time) ([]contracts.FlowPoint, error) {
	query := `
		SELECT trade_date, institution, segment, net_oi, oi_change
		FROM data.participant_flow
		WHERE trade_date BETWEEN $1 AND $2
		ORDER BY trade_date ASC, institution ASC, segment ASC
	`

	rows, err := r.pool.Query(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("query participant flow: %w", err)
	}
	defer rows.Close()

	return scanFlowPoints(rows)
}

// GetRecent retrieves flow points covering the most recent n trading dates.
func (r *FlowRepository) GetRecent(ctx context.Context, n int) ([]contracts.FlowPoint, error) {
	query := `
		SELECT trade_date, institution, segment, net_oi, oi_change
		FROM data.participant_flow
		WHERE trade_date IN (
			SELECT DISTINCT trade_date
			FROM data.participant_flow
			ORDER BY trade_date DESC
			LIMIT $1
		)
		ORDER BY trade_date ASC, institution ASC, segment ASC
	`

	rows, err := r.pool.Query(ctx, query, n)
	if err != nil {
		return nil, fmt.Errorf("query recent participant flow: %w", err)
	}
	defer rows.Close()

	return scanFlowPoints(rows)
}

// Save upserts a single flow point.
func (r *FlowRepository) Save(ctx context.Context, p contracts.FlowPoint) error {
	query := `
		INSERT INTO data.participant_flow (trade_date, institution, segment, net_oi, oi_change)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (trade_date, institution, segment) DO UPDATE SET
			net_oi = EXCLUDED.net_oi,
			oi_change = EXCLUDED.oi_change
	`

	_, err := r.pool.Exec(ctx, query, p.Date, p.Institution, p.Segment, p.NetOI, p.OIChange)
	return err
}

// SaveBatch upserts multiple flow points.
func (r *FlowRepository) SaveBatch(ctx context.Context, points []contracts.FlowPoint) error {
	if len(points) == 0 {
		return nil
	}

	for _, p := range points {
		if err := r.Save(ctx, p); err != nil {
			return fmt.Errorf("save flow point %s/%s/%s: %w",
				p.Date.Format("2006-01-02"), p.Institution, p.Segment, err)
		}
	}
	return nil
}

type pgxRows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanFlowPoints(rows pgxRows) ([]contracts.FlowPoint, error) {
	var points []contracts.FlowPoint
	for rows.Next() {
		var p contracts.FlowPoint
		if err := rows.Scan(&p.Date, &p.Institution, &p.Segment, &p.NetOI, &p.OIChange); err != nil {
			return nil, err
		}
		points = append(points, p)
	}
	return points, rows.Err()
}
