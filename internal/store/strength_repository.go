package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dkrao/fiipulse/internal/contracts"
)

// StrengthRepository implements contracts.StrengthRepository. Labels are
// stored as their integer ordinals; callers render strings for display.
type StrengthRepository struct {
	pool *pgxpool.Pool
}

// NewStrengthRepository creates a new strength label repository.
func NewStrengthRepository(pool *pgxpool.Pool) *StrengthRepository {
	return &StrengthRepository{pool: pool}
}

// GetByDate retrieves every composition result stored for one trading date.
func (r *StrengthRepository) GetByDate(ctx context.Context, date time.Time) ([]contracts.CompositionResult, error) {
	query := `
		SELECT trade_date, institution, segment, net_oi, oi_change,
		       oi_label, change_label, final_label, net_tag
		FROM data.strength_label
		WHERE trade_date = $1
		ORDER BY institution ASC, segment ASC
	`

	rows, err := r.pool.Query(ctx, query, date)
	if err != nil {
		return nil, fmt.Errorf("query strength labels: %w", err)
	}
	defer rows.Close()

	var results []contracts.CompositionResult
	for rows.Next() {
		var res contracts.CompositionResult
		if err := rows.Scan(
			&res.Date, &res.Institution, &res.Segment, &res.NetOI, &res.Change,
			&res.OILabel, &res.ChangeLabel, &res.Final, &res.Tag,
		); err != nil {
			return nil, err
		}
		results = append(results, res)
	}
	return results, rows.Err()
}

// GetLatestDate returns the most recent trading date with stored labels,
// or the zero time when the table is empty.
func (r *StrengthRepository) GetLatestDate(ctx context.Context) (time.Time, error) {
	query := `SELECT MAX(trade_date) FROM data.strength_label`

	var latest *time.Time
	err := r.pool.QueryRow(ctx, query).Scan(&latest)
	if err != nil {
		if err == pgx.ErrNoRows {
			return time.Time{}, nil
		}
		return time.Time{}, fmt.Errorf("query latest strength date: %w", err)
	}
	if latest == nil {
		return time.Time{}, nil
	}
	return *latest, nil
}

// SaveBatch upserts composition results.
func (r *StrengthRepository) SaveBatch(ctx context.Context, results []contracts.CompositionResult) error {
	if len(results) == 0 {
		return nil
	}

	query := `
		INSERT INTO data.strength_label (trade_date, institution, segment, net_oi, oi_change,
		                                 oi_label, change_label, final_label, net_tag)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (trade_date, institution, segment) DO UPDATE SET
			net_oi = EXCLUDED.net_oi,
			oi_change = EXCLUDED.oi_change,
			oi_label = EXCLUDED.oi_label,
			change_label = EXCLUDED.change_label,
			final_label = EXCLUDED.final_label,
			net_tag = EXCLUDED.net_tag
	`

	for _, res := range results {
		_, err := r.pool.Exec(ctx, query,
			res.Date, res.Institution, res.Segment, res.NetOI, res.Change,
			res.OILabel, res.ChangeLabel, res.Final, res.Tag,
		)
		if err != nil {
			return fmt.Errorf("save strength label %s/%s/%s: %w",
				res.Date.Format("2006-01-02"), res.Institution, res.Segment, err)
		}
	}
	return nil
}
