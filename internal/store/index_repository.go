package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dkrao/fiipulse/internal/contracts"
)

// IndexRepository implements contracts.IndexRepository.
type IndexRepository struct {
	pool *pgxpool.Pool
}

// NewIndexRepository creates a new index close repository.
func NewIndexRepository(pool *pgxpool.Pool) *IndexRepository {
	return &IndexRepository{pool: pool}
}

// GetByDateRange retrieves index closes within the range, oldest first.
func (r *IndexRepository) GetByDateRange(ctx context.Context, from, to time.Time) ([]contracts.IndexClose, error) {
	query := `
		SELECT trade_date, close_price
		FROM data.index_close
		WHERE trade_date BETWEEN $1 AND $2
		ORDER BY trade_date ASC
	`

	rows, err := r.pool.Query(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("query index closes: %w", err)
	}
	defer rows.Close()

	return scanIndexCloses(rows)
}

// GetRecent retrieves the most recent n index closes, oldest first.
func (r *IndexRepository) GetRecent(ctx context.Context, n int) ([]contracts.IndexClose, error) {
	query := `
		SELECT trade_date, close_price
		FROM (
			SELECT trade_date, close_price
			FROM data.index_close
			ORDER BY trade_date DESC
			LIMIT $1
		) recent
		ORDER BY trade_date ASC
	`

	rows, err := r.pool.Query(ctx, query, n)
	if err != nil {
		return nil, fmt.Errorf("query recent index closes: %w", err)
	}
	defer rows.Close()

	return scanIndexCloses(rows)
}

// Save upserts a single index close.
func (r *IndexRepository) Save(ctx context.Context, c contracts.IndexClose) error {
	query := `
		INSERT INTO data.index_close (trade_date, close_price)
		VALUES ($1, $2)
		ON CONFLICT (trade_date) DO UPDATE SET
			close_price = EXCLUDED.close_price
	`

	_, err := r.pool.Exec(ctx, query, c.Date, c.Close)
	return err
}

// SaveBatch upserts multiple index closes.
func (r *IndexRepository) SaveBatch(ctx context.Context, closes []contracts.IndexClose) error {
	if len(closes) == 0 {
		return nil
	}

	for _, c := range closes {
		if err := r.Save(ctx, c); err != nil {
			return fmt.Errorf("save index close %s: %w", c.Date.Format("2006-01-02"), err)
		}
	}
	return nil
}

func scanIndexCloses(rows pgxRows) ([]contracts.IndexClose, error) {
	var closes []contracts.IndexClose
	for rows.Next() {
		var c contracts.IndexClose
		if err := rows.Scan(&c.Date, &c.Close); err != nil {
			return nil, err
		}
		closes = append(closes, c)
	}
	return closes, rows.Err()
}
