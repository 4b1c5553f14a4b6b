package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/RaikyD/wc-tracking-service/internal/domain"
	"github.com/RaikyD/wc-tracking-service/internal/logger"
)

// PostgresStore keeps each row as a text array; id order is store order.
type PostgresStore struct {
	pool   *pgxpool.Pool
	header []string
}

func NewPostgresStore(pool *pgxpool.Pool, cols domain.Columns) *PostgresStore {
	return &PostgresStore{pool: pool, header: cols.Headers()}
}

func (p *PostgresStore) Append(ctx context.Context, row []string) error {
	_, err := p.pool.Exec(ctx,
		`INSERT INTO tracking.records (cells) VALUES ($1)`,
		row,
	)
	if err != nil {
		logger.Warn("postgres append failed", "err", err)
		return fmt.Errorf("%w: %v", domain.ErrStoreAppend, err)
	}
	return nil
}

func (p *PostgresStore) ReadAll(ctx context.Context) ([]domain.Record, error) {
	rows, err := p.pool.Query(ctx, `SELECT cells FROM tracking.records ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreRead, err)
	}
	defer rows.Close()

	var out []domain.Record
	for rows.Next() {
		var cells []string
		if err := rows.Scan(&cells); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrStoreRead, err)
		}
		out = append(out, domain.NewRecord(p.header, cells))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreRead, err)
	}
	return out, nil
}
