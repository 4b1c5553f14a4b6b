package repository

import (
	"context"

	"github.com/RaikyD/wc-tracking-service/internal/domain"
)

// RecordStore is an append-only table of order rows. ReadAll returns rows in
// store order, keyed by the header row.
type RecordStore interface {
	Append(ctx context.Context, row []string) error
	ReadAll(ctx context.Context) ([]domain.Record, error)
}
