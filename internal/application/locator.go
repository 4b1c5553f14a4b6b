package application

import (
	"strings"

	"github.com/RaikyD/wc-tracking-service/internal/domain"
)

// Locate returns the first record, in store order, with any value containing
// token. It is a full scan on every lookup, which is fine for a
// spreadsheet-sized store and nothing bigger.
func Locate(records []domain.Record, token string) (domain.Record, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, domain.ErrNotFound
	}
	for _, rec := range records {
		for _, v := range rec {
			if strings.Contains(v, token) {
				return rec, nil
			}
		}
	}
	return nil, domain.ErrNotFound
}
