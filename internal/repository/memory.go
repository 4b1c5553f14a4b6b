package repository

import (
	"context"
	"sync"

	"github.com/RaikyD/wc-tracking-service/internal/domain"
)

// MemoryStore keeps rows in process. Used for local runs and tests.
type MemoryStore struct {
	mu     sync.RWMutex
	header []string
	rows   [][]string
}

func NewMemoryStore(cols domain.Columns) *MemoryStore {
	return &MemoryStore{header: cols.Headers()}
}

func (s *MemoryStore) Append(_ context.Context, row []string) error {
	cp := append([]string(nil), row...)
	s.mu.Lock()
	s.rows = append(s.rows, cp)
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) ReadAll(_ context.Context) ([]domain.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Record, 0, len(s.rows))
	for _, r := range s.rows {
		out = append(out, domain.NewRecord(s.header, r))
	}
	return out, nil
}

// Rows returns a copy of the raw rows.
func (s *MemoryStore) Rows() [][]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([][]string, len(s.rows))
	for i, r := range s.rows {
		out[i] = append([]string(nil), r...)
	}
	return out
}
