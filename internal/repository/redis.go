package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/RaikyD/wc-tracking-service/internal/domain"
)

// RedisStore keeps rows as JSON arrays in a single list.
type RedisStore struct {
	client *redis.Client
	key    string
	header []string
}

func NewRedisStore(ctx context.Context, addr, key string, cols domain.Columns) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &RedisStore{client: client, key: key, header: cols.Headers()}, nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) Append(ctx context.Context, row []string) error {
	data, err := json.Marshal(row)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStoreAppend, err)
	}
	if err := s.client.RPush(ctx, s.key, data).Err(); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStoreAppend, err)
	}
	return nil
}

func (s *RedisStore) ReadAll(ctx context.Context) ([]domain.Record, error) {
	items, err := s.client.LRange(ctx, s.key, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreRead, err)
	}
	out := make([]domain.Record, 0, len(items))
	for _, it := range items {
		var cells []string
		if err := json.Unmarshal([]byte(it), &cells); err != nil {
			return nil, fmt.Errorf("%w: row %q: %v", domain.ErrStoreRead, it, err)
		}
		out = append(out, domain.NewRecord(s.header, cells))
	}
	return out, nil
}
