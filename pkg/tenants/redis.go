// pkg/tenants/redis.go
package tenants

import (
	"context"

	"github.com/redis/go-redis/v9"
)

const selectionKeyPrefix = "nexus:selected:"

// redisStore persists selections in Redis without expiry; a selection
// only changes through Save or Clear.
type redisStore struct {
	cli *redis.Client
}

func NewRedisStore(cli *redis.Client) SelectionStore {
	return &redisStore{cli: cli}
}

func (s *redisStore) Load(ctx context.Context, userID string) (string, error) {
	v, err := s.cli.Get(ctx, selectionKeyPrefix+userID).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return v, nil
}

func (s *redisStore) Save(ctx context.Context, userID, name string) error {
	return s.cli.Set(ctx, selectionKeyPrefix+userID, name, 0).Err()
}

func (s *redisStore) Clear(ctx context.Context, userID string) error {
	return s.cli.Del(ctx, selectionKeyPrefix+userID).Err()
}
