package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"negeri-quiz/internal/domain"
)

// Slot stores progress blobs as plain Redis strings under quiz:progress:{key}.
// A zero ttl keeps them forever.
type Slot struct {
	client *redis.Client
	ttl    time.Duration
}

func NewSlot(client *redis.Client, ttl time.Duration) *Slot {
	return &Slot{client: client, ttl: ttl}
}

func (s *Slot) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := s.client.Get(ctx, s.redisKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrSlotEmpty
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (s *Slot) Put(ctx context.Context, key string, data []byte) error {
	return s.client.Set(ctx, s.redisKey(key), data, s.ttl).Err()
}

func (s *Slot) Delete(ctx context.Context, key string) error {
	return s.client.Del(ctx, s.redisKey(key)).Err()
}

func (s *Slot) redisKey(key string) string {
	return "quiz:progress:" + key
}
