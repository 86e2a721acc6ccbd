package preview

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
)

// RedisRepository stores tokens as JSON under "pdfpreview:<id>" with a
// storage-level TTL equal to TokenTTL, so expired entries never linger —
// no sweeper needed. Callers still check Token.Expired for the exact
// boundary; the Redis TTL is the backstop.
type RedisRepository struct {
	client *redis.Client
	prefix string
}

// NewRedisRepository creates a Redis-based token repository. Prefix may be empty.
func NewRedisRepository(client *redis.Client, prefix string) *RedisRepository {
	if prefix == "" {
		prefix = "pdfpreview:"
	}
	return &RedisRepository{client: client, prefix: prefix}
}

func (r *RedisRepository) key(id string) string {
	return r.prefix + id
}

func (r *RedisRepository) Create(ctx context.Context, t *Token) error {
	b, err := json.Marshal(t)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, r.key(t.ID), b, TokenTTL).Err()
}

func (r *RedisRepository) Get(ctx context.Context, id string) (*Token, error) {
	b, err := r.client.Get(ctx, r.key(id)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}
	var t Token
	if err := json.Unmarshal(b, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *RedisRepository) Delete(ctx context.Context, id string) error {
	return r.client.Del(ctx, r.key(id)).Err()
}
