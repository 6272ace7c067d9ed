package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps the record under "<prefix>:<key>" in Redis, without TTL.
// Token lifetime is enforced by the session manager, not by key expiry.
type RedisStore struct {
	redis  redis.UniversalClient
	prefix string
	keys   Keys
	owned  bool
}

// NewRedisStore wraps an existing client. Close does not close rdb.
func NewRedisStore(rdb redis.UniversalClient, prefix string, keys Keys) *RedisStore {
	return &RedisStore{
		redis:  rdb,
		prefix: strings.TrimSuffix(prefix, ":"),
		keys:   keys.withDefaults(),
	}
}

func (s *RedisStore) key(name string) string {
	if s.prefix == "" {
		return name
	}
	return s.prefix + ":" + name
}

// Save writes both entries in one MULTI/EXEC so readers never see half a record.
func (s *RedisStore) Save(ctx context.Context, profile any, token string) error {
	encoded, err := encodeProfile(profile)
	if err != nil {
		return err
	}

	_, err = s.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.key(s.keys.User), encoded, 0)
		pipe.Set(ctx, s.key(s.keys.Token), token, 0)
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

func (s *RedisStore) Load(ctx context.Context) (*Record, error) {
	values, err := s.redis.MGet(ctx, s.key(s.keys.User), s.key(s.keys.Token)).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if len(values) != 2 {
		return nil, ErrNotFound
	}

	profile, hasProfile := values[0].(string)
	token, hasToken := values[1].(string)
	return decodeRecord(profile, token, hasProfile, hasToken)
}

// Clear deletes both keys. Missing keys are not an error.
func (s *RedisStore) Clear(ctx context.Context) error {
	if err := s.redis.Del(ctx, s.key(s.keys.User), s.key(s.keys.Token)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

func (s *RedisStore) Close() error {
	if !s.owned {
		return nil
	}
	return s.redis.Close()
}
