package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-redis/redis/v8"
)

const redisKeyPrefix = "workoutlog::"

type RedisStore struct {
	redisClient *redis.Client
}

func NewRedisStore(redisClient *redis.Client) *RedisStore {
	return &RedisStore{
		redisClient: redisClient,
	}
}

func (s *RedisStore) Read(ctx context.Context, key string) (string, error) {
	if err := validKey(key); err != nil {
		return "", err
	}

	value, err := s.redisClient.Get(ctx, redisKeyPrefix+key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("redis get [%s]: %w", key, err)
	}

	return value, nil
}

func (s *RedisStore) Write(ctx context.Context, key, value string) error {
	if err := validKey(key); err != nil {
		return err
	}

	if err := s.redisClient.Set(ctx, redisKeyPrefix+key, value, 0).Err(); err != nil {
		return fmt.Errorf("redis set [%s]: %w", key, err)
	}

	return nil
}
