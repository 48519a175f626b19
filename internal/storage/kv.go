// Package storage holds the durability backends the workout log is
// snapshotted to. Every backend is a plain key/value store: one key,
// one full snapshot, each write replaces the previous value.
package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound   = errors.New("key not found")
	ErrInvalidKey = errors.New("invalid key")
)

type KV interface {
	Read(ctx context.Context, key string) (string, error)
	Write(ctx context.Context, key, value string) error
}

const (
	BackendDisk     = "disk"
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

type Params struct {
	Backend           string
	DiskPath          string
	MemoryCacheSizeMB int
	RedisClient       *redis.Client
	DBPool            *pgxpool.Pool
}

// New builds the configured backend. Redis and postgres backends
// need their client / pool in params.
func New(ctx context.Context, params Params) (KV, error) {
	switch params.Backend {
	case BackendDisk:
		return NewDiskStore(params.DiskPath)
	case BackendMemory:
		return NewMemoryStore(params.MemoryCacheSizeMB), nil
	case BackendRedis:
		if params.RedisClient == nil {
			return nil, errors.New("redis backend without redis client")
		}
		return NewRedisStore(params.RedisClient), nil
	case BackendPostgres:
		if params.DBPool == nil {
			return nil, errors.New("postgres backend without db pool")
		}
		psqlStore := NewPsqlStore(params.DBPool)
		if err := psqlStore.EnsureSchema(ctx); err != nil {
			return nil, fmt.Errorf("ensure kv schema: %w", err)
		}
		return psqlStore, nil
	default:
		return nil, fmt.Errorf("unknown storage backend: %s", params.Backend)
	}
}

func validKey(key string) error {
	if key == "" {
		return fmt.Errorf("%w: empty", ErrInvalidKey)
	}
	return nil
}
