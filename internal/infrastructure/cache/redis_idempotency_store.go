package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/stock-ledger/internal/application/ports"
)

const defaultKeyPrefix = "ledger:idempotency:"

// RedisIdempotencyStore implementa IdempotencyStore sobre Redis, para varias instancias
// de la API detrás de un balanceador.
type RedisIdempotencyStore struct {
	client    *redis.Client
	keyPrefix string
}

// RedisConfig conexión a Redis.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// NewRedisIdempotencyStore conecta y verifica con PING.
func NewRedisIdempotencyStore(ctx context.Context, cfg RedisConfig) (*RedisIdempotencyStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("conectar a Redis: %w", err)
	}
	return NewRedisIdempotencyStoreWithClient(client, ""), nil
}

// NewRedisIdempotencyStoreWithClient usa un cliente existente.
func NewRedisIdempotencyStoreWithClient(client *redis.Client, keyPrefix string) *RedisIdempotencyStore {
	if keyPrefix == "" {
		keyPrefix = defaultKeyPrefix
	}
	return &RedisIdempotencyStore{client: client, keyPrefix: keyPrefix}
}

// MarkProcessed SET NX con TTL en una sola operación atómica.
func (s *RedisIdempotencyStore) MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := s.client.SetNX(ctx, s.keyPrefix+key, "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("marcar clave de idempotencia: %w", err)
	}
	return ok, nil
}

// Release borra la clave.
func (s *RedisIdempotencyStore) Release(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.keyPrefix+key).Err(); err != nil {
		return fmt.Errorf("liberar clave de idempotencia: %w", err)
	}
	return nil
}

// Close cierra el cliente.
func (s *RedisIdempotencyStore) Close() error {
	return s.client.Close()
}

var _ ports.IdempotencyStore = (*RedisIdempotencyStore)(nil)
