package ports

import (
	"context"
	"time"
)

// IdempotencyStore registra claves de petición ya vistas durante un TTL.
type IdempotencyStore interface {
	// MarkProcessed devuelve true si la clave es nueva; false si ya estaba registrada y vigente.
	MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error)
	// Release olvida la clave para que una petición fallida pueda reintentarse.
	Release(ctx context.Context, key string) error
	Close() error
}
