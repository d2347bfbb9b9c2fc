package inventory

import (
	"context"
	"errors"
	"time"
)

// ErrCacheMiss indica que la clave no existe en la caché.
var ErrCacheMiss = errors.New("cache miss")

// Cache almacén clave-valor para memoizar capas de inventario (Redis en producción, memoria en tests).
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}
