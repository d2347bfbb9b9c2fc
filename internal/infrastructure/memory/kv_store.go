// Package memory contiene adaptadores en memoria: caché KV, inventario y catálogo desde archivo JSON.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/jhoicas/Catalogo-api/internal/application/inventory"
)

var _ inventory.Cache = (*KVStore)(nil)

// DefaultSweepInterval frecuencia mínima del barrido de claves vencidas.
const DefaultSweepInterval = time.Minute

// KVStore caché clave-valor con TTL. Las claves vencidas se descartan al leerlas y,
// como las claves de versiones de catálogo anteriores ya no se leen, también en un
// barrido que Set dispara como mucho una vez por intervalo.
type KVStore struct {
	mu         sync.Mutex
	data       map[string]kvItem
	now        func() time.Time
	sweepEvery time.Duration
	nextSweep  time.Time
}

// KVOption configura el KVStore.
type KVOption func(*KVStore)

// WithKVClock reemplaza el reloj (tests).
func WithKVClock(now func() time.Time) KVOption {
	return func(s *KVStore) { s.now = now }
}

// WithSweepInterval fija el intervalo entre barridos; d <= 0 barre en cada Set.
func WithSweepInterval(d time.Duration) KVOption {
	return func(s *KVStore) { s.sweepEvery = d }
}

type kvItem struct {
	value   string
	expires time.Time // zero = sin TTL
}

// NewKVStore construye la caché vacía.
func NewKVStore(opts ...KVOption) *KVStore {
	s := &KVStore{data: make(map[string]kvItem), now: time.Now, sweepEvery: DefaultSweepInterval}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *KVStore) Get(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.data[key]
	if !ok {
		return "", inventory.ErrCacheMiss
	}
	if item.expired(s.now()) {
		delete(s.data, key)
		return "", inventory.ErrCacheMiss
	}
	return item.value, nil
}

func (s *KVStore) Set(_ context.Context, key, value string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	if !now.Before(s.nextSweep) {
		s.sweepLocked(now)
		s.nextSweep = now.Add(s.sweepEvery)
	}
	var exp time.Time
	if ttl > 0 {
		exp = now.Add(ttl)
	}
	s.data[key] = kvItem{value: value, expires: exp}
	return nil
}

func (s *KVStore) sweepLocked(now time.Time) {
	for k, item := range s.data {
		if item.expired(now) {
			delete(s.data, k)
		}
	}
}

func (i kvItem) expired(now time.Time) bool {
	return !i.expires.IsZero() && now.After(i.expires)
}

func (s *KVStore) Delete(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range keys {
		delete(s.data, k)
	}
	return nil
}

// Len cantidad de claves almacenadas (incluye vencidas aún no leídas).
func (s *KVStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.data)
}
