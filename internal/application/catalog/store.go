// Package catalog mantiene el snapshot inmutable del catálogo maestro y del directorio
// de negocios. Las lecturas no toman locks: el snapshot vigente se publica con un
// puntero atómico y una recarga lo reemplaza completo.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/jhoicas/Catalogo-api/internal/domain/entity"
	"github.com/jhoicas/Catalogo-api/internal/domain/repository"
	"github.com/jhoicas/Catalogo-api/pkg/logger"
)

// ErrNotLoaded se devuelve si se consulta el store antes de la primera carga.
var ErrNotLoaded = errors.New("catálogo no cargado")

// Store contenedor del snapshot vigente.
type Store struct {
	source  repository.CatalogSource
	log     *logger.Logger
	current atomic.Pointer[Snapshot]
	version atomic.Uint64
}

// NewStore construye el store. Debe llamarse Reload antes de atender consultas.
func NewStore(source repository.CatalogSource, log *logger.Logger) *Store {
	return &Store{source: source, log: log}
}

// NewStoreFromSnapshot construye un store con un snapshot ya armado (tests, seeds en memoria).
func NewStoreFromSnapshot(s *Snapshot, log *logger.Logger) *Store {
	st := &Store{log: log}
	st.version.Store(s.Version())
	st.current.Store(s)
	return st
}

// Snapshot devuelve el snapshot vigente. Las consultas deben tomarlo una sola vez
// para no mezclar dos versiones del catálogo en la misma respuesta.
func (s *Store) Snapshot() (*Snapshot, error) {
	snap := s.current.Load()
	if snap == nil {
		return nil, ErrNotLoaded
	}
	return snap, nil
}

// Reload lee la fuente, construye un snapshot nuevo y lo publica atómicamente.
// Si la carga falla, el snapshot anterior sigue vigente.
func (s *Store) Reload(ctx context.Context) error {
	if s.source == nil {
		return fmt.Errorf("catalog: store sin fuente configurada")
	}
	products, err := s.source.LoadProducts(ctx)
	if err != nil {
		return fmt.Errorf("catalog: cargar productos: %w", err)
	}
	businesses, err := s.source.LoadBusinesses(ctx)
	if err != nil {
		return fmt.Errorf("catalog: cargar negocios: %w", err)
	}
	snap, err := NewSnapshot(s.version.Add(1), products, businesses)
	if err != nil {
		return fmt.Errorf("catalog: construir snapshot: %w", err)
	}
	s.current.Store(snap)
	s.log.Info().
		Uint64("version", snap.Version()).
		Int("products", len(products)).
		Int("businesses", len(businesses)).
		Msg("catálogo cargado")
	return nil
}

// RunRefresher recarga el catálogo cada interval hasta que ctx se cancele.
// Los errores de recarga se registran y se conserva el snapshot anterior.
func (s *Store) RunRefresher(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.Reload(ctx); err != nil && !errors.Is(err, context.Canceled) {
				s.log.Error().Err(err).Msg("recarga periódica del catálogo")
			}
		}
	}
}

// ProductByID consulta sobre el snapshot vigente.
func (s *Store) ProductByID(id string) (*entity.MasterProduct, error) {
	snap, err := s.Snapshot()
	if err != nil {
		return nil, err
	}
	return snap.ProductByID(id)
}

// BusinessByID consulta sobre el snapshot vigente.
func (s *Store) BusinessByID(id string) (*entity.Business, error) {
	snap, err := s.Snapshot()
	if err != nil {
		return nil, err
	}
	return snap.BusinessByID(id)
}

// BusinessesByLocation consulta sobre el snapshot vigente.
func (s *Store) BusinessesByLocation(cityID, governorateID string) ([]*entity.Business, error) {
	snap, err := s.Snapshot()
	if err != nil {
		return nil, err
	}
	return snap.BusinessesByLocation(cityID, governorateID), nil
}
