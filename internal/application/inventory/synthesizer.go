// Package inventory sintetiza la capa de stock/precio por negocio sobre el catálogo maestro.
//
// El precio es regla de negocio: round(base(kind, categoría) * markup(tipo de negocio)),
// con precio promocional opcional del negocio. El stock lo aporta el repositorio de
// inventario; un negocio sin registro tiene stock 0.
package inventory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Catalogo-api/internal/domain/entity"
	dominv "github.com/jhoicas/Catalogo-api/internal/domain/inventory"
	"github.com/jhoicas/Catalogo-api/internal/domain/repository"
	"github.com/jhoicas/Catalogo-api/pkg/logger"
)

// Synthesizer calcula capas de inventario por (negocio, producto) y agregados por producto.
// No guarda estado propio; la memoización vive en Cache con clave por versión de catálogo.
// Los agregados llevan además la generación del producto, que Invalidate renueva.
type Synthesizer struct {
	repo  repository.InventoryRepository
	cache Cache
	ttl   time.Duration
	log   *logger.Logger
}

// NewSynthesizer construye el sintetizador. cache puede ser nil (sin memoización).
func NewSynthesizer(repo repository.InventoryRepository, cache Cache, ttl time.Duration, log *logger.Logger) *Synthesizer {
	return &Synthesizer{repo: repo, cache: cache, ttl: ttl, log: log}
}

// Scope selección de negocios para el agregado: tipo y, opcionalmente, ubicación.
type Scope struct {
	Kind          entity.BusinessKind
	CityID        string
	GovernorateID string
}

func (s Scope) key() string {
	return fmt.Sprintf("%s:%s:%s", s.Kind, s.CityID, s.GovernorateID)
}

// Overlay devuelve la capa de inventario del negocio b para el producto p.
// version es la versión del snapshot de catálogo usada en la consulta.
func (s *Synthesizer) Overlay(ctx context.Context, version uint64, p *entity.MasterProduct, b *entity.Business) (*entity.BusinessInventory, error) {
	key := overlayKey(version, b.ID, p.ID)
	var cached entity.BusinessInventory
	if s.fromCache(ctx, key, &cached) {
		return &cached, nil
	}

	rec, err := s.repo.GetStock(ctx, b.ID, p.ID)
	if err != nil {
		return nil, fmt.Errorf("inventory: stock de %s/%s: %w", b.ID, p.ID, err)
	}
	inv := compose(p, b, rec)
	s.toCache(ctx, key, inv)
	return inv, nil
}

// Aggregate resume precio y rating promedio sobre los negocios activos del scope.
// businesses es el conjunto candidato (ya acotado por ubicación si aplica).
// Sin negocios válidos devuelve el precio de lista del tipo y stock 0.
func (s *Synthesizer) Aggregate(ctx context.Context, version uint64, p *entity.MasterProduct, scope Scope, businesses []*entity.Business) (*entity.AggregateInventory, error) {
	key := aggregateKey(version, s.generation(ctx, p.ID), scope, p.ID)
	var cached entity.AggregateInventory
	if s.fromCache(ctx, key, &cached) {
		return &cached, nil
	}

	records, err := s.repo.ListByProduct(ctx, p.ID)
	if err != nil {
		return nil, fmt.Errorf("inventory: stock del producto %s: %w", p.ID, err)
	}
	byBusiness := make(map[string]*entity.StockRecord, len(records))
	for _, r := range records {
		byBusiness[r.BusinessID] = r
	}

	agg := &entity.AggregateInventory{ProductID: p.ID}
	var (
		prices    []decimal.Decimal
		ratingSum float64
	)
	for _, b := range businesses {
		if !b.IsActive || b.Kind != scope.Kind {
			continue
		}
		inv := compose(p, b, byBusiness[b.ID])
		prices = append(prices, inv.Price)
		ratingSum += b.Rating
		agg.TotalStock += inv.Stock
		agg.BusinessCount++
	}
	if agg.BusinessCount == 0 {
		agg.AveragePrice = dominv.ListPrice(p, scope.Kind)
	} else {
		agg.AveragePrice = dominv.AveragePrice(prices)
		agg.AverageRating = ratingSum / float64(agg.BusinessCount)
	}
	agg.Status = dominv.StatusFor(agg.TotalStock, p.MinStockThreshold)
	s.toCache(ctx, key, agg)
	return agg, nil
}

// Invalidate descarta la capa memoizada de (negocio, producto) para la versión indicada
// y renueva la generación del producto, con lo que ningún agregado previo vuelve a leerse.
func (s *Synthesizer) Invalidate(ctx context.Context, version uint64, businessID, productID string) error {
	if s.cache == nil {
		return nil
	}
	if err := s.cache.Delete(ctx, overlayKey(version, businessID, productID)); err != nil {
		return err
	}
	gen := strconv.FormatInt(time.Now().UnixNano(), 36)
	return s.cache.Set(ctx, generationKey(productID), gen, 0)
}

// generation valor actual de la generación del producto; "0" si nunca se invalidó.
func (s *Synthesizer) generation(ctx context.Context, productID string) string {
	if s.cache == nil {
		return "0"
	}
	gen, err := s.cache.Get(ctx, generationKey(productID))
	if err != nil {
		if !errors.Is(err, ErrCacheMiss) {
			s.log.Warn().Err(err).Str("product_id", productID).Msg("lectura de generación de inventario")
		}
		return "0"
	}
	return gen
}

// compose combina producto, negocio y registro de stock en la capa final.
func compose(p *entity.MasterProduct, b *entity.Business, rec *entity.StockRecord) *entity.BusinessInventory {
	list := dominv.ListPrice(p, b.Kind)
	inv := &entity.BusinessInventory{
		BusinessID: b.ID,
		ProductID:  p.ID,
		Price:      list,
	}
	if rec != nil {
		if rec.Stock > 0 {
			inv.Stock = rec.Stock
		}
		inv.BatchNumber = rec.BatchNumber
		inv.ExpiryDate = rec.ExpiryDate
		if rec.PriceOverride != nil && !rec.PriceOverride.IsNegative() {
			inv.Price = *rec.PriceOverride
			if rec.PriceOverride.LessThan(list) {
				original := list
				inv.OriginalPrice = &original
			}
		}
	}
	inv.Status = dominv.StatusFor(inv.Stock, p.MinStockThreshold)
	return inv
}

func overlayKey(version uint64, businessID, productID string) string {
	return fmt.Sprintf("inv:%d:%s:%s", version, businessID, productID)
}

func aggregateKey(version uint64, gen string, scope Scope, productID string) string {
	return fmt.Sprintf("agg:%d:%s:%s:%s", version, gen, scope.key(), productID)
}

func generationKey(productID string) string {
	return "gen:" + productID
}

func (s *Synthesizer) fromCache(ctx context.Context, key string, dst any) bool {
	if s.cache == nil {
		return false
	}
	raw, err := s.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrCacheMiss) {
			s.log.Warn().Err(err).Str("key", key).Msg("lectura de caché de inventario")
		}
		return false
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("valor de caché de inventario inválido")
		return false
	}
	return true
}

func (s *Synthesizer) toCache(ctx context.Context, key string, v any) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, string(raw), s.ttl); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("escritura de caché de inventario")
	}
}
