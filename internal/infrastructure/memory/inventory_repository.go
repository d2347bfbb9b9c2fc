package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/jhoicas/Catalogo-api/internal/domain"
	"github.com/jhoicas/Catalogo-api/internal/domain/entity"
	"github.com/jhoicas/Catalogo-api/internal/domain/repository"
)

var _ repository.InventoryRepository = (*InventoryRepo)(nil)

type stockKey struct {
	businessID string
	productID  string
}

// InventoryRepo inventario en memoria indexado por (negocio, producto).
type InventoryRepo struct {
	mu      sync.RWMutex
	records map[stockKey]entity.StockRecord
}

// NewInventoryRepository construye el repo con registros iniciales opcionales.
func NewInventoryRepository(seed ...*entity.StockRecord) *InventoryRepo {
	r := &InventoryRepo{records: make(map[stockKey]entity.StockRecord, len(seed))}
	for _, rec := range seed {
		r.records[stockKey{rec.BusinessID, rec.ProductID}] = *rec
	}
	return r
}

func (r *InventoryRepo) GetStock(_ context.Context, businessID, productID string) (*entity.StockRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.records[stockKey{businessID, productID}]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

func (r *InventoryRepo) ListByProduct(_ context.Context, productID string) ([]*entity.StockRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var list []*entity.StockRecord
	for k, rec := range r.records {
		if k.productID == productID {
			list = append(list, &rec)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].BusinessID < list[j].BusinessID })
	return list, nil
}

func (r *InventoryRepo) Upsert(_ context.Context, rec *entity.StockRecord) error {
	if rec.Stock < 0 {
		return fmt.Errorf("%w: stock negativo", domain.ErrInvalidInput)
	}
	rec.UpdatedAt = time.Now()
	r.mu.Lock()
	r.records[stockKey{rec.BusinessID, rec.ProductID}] = *rec
	r.mu.Unlock()
	return nil
}
