package repository

import (
	"context"

	"github.com/jhoicas/Catalogo-api/internal/domain/entity"
)

// InventoryRepository define el puerto para consultar el stock por (negocio, producto) (DIP).
// GetStock devuelve (nil, nil) si el negocio no tiene registro para el producto.
type InventoryRepository interface {
	GetStock(ctx context.Context, businessID, productID string) (*entity.StockRecord, error)
	ListByProduct(ctx context.Context, productID string) ([]*entity.StockRecord, error)
	Upsert(ctx context.Context, rec *entity.StockRecord) error
}
