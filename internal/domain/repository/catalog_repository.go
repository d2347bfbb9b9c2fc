package repository

import (
	"context"

	"github.com/jhoicas/Catalogo-api/internal/domain/entity"
)

// CatalogSource define el puerto de lectura del catálogo maestro y del directorio de negocios (DIP).
// Se usa para construir snapshots inmutables; no se consulta en cada petición.
type CatalogSource interface {
	LoadProducts(ctx context.Context) ([]*entity.MasterProduct, error)
	LoadBusinesses(ctx context.Context) ([]*entity.Business, error)
}
