package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Catalogo-api/internal/application/dto"
	"github.com/jhoicas/Catalogo-api/internal/domain"
	"github.com/jhoicas/Catalogo-api/internal/domain/access"
	"github.com/jhoicas/Catalogo-api/internal/domain/entity"
)

// Caso 1: un vendedor no puede inventariar un medicamento; no se escribe nada.
func TestUpdateStock_VendedorMedicamentoDenegado(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	res, err := e.inventory.UpdateStock(ctx, "v-1", "med-1", dto.UpdateStockRequest{Stock: 10})
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Nil(t, res.Inventory)
	require.NotNil(t, res.Violation)
	assert.Equal(t, string(entity.ViolationUnauthorizedMedicine), res.Violation.Classification)

	recs, err := e.repo.ListByProduct(ctx, "med-1")
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "ph-1", recs[0].BusinessID)
	assert.Equal(t, 1, e.monitor.AuditLen())
}

// Caso 2: la farmacia actualiza su stock y la capa memoizada se invalida.
func TestUpdateStock_FarmaciaActualizaEInvalida(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	search := access.Filters{Search: "gasas"}

	before, err := e.catalog.QueryCatalog(ctx, entity.BusinessKindPharmacy, "ph-1", search)
	require.NoError(t, err)
	require.Len(t, before.Items, 1)
	assert.Equal(t, 5, before.Items[0].Stock)

	promo := decimal.NewFromInt(20)
	res, err := e.inventory.UpdateStock(ctx, "ph-1", "sup-1", dto.UpdateStockRequest{Stock: 40, PriceOverride: &promo, BatchNumber: "L-77"})
	require.NoError(t, err)
	require.True(t, res.Allowed)
	require.NotNil(t, res.Inventory)
	assert.Equal(t, 40, res.Inventory.Stock)
	assert.True(t, res.Inventory.Price.Equal(promo))
	require.NotNil(t, res.Inventory.OriginalPrice)
	assert.True(t, res.Inventory.OriginalPrice.Equal(decimal.NewFromInt(35)))
	assert.Equal(t, string(entity.StockStatusInStock), res.Inventory.Status)
	assert.Equal(t, "L-77", res.Inventory.BatchNumber)

	after, err := e.catalog.QueryCatalog(ctx, entity.BusinessKindPharmacy, "ph-1", search)
	require.NoError(t, err)
	require.Len(t, after.Items, 1)
	assert.Equal(t, 40, after.Items[0].Stock)
	assert.True(t, after.Items[0].Price.Equal(promo))
}

func TestUpdateStock_EntradaInvalida(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, err := e.inventory.UpdateStock(ctx, "ph-1", "sup-1", dto.UpdateStockRequest{Stock: -1})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))

	zero := decimal.Zero
	_, err = e.inventory.UpdateStock(ctx, "ph-1", "sup-1", dto.UpdateStockRequest{Stock: 1, PriceOverride: &zero})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))

	assert.Equal(t, 0, e.monitor.AuditLen(), "la entrada inválida se rechaza antes del monitor")
}

func TestUpdateStock_ProductoInexistente(t *testing.T) {
	e := newEnv(t)
	res, err := e.inventory.UpdateStock(context.Background(), "ph-1", "nope", dto.UpdateStockRequest{Stock: 3})
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.True(t, res.NotFound)
	assert.Nil(t, res.Violation)
}

// Caso 3: tras actualizar el stock, la vista agregada (sin negocio) refleja el cambio.
func TestUpdateStock_InvalidaElAgregado(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	search := access.Filters{Search: "gasas"}

	before, err := e.catalog.QueryCatalog(ctx, entity.BusinessKindPharmacy, "", search)
	require.NoError(t, err)
	require.Len(t, before.Items, 1)
	assert.Equal(t, 35, before.Items[0].Stock)
	detail, err := e.catalog.GetProduct(ctx, "sup-1", entity.BusinessKindPharmacy, "")
	require.NoError(t, err)
	require.True(t, detail.Allowed)
	assert.Equal(t, 35, detail.Product.Stock)

	res, err := e.inventory.UpdateStock(ctx, "ph-1", "sup-1", dto.UpdateStockRequest{Stock: 400})
	require.NoError(t, err)
	require.True(t, res.Allowed)

	after, err := e.catalog.QueryCatalog(ctx, entity.BusinessKindPharmacy, "", search)
	require.NoError(t, err)
	require.Len(t, after.Items, 1)
	assert.Equal(t, 430, after.Items[0].Stock)
	require.NotNil(t, after.Items[0].Aggregate)
	assert.Equal(t, 430, after.Items[0].Aggregate.TotalStock)

	detail, err = e.catalog.GetProduct(ctx, "sup-1", entity.BusinessKindPharmacy, "")
	require.NoError(t, err)
	assert.Equal(t, 430, detail.Product.Stock)

	filtered, err := e.catalog.QueryCatalog(ctx, entity.BusinessKindPharmacy, "", access.Filters{Search: "gasas", InStockOnly: true})
	require.NoError(t, err)
	assert.Len(t, filtered.Items, 1)
}
