package inventory_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/Catalogo-api/internal/domain/entity"
	"github.com/jhoicas/Catalogo-api/internal/domain/inventory"
)

// Umbral 10: 0 → out-of-stock, 5 → low-stock, 50 → in-stock.
func TestStatusFor_UmbralMinimo(t *testing.T) {
	assert.Equal(t, entity.StockStatusOutOfStock, inventory.StatusFor(0, 10))
	assert.Equal(t, entity.StockStatusLowStock, inventory.StatusFor(5, 10))
	assert.Equal(t, entity.StockStatusLowStock, inventory.StatusFor(10, 10), "el umbral es inclusivo")
	assert.Equal(t, entity.StockStatusInStock, inventory.StatusFor(50, 10))
	assert.Equal(t, entity.StockStatusOutOfStock, inventory.StatusFor(-3, 10))
}

func TestListPrice(t *testing.T) {
	tests := []struct {
		name     string
		kind     entity.ProductKind
		category string
		business entity.BusinessKind
		want     string
	}{
		// 50 * 1.15 = 57.5 → 58
		{"medicamento en farmacia", entity.ProductKindMedicine, "analgesics", entity.BusinessKindPharmacy, "58"},
		// 50 * 1.4 * 1.15 = 80.5 → 81
		{"antibiótico en farmacia", entity.ProductKindMedicine, "Antibiotics", entity.BusinessKindPharmacy, "81"},
		// 30 * 1.05 = 31.5 → 32
		{"insumo en vendedor", entity.ProductKindMedicalSupply, "first-aid", entity.BusinessKindVendor, "32"},
		// 15 * 1.05 = 15.75 → 16
		{"higiene en vendedor", entity.ProductKindHygieneSupply, "", entity.BusinessKindVendor, "16"},
		// 120 * 1.5 * 1.15 = 207
		{"dispositivo diabetes en farmacia", entity.ProductKindMedicalDevice, "diabetes", entity.BusinessKindPharmacy, "207"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &entity.MasterProduct{Kind: tt.kind, Category: tt.category}
			got := inventory.ListPrice(p, tt.business)
			assert.True(t, decimal.RequireFromString(tt.want).Equal(got), "esperado %s, obtenido %s", tt.want, got)
		})
	}
}

func TestBasePrice_TipoDesconocido(t *testing.T) {
	assert.True(t, inventory.BasePrice(entity.ProductKind("otro"), "").IsZero())
}

func TestAveragePrice(t *testing.T) {
	assert.True(t, inventory.AveragePrice(nil).IsZero())
	got := inventory.AveragePrice([]decimal.Decimal{decimal.NewFromInt(10), decimal.NewFromInt(11), decimal.NewFromInt(11)})
	assert.Equal(t, "10.67", got.StringFixed(2))
}
