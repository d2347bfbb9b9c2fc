package inventory

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Catalogo-api/internal/domain/entity"
)

// Tabla fija de precio base por tipo de producto.
var basePriceByKind = map[entity.ProductKind]decimal.Decimal{
	entity.ProductKindMedicine:      decimal.NewFromInt(50),
	entity.ProductKindMedicalSupply: decimal.NewFromInt(30),
	entity.ProductKindHygieneSupply: decimal.NewFromInt(15),
	entity.ProductKindMedicalDevice: decimal.NewFromInt(120),
}

// Multiplicadores para categorías de mayor riesgo. Claves en minúscula.
var categoryMultiplier = map[string]decimal.Decimal{
	"antibiotics":    decimal.RequireFromString("1.4"),
	"diabetes":       decimal.RequireFromString("1.5"),
	"cardiovascular": decimal.RequireFromString("1.3"),
	"oncology":       decimal.RequireFromString("2.0"),
}

var (
	pharmacyMarkup = decimal.RequireFromString("1.15")
	vendorMarkup   = decimal.RequireFromString("1.05")
)

// BasePrice precio base = base(kind) * multiplicador(categoría). Categorías sin entrada usan 1.
func BasePrice(kind entity.ProductKind, category string) decimal.Decimal {
	base, ok := basePriceByKind[kind]
	if !ok {
		return decimal.Zero
	}
	if m, ok := categoryMultiplier[strings.ToLower(category)]; ok {
		return base.Mul(m)
	}
	return base
}

// Markup margen por tipo de negocio; la farmacia absorbe el costo de dispensación regulada.
func Markup(kind entity.BusinessKind) decimal.Decimal {
	switch kind {
	case entity.BusinessKindPharmacy:
		return pharmacyMarkup
	case entity.BusinessKindVendor:
		return vendorMarkup
	default:
		return decimal.NewFromInt(1)
	}
}

// ListPrice precio de lista = round(basePrice * markup).
func ListPrice(p *entity.MasterProduct, kind entity.BusinessKind) decimal.Decimal {
	return BasePrice(p.Kind, p.Category).Mul(Markup(kind)).Round(0)
}

// AveragePrice promedio simple redondeado a 2 decimales. Lista vacía devuelve cero.
func AveragePrice(prices []decimal.Decimal) decimal.Decimal {
	if len(prices) == 0 {
		return decimal.Zero
	}
	return decimal.Sum(prices[0], prices[1:]...).Div(decimal.NewFromInt(int64(len(prices)))).Round(2)
}

// StatusFor deriva el estado de stock: 0 → out-of-stock, ≤ umbral → low-stock, resto in-stock.
func StatusFor(stock, minThreshold int) entity.StockStatus {
	switch {
	case stock <= 0:
		return entity.StockStatusOutOfStock
	case stock <= minThreshold:
		return entity.StockStatusLowStock
	default:
		return entity.StockStatusInStock
	}
}
