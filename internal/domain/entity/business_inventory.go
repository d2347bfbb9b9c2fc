package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockStatus estado de disponibilidad derivado del stock frente al umbral mínimo.
type StockStatus string

const (
	StockStatusInStock    StockStatus = "in-stock"
	StockStatusLowStock   StockStatus = "low-stock"
	StockStatusOutOfStock StockStatus = "out-of-stock"
)

// StockRecord registro crudo del repositorio de inventario para (negocio, producto).
// PriceOverride permite al negocio publicar un precio promocional sobre el precio de lista.
type StockRecord struct {
	BusinessID    string
	ProductID     string
	Stock         int
	PriceOverride *decimal.Decimal
	BatchNumber   string
	ExpiryDate    *time.Time
	UpdatedAt     time.Time
}

// BusinessInventory capa derivada de stock/precio de un negocio sobre el producto maestro.
// Nunca es la fuente de verdad de la elegibilidad.
type BusinessInventory struct {
	BusinessID    string
	ProductID     string
	Stock         int
	Price         decimal.Decimal
	OriginalPrice *decimal.Decimal
	Status        StockStatus
	BatchNumber   string
	ExpiryDate    *time.Time
}

// AggregateInventory resumen por producto cuando no se indica un negocio concreto:
// precio y rating promedio sobre los negocios activos del tipo solicitado.
type AggregateInventory struct {
	ProductID     string
	AveragePrice  decimal.Decimal
	AverageRating float64
	TotalStock    int
	Status        StockStatus
	BusinessCount int
}
