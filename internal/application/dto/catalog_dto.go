package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// InventoryResponse capa de inventario de un negocio concreto.
type InventoryResponse struct {
	BusinessID    string           `json:"business_id"`
	Stock         int              `json:"stock"`
	Price         decimal.Decimal  `json:"price"`
	OriginalPrice *decimal.Decimal `json:"original_price,omitempty"`
	Status        string           `json:"status"`
	BatchNumber   string           `json:"batch_number,omitempty"`
	ExpiryDate    *time.Time       `json:"expiry_date,omitempty"`
}

// AggregateResponse resumen por producto cuando no se indica negocio.
type AggregateResponse struct {
	AveragePrice  decimal.Decimal `json:"average_price"`
	AverageRating float64         `json:"average_rating"`
	TotalStock    int             `json:"total_stock"`
	Status        string          `json:"status"`
	BusinessCount int             `json:"business_count"`
}

// CatalogItemResponse producto del catálogo con su capa de inventario.
type CatalogItemResponse struct {
	ID                   string             `json:"id"`
	Name                 string             `json:"name"`
	LocalizedNames       map[string]string  `json:"localized_names,omitempty"`
	Description          string             `json:"description"`
	Category             string             `json:"category"`
	Manufacturer         string             `json:"manufacturer"`
	ActiveIngredient     string             `json:"active_ingredient,omitempty"`
	Kind                 string             `json:"kind"`
	PrescriptionRequired bool               `json:"prescription_required"`
	Tags                 []string           `json:"tags"`
	Keywords             []string           `json:"keywords"`
	CreatedAt            time.Time          `json:"created_at"`
	Price                decimal.Decimal    `json:"price"`
	Stock                int                `json:"stock"`
	Status               string             `json:"status"`
	Rating               float64            `json:"rating"`
	Inventory            *InventoryResponse `json:"inventory,omitempty"`
	Aggregate            *AggregateResponse `json:"aggregate,omitempty"`
}

// CatalogQueryResponse resultado de QueryCatalog.
type CatalogQueryResponse struct {
	Items        []CatalogItemResponse `json:"items"`
	TotalCount   int                   `json:"total_count"`
	HasMore      bool                  `json:"has_more"`
	AccessLevel  string                `json:"access_level"`
	Restrictions []string              `json:"restrictions"`
	Page         PageResponse          `json:"page"`
}

// ProductAccessResponse resultado de GetProduct. Product es nil si el acceso se denegó.
type ProductAccessResponse struct {
	Product  *CatalogItemResponse `json:"product"`
	Allowed  bool                 `json:"allowed"`
	Reason   string               `json:"reason,omitempty"`
	NotFound bool                 `json:"-"`
}

// BusinessResponse negocio del directorio (localizador de tiendas).
type BusinessResponse struct {
	ID            string           `json:"id"`
	Name          string           `json:"name"`
	Kind          string           `json:"kind"`
	CityID        string           `json:"city_id"`
	GovernorateID string           `json:"governorate_id"`
	IsActive      bool             `json:"is_active"`
	Rating        float64          `json:"rating"`
	ReviewCount   int              `json:"review_count"`
	Delivery      DeliveryResponse `json:"delivery"`
}

// DeliveryResponse condiciones de entrega.
type DeliveryResponse struct {
	Available        bool            `json:"available"`
	Fee              decimal.Decimal `json:"fee"`
	MinimumOrder     decimal.Decimal `json:"minimum_order"`
	EstimatedMinutes int             `json:"estimated_minutes"`
}

// BusinessListResponse lista de negocios.
type BusinessListResponse struct {
	Items []BusinessResponse `json:"items"`
	Total int                `json:"total"`
}
