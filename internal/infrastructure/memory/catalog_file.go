package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Catalogo-api/internal/domain/entity"
	"github.com/jhoicas/Catalogo-api/internal/domain/repository"
)

// CatalogFile formato JSON del catálogo: productos, negocios y stock inicial opcional.
type CatalogFile struct {
	Products   []ProductRecord  `json:"products"`
	Businesses []BusinessRecord `json:"businesses"`
	Inventory  []StockRecord    `json:"inventory,omitempty"`
}

// ProductRecord producto tal como aparece en el archivo.
type ProductRecord struct {
	ID                   string            `json:"id"`
	Name                 string            `json:"name"`
	LocalizedNames       map[string]string `json:"localized_names,omitempty"`
	Description          string            `json:"description"`
	Category             string            `json:"category"`
	Manufacturer         string            `json:"manufacturer"`
	ActiveIngredient     string            `json:"active_ingredient,omitempty"`
	Kind                 string            `json:"kind"`
	PrescriptionRequired bool              `json:"prescription_required"`
	PharmacyEligible     bool              `json:"pharmacy_eligible"`
	VendorEligible       bool              `json:"vendor_eligible"`
	Tags                 []string          `json:"tags,omitempty"`
	Keywords             []string          `json:"keywords,omitempty"`
	MinStockThreshold    int               `json:"min_stock_threshold"`
	CreatedAt            time.Time         `json:"created_at"`
}

// BusinessRecord negocio tal como aparece en el archivo.
type BusinessRecord struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Kind          string  `json:"kind"`
	CityID        string  `json:"city_id"`
	GovernorateID string  `json:"governorate_id"`
	IsActive      bool    `json:"is_active"`
	Rating        float64 `json:"rating"`
	ReviewCount   int     `json:"review_count"`
	Delivery      struct {
		Available        bool            `json:"available"`
		Fee              decimal.Decimal `json:"fee"`
		MinimumOrder     decimal.Decimal `json:"minimum_order"`
		EstimatedMinutes int             `json:"estimated_minutes"`
	} `json:"delivery"`
}

// StockRecord stock inicial de un negocio para un producto.
type StockRecord struct {
	BusinessID    string           `json:"business_id"`
	ProductID     string           `json:"product_id"`
	Stock         int              `json:"stock"`
	PriceOverride *decimal.Decimal `json:"price_override,omitempty"`
	BatchNumber   string           `json:"batch_number,omitempty"`
	ExpiryDate    *time.Time       `json:"expiry_date,omitempty"`
}

// ReadCatalogFile lee y decodifica el archivo JSON.
func ReadCatalogFile(path string) (*CatalogFile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("leer catálogo %s: %w", path, err)
	}
	f, err := DecodeCatalogFile(raw)
	if err != nil {
		return nil, fmt.Errorf("catálogo %s: %w", path, err)
	}
	return f, nil
}

// DecodeCatalogFile decodifica el contenido JSON de un archivo de catálogo.
func DecodeCatalogFile(raw []byte) (*CatalogFile, error) {
	var f CatalogFile
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("decodificar: %w", err)
	}
	return &f, nil
}

// ToProducts convierte los registros en entidades; un tipo desconocido es error.
func (f *CatalogFile) ToProducts() ([]*entity.MasterProduct, error) {
	out := make([]*entity.MasterProduct, 0, len(f.Products))
	for _, r := range f.Products {
		kind, err := entity.ParseProductKind(r.Kind)
		if err != nil {
			return nil, fmt.Errorf("producto %s: %w", r.ID, err)
		}
		out = append(out, &entity.MasterProduct{
			ID:                   r.ID,
			Name:                 r.Name,
			LocalizedNames:       r.LocalizedNames,
			Description:          r.Description,
			Category:             r.Category,
			Manufacturer:         r.Manufacturer,
			ActiveIngredient:     r.ActiveIngredient,
			Kind:                 kind,
			PrescriptionRequired: r.PrescriptionRequired,
			PharmacyEligible:     r.PharmacyEligible,
			VendorEligible:       r.VendorEligible,
			Tags:                 r.Tags,
			Keywords:             r.Keywords,
			MinStockThreshold:    r.MinStockThreshold,
			CreatedAt:            r.CreatedAt,
		})
	}
	return out, nil
}

// ToBusinesses convierte los registros en entidades. El tipo se conserva sin validar.
func (f *CatalogFile) ToBusinesses() []*entity.Business {
	out := make([]*entity.Business, 0, len(f.Businesses))
	for _, r := range f.Businesses {
		out = append(out, &entity.Business{
			ID:          r.ID,
			Name:        r.Name,
			Kind:        entity.BusinessKind(r.Kind),
			Location:    entity.Location{CityID: r.CityID, GovernorateID: r.GovernorateID},
			IsActive:    r.IsActive,
			Rating:      r.Rating,
			ReviewCount: r.ReviewCount,
			Delivery: entity.DeliveryTerms{
				Available:        r.Delivery.Available,
				Fee:              r.Delivery.Fee,
				MinimumOrder:     r.Delivery.MinimumOrder,
				EstimatedMinutes: r.Delivery.EstimatedMinutes,
			},
		})
	}
	return out
}

// ToStockRecords convierte el stock inicial en registros del repositorio.
func (f *CatalogFile) ToStockRecords() []*entity.StockRecord {
	out := make([]*entity.StockRecord, 0, len(f.Inventory))
	for _, r := range f.Inventory {
		out = append(out, &entity.StockRecord{
			BusinessID:    r.BusinessID,
			ProductID:     r.ProductID,
			Stock:         r.Stock,
			PriceOverride: r.PriceOverride,
			BatchNumber:   r.BatchNumber,
			ExpiryDate:    r.ExpiryDate,
		})
	}
	return out
}

var _ repository.CatalogSource = (*FileCatalogSource)(nil)

// FileCatalogSource fuente de catálogo que relee el archivo en cada carga.
type FileCatalogSource struct {
	path string
}

// NewFileCatalogSource construye la fuente sobre path.
func NewFileCatalogSource(path string) *FileCatalogSource {
	return &FileCatalogSource{path: path}
}

func (s *FileCatalogSource) LoadProducts(_ context.Context) ([]*entity.MasterProduct, error) {
	f, err := ReadCatalogFile(s.path)
	if err != nil {
		return nil, err
	}
	return f.ToProducts()
}

func (s *FileCatalogSource) LoadBusinesses(_ context.Context) ([]*entity.Business, error) {
	f, err := ReadCatalogFile(s.path)
	if err != nil {
		return nil, err
	}
	return f.ToBusinesses(), nil
}
