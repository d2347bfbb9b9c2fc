package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/Catalogo-api/internal/domain/entity"
	"github.com/jhoicas/Catalogo-api/internal/domain/repository"
)

var _ repository.CatalogSource = (*CatalogRepo)(nil)

// CatalogRepo lee el catálogo maestro y el directorio de negocios para armar snapshots.
type CatalogRepo struct {
	q Querier
}

// NewCatalogRepository construye el adaptador. Acepta pool o tx (Querier).
func NewCatalogRepository(q Querier) *CatalogRepo {
	return &CatalogRepo{q: q}
}

// LoadProducts devuelve todos los productos. Un tipo desconocido aborta la carga.
func (r *CatalogRepo) LoadProducts(ctx context.Context) ([]*entity.MasterProduct, error) {
	query := `
		SELECT id, name, localized_names, description, category, manufacturer, active_ingredient,
		       kind, prescription_required, pharmacy_eligible, vendor_eligible,
		       tags, keywords, min_stock_threshold, created_at
		FROM products
		ORDER BY id`
	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}
	defer rows.Close()

	var list []*entity.MasterProduct
	for rows.Next() {
		var (
			p    entity.MasterProduct
			kind string
		)
		if err := rows.Scan(
			&p.ID, &p.Name, &p.LocalizedNames, &p.Description, &p.Category, &p.Manufacturer, &p.ActiveIngredient,
			&kind, &p.PrescriptionRequired, &p.PharmacyEligible, &p.VendorEligible,
			&p.Tags, &p.Keywords, &p.MinStockThreshold, &p.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		if p.Kind, err = entity.ParseProductKind(kind); err != nil {
			return nil, fmt.Errorf("producto %s: %w", p.ID, err)
		}
		list = append(list, &p)
	}
	return list, rows.Err()
}

// LoadBusinesses devuelve el directorio completo. El tipo se conserva tal cual para que
// un valor fuera del conjunto conocido se clasifique al evaluar accesos.
func (r *CatalogRepo) LoadBusinesses(ctx context.Context) ([]*entity.Business, error) {
	query := `
		SELECT id, name, kind, city_id, governorate_id, is_active, rating, review_count,
		       delivery_available, delivery_fee, minimum_order, estimated_minutes
		FROM businesses
		ORDER BY id`
	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("load businesses: %w", err)
	}
	defer rows.Close()

	var list []*entity.Business
	for rows.Next() {
		var (
			b    entity.Business
			kind string
		)
		if err := rows.Scan(
			&b.ID, &b.Name, &kind, &b.Location.CityID, &b.Location.GovernorateID, &b.IsActive, &b.Rating, &b.ReviewCount,
			&b.Delivery.Available, &b.Delivery.Fee, &b.Delivery.MinimumOrder, &b.Delivery.EstimatedMinutes,
		); err != nil {
			return nil, fmt.Errorf("scan business: %w", err)
		}
		b.Kind = entity.BusinessKind(kind)
		list = append(list, &b)
	}
	return list, rows.Err()
}

// UpsertProduct inserta o reemplaza un producto (seeds y tests).
func (r *CatalogRepo) UpsertProduct(ctx context.Context, p *entity.MasterProduct) error {
	query := `
		INSERT INTO products (id, name, localized_names, description, category, manufacturer, active_ingredient,
		                      kind, prescription_required, pharmacy_eligible, vendor_eligible,
		                      tags, keywords, min_stock_threshold, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name, localized_names = EXCLUDED.localized_names,
			description = EXCLUDED.description, category = EXCLUDED.category,
			manufacturer = EXCLUDED.manufacturer, active_ingredient = EXCLUDED.active_ingredient,
			kind = EXCLUDED.kind, prescription_required = EXCLUDED.prescription_required,
			pharmacy_eligible = EXCLUDED.pharmacy_eligible, vendor_eligible = EXCLUDED.vendor_eligible,
			tags = EXCLUDED.tags, keywords = EXCLUDED.keywords,
			min_stock_threshold = EXCLUDED.min_stock_threshold`
	names := p.LocalizedNames
	if names == nil {
		names = map[string]string{}
	}
	_, err := r.q.Exec(ctx, query,
		p.ID, p.Name, names, p.Description, p.Category, p.Manufacturer, p.ActiveIngredient,
		string(p.Kind), p.PrescriptionRequired, p.PharmacyEligible, p.VendorEligible,
		nonNilStrings(p.Tags), nonNilStrings(p.Keywords), p.MinStockThreshold, p.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert product: %w", err)
	}
	return nil
}

// UpsertBusiness inserta o reemplaza un negocio (seeds y tests).
func (r *CatalogRepo) UpsertBusiness(ctx context.Context, b *entity.Business) error {
	query := `
		INSERT INTO businesses (id, name, kind, city_id, governorate_id, is_active, rating, review_count,
		                        delivery_available, delivery_fee, minimum_order, estimated_minutes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name, kind = EXCLUDED.kind, city_id = EXCLUDED.city_id,
			governorate_id = EXCLUDED.governorate_id, is_active = EXCLUDED.is_active,
			rating = EXCLUDED.rating, review_count = EXCLUDED.review_count,
			delivery_available = EXCLUDED.delivery_available, delivery_fee = EXCLUDED.delivery_fee,
			minimum_order = EXCLUDED.minimum_order, estimated_minutes = EXCLUDED.estimated_minutes`
	_, err := r.q.Exec(ctx, query,
		b.ID, b.Name, string(b.Kind), b.Location.CityID, b.Location.GovernorateID, b.IsActive, b.Rating, b.ReviewCount,
		b.Delivery.Available, b.Delivery.Fee, b.Delivery.MinimumOrder, b.Delivery.EstimatedMinutes,
	)
	if err != nil {
		return fmt.Errorf("upsert business: %w", err)
	}
	return nil
}

func nonNilStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
