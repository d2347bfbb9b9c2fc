package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Catalogo-api/internal/domain"
	"github.com/jhoicas/Catalogo-api/internal/domain/entity"
	"github.com/jhoicas/Catalogo-api/internal/domain/repository"
)

var _ repository.InventoryRepository = (*InventoryRepo)(nil)

// InventoryRepo stock por (negocio, producto) sobre PostgreSQL.
type InventoryRepo struct {
	q Querier
}

// NewInventoryRepository construye el adaptador. Acepta pool o tx (Querier).
func NewInventoryRepository(q Querier) *InventoryRepo {
	return &InventoryRepo{q: q}
}

const stockColumns = `business_id, product_id, stock, price_override, batch_number, expiry_date, updated_at`

func (r *InventoryRepo) GetStock(ctx context.Context, businessID, productID string) (*entity.StockRecord, error) {
	query := `SELECT ` + stockColumns + ` FROM business_inventory WHERE business_id = $1 AND product_id = $2`
	rec, err := scanStock(r.q.QueryRow(ctx, query, businessID, productID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get stock: %w", err)
	}
	return rec, nil
}

func (r *InventoryRepo) ListByProduct(ctx context.Context, productID string) ([]*entity.StockRecord, error) {
	query := `SELECT ` + stockColumns + ` FROM business_inventory WHERE product_id = $1 ORDER BY business_id`
	rows, err := r.q.Query(ctx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("list stock by product: %w", err)
	}
	defer rows.Close()
	var list []*entity.StockRecord
	for rows.Next() {
		rec, err := scanStock(rows)
		if err != nil {
			return nil, fmt.Errorf("scan stock: %w", err)
		}
		list = append(list, rec)
	}
	return list, rows.Err()
}

func (r *InventoryRepo) Upsert(ctx context.Context, rec *entity.StockRecord) error {
	if rec.Stock < 0 {
		return fmt.Errorf("%w: stock negativo", domain.ErrInvalidInput)
	}
	query := `
		INSERT INTO business_inventory (business_id, product_id, stock, price_override, batch_number, expiry_date, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, now())
		ON CONFLICT (business_id, product_id)
		DO UPDATE SET stock = EXCLUDED.stock, price_override = EXCLUDED.price_override,
		              batch_number = EXCLUDED.batch_number, expiry_date = EXCLUDED.expiry_date,
		              updated_at = now()
		RETURNING updated_at`
	err := r.q.QueryRow(ctx, query,
		rec.BusinessID, rec.ProductID, rec.Stock, rec.PriceOverride, rec.BatchNumber, rec.ExpiryDate,
	).Scan(&rec.UpdatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: negocio o producto inexistente", domain.ErrNotFound)
		}
		return fmt.Errorf("upsert stock: %w", err)
	}
	return nil
}

func scanStock(row pgx.Row) (*entity.StockRecord, error) {
	var rec entity.StockRecord
	if err := row.Scan(
		&rec.BusinessID, &rec.ProductID, &rec.Stock, &rec.PriceOverride, &rec.BatchNumber, &rec.ExpiryDate, &rec.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &rec, nil
}
