package usecase

import (
	"context"
	"fmt"

	"github.com/jhoicas/Catalogo-api/internal/application/catalog"
	"github.com/jhoicas/Catalogo-api/internal/application/compliance"
	"github.com/jhoicas/Catalogo-api/internal/application/dto"
	"github.com/jhoicas/Catalogo-api/internal/application/inventory"
	"github.com/jhoicas/Catalogo-api/internal/domain"
	"github.com/jhoicas/Catalogo-api/internal/domain/entity"
	"github.com/jhoicas/Catalogo-api/internal/domain/repository"
	"github.com/jhoicas/Catalogo-api/pkg/logger"
)

// InventoryUseCase actualización del stock propio de un negocio.
type InventoryUseCase struct {
	store   *catalog.Store
	repo    repository.InventoryRepository
	synth   *inventory.Synthesizer
	monitor *compliance.Monitor
	log     *logger.Logger
}

// NewInventoryUseCase construye el caso de uso.
func NewInventoryUseCase(store *catalog.Store, repo repository.InventoryRepository, synth *inventory.Synthesizer, monitor *compliance.Monitor, log *logger.Logger) *InventoryUseCase {
	return &InventoryUseCase{store: store, repo: repo, synth: synth, monitor: monitor, log: log}
}

// UpdateStock registra stock y precio promocional de businessID para productID.
// Pasa por el monitor con la acción add_to_inventory: un negocio no puede inventariar
// lo que no puede vender.
func (uc *InventoryUseCase) UpdateStock(ctx context.Context, businessID, productID string, in dto.UpdateStockRequest) (*dto.UpdateStockResponse, error) {
	if in.Stock < 0 {
		return nil, fmt.Errorf("%w: stock negativo", domain.ErrInvalidInput)
	}
	if in.PriceOverride != nil && !in.PriceOverride.IsPositive() {
		return nil, fmt.Errorf("%w: el precio promocional debe ser mayor que cero", domain.ErrInvalidInput)
	}
	snap, err := uc.store.Snapshot()
	if err != nil {
		return nil, err
	}

	out := uc.monitor.Evaluate(snap, compliance.Request{
		BusinessID: businessID,
		ProductID:  productID,
		Action:     entity.ActionAddToInventory,
	})
	if !out.Allowed {
		res := &dto.UpdateStockResponse{Reason: out.Reason, NotFound: out.NotFound}
		if out.Violation != nil {
			v := toViolationResponse(out.Violation)
			res.Violation = &v
		}
		return res, nil
	}

	rec := &entity.StockRecord{
		BusinessID:    businessID,
		ProductID:     productID,
		Stock:         in.Stock,
		PriceOverride: in.PriceOverride,
		BatchNumber:   in.BatchNumber,
		ExpiryDate:    in.ExpiryDate,
	}
	if err := uc.repo.Upsert(ctx, rec); err != nil {
		return nil, err
	}
	if err := uc.synth.Invalidate(ctx, snap.Version(), businessID, productID); err != nil {
		uc.log.Warn().Err(err).Str("business_id", businessID).Str("product_id", productID).Msg("invalidar caché de inventario")
	}

	inv, err := uc.synth.Overlay(ctx, snap.Version(), out.Product, out.Business)
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("business_id", businessID).Str("product_id", productID).Int("stock", inv.Stock).Msg("stock actualizado")
	return &dto.UpdateStockResponse{
		Allowed: true,
		Inventory: &dto.InventoryResponse{
			BusinessID:    inv.BusinessID,
			Stock:         inv.Stock,
			Price:         inv.Price,
			OriginalPrice: inv.OriginalPrice,
			Status:        string(inv.Status),
			BatchNumber:   inv.BatchNumber,
			ExpiryDate:    inv.ExpiryDate,
		},
	}, nil
}
