package usecase

import (
	"context"
	"fmt"

	"github.com/jhoicas/Catalogo-api/internal/application/catalog"
	"github.com/jhoicas/Catalogo-api/internal/application/compliance"
	"github.com/jhoicas/Catalogo-api/internal/application/dto"
	"github.com/jhoicas/Catalogo-api/internal/application/inventory"
	"github.com/jhoicas/Catalogo-api/internal/domain"
	"github.com/jhoicas/Catalogo-api/internal/domain/access"
	"github.com/jhoicas/Catalogo-api/internal/domain/entity"
	"github.com/jhoicas/Catalogo-api/pkg/logger"
)

// CatalogUseCase consultas del catálogo por tipo de negocio: listado filtrado, ficha de
// producto con control de acceso y directorio de negocios.
type CatalogUseCase struct {
	store   *catalog.Store
	synth   *inventory.Synthesizer
	monitor *compliance.Monitor
	log     *logger.Logger
	strict  bool
}

// NewCatalogUseCase construye el caso de uso. Con strictInvariants un producto regulado
// que llegue a la respuesta de un vendedor provoca panic; sin él se registra y se descarta.
func NewCatalogUseCase(store *catalog.Store, synth *inventory.Synthesizer, monitor *compliance.Monitor, log *logger.Logger, strictInvariants bool) *CatalogUseCase {
	return &CatalogUseCase{store: store, synth: synth, monitor: monitor, log: log, strict: strictInvariants}
}

// QueryCatalog lista los productos visibles para kind, con su capa de inventario.
// Si businessID no está vacío la capa es la del negocio; si no, el agregado por producto.
// No escribe en la auditoría.
func (uc *CatalogUseCase) QueryCatalog(ctx context.Context, kind entity.BusinessKind, businessID string, f access.Filters) (*dto.CatalogQueryResponse, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: tipo de negocio %q", domain.ErrInvalidInput, kind)
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	snap, err := uc.store.Snapshot()
	if err != nil {
		return nil, err
	}

	var business *entity.Business
	if businessID != "" {
		business, err = snap.BusinessByID(businessID)
		if err != nil {
			return nil, err
		}
		if business.Kind != kind {
			return nil, fmt.Errorf("%w: el negocio %s no es de tipo %s", domain.ErrInvalidInput, businessID, kind)
		}
	}

	products := access.ApplyCatalogFilters(snap.ProductsEligibleFor(kind), f)
	scope := inventory.Scope{Kind: kind, CityID: f.CityID, GovernorateID: f.GovernorateID}
	var scoped []*entity.Business
	if business == nil {
		scoped = snap.BusinessesByLocation(f.CityID, f.GovernorateID)
	}

	cands := make([]access.Candidate, 0, len(products))
	layers := make(map[string]layer, len(products))
	for _, p := range products {
		if !uc.guard(kind, p) {
			continue
		}
		c := access.Candidate{Product: p}
		var l layer
		if business != nil {
			inv, err := uc.synth.Overlay(ctx, snap.Version(), p, business)
			if err != nil {
				return nil, err
			}
			c.Price, c.Stock, c.Status, c.Rating = inv.Price, inv.Stock, inv.Status, business.Rating
			l.inv = inv
		} else {
			agg, err := uc.synth.Aggregate(ctx, snap.Version(), p, scope, scoped)
			if err != nil {
				return nil, err
			}
			c.Price, c.Stock, c.Status, c.Rating = agg.AveragePrice, agg.TotalStock, agg.Status, agg.AverageRating
			l.agg = agg
		}
		layers[p.ID] = l
		cands = append(cands, c)
	}

	cands = access.ApplyInventoryFilters(cands, f)
	access.Sort(cands, f.SortBy, f.SortOrder)

	total := len(cands)
	start := min(f.Offset, total)
	end := min(start+f.Limit, total)
	page := cands[start:end]

	items := make([]dto.CatalogItemResponse, 0, len(page))
	for _, c := range page {
		l := layers[c.Product.ID]
		items = append(items, toCatalogItem(c, l.inv, l.agg))
	}
	return &dto.CatalogQueryResponse{
		Items:        items,
		TotalCount:   total,
		HasMore:      end < total,
		AccessLevel:  string(access.LevelFor(kind)),
		Restrictions: access.RestrictionsFor(kind),
		Page:         dto.PageResponse{Limit: f.Limit, Offset: f.Offset, Total: total},
	}, nil
}

// GetProduct ficha de un producto con control de acceso. Cada llamada queda en la auditoría;
// una denegación se devuelve como resultado con Allowed=false, no como error.
// Sin tipo ni negocio la consulta no llega al monitor: es ErrInvalidInput.
func (uc *CatalogUseCase) GetProduct(ctx context.Context, productID string, kind entity.BusinessKind, businessID string) (*dto.ProductAccessResponse, error) {
	if kind == "" && businessID == "" {
		return nil, fmt.Errorf("%w: se requiere business_kind o business_id", domain.ErrInvalidInput)
	}
	snap, err := uc.store.Snapshot()
	if err != nil {
		return nil, err
	}
	out := uc.monitor.Evaluate(snap, compliance.Request{
		BusinessID:  businessID,
		ClaimedKind: kind,
		ProductID:   productID,
		Action:      entity.ActionView,
	})
	if !out.Allowed {
		return &dto.ProductAccessResponse{Allowed: false, Reason: out.Reason, NotFound: out.NotFound}, nil
	}
	if !uc.guard(out.Kind, out.Product) {
		return &dto.ProductAccessResponse{Allowed: false, Reason: access.RestrictionNoMedicines}, nil
	}

	c := access.Candidate{Product: out.Product}
	var item dto.CatalogItemResponse
	if out.Business != nil {
		inv, err := uc.synth.Overlay(ctx, snap.Version(), out.Product, out.Business)
		if err != nil {
			return nil, err
		}
		c.Price, c.Stock, c.Status, c.Rating = inv.Price, inv.Stock, inv.Status, out.Business.Rating
		item = toCatalogItem(c, inv, nil)
	} else {
		scope := inventory.Scope{Kind: out.Kind}
		agg, err := uc.synth.Aggregate(ctx, snap.Version(), out.Product, scope, snap.Businesses())
		if err != nil {
			return nil, err
		}
		c.Price, c.Stock, c.Status, c.Rating = agg.AveragePrice, agg.TotalStock, agg.Status, agg.AverageRating
		item = toCatalogItem(c, nil, agg)
	}
	return &dto.ProductAccessResponse{Product: &item, Allowed: true}, nil
}

// ListBusinesses directorio de negocios por ubicación y, opcionalmente, tipo.
func (uc *CatalogUseCase) ListBusinesses(kind entity.BusinessKind, cityID, governorateID string) (*dto.BusinessListResponse, error) {
	if kind != "" && !kind.Valid() {
		return nil, fmt.Errorf("%w: tipo de negocio %q", domain.ErrInvalidInput, kind)
	}
	list, err := uc.store.BusinessesByLocation(cityID, governorateID)
	if err != nil {
		return nil, err
	}
	items := make([]dto.BusinessResponse, 0, len(list))
	for _, b := range list {
		if kind != "" && b.Kind != kind {
			continue
		}
		items = append(items, toBusinessResponse(b))
	}
	return &dto.BusinessListResponse{Items: items, Total: len(items)}, nil
}

// guard segunda verificación, independiente de la compuerta, antes de exponer un producto.
func (uc *CatalogUseCase) guard(kind entity.BusinessKind, p *entity.MasterProduct) bool {
	err := access.CheckInvariant(kind, p)
	if err == nil {
		return true
	}
	if uc.strict {
		panic(err)
	}
	uc.log.Error().Err(err).Str("business_kind", string(kind)).Msg("producto regulado descartado de la respuesta")
	return false
}

type layer struct {
	inv *entity.BusinessInventory
	agg *entity.AggregateInventory
}

func toCatalogItem(c access.Candidate, inv *entity.BusinessInventory, agg *entity.AggregateInventory) dto.CatalogItemResponse {
	p := c.Product
	item := dto.CatalogItemResponse{
		ID:                   p.ID,
		Name:                 p.Name,
		LocalizedNames:       p.LocalizedNames,
		Description:          p.Description,
		Category:             p.Category,
		Manufacturer:         p.Manufacturer,
		ActiveIngredient:     p.ActiveIngredient,
		Kind:                 string(p.Kind),
		PrescriptionRequired: p.PrescriptionRequired,
		Tags:                 nonNil(p.Tags),
		Keywords:             nonNil(p.Keywords),
		CreatedAt:            p.CreatedAt,
		Price:                c.Price,
		Stock:                c.Stock,
		Status:               string(c.Status),
		Rating:               c.Rating,
	}
	if inv != nil {
		item.Inventory = &dto.InventoryResponse{
			BusinessID:    inv.BusinessID,
			Stock:         inv.Stock,
			Price:         inv.Price,
			OriginalPrice: inv.OriginalPrice,
			Status:        string(inv.Status),
			BatchNumber:   inv.BatchNumber,
			ExpiryDate:    inv.ExpiryDate,
		}
	}
	if agg != nil {
		item.Aggregate = &dto.AggregateResponse{
			AveragePrice:  agg.AveragePrice,
			AverageRating: agg.AverageRating,
			TotalStock:    agg.TotalStock,
			Status:        string(agg.Status),
			BusinessCount: agg.BusinessCount,
		}
	}
	return item
}

func toBusinessResponse(b *entity.Business) dto.BusinessResponse {
	return dto.BusinessResponse{
		ID:            b.ID,
		Name:          b.Name,
		Kind:          string(b.Kind),
		CityID:        b.Location.CityID,
		GovernorateID: b.Location.GovernorateID,
		IsActive:      b.IsActive,
		Rating:        b.Rating,
		ReviewCount:   b.ReviewCount,
		Delivery: dto.DeliveryResponse{
			Available:        b.Delivery.Available,
			Fee:              b.Delivery.Fee,
			MinimumOrder:     b.Delivery.MinimumOrder,
			EstimatedMinutes: b.Delivery.EstimatedMinutes,
		},
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
