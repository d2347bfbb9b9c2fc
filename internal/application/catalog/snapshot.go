package catalog

import (
	"fmt"
	"sort"
	"time"

	"github.com/jhoicas/Catalogo-api/internal/domain"
	"github.com/jhoicas/Catalogo-api/internal/domain/access"
	"github.com/jhoicas/Catalogo-api/internal/domain/entity"
)

// Snapshot vista inmutable del catálogo maestro y del directorio de negocios con sus índices.
// Una vez construido no se modifica; una recarga crea un Snapshot nuevo.
type Snapshot struct {
	version  uint64
	loadedAt time.Time

	products     []*entity.MasterProduct // orden estable por ID
	productsByID map[string]*entity.MasterProduct
	eligible     map[entity.BusinessKind][]*entity.MasterProduct

	businesses     []*entity.Business
	businessesByID map[string]*entity.Business
	byCity         map[string][]*entity.Business
	byGovernorate  map[string][]*entity.Business
}

// NewSnapshot indexa productos y negocios. Falla si hay IDs duplicados o vacíos.
func NewSnapshot(version uint64, products []*entity.MasterProduct, businesses []*entity.Business) (*Snapshot, error) {
	s := &Snapshot{
		version:        version,
		loadedAt:       time.Now(),
		productsByID:   make(map[string]*entity.MasterProduct, len(products)),
		eligible:       make(map[entity.BusinessKind][]*entity.MasterProduct, 2),
		businessesByID: make(map[string]*entity.Business, len(businesses)),
		byCity:         make(map[string][]*entity.Business),
		byGovernorate:  make(map[string][]*entity.Business),
	}

	for _, p := range products {
		if p == nil || p.ID == "" {
			return nil, fmt.Errorf("%w: producto sin ID", domain.ErrInvalidInput)
		}
		if _, dup := s.productsByID[p.ID]; dup {
			return nil, fmt.Errorf("%w: producto %s", domain.ErrDuplicate, p.ID)
		}
		s.productsByID[p.ID] = p
		s.products = append(s.products, p)
	}
	sort.SliceStable(s.products, func(i, j int) bool { return s.products[i].ID < s.products[j].ID })

	for _, kind := range []entity.BusinessKind{entity.BusinessKindPharmacy, entity.BusinessKindVendor} {
		s.eligible[kind] = access.Gate(kind, s.products)
	}

	for _, b := range businesses {
		if b == nil || b.ID == "" {
			return nil, fmt.Errorf("%w: negocio sin ID", domain.ErrInvalidInput)
		}
		if _, dup := s.businessesByID[b.ID]; dup {
			return nil, fmt.Errorf("%w: negocio %s", domain.ErrDuplicate, b.ID)
		}
		s.businessesByID[b.ID] = b
		s.businesses = append(s.businesses, b)
	}
	sort.SliceStable(s.businesses, func(i, j int) bool { return s.businesses[i].ID < s.businesses[j].ID })
	for _, b := range s.businesses {
		if b.Location.CityID != "" {
			s.byCity[b.Location.CityID] = append(s.byCity[b.Location.CityID], b)
		}
		if b.Location.GovernorateID != "" {
			s.byGovernorate[b.Location.GovernorateID] = append(s.byGovernorate[b.Location.GovernorateID], b)
		}
	}
	return s, nil
}

// Version número monotónico del snapshot (clave de memoización del inventario).
func (s *Snapshot) Version() uint64 { return s.version }

// LoadedAt momento de construcción del snapshot.
func (s *Snapshot) LoadedAt() time.Time { return s.loadedAt }

// ProductByID devuelve el producto o domain.ErrNotFound.
func (s *Snapshot) ProductByID(id string) (*entity.MasterProduct, error) {
	p, ok := s.productsByID[id]
	if !ok {
		return nil, fmt.Errorf("producto %s: %w", id, domain.ErrNotFound)
	}
	return p, nil
}

// BusinessByID devuelve el negocio o domain.ErrNotFound.
func (s *Snapshot) BusinessByID(id string) (*entity.Business, error) {
	b, ok := s.businessesByID[id]
	if !ok {
		return nil, fmt.Errorf("negocio %s: %w", id, domain.ErrNotFound)
	}
	return b, nil
}

// Products lista completa ordenada por ID. El slice es compartido: no modificar.
func (s *Snapshot) Products() []*entity.MasterProduct { return s.products }

// ProductsEligibleFor productos que pasan la compuerta regulatoria para el tipo de negocio.
// Un tipo desconocido devuelve lista vacía. El slice es compartido: no modificar.
func (s *Snapshot) ProductsEligibleFor(kind entity.BusinessKind) []*entity.MasterProduct {
	return s.eligible[kind]
}

// Businesses lista completa ordenada por ID.
func (s *Snapshot) Businesses() []*entity.Business { return s.businesses }

// BusinessesByLocation negocios por ciudad y/o gobernación. Sin criterios devuelve todos.
// Con ambos criterios se exige que coincidan los dos.
func (s *Snapshot) BusinessesByLocation(cityID, governorateID string) []*entity.Business {
	var base []*entity.Business
	switch {
	case cityID != "":
		base = s.byCity[cityID]
	case governorateID != "":
		base = s.byGovernorate[governorateID]
	default:
		base = s.businesses
	}
	out := make([]*entity.Business, 0, len(base))
	for _, b := range base {
		if governorateID != "" && b.Location.GovernorateID != governorateID {
			continue
		}
		out = append(out, b)
	}
	return out
}
