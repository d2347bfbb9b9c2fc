package access

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"github.com/jhoicas/Catalogo-api/internal/domain"
	"github.com/jhoicas/Catalogo-api/internal/domain/entity"
)

// SortKey columna de ordenamiento.
type SortKey string

const (
	SortNone   SortKey = ""
	SortName   SortKey = "name"
	SortPrice  SortKey = "price"
	SortRating SortKey = "rating"
	SortNewest SortKey = "newest"
)

// SortOrder sentido del ordenamiento.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// Filters parámetros de consulta del catálogo.
type Filters struct {
	Category string
	// PrescriptionOnly nil = sin filtro; true = solo con receta; false = solo venta libre.
	PrescriptionOnly *bool
	Search           string
	MinPrice         *decimal.Decimal
	MaxPrice         *decimal.Decimal
	InStockOnly      bool
	SortBy           SortKey
	SortOrder        SortOrder
	Limit            int
	Offset           int
	// CityID y GovernorateID solo acotan la selección de negocios para el agregado.
	CityID        string
	GovernorateID string
}

// Validate rechaza valores mal formados antes de filtrar y aplica valores por defecto.
func (f *Filters) Validate() error {
	if f.MinPrice != nil && f.MinPrice.IsNegative() {
		return fmt.Errorf("%w: precio mínimo negativo", domain.ErrInvalidInput)
	}
	if f.MaxPrice != nil && f.MaxPrice.IsNegative() {
		return fmt.Errorf("%w: precio máximo negativo", domain.ErrInvalidInput)
	}
	if f.MinPrice != nil && f.MaxPrice != nil && f.MinPrice.GreaterThan(*f.MaxPrice) {
		return fmt.Errorf("%w: precio mínimo mayor que el máximo", domain.ErrInvalidInput)
	}
	if f.Limit < 0 || f.Offset < 0 {
		return fmt.Errorf("%w: limit y offset no pueden ser negativos", domain.ErrInvalidInput)
	}
	switch f.SortBy {
	case SortNone, SortName, SortPrice, SortRating, SortNewest:
	default:
		return fmt.Errorf("%w: sortBy desconocido %q", domain.ErrInvalidInput, f.SortBy)
	}
	switch f.SortOrder {
	case "":
		f.SortOrder = SortAsc
	case SortAsc, SortDesc:
	default:
		return fmt.Errorf("%w: sortOrder desconocido %q", domain.ErrInvalidInput, f.SortOrder)
	}
	if f.Limit == 0 {
		f.Limit = DefaultLimit
	}
	if f.Limit > MaxLimit {
		f.Limit = MaxLimit
	}
	f.Search = strings.TrimSpace(f.Search)
	return nil
}

// ApplyCatalogFilters aplica, en este orden, categoría, receta y búsqueda de texto.
// Los filtros de precio y stock se aplican después de sintetizar el inventario.
func ApplyCatalogFilters(products []*entity.MasterProduct, f Filters) []*entity.MasterProduct {
	out := make([]*entity.MasterProduct, 0, len(products))
	var m *matcher
	if f.Search != "" {
		m = newMatcher(f.Search)
	}
	for _, p := range products {
		if f.Category != "" && p.Category != f.Category {
			continue
		}
		if f.PrescriptionOnly != nil && p.PrescriptionRequired != *f.PrescriptionOnly {
			continue
		}
		if m != nil && !m.matches(p) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// Candidate producto elegible enriquecido con los datos de inventario sintetizados.
type Candidate struct {
	Product *entity.MasterProduct
	Price   decimal.Decimal
	Stock   int
	Status  entity.StockStatus
	Rating  float64
}

// ApplyInventoryFilters aplica rango de precio y luego solo-en-stock.
func ApplyInventoryFilters(cands []Candidate, f Filters) []Candidate {
	out := make([]Candidate, 0, len(cands))
	for _, c := range cands {
		if f.MinPrice != nil && c.Price.LessThan(*f.MinPrice) {
			continue
		}
		if f.MaxPrice != nil && c.Price.GreaterThan(*f.MaxPrice) {
			continue
		}
		if f.InStockOnly && (c.Stock <= 0 || c.Status == entity.StockStatusOutOfStock) {
			continue
		}
		out = append(out, c)
	}
	return out
}

// Sort ordena en sitio. Sin SortBy se conserva el orden de entrada.
// Los empates se resuelven por ID para que el resultado sea determinista.
func Sort(cands []Candidate, by SortKey, order SortOrder) {
	if by == SortNone {
		return
	}
	less := func(a, b Candidate) int {
		switch by {
		case SortName:
			return strings.Compare(strings.ToLower(a.Product.Name), strings.ToLower(b.Product.Name))
		case SortPrice:
			return a.Price.Cmp(b.Price)
		case SortRating:
			return cmpFloat(a.Rating, b.Rating)
		case SortNewest:
			return a.Product.CreatedAt.Compare(b.Product.CreatedAt)
		}
		return 0
	}
	sort.SliceStable(cands, func(i, j int) bool {
		c := less(cands[i], cands[j])
		if c == 0 {
			return cands[i].Product.ID < cands[j].Product.ID
		}
		if order == SortDesc {
			return c > 0
		}
		return c < 0
	})
}

func cmpFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// matcher búsqueda por subcadena insensible a mayúsculas (case folding Unicode).
// cases.Caser no es seguro entre goroutines: se crea uno por consulta.
type matcher struct {
	fold  cases.Caser
	query string
}

func newMatcher(q string) *matcher {
	m := &matcher{fold: cases.Fold()}
	m.query = m.normalize(q)
	return m
}

func (m *matcher) normalize(s string) string {
	return m.fold.String(norm.NFC.String(s))
}

func (m *matcher) contains(s string) bool {
	return s != "" && strings.Contains(m.normalize(s), m.query)
}

// matches: un producto coincide si cualquiera de sus campos de texto contiene la consulta.
func (m *matcher) matches(p *entity.MasterProduct) bool {
	if m.contains(p.Name) || m.contains(p.Description) || m.contains(p.Manufacturer) || m.contains(p.ActiveIngredient) {
		return true
	}
	for _, n := range p.LocalizedNames {
		if m.contains(n) {
			return true
		}
	}
	for _, k := range p.Keywords {
		if m.contains(k) {
			return true
		}
	}
	for _, t := range p.Tags {
		if m.contains(t) {
			return true
		}
	}
	return false
}
