package entity

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// BusinessKind tipo regulado de negocio vendedor.
type BusinessKind string

const (
	BusinessKindPharmacy BusinessKind = "pharmacy"
	BusinessKindVendor   BusinessKind = "vendor"
)

// ParseBusinessKind valida el tipo de negocio recibido desde el token o la base de datos.
func ParseBusinessKind(s string) (BusinessKind, error) {
	switch k := BusinessKind(s); k {
	case BusinessKindPharmacy, BusinessKindVendor:
		return k, nil
	default:
		return "", fmt.Errorf("tipo de negocio desconocido: %q", s)
	}
}

// Valid informa si el tipo pertenece al conjunto cerrado {pharmacy, vendor}.
func (k BusinessKind) Valid() bool {
	_, err := ParseBusinessKind(string(k))
	return err == nil
}

// Location ubicación de un negocio (ciudad y gobernación).
type Location struct {
	CityID        string
	GovernorateID string
}

// DeliveryTerms condiciones de entrega del negocio.
type DeliveryTerms struct {
	Available        bool
	Fee              decimal.Decimal
	MinimumOrder     decimal.Decimal
	EstimatedMinutes int
}

// Business cuenta de un negocio vendedor (farmacia o vendedor). Solo lectura para este servicio.
type Business struct {
	ID          string
	Name        string
	Kind        BusinessKind
	Location    Location
	IsActive    bool
	Rating      float64
	ReviewCount int
	Delivery    DeliveryTerms
}
