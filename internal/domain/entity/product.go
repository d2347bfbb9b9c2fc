package entity

import (
	"fmt"
	"time"
)

// ProductKind tipo regulatorio de un producto del catálogo maestro.
type ProductKind string

const (
	ProductKindMedicine      ProductKind = "medicine"
	ProductKindMedicalSupply ProductKind = "medical-supply"
	ProductKindHygieneSupply ProductKind = "hygiene-supply"
	ProductKindMedicalDevice ProductKind = "medical-device"
)

// ParseProductKind valida el texto recibido (catálogo, seeds) contra los tipos conocidos.
func ParseProductKind(s string) (ProductKind, error) {
	switch k := ProductKind(s); k {
	case ProductKindMedicine, ProductKindMedicalSupply, ProductKindHygieneSupply, ProductKindMedicalDevice:
		return k, nil
	default:
		return "", fmt.Errorf("tipo de producto desconocido: %q", s)
	}
}

// MasterProduct representa un producto del catálogo maestro compartido por todos los negocios.
// Es inmutable en tiempo de consulta; solo lo modifica la gestión de catálogo (fuera de este servicio).
type MasterProduct struct {
	ID                   string
	Name                 string
	LocalizedNames       map[string]string // idioma -> nombre (ej. "ar" -> "باراسيتامول")
	Description          string
	Category             string
	Manufacturer         string
	ActiveIngredient     string
	Kind                 ProductKind
	PrescriptionRequired bool
	PharmacyEligible     bool
	VendorEligible       bool
	Tags                 []string
	Keywords             []string
	MinStockThreshold    int // por debajo o igual a este stock el estado es low-stock
	CreatedAt            time.Time
}

// IsMedicine indica si el producto es un medicamento.
func (p *MasterProduct) IsMedicine() bool {
	return p.Kind == ProductKindMedicine
}
