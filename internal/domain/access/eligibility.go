// Package access implementa el filtro de acceso al catálogo por tipo de negocio.
//
// La política tiene dos etapas fijas:
//
//  1. Compuerta regulatoria (no negociable): farmacia → pharmacyEligible; vendedor →
//     vendorEligible && kind != medicine && !prescriptionRequired. Las dos últimas
//     comprobaciones se aplican aunque vendorEligible sea true.
//  2. Filtros secundarios (categoría, receta, búsqueda, precio, stock) y orden.
//
// Todo el paquete es puro: no guarda estado ni realiza I/O.
package access

import (
	"fmt"

	"github.com/jhoicas/Catalogo-api/internal/domain/entity"
)

// AccessLevel nivel de acceso informado al cliente para mensajes de UI.
type AccessLevel string

const (
	AccessLevelFull       AccessLevel = "full"
	AccessLevelRestricted AccessLevel = "restricted"
	AccessLevelNone       AccessLevel = "none"
)

// Mensajes de restricción devueltos al cliente.
const (
	RestrictionNoMedicines    = "Los medicamentos no están disponibles para vendedores"
	RestrictionNoPrescription = "Los productos con receta no están disponibles para vendedores"
)

// Decision resultado de la compuerta regulatoria para un (tipo de negocio, producto).
// Si Allowed es false, Classification y Severity indican la regla que denegó.
type Decision struct {
	Allowed        bool
	Classification entity.ViolationClass
	Severity       entity.Severity
	Reason         string
}

// Evaluate aplica la compuerta regulatoria. Es fail-closed: cualquier caso no
// contemplado explícitamente se deniega.
func Evaluate(kind entity.BusinessKind, p *entity.MasterProduct) Decision {
	if p == nil {
		return Decision{Reason: "producto no encontrado"}
	}
	switch kind {
	case entity.BusinessKindPharmacy:
		if p.PharmacyEligible {
			return Decision{Allowed: true}
		}
		return deny(entity.ViolationMissingPermissions, entity.SeverityMedium,
			"el producto no está habilitado para farmacias")
	case entity.BusinessKindVendor:
		// El orden importa: medicamento (crítico) antes que receta (alto) antes que flag (medio).
		if p.Kind == entity.ProductKindMedicine {
			return deny(entity.ViolationUnauthorizedMedicine, entity.SeverityCritical,
				"los vendedores no pueden acceder a medicamentos")
		}
		if p.PrescriptionRequired {
			return deny(entity.ViolationUnauthorizedPrescription, entity.SeverityHigh,
				"los vendedores no pueden acceder a productos con receta")
		}
		if !vendorKindAllowed(p.Kind) {
			return deny(entity.ViolationMissingPermissions, entity.SeverityMedium,
				fmt.Sprintf("tipo de producto %q no permitido para vendedores", p.Kind))
		}
		if !p.VendorEligible {
			return deny(entity.ViolationMissingPermissions, entity.SeverityMedium,
				"el producto no está habilitado para vendedores")
		}
		return Decision{Allowed: true}
	default:
		return deny(entity.ViolationInvalidBusinessType, entity.SeverityHigh,
			fmt.Sprintf("tipo de negocio inválido: %q", kind))
	}
}

// Eligible atajo booleano de Evaluate.
func Eligible(kind entity.BusinessKind, p *entity.MasterProduct) bool {
	return Evaluate(kind, p).Allowed
}

// vendorKindAllowed enumera todos los ProductKind; un tipo nuevo sin caso queda denegado.
func vendorKindAllowed(k entity.ProductKind) bool {
	switch k {
	case entity.ProductKindMedicalSupply, entity.ProductKindHygieneSupply, entity.ProductKindMedicalDevice:
		return true
	case entity.ProductKindMedicine:
		return false
	default:
		return false
	}
}

func deny(class entity.ViolationClass, sev entity.Severity, reason string) Decision {
	return Decision{Allowed: false, Classification: class, Severity: sev, Reason: reason}
}

// LevelFor nivel de acceso por tipo de negocio.
func LevelFor(kind entity.BusinessKind) AccessLevel {
	switch kind {
	case entity.BusinessKindPharmacy:
		return AccessLevelFull
	case entity.BusinessKindVendor:
		return AccessLevelRestricted
	default:
		return AccessLevelNone
	}
}

// RestrictionsFor lista de restricciones legibles para el tipo de negocio.
func RestrictionsFor(kind entity.BusinessKind) []string {
	switch kind {
	case entity.BusinessKindPharmacy:
		return []string{}
	case entity.BusinessKindVendor:
		return []string{RestrictionNoMedicines, RestrictionNoPrescription}
	default:
		return []string{"tipo de negocio no reconocido: sin acceso al catálogo"}
	}
}

// Gate aplica la compuerta regulatoria a una lista, preservando el orden de entrada.
func Gate(kind entity.BusinessKind, products []*entity.MasterProduct) []*entity.MasterProduct {
	out := make([]*entity.MasterProduct, 0, len(products))
	for _, p := range products {
		if Eligible(kind, p) {
			out = append(out, p)
		}
	}
	return out
}

// CheckInvariant verifica de forma independiente que un producto expuesto a un vendedor
// no sea medicamento ni requiera receta. Devuelve error si el invariante se rompe.
func CheckInvariant(kind entity.BusinessKind, p *entity.MasterProduct) error {
	if kind != entity.BusinessKindVendor || p == nil {
		return nil
	}
	if p.Kind == entity.ProductKindMedicine || p.PrescriptionRequired {
		return fmt.Errorf("invariante roto: producto regulado %s expuesto a vendedor", p.ID)
	}
	return nil
}
