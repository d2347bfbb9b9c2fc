// seed_catalog genera un script SQL para poblar products, businesses y business_inventory
// a partir de un archivo de catálogo JSON (el mismo formato que CATALOG_SOURCE=file).
//
// Uso: go run ./cmd/seed_catalog [catalog.json] [salida.sql]
// Por defecto lee catalog.json y escribe seed_catalog.sql en la raíz del módulo.
// Las exportaciones antiguas en ISO-8859-1 se convierten a UTF-8 automáticamente.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/jhoicas/Catalogo-api/internal/domain/entity"
	"github.com/jhoicas/Catalogo-api/internal/infrastructure/memory"
)

func main() {
	inPath := "catalog.json"
	if len(os.Args) > 1 {
		inPath = os.Args[1]
	}
	outPath := filepath.Join(findModuleRoot(), "seed_catalog.sql")
	if len(os.Args) > 2 {
		outPath = os.Args[2]
	}

	raw, err := os.ReadFile(inPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Leer catálogo: %v\n", err)
		os.Exit(1)
	}
	if !utf8.Valid(raw) {
		raw, err = io.ReadAll(transform.NewReader(bytes.NewReader(raw), charmap.ISO8859_1.NewDecoder()))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Convertir ISO-8859-1: %v\n", err)
			os.Exit(1)
		}
	}
	file, err := memory.DecodeCatalogFile(raw)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Decodificar catálogo: %v\n", err)
		os.Exit(1)
	}
	products, err := file.ToProducts()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Validar productos: %v\n", err)
		os.Exit(1)
	}
	businesses := file.ToBusinesses()
	for _, b := range businesses {
		if !b.Kind.Valid() {
			fmt.Fprintf(os.Stderr, "Advertencia: negocio %s con tipo %q, quedará sin acceso\n", b.ID, b.Kind)
		}
	}
	stock := file.ToStockRecords()

	var sb strings.Builder
	writeSeed(&sb, products, businesses, stock)
	if err := os.WriteFile(outPath, []byte(sb.String()), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "Escribir archivo: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Generado %s: %d productos, %d negocios, %d registros de inventario\n",
		outPath, len(products), len(businesses), len(stock))
}

func writeSeed(w *strings.Builder, products []*entity.MasterProduct, businesses []*entity.Business, stock []*entity.StockRecord) {
	sort.Slice(products, func(i, j int) bool { return products[i].ID < products[j].ID })
	sort.Slice(businesses, func(i, j int) bool { return businesses[i].ID < businesses[j].ID })

	w.WriteString("-- Catálogo maestro, directorio de negocios e inventario inicial\n")
	w.WriteString("-- Generado por cmd/seed_catalog\n\n")

	w.WriteString("-- 1. Productos\n")
	for _, p := range products {
		created := p.CreatedAt
		if created.IsZero() {
			created = time.Now().UTC()
		}
		fmt.Fprintf(w, "INSERT INTO products (id, name, localized_names, description, category, manufacturer, active_ingredient, kind, prescription_required, pharmacy_eligible, vendor_eligible, tags, keywords, min_stock_threshold, created_at)\n")
		fmt.Fprintf(w, "VALUES (%s, %s, %s::jsonb, %s, %s, %s, %s, %s, %t, %t, %t, %s, %s, %d, %s)\n",
			quote(p.ID), quote(p.Name), quote(jsonObject(p.LocalizedNames)), quote(p.Description), quote(p.Category),
			quote(p.Manufacturer), quote(p.ActiveIngredient), quote(string(p.Kind)),
			p.PrescriptionRequired, p.PharmacyEligible, p.VendorEligible,
			textArray(p.Tags), textArray(p.Keywords), p.MinStockThreshold, quote(created.Format(time.RFC3339)))
		w.WriteString("ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, kind = EXCLUDED.kind,\n")
		w.WriteString("  prescription_required = EXCLUDED.prescription_required, pharmacy_eligible = EXCLUDED.pharmacy_eligible,\n")
		w.WriteString("  vendor_eligible = EXCLUDED.vendor_eligible;\n")
	}

	w.WriteString("\n-- 2. Negocios\n")
	for _, b := range businesses {
		fmt.Fprintf(w, "INSERT INTO businesses (id, name, kind, city_id, governorate_id, is_active, rating, review_count, delivery_available, delivery_fee, minimum_order, estimated_minutes)\n")
		fmt.Fprintf(w, "VALUES (%s, %s, %s, %s, %s, %t, %g, %d, %t, %s, %s, %d)\n",
			quote(b.ID), quote(b.Name), quote(string(b.Kind)), quote(b.Location.CityID), quote(b.Location.GovernorateID),
			b.IsActive, b.Rating, b.ReviewCount, b.Delivery.Available,
			b.Delivery.Fee.StringFixed(2), b.Delivery.MinimumOrder.StringFixed(2), b.Delivery.EstimatedMinutes)
		w.WriteString("ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, kind = EXCLUDED.kind, is_active = EXCLUDED.is_active;\n")
	}

	w.WriteString("\n-- 3. Inventario inicial\n")
	for _, s := range stock {
		fmt.Fprintf(w, "INSERT INTO business_inventory (business_id, product_id, stock, price_override, batch_number, expiry_date)\n")
		fmt.Fprintf(w, "VALUES (%s, %s, %d, %s, %s, %s)\n",
			quote(s.BusinessID), quote(s.ProductID), s.Stock, nullableDecimal(s.PriceOverride), quote(s.BatchNumber), nullableDate(s.ExpiryDate))
		w.WriteString("ON CONFLICT (business_id, product_id) DO UPDATE SET stock = EXCLUDED.stock, price_override = EXCLUDED.price_override;\n")
	}
}

func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func textArray(items []string) string {
	if len(items) == 0 {
		return "'{}'"
	}
	parts := make([]string, 0, len(items))
	for _, it := range items {
		parts = append(parts, quote(it))
	}
	return "ARRAY[" + strings.Join(parts, ", ") + "]::text[]"
}

// jsonObject serializa con claves ordenadas (encoding/json ordena los mapas).
func jsonObject(m map[string]string) string {
	if len(m) == 0 {
		return "{}"
	}
	b, _ := json.Marshal(m)
	return string(b)
}

func nullableDecimal(d *decimal.Decimal) string {
	if d == nil {
		return "NULL"
	}
	return d.StringFixed(2)
}

func nullableDate(t *time.Time) string {
	if t == nil {
		return "NULL"
	}
	return quote(t.Format("2006-01-02"))
}

func findModuleRoot() string {
	dir, _ := os.Getwd()
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return dir
		}
		dir = parent
	}
}
