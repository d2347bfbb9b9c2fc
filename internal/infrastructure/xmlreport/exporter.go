// Package xmlreport genera el XML regulatorio del reporte de cumplimiento.
// El documento se entrega en forma canónica (C14N) junto con su digest SHA-256 en base64,
// de modo que el receptor puede verificar integridad recalculando el hash sobre el cuerpo.
package xmlreport

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/xml"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/beevik/etree"
	"github.com/ucarion/c14n"

	"github.com/jhoicas/Catalogo-api/internal/application/compliance"
	"github.com/jhoicas/Catalogo-api/internal/domain/entity"
)

// Namespace del documento.
const Namespace = "urn:catalogo:compliance:report:1"

var _ compliance.ReportXMLExporter = (*Exporter)(nil)

// Exporter implementa compliance.ReportXMLExporter.
type Exporter struct {
	issuer string
}

// NewExporter construye el exportador. issuer identifica al marketplace emisor.
func NewExporter(issuer string) *Exporter {
	return &Exporter{issuer: issuer}
}

// ExportReportXML arma el documento, lo canonicaliza y calcula el digest.
func (e *Exporter) ExportReportXML(_ context.Context, r *compliance.Report) ([]byte, string, error) {
	doc := e.build(r)
	raw, err := doc.WriteToBytes()
	if err != nil {
		return nil, "", fmt.Errorf("xmlreport: serializar: %w", err)
	}
	canonical, err := Canonicalize(raw)
	if err != nil {
		return nil, "", fmt.Errorf("xmlreport: canonicalizar: %w", err)
	}
	return canonical, Digest(canonical), nil
}

// Canonicalize aplica C14N inclusiva sin comentarios.
func Canonicalize(data []byte) ([]byte, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.Entity = map[string]string{}
	return c14n.Canonicalize(dec)
}

// Digest SHA-256 en base64 estándar.
func Digest(data []byte) string {
	sum := sha256.Sum256(data)
	return base64.StdEncoding.EncodeToString(sum[:])
}

func (e *Exporter) build(r *compliance.Report) *etree.Document {
	doc := etree.NewDocument()
	root := doc.CreateElement("ComplianceReport")
	root.CreateAttr("xmlns", Namespace)
	root.CreateAttr("issuer", e.issuer)
	root.CreateAttr("generatedAt", r.GeneratedAt.UTC().Format(time.RFC3339))

	period := root.CreateElement("Period")
	period.CreateElement("Start").SetText(r.Start.UTC().Format(time.RFC3339))
	period.CreateElement("End").SetText(r.End.UTC().Format(time.RFC3339))

	summary := root.CreateElement("Summary")
	summary.CreateElement("TotalViolations").SetText(strconv.Itoa(r.TotalViolations))
	summary.CreateElement("BlockedViolations").SetText(strconv.Itoa(r.BlockedViolations))
	summary.CreateElement("CriticalViolations").SetText(strconv.Itoa(r.CriticalViolations))

	offenders := summary.CreateElement("OffendingBusinesses")
	for _, id := range r.OffendingBusinessIDs {
		offenders.CreateElement("BusinessID").SetText(id)
	}

	classes := make([]string, 0, len(r.ByClassification))
	for c := range r.ByClassification {
		classes = append(classes, string(c))
	}
	sort.Strings(classes)
	byClass := summary.CreateElement("ByClassification")
	for _, c := range classes {
		el := byClass.CreateElement("Classification")
		el.CreateAttr("name", c)
		el.SetText(strconv.Itoa(r.ByClassification[entity.ViolationClass(c)]))
	}

	list := root.CreateElement("Violations")
	for _, v := range r.Violations {
		el := list.CreateElement("Violation")
		el.CreateAttr("id", v.ID)
		el.CreateAttr("timestamp", v.Timestamp.UTC().Format(time.RFC3339Nano))
		el.CreateAttr("classification", string(v.Classification))
		el.CreateAttr("severity", string(v.Severity))
		el.CreateAttr("blocked", strconv.FormatBool(v.Blocked))
		el.CreateElement("BusinessID").SetText(v.BusinessID)
		el.CreateElement("ProductID").SetText(v.ProductID)
		el.CreateElement("Reason").SetText(v.Reason)
	}

	recs := root.CreateElement("Recommendations")
	for _, rec := range r.Recommendations {
		recs.CreateElement("Recommendation").SetText(rec)
	}
	return doc
}
