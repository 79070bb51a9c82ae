// Package labeling builds printable label payloads and renders the label
// images (text block plus QR code) for batches and stock solutions.
package labeling

import (
	"fmt"
	"strings"

	"github.com/JASIELAB/CULTUREMEDIA/internal/domain/models"
)

const dateLayout = "2006-01-02"

// Line is one "Label: value" pair of a printed label.
type Line struct {
	Label string
	Value string
}

// Payload is the ordered line set printed on a label and encoded into its QR
// code. The same values appear verbatim in both renderings.
type Payload struct {
	Lines []Line
}

// BatchPayload assembles the label lines for a batch record. Ordering follows
// the physical label layout used in the lab.
func BatchPayload(b models.BatchRecord) Payload {
	lines := []Line{
		{"Código", b.Code},
		{"Fecha", b.RegistrationDate.Format(dateLayout)},
		{"Receta", b.RecipeName},
		{"Solución", b.SolutionCode},
		{"Frascos", fmt.Sprintf("%d", b.VesselCount)},
		{"pH Ajustado", b.AdjustedPH.String()},
		{"pH Final", b.FinalPH.String()},
		{"CE Final", b.FinalConductivity.String()},
	}
	return Payload{Lines: lines}
}

// SolutionPayload assembles the label lines for a stock solution.
func SolutionPayload(s models.StockSolution) Payload {
	lines := []Line{
		{"Código", s.SolutionCode},
		{"Fecha", s.PreparationDate.Format(dateLayout)},
		{"Cantidad", strings.TrimSpace(s.Quantity.String() + " " + s.Unit)},
		{"Responsable", s.Responsible},
		{"Regulador", s.RegulatorType},
	}
	return Payload{Lines: lines}
}

// Text renders the human-readable block, one "Label: value" line per
// attribute.
func (p Payload) Text() string {
	parts := make([]string, 0, len(p.Lines))
	for _, l := range p.Lines {
		parts = append(parts, l.Label+": "+l.Value)
	}
	return strings.Join(parts, "\n")
}

// QRContent is the exact string encoded into the QR image. It is the same
// line set as the printed block, so a scanned code reads as plain text.
func (p Payload) QRContent() string {
	return p.Text()
}
