// Package reporting aggregates the movement log into short plain-text
// summaries for the scheduled notifications.
package reporting

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/JASIELAB/CULTUREMEDIA/internal/domain/models"
	"github.com/JASIELAB/CULTUREMEDIA/internal/repository"
)

const dateLayout = "2006-01-02"

// StockSummary is the aggregated movement activity for a period.
type StockSummary struct {
	From                time.Time
	To                  time.Time
	Entries             int
	VesselsRegistered   decimal.Decimal
	VesselsConsumed     decimal.Decimal
	VesselsLost         decimal.Decimal
	VesselsReturned     decimal.Decimal
	SolutionsRegistered int
	DepletedBatches     []string
}

// NetVesselDelta is registered minus consumed minus lost plus returned.
func (s StockSummary) NetVesselDelta() decimal.Decimal {
	return s.VesselsRegistered.Sub(s.VesselsConsumed).Sub(s.VesselsLost).Add(s.VesselsReturned)
}

// Service exposes lightweight analytics over the movement log.
type Service struct {
	movements repository.MovementRepository
	batches   repository.BatchRepository
	logger    *zap.Logger
}

// NewService wires a new reporting service instance.
func NewService(movements repository.MovementRepository, batches repository.BatchRepository, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{movements: movements, batches: batches, logger: logger}
}

// Summarize aggregates movements between start and end (inclusive) and lists
// the batches currently depleted.
func (s *Service) Summarize(ctx context.Context, start, end time.Time) (StockSummary, error) {
	summary := StockSummary{From: start, To: end}

	entries, err := s.movements.ByDateRange(ctx, start, end)
	if err != nil {
		return summary, fmt.Errorf("load movements: %w", err)
	}

	for _, e := range entries {
		switch e.Kind {
		case models.MovementEntry:
			summary.Entries++
			summary.VesselsRegistered = summary.VesselsRegistered.Add(e.Quantity)
		case models.MovementDisposalConsumption:
			summary.VesselsConsumed = summary.VesselsConsumed.Add(e.Quantity)
		case models.MovementDisposalLoss:
			summary.VesselsLost = summary.VesselsLost.Add(e.Quantity)
		case models.MovementReturn:
			summary.VesselsReturned = summary.VesselsReturned.Add(e.Quantity)
		case models.MovementStockRegistration:
			summary.SolutionsRegistered++
		}
	}

	batches, err := s.batches.List(ctx, 0)
	if err != nil {
		return summary, fmt.Errorf("load batches: %w", err)
	}
	for _, b := range batches {
		if b.Depleted() {
			summary.DepletedBatches = append(summary.DepletedBatches, b.Code)
		}
	}

	s.logger.Debug("summary built", zap.Int("movements", len(entries)), zap.Int("depleted", len(summary.DepletedBatches)))
	return summary, nil
}

// Render formats the summary as the plain-text block pushed to the lab's
// notification channel.
func (s *Service) Render(sum StockSummary) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Resumen de stock (%s a %s)\n", sum.From.Format(dateLayout), sum.To.Format(dateLayout))
	fmt.Fprintf(&sb, "Lotes registrados: %d (%s frascos)\n", sum.Entries, sum.VesselsRegistered)
	fmt.Fprintf(&sb, "Frascos consumidos: %s\n", sum.VesselsConsumed)
	fmt.Fprintf(&sb, "Frascos perdidos: %s\n", sum.VesselsLost)
	fmt.Fprintf(&sb, "Frascos devueltos: %s\n", sum.VesselsReturned)
	fmt.Fprintf(&sb, "Soluciones registradas: %d\n", sum.SolutionsRegistered)
	fmt.Fprintf(&sb, "Variación neta: %s frascos", sum.NetVesselDelta())
	if len(sum.DepletedBatches) > 0 {
		fmt.Fprintf(&sb, "\nLotes agotados: %s", strings.Join(sum.DepletedBatches, ", "))
	}
	return sb.String()
}
