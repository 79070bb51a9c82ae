// Package inventory implements the registration, disposal and return
// operations over the batch and stock-solution tables, appending one audit
// row to the movement log per action.
package inventory

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/JASIELAB/CULTUREMEDIA/internal/domain/models"
	"github.com/JASIELAB/CULTUREMEDIA/internal/repository"
)

// ErrValidation wraps any out-of-range or missing-field failure. The caller
// blocks the action; nothing is persisted.
var ErrValidation = errors.New("validation failed")

// ErrInsufficientVessels rejects a disposal asking for more vessels than the
// batch holds. The record is left unchanged; no clamping.
var ErrInsufficientVessels = errors.New("insufficient vessels")

// ErrInsufficientQuantity rejects a stock-solution draw larger than the
// remaining quantity.
var ErrInsufficientQuantity = errors.New("insufficient quantity")

// Notifier receives depletion events. Implementations must not block the
// request path on delivery failures.
type Notifier interface {
	BatchDepleted(ctx context.Context, code string)
}

// Service executes inventory actions against the configured repositories.
type Service struct {
	batches   repository.BatchRepository
	solutions repository.SolutionRepository
	movements repository.MovementRepository
	codes     models.CodeFormat
	validate  *validator.Validate
	notifier  Notifier
	logger    *zap.Logger
	now       func() time.Time
}

// NewService wires an inventory service. notifier may be nil.
func NewService(batches repository.BatchRepository, solutions repository.SolutionRepository, movements repository.MovementRepository, codes models.CodeFormat, notifier Notifier, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		batches:   batches,
		solutions: solutions,
		movements: movements,
		codes:     codes,
		validate:  validator.New(),
		notifier:  notifier,
		logger:    logger,
		now:       time.Now,
	}
}

// RegisterBatch validates the form input, derives the batch code and appends
// the row plus its Entry movement. A derived code that already exists in the
// table is a conflict; nothing is overwritten.
func (s *Service) RegisterBatch(ctx context.Context, req models.RegisterBatchRequest) (models.BatchRecord, error) {
	req.RecipeName = strings.TrimSpace(req.RecipeName)
	req.SolutionCode = strings.TrimSpace(req.SolutionCode)
	req.Hormones = strings.TrimSpace(req.Hormones)

	if err := s.validate.Struct(req); err != nil {
		return models.BatchRecord{}, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if err := checkPH("adjustedPH", req.AdjustedPH); err != nil {
		return models.BatchRecord{}, err
	}
	if err := checkPH("finalPH", req.FinalPH); err != nil {
		return models.BatchRecord{}, err
	}
	if req.FinalConductivity.IsNegative() {
		return models.BatchRecord{}, fmt.Errorf("%w: finalConductivity must not be negative", ErrValidation)
	}

	registered, err := s.resolveDate(req.RegistrationDate)
	if err != nil {
		return models.BatchRecord{}, err
	}

	record := models.BatchRecord{
		Code:              s.codes.BatchCode(req.Year, req.RecipeName, req.Week, req.Day, req.PreparationNumber),
		Year:              req.Year,
		RecipeName:        req.RecipeName,
		SolutionCode:      req.SolutionCode,
		Week:              req.Week,
		Day:               req.Day,
		PreparationNumber: req.PreparationNumber,
		VesselCount:       req.VesselCount,
		VolumeML:          req.VolumeML,
		Hormones:          req.Hormones,
		AdjustedPH:        req.AdjustedPH,
		FinalPH:           req.FinalPH,
		FinalConductivity: req.FinalConductivity,
		RegistrationDate:  registered,
	}

	if err := s.batches.Append(ctx, record); err != nil {
		return models.BatchRecord{}, err
	}

	if err := s.logMovement(ctx, models.MovementEntry, record.Code, decimal.NewFromInt(int64(record.VesselCount)), "registro de lote "+record.RecipeName); err != nil {
		return models.BatchRecord{}, err
	}

	s.logger.Info("batch registered", zap.String("code", record.Code), zap.Int("vessels", record.VesselCount))
	return record, nil
}

// DisposeBatch removes req.Count vessels for one of the closed reasons. A
// request larger than the current count fails and leaves the row untouched.
func (s *Service) DisposeBatch(ctx context.Context, code string, req models.DisposalRequest) (models.BatchRecord, error) {
	if err := s.validate.Struct(req); err != nil {
		return models.BatchRecord{}, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if !models.ValidDisposalReason(req.Reason) {
		return models.BatchRecord{}, fmt.Errorf("%w: unknown disposal reason %q", ErrValidation, req.Reason)
	}

	var updated models.BatchRecord
	err := s.batches.Update(ctx, code, func(b *models.BatchRecord) error {
		if req.Count > b.VesselCount {
			return fmt.Errorf("batch %s holds %d vessels, requested %d: %w", code, b.VesselCount, req.Count, ErrInsufficientVessels)
		}
		b.VesselCount -= req.Count
		updated = *b
		return nil
	})
	if err != nil {
		return models.BatchRecord{}, err
	}

	details := string(req.Reason)
	if req.Details != "" {
		details += "; " + req.Details
	}
	if err := s.logMovement(ctx, models.MovementKindFor(req.Reason), code, decimal.NewFromInt(int64(req.Count)), details); err != nil {
		return models.BatchRecord{}, err
	}

	if updated.Depleted() && s.notifier != nil {
		s.notifier.BatchDepleted(ctx, code)
	}

	s.logger.Info("batch disposal", zap.String("code", code), zap.Int("count", req.Count), zap.String("reason", string(req.Reason)))
	return updated, nil
}

// ReturnBatch puts vessels back into active stock. Returns always succeed for
// an existing batch.
func (s *Service) ReturnBatch(ctx context.Context, code string, req models.ReturnRequest) (models.BatchRecord, error) {
	if err := s.validate.Struct(req); err != nil {
		return models.BatchRecord{}, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	var updated models.BatchRecord
	err := s.batches.Update(ctx, code, func(b *models.BatchRecord) error {
		b.VesselCount += req.Count
		updated = *b
		return nil
	})
	if err != nil {
		return models.BatchRecord{}, err
	}

	if err := s.logMovement(ctx, models.MovementReturn, code, decimal.NewFromInt(int64(req.Count)), ""); err != nil {
		return models.BatchRecord{}, err
	}

	s.logger.Info("batch return", zap.String("code", code), zap.Int("count", req.Count))
	return updated, nil
}

// DeleteBatch removes the row entirely. Deletion is outside the disposal
// state machine and is not audited as a movement.
func (s *Service) DeleteBatch(ctx context.Context, code string) error {
	return s.batches.Delete(ctx, code)
}

// GetBatch looks a batch up by code.
func (s *Service) GetBatch(ctx context.Context, code string) (models.BatchRecord, error) {
	return s.batches.Get(ctx, code)
}

// ListBatches returns the most recent rows up to limit (all when limit <= 0).
func (s *Service) ListBatches(ctx context.Context, limit int) ([]models.BatchRecord, error) {
	return s.batches.List(ctx, limit)
}

// BatchesByDateRange filters by registration date, inclusive on both ends.
func (s *Service) BatchesByDateRange(ctx context.Context, from, to time.Time) ([]models.BatchRecord, error) {
	return s.batches.ByDateRange(ctx, from, to)
}

// RegisterSolution validates and appends a stock solution plus its
// StockRegistration movement.
func (s *Service) RegisterSolution(ctx context.Context, req models.RegisterSolutionRequest) (models.StockSolution, error) {
	req.SolutionCode = strings.TrimSpace(req.SolutionCode)
	req.Responsible = strings.TrimSpace(req.Responsible)
	req.Unit = strings.TrimSpace(req.Unit)

	if err := s.validate.Struct(req); err != nil {
		return models.StockSolution{}, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if !req.Quantity.IsPositive() {
		return models.StockSolution{}, fmt.Errorf("%w: quantity must be positive", ErrValidation)
	}

	prepared, err := s.resolveDate(req.PreparationDate)
	if err != nil {
		return models.StockSolution{}, err
	}

	record := models.StockSolution{
		SolutionCode:    req.SolutionCode,
		PreparationDate: prepared,
		Quantity:        req.Quantity,
		Unit:            req.Unit,
		Responsible:     req.Responsible,
		RegulatorType:   strings.TrimSpace(req.RegulatorType),
		Notes:           req.Notes,
	}

	if err := s.solutions.Append(ctx, record); err != nil {
		return models.StockSolution{}, err
	}

	if err := s.logMovement(ctx, models.MovementStockRegistration, record.SolutionCode, record.Quantity, "registro de solución"); err != nil {
		return models.StockSolution{}, err
	}

	s.logger.Info("solution registered", zap.String("code", record.SolutionCode))
	return record, nil
}

// DisposeSolution draws quantity out of a stock solution, rejecting overdraw
// the same way batch disposal rejects over-large vessel counts.
func (s *Service) DisposeSolution(ctx context.Context, code string, req models.SolutionDisposalRequest) (models.StockSolution, error) {
	if !req.Quantity.IsPositive() {
		return models.StockSolution{}, fmt.Errorf("%w: quantity must be positive", ErrValidation)
	}

	var updated models.StockSolution
	err := s.solutions.Update(ctx, code, func(sol *models.StockSolution) error {
		if req.Quantity.GreaterThan(sol.Quantity) {
			return fmt.Errorf("solution %s holds %s, requested %s: %w", code, sol.Quantity, req.Quantity, ErrInsufficientQuantity)
		}
		sol.Quantity = sol.Quantity.Sub(req.Quantity)
		updated = *sol
		return nil
	})
	if err != nil {
		return models.StockSolution{}, err
	}

	if err := s.logMovement(ctx, models.MovementStockDisposal, code, req.Quantity, req.Details); err != nil {
		return models.StockSolution{}, err
	}

	s.logger.Info("solution disposal", zap.String("code", code), zap.String("quantity", req.Quantity.String()))
	return updated, nil
}

// DeleteSolution removes the row entirely.
func (s *Service) DeleteSolution(ctx context.Context, code string) error {
	return s.solutions.Delete(ctx, code)
}

// GetSolution looks a stock solution up by code.
func (s *Service) GetSolution(ctx context.Context, code string) (models.StockSolution, error) {
	return s.solutions.Get(ctx, code)
}

// ListSolutions returns the most recent rows up to limit.
func (s *Service) ListSolutions(ctx context.Context, limit int) ([]models.StockSolution, error) {
	return s.solutions.List(ctx, limit)
}

// Movements returns the most recent audit rows up to limit.
func (s *Service) Movements(ctx context.Context, limit int) ([]models.MovementLogEntry, error) {
	return s.movements.List(ctx, limit)
}

// MovementsByDateRange filters the audit log by timestamp.
func (s *Service) MovementsByDateRange(ctx context.Context, from, to time.Time) ([]models.MovementLogEntry, error) {
	return s.movements.ByDateRange(ctx, from, to)
}

func (s *Service) logMovement(ctx context.Context, kind models.MovementKind, code string, qty decimal.Decimal, details string) error {
	entry := models.MovementLogEntry{
		ID:             uuid.New(),
		Timestamp:      s.now().UTC(),
		Kind:           kind,
		ReferencedCode: code,
		Quantity:       qty,
		Details:        details,
	}
	if err := s.movements.Append(ctx, entry); err != nil {
		return fmt.Errorf("append movement log: %w", err)
	}
	return nil
}

func (s *Service) resolveDate(raw string) (time.Time, error) {
	if strings.TrimSpace(raw) == "" {
		now := s.now().UTC()
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	parsed, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: bad date %q", ErrValidation, raw)
	}
	return parsed, nil
}

func checkPH(field string, value decimal.Decimal) error {
	if value.IsNegative() || value.GreaterThan(decimal.NewFromInt(14)) {
		return fmt.Errorf("%w: %s must be between 0.0 and 14.0", ErrValidation, field)
	}
	return nil
}
