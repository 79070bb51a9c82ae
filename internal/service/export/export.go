// Package export renders the inventory tables as downloadable CSV and Excel
// workbooks, and reads a previously exported workbook back into records.
package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/JASIELAB/CULTUREMEDIA/internal/domain/models"
	"github.com/JASIELAB/CULTUREMEDIA/internal/repository"
	"github.com/JASIELAB/CULTUREMEDIA/internal/repository/csvfile"
)

// Workbook sheet names, one per table.
const (
	batchSheet    = "Lotes"
	solutionSheet = "Soluciones"
	movementSheet = "Movimientos"
)

// Service reads the stores and produces export documents on demand.
type Service struct {
	batches   repository.BatchRepository
	solutions repository.SolutionRepository
	movements repository.MovementRepository
	logger    *zap.Logger
}

// NewService wires an export service.
func NewService(batches repository.BatchRepository, solutions repository.SolutionRepository, movements repository.MovementRepository, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{batches: batches, solutions: solutions, movements: movements, logger: logger}
}

// BatchesCSV renders the batch table as UTF-8 CSV.
func (s *Service) BatchesCSV(ctx context.Context) ([]byte, error) {
	records, err := s.batches.List(ctx, 0)
	if err != nil {
		return nil, err
	}
	rows := make([][]string, 0, len(records))
	for _, rec := range records {
		rows = append(rows, csvfile.MarshalBatchRow(rec))
	}
	return renderCSV(csvfile.BatchColumns(), rows)
}

// SolutionsCSV renders the stock-solution table as UTF-8 CSV.
func (s *Service) SolutionsCSV(ctx context.Context) ([]byte, error) {
	records, err := s.solutions.List(ctx, 0)
	if err != nil {
		return nil, err
	}
	rows := make([][]string, 0, len(records))
	for _, rec := range records {
		rows = append(rows, csvfile.MarshalSolutionRow(rec))
	}
	return renderCSV(csvfile.SolutionColumns(), rows)
}

// MovementsCSV renders the movement log as UTF-8 CSV.
func (s *Service) MovementsCSV(ctx context.Context) ([]byte, error) {
	entries, err := s.movements.List(ctx, 0)
	if err != nil {
		return nil, err
	}
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, csvfile.MarshalMovementRow(e))
	}
	return renderCSV(csvfile.MovementColumns(), rows)
}

// WriteWorkbook writes all three tables into one xlsx workbook, one sheet per
// table, headers on row one.
func (s *Service) WriteWorkbook(ctx context.Context, w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	batches, err := s.batches.List(ctx, 0)
	if err != nil {
		return err
	}
	solutions, err := s.solutions.List(ctx, 0)
	if err != nil {
		return err
	}
	movements, err := s.movements.List(ctx, 0)
	if err != nil {
		return err
	}

	batchRows := make([][]string, 0, len(batches))
	for _, rec := range batches {
		batchRows = append(batchRows, csvfile.MarshalBatchRow(rec))
	}
	solutionRows := make([][]string, 0, len(solutions))
	for _, rec := range solutions {
		solutionRows = append(solutionRows, csvfile.MarshalSolutionRow(rec))
	}
	movementRows := make([][]string, 0, len(movements))
	for _, e := range movements {
		movementRows = append(movementRows, csvfile.MarshalMovementRow(e))
	}

	// The default sheet becomes the batch table; the others are added.
	f.SetSheetName(f.GetSheetName(0), batchSheet)
	if err := fillSheet(f, batchSheet, csvfile.BatchColumns(), batchRows); err != nil {
		return err
	}
	if _, err := f.NewSheet(solutionSheet); err != nil {
		return fmt.Errorf("new sheet %s: %w", solutionSheet, err)
	}
	if err := fillSheet(f, solutionSheet, csvfile.SolutionColumns(), solutionRows); err != nil {
		return err
	}
	if _, err := f.NewSheet(movementSheet); err != nil {
		return fmt.Errorf("new sheet %s: %w", movementSheet, err)
	}
	if err := fillSheet(f, movementSheet, csvfile.MovementColumns(), movementRows); err != nil {
		return err
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	s.logger.Info("workbook exported", zap.Int("batches", len(batches)), zap.Int("solutions", len(solutions)), zap.Int("movements", len(movements)))
	return nil
}

// Tables holds the records read back from an exported workbook.
type Tables struct {
	Batches   []models.BatchRecord
	Solutions []models.StockSolution
	Movements []models.MovementLogEntry
}

// ReadWorkbook parses a workbook produced by WriteWorkbook back into typed
// records. Missing sheets yield empty tables rather than errors so partial
// workbooks can be imported.
func ReadWorkbook(r io.Reader) (Tables, error) {
	var tables Tables

	f, err := excelize.OpenReader(r)
	if err != nil {
		return tables, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	batchRows, err := sheetRows(f, batchSheet, len(csvfile.BatchColumns()))
	if err != nil {
		return tables, err
	}
	for _, row := range batchRows {
		rec, err := csvfile.UnmarshalBatchRow(row)
		if err != nil {
			return tables, fmt.Errorf("sheet %s: %w", batchSheet, err)
		}
		tables.Batches = append(tables.Batches, rec)
	}

	solutionRows, err := sheetRows(f, solutionSheet, len(csvfile.SolutionColumns()))
	if err != nil {
		return tables, err
	}
	for _, row := range solutionRows {
		rec, err := csvfile.UnmarshalSolutionRow(row)
		if err != nil {
			return tables, fmt.Errorf("sheet %s: %w", solutionSheet, err)
		}
		tables.Solutions = append(tables.Solutions, rec)
	}

	movementRows, err := sheetRows(f, movementSheet, len(csvfile.MovementColumns()))
	if err != nil {
		return tables, err
	}
	for _, row := range movementRows {
		entry, err := csvfile.UnmarshalMovementRow(row)
		if err != nil {
			return tables, fmt.Errorf("sheet %s: %w", movementSheet, err)
		}
		tables.Movements = append(tables.Movements, entry)
	}

	return tables, nil
}

// ImportResult counts what an ImportWorkbook call actually changed. Rows
// whose code already exists are skipped, not overwritten.
type ImportResult struct {
	Batches   int `json:"batches"`
	Solutions int `json:"solutions"`
	Movements int `json:"movements"`
	Skipped   int `json:"skipped"`
}

// ImportWorkbook loads a previously exported workbook back into the stores.
func (s *Service) ImportWorkbook(ctx context.Context, r io.Reader) (ImportResult, error) {
	var res ImportResult

	tables, err := ReadWorkbook(r)
	if err != nil {
		return res, err
	}

	for _, rec := range tables.Batches {
		switch err := s.batches.Append(ctx, rec); {
		case err == nil:
			res.Batches++
		case errors.Is(err, repository.ErrDuplicateCode):
			res.Skipped++
		default:
			return res, fmt.Errorf("import batch %s: %w", rec.Code, err)
		}
	}

	for _, rec := range tables.Solutions {
		switch err := s.solutions.Append(ctx, rec); {
		case err == nil:
			res.Solutions++
		case errors.Is(err, repository.ErrDuplicateCode):
			res.Skipped++
		default:
			return res, fmt.Errorf("import solution %s: %w", rec.SolutionCode, err)
		}
	}

	// The movement log is append-only with unique IDs, so rows already in
	// the log are skipped the same way duplicate codes are.
	existing, err := s.movements.List(ctx, 0)
	if err != nil {
		return res, fmt.Errorf("list movements: %w", err)
	}
	known := make(map[uuid.UUID]struct{}, len(existing))
	for _, entry := range existing {
		known[entry.ID] = struct{}{}
	}

	for _, entry := range tables.Movements {
		if _, ok := known[entry.ID]; ok {
			res.Skipped++
			continue
		}
		if err := s.movements.Append(ctx, entry); err != nil {
			return res, fmt.Errorf("import movement %s: %w", entry.ID, err)
		}
		known[entry.ID] = struct{}{}
		res.Movements++
	}

	s.logger.Info("workbook imported",
		zap.Int("batches", res.Batches),
		zap.Int("solutions", res.Solutions),
		zap.Int("movements", res.Movements),
		zap.Int("skipped", res.Skipped))
	return res, nil
}

func fillSheet(f *excelize.File, sheet string, columns []string, rows [][]string) error {
	header := make([]interface{}, len(columns))
	for i, col := range columns {
		header[i] = col
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("write header of %s: %w", sheet, err)
	}
	for i, row := range rows {
		cells := make([]interface{}, len(row))
		for j, cell := range row {
			cells[j] = cell
		}
		addr, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("cell address: %w", err)
		}
		if err := f.SetSheetRow(sheet, addr, &cells); err != nil {
			return fmt.Errorf("write row of %s: %w", sheet, err)
		}
	}
	return nil
}

func sheetRows(f *excelize.File, sheet string, width int) ([][]string, error) {
	idx, err := f.GetSheetIndex(sheet)
	if err != nil || idx < 0 {
		return nil, nil
	}
	raw, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheet, err)
	}
	var rows [][]string
	for i, row := range raw {
		if i == 0 {
			continue // header
		}
		// GetRows trims trailing empty cells; pad back to the table width.
		padded := make([]string, width)
		copy(padded, row)
		rows = append(rows, padded)
	}
	return rows, nil
}

func renderCSV(columns []string, rows [][]string) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(columns); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}
