package csvfile

import (
	"context"
	"fmt"
	"time"

	"github.com/JASIELAB/CULTUREMEDIA/internal/domain/models"
	"github.com/JASIELAB/CULTUREMEDIA/internal/repository"
)

var solutionSpec = tableSpec{
	file: solutionFile,
	columns: []string{
		"Fecha", "Cantidad", "Unidad", "Código_Solución", "Responsable", "Regulador", "Observaciones",
	},
	optional: map[string]bool{"Unidad": true},
	aliases: map[string]string{
		"Codigo_Solucion": "Código_Solución",
		"Código":          "Código_Solución",
		"Obs":             "Observaciones",
	},
}

// SolutionColumns returns the canonical stock-solution table header.
func SolutionColumns() []string {
	cols := make([]string, len(solutionSpec.columns))
	copy(cols, solutionSpec.columns)
	return cols
}

// MarshalSolutionRow renders a record as canonical column values.
func MarshalSolutionRow(s models.StockSolution) []string {
	return []string{
		s.PreparationDate.Format(dateLayout),
		s.Quantity.String(),
		s.Unit,
		s.SolutionCode,
		s.Responsible,
		s.RegulatorType,
		s.Notes,
	}
}

// UnmarshalSolutionRow parses canonical column values back into a record.
func UnmarshalSolutionRow(row []string) (models.StockSolution, error) {
	var s models.StockSolution
	if len(row) != len(solutionSpec.columns) {
		return s, fmt.Errorf("solution row has %d columns, want %d", len(row), len(solutionSpec.columns))
	}

	var err error
	if s.PreparationDate, err = time.Parse(dateLayout, row[0]); err != nil {
		return s, fmt.Errorf("column Fecha: %w", err)
	}
	if s.Quantity, err = parseDecimal(row[1]); err != nil {
		return s, fmt.Errorf("column Cantidad: %w", err)
	}
	s.Unit = row[2]
	s.SolutionCode = row[3]
	s.Responsible = row[4]
	s.RegulatorType = row[5]
	s.Notes = row[6]
	return s, nil
}

type solutionRepository struct {
	store *Store
}

func (r *solutionRepository) all() ([]models.StockSolution, error) {
	rows, err := r.store.load(solutionSpec)
	if err != nil {
		return nil, err
	}
	records := make([]models.StockSolution, 0, len(rows))
	for _, row := range rows {
		rec, err := UnmarshalSolutionRow(row)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

func (r *solutionRepository) persist(records []models.StockSolution) error {
	rows := make([][]string, 0, len(records))
	for _, rec := range records {
		rows = append(rows, MarshalSolutionRow(rec))
	}
	return r.store.save(solutionSpec, rows)
}

func (r *solutionRepository) Get(_ context.Context, code string) (models.StockSolution, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	records, err := r.all()
	if err != nil {
		return models.StockSolution{}, err
	}
	for _, rec := range records {
		if rec.SolutionCode == code {
			return rec, nil
		}
	}
	return models.StockSolution{}, fmt.Errorf("solution %s: %w", code, repository.ErrNotFound)
}

func (r *solutionRepository) List(_ context.Context, limit int) ([]models.StockSolution, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	records, err := r.all()
	if err != nil {
		return nil, err
	}
	return tail(records, limit), nil
}

func (r *solutionRepository) Append(_ context.Context, record models.StockSolution) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	records, err := r.all()
	if err != nil {
		return err
	}
	for _, rec := range records {
		if rec.SolutionCode == record.SolutionCode {
			return fmt.Errorf("solution %s: %w", record.SolutionCode, repository.ErrDuplicateCode)
		}
	}
	return r.persist(append(records, record))
}

func (r *solutionRepository) Update(_ context.Context, code string, fn func(*models.StockSolution) error) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	records, err := r.all()
	if err != nil {
		return err
	}
	for i := range records {
		if records[i].SolutionCode != code {
			continue
		}
		if err := fn(&records[i]); err != nil {
			return err
		}
		return r.persist(records)
	}
	return fmt.Errorf("solution %s: %w", code, repository.ErrNotFound)
}

func (r *solutionRepository) Delete(_ context.Context, code string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	records, err := r.all()
	if err != nil {
		return err
	}
	for i := range records {
		if records[i].SolutionCode == code {
			return r.persist(append(records[:i], records[i+1:]...))
		}
	}
	return fmt.Errorf("solution %s: %w", code, repository.ErrNotFound)
}
