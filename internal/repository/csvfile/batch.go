package csvfile

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/JASIELAB/CULTUREMEDIA/internal/domain/models"
	"github.com/JASIELAB/CULTUREMEDIA/internal/repository"
)

const dateLayout = "2006-01-02"

var batchSpec = tableSpec{
	file: batchFile,
	columns: []string{
		"Código", "Año", "Receta", "Solución", "Semana", "Día", "Preparación",
		"Frascos", "pH_Ajustado", "pH_Final", "CE_Final", "Volumen_mL", "Hormonas", "Fecha",
	},
	optional: map[string]bool{"Volumen_mL": true, "Hormonas": true},
	aliases: map[string]string{
		"Codigo":      "Código",
		"Ano":         "Año",
		"Solucion":    "Solución",
		"Dia":         "Día",
		"Preparacion": "Preparación",
		"No_Frascos":  "Frascos",
		"CE":          "CE_Final",
		"pH_Aj":       "pH_Ajustado",
	},
}

// BatchColumns returns the canonical batch table header, shared with the
// spreadsheet exporter.
func BatchColumns() []string {
	cols := make([]string, len(batchSpec.columns))
	copy(cols, batchSpec.columns)
	return cols
}

// MarshalBatchRow renders a record as canonical column values.
func MarshalBatchRow(b models.BatchRecord) []string {
	return []string{
		b.Code,
		strconv.Itoa(b.Year),
		b.RecipeName,
		b.SolutionCode,
		strconv.Itoa(b.Week),
		strconv.Itoa(b.Day),
		strconv.Itoa(b.PreparationNumber),
		strconv.Itoa(b.VesselCount),
		b.AdjustedPH.String(),
		b.FinalPH.String(),
		b.FinalConductivity.String(),
		strconv.Itoa(b.VolumeML),
		b.Hormones,
		b.RegistrationDate.Format(dateLayout),
	}
}

// UnmarshalBatchRow parses canonical column values back into a record.
func UnmarshalBatchRow(row []string) (models.BatchRecord, error) {
	var b models.BatchRecord
	if len(row) != len(batchSpec.columns) {
		return b, fmt.Errorf("batch row has %d columns, want %d", len(row), len(batchSpec.columns))
	}

	b.Code = row[0]
	b.RecipeName = row[2]
	b.SolutionCode = row[3]
	b.Hormones = row[12]

	var err error
	if b.Year, err = strconv.Atoi(row[1]); err != nil {
		return b, fmt.Errorf("column Año: %w", err)
	}
	if b.Week, err = strconv.Atoi(row[4]); err != nil {
		return b, fmt.Errorf("column Semana: %w", err)
	}
	if b.Day, err = strconv.Atoi(row[5]); err != nil {
		return b, fmt.Errorf("column Día: %w", err)
	}
	if b.PreparationNumber, err = strconv.Atoi(row[6]); err != nil {
		return b, fmt.Errorf("column Preparación: %w", err)
	}
	if b.VesselCount, err = strconv.Atoi(row[7]); err != nil {
		return b, fmt.Errorf("column Frascos: %w", err)
	}
	if b.AdjustedPH, err = parseDecimal(row[8]); err != nil {
		return b, fmt.Errorf("column pH_Ajustado: %w", err)
	}
	if b.FinalPH, err = parseDecimal(row[9]); err != nil {
		return b, fmt.Errorf("column pH_Final: %w", err)
	}
	if b.FinalConductivity, err = parseDecimal(row[10]); err != nil {
		return b, fmt.Errorf("column CE_Final: %w", err)
	}
	if row[11] != "" {
		if b.VolumeML, err = strconv.Atoi(row[11]); err != nil {
			return b, fmt.Errorf("column Volumen_mL: %w", err)
		}
	}
	if b.RegistrationDate, err = time.Parse(dateLayout, row[13]); err != nil {
		return b, fmt.Errorf("column Fecha: %w", err)
	}
	return b, nil
}

func parseDecimal(value string) (decimal.Decimal, error) {
	if value == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(value)
}

type batchRepository struct {
	store *Store
}

func (r *batchRepository) all() ([]models.BatchRecord, error) {
	rows, err := r.store.load(batchSpec)
	if err != nil {
		return nil, err
	}
	records := make([]models.BatchRecord, 0, len(rows))
	for _, row := range rows {
		rec, err := UnmarshalBatchRow(row)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

func (r *batchRepository) persist(records []models.BatchRecord) error {
	rows := make([][]string, 0, len(records))
	for _, rec := range records {
		rows = append(rows, MarshalBatchRow(rec))
	}
	return r.store.save(batchSpec, rows)
}

func (r *batchRepository) Get(_ context.Context, code string) (models.BatchRecord, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	records, err := r.all()
	if err != nil {
		return models.BatchRecord{}, err
	}
	for _, rec := range records {
		if rec.Code == code {
			return rec, nil
		}
	}
	return models.BatchRecord{}, fmt.Errorf("batch %s: %w", code, repository.ErrNotFound)
}

func (r *batchRepository) List(_ context.Context, limit int) ([]models.BatchRecord, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	records, err := r.all()
	if err != nil {
		return nil, err
	}
	return tail(records, limit), nil
}

func (r *batchRepository) ByDateRange(_ context.Context, from, to time.Time) ([]models.BatchRecord, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	records, err := r.all()
	if err != nil {
		return nil, err
	}
	var filtered []models.BatchRecord
	for _, rec := range records {
		if rec.RegistrationDate.Before(from) || rec.RegistrationDate.After(to) {
			continue
		}
		filtered = append(filtered, rec)
	}
	return filtered, nil
}

func (r *batchRepository) Append(_ context.Context, record models.BatchRecord) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	records, err := r.all()
	if err != nil {
		return err
	}
	for _, rec := range records {
		if rec.Code == record.Code {
			return fmt.Errorf("batch %s: %w", record.Code, repository.ErrDuplicateCode)
		}
	}
	return r.persist(append(records, record))
}

func (r *batchRepository) Update(_ context.Context, code string, fn func(*models.BatchRecord) error) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	records, err := r.all()
	if err != nil {
		return err
	}
	for i := range records {
		if records[i].Code != code {
			continue
		}
		if err := fn(&records[i]); err != nil {
			return err
		}
		return r.persist(records)
	}
	return fmt.Errorf("batch %s: %w", code, repository.ErrNotFound)
}

func (r *batchRepository) Delete(_ context.Context, code string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	records, err := r.all()
	if err != nil {
		return err
	}
	for i := range records {
		if records[i].Code == code {
			return r.persist(append(records[:i], records[i+1:]...))
		}
	}
	return fmt.Errorf("batch %s: %w", code, repository.ErrNotFound)
}
