package csvfile

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/JASIELAB/CULTUREMEDIA/internal/domain/models"
)

var movementSpec = tableSpec{
	file: movementFile,
	columns: []string{
		"ID", "Timestamp", "Tipo", "Código", "Cantidad", "Detalles",
	},
	optional: map[string]bool{"ID": true},
	aliases: map[string]string{
		"Codigo": "Código",
	},
}

// MovementColumns returns the canonical movement log header.
func MovementColumns() []string {
	cols := make([]string, len(movementSpec.columns))
	copy(cols, movementSpec.columns)
	return cols
}

// MarshalMovementRow renders an audit entry as canonical column values.
func MarshalMovementRow(e models.MovementLogEntry) []string {
	return []string{
		e.ID.String(),
		e.Timestamp.Format(time.RFC3339),
		string(e.Kind),
		e.ReferencedCode,
		e.Quantity.String(),
		e.Details,
	}
}

// UnmarshalMovementRow parses canonical column values back into an entry.
// Legacy files without an ID column get a fresh identifier assigned.
func UnmarshalMovementRow(row []string) (models.MovementLogEntry, error) {
	var e models.MovementLogEntry
	if len(row) != len(movementSpec.columns) {
		return e, fmt.Errorf("movement row has %d columns, want %d", len(row), len(movementSpec.columns))
	}

	var err error
	if row[0] == "" {
		e.ID = uuid.New()
	} else if e.ID, err = uuid.Parse(row[0]); err != nil {
		return e, fmt.Errorf("column ID: %w", err)
	}
	if e.Timestamp, err = time.Parse(time.RFC3339, row[1]); err != nil {
		return e, fmt.Errorf("column Timestamp: %w", err)
	}
	e.Kind = models.MovementKind(row[2])
	e.ReferencedCode = row[3]
	if e.Quantity, err = parseDecimal(row[4]); err != nil {
		return e, fmt.Errorf("column Cantidad: %w", err)
	}
	e.Details = row[5]
	return e, nil
}

type movementRepository struct {
	store *Store
}

func (r *movementRepository) all() ([]models.MovementLogEntry, error) {
	rows, err := r.store.load(movementSpec)
	if err != nil {
		return nil, err
	}
	entries := make([]models.MovementLogEntry, 0, len(rows))
	for _, row := range rows {
		entry, err := UnmarshalMovementRow(row)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func (r *movementRepository) Append(_ context.Context, entry models.MovementLogEntry) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	entries, err := r.all()
	if err != nil {
		return err
	}
	entries = append(entries, entry)

	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, MarshalMovementRow(e))
	}
	return r.store.save(movementSpec, rows)
}

func (r *movementRepository) List(_ context.Context, limit int) ([]models.MovementLogEntry, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	entries, err := r.all()
	if err != nil {
		return nil, err
	}
	return tail(entries, limit), nil
}

func (r *movementRepository) ByDateRange(_ context.Context, from, to time.Time) ([]models.MovementLogEntry, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	entries, err := r.all()
	if err != nil {
		return nil, err
	}
	var filtered []models.MovementLogEntry
	for _, e := range entries {
		if e.Timestamp.Before(from) || e.Timestamp.After(to) {
			continue
		}
		filtered = append(filtered, e)
	}
	return filtered, nil
}
