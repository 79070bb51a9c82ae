// Package repository defines the persistence contracts for the inventory
// tables. Callers never touch the storage format directly; backends are
// selected at startup (flat CSV files or MongoDB).
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/JASIELAB/CULTUREMEDIA/internal/domain/models"
)

// ErrNotFound indicates the referenced code has no row in the table.
var ErrNotFound = errors.New("record not found")

// ErrDuplicateCode indicates an insert would collide with an existing key.
// Codes are candidate keys: a collision is surfaced, never overwritten.
var ErrDuplicateCode = errors.New("duplicate code")

// BatchRepository persists BatchRecord rows keyed by their derived code.
type BatchRepository interface {
	Get(ctx context.Context, code string) (models.BatchRecord, error)
	// List returns the most recent rows up to limit; limit <= 0 means all.
	List(ctx context.Context, limit int) ([]models.BatchRecord, error)
	ByDateRange(ctx context.Context, from, to time.Time) ([]models.BatchRecord, error)
	Append(ctx context.Context, record models.BatchRecord) error
	// Update applies fn to the stored row under the store's write lock and
	// persists the result. fn returning an error aborts without writing.
	Update(ctx context.Context, code string, fn func(*models.BatchRecord) error) error
	Delete(ctx context.Context, code string) error
}

// SolutionRepository persists StockSolution rows keyed by solution code.
type SolutionRepository interface {
	Get(ctx context.Context, code string) (models.StockSolution, error)
	List(ctx context.Context, limit int) ([]models.StockSolution, error)
	Append(ctx context.Context, record models.StockSolution) error
	Update(ctx context.Context, code string, fn func(*models.StockSolution) error) error
	Delete(ctx context.Context, code string) error
}

// MovementRepository persists the append-only audit log. No update or delete:
// movement rows are write-once.
type MovementRepository interface {
	Append(ctx context.Context, entry models.MovementLogEntry) error
	List(ctx context.Context, limit int) ([]models.MovementLogEntry, error)
	ByDateRange(ctx context.Context, from, to time.Time) ([]models.MovementLogEntry, error)
}

// RecipeSource serves the read-only formulation reference sheets.
type RecipeSource interface {
	MediumTypes(ctx context.Context) ([]string, error)
	Lines(ctx context.Context, mediumType string) ([]models.RecipeLine, error)
}
