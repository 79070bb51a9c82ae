// Package csvfile implements the repository interfaces on top of flat CSV
// files, one table per file. Every mutation reads the full table, rewrites it
// in memory and replaces the file; a single writer lock serializes mutations.
package csvfile

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/JASIELAB/CULTUREMEDIA/internal/repository"
)

const (
	batchFile    = "lotes.csv"
	solutionFile = "soluciones.csv"
	movementFile = "movimientos.csv"
)

// Store owns the data directory and the write lock shared by all tables.
type Store struct {
	dir    string
	mu     sync.Mutex
	logger *zap.Logger
}

// Open prepares the data directory and returns a Store ready for use.
func Open(dir string, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if dir == "" {
		return nil, errors.New("data directory must not be empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir %s: %w", dir, err)
	}
	return &Store{dir: dir, logger: logger}, nil
}

// Batches returns the batch table repository.
func (s *Store) Batches() repository.BatchRepository {
	return &batchRepository{store: s}
}

// Solutions returns the stock-solution table repository.
func (s *Store) Solutions() repository.SolutionRepository {
	return &solutionRepository{store: s}
}

// Movements returns the append-only movement log repository.
func (s *Store) Movements() repository.MovementRepository {
	return &movementRepository{store: s}
}

// tableSpec describes one CSV table: its canonical column set, columns that
// may be absent in legacy files, and legacy header names mapped onto the
// canonical ones at load time.
type tableSpec struct {
	file     string
	columns  []string
	optional map[string]bool
	aliases  map[string]string
}

func (t tableSpec) canonicalName(header string) string {
	name := strings.TrimSpace(header)
	if mapped, ok := t.aliases[name]; ok {
		return mapped
	}
	return name
}

// load reads the table and returns its rows normalized to the canonical
// column order. A missing file is an empty table. Missing required columns
// are rejected explicitly rather than silently reindexed.
func (s *Store) load(spec tableSpec) ([][]string, error) {
	path := filepath.Join(s.dir, spec.file)
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open table %s: %w", spec.file, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("read header of %s: %w", spec.file, err)
	}

	// Map canonical column -> position in this file.
	positions := make(map[string]int, len(header))
	for i, cell := range header {
		positions[spec.canonicalName(cell)] = i
	}
	for _, col := range spec.columns {
		if _, ok := positions[col]; !ok && !spec.optional[col] {
			return nil, fmt.Errorf("table %s: missing required column %q", spec.file, col)
		}
	}

	var rows [][]string
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row of %s: %w", spec.file, err)
		}
		row := make([]string, len(spec.columns))
		for i, col := range spec.columns {
			if pos, ok := positions[col]; ok && pos < len(rec) {
				row[i] = rec[pos]
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// save rewrites the whole table. The file is written to a sibling temp path
// first and renamed over the original so a crash mid-write cannot truncate
// the table.
func (s *Store) save(spec tableSpec, rows [][]string) error {
	path := filepath.Join(s.dir, spec.file)
	tmp := path + ".tmp"

	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create temp table %s: %w", spec.file, err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(spec.columns); err != nil {
		f.Close()
		return fmt.Errorf("write header of %s: %w", spec.file, err)
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			f.Close()
			return fmt.Errorf("write row of %s: %w", spec.file, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return fmt.Errorf("flush table %s: %w", spec.file, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close temp table %s: %w", spec.file, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace table %s: %w", spec.file, err)
	}

	s.logger.Debug("table rewritten", zap.String("file", spec.file), zap.Int("rows", len(rows)))
	return nil
}

func tail[T any](rows []T, limit int) []T {
	if limit <= 0 || limit >= len(rows) {
		return rows
	}
	return rows[len(rows)-limit:]
}
