// Package xlsxfile serves the recipe reference tables from a local Excel
// workbook, for labs that keep the formulation file on the bench machine
// instead of in Google Sheets. Same slicing contract as the sheets source.
package xlsxfile

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/JASIELAB/CULTUREMEDIA/internal/domain/models"
	"github.com/JASIELAB/CULTUREMEDIA/internal/repository"
)

// RecipeWorkbook reads one sheet per medium type from an xlsx file.
type RecipeWorkbook struct {
	path         string
	headerOffset int
	logger       *zap.Logger
}

// NewRecipeWorkbook validates that the workbook is readable and returns the
// recipe source. The file is reopened per read so edits on disk are picked up
// without a restart.
func NewRecipeWorkbook(path string, headerOffset int, logger *zap.Logger) (repository.RecipeSource, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open recipe workbook %s: %w", path, err)
	}
	_ = f.Close()

	return &RecipeWorkbook{path: path, headerOffset: headerOffset, logger: logger}, nil
}

// MediumTypes lists the workbook sheet names.
func (r *RecipeWorkbook) MediumTypes(_ context.Context) ([]string, error) {
	f, err := excelize.OpenFile(r.path)
	if err != nil {
		return nil, fmt.Errorf("open recipe workbook %s: %w", r.path, err)
	}
	defer f.Close()

	return f.GetSheetList(), nil
}

// Lines returns the formulation rows of one medium type, skipping the header
// offset and taking the first three columns.
func (r *RecipeWorkbook) Lines(_ context.Context, mediumType string) ([]models.RecipeLine, error) {
	f, err := excelize.OpenFile(r.path)
	if err != nil {
		return nil, fmt.Errorf("open recipe workbook %s: %w", r.path, err)
	}
	defer f.Close()

	rows, err := f.GetRows(mediumType)
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", mediumType, err)
	}

	cell := func(row []string, i int) string {
		if i < len(row) {
			return row[i]
		}
		return ""
	}

	var lines []models.RecipeLine
	for i, row := range rows {
		if i < r.headerOffset || len(row) == 0 {
			continue
		}
		lines = append(lines, models.RecipeLine{
			Component:     cell(row, 0),
			Formula:       cell(row, 1),
			Concentration: cell(row, 2),
		})
	}

	r.logger.Debug("recipe workbook loaded", zap.String("medium", mediumType), zap.Int("lines", len(lines)))
	return lines, nil
}
