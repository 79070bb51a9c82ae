// Package sheets serves the recipe reference tables from a Google Sheets
// workbook, one sheet per medium type. The workbook is owned by the breeding
// program, not by this system; access is read-only.
package sheets

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/JASIELAB/CULTUREMEDIA/internal/config"
	"github.com/JASIELAB/CULTUREMEDIA/internal/domain/models"
	"github.com/JASIELAB/CULTUREMEDIA/internal/repository"
)

// RecipeSheetRepository implements repository.RecipeSource using the official
// Google Sheets API.
type RecipeSheetRepository struct {
	service       *sheetsapi.Service
	spreadsheetID string
	headerOffset  int
	logger        *zap.Logger
}

// NewRecipeSheetRepository builds a Google Sheets backed recipe source.
func NewRecipeSheetRepository(ctx context.Context, cfg config.RecipesConfig, logger *zap.Logger) (repository.RecipeSource, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	service, err := sheetsapi.NewService(ctx, option.WithCredentialsFile(cfg.CredentialsPath), option.WithScopes(sheetsapi.SpreadsheetsReadonlyScope))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize sheets client: %w", err)
	}

	return &RecipeSheetRepository{
		service:       service,
		spreadsheetID: cfg.SpreadsheetID,
		headerOffset:  cfg.HeaderOffset,
		logger:        logger,
	}, nil
}

// MediumTypes lists the sheet titles, one per medium formulation.
func (r *RecipeSheetRepository) MediumTypes(ctx context.Context) ([]string, error) {
	resp, err := r.service.Spreadsheets.Get(r.spreadsheetID).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read spreadsheet metadata: %w", err)
	}

	titles := make([]string, 0, len(resp.Sheets))
	for _, sheet := range resp.Sheets {
		if sheet.Properties != nil {
			titles = append(titles, sheet.Properties.Title)
		}
	}
	return titles, nil
}

// Lines fetches the formulation rows of one medium type. Rows before the
// configured header offset are noise and skipped; the first three columns are
// taken as component, formula and concentration.
func (r *RecipeSheetRepository) Lines(ctx context.Context, mediumType string) ([]models.RecipeLine, error) {
	readRange := fmt.Sprintf("'%s'!A:C", mediumType)
	resp, err := r.service.Spreadsheets.Values.Get(r.spreadsheetID, readRange).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read range %s: %w", readRange, err)
	}

	var lines []models.RecipeLine
	for i, row := range resp.Values {
		if i < r.headerOffset || len(row) == 0 {
			continue
		}
		lines = append(lines, recipeLineFromCells(row))
	}

	r.logger.Debug("recipe sheet loaded", zap.String("medium", mediumType), zap.Int("lines", len(lines)))
	return lines, nil
}

func recipeLineFromCells(row []interface{}) models.RecipeLine {
	cell := func(i int) string {
		if i < len(row) {
			return fmt.Sprint(row[i])
		}
		return ""
	}
	return models.RecipeLine{
		Component:     cell(0),
		Formula:       cell(1),
		Concentration: cell(2),
	}
}
