package export

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/JASIELAB/CULTUREMEDIA/internal/domain/models"
	"github.com/JASIELAB/CULTUREMEDIA/internal/repository/csvfile"
)

func seededService(t *testing.T) (*Service, models.BatchRecord, models.StockSolution, models.MovementLogEntry) {
	t.Helper()
	store, err := csvfile.Open(t.TempDir(), nil)
	require.NoError(t, err)
	ctx := context.Background()

	batch := models.BatchRecord{
		Code:              "25MS-073-1",
		Year:              2025,
		RecipeName:        "MS",
		SolutionCode:      "BAP1",
		Week:              7,
		Day:               3,
		PreparationNumber: 1,
		VesselCount:       40,
		VolumeML:          1500,
		Hormones:          "BAP 1, ANA 0.1",
		AdjustedPH:        decimal.RequireFromString("5.8"),
		FinalPH:           decimal.RequireFromString("5.75"),
		FinalConductivity: decimal.RequireFromString("4.21"),
		RegistrationDate:  time.Date(2025, 2, 12, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, store.Batches().Append(ctx, batch))

	solution := models.StockSolution{
		SolutionCode:    "BAP-2025-04",
		PreparationDate: time.Date(2025, 4, 2, 0, 0, 0, 0, time.UTC),
		Quantity:        decimal.RequireFromString("380.5"),
		Unit:            "mL",
		Responsible:     "L. Navarro",
		RegulatorType:   "Citoquinina",
		Notes:           "frasco ámbar",
	}
	require.NoError(t, store.Solutions().Append(ctx, solution))

	movement := models.MovementLogEntry{
		ID:             uuid.New(),
		Timestamp:      time.Date(2025, 2, 12, 10, 30, 0, 0, time.UTC),
		Kind:           models.MovementEntry,
		ReferencedCode: "25MS-073-1",
		Quantity:       decimal.NewFromInt(40),
		Details:        "registro de lote MS",
	}
	require.NoError(t, store.Movements().Append(ctx, movement))

	return NewService(store.Batches(), store.Solutions(), store.Movements(), nil), batch, solution, movement
}

func TestBatchesCSVHasCanonicalHeader(t *testing.T) {
	svc, batch, _, _ := seededService(t)

	data, err := svc.BatchesCSV(context.Background())
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, strings.Join(csvfile.BatchColumns(), ","), lines[0])
	assert.Contains(t, lines[1], batch.Code)
	assert.Contains(t, lines[1], "4.21")
}

func TestWorkbookRoundTrip(t *testing.T) {
	svc, batch, solution, movement := seededService(t)

	var buf bytes.Buffer
	require.NoError(t, svc.WriteWorkbook(context.Background(), &buf))

	tables, err := ReadWorkbook(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)

	require.Len(t, tables.Batches, 1)
	got := tables.Batches[0]
	assert.Equal(t, batch.Code, got.Code)
	assert.Equal(t, batch.Year, got.Year)
	assert.Equal(t, batch.Week, got.Week)
	assert.Equal(t, batch.Day, got.Day)
	assert.Equal(t, batch.VesselCount, got.VesselCount)
	assert.Equal(t, batch.VolumeML, got.VolumeML)
	assert.Equal(t, batch.Hormones, got.Hormones)
	assert.True(t, batch.AdjustedPH.Equal(got.AdjustedPH))
	assert.True(t, batch.FinalConductivity.Equal(got.FinalConductivity))
	assert.True(t, batch.RegistrationDate.Equal(got.RegistrationDate))

	require.Len(t, tables.Solutions, 1)
	gotSol := tables.Solutions[0]
	assert.Equal(t, solution.SolutionCode, gotSol.SolutionCode)
	assert.True(t, solution.Quantity.Equal(gotSol.Quantity))
	assert.Equal(t, solution.Unit, gotSol.Unit)
	assert.Equal(t, solution.Notes, gotSol.Notes)

	require.Len(t, tables.Movements, 1)
	gotMove := tables.Movements[0]
	assert.Equal(t, movement.ID, gotMove.ID)
	assert.Equal(t, movement.Kind, gotMove.Kind)
	assert.True(t, movement.Quantity.Equal(gotMove.Quantity))
	assert.True(t, movement.Timestamp.Equal(gotMove.Timestamp))
}

func TestImportWorkbookSkipsKnownMovementRows(t *testing.T) {
	svc, _, _, movement := seededService(t)
	ctx := context.Background()

	var buf bytes.Buffer
	require.NoError(t, svc.WriteWorkbook(ctx, &buf))

	res, err := svc.ImportWorkbook(ctx, bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, ImportResult{Skipped: 3}, res)

	entries, err := svc.movements.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, movement.ID, entries[0].ID)
}

func TestImportWorkbookLoadsFreshStore(t *testing.T) {
	svc, batch, _, movement := seededService(t)
	ctx := context.Background()

	var buf bytes.Buffer
	require.NoError(t, svc.WriteWorkbook(ctx, &buf))

	store, err := csvfile.Open(t.TempDir(), nil)
	require.NoError(t, err)
	fresh := NewService(store.Batches(), store.Solutions(), store.Movements(), nil)

	res, err := fresh.ImportWorkbook(ctx, bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, ImportResult{Batches: 1, Solutions: 1, Movements: 1}, res)

	got, err := store.Batches().Get(ctx, batch.Code)
	require.NoError(t, err)
	assert.Equal(t, batch.VesselCount, got.VesselCount)

	entries, err := store.Movements().List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, movement.ID, entries[0].ID)
}

func TestReadWorkbookMissingSheetsYieldEmptyTables(t *testing.T) {
	f := excelize.NewFile()
	f.SetSheetName(f.GetSheetName(0), "Lotes")
	header := make([]interface{}, 0, len(csvfile.BatchColumns()))
	for _, col := range csvfile.BatchColumns() {
		header = append(header, col)
	}
	require.NoError(t, f.SetSheetRow("Lotes", "A1", &header))

	var buf bytes.Buffer
	_, err := f.WriteTo(&buf)
	require.NoError(t, err)

	tables, err := ReadWorkbook(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Empty(t, tables.Batches)
	assert.Empty(t, tables.Solutions)
	assert.Empty(t, tables.Movements)
}
