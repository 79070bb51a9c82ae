package csvfile

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JASIELAB/CULTUREMEDIA/internal/domain/models"
	"github.com/JASIELAB/CULTUREMEDIA/internal/repository"
)

func testBatch(code string, day time.Time) models.BatchRecord {
	return models.BatchRecord{
		Code:              code,
		Year:              2025,
		RecipeName:        "MS",
		SolutionCode:      "BAP1",
		Week:              7,
		Day:               3,
		PreparationNumber: 1,
		VesselCount:       40,
		VolumeML:          1000,
		Hormones:          "BAP 1, ANA 0.1",
		AdjustedPH:        decimal.RequireFromString("5.8"),
		FinalPH:           decimal.RequireFromString("5.7"),
		FinalConductivity: decimal.RequireFromString("4.2"),
		RegistrationDate:  day,
	}
}

func TestBatchAppendGetRoundTrip(t *testing.T) {
	store, err := Open(t.TempDir(), nil)
	require.NoError(t, err)
	repo := store.Batches()
	ctx := context.Background()

	day := time.Date(2025, 2, 12, 0, 0, 0, 0, time.UTC)
	want := testBatch("25MS-073-1", day)
	require.NoError(t, repo.Append(ctx, want))

	got, err := repo.Get(ctx, "25MS-073-1")
	require.NoError(t, err)
	assert.Equal(t, want.Code, got.Code)
	assert.Equal(t, want.VesselCount, got.VesselCount)
	assert.Equal(t, want.Hormones, got.Hormones)
	assert.True(t, want.AdjustedPH.Equal(got.AdjustedPH))
	assert.True(t, want.RegistrationDate.Equal(got.RegistrationDate))
}

func TestBatchDuplicateCodeRejected(t *testing.T) {
	store, err := Open(t.TempDir(), nil)
	require.NoError(t, err)
	repo := store.Batches()
	ctx := context.Background()

	day := time.Date(2025, 2, 12, 0, 0, 0, 0, time.UTC)
	require.NoError(t, repo.Append(ctx, testBatch("25MS-073-1", day)))

	err = repo.Append(ctx, testBatch("25MS-073-1", day))
	assert.ErrorIs(t, err, repository.ErrDuplicateCode)

	rows, err := repo.List(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestBatchUpdateAbortsWithoutWriting(t *testing.T) {
	store, err := Open(t.TempDir(), nil)
	require.NoError(t, err)
	repo := store.Batches()
	ctx := context.Background()

	day := time.Date(2025, 2, 12, 0, 0, 0, 0, time.UTC)
	require.NoError(t, repo.Append(ctx, testBatch("25MS-073-1", day)))

	sentinel := assert.AnError
	err = repo.Update(ctx, "25MS-073-1", func(b *models.BatchRecord) error {
		b.VesselCount = 0
		return sentinel
	})
	assert.ErrorIs(t, err, sentinel)

	got, err := repo.Get(ctx, "25MS-073-1")
	require.NoError(t, err)
	assert.Equal(t, 40, got.VesselCount)
}

func TestBatchDateRangeFilter(t *testing.T) {
	store, err := Open(t.TempDir(), nil)
	require.NoError(t, err)
	repo := store.Batches()
	ctx := context.Background()

	for i, day := range []time.Time{
		time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 2, 10, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
	} {
		b := testBatch("25MS-073-"+string(rune('1'+i)), day)
		b.PreparationNumber = i + 1
		require.NoError(t, repo.Append(ctx, b))
	}

	from := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 2, 28, 0, 0, 0, 0, time.UTC)
	rows, err := repo.ByDateRange(ctx, from, to)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "25MS-073-2", rows[0].Code)
}

func TestBatchListTail(t *testing.T) {
	store, err := Open(t.TempDir(), nil)
	require.NoError(t, err)
	repo := store.Batches()
	ctx := context.Background()

	day := time.Date(2025, 2, 12, 0, 0, 0, 0, time.UTC)
	for i := 1; i <= 5; i++ {
		b := testBatch("", day)
		b.PreparationNumber = i
		b.Code = models.DefaultCodeFormat().BatchCode(2025, "MS", 7, 3, i)
		require.NoError(t, repo.Append(ctx, b))
	}

	rows, err := repo.List(ctx, 2)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "25MS-073-4", rows[0].Code)
	assert.Equal(t, "25MS-073-5", rows[1].Code)
}

func TestBatchLegacyHeadersMapped(t *testing.T) {
	dir := t.TempDir()
	legacy := "Codigo,Ano,Receta,Solucion,Semana,Dia,Preparacion,No_Frascos,pH_Ajustado,pH_Final,CE,Fecha\n" +
		"25MS-073-1,2025,MS,BAP1,7,3,1,40,5.8,5.7,4.2,2025-02-12\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "lotes.csv"), []byte(legacy), 0o644))

	store, err := Open(dir, nil)
	require.NoError(t, err)

	got, err := store.Batches().Get(context.Background(), "25MS-073-1")
	require.NoError(t, err)
	assert.Equal(t, 2025, got.Year)
	assert.Equal(t, 40, got.VesselCount)
	assert.Equal(t, 0, got.VolumeML) // optional column absent, defaulted
	assert.Equal(t, "4.2", got.FinalConductivity.String())
}

func TestBatchMissingRequiredColumnRejected(t *testing.T) {
	dir := t.TempDir()
	broken := "Código,Año,Receta\n25MS-073-1,2025,MS\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "lotes.csv"), []byte(broken), 0o644))

	store, err := Open(dir, nil)
	require.NoError(t, err)

	_, err = store.Batches().List(context.Background(), 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing required column")
}

func TestSolutionLifecycle(t *testing.T) {
	store, err := Open(t.TempDir(), nil)
	require.NoError(t, err)
	repo := store.Solutions()
	ctx := context.Background()

	sol := models.StockSolution{
		SolutionCode:    "BAP-2025-04",
		PreparationDate: time.Date(2025, 4, 2, 0, 0, 0, 0, time.UTC),
		Quantity:        decimal.RequireFromString("500"),
		Unit:            "mL",
		Responsible:     "L. Navarro",
		RegulatorType:   "Citoquinina",
		Notes:           "frasco ámbar",
	}
	require.NoError(t, repo.Append(ctx, sol))
	assert.ErrorIs(t, repo.Append(ctx, sol), repository.ErrDuplicateCode)

	require.NoError(t, repo.Update(ctx, sol.SolutionCode, func(s *models.StockSolution) error {
		s.Quantity = s.Quantity.Sub(decimal.RequireFromString("120"))
		return nil
	}))

	got, err := repo.Get(ctx, sol.SolutionCode)
	require.NoError(t, err)
	assert.Equal(t, "380", got.Quantity.String())

	require.NoError(t, repo.Delete(ctx, sol.SolutionCode))
	_, err = repo.Get(ctx, sol.SolutionCode)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestMovementAppendAndRange(t *testing.T) {
	store, err := Open(t.TempDir(), nil)
	require.NoError(t, err)
	repo := store.Movements()
	ctx := context.Background()

	base := time.Date(2025, 2, 12, 10, 0, 0, 0, time.UTC)
	kinds := []models.MovementKind{models.MovementEntry, models.MovementDisposalConsumption, models.MovementReturn}
	for i, kind := range kinds {
		entry := models.MovementLogEntry{
			ID:             uuid.New(),
			Timestamp:      base.Add(time.Duration(i) * time.Hour),
			Kind:           kind,
			ReferencedCode: "25MS-073-1",
			Quantity:       decimal.NewFromInt(int64(10 + i)),
			Details:        "test",
		}
		require.NoError(t, repo.Append(ctx, entry))
	}

	all, err := repo.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, models.MovementEntry, all[0].Kind)
	assert.Equal(t, models.MovementReturn, all[2].Kind)

	mid, err := repo.ByDateRange(ctx, base.Add(30*time.Minute), base.Add(90*time.Minute))
	require.NoError(t, err)
	require.Len(t, mid, 1)
	assert.Equal(t, models.MovementDisposalConsumption, mid[0].Kind)
}

func TestReopenKeepsRows(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	day := time.Date(2025, 2, 12, 0, 0, 0, 0, time.UTC)

	store, err := Open(dir, nil)
	require.NoError(t, err)
	require.NoError(t, store.Batches().Append(ctx, testBatch("25MS-073-1", day)))

	reopened, err := Open(dir, nil)
	require.NoError(t, err)
	rows, err := reopened.Batches().List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "25MS-073-1", rows[0].Code)
}
