package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/JASIELAB/CULTUREMEDIA/internal/domain/models"
	"github.com/JASIELAB/CULTUREMEDIA/internal/repository/csvfile"
	"github.com/JASIELAB/CULTUREMEDIA/internal/server/handlers"
	"github.com/JASIELAB/CULTUREMEDIA/internal/server/router"
	exportsvc "github.com/JASIELAB/CULTUREMEDIA/internal/service/export"
	inventorysvc "github.com/JASIELAB/CULTUREMEDIA/internal/service/inventory"
	reportingsvc "github.com/JASIELAB/CULTUREMEDIA/internal/service/reporting"
)

func newTestEngine(t *testing.T) http.Handler {
	t.Helper()

	store, err := csvfile.Open(t.TempDir(), zap.NewNop())
	require.NoError(t, err)

	inventory := inventorysvc.NewService(store.Batches(), store.Solutions(), store.Movements(), models.DefaultCodeFormat(), nil, zap.NewNop())
	exports := exportsvc.NewService(store.Batches(), store.Solutions(), store.Movements(), zap.NewNop())
	reports := reportingsvc.NewService(store.Movements(), store.Batches(), zap.NewNop())

	return router.New(router.Handlers{
		Batches:   handlers.NewBatchHandler(inventory, zap.NewNop()),
		Solutions: handlers.NewSolutionHandler(inventory, zap.NewNop()),
		Recipes:   handlers.NewRecipeHandler(nil, zap.NewNop()),
		Exports:   handlers.NewExportHandler(exports, reports, zap.NewNop()),
	}, zap.NewNop())
}

func doJSON(t *testing.T, engine http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func registerBody() map[string]interface{} {
	return map[string]interface{}{
		"year":              2025,
		"recipeName":        "MS",
		"week":              7,
		"day":               3,
		"preparationNumber": 1,
		"vesselCount":       40,
		"adjustedPH":        "5.8",
		"finalPH":           "5.75",
		"finalConductivity": "4.1",
		"registrationDate":  "2025-02-12",
	}
}

func TestRegisterBatchEndpoint(t *testing.T) {
	engine := newTestEngine(t)

	w := doJSON(t, engine, http.MethodPost, "/batches", registerBody())
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created models.BatchRecord
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, "25MS-073-1", created.Code)
	assert.Equal(t, 40, created.VesselCount)

	w = doJSON(t, engine, http.MethodGet, "/batches/25MS-073-1", nil)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestRegisterDuplicateCodeConflicts(t *testing.T) {
	engine := newTestEngine(t)

	w := doJSON(t, engine, http.MethodPost, "/batches", registerBody())
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, engine, http.MethodPost, "/batches", registerBody())
	assert.Equal(t, http.StatusConflict, w.Code, w.Body.String())
}

func TestRegisterBatchValidationFailures(t *testing.T) {
	engine := newTestEngine(t)

	body := registerBody()
	body["week"] = 53
	w := doJSON(t, engine, http.MethodPost, "/batches", body)
	assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())

	w = doJSON(t, engine, http.MethodPost, "/batches", "not an object")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDisposeAndReturnEndpoints(t *testing.T) {
	engine := newTestEngine(t)

	w := doJSON(t, engine, http.MethodPost, "/batches", registerBody())
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, engine, http.MethodPost, "/batches/25MS-073-1/dispose", map[string]interface{}{
		"count":  45,
		"reason": "Consumption",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code, w.Body.String())

	w = doJSON(t, engine, http.MethodPost, "/batches/25MS-073-1/dispose", map[string]interface{}{
		"count":  10,
		"reason": "Consumption",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = doJSON(t, engine, http.MethodPost, "/batches/25MS-073-1/return", map[string]interface{}{"count": 3})
	require.Equal(t, http.StatusOK, w.Code)

	var record models.BatchRecord
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &record))
	assert.Equal(t, 33, record.VesselCount)
}

func TestUnknownBatchIsNotFound(t *testing.T) {
	engine := newTestEngine(t)

	w := doJSON(t, engine, http.MethodGet, "/batches/does-not-exist", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, engine, http.MethodPost, "/batches/does-not-exist/dispose", map[string]interface{}{
		"count":  1,
		"reason": "Consumption",
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestLabelAndQREndpointsServePNG(t *testing.T) {
	engine := newTestEngine(t)

	w := doJSON(t, engine, http.MethodPost, "/batches", registerBody())
	require.Equal(t, http.StatusCreated, w.Code)

	for _, path := range []string{"/batches/25MS-073-1/label.png", "/batches/25MS-073-1/qr.png"} {
		w = doJSON(t, engine, http.MethodGet, path, nil)
		require.Equal(t, http.StatusOK, w.Code, path)
		assert.Equal(t, "image/png", w.Header().Get("Content-Type"), path)
		assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("\x89PNG")), path)
	}
}

func TestMovementsEndpointWithDateRange(t *testing.T) {
	engine := newTestEngine(t)

	w := doJSON(t, engine, http.MethodPost, "/batches", registerBody())
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, engine, http.MethodGet, "/movements", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var entries []models.MovementLogEntry
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, models.MovementEntry, entries[0].Kind)

	w = doJSON(t, engine, http.MethodGet, "/movements?from=2030-01-01&to=2030-12-31", nil)
	require.Equal(t, http.StatusOK, w.Code)
	entries = nil
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &entries))
	assert.Empty(t, entries)

	w = doJSON(t, engine, http.MethodGet, "/movements?from=2030-01-01", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExportEndpoints(t *testing.T) {
	engine := newTestEngine(t)

	w := doJSON(t, engine, http.MethodPost, "/batches", registerBody())
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, engine, http.MethodGet, "/exports/batches.csv", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Código")
	assert.Contains(t, w.Body.String(), "25MS-073-1")

	w = doJSON(t, engine, http.MethodGet, "/exports/inventory.xlsx", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("PK")), "xlsx files are zip archives")
}

func TestWorkbookImportRoundTrip(t *testing.T) {
	source := newTestEngine(t)

	w := doJSON(t, source, http.MethodPost, "/batches", registerBody())
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, source, http.MethodGet, "/exports/inventory.xlsx", nil)
	require.Equal(t, http.StatusOK, w.Code)
	workbook := w.Body.Bytes()

	target := newTestEngine(t)
	req := httptest.NewRequest(http.MethodPost, "/exports/inventory.xlsx", bytes.NewReader(workbook))
	rec := httptest.NewRecorder()
	target.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"batches":1,"solutions":0,"movements":1,"skipped":0}`, rec.Body.String())

	w = doJSON(t, target, http.MethodGet, "/batches/25MS-073-1", nil)
	require.Equal(t, http.StatusOK, w.Code)

	// Importing the same workbook again skips the known batch code and the
	// already-logged movement row.
	req = httptest.NewRequest(http.MethodPost, "/exports/inventory.xlsx", bytes.NewReader(workbook))
	rec = httptest.NewRecorder()
	target.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"batches":0,"solutions":0,"movements":0,"skipped":2}`, rec.Body.String())

	w = doJSON(t, target, http.MethodGet, "/movements", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var entries []models.MovementLogEntry
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &entries))
	assert.Len(t, entries, 1)
}

func TestSolutionEndpoints(t *testing.T) {
	engine := newTestEngine(t)

	w := doJSON(t, engine, http.MethodPost, "/solutions", map[string]interface{}{
		"solutionCode": "SOL-2025-01",
		"quantity":     "500",
		"unit":         "mL",
		"responsible":  "LGP",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = doJSON(t, engine, http.MethodPost, "/solutions/SOL-2025-01/dispose", map[string]interface{}{
		"quantity": "600",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code, w.Body.String())

	w = doJSON(t, engine, http.MethodPost, "/solutions/SOL-2025-01/dispose", map[string]interface{}{
		"quantity": "200",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var sol models.StockSolution
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &sol))
	assert.Equal(t, "300", sol.Quantity.String())
}

func TestRecipesWithoutSourceReturnNotFound(t *testing.T) {
	engine := newTestEngine(t)

	w := doJSON(t, engine, http.MethodGet, "/recipes", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHealthz(t *testing.T) {
	engine := newTestEngine(t)

	w := doJSON(t, engine, http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestSummaryEndpoint(t *testing.T) {
	engine := newTestEngine(t)

	w := doJSON(t, engine, http.MethodPost, "/batches", registerBody())
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, engine, http.MethodGet, fmt.Sprintf("/report/summary?from=%s&to=%s", "2000-01-01", "2100-01-01"), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "Resumen de stock")
}
