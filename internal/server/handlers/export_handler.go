package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/JASIELAB/CULTUREMEDIA/internal/service/export"
	"github.com/JASIELAB/CULTUREMEDIA/internal/service/reporting"
)

// ExportHandler serves the CSV and XLSX download endpoints plus the
// stock summary report.
type ExportHandler struct {
	exports   *export.Service
	reporting *reporting.Service
	logger    *zap.Logger
}

func NewExportHandler(exports *export.Service, reports *reporting.Service, logger *zap.Logger) *ExportHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportHandler{exports: exports, reporting: reports, logger: logger}
}

func (h *ExportHandler) BatchesCSV(c *gin.Context) {
	data, err := h.exports.BatchesCSV(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	serveDownload(c, "lotes.csv", "text/csv", data)
}

func (h *ExportHandler) SolutionsCSV(c *gin.Context) {
	data, err := h.exports.SolutionsCSV(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	serveDownload(c, "soluciones.csv", "text/csv", data)
}

func (h *ExportHandler) MovementsCSV(c *gin.Context) {
	data, err := h.exports.MovementsCSV(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	serveDownload(c, "movimientos.csv", "text/csv", data)
}

// Workbook streams all three tables as a single XLSX file.
func (h *ExportHandler) Workbook(c *gin.Context) {
	name := fmt.Sprintf("inventario_%s.xlsx", time.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	if err := h.exports.WriteWorkbook(c.Request.Context(), c.Writer); err != nil {
		h.logger.Error("workbook export failed", zap.Error(err))
	}
}

// ImportWorkbook loads a previously exported XLSX body back into the
// stores. Rows with already-known codes are skipped and counted.
func (h *ExportHandler) ImportWorkbook(c *gin.Context) {
	res, err := h.exports.ImportWorkbook(c.Request.Context(), c.Request.Body)
	if err != nil {
		h.logger.Warn("workbook import failed", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, res)
}

// Summary renders the stock summary for a ?from=&to= range, defaulting
// to the last 24 hours.
func (h *ExportHandler) Summary(c *gin.Context) {
	from, to, ok, err := dateRangeQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !ok {
		to = time.Now().UTC()
		from = to.Add(-24 * time.Hour)
	}

	sum, err := h.reporting.Summarize(c.Request.Context(), from, to)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"summary": sum, "text": h.reporting.Render(sum)})
}

func serveDownload(c *gin.Context, filename, contentType string, data []byte) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, contentType, data)
}
