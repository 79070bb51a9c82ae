package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/JASIELAB/CULTUREMEDIA/internal/domain/models"
	"github.com/JASIELAB/CULTUREMEDIA/internal/repository"
	"github.com/JASIELAB/CULTUREMEDIA/internal/service/inventory"
	"github.com/JASIELAB/CULTUREMEDIA/internal/service/labeling"
)

const dateLayout = "2006-01-02"

// BatchHandler serves the batch table endpoints.
type BatchHandler struct {
	svc    *inventory.Service
	logger *zap.Logger
}

// NewBatchHandler constructs the HTTP handler adapter.
func NewBatchHandler(svc *inventory.Service, logger *zap.Logger) *BatchHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BatchHandler{svc: svc, logger: logger}
}

// Register creates a batch from the posted form fields.
func (h *BatchHandler) Register(c *gin.Context) {
	var req models.RegisterBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid batch payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	record, err := h.svc.RegisterBatch(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, record)
}

// Get looks a batch up by code.
func (h *BatchHandler) Get(c *gin.Context) {
	record, err := h.svc.GetBatch(c.Request.Context(), c.Param("code"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

// List returns rows, optionally the last ?limit=N or a ?from=&to= date range.
func (h *BatchHandler) List(c *gin.Context) {
	if from, to, ok, err := dateRangeQuery(c); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	} else if ok {
		records, err := h.svc.BatchesByDateRange(c.Request.Context(), from, to)
		if err != nil {
			respondError(c, h.logger, err)
			return
		}
		c.JSON(http.StatusOK, records)
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))
	records, err := h.svc.ListBatches(c.Request.Context(), limit)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, records)
}

// Dispose removes vessels for one of the closed reasons.
func (h *BatchHandler) Dispose(c *gin.Context) {
	var req models.DisposalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	record, err := h.svc.DisposeBatch(c.Request.Context(), c.Param("code"), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

// Return puts vessels back into stock.
func (h *BatchHandler) Return(c *gin.Context) {
	var req models.ReturnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	record, err := h.svc.ReturnBatch(c.Request.Context(), c.Param("code"), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

// Delete removes the batch row entirely.
func (h *BatchHandler) Delete(c *gin.Context) {
	if err := h.svc.DeleteBatch(c.Request.Context(), c.Param("code")); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Payload returns the label line set and QR content as JSON, for clients
// rendering their own label templates.
func (h *BatchHandler) Payload(c *gin.Context) {
	record, err := h.svc.GetBatch(c.Request.Context(), c.Param("code"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	payload := labeling.BatchPayload(record)
	c.JSON(http.StatusOK, gin.H{"text": payload.Text(), "qr": payload.QRContent()})
}

// Label streams the composited label PNG.
func (h *BatchHandler) Label(c *gin.Context) {
	record, err := h.svc.GetBatch(c.Request.Context(), c.Param("code"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	img, err := labeling.RenderPNG(labeling.BatchPayload(record))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Data(http.StatusOK, "image/png", img)
}

// QR streams just the QR code PNG.
func (h *BatchHandler) QR(c *gin.Context) {
	record, err := h.svc.GetBatch(c.Request.Context(), c.Param("code"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	img, err := labeling.QRPNG(labeling.BatchPayload(record))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Data(http.StatusOK, "image/png", img)
}

// Movements serves the audit log, optionally filtered by ?from=&to=.
func (h *BatchHandler) Movements(c *gin.Context) {
	if from, to, ok, err := dateRangeQuery(c); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	} else if ok {
		entries, err := h.svc.MovementsByDateRange(c.Request.Context(), from, to)
		if err != nil {
			respondError(c, h.logger, err)
			return
		}
		c.JSON(http.StatusOK, entries)
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))
	entries, err := h.svc.Movements(c.Request.Context(), limit)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

// dateRangeQuery parses ?from= and ?to= (YYYY-MM-DD). Both must be present
// for the range form; the to-day is inclusive.
func dateRangeQuery(c *gin.Context) (time.Time, time.Time, bool, error) {
	fromRaw := c.Query("from")
	toRaw := c.Query("to")
	if fromRaw == "" && toRaw == "" {
		return time.Time{}, time.Time{}, false, nil
	}
	if fromRaw == "" || toRaw == "" {
		return time.Time{}, time.Time{}, false, errors.New("both from and to must be provided")
	}
	from, err := time.Parse(dateLayout, fromRaw)
	if err != nil {
		return time.Time{}, time.Time{}, false, errors.New("from must be YYYY-MM-DD")
	}
	to, err := time.Parse(dateLayout, toRaw)
	if err != nil {
		return time.Time{}, time.Time{}, false, errors.New("to must be YYYY-MM-DD")
	}
	return from, to.Add(24*time.Hour - time.Nanosecond), true, nil
}

// respondError maps service errors onto stable HTTP statuses.
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	switch {
	case errors.Is(err, inventory.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, repository.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, repository.ErrDuplicateCode):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, inventory.ErrInsufficientVessels), errors.Is(err, inventory.ErrInsufficientQuantity):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	default:
		logger.Error("request failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
