package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/JASIELAB/CULTUREMEDIA/internal/domain/models"
	"github.com/JASIELAB/CULTUREMEDIA/internal/service/inventory"
	"github.com/JASIELAB/CULTUREMEDIA/internal/service/labeling"
)

// SolutionHandler serves the stock solution endpoints.
type SolutionHandler struct {
	svc    *inventory.Service
	logger *zap.Logger
}

func NewSolutionHandler(svc *inventory.Service, logger *zap.Logger) *SolutionHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SolutionHandler{svc: svc, logger: logger}
}

func (h *SolutionHandler) Register(c *gin.Context) {
	var req models.RegisterSolutionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	sol, err := h.svc.RegisterSolution(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, sol)
}

func (h *SolutionHandler) Get(c *gin.Context) {
	sol, err := h.svc.GetSolution(c.Request.Context(), c.Param("code"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, sol)
}

func (h *SolutionHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))
	sols, err := h.svc.ListSolutions(c.Request.Context(), limit)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, sols)
}

func (h *SolutionHandler) Dispose(c *gin.Context) {
	var req models.SolutionDisposalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	sol, err := h.svc.DisposeSolution(c.Request.Context(), c.Param("code"), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, sol)
}

func (h *SolutionHandler) Delete(c *gin.Context) {
	if err := h.svc.DeleteSolution(c.Request.Context(), c.Param("code")); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *SolutionHandler) Label(c *gin.Context) {
	sol, err := h.svc.GetSolution(c.Request.Context(), c.Param("code"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	img, err := labeling.RenderPNG(labeling.SolutionPayload(sol))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Data(http.StatusOK, "image/png", img)
}
