package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/JASIELAB/CULTUREMEDIA/internal/domain/models"
	"github.com/JASIELAB/CULTUREMEDIA/internal/repository"
)

// RecipeHandler exposes the read-only recipe sheets.
type RecipeHandler struct {
	source repository.RecipeSource
	logger *zap.Logger
}

func NewRecipeHandler(source repository.RecipeSource, logger *zap.Logger) *RecipeHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RecipeHandler{source: source, logger: logger}
}

// List returns the medium type names found in the workbook.
func (h *RecipeHandler) List(c *gin.Context) {
	if h.source == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no recipe source configured"})
		return
	}

	types, err := h.source.MediumTypes(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, types)
}

// Get returns the component lines for one medium type.
func (h *RecipeHandler) Get(c *gin.Context) {
	if h.source == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no recipe source configured"})
		return
	}

	name := c.Param("name")
	lines, err := h.source.Lines(c.Request.Context(), name)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, models.Recipe{MediumType: name, Lines: lines})
}
