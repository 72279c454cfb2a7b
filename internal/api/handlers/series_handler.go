package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/barflow/barpar/internal/domain"
	"github.com/barflow/barpar/internal/service"
)

type SeriesHandler struct {
	service *service.SeriesService
}

func NewSeriesHandler(service *service.SeriesService) *SeriesHandler {
	return &SeriesHandler{service: service}
}

// GetSeries returns one key's observed weekly series plus a fresh forecast.
func (h *SeriesHandler) GetSeries(c *gin.Context) {
	bar := strings.TrimSpace(c.Param("bar"))
	brand := strings.TrimSpace(c.Param("brand"))
	if bar == "" || brand == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bar and brand are required"})
		return
	}

	detail, err := h.service.GetSeries(c.Request.Context(), domain.SeriesKey{Bar: bar, Brand: brand})
	if err != nil {
		if errors.Is(err, service.ErrSeriesNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "no history for key"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load series", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, detail)
}
