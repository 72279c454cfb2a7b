package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/barflow/barpar/internal/service"
)

type RunHandler struct {
	service *service.RunService
}

func NewRunHandler(service *service.RunService) *RunHandler {
	return &RunHandler{service: service}
}

// TriggerRun starts a forecast run in the background and returns
// immediately. The run outlives the request, so it gets its own context.
func (h *RunHandler) TriggerRun(c *gin.Context) {
	go func() {
		result, err := h.service.Trigger(context.Background())
		if err != nil {
			if !errors.Is(err, service.ErrRunInProgress) {
				log.Error().Err(err).Msg("triggered forecast run failed")
			}
			return
		}
		log.Info().Str("run_id", result.RunID).Msg("triggered forecast run finished")
	}()

	c.JSON(http.StatusAccepted, gin.H{"status": "started"})
}

func (h *RunHandler) GetLatestRun(c *gin.Context) {
	run, err := h.service.LatestRun(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch latest run", "details": err.Error()})
		return
	}
	if run == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no runs recorded"})
		return
	}

	c.JSON(http.StatusOK, run)
}

func (h *RunHandler) GetSkippedKeys(c *gin.Context) {
	runID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid run id"})
		return
	}

	jobs, err := h.service.SkippedKeys(c.Request.Context(), runID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch skipped keys", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"skipped": jobs})
}
