package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/barflow/barpar/internal/domain"
	"github.com/barflow/barpar/internal/service"
)

type RecommendationHandler struct {
	service *service.ForecastService
}

func NewRecommendationHandler(service *service.ForecastService) *RecommendationHandler {
	return &RecommendationHandler{service: service}
}

// parseFilter supports both repeated params and comma-separated lists:
//
//	?bar=Lobby&bar=Rooftop
//	?bar=Lobby,Rooftop
func (h *RecommendationHandler) parseFilter(c *gin.Context) domain.RecommendationFilter {
	filter := domain.RecommendationFilter{
		Page:     1,
		PageSize: 50,
	}

	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil && page > 0 {
		filter.Page = page
	}

	if size, err := strconv.Atoi(c.DefaultQuery("page_size", "50")); err == nil && size > 0 {
		filter.PageSize = size
	}

	filter.Bars = parseStringList(c, "bar")
	filter.Brands = parseStringList(c, "brand")

	return filter
}

func parseStringList(c *gin.Context, param string) []string {
	raw := c.QueryArray(param)
	if len(raw) == 0 {
		if single := strings.TrimSpace(c.Query(param)); single != "" {
			raw = []string{single}
		}
	}

	var values []string
	seen := make(map[string]struct{})
	for _, v := range raw {
		for _, part := range strings.Split(v, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			if _, ok := seen[part]; ok {
				continue
			}
			seen[part] = struct{}{}
			values = append(values, part)
		}
	}
	return values
}

func (h *RecommendationHandler) GetRecommendations(c *gin.Context) {
	filter := h.parseFilter(c)
	recs, total, err := h.service.GetRecommendations(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch recommendations", "details": err.Error()})
		return
	}

	if recs == nil {
		recs = make([]domain.Recommendation, 0)
	}

	c.JSON(http.StatusOK, gin.H{
		"recommendations": recs,
		"total":           total,
		"page":            filter.Page,
		"page_size":       filter.PageSize,
	})
}

func (h *RecommendationHandler) GetSummary(c *gin.Context) {
	filter := h.parseFilter(c)
	summaries, err := h.service.GetSummary(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch summary", "details": err.Error()})
		return
	}

	if summaries == nil {
		summaries = make([]domain.RecommendationSummary, 0)
	}

	c.JSON(http.StatusOK, summaries)
}

func (h *RecommendationHandler) GetAccuracy(c *gin.Context) {
	filter := h.parseFilter(c)
	reports, err := h.service.GetAccuracyReports(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch accuracy reports", "details": err.Error()})
		return
	}

	if reports == nil {
		reports = make([]domain.AccuracyReport, 0)
	}

	c.JSON(http.StatusOK, reports)
}
