package handlers

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func contextWithQuery(t *testing.T, rawQuery string) *gin.Context {
	t.Helper()
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/api/v1/recommendations?"+rawQuery, nil)
	return c
}

func TestParseFilterDefaults(t *testing.T) {
	h := &RecommendationHandler{}
	filter := h.parseFilter(contextWithQuery(t, ""))

	assert.Equal(t, 1, filter.Page)
	assert.Equal(t, 50, filter.PageSize)
	assert.Empty(t, filter.Bars)
	assert.Empty(t, filter.Brands)
}

func TestParseFilterRepeatedParams(t *testing.T) {
	h := &RecommendationHandler{}
	filter := h.parseFilter(contextWithQuery(t, "bar=Lobby&bar=Rooftop&brand=Mezcal&page=3&page_size=10"))

	assert.Equal(t, []string{"Lobby", "Rooftop"}, filter.Bars)
	assert.Equal(t, []string{"Mezcal"}, filter.Brands)
	assert.Equal(t, 3, filter.Page)
	assert.Equal(t, 10, filter.PageSize)
}

func TestParseFilterCommaSeparated(t *testing.T) {
	h := &RecommendationHandler{}
	filter := h.parseFilter(contextWithQuery(t, "bar=Lobby,Rooftop,%20Lobby"))

	// Duplicates collapse, whitespace trims.
	require.Len(t, filter.Bars, 2)
	assert.Equal(t, []string{"Lobby", "Rooftop"}, filter.Bars)
}

func TestParseFilterRejectsBadPaging(t *testing.T) {
	h := &RecommendationHandler{}
	filter := h.parseFilter(contextWithQuery(t, "page=-1&page_size=abc"))

	assert.Equal(t, 1, filter.Page)
	assert.Equal(t, 50, filter.PageSize)
}
