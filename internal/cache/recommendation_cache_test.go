package cache

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/barflow/barpar/internal/domain"
)

func TestFilterHashStableUnderOrdering(t *testing.T) {
	a := domain.RecommendationFilter{Bars: []string{"Lobby", "Rooftop"}, Brands: []string{"Mezcal"}}
	b := domain.RecommendationFilter{Bars: []string{"rooftop", " Lobby "}, Brands: []string{"MEZCAL"}}

	assert.Equal(t, filterHash(a, false), filterHash(b, false))
}

func TestFilterHashDistinguishesFilters(t *testing.T) {
	a := domain.RecommendationFilter{Bars: []string{"Lobby"}}
	b := domain.RecommendationFilter{Bars: []string{"Rooftop"}}

	assert.NotEqual(t, filterHash(a, false), filterHash(b, false))
}

func TestFilterHashPagination(t *testing.T) {
	page1 := domain.RecommendationFilter{Page: 1, PageSize: 50}
	page2 := domain.RecommendationFilter{Page: 2, PageSize: 50}

	assert.NotEqual(t, filterHash(page1, true), filterHash(page2, true))
	// Summary lookups ignore pagination.
	assert.Equal(t, filterHash(page1, false), filterHash(page2, false))
}

func TestFilterHashDefault(t *testing.T) {
	assert.Equal(t, "default", filterHash(domain.RecommendationFilter{}, false))
}

func TestNoopCache(t *testing.T) {
	c := NewNoopRecommendationCache()
	ctx := context.Background()

	_, _, ok, err := c.GetList(ctx, domain.RecommendationFilter{})
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.SetList(ctx, domain.RecommendationFilter{}, nil, 0))
	require.NoError(t, c.SetSummary(ctx, domain.RecommendationFilter{}, nil))
	require.NoError(t, c.InvalidateAll(ctx))
}
