package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/barflow/barpar/internal/config"
	"github.com/barflow/barpar/internal/domain"
)

const (
	recommendationKeyPrefix        = "recommendation:list"
	recommendationSummaryKeyPrefix = "recommendation:summary"
	recommendationScanBatchSize    = 100
)

// RecommendationCache caches paginated recommendation lists and per-bar
// summaries keyed by the query filter. A completed pipeline run invalidates
// everything.
type RecommendationCache interface {
	GetList(ctx context.Context, filter domain.RecommendationFilter) ([]domain.Recommendation, int, bool, error)
	SetList(ctx context.Context, filter domain.RecommendationFilter, recs []domain.Recommendation, total int) error
	GetSummary(ctx context.Context, filter domain.RecommendationFilter) ([]domain.RecommendationSummary, bool, error)
	SetSummary(ctx context.Context, filter domain.RecommendationFilter, summaries []domain.RecommendationSummary) error
	InvalidateAll(ctx context.Context) error
}

type cachedList struct {
	Recommendations []domain.Recommendation `json:"recommendations"`
	Total           int                     `json:"total"`
}

type redisRecommendationCache struct {
	client *redis.Client
	ttl    time.Duration
}

type noopRecommendationCache struct{}

func NewRecommendationCache(cfg config.CacheConfig) (RecommendationCache, error) {
	if !cfg.Enabled {
		return &noopRecommendationCache{}, nil
	}

	client, ttl, err := newRedisClient(cfg)
	if err != nil {
		return nil, err
	}

	return &redisRecommendationCache{
		client: client,
		ttl:    ttl,
	}, nil
}

func NewNoopRecommendationCache() RecommendationCache {
	return &noopRecommendationCache{}
}

func (c *redisRecommendationCache) GetList(ctx context.Context, filter domain.RecommendationFilter) ([]domain.Recommendation, int, bool, error) {
	key := buildListKey(filter)

	payload, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, 0, false, nil
	}
	if err != nil {
		return nil, 0, false, fmt.Errorf("redis get failed: %w", err)
	}

	var entry cachedList
	if err := json.Unmarshal(payload, &entry); err != nil {
		return nil, 0, false, fmt.Errorf("decode recommendation cache: %w", err)
	}

	return entry.Recommendations, entry.Total, true, nil
}

func (c *redisRecommendationCache) SetList(ctx context.Context, filter domain.RecommendationFilter, recs []domain.Recommendation, total int) error {
	key := buildListKey(filter)
	payload, err := json.Marshal(cachedList{Recommendations: recs, Total: total})
	if err != nil {
		return fmt.Errorf("encode recommendation cache: %w", err)
	}

	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (c *redisRecommendationCache) GetSummary(ctx context.Context, filter domain.RecommendationFilter) ([]domain.RecommendationSummary, bool, error) {
	key := buildSummaryKey(filter)

	payload, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get failed: %w", err)
	}

	var summaries []domain.RecommendationSummary
	if err := json.Unmarshal(payload, &summaries); err != nil {
		return nil, false, fmt.Errorf("decode summary cache: %w", err)
	}

	return summaries, true, nil
}

func (c *redisRecommendationCache) SetSummary(ctx context.Context, filter domain.RecommendationFilter, summaries []domain.RecommendationSummary) error {
	key := buildSummaryKey(filter)
	payload, err := json.Marshal(summaries)
	if err != nil {
		return fmt.Errorf("encode summary cache: %w", err)
	}

	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (c *redisRecommendationCache) InvalidateAll(ctx context.Context) error {
	if err := deleteKeysWithPrefix(ctx, c.client, recommendationKeyPrefix, recommendationScanBatchSize); err != nil {
		return err
	}
	return deleteKeysWithPrefix(ctx, c.client, recommendationSummaryKeyPrefix, recommendationScanBatchSize)
}

func (n *noopRecommendationCache) GetList(ctx context.Context, filter domain.RecommendationFilter) ([]domain.Recommendation, int, bool, error) {
	return nil, 0, false, nil
}

func (n *noopRecommendationCache) SetList(ctx context.Context, filter domain.RecommendationFilter, recs []domain.Recommendation, total int) error {
	return nil
}

func (n *noopRecommendationCache) GetSummary(ctx context.Context, filter domain.RecommendationFilter) ([]domain.RecommendationSummary, bool, error) {
	return nil, false, nil
}

func (n *noopRecommendationCache) SetSummary(ctx context.Context, filter domain.RecommendationFilter, summaries []domain.RecommendationSummary) error {
	return nil
}

func (n *noopRecommendationCache) InvalidateAll(ctx context.Context) error {
	return nil
}

func buildListKey(filter domain.RecommendationFilter) string {
	return fmt.Sprintf("%s:%s", recommendationKeyPrefix, filterHash(filter, true))
}

func buildSummaryKey(filter domain.RecommendationFilter) string {
	return fmt.Sprintf("%s:%s", recommendationSummaryKeyPrefix, filterHash(filter, false))
}

// filterHash normalizes the filter into a stable digest so equivalent
// queries share a cache entry. Pagination only matters for list lookups.
func filterHash(filter domain.RecommendationFilter, paged bool) string {
	parts := []string{}

	if len(filter.Bars) > 0 {
		parts = append(parts, "bars="+joinStrings(filter.Bars))
	}
	if len(filter.Brands) > 0 {
		parts = append(parts, "brands="+joinStrings(filter.Brands))
	}
	if paged {
		if filter.Page > 0 {
			parts = append(parts, "page="+strconv.Itoa(filter.Page))
		}
		if filter.PageSize > 0 {
			parts = append(parts, "page_size="+strconv.Itoa(filter.PageSize))
		}
	}

	if len(parts) == 0 {
		return "default"
	}

	sort.Strings(parts)
	raw := strings.Join(parts, "|")
	sum := sha1.Sum([]byte(raw))
	return hex.EncodeToString(sum[:])
}

func joinStrings(values []string) string {
	c := append([]string(nil), values...)
	for i := range c {
		c[i] = strings.TrimSpace(strings.ToLower(c[i]))
	}
	sort.Strings(c)
	return strings.Join(c, ",")
}
