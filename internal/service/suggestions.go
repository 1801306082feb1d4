package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"timber-market/internal/models"
	"timber-market/internal/util"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SuggestionSource supplies candidate pairings. The production source is an
// external AI recommendation service; the core only depends on this contract
// and can swap providers without change.
type SuggestionSource interface {
	GetSuggestions(ctx context.Context) ([]models.MatchSuggestion, error)
}

// StaticSource serves a fixed suggestion list. Used by tests and the seeded
// demo setup.
type StaticSource struct {
	suggestions []models.MatchSuggestion
}

// NewStaticSource creates a source over a fixed list
func NewStaticSource(suggestions []models.MatchSuggestion) *StaticSource {
	return &StaticSource{suggestions: suggestions}
}

func (s *StaticSource) GetSuggestions(ctx context.Context) ([]models.MatchSuggestion, error) {
	out := make([]models.MatchSuggestion, len(s.suggestions))
	copy(out, s.suggestions)
	return out, nil
}

// rawSuggestion is the loosely typed shape the AI service emits
type rawSuggestion struct {
	ID       string  `json:"id"`
	DemandID string  `json:"demand_id"`
	StockID  string  `json:"stock_id"`
	Reason   string  `json:"reason"`
	Strength string  `json:"strength"`
	Score    float64 `json:"score"`
}

// DecodeSuggestions validates a raw AI payload into typed suggestions.
// Malformed JSON or entries missing a demand or stock reference are rejected
// with an explicit error; untyped payloads never reach the resolver. Scores
// are clamped to [0,1] and entries without an id get a generated one.
func DecodeSuggestions(payload []byte) ([]models.MatchSuggestion, error) {
	var raw []rawSuggestion
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, fmt.Errorf("suggestion payload is not valid JSON: %w", err)
	}

	suggestions := make([]models.MatchSuggestion, 0, len(raw))
	for i, r := range raw {
		if r.DemandID == "" || r.StockID == "" {
			return nil, fmt.Errorf("suggestion %d is missing a demand or stock reference", i)
		}
		if r.ID == "" {
			r.ID = uuid.New().String()
		}
		if r.Score < 0 {
			r.Score = 0
		}
		if r.Score > 1 {
			r.Score = 1
		}
		suggestions = append(suggestions, models.MatchSuggestion{
			ID:       r.ID,
			DemandID: r.DemandID,
			StockID:  r.StockID,
			Reason:   r.Reason,
			Strength: r.Strength,
			Score:    r.Score,
		})
	}
	return suggestions, nil
}

const suggestionCacheKey = "timber:suggestion-cache"

// CachedSource fronts a SuggestionSource with a Redis TTL cache, so repeated
// view loads do not hammer the AI provider. Cache failures fall through to
// the underlying source.
type CachedSource struct {
	source SuggestionSource
	rdb    *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewCachedSource wraps a source with a Redis cache
func NewCachedSource(source SuggestionSource, rdb *redis.Client, ttl time.Duration) *CachedSource {
	return &CachedSource{
		source: source,
		rdb:    rdb,
		ttl:    ttl,
		logger: util.GetLogger(),
	}
}

func (c *CachedSource) GetSuggestions(ctx context.Context) ([]models.MatchSuggestion, error) {
	cached, err := c.rdb.Get(ctx, suggestionCacheKey).Bytes()
	if err == nil {
		suggestions, decodeErr := DecodeSuggestions(cached)
		if decodeErr == nil {
			util.SuggestionCacheHitsTotal.WithLabelValues("hit").Inc()
			return suggestions, nil
		}
		c.logger.Warn("Cached suggestion payload invalid, refetching", zap.Error(decodeErr))
	} else if err != redis.Nil {
		c.logger.Warn("Suggestion cache read failed", zap.Error(err))
	}
	util.SuggestionCacheHitsTotal.WithLabelValues("miss").Inc()

	suggestions, err := c.source.GetSuggestions(ctx)
	if err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(suggestions); err == nil {
		if err := c.rdb.Set(ctx, suggestionCacheKey, raw, c.ttl).Err(); err != nil {
			c.logger.Warn("Suggestion cache write failed", zap.Error(err))
		}
	}

	return suggestions, nil
}
