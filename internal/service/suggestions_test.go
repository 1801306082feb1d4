package service

import (
	"context"
	"testing"
	"time"

	"timber-market/internal/models"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeSuggestions(t *testing.T) {
	payload := []byte(`[
		{"id":"sug-1","demand_id":"dem-1","stock_id":"stk-1","reason":"good fit","strength":"HIGH","score":0.9},
		{"demand_id":"dem-2","stock_id":"stk-2","score":1.7}
	]`)

	suggestions, err := DecodeSuggestions(payload)
	require.NoError(t, err)
	require.Len(t, suggestions, 2)

	assert.Equal(t, "sug-1", suggestions[0].ID)
	assert.Equal(t, 0.9, suggestions[0].Score)

	// Missing id is generated, out-of-range score is clamped.
	assert.NotEmpty(t, suggestions[1].ID)
	assert.Equal(t, 1.0, suggestions[1].Score)
}

func TestDecodeSuggestionsRejectsMalformedPayloads(t *testing.T) {
	_, err := DecodeSuggestions([]byte(`{"not":"an array"`))
	assert.Error(t, err)

	_, err = DecodeSuggestions([]byte(`[{"id":"sug-1","reason":"no references"}]`))
	assert.Error(t, err)
}

func TestCachedSourceFallsThroughWhenRedisUnavailable(t *testing.T) {
	// Nothing listens here; every cache operation fails and the wrapper
	// must still serve from the underlying source.
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 100 * time.Millisecond})
	source := NewCachedSource(NewStaticSource([]models.MatchSuggestion{testSuggestion()}), rdb, time.Minute)

	suggestions, err := source.GetSuggestions(context.Background())
	require.NoError(t, err)
	require.Len(t, suggestions, 1)
	assert.Equal(t, "sug-1", suggestions[0].ID)
}

func TestStaticSourceReturnsCopy(t *testing.T) {
	source := NewStaticSource([]models.MatchSuggestion{testSuggestion()})

	first, err := source.GetSuggestions(context.Background())
	require.NoError(t, err)
	first[0].ID = "mutated"

	second, err := source.GetSuggestions(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "sug-1", second[0].ID)
}
