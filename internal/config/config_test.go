package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("SEARCH_MIN_RESULTS", "")
	t.Setenv("SESSION_TTL", "")

	cfg := Load()

	assert.Equal(t, 5, cfg.Recommender.MinResults)
	assert.Equal(t, 3, cfg.Recommender.MaxAttempts)
	assert.Equal(t, 10, cfg.Recommender.RowCap)
	assert.Equal(t, 16, cfg.Recommender.IndexLinks)
	assert.Equal(t, 64, cfg.Recommender.IndexEfSearch)
	assert.Equal(t, time.Hour, cfg.Recommender.SessionTTL)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("SEARCH_MAX_ATTEMPTS", "5")
	t.Setenv("SESSION_SWEEP_INTERVAL", "90s")
	t.Setenv("RANDOM_SEED", "42")
	t.Setenv("GO_ENV", "production")

	cfg := Load()

	assert.Equal(t, 5, cfg.Recommender.MaxAttempts)
	assert.Equal(t, 90*time.Second, cfg.Recommender.SweepInterval)
	assert.Equal(t, int64(42), cfg.Recommender.RandomSeed)
	assert.True(t, cfg.IsProduction())
}

func TestMalformedValuesFallBack(t *testing.T) {
	t.Setenv("SEARCH_ROW_CAP", "ten")
	t.Setenv("VOCABULARY_TTL", "forever")

	cfg := Load()

	assert.Equal(t, 10, cfg.Recommender.RowCap)
	assert.Equal(t, 10*time.Minute, cfg.Recommender.VocabularyTTL)
}
