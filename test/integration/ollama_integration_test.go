package integration

import (
	"context"
	"os"
	"testing"
	"time"

	"fashion-recommender-be/internal/pkg/logger"
	"fashion-recommender-be/pkg/llm/factory"
	"fashion-recommender-be/pkg/nlu"
	"fashion-recommender-be/pkg/workpool"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Runs against a local Ollama: OLLAMA_INTEGRATION=1 OLLAMA_MODEL=llama3
func newLiveClient(t *testing.T) *nlu.Client {
	if os.Getenv("OLLAMA_INTEGRATION") == "" {
		t.Skip("Skipping integration test: OLLAMA_INTEGRATION not set")
	}
	model := os.Getenv("OLLAMA_MODEL")
	if model == "" {
		model = "llama3"
	}

	provider, err := factory.NewLLMProvider("ollama", model, os.Getenv("OLLAMA_BASE_URL"), "")
	require.NoError(t, err)

	return nlu.NewClient(nlu.NewLLMCapability(provider), workpool.New(2, 2*time.Minute), logger.NewNopLogger())
}

func TestLiveGreeting(t *testing.T) {
	client := newLiveClient(t)

	greeting, err := client.IsGreeting(context.Background(), "hi there!")
	require.NoError(t, err)
	assert.True(t, greeting)
}

func TestLiveCustomerID(t *testing.T) {
	client := newLiveClient(t)

	res, err := client.ExtractCustomerID(context.Background(), "my customer number is 1001")
	require.NoError(t, err)
	assert.True(t, res.Found)
	assert.Equal(t, int64(1001), res.ID)
}

func TestLiveSearchIntent(t *testing.T) {
	client := newLiveClient(t)

	decision, err := client.ClassifyIntent(context.Background(), "show me black shoes for men", nlu.IntentContext{State: "idle"})
	require.NoError(t, err)
	assert.Equal(t, "search", decision.Action)
}
