package factory

import (
	"fmt"
	"strings"

	"fashion-recommender-be/pkg/llm"
	"fashion-recommender-be/pkg/llm/huggingface"
	"fashion-recommender-be/pkg/llm/ollama"
)

const (
	ProviderOllama      = "ollama"
	ProviderHuggingFace = "huggingface"

	defaultOllamaURL = "http://localhost:11434"
)

// NewLLMProvider builds the NLU backend named by providerType.
// Provider names are case-insensitive.
func NewLLMProvider(providerType, modelName, baseURL, apiKey string) (llm.LLMProvider, error) {
	if strings.TrimSpace(modelName) == "" {
		return nil, fmt.Errorf("llm provider %q: model name is required", providerType)
	}

	switch strings.ToLower(strings.TrimSpace(providerType)) {
	case ProviderOllama:
		if baseURL == "" {
			baseURL = defaultOllamaURL
		}
		return ollama.NewOllamaProvider(strings.TrimRight(baseURL, "/"), modelName), nil
	case ProviderHuggingFace:
		if apiKey == "" {
			return nil, fmt.Errorf("huggingface provider requires an API key")
		}
		return huggingface.NewHuggingFaceProvider(apiKey, baseURL, modelName), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", providerType)
	}
}
