package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App         AppConfig
	Database    DatabaseConfig
	Ai          AIConfig
	Recommender RecommenderConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	JwtSecret          string
	EventTopic         string // In-process topic for recommendation events
}

type DatabaseConfig struct {
	Connection string
}

type AIConfig struct {
	LLMProvider    string // "ollama" or "huggingface"
	LLMModel       string // e.g. "llama3", "qwen2.5"
	OllamaBaseURL  string
	HuggingFaceKey string
	HuggingFaceURL string
	NLUTimeout     time.Duration
}

type RecommenderConfig struct {
	MinResults     int
	MaxAttempts    int
	RowCap         int
	IndexLinks     int
	IndexEfSearch  int
	NeighbourPool  int
	SampleSize     int
	SessionTTL     time.Duration
	SweepInterval  time.Duration
	WorkerPoolSize int
	RandomSeed     int64 // Zero seeds from the clock
	VocabularyTTL  time.Duration
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/recommender.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
			JwtSecret:          getEnv("JWT_SECRET", ""),
			EventTopic:         getEnv("RECOMMENDER_EVENT_TOPIC", "RECOMMENDER_EVENTS"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Ai: AIConfig{
			LLMProvider:    getEnv("LLM_PROVIDER", "ollama"),
			LLMModel:       getEnv("LLM_MODEL", "llama3"),
			OllamaBaseURL:  getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			HuggingFaceKey: getEnv("HUGGINGFACE_API_KEY", ""),
			HuggingFaceURL: getEnv("HUGGINGFACE_BASE_URL", ""),
			NLUTimeout:     getEnvAsDuration("NLU_TIMEOUT", 30*time.Second),
		},
		Recommender: RecommenderConfig{
			MinResults:     getEnvAsInt("SEARCH_MIN_RESULTS", 5),
			MaxAttempts:    getEnvAsInt("SEARCH_MAX_ATTEMPTS", 3),
			RowCap:         getEnvAsInt("SEARCH_ROW_CAP", 10),
			IndexLinks:     getEnvAsInt("INDEX_LINKS", 16),
			IndexEfSearch:  getEnvAsInt("INDEX_EF_SEARCH", 64),
			NeighbourPool:  getEnvAsInt("SIMILAR_POOL_SIZE", 10),
			SampleSize:     getEnvAsInt("SIMILAR_SAMPLE_SIZE", 5),
			SessionTTL:     getEnvAsDuration("SESSION_TTL", time.Hour),
			SweepInterval:  getEnvAsDuration("SESSION_SWEEP_INTERVAL", 5*time.Minute),
			WorkerPoolSize: getEnvAsInt("WORKER_POOL_SIZE", 16),
			RandomSeed:     int64(getEnvAsInt("RANDOM_SEED", 0)),
			VocabularyTTL:  getEnvAsDuration("VOCABULARY_TTL", 10*time.Minute),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

// getEnvAsDuration accepts Go durations ("90s", "1h").
func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	return fallback
}
