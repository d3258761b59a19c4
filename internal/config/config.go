package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	GinMode     string
	CORSOrigins []string

	// Static bearer token the API compares incoming requests against.
	APIToken string

	// Gemini provider
	GeminiAPIKey    string
	GeminiAPIURL    string
	GenerationModel string
	EmbeddingsModel string
	GeminiTier      string

	// Vector index
	VectorDim int
	IndexPath string

	// Chunking
	MaxChunkSize int
	ChunkOverlap int

	// Retrieval
	RetrievalTopK int

	// Ingestion
	DownloadDir    string
	MaxFileSize    int64
	DownloadTimout int // seconds

	// MongoDB persistence sink
	MongoURI           string
	DBName             string
	PersistenceEnabled bool

	// Redis Configuration (rate limiting + task queue)
	RedisURL      string
	RedisPassword string
	RedisDB       int

	RateLimitReqs   int
	RateLimitWindow int

	// Telemetry
	TracingEnabled bool
	OTLPEndpoint   string

	// Temp file cleanup
	CleanupIntervalMinutes int
	CleanupMaxAgeMinutes   int
}

func LoadConfig() (*Config, error) {
	// Load .env file if exists
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return nil, fmt.Errorf("error loading .env file: %v", err)
		}
	}

	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		GinMode:     getEnv("GIN_MODE", "debug"),
		CORSOrigins: strings.Split(getEnv("CORS_ORIGINS", "http://localhost:3000,http://localhost:8080"), ","),

		APIToken: getEnv("API_TOKEN", ""),

		GeminiAPIKey:    getEnv("GEMINI_API_KEY", ""),
		GeminiAPIURL:    getEnv("GEMINI_API_URL", "https://generativelanguage.googleapis.com/v1beta"),
		GenerationModel: getEnv("GENERATION_MODEL", "gemini-2.0-flash"),
		EmbeddingsModel: getEnv("EMBEDDINGS_MODEL", "text-embedding-004"),
		GeminiTier:      getEnv("GEMINI_TIER", "free"),

		VectorDim: getEnvInt("VECTOR_DIM", 768),
		IndexPath: getEnv("VECTOR_INDEX_PATH", "./storage/vector_index"),

		MaxChunkSize: getEnvInt("MAX_CHUNK_SIZE", 1000),
		ChunkOverlap: getEnvInt("CHUNK_OVERLAP", 200),

		RetrievalTopK: getEnvInt("RETRIEVAL_TOP_K", 3),

		DownloadDir:    getEnv("DOWNLOAD_DIR", "./storage/downloads"),
		MaxFileSize:    getEnvInt64("MAX_FILE_SIZE", 104857600), // 100MB
		DownloadTimout: getEnvInt("DOWNLOAD_TIMEOUT", 30),

		MongoURI:           getEnv("MONGO_URI", "mongodb://localhost:27017/document_qa"),
		DBName:             getEnv("DB_NAME", "document_qa"),
		PersistenceEnabled: getEnvBool("PERSISTENCE_ENABLED", true),

		RedisURL:      getEnv("REDIS_URL", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		RateLimitReqs:   getEnvInt("RATE_LIMIT_REQUESTS", 100),
		RateLimitWindow: getEnvInt("RATE_LIMIT_WINDOW", 60),

		TracingEnabled: getEnvBool("TRACING_ENABLED", false),
		OTLPEndpoint:   getEnv("OTLP_ENDPOINT", "localhost:4317"),

		CleanupIntervalMinutes: getEnvInt("CLEANUP_INTERVAL_MINUTES", 30),
		CleanupMaxAgeMinutes:   getEnvInt("CLEANUP_MAX_AGE_MINUTES", 60),
	}

	// Validate required fields
	if cfg.APIToken == "" {
		return nil, fmt.Errorf("API_TOKEN is required - set it in .env file")
	}

	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required - set it in .env file")
	}

	if cfg.ChunkOverlap >= cfg.MaxChunkSize {
		return nil, fmt.Errorf("CHUNK_OVERLAP (%d) must be less than MAX_CHUNK_SIZE (%d)",
			cfg.ChunkOverlap, cfg.MaxChunkSize)
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
