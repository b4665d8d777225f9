package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Catalog    CatalogConfig
	PostgreSQL PostgreSQLConfig
	Server     ServerConfig
	Search     SearchConfig
	Ranking    RankingConfig
	Lexical    LexicalConfig
	Vector     VectorConfig
	Embedding  EmbeddingConfig
	Logging    LoggingConfig
}

// CatalogConfig selects where the hotel catalog is loaded from
type CatalogConfig struct {
	Source  string // "csv" or "postgres"
	CSVPath string
}

// PostgreSQLConfig holds PostgreSQL database configuration
type PostgreSQLConfig struct {
	DSN                string
	Host               string
	Port               int
	User               string
	Password           string
	Database           string
	SSLMode            string
	MaxConnections     int
	MaxIdleConnections int
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port           int
	Host           string
	GinMode        string
	AllowedOrigins string
	AllowedMethods string
	AllowedHeaders string
}

// SearchConfig holds search-related configuration
type SearchConfig struct {
	DefaultLimit        int
	MaxLimit            int
	HistoryTurns        int
	CandidateMultiplier int
}

// RankingConfig holds ranking weights configuration
type RankingConfig struct {
	WeightVector  float64
	WeightLexical float64
	WeightQuality float64
}

// LexicalConfig holds TF-IDF index configuration
type LexicalConfig struct {
	MinDocFreq int
	MaxVocab   int
}

// VectorConfig holds vector retrieval configuration
type VectorConfig struct {
	Provider string // "off", "http" or "pgvector"
	URL      string
	Timeout  int
	TopK     int
}

// EmbeddingConfig holds embedding API configuration (OpenAI-compatible)
type EmbeddingConfig struct {
	APIKey     string
	APIBase    string
	Model      string
	Dimensions int
	ExtraBody  string // JSON string for extra_body (e.g., {"truncate":"NONE"})
	BatchSize  int
	Timeout    int
	Enabled    bool
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string
	Format string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (optional)
	_ = godotenv.Load()

	cfg := &Config{
		Catalog: CatalogConfig{
			Source:  getEnv("CATALOG_SOURCE", "csv"),
			CSVPath: getEnv("CATALOG_CSV_PATH", "data/hotels.csv"),
		},
		PostgreSQL: PostgreSQLConfig{
			DSN:                getEnv("DATABASE_URL", getEnv("PG_DSN", "")),
			Host:               getEnv("PG_HOST", "localhost"),
			Port:               getEnvAsInt("PG_PORT", 5432),
			User:               getEnv("PG_USER", "postgres"),
			Password:           getEnv("PG_PASSWORD", ""),
			Database:           getEnv("PG_DATABASE", "hotel_search"),
			SSLMode:            getEnv("PG_SSLMODE", "disable"),
			MaxConnections:     getEnvAsInt("PG_MAX_CONNECTIONS", 25),
			MaxIdleConnections: getEnvAsInt("PG_MAX_IDLE_CONNECTIONS", 5),
		},
		Server: ServerConfig{
			Port:           getEnvAsInt("SERVER_PORT", 8080),
			Host:           getEnv("SERVER_HOST", "0.0.0.0"),
			GinMode:        getEnv("GIN_MODE", "release"),
			AllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
			AllowedMethods: getEnv("CORS_ALLOWED_METHODS", "GET,POST,PUT,DELETE,OPTIONS"),
			AllowedHeaders: getEnv("CORS_ALLOWED_HEADERS", "Content-Type,Authorization"),
		},
		Search: SearchConfig{
			DefaultLimit:        getEnvAsInt("SEARCH_DEFAULT_LIMIT", 10),
			MaxLimit:            getEnvAsInt("SEARCH_MAX_LIMIT", 50),
			HistoryTurns:        getEnvAsInt("SEARCH_HISTORY_TURNS", 6),
			CandidateMultiplier: getEnvAsInt("SEARCH_CANDIDATE_MULTIPLIER", 3),
		},
		Ranking: RankingConfig{
			WeightVector:  getEnvAsFloat("RANK_WEIGHT_VECTOR", 0.50),
			WeightLexical: getEnvAsFloat("RANK_WEIGHT_LEXICAL", 0.35),
			WeightQuality: getEnvAsFloat("RANK_WEIGHT_QUALITY", 0.15),
		},
		Lexical: LexicalConfig{
			MinDocFreq: getEnvAsInt("LEXICAL_MIN_DOC_FREQ", 2),
			MaxVocab:   getEnvAsInt("LEXICAL_MAX_VOCAB", 50000),
		},
		Vector: VectorConfig{
			Provider: getEnv("VECTOR_PROVIDER", "off"),
			URL:      getEnv("VECTOR_URL", ""),
			Timeout:  getEnvAsInt("VECTOR_TIMEOUT", 5),
			TopK:     getEnvAsInt("VECTOR_TOP_K", 16),
		},
		Embedding: EmbeddingConfig{
			APIKey:     getEnv("EMBEDDING_API_KEY", ""),
			APIBase:    getEnv("EMBEDDING_API_BASE", "https://api.openai.com/v1"),
			Model:      getEnv("EMBEDDING_MODEL", "text-embedding-3-small"),
			Dimensions: getEnvAsInt("EMBEDDING_DIMENSIONS", 1024),
			ExtraBody:  getEnv("EMBEDDING_EXTRA_BODY", ""),
			BatchSize:  getEnvAsInt("EMBEDDING_BATCH_SIZE", 100),
			Timeout:    getEnvAsInt("EMBEDDING_TIMEOUT", 30),
			Enabled:    getEnv("EMBEDDING_API_KEY", "") != "",
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	return cfg, nil
}

// GetPostgreSQLDSN returns PostgreSQL connection string
func (c *Config) GetPostgreSQLDSN() string {
	if c.PostgreSQL.DSN != "" {
		return c.PostgreSQL.DSN
	}

	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.PostgreSQL.Host,
		c.PostgreSQL.Port,
		c.PostgreSQL.User,
		c.PostgreSQL.Password,
		c.PostgreSQL.Database,
		c.PostgreSQL.SSLMode,
	)
}

// Helper functions

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid integer value for %s, using default %d", key, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		log.Printf("Warning: Invalid float value for %s, using default %f", key, defaultValue)
		return defaultValue
	}
	return value
}
