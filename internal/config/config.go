package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Gemini
	GeminiAPIKey    string
	GeminiModel     string
	GeminiTier      string
	EmbeddingsModel string

	// Qdrant vector index
	QdrantURL        string
	QdrantAPIKey     string
	QdrantCollection string
	VectorDimensions int

	// MongoDB listing store
	MongoURI string
	DBName   string

	// Redis / task queue
	RedisURL      string
	RedisPassword string
	RedisDB       int

	// HTTP server
	Port            string
	GinMode         string
	CORSOrigins     []string
	RateLimitReqs   int
	RateLimitWindow int

	// Chunking
	MaxChunkSize int
	ChunkOverlap int

	// Retrieval / generation
	TopK              int
	RetrievalTimeout  time.Duration
	GenerationTimeout time.Duration

	// Filter extraction vocabularies
	FilterBrands    []string
	FilterFuelTypes []string
	FilterCities    []string

	// Scraper
	ScrapeBaseURL   string
	ScrapeStartPage int
	ScrapeMaxPages  int
	ScrapeRenderJS  bool
	ScrapeCron      string

	// Telemetry
	TracingEnabled bool
	OTLPEndpoint   string
}

func LoadConfig() (*Config, error) {
	// Load .env file if exists
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return nil, fmt.Errorf("error loading .env file: %v", err)
		}
	}

	cfg := &Config{
		GeminiAPIKey:    getEnv("GEMINI_API_KEY", ""),
		GeminiModel:     getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
		GeminiTier:      getEnv("GEMINI_TIER", "free"),
		EmbeddingsModel: getEnv("GOOGLE_EMBEDDINGS_MODEL", "text-embedding-004"),

		QdrantURL:        getEnv("QDRANT_URL", "http://localhost:6333"),
		QdrantAPIKey:     getEnv("QDRANT_API_KEY", ""),
		QdrantCollection: getEnv("QDRANT_COLLECTION", "car_data_chunks"),
		VectorDimensions: getEnvInt("VECTOR_DIM", 768),

		MongoURI: getEnv("MONGO_URI", "mongodb://localhost:27017/car_rag"),
		DBName:   getEnv("DB_NAME", "car_rag"),

		RedisURL:      getEnv("REDIS_URL", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		Port:            getEnv("PORT", "8080"),
		GinMode:         getEnv("GIN_MODE", "debug"),
		CORSOrigins:     strings.Split(getEnv("CORS_ORIGINS", "http://localhost:3000,http://localhost:8080"), ","),
		RateLimitReqs:   getEnvInt("RATE_LIMIT_REQUESTS", 100),
		RateLimitWindow: getEnvInt("RATE_LIMIT_WINDOW", 60),

		MaxChunkSize: getEnvInt("MAX_CHUNK_SIZE", 1500),
		ChunkOverlap: getEnvInt("CHUNK_OVERLAP", 150),

		TopK:              getEnvInt("RETRIEVAL_TOP_K", 5),
		RetrievalTimeout:  getEnvDuration("RETRIEVAL_TIMEOUT", 15*time.Second),
		GenerationTimeout: getEnvDuration("GENERATION_TIMEOUT", 30*time.Second),

		FilterBrands: getEnvList("FILTER_BRANDS",
			"Toyota,Honda,Maruti,Suzuki,Hyundai,Mahindra,Tata,Kia,Mercedes,BMW,Audi,Volkswagen,Ford,Renault,Nissan,MG"),
		FilterFuelTypes: getEnvList("FILTER_FUEL_TYPES", "Petrol,Diesel,CNG,Electric,Hybrid"),
		FilterCities:    getEnvList("FILTER_CITIES", "Delhi,Mumbai,Bangalore,Hyderabad,Chennai,Kolkata,Pune"),

		ScrapeBaseURL:   getEnv("SCRAPE_BASE_URL", "https://www.cartrade.com/second-hand/delhi"),
		ScrapeStartPage: getEnvInt("SCRAPE_START_PAGE", 1),
		ScrapeMaxPages:  getEnvInt("SCRAPE_MAX_PAGES", 50),
		ScrapeRenderJS:  getEnvBool("SCRAPE_RENDER_JS", false),
		ScrapeCron:      getEnv("SCRAPE_CRON", ""),

		TracingEnabled: getEnvBool("TRACING_ENABLED", false),
		OTLPEndpoint:   getEnv("OTLP_ENDPOINT", "localhost:4317"),
	}

	// Validate required fields
	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required - set it in .env file")
	}

	if cfg.MaxChunkSize <= 0 {
		return nil, fmt.Errorf("MAX_CHUNK_SIZE must be positive")
	}

	if cfg.ChunkOverlap < 0 || cfg.ChunkOverlap >= cfg.MaxChunkSize {
		return nil, fmt.Errorf("CHUNK_OVERLAP must satisfy 0 <= overlap < MAX_CHUNK_SIZE")
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

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvList(key, defaultValue string) []string {
	raw := strings.Split(getEnv(key, defaultValue), ",")
	values := make([]string, 0, len(raw))
	for _, v := range raw {
		if v = strings.TrimSpace(v); v != "" {
			values = append(values, v)
		}
	}
	return values
}
