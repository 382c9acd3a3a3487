// internal/config/config.go

package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Environment string
	Server      ServerConfig
	Log         LogConfig
	Database    DatabaseConfig
	Store       StoreConfig
	NATS        NATSConfig
	Cache       CacheConfig
	News        NewsConfig
	Events      EventsConfig
	Reddit      RedditConfig
	Geo         GeoConfig
	Pipeline    PipelineConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
	CorsOrigins     []string
}

// LogConfig holds logger configuration
type LogConfig struct {
	Level  string
	Format string
}

// DatabaseConfig holds Postgres configuration
type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Database     string
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  time.Duration
	SSLMode      string
}

// ConnString returns the pgx connection string
func (c DatabaseConfig) ConnString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Database, c.SSLMode,
	)
}

// Snapshot store drivers
const (
	StoreNone     = ""
	StorePostgres = "postgres"
	StoreSQLite   = "sqlite"
)

// StoreConfig selects where aggregation snapshots are kept
type StoreConfig struct {
	Driver     string
	SQLitePath string
}

// NATSConfig holds NATS configuration
type NATSConfig struct {
	Enabled        bool
	URL            string
	MaxReconnects  int
	ReconnectWait  time.Duration
	ConnectTimeout time.Duration
	Subject        string
}

// CacheConfig holds the upstream response cache configuration
type CacheConfig struct {
	Enabled  bool
	RedisURL string
	TTL      time.Duration
}

// NewsConfig holds news upstream configuration
type NewsConfig struct {
	APIKey            string
	BaseURL           string
	UserAgent         string
	Timeout           time.Duration
	GoogleNewsEnabled bool
	GoogleNewsURL     string
}

// EventsConfig holds events upstream configuration
type EventsConfig struct {
	APIKey          string
	BaseURL         string
	DefaultRadius   int
	DefaultPageSize int
	Timeout         time.Duration
}

// RedditConfig holds discussion platform configuration
type RedditConfig struct {
	BaseURL   string
	UserAgent string
	PostLimit int
	FeedCap   int
	Timeout   time.Duration
}

// GeoConfig holds geocoding configuration
type GeoConfig struct {
	NominatimURL string
	UserAgent    string
	Timeout      time.Duration
}

// PipelineConfig holds aggregation tuning
type PipelineConfig struct {
	DefaultPageSize     int
	MaxPageSize         int
	CuratedSourceLimit  int
	CuratedPageSize     int
	QueryLimit          int
	MaxQueries          int
	QueryPageSize       int
	QueryInterval       time.Duration
	MinRelevance        float64
	MinCuratedRelevance float64
	SnapshotLimit       int
}

// Load loads configuration from a .env file, if present, and the environment
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to load .env: %w", err)
	}

	userAgent := getEnv("USER_AGENT", "LocalLens/1.0.0")

	config := Config{
		Environment: getEnv("APP_ENV", "development"),
		Server: ServerConfig{
			Host:            getEnv("SERVER_HOST", "0.0.0.0"),
			Port:            getEnvAsInt("SERVER_PORT", 8080),
			ReadTimeout:     getEnvAsDuration("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:    getEnvAsDuration("SERVER_WRITE_TIMEOUT", 60*time.Second),
			RequestTimeout:  getEnvAsDuration("SERVER_REQUEST_TIMEOUT", 60*time.Second),
			ShutdownTimeout: getEnvAsDuration("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
			CorsOrigins:     getEnvAsSlice("SERVER_CORS_ORIGINS", []string{"*"}),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "text"),
		},
		Database: DatabaseConfig{
			Host:         getEnv("DB_HOST", "localhost"),
			Port:         getEnvAsInt("DB_PORT", 5432),
			User:         getEnv("DB_USER", "postgres"),
			Password:     getEnv("DB_PASSWORD", "postgres"),
			Database:     getEnv("DB_NAME", "locallens"),
			MaxOpenConns: getEnvAsInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns: getEnvAsInt("DB_MAX_IDLE_CONNS", 2),
			MaxLifetime:  getEnvAsDuration("DB_MAX_LIFETIME", 5*time.Minute),
			SSLMode:      getEnv("DB_SSL_MODE", "disable"),
		},
		Store: StoreConfig{
			Driver:     strings.ToLower(getEnv("STORE_DRIVER", StoreNone)),
			SQLitePath: getEnv("STORE_SQLITE_PATH", "locallens.db"),
		},
		NATS: NATSConfig{
			Enabled:        getEnvAsBool("NATS_ENABLED", false),
			URL:            getEnv("NATS_URL", "nats://localhost:4222"),
			MaxReconnects:  getEnvAsInt("NATS_MAX_RECONNECTS", 10),
			ReconnectWait:  getEnvAsDuration("NATS_RECONNECT_WAIT", 1*time.Second),
			ConnectTimeout: getEnvAsDuration("NATS_CONNECT_TIMEOUT", 2*time.Second),
			Subject:        getEnv("NATS_SUBJECT", "news.aggregated"),
		},
		Cache: CacheConfig{
			Enabled:  getEnvAsBool("CACHE_ENABLED", false),
			RedisURL: getEnv("REDIS_URL", "redis://localhost:6379/0"),
			TTL:      getEnvAsDuration("CACHE_TTL", 300*time.Second),
		},
		News: NewsConfig{
			APIKey:            getEnv("NEWS_API_KEY", ""),
			BaseURL:           getEnv("NEWS_API_URL", "https://newsapi.org/v2"),
			UserAgent:         userAgent,
			Timeout:           getEnvAsDuration("NEWS_API_TIMEOUT", 10*time.Second),
			GoogleNewsEnabled: getEnvAsBool("GOOGLE_NEWS_ENABLED", false),
			GoogleNewsURL:     getEnv("GOOGLE_NEWS_URL", "https://news.google.com/rss/search"),
		},
		Events: EventsConfig{
			APIKey:          getEnv("TICKETMASTER_API_KEY", ""),
			BaseURL:         getEnv("TICKETMASTER_API_URL", "https://app.ticketmaster.com/discovery/v2"),
			DefaultRadius:   getEnvAsInt("EVENTS_DEFAULT_RADIUS", 25),
			DefaultPageSize: getEnvAsInt("EVENTS_DEFAULT_PAGE_SIZE", 20),
			Timeout:         getEnvAsDuration("EVENTS_TIMEOUT", 10*time.Second),
		},
		Reddit: RedditConfig{
			BaseURL:   getEnv("REDDIT_URL", "https://www.reddit.com"),
			UserAgent: userAgent,
			PostLimit: getEnvAsInt("REDDIT_POST_LIMIT", 15),
			FeedCap:   getEnvAsInt("REDDIT_FEED_CAP", 30),
			Timeout:   getEnvAsDuration("REDDIT_TIMEOUT", 10*time.Second),
		},
		Geo: GeoConfig{
			NominatimURL: getEnv("NOMINATIM_URL", "https://nominatim.openstreetmap.org"),
			UserAgent:    userAgent,
			Timeout:      getEnvAsDuration("GEO_TIMEOUT", 10*time.Second),
		},
		Pipeline: PipelineConfig{
			DefaultPageSize:     getEnvAsInt("PIPELINE_DEFAULT_PAGE_SIZE", 20),
			MaxPageSize:         getEnvAsInt("PIPELINE_MAX_PAGE_SIZE", 100),
			CuratedSourceLimit:  getEnvAsInt("PIPELINE_CURATED_SOURCE_LIMIT", 5),
			CuratedPageSize:     getEnvAsInt("PIPELINE_CURATED_PAGE_SIZE", 15),
			QueryLimit:          getEnvAsInt("PIPELINE_QUERY_LIMIT", 6),
			MaxQueries:          getEnvAsInt("PIPELINE_MAX_QUERIES", 4),
			QueryPageSize:       getEnvAsInt("PIPELINE_QUERY_PAGE_SIZE", 8),
			QueryInterval:       getEnvAsDuration("PIPELINE_QUERY_INTERVAL", 150*time.Millisecond),
			MinRelevance:        getEnvAsFloat("PIPELINE_MIN_RELEVANCE", 3),
			MinCuratedRelevance: getEnvAsFloat("PIPELINE_MIN_CURATED_RELEVANCE", 5),
			SnapshotLimit:       getEnvAsInt("PIPELINE_SNAPSHOT_LIMIT", 10),
		},
	}

	return config, validate(config)
}

// validate checks if config is valid. Missing API keys are reported per
// request instead, so the service can still serve the other feeds.
func validate(config Config) error {
	switch config.Store.Driver {
	case StoreNone, StorePostgres, StoreSQLite:
	default:
		return fmt.Errorf("unknown store driver %q", config.Store.Driver)
	}

	p := config.Pipeline
	if p.DefaultPageSize <= 0 || p.MaxPageSize <= 0 {
		return fmt.Errorf("page sizes must be positive")
	}
	if p.DefaultPageSize > p.MaxPageSize {
		return fmt.Errorf("default page size %d exceeds max page size %d", p.DefaultPageSize, p.MaxPageSize)
	}
	if p.CuratedPageSize <= 0 || p.QueryPageSize <= 0 {
		return fmt.Errorf("upstream page sizes must be positive")
	}
	if p.QueryInterval < 0 {
		return fmt.Errorf("query interval must not be negative")
	}

	if config.Cache.Enabled && config.Cache.TTL <= 0 {
		return fmt.Errorf("cache TTL must be positive when the cache is enabled")
	}

	return nil
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	parts := strings.Split(valueStr, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
