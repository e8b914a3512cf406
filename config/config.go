package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Environment Environment

	// Server configuration
	ServerPort         string
	ServerHost         string
	CORSAllowedOrigins []string

	// Database configuration
	DatabaseURL string
	DBHost      string
	DBPort      string
	DBUser      string
	DBPassword  string
	DBName      string
	DBSSLMode   string

	MigrationsDir string

	// Redis configuration
	RedisURL      string
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	// JWT configuration
	JWTSecret string

	// Logging
	LogLevel  string
	LogFormat string

	Providers  ProviderConfig
	Extraction ExtractionConfig
	Storage    StorageConfig
}

// ProviderConfig carries credentials and endpoints for the third-party
// services used by the extraction pipeline.
type ProviderConfig struct {
	FirecrawlAPIKey  string
	FirecrawlBaseURL string

	GeminiAPIKey  string
	GeminiModel   string
	GeminiBaseURL string

	OpenAIAPIKey  string
	OpenAIModel   string
	OpenAIBaseURL string

	FacebookAppID      string
	FacebookAppSecret  string
	InstagramOEmbedURL string
	YouTubeOEmbedURL   string
	TikTokOEmbedURL    string
}

// ExtractionConfig tunes the pipeline itself.
type ExtractionConfig struct {
	EnabledPlatforms     []string
	BrowserScrapeEnabled bool
	ScrapePollInterval   time.Duration
	ScrapeMaxPolls       int
	StrategyTimeout      time.Duration
	RequestTimeout       time.Duration
	CacheBackend         string
	CacheTTL             time.Duration
	BadgerPath           string
	RateLimit            int
	RateWindow           time.Duration

	// Chains overrides the strategy order per platform, e.g.
	// CHAIN_TIKTOK=tiktok-oembed,scrape,url-structure.
	Chains map[string][]string
}

// StorageConfig controls mirroring of platform thumbnails into S3.
type StorageConfig struct {
	BucketName   string
	Region       string
	MirrorImages bool
}

// secretKeys are looked up in SECRETS_DIR when the environment leaves them empty.
var secretKeys = []string{
	"DB_USER",
	"DB_PASSWORD",
	"JWT_SECRET",
	"REDIS_PASSWORD",
	"REDIS_URL",
	"DATABASE_URL",
	"FIRECRAWL_API_KEY",
	"GOOGLE_AI_API_KEY",
	"OPENAI_API_KEY",
	"FACEBOOK_APP_ID",
	"FACEBOOK_APP_SECRET",
}

// LoadConfig creates a new Config instance with values from environment variables or secrets
func LoadConfig() (*Config, error) {
	cfg, err := Load(viper.New())
	if err != nil {
		return nil, err
	}

	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// Load reads configuration through v without validating it.
func Load(v *viper.Viper) (*Config, error) {
	v.AutomaticEnv()
	setDefaults(v)

	for _, key := range secretKeys {
		if v.GetString(key) == "" {
			if secret := readSecret(strings.ToLower(key)); secret != "" {
				v.Set(key, secret)
			}
		}
	}

	cfg := &Config{
		Environment:        GetEnvironment(),
		ServerPort:         v.GetString("SERVER_PORT"),
		ServerHost:         v.GetString("SERVER_HOST"),
		CORSAllowedOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
		DatabaseURL:        v.GetString("DATABASE_URL"),
		DBHost:             v.GetString("DB_HOST"),
		DBPort:             v.GetString("DB_PORT"),
		DBUser:             v.GetString("DB_USER"),
		DBPassword:         v.GetString("DB_PASSWORD"),
		DBName:             v.GetString("DB_NAME"),
		DBSSLMode:          v.GetString("DB_SSL_MODE"),
		MigrationsDir:      v.GetString("MIGRATIONS_DIR"),
		RedisURL:           v.GetString("REDIS_URL"),
		RedisHost:          v.GetString("REDIS_HOST"),
		RedisPort:          v.GetString("REDIS_PORT"),
		RedisPassword:      v.GetString("REDIS_PASSWORD"),
		RedisDB:            v.GetInt("REDIS_DB"),
		JWTSecret:          v.GetString("JWT_SECRET"),
		LogLevel:           v.GetString("LOG_LEVEL"),
		LogFormat:          v.GetString("LOG_FORMAT"),
		Providers: ProviderConfig{
			FirecrawlAPIKey:    v.GetString("FIRECRAWL_API_KEY"),
			FirecrawlBaseURL:   v.GetString("FIRECRAWL_BASE_URL"),
			GeminiAPIKey:       v.GetString("GOOGLE_AI_API_KEY"),
			GeminiModel:        v.GetString("GEMINI_MODEL"),
			GeminiBaseURL:      v.GetString("GEMINI_BASE_URL"),
			OpenAIAPIKey:       v.GetString("OPENAI_API_KEY"),
			OpenAIModel:        v.GetString("OPENAI_MODEL"),
			OpenAIBaseURL:      v.GetString("OPENAI_BASE_URL"),
			FacebookAppID:      v.GetString("FACEBOOK_APP_ID"),
			FacebookAppSecret:  v.GetString("FACEBOOK_APP_SECRET"),
			InstagramOEmbedURL: v.GetString("INSTAGRAM_OEMBED_URL"),
			YouTubeOEmbedURL:   v.GetString("YOUTUBE_OEMBED_URL"),
			TikTokOEmbedURL:    v.GetString("TIKTOK_OEMBED_URL"),
		},
		Extraction: ExtractionConfig{
			EnabledPlatforms:     splitList(strings.ToLower(v.GetString("ENABLED_PLATFORMS"))),
			BrowserScrapeEnabled: v.GetBool("BROWSER_SCRAPE_ENABLED"),
			ScrapePollInterval:   v.GetDuration("SCRAPE_POLL_INTERVAL"),
			ScrapeMaxPolls:       v.GetInt("SCRAPE_MAX_POLLS"),
			StrategyTimeout:      v.GetDuration("STRATEGY_TIMEOUT"),
			RequestTimeout:       v.GetDuration("EXTRACTION_TIMEOUT"),
			CacheBackend:         strings.ToLower(v.GetString("ACQUISITION_CACHE")),
			CacheTTL:             v.GetDuration("ACQUISITION_CACHE_TTL"),
			BadgerPath:           v.GetString("BADGER_PATH"),
			RateLimit:            v.GetInt("EXTRACTION_RATE_LIMIT"),
			RateWindow:           v.GetDuration("EXTRACTION_RATE_WINDOW"),
		},
		Storage: StorageConfig{
			BucketName:   v.GetString("S3_BUCKET_NAME"),
			Region:       v.GetString("AWS_REGION"),
			MirrorImages: v.GetBool("MIRROR_IMAGES"),
		},
	}

	cfg.Extraction.Chains = map[string][]string{}
	for platform := range knownPlatforms {
		if names := splitList(v.GetString("CHAIN_" + strings.ToUpper(platform))); len(names) > 0 {
			cfg.Extraction.Chains[platform] = names
		}
	}

	if cfg.Extraction.ScrapeMaxPolls <= 0 {
		return nil, fmt.Errorf("SCRAPE_MAX_POLLS must be positive, got %d", cfg.Extraction.ScrapeMaxPolls)
	}
	if cfg.Extraction.ScrapePollInterval <= 0 {
		return nil, fmt.Errorf("SCRAPE_POLL_INTERVAL must be positive")
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:5173")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_NAME", "recipebox")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("MIGRATIONS_DIR", "migrations")
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "text")

	v.SetDefault("FIRECRAWL_BASE_URL", "https://api.firecrawl.dev")
	v.SetDefault("GEMINI_MODEL", "gemini-1.5-flash")
	v.SetDefault("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com")
	v.SetDefault("OPENAI_MODEL", "gpt-4o")
	v.SetDefault("OPENAI_BASE_URL", "https://api.openai.com/v1")
	v.SetDefault("INSTAGRAM_OEMBED_URL", "https://graph.facebook.com/v19.0/instagram_oembed")
	v.SetDefault("YOUTUBE_OEMBED_URL", "https://www.youtube.com/oembed")
	v.SetDefault("TIKTOK_OEMBED_URL", "https://www.tiktok.com/oembed")

	v.SetDefault("ENABLED_PLATFORMS", "generic,youtube,tiktok,instagram")
	v.SetDefault("BROWSER_SCRAPE_ENABLED", false)
	v.SetDefault("SCRAPE_POLL_INTERVAL", 2*time.Second)
	v.SetDefault("SCRAPE_MAX_POLLS", 15)
	v.SetDefault("STRATEGY_TIMEOUT", 15*time.Second)
	v.SetDefault("EXTRACTION_TIMEOUT", 90*time.Second)
	v.SetDefault("ACQUISITION_CACHE", "redis")
	v.SetDefault("ACQUISITION_CACHE_TTL", 15*time.Minute)
	v.SetDefault("BADGER_PATH", "./data/acquisition")
	v.SetDefault("EXTRACTION_RATE_LIMIT", 10)
	v.SetDefault("EXTRACTION_RATE_WINDOW", time.Hour)

	v.SetDefault("S3_BUCKET_NAME", "recipebox-images")
	v.SetDefault("MIRROR_IMAGES", false)
}

// PostgresDSN returns DATABASE_URL when set, otherwise a key/value DSN.
func (c *Config) PostgresDSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode,
	)
}

// PlatformEnabled reports whether extraction for platform is switched on.
func (c *Config) PlatformEnabled(platform string) bool {
	for _, p := range c.Extraction.EnabledPlatforms {
		if p == platform {
			return true
		}
	}
	return false
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// readSecret reads a Docker secret from the secrets directory
func readSecret(name string) string {
	secretsDir := os.Getenv("SECRETS_DIR")
	if secretsDir == "" {
		secretsDir = "/run/secrets"
	}
	secretPath := filepath.Join(secretsDir, name)
	if data, err := os.ReadFile(secretPath); err == nil {
		return strings.TrimSpace(string(data))
	}
	return ""
}
