package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Setenv("SECRETS_DIR", t.TempDir())
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("REDIS_URL", "redis://localhost:6379")
	t.Setenv("ENABLED_PLATFORMS", "YouTube, instagram")
	t.Setenv("SCRAPE_POLL_INTERVAL", "500ms")

	cfg, err := Load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "db.internal", cfg.DBHost)
	assert.Equal(t, "5432", cfg.DBPort)
	assert.Equal(t, "test-secret", cfg.JWTSecret)
	assert.Equal(t, "redis://localhost:6379", cfg.RedisURL)
	assert.Equal(t, []string{"youtube", "instagram"}, cfg.Extraction.EnabledPlatforms)
	assert.Equal(t, 500*time.Millisecond, cfg.Extraction.ScrapePollInterval)
	assert.Equal(t, 15, cfg.Extraction.ScrapeMaxPolls)
	assert.Equal(t, "redis", cfg.Extraction.CacheBackend)
	assert.True(t, cfg.PlatformEnabled("youtube"))
	assert.False(t, cfg.PlatformEnabled("tiktok"))
}

func TestLoadReadsSecretFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "firecrawl_api_key"), []byte("fc-secret\n"), 0o600))
	t.Setenv("SECRETS_DIR", dir)

	cfg, err := Load(viper.New())
	require.NoError(t, err)
	assert.Equal(t, "fc-secret", cfg.Providers.FirecrawlAPIKey)
}

func TestLoadRejectsNonPositivePolls(t *testing.T) {
	t.Setenv("SECRETS_DIR", t.TempDir())
	t.Setenv("SCRAPE_MAX_POLLS", "0")

	_, err := Load(viper.New())
	assert.Error(t, err)
}

func TestPostgresDSN(t *testing.T) {
	cfg := &Config{DBHost: "h", DBPort: "1", DBUser: "u", DBPassword: "p", DBName: "n", DBSSLMode: "disable"}
	assert.Equal(t, "host=h port=1 user=u password=p dbname=n sslmode=disable", cfg.PostgresDSN())

	cfg.DatabaseURL = "postgres://u:p@h/n"
	assert.Equal(t, "postgres://u:p@h/n", cfg.PostgresDSN())
}

func TestValidateConfig(t *testing.T) {
	base := func() *Config {
		return &Config{
			Environment: Development,
			ServerPort:  "8080",
			Extraction:  ExtractionConfig{CacheBackend: "redis", EnabledPlatforms: []string{"generic"}},
		}
	}

	t.Run("valid development config", func(t *testing.T) {
		assert.NoError(t, ValidateConfig(base()))
	})

	t.Run("production requires secrets", func(t *testing.T) {
		cfg := base()
		cfg.Environment = Production
		err := ValidateConfig(cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "JWT_SECRET")
		assert.Contains(t, err.Error(), "DB_PASSWORD")
	})

	t.Run("unknown cache backend", func(t *testing.T) {
		cfg := base()
		cfg.Extraction.CacheBackend = "memcached"
		assert.ErrorContains(t, ValidateConfig(cfg), "ACQUISITION_CACHE")
	})

	t.Run("unknown platform", func(t *testing.T) {
		cfg := base()
		cfg.Extraction.EnabledPlatforms = []string{"myspace"}
		assert.ErrorContains(t, ValidateConfig(cfg), "myspace")
	})
}

func TestValidateProviders(t *testing.T) {
	t.Run("all platforms with nothing configured", func(t *testing.T) {
		cfg := &Config{Extraction: ExtractionConfig{EnabledPlatforms: []string{"generic", "instagram"}}}
		err := ValidateProviders(cfg)
		require.Error(t, err)

		var errs ValidationErrors
		require.ErrorAs(t, err, &errs)
		assert.Len(t, errs, 3)
		assert.Contains(t, err.Error(), "AI provider is not configured")
		assert.Contains(t, err.Error(), "Firecrawl is not configured")
		assert.Contains(t, err.Error(), "Instagram oEmbed is not configured")
	})

	t.Run("instagram only needs facebook credentials", func(t *testing.T) {
		cfg := &Config{
			Extraction: ExtractionConfig{EnabledPlatforms: []string{"instagram"}},
			Providers:  ProviderConfig{OpenAIAPIKey: "k", FacebookAppID: "id", FacebookAppSecret: "s"},
		}
		assert.NoError(t, ValidateProviders(cfg))
	})

	t.Run("mirroring needs a bucket", func(t *testing.T) {
		cfg := &Config{Storage: StorageConfig{MirrorImages: true}}
		assert.ErrorContains(t, ValidateProviders(cfg), "image storage is not configured")
	})
}

func TestParseEnvironment(t *testing.T) {
	tests := map[string]Environment{
		"production": Production,
		"PROD":       Production,
		"test":       Test,
		"ci":         CI,
		"":           Development,
		"staging":    Development,
	}
	for raw, want := range tests {
		t.Run(raw, func(t *testing.T) {
			assert.Equal(t, want, ParseEnvironment(raw))
		})
	}
}

func TestLoadChainOverrides(t *testing.T) {
	t.Setenv("SECRETS_DIR", t.TempDir())
	t.Setenv("CHAIN_TIKTOK", "tiktok-oembed, url-structure")

	cfg, err := Load(viper.New())
	require.NoError(t, err)
	assert.Equal(t, []string{"tiktok-oembed", "url-structure"}, cfg.Extraction.Chains["tiktok"])
	assert.NotContains(t, cfg.Extraction.Chains, "youtube")
}
