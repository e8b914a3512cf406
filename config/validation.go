package config

import (
	"fmt"
	"strings"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors collects every problem found in one pass.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	msgs := make([]string, 0, len(e))
	for _, v := range e {
		msgs = append(msgs, v.Error())
	}
	return strings.Join(msgs, "\n")
}

var knownPlatforms = map[string]bool{
	"generic":   true,
	"youtube":   true,
	"tiktok":    true,
	"instagram": true,
}

// ValidateConfig checks if the configuration meets the requirements for the current environment
func ValidateConfig(cfg *Config) error {
	var errs ValidationErrors

	if cfg.ServerPort == "" {
		errs = append(errs, ValidationError{"SERVER_PORT", "is required"})
	}

	switch cfg.Environment {
	case Production, CI:
		if cfg.JWTSecret == "" {
			errs = append(errs, ValidationError{"JWT_SECRET", "is required"})
		}
		if cfg.DatabaseURL == "" && cfg.DBPassword == "" {
			errs = append(errs, ValidationError{"DB_PASSWORD", "is required when DATABASE_URL is not set"})
		}
	}

	switch cfg.Extraction.CacheBackend {
	case "redis", "badger", "none":
	default:
		errs = append(errs, ValidationError{"ACQUISITION_CACHE", fmt.Sprintf("unknown backend %q", cfg.Extraction.CacheBackend)})
	}

	for _, p := range cfg.Extraction.EnabledPlatforms {
		if !knownPlatforms[p] {
			errs = append(errs, ValidationError{"ENABLED_PLATFORMS", fmt.Sprintf("unknown platform %q", p)})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ValidateProviders fails fast when an enabled platform depends on a
// provider whose credentials are missing.
func ValidateProviders(cfg *Config) error {
	var errs ValidationErrors
	p := cfg.Providers

	if len(cfg.Extraction.EnabledPlatforms) > 0 && p.GeminiAPIKey == "" && p.OpenAIAPIKey == "" {
		errs = append(errs, ValidationError{"GOOGLE_AI_API_KEY", "AI provider is not configured"})
	}
	if p.FirecrawlAPIKey == "" &&
		(cfg.PlatformEnabled("generic") || cfg.PlatformEnabled("youtube") || cfg.PlatformEnabled("tiktok")) {
		errs = append(errs, ValidationError{"FIRECRAWL_API_KEY", "Firecrawl is not configured"})
	}
	if cfg.PlatformEnabled("instagram") && (p.FacebookAppID == "" || p.FacebookAppSecret == "") {
		errs = append(errs, ValidationError{"FACEBOOK_APP_ID", "Instagram oEmbed is not configured"})
	}
	if cfg.Storage.MirrorImages && cfg.Storage.BucketName == "" {
		errs = append(errs, ValidationError{"S3_BUCKET_NAME", "image storage is not configured"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
