package config

import (
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Port != 3000 || cfg.OpenAIModel != "gpt-4o" || cfg.CopyLanguage != "es" {
		t.Errorf("defaults = port %d model %q lang %q", cfg.Port, cfg.OpenAIModel, cfg.CopyLanguage)
	}
	if cfg.Scraper != ScraperApify || cfg.ApifyActorID != "VhxlqQXRwhW8H5hNV" {
		t.Errorf("scraper defaults = %q %q", cfg.Scraper, cfg.ApifyActorID)
	}
	if cfg.TokenPath != "tokens.json" || cfg.PublicDir != "public" || cfg.CacheTTL != 72*time.Hour {
		t.Errorf("path defaults = %q %q %v", cfg.TokenPath, cfg.PublicDir, cfg.CacheTTL)
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "8081")
	t.Setenv("SCRAPER", " LinkedIn ")
	t.Setenv("WEBSITE_BLACKLIST_EXTRA", "calendly.com,wa.me")
	t.Setenv("CACHE_TTL", "30m")
	t.Setenv("SELLER_EMAIL", "ana@bizslides.example")
	t.Setenv("GOOGLE_CLIENT_ID", "id")
	t.Setenv("GOOGLE_CLIENT_SECRET", "secret")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Port != 8081 || cfg.Scraper != ScraperLinkedIn || cfg.CacheTTL != 30*time.Minute {
		t.Errorf("cfg = port %d scraper %q ttl %v", cfg.Port, cfg.Scraper, cfg.CacheTTL)
	}
	if diff := cmp.Diff([]string{"calendly.com", "wa.me"}, cfg.WebsiteBlacklistExtra); diff != "" {
		t.Errorf("WebsiteBlacklistExtra mismatch (-want +got):\n%s", diff)
	}
	if cfg.SellerEmail != "ana@bizslides.example" || !cfg.GoogleConfigured() {
		t.Errorf("seller %q google %v", cfg.SellerEmail, cfg.GoogleConfigured())
	}
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name, key, value, want string
	}{
		{"scraper", "SCRAPER", "phantom", "SCRAPER must be"},
		{"port range", "PORT", "70000", "PORT out of range"},
		{"port type", "PORT", "abc", "parse environment"},
		{"llm rps", "LLM_RPS", "-1", "LLM_RPS"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Load() with %s=%q error = %v, want containing %q", tt.key, tt.value, err, tt.want)
			}
		})
	}
}
