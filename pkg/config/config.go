// Package config loads the server configuration from the environment and an optional .env file.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Scraper backends.
const (
	ScraperApify    = "apify"
	ScraperLinkedIn = "linkedin"
)

// Config is the server configuration.
type Config struct {
	Port     int    `env:"PORT" envDefault:"3000"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// Language model
	OpenAIAPIKey  string  `env:"OPENAI_API_KEY"`
	OpenAIBaseURL string  `env:"OPENAI_BASE_URL"`
	OpenAIModel   string  `env:"OPENAI_MODEL" envDefault:"gpt-4o"`
	CopyLanguage  string  `env:"COPY_LANGUAGE" envDefault:"es"`
	LLMRPS        float64 `env:"LLM_RPS" envDefault:"0"`

	// Profile scraping
	Scraper                string `env:"SCRAPER" envDefault:"apify"`
	ApifyAPIToken          string `env:"APIFY_API_TOKEN"`
	ApifyActorID           string `env:"APIFY_ACTOR_ID" envDefault:"VhxlqQXRwhW8H5hNV"`
	LinkedInBrowserCookies bool   `env:"LINKEDIN_BROWSER_COOKIES" envDefault:"false"`

	// Google
	GoogleClientID     string `env:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret string `env:"GOOGLE_CLIENT_SECRET"`
	GoogleRedirectURI  string `env:"GOOGLE_REDIRECT_URI" envDefault:"http://localhost:3000/oauth2callback"`
	GoogleTokens       string `env:"GOOGLE_TOKENS"`
	TokenPath          string `env:"TOKEN_PATH" envDefault:"tokens.json"`

	// Deck
	DeckTemplateFile string `env:"DECK_TEMPLATE_FILE"`
	DeckTemplateID   string `env:"DECK_TEMPLATE_ID"`
	DeckFolder       string `env:"DECK_FOLDER"`

	// Presenter contact slots
	SellerName    string `env:"SELLER_NAME"`
	SellerRole    string `env:"SELLER_ROLE"`
	SellerEmail   string `env:"SELLER_EMAIL"`
	SellerPhone   string `env:"SELLER_PHONE"`
	SellerWebsite string `env:"SELLER_WEBSITE"`

	// Caching
	CacheDir string        `env:"CACHE_DIR"`
	CacheTTL time.Duration `env:"CACHE_TTL" envDefault:"72h"`
	NoCache  bool          `env:"NO_CACHE" envDefault:"false"`

	WebsiteBlacklistExtra []string `env:"WEBSITE_BLACKLIST_EXTRA" envSeparator:","`
	PublicDir             string   `env:"PUBLIC_DIR" envDefault:"public"`
	GenerateRatePerMin    int      `env:"GENERATE_RATE_PER_MIN" envDefault:"10"`
}

// Load reads .env (when present) and the environment.
func Load() (*Config, error) {
	_ = godotenv.Load() //nolint:errcheck // .env is optional

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that env tags cannot express.
func (c *Config) Validate() error {
	var errs []error
	c.Scraper = strings.ToLower(strings.TrimSpace(c.Scraper))
	switch c.Scraper {
	case ScraperApify, ScraperLinkedIn:
	default:
		errs = append(errs, fmt.Errorf("SCRAPER must be %q or %q, got %q", ScraperApify, ScraperLinkedIn, c.Scraper))
	}
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT out of range: %d", c.Port))
	}
	if c.LLMRPS < 0 {
		errs = append(errs, errors.New("LLM_RPS must not be negative"))
	}
	if c.GenerateRatePerMin < 0 {
		errs = append(errs, errors.New("GENERATE_RATE_PER_MIN must not be negative"))
	}
	return errors.Join(errs...)
}

// GoogleConfigured reports whether OAuth client credentials are set.
func (c *Config) GoogleConfigured() bool {
	return c.GoogleClientID != "" && c.GoogleClientSecret != ""
}
