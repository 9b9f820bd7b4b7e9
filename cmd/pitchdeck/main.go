// Command pitchdeck serves the sales deck generator.
//
// Usage:
//
//	pitchdeck            # reads configuration from the environment and .env
//	pitchdeck -port 8080 -v
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/codeGROOVE-dev/pitchdeck/pkg/apify"
	"github.com/codeGROOVE-dev/pitchdeck/pkg/auth"
	"github.com/codeGROOVE-dev/pitchdeck/pkg/config"
	"github.com/codeGROOVE-dev/pitchdeck/pkg/copywriter"
	"github.com/codeGROOVE-dev/pitchdeck/pkg/httpcache"
	"github.com/codeGROOVE-dev/pitchdeck/pkg/linkedin"
	"github.com/codeGROOVE-dev/pitchdeck/pkg/pitch"
	"github.com/codeGROOVE-dev/pitchdeck/pkg/server"
	"github.com/codeGROOVE-dev/pitchdeck/pkg/slides"
	"github.com/codeGROOVE-dev/pitchdeck/pkg/website"
	"github.com/gin-gonic/gin"
)

const shutdownTimeout = 15 * time.Second

func main() {
	port := flag.Int("port", 0, "listen port (overrides PORT)")
	verbose := flag.Bool("v", false, "verbose logging")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}
	if *port > 0 {
		cfg.Port = *port
	}

	logLevel := slog.LevelInfo
	if *verbose || strings.EqualFold(cfg.LogLevel, "debug") {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server failed", "error", err)
		stop()
		os.Exit(1) //nolint:gocritic // exitAfterDefer is acceptable in main
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	cache := newCache(cfg, logger)
	defer func() {
		if err := cache.Close(); err != nil {
			logger.Warn("failed to close cache", "error", err)
		}
	}()

	scraper, err := newScraper(ctx, cfg, cache, logger)
	if err != nil {
		return err
	}

	llm, err := copywriter.NewOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL)
	if err != nil {
		logger.Warn("language model not configured; generation will fail", "error", err)
	}
	var llmClient copywriter.Client
	if llm != nil {
		llmClient = llm
	}
	writer := copywriter.New(llmClient,
		copywriter.WithModel(cfg.OpenAIModel),
		copywriter.WithLanguage(cfg.CopyLanguage),
		copywriter.WithRateLimit(cfg.LLMRPS),
		copywriter.WithCache(cache),
		copywriter.WithLogger(logger),
		copywriter.WithSeller(copywriter.Seller{
			Name:    cfg.SellerName,
			Role:    cfg.SellerRole,
			Email:   cfg.SellerEmail,
			Phone:   cfg.SellerPhone,
			Website: cfg.SellerWebsite,
		}),
	)

	tmpl, err := slides.LoadTemplate(cfg.DeckTemplateFile)
	if err != nil {
		return err
	}
	tmpl = tmpl.WithOverrides(cfg.DeckTemplateID, cfg.DeckFolder)

	google := auth.NewGoogleOAuth(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURI,
		&auth.TokenStore{Path: cfg.TokenPath, Inline: cfg.GoogleTokens}, logger)
	if !google.Configured() {
		logger.Warn("GOOGLE_CLIENT_ID/GOOGLE_CLIENT_SECRET not set; sign-in will fail")
	}
	publisher := slides.NewPublisher(tmpl, google.Client, slides.WithLogger(logger))

	svc := pitch.New(scraper, writer, publisher,
		pitch.WithExtractor(website.New(
			website.WithExtraHosts(cfg.WebsiteBlacklistExtra...),
			website.WithLogger(logger),
		)),
		pitch.WithLogger(logger),
	)

	gin.SetMode(gin.ReleaseMode)
	srv := &http.Server{
		Addr: fmt.Sprintf(":%d", cfg.Port),
		Handler: server.New(svc, google,
			server.WithLogger(logger),
			server.WithPublicDir(cfg.PublicDir),
			server.WithGenerateLimit(cfg.GenerateRatePerMin),
		).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", srv.Addr, "scraper", cfg.Scraper, "model", writer.Model(),
			"template", tmpl.TemplateID, "google_authenticated", google.Authenticated())
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	stats := httpcache.CacheStats()
	logger.Info("server stopped", "cache_hits", stats.Hits, "cache_misses", stats.Misses)
	return nil
}

func newCache(cfg *config.Config, logger *slog.Logger) *httpcache.Cache {
	if cfg.NoCache {
		return httpcache.NewNull()
	}
	var (
		cache *httpcache.Cache
		err   error
	)
	if cfg.CacheDir != "" {
		cache, err = httpcache.NewWithPath(cfg.CacheTTL, cfg.CacheDir)
	} else {
		cache, err = httpcache.New(cfg.CacheTTL)
	}
	if err != nil {
		logger.Warn("failed to initialize cache, continuing without cache", "error", err)
		return httpcache.NewNull()
	}
	logger.Debug("cache initialized", "ttl", cfg.CacheTTL.String())
	return cache
}

func newScraper(ctx context.Context, cfg *config.Config, cache httpcache.Cacher, logger *slog.Logger) (pitch.Scraper, error) {
	if cfg.Scraper == config.ScraperLinkedIn {
		opts := []linkedin.Option{linkedin.WithHTTPCache(cache), linkedin.WithLogger(logger)}
		if cfg.LinkedInBrowserCookies {
			opts = append(opts, linkedin.WithBrowserCookies())
		}
		c, err := linkedin.New(ctx, opts...)
		if err != nil {
			return nil, fmt.Errorf("linkedin scraper: %w", err)
		}
		return c, nil
	}
	if cfg.ApifyAPIToken == "" {
		logger.Warn("APIFY_API_TOKEN not set; profile scraping will fail")
	}
	return apify.New(cfg.ApifyAPIToken,
		apify.WithActor(cfg.ApifyActorID),
		apify.WithHTTPCache(cache),
		apify.WithLogger(logger),
	), nil
}
