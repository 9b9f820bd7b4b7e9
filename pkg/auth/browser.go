package auth

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"

	"github.com/browserutils/kooky"
	_ "github.com/browserutils/kooky/browser/all" // register every browser cookie store
	"github.com/browserutils/kooky/browser/firefox"
)

// siteDomains maps site names to their cookie domains.
var siteDomains = map[string]string{
	"linkedin": "linkedin.com",
}

// sessionCookies lists the cookies a LinkedIn Voyager request needs.
var sessionCookies = map[string][]string{
	"linkedin": {"li_at", "JSESSIONID", "lidc", "bcookie"},
}

// BrowserSource reads cookies from local browser cookie stores.
type BrowserSource struct {
	logger *slog.Logger
}

// NewBrowserSource creates a browser cookie source.
func NewBrowserSource(logger *slog.Logger) *BrowserSource {
	if logger == nil {
		logger = slog.Default()
	}
	return &BrowserSource{logger: logger}
}

// Cookies returns the session cookies for site found in any local browser.
// Read failures are logged and treated as "no cookies".
func (s *BrowserSource) Cookies(ctx context.Context, site string) (map[string]string, error) {
	domain, ok := siteDomains[site]
	if !ok {
		return nil, nil //nolint:nilnil // unknown site has no cookies
	}
	s.logger.DebugContext(ctx, "reading browser cookies", "site", site, "domain", domain)

	// Firefox profiles are globbed directly; kooky's finder misses some layouts.
	if cookies := s.firefoxProfiles(ctx, domain, site); len(cookies) > 0 {
		return cookies, nil
	}

	found, err := kooky.ReadCookies(ctx, kooky.Valid, kooky.DomainHasSuffix(domain))
	if err != nil {
		s.logger.DebugContext(ctx, "failed to read browser cookies", "site", site, "error", err)
		return nil, nil //nolint:nilnil // browser read failure is not fatal
	}
	if len(found) == 0 {
		return nil, nil //nolint:nilnil // no browser cookies is not an error
	}
	return s.keep(found, site), nil
}

func (s *BrowserSource) firefoxProfiles(ctx context.Context, domain, site string) map[string]string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return nil
	}
	dir := filepath.Join(home, ".mozilla", "firefox")
	if runtime.GOOS == "darwin" {
		dir = filepath.Join(home, "Library", "Application Support", "Firefox", "Profiles")
	}

	files, err := filepath.Glob(filepath.Join(dir, "*", "cookies.sqlite"))
	if err != nil {
		return nil
	}
	for _, f := range files {
		found, err := firefox.ReadCookies(ctx, f, kooky.Valid, kooky.DomainHasSuffix(domain))
		if err != nil || len(found) == 0 {
			continue
		}
		s.logger.DebugContext(ctx, "found Firefox cookies",
			"profile", filepath.Base(filepath.Dir(f)), "site", site, "count", len(found))
		return s.keep(found, site)
	}
	return nil
}

// keep drops everything except the session cookies the site needs.
func (s *BrowserSource) keep(found []*kooky.Cookie, site string) map[string]string {
	want := make(map[string]bool)
	for _, name := range sessionCookies[site] {
		want[name] = true
	}
	cookies := make(map[string]string)
	for _, c := range found {
		if len(want) > 0 && !want[c.Name] {
			continue
		}
		cookies[c.Name] = c.Value
		s.logger.Debug("found session cookie", "name", c.Name, "len", len(c.Value))
	}
	return cookies
}
