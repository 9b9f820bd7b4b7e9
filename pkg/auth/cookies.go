// Package auth provides credentials for the outbound collaborators: LinkedIn
// session cookies for direct scraping and Google OAuth tokens for Drive and Slides.
package auth

import (
	"context"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"sort"
)

// NewCookieJar creates an http.CookieJar populated with the given cookies for a domain.
func NewCookieJar(domain string, cookies map[string]string) (*cookiejar.Jar, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	u, err := url.Parse("https://" + domain)
	if err != nil {
		return nil, err
	}

	var hc []*http.Cookie
	for name, value := range cookies {
		if value == "" {
			continue
		}
		hc = append(hc, &http.Cookie{Name: name, Value: value, Domain: "." + domain, Path: "/"})
	}
	jar.SetCookies(u, hc)
	return jar, nil
}

// Source is a source of session cookies for a site.
type Source interface {
	// Cookies returns cookies for site, or nil when this source has none.
	Cookies(ctx context.Context, site string) (map[string]string, error)
}

// ChainSources returns cookies from the first source that provides them.
func ChainSources(ctx context.Context, site string, sources ...Source) (map[string]string, error) {
	for _, src := range sources {
		if src == nil {
			continue
		}
		cookies, err := src.Cookies(ctx, site)
		if err != nil {
			return nil, err
		}
		if len(cookies) > 0 {
			return cookies, nil
		}
	}
	return nil, nil //nolint:nilnil // no source had cookies, but this is not an error
}

// StaticSource serves a fixed cookie map, typically from command-line options.
type StaticSource struct {
	cookies map[string]string
}

// NewStaticSource creates a cookie source from a static map.
func NewStaticSource(cookies map[string]string) *StaticSource {
	return &StaticSource{cookies: cookies}
}

// Cookies returns a copy of the static cookies regardless of site.
func (s *StaticSource) Cookies(context.Context, string) (map[string]string, error) {
	if len(s.cookies) == 0 {
		return nil, nil //nolint:nilnil // empty static source is not an error
	}
	out := make(map[string]string, len(s.cookies))
	for k, v := range s.cookies {
		out[k] = v
	}
	return out, nil
}

// siteEnvVars maps env var names to cookie names, per site.
var siteEnvVars = map[string]map[string]string{
	"linkedin": {
		"LINKEDIN_LI_AT":      "li_at",
		"LINKEDIN_JSESSIONID": "JSESSIONID",
		"LINKEDIN_LIDC":       "lidc",
		"LINKEDIN_BCOOKIE":    "bcookie",
	},
}

// EnvSource reads cookies from environment variables.
type EnvSource struct{}

// Cookies returns the cookies for site that are set in the environment.
func (EnvSource) Cookies(_ context.Context, site string) (map[string]string, error) {
	vars, ok := siteEnvVars[site]
	if !ok {
		return nil, nil //nolint:nilnil // unknown site has no cookies
	}
	cookies := make(map[string]string)
	for env, name := range vars {
		if v := os.Getenv(env); v != "" {
			cookies[name] = v
		}
	}
	if len(cookies) == 0 {
		return nil, nil //nolint:nilnil // no env vars set is not an error
	}
	return cookies, nil
}

// EnvVarsForPlatform returns the sorted environment variable names read for site.
// Used in help and error messages.
func EnvVarsForPlatform(site string) []string {
	vars := make([]string, 0, len(siteEnvVars[site]))
	for env := range siteEnvVars[site] {
		vars = append(vars, env)
	}
	sort.Strings(vars)
	return vars
}
