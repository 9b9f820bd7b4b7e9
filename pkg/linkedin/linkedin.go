// Package linkedin fetches LinkedIn profiles from the Voyager API using
// authenticated session cookies. It is the direct alternative to the Apify scraper.
package linkedin

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/codeGROOVE-dev/pitchdeck/pkg/auth"
	"github.com/codeGROOVE-dev/pitchdeck/pkg/httpcache"
	"github.com/codeGROOVE-dev/pitchdeck/pkg/profile"
	"github.com/codeGROOVE-dev/pitchdeck/pkg/website"
	"github.com/tidwall/gjson"
)

const (
	site           = "linkedin"
	defaultBaseURL = "https://www.linkedin.com"
)

// cookieURL is where session cookies live in the jar.
var cookieURL, _ = url.Parse(defaultBaseURL) //nolint:errcheck // constant URL cannot fail

var publicIDPattern = regexp.MustCompile(`/in/([^/?#]+)`)

// Match returns true if the URL is a LinkedIn profile URL.
func Match(urlStr string) bool {
	return strings.Contains(strings.ToLower(urlStr), "linkedin.com/in/")
}

// Client fetches LinkedIn profiles with authenticated cookies.
type Client struct {
	httpClient *http.Client
	cache      httpcache.Cacher
	logger     *slog.Logger
	baseURL    string
}

// Option configures a Client.
type Option func(*config)

type config struct {
	cookies        map[string]string
	cache          httpcache.Cacher
	logger         *slog.Logger
	baseURL        string
	browserCookies bool
}

// WithCookies sets explicit cookie values.
func WithCookies(cookies map[string]string) Option {
	return func(c *config) { c.cookies = cookies }
}

// WithHTTPCache sets the response cache.
func WithHTTPCache(cache httpcache.Cacher) Option {
	return func(c *config) { c.cache = cache }
}

// WithBrowserCookies enables reading cookies from local browser stores.
func WithBrowserCookies() Option {
	return func(c *config) { c.browserCookies = true }
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) { c.logger = logger }
}

// WithBaseURL points the client at a different host, for tests.
func WithBaseURL(u string) Option {
	return func(c *config) { c.baseURL = strings.TrimRight(u, "/") }
}

// New creates a LinkedIn client.
// Cookie sources are checked in order: WithCookies > environment > browser.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &config{logger: slog.Default(), baseURL: defaultBaseURL}
	for _, opt := range opts {
		opt(cfg)
	}

	var sources []auth.Source
	if len(cfg.cookies) > 0 {
		sources = append(sources, auth.NewStaticSource(cfg.cookies))
	}
	sources = append(sources, auth.EnvSource{})
	if cfg.browserCookies {
		sources = append(sources, auth.NewBrowserSource(cfg.logger))
	}

	cookies, err := auth.ChainSources(ctx, site, sources...)
	if err != nil {
		return nil, fmt.Errorf("cookie retrieval failed: %w", err)
	}
	if len(cookies) == 0 {
		return nil, fmt.Errorf("%w: set %v or enable browser cookies",
			profile.ErrNoCookies, auth.EnvVarsForPlatform(site))
	}

	jar, err := auth.NewCookieJar("linkedin.com", cookies)
	if err != nil {
		return nil, fmt.Errorf("cookie jar creation failed: %w", err)
	}
	cfg.logger.InfoContext(ctx, "linkedin client created", "cookie_count", len(cookies))

	return &Client{
		httpClient: &http.Client{
			Jar:     jar,
			Timeout: 10 * time.Second,
			CheckRedirect: func(_ *http.Request, via []*http.Request) error {
				if len(via) >= 1 {
					return http.ErrUseLastResponse
				}
				return nil
			},
		},
		cache:   cfg.cache,
		logger:  cfg.logger,
		baseURL: cfg.baseURL,
	}, nil
}

// FetchProfile retrieves the profile at profileURL. A bare slug is accepted too.
func (c *Client) FetchProfile(ctx context.Context, profileURL string) (*profile.Record, error) {
	if strings.TrimSpace(profileURL) == "" {
		return nil, errors.New("no profile URL provided")
	}
	if !strings.HasPrefix(profileURL, "http") && !strings.Contains(profileURL, "/") {
		profileURL = defaultBaseURL + "/in/" + profileURL
	}
	id := extractPublicID(profileURL)
	if id == "" {
		return nil, fmt.Errorf("%w: %s is not a /in/ profile URL", profile.ErrProfileNotFound, profileURL)
	}
	c.logger.InfoContext(ctx, "fetching linkedin profile", "public_id", id)

	if err := c.ensureSessionCookies(ctx); err != nil {
		c.logger.DebugContext(ctx, "failed to refresh session cookies", "error", err)
	}

	apiURL := fmt.Sprintf("%s/voyager/api/identity/profiles/%s/profileView", c.baseURL, url.PathEscape(id))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("request creation failed: %w", err)
	}
	c.setVoyagerHeaders(req)

	body, err := httpcache.FetchURLWithValidator(ctx, c.cache, c.httpClient, req, c.logger, isProfileView)
	if err != nil {
		return nil, classify(err)
	}
	c.logger.DebugContext(ctx, "profile view response", "bytes", len(body))

	raw, err := website.FromJSON(body)
	if err != nil {
		return nil, fmt.Errorf("decode profile view: %w", err)
	}
	p, err := parseProfileView(body, id)
	if err != nil {
		return nil, err
	}
	return &profile.Record{Profile: p, Raw: raw}, nil
}

// classify maps HTTP failures onto the shared profile errors.
func classify(err error) error {
	var httpErr *httpcache.HTTPError
	if !errors.As(err, &httpErr) {
		return fmt.Errorf("request failed: %w", err)
	}
	switch httpErr.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: %w", profile.ErrAuthRequired, err)
	case http.StatusNotFound:
		return fmt.Errorf("%w: %w", profile.ErrProfileNotFound, err)
	case http.StatusTooManyRequests:
		return fmt.Errorf("%w: %w", profile.ErrRateLimited, err)
	default:
		return fmt.Errorf("request failed: %w", err)
	}
}

// isProfileView rejects bodies that carry no profile, so they are not cached.
func isProfileView(body []byte) bool {
	return gjson.GetBytes(body, "profile.firstName").Exists()
}

// parseProfileView maps a Voyager profileView document onto a Profile.
func parseProfileView(body []byte, publicID string) (profile.Profile, error) {
	doc := gjson.ParseBytes(body)
	pv := doc.Get("profile")
	if !pv.Exists() {
		return profile.Profile{}, fmt.Errorf("%w: response has no profile", profile.ErrProfileNotFound)
	}

	p := profile.Profile{
		FullName: strings.TrimSpace(pv.Get("firstName").String() + " " + pv.Get("lastName").String()),
		Headline: pv.Get("headline").String(),
		About:    pv.Get("summary").String(),
		Location: firstNonEmpty(pv.Get("geoLocationName").String(), pv.Get("locationName").String()),
	}
	if pid := pv.Get("miniProfile.publicIdentifier").String(); pid != "" {
		publicID = pid
	}
	p.ProfileURL = defaultBaseURL + "/in/" + publicID

	for _, e := range doc.Get("positionView.elements").Array() {
		current := !e.Get("timePeriod.endDate").Exists()
		p.Experience = append(p.Experience, profile.Experience{
			Title:     e.Get("title").String(),
			Company:   e.Get("companyName").String(),
			Duration:  formatPeriod(e.Get("timePeriod")),
			IsCurrent: current,
		})
		if current && p.CurrentCompany == "" {
			p.CurrentCompany = e.Get("companyName").String()
		}
	}
	for _, e := range doc.Get("educationView.elements").Array() {
		p.Education = append(p.Education, profile.Education{
			School:       e.Get("schoolName").String(),
			Degree:       e.Get("degreeName").String(),
			FieldOfStudy: e.Get("fieldOfStudy").String(),
		})
	}
	for _, e := range doc.Get("languageView.elements").Array() {
		if name := e.Get("name").String(); name != "" {
			p.Languages = append(p.Languages, name)
		}
	}
	return p, nil
}

// formatPeriod renders a Voyager timePeriod as "Jan 2020 - Present".
func formatPeriod(tp gjson.Result) string {
	start := formatDate(tp.Get("startDate"))
	if start == "" {
		return ""
	}
	end := formatDate(tp.Get("endDate"))
	if end == "" {
		end = "Present"
	}
	return start + " - " + end
}

func formatDate(d gjson.Result) string {
	year := d.Get("year").Int()
	if year == 0 {
		return ""
	}
	if m := d.Get("month").Int(); m >= 1 && m <= 12 {
		return fmt.Sprintf("%s %d", time.Month(m).String()[:3], year)
	}
	return fmt.Sprint(year)
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

// ensureSessionCookies loads the feed once when the jar lacks JSESSIONID,
// which Voyager needs as the CSRF token.
func (c *Client) ensureSessionCookies(ctx context.Context) error {
	if c.sessionID() != "" {
		return nil
	}
	c.logger.DebugContext(ctx, "fetching session cookies")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/feed/", http.NoBody)
	if err != nil {
		return err
	}
	setHeaders(req)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	resp.Body.Close() //nolint:errcheck,gosec // body unused
	if c.sessionID() == "" {
		c.logger.DebugContext(ctx, "JSESSIONID not found in response cookies")
	}
	return nil
}

func (c *Client) sessionID() string {
	for _, ck := range c.httpClient.Jar.Cookies(cookieURL) {
		if ck.Name == "JSESSIONID" {
			return strings.Trim(ck.Value, `"`)
		}
	}
	return ""
}

func (c *Client) setVoyagerHeaders(req *http.Request) {
	req.Header.Set("User-Agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_5) AppleWebKit/537.36 "+
		"(KHTML, like Gecko) Chrome/83.0.4103.116 Safari/537.36")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("X-Li-Lang", "en_US")
	req.Header.Set("X-Restli-Protocol-Version", "2.0.0")
	if token := c.sessionID(); token != "" {
		req.Header.Set("Csrf-Token", token)
		c.logger.Debug("csrf token set", "len", len(token))
	}
}

func setHeaders(req *http.Request) {
	req.Header.Set("User-Agent", httpcache.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")
	req.Header.Set("DNT", "1")
	req.Header.Set("Sec-Fetch-Dest", "document")
	req.Header.Set("Sec-Fetch-Mode", "navigate")
}

// extractPublicID returns the percent-decoded slug after /in/.
func extractPublicID(urlStr string) string {
	m := publicIDPattern.FindStringSubmatch(urlStr)
	if len(m) < 2 {
		return ""
	}
	slug := m[1]
	if strings.Contains(slug, "%") {
		if decoded, err := url.PathUnescape(slug); err == nil {
			return decoded
		}
	}
	return slug
}
