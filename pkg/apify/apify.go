// Package apify scrapes LinkedIn profiles through an Apify actor run.
package apify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/codeGROOVE-dev/pitchdeck/pkg/httpcache"
	"github.com/codeGROOVE-dev/pitchdeck/pkg/profile"
	"github.com/codeGROOVE-dev/pitchdeck/pkg/website"
	"github.com/codeGROOVE-dev/retry"
	"github.com/tidwall/gjson"
)

// Defaults for the public LinkedIn profile actor.
const (
	DefaultActorID = "VhxlqQXRwhW8H5hNV"
	DefaultBaseURL = "https://api.apify.com"
)

// Client runs the profile actor synchronously and reads its dataset.
type Client struct {
	httpClient *http.Client
	cache      httpcache.Cacher
	logger     *slog.Logger
	token      string
	actorID    string
	baseURL    string
	attempts   uint
}

// Option configures a Client.
type Option func(*Client)

// WithActor overrides the actor ID.
func WithActor(id string) Option {
	return func(c *Client) {
		if id != "" {
			c.actorID = id
		}
	}
}

// WithBaseURL overrides the Apify API base URL.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithHTTPCache caches dataset items by actor and profile URL.
func WithHTTPCache(cache httpcache.Cacher) Option {
	return func(c *Client) { c.cache = cache }
}

// WithHTTPClient sets the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// WithAttempts sets how many times a transient failure is tried.
func WithAttempts(n uint) Option {
	return func(c *Client) { c.attempts = n }
}

// New returns a Client authenticating with token.
func New(token string, opts ...Option) *Client {
	c := &Client{
		token:      token,
		actorID:    DefaultActorID,
		baseURL:    DefaultBaseURL,
		attempts:   3,
		logger:     slog.Default(),
		httpClient: &http.Client{Timeout: 5 * time.Minute},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type runInput struct {
	Username     string `json:"username"`
	IncludeEmail bool   `json:"includeEmail"`
}

// FetchProfile runs the actor for profileURL and maps the first dataset item.
func (c *Client) FetchProfile(ctx context.Context, profileURL string) (*profile.Record, error) {
	profileURL = strings.TrimSpace(profileURL)
	if profileURL == "" {
		return nil, errors.New("no profile URL provided")
	}
	if c.token == "" {
		return nil, fmt.Errorf("%w: APIFY_API_TOKEN is not set", profile.ErrAuthRequired)
	}
	c.logger.InfoContext(ctx, "scraping linkedin profile via apify", "actor", c.actorID, "url", profileURL)

	item, err := httpcache.Remember(ctx, c.cache, httpcache.Key("apify", c.actorID, profileURL), func(ctx context.Context) ([]byte, error) {
		return c.run(ctx, profileURL)
	})
	if err != nil {
		return nil, err
	}

	p, err := profile.FromApifyItem(item)
	if err != nil {
		return nil, fmt.Errorf("map profile item: %w", err)
	}
	raw, err := website.FromJSON(item)
	if err != nil {
		return nil, fmt.Errorf("decode profile item: %w", err)
	}
	return &profile.Record{Profile: p, Raw: raw}, nil
}

// run calls run-sync-get-dataset-items and returns the first item's raw JSON.
func (c *Client) run(ctx context.Context, profileURL string) ([]byte, error) {
	payload, err := json.Marshal(runInput{Username: profileURL})
	if err != nil {
		return nil, err
	}
	endpoint := fmt.Sprintf("%s/v2/acts/%s/run-sync-get-dataset-items?token=%s",
		c.baseURL, url.PathEscape(c.actorID), url.QueryEscape(c.token))

	body, err := retry.DoWithData(
		func() ([]byte, error) {
			req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
			if err != nil {
				return nil, err
			}
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set("Accept", "application/json")

			resp, err := c.httpClient.Do(req)
			if err != nil {
				return nil, err
			}
			defer resp.Body.Close() //nolint:errcheck // intentional

			if resp.StatusCode < 200 || resp.StatusCode > 299 {
				// The token is in the query string; keep it out of errors.
				return nil, &httpcache.HTTPError{StatusCode: resp.StatusCode, URL: redact(endpoint)}
			}
			return io.ReadAll(resp.Body)
		},
		retry.Context(ctx),
		retry.Attempts(c.attempts),
		retry.Delay(time.Second),
		retry.MaxJitter(500*time.Millisecond),
		retry.RetryIf(httpcache.IsRetryable),
		retry.OnRetry(func(n uint, err error) {
			c.logger.WarnContext(ctx, "retrying apify run", "attempt", n+1, "error", err)
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("apify actor run: %w", err)
	}

	if !gjson.ValidBytes(body) {
		return nil, errors.New("apify returned invalid JSON")
	}
	items := gjson.ParseBytes(body)
	if !items.IsArray() {
		return nil, errors.New("apify returned a non-array dataset")
	}
	first := items.Get("0")
	if !first.Exists() {
		return nil, profile.ErrProfileNotFound
	}
	c.logger.DebugContext(ctx, "apify dataset received", "items", len(items.Array()), "bytes", len(first.Raw))
	return []byte(first.Raw), nil
}

func redact(endpoint string) string {
	u, err := url.Parse(endpoint)
	if err != nil {
		return "apify"
	}
	u.RawQuery = ""
	return u.String()
}
