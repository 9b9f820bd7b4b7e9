// Package httpcache provides response caching with thundering herd prevention
// for the outbound collaborators (scrapers and the language model).
package httpcache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/codeGROOVE-dev/pitchdeck/pkg/metrics"
	"github.com/codeGROOVE-dev/retry"
	"github.com/codeGROOVE-dev/sfcache"
	"github.com/codeGROOVE-dev/sfcache/pkg/store/localfs"
	"github.com/codeGROOVE-dev/sfcache/pkg/store/null"
)

// UserAgent is the browser User-Agent sent by the scrapers.
const UserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10.15; rv:146.0) Gecko/20100101 Firefox/146.0"

// Stats tracks cache hit/miss statistics.
type Stats struct {
	Hits   int64
	Misses int64
}

var hits, misses atomic.Int64

// CacheStats returns the current cache statistics.
func CacheStats() Stats {
	return Stats{Hits: hits.Load(), Misses: misses.Load()}
}

// ResetStats resets the cache statistics.
func ResetStats() {
	hits.Store(0)
	misses.Store(0)
}

func recordHit() {
	hits.Add(1)
	metrics.CacheRequests.WithLabelValues("hit").Inc()
}

func recordMiss() {
	misses.Add(1)
	metrics.CacheRequests.WithLabelValues("miss").Inc()
}

// Cacher allows the cache to be shared across packages and replaced in tests.
type Cacher interface {
	GetSet(ctx context.Context, key string, fetch func(context.Context) ([]byte, error), ttl ...time.Duration) ([]byte, error)
	TTL() time.Duration
}

// Cache wraps sfcache for response caching.
type Cache struct {
	*sfcache.TieredCache[string, []byte]

	ttl time.Duration
}

// New creates a Cache with disk persistence under the user cache directory.
func New(ttl time.Duration) (*Cache, error) {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}
	return NewWithPath(ttl, filepath.Join(dir, "pitchdeck"))
}

// NewNull creates a Cache with no persistence (all gets miss, all sets discard).
func NewNull() *Cache {
	tc, err := sfcache.NewTiered[string, []byte](null.New[string, []byte]())
	if err != nil {
		panic("sfcache.NewTiered with null store: " + err.Error())
	}
	return &Cache{TieredCache: tc}
}

// NewWithPath creates a Cache with disk persistence at dir.
func NewWithPath(ttl time.Duration, dir string) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}
	persist, err := localfs.New[string, []byte]("pitchdeck", dir)
	if err != nil {
		return nil, fmt.Errorf("create persistence layer: %w", err)
	}
	tc, err := sfcache.NewTiered[string, []byte](persist, sfcache.TTL(ttl))
	if err != nil {
		return nil, fmt.Errorf("create cache: %w", err)
	}
	return &Cache{TieredCache: tc, ttl: ttl}, nil
}

// TTL returns the default TTL for cache entries.
func (c *Cache) TTL() time.Duration {
	return c.ttl
}

// Key hashes its parts into a cache key. Parts are joined with a blank line
// so that ("ab", "c") and ("a", "bc") differ.
func Key(parts ...string) string {
	h := sha256.Sum256([]byte(strings.Join(parts, "\n\n")))
	return hex.EncodeToString(h[:])
}

// URLToKey converts a URL to a cache key.
func URLToKey(rawURL string) string {
	return Key(rawURL)
}

// HTTPError represents a non-success HTTP response.
type HTTPError struct {
	URL        string
	StatusCode int
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d fetching %s", e.StatusCode, e.URL)
}

// Remember returns the cached value for key, calling fetch on a miss.
// Concurrent callers for the same key share one fetch. Errors are not cached.
// A nil cache calls fetch directly.
func Remember(ctx context.Context, cache Cacher, key string, fetch func(context.Context) ([]byte, error)) ([]byte, error) {
	if cache == nil {
		recordMiss()
		return fetch(ctx)
	}
	var fetched bool
	data, err := cache.GetSet(ctx, key, func(ctx context.Context) ([]byte, error) {
		fetched = true
		recordMiss()
		return fetch(ctx)
	}, cache.TTL())
	if err == nil && !fetched {
		recordHit()
	}
	return data, err
}

// ResponseValidator validates a response body. Returns true if cacheable.
type ResponseValidator func(body []byte) bool

// FetchURL fetches a URL with caching and thundering herd prevention.
func FetchURL(ctx context.Context, cache Cacher, client *http.Client, req *http.Request, logger *slog.Logger) ([]byte, error) {
	return FetchURLWithValidator(ctx, cache, client, req, logger, nil)
}

// FetchURLWithValidator fetches a URL with caching and optional response validation.
// If validator returns false, the response is returned but not cached.
// HTTP errors are cached as markers so a failing profile is not re-requested
// until the entry expires.
func FetchURLWithValidator(
	ctx context.Context,
	cache Cacher,
	client *http.Client,
	req *http.Request,
	logger *slog.Logger,
	validator ResponseValidator,
) ([]byte, error) {
	if logger == nil {
		logger = slog.Default()
	}
	// Authenticated and anonymous responses must not share an entry.
	cacheKey := req.URL.String()
	if client.Jar != nil && len(client.Jar.Cookies(req.URL)) > 0 {
		cacheKey += "|auth"
	}

	if cache == nil {
		recordMiss()
		return doFetch(ctx, client, req, logger)
	}

	var fetched bool
	data, err := cache.GetSet(ctx, URLToKey(cacheKey), func(ctx context.Context) ([]byte, error) {
		fetched = true
		recordMiss()
		logger.InfoContext(ctx, "cache miss", "url", req.URL.String())
		body, err := doFetch(ctx, client, req, logger)
		if err != nil {
			var httpErr *HTTPError
			if errors.As(err, &httpErr) {
				return fmt.Appendf(nil, "ERROR:%d", httpErr.StatusCode), nil
			}
			return nil, err
		}
		if validator != nil && !validator(body) {
			logger.DebugContext(ctx, "skipping cache due to validation failure", "url", req.URL.String())
			return nil, &validationError{data: body}
		}
		return body, nil
	}, cache.TTL())

	if !fetched {
		recordHit()
		logger.DebugContext(ctx, "cache hit", "url", req.URL.String())
	}

	var validErr *validationError
	if errors.As(err, &validErr) {
		return validErr.data, nil
	}
	if err != nil {
		return nil, err
	}

	if code, found := strings.CutPrefix(string(data), "ERROR:"); found {
		status, _ := strconv.Atoi(code) //nolint:errcheck // 0 is acceptable default
		return nil, &HTTPError{StatusCode: status, URL: req.URL.String()}
	}
	return data, nil
}

type validationError struct{ data []byte }

func (*validationError) Error() string { return "validation failed" }

func doFetch(ctx context.Context, client *http.Client, req *http.Request, logger *slog.Logger) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	return retry.DoWithData(
		func() ([]byte, error) {
			if err := limiter.Wait(ctx, req.URL.Host, logger); err != nil {
				return nil, err
			}
			resp, err := client.Do(req.Clone(ctx))
			if err != nil {
				return nil, err
			}
			defer resp.Body.Close() //nolint:errcheck // intentional

			if resp.StatusCode != http.StatusOK {
				return nil, &HTTPError{StatusCode: resp.StatusCode, URL: req.URL.String()}
			}
			return io.ReadAll(resp.Body)
		},
		retry.Context(ctx),
		retry.Attempts(2),
		retry.Delay(200*time.Millisecond),
		retry.MaxJitter(100*time.Millisecond),
		retry.RetryIf(IsRetryable),
		retry.OnRetry(func(n uint, err error) {
			logger.Debug("retrying HTTP request", "attempt", n+1, "url", req.URL.String(), "error", err)
		}),
	)
}

// IsRetryable reports whether err is transient: network failures, 429 and 5xx.
func IsRetryable(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		switch httpErr.StatusCode {
		case http.StatusTooManyRequests,
			http.StatusInternalServerError,
			http.StatusBadGateway,
			http.StatusServiceUnavailable,
			http.StatusGatewayTimeout:
			return true
		default:
			return false
		}
	}
	return true
}
