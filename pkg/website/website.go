// Package website picks a lead's business website out of a scraped profile record.
//
// The record has no fixed schema. Every string in it is scanned for URL-like
// tokens, social networks and email providers are dropped, and the first
// remaining URL in traversal order wins:
//
//	rec, _ := website.FromJSON(body)
//	site, err := website.New().Extract(rec)
//
// Selection is deliberately simple. There is no scoring beyond the blacklist;
// earlier fields win so that results are reproducible.
package website

import (
	"errors"
	"log/slog"
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

// ErrInvalidInput is returned when the top-level record is neither a mapping nor a sequence.
var ErrInvalidInput = errors.New("record is not a mapping or sequence")

// urlChar is any character that may continue a URL token. It excludes
// Unicode separators (NBSP, thin space, U+2028), NEL, BOM, vertical tab,
// double quotes and closing parentheses.
const urlChar = `[^\s\v\p{Z}\x{85}\x{FEFF})"]`

// urlPattern matches http(s) URLs and bare www. hosts.
var urlPattern = regexp.MustCompile(`(?i)https?://` + urlChar + `+|www\.` + urlChar + `+`)

// TextLeaf is a string found in a record together with the key it was stored under.
type TextLeaf struct {
	Text string
	Key  string
}

// Candidate is a normalized absolute URL and the key of the field it came from.
type Candidate struct {
	URL    string `json:"url"`
	Source string `json:"source"`
}

// Extractor selects a website from scraped records. It holds no mutable
// state and is safe for concurrent use.
type Extractor struct {
	logger    *slog.Logger
	blacklist Blacklist
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithExtraHosts adds host substrings to the built-in blacklist.
func WithExtraHosts(hosts ...string) Option {
	return func(e *Extractor) { e.blacklist = e.blacklist.With(hosts...) }
}

// WithLogger sets a logger for debug output.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Extractor) { e.logger = logger }
}

// New returns an Extractor using the default blacklist plus any extra hosts.
func New(opts ...Option) *Extractor {
	e := &Extractor{blacklist: DefaultBlacklist(), logger: slog.Default()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Blacklist returns the blacklist bound to e.
func (e *Extractor) Blacklist() Blacklist { return e.blacklist }

// Extract returns the first non-blacklisted URL found in rec, or "" if there is none.
func (e *Extractor) Extract(rec Node) (string, error) {
	if err := checkRecord(rec); err != nil {
		return "", err
	}
	for _, leaf := range Harvest(rec) {
		for _, u := range ExtractURLs(leaf.Text) {
			if host, ok := e.allowed(u); ok {
				e.logger.Debug("website selected", "url", u, "source", leaf.Key, "host", host)
				return u, nil
			}
		}
	}
	e.logger.Debug("no website candidates")
	return "", nil
}

// Candidates returns every URL in rec that survives the blacklist, in
// traversal order. Repeated URLs are reported once, at their first position.
func (e *Extractor) Candidates(rec Node) ([]Candidate, error) {
	if err := checkRecord(rec); err != nil {
		return nil, err
	}
	var out []Candidate
	seen := make(map[string]bool)
	for _, leaf := range Harvest(rec) {
		for _, u := range ExtractURLs(leaf.Text) {
			if seen[u] {
				continue
			}
			seen[u] = true
			if _, ok := e.allowed(u); ok {
				out = append(out, Candidate{URL: u, Source: leaf.Key})
			}
		}
	}
	return out, nil
}

// allowed reports the lowercased host of u when the URL is usable and not blacklisted.
func (e *Extractor) allowed(u string) (string, bool) {
	host, ok := hostOf(u)
	if !ok {
		return "", false
	}
	if e.blacklist.Blocks(host) {
		return host, false
	}
	return host, true
}

// hostOf returns the lowercased host of u. A path, query or fragment that
// url.Parse rejects (a stray '%' for example) does not disqualify the URL;
// only the scheme and authority have to parse.
func hostOf(u string) (string, bool) {
	parsed, err := url.Parse(u)
	if err != nil {
		parsed, err = url.Parse(authority(u))
		if err != nil {
			return "", false
		}
	}
	host := strings.ToLower(parsed.Hostname())
	return host, host != ""
}

// authority trims u to its scheme and authority.
func authority(u string) string {
	i := strings.Index(u, "://")
	if i < 0 {
		return u
	}
	rest := u[i+3:]
	if j := strings.IndexAny(rest, "/?#"); j >= 0 {
		rest = rest[:j]
	}
	return u[:i+3] + rest
}

func checkRecord(rec Node) error {
	switch rec.Kind() {
	case KindMapping, KindSequence:
		return nil
	default:
		return ErrInvalidInput
	}
}

// Harvest collects every string in rec, depth first, in entry order.
// Strings inside sequences are keyed by their index.
func Harvest(rec Node) []TextLeaf {
	var out []TextLeaf
	harvest(rec, &out)
	return out
}

func harvest(n Node, out *[]TextLeaf) {
	switch n.Kind() {
	case KindMapping:
		for _, f := range n.fields {
			visit(f.Key, f.Value, out)
		}
	case KindSequence:
		for i, item := range n.items {
			visit(strconv.Itoa(i), item, out)
		}
	default:
	}
}

func visit(key string, v Node, out *[]TextLeaf) {
	switch v.Kind() {
	case KindString:
		*out = append(*out, TextLeaf{Text: v.str, Key: key})
	case KindMapping, KindSequence:
		harvest(v, out)
	default:
	}
}

// ExtractURLs returns every URL-like token in text, in order. Tokens without
// a scheme get "https://" prepended; everything else is kept verbatim.
func ExtractURLs(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	matches := urlPattern.FindAllString(text, -1)
	if len(matches) == 0 {
		return nil
	}
	urls := make([]string, 0, len(matches))
	for _, m := range matches {
		urls = append(urls, normalize(m))
	}
	return urls
}

func normalize(token string) string {
	lower := strings.ToLower(token)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return token
	}
	return "https://" + token
}
