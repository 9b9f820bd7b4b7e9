package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// Google API scopes needed to copy the deck template and edit the copy.
const (
	ScopeDrive         = "https://www.googleapis.com/auth/drive"
	ScopePresentations = "https://www.googleapis.com/auth/presentations"
)

// GoogleOAuth runs the authorization-code flow and hands out clients whose
// refreshed tokens are written back to the store.
type GoogleOAuth struct {
	config *oauth2.Config
	store  *TokenStore
	logger *slog.Logger
}

// NewGoogleOAuth returns a GoogleOAuth for the given client credentials.
func NewGoogleOAuth(clientID, clientSecret, redirectURL string, store *TokenStore, logger *slog.Logger) *GoogleOAuth {
	if logger == nil {
		logger = slog.Default()
	}
	return &GoogleOAuth{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes:       []string{ScopeDrive, ScopePresentations},
			Endpoint:     google.Endpoint,
		},
		store:  store,
		logger: logger,
	}
}

// Store returns the token store.
func (g *GoogleOAuth) Store() *TokenStore { return g.store }

// Configured reports whether client credentials are set.
func (g *GoogleOAuth) Configured() bool {
	return g.config.ClientID != "" && g.config.ClientSecret != ""
}

// Authenticated reports whether a token is available.
func (g *GoogleOAuth) Authenticated() bool { return g.store.Has() }

// AuthURL returns the consent page URL. Offline access and a forced consent
// prompt make Google return a refresh token every time.
func (g *GoogleOAuth) AuthURL(state string) string {
	return g.config.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.SetAuthURLParam("prompt", "consent"))
}

// Exchange trades an authorization code for a token and persists it.
func (g *GoogleOAuth) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	if code == "" {
		return nil, errors.New("missing authorization code")
	}
	tok, err := g.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchange code: %w", err)
	}
	if err := g.store.Save(tok); err != nil {
		return nil, err
	}
	g.logger.InfoContext(ctx, "google token stored", "has_refresh", tok.RefreshToken != "")
	return tok, nil
}

// TokenSource returns a token source for the stored token, or ErrNoToken.
func (g *GoogleOAuth) TokenSource(ctx context.Context) (oauth2.TokenSource, error) {
	tok, err := g.store.Load()
	if err != nil {
		return nil, err
	}
	src := &savingSource{
		base:   g.config.TokenSource(ctx, tok),
		store:  g.store,
		logger: g.logger,
		last:   tok.AccessToken,
	}
	return oauth2.ReuseTokenSource(tok, src), nil
}

// Client returns an HTTP client authorized with the stored token.
func (g *GoogleOAuth) Client(ctx context.Context) (*http.Client, error) {
	ts, err := g.TokenSource(ctx)
	if err != nil {
		return nil, err
	}
	return oauth2.NewClient(ctx, ts), nil
}

// savingSource persists a token whenever the underlying source refreshes it.
type savingSource struct {
	base   oauth2.TokenSource
	store  *TokenStore
	logger *slog.Logger

	mu   sync.Mutex
	last string
}

func (s *savingSource) Token() (*oauth2.Token, error) {
	tok, err := s.base.Token()
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if tok.AccessToken != s.last {
		s.last = tok.AccessToken
		if err := s.store.Save(tok); err != nil {
			s.logger.Warn("failed to persist refreshed google token", "error", err)
		} else {
			s.logger.Debug("persisted refreshed google token")
		}
	}
	return tok, nil
}
