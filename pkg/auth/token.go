package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/oauth2"
)

// ErrNoToken is returned when no Google token has been stored yet.
var ErrNoToken = errors.New("google auth required")

// TokenStore holds the Google OAuth token. Inline is a JSON token supplied
// through the environment (GOOGLE_TOKENS); Path is the token file written
// after the consent flow. Inline wins over the file.
type TokenStore struct {
	Path   string
	Inline string

	mu  sync.Mutex
	tok *oauth2.Token
}

// storedToken accepts both the oauth2 layout and the Node googleapis layout,
// whose expiry is "expiry_date" in Unix milliseconds.
type storedToken struct {
	oauth2.Token

	ExpiryDate int64 `json:"expiry_date,omitempty"`
}

// Has reports whether a token is available without returning an error.
func (s *TokenStore) Has() bool {
	_, err := s.Load()
	return err == nil
}

// Load returns the current token. It returns ErrNoToken when neither the
// inline token nor the token file is present.
func (s *TokenStore) Load() (*oauth2.Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tok != nil {
		return s.tok, nil
	}

	if s.Inline != "" {
		tok, err := parseToken([]byte(s.Inline))
		if err != nil {
			return nil, fmt.Errorf("parse inline token: %w", err)
		}
		s.tok = tok
		return tok, nil
	}

	if s.Path == "" {
		return nil, ErrNoToken
	}
	data, err := os.ReadFile(s.Path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNoToken
	}
	if err != nil {
		return nil, fmt.Errorf("read token file: %w", err)
	}
	tok, err := parseToken(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", s.Path, err)
	}
	s.tok = tok
	return tok, nil
}

// Save keeps tok in memory and writes it to Path (mode 0600) when Path is set.
func (s *TokenStore) Save(tok *oauth2.Token) error {
	if tok == nil {
		return errors.New("nil token")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tok = tok
	if s.Path == "" {
		return nil
	}

	data, err := json.MarshalIndent(tok, "", "  ")
	if err != nil {
		return fmt.Errorf("encode token: %w", err)
	}
	if dir := filepath.Dir(s.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("create token directory: %w", err)
		}
	}
	if err := os.WriteFile(s.Path, data, 0o600); err != nil {
		return fmt.Errorf("write token file: %w", err)
	}
	return nil
}

func parseToken(data []byte) (*oauth2.Token, error) {
	var st storedToken
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, err
	}
	if st.AccessToken == "" && st.RefreshToken == "" {
		return nil, errors.New("token has neither access nor refresh token")
	}
	tok := st.Token
	if tok.Expiry.IsZero() && st.ExpiryDate > 0 {
		tok.Expiry = time.UnixMilli(st.ExpiryDate)
	}
	return &tok, nil
}
