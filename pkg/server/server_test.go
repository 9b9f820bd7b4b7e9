package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/codeGROOVE-dev/pitchdeck/pkg/auth"
	"github.com/codeGROOVE-dev/pitchdeck/pkg/copywriter"
	"github.com/codeGROOVE-dev/pitchdeck/pkg/pitch"
	"github.com/codeGROOVE-dev/pitchdeck/pkg/profile"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeGenerator struct {
	err   error
	calls int
	got   pitch.Request
}

func (f *fakeGenerator) Generate(_ context.Context, req pitch.Request) (*pitch.Result, error) {
	f.calls++
	f.got = req
	if f.err != nil {
		return nil, f.err
	}
	if req.Conversation == "" || req.LinkedInURL == "" {
		return nil, pitch.ErrMissingInput
	}
	return &pitch.Result{
		ID:              "job-1",
		PresentationURL: "https://docs.google.com/presentation/d/p1/edit",
		Profile:         profile.Profile{FullName: "Jane Doe"},
		Content:         &copywriter.Content{OurCompanyTitle: "Acme crece"},
		Website:         "https://www.acme.io",
	}, nil
}

type fakeAuth struct {
	authed   bool
	exchErr  error
	code     string
	exchange int
}

func (f *fakeAuth) Authenticated() bool { return f.authed }

func (*fakeAuth) AuthURL(state string) string {
	return "https://accounts.example/consent?state=" + url.QueryEscape(state)
}

func (f *fakeAuth) Exchange(_ context.Context, code string) (*oauth2.Token, error) {
	f.exchange++
	f.code = code
	if f.exchErr != nil {
		return nil, f.exchErr
	}
	f.authed = true
	return &oauth2.Token{AccessToken: "tok"}, nil
}

func do(t *testing.T, h http.Handler, method, target, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	h := New(&fakeGenerator{}, &fakeAuth{}).Handler()
	w := do(t, h, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.NotEmpty(t, body["timestamp"])
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestRequestIDPreserved(t *testing.T) {
	h := New(&fakeGenerator{}, &fakeAuth{}).Handler()
	req := httptest.NewRequest(http.MethodGet, "/health", http.NoBody)
	req.Header.Set("X-Request-ID", "trace-abc")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, "trace-abc", w.Header().Get("X-Request-ID"))

	req = httptest.NewRequest(http.MethodGet, "/health", http.NoBody)
	req.Header.Set("X-Request-ID", strings.Repeat("x", 200))
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.NotEqual(t, strings.Repeat("x", 200), w.Header().Get("X-Request-ID"))
}

func TestCheckAuth(t *testing.T) {
	for _, authed := range []bool{false, true} {
		h := New(&fakeGenerator{}, &fakeAuth{authed: authed}).Handler()
		w := do(t, h, http.MethodGet, "/api/check-auth", "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, fmt.Sprintf(`{"authenticated":%v}`, authed), w.Body.String())
	}
}

func TestOAuthFlow(t *testing.T) {
	fa := &fakeAuth{}
	h := New(&fakeGenerator{}, fa).Handler()

	w := do(t, h, http.MethodGet, "/auth/google", "")
	require.Equal(t, http.StatusFound, w.Code)
	loc, err := url.Parse(w.Header().Get("Location"))
	require.NoError(t, err)
	state := loc.Query().Get("state")
	require.NotEmpty(t, state)

	var cookie *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == stateCookie {
			cookie = c
		}
	}
	require.NotNil(t, cookie, "state cookie not set")
	assert.Equal(t, state, cookie.Value)

	w = do(t, h, http.MethodGet, "/oauth2callback?code=abc&state="+url.QueryEscape(state), "", cookie)
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/?auth=success", w.Header().Get("Location"))
	assert.Equal(t, "abc", fa.code)
	assert.True(t, fa.authed)
}

func TestOAuthCallbackErrors(t *testing.T) {
	fa := &fakeAuth{exchErr: errors.New("invalid_grant")}
	h := New(&fakeGenerator{}, fa).Handler()
	cookie := &http.Cookie{Name: stateCookie, Value: "s1"}

	w := do(t, h, http.MethodGet, "/oauth2callback?code=abc&state=other", "", cookie)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = do(t, h, http.MethodGet, "/oauth2callback?code=abc&state=s1", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 0, fa.exchange)

	w = do(t, h, http.MethodGet, "/oauth2callback?code=abc&state=s1", "", cookie)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Authentication failed", w.Body.String())
}

func TestGeneratePresentation(t *testing.T) {
	gen := &fakeGenerator{}
	h := New(gen, &fakeAuth{authed: true}).Handler()

	w := do(t, h, http.MethodPost, "/api/generate-presentation",
		`{"conversation":"Hola","linkedinUrl":"https://www.linkedin.com/in/janedoe"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, pitch.Request{Conversation: "Hola", LinkedInURL: "https://www.linkedin.com/in/janedoe"}, gen.got)

	var body struct {
		Success         bool   `json:"success"`
		Message         string `json:"message"`
		PresentationURL string `json:"presentationUrl"`
		Data            struct {
			Profile      profile.Profile    `json:"profile"`
			SlideContent copywriter.Content `json:"slideContent"`
			Website      string             `json:"website"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, "Presentation generated successfully", body.Message)
	assert.Equal(t, "https://docs.google.com/presentation/d/p1/edit", body.PresentationURL)
	assert.Equal(t, "Jane Doe", body.Data.Profile.FullName)
	assert.Equal(t, "Acme crece", body.Data.SlideContent.OurCompanyTitle)
	assert.Equal(t, "https://www.acme.io", body.Data.Website)
}

func TestGeneratePresentationErrors(t *testing.T) {
	tests := []struct {
		name     string
		authed   bool
		genErr   error
		body     string
		wantCode int
		wantBody string
	}{
		{"no token", false, nil, `{"conversation":"a","linkedinUrl":"b"}`, http.StatusUnauthorized, "Google Auth Required"},
		{"missing fields", true, nil, `{"conversation":"a"}`, http.StatusBadRequest, "Missing conversation or linkedinUrl"},
		{"bad json", true, nil, `{"conversation":`, http.StatusBadRequest, "Missing conversation"},
		{"token revoked", true, fmt.Errorf("create presentation: %w", auth.ErrNoToken), `{"conversation":"a","linkedinUrl":"b"}`, http.StatusUnauthorized, "Google Auth Required"},
		{"pipeline failure", true, errors.New("fetch profile: boom"), `{"conversation":"a","linkedinUrl":"b"}`, http.StatusInternalServerError, `"details":"fetch profile: boom"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := New(&fakeGenerator{err: tt.genErr}, &fakeAuth{authed: tt.authed}).Handler()
			w := do(t, h, http.MethodPost, "/api/generate-presentation", tt.body)
			assert.Equal(t, tt.wantCode, w.Code)
			assert.Contains(t, w.Body.String(), tt.wantBody)
		})
	}
}

func TestGenerateRateLimit(t *testing.T) {
	gen := &fakeGenerator{}
	h := New(gen, &fakeAuth{authed: true}, WithGenerateLimit(2)).Handler()
	body := `{"conversation":"a","linkedinUrl":"b"}`

	for i := range 2 {
		w := do(t, h, http.MethodPost, "/api/generate-presentation", body)
		require.Equal(t, http.StatusOK, w.Code, "request %d", i)
	}
	w := do(t, h, http.MethodPost, "/api/generate-presentation", body)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, 2, gen.calls)

	// Other routes are not limited.
	assert.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/api/check-auth", "").Code)
}

func TestClientLimiterEvictsIdleClients(t *testing.T) {
	require.Nil(t, newClientLimiter(0))

	l := newClientLimiter(2)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	assert.True(t, l.allow("10.0.0.1"))
	assert.True(t, l.allow("10.0.0.1"))
	assert.False(t, l.allow("10.0.0.1"), "burst exhausted")
	assert.True(t, l.allow("10.0.0.2"))
	assert.Len(t, l.clients, 2)

	now = now.Add(5 * time.Minute)
	assert.True(t, l.allow("10.0.0.2"))
	assert.Len(t, l.clients, 2, "no sweep before the idle TTL")

	now = now.Add(6 * time.Minute)
	assert.True(t, l.allow("10.0.0.3"))
	assert.NotContains(t, l.clients, "10.0.0.1")
	assert.Contains(t, l.clients, "10.0.0.2")
	assert.Contains(t, l.clients, "10.0.0.3")

	// Many one-off clients do not accumulate past a sweep.
	for i := range 100 {
		l.allow(fmt.Sprintf("192.0.2.%d", i))
	}
	now = now.Add(limiterIdleTTL)
	assert.True(t, l.allow("10.0.0.1"))
	assert.Len(t, l.clients, 1)
}

func TestStaticFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<h1>pitchdeck</h1>"), 0o600))
	h := New(&fakeGenerator{}, &fakeAuth{}, WithPublicDir(dir)).Handler()

	w := do(t, h, http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "pitchdeck")

	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/missing.js", "").Code)
	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodPost, "/nope", "").Code)
}

func TestMetricsEndpoint(t *testing.T) {
	h := New(&fakeGenerator{}, &fakeAuth{}).Handler()
	do(t, h, http.MethodGet, "/health", "")
	w := do(t, h, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "pitchdeck_http_requests_total")
}

func TestCORSPreflight(t *testing.T) {
	h := New(&fakeGenerator{}, &fakeAuth{}).Handler()
	w := do(t, h, http.MethodOptions, "/api/generate-presentation", "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
