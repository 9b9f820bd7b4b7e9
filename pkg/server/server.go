// Package server exposes the deck pipeline and the Google sign-in flow over HTTP.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/codeGROOVE-dev/pitchdeck/pkg/auth"
	"github.com/codeGROOVE-dev/pitchdeck/pkg/pitch"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/oauth2"
)

const stateCookie = "oauth_state"

// Generator runs one deck job.
type Generator interface {
	Generate(ctx context.Context, req pitch.Request) (*pitch.Result, error)
}

// Authenticator is the Google OAuth flow.
type Authenticator interface {
	Authenticated() bool
	AuthURL(state string) string
	Exchange(ctx context.Context, code string) (*oauth2.Token, error)
}

// Server holds the HTTP handlers.
type Server struct {
	gen       Generator
	auth      Authenticator
	logger    *slog.Logger
	limiter   *clientLimiter
	publicDir string
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// WithPublicDir serves static files from dir for unmatched GET requests.
func WithPublicDir(dir string) Option {
	return func(s *Server) { s.publicDir = dir }
}

// WithGenerateLimit caps deck generation per client IP. Zero disables the cap.
func WithGenerateLimit(perMinute int) Option {
	return func(s *Server) { s.limiter = newClientLimiter(perMinute) }
}

// New returns a Server.
func New(gen Generator, authn Authenticator, opts ...Option) *Server {
	s := &Server{gen: gen, auth: authn, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the routed gin engine.
func (s *Server) Handler() http.Handler {
	r := gin.New()
	r.Use(requestID(), recovery(s.logger), accessLog(s.logger), cors())

	r.GET("/health", s.health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/auth/google", s.authStart)
	r.GET("/oauth2callback", s.authCallback)

	api := r.Group("/api")
	api.GET("/check-auth", s.checkAuth)
	api.POST("/generate-presentation", s.limiter.middleware(), s.generate)

	if s.publicDir != "" {
		files := http.FileServer(gin.Dir(s.publicDir, false))
		r.NoRoute(func(c *gin.Context) {
			if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
				c.JSON(http.StatusNotFound, gin.H{"error": "Not Found"})
				return
			}
			files.ServeHTTP(c.Writer, c.Request)
		})
	}
	return r
}

func (*Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": time.Now().UTC()})
}

func (s *Server) authStart(c *gin.Context) {
	state := uuid.NewString()
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(stateCookie, state, int((10 * time.Minute).Seconds()), "/", "", c.Request.TLS != nil, true)
	c.Redirect(http.StatusFound, s.auth.AuthURL(state))
}

func (s *Server) authCallback(c *gin.Context) {
	ctx := c.Request.Context()
	want, err := c.Cookie(stateCookie)
	if err != nil || want == "" || c.Query("state") != want {
		s.logger.WarnContext(ctx, "oauth state mismatch", "request_id", c.GetString(requestIDKey))
		c.String(http.StatusBadRequest, "Invalid OAuth state")
		return
	}
	c.SetCookie(stateCookie, "", -1, "/", "", c.Request.TLS != nil, true)

	if _, err := s.auth.Exchange(ctx, c.Query("code")); err != nil {
		s.logger.ErrorContext(ctx, "oauth exchange failed", "error", err)
		c.String(http.StatusInternalServerError, "Authentication failed")
		return
	}
	c.Redirect(http.StatusFound, "/?auth=success")
}

func (s *Server) checkAuth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"authenticated": s.auth.Authenticated()})
}

func (s *Server) generate(c *gin.Context) {
	if !s.auth.Authenticated() {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Google Auth Required. Please visit /auth/google"})
		return
	}

	var req pitch.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing conversation or linkedinUrl"})
		return
	}

	ctx := c.Request.Context()
	res, err := s.gen.Generate(ctx, req)
	switch {
	case errors.Is(err, pitch.ErrMissingInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing conversation or linkedinUrl"})
		return
	case errors.Is(err, auth.ErrNoToken):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Google Auth Required. Please visit /auth/google"})
		return
	case err != nil:
		s.logger.ErrorContext(ctx, "presentation generation failed",
			"error", err, "request_id", c.GetString(requestIDKey))
		_ = c.Error(err) //nolint:errcheck // recorded for the access log
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":         true,
		"message":         "Presentation generated successfully",
		"presentationUrl": res.PresentationURL,
		"data": gin.H{
			"id":           res.ID,
			"profile":      res.Profile,
			"website":      res.Website,
			"slideContent": res.Content,
		},
	})
}
