// Package pitch runs the deck pipeline for one lead: scrape the profile, pick
// the website, clean the conversation, write the copy and publish the deck.
package pitch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/codeGROOVE-dev/pitchdeck/pkg/copywriter"
	"github.com/codeGROOVE-dev/pitchdeck/pkg/metrics"
	"github.com/codeGROOVE-dev/pitchdeck/pkg/profile"
	"github.com/codeGROOVE-dev/pitchdeck/pkg/transcript"
	"github.com/codeGROOVE-dev/pitchdeck/pkg/website"
	"github.com/google/uuid"
)

// ErrMissingInput is returned when the conversation or profile URL is blank.
var ErrMissingInput = errors.New("conversation and linkedinUrl are required")

// Scraper fetches a lead's profile.
type Scraper interface {
	FetchProfile(ctx context.Context, profileURL string) (*profile.Record, error)
}

// Writer produces the deck copy.
type Writer interface {
	Generate(ctx context.Context, in copywriter.Input) (*copywriter.Content, error)
}

// Publisher creates the presentation and returns its URL.
type Publisher interface {
	Create(ctx context.Context, title string, c *copywriter.Content) (string, error)
}

// Request is one deck generation job.
type Request struct {
	Conversation string `json:"conversation"`
	LinkedInURL  string `json:"linkedinUrl"`
}

// Result is the outcome of a successful job.
type Result struct {
	Content         *copywriter.Content `json:"slideContent"`
	ID              string              `json:"id"`
	PresentationURL string              `json:"presentationUrl"`
	Website         string              `json:"website"`
	Profile         profile.Profile     `json:"profile"`
}

// Service wires the pipeline collaborators together. It is safe for concurrent use.
type Service struct {
	scraper   Scraper
	writer    Writer
	publisher Publisher
	extractor *website.Extractor
	logger    *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithExtractor sets the website extractor.
func WithExtractor(ex *website.Extractor) Option {
	return func(s *Service) { s.extractor = ex }
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// New returns a Service.
func New(scraper Scraper, writer Writer, publisher Publisher, opts ...Option) *Service {
	s := &Service{
		scraper:   scraper,
		writer:    writer,
		publisher: publisher,
		extractor: website.New(),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Title returns the presentation title for a lead.
func Title(fullName string) string {
	return "Sales Lead – " + fullName
}

// Generate runs the whole pipeline for req.
func (s *Service) Generate(ctx context.Context, req Request) (res *Result, err error) {
	if strings.TrimSpace(req.Conversation) == "" || strings.TrimSpace(req.LinkedInURL) == "" {
		return nil, ErrMissingInput
	}

	id := uuid.NewString()
	logger := s.logger.With("job_id", id)
	defer func() {
		status := "ok"
		if err != nil {
			status = "error"
		}
		metrics.DecksGenerated.WithLabelValues(status).Inc()
	}()

	logger.InfoContext(ctx, "fetching profile", "url", req.LinkedInURL)
	start := time.Now()
	rec, err := s.scraper.FetchProfile(ctx, req.LinkedInURL)
	metrics.ObserveStage("scrape", start)
	if err != nil {
		return nil, fmt.Errorf("fetch profile: %w", err)
	}

	lead, err := profile.Process(rec, s.extractor)
	if err != nil {
		return nil, fmt.Errorf("process profile: %w", err)
	}
	metrics.WebsiteSelected.WithLabelValues(metrics.Found(lead.Website != "")).Inc()
	logger.InfoContext(ctx, "profile processed", "name", lead.Profile.FullName, "website", lead.Website)

	conversation := transcript.Clean(req.Conversation)
	logger.DebugContext(ctx, "conversation cleaned", "before", len(req.Conversation), "after", len(conversation))

	start = time.Now()
	content, err := s.writer.Generate(ctx, copywriter.Input{
		ProfileText:  lead.Text,
		Conversation: conversation,
		Website:      lead.Website,
	})
	metrics.ObserveStage("generate", start)
	if err != nil {
		return nil, fmt.Errorf("generate content: %w", err)
	}

	start = time.Now()
	url, err := s.publisher.Create(ctx, Title(lead.Profile.FullName), content)
	metrics.ObserveStage("publish", start)
	if err != nil {
		return nil, fmt.Errorf("create presentation: %w", err)
	}
	logger.InfoContext(ctx, "presentation created", "url", url)

	return &Result{
		ID:              id,
		PresentationURL: url,
		Profile:         lead.Profile,
		Content:         content,
		Website:         lead.Website,
	}, nil
}
