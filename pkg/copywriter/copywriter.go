// Package copywriter asks a chat model to fill the deck's copy slots for one lead.
package copywriter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/codeGROOVE-dev/pitchdeck/pkg/httpcache"
	"github.com/codeGROOVE-dev/pitchdeck/pkg/metrics"
	openai "github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"
)

// DefaultModel is used when no model is configured.
const DefaultModel = openai.GPT4o

// ErrMissingAPIKey is returned when no language model credentials are configured.
var ErrMissingAPIKey = errors.New("missing OPENAI_API_KEY")

// Client is the part of *openai.Client the writer needs.
type Client interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// NewOpenAIClient returns an OpenAI (or compatible, when baseURL is set) client.
func NewOpenAIClient(apiKey, baseURL string) (*openai.Client, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = strings.TrimRight(baseURL, "/")
	}
	return openai.NewClientWithConfig(cfg), nil
}

// Input is what the model sees about the lead.
type Input struct {
	ProfileText  string
	Conversation string
	Website      string
}

// Writer generates slot content. It is safe for concurrent use.
type Writer struct {
	client   Client
	cache    httpcache.Cacher
	limiter  *rate.Limiter
	logger   *slog.Logger
	seller   Seller
	model    string
	language string
}

// Option configures a Writer.
type Option func(*Writer)

// WithModel sets the chat model.
func WithModel(model string) Option {
	return func(w *Writer) {
		if model != "" {
			w.model = model
		}
	}
}

// WithLanguage sets the copy language, as a code ("es") or a name.
func WithLanguage(lang string) Option {
	return func(w *Writer) {
		if lang != "" {
			w.language = lang
		}
	}
}

// WithRateLimit paces model calls to rps requests per second. Zero disables pacing.
func WithRateLimit(rps float64) Option {
	return func(w *Writer) {
		if rps > 0 {
			w.limiter = rate.NewLimiter(rate.Limit(rps), 1)
		} else {
			w.limiter = rate.NewLimiter(rate.Inf, 1)
		}
	}
}

// WithCache caches responses by model and prompt.
func WithCache(cache httpcache.Cacher) Option {
	return func(w *Writer) { w.cache = cache }
}

// WithSeller fixes the presenter's team and contact slots.
func WithSeller(s Seller) Option {
	return func(w *Writer) { w.seller = s }
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Writer) { w.logger = logger }
}

// New returns a Writer. A nil client makes every Generate call fail with ErrMissingAPIKey.
func New(client Client, opts ...Option) *Writer {
	w := &Writer{
		client:   client,
		model:    DefaultModel,
		language: "es",
		limiter:  rate.NewLimiter(rate.Inf, 1),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Model returns the configured chat model.
func (w *Writer) Model() string { return w.model }

// Generate returns the slot content for one lead.
func (w *Writer) Generate(ctx context.Context, in Input) (*Content, error) {
	if w.client == nil {
		return nil, ErrMissingAPIKey
	}
	sys := systemPrompt(w.language)
	user := userPrompt(in)

	data, err := httpcache.Remember(ctx, w.cache, httpcache.Key(w.model, sys, user), func(ctx context.Context) ([]byte, error) {
		return w.complete(ctx, sys, user)
	})
	if err != nil {
		return nil, err
	}

	var c Content
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("decode slot content: %w", err)
	}
	w.seller.apply(&c)
	return &c, nil
}

// complete calls the model and returns the validated JSON object.
func (w *Writer) complete(ctx context.Context, sys, user string) ([]byte, error) {
	if err := w.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	w.logger.InfoContext(ctx, "generating slide content", "model", w.model, "language", w.language)
	start := time.Now()
	resp, err := w.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: w.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: sys},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	metrics.LLMRequestDuration.WithLabelValues(w.model).Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("chat completion returned no choices")
	}

	raw := strings.TrimSpace(resp.Choices[0].Message.Content)
	var probe Content
	if err := json.Unmarshal([]byte(raw), &probe); err != nil {
		return nil, fmt.Errorf("model returned invalid JSON: %w", err)
	}
	w.logger.DebugContext(ctx, "slide content generated",
		"prompt_tokens", resp.Usage.PromptTokens, "completion_tokens", resp.Usage.CompletionTokens)
	return []byte(raw), nil
}
