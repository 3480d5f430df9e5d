package llm

import (
	"context"
	"sync"
	"time"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
)

// DefaultMaxRetries bounds the rate-limit retry loop: a call is attempted at
// most DefaultMaxRetries+1 times.
const DefaultMaxRetries = 3

// Tag carries the contextual metadata attached to usage records for one
// generation call. All fields are optional.
type Tag struct {
	Phase         string `json:"phase,omitempty"`
	ProjectID     string `json:"projectId,omitempty"`
	CompanyName   string `json:"companyName,omitempty"`
	CandidateName string `json:"candidateName,omitempty"`
}

// Recorder receives token-usage metadata after successful calls. Recording is
// best-effort: implementations must never fail the primary workflow.
type Recorder interface {
	Record(ctx context.Context, modelID string, usage Usage, tag Tag)
}

// Request describes one structured generation call. Phases differ only in
// the prompts and schema they supply; retry and accounting behavior is
// schema-agnostic.
type Request struct {
	SystemPrompt string
	UserPrompt   string
	Schema       *genai.Schema
	Tier         ModelTier
	Tag          Tag
}

// Client drives the generation backend with rate-limit retries and
// asynchronous usage accounting.
type Client struct {
	backend    Backend
	config     *Config
	recorder   Recorder
	log        *zap.Logger
	maxRetries int
	backoff    func(ctx context.Context, wait time.Duration) error

	wg sync.WaitGroup
}

// Option configures a Client.
type Option func(*Client)

// WithRecorder attaches a usage recorder.
func WithRecorder(r Recorder) Option {
	return func(c *Client) { c.recorder = r }
}

// WithMaxRetries overrides the rate-limit retry budget.
func WithMaxRetries(n int) Option {
	return func(c *Client) { c.maxRetries = n }
}

// WithLogger attaches a logger for retry and accounting diagnostics.
func WithLogger(log *zap.Logger) Option {
	return func(c *Client) { c.log = log }
}

// NewClient wraps backend with retry and accounting behavior.
func NewClient(backend Backend, config *Config, opts ...Option) *Client {
	if config == nil {
		config = DefaultConfig()
	}
	c := &Client{
		backend:    backend,
		config:     config,
		log:        zap.NewNop(),
		maxRetries: DefaultMaxRetries,
		backoff:    sleepContext,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Generate issues a schema-constrained call, retrying rate-limit failures
// with exponential backoff (2^attempt seconds). Any other failure propagates
// immediately. On success the usage metadata is forwarded to the recorder on
// a separate goroutine; accounting failures never reach the caller.
func (c *Client) Generate(ctx context.Context, req Request) (string, error) {
	model := c.config.Model(req.Tier)

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			wait := time.Duration(1<<uint(attempt)) * time.Second
			c.log.Warn("rate limited, backing off",
				zap.Int("attempt", attempt),
				zap.Duration("wait", wait),
				zap.String("model", model))
			if err := c.backoff(ctx, wait); err != nil {
				return "", err
			}
		}

		raw, usage, err := c.backend.Generate(ctx, model, req.SystemPrompt, req.UserPrompt, req.Schema)
		if err == nil {
			c.dispatchUsage(ctx, model, usage, req.Tag)
			return raw, nil
		}

		lastErr = err
		if KindOf(err) != KindRateLimited {
			return "", err
		}
	}

	return "", lastErr
}

// Close waits for in-flight usage dispatches and releases the backend.
func (c *Client) Close() error {
	c.wg.Wait()
	return c.backend.Close()
}

// dispatchUsage forwards usage metadata to the recorder without blocking the
// caller. The dispatch survives cancellation of the originating call.
func (c *Client) dispatchUsage(ctx context.Context, model string, usage Usage, tag Tag) {
	if c.recorder == nil {
		return
	}

	detached := context.WithoutCancel(ctx)
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				c.log.Warn("usage recording panicked", zap.Any("panic", r))
			}
		}()
		c.recorder.Record(detached, model, usage, tag)
	}()
}

func sleepContext(ctx context.Context, wait time.Duration) error {
	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
