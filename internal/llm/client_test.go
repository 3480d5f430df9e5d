package llm

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"
)

// mockBackend fails with failErr for the first failures calls, then succeeds.
type mockBackend struct {
	mu       sync.Mutex
	calls    int
	failures int
	failErr  error
	response string
	usage    Usage
}

func (m *mockBackend) Generate(_ context.Context, _, _, _ string, _ *genai.Schema) (string, Usage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.calls <= m.failures {
		return "", Usage{}, m.failErr
	}
	return m.response, m.usage, nil
}

func (m *mockBackend) Close() error { return nil }

func (m *mockBackend) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// recordingRecorder captures usage dispatches.
type recordingRecorder struct {
	mu      sync.Mutex
	records []Tag
	models  []string
	usages  []Usage
}

func (r *recordingRecorder) Record(_ context.Context, modelID string, usage Usage, tag Tag) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.models = append(r.models, modelID)
	r.usages = append(r.usages, usage)
	r.records = append(r.records, tag)
}

func newTestClient(backend Backend, opts ...Option) *Client {
	c := NewClient(backend, DefaultConfig(), opts...)
	c.backoff = func(context.Context, time.Duration) error { return nil }
	return c
}

func rateLimitErr() error {
	return &googleapi.Error{Code: 429, Message: "Resource has been exhausted"}
}

func TestGenerate_Success(t *testing.T) {
	backend := &mockBackend{response: `{"ok": true}`}
	c := newTestClient(backend)

	raw, err := c.Generate(context.Background(), Request{UserPrompt: "p", Tier: TierStandard})
	require.NoError(t, err)
	assert.Equal(t, `{"ok": true}`, raw)
	assert.Equal(t, 1, backend.callCount())
}

func TestGenerate_RetriesRateLimitThenSucceeds(t *testing.T) {
	// K failures with K < maxRetries: call count must be exactly K+1.
	const k = 2
	backend := &mockBackend{failures: k, failErr: rateLimitErr(), response: `{}`}
	c := newTestClient(backend)

	_, err := c.Generate(context.Background(), Request{UserPrompt: "p"})
	require.NoError(t, err)
	assert.Equal(t, k+1, backend.callCount())
}

func TestGenerate_RetryExhaustion(t *testing.T) {
	backend := &mockBackend{failures: 100, failErr: rateLimitErr()}
	c := newTestClient(backend)

	_, err := c.Generate(context.Background(), Request{UserPrompt: "p"})
	require.Error(t, err)
	assert.Equal(t, KindRateLimited, KindOf(err))
	assert.Equal(t, DefaultMaxRetries+1, backend.callCount())
}

func TestGenerate_NoRetryOnOtherErrors(t *testing.T) {
	backend := &mockBackend{failures: 100, failErr: errors.New("schema rejected")}
	c := newTestClient(backend)

	_, err := c.Generate(context.Background(), Request{UserPrompt: "p"})
	require.Error(t, err)
	assert.Equal(t, 1, backend.callCount())
}

func TestGenerate_NoContentIsNotRetried(t *testing.T) {
	backend := &mockBackend{failures: 100, failErr: &Error{Kind: KindNoContent, Message: "no content generated"}}
	c := newTestClient(backend)

	_, err := c.Generate(context.Background(), Request{UserPrompt: "p"})
	require.Error(t, err)
	assert.Equal(t, KindNoContent, KindOf(err))
	assert.Equal(t, 1, backend.callCount())
}

func TestGenerate_BackoffRespectsCancellation(t *testing.T) {
	backend := &mockBackend{failures: 100, failErr: rateLimitErr()}
	c := NewClient(backend, DefaultConfig())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Generate(ctx, Request{UserPrompt: "p"})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, backend.callCount())
}

func TestGenerate_DispatchesUsage(t *testing.T) {
	backend := &mockBackend{
		response: `{}`,
		usage:    Usage{PromptTokens: 120, OutputTokens: 30, TotalTokens: 150},
	}
	recorder := &recordingRecorder{}
	c := newTestClient(backend, WithRecorder(recorder))

	tag := Tag{Phase: "interview", ProjectID: "p-1", CandidateName: "Maria Silva"}
	_, err := c.Generate(context.Background(), Request{UserPrompt: "p", Tier: TierLite, Tag: tag})
	require.NoError(t, err)

	// Close waits for the async dispatch.
	require.NoError(t, c.Close())

	recorder.mu.Lock()
	defer recorder.mu.Unlock()
	require.Len(t, recorder.records, 1)
	assert.Equal(t, tag, recorder.records[0])
	assert.Equal(t, "gemini-2.5-flash-lite", recorder.models[0])
	assert.Equal(t, int32(150), recorder.usages[0].TotalTokens)
}

func TestGenerate_RecorderPanicIsSwallowed(t *testing.T) {
	backend := &mockBackend{response: `{}`}
	c := newTestClient(backend, WithRecorder(panickyRecorder{}))

	_, err := c.Generate(context.Background(), Request{UserPrompt: "p"})
	require.NoError(t, err)
	require.NoError(t, c.Close())
}

type panickyRecorder struct{}

func (panickyRecorder) Record(context.Context, string, Usage, Tag) {
	panic("accounting blew up")
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"Rate limit from API error", rateLimitErr(), KindRateLimited},
		{"Wrapped rate limit", &Error{Kind: KindRateLimited, Message: "quota"}, KindRateLimited},
		{"No content", &Error{Kind: KindNoContent, Message: "empty"}, KindNoContent},
		{"Blocked", &Error{Kind: KindBlocked, Message: "safety"}, KindBlocked},
		{"Plain error", errors.New("boom"), KindInternal},
		{"Server error", &googleapi.Error{Code: 503}, KindUnavailable},
		{"Client error", &googleapi.Error{Code: 400}, KindInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestCleanJSONBlock(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"JSON code fence", "```json\n{\"a\": 1}\n```", `{"a": 1}`},
		{"Generic fence", "```\n{\"a\": 1}\n```", `{"a": 1}`},
		{"Plain JSON", `{"a": 1}`, `{"a": 1}`},
		{"Surrounding whitespace", "  {\"a\": 1}\n", `{"a": 1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CleanJSONBlock(tt.input))
		})
	}
}
