package usage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rbarbosa/talentflow/internal/llm"
	"github.com/rbarbosa/talentflow/internal/store"
)

func TestEstimateCost(t *testing.T) {
	tests := []struct {
		name    string
		model   string
		prompt  int32
		output  int32
		want    float64
	}{
		{"Flash lite", "gemini-2.5-flash-lite", 1_000_000, 1_000_000, 0.50},
		{"Flash picks the right bucket over lite prefix", "gemini-2.5-flash", 1_000_000, 0, 0.30},
		{"Pro", "gemini-2.5-pro", 2_000_000, 100_000, 3.50},
		{"Versioned model id maps to its bucket", "gemini-2.5-flash-001", 1_000_000, 0, 0.30},
		{"Unknown model prices at zero", "some-future-model", 1_000_000, 1_000_000, 0},
		{"Zero tokens", "gemini-2.5-pro", 0, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, EstimateCost(tt.model, tt.prompt, tt.output), 1e-9)
		})
	}
}

func newTestTracker(s store.Store) *Tracker {
	tr := NewTracker(s, zap.NewNop())
	tr.now = func() time.Time { return time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC) }
	return tr
}

func TestTracker_RecordPersistsRecord(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	tr := newTestTracker(mem)

	tr.Record(ctx, "gemini-2.5-flash", llm.Usage{PromptTokens: 1000, OutputTokens: 500, TotalTokens: 1500},
		llm.Tag{Phase: "interview", ProjectID: "p1", CandidateName: "Maria Silva"})

	records, err := tr.ListByProject(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, records, 1)

	rec := records[0]
	assert.Equal(t, "gemini-2.5-flash", rec.ModelID)
	assert.Equal(t, int32(1000), rec.PromptTokenCount)
	assert.Equal(t, int32(500), rec.CandidatesTokenCount)
	assert.Equal(t, int32(1500), rec.TotalTokenCount)
	assert.Equal(t, "interview", rec.Context.Phase)
	assert.Equal(t, "Maria Silva", rec.Context.CandidateName)
	assert.InDelta(t, EstimateCost("gemini-2.5-flash", 1000, 500), rec.EstimatedCost, 1e-9)
}

func TestTracker_ListFiltersByProject(t *testing.T) {
	ctx := context.Background()
	tr := newTestTracker(store.NewMemory())

	tr.Record(ctx, "gemini-2.5-flash", llm.Usage{TotalTokens: 10}, llm.Tag{ProjectID: "p1"})
	tr.Record(ctx, "gemini-2.5-flash", llm.Usage{TotalTokens: 20}, llm.Tag{ProjectID: "p2"})
	tr.Record(ctx, "gemini-2.5-pro", llm.Usage{TotalTokens: 30}, llm.Tag{ProjectID: "p1"})

	records, err := tr.ListByProject(ctx, "p1")
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

// failingStore always fails writes; recording must swallow the failure.
type failingStore struct{ store.Store }

func (failingStore) Set(context.Context, string, string, map[string]any, bool) error {
	return errors.New("store unavailable")
}

func TestTracker_RecordSwallowsPersistenceFailure(t *testing.T) {
	tr := NewTracker(failingStore{store.NewMemory()}, zap.NewNop())

	assert.NotPanics(t, func() {
		tr.Record(context.Background(), "gemini-2.5-pro", llm.Usage{TotalTokens: 5}, llm.Tag{})
	})
}

func TestTotalCost(t *testing.T) {
	records := []Record{
		{EstimatedCost: 0.25},
		{EstimatedCost: 0.50},
	}
	assert.InDelta(t, 0.75, TotalCost(records), 1e-9)
	assert.Zero(t, TotalCost(nil))
}
