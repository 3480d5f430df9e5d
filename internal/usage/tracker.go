package usage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rbarbosa/talentflow/internal/llm"
	"github.com/rbarbosa/talentflow/internal/store"
)

// Collection is the store collection holding usage records.
const Collection = "usage_records"

// Record is one append-only usage entry, written once per generation call and
// never mutated.
type Record struct {
	ID                   string  `json:"id"`
	Timestamp            string  `json:"timestamp"`
	ModelID              string  `json:"modelId"`
	PromptTokenCount     int32   `json:"promptTokenCount"`
	CandidatesTokenCount int32   `json:"candidatesTokenCount"`
	TotalTokenCount      int32   `json:"totalTokenCount"`
	EstimatedCost        float64 `json:"estimatedCost"`
	Context              llm.Tag `json:"context"`
}

// Tracker persists usage records through the document store.
type Tracker struct {
	store store.Store
	log   *zap.Logger
	now   func() time.Time
	newID func() string
}

// NewTracker creates a tracker writing to s.
func NewTracker(s store.Store, log *zap.Logger) *Tracker {
	if log == nil {
		log = zap.NewNop()
	}
	return &Tracker{
		store: s,
		log:   log,
		now:   func() time.Time { return time.Now().UTC() },
		newID: func() string { return uuid.NewString() },
	}
}

// Record persists one usage record. It implements llm.Recorder and is
// best-effort: persistence failures are logged and swallowed so accounting
// can never block or fail a generation call.
func (t *Tracker) Record(ctx context.Context, modelID string, u llm.Usage, tag llm.Tag) {
	rec := Record{
		ID:                   t.newID(),
		Timestamp:            t.now().Format(time.RFC3339Nano),
		ModelID:              modelID,
		PromptTokenCount:     u.PromptTokens,
		CandidatesTokenCount: u.OutputTokens,
		TotalTokenCount:      u.TotalTokens,
		EstimatedCost:        EstimateCost(modelID, u.PromptTokens, u.OutputTokens),
		Context:              tag,
	}

	fields, err := recordFields(rec)
	if err != nil {
		t.log.Warn("failed to encode usage record", zap.Error(err))
		return
	}

	if err := t.store.Set(ctx, Collection, rec.ID, fields, false); err != nil {
		t.log.Warn("failed to persist usage record",
			zap.String("model", modelID),
			zap.String("project", tag.ProjectID),
			zap.Error(err))
	}
}

// ListByProject returns the usage records tagged with projectID, newest
// first.
func (t *Tracker) ListByProject(ctx context.Context, projectID string) ([]Record, error) {
	docs, err := t.store.Query(ctx, Collection,
		map[string]any{"context": map[string]any{"projectId": projectID}},
		"-timestamp")
	if err != nil {
		return nil, fmt.Errorf("failed to list usage records: %w", err)
	}

	records := make([]Record, 0, len(docs))
	for _, doc := range docs {
		var rec Record
		raw, err := json.Marshal(doc.Data)
		if err != nil {
			return nil, fmt.Errorf("failed to decode usage record %s: %w", doc.ID, err)
		}
		if err := json.Unmarshal(raw, &rec); err != nil {
			return nil, fmt.Errorf("failed to decode usage record %s: %w", doc.ID, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

// TotalCost sums the estimated cost of the given records.
func TotalCost(records []Record) float64 {
	total := 0.0
	for _, rec := range records {
		total += rec.EstimatedCost
	}
	return total
}

func recordFields(rec Record) (map[string]any, error) {
	raw, err := json.Marshal(rec)
	if err != nil {
		return nil, err
	}
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}
	return fields, nil
}
