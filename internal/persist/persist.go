// Package persist maps the in-memory phase state onto the document store.
// Writes are asynchronous merge writes: only the fields present in the
// snapshot are updated, and absent fields are stripped before the write so
// they never overwrite stored data with nulls.
package persist

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/rbarbosa/talentflow/internal/phases"
	"github.com/rbarbosa/talentflow/internal/store"
)

// Collections for the two persistence scopes: per-project phase state and
// per-user account data.
const (
	ProjectCollection = "projects"
	UserCollection    = "users"
)

// Adapter persists phase state snapshots and user-scoped data. Save is
// fire-and-forget: the write runs in the background and failures are logged,
// matching the approval flow where in-memory state is already authoritative.
type Adapter struct {
	store store.Store
	log   *zap.Logger
	wg    sync.WaitGroup
}

// New creates an adapter over s.
func New(s store.Store, log *zap.Logger) *Adapter {
	if log == nil {
		log = zap.NewNop()
	}
	return &Adapter{store: s, log: log}
}

// Save merge-writes the project state snapshot in the background. Implements
// phases.Saver.
func (a *Adapter) Save(ctx context.Context, projectID string, state *phases.State) {
	fields, err := stateFields(state)
	if err != nil {
		a.log.Error("failed to serialize project state",
			zap.String("projectId", projectID),
			zap.Error(err))
		return
	}

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				a.log.Error("panic while persisting project state",
					zap.String("projectId", projectID),
					zap.Any("panic", r))
			}
		}()

		// The write must survive the caller's request lifetime.
		ctx := context.WithoutCancel(ctx)
		if err := a.store.Set(ctx, ProjectCollection, projectID, fields, true); err != nil {
			a.log.Error("failed to persist project state",
				zap.String("projectId", projectID),
				zap.Error(err))
		}
	}()
}

// SaveSync merge-writes the project state and waits for the result, for
// callers that need a durability guarantee (e.g. session shutdown).
func (a *Adapter) SaveSync(ctx context.Context, projectID string, state *phases.State) error {
	fields, err := stateFields(state)
	if err != nil {
		return err
	}
	return a.store.Set(ctx, ProjectCollection, projectID, fields, true)
}

// Load reads the persisted state for a project. Returns nil when the project
// has no stored state yet.
func (a *Adapter) Load(ctx context.Context, projectID string) (*phases.State, error) {
	data, err := a.store.Get(ctx, ProjectCollection, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to load project %s: %w", projectID, err)
	}
	if data == nil {
		return nil, nil
	}

	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode project %s: %w", projectID, err)
	}
	var state phases.State
	if err := json.Unmarshal(raw, &state); err != nil {
		return nil, fmt.Errorf("failed to decode project %s: %w", projectID, err)
	}
	return &state, nil
}

// SaveUser merge-writes user-scoped fields (settings, project index).
func (a *Adapter) SaveUser(ctx context.Context, userID string, fields map[string]any) error {
	return a.store.Set(ctx, UserCollection, userID, StripAbsent(fields).(map[string]any), true)
}

// LoadUser reads user-scoped data, or nil when the user has none.
func (a *Adapter) LoadUser(ctx context.Context, userID string) (map[string]any, error) {
	return a.store.Get(ctx, UserCollection, userID)
}

// Close waits for in-flight background writes.
func (a *Adapter) Close() {
	a.wg.Wait()
}

// stateFields converts the snapshot into a store payload with absent values
// stripped.
func stateFields(state *phases.State) (map[string]any, error) {
	raw, err := json.Marshal(state)
	if err != nil {
		return nil, err
	}
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}
	return StripAbsent(fields).(map[string]any), nil
}

// StripAbsent removes null values recursively from maps and slices. A merge
// write with an explicit null would erase the stored field; an absent field
// leaves it alone, which is the semantic the snapshot intends.
func StripAbsent(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			if item == nil {
				continue
			}
			out[k] = StripAbsent(item)
		}
		return out
	case []any:
		out := make([]any, 0, len(val))
		for _, item := range val {
			if item == nil {
				continue
			}
			out = append(out, StripAbsent(item))
		}
		return out
	default:
		return v
	}
}
