package store

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"
)

// Memory is an in-memory Store with the same merge semantics as the Postgres
// implementation. Used for tests and offline runs.
type Memory struct {
	mu          sync.RWMutex
	collections map[string]map[string]map[string]any
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{collections: make(map[string]map[string]map[string]any)}
}

// Get returns a deep copy of the document data, or nil when absent.
func (m *Memory) Get(_ context.Context, collection, id string) (map[string]any, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	doc, ok := m.collections[collection][id]
	if !ok {
		return nil, nil
	}
	return cloneMap(doc)
}

// Set writes fields under collection/id. Merge replaces only top-level fields
// present in the payload, matching JSONB concatenation.
func (m *Memory) Set(_ context.Context, collection, id string, fields map[string]any, merge bool) error {
	// Round-trip through JSON so stored values are decoupled from caller
	// memory and typed the same way a real document store returns them.
	normalized, err := cloneMap(fields)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.collections[collection] == nil {
		m.collections[collection] = make(map[string]map[string]any)
	}

	existing, ok := m.collections[collection][id]
	if !ok || !merge {
		m.collections[collection][id] = normalized
		return nil
	}
	for k, v := range normalized {
		existing[k] = v
	}
	return nil
}

// Query returns documents whose data matches all filter fields.
func (m *Memory) Query(_ context.Context, collection string, filters map[string]any, orderBy string) ([]Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var docs []Document
	for id, data := range m.collections[collection] {
		if !matchesFilters(data, filters) {
			continue
		}
		copied, err := cloneMap(data)
		if err != nil {
			return nil, err
		}
		docs = append(docs, Document{ID: id, Data: copied})
	}

	sortDocs(docs, orderBy)
	return docs, nil
}

// Close is a no-op for the in-memory store.
func (m *Memory) Close() error { return nil }

// matchesFilters mirrors JSONB containment: every filter field must be
// contained in the document, descending into nested objects.
func matchesFilters(data, filters map[string]any) bool {
	for field, want := range filters {
		got, ok := data[field]
		if !ok || !containsValue(normalizeValue(got), normalizeValue(want)) {
			return false
		}
	}
	return true
}

func containsValue(got, want any) bool {
	wantMap, ok := want.(map[string]any)
	if !ok {
		// Both sides are JSON-normalized, so int/float64 mismatches
		// cannot break equality here.
		return reflect.DeepEqual(got, want)
	}
	gotMap, ok := got.(map[string]any)
	if !ok {
		return false
	}
	for k, v := range wantMap {
		inner, ok := gotMap[k]
		if !ok || !containsValue(inner, v) {
			return false
		}
	}
	return true
}

func sortDocs(docs []Document, orderBy string) {
	if orderBy == "" {
		sort.Slice(docs, func(i, j int) bool { return docs[i].ID < docs[j].ID })
		return
	}

	field, desc := orderBy, false
	if strings.HasPrefix(orderBy, "-") {
		field, desc = orderBy[1:], true
	}
	sort.Slice(docs, func(i, j int) bool {
		a := fmt.Sprint(docs[i].Data[field])
		b := fmt.Sprint(docs[j].Data[field])
		if desc {
			return a > b
		}
		return a < b
	})
}

func cloneMap(in map[string]any) (map[string]any, error) {
	raw, err := json.Marshal(in)
	if err != nil {
		return nil, fmt.Errorf("failed to clone document: %w", err)
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("failed to clone document: %w", err)
	}
	return out, nil
}

func normalizeValue(v any) any {
	raw, err := json.Marshal(v)
	if err != nil {
		return v
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return v
	}
	return out
}
