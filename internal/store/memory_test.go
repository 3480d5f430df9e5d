package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_GetMissing(t *testing.T) {
	m := NewMemory()
	data, err := m.Get(context.Background(), "projects", "missing")
	require.NoError(t, err)
	assert.Nil(t, data)
}

func TestMemory_MergePreservesUntouchedFields(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	require.NoError(t, m.Set(ctx, "projects", "p1", map[string]any{
		"company_name": "Acme",
		"mapped":       12,
	}, true))
	require.NoError(t, m.Set(ctx, "projects", "p1", map[string]any{
		"mapped": 15,
	}, true))

	data, err := m.Get(ctx, "projects", "p1")
	require.NoError(t, err)
	assert.Equal(t, "Acme", data["company_name"])
	assert.Equal(t, float64(15), data["mapped"])
}

func TestMemory_ReplaceDropsUntouchedFields(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	require.NoError(t, m.Set(ctx, "projects", "p1", map[string]any{"a": 1, "b": 2}, false))
	require.NoError(t, m.Set(ctx, "projects", "p1", map[string]any{"a": 3}, false))

	data, err := m.Get(ctx, "projects", "p1")
	require.NoError(t, err)
	assert.Equal(t, float64(3), data["a"])
	assert.NotContains(t, data, "b")
}

func TestMemory_GetReturnsCopy(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	require.NoError(t, m.Set(ctx, "projects", "p1", map[string]any{"a": "x"}, true))

	data, err := m.Get(ctx, "projects", "p1")
	require.NoError(t, err)
	data["a"] = "mutated"

	fresh, err := m.Get(ctx, "projects", "p1")
	require.NoError(t, err)
	assert.Equal(t, "x", fresh["a"])
}

func TestMemory_QueryFiltersAndOrders(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	require.NoError(t, m.Set(ctx, "usage", "u1", map[string]any{
		"projectId": "p1", "timestamp": "2026-08-01T10:00:00Z",
	}, false))
	require.NoError(t, m.Set(ctx, "usage", "u2", map[string]any{
		"projectId": "p1", "timestamp": "2026-08-02T10:00:00Z",
	}, false))
	require.NoError(t, m.Set(ctx, "usage", "u3", map[string]any{
		"projectId": "p2", "timestamp": "2026-08-03T10:00:00Z",
	}, false))

	docs, err := m.Query(ctx, "usage", map[string]any{"projectId": "p1"}, "-timestamp")
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "u2", docs[0].ID)
	assert.Equal(t, "u1", docs[1].ID)
}

func TestMemory_QueryEmptyCollection(t *testing.T) {
	m := NewMemory()
	docs, err := m.Query(context.Background(), "nope", nil, "")
	require.NoError(t, err)
	assert.Empty(t, docs)
}
