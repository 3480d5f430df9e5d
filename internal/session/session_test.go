package session

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rbarbosa/talentflow/internal/persist"
	"github.com/rbarbosa/talentflow/internal/store"
	"github.com/rbarbosa/talentflow/internal/types"
)

func newTestSession(t *testing.T) *Session {
	t.Helper()
	mem := store.NewMemory()
	return &Session{
		userID:  "user-1",
		log:     zap.NewNop(),
		store:   mem,
		adapter: persist.New(mem, nil),
	}
}

func TestProjectLifecycle(t *testing.T) {
	s := newTestSession(t)
	ctx := context.Background()

	project, err := s.CreateProject(ctx, "Acme", "Engineering Manager")
	require.NoError(t, err)
	assert.Equal(t, types.StatusActive, project.Status)
	assert.Equal(t, "user-1", project.OwnerID)

	listed, err := s.ListProjects(ctx)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, project.ID, listed[0].ID)

	updated, err := s.SetProjectStatus(ctx, project.ID, types.StatusPaused)
	require.NoError(t, err)
	assert.Equal(t, types.StatusPaused, updated.Status)

	_, err = s.SetProjectStatus(ctx, project.ID, types.ProjectStatus("bogus"))
	assert.Error(t, err)
}

func TestCreateProjectValidation(t *testing.T) {
	s := newTestSession(t)
	_, err := s.CreateProject(context.Background(), "", "Role")
	assert.Error(t, err)
}

func TestSetFunnel(t *testing.T) {
	s := newTestSession(t)
	ctx := context.Background()

	project, err := s.CreateProject(ctx, "Acme", "EM")
	require.NoError(t, err)

	updated, err := s.SetFunnel(ctx, project.ID, 40, 12)
	require.NoError(t, err)
	assert.Equal(t, 40, updated.Mapped)
	assert.Equal(t, 12, updated.Approached)

	_, err = s.SetFunnel(ctx, project.ID, -1, 0)
	assert.Error(t, err)
}

func TestListProjectsScopedToOwner(t *testing.T) {
	mem := store.NewMemory()
	a := &Session{userID: "user-a", log: zap.NewNop(), store: mem, adapter: persist.New(mem, nil)}
	b := &Session{userID: "user-b", log: zap.NewNop(), store: mem, adapter: persist.New(mem, nil)}
	ctx := context.Background()

	mine, err := a.CreateProject(ctx, "Acme", "EM")
	require.NoError(t, err)
	_, err = b.CreateProject(ctx, "Globex", "CTO")
	require.NoError(t, err)

	listed, err := a.ListProjects(ctx)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, mine.ID, listed[0].ID)

	// Cross-user access is rejected outright.
	_, err = b.SetProjectStatus(ctx, mine.ID, types.StatusArchived)
	assert.Error(t, err)
}

func TestMetadataSurvivesStateWrites(t *testing.T) {
	s := newTestSession(t)
	ctx := context.Background()

	project, err := s.CreateProject(ctx, "Acme", "EM")
	require.NoError(t, err)

	// A phase-state merge write into the same document must not disturb
	// the metadata field.
	require.NoError(t, s.store.Set(ctx, persist.ProjectCollection, project.ID,
		map[string]any{"phase1Data": map[string]any{"role_summary": "x"}}, true))

	loaded, err := s.loadMeta(ctx, project.ID)
	require.NoError(t, err)
	assert.Equal(t, "Acme", loaded.CompanyName)
}
