// Package session wires the application together for one user: store,
// generation client, usage tracking, persistence and the per-project phase
// machinery.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rbarbosa/talentflow/internal/config"
	"github.com/rbarbosa/talentflow/internal/llm"
	"github.com/rbarbosa/talentflow/internal/persist"
	"github.com/rbarbosa/talentflow/internal/phases"
	"github.com/rbarbosa/talentflow/internal/queue"
	"github.com/rbarbosa/talentflow/internal/store"
	"github.com/rbarbosa/talentflow/internal/types"
	"github.com/rbarbosa/talentflow/internal/usage"
)

// metaField is the top-level document field holding project metadata,
// alongside the phase state fields in the same document. Merge writes keep
// the two from clobbering each other.
const metaField = "meta"

// Session is the wired application for one user. A session holds at most one
// open project at a time.
type Session struct {
	userID  string
	log     *zap.Logger
	store   store.Store
	client  *llm.Client
	tracker *usage.Tracker
	adapter *persist.Adapter

	project *types.Project
	machine *phases.Machine
	queue   *queue.Engine
}

// New builds a session from config: Postgres-backed when a database URL is
// configured, in-memory otherwise.
func New(ctx context.Context, cfg *config.Config, log *zap.Logger) (*Session, error) {
	if cfg.UserID == "" {
		return nil, fmt.Errorf("user id is required")
	}
	if log == nil {
		log = zap.NewNop()
	}

	var st store.Store
	if cfg.DatabaseURL != "" {
		pg, err := store.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := pg.EnsureSchema(ctx); err != nil {
			pg.Close()
			return nil, fmt.Errorf("failed to ensure schema: %w", err)
		}
		st = pg
	} else {
		log.Warn("no database configured, state will not survive the process")
		st = store.NewMemory()
	}

	backend, err := llm.NewGeminiBackend(ctx, cfg.APIKey)
	if err != nil {
		st.Close()
		return nil, err
	}

	tracker := usage.NewTracker(st, log)
	opts := []llm.Option{llm.WithRecorder(tracker), llm.WithLogger(log)}
	if cfg.MaxRetries > 0 {
		opts = append(opts, llm.WithMaxRetries(cfg.MaxRetries))
	}

	return &Session{
		userID:  cfg.UserID,
		log:     log,
		store:   st,
		client:  llm.NewClient(backend, llm.DefaultConfig(), opts...),
		tracker: tracker,
		adapter: persist.New(st, log),
	}, nil
}

// Close flushes background work and releases resources.
func (s *Session) Close() error {
	var firstErr error
	if s.client != nil {
		if err := s.client.Close(); err != nil {
			firstErr = err
		}
	}
	s.adapter.Close()
	if err := s.store.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

// UserID returns the owning user id.
func (s *Session) UserID() string { return s.userID }

// Machine returns the phase machine of the open project.
func (s *Session) Machine() *phases.Machine { return s.machine }

// Queue returns the batch queue of the open project.
func (s *Session) Queue() *queue.Engine { return s.queue }

// Project returns the open project, or nil.
func (s *Session) Project() *types.Project { return s.project }

// CreateProject creates and persists a new active project owned by this
// session's user.
func (s *Session) CreateProject(ctx context.Context, companyName, roleName string) (*types.Project, error) {
	if companyName == "" || roleName == "" {
		return nil, fmt.Errorf("company name and role name are required")
	}

	now := time.Now().UTC()
	project := &types.Project{
		ID:          uuid.New().String(),
		OwnerID:     s.userID,
		CompanyName: companyName,
		RoleName:    roleName,
		Status:      types.StatusActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.saveMeta(ctx, project); err != nil {
		return nil, err
	}
	return project, nil
}

// ListProjects returns this user's projects, newest first.
func (s *Session) ListProjects(ctx context.Context) ([]types.Project, error) {
	docs, err := s.store.Query(ctx, persist.ProjectCollection,
		map[string]any{metaField: map[string]any{"owner_id": s.userID}}, "")
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}

	projects := make([]types.Project, 0, len(docs))
	for _, doc := range docs {
		project, err := metaFromDoc(doc.Data)
		if err != nil {
			s.log.Warn("skipping project with malformed metadata",
				zap.String("id", doc.ID), zap.Error(err))
			continue
		}
		projects = append(projects, *project)
	}
	sort.Slice(projects, func(i, j int) bool {
		return projects[i].CreatedAt.After(projects[j].CreatedAt)
	})
	return projects, nil
}

// OpenProject loads a project and its persisted phase state and wires the
// machine and batch queue for it.
func (s *Session) OpenProject(ctx context.Context, projectID string) (*types.Project, error) {
	data, err := s.store.Get(ctx, persist.ProjectCollection, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to load project %s: %w", projectID, err)
	}
	if data == nil {
		return nil, fmt.Errorf("project %s not found", projectID)
	}

	project, err := metaFromDoc(data)
	if err != nil {
		return nil, fmt.Errorf("project %s has malformed metadata: %w", projectID, err)
	}
	if project.OwnerID != s.userID {
		return nil, fmt.Errorf("project %s does not belong to this user", projectID)
	}

	state, err := s.adapter.Load(ctx, projectID)
	if err != nil {
		return nil, err
	}

	pipe := phases.NewPipeline(project)
	pipe.Restore(state)

	s.project = project
	s.machine = phases.NewMachine(pipe, s.client,
		phases.WithSaver(s.adapter), phases.WithLogger(s.log))
	s.queue = queue.NewEngine(s.machine, queue.WithLogger(s.log))

	if err := s.loadScratch(ctx); err != nil {
		s.log.Warn("failed to restore drafts", zap.Error(err))
	}
	return project, nil
}

// SetProjectStatus applies a lifecycle transition and persists it.
func (s *Session) SetProjectStatus(ctx context.Context, projectID string, status types.ProjectStatus) (*types.Project, error) {
	project, err := s.loadMeta(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if err := project.SetStatus(status); err != nil {
		return nil, err
	}
	if err := s.saveMeta(ctx, project); err != nil {
		return nil, err
	}
	return project, nil
}

// SetFunnel updates the user-maintained funnel counters.
func (s *Session) SetFunnel(ctx context.Context, projectID string, mapped, approached int) (*types.Project, error) {
	if mapped < 0 || approached < 0 {
		return nil, fmt.Errorf("funnel counters must be non-negative")
	}
	project, err := s.loadMeta(ctx, projectID)
	if err != nil {
		return nil, err
	}
	project.Mapped = mapped
	project.Approached = approached
	project.UpdatedAt = time.Now().UTC()
	if err := s.saveMeta(ctx, project); err != nil {
		return nil, err
	}
	return project, nil
}

// AppendChat appends a message to the open project's chat history and
// persists the state.
func (s *Session) AppendChat(ctx context.Context, role, content string) error {
	if s.machine == nil {
		return fmt.Errorf("no open project")
	}
	pipe := s.machine.Pipeline()
	pipe.ChatHistory = append(pipe.ChatHistory, types.ChatMessage{
		Role:    role,
		Content: content,
		SentAt:  time.Now().UTC().Format(time.RFC3339),
	})
	return s.adapter.SaveSync(ctx, pipe.Project.ID, pipe.Snapshot())
}

// UsageRecords returns the usage records for a project, newest first.
func (s *Session) UsageRecords(ctx context.Context, projectID string) ([]usage.Record, error) {
	return s.tracker.ListByProject(ctx, projectID)
}

func (s *Session) loadMeta(ctx context.Context, projectID string) (*types.Project, error) {
	data, err := s.store.Get(ctx, persist.ProjectCollection, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to load project %s: %w", projectID, err)
	}
	if data == nil {
		return nil, fmt.Errorf("project %s not found", projectID)
	}
	project, err := metaFromDoc(data)
	if err != nil {
		return nil, fmt.Errorf("project %s has malformed metadata: %w", projectID, err)
	}
	if project.OwnerID != s.userID {
		return nil, fmt.Errorf("project %s does not belong to this user", projectID)
	}
	return project, nil
}

func (s *Session) saveMeta(ctx context.Context, project *types.Project) error {
	raw, err := json.Marshal(project)
	if err != nil {
		return fmt.Errorf("failed to serialize project: %w", err)
	}
	var meta map[string]any
	if err := json.Unmarshal(raw, &meta); err != nil {
		return fmt.Errorf("failed to serialize project: %w", err)
	}
	if err := s.store.Set(ctx, persist.ProjectCollection, project.ID,
		map[string]any{metaField: meta}, true); err != nil {
		return fmt.Errorf("failed to save project %s: %w", project.ID, err)
	}
	return nil
}

func metaFromDoc(data map[string]any) (*types.Project, error) {
	meta, ok := data[metaField]
	if !ok {
		return nil, fmt.Errorf("missing metadata")
	}
	raw, err := json.Marshal(meta)
	if err != nil {
		return nil, err
	}
	var project types.Project
	if err := json.Unmarshal(raw, &project); err != nil {
		return nil, err
	}
	return &project, nil
}
