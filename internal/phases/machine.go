package phases

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/rbarbosa/talentflow/internal/llm"
	"github.com/rbarbosa/talentflow/internal/prompts"
	"github.com/rbarbosa/talentflow/internal/schemas"
	"github.com/rbarbosa/talentflow/internal/types"
)

const promptFile = "phases.json"

// Generator issues structured generation calls. Satisfied by *llm.Client.
type Generator interface {
	Generate(ctx context.Context, req llm.Request) (string, error)
}

// Saver persists the project state tree after approvals. Implementations are
// fire-and-forget: failures are logged, never returned, and in-memory state
// stays correct even when the durable copy lags.
type Saver interface {
	Save(ctx context.Context, scopeID string, state *State)
}

// Machine drives the phase transitions for one project session: generation
// into drafts, the edit cycle, approvals and the persistence side effect.
type Machine struct {
	pipe     *Pipeline
	gen      Generator
	validate *validator.Validate
	log      *zap.Logger
	saver    Saver
}

// MachineOption configures a Machine.
type MachineOption func(*Machine)

// WithSaver attaches the persistence adapter triggered on approvals.
func WithSaver(s Saver) MachineOption {
	return func(m *Machine) { m.saver = s }
}

// WithLogger attaches a logger.
func WithLogger(log *zap.Logger) MachineOption {
	return func(m *Machine) { m.log = log }
}

// NewMachine creates a machine over pipe using gen for drafts.
func NewMachine(pipe *Pipeline, gen Generator, opts ...MachineOption) *Machine {
	m := &Machine{
		pipe:     pipe,
		gen:      gen,
		validate: validator.New(),
		log:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Pipeline returns the underlying pipeline state.
func (m *Machine) Pipeline() *Pipeline { return m.pipe }

// --- Phase 1: Alignment ---

// GenerateAlignment drafts the role alignment report from intake material.
func (m *Machine) GenerateAlignment(ctx context.Context, intakeText string) error {
	if strings.TrimSpace(intakeText) == "" {
		return &GateError{Phase: "alignment", Reason: "intake material is empty"}
	}

	req := llm.Request{
		SystemPrompt: prompts.MustGet(promptFile, "alignment-system"),
		UserPrompt: prompts.Format(prompts.MustGet(promptFile, "alignment-user"), map[string]string{
			"CompanyName": m.pipe.Project.CompanyName,
			"RoleName":    m.pipe.Project.RoleName,
			"IntakeText":  intakeText,
		}),
		Schema: alignmentSchema(),
		Tier:   llm.TierStandard,
		Tag:    m.tag(schemas.Alignment, ""),
	}
	return generateInto(m, ctx, &m.pipe.alignment, schemas.Alignment, req, nil)
}

// ApproveAlignment commits the alignment draft (or edited copy) as canonical.
func (m *Machine) ApproveAlignment(ctx context.Context) (*types.AlignmentResult, error) {
	result, err := approveSlot(m, schemas.Alignment, &m.pipe.alignment, nil)
	if err != nil {
		return nil, err
	}
	m.persist(ctx)
	return result, nil
}

// --- Phase 2: Interview evaluation ---

// GenerateEvaluation drafts the evaluation for one candidate from their
// documents. Alignment data is optional context; the phase has no hard
// dependency on phase 1.
func (m *Machine) GenerateEvaluation(ctx context.Context, name, cvText, interviewReport string) error {
	docText := strings.TrimSpace(cvText + "\n\n" + interviewReport)
	if err := m.pipe.canGenerateEvaluation(name, docText); err != nil {
		return err
	}

	m.pipe.SetCandidateDocs(name, cvText, interviewReport)

	req := llm.Request{
		SystemPrompt: prompts.MustGet(promptFile, "evaluation-system"),
		UserPrompt: prompts.Format(prompts.MustGet(promptFile, "evaluation-user"), map[string]string{
			"CandidateName": name,
			"RoleContext":   m.roleContext(),
			"Documents":     docText,
		}),
		Schema: evaluationSchema(),
		Tier:   llm.TierStandard,
		Tag:    m.tag(schemas.Evaluation, name),
	}
	return generateInto(m, ctx, m.pipe.Evaluation(name), schemas.Evaluation, req,
		func(ev *types.CandidateEvaluation) { ev.CandidateName = name })
}

// GenerateBatchEvaluation drafts an evaluation for one grouped batch item,
// using the batch-mode prompt, and returns the draft so the queue can report
// it per item.
func (m *Machine) GenerateBatchEvaluation(ctx context.Context, name, combinedText string) (*types.CandidateEvaluation, error) {
	if err := m.pipe.canGenerateEvaluation(name, combinedText); err != nil {
		return nil, err
	}

	m.pipe.SetCandidateDocs(name, combinedText, "")

	req := llm.Request{
		SystemPrompt: prompts.MustGet(promptFile, "evaluation-batch-system"),
		UserPrompt: prompts.Format(prompts.MustGet(promptFile, "evaluation-batch-user"), map[string]string{
			"CandidateName": name,
			"RoleContext":   m.roleContext(),
			"Documents":     combinedText,
		}),
		Schema: evaluationSchema(),
		Tier:   llm.TierLite,
		Tag:    m.tag(schemas.Evaluation, name),
	}

	slot := m.pipe.Evaluation(name)
	if err := generateInto(m, ctx, slot, schemas.Evaluation, req,
		func(ev *types.CandidateEvaluation) { ev.CandidateName = name }); err != nil {
		return nil, err
	}
	return slot.Draft(), nil
}

// ApproveEvaluation commits a candidate's evaluation as canonical, creating
// or updating the candidate record by name.
func (m *Machine) ApproveEvaluation(ctx context.Context, name string) (*types.CandidateEvaluation, error) {
	cs := m.pipe.findCandidate(name)
	if cs == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCandidate, name)
	}

	result, err := approveSlot(m, schemas.Evaluation, &cs.eval, func(ev *types.CandidateEvaluation) error {
		if ev.CandidateName != name {
			return fmt.Errorf("%w: evaluation is for %q", ErrUnknownCandidate, ev.CandidateName)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	cs.candidate.Evaluation = result
	m.persist(ctx)
	return result, nil
}

// --- Phase 3: Shortlist ---

// GenerateShortlist drafts the shortlist from all approved evaluations.
// Requires at least one approved candidate.
func (m *Machine) GenerateShortlist(ctx context.Context) error {
	if err := m.pipe.canGenerateShortlist(); err != nil {
		return err
	}

	req := llm.Request{
		SystemPrompt: prompts.MustGet(promptFile, "shortlist-system"),
		UserPrompt: prompts.Format(prompts.MustGet(promptFile, "shortlist-user"), map[string]string{
			"RoleContext": m.roleContext(),
			"Evaluations": m.renderEvaluations(),
		}),
		Schema: shortlistSchema(),
		Tier:   llm.TierAdvanced,
		Tag:    m.tag(schemas.Shortlist, ""),
	}
	return generateInto(m, ctx, &m.pipe.shortlist, schemas.Shortlist, req, nil)
}

// ApproveShortlist commits the shortlist. Every entry must reference a
// candidate with an approved evaluation; the pipeline never fabricates
// candidate identities mid-stream.
func (m *Machine) ApproveShortlist(ctx context.Context) (*types.Shortlist, error) {
	evaluated := make(map[string]struct{})
	for _, name := range m.pipe.EvaluatedNames() {
		evaluated[name] = struct{}{}
	}

	result, err := approveSlot(m, schemas.Shortlist, &m.pipe.shortlist, func(sl *types.Shortlist) error {
		for _, entry := range sl.Entries {
			if _, ok := evaluated[entry.CandidateName]; !ok {
				return fmt.Errorf("%w: shortlist references %q", ErrUnknownCandidate, entry.CandidateName)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	m.persist(ctx)
	return result, nil
}

// --- Phase 4: Decision ---

// GenerateDecision drafts the decision comparison for the approved
// shortlist. Requires a non-empty shortlist.
func (m *Machine) GenerateDecision(ctx context.Context) error {
	if err := m.pipe.canGenerateDecision(); err != nil {
		return err
	}

	req := llm.Request{
		SystemPrompt: prompts.MustGet(promptFile, "decision-system"),
		UserPrompt: prompts.Format(prompts.MustGet(promptFile, "decision-user"), map[string]string{
			"RoleContext":       m.roleContext(),
			"CandidateMaterial": m.renderDecisionMaterial(),
		}),
		Schema: decisionSchema(),
		Tier:   llm.TierAdvanced,
		Tag:    m.tag(schemas.Decision, ""),
	}
	return generateInto(m, ctx, &m.pipe.decision, schemas.Decision, req, nil)
}

// ApproveDecision commits the decision result. Rows must stay within the
// shortlisted names.
func (m *Machine) ApproveDecision(ctx context.Context) (*types.DecisionResult, error) {
	shortlisted := make(map[string]struct{})
	if sl := m.pipe.shortlist.Canonical(); sl != nil {
		for _, name := range sl.Names() {
			shortlisted[name] = struct{}{}
		}
	}

	result, err := approveSlot(m, schemas.Decision, &m.pipe.decision, func(d *types.DecisionResult) error {
		for _, row := range d.Rows {
			if _, ok := shortlisted[row.CandidateName]; !ok {
				return fmt.Errorf("%w: decision references %q", ErrUnknownCandidate, row.CandidateName)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	m.persist(ctx)
	return result, nil
}

// --- Phase 5: References ---

// GenerateReferences drafts the reference report for the selected candidate
// from raw call notes. The candidate must come from the union of evaluated
// and shortlisted names.
func (m *Machine) GenerateReferences(ctx context.Context, name, notes string) error {
	if err := m.pipe.canGenerateReferences(name, notes); err != nil {
		return err
	}

	m.pipe.ReferenceNotes = notes

	req := llm.Request{
		SystemPrompt: prompts.MustGet(promptFile, "references-system"),
		UserPrompt: prompts.Format(prompts.MustGet(promptFile, "references-user"), map[string]string{
			"CandidateName": name,
			"RoleContext":   m.roleContext(),
			"Notes":         notes,
		}),
		Schema: referencesSchema(),
		Tier:   llm.TierStandard,
		Tag:    m.tag(schemas.References, name),
	}
	return generateInto(m, ctx, &m.pipe.references, schemas.References, req,
		func(r *types.ReferenceReport) { r.CandidateName = name })
}

// ApproveReferences commits the reference report.
func (m *Machine) ApproveReferences(ctx context.Context) (*types.ReferenceReport, error) {
	eligible := make(map[string]struct{})
	for _, name := range m.pipe.referenceEligibleNames() {
		eligible[name] = struct{}{}
	}

	result, err := approveSlot(m, schemas.References, &m.pipe.references, func(r *types.ReferenceReport) error {
		if _, ok := eligible[r.CandidateName]; !ok {
			return fmt.Errorf("%w: reference report is for %q", ErrUnknownCandidate, r.CandidateName)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	m.persist(ctx)
	return result, nil
}

// --- shared helpers ---

// generateInto runs one generation request and installs the decoded result
// as the slot's draft, unless a newer approval made the result stale.
func generateInto[T any](m *Machine, ctx context.Context, slot *Slot[T], schemaName string, req llm.Request, fix func(*T)) error {
	tok := slot.Begin()

	raw, err := m.gen.Generate(ctx, req)
	if err != nil {
		return err
	}

	result, err := decodeResult[T](schemaName, raw)
	if err != nil {
		return err
	}
	if fix != nil {
		fix(result)
	}

	if !slot.Complete(tok, *result) {
		m.log.Info("discarded stale generation result", zap.String("phase", schemaName))
		return ErrStaleGeneration
	}
	return nil
}

// decodeResult validates the raw payload against the phase schema and
// unmarshals it. A malformed payload surfaces as a "no content" generation
// error, never a silent default.
func decodeResult[T any](schemaName, raw string) (*T, error) {
	if err := schemas.ValidatePhase(schemaName, raw); err != nil {
		return nil, &llm.Error{Kind: llm.KindNoContent, Message: "no content generated", Cause: err}
	}
	var result T
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		return nil, &llm.Error{Kind: llm.KindNoContent, Message: "no content generated", Cause: err}
	}
	return &result, nil
}

// approveSlot validates the pending value (working copy when editing,
// otherwise the draft) and commits it as canonical.
func approveSlot[T any](m *Machine, phase string, slot *Slot[T], check func(*T) error) (*T, error) {
	pending := slot.Working()
	if pending == nil {
		pending = slot.Draft()
	}
	if pending == nil {
		return nil, fmt.Errorf("%w: nothing to approve for %s", ErrNoDraft, phase)
	}

	if err := m.validate.Struct(pending); err != nil {
		return nil, fmt.Errorf("%s result is incomplete: %w", phase, err)
	}
	if check != nil {
		if err := check(pending); err != nil {
			return nil, err
		}
	}

	result, err := slot.Approve()
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// persist pushes the approved state tree to the saver. Only approvals call
// this; drafts and edits never touch durable state.
func (m *Machine) persist(ctx context.Context) {
	m.pipe.Project.UpdatedAt = time.Now().UTC()
	if m.saver == nil {
		return
	}
	m.saver.Save(ctx, m.pipe.Project.ID, m.pipe.Snapshot())
}

// tag builds the usage context for one generation call.
func (m *Machine) tag(phase, candidate string) llm.Tag {
	return llm.Tag{
		Phase:         phase,
		ProjectID:     m.pipe.Project.ID,
		CompanyName:   m.pipe.Project.CompanyName,
		CandidateName: candidate,
	}
}

// roleContext renders the shared role context passed to every phase prompt.
func (m *Machine) roleContext() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s at %s", m.pipe.Project.RoleName, m.pipe.Project.CompanyName)
	if a := m.pipe.alignment.Canonical(); a != nil {
		sb.WriteString("\n" + a.RoleSummary)
		if len(a.HardRequirements) > 0 {
			sb.WriteString("\nHard requirements:\n- " + strings.Join(a.HardRequirements, "\n- "))
		}
	}
	return sb.String()
}

// renderEvaluations serializes the approved evaluations for the shortlist
// prompt.
func (m *Machine) renderEvaluations() string {
	var sb strings.Builder
	for _, c := range m.pipe.Candidates() {
		if c.Evaluation == nil {
			continue
		}
		raw, err := json.MarshalIndent(c.Evaluation, "", "  ")
		if err != nil {
			continue
		}
		sb.WriteString(string(raw))
		sb.WriteString("\n\n")
	}
	return sb.String()
}

// renderDecisionMaterial assembles the shortlisted candidates' evaluations
// and assessment documents for the decision prompt.
func (m *Machine) renderDecisionMaterial() string {
	sl := m.pipe.shortlist.Canonical()
	if sl == nil {
		return ""
	}

	var sb strings.Builder
	for _, name := range sl.Names() {
		fmt.Fprintf(&sb, "## %s\n", name)
		if cs := m.pipe.findCandidate(name); cs != nil && cs.candidate.Evaluation != nil {
			fmt.Fprintf(&sb, "Evaluation summary: %s\n", cs.candidate.Evaluation.Summary)
		}
		if docs := m.pipe.AssessmentDocs(name); docs != nil {
			if docs.Personality != "" {
				fmt.Fprintf(&sb, "Personality assessment:\n%s\n", docs.Personality)
			}
			if docs.Competency != "" {
				fmt.Fprintf(&sb, "Competency assessment:\n%s\n", docs.Competency)
			}
			if docs.Leadership != "" {
				fmt.Fprintf(&sb, "Leadership assessment:\n%s\n", docs.Leadership)
			}
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
