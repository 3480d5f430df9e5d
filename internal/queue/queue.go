// Package queue implements the serial batch-ingest queue: uploaded candidate
// files are grouped by provisional name, then drained one item at a time
// through the evaluation machinery.
package queue

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rbarbosa/talentflow/internal/matching"
	"github.com/rbarbosa/talentflow/internal/types"
)

// Status is the processing state of one queued item.
type Status string

// Item statuses
const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusSuccess    Status = "success"
	StatusError      Status = "error"
)

// File is one uploaded document with its extracted text.
type File struct {
	Filename string
	Text     string
}

// Item is one queued candidate: the grouped files plus processing outcome.
type Item struct {
	ID     string
	Name   string
	Files  []File
	Status Status
	Result *types.CandidateEvaluation
	Err    string
}

// BatchEvaluator drafts an evaluation for one grouped candidate. Satisfied
// by *phases.Machine.
type BatchEvaluator interface {
	GenerateBatchEvaluation(ctx context.Context, name, combinedText string) (*types.CandidateEvaluation, error)
}

// Engine owns the queue for one project session. Items are processed
// strictly in enqueue order, one at a time; a failed item never blocks the
// rest of the batch.
type Engine struct {
	eval      BatchEvaluator
	extractor *matching.NameExtractor
	log       *zap.Logger
	items     []*Item
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger attaches a logger.
func WithLogger(log *zap.Logger) Option {
	return func(e *Engine) { e.log = log }
}

// WithNameExtractor overrides the filename-to-name extractor.
func WithNameExtractor(ex *matching.NameExtractor) Option {
	return func(e *Engine) { e.extractor = ex }
}

// NewEngine creates a queue engine that drafts through eval.
func NewEngine(eval BatchEvaluator, opts ...Option) *Engine {
	e := &Engine{
		eval:      eval,
		extractor: matching.NewNameExtractor(),
		log:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Enqueue groups files by provisional candidate name and appends one pending
// item per new name. Files whose name matches an existing item are folded
// into it and the item is reset to pending so the extra material gets
// processed. Files that yield no name-like tokens are skipped and returned.
func (e *Engine) Enqueue(files []File) (added []*Item, skipped []File) {
	byName := make(map[string]*Item, len(e.items))
	for _, it := range e.items {
		byName[it.Name] = it
	}

	for _, f := range files {
		name := e.extractor.Extract(f.Filename)
		if name == "" {
			e.log.Warn("skipping file with no extractable candidate name",
				zap.String("filename", f.Filename))
			skipped = append(skipped, f)
			continue
		}

		if it, ok := byName[name]; ok {
			it.Files = append(it.Files, f)
			if it.Status == StatusSuccess {
				it.Status = StatusPending
				it.Result = nil
			}
			continue
		}

		it := &Item{
			ID:     uuid.New().String(),
			Name:   name,
			Files:  []File{f},
			Status: StatusPending,
		}
		byName[name] = it
		e.items = append(e.items, it)
		added = append(added, it)
	}
	return added, skipped
}

// Drain processes the queue serially in enqueue order. Only pending and
// previously failed items run; successful items are never reprocessed, so
// Drain is safe to call repeatedly. Each item either succeeds with a drafted
// evaluation or records its error and the drain moves on. Context
// cancellation stops between items, never mid-item rollback.
func (e *Engine) Drain(ctx context.Context) error {
	for _, it := range e.items {
		if it.Status != StatusPending && it.Status != StatusError {
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		it.Status = StatusProcessing
		it.Err = ""
		e.log.Info("processing batch item",
			zap.String("id", it.ID),
			zap.String("candidate", it.Name),
			zap.Int("files", len(it.Files)))

		result, err := e.eval.GenerateBatchEvaluation(ctx, it.Name, combineFiles(it.Files))
		if err != nil {
			it.Status = StatusError
			it.Err = err.Error()
			e.log.Warn("batch item failed",
				zap.String("id", it.ID),
				zap.String("candidate", it.Name),
				zap.Error(err))
			continue
		}

		it.Status = StatusSuccess
		it.Result = result
	}
	return nil
}

// Items returns a snapshot of the queue in enqueue order.
func (e *Engine) Items() []Item {
	out := make([]Item, 0, len(e.items))
	for _, it := range e.items {
		copied := *it
		copied.Files = append([]File(nil), it.Files...)
		out = append(out, copied)
	}
	return out
}

// Pending reports how many items still need a drain pass.
func (e *Engine) Pending() int {
	n := 0
	for _, it := range e.items {
		if it.Status == StatusPending || it.Status == StatusError {
			n++
		}
	}
	return n
}

// combineFiles renders the grouped documents as one prompt section per file.
func combineFiles(files []File) string {
	var sb strings.Builder
	for i, f := range files {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		fmt.Fprintf(&sb, "--- %s ---\n%s", f.Filename, f.Text)
	}
	return sb.String()
}
