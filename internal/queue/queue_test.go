package queue

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rbarbosa/talentflow/internal/types"
)

type fakeEvaluator struct {
	calls  []string
	failOn map[string]error
}

func (f *fakeEvaluator) GenerateBatchEvaluation(_ context.Context, name, _ string) (*types.CandidateEvaluation, error) {
	f.calls = append(f.calls, name)
	if err, ok := f.failOn[name]; ok {
		return nil, err
	}
	return &types.CandidateEvaluation{CandidateName: name, Summary: "ok"}, nil
}

func TestEnqueueGroupsByProvisionalName(t *testing.T) {
	e := NewEngine(&fakeEvaluator{})

	added, skipped := e.Enqueue([]File{
		{Filename: "CV_Maria_Silva.pdf", Text: "cv"},
		{Filename: "entrevista-maria-silva.txt", Text: "transcript"},
		{Filename: "joao_costa_cv.pdf", Text: "cv"},
		{Filename: "CV_2024.pdf", Text: "anonymous"},
	})

	require.Len(t, added, 2)
	assert.Equal(t, "Maria Silva", added[0].Name)
	assert.Len(t, added[0].Files, 2)
	assert.Equal(t, "Joao Costa", added[1].Name)

	require.Len(t, skipped, 1)
	assert.Equal(t, "CV_2024.pdf", skipped[0].Filename)
}

func TestDrainSerialOrder(t *testing.T) {
	ev := &fakeEvaluator{}
	e := NewEngine(ev)
	e.Enqueue([]File{
		{Filename: "maria_silva_cv.pdf", Text: "a"},
		{Filename: "joao_costa_cv.pdf", Text: "b"},
		{Filename: "ana_pereira_cv.pdf", Text: "c"},
	})

	require.NoError(t, e.Drain(context.Background()))
	assert.Equal(t, []string{"Maria Silva", "Joao Costa", "Ana Pereira"}, ev.calls)
	for _, it := range e.Items() {
		assert.Equal(t, StatusSuccess, it.Status)
		require.NotNil(t, it.Result)
	}
	assert.Zero(t, e.Pending())
}

func TestDrainIsolatesFailures(t *testing.T) {
	ev := &fakeEvaluator{failOn: map[string]error{
		"Joao Costa": errors.New("generation blew up"),
	}}
	e := NewEngine(ev)
	e.Enqueue([]File{
		{Filename: "maria_silva_cv.pdf", Text: "a"},
		{Filename: "joao_costa_cv.pdf", Text: "b"},
		{Filename: "ana_pereira_cv.pdf", Text: "c"},
	})

	require.NoError(t, e.Drain(context.Background()))

	items := e.Items()
	assert.Equal(t, StatusSuccess, items[0].Status)
	assert.Equal(t, StatusError, items[1].Status)
	assert.Contains(t, items[1].Err, "generation blew up")
	assert.Equal(t, StatusSuccess, items[2].Status, "a failed item must not block the rest")
	assert.Equal(t, 1, e.Pending())
}

func TestDrainIdempotentOverSuccesses(t *testing.T) {
	ev := &fakeEvaluator{failOn: map[string]error{
		"Joao Costa": errors.New("transient"),
	}}
	e := NewEngine(ev)
	e.Enqueue([]File{
		{Filename: "maria_silva_cv.pdf", Text: "a"},
		{Filename: "joao_costa_cv.pdf", Text: "b"},
	})

	require.NoError(t, e.Drain(context.Background()))
	require.Equal(t, []string{"Maria Silva", "Joao Costa"}, ev.calls)

	// Second drain retries only the failed item.
	ev.failOn = nil
	require.NoError(t, e.Drain(context.Background()))
	assert.Equal(t, []string{"Maria Silva", "Joao Costa", "Joao Costa"}, ev.calls)
	assert.Zero(t, e.Pending())

	// Third drain is a no-op.
	require.NoError(t, e.Drain(context.Background()))
	assert.Len(t, ev.calls, 3)
}

func TestDrainStopsOnCancelledContext(t *testing.T) {
	ev := &fakeEvaluator{}
	e := NewEngine(ev)
	e.Enqueue([]File{
		{Filename: "maria_silva_cv.pdf", Text: "a"},
		{Filename: "joao_costa_cv.pdf", Text: "b"},
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := e.Drain(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, ev.calls)
	assert.Equal(t, 2, e.Pending())
}

func TestEnqueueLateFileReopensItem(t *testing.T) {
	ev := &fakeEvaluator{}
	e := NewEngine(ev)
	e.Enqueue([]File{{Filename: "maria_silva_cv.pdf", Text: "cv"}})
	require.NoError(t, e.Drain(context.Background()))
	require.Equal(t, StatusSuccess, e.Items()[0].Status)

	// A transcript for the same candidate arrives later: the item reopens
	// and the next drain reprocesses it with both documents.
	added, _ := e.Enqueue([]File{{Filename: "maria_silva_entrevista.txt", Text: "transcript"}})
	assert.Empty(t, added)

	items := e.Items()
	require.Len(t, items, 1)
	assert.Equal(t, StatusPending, items[0].Status)
	assert.Len(t, items[0].Files, 2)

	require.NoError(t, e.Drain(context.Background()))
	assert.Equal(t, []string{"Maria Silva", "Maria Silva"}, ev.calls)
}

func TestItemsReturnsCopies(t *testing.T) {
	e := NewEngine(&fakeEvaluator{})
	e.Enqueue([]File{{Filename: "maria_silva_cv.pdf", Text: "cv"}})

	items := e.Items()
	items[0].Status = StatusError
	items[0].Files[0].Text = "mutated"

	fresh := e.Items()
	assert.Equal(t, StatusPending, fresh[0].Status)
	assert.Equal(t, "cv", fresh[0].Files[0].Text)
}
