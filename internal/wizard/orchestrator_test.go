package wizard

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"reflow_predictor/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePredictor struct {
	mu      sync.Mutex
	calls   []models.PredictionRequest
	result  models.PredictionResult
	err     error
	gate    chan struct{}
	started chan struct{}
}

func (f *fakePredictor) Predict(ctx context.Context, req models.PredictionRequest) (models.PredictionResult, error) {
	f.mu.Lock()
	f.calls = append(f.calls, req)
	gate, started := f.gate, f.started
	f.mu.Unlock()

	if started != nil {
		started <- struct{}{}
	}
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return models.PredictionResult{}, ctx.Err()
		}
	}
	return f.result, f.err
}

func (f *fakePredictor) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func okPredictor() *fakePredictor {
	return &fakePredictor{result: models.PredictionResult{
		MaxRisingSlope: models.Float(1.5),
		SoakTime:       models.Float(100),
		ReflowTime:     models.Float(50),
		PeakTemp:       models.Float(240),
	}}
}

func start(t *testing.T, p Predictor) *Orchestrator {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	o := NewOrchestrator(p, table(t), nil)
	go o.Run(ctx)
	t.Cleanup(func() {
		cancel()
		<-o.Done()
	})
	return o
}

func stages(s Snapshot) []Stage {
	out := make([]Stage, 0, len(s.Windows))
	for _, w := range s.Windows {
		out = append(out, w.Stage)
	}
	return out
}

func TestOrchestrator_OpensBoardWindow(t *testing.T) {
	o := start(t, okPredictor())

	snap, err := o.Snapshot(context.Background())
	require.NoError(t, err)
	require.Equal(t, []Stage{StageBoard}, stages(snap))

	w := snap.Windows[0]
	assert.True(t, w.Ready)
	assert.NotEmpty(t, w.ID)
	assert.Equal(t, models.PasteTypes(), w.PasteTypes)
	require.Len(t, w.Fields, 7)
	assert.Equal(t, SubmitAction, w.Fields[6].Next)
}

func TestOrchestrator_FullRun(t *testing.T) {
	p := okPredictor()
	o := start(t, p)
	ctx := context.Background()

	rec, err := o.SubmitBoard(ctx, validBoardInput())
	require.NoError(t, err)
	assert.Equal(t, 4, rec.Layers)

	snap, err := o.Snapshot(ctx)
	require.NoError(t, err)
	require.Equal(t, []Stage{StageProcess}, stages(snap), "opening stage 2 closes stage 1")
	proc := snap.Windows[0]
	assert.True(t, proc.Ready)
	require.NotNil(t, proc.Board)
	assert.Equal(t, rec, *proc.Board)

	view, err := o.SubmitProcess(ctx, validProcessInput())
	require.NoError(t, err)
	assert.Equal(t, models.PasteKoki, view.SolderPasteType)
	for _, mv := range view.Metrics {
		assert.True(t, mv.InRange, string(mv.Metric))
	}

	require.Equal(t, 1, p.callCount())
	assert.Equal(t, 100.0, p.calls[0].Length)
	assert.Equal(t, 110.0, p.calls[0].T1)

	snap, err = o.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, []Stage{StageProcess, StagePrediction}, stages(snap), "presenter does not close stage 2")
	pred, ok := snap.Window(StagePrediction)
	require.True(t, ok)
	require.NotNil(t, pred.Outcome)
	assert.Equal(t, rec, pred.Outcome.Board)
	assert.Equal(t, models.PasteKoki, pred.Outcome.Result.SolderPasteType)
}

func TestOrchestrator_InvalidBoardKeepsStage1(t *testing.T) {
	o := start(t, okPredictor())
	in := validBoardInput()
	in.Length = "abc"

	_, err := o.SubmitBoard(context.Background(), in)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, FieldLength, verr.Field)
	assert.Contains(t, verr.Message, "Length")

	snap, err := o.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []Stage{StageBoard}, stages(snap), "no handoff on failure")
}

func TestOrchestrator_ProcessWithoutWindow(t *testing.T) {
	p := okPredictor()
	o := start(t, p)

	_, err := o.SubmitProcess(context.Background(), validProcessInput())
	require.ErrorIs(t, err, ErrWindowNotOpen)
	require.ErrorIs(t, o.Back(context.Background()), ErrWindowNotOpen)
	assert.Zero(t, p.callCount())
}

func TestOrchestrator_BackOpensFreshStage1(t *testing.T) {
	o := start(t, okPredictor())
	ctx := context.Background()

	before, err := o.Snapshot(ctx)
	require.NoError(t, err)
	firstID := before.Windows[0].ID

	_, err = o.SubmitBoard(ctx, validBoardInput())
	require.NoError(t, err)
	require.NoError(t, o.Back(ctx))

	snap, err := o.Snapshot(ctx)
	require.NoError(t, err)
	require.Equal(t, []Stage{StageBoard}, stages(snap))
	assert.NotEqual(t, firstID, snap.Windows[0].ID)
	assert.Nil(t, snap.Windows[0].Board)
}

func TestOrchestrator_DuplicateSubmitRejected(t *testing.T) {
	p := okPredictor()
	p.gate = make(chan struct{})
	p.started = make(chan struct{}, 1)
	o := start(t, p)
	ctx := context.Background()

	_, err := o.SubmitBoard(ctx, validBoardInput())
	require.NoError(t, err)

	type result struct {
		view View
		err  error
	}
	first := make(chan result, 1)
	go func() {
		v, err := o.SubmitProcess(ctx, validProcessInput())
		first <- result{v, err}
	}()
	<-p.started

	snap, err := o.Snapshot(ctx)
	require.NoError(t, err)
	proc, _ := snap.Window(StageProcess)
	assert.True(t, proc.Pending)

	_, err = o.SubmitProcess(ctx, validProcessInput())
	require.ErrorIs(t, err, ErrSubmitInFlight)

	close(p.gate)
	res := <-first
	require.NoError(t, res.err)
	assert.Len(t, res.view.Metrics, 4)
	assert.Equal(t, 1, p.callCount())

	// the guard is released once the prediction lands
	_, err = o.SubmitProcess(ctx, validProcessInput())
	require.NoError(t, err)
}

func TestOrchestrator_ClosingStage2DiscardsPrediction(t *testing.T) {
	p := okPredictor()
	p.gate = make(chan struct{})
	p.started = make(chan struct{}, 1)
	o := start(t, p)
	ctx := context.Background()

	_, err := o.SubmitBoard(ctx, validBoardInput())
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		_, err := o.SubmitProcess(ctx, validProcessInput())
		done <- err
	}()
	<-p.started

	left, err := o.CloseWindow(ctx, StageProcess)
	require.NoError(t, err)
	assert.Zero(t, left)

	select {
	case err := <-done:
		require.ErrorIs(t, err, ErrWindowClosed)
	case <-time.After(2 * time.Second):
		t.Fatal("in-flight prediction was not canceled")
	}

	snap, err := o.Snapshot(ctx)
	require.NoError(t, err)
	assert.Empty(t, snap.Windows)
}

func TestOrchestrator_PredictorFailureKeepsStage2(t *testing.T) {
	p := &fakePredictor{err: errors.New("connection refused")}
	o := start(t, p)
	ctx := context.Background()

	_, err := o.SubmitBoard(ctx, validBoardInput())
	require.NoError(t, err)

	_, err = o.SubmitProcess(ctx, validProcessInput())
	require.EqualError(t, err, "connection refused")

	snap, err := o.Snapshot(ctx)
	require.NoError(t, err)
	require.Equal(t, []Stage{StageProcess}, stages(snap))
	assert.False(t, snap.Windows[0].Pending, "user may retry")
}

func TestOrchestrator_RenderAbortedForUnknownPaste(t *testing.T) {
	o := start(t, okPredictor())
	oc := models.NewOutcome(*kokiResult(240), models.BoardRecord{SolderPasteType: "Generic"})

	_, err := o.Dispatch(context.Background(), OpenPresenter{Outcome: oc})
	var missing *MissingDataError
	require.ErrorAs(t, err, &missing)

	snap, err := o.Snapshot(context.Background())
	require.NoError(t, err)
	_, ok := snap.Window(StagePrediction)
	assert.False(t, ok)
}

func TestOrchestrator_SecondResultRerendersSameWindow(t *testing.T) {
	o := start(t, okPredictor())
	ctx := context.Background()
	board := testBoard()

	first, err := o.Dispatch(ctx, OpenPresenter{Outcome: models.NewOutcome(*kokiResult(240), board)})
	require.NoError(t, err)
	second, err := o.Dispatch(ctx, OpenPresenter{Outcome: models.NewOutcome(*kokiResult(260), board)})
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	require.NotNil(t, second.View)
	assert.Equal(t, "260.000", metric(t, *second.View, models.MetricPeakTemp).Value)
	assert.False(t, metric(t, *second.View, models.MetricPeakTemp).InRange)
}

func TestOrchestrator_DispatchOpenStage2(t *testing.T) {
	o := start(t, okPredictor())

	view, err := o.Dispatch(context.Background(), OpenStage2{Board: testBoard()})
	require.NoError(t, err)
	assert.Equal(t, StageProcess, view.Stage)
	assert.True(t, view.Ready)

	snap, err := o.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []Stage{StageProcess}, stages(snap))
}

func TestOrchestrator_EventsFollowTransitions(t *testing.T) {
	o := start(t, okPredictor())
	ctx := context.Background()

	events, cancel, err := o.Subscribe(ctx)
	require.NoError(t, err)
	defer cancel()

	_, err = o.SubmitBoard(ctx, validBoardInput())
	require.NoError(t, err)

	want := []struct {
		kind  EventKind
		stage Stage
	}{
		{EventWindowOpened, StageProcess},
		{EventWindowClosed, StageBoard},
		{EventDataReady, StageProcess},
	}
	var last uint64
	for _, w := range want {
		select {
		case ev := <-events:
			assert.Equal(t, w.kind, ev.Kind)
			assert.Equal(t, w.stage, ev.Stage)
			assert.Greater(t, ev.Seq, last)
			last = ev.Seq
		case <-time.After(time.Second):
			t.Fatalf("timed out waiting for %s", w.kind)
		}
	}

	// the opened event is sent before the record arrives
	_, err = o.Dispatch(ctx, OpenStage1{})
	require.NoError(t, err)
	ev := <-events
	require.Equal(t, EventWindowOpened, ev.Kind)
	assert.Equal(t, StageBoard, ev.Stage)
}

func TestOrchestrator_StoppedRejectsCalls(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	o := NewOrchestrator(okPredictor(), table(t), nil)
	go o.Run(ctx)

	events, _, err := o.Subscribe(context.Background())
	require.NoError(t, err)

	cancel()
	<-o.Done()

	_, err = o.Snapshot(context.Background())
	require.ErrorIs(t, err, ErrClosed)
	_, ok := <-events
	assert.False(t, ok, "subscriber channel closed on stop")
}

func TestOrchestrator_CloseUnknownWindow(t *testing.T) {
	o := start(t, okPredictor())

	_, err := o.CloseWindow(context.Background(), StagePrediction)
	require.ErrorIs(t, err, ErrWindowNotOpen)

	left, err := o.CloseWindow(context.Background(), StageBoard)
	require.NoError(t, err)
	assert.Zero(t, left)
}
