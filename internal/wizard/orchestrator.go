// Package wizard implements the board → process → prediction wizard: the two
// collector stages, the presenter and the orchestrator that owns their windows.
package wizard

import (
	"context"
	"errors"
	"time"

	"reflow_predictor/internal/logger"
	"reflow_predictor/internal/models"
	"reflow_predictor/internal/ranges"

	"github.com/google/uuid"
)

// Predictor is the external prediction service as seen by the wizard.
type Predictor interface {
	Predict(ctx context.Context, req models.PredictionRequest) (models.PredictionResult, error)
}

// EventKind classifies orchestrator events.
type EventKind string

const (
	EventWindowOpened     EventKind = "window_opened"
	EventWindowClosed     EventKind = "window_closed"
	EventDataReady        EventKind = "data_ready"
	EventRendered         EventKind = "rendered"
	EventRenderAborted    EventKind = "render_aborted"
	EventPredictionFailed EventKind = "prediction_failed"
)

// Event is published to subscribers whenever a window changes.
type Event struct {
	Seq      uint64      `json:"seq"`
	Kind     EventKind   `json:"kind"`
	Stage    Stage       `json:"stage"`
	WindowID string      `json:"window_id"`
	At       time.Time   `json:"at"`
	Window   *WindowView `json:"window,omitempty"`
	Error    string      `json:"error,omitempty"`
}

const subscriberBuffer = 32

// internal requests handled by the run loop
type (
	submitBoard   struct{ in BoardInput }
	beginPredict  struct{ in ProcessInput }
	finishPredict struct {
		windowID string
		outcome  *models.Outcome
		err      error
	}
	backRequest   struct{}
	closeRequest  struct{ stage Stage }
	snapshotQuery struct{}
	subscribe     struct{}
	unsubscribe   struct{ id int }
)

type request struct {
	op    any
	reply chan reply
}

type reply struct {
	value any
	err   error
}

type predictJob struct {
	windowID string
	ctx      context.Context
	req      models.PredictionRequest
	board    models.BoardRecord
}

type subscription struct {
	id int
	ch <-chan Event
}

// Orchestrator owns the windows of one wizard run. All window state lives in the
// goroutine started by Run; callers talk to it through typed requests.
type Orchestrator struct {
	predictor  Predictor
	table      *ranges.Table
	pasteTypes []string
	log        *logger.Logger
	now        func() time.Time

	inbox chan request
	done  chan struct{}

	// owned by the run loop
	windows map[Stage]*window
	subs    map[int]chan Event
	nextSub int
	seq     uint64
}

// Option customizes an Orchestrator.
type Option func(*Orchestrator)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

// WithPasteTypes replaces the paste types offered on the board stage.
func WithPasteTypes(types []string) Option {
	return func(o *Orchestrator) { o.pasteTypes = append([]string(nil), types...) }
}

// NewOrchestrator builds an orchestrator. Call Run to start it.
func NewOrchestrator(p Predictor, tbl *ranges.Table, log *logger.Logger, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		predictor:  p,
		table:      tbl,
		pasteTypes: models.PasteTypes(),
		log:        logger.OrNop(log),
		now:        time.Now,
		inbox:      make(chan request),
		done:       make(chan struct{}),
		windows:    make(map[Stage]*window),
		subs:       make(map[int]chan Event),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Done is closed when Run has returned.
func (o *Orchestrator) Done() <-chan struct{} { return o.done }

// Run opens the board window and serves requests until ctx is canceled.
// It must be called exactly once.
func (o *Orchestrator) Run(ctx context.Context) {
	defer o.shutdown()

	o.openBoard()
	for {
		select {
		case <-ctx.Done():
			return
		case req := <-o.inbox:
			v, err := o.handle(req.op)
			req.reply <- reply{value: v, err: err}
		}
	}
}

func (o *Orchestrator) shutdown() {
	for _, st := range Stages() {
		if w, ok := o.windows[st]; ok {
			w.cancel()
			delete(o.windows, st)
		}
	}
	for id, ch := range o.subs {
		close(ch)
		delete(o.subs, id)
	}
	close(o.done)
}

// call hands op to the run loop and waits for its reply. Once accepted, the
// request is always answered, so ctx only bounds the hand-off.
func (o *Orchestrator) call(ctx context.Context, op any) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	req := request{op: op, reply: make(chan reply, 1)}
	select {
	case o.inbox <- req:
	case <-o.done:
		return nil, ErrClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	r := <-req.reply
	return r.value, r.err
}

// Dispatch applies a window transition.
func (o *Orchestrator) Dispatch(ctx context.Context, msg Message) (WindowView, error) {
	v, err := o.call(ctx, msg)
	if err != nil {
		return WindowView{}, err
	}
	return v.(WindowView), nil
}

// SubmitBoard validates the board form. On success the process window opens
// seeded with the record and the board window closes.
func (o *Orchestrator) SubmitBoard(ctx context.Context, in BoardInput) (models.BoardRecord, error) {
	v, err := o.call(ctx, submitBoard{in: in})
	if err != nil {
		return models.BoardRecord{}, err
	}
	return v.(models.BoardRecord), nil
}

// SubmitProcess validates the process form, calls the predictor and renders the
// result in the prediction window. Only one prediction per process window may be
// pending; a second submit fails with ErrSubmitInFlight.
func (o *Orchestrator) SubmitProcess(ctx context.Context, in ProcessInput) (View, error) {
	v, err := o.call(ctx, beginPredict{in: in})
	if err != nil {
		return View{}, err
	}
	job := v.(predictJob)

	callCtx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(job.ctx, cancel)
	res, perr := o.predictor.Predict(callCtx, job.req)
	stop()
	cancel()

	var outcome *models.Outcome
	if perr == nil {
		oc := models.NewOutcome(res, job.board)
		outcome = &oc
	}
	// the pending flag must be cleared even if the caller went away
	v, err = o.call(context.Background(), finishPredict{windowID: job.windowID, outcome: outcome, err: perr})
	if err != nil {
		return View{}, err
	}
	return *v.(WindowView).View, nil
}

// Back closes the process window and opens a fresh board window.
func (o *Orchestrator) Back(ctx context.Context) error {
	_, err := o.call(ctx, backRequest{})
	return err
}

// CloseWindow discards a window and any in-flight work it owns.
// It returns the number of windows still open.
func (o *Orchestrator) CloseWindow(ctx context.Context, st Stage) (int, error) {
	v, err := o.call(ctx, closeRequest{stage: st})
	if err != nil {
		return 0, err
	}
	return v.(int), nil
}

// Snapshot returns the open windows.
func (o *Orchestrator) Snapshot(ctx context.Context) (Snapshot, error) {
	v, err := o.call(ctx, snapshotQuery{})
	if err != nil {
		return Snapshot{}, err
	}
	return v.(Snapshot), nil
}

// Subscribe streams window events. The channel is closed by cancel or when the
// orchestrator stops. Slow subscribers miss events rather than block the loop.
func (o *Orchestrator) Subscribe(ctx context.Context) (<-chan Event, func(), error) {
	v, err := o.call(ctx, subscribe{})
	if err != nil {
		return nil, nil, err
	}
	sub := v.(subscription)
	cancel := func() {
		_, _ = o.call(context.Background(), unsubscribe{id: sub.id})
	}
	return sub.ch, cancel, nil
}

func (o *Orchestrator) handle(op any) (any, error) {
	switch m := op.(type) {
	case OpenStage1:
		return o.openBoard(), nil
	case OpenStage2:
		return o.openProcess(m.Board), nil
	case OpenPresenter:
		return o.openPresenter(m.Outcome)
	case submitBoard:
		return o.handleSubmitBoard(m.in)
	case beginPredict:
		return o.handleBeginPredict(m.in)
	case finishPredict:
		return o.handleFinishPredict(m)
	case backRequest:
		w, ok := o.windows[StageProcess]
		if !ok {
			return nil, ErrWindowNotOpen
		}
		return o.handle(w.process.Back())
	case closeRequest:
		if _, ok := o.windows[m.stage]; !ok {
			return nil, ErrWindowNotOpen
		}
		o.closeWindow(m.stage)
		return len(o.windows), nil
	case snapshotQuery:
		return o.snapshot(), nil
	case subscribe:
		o.nextSub++
		ch := make(chan Event, subscriberBuffer)
		o.subs[o.nextSub] = ch
		return subscription{id: o.nextSub, ch: ch}, nil
	case unsubscribe:
		if ch, ok := o.subs[m.id]; ok {
			close(ch)
			delete(o.subs, m.id)
		}
		return nil, nil
	default:
		return nil, errors.New("wizard: unknown request")
	}
}

func (o *Orchestrator) handleSubmitBoard(in BoardInput) (any, error) {
	w, ok := o.windows[StageBoard]
	if !ok {
		return nil, ErrWindowNotOpen
	}
	msg, err := w.board.Submit(in)
	if err != nil {
		o.log.Infow("wizard_board_rejected", "err", err)
		return nil, err
	}
	o.openProcess(msg.Board)
	return msg.Board, nil
}

func (o *Orchestrator) handleBeginPredict(in ProcessInput) (any, error) {
	w, ok := o.windows[StageProcess]
	if !ok {
		return nil, ErrWindowNotOpen
	}
	if w.pending {
		return nil, ErrSubmitInFlight
	}
	req, err := w.process.Submit(in)
	if err != nil {
		o.log.Infow("wizard_process_rejected", "window_id", w.id, "err", err)
		return nil, err
	}
	board, _ := w.process.Board()
	w.pending = true
	return predictJob{windowID: w.id, ctx: w.ctx, req: req, board: board}, nil
}

func (o *Orchestrator) handleFinishPredict(m finishPredict) (any, error) {
	w, ok := o.windows[StageProcess]
	if !ok || w.id != m.windowID {
		o.log.Infow("wizard_prediction_discarded", "window_id", m.windowID, "err", m.err)
		return nil, ErrWindowClosed
	}
	w.pending = false

	if m.err != nil {
		o.log.Warnw("predictor_call_failed", "window_id", w.id, "err", m.err)
		o.publish(Event{Kind: EventPredictionFailed, Stage: w.stage, WindowID: w.id, Error: m.err.Error()})
		return nil, m.err
	}
	if m.outcome == nil {
		return nil, &MissingDataError{What: "no prediction received"}
	}
	return o.handle(OpenPresenter{Outcome: *m.outcome})
}

func (o *Orchestrator) newWindow(st Stage) *window {
	if _, ok := o.windows[st]; ok {
		o.closeWindow(st)
	}
	ctx, cancel := context.WithCancel(context.Background())
	w := &window{id: uuid.NewString(), stage: st, openedAt: o.now().UTC(), ctx: ctx, cancel: cancel}
	o.windows[st] = w
	return w
}

func (o *Orchestrator) openBoard() WindowView {
	w := o.newWindow(StageBoard)
	w.board = NewBoardStage(o.pasteTypes)
	view := o.opened(w)
	if _, ok := o.windows[StageProcess]; ok {
		o.closeWindow(StageProcess)
	}
	return view
}

func (o *Orchestrator) openProcess(b models.BoardRecord) WindowView {
	w := o.newWindow(StageProcess)
	w.process = NewProcessStage()
	o.opened(w)
	if _, ok := o.windows[StageBoard]; ok {
		o.closeWindow(StageBoard)
	}

	// the record follows the window, as its own step
	w.process.Seed(b)
	view := w.snapshot()
	o.publish(Event{Kind: EventDataReady, Stage: w.stage, WindowID: w.id, Window: &view})
	return view
}

func (o *Orchestrator) openPresenter(oc models.Outcome) (WindowView, error) {
	view, err := Present(o.table, &oc.Result)
	if err != nil {
		o.log.Errorw("presenter_render_aborted", "err", err, "solder_paste_type", oc.Result.SolderPasteType)
		o.publish(Event{Kind: EventRenderAborted, Stage: StagePrediction, Error: err.Error()})
		return WindowView{}, err
	}

	w, ok := o.windows[StagePrediction]
	if !ok {
		w = o.newWindow(StagePrediction)
		o.opened(w)
	}
	w.outcome = &oc
	w.view = &view
	snap := w.snapshot()
	o.publish(Event{Kind: EventRendered, Stage: w.stage, WindowID: w.id, Window: &snap})
	return snap, nil
}

func (o *Orchestrator) opened(w *window) WindowView {
	view := w.snapshot()
	o.log.Debugw("wizard_window_opened", "stage", w.stage, "window_id", w.id)
	o.publish(Event{Kind: EventWindowOpened, Stage: w.stage, WindowID: w.id, Window: &view})
	return view
}

func (o *Orchestrator) closeWindow(st Stage) {
	w, ok := o.windows[st]
	if !ok {
		return
	}
	w.cancel()
	delete(o.windows, st)
	o.log.Debugw("wizard_window_closed", "stage", st, "window_id", w.id)
	o.publish(Event{Kind: EventWindowClosed, Stage: st, WindowID: w.id})
}

func (o *Orchestrator) snapshot() Snapshot {
	out := Snapshot{Windows: make([]WindowView, 0, len(o.windows))}
	for _, st := range Stages() {
		if w, ok := o.windows[st]; ok {
			out.Windows = append(out.Windows, w.snapshot())
		}
	}
	return out
}

func (o *Orchestrator) publish(ev Event) {
	o.seq++
	ev.Seq = o.seq
	ev.At = o.now().UTC()
	for id, ch := range o.subs {
		select {
		case ch <- ev:
		default:
			o.log.Warnw("wizard_event_dropped", "subscriber", id, "kind", ev.Kind)
		}
	}
}
