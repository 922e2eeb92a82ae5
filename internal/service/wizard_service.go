package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"reflow_predictor/internal/logger"
	"reflow_predictor/internal/models"
	"reflow_predictor/internal/ranges"
	"reflow_predictor/internal/repository"
	"reflow_predictor/internal/wizard"

	"github.com/google/uuid"
)

// ErrSessionNotFound is returned for unknown or ended session IDs.
var ErrSessionNotFound = errors.New("wizard session not found")

type session struct {
	id         string
	operatorID int
	startedAt  time.Time
	orch       *wizard.Orchestrator
	cancel     context.CancelFunc
}

// WizardService keeps the live wizard sessions and journals what happens in them.
type WizardService struct {
	predictor wizard.Predictor
	table     *ranges.Table
	eventRepo repository.EventRepo
	log       *logger.Logger
	now       func() time.Time

	mu       sync.Mutex
	sessions map[string]*session
}

func NewWizardService(p wizard.Predictor, tbl *ranges.Table, eventRepo repository.EventRepo, log *logger.Logger) *WizardService {
	return &WizardService{
		predictor: p,
		table:     tbl,
		eventRepo: eventRepo,
		log:       logger.OrNop(log),
		now:       time.Now,
		sessions:  make(map[string]*session),
	}
}

// Start opens a new session with its board window. Every journal entry of the
// session is attributed to operatorID.
func (s *WizardService) Start(ctx context.Context, operatorID int) (SessionInfo, error) {
	id := uuid.NewString()
	runCtx, cancel := context.WithCancel(context.Background())
	log := s.log.With("session_id", id, "operator_id", operatorID)
	orch := wizard.NewOrchestrator(s.predictor, s.table, log, wizard.WithClock(s.now))
	go orch.Run(runCtx)

	sess := &session{id: id, operatorID: operatorID, startedAt: s.now().UTC(), orch: orch, cancel: cancel}
	s.mu.Lock()
	s.sessions[id] = sess
	s.mu.Unlock()

	snap, err := orch.Snapshot(ctx)
	if err != nil {
		s.mu.Lock()
		delete(s.sessions, id)
		s.mu.Unlock()
		s.stop(sess)
		return SessionInfo{}, err
	}

	log.Infow("wizard_session_started")
	s.journal(ctx, sess, models.EventSessionStart, "Wizard session started", nil)
	return SessionInfo{ID: id, OperatorID: operatorID, StartedAt: sess.startedAt, Snapshot: snap}, nil
}

func (s *WizardService) Snapshot(ctx context.Context, id string) (wizard.Snapshot, error) {
	sess, err := s.get(id)
	if err != nil {
		return wizard.Snapshot{}, err
	}
	return sess.orch.Snapshot(ctx)
}

func (s *WizardService) SubmitBoard(ctx context.Context, id string, in wizard.BoardInput) (models.BoardRecord, error) {
	sess, err := s.get(id)
	if err != nil {
		return models.BoardRecord{}, err
	}
	rec, err := sess.orch.SubmitBoard(ctx, in)
	if err != nil {
		s.journalFailure(ctx, sess, wizard.StageBoard, err)
		return models.BoardRecord{}, err
	}
	s.journal(ctx, sess, models.EventBoardAccepted, "Board parameters accepted", map[string]any{
		"layers":            rec.Layers,
		"solder_paste_type": rec.SolderPasteType,
	})
	return rec, nil
}

func (s *WizardService) SubmitProcess(ctx context.Context, id string, in wizard.ProcessInput) (wizard.View, error) {
	sess, err := s.get(id)
	if err != nil {
		return wizard.View{}, err
	}
	view, err := sess.orch.SubmitProcess(ctx, in)
	if err != nil {
		s.journalFailure(ctx, sess, wizard.StageProcess, err)
		return wizard.View{}, err
	}
	s.journal(ctx, sess, models.EventPrediction, "Prediction rendered", predictionMeta(view))
	return view, nil
}

func (s *WizardService) Back(ctx context.Context, id string) error {
	sess, err := s.get(id)
	if err != nil {
		return err
	}
	if err := sess.orch.Back(ctx); err != nil {
		return err
	}
	s.journal(ctx, sess, models.EventBack, "Returned to board parameters", nil)
	return nil
}

// CloseWindow closes one window. Closing the last one ends the session.
func (s *WizardService) CloseWindow(ctx context.Context, id string, st wizard.Stage) (int, error) {
	sess, err := s.get(id)
	if err != nil {
		return 0, err
	}
	left, err := sess.orch.CloseWindow(ctx, st)
	if err != nil {
		return 0, err
	}
	s.journal(ctx, sess, models.EventWindowClosed, "Window closed", map[string]any{"stage": st})
	if left == 0 {
		if err := s.End(ctx, id); err != nil && !errors.Is(err, ErrSessionNotFound) {
			return 0, err
		}
	}
	return left, nil
}

// End stops the session and discards its windows.
func (s *WizardService) End(ctx context.Context, id string) error {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()
	if !ok {
		return ErrSessionNotFound
	}

	s.stop(sess)
	s.log.Infow("wizard_session_ended", "session_id", id, "operator_id", sess.operatorID)
	s.journal(ctx, sess, models.EventSessionEnd, "Wizard session ended", map[string]any{
		"duration_s": s.now().Sub(sess.startedAt).Seconds(),
	})
	return nil
}

func (s *WizardService) Subscribe(ctx context.Context, id string) (<-chan wizard.Event, func(), error) {
	sess, err := s.get(id)
	if err != nil {
		return nil, nil, err
	}
	return sess.orch.Subscribe(ctx)
}

// Close ends every session. Used at shutdown.
func (s *WizardService) Close() {
	s.mu.Lock()
	all := make([]*session, 0, len(s.sessions))
	for id, sess := range s.sessions {
		all = append(all, sess)
		delete(s.sessions, id)
	}
	s.mu.Unlock()

	for _, sess := range all {
		s.stop(sess)
	}
}

func (s *WizardService) get(id string) (*session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

func (s *WizardService) stop(sess *session) {
	sess.cancel()
	<-sess.orch.Done()
}

func (s *WizardService) journalFailure(ctx context.Context, sess *session, st wizard.Stage, err error) {
	var (
		verr *wizard.ValidationError
		merr *wizard.MissingDataError
	)
	switch {
	case errors.As(err, &verr):
		s.journal(ctx, sess, models.EventValidationFailed, verr.Message, map[string]any{
			"stage": st,
			"field": verr.Field,
		})
	case errors.As(err, &merr) && st == wizard.StageProcess:
		s.journal(ctx, sess, models.EventRenderAborted, merr.Error(), nil)
	case errors.Is(err, wizard.ErrSubmitInFlight), errors.Is(err, wizard.ErrWindowNotOpen),
		errors.Is(err, wizard.ErrClosed), errors.Is(err, context.Canceled):
		// not a wizard outcome
	case st == wizard.StageProcess:
		s.journal(ctx, sess, models.EventPredictionFailed, err.Error(), nil)
	}
}

// journal appends to the wizard event log. A failed append never fails the wizard step.
func (s *WizardService) journal(ctx context.Context, sess *session, typ, msg string, meta any) {
	if s.eventRepo == nil {
		return
	}
	err := s.eventRepo.Append(context.WithoutCancel(ctx), models.WizardEvent{
		EventID:     uuid.NewString(),
		SessionID:   sess.id,
		OperatorID:  sess.operatorID,
		OccurredAt:  s.now().UTC(),
		Type:        typ,
		Description: msg,
		Metadata:    meta,
	})
	if err != nil {
		s.log.Warnw("wizard_journal_append_failed", "session_id", sess.id, "type", typ, "err", err)
	}
}

func predictionMeta(v wizard.View) map[string]any {
	meta := map[string]any{"solder_paste_type": v.SolderPasteType}
	var outOfRange []string
	for _, m := range v.Metrics {
		meta[string(m.Metric)] = m.Value
		if m.Present && !m.InRange {
			outOfRange = append(outOfRange, string(m.Metric))
		}
	}
	if len(outOfRange) > 0 {
		meta["out_of_range"] = outOfRange
	}
	return meta
}
