package service

import (
	"context"
	"sync"

	"reflow_predictor/internal/models"
	"reflow_predictor/internal/repository"
)

// fakeEventRepo is a minimal stub that satisfies repository.EventRepo.
type fakeEventRepo struct {
	mu sync.Mutex

	// captured inputs
	gotCtx   context.Context
	gotQuery repository.EventQuery
	appended []models.WizardEvent

	// configured outputs
	events    []models.WizardEvent
	err       error
	appendErr error

	calls int
}

func (f *fakeEventRepo) List(ctx context.Context, q repository.EventQuery) ([]models.WizardEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.gotCtx = ctx
	f.gotQuery = q
	return f.events, f.err
}

func (f *fakeEventRepo) Append(ctx context.Context, e models.WizardEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.appended = append(f.appended, e)
	return f.appendErr
}

func (f *fakeEventRepo) types() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.appended))
	for _, e := range f.appended {
		out = append(out, e.Type)
	}
	return out
}

// statusRepoStub satisfies repository.StatusRepo.
type statusRepoStub struct {
	mu         sync.Mutex
	loadResp   models.BackendStatus
	loadErr    error
	saveErr    error
	savedCalls []models.BackendStatus
}

func (s *statusRepoStub) Load(ctx context.Context) (models.BackendStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadResp, s.loadErr
}

// Save records the status and makes it the next Load result.
func (s *statusRepoStub) Save(ctx context.Context, st models.BackendStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.savedCalls = append(s.savedCalls, st)
	if s.saveErr != nil {
		return s.saveErr
	}
	s.loadResp = st
	return nil
}

func (s *statusRepoStub) saved() []models.BackendStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.BackendStatus(nil), s.savedCalls...)
}
