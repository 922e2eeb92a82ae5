package handlers

import (
	"context"
	"net/http"

	"reflow_predictor/internal/models"
	"reflow_predictor/internal/service"
	"reflow_predictor/internal/wizard"

	"github.com/gin-gonic/gin"
)

// ---- Service Mocks ----

type mockAuth struct {
	signUpID      int
	signUpErr     error
	genTokenToken string
	genTokenErr   error
	parseID       int
	parseErr      error

	lastSignUpUsername string
	lastSignUpPassword string
	lastGenUsername    string
	lastGenPassword    string
	lastParseToken     string
}

func (m *mockAuth) SignUp(username, password string) (int, error) {
	m.lastSignUpUsername = username
	m.lastSignUpPassword = password
	return m.signUpID, m.signUpErr
}
func (m *mockAuth) GenerateToken(username, password string) (string, error) {
	m.lastGenUsername = username
	m.lastGenPassword = password
	return m.genTokenToken, m.genTokenErr
}
func (m *mockAuth) ParseToken(token string) (int, error) {
	m.lastParseToken = token
	return m.parseID, m.parseErr
}

type mockWizard struct {
	startInfo service.SessionInfo
	startErr  error
	snapshot  wizard.Snapshot
	snapErr   error
	board     models.BoardRecord
	boardErr  error
	view      wizard.View
	viewErr   error
	backErr   error
	left      int
	closeErr  error
	endErr    error
	events    chan wizard.Event
	subErr    error

	lastID       string
	lastBoard    wizard.BoardInput
	lastProcess  wizard.ProcessInput
	lastStage    wizard.Stage
	lastOperator int
	unsubCalls   int
}

func (m *mockWizard) Start(ctx context.Context, operatorID int) (service.SessionInfo, error) {
	m.lastOperator = operatorID
	return m.startInfo, m.startErr
}
func (m *mockWizard) Snapshot(ctx context.Context, id string) (wizard.Snapshot, error) {
	m.lastID = id
	return m.snapshot, m.snapErr
}
func (m *mockWizard) SubmitBoard(ctx context.Context, id string, in wizard.BoardInput) (models.BoardRecord, error) {
	m.lastID = id
	m.lastBoard = in
	return m.board, m.boardErr
}
func (m *mockWizard) SubmitProcess(ctx context.Context, id string, in wizard.ProcessInput) (wizard.View, error) {
	m.lastID = id
	m.lastProcess = in
	return m.view, m.viewErr
}
func (m *mockWizard) Back(ctx context.Context, id string) error {
	m.lastID = id
	return m.backErr
}
func (m *mockWizard) CloseWindow(ctx context.Context, id string, st wizard.Stage) (int, error) {
	m.lastID = id
	m.lastStage = st
	return m.left, m.closeErr
}
func (m *mockWizard) End(ctx context.Context, id string) error {
	m.lastID = id
	return m.endErr
}
func (m *mockWizard) Subscribe(ctx context.Context, id string) (<-chan wizard.Event, func(), error) {
	if m.subErr != nil {
		return nil, nil, m.subErr
	}
	return m.events, func() { m.unsubCalls++ }, nil
}

type mockMonitoring struct {
	status models.BackendStatus
	err    error
}

func (m *mockMonitoring) GetStatus(ctx context.Context) (models.BackendStatus, error) {
	return m.status, m.err
}

type mockEventLog struct {
	resp       []models.WizardEvent
	err        error
	lastFilter service.LogFilter
	calls      int
}

func (m *mockEventLog) List(ctx context.Context, f service.LogFilter) ([]models.WizardEvent, error) {
	m.calls++
	m.lastFilter = f
	return m.resp, m.err
}

type mockSpreadsheet struct {
	path         string
	err          error
	calls        int
	lastOperator int
}

func (m *mockSpreadsheet) Open(ctx context.Context, operatorID int) (string, error) {
	m.calls++
	m.lastOperator = operatorID
	return m.path, m.err
}

// ---- Shared Test Helpers ----

func newTestRouter(s *service.Service) *gin.Engine {
	h := NewHandler(s, nil)
	gin.SetMode(gin.TestMode)
	return h.InitRoutes()
}

func authHeader(token string) http.Header {
	h := http.Header{}
	if token != "" {
		h.Set("Authorization", "Bearer "+token)
	}
	return h
}
