package service

import (
	"context"
	"time"

	"reflow_predictor/internal/logger"
	"reflow_predictor/internal/models"
	"reflow_predictor/internal/ranges"
	"reflow_predictor/internal/repository"
	"reflow_predictor/internal/wizard"
)

type Authorization interface {
	SignUp(username, password string) (int, error)
	GenerateToken(username, password string) (string, error)
	ParseToken(accessToken string) (int, error)
}

// Wizard runs prediction sessions, one orchestrator per session.
type Wizard interface {
	Start(ctx context.Context, operatorID int) (SessionInfo, error)
	Snapshot(ctx context.Context, id string) (wizard.Snapshot, error)
	SubmitBoard(ctx context.Context, id string, in wizard.BoardInput) (models.BoardRecord, error)
	SubmitProcess(ctx context.Context, id string, in wizard.ProcessInput) (wizard.View, error)
	Back(ctx context.Context, id string) error
	CloseWindow(ctx context.Context, id string, st wizard.Stage) (int, error)
	End(ctx context.Context, id string) error
	Subscribe(ctx context.Context, id string) (<-chan wizard.Event, func(), error)
}

// Monitoring exposes the last observed predictor backend status.
type Monitoring interface {
	GetStatus(ctx context.Context) (models.BackendStatus, error)
}

// EventLog exposes the wizard journal with filtering access.
type EventLog interface {
	List(ctx context.Context, f LogFilter) ([]models.WizardEvent, error)
}

// Prober runs the background reachability check of the predictor backend.
// Stop via context cancellation in main() for graceful shutdown.
type Prober interface {
	Run(ctx context.Context, tick time.Duration)
}

// Spreadsheet opens the PCB data workbook with the configured helper.
type Spreadsheet interface {
	Open(ctx context.Context, operatorID int) (string, error)
}

// Deps carries what the services need besides the repositories.
type Deps struct {
	Predictor   wizard.Predictor
	Ranges      *ranges.Table
	Log         *logger.Logger
	Auth        AuthConfig
	ProbeAddr   string
	Spreadsheet SpreadsheetConfig
}

type Service struct {
	Wizard
	Monitoring
	EventLog
	Prober
	Spreadsheet
	Authorization
}

// NewService wires the repository layer into concrete services.
func NewService(repos *repository.Repository, deps Deps) *Service {
	return &Service{
		Wizard:        NewWizardService(deps.Predictor, deps.Ranges, repos.EventRepo, deps.Log),
		Monitoring:    NewMonitoringService(repos.StatusRepo, deps.ProbeAddr),
		EventLog:      NewEventLogService(repos.EventRepo),
		Prober:        NewProbeService(repos.StatusRepo, repos.EventRepo, deps.ProbeAddr, deps.Log),
		Spreadsheet:   NewSpreadsheetService(deps.Spreadsheet, repos.EventRepo, deps.Log),
		Authorization: NewAuthService(repos.Auth, deps.Auth),
	}
}

// Shutdown stops every running wizard session.
func (s *Service) Shutdown() {
	if c, ok := s.Wizard.(interface{ Close() }); ok {
		c.Close()
	}
}
