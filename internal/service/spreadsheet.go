package service

import (
	"context"
	"errors"
	"fmt"
	"os"

	"reflow_predictor/internal/backend"
	"reflow_predictor/internal/logger"
	"reflow_predictor/internal/models"
	"reflow_predictor/internal/repository"

	"github.com/google/uuid"
)

var (
	ErrSpreadsheetNotConfigured = errors.New("spreadsheet helper is not configured")
	ErrSpreadsheetMissing       = errors.New("spreadsheet file not found")
)

// SpreadsheetConfig comes from the spreadsheet.* config keys. The file path is
// appended to Args.
type SpreadsheetConfig struct {
	Path    string
	Command string
	Args    []string
}

// StartFunc starts a command without waiting for it.
type StartFunc func(name string, args ...string) error

type SpreadsheetService struct {
	cfg       SpreadsheetConfig
	eventRepo repository.EventRepo
	log       *logger.Logger
	stat      func(string) (os.FileInfo, error)
	start     StartFunc
}

func NewSpreadsheetService(cfg SpreadsheetConfig, eventRepo repository.EventRepo, log *logger.Logger) *SpreadsheetService {
	log = logger.OrNop(log)
	return &SpreadsheetService{
		cfg:       cfg,
		eventRepo: eventRepo,
		log:       log,
		stat:      os.Stat,
		start: func(name string, args ...string) error {
			return backend.Launch(log, "spreadsheet_helper_output", name, args...)
		},
	}
}

// Open launches the helper on the configured file and returns its path. It
// does not wait for the helper to finish.
func (s *SpreadsheetService) Open(ctx context.Context, operatorID int) (string, error) {
	if s.cfg.Path == "" || s.cfg.Command == "" {
		return "", ErrSpreadsheetNotConfigured
	}
	fi, err := s.stat(s.cfg.Path)
	if err != nil || fi.IsDir() {
		s.log.Warnw("spreadsheet_not_found", "path", s.cfg.Path, "err", err)
		return "", fmt.Errorf("%w: %s", ErrSpreadsheetMissing, s.cfg.Path)
	}

	args := append(append([]string(nil), s.cfg.Args...), s.cfg.Path)
	if err := s.start(s.cfg.Command, args...); err != nil {
		s.log.Errorw("spreadsheet_helper_failed", "command", s.cfg.Command, "err", err)
		return "", err
	}
	s.log.Infow("spreadsheet_opened", "path", s.cfg.Path, "command", s.cfg.Command, "operator_id", operatorID)

	if s.eventRepo != nil {
		err := s.eventRepo.Append(context.WithoutCancel(ctx), models.WizardEvent{
			EventID:     uuid.NewString(),
			OperatorID:  operatorID,
			Type:        models.EventSpreadsheet,
			Description: "Spreadsheet helper started",
			Metadata:    map[string]any{"path": s.cfg.Path},
		})
		if err != nil {
			s.log.Warnw("spreadsheet_journal_append_failed", "err", err)
		}
	}
	return s.cfg.Path, nil
}
