package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"reflow_predictor/internal/models"
	"reflow_predictor/internal/repository"
)

type EventLogService struct {
	eventRepo repository.EventRepo
}

func NewEventLogService(eventRepo repository.EventRepo) *EventLogService {
	return &EventLogService{eventRepo: eventRepo}
}

var (
	errInvalidTimeRange = errors.New("invalid time range: From must be <= To")
	errInvalidLimit     = errors.New("invalid limit: must be >= 0")
	errInvalidOperator  = errors.New("invalid operator: must be >= 0")
)

// normalizeToUTC returns t in UTC, preserving zero time values.
func normalizeToUTC(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return t.UTC()
}

// normalizeEventType trims spaces and uppercases the event type filter.
func normalizeEventType(s string) string {
	return strings.TrimSpace(strings.ToUpper(s))
}

// normalizeAndValidateFilter prepares query parameters and validates the time range.
func normalizeAndValidateFilter(f LogFilter) (repository.EventQuery, error) {
	q := repository.EventQuery{
		From:       normalizeToUTC(f.From),
		To:         normalizeToUTC(f.To),
		Type:       normalizeEventType(f.Type),
		SessionID:  strings.TrimSpace(f.SessionID),
		OperatorID: f.OperatorID,
		Limit:      f.Limit,
	}
	if !q.From.IsZero() && !q.To.IsZero() && q.From.After(q.To) {
		return repository.EventQuery{}, errInvalidTimeRange
	}
	if q.Limit < 0 {
		return repository.EventQuery{}, errInvalidLimit
	}
	if q.OperatorID < 0 {
		return repository.EventQuery{}, errInvalidOperator
	}
	return q, nil
}

func (s *EventLogService) List(ctx context.Context, f LogFilter) ([]models.WizardEvent, error) {
	q, err := normalizeAndValidateFilter(f)
	if err != nil {
		return nil, err
	}
	return s.eventRepo.List(ctx, q)
}

// IsFilterError reports whether err was caused by an invalid LogFilter.
func IsFilterError(err error) bool {
	return errors.Is(err, errInvalidTimeRange) || errors.Is(err, errInvalidLimit) || errors.Is(err, errInvalidOperator)
}
