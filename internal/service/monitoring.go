package service

import (
	"context"
	"time"

	"reflow_predictor/internal/models"
	"reflow_predictor/internal/repository"
)

const statusNotProbed = "not probed yet"

type MonitoringService struct {
	statusRepo repository.StatusRepo
	address    string
}

func NewMonitoringService(statusRepo repository.StatusRepo, address string) *MonitoringService {
	return &MonitoringService{statusRepo: statusRepo, address: address}
}

// GetStatus returns the latest persisted backend status.
// If nothing was probed yet, returns an unreachable baseline for the configured address.
func (s *MonitoringService) GetStatus(ctx context.Context) (models.BackendStatus, error) {
	st, err := s.statusRepo.Load(ctx)
	if err != nil {
		return models.BackendStatus{}, err
	}
	if st.ID == 0 {
		return s.baselineStatus(), nil
	}
	st.CheckedAt = toUTC(st.CheckedAt)
	st.ReachableAt = toUTC(st.ReachableAt)
	return st, nil
}

// baselineStatus is reported before the first probe lands.
func (s *MonitoringService) baselineStatus() models.BackendStatus {
	return models.BackendStatus{
		ID:        1, // DB schema enforces single-row status with id=1
		Address:   s.address,
		Reachable: false,
		LastError: statusNotProbed,
	}
}

// toUTC normalizes non-zero time to UTC, preserving zero values.
func toUTC(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return t.UTC()
}
