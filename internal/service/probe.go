package service

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"time"

	"reflow_predictor/internal/logger"
	"reflow_predictor/internal/models"
	"reflow_predictor/internal/repository"

	"github.com/google/uuid"
)

const (
	defaultProbeTimeout = 2 * time.Second
	// DefaultProbeInterval is used when the configured interval is not positive.
	DefaultProbeInterval = 10 * time.Second
)

// DialFunc opens a connection; net.Dialer.DialContext satisfies it.
type DialFunc func(ctx context.Context, network, address string) (net.Conn, error)

// ProbeService periodically checks that the predictor backend accepts connections.
type ProbeService struct {
	statusRepo repository.StatusRepo
	eventRepo  repository.EventRepo
	address    string
	dial       DialFunc
	timeout    time.Duration
	log        *logger.Logger
}

// NewProbeService returns a prober with a TCP dialer.
func NewProbeService(statusRepo repository.StatusRepo, eventRepo repository.EventRepo, address string, log *logger.Logger) *ProbeService {
	d := &net.Dialer{}
	return &ProbeService{
		statusRepo: statusRepo,
		eventRepo:  eventRepo,
		address:    address,
		dial:       d.DialContext,
		timeout:    defaultProbeTimeout,
		log:        logger.OrNop(log),
	}
}

// Run probes once immediately and then at every tick until ctx is canceled.
func (s *ProbeService) Run(ctx context.Context, tick time.Duration) {
	if s.address == "" {
		s.log.Infow("predictor_probe_disabled")
		return
	}
	if tick <= 0 {
		tick = DefaultProbeInterval
	}
	_, _ = s.Probe(ctx)

	t := time.NewTicker(tick)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			_, _ = s.Probe(ctx)
		}
	}
}

// Probe performs one reachability check and persists the result. A change in
// reachability is also appended to the journal.
func (s *ProbeService) Probe(ctx context.Context) (models.BackendStatus, error) {
	prev, err := s.statusRepo.Load(ctx)
	if err != nil {
		s.log.Warnw("predictor_probe_load_failed", "err", err)
		prev = models.BackendStatus{}
	}

	now := time.Now().UTC()
	st := models.BackendStatus{
		ID:          1,
		Address:     s.address,
		CheckedAt:   now,
		ReachableAt: prev.ReachableAt,
	}

	dialCtx, cancel := context.WithTimeout(ctx, s.timeout)
	conn, derr := s.dial(dialCtx, "tcp", s.address)
	cancel()
	if derr == nil {
		_ = conn.Close()
		st.Reachable = true
		st.ReachableAt = now
	} else {
		st.LastError = derr.Error()
		st.Failures = prev.Failures + 1
	}

	if ctx.Err() != nil {
		return st, ctx.Err()
	}
	if err := s.statusRepo.Save(ctx, st); err != nil {
		s.log.Warnw("predictor_probe_save_failed", "err", err)
		return st, err
	}

	if prev.ID == 0 || prev.Reachable != st.Reachable {
		s.transition(ctx, st)
	}
	return st, nil
}

func (s *ProbeService) transition(ctx context.Context, st models.BackendStatus) {
	desc := "Predictor backend reachable"
	if st.Reachable {
		s.log.Infow("predictor_backend_reachable", "address", st.Address)
	} else {
		desc = "Predictor backend unreachable"
		s.log.Warnw("predictor_backend_unreachable", "address", st.Address, "err", st.LastError)
	}
	if s.eventRepo == nil {
		return
	}
	err := s.eventRepo.Append(context.WithoutCancel(ctx), models.WizardEvent{
		EventID:     uuid.NewString(),
		OccurredAt:  st.CheckedAt,
		Type:        models.EventBackendStatus,
		Description: desc,
		Metadata: map[string]any{
			"address":   st.Address,
			"reachable": st.Reachable,
			"error":     st.LastError,
		},
	})
	if err != nil {
		s.log.Warnw("predictor_probe_journal_failed", "address", st.Address, "err", err)
	}
}

// ProbeAddress derives host:port from the predictor base URL.
func ProbeAddress(baseURL string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("parse predictor url %q: %w", baseURL, err)
	}
	if u.Hostname() == "" {
		return "", fmt.Errorf("predictor url %q has no host", baseURL)
	}
	port := u.Port()
	if port == "" {
		switch u.Scheme {
		case "https":
			port = "443"
		default:
			port = "80"
		}
	}
	return net.JoinHostPort(u.Hostname(), port), nil
}
