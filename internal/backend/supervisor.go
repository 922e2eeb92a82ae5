// Package backend runs the companion prediction backend and short-lived helper
// commands, streaming their output into the application log.
package backend

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"

	"reflow_predictor/internal/logger"
)

// DefaultStopGrace is how long a stopped backend may take to release its pipes.
const DefaultStopGrace = 5 * time.Second

// Config describes the backend command. An empty Command means the backend is
// managed elsewhere.
type Config struct {
	Command string
	Args    []string
	Dir     string
	Grace   time.Duration
}

// Supervisor owns the backend process for the lifetime of the application.
type Supervisor struct {
	cfg Config
	log *logger.Logger
}

func NewSupervisor(cfg Config, log *logger.Logger) *Supervisor {
	if cfg.Grace <= 0 {
		cfg.Grace = DefaultStopGrace
	}
	return &Supervisor{cfg: cfg, log: logger.OrNop(log)}
}

// Run starts the backend and blocks until it exits or ctx is canceled, in which
// case the process is killed. A backend that exits on its own is logged and not
// restarted; the application keeps serving and predictions fail as NetworkError.
func (s *Supervisor) Run(ctx context.Context) error {
	if s.cfg.Command == "" {
		s.log.Infow("predictor_backend_unmanaged")
		return nil
	}

	cmd := exec.CommandContext(ctx, s.cfg.Command, s.cfg.Args...)
	cmd.Dir = s.cfg.Dir
	cmd.WaitDelay = s.cfg.Grace

	stdout := newLineWriter(s.log, "predictor_backend_output", "stdout")
	stderr := newLineWriter(s.log, "predictor_backend_output", "stderr")
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	if err := cmd.Start(); err != nil {
		s.log.Errorw("predictor_backend_start_failed", "command", s.cfg.Command, "err", err)
		return fmt.Errorf("start backend %q: %w", s.cfg.Command, err)
	}
	s.log.Infow("predictor_backend_started", "command", s.cfg.Command, "pid", cmd.Process.Pid)

	err := cmd.Wait()
	stdout.Flush()
	stderr.Flush()

	if ctx.Err() != nil {
		s.log.Infow("predictor_backend_stopped", "pid", cmd.Process.Pid)
		return nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		s.log.Warnw("predictor_backend_exited", "code", exitErr.ExitCode())
		return nil
	}
	if err != nil {
		s.log.Warnw("predictor_backend_exited", "err", err)
		return nil
	}
	s.log.Infow("predictor_backend_exited", "code", 0)
	return nil
}

// Launch starts a helper command without waiting for it. Its output is logged
// under event and the process is reaped in the background.
func Launch(log *logger.Logger, event, name string, args ...string) error {
	log = logger.OrNop(log)

	cmd := exec.Command(name, args...)
	stdout := newLineWriter(log, event, "stdout")
	stderr := newLineWriter(log, event, "stderr")
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %q: %w", name, err)
	}
	go func() {
		err := cmd.Wait()
		stdout.Flush()
		stderr.Flush()
		if err != nil {
			log.Warnw(event, "command", name, "err", err)
			return
		}
		log.Debugw(event, "command", name, "code", 0)
	}()
	return nil
}
