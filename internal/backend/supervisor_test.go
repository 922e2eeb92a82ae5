package backend

import (
	"bytes"
	"context"
	"os/exec"
	"runtime"
	"strings"
	"sync"
	"testing"
	"time"

	"reflow_predictor/internal/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type syncBuffer struct {
	mu sync.Mutex
	b  bytes.Buffer
}

func (s *syncBuffer) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.b.Write(p)
}

func (s *syncBuffer) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.b.String()
}

func testLogger() (*logger.Logger, *syncBuffer) {
	buf := &syncBuffer{}
	return logger.NewWriter(buf, logger.DebugLevel), buf
}

func requireShell(t *testing.T) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("needs a POSIX shell")
	}
	sh, err := exec.LookPath("sh")
	if err != nil {
		t.Skip("sh not found")
	}
	return sh
}

func TestLineWriter_SplitsLinesAndFlushesRemainder(t *testing.T) {
	log, buf := testLogger()
	w := newLineWriter(log, "helper_output", "stdout")

	_, _ = w.Write([]byte("first\nsec"))
	_, _ = w.Write([]byte("ond\r\n\npartial"))
	assert.Contains(t, buf.String(), "first")
	assert.Contains(t, buf.String(), "second")
	assert.NotContains(t, buf.String(), "partial")

	w.Flush()
	assert.Contains(t, buf.String(), "partial")
	assert.Equal(t, 3, strings.Count(buf.String(), "helper_output"))
}

func TestLineWriter_StderrIsWarn(t *testing.T) {
	log, buf := testLogger()
	w := newLineWriter(log, "helper_output", "stderr")
	_, _ = w.Write([]byte("boom\n"))
	assert.Contains(t, buf.String(), "WARN")
}

func TestSupervisor_NoCommandReturnsImmediately(t *testing.T) {
	log, buf := testLogger()
	s := NewSupervisor(Config{}, log)
	require.NoError(t, s.Run(context.Background()))
	assert.Contains(t, buf.String(), "predictor_backend_unmanaged")
}

func TestSupervisor_StreamsOutputUntilExit(t *testing.T) {
	sh := requireShell(t)
	log, buf := testLogger()

	s := NewSupervisor(Config{Command: sh, Args: []string{"-c", "echo ready; echo oops 1>&2; exit 3"}}, log)
	require.NoError(t, s.Run(context.Background()))

	out := buf.String()
	assert.Contains(t, out, "predictor_backend_started")
	assert.Contains(t, out, "ready")
	assert.Contains(t, out, "oops")
	assert.Contains(t, out, "predictor_backend_exited")
}

func TestSupervisor_KillsOnCancel(t *testing.T) {
	sh := requireShell(t)
	log, buf := testLogger()

	ctx, cancel := context.WithCancel(context.Background())
	s := NewSupervisor(Config{Command: sh, Args: []string{"-c", "echo alive-marker; exec sleep 30"}, Grace: time.Second}, log)

	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	require.Eventually(t, func() bool { return strings.Contains(buf.String(), "alive-marker") }, 5*time.Second, 10*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("supervisor did not stop the backend")
	}
	assert.Contains(t, buf.String(), "predictor_backend_stopped")
}

func TestSupervisor_StartFailure(t *testing.T) {
	log, _ := testLogger()
	s := NewSupervisor(Config{Command: "/nonexistent/reflow-backend"}, log)
	err := s.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "start backend")
}

func TestLaunch_DoesNotWait(t *testing.T) {
	sh := requireShell(t)
	log, buf := testLogger()

	start := time.Now()
	require.NoError(t, Launch(log, "spreadsheet_helper_output", sh, "-c", "sleep 1; echo opened"))
	assert.Less(t, time.Since(start), time.Second)

	require.Eventually(t, func() bool { return strings.Contains(buf.String(), "opened") }, 5*time.Second, 10*time.Millisecond)
}

func TestLaunch_StartError(t *testing.T) {
	err := Launch(nil, "x", "/nonexistent/helper")
	require.Error(t, err)
}
