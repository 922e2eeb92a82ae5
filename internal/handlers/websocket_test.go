package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"reflow_predictor/internal/service"
	"reflow_predictor/internal/wizard"

	"github.com/gorilla/websocket"
)

type wsTestEnvelope struct {
	Type  string `json:"type"`
	Error string `json:"error"`
	Data  struct {
		Kind    wizard.EventKind    `json:"kind"`
		Stage   wizard.Stage        `json:"stage"`
		Windows []wizard.WindowView `json:"windows"`
	} `json:"data"`
}

func dialSession(t *testing.T, srv *httptest.Server, id string) (*websocket.Conn, *http.Response, error) {
	t.Helper()
	u, _ := url.Parse(srv.URL)
	u.Scheme = "ws"
	u.Path = "/ws/sessions/" + id
	dialer := websocket.Dialer{HandshakeTimeout: 2 * time.Second}
	return dialer.Dial(u.String(), nil)
}

func readEnvelope(t *testing.T, conn *websocket.Conn) wsTestEnvelope {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var env wsTestEnvelope
	if err := conn.ReadJSON(&env); err != nil {
		t.Fatalf("read error: %v", err)
	}
	return env
}

func TestWebSocket_StreamsSnapshotThenEvents(t *testing.T) {
	events := make(chan wizard.Event, 4)
	wz := &mockWizard{
		events:   events,
		snapshot: wizard.Snapshot{Windows: []wizard.WindowView{{ID: "w1", Stage: wizard.StageBoard, Ready: true}}},
	}
	srv := httptest.NewServer(newTestRouter(&service.Service{Wizard: wz}))
	defer srv.Close()

	conn, _, err := dialSession(t, srv, "s1")
	if err != nil {
		t.Fatalf("dial error: %v", err)
	}
	defer conn.Close()

	env := readEnvelope(t, conn)
	if env.Type != "snapshot" || len(env.Data.Windows) != 1 || env.Data.Windows[0].Stage != wizard.StageBoard {
		t.Fatalf("expected board snapshot first, got %+v", env)
	}

	events <- wizard.Event{Seq: 1, Kind: wizard.EventWindowOpened, Stage: wizard.StageProcess}
	env = readEnvelope(t, conn)
	if env.Type != "event" || env.Data.Kind != wizard.EventWindowOpened || env.Data.Stage != wizard.StageProcess {
		t.Fatalf("unexpected event envelope: %+v", env)
	}

	events <- wizard.Event{Seq: 2, Kind: wizard.EventPredictionFailed, Stage: wizard.StageProcess, Error: "refused"}
	env = readEnvelope(t, conn)
	if env.Type != "error" || env.Error != "refused" {
		t.Fatalf("expected error envelope, got %+v", env)
	}

	close(events)
	env = readEnvelope(t, conn)
	if env.Type != "session_ended" {
		t.Fatalf("expected session_ended, got %+v", env)
	}

	_ = conn.SetReadDeadline(time.Now().Add(time.Second))
	if _, _, err := conn.ReadMessage(); !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
		t.Fatalf("expected normal close, got %v", err)
	}
}

func TestWebSocket_UnknownSession_404(t *testing.T) {
	wz := &mockWizard{subErr: service.ErrSessionNotFound}
	srv := httptest.NewServer(newTestRouter(&service.Service{Wizard: wz}))
	defer srv.Close()

	conn, resp, err := dialSession(t, srv, "missing")
	if err == nil {
		_ = conn.Close()
		t.Fatalf("expected handshake failure")
	}
	if resp == nil || resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 response, got %+v", resp)
	}
}

func TestWebSocket_SubscribeError_500(t *testing.T) {
	wz := &mockWizard{subErr: errors.New("boom")}
	srv := httptest.NewServer(newTestRouter(&service.Service{Wizard: wz}))
	defer srv.Close()

	_, resp, err := dialSession(t, srv, "s1")
	if err == nil {
		t.Fatalf("expected handshake failure")
	}
	if resp == nil || resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("expected 500 response, got %+v", resp)
	}
}
