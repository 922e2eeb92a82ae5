package handlers

import (
	"errors"
	"net/http"
	"time"

	"reflow_predictor/internal/service"
	"reflow_predictor/internal/wizard"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// Send/receive timing configuration and message size limits.
const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	maxMsgSize = 1 << 12 // 4 KB
)

// Envelope types sent to window clients.
const (
	wsTypeSnapshot = "snapshot"
	wsTypeEvent    = "event"
	wsTypeEnded    = "session_ended"
	wsTypeError    = "error"
)

// Envelope used for WebSocket messages.
type wsEnvelope struct {
	Type  string      `json:"type"`
	Data  interface{} `json:"data,omitempty"`
	Error string      `json:"error,omitempty"`
}

// Upgrader for HTTP -> WebSocket. The server binds to loopback by default.
var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// @Summary      Stream window events
// @Description  WebSocket. Sends the current snapshot, then one envelope per window event until the session ends.
// @Tags         sessions
// @Param        id   path  string  true  "Session ID"
// @Success      101
// @Failure      404  {object}  map[string]string
// @Router       /ws/sessions/{id} [get]
func (h *Handler) wsSession(c *gin.Context) {
	id := c.Param(sessionIDPath)
	ctx := c.Request.Context()

	// subscribe before the snapshot so nothing falls in between
	events, unsubscribe, err := h.services.Wizard.Subscribe(ctx, id)
	if err != nil {
		if errors.Is(err, service.ErrSessionNotFound) || errors.Is(err, wizard.ErrClosed) {
			c.JSON(http.StatusNotFound, gin.H{"error": errSessionNotFound})
			return
		}
		h.logAndJSONError(c, http.StatusInternalServerError, errInternal, "ws_subscribe_failed", err, "session_id", id)
		return
	}
	defer unsubscribe()

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		if h.log != nil {
			h.log.Errorw("ws_upgrade_failed", "err", err)
		}
		return
	}
	defer func() { _ = conn.Close() }()

	// Configure read limits and pong handler to extend read deadline.
	conn.SetReadLimit(maxMsgSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	// Reader goroutine to handle control frames and detect disconnects.
	done := make(chan struct{})
	go h.startReader(conn, done)

	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()

	if snap, err := h.services.Wizard.Snapshot(ctx, id); err == nil {
		if err := h.writeEnvelope(conn, wsEnvelope{Type: wsTypeSnapshot, Data: snap}); err != nil {
			if h.log != nil {
				h.log.Infow("ws_write_failed_initial", "err", err)
			}
			return
		}
	}

	for {
		select {
		case <-done:
			return
		case <-ctx.Done():
			return
		case <-ping.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				if h.log != nil {
					h.log.Infow("ws_ping_failed", "err", err)
				}
				return
			}
		case ev, ok := <-events:
			if !ok {
				_ = h.writeEnvelope(conn, wsEnvelope{Type: wsTypeEnded})
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "session ended"),
					time.Now().Add(writeWait))
				return
			}
			env := wsEnvelope{Type: wsTypeEvent, Data: ev}
			if ev.Error != "" {
				env.Type = wsTypeError
				env.Error = ev.Error
			}
			if err := h.writeEnvelope(conn, env); err != nil {
				if h.log != nil {
					h.log.Infow("ws_write_failed", "err", err, "session_id", id)
				}
				return
			}
		}
	}
}

// Helper: startReader drains incoming messages to handle control frames and detect closure.
func (h *Handler) startReader(conn *websocket.Conn, done chan<- struct{}) {
	defer close(done)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if h.log != nil {
				h.log.Infow("ws_read_closed", "err", err)
			}
			return
		}
	}
}

// Helper: writeEnvelope writes one message with a write deadline.
func (h *Handler) writeEnvelope(conn *websocket.Conn, env wsEnvelope) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(env)
}
