package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/yoockh/yoointerview/internal/models"
	"github.com/yoockh/yoointerview/internal/services"
	"github.com/yoockh/yoointerview/internal/utils"
)

const (
	wsReadTimeout  = 90 * time.Second
	wsPingInterval = 30 * time.Second
	wsWriteTimeout = 10 * time.Second
)

type WSHandler struct {
	sessions services.SessionService
	upgrader websocket.Upgrader
}

// NewWSHandler accepts origins listed in allowedOrigins; an empty list
// accepts any origin.
func NewWSHandler(sessions services.SessionService, allowedOrigins []string) *WSHandler {
	allow := map[string]bool{}
	for _, o := range allowedOrigins {
		if o = strings.TrimSpace(o); o != "" {
			allow[o] = true
		}
	}
	return &WSHandler{
		sessions: sessions,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return len(allow) == 0 || allow[r.Header.Get("Origin")]
			},
		},
	}
}

type wsClientMsg struct {
	Type string `json:"type"` // message|end_session
	Text string `json:"text"`
}

type wsServerMsg struct {
	Type string `json:"type"` // turn|ended|error

	Turn  *models.TurnResult `json:"turn,omitempty"`
	Ended *models.EndResult  `json:"ended,omitempty"`

	Code    utils.Code `json:"code,omitempty"`
	Message string     `json:"message,omitempty"`
}

type wsConn struct {
	c  *websocket.Conn
	mu sync.Mutex
}

func (w *wsConn) writeJSON(v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	_ = w.c.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	return w.c.WriteMessage(websocket.TextMessage, b)
}

func (w *wsConn) ping() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.c.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteTimeout))
}

func (w *wsConn) writeErr(err error) error {
	_, body := toAPIError(err)
	return w.writeJSON(wsServerMsg{Type: "error", Code: body.Code, Message: body.Message})
}

// SessionWS carries the interview over one socket. Turns are processed in
// arrival order on the read loop.
func (h *WSHandler) SessionWS(c *gin.Context) {
	const op = "WSHandler.SessionWS"

	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	sessionID := c.Param("session_id")
	if _, err := ownedSession(c.Request.Context(), h.sessions, op, userID, sessionID); err != nil {
		writeError(c, err)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// upgrader already wrote the response
		return
	}
	defer conn.Close()

	wc := &wsConn{c: conn}
	ctx := c.Request.Context()

	done := make(chan struct{})
	defer close(done)
	go func() {
		t := time.NewTicker(wsPingInterval)
		defer t.Stop()
		for {
			select {
			case <-done:
				return
			case <-t.C:
				if wc.ping() != nil {
					return
				}
			}
		}
	}()

	_ = conn.SetReadDeadline(time.Now().Add(wsReadTimeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsReadTimeout))
	})

	for {
		_, data, rerr := conn.ReadMessage()
		if rerr != nil {
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(wsReadTimeout))

		var msg wsClientMsg
		if err := json.Unmarshal(data, &msg); err != nil {
			_ = wc.writeErr(utils.E(utils.CodeInvalidArgument, op, "invalid json", err))
			continue
		}

		switch msg.Type {
		case "message":
			res, err := h.sessions.ProcessMessage(ctx, sessionID, msg.Text)
			if err != nil {
				if wc.writeErr(err) != nil {
					return
				}
				continue
			}
			if wc.writeJSON(wsServerMsg{Type: "turn", Turn: res}) != nil {
				return
			}

		case "end_session":
			res, err := h.sessions.End(ctx, sessionID)
			if err != nil {
				if wc.writeErr(err) != nil {
					return
				}
				continue
			}
			_ = wc.writeJSON(wsServerMsg{Type: "ended", Ended: res})
			return

		default:
			_ = wc.writeErr(utils.E(utils.CodeInvalidArgument, op, "unknown message type", nil))
		}
	}
}
