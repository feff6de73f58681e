package web

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/wolfman30/booking-wizard/internal/wizard"
	"golang.org/x/net/websocket"
)

// inboundFrame is what the contact form script sends on each keystroke.
type inboundFrame struct {
	Type  string `json:"type"` // "field", "ping"
	Field string `json:"field,omitempty"`
	Value string `json:"value,omitempty"`
}

type outboundFrame struct {
	Type  string     `json:"type"` // "state", "pong", "error"
	Text  string     `json:"text,omitempty"`
	State *stateView `json:"state,omitempty"`
}

// HandleWebSocket streams contact field updates into the visitor's draft.
// The session must already exist; the socket never issues cookies.
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	c, err := r.Cookie(SessionCookie)
	if err != nil {
		http.Error(w, "missing session", http.StatusBadRequest)
		return
	}
	if _, err := uuid.Parse(c.Value); err != nil {
		http.Error(w, "invalid session", http.StatusBadRequest)
		return
	}
	sessionID := c.Value

	websocket.Handler(func(conn *websocket.Conn) {
		h.serveWS(conn, r, sessionID)
	}).ServeHTTP(w, r)
}

func (h *Handler) serveWS(conn *websocket.Conn, r *http.Request, sessionID string) {
	ctx := r.Context()
	h.logger.Debug("wizard: websocket opened", "session_id", sessionID)

	for {
		var frame inboundFrame
		if err := websocket.JSON.Receive(conn, &frame); err != nil {
			h.logger.Debug("wizard: websocket closed", "session_id", sessionID, "error", err)
			return
		}

		switch frame.Type {
		case "ping":
			_ = websocket.JSON.Send(conn, outboundFrame{Type: "pong"})
		case "field":
			field, err := wizard.ParseContactField(frame.Field)
			if err != nil {
				_ = websocket.JSON.Send(conn, outboundFrame{Type: "error", Text: userMessage(err)})
				continue
			}
			st, err := h.manager.Dispatch(ctx, sessionID, wizard.UpdateContact{Field: field, Value: frame.Value})
			if err != nil {
				_ = websocket.JSON.Send(conn, outboundFrame{Type: "error", Text: userMessage(err)})
				continue
			}
			view := newStateView(st, h.manager.Machine().Today())
			_ = websocket.JSON.Send(conn, outboundFrame{Type: "state", State: &view})
		}
	}
}
