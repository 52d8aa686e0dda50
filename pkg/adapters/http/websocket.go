package http

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = wsPongWait * 9 / 10
	wsMaxMessage = 16 << 10
)

// chat upgrades to a WebSocket and runs one turn per incoming message.
// Messages are either {"utterance": "..."} or plain text; every reply is a
// TurnResponse, every rejected message an {"error": "..."} object.
func (s *Server) chat(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "session_id", id, "err", err)
		return
	}
	defer conn.Close()

	conn.SetReadLimit(wsMaxMessage)
	_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})

	done := make(chan struct{})
	defer close(done)
	go s.keepAlive(conn, done)

	s.logger.Info("websocket chat opened", "session_id", id)
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Warn("websocket read failed", "session_id", id, "err", err)
			}
			s.logger.Info("websocket chat closed", "session_id", id)
			return
		}

		var out any
		resp, _, err := s.turn(r.Context(), id, wsUtterance(msg))
		if err != nil {
			out = errorResponse{Error: err.Error()}
		} else {
			out = resp
		}
		_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
		if err := conn.WriteJSON(out); err != nil {
			s.logger.Warn("websocket write failed", "session_id", id, "err", err)
			return
		}
	}
}

// keepAlive pings the peer until done is closed. WriteControl may run
// concurrently with the chat loop's writes.
func (s *Server) keepAlive(conn *websocket.Conn, done <-chan struct{}) {
	ticker := time.NewTicker(wsPingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteWait)); err != nil {
				return
			}
		}
	}
}

func wsUtterance(msg []byte) string {
	text := strings.TrimSpace(string(msg))
	if strings.HasPrefix(text, "{") {
		var req TurnRequest
		if err := json.Unmarshal(msg, &req); err == nil {
			return req.Utterance
		}
	}
	return text
}
