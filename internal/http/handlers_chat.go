package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"fintech/internal/assistant"
	applog "fintech/internal/log"
)

const wsWriteWait = 10 * time.Second

type chatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id,omitempty"`
}

type chatResponse struct {
	SessionID string `json:"session_id"`
	assistant.Reply
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.SessionID == "" {
		req.SessionID = r.Header.Get(HeaderChatSession)
	}

	sess := s.sessions.Get(req.SessionID)
	reply, err := sess.Ask(r.Context(), sanitizeInput(req.Message))
	if err != nil {
		if r.Context().Err() != nil {
			// client went away; nobody to answer
			return
		}
		w.Header().Set(HeaderChatSession, sess.ID())
		writeError(w, r, err)
		return
	}

	applog.FromContext(r.Context()).WithComponent(applog.ComponentAssistant).InfoContext(r.Context(), "Chat answered",
		applog.NewFields().WithChat(sess.ID(), reply.Topic, string(reply.Source)).ToSlice()...)
	NewJSONResponse().
		Header(HeaderChatSession, sess.ID()).
		Body(chatResponse{SessionID: sess.ID(), Reply: reply}).
		Write(w)
}

// handleCloseChat dismisses a session; its in-flight answer is dropped.
func (s *Server) handleCloseChat(w http.ResponseWriter, r *http.Request) {
	s.sessions.Close(r.PathValue("session"))
	NewJSONResponse().Status(http.StatusNoContent).Write(w)
}

// wsFrame is every server-to-client websocket message.
type wsFrame struct {
	Type      string `json:"type"`
	SessionID string `json:"session_id"`
	*assistant.Reply
	Error string `json:"error,omitempty"`
}

// readQuestion accepts {"message": "..."} or plain text.
func readQuestion(data []byte) string {
	var req chatRequest
	if err := json.Unmarshal(data, &req); err == nil && req.Message != "" {
		return sanitizeInput(req.Message)
	}
	return sanitizeInput(string(data))
}

// handleChatSocket runs one websocket conversation. Each text frame is a
// question; a newer question supersedes an unanswered older one, and closing
// the socket dismisses the session.
func (s *Server) handleChatSocket(w http.ResponseWriter, r *http.Request) {
	logger := applog.FromContext(r.Context()).WithComponent(applog.ComponentAssistant)

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.WarnContext(r.Context(), "WebSocket upgrade failed", applog.FieldError, err.Error())
		return
	}
	s.wsConns.Add(1)
	defer s.wsConns.Done()

	ctx, cancel := context.WithCancel(context.WithoutCancel(r.Context()))
	sess := s.sessions.Get(r.URL.Query().Get("session_id"))

	var (
		writeMu  sync.Mutex
		inflight sync.WaitGroup
	)
	send := func(f wsFrame) {
		writeMu.Lock()
		defer writeMu.Unlock()
		conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
		if err := conn.WriteJSON(f); err != nil {
			logger.DebugContext(ctx, "WebSocket write failed", applog.FieldSession, f.SessionID, applog.FieldError, err.Error())
		}
	}

	defer func() {
		cancel()
		s.sessions.Close(sess.ID())
		inflight.Wait()
		conn.Close()
		logger.InfoContext(ctx, "Chat socket closed", applog.FieldSession, sess.ID())
	}()

	go func() {
		select {
		case <-s.closing:
			conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
				time.Now().Add(time.Second))
			conn.Close()
		case <-ctx.Done():
		}
	}()

	send(wsFrame{Type: "session", SessionID: sess.ID()})

	for {
		mt, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.WarnContext(ctx, "Chat socket read failed", applog.FieldSession, sess.ID(), applog.FieldError, err.Error())
			}
			return
		}
		if mt != websocket.TextMessage {
			continue
		}
		question := readQuestion(data)
		if strings.TrimSpace(question) == "" {
			send(wsFrame{Type: "error", SessionID: sess.ID(), Error: assistant.ErrEmptyMessage.Error()})
			continue
		}

		// An expired or dismissed session is replaced while the socket lives.
		if sess.Closed() {
			sess = s.sessions.Get("")
			logger.InfoContext(ctx, "Chat session renewed", applog.FieldSession, sess.ID())
			send(wsFrame{Type: "session", SessionID: sess.ID()})
		}

		inflight.Add(1)
		go func(sess *assistant.Session) {
			defer inflight.Done()
			reply, err := sess.Ask(ctx, question)
			switch {
			case err == nil:
				send(wsFrame{Type: "reply", SessionID: sess.ID(), Reply: &reply})
			case ctx.Err() != nil, errors.Is(err, assistant.ErrSuperseded):
				// answer no longer wanted
			case errors.Is(err, assistant.ErrClosed):
				send(wsFrame{Type: "error", SessionID: sess.ID(), Error: err.Error()})
			default:
				logger.ErrorContext(ctx, "Chat answer failed", applog.FieldSession, sess.ID(), applog.FieldError, err.Error())
				send(wsFrame{Type: "error", SessionID: sess.ID(), Error: "could not answer"})
			}
		}(sess)
	}
}
